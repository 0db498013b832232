package stats

import (
	"strings"
	"time"

	"unify-server/src/models"
)

type MonthlyIncome struct {
	Month        string               `json:"month"`
	Year         int                  `json:"year"`
	Income       float64              `json:"income"`
	Change       float64              `json:"change"`
	Transactions []models.Transaction `json:"transactions"`
}

type IncomeBreakdown struct {
	Salary        float64              `json:"salary"`
	SalaryTxs     []models.Transaction `json:"salaryTxs"`
	InterestTotal float64              `json:"interestTotal"`
	InterestCount int                  `json:"interestCount"`
	Other         float64              `json:"other"`
	OtherTxs      []models.Transaction `json:"otherTxs"`
}

// MonthlyIncomes computes the trailing six months of income, newest first,
// with the percentage change against the month before. A prior month with
// zero income yields a 0% change rather than a division failure.
func MonthlyIncomes(txs []models.Transaction, now time.Time) []MonthlyIncome {
	months := make([]MonthlyIncome, 0, 6)

	for i := 0; i < 6; i++ {
		r := DateRange(ModeMonth, -i, now)
		income := CalculateIncome(txs, r)

		var monthTxs []models.Transaction
		for _, tx := range txs {
			if r.Contains(tx.Time()) && tx.Amount > 0 {
				monthTxs = append(monthTxs, tx)
			}
		}

		change := 0.0
		if i < 5 {
			prevIncome := CalculateIncome(txs, DateRange(ModeMonth, -(i+1), now))
			if prevIncome > 0 {
				change = (income - prevIncome) / prevIncome * 100
			}
		}

		months = append(months, MonthlyIncome{
			Month:        r.Start.Format("January 2006"),
			Year:         r.Start.Year(),
			Income:       income,
			Change:       change,
			Transactions: monthTxs,
		})
	}
	return months
}

// Breakdown partitions positive transactions into salary (bank deposits
// whose description mentions payroll or salary), interest/cashback, and
// other bank income. Reimbursements are skipped.
func Breakdown(txs []models.Transaction) IncomeBreakdown {
	var b IncomeBreakdown

	for _, tx := range txs {
		if tx.Source == models.SourceBankAccount && tx.Amount > 0 {
			desc := strings.ToLower(tx.Description)
			if strings.Contains(desc, "payroll") || strings.Contains(desc, "salary") {
				b.Salary += tx.Amount
				b.SalaryTxs = append(b.SalaryTxs, tx)
				continue
			}
			if tx.Category == ReimbursementCategory {
				continue
			}
			b.Other += tx.Amount
			b.OtherTxs = append(b.OtherTxs, tx)
		} else if tx.Type == models.TypeInterestCashback {
			b.InterestTotal += tx.Amount
			b.InterestCount++
		}
	}

	return b
}
