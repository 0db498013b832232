package stats

import (
	"math"

	"unify-server/src/models"
)

// CalculateSpending sums the absolute amounts of all negative, non-deposit
// transactions inside the window, then credits back anything categorized as a
// reimbursement in the same window.
func CalculateSpending(txs []models.Transaction, r Range) float64 {
	var total, reimbursements float64

	for _, tx := range txs {
		if !r.Contains(tx.Time()) {
			continue
		}
		if tx.Amount < 0 && tx.Type != models.TypeDeposit {
			total += math.Abs(tx.Amount)
		}
		if tx.Category == ReimbursementCategory {
			reimbursements += tx.Amount
		}
	}

	return total - reimbursements
}

// CalculateIncome sums positive transactions inside the window. Bank income
// counts in full except reimbursements, which are excluded entirely;
// interest/cashback counts regardless of source; other sources are not
// income.
func CalculateIncome(txs []models.Transaction, r Range) float64 {
	var total float64

	for _, tx := range txs {
		if !r.Contains(tx.Time()) || tx.Amount <= 0 {
			continue
		}
		if tx.Source == models.SourceBankAccount {
			if tx.Category == ReimbursementCategory {
				continue
			}
			total += tx.Amount
		} else if tx.Type == models.TypeInterestCashback {
			total += tx.Amount
		}
	}

	return total
}
