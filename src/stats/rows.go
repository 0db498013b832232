package stats

import (
	"fmt"
	"strconv"

	"unify-server/src/models"
)

// TransactionRow is a display row with a stable synthetic identifier, since
// references are only unique per source.
type TransactionRow struct {
	models.Transaction
	UID      string `json:"uid"`
	DayKey   string `json:"dayKey"`
	DayLabel string `json:"dayLabel"`
}

// PrepareRows turns transactions into display rows. Interest/cashback
// payments landing on the same calendar day collapse into one synthetic row
// summing their amounts and labelled with the payment count; everything else
// passes through unchanged.
func PrepareRows(txs []models.Transaction) []TransactionRow {
	rows := make([]TransactionRow, 0, len(txs))
	interestByDay := make(map[string][]TransactionRow)
	var dayOrder []string

	for _, tx := range txs {
		when := tx.Time()
		row := TransactionRow{
			Transaction: tx,
			UID:         fmt.Sprintf("%s|%s|%s", tx.DateTime, tx.Type, strconv.FormatFloat(tx.Amount, 'f', -1, 64)),
			DayKey:      when.Format("2006-01-02"),
			DayLabel:    when.Format("2 Jan 2006"),
		}

		if tx.Type == models.TypeInterestCashback {
			if _, ok := interestByDay[row.DayKey]; !ok {
				dayOrder = append(dayOrder, row.DayKey)
			}
			interestByDay[row.DayKey] = append(interestByDay[row.DayKey], row)
			continue
		}
		rows = append(rows, row)
	}

	for _, dayKey := range dayOrder {
		interests := interestByDay[dayKey]
		var total float64
		for _, row := range interests {
			total += row.Amount
		}

		grouped := interests[0]
		grouped.Amount = total
		grouped.UID = dayKey + "-interest-grouped"
		grouped.Description = fmt.Sprintf("Interest (%d payments)", len(interests))
		rows = append(rows, grouped)
	}

	return rows
}
