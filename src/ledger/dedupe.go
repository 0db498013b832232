package ledger

import (
	"fmt"
	"math"

	"unify-server/src/models"
)

// FilterCardDuplicates drops credit-card withdrawals that also appear as a
// bank-account withdrawal on the same calendar day with the same absolute
// amount to two decimal places. This is a deliberately coarser check than the
// mirror filter (exact day, exact 2dp amount, card/bank legs only) and runs
// as its own stage at the combined-read boundary.
func FilterCardDuplicates(transactions []models.Transaction) []models.Transaction {
	bankWithdrawals := make(map[string]bool)
	for _, tx := range transactions {
		if tx.Source == models.SourceBankAccount && tx.Amount < 0 {
			bankWithdrawals[dayAmountKey(tx)] = true
		}
	}

	out := make([]models.Transaction, 0, len(transactions))
	for _, tx := range transactions {
		if tx.Source == models.SourceCreditCard && tx.Amount < 0 && bankWithdrawals[dayAmountKey(tx)] {
			continue
		}
		out = append(out, tx)
	}
	return out
}

func dayAmountKey(tx models.Transaction) string {
	return fmt.Sprintf("%s|%.2f", tx.Time().Format("2006-01-02"), math.Abs(tx.Amount))
}
