package ledger

import (
	"math"
	"time"

	"unify-server/src/models"
)

const (
	// mirrorTolerance is the maximum absolute amount difference for two
	// transactions to count as the same transfer.
	mirrorTolerance = 1.0
	// mirrorWindow is the maximum timestamp difference between the two
	// legs of a transfer.
	mirrorWindow = 3 * 24 * time.Hour
)

func withinTolerance(a, b models.Transaction) bool {
	amountDiff := math.Abs(math.Abs(a.Amount) - math.Abs(b.Amount))
	if amountDiff >= mirrorTolerance {
		return false
	}
	timeDiff := a.Time().Sub(b.Time())
	if timeDiff < 0 {
		timeDiff = -timeDiff
	}
	return timeDiff < mirrorWindow
}

// isMirrored reports whether a bank withdrawal and a trading deposit look
// like the two legs of one bank→trading transfer.
func isMirrored(bankTx, t212Tx models.Transaction) bool {
	return bankTx.Source == models.SourceBankAccount &&
		bankTx.Amount < 0 &&
		t212Tx.Source == models.SourceTrading212 &&
		t212Tx.Amount > 0 &&
		withinTolerance(bankTx, t212Tx)
}

// FilterMirrored removes pairs of transactions that record the same transfer
// in two source systems, so money moved between accounts is not counted as
// both spend and income.
//
// Two passes run in order: bank withdrawals paired with trading deposits,
// then trading withdrawals paired with bank deposits. Matching is
// first-match in input order, so results are reproducible for a fixed input
// ordering. A reference removed in pass one is never considered in pass two.
// Output preserves the input's relative order.
func FilterMirrored(transactions []models.Transaction) []models.Transaction {
	removed := make(map[string]bool)

	for _, bankTx := range transactions {
		if bankTx.Source != models.SourceBankAccount || bankTx.Amount >= 0 {
			continue
		}
		if removed[bankTx.Reference] {
			continue
		}
		for _, candidate := range transactions {
			if removed[candidate.Reference] {
				continue
			}
			if isMirrored(bankTx, candidate) {
				removed[bankTx.Reference] = true
				removed[candidate.Reference] = true
				break
			}
		}
	}

	for _, t212Tx := range transactions {
		if t212Tx.Source != models.SourceTrading212 || t212Tx.Amount >= 0 || t212Tx.Type != models.TypeWithdraw {
			continue
		}
		if removed[t212Tx.Reference] {
			continue
		}
		for _, candidate := range transactions {
			if removed[candidate.Reference] {
				continue
			}
			if candidate.Source == models.SourceBankAccount &&
				candidate.Amount > 0 &&
				candidate.Type == models.TypeDeposit &&
				withinTolerance(t212Tx, candidate) {
				removed[t212Tx.Reference] = true
				removed[candidate.Reference] = true
				break
			}
		}
	}

	out := make([]models.Transaction, 0, len(transactions))
	for _, tx := range transactions {
		if !removed[tx.Reference] {
			out = append(out, tx)
		}
	}
	return out
}
