// Package ledger holds the pure reconciliation core: merging incremental
// batches, removing mirrored transfers and suppressing card/bank duplicates.
// Nothing here performs I/O; the refresh coordinator persists results.
package ledger

import (
	"sort"

	"unify-server/src/models"
)

// MergePolicy decides what happens when a reference exists in both the cached
// list and a freshly fetched batch.
type MergePolicy int

const (
	// PolicyOverwrite lets the incoming record replace the cached one.
	// Used for correctable cache refreshes (the trading export path).
	PolicyOverwrite MergePolicy = iota
	// PolicyKeepExisting keeps the cached record and only inserts
	// genuinely new references. Used for the append-only accounts and
	// cards accumulation.
	PolicyKeepExisting
)

// Merge combines a cached transaction list with an incoming batch, dedupes by
// reference under the given policy and returns the result sorted ascending by
// timestamp. The sort is stable: entries with equal timestamps keep their
// relative input order. Neither input slice is modified.
func Merge(existing, incoming []models.Transaction, policy MergePolicy) []models.Transaction {
	index := make(map[string]int, len(existing)+len(incoming))
	merged := make([]models.Transaction, 0, len(existing)+len(incoming))

	for _, tx := range existing {
		if i, ok := index[tx.Reference]; ok {
			merged[i] = tx
			continue
		}
		index[tx.Reference] = len(merged)
		merged = append(merged, tx)
	}

	for _, tx := range incoming {
		if i, ok := index[tx.Reference]; ok {
			if policy == PolicyOverwrite {
				merged[i] = tx
			}
			continue
		}
		index[tx.Reference] = len(merged)
		merged = append(merged, tx)
	}

	SortByDate(merged)
	return merged
}

// SortByDate sorts transactions ascending by their resolved timestamp, in
// place, using a stable sort. Records with unparsable dates sort first
// (epoch zero) instead of failing.
func SortByDate(txs []models.Transaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		return txs[i].Time().Before(txs[j].Time())
	})
}

// Sorted returns a date-sorted copy, leaving the input untouched.
func Sorted(txs []models.Transaction) []models.Transaction {
	out := make([]models.Transaction, len(txs))
	copy(out, txs)
	SortByDate(out)
	return out
}
