package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"unify-server/src/models"
)

// DataSource is the cached source data surface the read handlers consume.
// The live implementation is the refresh coordinator; demo mode swaps in a
// fixed sample source.
type DataSource interface {
	Stale(ctx context.Context) (bool, error)
	EnsureFresh(ctx context.Context) error
	ForceStale(ctx context.Context) error
	RefreshAllAsync()
	AccountsSnapshot(ctx context.Context) ([]models.CachedAccountData, error)
	CardsSnapshot(ctx context.Context) ([]models.CachedCardData, error)
	TradingSnapshot(ctx context.Context) (models.CachedTransactions, error)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
