package handlers

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"

	"unify-server/src/categorize"
	"unify-server/src/demo"
	"unify-server/src/ledger"
	"unify-server/src/models"
	"unify-server/src/stats"
)

// collect reads all source snapshots and flattens them into one transaction
// list plus the combined balance. Positive card balances are owed money, so
// they subtract from the total.
func collect(ctx context.Context, source DataSource) ([]models.Transaction, float64, error) {
	accounts, err := source.AccountsSnapshot(ctx)
	if err != nil {
		return nil, 0, err
	}
	cards, err := source.CardsSnapshot(ctx)
	if err != nil {
		return nil, 0, err
	}
	trading, err := source.TradingSnapshot(ctx)
	if err != nil {
		return nil, 0, err
	}

	var txs []models.Transaction
	var total float64
	for _, account := range accounts {
		txs = append(txs, account.Transactions...)
		total += account.Balance
	}
	for _, card := range cards {
		txs = append(txs, card.Transactions...)
		if card.Balance > 0 {
			total -= card.Balance
		}
	}
	txs = append(txs, trading.Transactions...)
	total += trading.Balance

	return txs, total, nil
}

// combined is the shared pipeline behind the read and stats endpoints:
// flatten, drop card/bank duplicates, drop cross-source mirrors, categorize,
// sort.
func combined(ctx context.Context, source DataSource, engine *categorize.Engine) ([]models.Transaction, float64, error) {
	txs, total, err := collect(ctx, source)
	if err != nil {
		return nil, 0, err
	}
	txs = ledger.FilterCardDuplicates(txs)
	txs = ledger.FilterMirrored(txs)
	txs, err = engine.CategorizeAll(ctx, txs)
	if err != nil {
		return nil, 0, err
	}
	ledger.SortByDate(txs)
	return txs, total, nil
}

// GetTransactions serves the combined view across all sources and kicks off
// a background refresh when the cache is stale. The response is always the
// current snapshot; fresh data arrives over the event stream.
func GetTransactions(source DataSource, engine *categorize.Engine, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if err := source.EnsureFresh(ctx); err != nil {
			logger.Error().Err(err).Msg("staleness check failed")
		}

		txs, total, err := combined(ctx, source, engine)
		if err != nil {
			logger.Error().Err(err).Msg("failed to assemble combined data")
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, models.CombinedFinancialData{
			Transactions: txs,
			TotalBalance: total,
		})
	}
}

// GetDemoTransactions serves the combined view over generated sample data,
// regardless of mode. It exists so the frontend can preview the app without
// any provider connected.
func GetDemoTransactions(logger zerolog.Logger) http.HandlerFunc {
	sample := demo.NewSource()
	sampleEngine := categorize.NewEngine(demo.NewProvider())
	return func(w http.ResponseWriter, r *http.Request) {
		txs, total, err := combined(r.Context(), sample, sampleEngine)
		if err != nil {
			logger.Error().Err(err).Msg("failed to assemble demo data")
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, models.CombinedFinancialData{
			Transactions: txs,
			TotalBalance: total,
		})
	}
}

// GetTransactionRows serves the display row projection: stable row ids, day
// grouping keys, and per-day interest collapsing.
func GetTransactionRows(source DataSource, engine *categorize.Engine, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		txs, _, err := combined(r.Context(), source, engine)
		if err != nil {
			logger.Error().Err(err).Msg("failed to assemble transaction rows")
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, stats.PrepareRows(txs))
	}
}
