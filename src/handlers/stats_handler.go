package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"unify-server/src/categorize"
	"unify-server/src/models"
	"unify-server/src/stats"
)

func parseOffset(r *http.Request) int {
	offset, err := strconv.Atoi(r.URL.Query().Get("offset"))
	if err != nil {
		return 0
	}
	return stats.ClampOffset(offset)
}

func parseMode(r *http.Request) stats.Mode {
	if r.URL.Query().Get("mode") == string(stats.ModeWeek) {
		return stats.ModeWeek
	}
	return stats.ModeMonth
}

// GetActivity serves spending and income for one month or week window,
// navigable backwards via the offset query param.
func GetActivity(source DataSource, engine *categorize.Engine, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		txs, _, err := combined(r.Context(), source, engine)
		if err != nil {
			logger.Error().Err(err).Msg("failed to assemble activity data")
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		mode := parseMode(r)
		window := stats.DateRange(mode, parseOffset(r), time.Now())

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"mode":     mode,
			"label":    stats.FormatRangeLabel(mode, window),
			"start":    window.Start.Format(time.RFC3339),
			"end":      window.End.Format(time.RFC3339),
			"spending": stats.CalculateSpending(txs, window),
			"income":   stats.CalculateIncome(txs, window),
		})
	}
}

// GetCategoryStats serves the per-category spend breakdown for one month,
// with reimbursements credited against their category.
func GetCategoryStats(source DataSource, engine *categorize.Engine, provider categorize.Provider, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		txs, _, err := combined(ctx, source, engine)
		if err != nil {
			logger.Error().Err(err).Msg("failed to assemble category stats")
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		rules, err := provider.ListRules(ctx)
		if err != nil {
			logger.Error().Err(err).Msg("failed to list category rules")
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		overrides, err := provider.ListOverrides(ctx)
		if err != nil {
			logger.Error().Err(err).Msg("failed to list category overrides")
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		window := stats.DateRange(stats.ModeMonth, parseOffset(r), time.Now())
		breakdown := categorize.MonthCategoryStats(rules, overrides, txs, window.Start, window.End)
		if breakdown == nil {
			breakdown = []models.CategoryStats{}
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"label":      stats.FormatRangeLabel(stats.ModeMonth, window),
			"categories": breakdown,
		})
	}
}

// GetIncome serves the trailing six month income series plus the current
// month's salary/interest/other breakdown.
func GetIncome(source DataSource, engine *categorize.Engine, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		txs, _, err := combined(r.Context(), source, engine)
		if err != nil {
			logger.Error().Err(err).Msg("failed to assemble income data")
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		now := time.Now()
		window := stats.DateRange(stats.ModeMonth, parseOffset(r), now)

		var inWindow []models.Transaction
		for _, tx := range txs {
			if window.Contains(tx.Time()) {
				inWindow = append(inWindow, tx)
			}
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"months":    stats.MonthlyIncomes(txs, now),
			"breakdown": stats.Breakdown(inWindow),
		})
	}
}
