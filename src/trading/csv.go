package trading

import (
	"bytes"
	"encoding/csv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"unify-server/src/models"
)

// exportTimeLayout is the space-separated format Trading212 writes in the
// Time column.
const exportTimeLayout = "2006-01-02 15:04:05"

// ParseCSV normalizes a Trading212 history export. Rows missing required
// columns or with unparsable totals are logged and skipped rather than
// failing the whole import.
func ParseCSV(raw []byte, logger zerolog.Logger) ([]models.Transaction, error) {
	reader := csv.NewReader(bytes.NewReader(raw))
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}

	col := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		col[strings.TrimSpace(name)] = i
	}

	field := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var txs []models.Transaction
	for n, row := range records[1:] {
		action := field(row, "Action")
		timeStr := field(row, "Time")
		total := field(row, "Total")
		if action == "" || timeStr == "" || total == "" {
			logger.Warn().Int("row", n+2).Msg("skipping incomplete export row")
			continue
		}

		// Totals can carry thousands separators.
		amount, err := decimal.NewFromString(strings.ReplaceAll(total, ",", ""))
		if err != nil {
			logger.Warn().Int("row", n+2).Str("total", total).Msg("skipping unparsable total")
			continue
		}

		typ := normalizeAction(action)
		value := amount.InexactFloat64()
		if typ == models.TypeWithdraw && value > 0 {
			value = -value
		}

		description := field(row, "Merchant name")
		if description == "" {
			description = action
		}

		// Normalize to RFC3339 so the export rows sort and window with
		// the bank sources.
		dateTime := timeStr
		if ts, err := time.Parse(exportTimeLayout, timeStr); err == nil {
			dateTime = ts.UTC().Format(time.RFC3339)
		}

		txs = append(txs, models.Transaction{
			Type:        typ,
			Amount:      value,
			Reference:   field(row, "ID"),
			DateTime:    dateTime,
			Source:      models.SourceTrading212,
			Description: description,
		})
	}
	return txs, nil
}

// normalizeAction maps export actions onto the shared transaction types.
func normalizeAction(action string) models.TransactionType {
	a := strings.ToLower(action)
	switch {
	case strings.Contains(a, "interest") || strings.Contains(a, "cashback"):
		return models.TypeInterestCashback
	case strings.Contains(a, "deposit"):
		return models.TypeDeposit
	case strings.Contains(a, "withdraw") || strings.Contains(a, "debit"):
		return models.TypeWithdraw
	default:
		return models.TypeTransfer
	}
}
