package trading

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"unify-server/src/ledger"
	"unify-server/src/models"
	"unify-server/src/stats"
)

func TestParseCSV(t *testing.T) {
	raw := []byte(`Action,Time,ID,Merchant name,Total,Currency (Total)
Deposit,2024-03-01 09:15:00,ord-1,,"1,500.00",GBP
Withdrawal,2024-03-05 12:00:00,ord-2,,250.00,GBP
Interest on cash,2024-03-07 00:00:00,ord-3,,1.42,GBP
Card debit,2024-03-08 18:30:00,ord-4,TESCO,-12.50,GBP
Dividend (Ordinary),2024-03-10 10:00:00,ord-5,,3.10,GBP
`)

	txs, err := ParseCSV(raw, zerolog.Nop())
	require.NoError(t, err)
	require.Len(t, txs, 5)

	assert.Equal(t, models.TypeDeposit, txs[0].Type)
	assert.Equal(t, 1500.0, txs[0].Amount)
	assert.Equal(t, models.SourceTrading212, txs[0].Source)
	assert.Equal(t, "ord-1", txs[0].Reference)

	assert.Equal(t, models.TypeWithdraw, txs[1].Type)
	assert.Equal(t, -250.0, txs[1].Amount)

	assert.Equal(t, models.TypeInterestCashback, txs[2].Type)
	assert.Equal(t, 1.42, txs[2].Amount)

	assert.Equal(t, models.TypeWithdraw, txs[3].Type)
	assert.Equal(t, -12.5, txs[3].Amount)
	assert.Equal(t, "TESCO", txs[3].Description)

	assert.Equal(t, models.TypeTransfer, txs[4].Type)
}

func TestParseCSVNormalizesTimestamps(t *testing.T) {
	raw := []byte(`Action,Time,ID,Merchant name,Total,Currency (Total)
Deposit,2024-03-02 09:15:00,ord-1,,500.00,GBP
`)

	txs, err := ParseCSV(raw, zerolog.Nop())
	require.NoError(t, err)
	require.Len(t, txs, 1)

	assert.Equal(t, "2024-03-02T09:15:00Z", txs[0].DateTime)
	want := time.Date(2024, 3, 2, 9, 15, 0, 0, time.UTC)
	assert.True(t, txs[0].Time().Equal(want))

	// A bank-side withdrawal one day earlier pairs with the export deposit
	// and both legs drop out.
	bank := models.Transaction{
		Type:      models.TypeTransfer,
		Amount:    -500.00,
		Reference: "bank-1",
		DateTime:  "2024-03-01T18:00:00Z",
		Source:    models.SourceBankAccount,
	}
	survivors := ledger.FilterMirrored([]models.Transaction{bank, txs[0]})
	assert.Empty(t, survivors)

	// The export row lands inside its own calendar-month window.
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	r := stats.DateRange(stats.ModeMonth, 0, now)
	assert.True(t, r.Contains(txs[0].Time()))
}

func TestParseCSVSkipsBadRows(t *testing.T) {
	raw := []byte(`Action,Time,ID,Merchant name,Total,Currency (Total)
Deposit,2024-03-01 09:15:00,ord-1,,100.00,GBP
Deposit,,ord-2,,50.00,GBP
Deposit,2024-03-03 09:15:00,ord-3,,not-a-number,GBP
Withdrawal,2024-03-04 09:15:00,ord-4,,75.00,GBP
`)

	txs, err := ParseCSV(raw, zerolog.Nop())
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, "ord-1", txs[0].Reference)
	assert.Equal(t, "ord-4", txs[1].Reference)
}

func TestParseCSVEmpty(t *testing.T) {
	txs, err := ParseCSV(nil, zerolog.Nop())
	require.NoError(t, err)
	assert.Empty(t, txs)
}
