package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"unify-server/src/models"
)

func TestPrepareRowsPassThrough(t *testing.T) {
	txs := []models.Transaction{
		tx(models.SourceBankAccount, models.TypeWithdraw, "rent", "2024-03-01T09:00:00Z", -900),
	}

	rows := PrepareRows(txs)
	require.Len(t, rows, 1)
	assert.Equal(t, "2024-03-01T09:00:00Z|WITHDRAW|-900", rows[0].UID)
	assert.Equal(t, "2024-03-01", rows[0].DayKey)
	assert.Equal(t, "1 Mar 2024", rows[0].DayLabel)
}

func TestPrepareRowsGroupsInterestPerDay(t *testing.T) {
	txs := []models.Transaction{
		tx(models.SourceTrading212, models.TypeInterestCashback, "i1", "2024-03-01T01:00:00Z", 1.20),
		tx(models.SourceBankAccount, models.TypeWithdraw, "coffee", "2024-03-01T08:00:00Z", -3),
		tx(models.SourceTrading212, models.TypeInterestCashback, "i2", "2024-03-01T23:00:00Z", 0.80),
		tx(models.SourceTrading212, models.TypeInterestCashback, "i3", "2024-03-02T01:00:00Z", 0.50),
	}

	rows := PrepareRows(txs)
	require.Len(t, rows, 3)

	assert.Equal(t, "coffee", rows[0].Reference)

	grouped := rows[1]
	assert.Equal(t, "2024-03-01-interest-grouped", grouped.UID)
	assert.InDelta(t, 2.0, grouped.Amount, 0.001)
	assert.Equal(t, "Interest (2 payments)", grouped.Description)

	single := rows[2]
	assert.Equal(t, "2024-03-02-interest-grouped", single.UID)
	assert.Equal(t, "Interest (1 payments)", single.Description)
}

func TestPrepareRowsUIDIsStable(t *testing.T) {
	txs := []models.Transaction{
		tx(models.SourceBankAccount, models.TypeWithdraw, "a", "2024-03-01T09:00:00Z", -12.5),
	}
	assert.Equal(t, PrepareRows(txs)[0].UID, PrepareRows(txs)[0].UID)
	assert.Equal(t, "2024-03-01T09:00:00Z|WITHDRAW|-12.5", PrepareRows(txs)[0].UID)
}
