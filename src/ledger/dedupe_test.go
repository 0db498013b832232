package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"unify-server/src/models"
)

func TestFilterCardDuplicates(t *testing.T) {
	tests := []struct {
		name string
		card models.Transaction
		bank models.Transaction
		want []string
	}{
		{
			name: "same day same amount drops the card leg",
			card: mkTx(models.SourceCreditCard, models.TypeWithdraw, "card-1", "2024-06-10T18:30:00Z", -25.99),
			bank: mkTx(models.SourceBankAccount, models.TypeWithdraw, "bank-1", "2024-06-10T07:00:00Z", -25.99),
			want: []string{"bank-1"},
		},
		{
			name: "different calendar day keeps both",
			card: mkTx(models.SourceCreditCard, models.TypeWithdraw, "card-1", "2024-06-11T00:30:00Z", -25.99),
			bank: mkTx(models.SourceBankAccount, models.TypeWithdraw, "bank-1", "2024-06-10T23:30:00Z", -25.99),
			want: []string{"card-1", "bank-1"},
		},
		{
			name: "amount differing in the second decimal keeps both",
			card: mkTx(models.SourceCreditCard, models.TypeWithdraw, "card-1", "2024-06-10T18:30:00Z", -25.98),
			bank: mkTx(models.SourceBankAccount, models.TypeWithdraw, "bank-1", "2024-06-10T07:00:00Z", -25.99),
			want: []string{"card-1", "bank-1"},
		},
		{
			name: "positive card entries are never dropped",
			card: mkTx(models.SourceCreditCard, models.TypeDeposit, "card-cashback", "2024-06-10T18:30:00Z", 25.99),
			bank: mkTx(models.SourceBankAccount, models.TypeWithdraw, "bank-1", "2024-06-10T07:00:00Z", -25.99),
			want: []string{"card-cashback", "bank-1"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out := FilterCardDuplicates([]models.Transaction{tc.card, tc.bank})
			assert.Equal(t, tc.want, refs(out))
		})
	}
}

func TestFilterCardDuplicatesIgnoresTrading(t *testing.T) {
	trading := mkTx(models.SourceTrading212, models.TypeWithdraw, "t212-1", "2024-06-10T12:00:00Z", -40)
	bank := mkTx(models.SourceBankAccount, models.TypeWithdraw, "bank-1", "2024-06-10T12:00:00Z", -40)

	out := FilterCardDuplicates([]models.Transaction{trading, bank})
	assert.Equal(t, []string{"t212-1", "bank-1"}, refs(out))
}
