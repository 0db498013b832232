package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"unify-server/src/categorize"
	"unify-server/src/models"
)

type fakeSource struct {
	accounts []models.CachedAccountData
	cards    []models.CachedCardData
	trading  models.CachedTransactions

	ensureFreshCalls int
	forceStaleCalls  int
	refreshCalls     int
}

func (f *fakeSource) Stale(context.Context) (bool, error) { return false, nil }

func (f *fakeSource) EnsureFresh(context.Context) error {
	f.ensureFreshCalls++
	return nil
}

func (f *fakeSource) ForceStale(context.Context) error {
	f.forceStaleCalls++
	return nil
}

func (f *fakeSource) RefreshAllAsync() { f.refreshCalls++ }

func (f *fakeSource) AccountsSnapshot(context.Context) ([]models.CachedAccountData, error) {
	return f.accounts, nil
}

func (f *fakeSource) CardsSnapshot(context.Context) ([]models.CachedCardData, error) {
	return f.cards, nil
}

func (f *fakeSource) TradingSnapshot(context.Context) (models.CachedTransactions, error) {
	return f.trading, nil
}

type staticProvider struct {
	rules     []models.CategoryRule
	overrides models.TransactionCategoryMap
}

func (p *staticProvider) ListRules(context.Context) ([]models.CategoryRule, error) {
	return p.rules, nil
}

func (p *staticProvider) CreateRule(_ context.Context, rule models.CategoryRule) (models.CategoryRule, error) {
	return rule, nil
}

func (p *staticProvider) UpdateRule(_ context.Context, rule models.CategoryRule) (models.CategoryRule, error) {
	return rule, nil
}

func (p *staticProvider) DeleteRule(context.Context, string) error { return nil }

func (p *staticProvider) ListOverrides(context.Context) (models.TransactionCategoryMap, error) {
	if p.overrides == nil {
		return models.TransactionCategoryMap{}, nil
	}
	return p.overrides, nil
}

func (p *staticProvider) SetOverride(context.Context, string, string) error { return nil }
func (p *staticProvider) RemoveOverride(context.Context, string) error      { return nil }

func seededSource() *fakeSource {
	return &fakeSource{
		accounts: []models.CachedAccountData{{
			Account: models.AccountInfo{AccountID: "acc-1"},
			Balance: 1500,
			Transactions: []models.Transaction{
				{Type: models.TypeDeposit, Amount: 2500, Reference: "salary-1", DateTime: "2024-03-01T08:00:00Z", Source: models.SourceBankAccount, Description: "ACME PAYROLL"},
				{Type: models.TypeWithdraw, Amount: -45.20, Reference: "shop-1", DateTime: "2024-03-02T18:00:00Z", Source: models.SourceBankAccount, Description: "TESCO STORES"},
			},
		}},
		cards: []models.CachedCardData{{
			Card:    models.CardInfo{AccountID: "card-1"},
			Balance: 300,
			Transactions: []models.Transaction{
				// Same day and amount as shop-1, so the card leg is a
				// duplicate of the bank leg.
				{Type: models.TypeWithdraw, Amount: -45.20, Reference: "card-shop-1", DateTime: "2024-03-02T18:05:00Z", Source: models.SourceCreditCard, Description: "TESCO STORES"},
				{Type: models.TypeWithdraw, Amount: -12.00, Reference: "card-lunch-1", DateTime: "2024-03-03T13:00:00Z", Source: models.SourceCreditCard, Description: "PRET A MANGER"},
			},
		}},
		trading: models.CachedTransactions{
			Balance: 2000,
			Transactions: []models.Transaction{
				{Type: models.TypeDeposit, Amount: 200, Reference: "t212-dep-1", DateTime: "2024-03-04T10:00:00Z", Source: models.SourceTrading212, Description: "Deposit"},
			},
		},
	}
}

func TestGetTransactions(t *testing.T) {
	source := seededSource()
	engine := categorize.NewEngine(&staticProvider{rules: []models.CategoryRule{
		{ID: "r1", Name: "Groceries", Keywords: []string{"tesco"}},
	}})

	req := httptest.NewRequest(http.MethodGet, "/api/transactions", nil)
	rec := httptest.NewRecorder()
	GetTransactions(source, engine, zerolog.Nop())(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp models.CombinedFinancialData
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	// 1500 accounts + 2000 trading - 300 owed on the card.
	assert.Equal(t, 3200.0, resp.TotalBalance)

	refs := make([]string, 0, len(resp.Transactions))
	for _, tx := range resp.Transactions {
		refs = append(refs, tx.Reference)
	}
	assert.NotContains(t, refs, "card-shop-1", "card leg of a bank purchase is dropped")
	assert.Contains(t, refs, "shop-1")
	assert.Contains(t, refs, "card-lunch-1")

	for _, tx := range resp.Transactions {
		if tx.Reference == "shop-1" {
			assert.Equal(t, "Groceries", tx.Category)
		}
	}

	// Sorted ascending by date.
	for i := 1; i < len(resp.Transactions); i++ {
		assert.False(t, resp.Transactions[i].Time().Before(resp.Transactions[i-1].Time()))
	}

	assert.Equal(t, 1, source.ensureFreshCalls)
}

func TestGetTransactionRows(t *testing.T) {
	source := seededSource()
	engine := categorize.NewEngine(&staticProvider{})

	req := httptest.NewRequest(http.MethodGet, "/api/transactions/rows", nil)
	rec := httptest.NewRecorder()
	GetTransactionRows(source, engine, zerolog.Nop())(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var rows []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
	require.NotEmpty(t, rows)
	assert.NotEmpty(t, rows[0]["uid"])
}
