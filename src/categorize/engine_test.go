package categorize

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"unify-server/src/models"
)

// fakeProvider counts reads so batch operations can be checked for
// fetch-once behaviour.
type fakeProvider struct {
	rules     []models.CategoryRule
	overrides models.TransactionCategoryMap

	ruleReads     int
	overrideReads int
}

func (f *fakeProvider) ListRules(ctx context.Context) ([]models.CategoryRule, error) {
	f.ruleReads++
	return f.rules, nil
}

func (f *fakeProvider) CreateRule(ctx context.Context, rule models.CategoryRule) (models.CategoryRule, error) {
	f.rules = append(f.rules, rule)
	return rule, nil
}

func (f *fakeProvider) UpdateRule(ctx context.Context, rule models.CategoryRule) (models.CategoryRule, error) {
	return rule, nil
}

func (f *fakeProvider) DeleteRule(ctx context.Context, id string) error { return nil }

func (f *fakeProvider) ListOverrides(ctx context.Context) (models.TransactionCategoryMap, error) {
	f.overrideReads++
	if f.overrides == nil {
		return models.TransactionCategoryMap{}, nil
	}
	return f.overrides, nil
}

func (f *fakeProvider) SetOverride(ctx context.Context, reference, category string) error {
	return nil
}

func (f *fakeProvider) RemoveOverride(ctx context.Context, reference string) error { return nil }

func rule(name string, keywords ...string) models.CategoryRule {
	return models.CategoryRule{ID: name, Name: name, Keywords: keywords, Color: "#fff", Icon: "lucide:tag"}
}

func TestMatchRulesFirstRuleWins(t *testing.T) {
	rules := []models.CategoryRule{
		rule("Groceries", "tesco", "sainsbury"),
		rule("Everything", "e"),
	}

	match := MatchRules(rules, nil, "TESCO STORES 1234", "")
	assert.Equal(t, "Groceries", match.Category)
	require.NotNil(t, match.Rule)
	assert.Equal(t, "Groceries", match.Rule.Name)
	assert.False(t, match.IsUncategorized)
}

func TestMatchRulesLowercasesAndTrims(t *testing.T) {
	rules := []models.CategoryRule{rule("Coffee", "  CAFE  ")}

	match := MatchRules(rules, nil, "  Corner Cafe Ltd  ", "")
	assert.Equal(t, "Coffee", match.Category)
}

func TestMatchRulesUncategorizedFallback(t *testing.T) {
	rules := []models.CategoryRule{rule("Groceries", "tesco")}

	match := MatchRules(rules, nil, "Something else entirely", "tx-1")
	assert.Equal(t, Uncategorized, match.Category)
	assert.True(t, match.IsUncategorized)
	assert.Nil(t, match.Rule)
}

func TestMatchRulesOverridePrecedence(t *testing.T) {
	rules := []models.CategoryRule{rule("Groceries", "tesco")}
	overrides := models.TransactionCategoryMap{"tx-1": "Work Lunch"}

	// The description matches Groceries, but the override must win.
	match := MatchRules(rules, overrides, "tesco express", "tx-1")
	assert.Equal(t, "Work Lunch", match.Category)
	assert.False(t, match.IsUncategorized)
	// No rule named "Work Lunch" exists; that is not an error.
	assert.Nil(t, match.Rule)
}

func TestMatchRulesOverrideResolvesOwningRule(t *testing.T) {
	rules := []models.CategoryRule{rule("Groceries", "tesco"), rule("Transport", "tfl")}
	overrides := models.TransactionCategoryMap{"tx-9": "Transport"}

	match := MatchRules(rules, overrides, "tesco express", "tx-9")
	assert.Equal(t, "Transport", match.Category)
	require.NotNil(t, match.Rule)
	assert.Equal(t, "Transport", match.Rule.Name)
}

func TestCategorizeAllLoadsProviderOnce(t *testing.T) {
	provider := &fakeProvider{
		rules: []models.CategoryRule{rule("Groceries", "tesco")},
	}
	engine := NewEngine(provider)

	txs := make([]models.Transaction, 50)
	for i := range txs {
		txs[i] = models.Transaction{Reference: "tx", Description: "tesco"}
	}

	out, err := engine.CategorizeAll(context.Background(), txs)
	require.NoError(t, err)
	require.Len(t, out, 50)
	assert.Equal(t, 1, provider.ruleReads)
	assert.Equal(t, 1, provider.overrideReads)
	for _, tx := range out {
		assert.Equal(t, "Groceries", tx.Category)
	}
}

func TestCategorizeAllDoesNotMutateInput(t *testing.T) {
	engine := NewEngine(&fakeProvider{rules: []models.CategoryRule{rule("Groceries", "tesco")}})
	in := []models.Transaction{{Reference: "a", Description: "tesco"}}

	out, err := engine.CategorizeAll(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "Groceries", out[0].Category)
	assert.Empty(t, in[0].Category)
}
