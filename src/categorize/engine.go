// Package categorize assigns spending categories to transactions from
// user-defined keyword rules, with per-transaction manual overrides taking
// precedence over rule matching.
package categorize

import (
	"context"
	"strings"

	"unify-server/src/models"
)

const Uncategorized = "Uncategorized"

const (
	defaultColor = "#6b7280"
	defaultIcon  = "lucide:folder"
)

// Provider is the rules/overrides storage collaborator. The live
// implementation is Postgres-backed; demo mode substitutes fixed read-only
// sample data and rejects mutations.
type Provider interface {
	ListRules(ctx context.Context) ([]models.CategoryRule, error)
	CreateRule(ctx context.Context, rule models.CategoryRule) (models.CategoryRule, error)
	UpdateRule(ctx context.Context, rule models.CategoryRule) (models.CategoryRule, error)
	DeleteRule(ctx context.Context, id string) error

	ListOverrides(ctx context.Context) (models.TransactionCategoryMap, error)
	SetOverride(ctx context.Context, reference, category string) error
	RemoveOverride(ctx context.Context, reference string) error
}

// Engine wraps a Provider and applies the matching precedence. Batch
// operations load rules and overrides once, not once per transaction.
type Engine struct {
	provider Provider
}

func NewEngine(provider Provider) *Engine {
	return &Engine{provider: provider}
}

func (e *Engine) load(ctx context.Context) ([]models.CategoryRule, models.TransactionCategoryMap, error) {
	rules, err := e.provider.ListRules(ctx)
	if err != nil {
		return nil, nil, err
	}
	overrides, err := e.provider.ListOverrides(ctx)
	if err != nil {
		return nil, nil, err
	}
	return rules, overrides, nil
}

// Match categorizes a single description, honouring any override stored for
// the reference.
func (e *Engine) Match(ctx context.Context, description, reference string) (models.CategoryMatch, error) {
	rules, overrides, err := e.load(ctx)
	if err != nil {
		return models.CategoryMatch{}, err
	}
	return MatchRules(rules, overrides, description, reference), nil
}

// CategorizeAll returns a copy of the transactions with Category set. The
// inputs are never mutated.
func (e *Engine) CategorizeAll(ctx context.Context, txs []models.Transaction) ([]models.Transaction, error) {
	rules, overrides, err := e.load(ctx)
	if err != nil {
		return nil, err
	}
	return Apply(rules, overrides, txs), nil
}

// CategoryStats groups the transactions by category and computes spend
// totals and percentages.
func (e *Engine) CategoryStats(ctx context.Context, txs []models.Transaction) ([]models.CategoryStats, error) {
	rules, overrides, err := e.load(ctx)
	if err != nil {
		return nil, err
	}
	return CalculateCategoryStats(rules, overrides, txs), nil
}

// MatchRules applies the precedence order: manual override first, then the
// first rule (in stored order) with a keyword contained in the lowercased,
// trimmed description, then Uncategorized.
func MatchRules(rules []models.CategoryRule, overrides models.TransactionCategoryMap, description, reference string) models.CategoryMatch {
	if reference != "" {
		if category, ok := overrides[reference]; ok && category != "" {
			// Rule lookup by name is best-effort; a missing rule is
			// not an error.
			return models.CategoryMatch{
				Category: category,
				Rule:     findRule(rules, category),
			}
		}
	}

	desc := strings.TrimSpace(strings.ToLower(description))
	for i := range rules {
		for _, keyword := range rules[i].Keywords {
			kw := strings.TrimSpace(strings.ToLower(keyword))
			if kw != "" && strings.Contains(desc, kw) {
				return models.CategoryMatch{
					Category: rules[i].Name,
					Rule:     &rules[i],
				}
			}
		}
	}

	return models.CategoryMatch{Category: Uncategorized, IsUncategorized: true}
}

// Apply categorizes a batch against already-loaded rules and overrides.
func Apply(rules []models.CategoryRule, overrides models.TransactionCategoryMap, txs []models.Transaction) []models.Transaction {
	out := make([]models.Transaction, len(txs))
	for i, tx := range txs {
		match := MatchRules(rules, overrides, tx.Description, tx.Reference)
		tx.Category = match.Category
		out[i] = tx
	}
	return out
}

func findRule(rules []models.CategoryRule, name string) *models.CategoryRule {
	for i := range rules {
		if rules[i].Name == name {
			return &rules[i]
		}
	}
	return nil
}
