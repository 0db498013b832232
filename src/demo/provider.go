package demo

import (
	"context"
	"errors"
	"time"

	"unify-server/src/models"
)

// ErrReadOnly is returned for any mutation attempted against demo data.
var ErrReadOnly = errors.New("demo mode is read-only")

// Provider serves a fixed rule set and rejects all writes.
type Provider struct{}

func NewProvider() *Provider { return &Provider{} }

var demoRules = []models.CategoryRule{
	{ID: "demo-rule-groceries", Name: "Groceries", Keywords: []string{"tesco", "sainsbury", "aldi"}, Color: "#22c55e", Icon: "lucide:shopping-cart"},
	{ID: "demo-rule-rent", Name: "Rent", Keywords: []string{"rent"}, Color: "#ef4444", Icon: "lucide:home"},
	{ID: "demo-rule-transport", Name: "Transport", Keywords: []string{"tfl", "trainline", "uber"}, Color: "#3b82f6", Icon: "lucide:train"},
	{ID: "demo-rule-eating-out", Name: "Eating Out", Keywords: []string{"pret", "nando", "deliveroo"}, Color: "#f97316", Icon: "lucide:utensils"},
	{ID: "demo-rule-shopping", Name: "Shopping", Keywords: []string{"amazon"}, Color: "#a855f7", Icon: "lucide:shopping-bag"},
}

func (p *Provider) ListRules(context.Context) ([]models.CategoryRule, error) {
	rules := make([]models.CategoryRule, len(demoRules))
	copy(rules, demoRules)
	for i := range rules {
		rules[i].CreatedAt = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
		rules[i].UpdatedAt = rules[i].CreatedAt
	}
	return rules, nil
}

func (p *Provider) CreateRule(context.Context, models.CategoryRule) (models.CategoryRule, error) {
	return models.CategoryRule{}, ErrReadOnly
}

func (p *Provider) UpdateRule(context.Context, models.CategoryRule) (models.CategoryRule, error) {
	return models.CategoryRule{}, ErrReadOnly
}

func (p *Provider) DeleteRule(context.Context, string) error {
	return ErrReadOnly
}

func (p *Provider) ListOverrides(context.Context) (models.TransactionCategoryMap, error) {
	return models.TransactionCategoryMap{}, nil
}

func (p *Provider) SetOverride(context.Context, string, string) error {
	return ErrReadOnly
}

func (p *Provider) RemoveOverride(context.Context, string) error {
	return ErrReadOnly
}
