package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"unify-server/src/models"
)

func CreateCategoryRule(ctx context.Context, pool *pgxpool.Pool, rule *models.CategoryRule) (*models.CategoryRule, error) {
	query := `
		INSERT INTO category_rules (id, name, keywords, color, icon)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, name, keywords, color, icon, created_at, updated_at
	`
	id := rule.ID
	if id == "" {
		id = uuid.NewString()
	}
	var r models.CategoryRule
	err := pool.QueryRow(ctx, query, id, rule.Name, rule.Keywords, rule.Color, rule.Icon).
		Scan(&r.ID, &r.Name, &r.Keywords, &r.Color, &r.Icon, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func GetAllCategoryRules(ctx context.Context, pool *pgxpool.Pool) ([]models.CategoryRule, error) {
	query := `
		SELECT id, name, keywords, color, icon, created_at, updated_at
		FROM category_rules
		ORDER BY created_at, id
	`
	rows, err := pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []models.CategoryRule
	for rows.Next() {
		var r models.CategoryRule
		err := rows.Scan(&r.ID, &r.Name, &r.Keywords, &r.Color, &r.Icon, &r.CreatedAt, &r.UpdatedAt)
		if err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}
	return rules, rows.Err()
}

func UpdateCategoryRule(ctx context.Context, pool *pgxpool.Pool, rule *models.CategoryRule) (*models.CategoryRule, error) {
	query := `
		UPDATE category_rules
		SET name = $1, keywords = $2, color = $3, icon = $4, updated_at = NOW()
		WHERE id = $5
		RETURNING id, name, keywords, color, icon, created_at, updated_at
	`
	var r models.CategoryRule
	err := pool.QueryRow(ctx, query, rule.Name, rule.Keywords, rule.Color, rule.Icon, rule.ID).
		Scan(&r.ID, &r.Name, &r.Keywords, &r.Color, &r.Icon, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func DeleteCategoryRule(ctx context.Context, pool *pgxpool.Pool, id string) error {
	query := `DELETE FROM category_rules WHERE id = $1`
	_, err := pool.Exec(ctx, query, id)
	return err
}

func GetAllCategoryOverrides(ctx context.Context, pool *pgxpool.Pool) (models.TransactionCategoryMap, error) {
	query := `SELECT reference, category FROM category_overrides`
	rows, err := pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	overrides := make(models.TransactionCategoryMap)
	for rows.Next() {
		var reference, category string
		if err := rows.Scan(&reference, &category); err != nil {
			return nil, err
		}
		overrides[reference] = category
	}
	return overrides, rows.Err()
}

func SetCategoryOverride(ctx context.Context, pool *pgxpool.Pool, reference, category string) error {
	query := `
		INSERT INTO category_overrides (reference, category, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (reference) DO UPDATE SET category = EXCLUDED.category, updated_at = NOW()
	`
	_, err := pool.Exec(ctx, query, reference, category)
	return err
}

func DeleteCategoryOverride(ctx context.Context, pool *pgxpool.Pool, reference string) error {
	query := `DELETE FROM category_overrides WHERE reference = $1`
	_, err := pool.Exec(ctx, query, reference)
	return err
}

// CategoryStore adapts the SQL functions to the categorize.Provider
// interface.
type CategoryStore struct {
	Pool *pgxpool.Pool
}

func (s *CategoryStore) ListRules(ctx context.Context) ([]models.CategoryRule, error) {
	return GetAllCategoryRules(ctx, s.Pool)
}

func (s *CategoryStore) CreateRule(ctx context.Context, rule models.CategoryRule) (models.CategoryRule, error) {
	created, err := CreateCategoryRule(ctx, s.Pool, &rule)
	if err != nil {
		return models.CategoryRule{}, err
	}
	return *created, nil
}

func (s *CategoryStore) UpdateRule(ctx context.Context, rule models.CategoryRule) (models.CategoryRule, error) {
	updated, err := UpdateCategoryRule(ctx, s.Pool, &rule)
	if err != nil {
		return models.CategoryRule{}, err
	}
	return *updated, nil
}

func (s *CategoryStore) DeleteRule(ctx context.Context, id string) error {
	return DeleteCategoryRule(ctx, s.Pool, id)
}

func (s *CategoryStore) ListOverrides(ctx context.Context) (models.TransactionCategoryMap, error) {
	return GetAllCategoryOverrides(ctx, s.Pool)
}

func (s *CategoryStore) SetOverride(ctx context.Context, reference, category string) error {
	return SetCategoryOverride(ctx, s.Pool, reference, category)
}

func (s *CategoryStore) RemoveOverride(ctx context.Context, reference string) error {
	return DeleteCategoryOverride(ctx, s.Pool, reference)
}
