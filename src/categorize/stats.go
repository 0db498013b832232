package categorize

import (
	"math"
	"sort"
	"time"

	"unify-server/src/models"
)

// CalculateCategoryStats groups categorized transactions by category.
// Spend per category sums the absolute values of negative amounts only;
// refunds and other positive entries contribute to the count but not the
// spend total. Each group's transactions are sorted newest-first and the
// result is ordered by spend descending.
func CalculateCategoryStats(rules []models.CategoryRule, overrides models.TransactionCategoryMap, txs []models.Transaction) []models.CategoryStats {
	categorized := Apply(rules, overrides, txs)

	groups := make(map[string][]models.Transaction)
	order := make([]string, 0)
	for _, tx := range categorized {
		category := tx.Category
		if category == "" {
			category = Uncategorized
		}
		if _, ok := groups[category]; !ok {
			order = append(order, category)
		}
		groups[category] = append(groups[category], tx)
	}

	var totalSpending float64
	for _, tx := range categorized {
		if tx.Amount < 0 {
			totalSpending += math.Abs(tx.Amount)
		}
	}

	stats := make([]models.CategoryStats, 0, len(groups))
	for _, name := range order {
		group := groups[name]

		var spending float64
		for _, tx := range group {
			if tx.Amount < 0 {
				spending += math.Abs(tx.Amount)
			}
		}

		percentage := 0.0
		if totalSpending > 0 {
			percentage = spending / totalSpending * 100
		}

		sorted := make([]models.Transaction, len(group))
		copy(sorted, group)
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Time().After(sorted[j].Time())
		})

		rule := findRule(rules, name)
		color, icon := defaultColor, defaultIcon
		if rule != nil {
			color, icon = rule.Color, rule.Icon
		}

		stats = append(stats, models.CategoryStats{
			CategoryName:     name,
			TotalAmount:      spending,
			Percentage:       percentage,
			TransactionCount: len(group),
			Color:            color,
			Icon:             icon,
			Transactions:     sorted,
			Rule:             rule,
		})
	}

	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].TotalAmount > stats[j].TotalAmount
	})
	return stats
}

// MonthCategoryStats composes the reimbursement adjustment on top of the base
// stats for one calendar window: positive non-interest transactions in the
// window count as reimbursements and are subtracted from their category's
// spend total; categories whose adjusted total drops to zero or below are
// dropped.
func MonthCategoryStats(rules []models.CategoryRule, overrides models.TransactionCategoryMap, txs []models.Transaction, start, end time.Time) []models.CategoryStats {
	var spending, reimbursements []models.Transaction
	for _, tx := range Apply(rules, overrides, txs) {
		when := tx.Time()
		if when.Before(start) || when.After(end) {
			continue
		}
		if tx.Amount < 0 {
			spending = append(spending, tx)
		} else if tx.Amount > 0 && tx.Type != models.TypeInterestCashback {
			reimbursements = append(reimbursements, tx)
		}
	}
	if len(spending) == 0 {
		return nil
	}

	base := CalculateCategoryStats(rules, overrides, spending)

	reimbursedByCategory := make(map[string]float64)
	for _, tx := range reimbursements {
		if tx.Category != "" && tx.Category != Uncategorized {
			reimbursedByCategory[tx.Category] += tx.Amount
		}
	}

	out := make([]models.CategoryStats, 0, len(base))
	for _, stat := range base {
		stat.TotalAmount -= reimbursedByCategory[stat.CategoryName]
		if stat.TotalAmount > 0 {
			out = append(out, stat)
		}
	}
	return out
}
