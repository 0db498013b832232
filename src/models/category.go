package models

import "time"

// CategoryRule matches transactions whose description contains any of its
// keywords. Rules are evaluated in stored order; the first match wins.
type CategoryRule struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Keywords  []string  `json:"keywords"`
	Color     string    `json:"color"`
	Icon      string    `json:"icon"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TransactionCategoryMap maps a transaction reference to the category name a
// user assigned by hand. Overrides beat rule matching for that reference.
type TransactionCategoryMap map[string]string

type CategoryMatch struct {
	Category        string        `json:"category"`
	Rule            *CategoryRule `json:"rule,omitempty"`
	IsUncategorized bool          `json:"isUncategorized"`
}

type CategoryStats struct {
	CategoryName     string        `json:"categoryName"`
	TotalAmount      float64       `json:"totalAmount"`
	Percentage       float64       `json:"percentage"`
	TransactionCount int           `json:"transactionCount"`
	Color            string        `json:"color"`
	Icon             string        `json:"icon"`
	Transactions     []Transaction `json:"transactions"`
	Rule             *CategoryRule `json:"rule,omitempty"`
}
