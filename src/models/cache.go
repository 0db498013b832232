package models

// CachedTransactions is the per-source cache payload owned by the refresh
// coordinator. The pipeline only ever reads snapshots of it.
type CachedTransactions struct {
	Transactions     []Transaction `json:"transactions"`
	TransactionCount int           `json:"transactionCount"`
	LastUpdated      string        `json:"lastUpdated"`
	Balance          float64       `json:"balance,omitempty"`
}

// CachedAccountData holds one bank account's transactions. Each account is a
// sub-resource merged individually, keyed by its account id.
type CachedAccountData struct {
	Account          AccountInfo   `json:"account"`
	Balance          float64       `json:"balance"`
	Transactions     []Transaction `json:"transactions"`
	TransactionCount int           `json:"transactionCount"`
	LastUpdated      string        `json:"lastUpdated"`
}

type CachedCardData struct {
	Card             CardInfo      `json:"card"`
	Balance          float64       `json:"balance"`
	Transactions     []Transaction `json:"transactions"`
	TransactionCount int           `json:"transactionCount"`
	LastUpdated      string        `json:"lastUpdated"`
}
