package models

import "time"

type TransactionType string

const (
	TypeDeposit          TransactionType = "DEPOSIT"
	TypeWithdraw         TransactionType = "WITHDRAW"
	TypeTransfer         TransactionType = "TRANSFER"
	TypeInterestCashback TransactionType = "INTEREST/CASHBACK"
)

type Source string

const (
	SourceBankAccount Source = "bank-account"
	SourceCreditCard  Source = "credit-card"
	SourceTrading212  Source = "trading212"
)

// Transaction is the canonical unit shared by every source. Reference is
// unique within one source only; cross-source correlation goes through
// amount/time heuristics, never reference equality.
type Transaction struct {
	Type        TransactionType `json:"type"`
	Amount      float64         `json:"amount"`
	Reference   string          `json:"reference"`
	DateTime    string          `json:"dateTime"`
	Source      Source          `json:"source"`
	Description string          `json:"description,omitempty"`
	Category    string          `json:"category,omitempty"`
	// Timestamp is the raw provider timestamp, kept as a fallback for
	// records that never got a normalised DateTime.
	Timestamp string `json:"timestamp,omitempty"`
}

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parseWhen(s string) (time.Time, bool) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Time resolves the transaction's timestamp, preferring DateTime over the raw
// Timestamp field. Malformed or missing values resolve to the Unix epoch so
// sorting never fails on a bad record.
func (t Transaction) Time() time.Time {
	if ts, ok := parseWhen(t.DateTime); ok {
		return ts
	}
	if ts, ok := parseWhen(t.Timestamp); ok {
		return ts
	}
	return time.Unix(0, 0).UTC()
}

type CombinedFinancialData struct {
	Transactions []Transaction `json:"transactions"`
	TotalBalance float64       `json:"totalBalance"`
}
