package models

import "time"

type AccountInfo struct {
	AccountID   string  `json:"account_id"`
	DisplayName string  `json:"display_name,omitempty"`
	Currency    string  `json:"currency,omitempty"`
	Type        string  `json:"type,omitempty"`
	Balance     float64 `json:"balance,omitempty"`
}

type CardInfo struct {
	AccountID   string  `json:"account_id"`
	DisplayName string  `json:"display_name,omitempty"`
	Currency    string  `json:"currency,omitempty"`
	CardNetwork string  `json:"card_network,omitempty"`
	CardType    string  `json:"card_type,omitempty"`
	Balance     float64 `json:"balance,omitempty"`
	CreditLimit float64 `json:"credit_limit,omitempty"`
}

// TrueLayerAccount is the stored provider connection: the token set plus the
// account and card listings discovered at connect time.
type TrueLayerAccount struct {
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token"`
	ExpiresAt    time.Time     `json:"expires_at"`
	Accounts     []AccountInfo `json:"accounts"`
	Cards        []CardInfo    `json:"cards"`
}

type Trading212Account struct {
	Key     string `json:"key"`
	Secret  string `json:"secret"`
	AddedAt string `json:"addedAt"`
}

// UserConfig is the single central connection record. LastSyncedAt drives the
// staleness check for every source.
type UserConfig struct {
	TrueLayer    *TrueLayerAccount  `json:"trueLayerAccount,omitempty"`
	Trading212   *Trading212Account `json:"trading212Account,omitempty"`
	LastSyncedAt string             `json:"lastSyncedAt,omitempty"`
}
