package truelayer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"unify-server/src/models"
)

type resultsEnvelope[T any] struct {
	Results []T `json:"results"`
}

type apiAccount struct {
	AccountID   string `json:"account_id"`
	DisplayName string `json:"display_name"`
	Currency    string `json:"currency"`
	AccountType string `json:"account_type"`
}

type apiCard struct {
	AccountID   string `json:"account_id"`
	DisplayName string `json:"display_name"`
	Currency    string `json:"currency"`
	CardNetwork string `json:"card_network"`
	CardType    string `json:"card_type"`
}

type apiBalance struct {
	Current   float64 `json:"current"`
	Available float64 `json:"available"`
}

type apiTransaction struct {
	TransactionID       string  `json:"transaction_id"`
	Timestamp           string  `json:"timestamp"`
	Description         string  `json:"description"`
	Amount              float64 `json:"amount"`
	TransactionType     string  `json:"transaction_type"`
	TransactionCategory string  `json:"transaction_category"`
}

func (c *Client) fetchAccounts(ctx context.Context, token string) ([]models.AccountInfo, error) {
	var env resultsEnvelope[apiAccount]
	if err := c.getWithToken(ctx, token, "/accounts", &env); err != nil {
		return nil, err
	}
	accounts := make([]models.AccountInfo, 0, len(env.Results))
	for _, a := range env.Results {
		accounts = append(accounts, models.AccountInfo{
			AccountID:   a.AccountID,
			DisplayName: a.DisplayName,
			Currency:    a.Currency,
			Type:        a.AccountType,
		})
	}
	return accounts, nil
}

func (c *Client) fetchCards(ctx context.Context, token string) ([]models.CardInfo, error) {
	var env resultsEnvelope[apiCard]
	if err := c.getWithToken(ctx, token, "/cards", &env); err != nil {
		return nil, err
	}
	cards := make([]models.CardInfo, 0, len(env.Results))
	for _, card := range env.Results {
		cards = append(cards, models.CardInfo{
			AccountID:   card.AccountID,
			DisplayName: card.DisplayName,
			Currency:    card.Currency,
			CardNetwork: card.CardNetwork,
			CardType:    card.CardType,
		})
	}
	return cards, nil
}

func (c *Client) AccountBalance(ctx context.Context, accountID string) (float64, error) {
	var env resultsEnvelope[apiBalance]
	if err := c.get(ctx, "/accounts/"+url.PathEscape(accountID)+"/balance", &env); err != nil {
		return 0, err
	}
	if len(env.Results) == 0 {
		return 0, nil
	}
	return env.Results[0].Current, nil
}

func (c *Client) CardBalance(ctx context.Context, accountID string) (float64, error) {
	var env resultsEnvelope[apiBalance]
	if err := c.get(ctx, "/cards/"+url.PathEscape(accountID)+"/balance", &env); err != nil {
		return 0, err
	}
	if len(env.Results) == 0 {
		return 0, nil
	}
	return env.Results[0].Current, nil
}

// AccountTransactions fetches one account's transactions within the window.
func (c *Client) AccountTransactions(ctx context.Context, accountID string, from, to time.Time) ([]models.Transaction, error) {
	path := fmt.Sprintf("/accounts/%s/transactions?from=%s&to=%s",
		url.PathEscape(accountID),
		url.QueryEscape(from.UTC().Format(time.RFC3339)),
		url.QueryEscape(to.UTC().Format(time.RFC3339)))

	var env resultsEnvelope[apiTransaction]
	if err := c.get(ctx, path, &env); err != nil {
		return nil, err
	}

	txs := make([]models.Transaction, 0, len(env.Results))
	for _, raw := range env.Results {
		txs = append(txs, models.Transaction{
			Type:        classify(raw),
			Amount:      raw.Amount,
			Reference:   raw.TransactionID,
			DateTime:    raw.Timestamp,
			Source:      models.SourceBankAccount,
			Description: raw.Description,
		})
	}
	return txs, nil
}

// CardTransactions fetches one card's transactions within the window. Card
// spend arrives as positive debits; amounts are flipped negative so cards and
// accounts aggregate on the same sign convention.
func (c *Client) CardTransactions(ctx context.Context, accountID string, from, to time.Time) ([]models.Transaction, error) {
	path := fmt.Sprintf("/cards/%s/transactions?from=%s&to=%s",
		url.PathEscape(accountID),
		url.QueryEscape(from.UTC().Format(time.RFC3339)),
		url.QueryEscape(to.UTC().Format(time.RFC3339)))

	var env resultsEnvelope[apiTransaction]
	if err := c.get(ctx, path, &env); err != nil {
		return nil, err
	}

	txs := make([]models.Transaction, 0, len(env.Results))
	for _, raw := range env.Results {
		amount := raw.Amount
		if strings.EqualFold(raw.TransactionType, "DEBIT") {
			amount = -math.Abs(raw.Amount)
		}
		txs = append(txs, models.Transaction{
			Type:        classify(raw),
			Amount:      amount,
			Reference:   raw.TransactionID,
			DateTime:    raw.Timestamp,
			Source:      models.SourceCreditCard,
			Description: raw.Description,
		})
	}
	return txs, nil
}

// classify maps provider categories onto the shared transaction types.
func classify(raw apiTransaction) models.TransactionType {
	switch strings.ToUpper(raw.TransactionCategory) {
	case "INTEREST", "CASHBACK":
		return models.TypeInterestCashback
	case "TRANSFER", "BILL_PAYMENT", "DIRECT_DEBIT", "STANDING_ORDER":
		return models.TypeTransfer
	}
	if strings.EqualFold(raw.TransactionType, "CREDIT") {
		return models.TypeDeposit
	}
	return models.TypeWithdraw
}

// getWithToken is get with an explicit token, for calls made during the
// connect flow before the token set is stored.
func (c *Client) getWithToken(ctx context.Context, token, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.APIBase+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{Status: resp.StatusCode, Body: string(body)}
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
