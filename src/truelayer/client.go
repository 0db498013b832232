// Package truelayer talks to the TrueLayer data API for bank account and
// credit card transactions and balances, refreshing OAuth tokens as needed.
package truelayer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"unify-server/src/config"
	"unify-server/src/models"
)

// ErrNotConnected reports that no TrueLayer connection is stored, or that an
// expired connection was cleared after the provider rejected its tokens.
var ErrNotConnected = errors.New("truelayer: not connected")

// TokenStore persists the provider connection. Clear is called when the
// provider rejects a refresh so the UI can prompt for a reconnect.
type TokenStore interface {
	TrueLayerAccount(ctx context.Context) (*models.TrueLayerAccount, error)
	SaveTrueLayerAccount(ctx context.Context, account *models.TrueLayerAccount) error
	ClearTrueLayerAccount(ctx context.Context) error
}

type Client struct {
	cfg    config.TrueLayerConfig
	store  TokenStore
	http   *http.Client
	logger zerolog.Logger
}

func NewClient(cfg config.TrueLayerConfig, store TokenStore, logger zerolog.Logger) *Client {
	return &Client{
		cfg:    cfg,
		store:  store,
		http:   &http.Client{Timeout: 30 * time.Second},
		logger: logger.With().Str("component", "truelayer").Logger(),
	}
}

// AuthLink builds the hosted consent URL for connecting a bank.
func (c *Client) AuthLink(state string) string {
	q := url.Values{}
	q.Set("response_type", "code")
	q.Set("client_id", c.cfg.ClientID)
	q.Set("redirect_uri", c.cfg.RedirectURI)
	q.Set("scope", "info accounts balance cards transactions offline_access")
	q.Set("state", state)
	return c.cfg.AuthURL + "/?" + q.Encode()
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

// ExchangeCode swaps the consent callback code for a token set, discovers the
// connection's accounts and cards, and stores the lot.
func (c *Client) ExchangeCode(ctx context.Context, code string) error {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("client_id", c.cfg.ClientID)
	form.Set("client_secret", c.cfg.ClientSecret)
	form.Set("redirect_uri", c.cfg.RedirectURI)
	form.Set("code", code)

	token, err := c.requestToken(ctx, form)
	if err != nil {
		return err
	}

	account := &models.TrueLayerAccount{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresAt:    time.Now().Add(time.Duration(token.ExpiresIn) * time.Second),
	}

	// Discover the connection's resources up front so later refreshes
	// know which accounts and cards to pull.
	accounts, err := c.fetchAccounts(ctx, token.AccessToken)
	if err != nil {
		return err
	}
	account.Accounts = accounts

	cards, err := c.fetchCards(ctx, token.AccessToken)
	if err != nil {
		// Not every bank connection exposes cards.
		c.logger.Warn().Err(err).Msg("card listing unavailable")
	} else {
		account.Cards = cards
	}

	return c.store.SaveTrueLayerAccount(ctx, account)
}

// accessToken returns a valid access token, refreshing when within a minute
// of expiry. A rejected refresh clears the stored connection.
func (c *Client) accessToken(ctx context.Context) (string, error) {
	account, err := c.store.TrueLayerAccount(ctx)
	if err != nil {
		return "", err
	}
	if account == nil || account.RefreshToken == "" {
		return "", ErrNotConnected
	}

	if time.Until(account.ExpiresAt) > time.Minute {
		return account.AccessToken, nil
	}

	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("client_id", c.cfg.ClientID)
	form.Set("client_secret", c.cfg.ClientSecret)
	form.Set("refresh_token", account.RefreshToken)

	token, err := c.requestToken(ctx, form)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && (apiErr.Status == http.StatusBadRequest || apiErr.Status == http.StatusUnauthorized) {
			c.logger.Warn().Msg("refresh token rejected, clearing connection")
			if clearErr := c.store.ClearTrueLayerAccount(ctx); clearErr != nil {
				c.logger.Error().Err(clearErr).Msg("failed to clear connection")
			}
			return "", ErrNotConnected
		}
		return "", err
	}

	account.AccessToken = token.AccessToken
	if token.RefreshToken != "" {
		account.RefreshToken = token.RefreshToken
	}
	account.ExpiresAt = time.Now().Add(time.Duration(token.ExpiresIn) * time.Second)
	if err := c.store.SaveTrueLayerAccount(ctx, account); err != nil {
		return "", err
	}
	return account.AccessToken, nil
}

func (c *Client) requestToken(ctx context.Context, form url.Values) (*tokenResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &APIError{Status: resp.StatusCode, Body: string(body)}
	}

	var token tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return nil, err
	}
	return &token, nil
}

// APIError is a non-2xx response from the data or auth API.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("truelayer: status %d: %s", e.Status, e.Body)
}

// Connection returns the stored account and card listings, or ErrNotConnected.
func (c *Client) Connection(ctx context.Context) (*models.TrueLayerAccount, error) {
	account, err := c.store.TrueLayerAccount(ctx)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrNotConnected
	}
	return account, nil
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	token, err := c.accessToken(ctx)
	if err != nil {
		return err
	}

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

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		c.logger.Warn().Int("status", resp.StatusCode).Str("path", path).Msg("auth rejected, clearing connection")
		if clearErr := c.store.ClearTrueLayerAccount(ctx); clearErr != nil {
			c.logger.Error().Err(clearErr).Msg("failed to clear connection")
		}
		return ErrNotConnected
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{Status: resp.StatusCode, Body: string(body)}
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
