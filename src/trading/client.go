// Package trading talks to the Trading212 API: account cash balance and the
// asynchronous transaction export flow (create job, poll, download CSV).
package trading

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"unify-server/src/config"
	"unify-server/src/models"
)

// ErrNoCredentials reports that no Trading212 API key is stored.
var ErrNoCredentials = errors.New("trading212: no credentials")

// CredentialStore supplies the stored API key.
type CredentialStore interface {
	Trading212Account(ctx context.Context) (*models.Trading212Account, error)
}

type Client struct {
	cfg    config.Trading212Config
	store  CredentialStore
	http   *http.Client
	logger zerolog.Logger

	pollInterval time.Duration
}

func NewClient(cfg config.Trading212Config, store CredentialStore, logger zerolog.Logger) *Client {
	return &Client{
		cfg:          cfg,
		store:        store,
		http:         &http.Client{Timeout: 60 * time.Second},
		logger:       logger.With().Str("component", "trading212").Logger(),
		pollInterval: 5 * time.Second,
	}
}

func (c *Client) apiKey(ctx context.Context) (string, error) {
	account, err := c.store.Trading212Account(ctx)
	if err != nil {
		return "", err
	}
	if account == nil || account.Key == "" {
		return "", ErrNoCredentials
	}
	return account.Key, nil
}

type cashResponse struct {
	Free     float64 `json:"free"`
	Total    float64 `json:"total"`
	Invested float64 `json:"invested"`
}

// Balance returns the account's total equity value.
func (c *Client) Balance(ctx context.Context) (float64, error) {
	var cash cashResponse
	if err := c.getJSON(ctx, c.cfg.BalanceURL, &cash); err != nil {
		return 0, err
	}
	return cash.Total, nil
}

type exportRequest struct {
	DataIncluded struct {
		IncludeDividends    bool `json:"includeDividends"`
		IncludeInterest     bool `json:"includeInterest"`
		IncludeOrders       bool `json:"includeOrders"`
		IncludeTransactions bool `json:"includeTransactions"`
	} `json:"dataIncluded"`
	TimeFrom string `json:"timeFrom"`
	TimeTo   string `json:"timeTo"`
}

type exportJob struct {
	ReportID     int64  `json:"reportId"`
	Status       string `json:"status"`
	DownloadLink string `json:"downloadLink"`
}

// CreateExportJob schedules a transaction history export for the window and
// returns the report id to poll.
func (c *Client) CreateExportJob(ctx context.Context, from, to time.Time) (int64, error) {
	req := exportRequest{
		TimeFrom: from.UTC().Format(time.RFC3339),
		TimeTo:   to.UTC().Format(time.RFC3339),
	}
	req.DataIncluded.IncludeDividends = true
	req.DataIncluded.IncludeInterest = true
	req.DataIncluded.IncludeTransactions = true

	body, err := json.Marshal(req)
	if err != nil {
		return 0, err
	}

	key, err := c.apiKey(ctx)
	if err != nil {
		return 0, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.ExportURL, bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	httpReq.Header.Set("Authorization", key)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return 0, fmt.Errorf("trading212: export create status %d: %s", resp.StatusCode, raw)
	}

	var job exportJob
	if err := json.NewDecoder(resp.Body).Decode(&job); err != nil {
		return 0, err
	}
	return job.ReportID, nil
}

// WaitForExport polls the export listing until the report finishes and
// returns its download link. The caller bounds the wait via ctx.
func (c *Client) WaitForExport(ctx context.Context, reportID int64) (string, error) {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		var jobs []exportJob
		if err := c.getJSON(ctx, c.cfg.ExportURL, &jobs); err != nil {
			return "", err
		}
		for _, job := range jobs {
			if job.ReportID != reportID {
				continue
			}
			switch job.Status {
			case "Finished", "FINISHED":
				return job.DownloadLink, nil
			case "Failed", "FAILED", "Canceled", "CANCELED":
				return "", fmt.Errorf("trading212: export %d %s", reportID, job.Status)
			}
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-ticker.C:
		}
	}
}

// DownloadCSV fetches the finished export. The link is pre-signed, so no
// Authorization header is sent.
func (c *Client) DownloadCSV(ctx context.Context, link string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("trading212: download status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// Export runs the full flow and returns the window's normalized transactions.
func (c *Client) Export(ctx context.Context, from, to time.Time) ([]models.Transaction, error) {
	reportID, err := c.CreateExportJob(ctx, from, to)
	if err != nil {
		return nil, err
	}
	c.logger.Info().Int64("report_id", reportID).Msg("export scheduled")

	link, err := c.WaitForExport(ctx, reportID)
	if err != nil {
		return nil, err
	}
	raw, err := c.DownloadCSV(ctx, link)
	if err != nil {
		return nil, err
	}
	return ParseCSV(raw, c.logger)
}

func (c *Client) getJSON(ctx context.Context, url string, out interface{}) error {
	key, err := c.apiKey(ctx)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", key)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("trading212: status %d: %s", resp.StatusCode, raw)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
