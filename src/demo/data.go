// Package demo serves deterministic sample data so the app can be explored
// without connecting a bank. All mutations are rejected upstream by the demo
// middleware; the provider here rejects them again as a backstop.
package demo

import (
	"context"
	"fmt"
	"time"

	"unify-server/src/models"
)

// Source is a drop-in replacement for the live refresh coordinator. It
// regenerates its snapshots relative to the current date so the sample data
// never looks stale.
type Source struct {
	now func() time.Time
}

func NewSource() *Source {
	return &Source{now: time.Now}
}

func (s *Source) Stale(context.Context) (bool, error) { return false, nil }
func (s *Source) EnsureFresh(context.Context) error   { return nil }
func (s *Source) ForceStale(context.Context) error    { return nil }
func (s *Source) RefreshAllAsync()                    {}

func (s *Source) AccountsSnapshot(context.Context) ([]models.CachedAccountData, error) {
	txs := s.accountTransactions()
	return []models.CachedAccountData{{
		Account:          models.AccountInfo{AccountID: "demo-account", DisplayName: "Demo Current Account", Currency: "GBP", Type: "TRANSACTION"},
		Balance:          3217.44,
		Transactions:     txs,
		TransactionCount: len(txs),
		LastUpdated:      s.now().UTC().Format(time.RFC3339),
	}}, nil
}

func (s *Source) CardsSnapshot(context.Context) ([]models.CachedCardData, error) {
	txs := s.cardTransactions()
	return []models.CachedCardData{{
		Card:             models.CardInfo{AccountID: "demo-card", DisplayName: "Demo Credit Card", Currency: "GBP", CardNetwork: "VISA"},
		Balance:          412.60,
		Transactions:     txs,
		TransactionCount: len(txs),
		LastUpdated:      s.now().UTC().Format(time.RFC3339),
	}}, nil
}

func (s *Source) TradingSnapshot(context.Context) (models.CachedTransactions, error) {
	txs := s.tradingTransactions()
	return models.CachedTransactions{
		Transactions:     txs,
		TransactionCount: len(txs),
		LastUpdated:      s.now().UTC().Format(time.RFC3339),
		Balance:          5230.18,
	}, nil
}

// day returns midnight-anchored times offset back from today.
func (s *Source) day(daysAgo int, hour int) string {
	t := s.now().UTC().AddDate(0, 0, -daysAgo)
	return time.Date(t.Year(), t.Month(), t.Day(), hour, 0, 0, 0, time.UTC).Format(time.RFC3339)
}

func (s *Source) accountTransactions() []models.Transaction {
	var txs []models.Transaction

	// Fortnightly salary over roughly four months.
	for daysAgo := 0; daysAgo <= 120; daysAgo += 14 {
		txs = append(txs, models.Transaction{
			Type:        models.TypeDeposit,
			Amount:      1450.00,
			Reference:   fmt.Sprintf("demo-salary-%d", daysAgo),
			DateTime:    s.day(daysAgo+2, 7),
			Source:      models.SourceBankAccount,
			Description: "ACME PAYROLL",
		})
	}

	// Recurring bills and day-to-day spending.
	for daysAgo := 3; daysAgo <= 120; daysAgo += 7 {
		txs = append(txs,
			models.Transaction{
				Type:        models.TypeWithdraw,
				Amount:      -62.35,
				Reference:   fmt.Sprintf("demo-groceries-%d", daysAgo),
				DateTime:    s.day(daysAgo, 18),
				Source:      models.SourceBankAccount,
				Description: "TESCO STORES",
			},
			models.Transaction{
				Type:        models.TypeWithdraw,
				Amount:      -14.80,
				Reference:   fmt.Sprintf("demo-transport-%d", daysAgo),
				DateTime:    s.day(daysAgo, 8),
				Source:      models.SourceBankAccount,
				Description: "TFL TRAVEL",
			})
	}
	for daysAgo := 5; daysAgo <= 120; daysAgo += 30 {
		txs = append(txs,
			models.Transaction{
				Type:        models.TypeWithdraw,
				Amount:      -895.00,
				Reference:   fmt.Sprintf("demo-rent-%d", daysAgo),
				DateTime:    s.day(daysAgo, 9),
				Source:      models.SourceBankAccount,
				Description: "RENT STANDING ORDER",
			},
			models.Transaction{
				Type:        models.TypeInterestCashback,
				Amount:      2.41,
				Reference:   fmt.Sprintf("demo-interest-%d", daysAgo),
				DateTime:    s.day(daysAgo, 0),
				Source:      models.SourceBankAccount,
				Description: "INTEREST EARNED",
			})
	}

	// Monthly transfer into the investment account.
	for daysAgo := 6; daysAgo <= 120; daysAgo += 30 {
		txs = append(txs, models.Transaction{
			Type:        models.TypeWithdraw,
			Amount:      -200.00,
			Reference:   fmt.Sprintf("demo-invest-out-%d", daysAgo),
			DateTime:    s.day(daysAgo, 10),
			Source:      models.SourceBankAccount,
			Description: "TRADING 212 TRANSFER",
		})
	}
	return txs
}

func (s *Source) cardTransactions() []models.Transaction {
	var txs []models.Transaction
	for daysAgo := 2; daysAgo <= 120; daysAgo += 9 {
		txs = append(txs,
			models.Transaction{
				Type:        models.TypeWithdraw,
				Amount:      -28.99,
				Reference:   fmt.Sprintf("demo-card-shop-%d", daysAgo),
				DateTime:    s.day(daysAgo, 19),
				Source:      models.SourceCreditCard,
				Description: "AMAZON MARKETPLACE",
			},
			models.Transaction{
				Type:        models.TypeWithdraw,
				Amount:      -11.50,
				Reference:   fmt.Sprintf("demo-card-food-%d", daysAgo),
				DateTime:    s.day(daysAgo, 13),
				Source:      models.SourceCreditCard,
				Description: "PRET A MANGER",
			})
	}
	return txs
}

func (s *Source) tradingTransactions() []models.Transaction {
	var txs []models.Transaction
	for daysAgo := 6; daysAgo <= 120; daysAgo += 30 {
		txs = append(txs, models.Transaction{
			Type:        models.TypeDeposit,
			Amount:      200.00,
			Reference:   fmt.Sprintf("demo-t212-deposit-%d", daysAgo),
			DateTime:    s.day(daysAgo, 10),
			Source:      models.SourceTrading212,
			Description: "Deposit",
		})
	}
	for daysAgo := 1; daysAgo <= 120; daysAgo += 7 {
		txs = append(txs, models.Transaction{
			Type:        models.TypeInterestCashback,
			Amount:      0.87,
			Reference:   fmt.Sprintf("demo-t212-interest-%d", daysAgo),
			DateTime:    s.day(daysAgo, 0),
			Source:      models.SourceTrading212,
			Description: "Interest on cash",
		})
	}
	return txs
}
