package refresh

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"unify-server/src/cache"
	"unify-server/src/ledger"
	"unify-server/src/models"
	"unify-server/src/stream"
	"unify-server/src/truelayer"
)

const (
	accountKeyPrefix = "cache/accounts/"
	cardKeyPrefix    = "cache/cards/"
	tradingKey       = "cache/trading212"

	accountsLockKey = "lock/truelayer-accounts"
	cardsLockKey    = "lock/truelayer-cards"
	tradingLockKey  = "lock/trading212-export"

	accountsLockTTL = 60 * time.Second
	cardsLockTTL    = 60 * time.Second
	// The export flow polls an async job, so its lock lives longer.
	tradingLockTTL = 90 * time.Second

	// How far back the first fetch of a resource reaches.
	initialWindow = 365 * 24 * time.Hour
)

// BankAPI is the TrueLayer surface the coordinator needs.
type BankAPI interface {
	Connection(ctx context.Context) (*models.TrueLayerAccount, error)
	AccountBalance(ctx context.Context, accountID string) (float64, error)
	CardBalance(ctx context.Context, accountID string) (float64, error)
	AccountTransactions(ctx context.Context, accountID string, from, to time.Time) ([]models.Transaction, error)
	CardTransactions(ctx context.Context, accountID string, from, to time.Time) ([]models.Transaction, error)
}

// TradingAPI is the Trading212 surface the coordinator needs.
type TradingAPI interface {
	Export(ctx context.Context, from, to time.Time) ([]models.Transaction, error)
	Balance(ctx context.Context) (float64, error)
}

type Coordinator struct {
	store   cache.Store
	config  *ConfigStore
	bank    BankAPI
	trading TradingAPI
	broker  *stream.Broker
	logger  zerolog.Logger

	staleAfter time.Duration
	now        func() time.Time
}

func NewCoordinator(store cache.Store, config *ConfigStore, bank BankAPI, tradingAPI TradingAPI, broker *stream.Broker, staleAfter time.Duration, logger zerolog.Logger) *Coordinator {
	return &Coordinator{
		store:      store,
		config:     config,
		bank:       bank,
		trading:    tradingAPI,
		broker:     broker,
		logger:     logger.With().Str("component", "refresh").Logger(),
		staleAfter: staleAfter,
		now:        time.Now,
	}
}

// Stale reports whether the cached data is older than the staleness
// threshold. A missing sync marker always reads as stale.
func (c *Coordinator) Stale(ctx context.Context) (bool, error) {
	last, err := c.config.LastSyncedAt(ctx)
	if err != nil {
		return false, err
	}
	if last.IsZero() {
		return true, nil
	}
	return c.now().Sub(last) > c.staleAfter, nil
}

// EnsureFresh kicks off a background refresh of every connected source when
// the cache is stale. It never blocks the caller on the fetches; readers keep
// serving the previous snapshot and pick up fresh data via the event stream.
func (c *Coordinator) EnsureFresh(ctx context.Context) error {
	stale, err := c.Stale(ctx)
	if err != nil {
		return err
	}
	if !stale {
		return nil
	}
	c.RefreshAllAsync()
	return nil
}

// RefreshAllAsync runs all source refreshes in the background. Each source
// takes its own lock, so concurrent calls at worst find everything held.
func (c *Coordinator) RefreshAllAsync() {
	go func() {
		// Detached from any request's lifetime.
		ctx := context.Background()
		c.RefreshAll(ctx)
	}()
}

// RefreshAll runs the connected sources in sequence and advances the central
// sync marker if anything ran.
func (c *Coordinator) RefreshAll(ctx context.Context) {
	ranAccounts := c.RefreshAccounts(ctx)
	ranCards := c.RefreshCards(ctx)
	ranTrading := c.RefreshTrading(ctx)

	if ranAccounts || ranCards || ranTrading {
		if err := c.config.MarkSynced(ctx, c.now()); err != nil {
			c.logger.Error().Err(err).Msg("failed to mark synced")
		}
	}
}

// RefreshAccounts fetches every connected bank account's new transactions and
// merges them into the per-account caches. Returns false when the lock is
// held or no bank is connected.
func (c *Coordinator) RefreshAccounts(ctx context.Context) bool {
	connection, err := c.bank.Connection(ctx)
	if err != nil {
		if !errors.Is(err, truelayer.ErrNotConnected) {
			c.logger.Error().Err(err).Msg("failed to load bank connection")
		}
		return false
	}
	if len(connection.Accounts) == 0 {
		return false
	}

	ok, err := cache.AcquireLock(ctx, c.store, accountsLockKey, "refresh", accountsLockTTL, c.now())
	if err != nil || !ok {
		if err != nil {
			c.logger.Error().Err(err).Msg("account lock error")
		}
		return false
	}
	defer func() {
		if err := cache.ReleaseLock(ctx, c.store, accountsLockKey); err != nil {
			c.logger.Error().Err(err).Msg("failed to release account lock")
		}
	}()

	c.broker.BroadcastStatus(models.StreamStatus{Source: models.SourceBankAccount, State: models.StreamPending})

	var failed error
	for _, account := range connection.Accounts {
		if err := c.refreshAccount(ctx, account); err != nil {
			c.logger.Error().Err(err).Str("account_id", account.AccountID).Msg("account refresh failed")
			failed = err
		}
	}
	if failed != nil {
		c.broker.BroadcastStatus(models.StreamStatus{Source: models.SourceBankAccount, State: models.StreamError, Error: failed.Error()})
		return false
	}

	snapshot, err := c.AccountsSnapshot(ctx)
	if err != nil {
		c.logger.Error().Err(err).Msg("failed to read account snapshot")
		return true
	}
	c.broker.BroadcastUpdate(models.StreamUpdate{Source: models.SourceBankAccount, Data: snapshot})
	return true
}

func (c *Coordinator) refreshAccount(ctx context.Context, account models.AccountInfo) error {
	key := accountKeyPrefix + account.AccountID
	entry := cache.New(c.store, key)

	var existing models.CachedAccountData
	lastUpdated, _, err := entry.Read(ctx, &existing)
	if err != nil {
		return err
	}

	from, to := c.fetchWindow(lastUpdated)
	incoming, err := c.bank.AccountTransactions(ctx, account.AccountID, from, to)
	if err != nil {
		return err
	}

	balance, err := c.bank.AccountBalance(ctx, account.AccountID)
	if err != nil {
		return err
	}

	merged := ledger.Merge(existing.Transactions, incoming, ledger.PolicyKeepExisting)
	return entry.Write(ctx, models.CachedAccountData{
		Account:          account,
		Balance:          balance,
		Transactions:     merged,
		TransactionCount: len(merged),
		LastUpdated:      c.now().UTC().Format(time.RFC3339),
	})
}

// RefreshCards mirrors RefreshAccounts for the connection's credit cards.
func (c *Coordinator) RefreshCards(ctx context.Context) bool {
	connection, err := c.bank.Connection(ctx)
	if err != nil {
		if !errors.Is(err, truelayer.ErrNotConnected) {
			c.logger.Error().Err(err).Msg("failed to load bank connection")
		}
		return false
	}
	if len(connection.Cards) == 0 {
		return false
	}

	ok, err := cache.AcquireLock(ctx, c.store, cardsLockKey, "refresh", cardsLockTTL, c.now())
	if err != nil || !ok {
		if err != nil {
			c.logger.Error().Err(err).Msg("card lock error")
		}
		return false
	}
	defer func() {
		if err := cache.ReleaseLock(ctx, c.store, cardsLockKey); err != nil {
			c.logger.Error().Err(err).Msg("failed to release card lock")
		}
	}()

	c.broker.BroadcastStatus(models.StreamStatus{Source: models.SourceCreditCard, State: models.StreamPending})

	var failed error
	for _, card := range connection.Cards {
		if err := c.refreshCard(ctx, card); err != nil {
			c.logger.Error().Err(err).Str("card_id", card.AccountID).Msg("card refresh failed")
			failed = err
		}
	}
	if failed != nil {
		c.broker.BroadcastStatus(models.StreamStatus{Source: models.SourceCreditCard, State: models.StreamError, Error: failed.Error()})
		return false
	}

	snapshot, err := c.CardsSnapshot(ctx)
	if err != nil {
		c.logger.Error().Err(err).Msg("failed to read card snapshot")
		return true
	}
	c.broker.BroadcastUpdate(models.StreamUpdate{Source: models.SourceCreditCard, Data: snapshot})
	return true
}

func (c *Coordinator) refreshCard(ctx context.Context, card models.CardInfo) error {
	key := cardKeyPrefix + card.AccountID
	entry := cache.New(c.store, key)

	var existing models.CachedCardData
	lastUpdated, _, err := entry.Read(ctx, &existing)
	if err != nil {
		return err
	}

	from, to := c.fetchWindow(lastUpdated)
	incoming, err := c.bank.CardTransactions(ctx, card.AccountID, from, to)
	if err != nil {
		return err
	}

	balance, err := c.bank.CardBalance(ctx, card.AccountID)
	if err != nil {
		return err
	}

	merged := ledger.Merge(existing.Transactions, incoming, ledger.PolicyKeepExisting)
	return entry.Write(ctx, models.CachedCardData{
		Card:             card,
		Balance:          balance,
		Transactions:     merged,
		TransactionCount: len(merged),
		LastUpdated:      c.now().UTC().Format(time.RFC3339),
	})
}

// RefreshTrading exports the Trading212 history and replaces the cached
// window with it. Export rows are authoritative for the window, so incoming
// data overwrites on reference collisions.
func (c *Coordinator) RefreshTrading(ctx context.Context) bool {
	account, err := c.config.Trading212Account(ctx)
	if err != nil {
		c.logger.Error().Err(err).Msg("failed to load trading credentials")
		return false
	}
	if account == nil {
		return false
	}

	ok, err := cache.AcquireLock(ctx, c.store, tradingLockKey, "refresh", tradingLockTTL, c.now())
	if err != nil || !ok {
		if err != nil {
			c.logger.Error().Err(err).Msg("trading lock error")
		}
		return false
	}
	defer func() {
		if err := cache.ReleaseLock(ctx, c.store, tradingLockKey); err != nil {
			c.logger.Error().Err(err).Msg("failed to release trading lock")
		}
	}()

	c.broker.BroadcastStatus(models.StreamStatus{Source: models.SourceTrading212, State: models.StreamPending})

	entry := cache.New(c.store, tradingKey)
	var existing models.CachedTransactions
	lastUpdated, _, err := entry.Read(ctx, &existing)
	if err != nil {
		c.logger.Error().Err(err).Msg("failed to read trading cache")
		return false
	}

	from, to := c.fetchWindow(lastUpdated)

	// The lock expires after its TTL; an export wait that outlives it would
	// let a second refresh poll the same job concurrently.
	exportCtx, cancelExport := context.WithTimeout(ctx, tradingLockTTL)
	defer cancelExport()
	incoming, err := c.trading.Export(exportCtx, from, to)
	if err != nil {
		c.logger.Error().Err(err).Msg("trading export failed")
		c.broker.BroadcastStatus(models.StreamStatus{Source: models.SourceTrading212, State: models.StreamError, Error: err.Error()})
		return false
	}

	balance, err := c.trading.Balance(ctx)
	if err != nil {
		c.logger.Error().Err(err).Msg("trading balance failed")
		c.broker.BroadcastStatus(models.StreamStatus{Source: models.SourceTrading212, State: models.StreamError, Error: err.Error()})
		return false
	}

	merged := ledger.Merge(existing.Transactions, incoming, ledger.PolicyOverwrite)
	snapshot := models.CachedTransactions{
		Transactions:     merged,
		TransactionCount: len(merged),
		LastUpdated:      c.now().UTC().Format(time.RFC3339),
		Balance:          balance,
	}
	if err := entry.Write(ctx, snapshot); err != nil {
		c.logger.Error().Err(err).Msg("failed to write trading cache")
		return false
	}

	c.broker.BroadcastUpdate(models.StreamUpdate{Source: models.SourceTrading212, Data: snapshot})
	return true
}

// fetchWindow is the incremental fetch range: from the last successful update
// when one exists, otherwise a year back.
func (c *Coordinator) fetchWindow(lastUpdated string) (time.Time, time.Time) {
	to := c.now()
	if lastUpdated != "" {
		if t, err := time.Parse(time.RFC3339, lastUpdated); err == nil {
			return t, to
		}
	}
	return to.Add(-initialWindow), to
}

// AccountsSnapshot reads every connected account's cached data. Accounts
// never fetched yet are returned with empty transactions.
func (c *Coordinator) AccountsSnapshot(ctx context.Context) ([]models.CachedAccountData, error) {
	connection, err := c.bank.Connection(ctx)
	if err != nil {
		if errors.Is(err, truelayer.ErrNotConnected) {
			return nil, nil
		}
		return nil, err
	}

	snapshots := make([]models.CachedAccountData, 0, len(connection.Accounts))
	for _, account := range connection.Accounts {
		var data models.CachedAccountData
		_, ok, err := cache.New(c.store, accountKeyPrefix+account.AccountID).Read(ctx, &data)
		if err != nil {
			return nil, err
		}
		if !ok {
			data = models.CachedAccountData{Account: account}
		}
		snapshots = append(snapshots, data)
	}
	return snapshots, nil
}

// CardsSnapshot reads every connected card's cached data.
func (c *Coordinator) CardsSnapshot(ctx context.Context) ([]models.CachedCardData, error) {
	connection, err := c.bank.Connection(ctx)
	if err != nil {
		if errors.Is(err, truelayer.ErrNotConnected) {
			return nil, nil
		}
		return nil, err
	}

	snapshots := make([]models.CachedCardData, 0, len(connection.Cards))
	for _, card := range connection.Cards {
		var data models.CachedCardData
		_, ok, err := cache.New(c.store, cardKeyPrefix+card.AccountID).Read(ctx, &data)
		if err != nil {
			return nil, err
		}
		if !ok {
			data = models.CachedCardData{Card: card}
		}
		snapshots = append(snapshots, data)
	}
	return snapshots, nil
}

// TradingSnapshot reads the cached Trading212 data; empty when never fetched.
func (c *Coordinator) TradingSnapshot(ctx context.Context) (models.CachedTransactions, error) {
	var data models.CachedTransactions
	_, _, err := cache.New(c.store, tradingKey).Read(ctx, &data)
	return data, err
}

// ForceStale clears the sync marker so the next read refreshes.
func (c *Coordinator) ForceStale(ctx context.Context) error {
	return c.config.ForceStale(ctx)
}
