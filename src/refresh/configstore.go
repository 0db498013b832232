// Package refresh keeps the cached source data current: it decides staleness
// from the central sync marker, takes per-source advisory locks, runs fetches
// in the background, merges results into the cache, and broadcasts progress.
package refresh

import (
	"context"
	"time"

	"unify-server/src/cache"
	"unify-server/src/models"
)

const configKey = "config/user"

// ConfigStore persists the single user connection record. It backs both the
// TrueLayer token store and the Trading212 credential store.
type ConfigStore struct {
	cache *cache.Cache
}

func NewConfigStore(store cache.Store) *ConfigStore {
	return &ConfigStore{cache: cache.New(store, configKey)}
}

func (s *ConfigStore) Load(ctx context.Context) (models.UserConfig, error) {
	var cfg models.UserConfig
	_, _, err := s.cache.Read(ctx, &cfg)
	return cfg, err
}

func (s *ConfigStore) save(ctx context.Context, cfg models.UserConfig) error {
	return s.cache.Write(ctx, cfg)
}

func (s *ConfigStore) TrueLayerAccount(ctx context.Context) (*models.TrueLayerAccount, error) {
	cfg, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	return cfg.TrueLayer, nil
}

func (s *ConfigStore) SaveTrueLayerAccount(ctx context.Context, account *models.TrueLayerAccount) error {
	cfg, err := s.Load(ctx)
	if err != nil {
		return err
	}
	cfg.TrueLayer = account
	return s.save(ctx, cfg)
}

func (s *ConfigStore) ClearTrueLayerAccount(ctx context.Context) error {
	cfg, err := s.Load(ctx)
	if err != nil {
		return err
	}
	cfg.TrueLayer = nil
	return s.save(ctx, cfg)
}

func (s *ConfigStore) Trading212Account(ctx context.Context) (*models.Trading212Account, error) {
	cfg, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	return cfg.Trading212, nil
}

func (s *ConfigStore) SaveTrading212Account(ctx context.Context, account *models.Trading212Account) error {
	cfg, err := s.Load(ctx)
	if err != nil {
		return err
	}
	cfg.Trading212 = account
	return s.save(ctx, cfg)
}

func (s *ConfigStore) ClearTrading212Account(ctx context.Context) error {
	cfg, err := s.Load(ctx)
	if err != nil {
		return err
	}
	cfg.Trading212 = nil
	return s.save(ctx, cfg)
}

// LastSyncedAt returns the central sync marker; zero time when never synced.
func (s *ConfigStore) LastSyncedAt(ctx context.Context) (time.Time, error) {
	cfg, err := s.Load(ctx)
	if err != nil {
		return time.Time{}, err
	}
	if cfg.LastSyncedAt == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, cfg.LastSyncedAt)
	if err != nil {
		return time.Time{}, nil
	}
	return t, nil
}

// MarkSynced advances the central sync marker.
func (s *ConfigStore) MarkSynced(ctx context.Context, now time.Time) error {
	cfg, err := s.Load(ctx)
	if err != nil {
		return err
	}
	cfg.LastSyncedAt = now.UTC().Format(time.RFC3339)
	return s.save(ctx, cfg)
}

// ForceStale clears the sync marker so the next read triggers a refresh.
func (s *ConfigStore) ForceStale(ctx context.Context) error {
	cfg, err := s.Load(ctx)
	if err != nil {
		return err
	}
	cfg.LastSyncedAt = ""
	return s.save(ctx, cfg)
}
