package db

import (
	"context"

	"github.com/dgraph-io/ristretto"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// KVStore persists cached source payloads and refresh locks in the kv_entries
// table, with a ristretto layer in front so the combined read path does not
// hit Postgres on every request. Writes go through to Postgres first so a
// restart never loses the latest snapshot.
type KVStore struct {
	pool *pgxpool.Pool
	hot  *ristretto.Cache
}

func NewKVStore(pool *pgxpool.Pool) (*KVStore, error) {
	hot, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 10000, // number of keys to track frequency of
		MaxCost:     10000,
		BufferItems: 64, // number of keys per Get buffer
	})
	if err != nil {
		return nil, err
	}
	return &KVStore{pool: pool, hot: hot}, nil
}

func (s *KVStore) Get(ctx context.Context, key string) ([]byte, error) {
	if cached, ok := s.hot.Get(key); ok {
		if raw, ok := cached.([]byte); ok {
			return raw, nil
		}
	}

	var raw []byte
	query := `SELECT value FROM kv_entries WHERE key = $1`
	err := s.pool.QueryRow(ctx, query, key).Scan(&raw)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	s.hot.Set(key, raw, 1)
	return raw, nil
}

func (s *KVStore) Set(ctx context.Context, key string, value []byte) error {
	query := `
		INSERT INTO kv_entries (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
	`
	if _, err := s.pool.Exec(ctx, query, key, value); err != nil {
		return err
	}
	s.hot.Set(key, value, 1)
	return nil
}

func (s *KVStore) Delete(ctx context.Context, key string) error {
	query := `DELETE FROM kv_entries WHERE key = $1`
	if _, err := s.pool.Exec(ctx, query, key); err != nil {
		return err
	}
	s.hot.Del(key)
	return nil
}
