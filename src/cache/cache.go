// Package cache wraps a key-value store with the lastUpdated envelope shared
// by every cached source payload, and provides the TTL advisory lock used to
// guard refreshes.
package cache

import (
	"context"
	"encoding/json"
	"time"
)

// Store is the key-value storage collaborator. A missing key returns
// (nil, nil).
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Envelope wraps every cached payload with its write timestamp.
type Envelope struct {
	LastUpdated string          `json:"lastUpdated"`
	Data        json.RawMessage `json:"data"`
}

// Cache reads and writes one key's enveloped payload.
type Cache struct {
	store Store
	key   string
}

func New(store Store, key string) *Cache {
	return &Cache{store: store, key: key}
}

// Read unmarshals the cached payload into out. Missing keys and malformed or
// legacy payloads report ok=false with out untouched; read paths must treat
// a partially-written cache as absent, not as an error.
func (c *Cache) Read(ctx context.Context, out interface{}) (lastUpdated string, ok bool, err error) {
	raw, err := c.store.Get(ctx, c.key)
	if err != nil {
		return "", false, err
	}
	if raw == nil {
		return "", false, nil
	}

	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return "", false, nil
	}
	if env.Data == nil {
		return "", false, nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return "", false, nil
	}
	return env.LastUpdated, true, nil
}

// Write stores the payload with a fresh lastUpdated stamp.
func (c *Cache) Write(ctx context.Context, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	env := Envelope{
		LastUpdated: time.Now().UTC().Format(time.RFC3339),
		Data:        data,
	}
	raw, err := json.Marshal(env)
	if err != nil {
		return err
	}
	return c.store.Set(ctx, c.key, raw)
}
