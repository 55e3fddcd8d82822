// Package storage is the durable key-value surface the session and history
// stores persist to. Values are opaque bytes (JSON in practice); a Store
// returns (nil, nil) for an absent key.
//
// Backends:
//   - SQLiteStore: a single kv table in a local database file.
//   - RedisStore: plain string keys on a Redis server.
//   - MemoryStore: a process-local map, for tests and throwaway runs.
package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/shopsage/internal/common"
)

// Store is a synchronous key-value surface.
type Store interface {
	// Get returns the value stored under key, or (nil, nil) if there is none.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	// Delete removes key; deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
	// Apply performs all ops atomically: either every op is visible
	// afterwards or none is.
	Apply(ctx context.Context, ops ...Op) error
	Close() error
}

// Op is a single write inside an Apply batch.
type Op struct {
	Key    string
	Value  []byte
	Delete bool
}

func Put(key string, value []byte) Op { return Op{Key: key, Value: value} }

func Del(key string) Op { return Op{Key: key, Delete: true} }

// Keys holds the concrete key names of the three persisted values.
type Keys struct {
	Session  string
	Accounts string
	History  string
}

const DefaultKeyPrefix = "shopsage_"

// NewKeys prefixes the logical key names. An empty prefix yields the bare
// names session, accounts and search_history.
func NewKeys(prefix string) Keys {
	return Keys{
		Session:  prefix + "session",
		Accounts: prefix + "accounts",
		History:  prefix + "search_history",
	}
}

// GetJSON loads key and decodes it into v. found is false when the key is
// absent. A value that does not decode returns an error wrapping
// common.ErrMalformedState, so callers can tell corruption from I/O failure.
func GetJSON(ctx context.Context, s Store, key string, v any) (found bool, err error) {
	raw, err := s.Get(ctx, key)
	if err != nil {
		return false, err
	}
	if raw == nil {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return true, fmt.Errorf("%w: key %s: %v", common.ErrMalformedState, key, err)
	}
	return true, nil
}

// PutJSON encodes v into an Op for use with Apply.
func PutJSON(key string, v any) (Op, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return Op{}, fmt.Errorf("encode %s: %w", key, err)
	}
	return Put(key, b), nil
}
