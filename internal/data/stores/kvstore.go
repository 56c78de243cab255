package stores

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hay-kot/bookreview/internal/core/kv"
	"github.com/hay-kot/bookreview/internal/data/db"
)

// KVStore implements kv.KV using SQLite.
type KVStore struct {
	db *db.DB
}

var _ kv.KV = (*KVStore)(nil)

// NewKVStore creates a new SQLite-backed KV store.
func NewKVStore(db *db.DB) *KVStore {
	return &KVStore{db: db}
}

// Get retrieves and deserializes a value by key.
// Returns an error wrapping sql.ErrNoRows if the key does not exist.
func (s *KVStore) Get(ctx context.Context, key string, dest any) error {
	var value []byte
	err := s.db.Conn().
		QueryRowContext(ctx, `SELECT value FROM kv_store WHERE key = ?`, key).
		Scan(&value)
	if err != nil {
		return fmt.Errorf("kv get %q: %w", key, err)
	}

	if raw, ok := dest.(*kv.Raw); ok {
		*raw = kv.Raw(value)
		return nil
	}

	if err := json.Unmarshal(value, dest); err != nil {
		return fmt.Errorf("kv get %q unmarshal: %w", key, err)
	}

	return nil
}

// Set stores a value, replacing any previous value for the key.
func (s *KVStore) Set(ctx context.Context, key string, value any) error {
	data, err := encodeValue(value)
	if err != nil {
		return fmt.Errorf("kv set %q marshal: %w", key, err)
	}

	now := time.Now().UnixNano()
	_, err = s.db.Conn().ExecContext(ctx, `
		INSERT INTO kv_store (key, value, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, data, now, now)
	if err != nil {
		return fmt.Errorf("kv set %q: %w", key, err)
	}

	return nil
}

func encodeValue(value any) ([]byte, error) {
	if raw, ok := value.(kv.Raw); ok {
		return []byte(raw), nil
	}
	return json.Marshal(value)
}

// Delete removes a key. Deleting a missing key is not an error.
func (s *KVStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.Conn().ExecContext(ctx, `DELETE FROM kv_store WHERE key = ?`, key); err != nil {
		return fmt.Errorf("kv delete %q: %w", key, err)
	}
	return nil
}

// Has returns whether a key exists.
func (s *KVStore) Has(ctx context.Context, key string) (bool, error) {
	var count int
	err := s.db.Conn().
		QueryRowContext(ctx, `SELECT COUNT(*) FROM kv_store WHERE key = ?`, key).
		Scan(&count)
	if err != nil {
		return false, fmt.Errorf("kv has %q: %w", key, err)
	}
	return count > 0, nil
}

// ListKeys returns all keys in sorted order.
func (s *KVStore) ListKeys(ctx context.Context) ([]string, error) {
	rows, err := s.db.Conn().QueryContext(ctx, `SELECT key FROM kv_store ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("kv list keys: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("kv list keys scan: %w", err)
		}
		keys = append(keys, k)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("kv list keys: %w", err)
	}

	return keys, nil
}
