package session

import (
	"context"
	"fmt"

	"github.com/hay-kot/bookreview/internal/core/kv"
)

// TokenStore is durable storage for the session token.
type TokenStore interface {
	// Load returns the stored token, or "" when none is stored.
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// KVTokenStore keeps the raw token, without JSON quoting, under a single key
// of a KV store.
type KVTokenStore struct {
	entry kv.Entry[kv.Raw]
}

var _ TokenStore = (*KVTokenStore)(nil)

// NewKVTokenStore returns a token store backed by store under key.
func NewKVTokenStore(store kv.KV, key string) *KVTokenStore {
	return &KVTokenStore{entry: kv.At[kv.Raw](store, key)}
}

func (s *KVTokenStore) Load(ctx context.Context) (string, error) {
	token, _, err := s.entry.Load(ctx)
	if err != nil {
		return "", fmt.Errorf("load token: %w", err)
	}
	return string(token), nil
}

func (s *KVTokenStore) Save(ctx context.Context, token string) error {
	if err := s.entry.Store(ctx, kv.Raw(token)); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	return nil
}

func (s *KVTokenStore) Clear(ctx context.Context) error {
	if err := s.entry.Remove(ctx); err != nil {
		return fmt.Errorf("clear token: %w", err)
	}
	return nil
}
