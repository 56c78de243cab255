package kv

import (
	"context"
	"database/sql"
	"errors"
)

// Entry is a handle on a single key holding a T.
type Entry[T any] struct {
	store KV
	key   string
}

// At returns the entry for key in store.
func At[T any](store KV, key string) Entry[T] {
	return Entry[T]{store: store, key: key}
}

// Key returns the key the entry is stored under.
func (e Entry[T]) Key() string { return e.key }

// Load returns the stored value. ok is false, with a nil error, when the
// key is missing.
func (e Entry[T]) Load(ctx context.Context) (v T, ok bool, err error) {
	if err := e.store.Get(ctx, e.key, &v); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return v, false, nil
		}
		return v, false, err
	}
	return v, true, nil
}

// Store replaces the value.
func (e Entry[T]) Store(ctx context.Context, v T) error {
	return e.store.Set(ctx, e.key, v)
}

// Remove deletes the key. Removing a missing key is not an error.
func (e Entry[T]) Remove(ctx context.Context) error {
	return e.store.Delete(ctx, e.key)
}
