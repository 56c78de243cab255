// Package kv defines the durable key-value store used for client-side
// state that must survive restarts, such as the session token.
package kv

import "context"

// KV is a persistent key-value store. Values are JSON encoded, except Raw
// values which are stored as given. Get on a missing key returns an error
// wrapping sql.ErrNoRows.
type KV interface {
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any) error
	Delete(ctx context.Context, key string) error
	Has(ctx context.Context, key string) (bool, error)
	ListKeys(ctx context.Context) ([]string, error)
}

// Raw is a string value written to the store byte for byte, for values
// other tools read directly such as the session token.
type Raw string
