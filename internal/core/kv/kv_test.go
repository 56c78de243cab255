package kv_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/bookreview/internal/core/kv"
	"github.com/hay-kot/bookreview/internal/data/db"
	"github.com/hay-kot/bookreview/internal/data/stores"
)

func newTestKV(t *testing.T) kv.KV {
	t.Helper()
	database, err := db.Open(t.TempDir(), db.DefaultOpenOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	return stores.NewKVStore(database)
}

func TestEntry_LoadMissing(t *testing.T) {
	e := kv.At[kv.Raw](newTestKV(t), "auth_token")

	v, ok, err := e.Load(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, v)
}

func TestEntry_StoreLoadRemove(t *testing.T) {
	ctx := context.Background()
	store := newTestKV(t)
	e := kv.At[kv.Raw](store, "auth_token")
	assert.Equal(t, "auth_token", e.Key())

	require.NoError(t, e.Store(ctx, "tok-1"))
	require.NoError(t, e.Store(ctx, "tok-2"))

	v, ok, err := e.Load(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, kv.Raw("tok-2"), v)

	keys, err := store.ListKeys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"auth_token"}, keys)

	require.NoError(t, e.Remove(ctx))
	require.NoError(t, e.Remove(ctx), "removing a missing key is not an error")

	_, ok, err = e.Load(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEntry_JSONValues(t *testing.T) {
	ctx := context.Background()

	type prefs struct {
		Theme string `json:"theme"`
		Size  int    `json:"size"`
	}
	e := kv.At[prefs](newTestKV(t), "prefs")

	require.NoError(t, e.Store(ctx, prefs{Theme: "dark", Size: 20}))

	v, ok, err := e.Load(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, prefs{Theme: "dark", Size: 20}, v)
}
