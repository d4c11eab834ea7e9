package db

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestKV(t *testing.T) *KVStore {
	t.Helper()
	store, err := Open(context.Background(), filepath.Join(t.TempDir(), "kv.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return NewKVStore(store)
}

func TestNewKVStore_Nil(t *testing.T) {
	assert.Nil(t, NewKVStore(nil))
}

func TestKVStore_NotInitialized(t *testing.T) {
	ctx := context.Background()
	var kv *KVStore

	_, _, err := kv.Get(ctx, "k")
	assert.ErrorContains(t, err, "kv store not initialized")
	assert.ErrorContains(t, kv.Put(ctx, "k", []byte("v")), "kv store not initialized")
	assert.ErrorContains(t, kv.Delete(ctx, "k"), "kv store not initialized")
	_, err = kv.Keys(ctx, "")
	assert.ErrorContains(t, err, "kv store not initialized")
	_, err = kv.Prune(ctx, time.Now())
	assert.ErrorContains(t, err, "kv store not initialized")
}

func TestKVStore_PutGetDelete(t *testing.T) {
	ctx := context.Background()
	kv := newTestKV(t)

	_, ok, err := kv.Get(ctx, "preferences")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, kv.Put(ctx, "preferences", []byte(`{"theme":"dark"}`)))
	got, ok, err := kv.Get(ctx, "preferences")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"theme":"dark"}`, string(got))

	require.NoError(t, kv.Put(ctx, "preferences", []byte(`{"theme":"light"}`)))
	got, _, err = kv.Get(ctx, "preferences")
	require.NoError(t, err)
	assert.Equal(t, `{"theme":"light"}`, string(got))

	require.NoError(t, kv.Delete(ctx, "preferences"))
	require.NoError(t, kv.Delete(ctx, "preferences"))
	_, ok, err = kv.Get(ctx, "preferences")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestKVStore_PutRejectsBlankKey(t *testing.T) {
	kv := newTestKV(t)
	for _, key := range []string{"", "  "} {
		assert.ErrorContains(t, kv.Put(context.Background(), key, []byte("x")), "invalid key")
	}
}

func TestKVStore_Keys(t *testing.T) {
	ctx := context.Background()
	kv := newTestKV(t)
	for _, k := range []string{"collection.profiles", "collection.files.1", "preferences"} {
		require.NoError(t, kv.Put(ctx, k, []byte("1")))
	}

	keys, err := kv.Keys(ctx, "collection.")
	require.NoError(t, err)
	assert.Equal(t, []string{"collection.files.1", "collection.profiles"}, keys)

	all, err := kv.Keys(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestKVStore_Prune(t *testing.T) {
	ctx := context.Background()
	kv := newTestKV(t)
	require.NoError(t, kv.Put(ctx, "old", []byte("1")))
	_, err := kv.db.ExecContext(ctx, `UPDATE kv_cache SET updated_at=? WHERE key='old'`, time.Now().Add(-48*time.Hour).Unix())
	require.NoError(t, err)
	require.NoError(t, kv.Put(ctx, "fresh", []byte("1")))

	n, err := kv.Prune(ctx, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, ok, _ := kv.Get(ctx, "old")
	assert.False(t, ok)
	_, ok, _ = kv.Get(ctx, "fresh")
	assert.True(t, ok)
}
