package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// KVStore persists opaque values by key in the kv_cache table
type KVStore struct {
	db *sql.DB
}

// NewKVStore creates a key/value store from a base store
func NewKVStore(store *Store) *KVStore {
	if store == nil {
		return nil
	}
	return &KVStore{db: store.DB()}
}

// Get returns the value stored under key, if any
func (kv *KVStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if kv == nil || kv.db == nil {
		return nil, false, fmt.Errorf("kv store not initialized")
	}
	var out []byte
	err := kv.db.QueryRowContext(ctx, `SELECT value FROM kv_cache WHERE key=?`, key).Scan(&out)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return out, true, nil
}

// Put upserts value under key
func (kv *KVStore) Put(ctx context.Context, key string, value []byte) error {
	if kv == nil || kv.db == nil {
		return fmt.Errorf("kv store not initialized")
	}
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("invalid key")
	}
	_, err := kv.db.ExecContext(ctx, `INSERT INTO kv_cache(key, value, updated_at)
VALUES(?,?,?)
ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at;
`, key, value, time.Now().Unix())
	return err
}

// Delete removes key. Deleting a missing key is not an error.
func (kv *KVStore) Delete(ctx context.Context, key string) error {
	if kv == nil || kv.db == nil {
		return fmt.Errorf("kv store not initialized")
	}
	_, err := kv.db.ExecContext(ctx, `DELETE FROM kv_cache WHERE key=?`, key)
	return err
}

// Keys lists stored keys starting with prefix, sorted
func (kv *KVStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	if kv == nil || kv.db == nil {
		return nil, fmt.Errorf("kv store not initialized")
	}
	rows, err := kv.db.QueryContext(ctx, `SELECT key FROM kv_cache WHERE substr(key, 1, ?) = ? ORDER BY key`, len(prefix), prefix)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// Prune deletes entries not updated since before and returns how many were removed
func (kv *KVStore) Prune(ctx context.Context, before time.Time) (int64, error) {
	if kv == nil || kv.db == nil {
		return 0, fmt.Errorf("kv store not initialized")
	}
	res, err := kv.db.ExecContext(ctx, `DELETE FROM kv_cache WHERE updated_at < ?`, before.Unix())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
