package db

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// DBExecutor is an interface that allows methods to accept either *sql.DB or *sql.Tx
type DBExecutor interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	Query(query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(query string, args ...interface{}) *sql.Row
}

// DefaultHistory is how many previous values KV keeps per key.
const DefaultHistory = 5

// KV stores opaque values by key in SQLite. Every Put also appends the value
// to a bounded history so an earlier snapshot can be recovered.
type KV struct {
	conn    *sql.DB
	History int
}

// NewKV wraps an initialized connection.
func NewKV(conn *sql.DB) *KV {
	return &KV{conn: conn, History: DefaultHistory}
}

// Get returns the value stored under key. ok is false when the key is absent.
func (kv *KV) Get(key string) ([]byte, bool, error) {
	var value []byte
	err := kv.conn.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %q: %w", key, err)
	}
	return value, true, nil
}

// Put stores value under key in a single transaction with its history row.
func (kv *KV) Put(key string, value []byte) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("key must be non-empty")
	}
	tx, err := kv.conn.Begin()
	if err != nil {
		return fmt.Errorf("begin put: %w", err)
	}
	defer func() {
		_ = tx.Rollback() // ignored if committed
	}()

	if err := upsert(tx, key, value); err != nil {
		return err
	}
	if err := appendHistory(tx, key, value, kv.History); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit put %q: %w", key, err)
	}
	return nil
}

func upsert(db DBExecutor, key string, value []byte) error {
	_, err := db.Exec(`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("upsert %q: %w", key, err)
	}
	return nil
}

func appendHistory(db DBExecutor, key string, value []byte, keep int) error {
	if keep <= 0 {
		return nil
	}
	if _, err := db.Exec(`INSERT INTO kv_history (key, value, saved_at) VALUES (?, ?, ?)`, key, value, time.Now().UTC()); err != nil {
		return fmt.Errorf("append history %q: %w", key, err)
	}
	_, err := db.Exec(`DELETE FROM kv_history WHERE key = ? AND id NOT IN (
		SELECT id FROM kv_history WHERE key = ? ORDER BY id DESC LIMIT ?)`, key, key, keep)
	if err != nil {
		return fmt.Errorf("trim history %q: %w", key, err)
	}
	return nil
}

// Delete removes key and its history. Deleting an absent key is not an error.
func (kv *KV) Delete(key string) error {
	if _, err := kv.conn.Exec(`DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete %q: %w", key, err)
	}
	if _, err := kv.conn.Exec(`DELETE FROM kv_history WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete history %q: %w", key, err)
	}
	return nil
}

// Revision is one historical value of a key.
type Revision struct {
	ID      int64
	Value   []byte
	SavedAt time.Time
}

// Revisions returns the stored revisions of key, newest first.
func (kv *KV) Revisions(key string) ([]Revision, error) {
	rows, err := kv.conn.Query(`SELECT id, value, saved_at FROM kv_history WHERE key = ? ORDER BY id DESC`, key)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Revision
	for rows.Next() {
		var r Revision
		if err := rows.Scan(&r.ID, &r.Value, &r.SavedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
