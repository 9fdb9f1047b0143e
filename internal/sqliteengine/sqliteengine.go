// Package sqliteengine adapts a single-file SQLite database to the same
// Set/Get/Remove capability surface as internal/engine, so the server
// can be pointed at either storage backend interchangeably.
package sqliteengine

import (
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"unicode/utf8"

	_ "github.com/mattn/go-sqlite3"
)

// ErrKeyNotFound is returned by Remove when key has no row.
var ErrKeyNotFound = errors.New("key not found")

const schema = `
CREATE TABLE IF NOT EXISTS kv (
	key   TEXT PRIMARY KEY,
	value BLOB NOT NULL
);`

// Engine stores key-value pairs in a single SQLite file, configured for
// synchronous commits so that every mutation is durable before the call
// returns, matching the native engine's flush-before-success guarantee.
type Engine struct {
	db *sql.DB
}

// Open opens (creating if absent) a SQLite database at dir/kvs.sqlite3.
func Open(dir string) (*Engine, error) {
	path := filepath.Join(dir, "kvs.sqlite3")
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?_journal_mode=WAL&_synchronous=FULL", path))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}
	return &Engine{db: db}, nil
}

// Set stores value under key, superseding any prior value.
func (e *Engine) Set(key, value string) error {
	_, err := e.db.Exec(`INSERT INTO kv(key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, []byte(value))
	return err
}

// Get returns the value stored under key, or found=false if absent.
func (e *Engine) Get(key string) (value string, found bool, err error) {
	var raw []byte
	row := e.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key)
	if err := row.Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}
	if !utf8.Valid(raw) {
		return "", false, fmt.Errorf("sqliteengine: stored value for key %q is not valid UTF-8", key)
	}
	return string(raw), true, nil
}

// Remove deletes key. It returns ErrKeyNotFound if key has no row.
func (e *Engine) Remove(key string) error {
	res, err := e.db.Exec(`DELETE FROM kv WHERE key = ?`, key)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrKeyNotFound
	}
	return nil
}

// Close releases the underlying database handle.
func (e *Engine) Close() error {
	return e.db.Close()
}
