package database

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/lib/pq"
)

// DB wraps the shared sql.DB connection pool.
type DB struct {
	*sql.DB
}

// New opens a connection pool and verifies it with a ping.
func New(databaseURL string) (*DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{DB: db}, nil
}

var (
	sharedMu sync.Mutex
	shared   *DB
)

// Acquire returns the process-wide connection pool, opening it on first use.
// The pool is deliberately never torn down: it lives for the process lifetime
// and is reused across requests. Safe for concurrent callers; a failed open
// leaves no cached pool, so the next call retries.
func Acquire(databaseURL string) (*DB, error) {
	sharedMu.Lock()
	defer sharedMu.Unlock()

	if shared != nil {
		return shared, nil
	}

	db, err := New(databaseURL)
	if err != nil {
		return nil, err
	}

	shared = db
	return shared, nil
}
