// Package store is the relational persistence layer: elements, spaces,
// media blobs, settings, and an append-only action log in a single local
// SQLite file (spec.md §4.1, §6). It is single-writer: every save_dirty
// call runs inside a transaction that rolls back on the first failing row.
package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite" // register the sqlite driver
)

// Busy-retry tuning, grounded on the teacher's internal/store.Cache
// SaveMessages retry loop.
const (
	busyMaxRetries    = 10
	busyBackoffStepMs = 50
	busyMaxBackoff    = time.Second
)

// Store is a SQLite-backed handle on the revel database file.
type Store struct {
	db *sql.DB
}

// Open creates or opens the database at path, applies performance pragmas,
// and runs schema migrations (spec.md §6's schema_version setting).
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, newErr(KindIO, "open", err)
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, newErr(KindIO, "pragma", fmt.Errorf("%s: %w", pragma, err))
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, newErr(KindSchema, "create schema", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	return s.db.Close()
}

// migrate applies schema-version-gated migrations. Currently a no-op past
// stamping the initial version, since schema.go's CREATE TABLE IF NOT
// EXISTS statements are themselves idempotent across versions.
func (s *Store) migrate() error {
	v, err := s.GetSetting("schema_version")
	if err != nil {
		return err
	}
	if v == "" {
		return s.SetSetting("schema_version", currentSchemaVersion)
	}
	return nil
}

// withRetry retries fn while it reports SQLITE_BUSY, with linear backoff
// capped at busyMaxBackoff, matching the teacher's SaveMessages pattern.
func withRetry(fn func() error) error {
	var err error
	for attempt := 0; attempt <= busyMaxRetries; attempt++ {
		err = fn()
		if err == nil {
			return nil
		}
		if !isBusy(err) || attempt == busyMaxRetries {
			return err
		}
		backoff := time.Duration(attempt+1) * busyBackoffStepMs * time.Millisecond
		if backoff > busyMaxBackoff {
			backoff = busyMaxBackoff
		}
		time.Sleep(backoff)
	}
	return err
}

// isBusy reports whether err looks like a SQLITE_BUSY condition.
// modernc.org/sqlite does not export a typed sentinel for it, so this
// string-matches the driver's error text, same as the teacher's
// IsSQLiteBusy helper.
func isBusy(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

// GetSetting returns the value for key, or "" if unset.
func (s *Store) GetSetting(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", newErr(KindIO, "get_setting", err)
	}
	return value, nil
}

// SetSetting upserts key=value.
func (s *Store) SetSetting(key, value string) error {
	return withRetry(func() error {
		_, err := s.db.Exec(
			`INSERT INTO settings (key, value) VALUES (?, ?)
			 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
			key, value,
		)
		if err != nil {
			return newErr(KindIO, "set_setting", err)
		}
		return nil
	})
}
