package kvstore

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/cognizone/skoslens/errors"
)

// SQLite is a durable key-value store backed by a SQLite database. Entries
// survive process restarts and have no expiry.
type SQLite struct {
	db      *sql.DB
	stats   *Statistics
	metrics *storeMetrics
}

// OpenSQLite opens (or creates) a SQLite-backed store in dataDir.
// Pass ":memory:" as dataDir for an in-memory database (used by tests).
func OpenSQLite(dataDir string, options ...Option) (*SQLite, error) {
	opts := applyOptions(options...)

	var dsn string
	if dataDir == ":memory:" {
		dsn = ":memory:"
	} else {
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		dsn = filepath.Join(dataDir, "skoslens.db")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	// Limit to single connection to avoid "database is locked" errors.
	db.SetMaxOpenConns(1)

	// Set busy timeout so concurrent access waits briefly instead of failing immediately.
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting journal mode: %w", err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS kv (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating kv table: %w", err)
	}

	stats := NewStatistics()

	var metrics *storeMetrics
	if opts.metricsReg != nil && opts.metricsPrefix != "" {
		metrics, err = newStoreMetrics(opts.metricsReg, opts.metricsPrefix)
		if err != nil {
			db.Close()
			return nil, errors.Wrap(err, "kvstore", "OpenSQLite", "metrics registration")
		}
	}

	s := &SQLite{db: db, stats: stats, metrics: metrics}
	s.stats.UpdateSize(int64(s.Size()))
	return s, nil
}

// Get retrieves a value by key. Database errors are treated as misses; the
// store abstraction has no error channel for lookups and consumers fall
// back to their slow path on a miss anyway.
func (s *SQLite) Get(key string) (string, bool) {
	var value string
	err := s.db.QueryRow("SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if err != nil {
		s.stats.Miss()
		if s.metrics != nil {
			s.metrics.recordMiss()
		}
		return "", false
	}

	s.stats.Hit()
	if s.metrics != nil {
		s.metrics.recordHit()
	}
	return value, true
}

// Set stores a value with the given key, overwriting any existing entry.
func (s *SQLite) Set(key, value string) (bool, error) {
	if err := validateKey(key); err != nil {
		return false, err
	}

	var exists int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM kv WHERE key = ?", key).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking key %q: %w", key, err)
	}

	if _, err := s.db.Exec(`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value); err != nil {
		return false, fmt.Errorf("storing key %q: %w", key, err)
	}

	size := s.Size()
	s.stats.Set()
	s.stats.UpdateSize(int64(size))
	if s.metrics != nil {
		s.metrics.recordSet()
		s.metrics.updateSize(size)
	}

	return exists == 0, nil
}

// Delete removes an entry by key.
func (s *SQLite) Delete(key string) (bool, error) {
	if err := validateKey(key); err != nil {
		return false, err
	}

	res, err := s.db.Exec("DELETE FROM kv WHERE key = ?", key)
	if err != nil {
		return false, fmt.Errorf("deleting key %q: %w", key, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("deleting key %q: %w", key, err)
	}

	if affected > 0 {
		size := s.Size()
		s.stats.Delete()
		s.stats.UpdateSize(int64(size))
		if s.metrics != nil {
			s.metrics.recordDelete()
			s.metrics.updateSize(size)
		}
	}

	return affected > 0, nil
}

// Clear removes all entries from the store.
func (s *SQLite) Clear() error {
	if _, err := s.db.Exec("DELETE FROM kv"); err != nil {
		return fmt.Errorf("clearing store: %w", err)
	}

	s.stats.UpdateSize(0)
	if s.metrics != nil {
		s.metrics.updateSize(0)
	}
	return nil
}

// Size returns the current number of entries in the store.
func (s *SQLite) Size() int {
	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM kv").Scan(&count); err != nil {
		return 0
	}
	return count
}

// Keys returns a slice of all keys currently in the store.
func (s *SQLite) Keys() []string {
	rows, err := s.db.Query("SELECT key FROM kv ORDER BY key")
	if err != nil {
		return nil
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return keys
		}
		keys = append(keys, key)
	}
	return keys
}

// Stats returns store statistics.
func (s *SQLite) Stats() *Statistics {
	return s.stats
}

// Close closes the underlying database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

var _ Store = (*SQLite)(nil)
