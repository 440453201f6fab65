// Package kvstore provides thread-safe key-value stores with two
// persistence scopes: session-lifetime (in-memory) and durable (SQLite).
//
// The persistence scope is a constructor choice, not a global. Callers that
// must never persist data (credential handling) construct a Memory store;
// callers that want data to survive restarts (the prefix cache) construct a
// SQLite store. Both satisfy the same Store interface, with built-in
// statistics (always enabled for observability) and optional Prometheus
// metrics via functional options.
package kvstore

import "errors"

// ErrEmptyKey is returned when an operation is attempted with an empty key.
var ErrEmptyKey = errors.New("kvstore: key cannot be empty")

// Store is the key-value abstraction injected into consumers. Entries have
// no expiry; they are never evicted, only overwritten or explicitly deleted.
type Store interface {
	// Get retrieves a value by key. Returns the value and true if found,
	// empty string and false otherwise.
	Get(key string) (string, bool)

	// Set stores a value with the given key. Returns true if a new entry
	// was created, false if an existing one was overwritten.
	Set(key, value string) (bool, error)

	// Delete removes an entry by key. Returns true if the key existed.
	Delete(key string) (bool, error)

	// Clear removes all entries from the store.
	Clear() error

	// Size returns the current number of entries.
	Size() int

	// Keys returns a slice of all keys currently in the store.
	Keys() []string

	// Stats returns store statistics. Never nil.
	Stats() *Statistics

	// Close releases any resources held by the store.
	Close() error
}

// validateKey validates a store key for basic requirements.
func validateKey(key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	return nil
}
