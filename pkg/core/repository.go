package core

import "context"

// Preferences defines the contract for the key-value store every collection is persisted to.
// Adhering to this interface keeps the Store independent of the underlying storage
// (a directory of files, SQLite, memory).
type Preferences interface {
	// Initialize ensures the underlying storage is ready (directories, schema).
	Initialize(ctx context.Context) error

	// Get returns the raw blob stored under key, or ErrKeyNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a blob under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Keys returns the stored keys matching a doublestar pattern ("" or "*" for all), sorted.
	Keys(ctx context.Context, pattern string) ([]string, error)
}

// Watchable is implemented by preferences that can report changes made outside the Store.
type Watchable interface {
	// Watch emits an event for every key matching pattern that changes until ctx is done.
	Watch(ctx context.Context, pattern string) (<-chan KeyEvent, error)
}
