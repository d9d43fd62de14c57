// Package typed provides type-safe access to blobs stored in core.Preferences.
package typed

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/bubbly/pkg/codec"
	"github.com/aretw0/bubbly/pkg/core"
)

// Repository wraps one core.Preferences key to read and write a typed value.
type Repository[T any] struct {
	prefs core.Preferences
	key   string
	codec codec.Serializer
}

// NewRepository creates a typed wrapper for key. A nil serializer defaults to JSON.
func NewRepository[T any](prefs core.Preferences, key string, s codec.Serializer) *Repository[T] {
	if s == nil {
		s = codec.NewJSONSerializer()
	}
	return &Repository[T]{prefs: prefs, key: key, codec: s}
}

// Key returns the preferences key this repository reads and writes.
func (r *Repository[T]) Key() string { return r.key }

// Load reads and decodes the blob. A missing key returns core.ErrKeyNotFound.
func (r *Repository[T]) Load(ctx context.Context) (T, error) {
	var zero T

	data, err := r.prefs.Get(ctx, r.key)
	if err != nil {
		return zero, err
	}

	var v T
	if _, err := r.codec.Decode(data, &v); err != nil {
		return zero, fmt.Errorf("decode %s: %w", r.key, err)
	}
	return v, nil
}

// LoadOr behaves like Load but returns fallback when the key is missing.
func (r *Repository[T]) LoadOr(ctx context.Context, fallback T) (T, error) {
	v, err := r.Load(ctx)
	if errors.Is(err, core.ErrKeyNotFound) {
		return fallback, nil
	}
	return v, err
}

// Encode produces the blob for v without writing it.
func (r *Repository[T]) Encode(v T) ([]byte, error) {
	return r.codec.Encode(r.key, v)
}

// Save encodes v and stores it under the key.
func (r *Repository[T]) Save(ctx context.Context, v T) error {
	data, err := r.Encode(v)
	if err != nil {
		return &core.PersistError{Key: r.key, Op: "encode", Err: err}
	}
	if err := r.prefs.Set(ctx, r.key, data); err != nil {
		return &core.PersistError{Key: r.key, Op: "write", Err: err}
	}
	return nil
}

// Delete removes the key.
func (r *Repository[T]) Delete(ctx context.Context) error {
	return r.prefs.Delete(ctx, r.key)
}
