package bubbly

import (
	"github.com/aretw0/bubbly/pkg/codec"
	"github.com/aretw0/bubbly/pkg/core"
	"github.com/aretw0/bubbly/pkg/typed"
)

// TypedRepository reads and writes one typed value under a preferences key.
// The store uses it for its own collections; applications can keep extra state next to them.
type TypedRepository[T any] = typed.Repository[T]

// NewTyped creates a typed wrapper for key. A nil serializer defaults to JSON.
func NewTyped[T any](prefs core.Preferences, key string, s codec.Serializer) *TypedRepository[T] {
	return typed.NewRepository[T](prefs, key, s)
}
