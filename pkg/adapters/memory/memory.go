// Package memory implements core.Preferences in process memory.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/aretw0/bubbly/pkg/core"
)

// Preferences is a map-backed core.Preferences. The zero value is not usable; use New.
type Preferences struct {
	mu     sync.RWMutex
	values map[string][]byte
	writes int
}

// New creates an empty in-memory store.
func New() *Preferences {
	return &Preferences{values: make(map[string][]byte)}
}

func (p *Preferences) Initialize(ctx context.Context) error { return nil }

func (p *Preferences) Get(ctx context.Context, key string) ([]byte, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	v, ok := p.values[key]
	if !ok {
		return nil, core.ErrKeyNotFound
	}
	return append([]byte(nil), v...), nil
}

func (p *Preferences) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	p.values[key] = append([]byte(nil), value...)
	p.writes++
	return nil
}

func (p *Preferences) Delete(ctx context.Context, key string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	delete(p.values, key)
	return nil
}

func (p *Preferences) Keys(ctx context.Context, pattern string) ([]string, error) {
	if pattern == "" {
		pattern = "*"
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, doublestar.ErrBadPattern
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	keys := make([]string, 0, len(p.values))
	for k := range p.values {
		if ok, _ := doublestar.Match(pattern, k); ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Writes returns how many Set calls succeeded.
func (p *Preferences) Writes() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.writes
}

var _ core.Preferences = (*Preferences)(nil)
