package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/bubbly/pkg/core"
)

func TestPreferences(t *testing.T) {
	ctx := context.Background()
	p := New()
	require.NoError(t, p.Initialize(ctx))

	_, err := p.Get(ctx, "notes")
	assert.ErrorIs(t, err, core.ErrKeyNotFound)

	value := []byte(`[]`)
	require.NoError(t, p.Set(ctx, "notes", value))
	require.NoError(t, p.Set(ctx, "settings", []byte(`{}`)))
	value[0] = 'x'

	got, err := p.Get(ctx, "notes")
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(got), "Set copies its input")
	assert.Equal(t, 2, p.Writes())

	keys, err := p.Keys(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"notes", "settings"}, keys)

	keys, err = p.Keys(ctx, "s*")
	require.NoError(t, err)
	assert.Equal(t, []string{"settings"}, keys)

	_, err = p.Keys(ctx, "[")
	assert.Error(t, err)

	require.NoError(t, p.Delete(ctx, "notes"))
	_, err = p.Get(ctx, "notes")
	assert.ErrorIs(t, err, core.ErrKeyNotFound)
}

func TestSetHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := New()
	assert.ErrorIs(t, p.Set(ctx, "notes", []byte(`[]`)), context.Canceled)
	assert.Zero(t, p.Writes())
}
