package typed_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/bubbly/pkg/adapters/memory"
	"github.com/aretw0/bubbly/pkg/codec"
	"github.com/aretw0/bubbly/pkg/core"
	"github.com/aretw0/bubbly/pkg/typed"
)

type profile struct {
	Name string `json:"name" yaml:"name"`
	Age  int    `json:"age" yaml:"age"`
}

func TestTypedRepository(t *testing.T) {
	ctx := context.Background()

	for _, s := range []codec.Serializer{codec.NewJSONSerializer(), codec.NewYAMLSerializer()} {
		t.Run(s.Name(), func(t *testing.T) {
			prefs := memory.New()
			repo := typed.NewRepository[profile](prefs, "profile", s)
			assert.Equal(t, "profile", repo.Key())

			// 1. Missing key
			_, err := repo.Load(ctx)
			require.ErrorIs(t, err, core.ErrKeyNotFound)

			fallback, err := repo.LoadOr(ctx, profile{Name: "nobody"})
			require.NoError(t, err)
			assert.Equal(t, "nobody", fallback.Name)

			// 2. Save / Load
			require.NoError(t, repo.Save(ctx, profile{Name: "Alice", Age: 30}))
			got, err := repo.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, profile{Name: "Alice", Age: 30}, got)

			// 3. Delete
			require.NoError(t, repo.Delete(ctx))
			_, err = repo.Load(ctx)
			require.ErrorIs(t, err, core.ErrKeyNotFound)
		})
	}
}

func TestTypedRepository_DecodeError(t *testing.T) {
	ctx := context.Background()
	prefs := memory.New()
	require.NoError(t, prefs.Set(ctx, "profile", []byte("{not json")))

	repo := typed.NewRepository[profile](prefs, "profile", nil)
	_, err := repo.Load(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode profile")
	assert.False(t, errors.Is(err, core.ErrKeyNotFound))
}

type failingPrefs struct {
	*memory.Preferences
}

func (failingPrefs) Set(context.Context, string, []byte) error {
	return errors.New("disk full")
}

func TestTypedRepository_SaveReportsPersistError(t *testing.T) {
	repo := typed.NewRepository[profile](failingPrefs{memory.New()}, "profile", nil)

	err := repo.Save(context.Background(), profile{Name: "Bob"})

	var perr *core.PersistError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "profile", perr.Key)
	assert.Equal(t, "write", perr.Op)
	assert.EqualError(t, perr.Err, "disk full")
}
