package platform_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/bubbly/internal/platform"
	"github.com/aretw0/bubbly/pkg/adapters/fs"
	"github.com/aretw0/bubbly/pkg/adapters/memory"
	"github.com/aretw0/bubbly/pkg/adapters/sqlite"
)

func TestInit(t *testing.T) {
	t.Run("FS Creates Directory", func(t *testing.T) {
		dataPath := filepath.Join(t.TempDir(), "data")

		prefs, err := platform.Init(dataPath)
		require.NoError(t, err)

		repo, ok := prefs.(*fs.Repository)
		require.True(t, ok, "expected fs repository, got %T", prefs)
		assert.Equal(t, dataPath, repo.Path)

		info, err := os.Stat(dataPath)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})

	t.Run("FS Extension Follows Format", func(t *testing.T) {
		dataPath := filepath.Join(t.TempDir(), "data")

		prefs, err := platform.Init(dataPath, platform.WithFormat("yaml"))
		require.NoError(t, err)

		state := prefs.(*fs.Repository).State().(fs.RepositoryState)
		assert.Equal(t, ".yaml", state.Ext)
	})

	t.Run("MustExist Fails if Directory Missing", func(t *testing.T) {
		_, err := platform.Init(filepath.Join(t.TempDir(), "missing"), platform.WithMustExist(true))
		assert.Error(t, err)
	})

	t.Run("ReadOnly Does Not Create Directory", func(t *testing.T) {
		dataPath := filepath.Join(t.TempDir(), "ro")

		_, err := platform.Init(dataPath, platform.WithReadOnly(true))
		require.NoError(t, err)
		_, err = os.Stat(dataPath)
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("Dev Safety Redirects Paths Outside Temp", func(t *testing.T) {
		prefs, err := platform.Init("bubbly-ops-test", platform.WithAdapter("memory"))
		require.NoError(t, err)
		assert.IsType(t, &memory.Preferences{}, prefs)

		prefs, err = platform.Init("bubbly-ops-test")
		require.NoError(t, err)
		repo := prefs.(*fs.Repository)
		t.Cleanup(func() { _ = os.RemoveAll(repo.Path) })
		assert.Equal(t, filepath.Join(os.TempDir(), platform.DevDirName, "bubbly-ops-test"), repo.Path)
	})

	t.Run("SQLite In Directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "db")

		prefs, err := platform.Init(dir, platform.WithAdapter("sqlite"), platform.WithSQLiteSync("FULL"))
		require.NoError(t, err)
		repo, ok := prefs.(*sqlite.Repository)
		require.True(t, ok, "expected sqlite repository, got %T", prefs)
		t.Cleanup(func() { _ = repo.Close() })

		state := repo.State().(sqlite.RepositoryState)
		assert.Equal(t, filepath.Join(dir, platform.SQLiteFile), state.DSN)
		assert.Equal(t, "FULL", state.SyncMode)
		assert.True(t, state.WAL)

		require.NoError(t, repo.Set(context.Background(), "notes", []byte(`[]`)))
		_, err = os.Stat(filepath.Join(dir, platform.SQLiteFile))
		assert.NoError(t, err)
	})

	t.Run("SQLite Memory DSN", func(t *testing.T) {
		prefs, err := platform.Init(":memory:", platform.WithAdapter("sqlite"), platform.WithSQLiteWAL(false))
		require.NoError(t, err)
		repo := prefs.(*sqlite.Repository)
		t.Cleanup(func() { _ = repo.Close() })
		assert.Equal(t, ":memory:", repo.State().(sqlite.RepositoryState).DSN)
	})

	t.Run("Injected Preferences Win", func(t *testing.T) {
		injected := memory.New()
		prefs, err := platform.Init("ignored", platform.WithAdapter("sqlite"), platform.WithPreferences(injected))
		require.NoError(t, err)
		assert.Same(t, injected, prefs)
	})

	t.Run("Unknown Adapter", func(t *testing.T) {
		_, err := platform.Init(t.TempDir(), platform.WithAdapter("s3"))
		assert.ErrorContains(t, err, "unknown adapter")
	})

	t.Run("Unknown Format", func(t *testing.T) {
		_, err := platform.Init(t.TempDir(), platform.WithFormat("toml"))
		assert.Error(t, err)
	})
}
