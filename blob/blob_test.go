package blob

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/deepraj21/bhashabandhu-hackathon/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testStore runs the contract every backend has to honour.
func testStore(t *testing.T, store Store) {
	ctx := context.Background()

	t.Run("Missing key", func(t *testing.T) {
		_, err := store.Get(ctx, "never-written")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Put then get", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, "past_chats_list", []byte(`{"a":{"title":"New Chat"}}`)))

		data, err := store.Get(ctx, "past_chats_list")
		require.NoError(t, err)
		assert.JSONEq(t, `{"a":{"title":"New Chat"}}`, string(data))
	})

	t.Run("Last write wins", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, "chat-st_messages", []byte(`[1]`)))
		require.NoError(t, store.Put(ctx, "chat-st_messages", []byte(`[1,2,3]`)))

		data, err := store.Get(ctx, "chat-st_messages")
		require.NoError(t, err)
		assert.Equal(t, `[1,2,3]`, string(data))
	})

	t.Run("Invalid keys", func(t *testing.T) {
		for _, key := range []string{"", "..", "../escape", `a\b`, "a?b", "a#b"} {
			assert.Error(t, store.Put(ctx, key, []byte(`{}`)), "key %q", key)
			_, err := store.Get(ctx, key)
			assert.Error(t, err, "key %q", key)
		}
	})
}

func TestFileStore(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")

	store, err := NewFileStore(dir)
	require.NoError(t, err)
	defer store.Close()

	t.Run("Creates data directory", func(t *testing.T) {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})

	testStore(t, store)

	t.Run("No temp files left behind", func(t *testing.T) {
		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		for _, e := range entries {
			assert.Equal(t, ".json", filepath.Ext(e.Name()), "unexpected file %s", e.Name())
		}
	})
}

func TestSQLiteStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "nyayved.db")

	store, err := NewSQLiteStore(context.Background(), path)
	require.NoError(t, err)
	defer store.Close()

	testStore(t, store)

	t.Run("Survives reopen", func(t *testing.T) {
		require.NoError(t, store.Put(context.Background(), "durable", []byte(`"yes"`)))
		require.NoError(t, store.Close())

		reopened, err := NewSQLiteStore(context.Background(), path)
		require.NoError(t, err)
		defer reopened.Close()

		data, err := reopened.Get(context.Background(), "durable")
		require.NoError(t, err)
		assert.Equal(t, `"yes"`, string(data))
	})
}

func TestOpen(t *testing.T) {

	t.Run("File backend", func(t *testing.T) {
		cfg := config.Default()
		cfg.DataDir = t.TempDir()

		store, err := Open(context.Background(), cfg)
		require.NoError(t, err)
		defer store.Close()
		assert.IsType(t, &FileStore{}, store)
	})

	t.Run("SQLite backend", func(t *testing.T) {
		cfg := config.Default()
		cfg.DataDir = t.TempDir()
		cfg.Storage.Backend = config.BackendSQLite

		store, err := Open(context.Background(), cfg)
		require.NoError(t, err)
		defer store.Close()
		assert.IsType(t, &SQLiteStore{}, store)
		assert.FileExists(t, filepath.Join(cfg.DataDir, "nyayved.db"))
	})

	t.Run("Unknown backend", func(t *testing.T) {
		cfg := config.Default()
		cfg.Storage.Backend = "tape"

		_, err := Open(context.Background(), cfg)
		assert.Error(t, err)
	})
}
