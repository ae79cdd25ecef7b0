package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/aicardgame-go/internal/model"
	"github.com/mcoot/aicardgame-go/internal/storage"
	"github.com/mcoot/aicardgame-go/internal/storage/storagetest"
)

func openTemp(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "cardgame.db")
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, &storagetest.StorageSuite{
		NewStorage: func() storage.Storage {
			store, err := OpenStore(openTemp(t))
			require.NoError(t, err)
			t.Cleanup(func() { _ = store.Close() })
			return store
		},
	})
}

func TestReopenKeepsData(t *testing.T) {
	path := openTemp(t)
	ctx := context.Background()

	store, err := OpenStore(path)
	require.NoError(t, err)
	require.NoError(t, store.SaveGameState(ctx, &model.GameState{UserID: "alice", Tokens: 42}))
	require.NoError(t, store.Close())

	// Migrations are recorded and not re-run
	store, err = OpenStore(path)
	require.NoError(t, err)
	defer store.Close()

	got, err := store.GetGameState(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 42, got.Tokens)
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open("  ")
	assert.Error(t, err)
}

func TestExtractUp(t *testing.T) {
	sql := "-- +migrate Up\nCREATE TABLE a (id INT);\n-- +migrate Down\nDROP TABLE a;\n"
	assert.Equal(t, "\nCREATE TABLE a (id INT);\n", extractUp(sql))
	assert.Equal(t, "SELECT 1;", extractUp("SELECT 1;"))
}
