package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/bookstore-insights/backend/internal/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsedStore(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	ps, err := NewParsedStore(dir, parser.DefaultDuckOptions())
	require.NoError(t, err)
	assert.Empty(t, ps.List())

	res, err := parser.ParseBytes("books.csv", []byte(booksCSV))
	require.NoError(t, err)

	require.NoError(t, ps.Save(ctx, "abc", res.Dataset))
	require.NoError(t, ps.Save(ctx, "def", res.Dataset))
	assert.Equal(t, []string{"abc", "def"}, ps.List())
	assert.FileExists(t, filepath.Join(dir, "file_abc.duckdb"))

	t.Run("rescans on startup", func(t *testing.T) {
		again, err := NewParsedStore(dir, parser.DefaultDuckOptions())
		require.NoError(t, err)
		assert.Equal(t, []string{"abc", "def"}, again.List())

		d, err := again.Load(ctx, "abc")
		require.NoError(t, err)
		assert.Equal(t, res.Dataset.Records(), d.Records())
	})

	t.Run("stats", func(t *testing.T) {
		stats := ps.Stats()
		assert.Equal(t, 2, stats["snapshotCount"])
		assert.Greater(t, stats["totalSize"].(int64), int64(0))
	})

	t.Run("cleanup orphaned", func(t *testing.T) {
		assert.Equal(t, 1, ps.CleanupOrphaned([]string{"abc"}))
		assert.False(t, ps.Has("def"))
		_, err := os.Stat(ps.DBPath("def"))
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, ps.Delete("abc"))
		assert.False(t, ps.Has("abc"))
		_, err := ps.Load(ctx, "abc")
		assert.ErrorIs(t, err, ErrSnapshotNotFound)
		assert.NoError(t, ps.Delete("abc"), "deleting twice is fine")
	})
}
