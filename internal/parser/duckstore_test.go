// duckstore_test.go - Tests for DuckDB-backed dataset snapshots
package parser

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/bookstore-insights/backend/internal/dataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDataset(t *testing.T) *dataset.Dataset {
	t.Helper()
	schema := dataset.MustSchema(
		dataset.Column{Name: "title", Type: dataset.TypeString},
		dataset.Column{Name: "average rating", Type: dataset.TypeNumber},
	)
	d, err := dataset.New(schema, []dataset.Row{
		{dataset.String("A"), dataset.Number(3.5)},
		{dataset.String("B"), dataset.Null()},
		{dataset.Null(), dataset.Number(5)},
	})
	require.NoError(t, err)
	return d
}

func TestDuckStore_SaveAndLoad(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "snapshot.duckdb")

	store, err := NewDuckStoreAtPath(dbPath, DefaultDuckOptions())
	require.NoError(t, err)
	defer store.Close()

	want := sampleDataset(t)
	require.NoError(t, store.SaveDataset(ctx, want))
	assert.Equal(t, 3, store.Len())
	assert.Equal(t, want.Schema().Names(), store.Schema().Names())

	got, err := store.LoadDataset(ctx)
	require.NoError(t, err)
	assert.Equal(t, want.Records(), got.Records())

	t.Run("keeps number source text", func(t *testing.T) {
		src, err := ParseBytes("ratings.csv", []byte("title,average_rating\nA,4.10\nB,3.00\nC,\n"))
		require.NoError(t, err)

		textPath := filepath.Join(t.TempDir(), "text.duckdb")
		ts, err := NewDuckStoreAtPath(textPath, DefaultDuckOptions())
		require.NoError(t, err)
		defer ts.Close()
		require.NoError(t, ts.SaveDataset(ctx, src.Dataset))

		back, err := ts.LoadDataset(ctx)
		require.NoError(t, err)
		assert.Equal(t, src.Dataset.Strings(), back.Strings())

		v, err := back.Value(0, "average_rating")
		require.NoError(t, err)
		assert.Equal(t, "4.10", v.Text())
		f, ok := v.Float()
		assert.True(t, ok)
		assert.Equal(t, 4.1, f)
	})

	t.Run("rejects a second save", func(t *testing.T) {
		assert.Error(t, store.SaveDataset(ctx, want))
	})
}

func TestDuckStore_OpenReadOnly(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "snapshot.duckdb")

	store, err := NewDuckStoreAtPath(dbPath, DefaultDuckOptions())
	require.NoError(t, err)
	require.NoError(t, store.SaveDataset(ctx, sampleDataset(t)))
	require.NoError(t, store.Close())

	_, err = os.Stat(dbPath)
	require.NoError(t, err, "database file should survive Close")

	reopened, err := OpenDuckStoreReadOnly(dbPath, DefaultDuckOptions())
	require.NoError(t, err)
	defer reopened.Close()

	assert.Equal(t, 3, reopened.Len())
	_, col, err := reopened.Schema().Lookup("average rating")
	require.NoError(t, err)
	assert.Equal(t, dataset.TypeNumber, col.Type)

	d, err := reopened.LoadDataset(ctx)
	require.NoError(t, err)
	avg, err := d.Average("average rating")
	require.NoError(t, err)
	assert.Equal(t, 4.25, avg)
}

func TestDuckStore_EmptyDataset(t *testing.T) {
	ctx := context.Background()
	store, err := NewDuckStoreAtPath(filepath.Join(t.TempDir(), "empty.duckdb"), DefaultDuckOptions())
	require.NoError(t, err)
	defer store.Close()

	_, err = store.LoadDataset(ctx)
	assert.Error(t, err, "nothing saved yet")

	empty, err := dataset.New(dataset.MustSchema(dataset.Column{Name: "title", Type: dataset.TypeString}), nil)
	require.NoError(t, err)
	require.NoError(t, store.SaveDataset(ctx, empty))

	got, err := store.LoadDataset(ctx)
	require.NoError(t, err)
	assert.True(t, got.IsEmpty())
	assert.Equal(t, []string{"title"}, got.Schema().Names())
}

func TestOpenDuckStoreReadOnly_Missing(t *testing.T) {
	_, err := OpenDuckStoreReadOnly(filepath.Join(t.TempDir(), "nope.duckdb"), DefaultDuckOptions())
	assert.Error(t, err)
}
