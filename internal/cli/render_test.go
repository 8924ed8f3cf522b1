package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bookstore-insights/backend/internal/parser"
	"github.com/bookstore-insights/backend/internal/views"
	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const booksCSV = "title,authors,average_rating,ratings_count\nA,X,4.0,100\nB,Y,4.5,250\nC,X,3.0,80\n"

func init() {
	pterm.DisableStyling()
}

func render(t *testing.T, key views.Key, req views.Request) string {
	t.Helper()
	out, err := RenderPayload(views.NewRouter(nil).Render(key, req))
	require.NoError(t, err)
	return out
}

func TestRenderPayload(t *testing.T) {
	res, err := parser.ParseBytes("books.csv", []byte(booksCSV))
	require.NoError(t, err)
	d := res.Dataset

	t.Run("dashboard", func(t *testing.T) {
		out := render(t, views.Dashboard, views.Request{Dataset: d})
		assert.Contains(t, out, "Book Ratings Dashboard")
		assert.Contains(t, out, "Average Rating: 3.83")
		assert.Contains(t, out, "Total Authors: 2")
		assert.Contains(t, out, "3 row(s)")
	})

	t.Run("top rated chart", func(t *testing.T) {
		out := render(t, views.TopRated, views.Request{Dataset: d})
		assert.Contains(t, out, "B (4.5)")
		assert.Contains(t, out, "A (4)")
	})

	t.Run("insights histogram", func(t *testing.T) {
		out := render(t, views.Insights, views.Request{Dataset: d})
		assert.Contains(t, out, "3 values, 20 bins")
	})

	t.Run("feedback warning", func(t *testing.T) {
		out := render(t, views.Feedback, views.Request{Feedback: &views.FeedbackInput{Name: "Ann"}})
		assert.Contains(t, out, "Missing: feedback")
	})

	t.Run("missing column", func(t *testing.T) {
		res, err := parser.ParseBytes("up.csv", []byte("title,pages\nZ,1\n"))
		require.NoError(t, err)
		out := render(t, views.Dashboard, views.Request{Dataset: res.Dataset})
		assert.Contains(t, out, "unavailable")
	})
}

func TestFormatCell(t *testing.T) {
	assert.Equal(t, "", formatCell(nil))
	assert.Equal(t, "100", formatCell(100.0))
	assert.Equal(t, "4.25", formatCell(4.25))
	assert.Equal(t, "Dune", formatCell("Dune"))
}

func TestExportCommand(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "books.csv")
	require.NoError(t, os.WriteFile(in, []byte(booksCSV), 0644))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"export", "--file", in, "--limit", "2"})
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		inputFlag, limitFlag = "", 0
	})

	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, "title,authors,average_rating,ratings_count\nA,X,4.0,100\nB,Y,4.5,250\n", out.String())
	assert.Equal(t, 3, strings.Count(out.String(), "\n"))
}
