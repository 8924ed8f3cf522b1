package views

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bookstore-insights/backend/internal/dataset"
	"github.com/bookstore-insights/backend/internal/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scenarioCSV = "title,authors,average_rating,ratings_count\n" +
	"A,X,4.5,100\n" +
	"B,Y,4.5,\n" +
	"C,X,3.0,20\n"

func load(t *testing.T, csv string) *dataset.Dataset {
	t.Helper()
	res, err := parser.ParseBytes("books.csv", []byte(csv))
	require.NoError(t, err)
	return res.Dataset
}

func metricByLabel(t *testing.T, p *Payload, prefix string) Metric {
	t.Helper()
	s, ok := p.Find(KindMetrics)
	require.True(t, ok, "no metrics section")
	for _, m := range s.Metrics {
		if strings.Contains(m.Label, prefix) {
			return m
		}
	}
	t.Fatalf("metric %q not found", prefix)
	return Metric{}
}

func TestKeys(t *testing.T) {
	all := AllKeys()
	require.Len(t, all, 7)
	assert.Equal(t, Home, all[0].Key)
	assert.Equal(t, Feedback, all[6].Key)
	assert.Equal(t, "🏆 Top Rated Books", TopRated.Label())
	assert.True(t, Insights.UsesDataset())
	assert.False(t, Upload.UsesDataset())

	for _, info := range all {
		k, err := ParseKey(string(info.Key))
		require.NoError(t, err)
		assert.Equal(t, info.Key, k)
	}

	_, err := ParseKey("settings")
	assert.ErrorIs(t, err, ErrUnknownView)
	_, err = ParseKey("Home")
	assert.ErrorIs(t, err, ErrUnknownView)
}

func TestRouter(t *testing.T) {
	r := NewRouter(nil)

	for _, info := range AllKeys() {
		p := r.Render(info.Key, Request{Dataset: load(t, scenarioCSV)})
		assert.Equal(t, info.Key, p.View)
		assert.NotEmpty(t, p.Title)
	}

	assert.Panics(t, func() { r.Route(Key("settings")) })
}

func TestDashboard(t *testing.T) {
	t.Run("all metrics", func(t *testing.T) {
		p := dashboardView(Request{Dataset: load(t, scenarioCSV)})

		s, ok := p.Find(KindTable)
		require.True(t, ok)
		assert.Equal(t, 3, s.Table.RowCount)

		assert.Equal(t, "4.00", metricByLabel(t, p, "Average Rating").Value)
		assert.Equal(t, "3", metricByLabel(t, p, "Total Books").Value)
		assert.Equal(t, "2", metricByLabel(t, p, "Total Authors").Value)
		assert.Equal(t, "2", metricByLabel(t, p, "Bestsellers").Value)
		assert.Empty(t, p.Messages(LevelError))
	})

	t.Run("preview is capped at ten rows", func(t *testing.T) {
		var b strings.Builder
		b.WriteString("title,authors,average_rating\n")
		for i := 0; i < 25; i++ {
			fmt.Fprintf(&b, "T%d,A%d,%d\n", i, i%3, i%5)
		}
		p := dashboardView(Request{Dataset: load(t, b.String())})
		s, _ := p.Find(KindTable)
		assert.Equal(t, 10, s.Table.RowCount)
		assert.Equal(t, "T0", s.Table.Rows[0][0])
		assert.Equal(t, "25", metricByLabel(t, p, "Total Books").Value)
		assert.Equal(t, NotAvailable, metricByLabel(t, p, "Bestsellers").Value)
	})

	t.Run("upload missing average_rating", func(t *testing.T) {
		upload := load(t, "title,authors\nA,X\nB,Y\n")
		p := dashboardView(Request{Dataset: upload})

		avg := metricByLabel(t, p, "Average Rating")
		assert.Empty(t, avg.Value)
		assert.Equal(t, CodeColumnNotFound, avg.Code)
		assert.Contains(t, avg.Error, "average_rating")

		assert.Equal(t, "2", metricByLabel(t, p, "Total Books").Value)
		assert.Equal(t, "2", metricByLabel(t, p, "Total Authors").Value)
		s, ok := p.Find(KindTable)
		require.True(t, ok)
		assert.Equal(t, 2, s.Table.RowCount)

		errs := p.Messages(LevelError)
		require.Len(t, errs, 1)
		assert.Equal(t, CodeColumnNotFound, errs[0].Code)
	})

	t.Run("string rating column", func(t *testing.T) {
		p := dashboardView(Request{Dataset: load(t, "title,authors,average_rating\nA,X,good\n")})
		assert.Equal(t, CodeColumnType, metricByLabel(t, p, "Average Rating").Code)
	})
}

func TestSearch(t *testing.T) {
	d := load(t, "title,authors,average_rating\n"+
		"The Hobbit,J.R.R. Tolkien,4.27\n"+
		"100% Pure,Anon,3.1\n"+
		"hobbit notes,Fan,2.0\n"+
		"Silmarillion,J.R.R. Tolkien,3.9\n")

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"title match", "Hobbit", []string{"The Hobbit"}},
		{"case preserving", "hobbit", []string{"hobbit notes"}},
		{"author match", "Tolkien", []string{"The Hobbit", "Silmarillion"}},
		{"percent is literal", "%", []string{"100% Pure"}},
		{"underscore is literal", "_", nil},
		{"no match", "Dune", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := searchView(Request{Dataset: d, Query: tt.query})
			s, ok := p.Find(KindTable)
			require.True(t, ok)

			var titles []string
			for _, row := range s.Table.Rows {
				titles = append(titles, row[0].(string))
			}
			assert.Equal(t, tt.want, titles)

			md, ok := p.Find(KindMarkdown)
			require.True(t, ok)
			assert.Equal(t, "Results for: **"+tt.query+"**", md.Markdown)
		})
	}

	t.Run("empty term runs no query", func(t *testing.T) {
		p := searchView(Request{Dataset: d})
		_, ok := p.Find(KindTable)
		assert.False(t, ok)
		assert.Len(t, p.Messages(LevelInfo), 1)
	})

	t.Run("limit", func(t *testing.T) {
		var b strings.Builder
		b.WriteString("title,authors\n")
		for i := 0; i < 30; i++ {
			fmt.Fprintf(&b, "Book %d,Same Author\n", i)
		}
		p := searchView(Request{Dataset: load(t, b.String()), Query: "Same"})
		s, _ := p.Find(KindTable)
		assert.Equal(t, searchLimit, s.Table.RowCount)
	})

	t.Run("missing column", func(t *testing.T) {
		p := searchView(Request{Dataset: load(t, "title\nA\n"), Query: "A"})
		errs := p.Messages(LevelError)
		require.Len(t, errs, 1)
		assert.Equal(t, CodeColumnNotFound, errs[0].Code)
	})
}

func TestTopRated(t *testing.T) {
	p := topRatedView(Request{Dataset: load(t, scenarioCSV)})

	s, ok := p.Find(KindTable)
	require.True(t, ok)
	require.Equal(t, 3, s.Table.RowCount)
	assert.Equal(t, "A", s.Table.Rows[0][0])
	assert.Equal(t, "B", s.Table.Rows[1][0])
	assert.Equal(t, "C", s.Table.Rows[2][0])

	c, ok := p.Find(KindBarChart)
	require.True(t, ok)
	assert.Equal(t, []string{"A", "B", "C"}, c.BarChart.Labels)
	assert.Equal(t, []float64{4.5, 4.5, 3.0}, c.BarChart.Values)
	assert.Equal(t, "horizontal", c.BarChart.Orientation)
	assert.Equal(t, "descending", c.BarChart.Order)

	t.Run("chart keeps top ten and skips unrated", func(t *testing.T) {
		var b strings.Builder
		b.WriteString("title,average_rating\n")
		b.WriteString("Unrated,\n")
		for i := 0; i < 25; i++ {
			fmt.Fprintf(&b, "T%02d,%d\n", i, i)
		}
		p := topRatedView(Request{Dataset: load(t, b.String())})
		s, _ := p.Find(KindTable)
		assert.Equal(t, topLimit, s.Table.RowCount)
		c, _ := p.Find(KindBarChart)
		assert.Len(t, c.BarChart.Labels, chartLimit)
		assert.Equal(t, "T24", c.BarChart.Labels[0])
	})

	t.Run("missing rating column", func(t *testing.T) {
		p := topRatedView(Request{Dataset: load(t, "title\nA\n")})
		assert.Equal(t, CodeColumnNotFound, p.Messages(LevelError)[0].Code)
	})
}

func TestInsights(t *testing.T) {
	p := insightsView(Request{Dataset: load(t, scenarioCSV)})

	s, ok := p.Find(KindTable)
	require.True(t, ok)
	assert.Equal(t, []string{"authors", "book_count"}, []string{s.Table.Columns[0].Name, s.Table.Columns[1].Name})
	assert.Equal(t, [][]any{{"X", 2.0}, {"Y", 1.0}}, s.Table.Rows)

	c, ok := p.Find(KindBarChart)
	require.True(t, ok)
	assert.Equal(t, []string{"X", "Y"}, c.BarChart.Labels)
	assert.Equal(t, []float64{2, 1}, c.BarChart.Values)

	h, ok := p.Find(KindHistogram)
	require.True(t, ok)
	assert.Equal(t, ratingBins, h.Histogram.Bins)
	assert.Len(t, h.Histogram.Counts, ratingBins)
	assert.Len(t, h.Histogram.Edges, ratingBins+1)
	total := 0
	for _, n := range h.Histogram.Counts {
		total += n
	}
	assert.Equal(t, 3, total)
	assert.Equal(t, 3.0, h.Histogram.Min)
	assert.Equal(t, 4.5, h.Histogram.Max)

	t.Run("parts fail independently", func(t *testing.T) {
		p := insightsView(Request{Dataset: load(t, "title,average_rating\nA,4\nB,5\n")})
		errs := p.Messages(LevelError)
		require.Len(t, errs, 1)
		assert.Equal(t, CodeColumnNotFound, errs[0].Code)
		_, ok := p.Find(KindHistogram)
		assert.True(t, ok)
	})
}

func TestUpload(t *testing.T) {
	t.Run("no file", func(t *testing.T) {
		p := uploadView(Request{})
		assert.Len(t, p.Messages(LevelInfo), 1)
		_, ok := p.Find(KindTable)
		assert.False(t, ok)
	})

	t.Run("valid csv", func(t *testing.T) {
		primary := load(t, scenarioCSV)
		p := uploadView(Request{Dataset: primary, Upload: &UploadInput{
			Name: "mine.csv",
			Data: []byte("isbn,pages\n123,100\n456,200\n"),
		}})

		assert.Len(t, p.Messages(LevelSuccess), 1)
		s, ok := p.Find(KindTable)
		require.True(t, ok)
		assert.Equal(t, "isbn", s.Table.Columns[0].Name)
		assert.Equal(t, 2, s.Table.RowCount)
		assert.Equal(t, 3, primary.Count(), "primary dataset untouched")
	})

	t.Run("malformed rows are reported", func(t *testing.T) {
		p := uploadView(Request{Upload: &UploadInput{
			Name: "mine.csv",
			Data: []byte("a,b\n1,2\n3\n4,5\n"),
		}})
		warn := p.Messages(LevelWarning)
		require.Len(t, warn, 1)
		assert.Contains(t, warn[0].Text, "Skipped 1 malformed row")
		s, _ := p.Find(KindTable)
		assert.Equal(t, 2, s.Table.RowCount)
	})

	t.Run("unreadable file", func(t *testing.T) {
		p := uploadView(Request{Upload: &UploadInput{Name: "empty.csv"}})
		errs := p.Messages(LevelError)
		require.Len(t, errs, 1)
		assert.Equal(t, CodeParseError, errs[0].Code)
	})

	t.Run("pre-parsed result is used", func(t *testing.T) {
		res, err := ParseUpload("x.csv", []byte("only\n1\n"))
		require.NoError(t, err)
		p := uploadView(Request{Upload: &UploadInput{Name: "x.csv", Result: res}})
		s, _ := p.Find(KindTable)
		assert.Equal(t, "only", s.Table.Columns[0].Name)
	})
}

func TestFeedback(t *testing.T) {
	tests := []struct {
		name    string
		in      FeedbackInput
		level   Level
		missing string
	}{
		{"complete", FeedbackInput{Name: "Ada", Text: "hello"}, LevelSuccess, ""},
		{"missing name", FeedbackInput{Name: "", Text: "hello"}, LevelWarning, "name"},
		{"missing text", FeedbackInput{Name: "Ada"}, LevelWarning, "feedback"},
		{"missing both", FeedbackInput{}, LevelWarning, "name, feedback"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := tt.in
			p := feedbackView(Request{Feedback: &in})
			msgs := p.Messages()
			require.Len(t, msgs, 1)
			assert.Equal(t, tt.level, msgs[0].Level)
			if tt.missing != "" {
				assert.True(t, strings.HasSuffix(msgs[0].Text, "Missing: "+tt.missing), msgs[0].Text)
				assert.Equal(t, CodeMissingFields, msgs[0].Code)
				assert.Empty(t, p.Messages(LevelSuccess))
			}
		})
	}
}

func TestHome(t *testing.T) {
	def := DefaultHome()
	assert.Contains(t, def.Title, "Online Bookstore Data Insights")
	assert.Len(t, def.Features, 5)

	p := NewRouter(nil).Render(Home, Request{})
	require.Len(t, p.Sections, 1)
	assert.Contains(t, p.Sections[0].Markdown, "- Search books by title or author")

	t.Run("override keeps unset fields", func(t *testing.T) {
		c, err := ParseHome([]byte("title: Shop Stats\nfeatures: [One]\n"))
		require.NoError(t, err)
		assert.Equal(t, "Shop Stats", c.Title)
		assert.Equal(t, []string{"One"}, c.Features)
		assert.Equal(t, def.Intro, c.Intro)
	})

	t.Run("load from file", func(t *testing.T) {
		dir := t.TempDir()
		c, err := LoadHome(filepath.Join(dir, "home.yaml"))
		require.NoError(t, err)
		assert.Equal(t, def, c)

		path := filepath.Join(dir, "custom.yaml")
		require.NoError(t, os.WriteFile(path, []byte("intro: Hi\n"), 0644))
		c, err = LoadHome(path)
		require.NoError(t, err)
		assert.Equal(t, "Hi", c.Intro)

		require.NoError(t, os.WriteFile(path, []byte("features: {bad"), 0644))
		_, err = LoadHome(path)
		assert.Error(t, err)
	})
}
