// parser_test.go - Tests for value parsing, type inference and parser selection
package parser

import (
	"bytes"
	"testing"

	"github.com/bookstore-insights/backend/internal/dataset"
	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNumber(t *testing.T) {
	tests := []struct {
		input string
		want  float64
		ok    bool
	}{
		{"42", 42, true},
		{"-100", -100, true},
		{"4.57", 4.57, true},
		{" 3.5 ", 3.5, true},
		{"+7", 7, true},
		{".5", 0.5, true},
		{"1e3", 1000, true},
		{"0x1F", 0, false},
		{"1_000", 0, false},
		{"Inf", 0, false},
		{"NaN", 0, false},
		{"9780439785969", 9780439785969, true},
		{"0439785960X", 0, false},
		{"", 0, false},
		{"hello", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseNumber(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.want, got, 1e-9)
			}
		})
	}
}

func TestIsNullToken(t *testing.T) {
	for _, s := range []string{"", "  ", "NA", "N/A", "NaN", "null", "None", "<NA>"} {
		assert.True(t, IsNullToken(s), "%q should be null", s)
	}
	for _, s := range []string{"0", "none at all", "Nancy"} {
		assert.False(t, IsNullToken(s), "%q should not be null", s)
	}
}

func TestInferType(t *testing.T) {
	tests := []struct {
		name  string
		cells []string
		want  dataset.Type
	}{
		{"all numbers", []string{"1", "2.5", "-3"}, dataset.TypeNumber},
		{"numbers with gaps", []string{"1", "", "NA", "4"}, dataset.TypeNumber},
		{"one string", []string{"1", "two", "3"}, dataset.TypeString},
		{"all null", []string{"", "NaN"}, dataset.TypeNumber},
		{"no cells", nil, dataset.TypeNumber},
		{"isbn with letter", []string{"043935806X", "0439785960"}, dataset.TypeString},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InferType(tt.cells))
		})
	}
}

func TestParseValue(t *testing.T) {
	v := ParseValue(" 4.50 ", dataset.TypeNumber)
	f, ok := v.Float()
	require.True(t, ok)
	assert.Equal(t, 4.5, f)
	assert.Equal(t, "4.50", v.Text())

	assert.True(t, ParseValue("N/A", dataset.TypeNumber).IsNull())
	assert.True(t, ParseValue("", dataset.TypeString).IsNull())

	s := ParseValue("12", dataset.TypeString)
	assert.Equal(t, dataset.KindString, s.Kind())
	assert.Equal(t, "12", s.Text())
}

func TestParserRegistry(t *testing.T) {
	registry := NewRegistry()

	t.Run("registers default parsers", func(t *testing.T) {
		for _, name := range []string{"csv", "tsv", "csv_semicolon"} {
			p, err := registry.GetParserByName(name)
			require.NoError(t, err, name)
			assert.Equal(t, name, p.Name())
		}
		_, err := registry.GetParserByName("xlsx")
		assert.Error(t, err)
	})

	t.Run("finds parser by extension", func(t *testing.T) {
		p, err := registry.FindParser("books.tsv", []byte("a,b\n1,2\n"))
		require.NoError(t, err)
		assert.Equal(t, "tsv", p.Name())
	})

	t.Run("finds parser by content", func(t *testing.T) {
		p, err := registry.FindParser("download", []byte("a;b;c\n1;2;3\n"))
		require.NoError(t, err)
		assert.Equal(t, "csv_semicolon", p.Name())

		p, err = registry.FindParser("download", []byte("a\tb\n1\t2\n"))
		require.NoError(t, err)
		assert.Equal(t, "tsv", p.Name())
	})

	t.Run("falls back to csv", func(t *testing.T) {
		p, err := registry.FindParser("download", []byte("title\nHobbit\n"))
		require.NoError(t, err)
		assert.Equal(t, "csv", p.Name())
	})

	t.Run("rejects empty unnamed input", func(t *testing.T) {
		p, err := registry.FindParser("download", nil)
		assert.Error(t, err)
		assert.Nil(t, p)
	})
}

func TestParseBytes(t *testing.T) {
	const content = "title,average_rating\nA,4.5\nB,3.0\n"

	t.Run("plain", func(t *testing.T) {
		res, err := ParseBytes("books.csv", []byte(content))
		require.NoError(t, err)
		assert.Equal(t, 2, res.Dataset.Count())
		assert.Empty(t, res.Errors)
	})

	t.Run("gzip", func(t *testing.T) {
		var buf bytes.Buffer
		zw := gzip.NewWriter(&buf)
		_, err := zw.Write([]byte(content))
		require.NoError(t, err)
		require.NoError(t, zw.Close())

		res, err := ParseBytes("books.csv.gz", buf.Bytes())
		require.NoError(t, err)
		assert.Equal(t, 2, res.Dataset.Count())
		avg, err := res.Dataset.Average("average_rating")
		require.NoError(t, err)
		assert.InDelta(t, 3.75, avg, 1e-9)
	})

	t.Run("empty csv", func(t *testing.T) {
		_, err := ParseBytes("books.csv", nil)
		assert.ErrorIs(t, err, ErrNoHeader)
	})
}
