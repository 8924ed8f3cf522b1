package dataset

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nan() float64 { return math.NaN() }

func TestDataset_Preview(t *testing.T) {
	d := scenarioBooks(t)

	tests := []struct {
		name string
		n    int
		want []string
	}{
		{"first two", 2, []string{"A", "B"}},
		{"more than available", 10, []string{"A", "B", "C"}},
		{"zero", 0, []string{}},
		{"negative", -3, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := d.Preview(tt.n)
			assert.Equal(t, tt.want, titles(p))
			assert.Equal(t, d.Schema(), p.Schema())
		})
	}
	assert.Equal(t, 3, d.Count(), "preview must not shrink the parent")
}

func TestDataset_Average(t *testing.T) {
	t.Run("scenario mean", func(t *testing.T) {
		avg, err := scenarioBooks(t).Average("average_rating")
		require.NoError(t, err)
		assert.InDelta(t, 4.0, avg, 1e-9)
	})

	t.Run("ignores nulls", func(t *testing.T) {
		d, err := New(booksSchema, []Row{
			{String("A"), String("X"), Number(5)},
			{String("B"), String("Y"), Null()},
			{String("C"), String("Z"), Number(3)},
		})
		require.NoError(t, err)
		avg, err := d.Average("average_rating")
		require.NoError(t, err)
		assert.InDelta(t, 4.0, avg, 1e-9)
	})

	t.Run("missing column", func(t *testing.T) {
		_, err := scenarioBooks(t).Average("rating")
		assert.True(t, errors.Is(err, ErrColumnNotFound))
	})

	t.Run("string column", func(t *testing.T) {
		_, err := scenarioBooks(t).Average("title")
		assert.True(t, errors.Is(err, ErrColumnType))
	})

	t.Run("all null", func(t *testing.T) {
		d, err := New(booksSchema, []Row{{String("A"), String("X"), Null()}})
		require.NoError(t, err)
		_, err = d.Average("average_rating")
		assert.ErrorIs(t, err, ErrNoValues)
	})
}

func TestDataset_Counts(t *testing.T) {
	d, err := New(booksSchema, []Row{
		{String("A"), String("X"), Number(1)},
		{String("B"), Null(), Number(2)},
		{String("C"), String("X"), Null()},
		{String("D"), String("Y"), Number(2)},
	})
	require.NoError(t, err)

	assert.Equal(t, 4, d.Count())

	n, err := d.CountNonNull("average_rating")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	distinct, err := d.DistinctCount("authors")
	require.NoError(t, err)
	assert.Equal(t, 2, distinct)

	distinct, err = d.DistinctCount("average_rating")
	require.NoError(t, err)
	assert.Equal(t, 2, distinct)

	_, err = d.DistinctCount("ratings_count")
	assert.ErrorIs(t, err, ErrColumnNotFound)
	_, err = d.CountNonNull("ratings_count")
	assert.ErrorIs(t, err, ErrColumnNotFound)
}

func TestDataset_FilterContains(t *testing.T) {
	d, err := New(booksSchema, []Row{
		{String("Harry Potter"), String("J.K. Rowling"), Number(4.5)},
		{String("The Hobbit"), String("J.R.R. Tolkien"), Number(4.3)},
		{String("100% Pure"), String("Anon_1"), Number(3.1)},
		{String("harry's diary"), Null(), Number(2.0)},
	})
	require.NoError(t, err)
	cols := []string{"title", "authors"}

	tests := []struct {
		name string
		term string
		want []string
	}{
		{"empty term keeps all rows", "", []string{"Harry Potter", "The Hobbit", "100% Pure", "harry's diary"}},
		{"title match", "Hobbit", []string{"The Hobbit"}},
		{"author match", "Rowling", []string{"Harry Potter"}},
		{"case preserved", "Harry", []string{"Harry Potter"}},
		{"lowercase", "harry", []string{"harry's diary"}},
		{"match in either column", "J.", []string{"Harry Potter", "The Hobbit"}},
		{"percent is literal", "%", []string{"100% Pure"}},
		{"underscore is literal", "_", []string{"Anon_1"}},
		{"wildcard pattern is literal", "H%y", []string{}},
		{"no match", "Dune", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := d.FilterContains(cols, tt.term)
			require.NoError(t, err)
			assert.Equal(t, tt.want, titles(got))
		})
	}

	t.Run("missing column", func(t *testing.T) {
		_, err := d.FilterContains([]string{"title", "isbn"}, "x")
		assert.ErrorIs(t, err, ErrColumnNotFound)
	})

	t.Run("numeric column uses source text", func(t *testing.T) {
		got, err := d.FilterContains([]string{"average_rating"}, "4.")
		require.NoError(t, err)
		assert.Equal(t, []string{"Harry Potter", "The Hobbit"}, titles(got))
	})
}

func TestDataset_OrderByDescending(t *testing.T) {
	t.Run("scenario tie keeps original order", func(t *testing.T) {
		got, err := scenarioBooks(t).OrderByDescending("average_rating", 2)
		require.NoError(t, err)
		assert.Equal(t, []string{"A", "B"}, titles(got))
	})

	t.Run("stable with nulls last", func(t *testing.T) {
		d, err := New(booksSchema, []Row{
			{String("n1"), String("a"), Null()},
			{String("low"), String("a"), Number(1)},
			{String("t1"), String("a"), Number(3)},
			{String("n2"), String("a"), Null()},
			{String("t2"), String("a"), Number(3)},
			{String("high"), String("a"), Number(5)},
		})
		require.NoError(t, err)

		got, err := d.OrderByDescending("average_rating", 10)
		require.NoError(t, err)
		assert.Equal(t, []string{"high", "t1", "t2", "low", "n1", "n2"}, titles(got))
		assert.Equal(t, []string{"n1", "low", "t1", "n2", "t2", "high"}, titles(d), "parent untouched")
	})

	t.Run("length is min(k, n)", func(t *testing.T) {
		d := scenarioBooks(t)
		for _, k := range []int{0, 1, 3, 50} {
			got, err := d.OrderByDescending("average_rating", k)
			require.NoError(t, err)
			assert.Equal(t, min(k, d.Count()), got.Count())
		}
	})

	t.Run("string column sorts lexically", func(t *testing.T) {
		got, err := scenarioBooks(t).OrderByDescending("title", 3)
		require.NoError(t, err)
		assert.Equal(t, []string{"C", "B", "A"}, titles(got))
	})

	t.Run("missing column", func(t *testing.T) {
		_, err := scenarioBooks(t).OrderByDescending("rating", 3)
		assert.ErrorIs(t, err, ErrColumnNotFound)
	})
}

func TestDataset_GroupCountTop(t *testing.T) {
	t.Run("scenario", func(t *testing.T) {
		got, err := scenarioBooks(t).GroupCountTop("authors", 10)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "X", got[0].Label)
		assert.Equal(t, 2, got[0].Count)
		assert.Equal(t, "Y", got[1].Label)
		assert.Equal(t, 1, got[1].Count)
	})

	d, err := New(booksSchema, []Row{
		{String("1"), String("B"), Number(1)},
		{String("2"), String("A"), Number(1)},
		{String("3"), Null(), Number(1)},
		{String("4"), String("C"), Number(1)},
		{String("5"), String("A"), Number(1)},
		{String("6"), String("C"), Number(1)},
		{String("7"), String("D"), Number(1)},
	})
	require.NoError(t, err)

	t.Run("ties broken by first encounter", func(t *testing.T) {
		got, err := d.GroupCountTop("authors", 10)
		require.NoError(t, err)
		labels := make([]string, len(got))
		for i, g := range got {
			labels[i] = g.Label
		}
		assert.Equal(t, []string{"A", "C", "B", "D"}, labels)
	})

	t.Run("counts sum to non-null rows and are non-increasing", func(t *testing.T) {
		all, err := d.GroupCounts("authors")
		require.NoError(t, err)
		total := 0
		for i, g := range all {
			total += g.Count
			if i > 0 {
				assert.LessOrEqual(t, g.Count, all[i-1].Count)
			}
		}
		nonNull, err := d.CountNonNull("authors")
		require.NoError(t, err)
		assert.Equal(t, nonNull, total)
	})

	t.Run("truncates", func(t *testing.T) {
		got, err := d.GroupCountTop("authors", 2)
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("missing column", func(t *testing.T) {
		_, err := d.GroupCountTop("publisher", 2)
		assert.ErrorIs(t, err, ErrColumnNotFound)
	})
}

func TestDataset_Histogram(t *testing.T) {
	d, err := New(booksSchema, []Row{
		{String("a"), String("x"), Number(0)},
		{String("b"), String("x"), Number(1)},
		{String("c"), String("x"), Number(2)},
		{String("d"), String("x"), Number(4)},
		{String("e"), String("x"), Null()},
	})
	require.NoError(t, err)

	t.Run("fixed width bins over observed range", func(t *testing.T) {
		h, err := d.Histogram("average_rating", 4)
		require.NoError(t, err)
		assert.Equal(t, []float64{0, 1, 2, 3, 4}, h.Edges)
		assert.Equal(t, []int{1, 1, 1, 1}, h.Counts)
	})

	t.Run("counts cover every non-null value", func(t *testing.T) {
		h, err := d.Histogram("average_rating", 20)
		require.NoError(t, err)
		total := 0
		for _, c := range h.Counts {
			total += c
		}
		assert.Equal(t, 4, total)
		assert.Len(t, h.Edges, 21)
	})

	t.Run("degenerate range", func(t *testing.T) {
		one, err := New(booksSchema, []Row{{String("a"), String("x"), Number(3)}})
		require.NoError(t, err)
		h, err := one.Histogram("average_rating", 2)
		require.NoError(t, err)
		assert.Equal(t, 2.5, h.Min)
		assert.Equal(t, 3.5, h.Max)
		assert.Equal(t, []int{0, 1}, h.Counts)
	})

	t.Run("invalid bins", func(t *testing.T) {
		_, err := d.Histogram("average_rating", 0)
		assert.ErrorIs(t, err, ErrInvalidArgument)
	})

	t.Run("string column", func(t *testing.T) {
		_, err := d.Histogram("title", 3)
		assert.ErrorIs(t, err, ErrColumnType)
	})
}
