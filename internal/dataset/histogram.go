package dataset

import (
	"fmt"
	"slices"
)

// Histogram describes fixed-width bins over the observed range of a numeric column.
type Histogram struct {
	Column string    `json:"column" msgpack:"column"`
	Bins   int       `json:"bins" msgpack:"bins"`
	Min    float64   `json:"min" msgpack:"min"`
	Max    float64   `json:"max" msgpack:"max"`
	Edges  []float64 `json:"edges" msgpack:"edges"`
	Counts []int     `json:"counts" msgpack:"counts"`
}

// Histogram bins the non-null values of column into bins equal-width buckets
// spanning [min, max]. The last bucket is closed on the right so the maximum is
// counted. When every value is equal the range is widened by 0.5 on each side.
func (d *Dataset) Histogram(column string, bins int) (*Histogram, error) {
	if bins <= 0 {
		return nil, fmt.Errorf("%w: bin count must be positive, got %d", ErrInvalidArgument, bins)
	}
	values, err := d.NumericValues(column)
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, ErrNoValues
	}
	return binValues(column, values, bins), nil
}

func binValues(column string, values []float64, bins int) *Histogram {
	lo, hi := slices.Min(values), slices.Max(values)
	if lo == hi {
		lo -= 0.5
		hi += 0.5
	}

	width := (hi - lo) / float64(bins)
	edges := make([]float64, bins+1)
	for i := range edges {
		edges[i] = lo + float64(i)*width
	}
	edges[bins] = hi

	counts := make([]int, bins)
	for _, v := range values {
		i := int((v - lo) / width)
		if i >= bins {
			i = bins - 1
		}
		if i < 0 {
			i = 0
		}
		counts[i]++
	}

	return &Histogram{
		Column: column,
		Bins:   bins,
		Min:    lo,
		Max:    hi,
		Edges:  edges,
		Counts: counts,
	}
}
