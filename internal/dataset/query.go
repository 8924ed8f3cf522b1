package dataset

import (
	"cmp"
	"slices"
	"strings"
)

// GroupCount is one group produced by GroupCounts/GroupCountTop.
type GroupCount struct {
	Value Value  `json:"-" msgpack:"-"`
	Label string `json:"label" msgpack:"label"`
	Count int    `json:"count" msgpack:"count"`
}

// Preview returns the first n rows in original order.
func (d *Dataset) Preview(n int) *Dataset {
	if n < 0 {
		n = 0
	}
	if n > len(d.rows) {
		n = len(d.rows)
	}
	return d.derive(d.rows[:n:n])
}

// Limit is Preview under the name the search view uses.
func (d *Dataset) Limit(n int) *Dataset {
	return d.Preview(n)
}

// Average returns the arithmetic mean of the non-null values of a numeric column.
func (d *Dataset) Average(column string) (float64, error) {
	col, def, err := d.schema.Lookup(column)
	if err != nil {
		return 0, err
	}
	if def.Type != TypeNumber {
		return 0, &ColumnTypeError{Column: column, Want: TypeNumber, Got: def.Type}
	}

	var sum float64
	n := 0
	for _, r := range d.rows {
		if f, ok := r[col].Float(); ok {
			sum += f
			n++
		}
	}
	if n == 0 {
		return 0, ErrNoValues
	}
	return sum / float64(n), nil
}

// CountNonNull returns the number of non-null cells in a column.
func (d *Dataset) CountNonNull(column string) (int, error) {
	col, _, err := d.schema.Lookup(column)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, r := range d.rows {
		if !r[col].IsNull() {
			n++
		}
	}
	return n, nil
}

// DistinctCount returns the number of unique non-null values in a column.
func (d *Dataset) DistinctCount(column string) (int, error) {
	col, _, err := d.schema.Lookup(column)
	if err != nil {
		return 0, err
	}
	seen := make(map[string]struct{})
	for _, r := range d.rows {
		if v := r[col]; !v.IsNull() {
			seen[v.groupKey()] = struct{}{}
		}
	}
	return len(seen), nil
}

// FilterContains keeps the rows where substring occurs literally in at least one
// of the given columns. The match is case-sensitive and treats every character,
// including '%', '_' and '*', as itself. An empty substring keeps every row.
func (d *Dataset) FilterContains(columns []string, substring string) (*Dataset, error) {
	idx := make([]int, len(columns))
	for i, name := range columns {
		col, _, err := d.schema.Lookup(name)
		if err != nil {
			return nil, err
		}
		idx[i] = col
	}
	if substring == "" {
		return d.derive(d.rows), nil
	}

	var kept []Row
	for _, r := range d.rows {
		for _, col := range idx {
			if v := r[col]; !v.IsNull() && strings.Contains(v.Text(), substring) {
				kept = append(kept, r)
				break
			}
		}
	}
	return d.derive(kept), nil
}

// OrderByDescending returns at most limit rows sorted by column, largest first.
// The sort is stable and nulls sort last.
func (d *Dataset) OrderByDescending(column string, limit int) (*Dataset, error) {
	col, _, err := d.schema.Lookup(column)
	if err != nil {
		return nil, err
	}

	sorted := make([]Row, len(d.rows))
	copy(sorted, d.rows)
	slices.SortStableFunc(sorted, func(a, b Row) int {
		return compareDescending(a[col], b[col])
	})

	if limit < 0 {
		limit = 0
	}
	if limit < len(sorted) {
		sorted = sorted[:limit]
	}
	return d.derive(sorted), nil
}

// GroupCounts counts rows per non-null value of column, largest group first.
// Groups with equal counts keep the order in which they were first seen.
func (d *Dataset) GroupCounts(column string) ([]GroupCount, error) {
	col, _, err := d.schema.Lookup(column)
	if err != nil {
		return nil, err
	}

	pos := make(map[string]int)
	var groups []GroupCount
	for _, r := range d.rows {
		v := r[col]
		if v.IsNull() {
			continue
		}
		key := v.groupKey()
		if i, ok := pos[key]; ok {
			groups[i].Count++
			continue
		}
		pos[key] = len(groups)
		groups = append(groups, GroupCount{Value: v, Label: v.Text(), Count: 1})
	}

	slices.SortStableFunc(groups, func(a, b GroupCount) int {
		return cmp.Compare(b.Count, a.Count)
	})
	return groups, nil
}

// GroupCountTop is GroupCounts truncated to limit groups.
func (d *Dataset) GroupCountTop(column string, limit int) ([]GroupCount, error) {
	groups, err := d.GroupCounts(column)
	if err != nil {
		return nil, err
	}
	if limit < 0 {
		limit = 0
	}
	if limit < len(groups) {
		groups = groups[:limit]
	}
	return groups, nil
}

// NumericValues returns the non-null values of a numeric column in row order.
func (d *Dataset) NumericValues(column string) ([]float64, error) {
	col, def, err := d.schema.Lookup(column)
	if err != nil {
		return nil, err
	}
	if def.Type != TypeNumber {
		return nil, &ColumnTypeError{Column: column, Want: TypeNumber, Got: def.Type}
	}
	out := make([]float64, 0, len(d.rows))
	for _, r := range d.rows {
		if f, ok := r[col].Float(); ok {
			out = append(out, f)
		}
	}
	return out, nil
}

// compareDescending orders non-null values largest first and nulls last.
func compareDescending(a, b Value) int {
	switch {
	case a.IsNull() && b.IsNull():
		return 0
	case a.IsNull():
		return 1
	case b.IsNull():
		return -1
	}
	return -compareValues(a, b)
}

func compareValues(a, b Value) int {
	af, aok := a.Float()
	bf, bok := b.Float()
	if aok && bok {
		return cmp.Compare(af, bf)
	}
	// mixed kinds only arise in hand-built datasets; numbers sort before text
	if aok != bok {
		if aok {
			return -1
		}
		return 1
	}
	return strings.Compare(a.Text(), b.Text())
}
