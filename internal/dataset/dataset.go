// Package dataset provides the immutable in-memory table the dashboard views query.
package dataset

import (
	"fmt"
)

// Row is one record, aligned with the schema's column order.
type Row []Value

// Dataset is an ordered sequence of rows sharing one schema.
// A Dataset is never modified after construction; queries return new Datasets.
type Dataset struct {
	schema *Schema
	rows   []Row
}

var empty = &Dataset{schema: MustSchema()}

// Empty returns the dataset with no rows and no columns.
func Empty() *Dataset {
	return empty
}

// New validates that every row matches the schema width and builds a Dataset.
// The row slice is copied; callers may reuse it afterwards.
func New(schema *Schema, rows []Row) (*Dataset, error) {
	if schema == nil {
		schema = MustSchema()
	}
	width := schema.Len()
	owned := make([]Row, len(rows))
	for i, r := range rows {
		if len(r) != width {
			return nil, fmt.Errorf("row %d has %d values, schema has %d columns", i, len(r), width)
		}
		owned[i] = append(Row(nil), r...)
	}
	return &Dataset{schema: schema, rows: owned}, nil
}

// derive builds a child dataset over rows already owned by a parent.
// Rows are never written after construction, so sharing them is safe.
func (d *Dataset) derive(rows []Row) *Dataset {
	return &Dataset{schema: d.schema, rows: rows}
}

// Schema returns the dataset schema.
func (d *Dataset) Schema() *Schema {
	return d.schema
}

// Count returns the total row count.
func (d *Dataset) Count() int {
	return len(d.rows)
}

// IsEmpty reports whether the dataset has no rows. Views never render an empty
// primary dataset.
func (d *Dataset) IsEmpty() bool {
	return d == nil || len(d.rows) == 0
}

// Row returns a copy of the i-th row.
func (d *Dataset) Row(i int) Row {
	return append(Row(nil), d.rows[i]...)
}

// Value returns the cell at row i of the named column.
func (d *Dataset) Value(i int, column string) (Value, error) {
	col, _, err := d.schema.Lookup(column)
	if err != nil {
		return Value{}, err
	}
	return d.rows[i][col], nil
}

// Values returns the named column, in row order.
func (d *Dataset) Values(column string) ([]Value, error) {
	col, _, err := d.schema.Lookup(column)
	if err != nil {
		return nil, err
	}
	out := make([]Value, len(d.rows))
	for i, r := range d.rows {
		out[i] = r[col]
	}
	return out, nil
}

// Records returns all rows as encoder-friendly values (nil, float64 or string).
func (d *Dataset) Records() [][]any {
	out := make([][]any, len(d.rows))
	for i, r := range d.rows {
		rec := make([]any, len(r))
		for j, v := range r {
			rec[j] = v.Interface()
		}
		out[i] = rec
	}
	return out
}

// Strings returns all rows as display text, nulls rendered as "".
func (d *Dataset) Strings() [][]string {
	out := make([][]string, len(d.rows))
	for i, r := range d.rows {
		rec := make([]string, len(r))
		for j, v := range r {
			rec[j] = v.Text()
		}
		out[i] = rec
	}
	return out
}
