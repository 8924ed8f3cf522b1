package dataset

import (
	"math"
	"strconv"
)

// Kind distinguishes the three cell states.
type Kind uint8

const (
	KindNull Kind = iota
	KindNumber
	KindString
)

// Value is a single immutable cell. Numeric cells keep the text they were parsed
// from so that previews show exactly what the source contained.
type Value struct {
	kind Kind
	num  float64
	raw  string
}

// Null returns the null value.
func Null() Value {
	return Value{}
}

// Number returns a numeric value. NaN is stored as null.
func Number(f float64) Value {
	if math.IsNaN(f) {
		return Null()
	}
	return Value{kind: KindNumber, num: f, raw: strconv.FormatFloat(f, 'f', -1, 64)}
}

// NumberText returns a numeric value that remembers its source text.
func NumberText(f float64, raw string) Value {
	if math.IsNaN(f) {
		return Null()
	}
	return Value{kind: KindNumber, num: f, raw: raw}
}

// String returns a string value.
func String(s string) Value {
	return Value{kind: KindString, raw: s}
}

// Kind returns the cell state.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the cell is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Float returns the numeric value; ok is false for null and string cells.
func (v Value) Float() (float64, bool) {
	return v.num, v.kind == KindNumber
}

// Text returns the display text of the cell; null cells render as "".
func (v Value) Text() string {
	return v.raw
}

// Interface returns nil, float64 or string, for encoders.
func (v Value) Interface() any {
	switch v.kind {
	case KindNumber:
		return v.num
	case KindString:
		return v.raw
	default:
		return nil
	}
}

// Equal compares kind and content.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	if v.kind == KindNumber {
		return v.num == o.num
	}
	return v.raw == o.raw
}

// groupKey identifies equal values for grouping and distinct counting.
func (v Value) groupKey() string {
	if v.kind == KindNumber {
		return "n:" + strconv.FormatFloat(v.num, 'g', -1, 64)
	}
	return "s:" + v.raw
}
