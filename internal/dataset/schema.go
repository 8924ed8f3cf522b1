package dataset

import (
	"fmt"
)

// Type is the inferred type of a column.
type Type int

const (
	// TypeString holds free text.
	TypeString Type = iota
	// TypeNumber holds float64 values.
	TypeNumber
)

// String returns the string representation of a Type.
func (t Type) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeNumber:
		return "number"
	default:
		return fmt.Sprintf("unknown(%d)", int(t))
	}
}

// MarshalText encodes the type by name so payloads read "number" rather than 1.
func (t Type) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText is the inverse of MarshalText.
func (t *Type) UnmarshalText(b []byte) error {
	parsed, err := ParseType(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ParseType converts a type name back to a Type.
func ParseType(s string) (Type, error) {
	switch s {
	case "string":
		return TypeString, nil
	case "number":
		return TypeNumber, nil
	}
	return TypeString, fmt.Errorf("unknown column type: %q", s)
}

// Column is one (name, type) pair of a schema.
type Column struct {
	Name string `json:"name" msgpack:"name"`
	Type Type   `json:"type" msgpack:"type"`
}

// Schema is the ordered, fixed set of columns shared by every row of a Dataset.
type Schema struct {
	columns []Column
	index   map[string]int
}

// NewSchema builds a schema. Column names must be unique.
func NewSchema(columns ...Column) (*Schema, error) {
	s := &Schema{
		columns: make([]Column, len(columns)),
		index:   make(map[string]int, len(columns)),
	}
	for i, c := range columns {
		if _, dup := s.index[c.Name]; dup {
			return nil, fmt.Errorf("duplicate column name: %q", c.Name)
		}
		s.columns[i] = c
		s.index[c.Name] = i
	}
	return s, nil
}

// MustSchema is NewSchema for statically known columns; it panics on duplicates.
func MustSchema(columns ...Column) *Schema {
	s, err := NewSchema(columns...)
	if err != nil {
		panic(err)
	}
	return s
}

// Len returns the number of columns.
func (s *Schema) Len() int {
	if s == nil {
		return 0
	}
	return len(s.columns)
}

// Columns returns a copy of the ordered column list.
func (s *Schema) Columns() []Column {
	if s == nil {
		return nil
	}
	out := make([]Column, len(s.columns))
	copy(out, s.columns)
	return out
}

// Names returns the ordered column names.
func (s *Schema) Names() []string {
	if s == nil {
		return nil
	}
	names := make([]string, len(s.columns))
	for i, c := range s.columns {
		names[i] = c.Name
	}
	return names
}

// Has reports whether the schema contains the named column.
func (s *Schema) Has(name string) bool {
	if s == nil {
		return false
	}
	_, ok := s.index[name]
	return ok
}

// Lookup returns the position and definition of a column, or a *ColumnNotFoundError.
func (s *Schema) Lookup(name string) (int, Column, error) {
	if s != nil {
		if i, ok := s.index[name]; ok {
			return i, s.columns[i], nil
		}
	}
	return -1, Column{}, &ColumnNotFoundError{Column: name, Available: s.Names()}
}
