package dataset

import (
	"errors"
	"fmt"
	"strings"
)

// Common errors returned by dataset queries.
var (
	// ErrColumnNotFound is matched by every *ColumnNotFoundError.
	ErrColumnNotFound = errors.New("column not found")

	// ErrColumnType is matched by every *ColumnTypeError.
	ErrColumnType = errors.New("column type mismatch")

	// ErrNoValues is returned when an aggregate has no non-null input.
	ErrNoValues = errors.New("column has no non-null values")

	// ErrInvalidArgument is returned for out-of-range arguments such as a zero bin count.
	ErrInvalidArgument = errors.New("invalid argument")
)

// ColumnNotFoundError reports a query that referenced a column absent from the schema.
type ColumnNotFoundError struct {
	Column    string
	Available []string
}

func (e *ColumnNotFoundError) Error() string {
	if len(e.Available) == 0 {
		return fmt.Sprintf("column not found: %q (dataset has no columns)", e.Column)
	}
	return fmt.Sprintf("column not found: %q (available: %s)", e.Column, strings.Join(e.Available, ", "))
}

// Is lets errors.Is(err, ErrColumnNotFound) match.
func (e *ColumnNotFoundError) Is(target error) bool {
	return target == ErrColumnNotFound
}

// ColumnTypeError reports an operation applied to a column of the wrong type,
// e.g. averaging a string column.
type ColumnTypeError struct {
	Column string
	Want   Type
	Got    Type
}

func (e *ColumnTypeError) Error() string {
	return fmt.Sprintf("column %q is %s, expected %s", e.Column, e.Got, e.Want)
}

func (e *ColumnTypeError) Is(target error) bool {
	return target == ErrColumnType
}
