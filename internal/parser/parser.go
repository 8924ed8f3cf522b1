package parser

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/bookstore-insights/backend/internal/dataset"
	"github.com/bookstore-insights/backend/internal/models"
)

// Result is the outcome of parsing one tabular file.
type Result struct {
	Dataset *dataset.Dataset
	// Errors lists records that were skipped; the rest of the file still loaded.
	Errors []models.ParseError
}

// Parser defines the interface for tabular file parsers.
type Parser interface {
	// Name returns the unique name of the parser.
	Name() string
	// CanParse reports whether this parser handles a file, given its name and first bytes.
	CanParse(name string, head []byte) bool
	// Parse reads the whole stream into a Dataset.
	Parse(r io.Reader) (*Result, error)
}

// Common utilities for parsing

// nullTokens are cell contents read as a missing value, in addition to "".
var nullTokens = map[string]struct{}{
	"NA": {}, "N/A": {}, "n/a": {}, "#N/A": {}, "NaN": {}, "nan": {}, "-NaN": {},
	"null": {}, "NULL": {}, "None": {}, "<NA>": {},
}

// IsNullToken reports whether raw cell text stands for a missing value.
func IsNullToken(raw string) bool {
	s := strings.TrimSpace(raw)
	if s == "" {
		return true
	}
	_, ok := nullTokens[s]
	return ok
}

// ParseNumber parses decimal notation: optional sign, digits with an optional
// fraction, optional exponent. Hex, underscores, "Inf" and "NaN" are rejected so
// that identifiers never turn numeric by accident.
func ParseNumber(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if !isNumericFast(s) {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// isNumericFast checks the shape of a decimal literal without regex.
func isNumericFast(s string) bool {
	if len(s) == 0 {
		return false
	}

	i := 0
	if s[0] == '+' || s[0] == '-' {
		i++
	}

	digits := 0
	for ; i < len(s) && s[i] >= '0' && s[i] <= '9'; i++ {
		digits++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for ; i < len(s) && s[i] >= '0' && s[i] <= '9'; i++ {
			digits++
		}
	}
	if digits == 0 {
		return false
	}

	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		i++
		if i < len(s) && (s[i] == '+' || s[i] == '-') {
			i++
		}
		exp := 0
		for ; i < len(s) && s[i] >= '0' && s[i] <= '9'; i++ {
			exp++
		}
		if exp == 0 {
			return false
		}
	}

	return i == len(s)
}

// InferType guesses a column type from its raw cells: number when every non-null
// cell parses as a number, string otherwise. A column with no values at all is
// numeric.
func InferType(cells []string) dataset.Type {
	for _, c := range cells {
		if IsNullToken(c) {
			continue
		}
		if _, ok := ParseNumber(c); !ok {
			return dataset.TypeString
		}
	}
	return dataset.TypeNumber
}

// ParseValue converts raw cell text to a Value of the given column type.
func ParseValue(raw string, typ dataset.Type) dataset.Value {
	if IsNullToken(raw) {
		return dataset.Null()
	}
	if typ == dataset.TypeNumber {
		if f, ok := ParseNumber(raw); ok {
			return dataset.NumberText(f, strings.TrimSpace(raw))
		}
	}
	return dataset.String(raw)
}

// ParseBytes picks a parser for name/data from the global registry and parses
// the (possibly gzip-compressed) content.
func ParseBytes(name string, data []byte) (*Result, error) {
	return ParseReader(name, bytes.NewReader(data))
}

// ParseReader is ParseBytes for a stream.
func ParseReader(name string, r io.Reader) (*Result, error) {
	plain, err := MaybeGunzip(r)
	if err != nil {
		return nil, err
	}

	br := bufio.NewReader(plain)
	head, err := br.Peek(sniffLen)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}

	p, err := GetGlobalRegistry().FindParser(strings.TrimSuffix(name, ".gz"), head)
	if err != nil {
		return nil, err
	}
	return p.Parse(br)
}

const sniffLen = 4096
