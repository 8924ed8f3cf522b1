package parser

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bookstore-insights/backend/internal/dataset"
	"github.com/bookstore-insights/backend/internal/models"
)

// ErrNoHeader is returned for input without a header record.
var ErrNoHeader = errors.New("csv has no header row")

// CSVParser handles delimited text with a header row naming the columns.
// Records with the wrong number of fields are skipped and reported.
type CSVParser struct {
	name       string
	delimiter  rune
	extensions []string
}

// NewCSVParser returns the comma-separated parser.
func NewCSVParser() *CSVParser {
	return &CSVParser{name: "csv", delimiter: ',', extensions: []string{".csv", ".txt"}}
}

// NewTSVParser returns the tab-separated parser.
func NewTSVParser() *CSVParser {
	return &CSVParser{name: "tsv", delimiter: '\t', extensions: []string{".tsv", ".tab"}}
}

// NewSemicolonParser returns the parser for ';'-separated exports.
func NewSemicolonParser() *CSVParser {
	return &CSVParser{name: "csv_semicolon", delimiter: ';'}
}

func (p *CSVParser) Name() string {
	return p.name
}

// CanParse matches on extension first; otherwise the delimiter must be the most
// frequent candidate in the header line.
func (p *CSVParser) CanParse(name string, head []byte) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range p.extensions {
		if ext == e {
			return true
		}
	}

	line := head
	if i := bytes.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	if len(line) == 0 {
		return false
	}
	best, bestCount := rune(0), 0
	for _, d := range []rune{',', '\t', ';'} {
		if n := bytes.Count(line, []byte(string(d))); n > bestCount {
			best, bestCount = d, n
		}
	}
	return bestCount > 0 && best == p.delimiter
}

func (p *CSVParser) Parse(r io.Reader) (*Result, error) {
	reader := csv.NewReader(r)
	reader.Comma = p.delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	names := normalizeHeader(header)

	var (
		records [][]string
		errs    []models.ParseError
	)
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				errs = append(errs, models.ParseError{Line: perr.Line, Reason: perr.Err.Error()})
				continue
			}
			return nil, fmt.Errorf("reading records: %w", err)
		}

		if len(rec) != len(names) {
			line, _ := reader.FieldPos(0)
			errs = append(errs, models.ParseError{
				Line:    line,
				Content: truncate(strings.Join(rec, string(p.delimiter)), 200),
				Reason:  fmt.Sprintf("expected %d fields, got %d", len(names), len(rec)),
			})
			continue
		}
		records = append(records, rec)
	}

	ds, err := buildDataset(names, records)
	if err != nil {
		return nil, err
	}
	return &Result{Dataset: ds, Errors: errs}, nil
}

// buildDataset infers one type per column and converts every cell. Cell text
// is interned so repeated values share memory.
func buildDataset(names []string, records [][]string) (*dataset.Dataset, error) {
	cols := make([]dataset.Column, len(names))
	cells := make([]string, len(records))
	for c, name := range names {
		for i, rec := range records {
			cells[i] = rec[c]
		}
		cols[c] = dataset.Column{Name: name, Type: InferType(cells)}
	}

	schema, err := dataset.NewSchema(cols...)
	if err != nil {
		return nil, err
	}

	si := NewStringIntern()
	rows := make([]dataset.Row, len(records))
	for i, rec := range records {
		row := make(dataset.Row, len(cols))
		for c, col := range cols {
			row[c] = ParseValue(si.Intern(rec[c]), col.Type)
		}
		rows[i] = row
	}
	return dataset.New(schema, rows)
}

// normalizeHeader strips a UTF-8 BOM, names blank headers "Unnamed: i" and
// suffixes repeated names with ".1", ".2", ...
func normalizeHeader(header []string) []string {
	names := make([]string, len(header))
	used := make(map[string]bool, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		if strings.TrimSpace(h) == "" {
			h = "Unnamed: " + strconv.Itoa(i)
		}
		name := h
		for n := 1; used[name]; n++ {
			name = h + "." + strconv.Itoa(n)
		}
		used[name] = true
		names[i] = name
	}
	return names
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
