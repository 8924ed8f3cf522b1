// Package export writes a Dataset in the download formats offered by the API.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/bookstore-insights/backend/internal/dataset"
)

// Format is a download format.
type Format string

const (
	FormatCSV     Format = "csv"
	FormatXLSX    Format = "xlsx"
	FormatArrow   Format = "arrow"
	FormatParquet Format = "parquet"
)

// Formats lists every supported format.
var Formats = []Format{FormatCSV, FormatXLSX, FormatArrow, FormatParquet}

// ParseFormat maps a query parameter to a Format; "" means CSV.
func ParseFormat(s string) (Format, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return FormatCSV, nil
	}
	for _, f := range Formats {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("unsupported export format %q", s)
}

// ContentType returns the MIME type sent with the download.
func (f Format) ContentType() string {
	switch f {
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatArrow:
		return "application/vnd.apache.arrow.stream"
	case FormatParquet:
		return "application/vnd.apache.parquet"
	default:
		return "text/csv; charset=utf-8"
	}
}

// Extension returns the file extension including the dot.
func (f Format) Extension() string {
	return "." + string(f)
}

// Write encodes d to w in format f.
func Write(w io.Writer, d *dataset.Dataset, f Format) error {
	switch f {
	case FormatCSV:
		return WriteCSV(w, d)
	case FormatXLSX:
		return WriteXLSX(w, d, "")
	case FormatArrow:
		return WriteArrow(w, d)
	case FormatParquet:
		return WriteParquet(w, d)
	}
	return fmt.Errorf("unsupported export format %q", f)
}

// WriteCSV writes a header row and every record. Cells keep their source text,
// so a CSV export re-parses to the same values.
func WriteCSV(w io.Writer, d *dataset.Dataset) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(d.Schema().Names()); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	if err := cw.WriteAll(d.Strings()); err != nil {
		return fmt.Errorf("failed to write CSV rows: %w", err)
	}
	return nil
}
