package export

import (
	"fmt"
	"io"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
	"github.com/bookstore-insights/backend/internal/dataset"
)

// ArrowSchema maps number columns to float64 and string columns to utf8. Every
// field is nullable.
func ArrowSchema(s *dataset.Schema) *arrow.Schema {
	cols := s.Columns()
	fields := make([]arrow.Field, len(cols))
	for i, c := range cols {
		var typ arrow.DataType = arrow.BinaryTypes.String
		if c.Type == dataset.TypeNumber {
			typ = arrow.PrimitiveTypes.Float64
		}
		fields[i] = arrow.Field{Name: c.Name, Type: typ, Nullable: true}
	}
	return arrow.NewSchema(fields, nil)
}

// ArrowRecord builds a single record batch holding all of d. The caller
// releases it.
func ArrowRecord(mem memory.Allocator, d *dataset.Dataset) arrow.Record {
	schema := ArrowSchema(d.Schema())
	b := array.NewRecordBuilder(mem, schema)
	defer b.Release()

	for i := 0; i < d.Count(); i++ {
		for c, v := range d.Row(i) {
			switch fb := b.Field(c).(type) {
			case *array.Float64Builder:
				if f, ok := v.Float(); ok {
					fb.Append(f)
				} else {
					fb.AppendNull()
				}
			case *array.StringBuilder:
				if v.IsNull() {
					fb.AppendNull()
				} else {
					fb.Append(v.Text())
				}
			}
		}
	}
	return b.NewRecord()
}

// WriteArrow writes d as an Arrow IPC stream.
func WriteArrow(w io.Writer, d *dataset.Dataset) error {
	mem := memory.NewGoAllocator()
	rec := ArrowRecord(mem, d)
	defer rec.Release()

	iw := ipc.NewWriter(w, ipc.WithSchema(rec.Schema()), ipc.WithAllocator(mem))
	if err := iw.Write(rec); err != nil {
		iw.Close()
		return fmt.Errorf("failed to write arrow record: %w", err)
	}
	if err := iw.Close(); err != nil {
		return fmt.Errorf("failed to close arrow stream: %w", err)
	}
	return nil
}

// WriteParquet writes d as a Snappy-compressed Parquet file with the Arrow
// schema embedded.
func WriteParquet(w io.Writer, d *dataset.Dataset) error {
	mem := memory.NewGoAllocator()
	rec := ArrowRecord(mem, d)
	defer rec.Release()

	props := parquet.NewWriterProperties(parquet.WithCompression(compress.Codecs.Snappy))
	arrowProps := pqarrow.NewArrowWriterProperties(pqarrow.WithStoreSchema())

	pw, err := pqarrow.NewFileWriter(rec.Schema(), nopCloser{w}, props, arrowProps)
	if err != nil {
		return fmt.Errorf("failed to create parquet writer: %w", err)
	}
	if err := pw.Write(rec); err != nil {
		pw.Close()
		return fmt.Errorf("failed to write parquet: %w", err)
	}
	if err := pw.Close(); err != nil {
		return fmt.Errorf("failed to close parquet writer: %w", err)
	}
	return nil
}

// nopCloser keeps the parquet writer from closing the caller's writer.
type nopCloser struct {
	io.Writer
}
