package parser

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/bookstore-insights/backend/internal/dataset"
	"github.com/marcboeker/go-duckdb"
)

// DuckOptions tunes the embedded DuckDB instance.
type DuckOptions struct {
	Threads     int
	MemoryLimit string
}

// DefaultDuckOptions mirrors the defaults in the XML configuration.
func DefaultDuckOptions() DuckOptions {
	return DuckOptions{Threads: 4, MemoryLimit: "1GB"}
}

// DuckStore keeps a snapshot of a Dataset in a DuckDB file so that an uploaded
// file can be reopened later without parsing it again.
type DuckStore struct {
	db       *sql.DB
	dbPath   string
	schema   *dataset.Schema
	rowCount int
}

func openConnector(dsn string, opts DuckOptions, strict bool) (*sql.DB, error) {
	connector, err := duckdb.NewConnector(dsn, func(execer driver.ExecerContext) error {
		pragmas := []string{
			fmt.Sprintf("PRAGMA memory_limit='%s'", opts.MemoryLimit),
			fmt.Sprintf("PRAGMA threads=%d", opts.Threads),
			"PRAGMA enable_progress_bar=false",
		}
		for _, pragma := range pragmas {
			if _, err := execer.ExecContext(context.Background(), pragma, nil); err != nil {
				if strict {
					fmt.Printf("[DuckStore] Pragma error: %v\n", err)
					return err
				}
				// read-only handles may refuse settings; queries still work
				fmt.Printf("[DuckStore] Pragma warning: %v\n", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create DuckDB connector: %w", err)
	}
	return sql.OpenDB(connector), nil
}

// NewDuckStoreAtPath creates an empty DuckDB file at dbPath, ready for SaveDataset.
func NewDuckStoreAtPath(dbPath string, opts DuckOptions) (*DuckStore, error) {
	fmt.Printf("[DuckStore] Creating database at: %s\n", dbPath)

	db, err := openConnector(dbPath, opts, true)
	if err != nil {
		fmt.Printf("[DuckStore] ERROR creating connector: %v\n", err)
		return nil, err
	}

	_, err = db.Exec(`
		CREATE TABLE columns (
			position INTEGER PRIMARY KEY,
			name     VARCHAR NOT NULL,
			type     VARCHAR NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		os.Remove(dbPath)
		return nil, fmt.Errorf("failed to create columns table: %w", err)
	}

	return &DuckStore{db: db, dbPath: dbPath}, nil
}

// OpenDuckStoreReadOnly opens a snapshot written earlier by SaveDataset.
func OpenDuckStoreReadOnly(dbPath string, opts DuckOptions) (*DuckStore, error) {
	fmt.Printf("[DuckStore] Opening existing database (read-only) at: %s\n", dbPath)

	db, err := openConnector(dbPath+"?access_mode=read_only", opts, false)
	if err != nil {
		return nil, err
	}

	ds := &DuckStore{db: db, dbPath: dbPath}
	if err := ds.loadSchema(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	if err := db.QueryRow("SELECT COUNT(*) FROM rows").Scan(&ds.rowCount); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to get row count: %w", err)
	}

	fmt.Printf("[DuckStore] Opened existing DB: %d rows, %d columns\n", ds.rowCount, ds.schema.Len())
	return ds, nil
}

func (ds *DuckStore) loadSchema(ctx context.Context) error {
	rows, err := ds.db.QueryContext(ctx, "SELECT name, type FROM columns ORDER BY position")
	if err != nil {
		return fmt.Errorf("failed to read columns: %w", err)
	}
	defer rows.Close()

	var cols []dataset.Column
	for rows.Next() {
		var name, typ string
		if err := rows.Scan(&name, &typ); err != nil {
			return fmt.Errorf("failed to scan column: %w", err)
		}
		t, err := dataset.ParseType(typ)
		if err != nil {
			return err
		}
		cols = append(cols, dataset.Column{Name: name, Type: t})
	}
	if err := rows.Err(); err != nil {
		return err
	}

	schema, err := dataset.NewSchema(cols...)
	if err != nil {
		return err
	}
	ds.schema = schema
	return nil
}

// sqlType maps a column type to its DuckDB storage type.
func sqlType(t dataset.Type) string {
	if t == dataset.TypeNumber {
		return "DOUBLE"
	}
	return "VARCHAR"
}

// SaveDataset writes the schema and every row using the native Appender API.
// Columns are stored positionally (c0, c1, ...) so any header text is accepted.
// Number columns get a sibling rN VARCHAR holding the cell's source text.
func (ds *DuckStore) SaveDataset(ctx context.Context, d *dataset.Dataset) error {
	if ds.schema != nil {
		return fmt.Errorf("store %s already holds a dataset", ds.dbPath)
	}
	start := time.Now()
	cols := d.Schema().Columns()

	defs := make([]string, 0, 2*len(cols)+1)
	defs = append(defs, "row_id INTEGER NOT NULL")
	for i, c := range cols {
		defs = append(defs, fmt.Sprintf("c%d %s", i, sqlType(c.Type)))
		if c.Type == dataset.TypeNumber {
			defs = append(defs, fmt.Sprintf("r%d VARCHAR", i))
		}
		if _, err := ds.db.ExecContext(ctx,
			"INSERT INTO columns (position, name, type) VALUES (?, ?, ?)",
			i, c.Name, c.Type.String()); err != nil {
			return fmt.Errorf("failed to record column %q: %w", c.Name, err)
		}
	}
	if _, err := ds.db.ExecContext(ctx, "CREATE TABLE rows ("+strings.Join(defs, ", ")+")"); err != nil {
		return fmt.Errorf("failed to create rows table: %w", err)
	}

	conn, err := ds.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("failed to get connection: %w", err)
	}
	defer conn.Close()

	err = conn.Raw(func(driverConn interface{}) error {
		dConn, ok := driverConn.(*duckdb.Conn)
		if !ok {
			return fmt.Errorf("failed to cast to duckdb.Conn")
		}

		appender, err := duckdb.NewAppenderFromConn(dConn, "", "rows")
		if err != nil {
			return fmt.Errorf("failed to create appender: %w", err)
		}
		defer appender.Close()

		args := make([]driver.Value, 0, len(defs))
		for i := 0; i < d.Count(); i++ {
			args = append(args[:0], int32(i))
			for c, v := range d.Row(i) {
				args = append(args, v.Interface())
				if cols[c].Type == dataset.TypeNumber {
					args = append(args, rawText(v))
				}
			}
			if err := appender.AppendRow(args...); err != nil {
				return fmt.Errorf("failed to append row %d: %w", i, err)
			}
		}
		return appender.Flush()
	})
	if err != nil {
		return fmt.Errorf("appender error: %w", err)
	}

	ds.schema = d.Schema()
	ds.rowCount = d.Count()
	fmt.Printf("[DuckStore] Saved %d rows x %d columns in %v\n", ds.rowCount, len(cols), time.Since(start))
	return nil
}

func rawText(v dataset.Value) driver.Value {
	if v.IsNull() {
		return nil
	}
	return v.Text()
}

// LoadDataset reads the snapshot back in original row order. Numbers come back
// with the text they were parsed from.
func (ds *DuckStore) LoadDataset(ctx context.Context) (*dataset.Dataset, error) {
	if ds.schema == nil {
		return nil, fmt.Errorf("store %s holds no dataset", ds.dbPath)
	}
	cols := ds.schema.Columns()

	rows, err := ds.db.QueryContext(ctx, "SELECT * FROM rows ORDER BY row_id")
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var rowID int64
	dest := make([]any, 0, 2*len(cols)+1)
	dest = append(dest, &rowID)
	nums := make([]sql.NullFloat64, len(cols))
	strs := make([]sql.NullString, len(cols))
	for i, c := range cols {
		if c.Type == dataset.TypeNumber {
			// strs[i] holds the raw text of number column i
			dest = append(dest, &nums[i], &strs[i])
		} else {
			dest = append(dest, &strs[i])
		}
	}

	out := make([]dataset.Row, 0, ds.rowCount)
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		row := make(dataset.Row, len(cols))
		for i, c := range cols {
			switch {
			case c.Type == dataset.TypeNumber && nums[i].Valid && strs[i].Valid:
				row[i] = dataset.NumberText(nums[i].Float64, strs[i].String)
			case c.Type == dataset.TypeNumber && nums[i].Valid:
				row[i] = dataset.Number(nums[i].Float64)
			case c.Type == dataset.TypeString && strs[i].Valid:
				row[i] = dataset.String(strs[i].String)
			default:
				row[i] = dataset.Null()
			}
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return dataset.New(ds.schema, out)
}

// Schema returns the stored schema, or nil before SaveDataset.
func (ds *DuckStore) Schema() *dataset.Schema {
	return ds.schema
}

// Len returns the number of stored rows.
func (ds *DuckStore) Len() int {
	return ds.rowCount
}

// Path returns the database file location.
func (ds *DuckStore) Path() string {
	return ds.dbPath
}

// Close closes the database. The file is kept.
func (ds *DuckStore) Close() error {
	if ds.db != nil {
		return ds.db.Close()
	}
	return nil
}
