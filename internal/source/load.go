package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/bookstore-insights/backend/internal/dataset"
	"github.com/bookstore-insights/backend/internal/models"
	"github.com/bookstore-insights/backend/internal/parser"
	"github.com/zeebo/xxh3"
)

// ErrEmptyDataset is the LoadError cause when the source parsed to zero rows.
var ErrEmptyDataset = errors.New("dataset has no rows")

// LoadError reports that the primary dataset could not be produced. Views are
// not rendered while a session carries one.
type LoadError struct {
	Source string
	Cause  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load data from %s: %v", e.Source, e.Cause)
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}

// Result is a loaded dataset together with its load diagnostics.
type Result struct {
	Dataset *dataset.Dataset
	// Errors lists malformed records that were skipped.
	Errors []models.ParseError
	// Fingerprint is the xxh3 hash of the raw bytes as read from the source.
	Fingerprint string
	Bytes       int64
	Duration    time.Duration
}

// Load fetches and parses src. On any failure it returns dataset.Empty() and a
// *LoadError; it never retries.
func Load(ctx context.Context, src Source) (*dataset.Dataset, error) {
	res, err := LoadResult(ctx, src)
	return res.Dataset, err
}

// LoadResult is Load with diagnostics. The returned Result is never nil.
func LoadResult(ctx context.Context, src Source) (*Result, error) {
	start := time.Now()
	id := src.Identity()
	fmt.Printf("[Source] Loading %s\n", id)

	fail := func(cause error) (*Result, error) {
		fmt.Printf("[Source] ERROR loading %s: %v\n", id, cause)
		return &Result{Dataset: dataset.Empty()}, &LoadError{Source: id, Cause: cause}
	}

	body, err := src.Open(ctx)
	if err != nil {
		return fail(err)
	}
	defer body.Close()

	h := xxh3.New()
	counter := &countingReader{r: io.TeeReader(body, h)}

	parsed, err := parser.ParseReader(path.Base(id), counter)
	if err != nil {
		return fail(err)
	}
	if parsed.Dataset.IsEmpty() {
		return fail(ErrEmptyDataset)
	}
	// drain trailing bytes so the fingerprint covers the whole payload
	if _, err := io.Copy(io.Discard, counter); err != nil {
		return fail(err)
	}

	res := &Result{
		Dataset:     parsed.Dataset,
		Errors:      parsed.Errors,
		Fingerprint: fmt.Sprintf("%016x", h.Sum64()),
		Bytes:       counter.n,
		Duration:    time.Since(start),
	}
	fmt.Printf("[Source] Loaded %d rows x %d columns from %s (%d bytes, %d skipped) in %v\n",
		res.Dataset.Count(), res.Dataset.Schema().Len(), id, res.Bytes, len(res.Errors), res.Duration)
	return res, nil
}

// Fingerprint returns the same content hash LoadResult computes for raw bytes.
func Fingerprint(data []byte) string {
	return fmt.Sprintf("%016x", xxh3.Hash(data))
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
