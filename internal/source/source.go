// Package source fetches the raw book CSV from a remote URL or the local disk
// and turns it into a Dataset.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DefaultURL is the public books.csv loaded when no source is configured.
const DefaultURL = "https://caiqunybkbwilxmceyyj.supabase.co/storage/v1/object/public/bookstore/books.csv"

const userAgent = "bookstore-insights/1.0"

// Source is a location the primary dataset can be read from.
type Source interface {
	// Identity names the source; it keys the per-session dataset cache.
	Identity() string
	// Open starts reading the raw bytes. The caller closes the reader.
	Open(ctx context.Context) (io.ReadCloser, error)
}

// New picks a Source implementation from the location's scheme: http(s) URLs are
// fetched over the network, "file://" URLs and bare paths are read from disk.
// timeout bounds each HTTP fetch; zero means no limit.
func New(location string, timeout time.Duration) (Source, error) {
	location = strings.TrimSpace(location)
	switch {
	case location == "":
		return nil, errors.New("empty source location")
	case strings.HasPrefix(location, "http://"), strings.HasPrefix(location, "https://"):
		return NewHTTPSource(location, timeout), nil
	case strings.HasPrefix(location, "file://"):
		return NewFileSource(strings.TrimPrefix(location, "file://")), nil
	case strings.Contains(location, "://"):
		return nil, fmt.Errorf("unsupported source scheme: %s", location)
	default:
		return NewFileSource(location), nil
	}
}

// HTTPSource downloads the CSV with a single GET request.
type HTTPSource struct {
	URL    string
	Client *http.Client
}

// NewHTTPSource creates an HTTPSource whose client gives up after timeout (0 = never).
func NewHTTPSource(url string, timeout time.Duration) *HTTPSource {
	return &HTTPSource{URL: url, Client: &http.Client{Timeout: timeout}}
}

func (s *HTTPSource) Identity() string {
	return s.URL
}

func (s *HTTPSource) Open(ctx context.Context) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/csv, application/gzip, */*")

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", s.URL, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("server returned status %d", resp.StatusCode)
	}
	return resp.Body, nil
}

// FileSource reads the CSV from the local filesystem.
type FileSource struct {
	Path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

func (s *FileSource) Identity() string {
	if abs, err := filepath.Abs(s.Path); err == nil {
		return "file://" + abs
	}
	return "file://" + s.Path
}

func (s *FileSource) Open(ctx context.Context) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("reading source: %w", err)
	}
	return f, nil
}
