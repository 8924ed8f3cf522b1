package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bookstore-insights/backend/internal/source"
)

// BooksCSV is a small catalog with every column the dashboard reads.
const BooksCSV = `title,authors,average_rating,ratings_count
A,X,4.0,100
B,Y,4.5,250
C,X,3.0,80
`

// UploadCSV is a user-supplied dataset without rating columns.
const UploadCSV = "title,pages\nZ,100\nW,250\n"

// WriteBooks writes content to a temp books.csv and returns a file source for it.
func WriteBooks(t *testing.T, content string) *source.FileSource {
	t.Helper()
	path := filepath.Join(t.TempDir(), "books.csv")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	return source.NewFileSource(path)
}
