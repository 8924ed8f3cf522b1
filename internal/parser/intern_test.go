package parser

import (
	"strings"
	"sync"
	"testing"
	"unsafe"
)

func TestStringIntern(t *testing.T) {
	si := NewStringIntern()

	// Build equal strings with distinct backing arrays
	a := strings.Repeat("Tolkien", 1)
	b := string([]byte("Tolkien"))

	s1 := si.Intern(a)
	s2 := si.Intern(b)
	if unsafe.StringData(s1) != unsafe.StringData(s2) {
		t.Error("Expected interned strings to share storage")
	}

	si.Intern("Austen")
	if si.Len() != 2 {
		t.Errorf("Expected pool size 2, got %d", si.Len())
	}

	si.Clear()
	if si.Len() != 0 {
		t.Errorf("Expected pool size 0 after clear, got %d", si.Len())
	}
}

func TestStringInternLimit(t *testing.T) {
	si := NewStringInternWithLimit(2)
	si.Intern("a")
	si.Intern("b")

	if got := si.Intern("c"); got != "c" {
		t.Errorf("Expected uninterned passthrough, got %q", got)
	}
	if si.Len() != 2 {
		t.Errorf("Expected pool to stay at limit 2, got %d", si.Len())
	}
}

func TestStringInternConcurrent(t *testing.T) {
	si := NewStringIntern()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				si.Intern("author")
			}
		}()
	}
	wg.Wait()
	if si.Len() != 1 {
		t.Errorf("Expected 1 pooled string, got %d", si.Len())
	}
}

func TestBuildDatasetInternsCells(t *testing.T) {
	res, err := ParseBytes("books.csv", []byte("title,authors\nA,Jane Austen\nB,Jane Austen\n"))
	if err != nil {
		t.Fatalf("ParseBytes failed: %v", err)
	}
	v0, _ := res.Dataset.Value(0, "authors")
	v1, _ := res.Dataset.Value(1, "authors")
	if unsafe.StringData(v0.Text()) != unsafe.StringData(v1.Text()) {
		t.Error("Expected repeated author cells to share storage")
	}
}
