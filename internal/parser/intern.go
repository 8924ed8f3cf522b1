package parser

import (
	"sync"
)

// StringIntern deduplicates cell text while a file is parsed. Catalog columns
// such as authors or publisher repeat the same value on thousands of rows; with
// interning those rows share one backing string.
type StringIntern struct {
	mu    sync.RWMutex
	pool  map[string]string
	limit int
}

// MaxInternPoolSize limits the intern pool to prevent unbounded memory growth.
// Once reached, new strings are returned without being stored.
const MaxInternPoolSize = 500000

// NewStringIntern creates an interner holding at most MaxInternPoolSize strings.
func NewStringIntern() *StringIntern {
	return NewStringInternWithLimit(MaxInternPoolSize)
}

// NewStringInternWithLimit creates an interner holding at most limit strings.
func NewStringInternWithLimit(limit int) *StringIntern {
	return &StringIntern{
		pool:  make(map[string]string, 1024),
		limit: limit,
	}
}

// Intern returns the canonical version of s.
func (si *StringIntern) Intern(s string) string {
	// Fast path: read lock
	si.mu.RLock()
	if pooled, ok := si.pool[s]; ok {
		si.mu.RUnlock()
		return pooled
	}
	full := len(si.pool) >= si.limit
	si.mu.RUnlock()
	if full {
		return s
	}

	si.mu.Lock()
	defer si.mu.Unlock()
	// Double-check after acquiring write lock
	if pooled, ok := si.pool[s]; ok {
		return pooled
	}
	if len(si.pool) >= si.limit {
		return s
	}
	si.pool[s] = s
	return s
}

// Len returns the number of unique strings in the pool.
func (si *StringIntern) Len() int {
	si.mu.RLock()
	defer si.mu.RUnlock()
	return len(si.pool)
}

// Clear removes all interned strings.
func (si *StringIntern) Clear() {
	si.mu.Lock()
	defer si.mu.Unlock()
	si.pool = make(map[string]string, 1024)
}
