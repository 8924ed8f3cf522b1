package session

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bookstore-insights/backend/internal/dataset"
	"github.com/bookstore-insights/backend/internal/parser"
)

// shortID safely truncates an ID for logging (handles short IDs gracefully)
func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

// ParsedStore keeps one DuckDB snapshot per uploaded file so a recent upload can
// be activated again without re-parsing the CSV. Snapshots are named
// file_<id>.duckdb inside parsedDir.
type ParsedStore struct {
	parsedDir string
	opts      parser.DuckOptions
	mu        sync.RWMutex
	// fileID -> dbPath
	cache map[string]string
}

// NewParsedStore creates the directory if needed and indexes existing snapshots.
func NewParsedStore(parsedDir string, opts parser.DuckOptions) (*ParsedStore, error) {
	if err := os.MkdirAll(parsedDir, 0755); err != nil {
		return nil, fmt.Errorf("creating parsed directory: %w", err)
	}

	ps := &ParsedStore{
		parsedDir: parsedDir,
		opts:      opts,
		cache:     make(map[string]string),
	}
	ps.scanExisting()
	return ps, nil
}

func (ps *ParsedStore) scanExisting() {
	entries, err := os.ReadDir(ps.parsedDir)
	if err != nil {
		fmt.Printf("[ParsedStore] Warning: failed to scan parsed directory: %v\n", err)
		return
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, "file_") || filepath.Ext(name) != ".duckdb" {
			continue
		}
		fileID := strings.TrimSuffix(strings.TrimPrefix(name, "file_"), ".duckdb")
		if fileID == "" {
			continue
		}
		ps.cache[fileID] = filepath.Join(ps.parsedDir, name)
	}

	fmt.Printf("[ParsedStore] Scanned %d existing snapshots\n", len(ps.cache))
}

// DBPath returns where the snapshot for fileID lives.
func (ps *ParsedStore) DBPath(fileID string) string {
	return filepath.Join(ps.parsedDir, fmt.Sprintf("file_%s.duckdb", fileID))
}

// Has reports whether a snapshot exists for fileID.
func (ps *ParsedStore) Has(fileID string) bool {
	ps.mu.RLock()
	_, ok := ps.cache[fileID]
	ps.mu.RUnlock()
	if ok {
		return true
	}

	// created by another process
	dbPath := ps.DBPath(fileID)
	if _, err := os.Stat(dbPath); err == nil {
		ps.mu.Lock()
		ps.cache[fileID] = dbPath
		ps.mu.Unlock()
		return true
	}
	return false
}

// Save writes d as the snapshot for fileID, replacing any previous one.
func (ps *ParsedStore) Save(ctx context.Context, fileID string, d *dataset.Dataset) error {
	dbPath := ps.DBPath(fileID)
	os.Remove(dbPath)

	fmt.Printf("[ParsedStore] Creating snapshot for file %s\n", shortID(fileID))
	store, err := parser.NewDuckStoreAtPath(dbPath, ps.opts)
	if err != nil {
		return fmt.Errorf("failed to create snapshot: %w", err)
	}
	if err := store.SaveDataset(ctx, d); err != nil {
		store.Close()
		os.Remove(dbPath)
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := store.Close(); err != nil {
		return fmt.Errorf("failed to close snapshot: %w", err)
	}

	ps.mu.Lock()
	ps.cache[fileID] = dbPath
	ps.mu.Unlock()
	return nil
}

// Load reads the snapshot for fileID back into memory.
func (ps *ParsedStore) Load(ctx context.Context, fileID string) (*dataset.Dataset, error) {
	if !ps.Has(fileID) {
		return nil, fmt.Errorf("%w: %s", ErrSnapshotNotFound, fileID)
	}

	ps.mu.RLock()
	dbPath := ps.cache[fileID]
	ps.mu.RUnlock()

	if _, err := os.Stat(dbPath); err != nil {
		ps.mu.Lock()
		delete(ps.cache, fileID)
		ps.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrSnapshotNotFound, fileID)
	}

	fmt.Printf("[ParsedStore] Opening snapshot for file %s\n", shortID(fileID))
	store, err := parser.OpenDuckStoreReadOnly(dbPath, ps.opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer store.Close()

	return store.LoadDataset(ctx)
}

// Delete removes the snapshot for fileID (call when the uploaded file is deleted).
func (ps *ParsedStore) Delete(fileID string) error {
	ps.mu.Lock()
	delete(ps.cache, fileID)
	ps.mu.Unlock()

	if err := os.Remove(ps.DBPath(fileID)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	fmt.Printf("[ParsedStore] Deleted snapshot for file %s\n", shortID(fileID))
	return nil
}

// List returns the file IDs with a snapshot, sorted.
func (ps *ParsedStore) List() []string {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	ids := make([]string, 0, len(ps.cache))
	for id := range ps.cache {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Stats reports the number and total size of stored snapshots.
func (ps *ParsedStore) Stats() map[string]interface{} {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	var totalSize int64
	for fileID, dbPath := range ps.cache {
		if info, err := os.Stat(dbPath); err == nil {
			totalSize += info.Size()
		} else {
			delete(ps.cache, fileID)
		}
	}

	return map[string]interface{}{
		"snapshotCount": len(ps.cache),
		"totalSize":     totalSize,
		"parsedDir":     ps.parsedDir,
	}
}

// CleanupOrphaned removes snapshots whose uploaded file no longer exists.
func (ps *ParsedStore) CleanupOrphaned(rawFileIDs []string) int {
	valid := make(map[string]bool, len(rawFileIDs))
	for _, id := range rawFileIDs {
		valid[id] = true
	}

	ps.mu.Lock()
	defer ps.mu.Unlock()

	removed := 0
	for fileID, dbPath := range ps.cache {
		if valid[fileID] {
			continue
		}
		os.Remove(dbPath)
		delete(ps.cache, fileID)
		removed++
		fmt.Printf("[ParsedStore] Cleaned up orphaned snapshot for file %s\n", shortID(fileID))
	}
	return removed
}
