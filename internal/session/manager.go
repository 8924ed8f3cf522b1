package session

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/bookstore-insights/backend/internal/dataset"
	"github.com/bookstore-insights/backend/internal/models"
	"github.com/bookstore-insights/backend/internal/source"
	"github.com/google/uuid"
)

// MaxSessions limits concurrent sessions to bound memory held by cached datasets
const MaxSessions = 10

// SessionKeepAliveWindow is how long to keep sessions that are actively being used
const SessionKeepAliveWindow = 5 * time.Minute

var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrNoUpload         = errors.New("no uploaded dataset in session")
	ErrSnapshotNotFound = errors.New("snapshot not found")
	ErrUnknownDataset   = errors.New("unknown dataset")
)

// Which selects one of the datasets a session holds.
type Which string

const (
	DatasetPrimary Which = "primary"
	DatasetUpload  Which = "upload"
)

// ParseWhich maps a query parameter to a Which; "" means primary.
func ParseWhich(s string) (Which, error) {
	switch Which(s) {
	case "", DatasetPrimary:
		return DatasetPrimary, nil
	case DatasetUpload:
		return DatasetUpload, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDataset, s)
}

// Upload is a secondary dataset parsed from a user file.
type Upload struct {
	Info    models.FileInfo
	Dataset *dataset.Dataset
}

// State is one dashboard session. Navigations that load data are serialised
// by loadMu; the datasets themselves are immutable and read without locks.
type State struct {
	ID           string
	CreatedAt    time.Time
	LastAccessed time.Time // guarded by Manager.mu
	upload       *Upload   // guarded by Manager.mu

	loadMu sync.Mutex
	cache  *DatasetCache
}

// Manager owns the dashboard sessions and the primary data source they read.
type Manager struct {
	sessions    map[string]*State
	mu          sync.RWMutex
	src         source.Source
	loader      LoaderFunc
	parsed      *ParsedStore
	maxSessions int
}

// Option configures a Manager.
type Option func(*Manager)

// WithLoader replaces source.LoadResult, mostly for tests.
func WithLoader(l LoaderFunc) Option {
	return func(m *Manager) { m.loader = l }
}

// WithParsedStore persists uploads as DuckDB snapshots.
func WithParsedStore(ps *ParsedStore) Option {
	return func(m *Manager) { m.parsed = ps }
}

func WithMaxSessions(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.maxSessions = n
		}
	}
}

// NewManager creates a session manager reading the primary dataset from src.
func NewManager(src source.Source, opts ...Option) *Manager {
	m := &Manager{
		sessions:    make(map[string]*State),
		src:         src,
		loader:      source.LoadResult,
		maxSessions: MaxSessions,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Source returns the primary data source.
func (m *Manager) Source() source.Source {
	return m.src
}

// ParsedStore returns the snapshot store, or nil when uploads are not persisted.
func (m *Manager) ParsedStore() *ParsedStore {
	return m.parsed
}

// CreateSession starts a session and loads its primary dataset. A failed load
// still creates the session; its info carries the error and views refuse to
// render until Reload succeeds.
func (m *Manager) CreateSession(ctx context.Context) (*models.SessionInfo, error) {
	m.cleanupOldSessionsIfNeeded()

	now := time.Now()
	state := &State{
		ID:           uuid.New().String(),
		CreatedAt:    now,
		LastAccessed: now,
		cache:        NewDatasetCache(m.loader),
	}

	m.mu.Lock()
	m.sessions[state.ID] = state
	m.mu.Unlock()

	fmt.Printf("[Session %s] Created, loading %s\n", shortID(state.ID), m.src.Identity())
	state.loadMu.Lock()
	e := state.cache.Get(ctx, m.src)
	state.loadMu.Unlock()
	if e.Err != nil {
		fmt.Printf("[Session %s] Primary load failed: %v\n", shortID(state.ID), e.Err)
	}

	return m.GetSession(state.ID)
}

func (m *Manager) lookup(id string) (*State, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	state, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return state, nil
}

// GetSession returns a snapshot of the session's metadata.
func (m *Manager) GetSession(id string) (*models.SessionInfo, error) {
	m.mu.RLock()
	state, ok := m.sessions[id]
	if !ok {
		m.mu.RUnlock()
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	info := m.infoLocked(state)
	cache := state.cache
	m.mu.RUnlock()

	m.addLoadState(info, cache)
	return info, nil
}

// infoLocked copies the fields guarded by m.mu. The caller holds m.mu and
// calls addLoadState after releasing it.
func (m *Manager) infoLocked(state *State) *models.SessionInfo {
	info := &models.SessionInfo{
		ID:           state.ID,
		Status:       models.SessionStatusLoading,
		Source:       m.src.Identity(),
		CreatedAt:    state.CreatedAt,
		LastAccessed: state.LastAccessed,
	}
	if state.upload != nil {
		up := state.upload.Info
		info.Upload = &up
	}
	return info
}

// addLoadState fills in the outcome of the primary load, if there is one yet.
func (m *Manager) addLoadState(info *models.SessionInfo, cache *DatasetCache) {
	e, ok := cache.Peek(m.src.Identity())
	if !ok {
		return
	}
	info.Fingerprint = e.Fingerprint
	info.Errors = e.Errors
	info.LoadTimeMs = e.Duration.Milliseconds()
	if e.Err != nil {
		info.Status = models.SessionStatusError
		info.LoadError = e.Err.Error()
		return
	}
	info.Status = models.SessionStatusReady
	info.RowCount = e.Dataset.Count()
	info.Columns = e.Dataset.Schema().Names()
}

// ListSessions returns metadata for every session, oldest first.
func (m *Manager) ListSessions() []*models.SessionInfo {
	m.mu.RLock()
	list := make([]*models.SessionInfo, 0, len(m.sessions))
	caches := make([]*DatasetCache, 0, len(m.sessions))
	for _, state := range m.sessions {
		list = append(list, m.infoLocked(state))
		caches = append(caches, state.cache)
	}
	m.mu.RUnlock()

	for i, info := range list {
		m.addLoadState(info, caches[i])
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})
	return list
}

// TouchSession updates the LastAccessed timestamp for a session.
// This should be called whenever a session is actively being used
// to prevent it from being cleaned up.
func (m *Manager) TouchSession(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, ok := m.sessions[id]
	if !ok {
		return false
	}
	state.LastAccessed = time.Now()
	return true
}

// DeleteSession drops a session and everything it cached.
func (m *Manager) DeleteSession(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[id]; !ok {
		return false
	}
	delete(m.sessions, id)
	fmt.Printf("[Session %s] Deleted\n", shortID(id))
	return true
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Primary returns the session's primary dataset, loading it on first use. When
// the load failed the returned dataset is empty and err is a *source.LoadError.
func (m *Manager) Primary(ctx context.Context, id string) (*dataset.Dataset, error) {
	state, err := m.lookup(id)
	if err != nil {
		return nil, err
	}
	m.TouchSession(id)

	state.loadMu.Lock()
	e := state.cache.Get(ctx, m.src)
	state.loadMu.Unlock()
	return e.Dataset, e.Err
}

// Dataset returns the primary or uploaded dataset of a session.
func (m *Manager) Dataset(ctx context.Context, id string, which Which) (*dataset.Dataset, error) {
	switch which {
	case DatasetPrimary, "":
		return m.Primary(ctx, id)
	case DatasetUpload:
		up, err := m.Upload(id)
		if err != nil {
			return nil, err
		}
		return up.Dataset, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownDataset, which)
}

// Reload invalidates the cached primary dataset and fetches it again.
func (m *Manager) Reload(ctx context.Context, id string) (*models.SessionInfo, error) {
	state, err := m.lookup(id)
	if err != nil {
		return nil, err
	}
	m.TouchSession(id)

	fmt.Printf("[Session %s] Reloading %s\n", shortID(id), m.src.Identity())
	state.loadMu.Lock()
	e := state.cache.Reload(ctx, m.src)
	state.loadMu.Unlock()
	if e.Err != nil {
		fmt.Printf("[Session %s] Reload failed: %v\n", shortID(id), e.Err)
	}
	return m.GetSession(id)
}

// Upload returns the session's uploaded dataset.
func (m *Manager) Upload(id string) (*Upload, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	state, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	if state.upload == nil {
		return nil, ErrNoUpload
	}
	return state.upload, nil
}

// AttachUpload makes d the session's uploaded dataset and, when a ParsedStore
// is configured, snapshots it under info.ID. A failed snapshot is logged; the
// upload stays usable for the session.
func (m *Manager) AttachUpload(ctx context.Context, id string, info models.FileInfo, d *dataset.Dataset) (*models.FileInfo, error) {
	state, err := m.lookup(id)
	if err != nil {
		return nil, err
	}

	state.loadMu.Lock()
	defer state.loadMu.Unlock()

	if m.parsed != nil && info.ID != "" {
		if err := m.parsed.Save(ctx, info.ID, d); err != nil {
			fmt.Printf("[Session %s] Warning: snapshot of upload %s failed: %v\n", shortID(id), shortID(info.ID), err)
		}
	}

	info.Status = models.FileStatusParsed
	info.RowCount = d.Count()
	info.Columns = d.Schema().Names()
	m.setUpload(state, info, d)

	fmt.Printf("[Session %s] Upload %s attached: %d rows x %d columns\n",
		shortID(id), info.Name, d.Count(), d.Schema().Len())
	return &info, nil
}

// ActivateUpload restores a previous upload from its DuckDB snapshot.
func (m *Manager) ActivateUpload(ctx context.Context, id string, info models.FileInfo) (*models.FileInfo, error) {
	state, err := m.lookup(id)
	if err != nil {
		return nil, err
	}
	if m.parsed == nil {
		return nil, fmt.Errorf("%w: %s", ErrSnapshotNotFound, info.ID)
	}

	state.loadMu.Lock()
	defer state.loadMu.Unlock()

	d, err := m.parsed.Load(ctx, info.ID)
	if err != nil {
		return nil, err
	}

	info.Status = models.FileStatusParsed
	info.RowCount = d.Count()
	info.Columns = d.Schema().Names()
	m.setUpload(state, info, d)

	fmt.Printf("[Session %s] Activated upload %s from snapshot\n", shortID(id), shortID(info.ID))
	return &info, nil
}

func (m *Manager) setUpload(state *State, info models.FileInfo, d *dataset.Dataset) {
	m.mu.Lock()
	state.upload = &Upload{Info: info, Dataset: d}
	state.LastAccessed = time.Now()
	m.mu.Unlock()
}

// cleanupOldSessionsIfNeeded evicts the least recently used sessions at capacity
func (m *Manager) cleanupOldSessionsIfNeeded() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.sessions) < m.maxSessions {
		return
	}

	states := make([]*State, 0, len(m.sessions))
	for _, s := range m.sessions {
		states = append(states, s)
	}
	sort.Slice(states, func(i, j int) bool {
		return states[i].LastAccessed.Before(states[j].LastAccessed)
	})

	toFree := len(m.sessions) - m.maxSessions + 1
	for _, s := range states[:toFree] {
		delete(m.sessions, s.ID)
		fmt.Printf("[Manager] Evicted session %s to stay under %d sessions\n", shortID(s.ID), m.maxSessions)
	}
}

// CleanupOldSessions removes sessions idle for longer than maxAge, but keeps
// sessions that have been accessed within SessionKeepAliveWindow.
func (m *Manager) CleanupOldSessions(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-maxAge)
	keepAliveCutoff := now.Add(-SessionKeepAliveWindow)

	removed := 0
	for id, state := range m.sessions {
		if state.LastAccessed.After(keepAliveCutoff) {
			continue
		}
		if state.LastAccessed.Before(cutoff) {
			delete(m.sessions, id)
			removed++
			fmt.Printf("[Manager] Cleaned up aged session %s (last accessed: %s ago)\n",
				shortID(id), now.Sub(state.LastAccessed).Round(time.Second))
		}
	}
	return removed
}

// DeleteParsedFile drops the snapshot of a deleted upload file.
func (m *Manager) DeleteParsedFile(fileID string) error {
	if m.parsed == nil {
		return nil
	}
	return m.parsed.Delete(fileID)
}
