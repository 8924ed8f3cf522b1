// Package models contains domain types shared by the Bookstore Insights packages.
package models

import "time"

// SessionStatus represents the state of the primary dataset for a session.
type SessionStatus string

const (
	SessionStatusLoading SessionStatus = "loading"
	SessionStatusReady   SessionStatus = "ready"
	SessionStatusError   SessionStatus = "error"
)

// SessionInfo is the client-facing view of a dashboard session.
type SessionInfo struct {
	ID           string        `json:"id" msgpack:"id"`
	Status       SessionStatus `json:"status" msgpack:"status"`
	Source       string        `json:"source" msgpack:"source"`
	Fingerprint  string        `json:"fingerprint,omitempty" msgpack:"fingerprint,omitempty"`
	RowCount     int           `json:"rowCount" msgpack:"rowCount"`
	Columns      []string      `json:"columns,omitempty" msgpack:"columns,omitempty"`
	LoadError    string        `json:"loadError,omitempty" msgpack:"loadError,omitempty"`
	LoadTimeMs   int64         `json:"loadTimeMs,omitempty" msgpack:"loadTimeMs,omitempty"`
	Errors       []ParseError  `json:"errors,omitempty" msgpack:"errors,omitempty"`
	Upload       *FileInfo     `json:"upload,omitempty" msgpack:"upload,omitempty"`
	CreatedAt    time.Time     `json:"createdAt" msgpack:"createdAt"`
	LastAccessed time.Time     `json:"lastAccessed" msgpack:"lastAccessed"`
}

// ParseError represents a record skipped while parsing.
type ParseError struct {
	Line    int    `json:"line" msgpack:"line"`
	Content string `json:"content,omitempty" msgpack:"content,omitempty"`
	Reason  string `json:"reason" msgpack:"reason"`
}
