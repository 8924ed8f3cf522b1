package models

import "time"

const (
	FileStatusUploaded = "uploaded"
	FileStatusParsed   = "parsed"
	FileStatusError    = "error"
)

// FileInfo represents metadata about an uploaded file.
type FileInfo struct {
	ID         string       `json:"id" msgpack:"id"`
	Name       string       `json:"name" msgpack:"name"`
	Size       int64        `json:"size" msgpack:"size"`
	UploadedAt time.Time    `json:"uploadedAt" msgpack:"uploadedAt"`
	Status     string       `json:"status" msgpack:"status"` // "uploaded", "parsed", "error"
	RowCount   int          `json:"rowCount,omitempty" msgpack:"rowCount,omitempty"`
	Columns    []string     `json:"columns,omitempty" msgpack:"columns,omitempty"`
	Errors     []ParseError `json:"errors,omitempty" msgpack:"errors,omitempty"`
}
