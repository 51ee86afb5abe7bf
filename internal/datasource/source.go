// Package datasource detects the kind of case table at a path and reads it
// into raw rows: CSV, JSON Lines or a SQLite database.
package datasource

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/vanderheijden86/casedash/pkg/model"
)

// SourceType identifies the type of data source
type SourceType string

const (
	// SourceTypeCSV is a comma-separated table with a header row
	SourceTypeCSV SourceType = "csv"
	// SourceTypeJSONL is one JSON object per line
	SourceTypeJSONL SourceType = "jsonl"
	// SourceTypeSQLite is a SQLite database holding a cases table
	SourceTypeSQLite SourceType = "sqlite"
)

// DataSource describes an input file.
type DataSource struct {
	Type    SourceType `json:"type"`
	Path    string     `json:"path"`
	ModTime time.Time  `json:"mod_time"`
	Size    int64      `json:"size"`
}

// String returns a human-readable description of the source
func (s DataSource) String() string {
	return fmt.Sprintf("%s (%s, %d bytes, modified %s)", s.Path, s.Type, s.Size, s.ModTime.Format(time.RFC3339))
}

// TypeForPath picks a SourceType from the file extension. Unknown extensions
// are treated as CSV.
func TypeForPath(path string) SourceType {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jsonl", ".ndjson":
		return SourceTypeJSONL
	case ".db", ".sqlite", ".sqlite3":
		return SourceTypeSQLite
	default:
		return SourceTypeCSV
	}
}

// Detect stats path and returns its DataSource. A missing or unreadable
// path is a DataLoadError.
func Detect(path string) (DataSource, error) {
	info, err := os.Stat(path)
	if err != nil {
		return DataSource{}, &model.DataLoadError{Source: path, Err: err}
	}
	if info.IsDir() {
		return DataSource{}, &model.DataLoadError{Source: path, Err: fmt.Errorf("is a directory")}
	}
	return DataSource{
		Type:    TypeForPath(path),
		Path:    path,
		ModTime: info.ModTime(),
		Size:    info.Size(),
	}, nil
}
