package export

import (
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	_ "modernc.org/sqlite"

	"github.com/vanderheijden86/casedash/pkg/metrics"
	"github.com/vanderheijden86/casedash/pkg/model"
)

// CSVHeader is the column order of exported CSV files. The first three
// columns match the input format, so an export can be loaded again.
var CSVHeader = []string{"state", "date", "cases", "color", "date_ordinal"}

// WriteCSVTo writes rows as CSV with a header.
func WriteCSVTo(w io.Writer, rows []model.CaseRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write([]string{
			r.State,
			r.DateString(),
			strconv.Itoa(r.Cases),
			r.Color,
			strconv.Itoa(r.Ordinal),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCSV writes rows to path, creating parent directories.
func WriteCSV(path string, rows []model.CaseRecord) error {
	defer metrics.Timer(metrics.Export)()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create parent dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteCSVTo(f, rows); err != nil {
		f.Close()
		return fmt.Errorf("write csv: %w", err)
	}
	return f.Close()
}

var casesSchema = []string{
	`CREATE TABLE cases (
		state        TEXT    NOT NULL,
		date         TEXT    NOT NULL,
		cases        INTEGER NOT NULL CHECK (cases >= 0),
		color        TEXT    NOT NULL,
		date_ordinal INTEGER NOT NULL,
		PRIMARY KEY (state, date)
	)`,
	`CREATE INDEX idx_cases_date ON cases(date_ordinal, state)`,
	`CREATE TABLE export_meta (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`,
}

// WriteSQLite writes rows into a fresh SQLite database at path. The cases
// table can be read back as an input source. meta is stored in export_meta.
func WriteSQLite(path string, rows []model.CaseRecord, meta map[string]string) error {
	defer metrics.Timer(metrics.Export)()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create parent dir: %w", err)
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing database: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	for _, ddl := range casesSchema {
		if _, err := db.Exec(ddl); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT INTO cases (state, date, cases, color, date_ordinal) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare insert: %w", err)
	}
	for _, r := range rows {
		if _, err := stmt.Exec(r.State, r.DateString(), r.Cases, r.Color, r.Ordinal); err != nil {
			stmt.Close()
			tx.Rollback()
			return fmt.Errorf("insert %s %s: %w", r.State, r.DateString(), err)
		}
	}
	stmt.Close()

	for k, v := range meta {
		if _, err := tx.Exec(`INSERT INTO export_meta (key, value) VALUES (?, ?)`, k, v); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert meta %s: %w", k, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
