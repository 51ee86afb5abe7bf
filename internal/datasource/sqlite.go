package datasource

import (
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/vanderheijden86/casedash/pkg/debug"
	"github.com/vanderheijden86/casedash/pkg/loader"
	"github.com/vanderheijden86/casedash/pkg/model"
)

// DefaultTable is the table read when none is configured.
const DefaultTable = "cases"

// SQLiteReader provides read access to a case table in a SQLite database
type SQLiteReader struct {
	db    *sql.DB
	path  string
	table string
}

// NewSQLiteReader opens a SQLite database read-only.
func NewSQLiteReader(source DataSource, table string) (*SQLiteReader, error) {
	if source.Type != SourceTypeSQLite {
		return nil, fmt.Errorf("source is not SQLite: %s", source.Type)
	}
	if table == "" {
		table = DefaultTable
	}
	if !validIdentifier(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}

	dsn := fmt.Sprintf("file:%s?mode=ro&_busy_timeout=5000", source.Path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, &model.DataLoadError{Source: source.Path, Err: fmt.Errorf("cannot open database: %w", err)}
	}
	return &SQLiteReader{db: db, path: source.Path, table: table}, nil
}

// Close closes the database connection
func (r *SQLiteReader) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// columns returns the lower-cased column names of the table. An empty result
// means the table does not exist.
func (r *SQLiteReader) columns() (map[string]bool, error) {
	rows, err := r.db.Query(fmt.Sprintf("PRAGMA table_info(%s)", r.table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols := make(map[string]bool)
	for rows.Next() {
		var (
			cid       int
			name      string
			ctype     string
			notnull   int
			dfltValue sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dfltValue, &pk); err != nil {
			return nil, err
		}
		cols[strings.ToLower(name)] = true
	}
	return cols, rows.Err()
}

// ReadRows returns every row of the table as unparsed strings, in rowid
// order. Line numbers are 1-based row positions.
func (r *SQLiteReader) ReadRows() ([]loader.RawRow, error) {
	cols, err := r.columns()
	if err != nil {
		return nil, &model.DataLoadError{Source: r.path, Err: err}
	}
	if len(cols) == 0 {
		return nil, &model.DataLoadError{Source: r.path, Err: fmt.Errorf("no table %q", r.table)}
	}
	for _, c := range loader.RequiredColumns {
		if !cols[c] {
			return nil, &model.DataLoadError{Source: r.path, Column: c, Err: fmt.Errorf("missing required column in table %q", r.table)}
		}
	}

	n, err := r.CountRows()
	if err != nil {
		return nil, &model.DataLoadError{Source: r.path, Err: err}
	}
	debug.Log("datasource: reading %d rows from %s.%s", n, r.path, r.table)

	query := fmt.Sprintf(`
		SELECT
			COALESCE(CAST(state AS TEXT), ''),
			COALESCE(CAST(date AS TEXT), ''),
			COALESCE(CAST(cases AS TEXT), '')
		FROM %s
		ORDER BY rowid`, r.table)

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, &model.DataLoadError{Source: r.path, Err: err}
	}
	defer rows.Close()

	out := make([]loader.RawRow, 0, n)
	line := 0
	for rows.Next() {
		line++
		row := loader.RawRow{Line: line}
		if err := rows.Scan(&row.State, &row.Date, &row.Cases); err != nil {
			return nil, &model.DataLoadError{Source: r.path, Line: line, Err: err}
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, &model.DataLoadError{Source: r.path, Err: err}
	}
	return out, nil
}

// CountRows returns the number of rows in the table.
func (r *SQLiteReader) CountRows() (int, error) {
	var n int
	err := r.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", r.table)).Scan(&n)
	return n, err
}

func validIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, c := range s {
		switch {
		case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
