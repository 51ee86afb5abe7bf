// Package loader parses case tables (CSV or JSON Lines) into validated
// CaseRecords.
//
// Parsing happens in two stages. ParseCSV and ParseJSONL turn bytes into
// RawRows without interpreting any field; Normalize then parses dates and
// counts, computes ordinals and applies the strict or lenient row policy.
// SQLite sources (internal/datasource) feed the same Normalize stage.
package loader

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/vanderheijden86/casedash/pkg/debug"
	"github.com/vanderheijden86/casedash/pkg/metrics"
	"github.com/vanderheijden86/casedash/pkg/model"
)

// Required column names. Matching is case-insensitive.
const (
	ColumnState = "state"
	ColumnDate  = "date"
	ColumnCases = "cases"
)

// RequiredColumns lists the columns every source must provide.
var RequiredColumns = []string{ColumnState, ColumnDate, ColumnCases}

// Mode selects how rows that fail validation are handled.
type Mode string

const (
	// ModeStrict fails the whole load on the first bad row.
	ModeStrict Mode = "strict"
	// ModeLenient drops bad rows and reports them via WarningHandler.
	ModeLenient Mode = "lenient"
)

// ParseMode converts a config or flag value to a Mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeStrict:
		return ModeStrict, nil
	case ModeLenient:
		return ModeLenient, nil
	}
	return "", fmt.Errorf("unknown load mode %q (want strict or lenient)", s)
}

// ParseOptions configures parsing and normalisation.
type ParseOptions struct {
	// Mode defaults to ModeStrict.
	Mode Mode

	// WarningHandler is called for every row dropped in lenient mode.
	// If nil, warnings are printed to stderr.
	WarningHandler func(string)

	// Source names the input in error messages.
	Source string
}

func (o ParseOptions) warn() func(string) {
	if o.WarningHandler != nil {
		return o.WarningHandler
	}
	return func(msg string) {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", msg)
	}
}

func (o ParseOptions) source() string {
	if o.Source == "" {
		return "input"
	}
	return o.Source
}

// RawRow is one unparsed input row.
type RawRow struct {
	Line  int
	State string
	Date  string
	Cases string
}

// dateLayouts are tried in order. Any time-of-day component is discarded.
var dateLayouts = []string{
	model.DateLayout,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// ParseDate parses an ISO date or timestamp and truncates it to the day.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	var firstErr error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return model.Day(t), nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}

// ParseCases parses a case count. Integral floats such as "12.0" are accepted.
func ParseCases(s string) (int, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	switch {
	case errors.Is(err, strconv.ErrRange):
		return 0, errors.New("out of range")
	case err != nil, math.IsNaN(f):
		return 0, errors.New("not a number")
	case math.IsInf(f, 0), f >= float64(math.MaxInt), f < float64(math.MinInt):
		return 0, errors.New("out of range")
	case math.Trunc(f) != f:
		return 0, errors.New("not an integer")
	}
	return int(f), nil
}

// Normalize converts raw rows to CaseRecords. Colour is left empty; the
// dataset store assigns it.
func Normalize(rows []RawRow, opts ParseOptions) ([]model.CaseRecord, error) {
	defer metrics.Timer(metrics.Load)()

	mode := opts.Mode
	if mode == "" {
		mode = ModeStrict
	}
	warn := opts.warn()

	type key struct {
		state   string
		ordinal int
	}
	seen := make(map[key]int, len(rows))
	out := make([]model.CaseRecord, 0, len(rows))
	dropped := 0

	for _, row := range rows {
		rec, err := normalizeRow(row, opts.source())
		if err == nil {
			k := key{rec.State, rec.Ordinal}
			if prev, dup := seen[k]; dup {
				err = &model.ValidationError{
					Line:   row.Line,
					Field:  ColumnDate,
					Value:  row.Date,
					Reason: fmt.Sprintf("duplicate record for %s (first seen on line %d)", rec.State, prev),
				}
			} else {
				seen[k] = row.Line
			}
		}
		if err != nil {
			if mode == ModeStrict {
				return nil, err
			}
			dropped++
			warn(fmt.Sprintf("skipping row: %v", err))
			continue
		}
		out = append(out, rec)
	}

	debug.LogIf(dropped > 0, "loader: dropped %d of %d rows from %s", dropped, len(rows), opts.source())
	return out, nil
}

func normalizeRow(row RawRow, source string) (model.CaseRecord, error) {
	state := strings.TrimSpace(row.State)
	if state == "" {
		return model.CaseRecord{}, &model.ValidationError{
			Line: row.Line, Field: ColumnState, Value: row.State, Reason: "must not be empty",
		}
	}

	date, err := ParseDate(row.Date)
	if err != nil {
		return model.CaseRecord{}, &model.DataLoadError{
			Source: source, Line: row.Line, Column: ColumnDate,
			Err: fmt.Errorf("unparseable date %q", row.Date),
		}
	}

	cases, err := ParseCases(row.Cases)
	if err != nil {
		return model.CaseRecord{}, &model.ValidationError{
			Line: row.Line, Field: ColumnCases, Value: row.Cases, Reason: err.Error(),
		}
	}
	if cases < 0 {
		return model.CaseRecord{}, &model.ValidationError{
			Line: row.Line, Field: ColumnCases, Value: row.Cases, Reason: "must not be negative",
		}
	}

	return model.CaseRecord{
		State:   state,
		Date:    date,
		Ordinal: model.Ordinal(date),
		Cases:   cases,
	}, nil
}

// stripBOM removes the UTF-8 Byte Order Mark if present
func stripBOM(b []byte) []byte {
	if bytes.HasPrefix(b, []byte{0xEF, 0xBB, 0xBF}) {
		return b[3:]
	}
	return b
}
