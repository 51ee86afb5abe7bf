package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/vanderheijden86/casedash/pkg/model"
)

// ParseCSV reads a CSV table with a header row. The header must contain
// state, date and cases (any order, any case); other columns are ignored.
func ParseCSV(r io.Reader, opts ParseOptions) ([]RawRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = fmt.Errorf("empty input, header row required")
		}
		return nil, &model.DataLoadError{Source: opts.source(), Err: err}
	}
	idx, err := headerIndex(header)
	if err != nil {
		var lerr *model.DataLoadError
		if errors.As(err, &lerr) {
			lerr.Source = opts.source()
		}
		return nil, err
	}

	warn := opts.warn()
	var rows []RawRow
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			line := 0
			if errors.As(err, &perr) {
				line = perr.Line
			}
			return nil, &model.DataLoadError{Source: opts.source(), Line: line, Err: err}
		}
		line, _ := cr.FieldPos(0)
		if isBlank(rec) {
			continue
		}
		if need := idx.maxIndex(); len(rec) <= need {
			short := &model.DataLoadError{
				Source: opts.source(), Line: line,
				Err: fmt.Errorf("row has %d fields, need at least %d", len(rec), need+1),
			}
			if opts.Mode == ModeLenient {
				warn(fmt.Sprintf("skipping row: %v", short))
				continue
			}
			return nil, short
		}
		rows = append(rows, RawRow{
			Line:  line,
			State: rec[idx.state],
			Date:  rec[idx.date],
			Cases: rec[idx.cases],
		})
	}
	return rows, nil
}

type columnIndex struct {
	state, date, cases int
}

func (c columnIndex) maxIndex() int {
	return max(c.state, c.date, c.cases)
}

func headerIndex(header []string) (columnIndex, error) {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(string(stripBOM([]byte(h)))))
		if _, dup := pos[name]; !dup {
			pos[name] = i
		}
	}
	for _, col := range RequiredColumns {
		if _, ok := pos[col]; !ok {
			return columnIndex{}, &model.DataLoadError{
				Column: col,
				Err:    fmt.Errorf("missing required column (have %s)", strings.Join(header, ", ")),
			}
		}
	}
	return columnIndex{state: pos[ColumnState], date: pos[ColumnDate], cases: pos[ColumnCases]}, nil
}

func isBlank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
