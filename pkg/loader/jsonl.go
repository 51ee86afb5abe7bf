package loader

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/casedash/pkg/model"
)

// DefaultMaxLineSize bounds a single JSON Lines record (1MB).
const DefaultMaxLineSize = 1024 * 1024

// ParseJSONL reads one JSON object per line with state, date and cases keys.
// cases may be a number or a numeric string.
func ParseJSONL(r io.Reader, opts ParseOptions) ([]RawRow, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), DefaultMaxLineSize)

	warn := opts.warn()
	var rows []RawRow
	lineNum := 0
	for sc.Scan() {
		lineNum++
		line := sc.Bytes()
		if lineNum == 1 {
			line = stripBOM(line)
		}
		if len(line) == 0 {
			continue
		}

		row, err := decodeJSONRow(line, lineNum, opts.source())
		if err != nil {
			if opts.Mode == ModeLenient {
				warn(fmt.Sprintf("skipping row: %v", err))
				continue
			}
			return nil, err
		}
		rows = append(rows, row)
	}
	if err := sc.Err(); err != nil {
		return nil, &model.DataLoadError{Source: opts.source(), Line: lineNum + 1, Err: err}
	}
	return rows, nil
}

func decodeJSONRow(line []byte, lineNum int, source string) (RawRow, error) {
	var obj map[string]any
	if err := json.Unmarshal(line, &obj); err != nil {
		return RawRow{}, &model.DataLoadError{Source: source, Line: lineNum, Err: fmt.Errorf("malformed JSON: %w", err)}
	}
	row := RawRow{Line: lineNum}
	for _, col := range RequiredColumns {
		v, ok := obj[col]
		if !ok || v == nil {
			return RawRow{}, &model.DataLoadError{Source: source, Line: lineNum, Column: col, Err: fmt.Errorf("missing field")}
		}
		s := scalarString(v)
		switch col {
		case ColumnState:
			row.State = s
		case ColumnDate:
			row.Date = s
		case ColumnCases:
			row.Cases = s
		}
	}
	return row, nil
}

func scalarString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}
