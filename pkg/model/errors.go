package model

import "fmt"

// DataLoadError reports that the input could not be read as a case table:
// unreadable source, missing required column or unparseable date.
type DataLoadError struct {
	Source string
	Line   int // 0 when the failure is not tied to a row
	Column string
	Err    error
}

func (e *DataLoadError) Error() string {
	switch {
	case e.Line > 0 && e.Column != "":
		return fmt.Sprintf("loading %s: line %d: column %q: %v", e.Source, e.Line, e.Column, e.Err)
	case e.Column != "":
		return fmt.Sprintf("loading %s: column %q: %v", e.Source, e.Column, e.Err)
	case e.Line > 0:
		return fmt.Sprintf("loading %s: line %d: %v", e.Source, e.Line, e.Err)
	}
	return fmt.Sprintf("loading %s: %v", e.Source, e.Err)
}

func (e *DataLoadError) Unwrap() error { return e.Err }

// ValidationError reports a row whose fields parse but violate a data rule,
// such as a negative case count.
type ValidationError struct {
	Line   int
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: invalid %s %q: %s", e.Line, e.Field, e.Value, e.Reason)
	}
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}
