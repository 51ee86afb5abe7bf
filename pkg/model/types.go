// Package model defines the core data types shared by the loader, filter and
// dashboard packages.
package model

import (
	"sort"
	"time"
)

// DateLayout is the canonical on-disk date format.
const DateLayout = "2006-01-02"

// CaseRecord is one observation: cumulative cases for a state on a date.
type CaseRecord struct {
	State   string    `json:"state"`
	Date    time.Time `json:"date"`
	Ordinal int       `json:"date_ordinal"`
	Cases   int       `json:"cases"`
	Color   string    `json:"color"`
}

// DateString returns the record date as YYYY-MM-DD.
func (r CaseRecord) DateString() string {
	return r.Date.Format(DateLayout)
}

// Selection is the user-controlled filter state.
type Selection struct {
	States   map[string]struct{}
	Start    time.Time
	End      time.Time
	MinCases int
}

// NewSelection builds a Selection for the given states.
func NewSelection(states []string, start, end time.Time, minCases int) Selection {
	set := make(map[string]struct{}, len(states))
	for _, s := range states {
		set[s] = struct{}{}
	}
	return Selection{States: set, Start: start, End: end, MinCases: minCases}
}

// Has reports whether state is selected.
func (s Selection) Has(state string) bool {
	_, ok := s.States[state]
	return ok
}

// StartOrdinal returns the ordinal of the range start.
func (s Selection) StartOrdinal() int { return Ordinal(s.Start) }

// EndOrdinal returns the ordinal of the range end.
func (s Selection) EndOrdinal() int { return Ordinal(s.End) }

// StateList returns the selected states sorted.
func (s Selection) StateList() []string {
	out := make([]string, 0, len(s.States))
	for st := range s.States {
		out = append(out, st)
	}
	sort.Strings(out)
	return out
}

// Clone returns a deep copy so callers can't alias the state set.
func (s Selection) Clone() Selection {
	set := make(map[string]struct{}, len(s.States))
	for st := range s.States {
		set[st] = struct{}{}
	}
	s.States = set
	return s
}
