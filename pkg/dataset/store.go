// Package dataset holds the immutable, colour-joined case table that every
// dashboard view filters.
package dataset

import (
	"cmp"
	"slices"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/vanderheijden86/casedash/pkg/model"
	"github.com/vanderheijden86/casedash/pkg/palette"
)

// Store is built once from normalised records and never mutated afterwards,
// so it can be shared across goroutines without locking.
type Store struct {
	records []model.CaseRecord
	states  []string
	colors  map[string]string
	first   time.Time
	last    time.Time
}

// New joins each record with its state colour and sorts by (state, date).
// The input slice is not modified. A nil or empty palette uses
// palette.Default.
func New(records []model.CaseRecord, p palette.Palette) *Store {
	if len(p) == 0 {
		p = palette.Default()
	}

	recs := slices.Clone(records)
	names := make([]string, 0, 64)
	seen := make(map[string]struct{})
	for _, r := range recs {
		if _, ok := seen[r.State]; !ok {
			seen[r.State] = struct{}{}
			names = append(names, r.State)
		}
	}
	colors := palette.Assign(names, p)

	for i := range recs {
		recs[i].Color = colors[recs[i].State]
	}
	slices.SortStableFunc(recs, func(a, b model.CaseRecord) int {
		return cmp.Or(cmp.Compare(a.State, b.State), cmp.Compare(a.Ordinal, b.Ordinal))
	})
	slices.Sort(names)

	s := &Store{records: recs, states: names, colors: colors}
	for i, r := range recs {
		if i == 0 || r.Date.Before(s.first) {
			s.first = r.Date
		}
		if i == 0 || r.Date.After(s.last) {
			s.last = r.Date
		}
	}
	return s
}

// Len returns the number of records.
func (s *Store) Len() int { return len(s.records) }

// Records returns a copy of the records in (state, date) order.
func (s *Store) Records() []model.CaseRecord {
	return slices.Clone(s.records)
}

// States returns the sorted universe of state names.
func (s *Store) States() []string {
	return slices.Clone(s.states)
}

// Color returns the colour assigned to state, or "" if unknown.
func (s *Store) Color(state string) string {
	return s.colors[state]
}

// Colors returns a copy of the full colour assignment.
func (s *Store) Colors() map[string]string {
	out := make(map[string]string, len(s.colors))
	for k, v := range s.colors {
		out[k] = v
	}
	return out
}

// Bounds returns the earliest and latest record dates. Both are zero for an
// empty store.
func (s *Store) Bounds() (first, last time.Time) {
	return s.first, s.last
}

// Summary is a quick numeric profile of a set of records.
type Summary struct {
	Records  int
	States   int
	MaxCases int
	Total    float64
	Mean     float64
}

// Summary profiles the whole store.
func (s *Store) Summary() Summary {
	return Summarize(s.records)
}

// Summarize profiles an arbitrary record set, such as a visible row set.
func Summarize(recs []model.CaseRecord) Summary {
	if len(recs) == 0 {
		return Summary{}
	}
	vals := make([]float64, len(recs))
	states := make(map[string]struct{})
	for i, r := range recs {
		vals[i] = float64(r.Cases)
		states[r.State] = struct{}{}
	}
	return Summary{
		Records:  len(recs),
		States:   len(states),
		MaxCases: int(floats.Max(vals)),
		Total:    floats.Sum(vals),
		Mean:     stat.Mean(vals, nil),
	}
}
