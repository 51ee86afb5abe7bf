// Package filter computes the visible row set for a selection.
package filter

import (
	"cmp"
	"slices"

	"github.com/vanderheijden86/casedash/pkg/debug"
	"github.com/vanderheijden86/casedash/pkg/metrics"
	"github.com/vanderheijden86/casedash/pkg/model"
)

// Apply returns the records that fall inside the selection's date range,
// meet its case threshold and belong to a selected state, ordered by
// (date, state). The input is never modified and the result never aliases
// it. An empty state set or an inverted range yields an empty, non-nil slice.
func Apply(records []model.CaseRecord, sel model.Selection) []model.CaseRecord {
	defer metrics.Timer(metrics.Filter)()

	out := []model.CaseRecord{}
	if len(sel.States) == 0 {
		return out
	}
	start, end := sel.StartOrdinal(), sel.EndOrdinal()
	if start > end {
		debug.Log("filter: inverted range %d > %d", start, end)
		return out
	}

	for _, r := range records {
		if Match(r, sel, start, end) {
			out = append(out, r)
		}
	}
	SortVisible(out)

	debug.Log("filter: %d of %d records visible (%d states, min %d)", len(out), len(records), len(sel.States), sel.MinCases)
	return out
}

// Match reports whether r passes all three predicates. start and end are
// the precomputed ordinals of the selection range.
func Match(r model.CaseRecord, sel model.Selection, start, end int) bool {
	if r.Ordinal < start || r.Ordinal > end {
		return false
	}
	if r.Cases < sel.MinCases {
		return false
	}
	return sel.Has(r.State)
}

// SortVisible orders rows by date, then state.
func SortVisible(rows []model.CaseRecord) {
	slices.SortStableFunc(rows, func(a, b model.CaseRecord) int {
		return cmp.Or(cmp.Compare(a.Ordinal, b.Ordinal), cmp.Compare(a.State, b.State))
	})
}

// IsSortedVisible reports whether rows are in (date, state) order.
func IsSortedVisible(rows []model.CaseRecord) bool {
	return slices.IsSortedFunc(rows, func(a, b model.CaseRecord) int {
		return cmp.Or(cmp.Compare(a.Ordinal, b.Ordinal), cmp.Compare(a.State, b.State))
	})
}
