package testutil

import (
	"strings"
	"testing"
)

func TestRecords(t *testing.T) {
	g := NewDefault()
	recs := g.Records()
	AssertRecordCount(t, recs, len(SampleStates)*30)

	last := map[string]int{}
	for i, r := range recs {
		if i > 0 {
			p := recs[i-1]
			if p.State > r.State || (p.State == r.State && p.Ordinal >= r.Ordinal) {
				t.Fatalf("records not ordered by (state, date) at %d", i)
			}
		}
		if prev, ok := last[r.State]; ok && r.Cases < prev {
			t.Fatalf("%s decreased from %d to %d", r.State, prev, r.Cases)
		}
		last[r.State] = r.Cases
		if r.Cases < 1 {
			t.Fatalf("cases should start at 1 or more, got %d", r.Cases)
		}
	}
}

func TestDeterminism(t *testing.T) {
	a := New(DefaultConfig()).Records()
	b := New(DefaultConfig()).Records()
	if len(a) != len(b) {
		t.Fatalf("lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("record %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestStaggered(t *testing.T) {
	cfg := DefaultConfig()
	cfg.States = []string{"B", "A"}
	cfg.Days = 2
	cfg.Staggered = true
	recs := New(cfg).Records()
	if recs[0].State != "A" || recs[2].State != "B" {
		t.Fatalf("states not sorted: %v", Keys(recs))
	}
	if recs[2].Ordinal-recs[0].Ordinal != 3 {
		t.Errorf("second state should start 3 days later, got %d", recs[2].Ordinal-recs[0].Ordinal)
	}
}

func TestToCSVAndJSONL(t *testing.T) {
	recs := Small()[:2]
	csv := ToCSV(recs)
	want := "state,date,cases\nAlabama,2020-03-01,5\nAlabama,2020-03-02,12\n"
	if csv != want {
		t.Errorf("ToCSV = %q, want %q", csv, want)
	}
	jl := ToJSONL(recs)
	if got := strings.Count(jl, "\n"); got != 2 {
		t.Errorf("expected 2 lines, got %d", got)
	}
	if !strings.Contains(jl, `"state":"Alabama"`) {
		t.Errorf("missing state key: %s", jl)
	}
}

func TestRecordOrdinal(t *testing.T) {
	r := Record("X", "2020-01-21", 1)
	if r.Ordinal != 737445 {
		t.Errorf("ordinal = %d, want 737445", r.Ordinal)
	}
}
