package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vanderheijden86/casedash/pkg/model"
)

// AssertRecordCount verifies the expected number of records.
func AssertRecordCount(t *testing.T, recs []model.CaseRecord, expected int) {
	t.Helper()
	if len(recs) != expected {
		t.Errorf("expected %d records, got %d", expected, len(recs))
	}
}

// AssertVisibleOrder verifies rows are sorted by (date, state).
func AssertVisibleOrder(t *testing.T, recs []model.CaseRecord) {
	t.Helper()
	for i := 1; i < len(recs); i++ {
		a, b := recs[i-1], recs[i]
		if a.Ordinal > b.Ordinal || (a.Ordinal == b.Ordinal && a.State > b.State) {
			t.Errorf("rows %d and %d out of order: %s@%s before %s@%s",
				i-1, i, a.State, a.DateString(), b.State, b.DateString())
			return
		}
	}
}

// AssertMatchesSelection verifies every row satisfies the selection.
func AssertMatchesSelection(t *testing.T, recs []model.CaseRecord, sel model.Selection) {
	t.Helper()
	lo, hi := sel.StartOrdinal(), sel.EndOrdinal()
	for _, r := range recs {
		if !sel.Has(r.State) || r.Ordinal < lo || r.Ordinal > hi || r.Cases < sel.MinCases {
			t.Errorf("row %s@%s (%d cases) does not match selection", r.State, r.DateString(), r.Cases)
		}
	}
}

// AssertColored verifies every row carries the colour the map assigns.
func AssertColored(t *testing.T, recs []model.CaseRecord, colors map[string]string) {
	t.Helper()
	for _, r := range recs {
		if r.Color == "" || r.Color != colors[r.State] {
			t.Errorf("row %s@%s has colour %q, want %q", r.State, r.DateString(), r.Color, colors[r.State])
		}
	}
}

// Keys renders rows as state@date strings for compact comparisons.
func Keys(recs []model.CaseRecord) []string {
	out := make([]string, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.State+"@"+r.DateString())
	}
	return out
}

// GoldenFile compares test output against a file under testdata.
type GoldenFile struct {
	t      *testing.T
	dir    string
	name   string
	update bool
}

// NewGoldenFile creates a golden file helper.
// If GENERATE_GOLDEN env var is set, golden files will be updated.
func NewGoldenFile(t *testing.T, dir, name string) *GoldenFile {
	t.Helper()
	return &GoldenFile{
		t:      t,
		dir:    dir,
		name:   name,
		update: os.Getenv("GENERATE_GOLDEN") != "",
	}
}

// Path returns the full path to the golden file.
func (g *GoldenFile) Path() string {
	return filepath.Join(g.dir, g.name)
}

// Assert compares actual content against the golden file.
// If GENERATE_GOLDEN is set, updates the golden file instead.
func (g *GoldenFile) Assert(actual string) {
	g.t.Helper()

	path := g.Path()
	if g.update {
		if err := os.MkdirAll(g.dir, 0755); err != nil {
			g.t.Fatalf("failed to create golden dir: %v", err)
		}
		if err := os.WriteFile(path, []byte(actual), 0644); err != nil {
			g.t.Fatalf("failed to write golden file: %v", err)
		}
		g.t.Logf("updated golden file: %s", path)
		return
	}

	expected, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			g.t.Fatalf("golden file does not exist: %s\nRun with GENERATE_GOLDEN=1 to create it", path)
		}
		g.t.Fatalf("failed to read golden file: %v", err)
	}

	if string(expected) != actual {
		expectedLines := strings.Split(string(expected), "\n")
		actualLines := strings.Split(actual, "\n")
		for i := 0; i < len(expectedLines) || i < len(actualLines); i++ {
			var expLine, actLine string
			if i < len(expectedLines) {
				expLine = expectedLines[i]
			}
			if i < len(actualLines) {
				actLine = actualLines[i]
			}
			if expLine != actLine {
				g.t.Errorf("golden file mismatch at line %d:\nexpected: %s\nactual:   %s", i+1, expLine, actLine)
				return
			}
		}
		g.t.Errorf("golden file mismatch (length differs)")
	}
}

// WriteFile writes content to name under a fresh temp dir and returns the
// path.
func WriteFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

// WriteCSV writes records as an input CSV and returns the path.
func WriteCSV(t *testing.T, recs []model.CaseRecord) string {
	t.Helper()
	return WriteFile(t, "us-states.csv", ToCSV(recs))
}

// WriteJSONL writes records as an input JSONL file and returns the path.
func WriteJSONL(t *testing.T, recs []model.CaseRecord) string {
	t.Helper()
	return WriteFile(t, "us-states.jsonl", ToJSONL(recs))
}
