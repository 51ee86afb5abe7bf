//go:build ignore

// generate_testdata.go creates sample case series for benchmarking and demos.
// Usage: go run scripts/generate_testdata.go
//
// Creates:
//   tests/testdata/cases/small.csv     (6 states, 30 days)
//   tests/testdata/cases/medium.csv    (20 states, 120 days, staggered)
//   tests/testdata/cases/large.jsonl   (55 states, 400 days, staggered)
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vanderheijden86/casedash/pkg/model"
	"github.com/vanderheijden86/casedash/pkg/testutil"
)

type datasetSpec struct {
	name      string
	states    int
	days      int
	staggered bool
	ext       string
}

var datasets = []datasetSpec{
	{"small", 6, 30, false, ".csv"},
	{"medium", 20, 120, true, ".csv"},
	{"large", 55, 400, true, ".jsonl"},
}

// stateNames lists US states and territories in the order the feed first
// reported them; datasets take a prefix.
var stateNames = []string{
	"Washington", "Illinois", "California", "Arizona", "Massachusetts",
	"Wisconsin", "Texas", "Nebraska", "Utah", "Oregon",
	"Florida", "New York", "Rhode Island", "Georgia", "New Hampshire",
	"North Carolina", "New Jersey", "Colorado", "Maryland", "Nevada",
	"Tennessee", "Hawaii", "Indiana", "Kentucky", "Minnesota",
	"Oklahoma", "Pennsylvania", "South Carolina", "District of Columbia", "Kansas",
	"Missouri", "Vermont", "Virginia", "Connecticut", "Iowa",
	"Louisiana", "Ohio", "Michigan", "South Dakota", "Arkansas",
	"Delaware", "Mississippi", "New Mexico", "North Dakota", "Wyoming",
	"Alaska", "Maine", "Alabama", "Idaho", "Montana",
	"Puerto Rico", "Virgin Islands", "Guam", "West Virginia", "Northern Mariana Islands",
}

func main() {
	outputDir := "tests/testdata/cases"
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create output directory: %v\n", err)
		os.Exit(1)
	}

	for _, ds := range datasets {
		fmt.Printf("Generating %s dataset (%d states × %d days)...\n", ds.name, ds.states, ds.days)

		cfg := testutil.DefaultConfig()
		cfg.Seed = int64(ds.states*1000 + ds.days) // reproducible per size
		cfg.States = stateNames[:ds.states]
		cfg.Days = ds.days
		cfg.Growth = growthFor(ds.days)
		cfg.Staggered = ds.staggered

		recs := testutil.New(cfg).Records()

		var body string
		if ds.ext == ".jsonl" {
			body = testutil.ToJSONL(recs)
		} else {
			body = testutil.ToCSV(recs)
		}

		outputPath := filepath.Join(outputDir, ds.name+ds.ext)
		if err := os.WriteFile(outputPath, []byte(body), 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write %s: %v\n", outputPath, err)
			os.Exit(1)
		}

		fmt.Printf("  Written %s (%d bytes, %d records, peak %s)\n", outputPath, len(body), len(recs), peak(recs))
	}

	fmt.Println("\nDone! Test datasets created in", outputDir)
}

// growthFor keeps long series from overflowing: the longer the run, the
// gentler the mean daily growth.
func growthFor(days int) float64 {
	switch {
	case days <= 30:
		return 1.15
	case days <= 120:
		return 1.05
	default:
		return 1.015
	}
}

func peak(recs []model.CaseRecord) string {
	best := model.CaseRecord{}
	for _, r := range recs {
		if r.Cases > best.Cases {
			best = r
		}
	}
	if best.State == "" {
		return "none"
	}
	return fmt.Sprintf("%d in %s on %s", best.Cases, strings.TrimSpace(best.State), best.DateString())
}
