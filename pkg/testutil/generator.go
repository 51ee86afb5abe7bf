// Package testutil provides deterministic case-series fixtures and
// assertion helpers shared by package tests.
package testutil

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/vanderheijden86/casedash/pkg/model"
)

// GeneratorConfig controls series generation.
type GeneratorConfig struct {
	Seed      int64     // Random seed for determinism (0 = use current time)
	States    []string  // State names (default: SampleStates)
	Start     time.Time // First reported day (default: 2020-01-21)
	Days      int       // Days per series (default: 30)
	Growth    float64   // Mean daily growth factor (default: 1.15)
	Staggered bool      // Each state starts reporting a few days after the previous
}

// SampleStates are used when a config names none.
var SampleStates = []string{"Alabama", "Alaska", "Arizona", "Arkansas", "California", "Colorado"}

// DefaultConfig returns a config suitable for most tests.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		Seed:   42,
		States: SampleStates,
		Start:  time.Date(2020, 1, 21, 0, 0, 0, 0, time.UTC),
		Days:   30,
		Growth: 1.15,
	}
}

// Generator creates cumulative case series.
type Generator struct {
	cfg GeneratorConfig
	rng *rand.Rand
}

// New creates a Generator with the given config.
func New(cfg GeneratorConfig) *Generator {
	def := DefaultConfig()
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if len(cfg.States) == 0 {
		cfg.States = def.States
	}
	if cfg.Start.IsZero() {
		cfg.Start = def.Start
	}
	if cfg.Days <= 0 {
		cfg.Days = def.Days
	}
	if cfg.Growth <= 0 {
		cfg.Growth = def.Growth
	}
	return &Generator{cfg: cfg, rng: rand.New(rand.NewSource(seed))}
}

// NewDefault creates a Generator with default config.
func NewDefault() *Generator {
	return New(DefaultConfig())
}

// Records returns one record per state and day. Counts never decrease within
// a state. Records are ordered by (state, date) and carry ordinals but no
// colours.
func (g *Generator) Records() []model.CaseRecord {
	states := append([]string(nil), g.cfg.States...)
	sort.Strings(states)

	var out []model.CaseRecord
	for si, state := range states {
		start := g.cfg.Start
		if g.cfg.Staggered {
			start = start.AddDate(0, 0, si*3)
		}
		cases := 1 + g.rng.Intn(3)
		for d := 0; d < g.cfg.Days; d++ {
			day := start.AddDate(0, 0, d)
			out = append(out, model.CaseRecord{
				State:   state,
				Date:    day,
				Ordinal: model.Ordinal(day),
				Cases:   cases,
			})
			factor := g.cfg.Growth + (g.rng.Float64()-0.5)*0.1
			next := int(float64(cases) * factor)
			if next <= cases {
				next = cases + g.rng.Intn(2)
			}
			cases = next
		}
	}
	return out
}

// ToCSV renders records in the input format (state,date,cases).
func ToCSV(recs []model.CaseRecord) string {
	var sb strings.Builder
	sb.WriteString("state,date,cases\n")
	for _, r := range recs {
		fmt.Fprintf(&sb, "%s,%s,%d\n", r.State, r.DateString(), r.Cases)
	}
	return sb.String()
}

// ToJSONL renders records one JSON object per line.
func ToJSONL(recs []model.CaseRecord) string {
	var sb strings.Builder
	for _, r := range recs {
		fmt.Fprintf(&sb, "{\"state\":%q,\"date\":%q,\"cases\":%d}\n", r.State, r.DateString(), r.Cases)
	}
	return sb.String()
}

// Record builds one record from a YYYY-MM-DD date.
func Record(state, date string, cases int) model.CaseRecord {
	t, err := time.Parse(model.DateLayout, date)
	if err != nil {
		panic(fmt.Sprintf("testutil: bad date %q", date))
	}
	return model.CaseRecord{State: state, Date: t, Ordinal: model.Ordinal(t), Cases: cases}
}

// Date parses a YYYY-MM-DD date, panicking on bad input.
func Date(s string) time.Time {
	return Record("", s, 0).Date
}

// QuickSeries returns n days of data for the given states.
func QuickSeries(days int, states ...string) []model.CaseRecord {
	cfg := DefaultConfig()
	cfg.Days = days
	if len(states) > 0 {
		cfg.States = states
	}
	return New(cfg).Records()
}

// Small returns the hand-written fixture used across the package tests:
// three states over three days of March 2020.
func Small() []model.CaseRecord {
	return []model.CaseRecord{
		Record("Alabama", "2020-03-01", 5),
		Record("Alabama", "2020-03-02", 12),
		Record("Alabama", "2020-03-03", 40),
		Record("Alaska", "2020-03-01", 1),
		Record("Alaska", "2020-03-02", 2),
		Record("Alaska", "2020-03-03", 3),
		Record("Arizona", "2020-03-02", 30),
		Record("Arizona", "2020-03-03", 0),
	}
}
