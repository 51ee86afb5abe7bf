// Package chart turns a visible row set into plot geometry: axis ranges,
// ticks, projected points and legend order. Renderers (SVG, PNG, terminal)
// only draw what Layout returns.
package chart

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/vanderheijden86/casedash/pkg/model"
)

// Scale is the y-axis scale type.
type Scale string

const (
	Linear Scale = "linear"
	Log    Scale = "log"
)

// Scales lists the supported scales in tab order.
var Scales = []Scale{Linear, Log}

// ParseScale accepts "linear" or "log" (case-insensitive).
func ParseScale(s string) (Scale, error) {
	switch Scale(strings.ToLower(strings.TrimSpace(s))) {
	case "", Linear:
		return Linear, nil
	case Log:
		return Log, nil
	}
	return "", fmt.Errorf("unknown scale %q (want linear or log)", s)
}

// TabTitle is the panel title for a scale.
func (s Scale) TabTitle() string {
	if s == Log {
		return "by State, Log Scale"
	}
	return "by State, Linear Scale"
}

// Standard chart text.
const (
	Title       = "COVID-19 Cases by State"
	XLabel      = "Date"
	YLabel      = "Number of Cases"
	LegendTitle = "states, in order of first case"
)

// Rect is the plotting area inside the canvas, in pixels.
type Rect struct {
	X, Y, W, H float64
}

// Tick is an axis tick at pixel position Pos.
type Tick struct {
	Pos   float64
	Value float64
	Label string
}

// Point is a projected record.
type Point struct {
	X, Y   float64
	Record model.CaseRecord
}

// LegendEntry is one state in the legend.
type LegendEntry struct {
	State string
	Color string
}

// Plot is everything a renderer needs to draw one chart.
type Plot struct {
	Scale  Scale
	Area   Rect
	Points []Point
	XTicks []Tick
	YTicks []Tick
	Legend []LegendEntry
	// Dropped counts rows that cannot be drawn on this scale (zero cases on
	// a log axis).
	Dropped int
}

// Options sizes the canvas.
type Options struct {
	Width, Height float64
	// Margins around the plotting area: left, top, right, bottom.
	Margins [4]float64
}

// DefaultOptions matches the 700x650 figure of the interactive dashboard.
func DefaultOptions() Options {
	return Options{Width: 700, Height: 650, Margins: [4]float64{80, 60, 30, 60}}
}

// Layout projects rows (assumed in date, state order) onto a canvas.
func Layout(rows []model.CaseRecord, scale Scale, opts Options) Plot {
	area := Rect{
		X: opts.Margins[0],
		Y: opts.Margins[1],
		W: opts.Width - opts.Margins[0] - opts.Margins[2],
		H: opts.Height - opts.Margins[1] - opts.Margins[3],
	}
	p := Plot{Scale: scale, Area: area}

	drawable := rows
	if scale == Log {
		drawable = make([]model.CaseRecord, 0, len(rows))
		for _, r := range rows {
			if r.Cases > 0 {
				drawable = append(drawable, r)
			}
		}
		p.Dropped = len(rows) - len(drawable)
	}
	// the legend lists only states that have at least one point
	p.Legend = LegendOrder(drawable)
	if len(drawable) == 0 {
		return p
	}

	xs := make([]float64, len(drawable))
	ys := make([]float64, len(drawable))
	for i, r := range drawable {
		xs[i] = float64(r.Ordinal)
		ys[i] = float64(r.Cases)
	}

	xmin, xmax := floats.Min(xs), floats.Max(xs)
	if xmin == xmax {
		xmin, xmax = xmin-1, xmax+1
	}
	xAxis := Axis{Min: xmin, Max: xmax}

	var yAxis Axis
	if scale == Log {
		yAxis = LogAxis(floats.Min(ys), floats.Max(ys))
	} else {
		yAxis = LinearAxis(0, floats.Max(ys))
	}

	p.Points = make([]Point, len(drawable))
	for i, r := range drawable {
		p.Points[i] = Point{
			X:      area.X + xAxis.Frac(xs[i], false)*area.W,
			Y:      area.Y + area.H - yAxis.Frac(ys[i], scale == Log)*area.H,
			Record: r,
		}
	}

	for _, v := range DateTicks(xmin, xmax, 6) {
		p.XTicks = append(p.XTicks, Tick{
			Pos:   area.X + xAxis.Frac(v, false)*area.W,
			Value: v,
			Label: model.DateFromOrdinal(int(v)).Format("Jan 02"),
		})
	}
	for _, v := range yAxis.Ticks {
		p.YTicks = append(p.YTicks, Tick{
			Pos:   area.Y + area.H - yAxis.Frac(v, scale == Log)*area.H,
			Value: v,
			Label: FormatCases(v),
		})
	}
	return p
}

// LegendOrder returns states in order of first appearance. For rows in
// (date, state) order that is the order of each state's first case.
func LegendOrder(rows []model.CaseRecord) []LegendEntry {
	seen := make(map[string]bool)
	var out []LegendEntry
	for _, r := range rows {
		if !seen[r.State] {
			seen[r.State] = true
			out = append(out, LegendEntry{State: r.State, Color: r.Color})
		}
	}
	return out
}

// Axis is a numeric range with tick values.
type Axis struct {
	Min, Max float64
	Ticks    []float64
}

// Frac maps v into [0,1] across the axis, in log10 space when log is set.
func (a Axis) Frac(v float64, log bool) float64 {
	lo, hi := a.Min, a.Max
	if log {
		v, lo, hi = math.Log10(v), math.Log10(lo), math.Log10(hi)
	}
	if hi == lo {
		return 0.5
	}
	return (v - lo) / (hi - lo)
}

// LinearAxis returns a range from lo to a rounded-up hi with 1-2-5 ticks.
func LinearAxis(lo, hi float64) Axis {
	if hi <= lo {
		hi = lo + 1
	}
	step := niceStep((hi - lo) / 5)
	top := math.Ceil(hi/step) * step
	var ticks []float64
	for v := lo; v <= top+step/2; v += step {
		ticks = append(ticks, v)
	}
	return Axis{Min: lo, Max: top, Ticks: ticks}
}

// LogAxis returns a decade-aligned range covering [lo, hi]. lo must be > 0.
func LogAxis(lo, hi float64) Axis {
	if lo <= 0 {
		lo = 1
	}
	minExp := math.Floor(math.Log10(lo))
	maxExp := math.Ceil(math.Log10(hi))
	if maxExp == minExp {
		maxExp++
	}
	var ticks []float64
	for e := minExp; e <= maxExp; e++ {
		ticks = append(ticks, math.Pow(10, e))
	}
	return Axis{Min: math.Pow(10, minExp), Max: math.Pow(10, maxExp), Ticks: ticks}
}

func niceStep(raw float64) float64 {
	if raw <= 0 {
		return 1
	}
	mag := math.Pow(10, math.Floor(math.Log10(raw)))
	switch f := raw / mag; {
	case f <= 1:
		return mag
	case f <= 2:
		return 2 * mag
	case f <= 5:
		return 5 * mag
	default:
		return 10 * mag
	}
}

// DateTicks picks up to n whole-day ordinals spread across [lo, hi].
func DateTicks(lo, hi float64, n int) []float64 {
	span := hi - lo
	step := math.Max(1, math.Ceil(span/float64(max(n-1, 1))))
	var out []float64
	for v := math.Ceil(lo); v <= hi; v += step {
		out = append(out, v)
	}
	return out
}

// FormatCases renders a y-axis value: plain below 1000, scientific above,
// matching the dashboard's tick formatter.
func FormatCases(v float64) string {
	if math.Abs(v) < 1000 {
		return fmt.Sprintf("%g", v)
	}
	return fmt.Sprintf("%.1e", v)
}
