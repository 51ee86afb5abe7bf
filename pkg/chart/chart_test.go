package chart

import (
	"reflect"
	"testing"
	"time"

	"github.com/vanderheijden86/casedash/pkg/model"
)

func rec(state string, day, cases int) model.CaseRecord {
	d := time.Date(2020, 3, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, day)
	return model.CaseRecord{State: state, Date: d, Ordinal: model.Ordinal(d), Cases: cases, Color: "#" + state[:1] + "00000"}
}

func TestParseScale(t *testing.T) {
	for in, want := range map[string]Scale{"": Linear, "LINEAR": Linear, " log": Log} {
		if got, err := ParseScale(in); err != nil || got != want {
			t.Errorf("ParseScale(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseScale("sqrt"); err == nil {
		t.Error("expected error")
	}
	if Log.TabTitle() != "by State, Log Scale" {
		t.Errorf("TabTitle = %q", Log.TabTitle())
	}
}

func TestLegendOrderIsFirstCase(t *testing.T) {
	rows := []model.CaseRecord{rec("Washington", 0, 1), rec("California", 3, 1), rec("Washington", 3, 2), rec("Arizona", 5, 1)}
	var got []string
	for _, e := range LegendOrder(rows) {
		got = append(got, e.State)
	}
	if want := []string{"Washington", "California", "Arizona"}; !reflect.DeepEqual(got, want) {
		t.Errorf("legend = %v, want %v", got, want)
	}
}

func TestLinearAxis(t *testing.T) {
	a := LinearAxis(0, 1234)
	if a.Max != 1500 || a.Ticks[0] != 0 || a.Ticks[len(a.Ticks)-1] != 1500 || len(a.Ticks) != 4 {
		t.Errorf("LinearAxis(0,1234) = %+v", a)
	}
	if a.Frac(750, false) != 0.5 {
		t.Errorf("Frac(750) = %v", a.Frac(750, false))
	}
}

func TestLogAxis(t *testing.T) {
	a := LogAxis(3, 4500)
	if a.Min != 1 || a.Max != 10000 || len(a.Ticks) != 5 {
		t.Errorf("LogAxis(3,4500) = %+v", a)
	}
	if f := a.Frac(100, true); f != 0.5 {
		t.Errorf("Frac(100) = %v, want 0.5", f)
	}
	if single := LogAxis(10, 10); single.Max != 100 {
		t.Errorf("degenerate LogAxis = %+v", single)
	}
}

func TestLayoutProjectsInsideArea(t *testing.T) {
	rows := []model.CaseRecord{rec("Alabama", 0, 0), rec("Alabama", 1, 10), rec("Alaska", 2, 100)}
	for _, scale := range Scales {
		t.Run(string(scale), func(t *testing.T) {
			p := Layout(rows, scale, DefaultOptions())
			wantPoints := 3
			if scale == Log {
				wantPoints = 2
			}
			if len(p.Points) != wantPoints || p.Dropped != 3-wantPoints {
				t.Fatalf("points=%d dropped=%d", len(p.Points), p.Dropped)
			}
			for _, pt := range p.Points {
				if pt.X < p.Area.X-0.001 || pt.X > p.Area.X+p.Area.W+0.001 ||
					pt.Y < p.Area.Y-0.001 || pt.Y > p.Area.Y+p.Area.H+0.001 {
					t.Errorf("point %+v outside area %+v", pt, p.Area)
				}
			}
			if len(p.XTicks) == 0 || len(p.YTicks) == 0 {
				t.Error("expected ticks on both axes")
			}
			if len(p.Legend) != 2 {
				t.Errorf("legend = %+v", p.Legend)
			}
		})
	}
}

func TestLayoutLogLegendSkipsUndrawnStates(t *testing.T) {
	rows := []model.CaseRecord{rec("Alaska", 0, 0), rec("Arizona", 0, 4), rec("Alaska", 1, 0), rec("Alabama", 1, 9)}

	var lin []string
	for _, e := range Layout(rows, Linear, DefaultOptions()).Legend {
		lin = append(lin, e.State)
	}
	if want := []string{"Alaska", "Arizona", "Alabama"}; !reflect.DeepEqual(lin, want) {
		t.Errorf("linear legend = %v, want %v", lin, want)
	}

	p := Layout(rows, Log, DefaultOptions())
	var logLegend []string
	for _, e := range p.Legend {
		logLegend = append(logLegend, e.State)
	}
	if want := []string{"Arizona", "Alabama"}; !reflect.DeepEqual(logLegend, want) {
		t.Errorf("log legend = %v, want %v", logLegend, want)
	}
	if p.Dropped != 2 {
		t.Errorf("dropped = %d, want 2", p.Dropped)
	}
}

func TestLayoutEmpty(t *testing.T) {
	p := Layout(nil, Linear, DefaultOptions())
	if len(p.Points) != 0 || len(p.Legend) != 0 || p.Area.W <= 0 {
		t.Errorf("empty layout = %+v", p)
	}
}

func TestFormatCases(t *testing.T) {
	tests := map[float64]string{0: "0", 500: "500", 1000: "1.0e+03", 25000: "2.5e+04"}
	for v, want := range tests {
		if got := FormatCases(v); got != want {
			t.Errorf("FormatCases(%v) = %q, want %q", v, got, want)
		}
	}
}
