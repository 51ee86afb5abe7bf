package widget

import (
	"fmt"
	"reflect"
	"testing"
	"time"

	"pgregory.net/rapid"
)

func TestCheckboxGroupNotifies(t *testing.T) {
	g := NewCheckboxGroup([]string{"Alabama", "Alaska", "Arizona"}, []int{0, 1, 7})
	if got := g.Active(); !reflect.DeepEqual(got, []int{0, 1}) {
		t.Fatalf("initial Active = %v", got)
	}

	var calls [][]int
	g.OnChange(func(a []int) { calls = append(calls, a) })

	g.Toggle(1)
	g.Toggle(2)
	g.Toggle(9) // ignored
	g.SetActive(nil)
	g.SyncActive([]int{2})

	want := [][]int{{0}, {0, 2}, {}}
	if !reflect.DeepEqual(calls, want) {
		t.Errorf("calls = %v, want %v", calls, want)
	}
	if got := g.ActiveLabels(); !reflect.DeepEqual(got, []string{"Arizona"}) {
		t.Errorf("SyncActive should update state silently, ActiveLabels = %v", got)
	}
	if g.IndexOf("Alaska") != 1 || g.IndexOf("Guam") != -1 {
		t.Error("IndexOf mismatch")
	}
}

func TestSliderClamps(t *testing.T) {
	s := NewSlider("Case Count Minimum", 0, 1000, 1, 5000)
	if s.Value() != 1000 {
		t.Fatalf("initial value not clamped: %d", s.Value())
	}
	var got []int
	s.OnChange(func(v int) { got = append(got, v) })
	s.SetValue(-3)
	s.Nudge(10)
	s.SyncValue(42)
	if !reflect.DeepEqual(got, []int{0, 10}) || s.Value() != 42 {
		t.Errorf("notifications %v, value %d", got, s.Value())
	}
}

func TestDateRangeSliderClampsWithoutReordering(t *testing.T) {
	start := time.Date(2020, 1, 21, 0, 0, 0, 0, time.UTC)
	end := time.Date(2020, 6, 1, 0, 0, 0, 0, time.UTC)
	d := NewDateRangeSlider("Date Range", start, end, start, end)

	var n int
	d.OnChange(func(from, to time.Time) { n++ })

	d.SetValue(start.AddDate(-1, 0, 0), end.AddDate(1, 0, 0))
	from, to := d.Value()
	if !from.Equal(start) || !to.Equal(end) {
		t.Errorf("clamp failed: %v..%v", from, to)
	}

	inverted := start.AddDate(0, 1, 0)
	d.SetValue(inverted, start)
	from, to = d.Value()
	if !from.After(to) {
		t.Error("inverted range should stay inverted")
	}

	d.SyncValue(start, end)
	d.Shift(false, 3)
	d.Shift(true, -2)
	from, to = d.Value()
	if !from.Equal(start.AddDate(0, 0, 3)) || !to.Equal(end.AddDate(0, 0, -2)) {
		t.Errorf("Shift gave %v..%v", from, to)
	}
	if n != 4 {
		t.Errorf("listener called %d times, want 4", n)
	}
}

func TestButtonClick(t *testing.T) {
	b := NewButton("select all")
	n := 0
	b.OnClick(func() { n++ })
	b.OnClick(func() { n += 10 })
	b.Click()
	if n != 11 {
		t.Errorf("n = %d", n)
	}
}

func TestChunk(t *testing.T) {
	labels := make([]string, 54)
	for i := range labels {
		labels[i] = fmt.Sprint(i)
	}
	cols := Chunk(labels, 3)
	if len(cols) != 3 || len(cols[0]) != 18 || len(cols[2]) != 18 || cols[1][0] != "18" {
		t.Errorf("54 labels in 3 columns: %d columns, sizes %d/%d", len(cols), len(cols[0]), len(cols[len(cols)-1]))
	}

	tests := []struct {
		n, cols int
		want    []int
	}{
		{5, 3, []int{2, 2, 1}},
		{2, 3, []int{1, 1}},
		{0, 3, nil},
		{4, 0, []int{4}},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d/%d", tt.n, tt.cols), func(t *testing.T) {
			var sizes []int
			for _, c := range Chunk(labels[:tt.n], tt.cols) {
				sizes = append(sizes, len(c))
			}
			if !reflect.DeepEqual(sizes, tt.want) {
				t.Errorf("sizes = %v, want %v", sizes, tt.want)
			}
		})
	}
}

func TestChunkProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 80).Draw(t, "n")
		cols := rapid.IntRange(1, 8).Draw(t, "columns")
		labels := make([]string, n)
		for i := range labels {
			labels[i] = fmt.Sprintf("s%02d", i)
		}

		chunks := Chunk(labels, cols)
		if len(chunks) > cols {
			t.Fatalf("%d chunks for %d columns", len(chunks), cols)
		}
		var flat []string
		for _, c := range chunks {
			if len(c) == 0 {
				t.Fatalf("empty chunk in %v", chunks)
			}
			flat = append(flat, c...)
		}
		if n == 0 {
			flat = []string{}
		}
		if !reflect.DeepEqual(flat, labels) {
			t.Fatalf("chunks %v do not preserve %v", chunks, labels)
		}
	})
}
