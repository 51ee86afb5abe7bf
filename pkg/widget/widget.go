// Package widget provides the control abstractions a dashboard binds its
// handlers to. Widgets hold their own value and notify listeners on change.
//
// Each widget has two kinds of setters. The user-facing ones (Toggle,
// SetActive, SetValue, Click) notify listeners; the Sync* variants update the
// displayed value silently so a handler can mirror state it already applied.
package widget

import (
	"slices"
	"time"

	"github.com/vanderheijden86/casedash/pkg/model"
)

// CheckboxGroup is a labelled set of toggles.
type CheckboxGroup struct {
	labels   []string
	active   map[int]bool
	onChange []func(active []int)
}

// NewCheckboxGroup creates a group with the given labels and initially
// active indices. Out-of-range indices are ignored.
func NewCheckboxGroup(labels []string, active []int) *CheckboxGroup {
	g := &CheckboxGroup{labels: slices.Clone(labels), active: map[int]bool{}}
	g.SyncActive(active)
	return g
}

// Labels returns the checkbox labels.
func (g *CheckboxGroup) Labels() []string { return slices.Clone(g.labels) }

// Len returns the number of checkboxes.
func (g *CheckboxGroup) Len() int { return len(g.labels) }

// IsActive reports whether box i is checked.
func (g *CheckboxGroup) IsActive(i int) bool { return g.active[i] }

// Active returns the checked indices in ascending order.
func (g *CheckboxGroup) Active() []int {
	out := make([]int, 0, len(g.active))
	for i := range g.labels {
		if g.active[i] {
			out = append(out, i)
		}
	}
	return out
}

// ActiveLabels returns the labels of checked boxes in label order.
func (g *CheckboxGroup) ActiveLabels() []string {
	out := make([]string, 0, len(g.active))
	for _, i := range g.Active() {
		out = append(out, g.labels[i])
	}
	return out
}

// IndexOf returns the index of label or -1.
func (g *CheckboxGroup) IndexOf(label string) int {
	return slices.Index(g.labels, label)
}

// OnChange registers a listener for user-initiated changes.
func (g *CheckboxGroup) OnChange(fn func(active []int)) {
	g.onChange = append(g.onChange, fn)
}

// Toggle flips box i and notifies listeners.
func (g *CheckboxGroup) Toggle(i int) {
	if i < 0 || i >= len(g.labels) {
		return
	}
	g.active[i] = !g.active[i]
	g.notify()
}

// SetActive replaces the checked set and notifies listeners.
func (g *CheckboxGroup) SetActive(active []int) {
	g.SyncActive(active)
	g.notify()
}

// SyncActive replaces the checked set without notifying.
func (g *CheckboxGroup) SyncActive(active []int) {
	clear(g.active)
	for _, i := range active {
		if i >= 0 && i < len(g.labels) {
			g.active[i] = true
		}
	}
}

func (g *CheckboxGroup) notify() {
	active := g.Active()
	for _, fn := range g.onChange {
		fn(active)
	}
}

// Slider is an integer slider over [Start, End].
type Slider struct {
	Title    string
	Start    int
	End      int
	Step     int
	value    int
	onChange []func(int)
}

// NewSlider creates a slider. The initial value is clamped.
func NewSlider(title string, start, end, step, value int) *Slider {
	if step <= 0 {
		step = 1
	}
	s := &Slider{Title: title, Start: start, End: end, Step: step}
	s.value = s.clamp(value)
	return s
}

// Value returns the current value.
func (s *Slider) Value() int { return s.value }

func (s *Slider) clamp(v int) int {
	return min(max(v, s.Start), s.End)
}

// OnChange registers a listener.
func (s *Slider) OnChange(fn func(int)) {
	s.onChange = append(s.onChange, fn)
}

// SetValue clamps v into range and notifies listeners.
func (s *Slider) SetValue(v int) {
	s.value = s.clamp(v)
	for _, fn := range s.onChange {
		fn(s.value)
	}
}

// Nudge moves the slider by n steps.
func (s *Slider) Nudge(n int) {
	s.SetValue(s.value + n*s.Step)
}

// SyncValue sets the value without notifying.
func (s *Slider) SyncValue(v int) { s.value = s.clamp(v) }

// DateRangeSlider selects a [from, to] pair of days within [Start, End].
type DateRangeSlider struct {
	Title    string
	Start    time.Time
	End      time.Time
	from     time.Time
	to       time.Time
	onChange []func(from, to time.Time)
}

// NewDateRangeSlider creates a range slider. Bounds and values are truncated
// to whole days.
func NewDateRangeSlider(title string, start, end, from, to time.Time) *DateRangeSlider {
	d := &DateRangeSlider{Title: title, Start: model.Day(start), End: model.Day(end)}
	d.SyncValue(from, to)
	return d
}

// Value returns the selected range.
func (d *DateRangeSlider) Value() (from, to time.Time) { return d.from, d.to }

// clamp keeps t inside the bounds. Ends are clamped independently, so an
// inverted pair stays inverted.
func (d *DateRangeSlider) clamp(t time.Time) time.Time {
	t = model.Day(t)
	if t.Before(d.Start) {
		return d.Start
	}
	if t.After(d.End) {
		return d.End
	}
	return t
}

// OnChange registers a listener.
func (d *DateRangeSlider) OnChange(fn func(from, to time.Time)) {
	d.onChange = append(d.onChange, fn)
}

// SetValue clamps both ends and notifies listeners.
func (d *DateRangeSlider) SetValue(from, to time.Time) {
	d.SyncValue(from, to)
	for _, fn := range d.onChange {
		fn(d.from, d.to)
	}
}

// SyncValue clamps and stores both ends without notifying.
func (d *DateRangeSlider) SyncValue(from, to time.Time) {
	d.from, d.to = d.clamp(from), d.clamp(to)
}

// Shift moves one end of the range by days. end selects which.
func (d *DateRangeSlider) Shift(end bool, days int) {
	if end {
		d.SetValue(d.from, d.to.AddDate(0, 0, days))
		return
	}
	d.SetValue(d.from.AddDate(0, 0, days), d.to)
}

// Button fires its listeners when clicked.
type Button struct {
	Label   string
	onClick []func()
}

// NewButton creates a button.
func NewButton(label string) *Button { return &Button{Label: label} }

// OnClick registers a listener.
func (b *Button) OnClick(fn func()) {
	b.onClick = append(b.onClick, fn)
}

// Click notifies listeners.
func (b *Button) Click() {
	for _, fn := range b.onClick {
		fn()
	}
}

// Chunk splits labels into at most columns groups of near-equal size, in
// order. It only affects layout.
func Chunk(labels []string, columns int) [][]string {
	if columns <= 0 {
		columns = 1
	}
	if len(labels) == 0 {
		return nil
	}
	per := (len(labels) + columns - 1) / columns
	var out [][]string
	for i := 0; i < len(labels); i += per {
		out = append(out, labels[i:min(i+per, len(labels))])
	}
	return out
}
