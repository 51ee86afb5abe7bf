// Package dashboard owns the session's selection state and runs the update
// protocol: every trigger mutates the selection, re-filters the full dataset
// and pushes the new visible rows to the renderer exactly once.
package dashboard

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/vanderheijden86/casedash/pkg/dataset"
	"github.com/vanderheijden86/casedash/pkg/debug"
	"github.com/vanderheijden86/casedash/pkg/filter"
	"github.com/vanderheijden86/casedash/pkg/model"
	"github.com/vanderheijden86/casedash/pkg/widget"
)

// Handle identifies a data source created by a Renderer.
type Handle int

// Renderer is the presentation side of the dashboard. CreateDataSource is
// called once when the dashboard is built; UpdateDataSource once per
// trigger with the complete new row set.
type Renderer interface {
	CreateDataSource(rows []model.CaseRecord) Handle
	UpdateDataSource(h Handle, rows []model.CaseRecord)
}

// Options sets the initial selection and widget ranges.
type Options struct {
	// DefaultStates are pre-selected. Unknown names are ignored. When empty,
	// the first DefaultStateCount states alphabetically are selected.
	DefaultStates     []string
	DefaultStateCount int

	ThresholdMax  int
	ThresholdStep int
	MinCases      int

	// Start and End override the data bounds when non-zero.
	Start time.Time
	End   time.Time
}

// DefaultOptions mirrors the interactive defaults: two states, threshold 0
// on a 0..1000 slider.
func DefaultOptions() Options {
	return Options{DefaultStateCount: 2, ThresholdMax: 1000, ThresholdStep: 1}
}

// Widgets are the controls bound to the dashboard's handlers.
type Widgets struct {
	States      *widget.CheckboxGroup
	Threshold   *widget.Slider
	Range       *widget.DateRangeSlider
	SelectAll   *widget.Button
	DeselectAll *widget.Button
}

// Dashboard is the session context: dataset, selection, widgets and the
// renderer's data source handle.
type Dashboard struct {
	store    *dataset.Store
	records  []model.CaseRecord
	universe []string

	sel     model.Selection
	visible []model.CaseRecord

	renderer Renderer
	handle   Handle
	updates  int

	widgets Widgets
}

// ErrNoRenderer is returned by New when renderer is nil.
var ErrNoRenderer = errors.New("dashboard: renderer is required")

// New builds the dashboard, computes the initial visible rows and hands them
// to renderer.CreateDataSource.
func New(store *dataset.Store, renderer Renderer, opts Options) (*Dashboard, error) {
	if renderer == nil {
		return nil, ErrNoRenderer
	}
	if opts.ThresholdMax <= 0 {
		opts.ThresholdMax = DefaultOptions().ThresholdMax
	}
	if opts.MinCases < 0 {
		return nil, fmt.Errorf("dashboard: min cases must not be negative, got %d", opts.MinCases)
	}

	d := &Dashboard{
		store:    store,
		records:  store.Records(),
		universe: store.States(),
		renderer: renderer,
	}

	first, last := store.Bounds()
	start, end := first, last
	if !opts.Start.IsZero() {
		start = model.Day(opts.Start)
	}
	if !opts.End.IsZero() {
		end = model.Day(opts.End)
	}
	lo, hi := first, last
	if start.Before(lo) {
		lo = start
	}
	if end.After(hi) {
		hi = end
	}

	initial := d.defaultStates(opts)
	d.sel = model.NewSelection(initial, start, end, opts.MinCases)

	active := make([]int, 0, len(initial))
	for _, s := range initial {
		active = append(active, slices.Index(d.universe, s))
	}
	d.widgets = Widgets{
		States:      widget.NewCheckboxGroup(d.universe, active),
		Threshold:   widget.NewSlider("Case Count Minimum", 0, max(opts.ThresholdMax, opts.MinCases), opts.ThresholdStep, opts.MinCases),
		Range:       widget.NewDateRangeSlider("Date Range", lo, hi, start, end),
		SelectAll:   widget.NewButton("select all"),
		DeselectAll: widget.NewButton("unselect all"),
	}
	d.bind()

	d.visible = filter.Apply(d.records, d.sel)
	d.handle = renderer.CreateDataSource(d.Visible())
	debug.Log("dashboard: created source %d with %d rows, states %v", d.handle, len(d.visible), initial)
	return d, nil
}

func (d *Dashboard) defaultStates(opts Options) []string {
	if len(opts.DefaultStates) > 0 {
		var out []string
		for _, s := range opts.DefaultStates {
			if slices.Contains(d.universe, s) && !slices.Contains(out, s) {
				out = append(out, s)
			}
		}
		return out
	}
	n := opts.DefaultStateCount
	if n < 0 {
		n = 0
	}
	return slices.Clone(d.universe[:min(n, len(d.universe))])
}

// bind registers the handlers on the widgets.
func (d *Dashboard) bind() {
	w := d.widgets
	w.States.OnChange(func(active []int) {
		names := make([]string, 0, len(active))
		for _, i := range active {
			names = append(names, d.universe[i])
		}
		d.applyStates(names)
	})
	w.Threshold.OnChange(d.applyThreshold)
	w.Range.OnChange(d.applyRange)
	w.SelectAll.OnClick(d.SelectAll)
	w.DeselectAll.OnClick(d.DeselectAll)
}

// Widgets returns the bound controls.
func (d *Dashboard) Widgets() Widgets { return d.widgets }

// Store returns the underlying dataset.
func (d *Dashboard) Store() *dataset.Store { return d.store }

// Universe returns every state name in sorted order.
func (d *Dashboard) Universe() []string { return slices.Clone(d.universe) }

// Selection returns a copy of the current selection.
func (d *Dashboard) Selection() model.Selection { return d.sel.Clone() }

// Visible returns a copy of the current visible rows.
func (d *Dashboard) Visible() []model.CaseRecord { return slices.Clone(d.visible) }

// Updates returns how many times UpdateDataSource has been called.
func (d *Dashboard) Updates() int { return d.updates }

// refresh re-filters and pushes the result. Every handler ends here.
func (d *Dashboard) refresh(trigger string) {
	defer debug.LogEnterExit("dashboard.refresh(" + trigger + ")")()
	d.visible = filter.Apply(d.records, d.sel)
	d.updates++
	d.renderer.UpdateDataSource(d.handle, d.Visible())
}

// ToggleState flips one state's membership in the selection.
func (d *Dashboard) ToggleState(state string) error {
	i := slices.Index(d.universe, state)
	if i < 0 {
		return fmt.Errorf("unknown state %q", state)
	}
	d.widgets.States.Toggle(i)
	return nil
}

// SetStates replaces the selected states. Unknown names are an error and
// leave the selection unchanged.
func (d *Dashboard) SetStates(states []string) error {
	idx := make([]int, 0, len(states))
	for _, s := range states {
		i := slices.Index(d.universe, s)
		if i < 0 {
			return fmt.Errorf("unknown state %q", s)
		}
		idx = append(idx, i)
	}
	d.widgets.States.SetActive(idx)
	return nil
}

func (d *Dashboard) applyStates(names []string) {
	d.sel.States = make(map[string]struct{}, len(names))
	for _, s := range names {
		d.sel.States[s] = struct{}{}
	}
	d.refresh("states")
}

// SetThreshold sets the minimum case count. The slider clamps the value.
func (d *Dashboard) SetThreshold(n int) {
	d.widgets.Threshold.SetValue(n)
}

func (d *Dashboard) applyThreshold(n int) {
	d.sel.MinCases = n
	d.refresh("threshold")
}

// SetDateRange sets the date range. The slider clamps each end to the data
// bounds but keeps their order, so an inverted range filters to nothing.
func (d *Dashboard) SetDateRange(start, end time.Time) {
	d.widgets.Range.SetValue(start, end)
}

func (d *Dashboard) applyRange(start, end time.Time) {
	d.sel.Start, d.sel.End = start, end
	d.refresh("range")
}

// SelectAll selects every state.
func (d *Dashboard) SelectAll() {
	all := make([]int, len(d.universe))
	for i := range all {
		all[i] = i
	}
	d.widgets.States.SyncActive(all)
	d.sel.States = make(map[string]struct{}, len(d.universe))
	for _, s := range d.universe {
		d.sel.States[s] = struct{}{}
	}
	d.refresh("select-all")
}

// DeselectAll clears the state selection.
func (d *Dashboard) DeselectAll() {
	d.widgets.States.SyncActive(nil)
	d.sel.States = map[string]struct{}{}
	d.refresh("deselect-all")
}

// Columns splits the state universe into n display columns.
func (d *Dashboard) Columns(n int) [][]string {
	return widget.Chunk(d.universe, n)
}

type discard struct{}

func (discard) CreateDataSource([]model.CaseRecord) Handle { return 0 }
func (discard) UpdateDataSource(Handle, []model.CaseRecord) {}

// Discard is a Renderer that drops every update. Use it when the dashboard
// drives exports only.
var Discard Renderer = discard{}
