// Package ui is the terminal front end: a state checklist, threshold and
// date-range controls, and a scatter chart of the visible rows.
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/casedash/pkg/chart"
	"github.com/vanderheijden86/casedash/pkg/dashboard"
	"github.com/vanderheijden86/casedash/pkg/dataset"
	"github.com/vanderheijden86/casedash/pkg/debug"
	"github.com/vanderheijden86/casedash/pkg/export"
	"github.com/vanderheijden86/casedash/pkg/model"
	"github.com/vanderheijden86/casedash/pkg/watcher"
)

// Options configures the TUI beyond the dashboard's initial selection.
type Options struct {
	Title        string
	Columns      int         // checkbox columns, default 3
	Scale        chart.Scale // initial tab
	HTMLPath     string      // target of the export key
	SnapshotPath string      // target of the snapshot key
	Source       string      // shown in the footer

	// Reload re-reads the data file. Nil disables the reload key.
	Reload func() (*dataset.Store, error)
	// Watcher triggers Reload when the data file changes.
	Watcher *watcher.Watcher
}

// FileChangedMsg is sent when the data file changes on disk.
type FileChangedMsg struct{}

// WatchFileCmd returns a command that waits for file changes and sends FileChangedMsg
func WatchFileCmd(w *watcher.Watcher) tea.Cmd {
	return func() tea.Msg {
		<-w.Changed()
		return FileChangedMsg{}
	}
}

type snapshotDoneMsg struct {
	path string
	err  error
}

// Model is the bubbletea model. Its Sink is the dashboard's renderer.
type Model struct {
	dash *dashboard.Dashboard
	sink *Sink
	opts Options

	theme  Theme
	keys   keyMap
	help   help.Model
	helpVP viewport.Model

	width, height int
	cursor        int
	scale         chart.Scale
	showHelp      bool

	statusMsg     string
	statusIsError bool
}

// NewModel builds the dashboard over store with the sink as its renderer.
func NewModel(store *dataset.Store, dopts dashboard.Options, opts Options) (Model, error) {
	sink := &Sink{}
	d, err := dashboard.New(store, sink, dopts)
	if err != nil {
		return Model{}, err
	}
	if opts.Columns <= 0 {
		opts.Columns = 3
	}
	if opts.Title == "" {
		opts.Title = chart.Title
	}
	if opts.HTMLPath == "" {
		opts.HTMLPath = export.DefaultHTMLPath
	}
	if opts.SnapshotPath == "" {
		opts.SnapshotPath = "corona-by-state.svg"
	}
	scale := opts.Scale
	if scale == "" {
		scale = chart.Linear
	}

	theme := DefaultTheme(lipgloss.DefaultRenderer())
	h := help.New()
	h.Styles.ShortKey = theme.Label
	h.Styles.ShortDesc = theme.MutedText

	return Model{
		dash:   d,
		sink:   sink,
		opts:   opts,
		theme:  theme,
		keys:   defaultKeys(),
		help:   h,
		helpVP: viewport.New(80, 20),
		width:  120,
		height: 36,
		scale:  scale,
	}, nil
}

// Dashboard returns the session the model drives.
func (m Model) Dashboard() *dashboard.Dashboard { return m.dash }

// Sink returns the model's data source.
func (m Model) Sink() *Sink { return m.sink }

// Scale returns the active tab.
func (m Model) Scale() chart.Scale { return m.scale }

// Status returns the status line text.
func (m Model) Status() string { return m.statusMsg }

func (m Model) Init() tea.Cmd {
	if m.opts.Watcher != nil {
		return WatchFileCmd(m.opts.Watcher)
	}
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.helpVP.Width = max(msg.Width-6, 20)
		m.helpVP.Height = max(msg.Height-6, 5)
		if m.showHelp {
			m.helpVP.SetContent(renderHelp(m.helpVP.Width))
		}
		return m, nil

	case FileChangedMsg:
		m = m.reload("file changed")
		var cmd tea.Cmd
		if m.opts.Watcher != nil {
			cmd = WatchFileCmd(m.opts.Watcher)
		}
		return m, cmd

	case snapshotDoneMsg:
		if msg.err != nil {
			m.setError("Snapshot failed: %v", msg.err)
		} else {
			m.setStatus("Saved chart to %s", msg.path)
		}
		return m, nil

	case tea.KeyMsg:
		if m.showHelp {
			return m.updateHelp(msg)
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) updateHelp(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Help), msg.String() == "esc":
		m.showHelp = false
		return m, nil
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	}
	var cmd tea.Cmd
	m.helpVP, cmd = m.helpVP.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	w := m.dash.Widgets()
	n := w.States.Len()
	per := m.perColumn()

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		m.helpVP.SetContent(renderHelp(m.helpVP.Width))
		m.helpVP.GotoTop()

	case key.Matches(msg, m.keys.Up):
		m.cursor = max(m.cursor-1, 0)
	case key.Matches(msg, m.keys.Down):
		m.cursor = max(min(m.cursor+1, n-1), 0)
	case key.Matches(msg, m.keys.Left):
		if m.cursor-per >= 0 {
			m.cursor -= per
		}
	case key.Matches(msg, m.keys.Right):
		if m.cursor+per < n {
			m.cursor += per
		}
	case key.Matches(msg, m.keys.Toggle):
		if m.cursor >= 0 && m.cursor < n {
			w.States.Toggle(m.cursor)
			state := w.States.Labels()[m.cursor]
			if w.States.IsActive(m.cursor) {
				m.setStatus("Showing %s", state)
			} else {
				m.setStatus("Hiding %s", state)
			}
		}
	case key.Matches(msg, m.keys.SelectAll):
		w.SelectAll.Click()
		m.setStatus("All %d states selected", n)
	case key.Matches(msg, m.keys.None):
		w.DeselectAll.Click()
		m.setStatus("No states selected")

	case key.Matches(msg, m.keys.MinUp):
		w.Threshold.Nudge(1)
	case key.Matches(msg, m.keys.MinDown):
		w.Threshold.Nudge(-1)
	case key.Matches(msg, m.keys.MinUpFast):
		w.Threshold.Nudge(50)
	case key.Matches(msg, m.keys.MinDownFast):
		w.Threshold.Nudge(-50)

	case key.Matches(msg, m.keys.StartEarlier):
		w.Range.Shift(false, -1)
	case key.Matches(msg, m.keys.StartLater):
		w.Range.Shift(false, 1)
	case key.Matches(msg, m.keys.EndEarlier):
		w.Range.Shift(true, -1)
	case key.Matches(msg, m.keys.EndLater):
		w.Range.Shift(true, 1)

	case key.Matches(msg, m.keys.Scale):
		if m.scale == chart.Log {
			m.scale = chart.Linear
		} else {
			m.scale = chart.Log
		}
		m.setStatus("%s", m.scale.TabTitle())

	case key.Matches(msg, m.keys.Copy):
		m = m.copyRows()
	case key.Matches(msg, m.keys.ExportHTML):
		m = m.exportHTML()
	case key.Matches(msg, m.keys.Snapshot):
		return m, m.snapshotCmd()
	case key.Matches(msg, m.keys.Reload):
		m = m.reload("reloaded")
	}
	return m, nil
}

func (m *Model) setStatus(format string, args ...any) {
	m.statusMsg = fmt.Sprintf(format, args...)
	m.statusIsError = false
}

func (m *Model) setError(format string, args ...any) {
	m.statusMsg = fmt.Sprintf(format, args...)
	m.statusIsError = true
}

func (m Model) perColumn() int {
	n := m.dash.Widgets().States.Len()
	return max((n+m.opts.Columns-1)/m.opts.Columns, 1)
}

func (m Model) copyRows() Model {
	var sb strings.Builder
	rows := m.sink.Rows()
	if err := export.WriteCSVTo(&sb, rows); err != nil {
		m.setError("Copy failed: %v", err)
		return m
	}
	if err := clipboard.WriteAll(sb.String()); err != nil {
		m.setError("Clipboard error: %v", err)
		return m
	}
	m.setStatus("Copied %d rows to clipboard", len(rows))
	return m
}

func (m Model) exportHTML() Model {
	scales := chart.Scales
	if m.scale == chart.Log {
		scales = []chart.Scale{chart.Log, chart.Linear}
	}
	path, err := export.WriteHTML(export.HTMLOptions{
		Dashboard: m.dash,
		Path:      m.opts.HTMLPath,
		Title:     m.opts.Title,
		Columns:   m.opts.Columns,
		Scales:    scales,
	})
	if err != nil {
		m.setError("Export failed: %v", err)
		return m
	}
	m.setStatus("Wrote %s", path)
	return m
}

func (m Model) snapshotCmd() tea.Cmd {
	opts := export.SnapshotOptions{
		Path:  m.opts.SnapshotPath,
		Scale: m.scale,
		Title: m.opts.Title,
		Rows:  m.dash.Visible(),
	}
	return func() tea.Msg {
		path, err := export.SaveSnapshot(opts)
		return snapshotDoneMsg{path: path, err: err}
	}
}

// reload rebuilds the dashboard over fresh data, keeping the selection.
// On failure the current data stays.
func (m Model) reload(reason string) Model {
	if m.opts.Reload == nil {
		m.setError("Reload is not available")
		return m
	}
	started := time.Now()
	store, err := m.opts.Reload()
	if err != nil {
		m.setError("Reload error: %v", err)
		return m
	}

	sel := m.dash.Selection()
	w := m.dash.Widgets()
	dopts := dashboard.Options{
		DefaultStates: sel.StateList(),
		ThresholdMax:  w.Threshold.End,
		ThresholdStep: w.Threshold.Step,
		MinCases:      sel.MinCases,
		Start:         sel.Start,
		End:           sel.End,
	}
	if len(dopts.DefaultStates) == 0 {
		// keep an empty selection empty
		dopts.DefaultStateCount = 0
	}
	d, err := dashboard.New(store, m.sink, dopts)
	if err != nil {
		m.setError("Reload error: %v", err)
		return m
	}
	m.dash = d
	m.cursor = max(min(m.cursor, d.Widgets().States.Len()-1), 0)
	m.setStatus("%s: %d rows, %d states in %s", reason, store.Len(), len(store.States()), time.Since(started).Round(time.Millisecond))
	debug.Log("ui: %s", m.statusMsg)
	return m
}

func (m Model) View() string {
	if m.showHelp {
		return helpFrame(m.theme, m.helpVP.View(), m.width)
	}

	t := m.theme
	var b strings.Builder

	b.WriteString(t.Header.Render(truncate(m.opts.Title, max(m.width-2, 10))))
	b.WriteString(" ")
	for _, s := range chart.Scales {
		style := t.TabIdle
		if s == m.scale {
			style = t.TabActive
		}
		b.WriteString(style.Render(s.TabTitle()))
	}
	b.WriteString("\n")

	left := m.renderStates()
	leftW := lipgloss.Width(left)
	controls := m.renderControls()
	chartW := m.width - leftW - 1
	chartH := m.height - lipgloss.Height(controls) - 5
	var body string
	if chartW >= minPlotW+4 {
		body = lipgloss.JoinHorizontal(lipgloss.Top, left, " ", m.renderChart(chartW, max(chartH, minPlotH+2)))
	} else {
		body = lipgloss.JoinVertical(lipgloss.Left, left, m.renderChart(m.width, max(chartH-lipgloss.Height(left), minPlotH+2)))
	}
	b.WriteString(body)
	b.WriteString("\n")
	b.WriteString(controls)
	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m Model) renderStates() string {
	t := m.theme
	w := m.dash.Widgets()
	colors := m.dash.Store().Colors()
	labels := w.States.Labels()

	cols := m.dash.Columns(m.opts.Columns)
	colW := 0
	for _, s := range labels {
		colW = max(colW, len(s))
	}
	colW = min(colW+4, 22)

	var rendered []string
	idx := 0
	for _, col := range cols {
		lines := make([]string, len(col))
		for i, state := range col {
			box := "☐"
			if w.States.IsActive(idx) {
				box = t.StateStyle(colors[state]).Render("■")
			}
			label := padRight(truncate(state, colW-2), colW-2)
			switch {
			case idx == m.cursor && w.States.IsActive(idx):
				label = t.StateChip(colors[state]).Render(label)
			case idx == m.cursor:
				label = t.Cursor.Render(label)
			}
			lines[i] = box + " " + label
			idx++
		}
		rendered = append(rendered, strings.Join(lines, "\n"))
	}
	if len(rendered) == 0 {
		rendered = []string{t.MutedText.Render("no states loaded")}
	}
	return t.Panel.Render(lipgloss.JoinHorizontal(lipgloss.Top, rendered...))
}

func (m Model) renderChart(w, h int) string {
	t := m.theme
	innerW, innerH := w-4, h-4
	rows := m.sink.Rows()
	grid, plot := plotGrid(rows, m.scale, innerW, innerH)

	var b strings.Builder
	b.WriteString(t.Label.Render(chart.YLabel))
	b.WriteString(t.MutedText.Render("  " + m.scale.TabTitle()))
	b.WriteString("\n")
	if grid == nil {
		b.WriteString(t.MutedText.Render("window too small for chart"))
	} else {
		b.WriteString(renderGrid(t, grid))
	}
	b.WriteString("\n")
	b.WriteString(m.renderLegend(plot.Legend, innerW))
	return t.Panel.Width(w - 2).Render(b.String())
}

func (m Model) renderLegend(entries []chart.LegendEntry, width int) string {
	t := m.theme
	if len(entries) == 0 {
		return t.MutedText.Render("no points match the current filters")
	}
	var b strings.Builder
	b.WriteString(t.MutedText.Italic(true).Render(chart.LegendTitle + ":"))
	used := len(chart.LegendTitle) + 1
	for i, e := range entries {
		item := " " + string(pointRune) + " " + e.State
		if used+len(item) > width-4 {
			b.WriteString(t.MutedText.Render(fmt.Sprintf(" +%d", len(entries)-i)))
			break
		}
		b.WriteString(" ")
		b.WriteString(t.StateStyle(e.Color).Render(string(pointRune)))
		b.WriteString(" " + e.State)
		used += len(item)
	}
	return b.String()
}

func (m Model) renderControls() string {
	t := m.theme
	w := m.dash.Widgets()
	from, to := w.Range.Value()
	rangeNote := ""
	if from.After(to) {
		rangeNote = t.Error.Render("  start is after end")
	}
	return fmt.Sprintf("%s %d %s   %s %s → %s %s%s",
		t.Label.Render(w.Threshold.Title+":"),
		w.Threshold.Value(),
		t.MutedText.Render(fmt.Sprintf("[%d..%d]", w.Threshold.Start, w.Threshold.End)),
		t.Label.Render(w.Range.Title+":"),
		from.Format(model.DateLayout),
		to.Format(model.DateLayout),
		t.MutedText.Render(fmt.Sprintf("[%s..%s]", w.Range.Start.Format(model.DateLayout), w.Range.End.Format(model.DateLayout))),
		rangeNote,
	)
}

func (m Model) renderFooter() string {
	t := m.theme
	rows := m.sink.Rows()
	info := fmt.Sprintf("%d points · %d of %d states", len(rows), len(m.dash.Selection().States), len(m.dash.Universe()))
	if sum := dataset.Summarize(rows); sum.Records > 0 {
		info += fmt.Sprintf(" · peak %d · mean %.1f", sum.MaxCases, sum.Mean)
	}
	if m.scale == chart.Log {
		zeros := 0
		for _, r := range rows {
			if r.Cases <= 0 {
				zeros++
			}
		}
		if zeros > 0 {
			info += fmt.Sprintf(" · %d zero-case days hidden", zeros)
		}
	}
	if m.opts.Source != "" {
		info += " · " + m.opts.Source
	}

	status := ""
	if m.statusMsg != "" {
		if m.statusIsError {
			status = t.Error.Render(m.statusMsg)
		} else {
			status = t.Status.Render(m.statusMsg)
		}
		status += "  "
	}
	return status + t.MutedText.Render(truncate(info, max(m.width-lipgloss.Width(status), 10))) + "\n" + m.help.View(m.keys)
}
