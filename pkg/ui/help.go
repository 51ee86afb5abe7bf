package ui

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

const helpMarkdown = `# COVID-19 Cases by State

Each point is one state on one day. Only the selected states are drawn,
within the date range, and only days with at least the minimum case count.

## States

| Key | Action |
|-----|--------|
| ↑/k ↓/j | Move within a column |
| ←/h →/l | Move between columns |
| space | Toggle the state under the cursor |
| a | Select all states |
| n | Unselect all states |

## Filters

| Key | Action |
|-----|--------|
| + / - | Raise or lower the minimum case count |
| pgup / pgdn | Same, fifty steps at a time |
| [ / ] | Move the range start one day earlier or later |
| { / } | Move the range end one day earlier or later |

A start after the end shows no points.

## Chart

| Key | Action |
|-----|--------|
| tab | Switch between linear and log scale |

The log scale cannot show days with zero cases; they are counted in the
status line instead. The legend lists states in order of first case.

## Output

| Key | Action |
|-----|--------|
| y | Copy the visible rows as CSV |
| e | Write the interactive HTML dashboard |
| s | Save the chart as an image |
| r | Reload the data file |
| ? | Close this help |
| q | Quit |
`

// renderHelp renders the help text for the given width. Falls back to the
// raw markdown if glamour fails.
func renderHelp(width int) string {
	wrap := max(width-4, 40)
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		return helpMarkdown
	}
	out, err := r.Render(helpMarkdown)
	if err != nil {
		return helpMarkdown
	}
	return strings.TrimRight(out, "\n ")
}

// helpFrame wraps the help viewport in a modal box.
func helpFrame(t Theme, body string, width int) string {
	footer := t.MutedText.Italic(true).Render("↑/↓ scroll │ ? or esc to close")
	return t.Renderer.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Primary).
		Padding(0, 1).
		Width(max(width-2, 20)).
		Render(body + "\n" + footer)
}
