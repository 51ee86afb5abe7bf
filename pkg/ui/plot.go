package ui

import (
	"math"
	"strings"

	"github.com/vanderheijden86/casedash/pkg/chart"
	"github.com/vanderheijden86/casedash/pkg/model"
)

const (
	yLabelWidth = 8
	pointRune   = '●'
	minPlotW    = 20
	minPlotH    = 6
)

type cell struct {
	r     rune
	color string // state hex, empty for axis and labels
	axis  bool
}

// plotGrid lays the rows out on a w×h character grid: the plot area, a
// y-axis with labels on the left and an x-axis with date labels below.
// Returns nil when the grid is too small to draw.
func plotGrid(rows []model.CaseRecord, scale chart.Scale, w, h int) ([][]cell, chart.Plot) {
	if w < minPlotW || h < minPlotH {
		return nil, chart.Plot{}
	}
	axisCol, axisRow := yLabelWidth, h-2
	opts := chart.Options{
		Width:   float64(w),
		Height:  float64(h),
		Margins: [4]float64{float64(axisCol + 1), 0, 1, 3},
	}
	p := chart.Layout(rows, scale, opts)

	grid := make([][]cell, h)
	for y := range grid {
		grid[y] = make([]cell, w)
		for x := range grid[y] {
			grid[y][x] = cell{r: ' '}
		}
	}
	put := func(x, y int, r rune, axis bool) {
		if y >= 0 && y < h && x >= 0 && x < w {
			grid[y][x] = cell{r: r, axis: axis}
		}
	}
	text := func(x, y int, s string) {
		for i, r := range []rune(s) {
			put(x+i, y, r, true)
		}
	}

	for y := 0; y < axisRow; y++ {
		put(axisCol, y, '│', true)
	}
	for x := axisCol; x < w; x++ {
		put(x, axisRow, '─', true)
	}
	put(axisCol, axisRow, '└', true)

	for _, t := range p.YTicks {
		y := int(math.Round(t.Pos))
		if y < 0 || y >= axisRow {
			continue
		}
		text(0, y, padLeft(truncateRunesHelper(t.Label, yLabelWidth, ""), yLabelWidth))
		put(axisCol, y, '┤', true)
	}

	nextFree := 0
	for _, t := range p.XTicks {
		x := int(math.Round(t.Pos))
		put(x, axisRow, '┴', true)
		start := max(x-len(t.Label)/2, axisCol)
		if start < nextFree || start+len(t.Label) > w {
			continue
		}
		text(start, axisRow+1, t.Label)
		nextFree = start + len(t.Label) + 1
	}

	for _, pt := range p.Points {
		x := int(math.Round(pt.X))
		y := int(math.Round(pt.Y))
		x = min(max(x, axisCol+1), w-1)
		y = min(max(y, 0), axisRow-1)
		grid[y][x] = cell{r: pointRune, color: pt.Record.Color}
	}
	return grid, p
}

// renderGrid styles the grid, batching runs of equally coloured cells.
func renderGrid(t Theme, grid [][]cell) string {
	var b strings.Builder
	for y, row := range grid {
		if y > 0 {
			b.WriteByte('\n')
		}
		var run strings.Builder
		runColor, runAxis := "", false
		flush := func() {
			if run.Len() == 0 {
				return
			}
			switch {
			case runColor != "":
				b.WriteString(t.StateStyle(runColor).Render(run.String()))
			case runAxis:
				b.WriteString(t.Axis.Render(run.String()))
			default:
				b.WriteString(run.String())
			}
			run.Reset()
		}
		for _, c := range row {
			if c.color != runColor || c.axis != runAxis {
				flush()
				runColor, runAxis = c.color, c.axis
			}
			run.WriteRune(c.r)
		}
		flush()
	}
	return b.String()
}

// gridText returns the grid without styling.
func gridText(grid [][]cell) string {
	lines := make([]string, len(grid))
	for y, row := range grid {
		rs := make([]rune, len(row))
		for x, c := range row {
			rs[x] = c.r
		}
		lines[y] = string(rs)
	}
	return strings.Join(lines, "\n")
}
