package export

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"git.sr.ht/~sbinet/gg"
	"github.com/ajstarks/svgo"
	"golang.org/x/image/font/basicfont"

	"github.com/vanderheijden86/casedash/pkg/chart"
	"github.com/vanderheijden86/casedash/pkg/metrics"
	"github.com/vanderheijden86/casedash/pkg/model"
	"github.com/vanderheijden86/casedash/pkg/palette"
)

// SnapshotOptions controls static chart export.
type SnapshotOptions struct {
	Path   string      // Output path; format inferred from extension when Format empty
	Format string      // "svg" or "png" (case-insensitive). If empty, inferred from Path.
	Scale  chart.Scale // y-axis scale, default linear
	Title  string
	Rows   []model.CaseRecord // visible rows, in (date, state) order
	Width  int
	Height int
}

// SnapshotFormat resolves the output format and path, appending .svg when the
// path has no extension.
func SnapshotFormat(path, format string) (string, string, error) {
	format = strings.ToLower(strings.TrimPrefix(format, "."))
	if format == "" {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".svg":
			format = "svg"
		case ".png":
			format = "png"
		default:
			format = "svg"
			if path != "" && filepath.Ext(path) == "" {
				path = path + ".svg"
			}
		}
	}
	if format != "svg" && format != "png" {
		return "", "", fmt.Errorf("unsupported format %q (want svg or png)", format)
	}
	return format, path, nil
}

// SaveSnapshot renders the visible rows as a scatter chart (SVG or PNG). An
// empty row set still produces a chart with axes and title. It returns the
// path written.
func SaveSnapshot(opts SnapshotOptions) (string, error) {
	defer metrics.Timer(metrics.Render)()

	format, path, err := SnapshotFormat(opts.Path, opts.Format)
	if err != nil {
		return "", err
	}
	if path == "" {
		return "", fmt.Errorf("output path is required")
	}
	opts.Path = path

	if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
		return "", fmt.Errorf("create parent dir: %w", err)
	}

	plot := layout(opts)
	switch format {
	case "svg":
		err = renderSVG(opts, plot)
	case "png":
		err = renderPNG(opts, plot)
	}
	return opts.Path, err
}

func layout(opts SnapshotOptions) chart.Plot {
	co := chart.DefaultOptions()
	if opts.Width > 0 {
		co.Width = float64(opts.Width)
	}
	if opts.Height > 0 {
		co.Height = float64(opts.Height)
	}
	if opts.Scale == "" {
		opts.Scale = chart.Linear
	}
	return chart.Layout(opts.Rows, opts.Scale, co)
}

func canvasSize(p chart.Plot) (int, int) {
	m := chart.DefaultOptions().Margins
	return int(p.Area.X + p.Area.W + m[2]), int(p.Area.Y + p.Area.H + m[3])
}

func titleOf(opts SnapshotOptions) string {
	if opts.Title != "" {
		return opts.Title
	}
	return chart.Title
}

var (
	colorBackdrop = color.RGBA{0xff, 0xff, 0xff, 0xff}
	colorAxis     = color.RGBA{0x88, 0x88, 0x88, 0xff}
	colorGrid     = color.RGBA{0xee, 0xee, 0xee, 0xff}
	colorText     = color.RGBA{0x22, 0x22, 0x22, 0xff}
	colorSubtle   = color.RGBA{0x66, 0x66, 0x66, 0xff}
	colorLegendBG = color.RGBA{0xfa, 0xfa, 0xfa, 0xff}
)

const (
	pointRadius  = 5.0
	pointAlpha   = 0.7
	legendRowH   = 11
	legendPad    = 8
	legendSwatch = 4
)

// legendRows returns how many legend entries fit in the plot area.
func legendRows(p chart.Plot) int {
	n := int(p.Area.H-2*legendPad-14) / legendRowH
	return max(0, min(n, len(p.Legend)))
}

func renderSVG(opts SnapshotOptions, p chart.Plot) error {
	file, err := os.Create(opts.Path)
	if err != nil {
		return err
	}
	defer file.Close()

	return renderSVGToWriter(file, titleOf(opts), p)
}

func renderSVGToWriter(w io.Writer, title string, p chart.Plot) error {
	width, height := canvasSize(p)
	a := p.Area

	canvas := svg.New(w)
	canvas.Start(width, height)
	canvas.Rect(0, 0, width, height, fmt.Sprintf("fill:%s", css(colorBackdrop)))
	canvas.Text(width/2, 32, title, fmt.Sprintf("fill:%s;font-size:18pt;font-family:sans-serif;text-anchor:middle", css(colorText)))

	for _, t := range p.YTicks {
		y := int(t.Pos)
		canvas.Line(int(a.X), y, int(a.X+a.W), y, fmt.Sprintf("stroke:%s", css(colorGrid)))
		canvas.Text(int(a.X)-6, y+4, t.Label, fmt.Sprintf("fill:%s;font-size:11px;font-family:sans-serif;text-anchor:end", css(colorSubtle)))
	}
	for _, t := range p.XTicks {
		canvas.Text(int(t.Pos), int(a.Y+a.H)+18, t.Label, fmt.Sprintf("fill:%s;font-size:11px;font-family:sans-serif;text-anchor:middle", css(colorSubtle)))
	}
	canvas.Rect(int(a.X), int(a.Y), int(a.W), int(a.H), fmt.Sprintf("fill:none;stroke:%s", css(colorAxis)))
	canvas.Text(int(a.X+a.W/2), height-12, chart.XLabel, fmt.Sprintf("fill:%s;font-size:14pt;font-weight:bold;font-family:sans-serif;text-anchor:middle", css(colorText)))
	yMid := int(a.Y + a.H/2)
	canvas.Text(18, yMid, chart.YLabel, fmt.Sprintf("fill:%s;font-size:14pt;font-weight:bold;font-family:sans-serif;text-anchor:middle", css(colorText)),
		fmt.Sprintf(`transform="rotate(-90 18 %d)"`, yMid))

	for _, pt := range p.Points {
		canvas.Circle(int(pt.X), int(pt.Y), int(pointRadius),
			fmt.Sprintf("fill:%s;fill-opacity:%.1f", pt.Record.Color, pointAlpha))
	}

	if n := legendRows(p); n > 0 {
		lx, ly := int(a.X)+legendPad, int(a.Y)+legendPad
		maxLen := 0
		for _, e := range p.Legend[:n] {
			maxLen = max(maxLen, len(e.State))
		}
		boxW := max(len(chart.LegendTitle)*6, maxLen*6+20) + 2*legendPad
		boxH := 14 + n*legendRowH + legendPad
		canvas.Rect(lx, ly, boxW, boxH, fmt.Sprintf("fill:%s;fill-opacity:0.9;stroke:%s", css(colorLegendBG), css(colorGrid)))
		canvas.Text(lx+legendPad, ly+12, chart.LegendTitle, fmt.Sprintf("fill:%s;font-size:9pt;font-style:italic;font-family:sans-serif", css(colorText)))
		for i, e := range p.Legend[:n] {
			y := ly + 14 + (i+1)*legendRowH
			canvas.Circle(lx+legendPad+legendSwatch, y-3, legendSwatch, fmt.Sprintf("fill:%s", e.Color))
			canvas.Text(lx+legendPad+12, y, e.State, fmt.Sprintf("fill:%s;font-size:8pt;font-family:sans-serif", css(colorText)))
		}
	}

	canvas.End()
	return nil
}

func renderPNG(opts SnapshotOptions, p chart.Plot) error {
	width, height := canvasSize(p)
	a := p.Area

	dc := gg.NewContext(width, height)
	dc.SetColor(colorBackdrop)
	dc.Clear()
	dc.SetFontFace(basicfont.Face7x13)

	dc.SetColor(colorText)
	dc.DrawStringAnchored(titleOf(opts), float64(width)/2, 32, 0.5, 0.5)

	dc.SetLineWidth(1)
	for _, t := range p.YTicks {
		dc.SetColor(colorGrid)
		dc.DrawLine(a.X, t.Pos, a.X+a.W, t.Pos)
		dc.Stroke()
		dc.SetColor(colorSubtle)
		dc.DrawStringAnchored(t.Label, a.X-6, t.Pos, 1, 0.5)
	}
	for _, t := range p.XTicks {
		dc.SetColor(colorSubtle)
		dc.DrawStringAnchored(t.Label, t.Pos, a.Y+a.H+16, 0.5, 0.5)
	}
	dc.SetColor(colorAxis)
	dc.DrawRectangle(a.X, a.Y, a.W, a.H)
	dc.Stroke()

	dc.SetColor(colorText)
	dc.DrawStringAnchored(chart.XLabel, a.X+a.W/2, float64(height)-16, 0.5, 0.5)
	dc.Push()
	dc.RotateAbout(gg.Radians(-90), 18, a.Y+a.H/2)
	dc.DrawStringAnchored(chart.YLabel, 18, a.Y+a.H/2, 0.5, 0.5)
	dc.Pop()

	alpha := uint8(math.Round(pointAlpha * 255))
	for _, pt := range p.Points {
		c := palette.RGBA(pt.Record.Color)
		dc.SetColor(color.NRGBA{R: c.R, G: c.G, B: c.B, A: alpha})
		dc.DrawCircle(pt.X, pt.Y, pointRadius)
		dc.Fill()
	}

	if n := legendRows(p); n > 0 {
		lx, ly := a.X+legendPad, a.Y+legendPad
		boxW := float64(len(chart.LegendTitle)*7 + 2*legendPad)
		boxH := float64(14 + n*legendRowH + legendPad)
		dc.SetColor(colorLegendBG)
		dc.DrawRectangle(lx, ly, boxW, boxH)
		dc.Fill()
		dc.SetColor(colorText)
		dc.DrawStringAnchored(chart.LegendTitle, lx+legendPad, ly+8, 0, 0.5)
		for i, e := range p.Legend[:n] {
			y := ly + 14 + float64((i+1)*legendRowH)
			dc.SetColor(palette.RGBA(e.Color))
			dc.DrawCircle(lx+legendPad+legendSwatch, y-3, legendSwatch)
			dc.Fill()
			dc.SetColor(colorText)
			dc.DrawStringAnchored(truncate(e.State, 24), lx+legendPad+12, y-3, 0, 0.5)
		}
	}

	return dc.SavePNG(opts.Path)
}

// --- helpers ---------------------------------------------------------------

func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}

func css(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
