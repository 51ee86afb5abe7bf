package export

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/casedash/pkg/chart"
	"github.com/vanderheijden86/casedash/pkg/dashboard"
	"github.com/vanderheijden86/casedash/pkg/metrics"
	"github.com/vanderheijden86/casedash/pkg/model"
	"github.com/vanderheijden86/casedash/pkg/version"
)

//go:embed assets/dashboard.html.tmpl
var dashboardTemplate string

//go:embed assets/dashboard.js
var dashboardJS string

//go:embed assets/dashboard.css
var dashboardCSS string

var pageTemplate = template.Must(template.New("dashboard").Parse(dashboardTemplate))

// DefaultHTMLPath is where the dashboard document is written when no path
// is given.
const DefaultHTMLPath = "corona-by-state.html"

// HTMLOptions configures the self-contained dashboard document.
type HTMLOptions struct {
	Dashboard *dashboard.Dashboard
	Path      string // defaults to DefaultHTMLPath
	Title     string
	Columns   int // checkbox columns, default 3
	Width     int
	Height    int
	// Scales sets tab order; the first tab is shown on open.
	Scales []chart.Scale
}

// htmlRecord uses short keys to keep the embedded dataset small.
type htmlRecord struct {
	State   string `json:"s"`
	Date    string `json:"d"`
	Ordinal int    `json:"o"`
	Cases   int    `json:"c"`
}

type htmlSelection struct {
	States   []string `json:"states"`
	Start    string   `json:"start"`
	End      string   `json:"end"`
	MinCases int      `json:"min_cases"`
}

type htmlTab struct {
	Scale chart.Scale `json:"scale"`
	Title string      `json:"title"`
}

type htmlPayload struct {
	Title       string            `json:"title"`
	LegendTitle string            `json:"legend_title"`
	Records     []htmlRecord      `json:"records"`
	Visible     []htmlRecord      `json:"visible"`
	Colors      map[string]string `json:"colors"`
	States      []string          `json:"states"`
	Columns     int               `json:"columns"`
	Initial     htmlSelection     `json:"initial"`
	Tabs        []htmlTab         `json:"tabs"`
}

type htmlBounds struct {
	Start, End string
}

type pageData struct {
	Title         string
	Version       string
	CSS           template.CSS
	JS            template.JS
	Data          template.JS
	Tabs          []htmlTab
	Bounds        htmlBounds
	Initial       htmlSelection
	ThresholdMax  int
	ThresholdStep int
	Width         int
	Height        int
}

func toHTMLRecords(recs []model.CaseRecord) []htmlRecord {
	out := make([]htmlRecord, len(recs))
	for i, r := range recs {
		out[i] = htmlRecord{State: r.State, Date: r.DateString(), Ordinal: r.Ordinal, Cases: r.Cases}
	}
	return out
}

// RenderHTML writes the dashboard document to a buffer. The full dataset,
// colour map, current selection and current visible rows are embedded so the
// page works offline.
func RenderHTML(opts HTMLOptions) ([]byte, error) {
	d := opts.Dashboard
	if d == nil {
		return nil, fmt.Errorf("dashboard is required")
	}
	if opts.Title == "" {
		opts.Title = chart.Title
	}
	if opts.Columns <= 0 {
		opts.Columns = 3
	}
	def := chart.DefaultOptions()
	if opts.Width <= 0 {
		opts.Width = int(def.Width)
	}
	if opts.Height <= 0 {
		opts.Height = int(def.Height)
	}
	if len(opts.Scales) == 0 {
		opts.Scales = chart.Scales
	}

	sel := d.Selection()
	initial := htmlSelection{
		States:   sel.StateList(),
		Start:    sel.Start.Format(model.DateLayout),
		End:      sel.End.Format(model.DateLayout),
		MinCases: sel.MinCases,
	}
	tabs := make([]htmlTab, len(opts.Scales))
	for i, s := range opts.Scales {
		tabs[i] = htmlTab{Scale: s, Title: s.TabTitle()}
	}

	payload := htmlPayload{
		Title:       opts.Title,
		LegendTitle: chart.LegendTitle,
		Records:     toHTMLRecords(d.Store().Records()),
		Visible:     toHTMLRecords(d.Visible()),
		Colors:      d.Store().Colors(),
		States:      d.Universe(),
		Columns:     opts.Columns,
		Initial:     initial,
		Tabs:        tabs,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal dashboard data: %w", err)
	}

	w := d.Widgets()
	lo := w.Range.Start.Format(model.DateLayout)
	hi := w.Range.End.Format(model.DateLayout)

	var buf bytes.Buffer
	err = pageTemplate.Execute(&buf, pageData{
		Title:         opts.Title,
		Version:       version.Version,
		CSS:           template.CSS(dashboardCSS),
		JS:            template.JS(dashboardJS),
		Data:          template.JS(data),
		Tabs:          tabs,
		Bounds:        htmlBounds{Start: lo, End: hi},
		Initial:       initial,
		ThresholdMax:  w.Threshold.End,
		ThresholdStep: w.Threshold.Step,
		Width:         opts.Width,
		Height:        opts.Height,
	})
	if err != nil {
		return nil, fmt.Errorf("render dashboard template: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteHTML renders the dashboard and writes it, returning the final path.
// The path always ends in .html.
func WriteHTML(opts HTMLOptions) (string, error) {
	defer metrics.Timer(metrics.Export)()

	html, err := RenderHTML(opts)
	if err != nil {
		return "", err
	}

	outputPath := opts.Path
	if outputPath == "" {
		outputPath = DefaultHTMLPath
	}
	if !strings.HasSuffix(strings.ToLower(outputPath), ".html") {
		outputPath = strings.TrimSuffix(outputPath, filepath.Ext(outputPath)) + ".html"
	}

	dir := filepath.Dir(outputPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("create dir: %w", err)
		}
	}
	if err := os.WriteFile(outputPath, html, 0o644); err != nil {
		return "", err
	}
	return outputPath, nil
}
