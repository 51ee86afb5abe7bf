// This file implements the interactive export wizard for the -wizard flag.
// It asks which artifacts to write for the current selection and where.
package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/huh"
	json "github.com/goccy/go-json"
	"golang.org/x/term"

	"github.com/vanderheijden86/casedash/pkg/chart"
	"github.com/vanderheijden86/casedash/pkg/config"
	"github.com/vanderheijden86/casedash/pkg/dashboard"
)

// Artifact kinds offered by the wizard.
const (
	KindHTML     = "html"
	KindSnapshot = "snapshot"
	KindCSV      = "csv"
	KindSQLite   = "sqlite"
)

// WizardConfig holds the answers of one wizard run. It is saved so the next
// run can offer the same settings.
type WizardConfig struct {
	Title     string   `json:"title"`
	Scale     string   `json:"scale"`
	Artifacts []string `json:"artifacts"`
	OutputDir string   `json:"output_dir"`
	Format    string   `json:"snapshot_format,omitempty"` // svg or png
	Open      bool     `json:"open"`
}

// DefaultWizardConfig returns the answers preselected on a first run.
func DefaultWizardConfig() WizardConfig {
	return WizardConfig{
		Title:     chart.Title,
		Scale:     string(chart.Linear),
		Artifacts: []string{KindHTML},
		OutputDir: ".",
		Format:    "svg",
		Open:      true,
	}
}

// Bundle translates the answers into WriteAll options.
func (c WizardConfig) Bundle() BundleOptions {
	dir := c.OutputDir
	if dir == "" {
		dir = "."
	}
	scale, err := chart.ParseScale(c.Scale)
	if err != nil {
		scale = chart.Linear
	}
	format := strings.ToLower(c.Format)
	if format != "png" {
		format = "svg"
	}

	opts := BundleOptions{Scale: scale, Title: c.Title}
	for _, kind := range c.Artifacts {
		switch kind {
		case KindHTML:
			opts.HTMLPath = filepath.Join(dir, DefaultHTMLPath)
		case KindSnapshot:
			opts.SnapshotPath = filepath.Join(dir, "corona-by-state-"+string(scale)+"."+format)
		case KindCSV:
			opts.CSVPath = filepath.Join(dir, "corona-by-state.csv")
		case KindSQLite:
			opts.SQLitePath = filepath.Join(dir, "corona-by-state.sqlite")
		}
	}
	return opts
}

// WizardConfigPath is where the last answers are kept.
func WizardConfigPath() string {
	dir := config.ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "wizard.json")
}

// LoadWizardConfig reads the saved answers. A missing file is not an error;
// it returns nil.
func LoadWizardConfig(path string) (*WizardConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var cfg WizardConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse wizard config: %w", err)
	}
	return &cfg, nil
}

// SaveWizardConfig writes answers for the next run.
func SaveWizardConfig(path string, cfg WizardConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Wizard runs the interactive export flow.
type Wizard struct {
	dash       *dashboard.Dashboard
	config     WizardConfig
	configPath string
}

// NewWizard creates a wizard for the dashboard's current selection.
func NewWizard(d *dashboard.Dashboard) *Wizard {
	w := &Wizard{dash: d, config: DefaultWizardConfig()}
	w.configPath = WizardConfigPath()
	if w.configPath == "" {
		return w
	}
	if saved, err := LoadWizardConfig(w.configPath); err == nil && saved != nil {
		w.config = *saved
	}
	return w
}

// isTerminal checks if stdin is connected to a terminal
func isTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// newForm creates a form with appropriate settings based on TTY detection
func newForm(groups ...*huh.Group) *huh.Form {
	form := huh.NewForm(groups...).WithTheme(huh.ThemeDracula())
	if !isTerminal() {
		form = form.WithAccessible(true)
	}
	return form
}

// Run asks the questions, writes the artifacts and returns what was written.
func (w *Wizard) Run(ctx context.Context) ([]Artifact, error) {
	sel := w.dash.Selection()
	fmt.Println("")
	fmt.Println("Export the current view")
	fmt.Println("───────────────────────")
	fmt.Printf("  States:    %s\n", strings.Join(sel.StateList(), ", "))
	fmt.Printf("  Range:     %s to %s\n", sel.Start.Format("2006-01-02"), sel.End.Format("2006-01-02"))
	fmt.Printf("  Min cases: %d\n", sel.MinCases)
	fmt.Printf("  Points:    %d\n", len(w.dash.Visible()))
	fmt.Println("")

	if err := w.collect(); err != nil {
		return nil, err
	}
	if len(w.config.Artifacts) == 0 {
		return nil, fmt.Errorf("no artifacts selected")
	}

	opts := w.config.Bundle()
	opts.Columns = 3
	artifacts, err := WriteAll(ctx, w.dash, opts)
	if err != nil {
		return artifacts, err
	}

	if w.configPath == "" {
		// no home directory; nothing to remember
	} else if err := SaveWizardConfig(w.configPath, w.config); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not save wizard settings: %v\n", err)
	}

	fmt.Println("")
	for _, a := range artifacts {
		fmt.Printf("  ✓ %-8s %s\n", a.Kind, a.Path)
	}
	if w.config.Open && opts.HTMLPath != "" {
		for _, a := range artifacts {
			if a.Kind == KindHTML {
				if err := OpenInBrowser(a.Path); err != nil {
					fmt.Fprintf(os.Stderr, "Warning: could not open browser: %v\n", err)
				}
			}
		}
	}
	return artifacts, nil
}

func (w *Wizard) collect() error {
	form := newForm(
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("What do you want to export?").
				Options(
					huh.NewOption("Interactive dashboard (HTML)", KindHTML),
					huh.NewOption("Chart image (SVG/PNG)", KindSnapshot),
					huh.NewOption("Visible rows (CSV)", KindCSV),
					huh.NewOption("Visible rows (SQLite)", KindSQLite),
				).
				Value(&w.config.Artifacts),
			huh.NewInput().
				Title("Chart title").
				Value(&w.config.Title).
				Placeholder(chart.Title),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Y-axis scale").
				Options(
					huh.NewOption("Linear", string(chart.Linear)),
					huh.NewOption("Log", string(chart.Log)),
				).
				Value(&w.config.Scale),
			huh.NewSelect[string]().
				Title("Image format").
				Options(
					huh.NewOption("SVG", "svg"),
					huh.NewOption("PNG", "png"),
				).
				Value(&w.config.Format),
			huh.NewInput().
				Title("Output directory").
				Value(&w.config.OutputDir).
				Placeholder(".").
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return nil
					}
					if info, err := os.Stat(s); err == nil && !info.IsDir() {
						return fmt.Errorf("%s is a file", s)
					}
					return nil
				}),
			huh.NewConfirm().
				Title("Open the dashboard in a browser?").
				Value(&w.config.Open),
		),
	)

	if err := form.Run(); err != nil {
		return err
	}
	if strings.TrimSpace(w.config.Title) == "" {
		w.config.Title = chart.Title
	}
	if strings.TrimSpace(w.config.OutputDir) == "" {
		w.config.OutputDir = "."
	}
	return nil
}
