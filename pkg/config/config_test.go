package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vanderheijden86/casedash/pkg/loader"
	"github.com/vanderheijden86/casedash/pkg/palette"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Input != "./us-states.csv" || cfg.Output != "corona-by-state.html" {
		t.Errorf("unexpected paths %q, %q", cfg.Input, cfg.Output)
	}
	if cfg.Dashboard.DefaultStateCount != 2 || cfg.Dashboard.ThresholdMax != 1000 || cfg.Dashboard.Columns != 3 {
		t.Errorf("unexpected dashboard defaults %+v", cfg.Dashboard)
	}
	if cfg.Chart.Width != 700 || cfg.Chart.Height != 650 {
		t.Errorf("unexpected chart size %dx%d", cfg.Chart.Width, cfg.Chart.Height)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
	if len(cfg.PaletteOrDefault()) != 60 {
		t.Error("expected default palette")
	}
}

func TestLoadFrom_NonExistent(t *testing.T) {
	cfg, err := LoadFrom("/nonexistent/path/config.yaml")
	if err != nil {
		t.Fatalf("expected no error for missing file, got: %v", err)
	}
	if cfg.Dashboard.ThresholdMax != 1000 {
		t.Errorf("expected default config, got %+v", cfg.Dashboard)
	}
}

func TestLoadFrom_ValidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := `
input: ~/data/us-states.csv
load:
  mode: lenient
dashboard:
  default_states: [Washington, California]
  threshold_max: 5000
  range_start: "2020-01-21"
chart:
  scale: log
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if strings.HasPrefix(cfg.Input, "~") {
		t.Errorf("expected ~ expanded, got %q", cfg.Input)
	}
	if cfg.Output != "corona-by-state.html" {
		t.Errorf("unset fields should keep defaults, got output %q", cfg.Output)
	}

	popts, err := cfg.ParseOptions()
	if err != nil || popts.Mode != loader.ModeLenient {
		t.Errorf("ParseOptions = %+v, %v", popts, err)
	}

	dopts, err := cfg.DashboardOptions()
	if err != nil {
		t.Fatal(err)
	}
	if len(dopts.DefaultStates) != 2 || dopts.ThresholdMax != 5000 || dopts.DefaultStateCount != 2 {
		t.Errorf("DashboardOptions = %+v", dopts)
	}
	if dopts.Start.Format("2006-01-02") != "2020-01-21" || !dopts.End.IsZero() {
		t.Errorf("range = %v..%v", dopts.Start, dopts.End)
	}
}

func TestLoadFrom_Invalid(t *testing.T) {
	tests := map[string]string{
		"bad yaml":    "load: [",
		"bad mode":    "load:\n  mode: sloppy\n",
		"bad scale":   "chart:\n  scale: sqrt\n",
		"bad date":    "dashboard:\n  range_end: 03/01/2020\n",
		"bad palette": "palette: ['#000000']\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadFrom(path); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultConfig()
	cfg.Dashboard.DefaultStates = []string{"Ohio"}
	cfg.Palette = palette.Default()

	if err := SaveTo(cfg, path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}
	got, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if len(got.Dashboard.DefaultStates) != 1 || got.Dashboard.DefaultStates[0] != "Ohio" || len(got.Palette) != 60 {
		t.Errorf("round trip lost data: %+v", got)
	}
}

func TestConfigPathHonoursXDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	if got := ConfigPath(); got != filepath.Join(dir, "casedash", "config.yaml") {
		t.Errorf("ConfigPath = %q", got)
	}
	cfg, err := Load()
	if err != nil || cfg.Dashboard.Columns != 3 {
		t.Errorf("Load without file = %+v, %v", cfg, err)
	}
}
