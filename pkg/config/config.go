// Package config handles loading and saving casedash configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config:  ~/.config/casedash/config.yaml
//
// Command-line flags override anything set here.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vanderheijden86/casedash/pkg/chart"
	"github.com/vanderheijden86/casedash/pkg/dashboard"
	"github.com/vanderheijden86/casedash/pkg/loader"
	"github.com/vanderheijden86/casedash/pkg/model"
	"github.com/vanderheijden86/casedash/pkg/palette"
)

// LoadConfig controls how the input table is read.
type LoadConfig struct {
	Mode        string `yaml:"mode,omitempty"`         // strict or lenient
	SQLiteTable string `yaml:"sqlite_table,omitempty"` // table read from .db inputs
}

// DashboardConfig sets the initial selection and control ranges.
type DashboardConfig struct {
	DefaultStates     []string `yaml:"default_states,omitempty"`
	DefaultStateCount int      `yaml:"default_state_count,omitempty"`
	ThresholdMax      int      `yaml:"threshold_max,omitempty"`
	ThresholdStep     int      `yaml:"threshold_step,omitempty"`
	MinCases          int      `yaml:"min_cases,omitempty"`
	RangeStart        string   `yaml:"range_start,omitempty"` // YYYY-MM-DD, empty = first data date
	RangeEnd          string   `yaml:"range_end,omitempty"`   // YYYY-MM-DD, empty = last data date
	Columns           int      `yaml:"columns,omitempty"`     // checkbox columns
}

// ChartConfig sizes the rendered charts.
type ChartConfig struct {
	Title  string `yaml:"title,omitempty"`
	Width  int    `yaml:"width,omitempty"`
	Height int    `yaml:"height,omitempty"`
	Scale  string `yaml:"scale,omitempty"` // linear or log
}

// Config is the top-level configuration for casedash.
type Config struct {
	Input     string          `yaml:"input,omitempty"`
	Output    string          `yaml:"output,omitempty"`
	Load      LoadConfig      `yaml:"load,omitempty"`
	Dashboard DashboardConfig `yaml:"dashboard,omitempty"`
	Chart     ChartConfig     `yaml:"chart,omitempty"`
	Palette   []string        `yaml:"palette,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Input:  "./us-states.csv",
		Output: "corona-by-state.html",
		Load: LoadConfig{
			Mode:        string(loader.ModeStrict),
			SQLiteTable: "cases",
		},
		Dashboard: DashboardConfig{
			DefaultStateCount: 2,
			ThresholdMax:      1000,
			ThresholdStep:     1,
			Columns:           3,
		},
		Chart: ChartConfig{
			Title:  chart.Title,
			Width:  700,
			Height: 650,
			Scale:  string(chart.Linear),
		},
	}
}

// ConfigDir returns the XDG config directory for casedash.
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "casedash")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "casedash")
}

// ConfigPath returns the full path to config.yaml.
func ConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads the config file from the XDG config directory.
// Returns DefaultConfig if the file doesn't exist.
func Load() (Config, error) {
	path := ConfigPath()
	if path == "" {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads config from a specific path.
// Returns DefaultConfig if the file doesn't exist.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	cfg.Input = expandHome(cfg.Input)
	cfg.Output = expandHome(cfg.Output)

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config to the XDG config directory.
func Save(cfg Config) error {
	path := ConfigPath()
	if path == "" {
		return fmt.Errorf("cannot determine config directory")
	}
	return SaveTo(cfg, path)
}

// SaveTo writes the config to a specific path.
func SaveTo(cfg Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// Validate checks enumerated values, dates and the palette override.
func (c Config) Validate() error {
	var errs []error
	if _, err := loader.ParseMode(c.Load.Mode); err != nil {
		errs = append(errs, err)
	}
	if _, err := chart.ParseScale(c.Chart.Scale); err != nil {
		errs = append(errs, err)
	}
	if _, _, err := c.Range(); err != nil {
		errs = append(errs, err)
	}
	if c.Dashboard.ThresholdMax < 0 || c.Dashboard.MinCases < 0 {
		errs = append(errs, fmt.Errorf("threshold values must not be negative"))
	}
	if len(c.Palette) > 0 {
		if err := palette.Palette(c.Palette).Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Range parses the configured date range. Zero times mean "use the data
// bounds".
func (c Config) Range() (start, end time.Time, err error) {
	parse := func(field, s string) (time.Time, error) {
		if strings.TrimSpace(s) == "" {
			return time.Time{}, nil
		}
		t, err := time.Parse(model.DateLayout, strings.TrimSpace(s))
		if err != nil {
			return time.Time{}, fmt.Errorf("%s: %w", field, err)
		}
		return t, nil
	}
	if start, err = parse("range_start", c.Dashboard.RangeStart); err != nil {
		return
	}
	end, err = parse("range_end", c.Dashboard.RangeEnd)
	return
}

// ParseOptions builds loader options from the load section.
func (c Config) ParseOptions() (loader.ParseOptions, error) {
	mode, err := loader.ParseMode(c.Load.Mode)
	if err != nil {
		return loader.ParseOptions{}, err
	}
	return loader.ParseOptions{Mode: mode}, nil
}

// PaletteOrDefault returns the palette override, or the default palette.
func (c Config) PaletteOrDefault() palette.Palette {
	if len(c.Palette) > 0 {
		return palette.Palette(c.Palette)
	}
	return palette.Default()
}

// DashboardOptions converts the dashboard section.
func (c Config) DashboardOptions() (dashboard.Options, error) {
	start, end, err := c.Range()
	if err != nil {
		return dashboard.Options{}, err
	}
	d := c.Dashboard
	return dashboard.Options{
		DefaultStates:     d.DefaultStates,
		DefaultStateCount: d.DefaultStateCount,
		ThresholdMax:      d.ThresholdMax,
		ThresholdStep:     d.ThresholdStep,
		MinCases:          d.MinCases,
		Start:             start,
		End:               end,
	}, nil
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
