package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime/pprof"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/vanderheijden86/casedash/internal/datasource"
	"github.com/vanderheijden86/casedash/pkg/chart"
	"github.com/vanderheijden86/casedash/pkg/config"
	"github.com/vanderheijden86/casedash/pkg/dashboard"
	"github.com/vanderheijden86/casedash/pkg/dataset"
	"github.com/vanderheijden86/casedash/pkg/debug"
	"github.com/vanderheijden86/casedash/pkg/export"
	"github.com/vanderheijden86/casedash/pkg/loader"
	"github.com/vanderheijden86/casedash/pkg/metrics"
	"github.com/vanderheijden86/casedash/pkg/model"
	"github.com/vanderheijden86/casedash/pkg/ui"
	"github.com/vanderheijden86/casedash/pkg/version"
	"github.com/vanderheijden86/casedash/pkg/watcher"

	tea "github.com/charmbracelet/bubbletea"
)

// cliFlags holds everything that can override the config file.
type cliFlags struct {
	configPath string
	export     string
	snapshot   string
	scale      string
	csvOut     string
	sqliteOut  string
	states     string
	minCases   int
	start      string
	end        string
	lenient    bool
	watch      bool
	wizard     bool
	set        map[string]bool
}

// usageError marks a bad flag value; main exits 2 for these.
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func main() {
	var f cliFlags
	flag.StringVar(&f.configPath, "config", "", "Read config from this file instead of the XDG location")
	flag.StringVar(&f.export, "export", "", "Write the interactive HTML dashboard to this file and exit")
	flag.StringVar(&f.snapshot, "snapshot", "", "Write a static chart (.svg or .png) and exit")
	flag.StringVar(&f.scale, "scale", "", "Initial y-axis scale: linear or log")
	flag.StringVar(&f.csvOut, "csv-out", "", "Write the visible rows as CSV and exit")
	flag.StringVar(&f.sqliteOut, "sqlite-out", "", "Write the visible rows to a SQLite database and exit")
	flag.StringVar(&f.states, "states", "", "Comma-separated initial states (e.g. 'Alabama,Alaska')")
	flag.IntVar(&f.minCases, "min-cases", 0, "Initial minimum case count")
	flag.StringVar(&f.start, "start", "", "Range start (YYYY-MM-DD)")
	flag.StringVar(&f.end, "end", "", "Range end (YYYY-MM-DD)")
	flag.BoolVar(&f.lenient, "lenient", false, "Drop malformed rows with a warning instead of failing")
	flag.BoolVar(&f.watch, "watch", false, "Re-export whenever the input file changes (export mode)")
	flag.BoolVar(&f.wizard, "wizard", false, "Choose export artifacts interactively")
	versionFlag := flag.Bool("version", false, "Show version")
	cpuProfile := flag.String("cpu-profile", "", "Write CPU profile to file")
	flag.Usage = func() {
		fmt.Fprintln(flag.CommandLine.Output(), "Usage: casedash [options] [input]")
		fmt.Fprintln(flag.CommandLine.Output(), "\nCOVID-19 cumulative cases by state.")
		flag.PrintDefaults()
	}
	flag.Parse()

	f.set = map[string]bool{}
	flag.Visit(func(fl *flag.Flag) { f.set[fl.Name] = true })

	if *versionFlag {
		fmt.Printf("casedash %s\n", version.String())
		os.Exit(0)
	}

	// CPU profiling support
	if *cpuProfile != "" {
		pf, err := os.Create(*cpuProfile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Could not create CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer pf.Close()
		if err := pprof.StartCPUProfile(pf); err != nil {
			fmt.Fprintf(os.Stderr, "Could not start CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer pprof.StopCPUProfile()
	}

	code := run(f, flag.Args())
	if debug.Enabled() {
		_ = metrics.WriteSummary(os.Stderr)
	}
	if code != 0 {
		// deferred profile writers do not run on os.Exit
		pprof.StopCPUProfile()
		os.Exit(code)
	}
}

func run(f cliFlags, args []string) int {
	if len(args) > 1 {
		fmt.Fprintf(os.Stderr, "Error: expected at most one input file, got %d\n", len(args))
		return 2
	}

	cfg, err := loadConfig(f.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if len(args) == 1 {
		cfg.Input = args[0]
	}
	cfg, err = applyFlags(cfg, f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		var ue usageError
		if errors.As(err, &ue) {
			return 2
		}
		return 1
	}

	dopts, err := cfg.DashboardOptions()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}
	scale, err := chart.ParseScale(cfg.Chart.Scale)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}

	load := storeLoader(cfg)
	store, err := load(cfg.Input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	switch {
	case f.wizard:
		err = runWizard(store, dopts)
	case exportRequested(f):
		bundle := export.BundleOptions{
			HTMLPath:     f.export,
			SnapshotPath: f.snapshot,
			CSVPath:      f.csvOut,
			SQLitePath:   f.sqliteOut,
			Scale:        scale,
			Title:        cfg.Chart.Title,
			Columns:      cfg.Dashboard.Columns,
			Width:        cfg.Chart.Width,
			Height:       cfg.Chart.Height,
		}
		if f.watch {
			err = runWatchExport(cfg.Input, load, store, dopts, bundle)
		} else {
			err = runExport(context.Background(), store, dopts, bundle)
		}
	default:
		if f.watch {
			fmt.Fprintln(os.Stderr, "Warning: -watch only applies to export mode; the TUI reloads on change anyway")
		}
		err = runTUI(cfg, store, dopts, scale, load)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func loadConfig(path string) (config.Config, error) {
	if path != "" {
		return config.LoadFrom(path)
	}
	return config.Load()
}

// applyFlags overrides config values with the flags that were set.
func applyFlags(cfg config.Config, f cliFlags) (config.Config, error) {
	if f.set["scale"] {
		if _, err := chart.ParseScale(f.scale); err != nil {
			return cfg, usageError{err}
		}
		cfg.Chart.Scale = f.scale
	}
	if f.set["states"] {
		cfg.Dashboard.DefaultStates = parseStates(f.states)
	}
	if f.set["min-cases"] {
		if f.minCases < 0 {
			return cfg, usageError{fmt.Errorf("-min-cases must not be negative, got %d", f.minCases)}
		}
		cfg.Dashboard.MinCases = f.minCases
	}
	if f.set["start"] {
		if _, err := parseDate(f.start); err != nil {
			return cfg, usageError{fmt.Errorf("-start: %w", err)}
		}
		cfg.Dashboard.RangeStart = f.start
	}
	if f.set["end"] {
		if _, err := parseDate(f.end); err != nil {
			return cfg, usageError{fmt.Errorf("-end: %w", err)}
		}
		cfg.Dashboard.RangeEnd = f.end
	}
	if f.lenient {
		cfg.Load.Mode = string(loader.ModeLenient)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// parseStates splits a comma-separated list, dropping blanks.
func parseStates(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseDate(s string) (time.Time, error) {
	return time.Parse(model.DateLayout, strings.TrimSpace(s))
}

func exportRequested(f cliFlags) bool {
	return f.export != "" || f.snapshot != "" || f.csvOut != "" || f.sqliteOut != ""
}

// storeLoader binds the config's load settings into a watcher.LoadFunc.
func storeLoader(cfg config.Config) watcher.LoadFunc {
	return func(path string) (*dataset.Store, error) {
		parse, err := cfg.ParseOptions()
		if err != nil {
			return nil, err
		}
		return datasource.Load(path, datasource.Options{
			Parse:   parse,
			Table:   cfg.Load.SQLiteTable,
			Palette: cfg.PaletteOrDefault(),
		})
	}
}

func runExport(ctx context.Context, store *dataset.Store, dopts dashboard.Options, bundle export.BundleOptions) error {
	d, err := dashboard.New(store, dashboard.Discard, dopts)
	if err != nil {
		return err
	}
	artifacts, err := export.WriteAll(ctx, d, bundle)
	for _, a := range artifacts {
		fmt.Printf("Wrote %s: %s\n", a.Kind, a.Path)
	}
	return err
}

// runWatchExport exports once, then again on every change to input until
// SIGINT or SIGTERM.
func runWatchExport(input string, load watcher.LoadFunc, store *dataset.Store, dopts dashboard.Options, bundle export.BundleOptions) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := runExport(ctx, store, dopts, bundle); err != nil {
		return err
	}

	r, err := watcher.NewReloader(input, load,
		func(s *dataset.Store) {
			if err := runExport(ctx, s, dopts, bundle); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			}
		},
		func(err error) {
			fmt.Fprintf(os.Stderr, "Error: reload failed, keeping previous output: %v\n", err)
		},
	)
	if err != nil {
		return err
	}
	if err := r.Start(); err != nil {
		return err
	}
	defer r.Stop()

	mode := "fsnotify"
	if r.Watcher().IsPolling() {
		mode = "polling"
	}
	fmt.Fprintf(os.Stderr, "Watching %s (%s), press Ctrl+C to stop\n", input, mode)
	<-ctx.Done()
	return nil
}

func runWizard(store *dataset.Store, dopts dashboard.Options) error {
	d, err := dashboard.New(store, dashboard.Discard, dopts)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	_, err = export.NewWizard(d).Run(ctx)
	return err
}

func runTUI(cfg config.Config, store *dataset.Store, dopts dashboard.Options, scale chart.Scale, load watcher.LoadFunc) error {
	input := cfg.Input
	opts := ui.Options{
		Title:    cfg.Chart.Title,
		Columns:  cfg.Dashboard.Columns,
		Scale:    scale,
		HTMLPath: cfg.Output,
		Source:   input,
		Reload:   func() (*dataset.Store, error) { return load(input) },
	}

	w, err := watcher.NewWatcher(input)
	if err == nil {
		if err = w.Start(); err == nil {
			defer w.Stop()
			opts.Watcher = w
		}
	}
	if err != nil {
		debug.Log("casedash: live reload disabled: %v", err)
	}

	m, err := ui.NewModel(store, dopts, opts)
	if err != nil {
		return err
	}
	return runTUIProgram(m)
}

func runTUIProgram(m ui.Model) error {
	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithoutSignalHandler(),
	)

	runDone := make(chan struct{})
	defer close(runDone)

	// Graceful shutdown on SIGINT/SIGTERM.
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-runDone:
			return
		case <-sigCh:
		}

		p.Quit()

		select {
		case <-runDone:
			return
		case <-sigCh:
		case <-time.After(5 * time.Second):
		}

		p.Kill()
	}()

	// Optional auto-quit for automated runs: set CASEDASH_TUI_AUTOCLOSE_MS.
	if ms := autocloseDelay(os.Getenv("CASEDASH_TUI_AUTOCLOSE_MS")); ms > 0 {
		go func() {
			timer := time.NewTimer(ms)
			defer timer.Stop()

			select {
			case <-runDone:
				return
			case <-timer.C:
			}

			p.Quit()

			select {
			case <-runDone:
				return
			case <-time.After(2 * time.Second):
			}

			p.Kill()
		}()
	}

	_, err := p.Run()
	if err != nil && (errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, tea.ErrInterrupted)) {
		return nil
	}
	return err
}

// autocloseDelay parses a millisecond count; invalid or non-positive values
// disable auto-close.
func autocloseDelay(v string) time.Duration {
	if v == "" {
		return 0
	}
	ms, err := strconv.Atoi(v)
	if err != nil || ms <= 0 {
		return 0
	}
	return time.Duration(ms) * time.Millisecond
}
