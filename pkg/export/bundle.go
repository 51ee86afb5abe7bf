package export

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/vanderheijden86/casedash/pkg/chart"
	"github.com/vanderheijden86/casedash/pkg/dashboard"
	"github.com/vanderheijden86/casedash/pkg/dataset"
	"github.com/vanderheijden86/casedash/pkg/debug"
	"github.com/vanderheijden86/casedash/pkg/model"
	"github.com/vanderheijden86/casedash/pkg/version"
)

// BundleOptions selects which artifacts WriteAll produces. Empty paths are
// skipped.
type BundleOptions struct {
	HTMLPath     string
	SnapshotPath string
	CSVPath      string
	SQLitePath   string

	Scale   chart.Scale
	Title   string
	Columns int
	Width   int
	Height  int
}

// Artifact is one written file.
type Artifact struct {
	Kind string
	Path string
}

// WriteAll renders the requested artifacts for the dashboard's current
// visible rows in parallel. All artifacts see the same row set.
func WriteAll(ctx context.Context, d *dashboard.Dashboard, opts BundleOptions) ([]Artifact, error) {
	rows := d.Visible()
	sel := d.Selection()

	var (
		g, gctx = errgroup.WithContext(ctx)
		results = make(chan Artifact, 4)
	)

	emit := func(kind, path string) {
		results <- Artifact{Kind: kind, Path: path}
	}

	if opts.HTMLPath != "" {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			scales := chart.Scales
			if opts.Scale == chart.Log {
				scales = []chart.Scale{chart.Log, chart.Linear}
			}
			path, err := WriteHTML(HTMLOptions{
				Dashboard: d, Path: opts.HTMLPath, Title: opts.Title,
				Columns: opts.Columns, Width: opts.Width, Height: opts.Height, Scales: scales,
			})
			if err != nil {
				return fmt.Errorf("html: %w", err)
			}
			emit("html", path)
			return nil
		})
	}
	if opts.SnapshotPath != "" {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			path, err := SaveSnapshot(SnapshotOptions{
				Path: opts.SnapshotPath, Scale: opts.Scale, Title: opts.Title,
				Rows: rows, Width: opts.Width, Height: opts.Height,
			})
			if err != nil {
				return fmt.Errorf("snapshot: %w", err)
			}
			emit("snapshot", path)
			return nil
		})
	}
	if opts.CSVPath != "" {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if err := WriteCSV(opts.CSVPath, rows); err != nil {
				return fmt.Errorf("csv: %w", err)
			}
			emit("csv", opts.CSVPath)
			return nil
		})
	}
	if opts.SQLitePath != "" {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if err := WriteSQLite(opts.SQLitePath, rows, SelectionMeta(sel, d.Store())); err != nil {
				return fmt.Errorf("sqlite: %w", err)
			}
			emit("sqlite", opts.SQLitePath)
			return nil
		})
	}

	err := g.Wait()
	close(results)

	var out []Artifact
	for a := range results {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Kind < out[j].Kind })
	debug.Log("export: wrote %d artifacts for %d rows", len(out), len(rows))
	return out, err
}

// SelectionMeta describes a selection for export metadata.
func SelectionMeta(sel model.Selection, store *dataset.Store) map[string]string {
	sum := store.Summary()
	states := sel.StateList()
	return map[string]string{
		"version":      version.Version,
		"states":       fmt.Sprint(states),
		"range_start":  sel.Start.Format(model.DateLayout),
		"range_end":    sel.End.Format(model.DateLayout),
		"min_cases":    fmt.Sprint(sel.MinCases),
		"source_rows":  fmt.Sprint(sum.Records),
		"source_total": fmt.Sprintf("%.0f", sum.Total),
		"source_max":   fmt.Sprint(sum.MaxCases),
		"source_mean":  fmt.Sprintf("%.1f", sum.Mean),
	}
}
