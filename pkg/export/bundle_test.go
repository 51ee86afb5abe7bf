package export

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/vanderheijden86/casedash/pkg/chart"
)

func TestWriteAll(t *testing.T) {
	d := newDashboard(t)
	dir := t.TempDir()
	opts := BundleOptions{
		HTMLPath:     filepath.Join(dir, "dash.html"),
		SnapshotPath: filepath.Join(dir, "chart.png"),
		CSVPath:      filepath.Join(dir, "rows.csv"),
		SQLitePath:   filepath.Join(dir, "rows.sqlite"),
		Scale:        chart.Log,
	}
	got, err := WriteAll(context.Background(), d, opts)
	if err != nil {
		t.Fatalf("WriteAll: %v", err)
	}
	wantKinds := []string{KindCSV, KindHTML, KindSnapshot, KindSQLite}
	if len(got) != len(wantKinds) {
		t.Fatalf("artifacts = %+v", got)
	}
	for i, a := range got {
		if a.Kind != wantKinds[i] {
			t.Errorf("artifact %d kind = %s, want %s", i, a.Kind, wantKinds[i])
		}
		if _, err := os.Stat(a.Path); err != nil {
			t.Errorf("%s not written: %v", a.Kind, err)
		}
	}
}

func TestWriteAll_SkipsEmptyPaths(t *testing.T) {
	d := newDashboard(t)
	got, err := WriteAll(context.Background(), d, BundleOptions{})
	if err != nil {
		t.Fatalf("WriteAll: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no artifacts, got %+v", got)
	}
}

func TestWriteAll_Cancelled(t *testing.T) {
	d := newDashboard(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := WriteAll(ctx, d, BundleOptions{CSVPath: filepath.Join(t.TempDir(), "rows.csv")})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestSelectionMeta(t *testing.T) {
	d := newDashboard(t)
	meta := SelectionMeta(d.Selection(), d.Store())
	if meta["states"] != "[Alabama Alaska]" {
		t.Errorf("states = %q", meta["states"])
	}
	if meta["range_start"] != "2020-03-01" || meta["range_end"] != "2020-03-03" {
		t.Errorf("range = %s..%s", meta["range_start"], meta["range_end"])
	}
	if meta["source_rows"] != "8" {
		t.Errorf("source_rows = %q", meta["source_rows"])
	}
	if meta["source_max"] != "40" || meta["source_mean"] != "11.6" {
		t.Errorf("source max/mean = %q/%q", meta["source_max"], meta["source_mean"])
	}
}
