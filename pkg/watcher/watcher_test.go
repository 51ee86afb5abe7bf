package watcher

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/vanderheijden86/casedash/internal/datasource"
	"github.com/vanderheijden86/casedash/pkg/dataset"
	"github.com/vanderheijden86/casedash/pkg/testutil"
)

func writeCSV(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
}

func tempCSV(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "us-states.csv")
	writeCSV(t, path, "state,date,cases\nAlabama,2020-03-01,5\n")
	return path
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return cond()
}

func TestDebouncer_CoalescesRapidTriggers(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)

	var calls atomic.Int32
	for i := 0; i < 10; i++ {
		d.Trigger(func() { calls.Add(1) })
		time.Sleep(5 * time.Millisecond)
	}
	time.Sleep(150 * time.Millisecond)

	if n := calls.Load(); n != 1 {
		t.Errorf("expected 1 callback invocation, got %d", n)
	}
}

func TestDebouncer_Cancel(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)

	var called atomic.Bool
	d.Trigger(func() { called.Store(true) })
	d.Cancel()
	time.Sleep(100 * time.Millisecond)

	if called.Load() {
		t.Error("callback should not run after cancel")
	}
}

func TestDebouncer_DefaultDuration(t *testing.T) {
	if d := NewDebouncer(0); d.Duration() != DefaultDebounceDuration {
		t.Errorf("expected default duration %v, got %v", DefaultDebounceDuration, d.Duration())
	}
}

func TestWatcher_DetectsFileChange(t *testing.T) {
	for _, poll := range []bool{false, true} {
		name := "fsnotify"
		if poll {
			name = "polling"
		}
		t.Run(name, func(t *testing.T) {
			path := tempCSV(t)

			var changed atomic.Bool
			w, err := NewWatcher(path,
				WithDebounce(30*time.Millisecond),
				WithPollInterval(40*time.Millisecond),
				WithForcePoll(poll),
				WithOnChange(func(Fingerprint) { changed.Store(true) }),
			)
			if err != nil {
				t.Fatal(err)
			}
			if err := w.Start(); err != nil {
				t.Fatal(err)
			}
			defer w.Stop()

			if poll && !w.IsPolling() {
				t.Fatal("expected polling mode")
			}

			time.Sleep(60 * time.Millisecond)
			writeCSV(t, path, "state,date,cases\nAlabama,2020-03-01,5\nAlabama,2020-03-02,9\n")

			if !waitFor(t, 2*time.Second, changed.Load) {
				t.Error("expected change to be detected")
			}
		})
	}
}

func TestWatcher_ChangedChannel(t *testing.T) {
	path := tempCSV(t)
	w, err := NewWatcher(path,
		WithDebounce(20*time.Millisecond),
		WithPollInterval(30*time.Millisecond),
		WithForcePoll(true),
	)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	go func() {
		time.Sleep(50 * time.Millisecond)
		os.WriteFile(path, []byte("state,date,cases\nAlaska,2020-03-01,1\nAlaska,2020-03-02,2\n"), 0644)
	}()

	select {
	case <-w.Changed():
	case <-time.After(2 * time.Second):
		t.Error("timeout waiting for change notification")
	}
}

func TestWatcher_EnvForcePoll(t *testing.T) {
	t.Setenv("CASEDASH_FORCE_POLL", "yes")

	w, err := NewWatcher(tempCSV(t))
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if !w.IsPolling() {
		t.Fatal("expected polling when CASEDASH_FORCE_POLL is set")
	}
}

func TestWatcher_RemoteFilesystem_UsesPolling(t *testing.T) {
	orig := detectFilesystemTypeFunc
	detectFilesystemTypeFunc = func(string) FilesystemType { return FSTypeNFS }
	t.Cleanup(func() { detectFilesystemTypeFunc = orig })

	w, err := NewWatcher(tempCSV(t), WithPollInterval(25*time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if !w.IsPolling() {
		t.Fatal("expected polling on remote filesystem")
	}
}

func TestWatcher_FileRemoved(t *testing.T) {
	path := tempCSV(t)

	var (
		mu  sync.Mutex
		got error
	)
	w, err := NewWatcher(path,
		WithPollInterval(30*time.Millisecond),
		WithForcePoll(true),
		WithOnError(func(err error) {
			mu.Lock()
			got = err
			mu.Unlock()
		}),
	)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	ok := waitFor(t, 2*time.Second, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return errors.Is(got, ErrFileRemoved)
	})
	if !ok {
		t.Errorf("expected ErrFileRemoved, got %v", got)
	}
}

func TestWatcher_StartStop(t *testing.T) {
	path := tempCSV(t)
	w, err := NewWatcher(path)
	if err != nil {
		t.Fatal(err)
	}
	if !w.Current().IsZero() {
		t.Fatal("no version should be recorded before Start")
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	if w.Current().IsZero() {
		t.Error("Start should record the current version")
	}
	if err := w.Start(); !errors.Is(err, ErrAlreadyStarted) {
		t.Errorf("second Start = %v, want ErrAlreadyStarted", err)
	}
	w.Stop()
	w.Stop()

	// a check after Stop reports nothing
	writeCSV(t, path, "state,date,cases\nAlabama,2020-03-01,5\nAlaska,2020-03-01,1\n")
	w.check()
	if w.Changes() != 0 {
		t.Errorf("changes after Stop = %d", w.Changes())
	}

	if err := w.Start(); err != nil {
		t.Fatalf("restart: %v", err)
	}
	w.Stop()
}

func TestNewWatcher_RejectsDirectory(t *testing.T) {
	if _, err := NewWatcher(t.TempDir()); err == nil {
		t.Error("expected error for a directory")
	}
	// a file that does not exist yet is fine
	if _, err := NewWatcher(filepath.Join(t.TempDir(), "later.csv")); err != nil {
		t.Errorf("missing file: %v", err)
	}
}

func TestWatcher_CheckReportsEachVersionOnce(t *testing.T) {
	path := tempCSV(t)

	var (
		mu   sync.Mutex
		seen []Fingerprint
		errs []error
	)
	w, err := NewWatcher(path,
		WithPollInterval(time.Hour),
		WithForcePoll(true),
		WithOnChange(func(fp Fingerprint) {
			mu.Lock()
			seen = append(seen, fp)
			mu.Unlock()
		}),
		WithOnError(func(err error) {
			mu.Lock()
			errs = append(errs, err)
			mu.Unlock()
		}),
	)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	// unchanged file
	w.check()
	if len(seen) != 0 {
		t.Fatalf("unchanged file reported: %v", seen)
	}

	writeCSV(t, path, "state,date,cases\nAlabama,2020-03-01,5\nAlabama,2020-03-02,9\n")
	w.check()
	w.check()
	if len(seen) != 1 || !seen[0].Same(w.Current()) {
		t.Fatalf("one new version should be reported once, got %v", seen)
	}

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	w.check()
	w.check()
	if len(errs) != 1 || !errors.Is(errs[0], ErrFileRemoved) {
		t.Fatalf("removal should be reported once, got %v", errs)
	}

	// the same content written back is a new version
	writeCSV(t, path, "state,date,cases\nAlabama,2020-03-01,5\nAlabama,2020-03-02,9\n")
	w.check()
	if len(seen) != 2 || w.Changes() != 2 {
		t.Errorf("recreated file: seen=%d changes=%d, want 2", len(seen), w.Changes())
	}
	select {
	case <-w.Changed():
	default:
		t.Error("Changed should hold a pending signal")
	}
}

func TestWatcher_AtomicReplace(t *testing.T) {
	path := tempCSV(t)

	var (
		changes atomic.Int32
		removed atomic.Bool
	)
	w, err := NewWatcher(path,
		WithDebounce(50*time.Millisecond),
		WithOnChange(func(Fingerprint) { changes.Add(1) }),
		WithOnError(func(err error) {
			if errors.Is(err, ErrFileRemoved) {
				removed.Store(true)
			}
		}),
	)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()
	if w.IsPolling() {
		t.Skip("fsnotify unavailable here")
	}

	tmp := filepath.Join(filepath.Dir(path), ".us-states.csv.tmp")
	writeCSV(t, tmp, testutil.ToCSV(testutil.Small()))
	if err := os.Rename(tmp, path); err != nil {
		t.Fatal(err)
	}

	if !waitFor(t, 2*time.Second, func() bool { return changes.Load() == 1 }) {
		t.Fatalf("changes = %d, want 1", changes.Load())
	}
	time.Sleep(150 * time.Millisecond)
	if n := changes.Load(); n != 1 {
		t.Errorf("changes = %d after settling, want 1", n)
	}
	if removed.Load() {
		t.Error("a rename over the file is not a removal")
	}
}

func TestFingerprint(t *testing.T) {
	now := time.Now()
	a := Fingerprint{ModTime: now, Size: 10}
	if !a.Same(Fingerprint{ModTime: now.UTC(), Size: 10}) {
		t.Error("same instant in another zone should match")
	}
	if a.Same(Fingerprint{ModTime: now, Size: 11}) || a.Same(Fingerprint{ModTime: now.Add(time.Second), Size: 10}) {
		t.Error("size or time difference should not match")
	}
	if !(Fingerprint{}).IsZero() || (Fingerprint{}).String() != "absent" {
		t.Error("zero fingerprint should read as absent")
	}
}

func TestWatcher_PathIsAbsolute(t *testing.T) {
	w, err := NewWatcher("us-states.csv")
	if err != nil {
		t.Fatal(err)
	}
	if !filepath.IsAbs(w.Path()) {
		t.Errorf("path %q is not absolute", w.Path())
	}
}

func TestFilesystemType_String(t *testing.T) {
	tests := []struct {
		fsType   FilesystemType
		expected string
	}{
		{FSTypeUnknown, "unknown"},
		{FSTypeLocal, "local"},
		{FSTypeNFS, "nfs"},
		{FSTypeSMB, "smb"},
		{FSTypeSSHFS, "sshfs"},
		{FSTypeFUSE, "fuse"},
		{FilesystemType(99), "unknown"},
	}
	for _, tc := range tests {
		if got := tc.fsType.String(); got != tc.expected {
			t.Errorf("FilesystemType(%d).String() = %q, expected %q", tc.fsType, got, tc.expected)
		}
	}
}

func TestDetectFilesystemType(t *testing.T) {
	if got := DetectFilesystemType(""); got != FSTypeUnknown {
		t.Errorf("empty path = %v, want unknown", got)
	}
	// falls back to the parent directory; must not panic
	_ = DetectFilesystemType(filepath.Join(t.TempDir(), "missing.csv"))
}

func TestEnvBool(t *testing.T) {
	tests := []struct {
		value    string
		expected bool
	}{
		{"1", true},
		{"true", true},
		{"YES", true},
		{"on", true},
		{"0", false},
		{"no", false},
		{"", false},
		{"invalid", false},
	}
	for _, tc := range tests {
		t.Run(tc.value, func(t *testing.T) {
			t.Setenv("TEST_ENV_BOOL", tc.value)
			if got := envBool("TEST_ENV_BOOL"); got != tc.expected {
				t.Errorf("envBool(%q) = %v, expected %v", tc.value, got, tc.expected)
			}
		})
	}
}

func TestReloader_LoadsNewData(t *testing.T) {
	path := tempCSV(t)

	var (
		mu     sync.Mutex
		states []string
	)
	r, err := NewReloader(path,
		func(p string) (*dataset.Store, error) { return datasource.Load(p, datasource.Options{}) },
		func(s *dataset.Store) {
			mu.Lock()
			states = s.States()
			mu.Unlock()
		},
		nil,
		WithDebounce(20*time.Millisecond),
		WithPollInterval(30*time.Millisecond),
		WithForcePoll(true),
	)
	if err != nil {
		t.Fatal(err)
	}
	if err := r.Start(); err != nil {
		t.Fatal(err)
	}
	defer r.Stop()

	time.Sleep(50 * time.Millisecond)
	recs := testutil.Small()
	writeCSV(t, path, testutil.ToCSV(recs))

	ok := waitFor(t, 2*time.Second, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(states) == 3
	})
	if !ok {
		t.Fatalf("reload not observed, states = %v", states)
	}
	if r.Reloads() < 1 || r.Last() == nil {
		t.Errorf("reloads = %d, last = %v", r.Reloads(), r.Last())
	}
}

func TestReloader_KeepsStoreOnError(t *testing.T) {
	path := tempCSV(t)

	var failures atomic.Int32
	r, err := NewReloader(path,
		func(p string) (*dataset.Store, error) { return datasource.Load(p, datasource.Options{}) },
		nil,
		func(error) { failures.Add(1) },
		WithDebounce(20*time.Millisecond),
		WithPollInterval(30*time.Millisecond),
		WithForcePoll(true),
	)
	if err != nil {
		t.Fatal(err)
	}
	if err := r.Start(); err != nil {
		t.Fatal(err)
	}
	defer r.Stop()

	time.Sleep(50 * time.Millisecond)
	writeCSV(t, path, "state,date,cases\nAlabama,not-a-date,5\n")

	if !waitFor(t, 2*time.Second, func() bool { return failures.Load() > 0 }) {
		t.Fatal("expected load failure to be reported")
	}
	if r.Reloads() != 0 || r.Last() != nil {
		t.Errorf("failed load should not replace the store")
	}
}

func TestNewReloader_RequiresLoad(t *testing.T) {
	if _, err := NewReloader("x.csv", nil, nil, nil); err == nil {
		t.Error("expected error without load func")
	}
}
