// Package watcher follows the case table on disk and reports each new
// version of it. Events for the file are coalesced and then confirmed
// against a stat fingerprint, so an atomic replace (write to a temp file,
// rename over the table) yields one change and no spurious removal.
// Remote filesystems, where inotify is unreliable, are polled.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/vanderheijden86/casedash/pkg/debug"
)

// DefaultPollInterval is how often a polled data file is stat'ed.
const DefaultPollInterval = 2 * time.Second

var (
	ErrFileRemoved    = errors.New("data file was removed")
	ErrPermission     = errors.New("data file is not readable")
	ErrAlreadyStarted = errors.New("watcher already started")
)

// Fingerprint identifies one written version of the data file.
type Fingerprint struct {
	ModTime time.Time
	Size    int64
}

// IsZero reports whether no version has been seen.
func (f Fingerprint) IsZero() bool { return f.ModTime.IsZero() && f.Size == 0 }

// Same reports whether f and o describe the same version.
func (f Fingerprint) Same(o Fingerprint) bool {
	return f.Size == o.Size && f.ModTime.Equal(o.ModTime)
}

func (f Fingerprint) String() string {
	if f.IsZero() {
		return "absent"
	}
	return fmt.Sprintf("%d bytes, modified %s", f.Size, f.ModTime.Format(time.RFC3339))
}

func fingerprint(path string) (Fingerprint, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Fingerprint{}, err
	}
	return Fingerprint{ModTime: info.ModTime(), Size: info.Size()}, nil
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets how long events must settle before the file is checked.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// WithPollInterval sets the stat interval used in polling mode.
func WithPollInterval(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.pollInterval = d
		}
	}
}

// WithForcePoll polls even where fsnotify would work.
func WithForcePoll(force bool) Option {
	return func(w *Watcher) { w.forcePoll = force }
}

// WithOnChange is called with the fingerprint of each new version.
func WithOnChange(fn func(Fingerprint)) Option {
	return func(w *Watcher) { w.onChange = fn }
}

// WithOnError is called when the file disappears or cannot be read. The
// last good version stays current.
func WithOnError(fn func(error)) Option {
	return func(w *Watcher) { w.onError = fn }
}

// Watcher reports new versions of one data file.
type Watcher struct {
	path         string
	debounce     time.Duration
	pollInterval time.Duration
	forcePoll    bool
	onChange     func(Fingerprint)
	onError      func(error)
	debouncer    *Debouncer
	changeCh     chan struct{}

	mu      sync.Mutex
	started bool
	polling bool
	fsType  FilesystemType
	current Fingerprint
	missing bool
	changes int
	fsw     *fsnotify.Watcher
	cancel  context.CancelFunc
}

// NewWatcher creates a watcher for the data file at path. The file may not
// exist yet, but path must not name a directory.
func NewWatcher(path string, opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	if info, err := os.Stat(abs); err == nil && info.IsDir() {
		return nil, fmt.Errorf("watch %s: is a directory", path)
	}

	w := &Watcher{
		path:         abs,
		debounce:     DefaultDebounceDuration,
		pollInterval: DefaultPollInterval,
		onChange:     func(Fingerprint) {},
		onError:      func(error) {},
		changeCh:     make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.debouncer = NewDebouncer(w.debounce)
	return w, nil
}

// Start records the current version and begins watching.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.started {
		return ErrAlreadyStarted
	}

	fp, err := fingerprint(w.path)
	switch {
	case os.IsPermission(err):
		return ErrPermission
	case err != nil:
		w.current, w.missing = Fingerprint{}, true
	default:
		w.current, w.missing = fp, false
	}

	w.fsType = DetectFilesystemType(w.path)
	w.polling = w.forcePoll || envBool("CASEDASH_FORCE_POLL") || isRemoteFilesystem(w.fsType)

	ctx, cancel := context.WithCancel(context.Background())
	if !w.polling {
		fsw, err := w.watchDir()
		if err != nil {
			debug.Log("watcher: fsnotify unavailable for %s, polling: %v", w.path, err)
			w.polling = true
		} else {
			w.fsw = fsw
			go w.runEvents(ctx, fsw.Events, fsw.Errors)
		}
	}
	if w.polling {
		go w.runPoll(ctx)
	}

	w.cancel = cancel
	w.started = true
	debug.Log("watcher: %s (%s) on %s filesystem, polling=%v", w.path, w.current, w.fsType, w.polling)
	return nil
}

// watchDir watches the parent directory so replacing the file by rename is
// seen.
func (w *Watcher) watchDir() (*fsnotify.Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		fsw.Close()
		return nil, err
	}
	return fsw, nil
}

// Stop stops watching. Changed stays open, so a pending receive blocks.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.started {
		return
	}
	w.cancel()
	if w.fsw != nil {
		w.fsw.Close()
		w.fsw = nil
	}
	w.debouncer.Cancel()
	w.started = false
}

// Path returns the absolute path of the data file.
func (w *Watcher) Path() string { return w.path }

// IsPolling reports whether the watcher polls instead of using fsnotify.
func (w *Watcher) IsPolling() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.polling
}

// Current returns the fingerprint of the last version seen.
func (w *Watcher) Current() Fingerprint {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current
}

// Changes returns how many new versions have been reported.
func (w *Watcher) Changes() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.changes
}

// Changed receives after each reported version. Bursts collapse into one
// pending signal.
func (w *Watcher) Changed() <-chan struct{} { return w.changeCh }

func (w *Watcher) runEvents(ctx context.Context, events <-chan fsnotify.Event, errs <-chan error) {
	base := filepath.Base(w.path)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) == base && ev.Op != fsnotify.Chmod {
				w.debouncer.Trigger(w.check)
			}
		case err, ok := <-errs:
			if !ok {
				return
			}
			w.onError(err)
		}
	}
}

func (w *Watcher) runPoll(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.check()
		}
	}
}

// check compares the file against the last version seen and reports a new
// version, a removal or a read failure. Each removal is reported once.
func (w *Watcher) check() {
	fp, err := fingerprint(w.path)

	w.mu.Lock()
	if !w.started {
		w.mu.Unlock()
		return
	}
	var report error
	changed := false
	switch {
	case os.IsNotExist(err):
		if !w.missing {
			w.missing = true
			report = ErrFileRemoved
		}
	case os.IsPermission(err):
		report = ErrPermission
	case err != nil:
		report = err
	case w.missing || !fp.Same(w.current):
		w.current, w.missing = fp, false
		w.changes++
		changed = true
	}
	w.mu.Unlock()

	if report != nil {
		debug.Log("watcher: %s: %v", w.path, report)
		w.onError(report)
	}
	if !changed {
		return
	}
	debug.Log("watcher: %s changed (%s)", w.path, fp)
	w.onChange(fp)
	select {
	case w.changeCh <- struct{}{}:
	default:
	}
}

func envBool(name string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(name))) {
	case "1", "true", "yes", "y", "on":
		return true
	}
	return false
}
