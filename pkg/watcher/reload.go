package watcher

import (
	"errors"
	"sync"

	"github.com/vanderheijden86/casedash/pkg/dataset"
	"github.com/vanderheijden86/casedash/pkg/debug"
)

// LoadFunc reads the data file into a store.
type LoadFunc func(path string) (*dataset.Store, error)

// Reloader re-reads the data file whenever it changes and hands each
// successfully loaded store to onReload. A failed load keeps the previous
// store and reports the error.
type Reloader struct {
	watcher  *Watcher
	load     LoadFunc
	onReload func(*dataset.Store)
	onError  func(error)

	mu      sync.Mutex
	reloads int
	last    *dataset.Store
}

// NewReloader creates a Reloader for path. Extra options configure the
// underlying Watcher; WithOnChange and WithOnError are set by the Reloader.
func NewReloader(path string, load LoadFunc, onReload func(*dataset.Store), onError func(error), opts ...Option) (*Reloader, error) {
	if load == nil {
		return nil, errors.New("watcher: load func is required")
	}
	if onReload == nil {
		onReload = func(*dataset.Store) {}
	}
	if onError == nil {
		onError = func(error) {}
	}
	r := &Reloader{load: load, onReload: onReload, onError: onError}

	opts = append(opts, WithOnChange(r.reload), WithOnError(onError))
	w, err := NewWatcher(path, opts...)
	if err != nil {
		return nil, err
	}
	r.watcher = w
	return r, nil
}

// Start begins watching.
func (r *Reloader) Start() error { return r.watcher.Start() }

// Stop stops watching.
func (r *Reloader) Stop() { r.watcher.Stop() }

// Watcher exposes the underlying file watcher.
func (r *Reloader) Watcher() *Watcher { return r.watcher }

// Reloads returns how many loads succeeded.
func (r *Reloader) Reloads() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.reloads
}

// Last returns the most recently loaded store, or nil.
func (r *Reloader) Last() *dataset.Store {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}

func (r *Reloader) reload(fp Fingerprint) {
	store, err := r.load(r.watcher.Path())
	if err != nil {
		debug.Log("watcher: reload of %s (%s) failed: %v", r.watcher.Path(), fp, err)
		r.onError(err)
		return
	}
	r.mu.Lock()
	r.reloads++
	r.last = store
	r.mu.Unlock()
	r.onReload(store)
}
