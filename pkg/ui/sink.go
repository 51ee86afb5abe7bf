package ui

import (
	"github.com/vanderheijden86/casedash/pkg/dashboard"
	"github.com/vanderheijden86/casedash/pkg/debug"
	"github.com/vanderheijden86/casedash/pkg/model"
)

// Sink is the TUI's data source. The dashboard pushes visible rows into it
// and the chart panel draws only what the sink holds. It is shared by
// pointer so copies of the bubbletea Model see the same rows.
type Sink struct {
	handle  dashboard.Handle
	rows    []model.CaseRecord
	creates int
	updates int
}

// CreateDataSource stores the initial rows and issues a new handle.
func (s *Sink) CreateDataSource(rows []model.CaseRecord) dashboard.Handle {
	s.creates++
	s.handle = dashboard.Handle(s.creates)
	s.rows = rows
	return s.handle
}

// UpdateDataSource replaces the rows for the current handle. Updates for a
// stale handle, left over from before a reload, are ignored.
func (s *Sink) UpdateDataSource(h dashboard.Handle, rows []model.CaseRecord) {
	if h != s.handle {
		debug.Log("ui: ignoring update for stale source %d (current %d)", h, s.handle)
		return
	}
	s.updates++
	s.rows = rows
}

// Rows returns the current data source contents.
func (s *Sink) Rows() []model.CaseRecord { return s.rows }

// Updates returns how many updates were applied.
func (s *Sink) Updates() int { return s.updates }

// Handle returns the current data source handle.
func (s *Sink) Handle() dashboard.Handle { return s.handle }
