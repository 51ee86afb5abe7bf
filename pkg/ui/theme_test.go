package ui

import (
	"testing"

	"github.com/charmbracelet/colorprofile"
	"github.com/charmbracelet/lipgloss"
)

func TestStateChipContrast(t *testing.T) {
	saved := TermProfile
	t.Cleanup(func() { TermProfile = saved })
	th := TestTheme()

	TermProfile = colorprofile.TrueColor
	tests := []struct {
		bg, fg string
	}{
		{"#ffffff", "#000000"},
		{"#dbdb8d", "#000000"},
		{"#393b79", "#ffffff"},
		{"#d62728", "#ffffff"},
	}
	for _, tt := range tests {
		s := th.StateChip(tt.bg)
		if got := s.GetBackground(); got != lipgloss.Color(tt.bg) {
			t.Errorf("StateChip(%s) background = %v", tt.bg, got)
		}
		if got := s.GetForeground(); got != lipgloss.Color(tt.fg) {
			t.Errorf("StateChip(%s) foreground = %v, want %s", tt.bg, got, tt.fg)
		}
	}

	TermProfile = colorprofile.ANSI
	if got := th.StateChip("#393b79").GetBackground(); got != th.Cursor.GetBackground() {
		t.Errorf("low-colour chip background = %v, want cursor style", got)
	}
}
