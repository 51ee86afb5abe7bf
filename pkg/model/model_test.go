package model

import (
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"pgregory.net/rapid"
)

func TestOrdinalKnownDates(t *testing.T) {
	tests := []struct {
		date string
		want int
	}{
		{"0001-01-01", 1},
		{"1970-01-01", 719163},
		{"2020-01-21", 737445},
		{"2020-03-01", 737485},
		{"2020-12-31", 737790},
	}
	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			d, err := time.Parse(DateLayout, tt.date)
			if err != nil {
				t.Fatal(err)
			}
			if got := Ordinal(d); got != tt.want {
				t.Errorf("Ordinal(%s) = %d, want %d", tt.date, got, tt.want)
			}
			if back := DateFromOrdinal(tt.want).Format(DateLayout); back != tt.date {
				t.Errorf("DateFromOrdinal(%d) = %s, want %s", tt.want, back, tt.date)
			}
		})
	}
}

func TestOrdinalIgnoresTimeOfDay(t *testing.T) {
	morning := time.Date(2020, 3, 1, 0, 0, 0, 0, time.UTC)
	evening := time.Date(2020, 3, 1, 23, 59, 59, 0, time.UTC)
	if Ordinal(morning) != Ordinal(evening) {
		t.Errorf("same calendar day gave different ordinals: %d vs %d", Ordinal(morning), Ordinal(evening))
	}
	if Ordinal(evening)+1 != Ordinal(evening.Add(time.Second)) {
		t.Error("next day should be ordinal+1")
	}
}

func TestSelectionCloneDoesNotAlias(t *testing.T) {
	s := NewSelection([]string{"Alaska", "Alabama"}, time.Time{}, time.Time{}, 0)
	c := s.Clone()
	delete(c.States, "Alaska")
	if !s.Has("Alaska") {
		t.Fatal("clone mutation leaked into original")
	}
	if got := s.StateList(); strings.Join(got, ",") != "Alabama,Alaska" {
		t.Errorf("StateList = %v", got)
	}
}

func TestErrorsMessagesAndUnwrap(t *testing.T) {
	err := &DataLoadError{Source: "us-states.csv", Line: 3, Column: "date", Err: io.ErrUnexpectedEOF}
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Error("DataLoadError should unwrap to its cause")
	}
	if !strings.Contains(err.Error(), "line 3") || !strings.Contains(err.Error(), `"date"`) {
		t.Errorf("unexpected message %q", err.Error())
	}

	var verr error = &ValidationError{Line: 7, Field: "cases", Value: "-4", Reason: "must not be negative"}
	var target *ValidationError
	if !errors.As(verr, &target) || target.Field != "cases" {
		t.Errorf("errors.As failed for %v", verr)
	}
}

func TestOrdinalRoundTripProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 3_000_000).Draw(t, "ordinal")
		d := DateFromOrdinal(n)
		if got := Ordinal(d); got != n {
			t.Fatalf("Ordinal(DateFromOrdinal(%d)) = %d", n, got)
		}
		if Ordinal(d.AddDate(0, 0, 1)) != n+1 {
			t.Fatalf("ordinal of the next day is not %d", n+1)
		}
		hour := rapid.IntRange(0, 23).Draw(t, "hour")
		if Ordinal(d.Add(time.Duration(hour)*time.Hour)) != n {
			t.Fatalf("time of day changed the ordinal of %s", d.Format(DateLayout))
		}
	})
}
