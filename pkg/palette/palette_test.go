package palette

import (
	"fmt"
	"image/color"
	"reflect"
	"testing"

	"pgregory.net/rapid"
)

func TestDefaultPaletteSizeAndDistinct(t *testing.T) {
	p := Default()
	if len(p) != 60 {
		t.Fatalf("len(Default()) = %d, want 60", len(p))
	}
	if err := p.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	seen := map[string]bool{}
	for _, c := range p {
		if seen[c] {
			t.Errorf("duplicate colour %s", c)
		}
		seen[c] = true
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name string
		p    Palette
	}{
		{"too small", Default()[:MinSize-1]},
		{"bad hex", append(Default()[:MinSize-1:MinSize-1], "not-a-colour")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.p.Validate(); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestAssignDeterministicAndSorted(t *testing.T) {
	p := Default()
	a := Assign([]string{"Texas", "Alaska", "Alabama", "Alaska"}, p)
	b := Assign([]string{"Alabama", "Texas", "Alaska"}, p)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("Assign not deterministic: %v vs %v", a, b)
	}
	want := map[string]string{"Alabama": p[0], "Alaska": p[1], "Texas": p[2]}
	if !reflect.DeepEqual(a, want) {
		t.Errorf("Assign = %v, want %v", a, want)
	}
}

func TestAssignCycles(t *testing.T) {
	p := Default()
	states := make([]string, len(p)+3)
	for i := range states {
		states[i] = fmt.Sprintf("S%03d", i)
	}
	got := Assign(states, p)
	if len(got) != len(states) {
		t.Fatalf("got %d assignments, want %d", len(got), len(states))
	}
	if got["S060"] != p[0] || got["S062"] != p[2] {
		t.Errorf("expected cycling: S060=%s S062=%s", got["S060"], got["S062"])
	}
}

func TestRGBAAndTextOn(t *testing.T) {
	if got := RGBA("#1f77b4"); got != (color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 255}) {
		t.Errorf("RGBA = %+v", got)
	}
	if got := RGBA("bogus"); got.A != 255 {
		t.Errorf("invalid colour should still be opaque, got %+v", got)
	}
	if TextOn("#ffffff") != "#000000" {
		t.Error("white background should use black text")
	}
	if TextOn("#393b79") != "#ffffff" {
		t.Error("dark background should use white text")
	}
}

func TestAssignProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		states := rapid.SliceOf(rapid.StringMatching(`[A-Z][a-z]{2,8}`)).Draw(t, "states")
		p := Default()

		a := Assign(states, p)
		// reversed input gives the same map
		rev := make([]string, len(states))
		for i, s := range states {
			rev[len(states)-1-i] = s
		}
		if b := Assign(rev, p); !reflect.DeepEqual(a, b) {
			t.Fatalf("Assign depends on input order")
		}
		distinct := map[string]bool{}
		for _, s := range states {
			distinct[s] = true
			if a[s] == "" {
				t.Fatalf("state %q has no colour", s)
			}
		}
		if len(a) != len(distinct) {
			t.Fatalf("len(Assign) = %d, want %d", len(a), len(distinct))
		}
		if len(distinct) <= len(p) {
			used := map[string]bool{}
			for _, c := range a {
				if used[c] {
					t.Fatalf("colour %s reused with only %d states", c, len(distinct))
				}
				used[c] = true
			}
		}
	})
}
