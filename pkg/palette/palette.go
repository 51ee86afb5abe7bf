// Package palette assigns stable categorical colours to state names.
package palette

import (
	"fmt"
	"image/color"
	"sort"

	"github.com/lucasb-eyer/go-colorful"
)

// MinSize is the smallest palette that covers every US state and territory
// without reuse.
const MinSize = 54

// Palette is an ordered list of #rrggbb colour tokens.
type Palette []string

var category20b = Palette{
	"#393b79", "#5254a3", "#6b6ecf", "#9c9ede", "#637939",
	"#8ca252", "#b5cf6b", "#cedb9c", "#8c6d31", "#bd9e39",
	"#e7ba52", "#e7cb94", "#843c39", "#ad494a", "#d6616b",
	"#e7969c", "#7b4173", "#a55194", "#ce6dbd", "#de9ed6",
}

var category20c = Palette{
	"#3182bd", "#6baed6", "#9ecae1", "#c6dbef", "#e6550d",
	"#fd8d3c", "#fdae6b", "#fdd0a2", "#31a354", "#74c476",
	"#a1d99b", "#c7e9c0", "#756bb1", "#9e9ac8", "#bcbddc",
	"#dadaeb", "#636363", "#969696", "#bdbdbd", "#d9d9d9",
}

var category20 = Palette{
	"#1f77b4", "#aec7e8", "#ff7f0e", "#ffbb78", "#2ca02c",
	"#98df8a", "#d62728", "#ff9896", "#9467bd", "#c5b0d5",
	"#8c564b", "#c49c94", "#e377c2", "#f7b6d2", "#7f7f7f",
	"#c7c7c7", "#bcbd22", "#dbdb8d", "#17becf", "#9edae5",
}

// Default returns the 60-colour palette (Category20b, Category20c, Category20).
func Default() Palette {
	out := make(Palette, 0, len(category20b)+len(category20c)+len(category20))
	out = append(out, category20b...)
	out = append(out, category20c...)
	out = append(out, category20...)
	return out
}

// Validate checks the palette is large enough and every entry is a hex colour.
func (p Palette) Validate() error {
	if len(p) < MinSize {
		return fmt.Errorf("palette has %d colours, need at least %d", len(p), MinSize)
	}
	for i, c := range p {
		if _, err := colorful.Hex(c); err != nil {
			return fmt.Errorf("palette entry %d (%q): %w", i, c, err)
		}
	}
	return nil
}

// At returns the colour for position i, cycling when i exceeds the palette.
func (p Palette) At(i int) string {
	return p[i%len(p)]
}

// Assign maps each distinct state to a colour. States are sorted
// lexicographically and zipped against p, so the result depends only on the
// set of names.
func Assign(states []string, p Palette) map[string]string {
	if len(p) == 0 {
		p = Default()
	}
	seen := make(map[string]struct{}, len(states))
	distinct := make([]string, 0, len(states))
	for _, s := range states {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		distinct = append(distinct, s)
	}
	sort.Strings(distinct)

	out := make(map[string]string, len(distinct))
	for i, s := range distinct {
		out[s] = p.At(i)
	}
	return out
}

// RGBA converts a colour token to an opaque color.RGBA. Invalid tokens map to
// mid grey.
func RGBA(hex string) color.RGBA {
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.RGBA{R: 128, G: 128, B: 128, A: 255}
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// TextOn picks black or white text for legibility on a hex background.
func TextOn(hex string) string {
	c, err := colorful.Hex(hex)
	if err != nil {
		return "#000000"
	}
	l, _, _ := c.Lab()
	if l > 0.6 {
		return "#000000"
	}
	return "#ffffff"
}
