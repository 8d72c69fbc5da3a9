package model

import "fmt"

// Palette is the ordered list of colors a button press steps through.
type Palette []Color

// DefaultPalette is the demo cycle: warm morning light, white, purple, blue.
func DefaultPalette() Palette {
	return Palette{Morning, White, Purple, Blue}
}

// ParsePalette converts hex strings into a Palette. An empty list is a
// configuration error.
func ParsePalette(hex []string) (Palette, error) {
	if len(hex) == 0 {
		return nil, fmt.Errorf("%w: empty palette", ErrConfiguration)
	}
	p := make(Palette, 0, len(hex))
	for _, h := range hex {
		c, err := ParseHex(h)
		if err != nil {
			return nil, err
		}
		p = append(p, c)
	}
	return p, nil
}

// Next returns the index following i, wrapping at the end.
func (p Palette) Next(i int) int {
	if len(p) == 0 {
		return 0
	}
	return (i + 1) % len(p)
}

// Hex renders the palette back into the form ParsePalette reads.
func (p Palette) Hex() []string {
	out := make([]string, len(p))
	for i, c := range p {
		out[i] = c.String()
	}
	return out
}
