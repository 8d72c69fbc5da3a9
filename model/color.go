package model

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"
)

// Color is a logical 8-bit RGB value. The strip's wire order never shows up
// here; reordering happens when a frame is encoded.
type Color struct {
	R, G, B uint8
}

var (
	Black   = Color{0, 0, 0}
	Red     = Color{255, 0, 0}
	Yellow  = Color{255, 150, 0}
	Green   = Color{0, 255, 0}
	Cyan    = Color{0, 255, 255}
	Blue    = Color{0, 0, 255}
	Purple  = Color{180, 0, 255}
	White   = Color{255, 255, 255}
	Morning = Color{65, 63, 20}
)

// RGBA implements color.Color, always opaque.
func (c Color) RGBA() (r, g, b, a uint32) {
	r = uint32(c.R) * 0x101
	g = uint32(c.G) * 0x101
	b = uint32(c.B) * 0x101
	return r, g, b, 0xffff
}

func (c Color) String() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// ParseHex reads "#rrggbb" (or the short "#rgb" form).
func ParseHex(s string) (Color, error) {
	cf, err := colorful.Hex(s)
	if err != nil {
		return Black, fmt.Errorf("%w: color %q: %v", ErrConfiguration, s, err)
	}
	r, g, b := cf.RGB255()
	return Color{r, g, b}, nil
}

// Wheel maps 0..255 onto a red -> green -> blue -> red ramp. Anything
// outside that range is black.
func Wheel(pos int) Color {
	switch {
	case pos < 0 || pos > 255:
		return Black
	case pos < 85:
		return Color{uint8(255 - pos*3), uint8(pos * 3), 0}
	case pos < 170:
		pos -= 85
		return Color{0, uint8(255 - pos*3), uint8(pos * 3)}
	default:
		pos -= 170
		return Color{uint8(pos * 3), 0, uint8(255 - pos*3)}
	}
}
