package effect

import (
	"context"
	"fmt"
	"time"

	"github.com/coreman2200/funtimes-ledfader/model"
)

// TestKind names a wiring check pattern.
type TestKind string

const (
	// IndexSweep walks one white pixel from 0 to N-1.
	IndexSweep TestKind = "sweep"
	// RGBChannels shows the whole strip red, then green, then blue.
	RGBChannels TestKind = "rgb"
)

// SelfTest runs a wiring check pattern, holding each frame for wait, and
// leaves the strip off.
func (f *Fader) SelfTest(ctx context.Context, kind TestKind, wait time.Duration) error {
	switch kind {
	case IndexSweep:
		for i := 0; i < f.strip.Len(); i++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := f.frame(func(j int) model.Color {
				if j == i {
					return model.White
				}
				return model.Black
			}); err != nil {
				return err
			}
			f.sleep(wait)
		}
	case RGBChannels:
		for _, c := range []model.Color{model.Red, model.Green, model.Blue} {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := f.strip.FillAndShow(c); err != nil {
				return err
			}
			f.sleep(wait)
		}
	default:
		return fmt.Errorf("%w: unknown self test %q", model.ErrConfiguration, kind)
	}
	return f.strip.FillAndShow(model.Black)
}

func (f *Fader) frame(at func(i int) model.Color) error {
	for i := 0; i < f.strip.Len(); i++ {
		if err := f.strip.Set(i, at(i)); err != nil {
			return err
		}
	}
	return f.strip.Show()
}
