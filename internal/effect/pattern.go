package effect

import (
	"context"
	"time"

	"github.com/coreman2200/funtimes-ledfader/model"
)

// ChaseHold is how long a finished chase stays up.
const ChaseHold = 200 * time.Millisecond

// RainbowFrames is the length of one rainbow cycle.
const RainbowFrames = 255

// ColorChase lights pixel 0 through N-1 one at a time, waiting wait before
// each flush, then holds for ChaseHold.
func (f *Fader) ColorChase(ctx context.Context, c model.Color, wait time.Duration) error {
	for i := 0; i < f.strip.Len(); i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := f.strip.Set(i, c); err != nil {
			return err
		}
		f.sleep(wait)
		if err := f.strip.Show(); err != nil {
			return err
		}
	}
	f.sleep(ChaseHold)
	return nil
}

// RainbowCycle spreads the color wheel over the strip and rotates it one
// position per frame.
func (f *Fader) RainbowCycle(ctx context.Context, wait time.Duration) error {
	n := f.strip.Len()
	for j := 0; j < RainbowFrames; j++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		for i := 0; i < n; i++ {
			if err := f.strip.Set(i, RainbowAt(i, j, n)); err != nil {
				return err
			}
		}
		if err := f.strip.Show(); err != nil {
			return err
		}
		f.sleep(wait)
	}
	return nil
}

// RainbowAt is pixel i of n in rainbow frame j.
func RainbowAt(i, j, n int) model.Color {
	return model.Wheel((i*256/n + j) & 255)
}
