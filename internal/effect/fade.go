// Package effect animates a strip: linear fades between two colors and the
// chase and rainbow patterns.
package effect

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-ledfader/model"
)

// Strip is the part of led.Strip the effects draw on.
type Strip interface {
	Len() int
	Set(i int, c model.Color) error
	Show() error
	FillAndShow(c model.Color) error
}

// Fader steps a whole strip from one color to another. A fade always runs to
// completion.
type Fader struct {
	strip Strip
	sleep func(time.Duration)
}

// NewFader draws on s. A nil sleep uses time.Sleep.
func NewFader(s Strip, sleep func(time.Duration)) *Fader {
	if sleep == nil {
		sleep = time.Sleep
	}
	return &Fader{strip: s, sleep: sleep}
}

// delta is the per channel step, truncated toward zero.
type delta struct{ r, g, b int }

func stepOf(from, to model.Color, steps int) delta {
	return delta{
		r: (int(to.R) - int(from.R)) / steps,
		g: (int(to.G) - int(from.G)) / steps,
		b: (int(to.B) - int(from.B)) / steps,
	}
}

func (d delta) at(from model.Color, k int) model.Color {
	return model.Color{
		R: clamp(int(from.R) + k*d.r),
		G: clamp(int(from.G) + k*d.g),
		B: clamp(int(from.B) + k*d.b),
	}
}

func clamp(v int) uint8 {
	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	}
	return uint8(v)
}

func checkSteps(steps int) error {
	if steps <= 0 {
		return fmt.Errorf("%w: fade needs at least one step, got %d", model.ErrConfiguration, steps)
	}
	return nil
}

// Fade shows from+k*delta for k = 1..steps, sleeping delay after each
// frame. When steps does not divide the distance the last frame falls short
// of to by the remainder.
func (f *Fader) Fade(from, to model.Color, steps int, delay time.Duration) error {
	if err := checkSteps(steps); err != nil {
		return err
	}
	d := stepOf(from, to, steps)
	for k := 1; k <= steps; k++ {
		if err := f.strip.FillAndShow(d.at(from, k)); err != nil {
			return err
		}
		f.sleep(delay)
	}
	return nil
}

// FadeIn fades from black up to c and then holds for one more delay. The
// strip is left lit.
func (f *Fader) FadeIn(c model.Color, steps int, delay time.Duration) error {
	log.Debug().Stringer("color", c).Int("steps", steps).Msg("fade in")
	if err := f.Fade(model.Black, c, steps, delay); err != nil {
		return err
	}
	f.sleep(delay)
	return nil
}

// FadeOut starts at c itself and steps toward black for steps frames, then
// blanks the strip and holds for one more delay.
func (f *Fader) FadeOut(c model.Color, steps int, delay time.Duration) error {
	if err := checkSteps(steps); err != nil {
		return err
	}
	log.Debug().Stringer("color", c).Int("steps", steps).Msg("fade out")
	d := stepOf(c, model.Black, steps)
	for j := 0; j < steps; j++ {
		if err := f.strip.FillAndShow(d.at(c, j)); err != nil {
			return err
		}
		f.sleep(delay)
	}
	if err := f.strip.FillAndShow(model.Black); err != nil {
		return err
	}
	f.sleep(delay)
	return nil
}
