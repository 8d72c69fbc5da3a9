package effect_test

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/coreman2200/funtimes-ledfader/internal/effect"
	"github.com/coreman2200/funtimes-ledfader/internal/led"
	"github.com/coreman2200/funtimes-ledfader/model"
)

type sleeps struct {
	calls []time.Duration
}

func (s *sleeps) Sleep(d time.Duration) { s.calls = append(s.calls, d) }

func newFader(t *testing.T, n int) (*Fader, *led.Recorder, *sleeps) {
	t.Helper()
	cfg := led.DefaultStripConfig()
	cfg.LEDCount = n
	cfg.Brightness = 1
	cfg.Sleep = func(time.Duration) {}
	rec := &led.Recorder{}
	strip, err := led.NewStrip(cfg, rec)
	require.NoError(t, err)
	sl := &sleeps{}
	return NewFader(strip, sl.Sleep), rec, sl
}

// shown returns the first pixel of every recorded frame.
func shown(t *testing.T, rec *led.Recorder) []model.Color {
	t.Helper()
	var out []model.Color
	for _, f := range rec.Frames() {
		colors, err := f.Colors()
		require.NoError(t, err)
		out = append(out, colors[0])
	}
	return out
}

func reds(vals ...uint8) []model.Color {
	out := make([]model.Color, len(vals))
	for i, v := range vals {
		out[i] = model.Color{R: v}
	}
	return out
}

var TestFadeSequences = []struct {
	Steps  int
	Expect []model.Color
}{
	{10, reds(10, 20, 30, 40, 50, 60, 70, 80, 90, 100)},
	{7, reds(14, 28, 42, 56, 70, 84, 98)},
	{1, reds(100)},
}

func TestFade(t *testing.T) {
	for _, v := range TestFadeSequences {
		t.Run("steps "+strconv.Itoa(v.Steps), func(t *testing.T) {
			f, rec, sl := newFader(t, 2)
			require.NoError(t, f.Fade(model.Black, model.Color{R: 100}, v.Steps, 5*time.Millisecond))
			assert.Equal(t, v.Expect, shown(t, rec))
			assert.Len(t, sl.calls, v.Steps)
		})
	}
}

func TestFadeDown(t *testing.T) {
	f, rec, _ := newFader(t, 1)
	require.NoError(t, f.Fade(model.Color{R: 100, G: 50}, model.Color{G: 80}, 4, 0))
	assert.Equal(t, []model.Color{
		{R: 75, G: 57},
		{R: 50, G: 64},
		{R: 25, G: 71},
		{R: 0, G: 78},
	}, shown(t, rec))
}

func TestFadeRejectsZeroSteps(t *testing.T) {
	f, rec, _ := newFader(t, 1)
	assert.ErrorIs(t, f.Fade(model.Black, model.White, 0, 0), model.ErrConfiguration)
	assert.ErrorIs(t, f.FadeIn(model.White, 0, 0), model.ErrConfiguration)
	assert.ErrorIs(t, f.FadeOut(model.White, -1, 0), model.ErrConfiguration)
	assert.Empty(t, rec.Frames())
}

func TestFadeInHoldsAndStaysLit(t *testing.T) {
	f, rec, sl := newFader(t, 3)
	require.NoError(t, f.FadeIn(model.Color{R: 100}, 10, 50*time.Millisecond))

	got := shown(t, rec)
	require.Len(t, got, 10)
	assert.Equal(t, model.Color{R: 100}, got[9])
	for _, c := range got {
		assert.NotEqual(t, model.Black, c)
	}
	assert.Len(t, sl.calls, 11)
}

func TestFadeOutEndsBlack(t *testing.T) {
	f, rec, sl := newFader(t, 3)
	require.NoError(t, f.FadeOut(model.Color{R: 100}, 10, 50*time.Millisecond))

	got := shown(t, rec)
	assert.Equal(t, append(reds(100, 90, 80, 70, 60, 50, 40, 30, 20, 10), model.Black), got)
	assert.Len(t, sl.calls, 11)

	last, _ := rec.Last()
	colors, _ := last.Colors()
	assert.Equal(t, []model.Color{model.Black, model.Black, model.Black}, colors)
}

func TestColorChase(t *testing.T) {
	f, rec, sl := newFader(t, 3)
	require.NoError(t, f.ColorChase(context.Background(), model.Green, time.Millisecond))

	frames := rec.Frames()
	require.Len(t, frames, 3)
	colors, _ := frames[1].Colors()
	assert.Equal(t, []model.Color{model.Green, model.Green, model.Black}, colors)
	assert.Equal(t, ChaseHold, sl.calls[len(sl.calls)-1])
}

func TestRainbowCycle(t *testing.T) {
	f, rec, _ := newFader(t, 4)
	require.NoError(t, f.RainbowCycle(context.Background(), 0))

	frames := rec.Frames()
	require.Len(t, frames, RainbowFrames)
	first, _ := frames[0].Colors()
	assert.Equal(t, []model.Color{model.Wheel(0), model.Wheel(64), model.Wheel(128), model.Wheel(192)}, first)
	assert.Equal(t, model.Wheel(1), RainbowAt(0, 1, 4))
	assert.Equal(t, model.Wheel(1), RainbowAt(3, 65, 4))
}

func TestRainbowCycleStopsOnCancel(t *testing.T) {
	f, rec, _ := newFader(t, 2)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, f.RainbowCycle(ctx, 0), context.Canceled)
	assert.Empty(t, rec.Frames())
}
