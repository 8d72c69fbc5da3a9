package led_test

import (
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/coreman2200/funtimes-ledfader/internal/led"
	"github.com/coreman2200/funtimes-ledfader/model"
)

var TestScaleTruncates = []struct {
	In         uint8
	Brightness float64
	Expect     uint8
}{
	{3, 0.2, 0},
	{5, 0.2, 1},
	{255, 0.5, 127},
	{255, 1.0, 255},
	{255, 0.0, 0},
	{100, 0.25, 25},
}

func TestScale(t *testing.T) {
	for _, v := range TestScaleTruncates {
		t.Run(strconv.Itoa(int(v.In))+"@"+strconv.FormatFloat(v.Brightness, 'f', 2, 64), func(t *testing.T) {
			assert.Equal(t, v.Expect, Scale(v.In, v.Brightness))
		})
	}
}

func TestPackIsGRB(t *testing.T) {
	assert.Equal(t, uint32(0x140A1E), Pack(model.Color{R: 10, G: 20, B: 30}, 1.0))
	assert.Equal(t, uint32(0x00FF00), Pack(model.Red, 1.0))
	assert.Equal(t, uint32(0xFF0000), Pack(model.Green, 1.0))
	assert.Equal(t, uint32(0x0000FF), Pack(model.Blue, 1.0))
	assert.Equal(t, model.Color{R: 10, G: 20, B: 30}, Unpack(0x140A1E))
}

func TestBitsAreMSBFirst(t *testing.T) {
	bits := Bits([]uint32{0x800001})
	require.Len(t, bits, 24)
	assert.True(t, bits[0])
	assert.True(t, bits[23])
	for _, b := range bits[1:23] {
		assert.False(t, b)
	}

	words, err := Words(bits)
	require.NoError(t, err)
	assert.Equal(t, []uint32{0x800001}, words)

	_, err = Words(bits[:23])
	assert.ErrorIs(t, err, model.ErrConfiguration)
}

type latchSleep struct {
	calls []time.Duration
}

func (l *latchSleep) Sleep(d time.Duration) { l.calls = append(l.calls, d) }

func TestEncodeAndSendRedAtHalf(t *testing.T) {
	rec := &Recorder{}
	sl := &latchSleep{}
	enc, err := NewEncoder(4, DefaultTiming, DefaultLatch, rec, sl.Sleep)
	require.NoError(t, err)

	pixels := []model.Color{model.Red, model.Red, model.Red, model.Red}
	require.NoError(t, enc.EncodeAndSend(pixels, 0.5))

	frames := rec.Frames()
	require.Len(t, frames, 1)
	assert.Len(t, frames[0].Bits, 96)
	assert.Equal(t, DefaultTiming, frames[0].Timing)

	words, err := frames[0].Words()
	require.NoError(t, err)
	assert.Equal(t, []uint32{0x007F00, 0x007F00, 0x007F00, 0x007F00}, words)

	require.Len(t, sl.calls, 1)
	assert.GreaterOrEqual(t, sl.calls[0], 10*time.Millisecond)
}

func TestLatchNeverShorterThanTenMilliseconds(t *testing.T) {
	for _, latch := range []time.Duration{DefaultLatch, 15 * time.Millisecond} {
		t.Run(latch.String(), func(t *testing.T) {
			sl := &latchSleep{}
			enc, err := NewEncoder(1, DefaultTiming, latch, &Recorder{}, sl.Sleep)
			require.NoError(t, err)
			require.NoError(t, enc.EncodeAndSend([]model.Color{model.Red}, 1))
			require.Len(t, sl.calls, 1)
			assert.Equal(t, latch, sl.calls[0])
			assert.GreaterOrEqual(t, sl.calls[0], 10*time.Millisecond)
		})
	}
}

func TestEncodeAndSendRejects(t *testing.T) {
	rec := &Recorder{}
	enc, err := NewEncoder(2, DefaultTiming, DefaultLatch, rec, func(time.Duration) {})
	require.NoError(t, err)

	t.Run("short frame", func(t *testing.T) {
		err := enc.EncodeAndSend([]model.Color{model.Red}, 1)
		assert.ErrorIs(t, err, model.ErrConfiguration)
	})
	t.Run("long frame", func(t *testing.T) {
		err := enc.EncodeAndSend(make([]model.Color, 3), 1)
		assert.ErrorIs(t, err, model.ErrConfiguration)
	})
	t.Run("brightness above one", func(t *testing.T) {
		err := enc.EncodeAndSend(make([]model.Color, 2), 1.5)
		assert.ErrorIs(t, err, model.ErrConfiguration)
	})
	t.Run("negative brightness", func(t *testing.T) {
		err := enc.EncodeAndSend(make([]model.Color, 2), -0.1)
		assert.ErrorIs(t, err, model.ErrConfiguration)
	})
	assert.Empty(t, rec.Frames())
}

func TestEncodeAndSendWrapsPeripheralErrors(t *testing.T) {
	rec := &Recorder{Err: errors.New("bus stuck")}
	slept := false
	enc, err := NewEncoder(1, DefaultTiming, DefaultLatch, rec, func(time.Duration) { slept = true })
	require.NoError(t, err)

	err = enc.EncodeAndSend([]model.Color{model.White}, 1)
	assert.ErrorIs(t, err, model.ErrHardware)
	assert.Contains(t, err.Error(), "bus stuck")
	assert.False(t, slept)
}

func TestNewEncoder(t *testing.T) {
	rec := &Recorder{}
	_, err := NewEncoder(0, DefaultTiming, DefaultLatch, rec, nil)
	assert.ErrorIs(t, err, model.ErrConfiguration)

	_, err = NewEncoder(1, BitTiming{T1: 0, T2: 5, T3: 3, Clock: DefaultTiming.Clock}, DefaultLatch, rec, nil)
	assert.ErrorIs(t, err, model.ErrConfiguration)

	_, err = NewEncoder(1, DefaultTiming, time.Microsecond, rec, nil)
	assert.ErrorIs(t, err, model.ErrConfiguration)

	_, err = NewEncoder(1, DefaultTiming, time.Millisecond, rec, nil)
	assert.ErrorIs(t, err, model.ErrConfiguration)

	_, err = NewEncoder(1, DefaultTiming, 20*time.Millisecond, rec, nil)
	assert.NoError(t, err)

	_, err = NewEncoder(1, DefaultTiming, DefaultLatch, nil, nil)
	assert.ErrorIs(t, err, model.ErrHardware)
}

func TestDefaultTiming(t *testing.T) {
	assert.Equal(t, 10, DefaultTiming.Units())
	assert.Equal(t, 7, DefaultTiming.High(true))
	assert.Equal(t, 2, DefaultTiming.High(false))
	assert.Equal(t, 1250*time.Nanosecond, DefaultTiming.Period())
	assert.Equal(t, "2:5:3@8MHz", DefaultTiming.String())
}

func TestSlots(t *testing.T) {
	zeros := Slots([]bool{false, false, false, false}, DefaultTiming)
	assert.Equal(t, []byte{0xC0, 0x30, 0x0C, 0x03, 0x00}, zeros)

	ones := Slots([]bool{true, true, true, true}, DefaultTiming)
	assert.Equal(t, []byte{0xFE, 0x3F, 0x8F, 0xE3, 0xF8}, ones)
}
