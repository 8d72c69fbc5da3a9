package led

import (
	"errors"
	"fmt"
	"time"

	"github.com/coreman2200/funtimes-ledfader/model"
)

// Wire positions of each channel inside a 24-bit word. WS2812 parts expect
// green first.
const (
	GreenOffset = 16
	RedOffset   = 8
	BlueOffset  = 0

	BitsPerPixel = 24
)

// DefaultLatch is how long the line is held low after a frame.
const DefaultLatch = 10 * time.Millisecond

// MinLatch is the shortest low hold accepted after a frame. Callers pace
// frames assuming at least this much.
const MinLatch = DefaultLatch

// Scale dims one channel, truncating: 3 at 0.2 is 0, not 1.
func Scale(c uint8, brightness float64) uint8 {
	return uint8(float64(c) * brightness)
}

// Pack converts a logical color into its wire word, G<<16 | R<<8 | B, with
// every channel scaled by brightness.
func Pack(c model.Color, brightness float64) uint32 {
	return uint32(Scale(c.G, brightness))<<GreenOffset |
		uint32(Scale(c.R, brightness))<<RedOffset |
		uint32(Scale(c.B, brightness))<<BlueOffset
}

// Unpack reads a wire word back into a logical color.
func Unpack(w uint32) model.Color {
	return model.Color{
		R: uint8(w >> RedOffset),
		G: uint8(w >> GreenOffset),
		B: uint8(w >> BlueOffset),
	}
}

// Bits serializes words MSB first, 24 bits each.
func Bits(words []uint32) []bool {
	bits := make([]bool, 0, len(words)*BitsPerPixel)
	for _, w := range words {
		for i := BitsPerPixel - 1; i >= 0; i-- {
			bits = append(bits, w&(1<<uint(i)) != 0)
		}
	}
	return bits
}

// Words is the inverse of Bits.
func Words(bits []bool) ([]uint32, error) {
	if len(bits)%BitsPerPixel != 0 {
		return nil, fmt.Errorf("%w: %d bits is not a whole number of pixels", model.ErrConfiguration, len(bits))
	}
	words := make([]uint32, len(bits)/BitsPerPixel)
	for i, b := range bits {
		words[i/BitsPerPixel] <<= 1
		if b {
			words[i/BitsPerPixel] |= 1
		}
	}
	return words, nil
}

// Encoder turns a frame of logical colors into the strip waveform and hands
// it to a WaveformTransmitter.
type Encoder struct {
	count  int
	timing BitTiming
	latch  time.Duration
	tx     WaveformTransmitter
	sleep  func(time.Duration)
}

// NewEncoder validates the strip geometry and binds a transmitter. A nil
// sleep uses time.Sleep.
func NewEncoder(count int, timing BitTiming, latch time.Duration, tx WaveformTransmitter, sleep func(time.Duration)) (*Encoder, error) {
	if count <= 0 {
		return nil, fmt.Errorf("%w: invalid LED count %d", model.ErrConfiguration, count)
	}
	if err := timing.Validate(); err != nil {
		return nil, err
	}
	if latch < MinLatch {
		return nil, fmt.Errorf("%w: latch %s shorter than %s", model.ErrConfiguration, latch, MinLatch)
	}
	if tx == nil {
		return nil, fmt.Errorf("%w: no output peripheral", model.ErrHardware)
	}
	if sleep == nil {
		sleep = time.Sleep
	}
	return &Encoder{count: count, timing: timing, latch: latch, tx: tx, sleep: sleep}, nil
}

// Encode checks a frame and packs it into wire words.
func (e *Encoder) Encode(pixels []model.Color, brightness float64) ([]uint32, error) {
	if len(pixels) != e.count {
		return nil, fmt.Errorf("%w: frame has %d pixels, strip has %d", model.ErrConfiguration, len(pixels), e.count)
	}
	if err := ValidateBrightness(brightness); err != nil {
		return nil, err
	}
	words := make([]uint32, len(pixels))
	for i, c := range pixels {
		words[i] = Pack(c, brightness)
	}
	return words, nil
}

// EncodeAndSend transmits one frame and then holds the line low for the
// latch interval. It returns once the latch has elapsed.
func (e *Encoder) EncodeAndSend(pixels []model.Color, brightness float64) error {
	words, err := e.Encode(pixels, brightness)
	if err != nil {
		return err
	}
	if err := e.tx.Send(Bits(words), e.timing); err != nil {
		if errors.Is(err, model.ErrHardware) {
			return err
		}
		return fmt.Errorf("%w: %v", model.ErrHardware, err)
	}
	e.sleep(e.latch)
	return nil
}

func ValidateBrightness(b float64) error {
	if b < 0 || b > 1 || b != b {
		return fmt.Errorf("%w: brightness %v outside [0,1]", model.ErrConfiguration, b)
	}
	return nil
}
