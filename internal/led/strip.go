package led

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-ledfader/model"
)

// StripConfig describes the physical strip.
type StripConfig struct {
	LEDCount   int
	OutputPin  string
	Brightness float64
	Timing     BitTiming
	Latch      time.Duration
	// Sleep waits out the latch; nil means time.Sleep.
	Sleep func(time.Duration)
}

// DefaultStripConfig is a 16 pixel strip on pin 6 at 20% brightness.
func DefaultStripConfig() StripConfig {
	return StripConfig{
		LEDCount:   16,
		OutputPin:  "6",
		Brightness: 0.2,
		Timing:     DefaultTiming,
		Latch:      DefaultLatch,
	}
}

// Strip owns the pixel buffer and pushes it through an Encoder. All methods
// are safe for concurrent use; a Show never interleaves with another.
type Strip struct {
	mu         sync.Mutex
	cfg        StripConfig
	buf        *model.PixelBuffer
	enc        *Encoder
	tx         WaveformTransmitter
	brightness float64
}

func NewStrip(cfg StripConfig, tx WaveformTransmitter) (*Strip, error) {
	if err := ValidateBrightness(cfg.Brightness); err != nil {
		return nil, err
	}
	buf, err := model.NewPixelBuffer(cfg.LEDCount)
	if err != nil {
		return nil, err
	}
	enc, err := NewEncoder(cfg.LEDCount, cfg.Timing, cfg.Latch, tx, cfg.Sleep)
	if err != nil {
		return nil, err
	}
	log.Debug().
		Int("leds", cfg.LEDCount).
		Str("pin", cfg.OutputPin).
		Stringer("timing", cfg.Timing).
		Dur("latch", cfg.Latch).
		Msg("strip ready")
	return &Strip{cfg: cfg, buf: buf, enc: enc, tx: tx, brightness: cfg.Brightness}, nil
}

func (s *Strip) Len() int { return s.cfg.LEDCount }

func (s *Strip) Config() StripConfig { return s.cfg }

func (s *Strip) Set(i int, c model.Color) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Set(i, c)
}

func (s *Strip) At(i int) (model.Color, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.At(i)
}

func (s *Strip) Fill(c model.Color) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buf.Fill(c)
}

func (s *Strip) Clear() {
	s.Fill(model.Black)
}

// Pixels returns a copy of the buffer.
func (s *Strip) Pixels() []model.Color {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Pixels()
}

func (s *Strip) Brightness() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.brightness
}

// SetBrightness applies from the next Show.
func (s *Strip) SetBrightness(b float64) error {
	if err := ValidateBrightness(b); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.brightness = b
	return nil
}

// Show transmits the buffer and blocks through the latch.
func (s *Strip) Show() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enc.EncodeAndSend(s.buf.Pixels(), s.brightness)
}

// FillAndShow sets every pixel to c and transmits.
func (s *Strip) FillAndShow(c model.Color) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buf.Fill(c)
	return s.enc.EncodeAndSend(s.buf.Pixels(), s.brightness)
}

// Off blanks the strip.
func (s *Strip) Off() error {
	return s.FillAndShow(model.Black)
}

// Close blanks the strip and releases the transmitter.
func (s *Strip) Close() error {
	offErr := s.Off()
	if err := s.tx.Close(); err != nil {
		return fmt.Errorf("%w: close: %v", model.ErrHardware, err)
	}
	return offErr
}
