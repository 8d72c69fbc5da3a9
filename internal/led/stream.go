package led

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/gpio/gpiostream"

	"github.com/coreman2200/funtimes-ledfader/model"
)

// StreamTransmitter bit-bangs the waveform on a GPIO that supports
// streaming, sampling one slot per timing clock.
type StreamTransmitter struct {
	pin gpiostream.PinOut
}

// OpenStream looks the pin up by name or number, e.g. "6" or "GPIO6".
func OpenStream(name string) (*StreamTransmitter, error) {
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("%w: no gpio %q", model.ErrHardware, name)
	}
	s, ok := p.(gpiostream.PinOut)
	if !ok {
		return nil, fmt.Errorf("%w: gpio %s cannot stream", model.ErrHardware, p)
	}
	return NewStream(s)
}

func NewStream(p gpiostream.PinOut) (*StreamTransmitter, error) {
	if out, ok := p.(gpio.PinOut); ok {
		if err := out.Out(gpio.Low); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", model.ErrHardware, p, err)
		}
	}
	return &StreamTransmitter{pin: p}, nil
}

func (s *StreamTransmitter) Send(bits []bool, t BitTiming) error {
	b := &gpiostream.BitStream{Freq: t.Clock, Bits: Slots(bits, t)}
	if err := s.pin.StreamOut(b); err != nil {
		return fmt.Errorf("%w: stream on %s: %v", model.ErrHardware, s.pin, err)
	}
	return nil
}

func (s *StreamTransmitter) Close() error {
	return s.pin.Halt()
}

func (s *StreamTransmitter) String() string {
	return fmt.Sprintf("stream{%s}", s.pin)
}
