// Package input reads the palette button.
package input

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"

	"github.com/coreman2200/funtimes-ledfader/model"
)

const (
	DefaultDebounce = 50 * time.Millisecond
	// pollInterval bounds how long Watch can miss a cancelled context.
	pollInterval = 100 * time.Millisecond
)

// Press is one debounced button press.
type Press struct {
	At time.Time
}

// Button is an active-low push button with the internal pull-up enabled.
type Button struct {
	pin      gpio.PinIn
	debounce time.Duration
}

// Open looks the input pin up by name or number.
func Open(name string, debounce time.Duration) (*Button, error) {
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("%w: no gpio %q", model.ErrHardware, name)
	}
	return NewButton(p, debounce)
}

// NewButton arms falling edge detection on p.
func NewButton(p gpio.PinIn, debounce time.Duration) (*Button, error) {
	if debounce < 0 {
		return nil, fmt.Errorf("%w: negative debounce %s", model.ErrConfiguration, debounce)
	}
	if err := p.In(gpio.PullUp, gpio.FallingEdge); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", model.ErrHardware, p, err)
	}
	return &Button{pin: p, debounce: debounce}, nil
}

func (b *Button) String() string {
	return fmt.Sprintf("button{%s}", b.pin)
}

// Watch reports presses on events until ctx is done. An edge only counts if
// the line is still low once the debounce window has passed. A press that
// finds events full is dropped, so a slow consumer never blocks the watcher.
func (b *Button) Watch(ctx context.Context, events chan<- Press) error {
	for {
		if ctx.Err() != nil {
			return nil
		}
		if !b.pin.WaitForEdge(pollInterval) {
			continue
		}
		if !b.settle(ctx) {
			return nil
		}
		if b.pin.Read() != gpio.Low {
			log.Trace().Stringer("pin", b.pin).Msg("bounce ignored")
			continue
		}
		select {
		case events <- Press{At: time.Now()}:
			log.Debug().Stringer("pin", b.pin).Msg("press")
		default:
			log.Debug().Stringer("pin", b.pin).Msg("press dropped, busy")
		}
	}
}

func (b *Button) settle(ctx context.Context) bool {
	if b.debounce == 0 {
		return true
	}
	t := time.NewTimer(b.debounce)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// Halt releases the pin.
func (b *Button) Halt() error {
	return b.pin.Halt()
}
