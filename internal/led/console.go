package led

import (
	"fmt"

	"periph.io/x/extra/devices/screen"

	"github.com/coreman2200/funtimes-ledfader/model"
)

// ConsoleTransmitter paints each frame as a row of ANSI colored cells. It is
// the fallback when no LED hardware can be opened.
type ConsoleTransmitter struct {
	dev *screen.Dev
}

func NewConsole(count int) *ConsoleTransmitter {
	return &ConsoleTransmitter{dev: screen.New(count)}
}

func (c *ConsoleTransmitter) Send(bits []bool, _ BitTiming) error {
	words, err := Words(bits)
	if err != nil {
		return err
	}
	rgb := make([]byte, 0, len(words)*3)
	for _, w := range words {
		p := Unpack(w)
		rgb = append(rgb, p.R, p.G, p.B)
	}
	if _, err := c.dev.Write(rgb); err != nil {
		return fmt.Errorf("%w: console: %v", model.ErrHardware, err)
	}
	return nil
}

func (c *ConsoleTransmitter) Close() error {
	return c.dev.Halt()
}

func (c *ConsoleTransmitter) String() string {
	return c.dev.String()
}
