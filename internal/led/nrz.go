package led

import (
	"fmt"
	"io"

	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/nrzled"

	"github.com/coreman2200/funtimes-ledfader/model"
)

// nrzSymbol is how many SPI bits nrzled spends on each LED bit.
const nrzSymbol = 3

// NRZFreq is the SPI clock nrzled needs to hit the bit rate of t.
func NRZFreq(t BitTiming) physic.Frequency {
	return t.BitRate() * nrzSymbol
}

// NRZTransmitter hands frames to the nrzled driver. nrzled has its own fixed
// three-slot code and ignores BitTiming; freq is the SPI clock.
type NRZTransmitter struct {
	dev    *nrzled.Dev
	count  int
	closer io.Closer
}

// OpenNRZ opens the named SPI port for nrzled.
func OpenNRZ(dev string, count int, freq physic.Frequency) (*NRZTransmitter, error) {
	p, err := spireg.Open(dev)
	if err != nil {
		return nil, fmt.Errorf("%w: open spi %q: %v", model.ErrHardware, dev, err)
	}
	n, err := NewNRZ(p, count, freq)
	if err != nil {
		_ = p.Close()
		return nil, err
	}
	n.closer = p
	return n, nil
}

func NewNRZ(p spi.Port, count int, freq physic.Frequency) (*NRZTransmitter, error) {
	if count <= 0 || freq <= 0 {
		return nil, fmt.Errorf("%w: nrzled with %d pixels at %s", model.ErrConfiguration, count, freq)
	}
	o := nrzled.Opts{
		NumPixels: count,
		Channels:  3,
		Freq:      freq,
	}
	d, err := nrzled.NewSPI(p, &o)
	if err != nil {
		return nil, fmt.Errorf("%w: nrzled: %v", model.ErrHardware, err)
	}
	return &NRZTransmitter{dev: d, count: count}, nil
}

func (n *NRZTransmitter) Send(bits []bool, _ BitTiming) error {
	words, err := Words(bits)
	if err != nil {
		return err
	}
	if len(words) != n.count {
		return fmt.Errorf("%w: %d pixels sent to a %d pixel nrzled", model.ErrConfiguration, len(words), n.count)
	}
	// nrzled takes RGB and reorders to GRB itself.
	rgb := make([]byte, 0, len(words)*3)
	for _, w := range words {
		c := Unpack(w)
		rgb = append(rgb, c.R, c.G, c.B)
	}
	if _, err := n.dev.Write(rgb); err != nil {
		return fmt.Errorf("%w: nrzled write: %v", model.ErrHardware, err)
	}
	return nil
}

func (n *NRZTransmitter) Close() error {
	err := n.dev.Halt()
	if n.closer != nil {
		if cerr := n.closer.Close(); err == nil {
			err = cerr
		}
		n.closer = nil
	}
	return err
}

func (n *NRZTransmitter) String() string {
	return n.dev.String()
}

