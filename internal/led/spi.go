package led

import (
	"fmt"
	"io"
	"sync"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"

	"github.com/coreman2200/funtimes-ledfader/model"
)

// SPITransmitter clocks the waveform out of MOSI, one SPI bit per timing
// unit. With the default 2:5:3@8MHz timing every LED bit becomes ten SPI
// bits and each pixel takes 30 bytes.
type SPITransmitter struct {
	mu     sync.Mutex
	closer io.Closer
	conn   spi.Conn
	timing BitTiming
}

// OpenSPI opens the named SPI port ("" picks the first one) and connects it
// at the timing clock.
func OpenSPI(dev string, t BitTiming) (*SPITransmitter, error) {
	p, err := spireg.Open(dev)
	if err != nil {
		return nil, fmt.Errorf("%w: open spi %q: %v", model.ErrHardware, dev, err)
	}
	s, err := NewSPI(p, t)
	if err != nil {
		_ = p.Close()
		return nil, err
	}
	s.closer = p
	return s, nil
}

// NewSPI connects an already opened port. The caller keeps ownership of p.
func NewSPI(p spi.Port, t BitTiming) (*SPITransmitter, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	c, err := p.Connect(t.Clock, spi.Mode0, 8)
	if err != nil {
		return nil, fmt.Errorf("%w: spi connect at %s: %v", model.ErrHardware, t.Clock, err)
	}
	return &SPITransmitter{conn: c, timing: t}, nil
}

func (s *SPITransmitter) Send(bits []bool, t BitTiming) error {
	if t != s.timing {
		return fmt.Errorf("%w: spi connected for %s, asked for %s", model.ErrConfiguration, s.timing, t)
	}
	w := Slots(bits, t)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return fmt.Errorf("%w: spi closed", model.ErrHardware)
	}
	if l, ok := s.conn.(conn.Limits); ok {
		if limit := l.MaxTxSize(); limit > 0 && len(w) > limit {
			return fmt.Errorf("%w: frame is %d bytes, spi allows %d", model.ErrHardware, len(w), limit)
		}
	}
	if err := s.conn.Tx(w, nil); err != nil {
		return fmt.Errorf("%w: spi tx: %v", model.ErrHardware, err)
	}
	return nil
}

func (s *SPITransmitter) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conn = nil
	if s.closer != nil {
		err := s.closer.Close()
		s.closer = nil
		return err
	}
	return nil
}

func (s *SPITransmitter) String() string {
	return fmt.Sprintf("spi{%s %s}", s.conn, s.timing)
}
