package led

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3/physic"

	"github.com/coreman2200/funtimes-ledfader/model"
)

// BitTiming describes the two-symbol pulse code in units of one Clock
// period. A bit lasts T1+T2+T3 units: a 1 stays high for T1+T2 and low for
// T3, a 0 stays high for T1 and low for T2+T3.
type BitTiming struct {
	T1, T2, T3 int
	Clock      physic.Frequency
}

// DefaultTiming is the WS2812 code: 2:5:3 at 8MHz, a 1.25µs bit (800kHz).
var DefaultTiming = BitTiming{T1: 2, T2: 5, T3: 3, Clock: 8 * physic.MegaHertz}

func (t BitTiming) Validate() error {
	if t.T1 <= 0 || t.T2 <= 0 || t.T3 <= 0 {
		return fmt.Errorf("%w: timing %d:%d:%d must be positive", model.ErrConfiguration, t.T1, t.T2, t.T3)
	}
	if t.Clock <= 0 {
		return fmt.Errorf("%w: timing clock %s", model.ErrConfiguration, t.Clock)
	}
	return nil
}

// Units is the number of clock periods in one bit.
func (t BitTiming) Units() int {
	return t.T1 + t.T2 + t.T3
}

// High returns how many units the line is held high for bit.
func (t BitTiming) High(bit bool) int {
	if bit {
		return t.T1 + t.T2
	}
	return t.T1
}

// Period is the duration of one bit.
func (t BitTiming) Period() time.Duration {
	return time.Duration(t.Units()) * t.Clock.Period()
}

// BitRate is the effective data rate on the wire.
func (t BitTiming) BitRate() physic.Frequency {
	return t.Clock / physic.Frequency(t.Units())
}

func (t BitTiming) String() string {
	return fmt.Sprintf("%d:%d:%d@%s", t.T1, t.T2, t.T3, t.Clock)
}
