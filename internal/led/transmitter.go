package led

import (
	"errors"
	"sync"

	"github.com/coreman2200/funtimes-ledfader/model"
)

// WaveformTransmitter puts a bit sequence on the data line using the given
// pulse timing. Send must not return before the waveform has been handed to
// the peripheral.
type WaveformTransmitter interface {
	Send(bits []bool, t BitTiming) error
	// Close releases the peripheral.
	Close() error
}

// Frame is one recorded transmission.
type Frame struct {
	Bits   []bool
	Timing BitTiming
}

// Words regroups the recorded bits into 24-bit wire words.
func (f Frame) Words() ([]uint32, error) {
	return Words(f.Bits)
}

// Colors decodes the frame back into logical colors.
func (f Frame) Colors() ([]model.Color, error) {
	words, err := f.Words()
	if err != nil {
		return nil, err
	}
	out := make([]model.Color, len(words))
	for i, w := range words {
		out[i] = Unpack(w)
	}
	return out, nil
}

// Recorder keeps every frame it is sent. It backs the "sim" driver and the
// tests.
type Recorder struct {
	mu     sync.Mutex
	frames []Frame
	closed bool

	// Err, when set, is returned from every Send.
	Err error
	// OnSend is called with each accepted frame.
	OnSend func(Frame)
}

func (r *Recorder) Send(bits []bool, t BitTiming) error {
	r.mu.Lock()
	if r.Err != nil {
		r.mu.Unlock()
		return r.Err
	}
	if r.closed {
		r.mu.Unlock()
		return errors.New("recorder closed")
	}
	f := Frame{Bits: append([]bool(nil), bits...), Timing: t}
	r.frames = append(r.frames, f)
	hook := r.OnSend
	r.mu.Unlock()
	if hook != nil {
		hook(f)
	}
	return nil
}

func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

// Frames returns a copy of everything recorded so far.
func (r *Recorder) Frames() []Frame {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Frame(nil), r.frames...)
}

// Last returns the most recent frame.
func (r *Recorder) Last() (Frame, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.frames) == 0 {
		return Frame{}, false
	}
	return r.frames[len(r.frames)-1], true
}

// Reset drops the recorded frames.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = nil
}

// Tee sends every frame to all of its transmitters in order. All of them are
// attempted; the errors are joined.
type Tee []WaveformTransmitter

func (t Tee) Send(bits []bool, timing BitTiming) error {
	var errs []error
	for _, tx := range t {
		if err := tx.Send(bits, timing); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (t Tee) Close() error {
	var errs []error
	for _, tx := range t {
		if err := tx.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
