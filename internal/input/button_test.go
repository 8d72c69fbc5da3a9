package input_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"

	. "github.com/coreman2200/funtimes-ledfader/internal/input"
	"github.com/coreman2200/funtimes-ledfader/model"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newPin() *gpiotest.Pin {
	return &gpiotest.Pin{N: "GPIO7", Num: 7, EdgesChan: make(chan gpio.Level)}
}

func watch(t *testing.T, b *Button, events chan Press) (context.CancelFunc, <-chan error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- b.Watch(ctx, events) }()
	return cancel, done
}

func stop(t *testing.T, cancel context.CancelFunc, done <-chan error) {
	t.Helper()
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not exit")
	}
}

func TestNewButtonPullsUp(t *testing.T) {
	p := newPin()
	_, err := NewButton(p, DefaultDebounce)
	require.NoError(t, err)
	assert.Equal(t, gpio.High, p.L)

	_, err = NewButton(newPin(), -time.Millisecond)
	assert.ErrorIs(t, err, model.ErrConfiguration)
}

func TestWatchReportsPress(t *testing.T) {
	p := newPin()
	b, err := NewButton(p, time.Millisecond)
	require.NoError(t, err)
	events := make(chan Press, 1)
	cancel, done := watch(t, b, events)
	defer stop(t, cancel, done)

	p.EdgesChan <- gpio.Low
	select {
	case ev := <-events:
		assert.False(t, ev.At.IsZero())
	case <-time.After(2 * time.Second):
		t.Fatal("no press")
	}
}

func TestWatchIgnoresBounce(t *testing.T) {
	p := newPin()
	b, err := NewButton(p, time.Millisecond)
	require.NoError(t, err)
	events := make(chan Press, 4)
	cancel, done := watch(t, b, events)
	defer stop(t, cancel, done)

	// The edge is seen but the line is back high after the debounce window.
	p.EdgesChan <- gpio.High
	p.EdgesChan <- gpio.Low

	select {
	case <-events:
	case <-time.After(2 * time.Second):
		t.Fatal("no press")
	}
	assert.Empty(t, events)
}

func TestWatchDropsWhenBusy(t *testing.T) {
	p := newPin()
	b, err := NewButton(p, 0)
	require.NoError(t, err)
	events := make(chan Press)
	cancel, done := watch(t, b, events)
	defer stop(t, cancel, done)

	// Nobody is receiving, so both presses are dropped. The trailing high
	// edge is only taken once the second press has been handled, and it is
	// a bounce so it never becomes a press itself.
	p.EdgesChan <- gpio.Low
	p.EdgesChan <- gpio.Low
	p.EdgesChan <- gpio.High

	select {
	case ev := <-events:
		t.Fatalf("dropped press was delivered late: %v", ev)
	case <-time.After(100 * time.Millisecond):
	}
}
