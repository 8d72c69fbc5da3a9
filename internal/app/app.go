package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	diag "github.com/coreman2200/funtimes-ledfader/internal/diagnostics"
	"github.com/coreman2200/funtimes-ledfader/internal/effect"
	"github.com/coreman2200/funtimes-ledfader/internal/input"
	"github.com/coreman2200/funtimes-ledfader/internal/led"
	"github.com/coreman2200/funtimes-ledfader/internal/ws"
	"github.com/coreman2200/funtimes-ledfader/model"
)

const selfTestHold = 300 * time.Millisecond

// Watcher delivers button presses until ctx is done.
type Watcher interface {
	Watch(ctx context.Context, events chan<- input.Press) error
}

type Options struct {
	Palette       model.Palette
	Steps         int
	StepDelay     time.Duration
	StartupEffect string
	// Sleep paces the fades; nil means time.Sleep.
	Sleep func(time.Duration)

	// Preview, when set, is served on PreviewAddr for the life of Run.
	Preview     *ws.Hub
	PreviewAddr string
	// Diag receives runtime diagnostics; it defaults to Preview.
	Diag diag.Sink
}

// App cycles the strip through a palette, one fade per button press.
type App struct {
	strip   *led.Strip
	fader   *effect.Fader
	button  Watcher
	opts    Options
	presses chan input.Press

	mu    sync.Mutex
	index int
}

// New wires a strip and an optional button. A nil button leaves the preview
// control socket as the only way to advance.
func New(strip *led.Strip, button Watcher, opts Options) (*App, error) {
	if len(opts.Palette) == 0 {
		return nil, fmt.Errorf("%w: empty palette", model.ErrConfiguration)
	}
	if opts.Steps <= 0 {
		return nil, fmt.Errorf("%w: fade steps %d", model.ErrConfiguration, opts.Steps)
	}
	a := &App{
		strip:   strip,
		fader:   effect.NewFader(strip, opts.Sleep),
		button:  button,
		opts:    opts,
		presses: make(chan input.Press),
	}
	if opts.Preview != nil {
		if opts.Diag == nil {
			a.opts.Diag = opts.Preview
		}
		opts.Preview.Controls = ws.Controls{
			Advance:       a.Press,
			SetBrightness: strip.SetBrightness,
		}
	}
	return a, nil
}

// Current is the palette color on display.
func (a *App) Current() model.Color {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.opts.Palette[a.index]
}

func (a *App) Index() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.index
}

// Press asks the main loop to advance. It is dropped if a fade is running.
func (a *App) Press() {
	select {
	case a.presses <- input.Press{At: time.Now()}:
	default:
		log.Debug().Msg("press dropped, busy")
	}
}

// Advance fades out the current color and fades in the next one.
func (a *App) Advance() error {
	from := a.Current()
	if err := a.fader.FadeOut(from, a.opts.Steps, a.opts.StepDelay); err != nil {
		return err
	}
	a.mu.Lock()
	a.index = a.opts.Palette.Next(a.index)
	to := a.opts.Palette[a.index]
	idx := a.index
	a.mu.Unlock()
	log.Info().Int("index", idx).Stringer("color", to).Msg("palette advance")
	diag.Publish(a.opts.Diag, diag.Diagnostic{
		Severity: diag.Info,
		Code:     diag.PaletteAdvance,
		Summary:  "Palette advanced",
		Evidence: map[string]any{"index": idx, "color": to.String()},
	})
	return a.fader.FadeIn(to, a.opts.Steps, a.opts.StepDelay)
}

func (a *App) startup(ctx context.Context) error {
	var err error
	switch a.opts.StartupEffect {
	case "rainbow":
		err = a.fader.RainbowCycle(ctx, 0)
	case "chase":
		err = a.fader.ColorChase(ctx, a.Current(), a.opts.StepDelay)
	case "sweep", "rgb":
		err = a.fader.SelfTest(ctx, effect.TestKind(a.opts.StartupEffect), selfTestHold)
	}
	if err != nil {
		return err
	}
	return a.fader.FadeIn(a.Current(), a.opts.Steps, a.opts.StepDelay)
}

// Run shows the first palette color and then serves presses until ctx is
// done. A fade in progress always finishes; the strip is off when Run
// returns.
func (a *App) Run(ctx context.Context) error {
	err := a.run(ctx)
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	if err != nil {
		diag.Publish(a.opts.Diag, diag.Diagnostic{
			Severity:       diag.Err,
			Code:           diag.OutputFailed,
			Summary:        "Strip output failed",
			Detail:         err.Error(),
			LikelyCauses:   []string{"data pin or SPI port released", "wrong driver for this board"},
			SuggestedFixes: []string{"check the driver and output_pin settings", "run with -sim-only to isolate hardware"},
		})
	}
	if offErr := a.strip.Off(); offErr != nil {
		log.Error().Err(offErr).Msg("strip off")
		err = errors.Join(err, offErr)
	}
	return err
}

// Close blanks the strip and releases the output and the button pin.
func (a *App) Close() error {
	err := a.strip.Close()
	if h, ok := a.button.(interface{ Halt() error }); ok {
		err = errors.Join(err, h.Halt())
	}
	return err
}

func (a *App) run(ctx context.Context) error {
	if err := a.startup(ctx); err != nil {
		return err
	}
	log.Info().Stringer("color", a.Current()).Msg("ready")

	g, gctx := errgroup.WithContext(ctx)
	if a.button != nil {
		g.Go(func() error {
			return a.button.Watch(gctx, a.presses)
		})
	}
	if a.opts.Preview != nil && a.opts.PreviewAddr != "" {
		g.Go(func() error {
			if err := a.opts.Preview.Serve(gctx, a.opts.PreviewAddr); err != nil {
				log.Error().Err(err).Str("addr", a.opts.PreviewAddr).Msg("preview stopped")
			}
			return nil
		})
	}
	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-a.presses:
				if err := a.Advance(); err != nil {
					return err
				}
			}
		}
	})
	return g.Wait()
}
