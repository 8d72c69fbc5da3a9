package app

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"periph.io/x/host/v3"

	"github.com/coreman2200/funtimes-ledfader/internal/config"
	diag "github.com/coreman2200/funtimes-ledfader/internal/diagnostics"
	"github.com/coreman2200/funtimes-ledfader/internal/input"
	"github.com/coreman2200/funtimes-ledfader/internal/led"
	"github.com/coreman2200/funtimes-ledfader/internal/ws"
)

// Open brings up the host drivers and builds the App described by cfg. A
// driver that cannot be opened falls back to the console, and a missing
// button leaves the app running without one.
func Open(cfg *config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if state, err := host.Init(); err != nil {
		log.Warn().Err(err).Msg("host init failed")
	} else {
		log.Debug().Int("loaded", len(state.Loaded)).Msg("host drivers")
	}

	tx, driver := OpenTransmitter(cfg)

	var hub *ws.Hub
	var sink diag.Sink
	if cfg.Preview.Addr != "" {
		hub = ws.NewHub(cfg.LEDCount, driver)
		sink = hub
		tx = led.Tee{tx, hub}
	}
	if driver != cfg.Driver {
		diag.Publish(sink, diag.Diagnostic{
			Severity:       diag.Warn,
			Code:           diag.DriverFallback,
			Summary:        "Driver unavailable, drawing on the console",
			Evidence:       map[string]any{"driver": cfg.Driver, "pin": cfg.OutputPin, "spi": cfg.SPI.Dev},
			SuggestedFixes: []string{"check wiring and permissions for the output pin", "pick another driver"},
		})
	}

	strip, err := led.NewStrip(cfg.Strip(), tx)
	if err != nil {
		_ = tx.Close()
		return nil, err
	}

	var button Watcher
	if cfg.InputPin != "" {
		b, err := input.Open(cfg.InputPin, cfg.Debounce())
		if err != nil {
			log.Warn().Err(err).Str("pin", cfg.InputPin).Msg("button unavailable; running without input")
			diag.Publish(sink, diag.Diagnostic{
				Severity: diag.Warn,
				Code:     diag.ButtonMissing,
				Summary:  "Button unavailable",
				Detail:   err.Error(),
				Evidence: map[string]any{"pin": cfg.InputPin},
			})
		} else {
			button = b
		}
	}

	palette, err := cfg.ParsedPalette()
	if err != nil {
		return nil, err
	}
	return New(strip, button, Options{
		Palette:       palette,
		Steps:         cfg.Fade.Steps,
		StepDelay:     cfg.StepDelay(),
		StartupEffect: cfg.StartupEffect,
		Preview:       hub,
		PreviewAddr:   cfg.Preview.Addr,
	})
}

// OpenTransmitter opens the configured driver and reports the one actually
// in use.
func OpenTransmitter(cfg *config.Config) (led.WaveformTransmitter, string) {
	tx, err := openDriver(cfg)
	if err != nil {
		log.Warn().Err(err).
			Str("driver", cfg.Driver).
			Str("pin", cfg.OutputPin).
			Str("spi", cfg.SPI.Dev).
			Msg("driver init failed; printing at the console")
		return led.NewConsole(cfg.LEDCount), "console"
	}
	log.Info().Str("driver", cfg.Driver).Int("leds", cfg.LEDCount).Msg("driver ready")
	return tx, cfg.Driver
}

func openDriver(cfg *config.Config) (led.WaveformTransmitter, error) {
	switch cfg.Driver {
	case "stream":
		return led.OpenStream(cfg.OutputPin)
	case "spi":
		return led.OpenSPI(cfg.SPI.Dev, cfg.BitTiming())
	case "nrzled":
		return led.OpenNRZ(cfg.SPI.Dev, cfg.LEDCount, cfg.NRZFreq())
	case "console":
		return led.NewConsole(cfg.LEDCount), nil
	case "sim":
		return NewSim(), nil
	}
	return nil, fmt.Errorf("unknown driver %q", cfg.Driver)
}

// NewSim records frames and traces them instead of driving hardware.
func NewSim() *led.Recorder {
	r := &led.Recorder{}
	r.OnSend = func(f led.Frame) {
		colors, err := f.Colors()
		if err != nil {
			log.Warn().Err(err).Msg("sim frame")
			return
		}
		log.Trace().Int("leds", len(colors)).Stringer("first", colors[0]).Msg("sim frame")
		r.Reset()
	}
	return r
}
