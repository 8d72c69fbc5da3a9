package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-ledfader/internal/app"
	"github.com/coreman2200/funtimes-ledfader/internal/config"
)

func main() {
	def := config.Default()

	// ---- Flags (config.yaml overrides them) ----
	var (
		configPath = flag.String("config", "config.yaml", "path to config.yaml")
		driver     = flag.String("driver", def.Driver, "driver: stream | spi | nrzled | console | sim")
		leds       = flag.Int("leds", def.LEDCount, "number of LEDs on the strip")
		outPin     = flag.String("out", def.OutputPin, "data pin (name or number)")
		inPin      = flag.String("button", def.InputPin, "button pin, empty for none")
		brightness = flag.Float64("brightness", def.Brightness, "global brightness 0..1")
		spiDev     = flag.String("spi", def.SPI.Dev, "SPI port for spi/nrzled, empty picks the first")
		preview    = flag.String("preview", "", "preview HTTP listen address, e.g. :8080")
		startup    = flag.String("startup", def.StartupEffect, "startup effect: none | rainbow | chase | sweep | rgb")
		level      = flag.String("log-level", def.LogLevel, "log level")
		simOnly    = flag.Bool("sim-only", false, "force simulation (no hardware output)")
		dump       = flag.Bool("dump-config", false, "write the effective config to -config and exit")
	)
	flag.Parse()

	// ---- Logging ----
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})

	base := config.Default()
	base.Driver = *driver
	base.LEDCount = *leds
	base.OutputPin = *outPin
	base.InputPin = *inPin
	base.Brightness = *brightness
	base.SPI.Dev = *spiDev
	base.Preview.Addr = *preview
	base.StartupEffect = *startup
	base.LogLevel = *level

	// ---- Load config.yaml (optional) ----
	cfg := base
	if c, err := config.LoadOver(*configPath, base); err != nil {
		log.Warn().Err(err).Str("path", *configPath).Msg("config load failed; proceeding with flags")
	} else {
		cfg = c
	}
	if *simOnly {
		cfg.Driver = "sim"
	}

	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err != nil {
		log.Warn().Err(err).Str("level", cfg.LogLevel).Msg("bad log level; using info")
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(lvl)
	}

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	if *dump {
		if err := config.Save(*configPath, cfg); err != nil {
			log.Fatal().Err(err).Str("path", *configPath).Msg("save config")
		}
		log.Info().Str("path", *configPath).Msg("config written")
		return
	}

	a, err := app.Open(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("startup failed")
	}

	// ---- Graceful shutdown ----
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info().
		Str("driver", cfg.Driver).
		Int("leds", cfg.LEDCount).
		Float64("brightness", cfg.Brightness).
		Strs("palette", cfg.Palette).
		Msg("ledfader starting")
	runErr := a.Run(ctx)
	if err := a.Close(); err != nil {
		log.Warn().Err(err).Msg("close")
	}
	if runErr != nil {
		log.Error().Err(runErr).Msg("stopped with error")
		stop()
		os.Exit(1)
	}
	log.Info().Msg("shut down")
}
