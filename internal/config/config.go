package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
	"periph.io/x/conn/v3/physic"

	"github.com/coreman2200/funtimes-ledfader/internal/led"
	"github.com/coreman2200/funtimes-ledfader/model"
)

type SPI struct {
	Dev     string `yaml:"dev"`      // "" picks the first port, e.g. SPI0.0
	SpeedHz int64  `yaml:"speed_hz"` // nrzled clock, 0 derives it from timing
}

type Timing struct {
	T1      int   `yaml:"t1"`
	T2      int   `yaml:"t2"`
	T3      int   `yaml:"t3"`
	ClockHz int64 `yaml:"clock_hz"`
}

type Fade struct {
	Steps       int `yaml:"steps"`
	StepDelayMs int `yaml:"step_delay_ms"`
}

type Preview struct {
	Addr string `yaml:"addr"` // empty disables the server
}

type Config struct {
	Driver     string  `yaml:"driver"` // "stream" | "spi" | "nrzled" | "console" | "sim"
	LEDCount   int     `yaml:"led_count"`
	OutputPin  string  `yaml:"output_pin"`
	InputPin   string  `yaml:"input_pin"`
	Brightness float64 `yaml:"brightness"`

	SPI        SPI    `yaml:"spi,omitempty"`
	Timing     Timing `yaml:"timing"`
	LatchMs    int    `yaml:"latch_ms"`
	DebounceMs int    `yaml:"debounce_ms"`
	Fade       Fade   `yaml:"fade"`

	Palette       []string `yaml:"palette"`
	StartupEffect string   `yaml:"startup_effect"` // "none" | "rainbow" | "chase" | "sweep" | "rgb"

	Preview  Preview `yaml:"preview,omitempty"`
	LogLevel string  `yaml:"log_level"`
}

// Default is the application setup: 16 pixels on GPIO6, button on GPIO7,
// full brightness, ten step fades 50ms apart.
func Default() *Config {
	t := led.DefaultTiming
	return &Config{
		Driver:     "stream",
		LEDCount:   16,
		OutputPin:  "6",
		InputPin:   "7",
		Brightness: 1.0,
		Timing: Timing{
			T1:      t.T1,
			T2:      t.T2,
			T3:      t.T3,
			ClockHz: int64(t.Clock / physic.Hertz),
		},
		LatchMs:       int(led.DefaultLatch / time.Millisecond),
		DebounceMs:    50,
		Fade:          Fade{Steps: 10, StepDelayMs: 50},
		Palette:       model.DefaultPalette().Hex(),
		StartupEffect: "none",
		LogLevel:      "info",
	}
}

// Load reads path over the defaults, so a file only needs the keys it
// changes.
func Load(path string) (*Config, error) {
	return LoadOver(path, Default())
}

// LoadOver reads path on top of base. base is not modified.
func LoadOver(path string, base *Config) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c := *base
	c.Palette = append([]string(nil), base.Palette...)
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", model.ErrConfiguration, path, err)
	}
	return &c, nil
}

func Save(path string, c *Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

var drivers = map[string]bool{"stream": true, "spi": true, "nrzled": true, "console": true, "sim": true}

var effects = map[string]bool{"": true, "none": true, "rainbow": true, "chase": true, "sweep": true, "rgb": true}

func (c *Config) Validate() error {
	if !drivers[c.Driver] {
		return fmt.Errorf("%w: unknown driver %q", model.ErrConfiguration, c.Driver)
	}
	if c.LEDCount <= 0 {
		return fmt.Errorf("%w: led_count %d", model.ErrConfiguration, c.LEDCount)
	}
	if err := led.ValidateBrightness(c.Brightness); err != nil {
		return err
	}
	if err := c.BitTiming().Validate(); err != nil {
		return err
	}
	if c.Latch() < led.MinLatch {
		return fmt.Errorf("%w: latch_ms %d", model.ErrConfiguration, c.LatchMs)
	}
	if c.DebounceMs < 0 {
		return fmt.Errorf("%w: debounce_ms %d", model.ErrConfiguration, c.DebounceMs)
	}
	if c.Fade.Steps <= 0 || c.Fade.StepDelayMs < 0 {
		return fmt.Errorf("%w: fade %d steps every %dms", model.ErrConfiguration, c.Fade.Steps, c.Fade.StepDelayMs)
	}
	if c.SPI.SpeedHz < 0 {
		return fmt.Errorf("%w: spi.speed_hz %d", model.ErrConfiguration, c.SPI.SpeedHz)
	}
	if !effects[c.StartupEffect] {
		return fmt.Errorf("%w: unknown startup_effect %q", model.ErrConfiguration, c.StartupEffect)
	}
	if _, err := c.ParsedPalette(); err != nil {
		return err
	}
	return nil
}

func (c *Config) BitTiming() led.BitTiming {
	return led.BitTiming{
		T1:    c.Timing.T1,
		T2:    c.Timing.T2,
		T3:    c.Timing.T3,
		Clock: physic.Frequency(c.Timing.ClockHz) * physic.Hertz,
	}
}

func (c *Config) Latch() time.Duration {
	return time.Duration(c.LatchMs) * time.Millisecond
}

func (c *Config) Debounce() time.Duration {
	return time.Duration(c.DebounceMs) * time.Millisecond
}

func (c *Config) StepDelay() time.Duration {
	return time.Duration(c.Fade.StepDelayMs) * time.Millisecond
}

// NRZFreq is spi.speed_hz, or the clock matching the bit timing when unset.
func (c *Config) NRZFreq() physic.Frequency {
	if c.SPI.SpeedHz > 0 {
		return physic.Frequency(c.SPI.SpeedHz) * physic.Hertz
	}
	return led.NRZFreq(c.BitTiming())
}

func (c *Config) ParsedPalette() (model.Palette, error) {
	return model.ParsePalette(c.Palette)
}

// Strip converts the strip keys into a led.StripConfig.
func (c *Config) Strip() led.StripConfig {
	return led.StripConfig{
		LEDCount:   c.LEDCount,
		OutputPin:  c.OutputPin,
		Brightness: c.Brightness,
		Timing:     c.BitTiming(),
		Latch:      c.Latch(),
	}
}
