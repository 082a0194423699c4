package emu

import (
	"io/fs"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-faster/errors"

	"port51/hw"
	"port51/hw/timing"
)

type Config struct {
	Clock    ClockConfig    `toml:"clock"`
	Ports    PortsConfig    `toml:"ports"`
	Debounce DebounceConfig `toml:"debounce"`
	Demo     DemoConfig     `toml:"demo"`
}

type ClockConfig struct {
	OscillatorHz   uint64 `toml:"oscillator_hz"`
	ClocksPerCycle int    `toml:"clocks_per_cycle"`
	Mode           string `toml:"mode"` // "loop" or "timer"
	Realtime       bool   `toml:"realtime"`
}

// PortsConfig is the direction table, 1 = input.
type PortsConfig struct {
	P0 uint8 `toml:"p0"`
	P1 uint8 `toml:"p1"`
	P2 uint8 `toml:"p2"`
	P3 uint8 `toml:"p3"`
}

type DebounceConfig struct {
	SettleMs   uint `toml:"settle_ms"`
	MaxRetries int  `toml:"max_retries"`
}

type DemoConfig struct {
	Cycles   int  `toml:"cycles"`
	Extended bool `toml:"extended"`
}

// DefaultConfig matches the reference board: 11.0592MHz crystal, LEDs on
// P1, buttons on P0.
func DefaultConfig() Config {
	d := hw.DefaultDirections
	return Config{
		Clock: ClockConfig{
			OscillatorHz:   timing.Default8051.Hz,
			ClocksPerCycle: timing.Default8051.ClocksPerCycle,
			Mode:           "loop",
			Realtime:       true,
		},
		Ports: PortsConfig{P0: d[hw.P0], P1: d[hw.P1], P2: d[hw.P2], P3: d[hw.P3]},
		Debounce: DebounceConfig{
			SettleMs:   uint(hw.DefaultSettle / time.Millisecond),
			MaxRetries: hw.DefaultMaxRetries,
		},
		Demo: DemoConfig{Cycles: 1},
	}
}

// Validate reports configuration values the emulator can't run with.
func (cfg *Config) Validate() error {
	switch {
	case cfg.Clock.OscillatorHz == 0:
		return errors.Errorf("clock: invalid oscillator frequency %v", cfg.Clock.OscillatorHz)
	case cfg.Clock.ClocksPerCycle <= 0:
		return errors.Errorf("clock: invalid clocks per cycle %d", cfg.Clock.ClocksPerCycle)
	case cfg.Clock.Mode != "loop" && cfg.Clock.Mode != "timer":
		return errors.Errorf("clock: unknown mode %q", cfg.Clock.Mode)
	case cfg.Debounce.MaxRetries < 0:
		return errors.Errorf("debounce: negative max_retries %d", cfg.Debounce.MaxRetries)
	case cfg.Demo.Cycles < 0:
		return errors.Errorf("demo: negative cycles %d", cfg.Demo.Cycles)
	}
	return nil
}

func (cfg *Config) Oscillator() timing.Oscillator {
	return timing.Oscillator{Hz: cfg.Clock.OscillatorHz, ClocksPerCycle: cfg.Clock.ClocksPerCycle}
}

func (cfg *Config) Directions() hw.Directions {
	return hw.Directions{cfg.Ports.P0, cfg.Ports.P1, cfg.Ports.P2, cfg.Ports.P3}
}

// LoadConfigOrDefault loads the configuration at path. Values missing from
// the file keep their default. A missing file gives the default
// configuration.
func LoadConfigOrDefault(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	md, err := toml.DecodeFile(path, &cfg)
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return cfg, errors.Wrapf(err, "load config %s", path)
	}
	if undec := md.Undecoded(); len(undec) > 0 {
		return cfg, errors.Errorf("load config %s: unknown key %q", path, undec[0].String())
	}
	if err := cfg.Validate(); err != nil {
		return cfg, errors.Wrapf(err, "load config %s", path)
	}
	return cfg, nil
}

// SaveConfig writes cfg to path.
func SaveConfig(path string, cfg Config) error {
	buf, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, buf, 0644)
}

// NewClock returns the wall clock, or a virtual clock starting now when
// realtime is off.
func (cfg *Config) NewClock() timing.Clock {
	if cfg.Clock.Realtime {
		return timing.SystemClock{}
	}
	return timing.NewVirtualClock(time.Now())
}

// NewDelay returns the delay routine selected by the clock mode.
func (cfg *Config) NewDelay(clk timing.Clock) timing.Delayer {
	if cfg.Clock.Mode == "timer" {
		return timing.NewTimer(clk, cfg.Oscillator())
	}
	return timing.NewLoop(clk, cfg.Oscillator())
}

// NewBoard returns a board with its ports initialized from the direction
// table, paced by a delay running on clk.
func (cfg *Config) NewBoard(clk timing.Clock) *hw.Board {
	m := hw.NewMCU(cfg.NewDelay(clk))
	m.Init(cfg.Directions())

	b := hw.NewBoard(m)
	b.Debounce.Settle = time.Duration(cfg.Debounce.SettleMs) * time.Millisecond
	b.Debounce.MaxRetries = cfg.Debounce.MaxRetries
	return b
}
