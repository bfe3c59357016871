// Package config loads the host-side settings for one VNH5019 driver.
package config

import (
	"os"

	"github.com/caarlos0/env"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v2"
	"periph.io/x/conn/v3/physic"

	"vnhdrive/core"
	"vnhdrive/host/logging"
	"vnhdrive/host/periphboard"
)

// Backends the host binary can drive
const (
	BackendSim    = "sim"
	BackendPeriph = "periph"
)

// Config is the host configuration. YAML values are applied over Default(),
// then VNH_* environment variables override the tagged fields.
type Config struct {
	Backend  string    `yaml:"backend" env:"VNH_BACKEND"`
	LogLevel string    `yaml:"log_level" env:"VNH_LOG_LEVEL"`
	Debug    bool      `yaml:"debug" env:"VNH_DEBUG"`
	Pins     PinConfig `yaml:"pins"`
	Sim      SimConfig `yaml:"sim"`
	ADC      ADCConfig `yaml:"adc"`
}

// PinConfig is the wiring of the driver chip. Pin numbers are BCM GPIO numbers
// for the periph backend.
type PinConfig struct {
	INA      uint8 `yaml:"ina"`
	INB      uint8 `yaml:"inb"`
	ENADiagA uint8 `yaml:"ena_diag_a"`
	ENBDiagB uint8 `yaml:"enb_diag_b"`
	CS       uint8 `yaml:"cs"`
	PWM      uint8 `yaml:"pwm"`
}

// SimConfig sets the input levels the simulated board starts with
type SimConfig struct {
	CurrentSense uint16 `yaml:"current_sense"` // raw ADC sample, 0-1023
	DiagA        bool   `yaml:"diag_a"`        // true = line high = no fault
	DiagB        bool   `yaml:"diag_b"`
}

// ADCConfig binds the CS pin to an I2C converter on the periph backend.
// An empty Chip leaves current sense unbound.
type ADCConfig struct {
	Chip          string `yaml:"chip"` // ads1015 or ads1115
	Bus           string `yaml:"bus"`  // I2C bus name, empty for the first one
	Address       uint16 `yaml:"address"`
	Channel       int    `yaml:"channel"`
	MaxMilliVolts int    `yaml:"max_millivolts"`
	SampleHz      int    `yaml:"sample_hz"`
}

// Enabled reports whether a converter is configured
func (a ADCConfig) Enabled() bool {
	return a.Chip != ""
}

// ADS1x15 converts the section to the periph backend's converter settings
func (a ADCConfig) ADS1x15() periphboard.ADS1x15 {
	return periphboard.ADS1x15{
		Chip:       a.Chip,
		Bus:        a.Bus,
		Address:    a.Address,
		Channel:    a.Channel,
		MaxVoltage: physic.ElectricPotential(a.MaxMilliVolts) * physic.MilliVolt,
		SampleRate: physic.Frequency(a.SampleHz) * physic.Hertz,
	}
}

func (a ADCConfig) validate() error {
	if !a.Enabled() {
		return nil
	}

	var err error
	switch a.Chip {
	case periphboard.ChipADS1015, periphboard.ChipADS1115:
	default:
		err = multierr.Append(err, errors.Errorf("adc.chip %q is not ads1015 or ads1115", a.Chip))
	}
	if a.Channel < 0 || a.Channel > 3 {
		err = multierr.Append(err, errors.Errorf("adc.channel %d out of range 0-3", a.Channel))
	}
	if a.MaxMilliVolts <= 0 {
		err = multierr.Append(err, errors.Errorf("adc.max_millivolts must be positive, got %d", a.MaxMilliVolts))
	}
	if a.SampleHz <= 0 {
		err = multierr.Append(err, errors.Errorf("adc.sample_hz must be positive, got %d", a.SampleHz))
	}
	return err
}

// VNH5019Pins converts the wiring to the driver's pin set
func (p PinConfig) VNH5019Pins() core.VNH5019Pins {
	return core.VNH5019Pins{
		INA:      core.Pin(p.INA),
		INB:      core.Pin(p.INB),
		ENADiagA: core.Pin(p.ENADiagA),
		ENBDiagB: core.Pin(p.ENBDiagB),
		CS:       core.Pin(p.CS),
		PWM:      core.Pin(p.PWM),
	}
}

// Default returns the simulated backend with a Raspberry Pi style pin map.
// GPIO18 carries hardware PWM0.
func Default() *Config {
	return &Config{
		Backend:  BackendSim,
		LogLevel: "info",
		Pins: PinConfig{
			INA:      5,
			INB:      6,
			ENADiagA: 13,
			ENBDiagB: 19,
			CS:       0,
			PWM:      18,
		},
		Sim: SimConfig{
			DiagA: true,
			DiagB: true,
		},
		ADC: ADCConfig{
			Address:       0x48,
			MaxMilliVolts: 3300,
			SampleHz:      250,
		},
	}
}

// Parse decodes YAML over the defaults and applies environment overrides.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(err, "decoding config")
	}
	if err := env.Parse(cfg); err != nil {
		return nil, errors.Wrap(err, "reading environment overrides")
	}
	return cfg, nil
}

// Load reads and parses the config file at path. An empty path yields the
// defaults plus environment overrides.
func Load(path string) (*Config, error) {
	if path == "" {
		return Parse(nil)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading config %s", path)
	}
	return Parse(data)
}

// Validate reports every problem in the config, not just the first.
func (c *Config) Validate() error {
	var err error

	switch c.Backend {
	case BackendSim, BackendPeriph:
	default:
		err = multierr.Append(err, errors.Errorf("unknown backend %q", c.Backend))
	}

	if _, lerr := logging.ParseLevel(c.LogLevel); lerr != nil {
		err = multierr.Append(err, lerr)
	}

	if c.Sim.CurrentSense > core.ADCMax {
		err = multierr.Append(err, errors.Errorf("sim.current_sense %d exceeds %d", c.Sim.CurrentSense, core.ADCMax))
	}

	err = multierr.Append(err, c.ADC.validate())
	return multierr.Append(err, c.Pins.validate())
}

// validate checks the six pins are distinct
func (p PinConfig) validate() error {
	named := []struct {
		name string
		pin  uint8
	}{
		{"ina", p.INA},
		{"inb", p.INB},
		{"ena_diag_a", p.ENADiagA},
		{"enb_diag_b", p.ENBDiagB},
		{"cs", p.CS},
		{"pwm", p.PWM},
	}

	var err error
	seen := make(map[uint8]string, len(named))
	for _, n := range named {
		if other, ok := seen[n.pin]; ok {
			err = multierr.Append(err, errors.Errorf("pins.%s and pins.%s both use pin %d", other, n.name, n.pin))
			continue
		}
		seen[n.pin] = n.name
	}
	return err
}
