package config

import (
	"os"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"go.uber.org/multierr"
	"periph.io/x/conn/v3/physic"

	"vnhdrive/core"
	"vnhdrive/host/periphboard"
)

const testYaml = `
backend: periph
log_level: debug
pins:
  ina: 2
  inb: 4
  ena_diag_a: 6
  enb_diag_b: 12
  cs: 26
  pwm: 9
sim:
  current_sense: 44
`

func TestConfigParsing(t *testing.T) {
	os.Unsetenv("VNH_BACKEND")
	os.Unsetenv("VNH_LOG_LEVEL")
	os.Unsetenv("VNH_DEBUG")

	Convey("parsing is successful", t, func() {
		config, err := Parse([]byte(testYaml))
		So(err, ShouldBeNil)
		So(config.Validate(), ShouldBeNil)

		Convey("top level values are set", func() {
			So(config.Backend, ShouldEqual, BackendPeriph)
			So(config.LogLevel, ShouldEqual, "debug")
			So(config.Debug, ShouldBeFalse)
		})

		Convey("pins map onto the driver", func() {
			So(config.Pins.VNH5019Pins(), ShouldResemble, core.VNH5019Pins{
				INA: 2, INB: 4, ENADiagA: 6, ENBDiagB: 12, CS: 26, PWM: 9,
			})
		})

		Convey("omitted sim values keep their defaults", func() {
			So(config.Sim.CurrentSense, ShouldEqual, 44)
			So(config.Sim.DiagA, ShouldBeTrue)
			So(config.Sim.DiagB, ShouldBeTrue)
		})
	})

	Convey("empty input gives the defaults", t, func() {
		config, err := Parse(nil)
		So(err, ShouldBeNil)
		So(config, ShouldResemble, Default())
		So(config.Validate(), ShouldBeNil)
	})

	Convey("malformed yaml is an error", t, func() {
		_, err := Parse([]byte("pins: [1, 2"))
		So(err, ShouldNotBeNil)
	})
}

func TestEnvironmentOverrides(t *testing.T) {
	Convey("VNH_ variables win over the file", t, func() {
		os.Setenv("VNH_BACKEND", BackendSim)
		os.Setenv("VNH_DEBUG", "true")
		defer os.Unsetenv("VNH_BACKEND")
		defer os.Unsetenv("VNH_DEBUG")

		config, err := Parse([]byte(testYaml))
		So(err, ShouldBeNil)
		So(config.Backend, ShouldEqual, BackendSim)
		So(config.Debug, ShouldBeTrue)
		So(config.LogLevel, ShouldEqual, "debug")
	})
}

func TestValidate(t *testing.T) {
	Convey("every problem is reported", t, func() {
		config := Default()
		config.Backend = "gpiod"
		config.LogLevel = "loud"
		config.Pins.INB = config.Pins.INA
		config.Pins.PWM = config.Pins.INA

		err := config.Validate()
		So(err, ShouldNotBeNil)
		So(len(multierr.Errors(err)), ShouldEqual, 4)
		So(err.Error(), ShouldContainSubstring, `unknown backend "gpiod"`)
		So(err.Error(), ShouldContainSubstring, "pins.ina and pins.inb both use pin 5")
		So(err.Error(), ShouldContainSubstring, "pins.ina and pins.pwm both use pin 5")
	})

	Convey("an out of range sim sample is rejected", t, func() {
		config := Default()
		config.Sim.CurrentSense = 2000
		So(config.Validate(), ShouldNotBeNil)
	})
}

func TestLoad(t *testing.T) {
	Convey("a missing file is an error", t, func() {
		_, err := Load("/nonexistent/vnh.yaml")
		So(err, ShouldNotBeNil)
	})

	Convey("a file on disk is parsed", t, func() {
		f, err := os.CreateTemp(t.TempDir(), "vnh-*.yaml")
		So(err, ShouldBeNil)
		_, err = f.WriteString(testYaml)
		So(err, ShouldBeNil)
		So(f.Close(), ShouldBeNil)

		config, err := Load(f.Name())
		So(err, ShouldBeNil)
		So(config.Pins.PWM, ShouldEqual, 9)
	})
}

const adcYaml = `
backend: periph
adc:
  chip: ads1115
  bus: I2C1
  address: 0x49
  channel: 2
`

func TestADCBinding(t *testing.T) {
	os.Unsetenv("VNH_BACKEND")

	Convey("the default config binds no converter", t, func() {
		So(Default().ADC.Enabled(), ShouldBeFalse)
	})

	Convey("an adc section selects a converter channel", t, func() {
		config, err := Parse([]byte(adcYaml))
		So(err, ShouldBeNil)
		So(config.Validate(), ShouldBeNil)
		So(config.ADC.Enabled(), ShouldBeTrue)

		Convey("omitted values keep their defaults", func() {
			So(config.ADC.MaxMilliVolts, ShouldEqual, 3300)
			So(config.ADC.SampleHz, ShouldEqual, 250)
		})

		Convey("it converts to the periph settings", func() {
			So(config.ADC.ADS1x15(), ShouldResemble, periphboard.ADS1x15{
				Chip:       periphboard.ChipADS1115,
				Bus:        "I2C1",
				Address:    0x49,
				Channel:    2,
				MaxVoltage: 3300 * physic.MilliVolt,
				SampleRate: 250 * physic.Hertz,
			})
		})
	})

	Convey("bad converter settings are all reported", t, func() {
		config := Default()
		config.ADC.Chip = "mcp3008"
		config.ADC.Channel = 5
		config.ADC.SampleHz = 0

		err := config.Validate()
		So(len(multierr.Errors(err)), ShouldEqual, 3)
		So(err.Error(), ShouldContainSubstring, `adc.chip "mcp3008"`)
		So(err.Error(), ShouldContainSubstring, "adc.channel 5")
	})
}
