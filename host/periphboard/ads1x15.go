package periphboard

import (
	"github.com/pkg/errors"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/ads1x15"

	"vnhdrive/core"
)

// Supported I2C converters for the current-sense line
const (
	ChipADS1015 = "ads1015"
	ChipADS1115 = "ads1115"
)

// ADS1x15 selects one single-ended input of a TI ADS1015/ADS1115.
type ADS1x15 struct {
	Chip       string // ChipADS1015 or ChipADS1115
	Bus        string // i2creg name, empty for the first registered bus
	Address    uint16
	Channel    int // 0-3, measured against GND
	MaxVoltage physic.ElectricPotential
	SampleRate physic.Frequency
}

var singleEnded = [...]ads1x15.Channel{
	ads1x15.Channel0,
	ads1x15.Channel1,
	ads1x15.Channel2,
	ads1x15.Channel3,
}

func (c ADS1x15) check() error {
	switch c.Chip {
	case ChipADS1015, ChipADS1115:
	default:
		return errors.Errorf("unsupported ADC chip %q", c.Chip)
	}
	if c.Channel < 0 || c.Channel >= len(singleEnded) {
		return errors.Errorf("ADC channel %d out of range 0-%d", c.Channel, len(singleEnded)-1)
	}
	if c.MaxVoltage <= 0 || c.SampleRate <= 0 {
		return errors.New("ADC max voltage and sample rate must be positive")
	}
	return nil
}

// BindADS1x15 opens the converter described by c and binds its channel to pin.
// The bus stays open until Close.
func (b *Board) BindADS1x15(pin core.Pin, c ADS1x15) error {
	if err := c.check(); err != nil {
		return err
	}

	bus, err := i2creg.Open(c.Bus)
	if err != nil {
		return errors.Wrapf(err, "opening I2C bus %q", c.Bus)
	}

	adc, err := openADS1x15(bus, c)
	if err != nil {
		bus.Close()
		return err
	}

	b.mu.Lock()
	b.buses = append(b.buses, bus)
	b.mu.Unlock()
	b.BindADC(pin, adc)

	b.logger.Infow("current sense bound", "pin", pin, "chip", c.Chip, "bus", bus.String(), "channel", c.Channel)
	return nil
}

func openADS1x15(bus i2c.Bus, c ADS1x15) (ads1x15.PinADC, error) {
	opts := &ads1x15.Opts{I2cAddress: c.Address}

	var dev *ads1x15.Dev
	var err error
	if c.Chip == ChipADS1015 {
		dev, err = ads1x15.NewADS1015(bus, opts)
	} else {
		dev, err = ads1x15.NewADS1115(bus, opts)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s at %#x", c.Chip, c.Address)
	}

	adc, err := dev.PinForChannel(singleEnded[c.Channel], c.MaxVoltage, c.SampleRate, ads1x15.BestQuality)
	if err != nil {
		return nil, errors.Wrapf(err, "configuring %s channel %d", c.Chip, c.Channel)
	}
	return adc, nil
}
