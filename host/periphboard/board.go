// Package periphboard implements core.Board on Linux single-board computers
// through periph.io.
package periphboard

import (
	"fmt"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"periph.io/x/conn/v3/analog"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"

	"vnhdrive/core"
)

var (
	// ErrNoADC is returned for analog calls on a pin without a bound ADC
	ErrNoADC = errors.New("no ADC bound to pin")

	// ErrNotPWM is returned for duty writes before a PWM frequency is set
	ErrNotPWM = errors.New("pin has no PWM frequency configured")
)

// PinLookup resolves a pin number to a periph GPIO line
type PinLookup func(pin core.Pin) gpio.PinIO

// ByBCMNumber looks pins up in the periph registry as "GPIO<n>"
func ByBCMNumber(pin core.Pin) gpio.PinIO {
	return gpioreg.ByName(fmt.Sprintf("GPIO%d", pin))
}

// Board is a core.Board over periph GPIO lines and analog.PinADC inputs.
// Linux SBCs have no on-chip ADC on most models, so ADC inputs are bound
// explicitly (e.g. channels of an external converter).
type Board struct {
	mu         sync.Mutex
	logger     *zap.SugaredLogger
	lookup     PinLookup
	adcs       map[core.Pin]analog.PinADC
	frequency  map[core.Pin]physic.Frequency
	resolution uint8
	buses      []i2c.BusCloser
}

// NewHostBoard initializes the periph host drivers and returns a board
// resolving pins by BCM number.
func NewHostBoard(logger *zap.SugaredLogger, adcs map[core.Pin]analog.PinADC) (*Board, error) {
	state, err := host.Init()
	if err != nil {
		return nil, errors.Wrap(err, "initializing periph host drivers")
	}
	for _, failure := range state.Failed {
		logger.Debugw("periph driver failed to load", "driver", failure.D.String(), "error", failure.Err)
	}
	return NewBoard(logger, ByBCMNumber, adcs), nil
}

// NewBoard returns a board using lookup to find GPIO lines.
func NewBoard(logger *zap.SugaredLogger, lookup PinLookup, adcs map[core.Pin]analog.PinADC) *Board {
	if adcs == nil {
		adcs = make(map[core.Pin]analog.PinADC)
	}
	return &Board{
		logger:     logger,
		lookup:     lookup,
		adcs:       adcs,
		frequency:  make(map[core.Pin]physic.Frequency),
		resolution: 8,
	}
}

func (b *Board) line(pin core.Pin) (gpio.PinIO, error) {
	p := b.lookup(pin)
	if p == nil {
		return nil, errors.Errorf("no GPIO line for pin %d", pin)
	}
	return p, nil
}

func (b *Board) ConfigureOutput(pin core.Pin) error {
	p, err := b.line(pin)
	if err != nil {
		return err
	}
	if err := p.Out(gpio.Low); err != nil {
		return errors.Wrapf(err, "configuring %s as output", p)
	}
	return nil
}

func (b *Board) ConfigureInput(pin core.Pin) error {
	p, err := b.line(pin)
	if err != nil {
		return err
	}
	if err := p.In(gpio.PullNoChange, gpio.NoEdge); err != nil {
		return errors.Wrapf(err, "configuring %s as input", p)
	}
	return nil
}

func (b *Board) SetPin(pin core.Pin, high bool) error {
	p, err := b.line(pin)
	if err != nil {
		return err
	}
	l := gpio.Low
	if high {
		l = gpio.High
	}
	return p.Out(l)
}

func (b *Board) GetPin(pin core.Pin) (bool, error) {
	p, err := b.line(pin)
	if err != nil {
		return false, err
	}
	return p.Read() == gpio.High, nil
}

func (b *Board) SetPWMFrequency(pin core.Pin, hertz uint32) error {
	if hertz == 0 {
		return errors.New("PWM frequency must be non-zero")
	}
	if _, err := b.line(pin); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.frequency[pin] = physic.Hertz * physic.Frequency(hertz)
	return nil
}

func (b *Board) SetPWMResolution(bits uint8) error {
	if bits == 0 || bits > 16 {
		return errors.Errorf("PWM resolution %d out of range 1-16", bits)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.resolution = bits
	return nil
}

// SetDutyCycle scales value from the configured resolution onto gpio.DutyMax.
func (b *Board) SetDutyCycle(pin core.Pin, value core.PWMValue) error {
	p, err := b.line(pin)
	if err != nil {
		return err
	}

	b.mu.Lock()
	freq, ok := b.frequency[pin]
	maxValue := core.MaxPWMValue(b.resolution)
	b.mu.Unlock()
	if !ok {
		return ErrNotPWM
	}

	v := uint64(value)
	if v > uint64(maxValue) {
		v = uint64(maxValue)
	}
	duty := gpio.Duty(v * uint64(gpio.DutyMax) / uint64(maxValue))
	if err := p.PWM(duty, freq); err != nil {
		return errors.Wrapf(err, "setting duty %d on %s", value, p)
	}
	return nil
}

// BindADC attaches an analog input to pin
func (b *Board) BindADC(pin core.Pin, adc analog.PinADC) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.adcs[pin] = adc
}

// Close halts every bound ADC and closes the I2C buses opened for them.
func (b *Board) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	var err error
	for pin, a := range b.adcs {
		if herr := a.Halt(); herr != nil {
			err = multierr.Append(err, errors.Wrapf(herr, "halting ADC on pin %d", pin))
		}
	}
	for _, bus := range b.buses {
		err = multierr.Append(err, bus.Close())
	}
	b.buses = nil
	return err
}

func (b *Board) adc(pin core.Pin) (analog.PinADC, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	a, ok := b.adcs[pin]
	if !ok {
		return nil, errors.Wrapf(ErrNoADC, "pin %d", pin)
	}
	return a, nil
}

// ConfigureAnalogInput probes the ADC bound to pin. A pin without an ADC is
// only logged so the digital side of a driver can still be initialized;
// ReadAnalog on it returns ErrNoADC.
func (b *Board) ConfigureAnalogInput(pin core.Pin) error {
	a, err := b.adc(pin)
	if err != nil {
		b.logger.Warnw("no ADC bound, current sense unavailable", "pin", pin)
		return nil
	}
	lo, hi := a.Range()
	if hi.Raw <= lo.Raw {
		return errors.Errorf("ADC %s reports an empty range [%d, %d]", a, lo.Raw, hi.Raw)
	}
	return nil
}

// ReadAnalog rescales the converter's raw range onto 0-1023.
func (b *Board) ReadAnalog(pin core.Pin) (core.ADCValue, error) {
	a, err := b.adc(pin)
	if err != nil {
		return 0, err
	}

	lo, hi := a.Range()
	s, err := a.Read()
	if err != nil {
		return 0, errors.Wrapf(err, "sampling %s", a)
	}
	return scaleSample(s.Raw, lo.Raw, hi.Raw), nil
}

// scaleSample maps raw in [lo, hi] onto [0, core.ADCMax], clamping outside values
func scaleSample(raw, lo, hi int32) core.ADCValue {
	if hi <= lo || raw <= lo {
		return 0
	}
	if raw >= hi {
		return core.ADCMax
	}
	return core.ADCValue(int64(raw-lo) * core.ADCMax / int64(hi-lo))
}
