package core

import "sync"

// PinMode is the mode a SimBoard pin was last configured to
type PinMode uint8

const (
	PinModeUnset PinMode = iota
	PinModeOutput
	PinModeInput
	PinModeAnalogInput
)

// SimOpKind identifies a Board call recorded by SimBoard
type SimOpKind uint8

const (
	OpConfigureOutput SimOpKind = iota + 1
	OpConfigureInput
	OpConfigureAnalogInput
	OpSetPin
	OpGetPin
	OpReadAnalog
	OpSetDutyCycle
	OpSetPWMFrequency
	OpSetPWMResolution
)

var simOpNames = [...]string{
	OpConfigureOutput:      "configure_output",
	OpConfigureInput:       "configure_input",
	OpConfigureAnalogInput: "configure_analog_input",
	OpSetPin:               "set_pin",
	OpGetPin:               "get_pin",
	OpReadAnalog:           "read_analog",
	OpSetDutyCycle:         "set_duty_cycle",
	OpSetPWMFrequency:      "set_pwm_frequency",
	OpSetPWMResolution:     "set_pwm_resolution",
}

func (k SimOpKind) String() string {
	if int(k) < len(simOpNames) && simOpNames[k] != "" {
		return simOpNames[k]
	}
	return "unknown"
}

// SimOp is one recorded Board call. Value holds the level (0/1), duty,
// frequency, resolution or sample, depending on Kind.
type SimOp struct {
	Kind  SimOpKind
	Pin   Pin
	Value uint32
}

type simFailKey struct {
	kind SimOpKind
	pin  Pin
}

// SimBoard is an in-memory Board. It keeps the state a real board would have
// after each call and logs the calls in order.
type SimBoard struct {
	mu         sync.Mutex
	modes      map[Pin]PinMode
	levels     map[Pin]bool
	analog     map[Pin]ADCValue
	duty       map[Pin]PWMValue
	frequency  map[Pin]uint32
	resolution uint8
	ops        []SimOp
	failures   map[simFailKey]error
}

// NewSimBoard creates an empty simulated board. All pins read low.
func NewSimBoard() *SimBoard {
	return &SimBoard{
		modes:     make(map[Pin]PinMode),
		levels:    make(map[Pin]bool),
		analog:    make(map[Pin]ADCValue),
		duty:      make(map[Pin]PWMValue),
		frequency: make(map[Pin]uint32),
		failures:  make(map[simFailKey]error),
	}
}

// call records op and returns the injected failure for it, if any
func (s *SimBoard) call(kind SimOpKind, pin Pin, value uint32) error {
	s.ops = append(s.ops, SimOp{Kind: kind, Pin: pin, Value: value})
	return s.failures[simFailKey{kind, pin}]
}

func (s *SimBoard) ConfigureOutput(pin Pin) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.call(OpConfigureOutput, pin, 0); err != nil {
		return err
	}
	s.modes[pin] = PinModeOutput
	return nil
}

func (s *SimBoard) ConfigureInput(pin Pin) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.call(OpConfigureInput, pin, 0); err != nil {
		return err
	}
	s.modes[pin] = PinModeInput
	return nil
}

func (s *SimBoard) ConfigureAnalogInput(pin Pin) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.call(OpConfigureAnalogInput, pin, 0); err != nil {
		return err
	}
	s.modes[pin] = PinModeAnalogInput
	return nil
}

func (s *SimBoard) SetPin(pin Pin, high bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var v uint32
	if high {
		v = 1
	}
	if err := s.call(OpSetPin, pin, v); err != nil {
		return err
	}
	s.levels[pin] = high
	return nil
}

func (s *SimBoard) GetPin(pin Pin) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	high := s.levels[pin]
	var v uint32
	if high {
		v = 1
	}
	if err := s.call(OpGetPin, pin, v); err != nil {
		return false, err
	}
	return high, nil
}

func (s *SimBoard) ReadAnalog(pin Pin) (ADCValue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sample := s.analog[pin]
	if err := s.call(OpReadAnalog, pin, uint32(sample)); err != nil {
		return 0, err
	}
	return sample, nil
}

func (s *SimBoard) SetDutyCycle(pin Pin, value PWMValue) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.call(OpSetDutyCycle, pin, uint32(value)); err != nil {
		return err
	}
	s.duty[pin] = value
	return nil
}

func (s *SimBoard) SetPWMFrequency(pin Pin, hertz uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.call(OpSetPWMFrequency, pin, hertz); err != nil {
		return err
	}
	s.frequency[pin] = hertz
	return nil
}

func (s *SimBoard) SetPWMResolution(bits uint8) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.call(OpSetPWMResolution, 0, uint32(bits)); err != nil {
		return err
	}
	s.resolution = bits
	return nil
}

// SetInput drives an input pin from the outside world
func (s *SimBoard) SetInput(pin Pin, high bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.levels[pin] = high
}

// SetAnalog sets the sample the next ReadAnalog on pin returns
func (s *SimBoard) SetAnalog(pin Pin, value ADCValue) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.analog[pin] = value
}

// FailOn makes every later call of kind on pin return err.
// SetPWMResolution is recorded against pin 0.
func (s *SimBoard) FailOn(kind SimOpKind, pin Pin, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[simFailKey{kind, pin}] = err
}

// ClearFailures removes all injected failures
func (s *SimBoard) ClearFailures() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = make(map[simFailKey]error)
}

// Mode returns the last configured mode of pin
func (s *SimBoard) Mode(pin Pin) PinMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.modes[pin]
}

// Level returns the current level of pin
func (s *SimBoard) Level(pin Pin) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.levels[pin]
}

// Duty returns the last duty written to pin
func (s *SimBoard) Duty(pin Pin) PWMValue {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.duty[pin]
}

// Frequency returns the PWM frequency configured on pin
func (s *SimBoard) Frequency(pin Pin) uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frequency[pin]
}

// Resolution returns the configured PWM resolution in bits
func (s *SimBoard) Resolution() uint8 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resolution
}

// Ops returns a copy of the recorded calls
func (s *SimBoard) Ops() []SimOp {
	s.mu.Lock()
	defer s.mu.Unlock()
	ops := make([]SimOp, len(s.ops))
	copy(ops, s.ops)
	return ops
}

// ResetOps clears the call log
func (s *SimBoard) ResetOps() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ops = s.ops[:0]
}
