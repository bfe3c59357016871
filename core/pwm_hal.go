package core

// PWMValue is the duty cycle value (0 to the configured resolution maximum)
type PWMValue uint16

// PWMDriver is the abstract PWM interface that core code uses.
type PWMDriver interface {
	// SetPWMFrequency sets the carrier frequency of the PWM output on pin
	SetPWMFrequency(pin Pin, hertz uint32) error

	// SetPWMResolution sets the duty cycle resolution in bits for all PWM outputs.
	// With 10 bits the duty range is 0-1023.
	SetPWMResolution(bits uint8) error

	// SetDutyCycle sets the PWM duty cycle for a pin
	// value: 0 (fully off) to 2^bits-1 (fully on)
	SetDutyCycle(pin Pin, value PWMValue) error
}

// MaxPWMValue returns the largest duty value representable at the given resolution.
func MaxPWMValue(bits uint8) uint32 {
	if bits == 0 || bits > 16 {
		bits = 16
	}
	return (uint32(1) << bits) - 1
}
