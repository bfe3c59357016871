package core

// Pin identifies a hardware pin number on the target board
type Pin uint8

// GPIODriver is the digital half of the Board interface.
// Platform-specific implementations handle actual hardware control.
type GPIODriver interface {
	// ConfigureOutput configures a pin as a digital output
	ConfigureOutput(pin Pin) error

	// ConfigureInput configures a pin as a floating digital input
	ConfigureInput(pin Pin) error

	// SetPin sets the pin to high (true) or low (false)
	SetPin(pin Pin, high bool) error

	// GetPin reads the current pin state
	GetPin(pin Pin) (bool, error)
}
