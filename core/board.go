package core

// Board is the complete hardware-access capability set a motor driver needs:
// pin mode configuration, digital read/write, analog read and PWM output.
// Targets provide real implementations; SimBoard replaces the hardware in tests.
type Board interface {
	GPIODriver
	PWMDriver
	ADCDriver
}

// Global board used by firmware code that has a single set of pins.
var board Board

// SetBoard is called by target-specific code to register its board.
func SetBoard(b Board) {
	board = b
}

// MustBoard returns the configured board or panics if missing.
func MustBoard() Board {
	if board == nil {
		panic("board not configured")
	}
	return board
}
