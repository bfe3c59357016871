//go:build rp2040 || rp2350

package main

import (
	"machine"
	"vnhdrive/core"
)

// ConfigureOutput configures a pin as a digital output.
// Reconfiguring is allowed; it also takes the pin back from a PWM slice.
func (b *RPBoard) ConfigureOutput(pin core.Pin) error {
	machinePin := pinToMachinePin(pin)
	machinePin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	b.configuredPins[pin] = machinePin
	return nil
}

// ConfigureInput configures a pin as a floating digital input.
// The VNH5019 diagnostic lines are open-drain with board pull-ups.
func (b *RPBoard) ConfigureInput(pin core.Pin) error {
	machinePin := pinToMachinePin(pin)
	machinePin.Configure(machine.PinConfig{Mode: machine.PinInput})
	b.configuredPins[pin] = machinePin
	return nil
}

// SetPin sets the pin to high (true) or low (false)
func (b *RPBoard) SetPin(pin core.Pin, high bool) error {
	machinePin, exists := b.configuredPins[pin]
	if !exists {
		return errPinNotConfigured
	}

	machinePin.Set(high)
	return nil
}

// GetPin reads the current pin state
func (b *RPBoard) GetPin(pin core.Pin) (bool, error) {
	machinePin, exists := b.configuredPins[pin]
	if !exists {
		return false, errPinNotConfigured
	}

	return machinePin.Get(), nil
}

// pinToMachinePin converts a pin to a machine.Pin
// For RP2040, pins map directly to GPIO numbers (GPIO0 = 0, GPIO1 = 1, ...)
func pinToMachinePin(pin core.Pin) machine.Pin {
	return machine.Pin(pin)
}
