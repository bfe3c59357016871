//go:build rp2040 || rp2350

package main

import (
	"machine"
	"vnhdrive/core"
)

// pwmPeripheral is an interface for PWM hardware peripherals
// This abstracts over TinyGo's unexported *pwmGroup type
type pwmPeripheral interface {
	Configure(config machine.PWMConfig) error
	Channel(pin machine.Pin) (uint8, error)
	Top() uint32
	Set(channel uint8, value uint32)
}

// SetPWMFrequency configures the slice that owns pin and claims the pin's channel
func (b *RPBoard) SetPWMFrequency(pin core.Pin, hertz uint32) error {
	if hertz == 0 {
		return errBadFrequency
	}

	// RP2040: GPIO pin N maps to:
	//   Slice: (N >> 1) & 0x7  (divide by 2, mod 8)
	//   Channel: N & 1          (even=A, odd=B)
	sliceNum := sliceOf(pin)

	pwm, exists := b.peripherals[sliceNum]
	if !exists {
		pwm = getPWMPeripheral(sliceNum)
		b.peripherals[sliceNum] = pwm
	}

	// period in nanoseconds; 20kHz -> 50000ns
	period := uint64(1000000000) / uint64(hertz)
	if err := pwm.Configure(machine.PWMConfig{Period: period}); err != nil {
		return err
	}

	channel, err := pwm.Channel(pinToMachinePin(pin))
	if err != nil {
		return err
	}

	b.channels[pin] = channel
	return nil
}

// SetPWMResolution sets the duty range used by SetDutyCycle
func (b *RPBoard) SetPWMResolution(bits uint8) error {
	if bits == 0 || bits > 16 {
		return errBadResolution
	}
	b.resolution = bits
	return nil
}

// SetDutyCycle sets the PWM duty cycle for a pin
// value: 0 (fully off) to 2^resolution-1 (fully on)
func (b *RPBoard) SetDutyCycle(pin core.Pin, value core.PWMValue) error {
	channel, exists := b.channels[pin]
	if !exists {
		return errPinNotConfigured
	}
	pwm := b.peripherals[sliceOf(pin)]

	// TinyGo compares the channel value against Top(), scale our range onto it
	maxValue := core.MaxPWMValue(b.resolution)
	v := uint32(value)
	if v > maxValue {
		v = maxValue
	}
	dutyCycle := uint32(uint64(v) * uint64(pwm.Top()) / uint64(maxValue))

	pwm.Set(channel, dutyCycle)
	return nil
}

func sliceOf(pin core.Pin) uint8 {
	return uint8((pin >> 1) & 0x7)
}

// getPWMPeripheral returns the PWM peripheral for a given slice number
// RP2040 has 8 PWM slices: PWM0-PWM7
func getPWMPeripheral(sliceNum uint8) pwmPeripheral {
	switch sliceNum {
	case 0:
		return machine.PWM0
	case 1:
		return machine.PWM1
	case 2:
		return machine.PWM2
	case 3:
		return machine.PWM3
	case 4:
		return machine.PWM4
	case 5:
		return machine.PWM5
	case 6:
		return machine.PWM6
	default:
		return machine.PWM7
	}
}
