//go:build rp2040 || rp2350

package main

import (
	"errors"
	"machine"
	"vnhdrive/core"
)

var (
	errPinNotConfigured = errors.New("pin not configured")
	errNotADCPin        = errors.New("pin is not an ADC input")
	errBadFrequency     = errors.New("PWM frequency must be non-zero")
	errBadResolution    = errors.New("PWM resolution must be 1-16 bits")
)

// RPBoard implements core.Board on the RP2040 using TinyGo's machine package
type RPBoard struct {
	// Track configured pins
	configuredPins map[core.Pin]machine.Pin

	// Track pin to PWM channel mapping
	channels map[core.Pin]uint8

	// Track PWM peripherals for each slice
	// Key: slice number (0-7), Value: PWM peripheral
	peripherals map[uint8]pwmPeripheral

	// Duty resolution in bits shared by all PWM outputs
	resolution uint8

	adcs     map[core.Pin]machine.ADC
	adcReady bool
}

// NewRPBoard creates a board with nothing configured.
// PWM resolution defaults to 8 bits until SetPWMResolution is called.
func NewRPBoard() *RPBoard {
	return &RPBoard{
		configuredPins: make(map[core.Pin]machine.Pin),
		channels:       make(map[core.Pin]uint8),
		peripherals:    make(map[uint8]pwmPeripheral),
		resolution:     8,
		adcs:           make(map[core.Pin]machine.ADC),
	}
}
