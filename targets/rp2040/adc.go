//go:build rp2040 || rp2350

package main

import (
	"machine"
	"vnhdrive/core"
)

// ConfigureAnalogInput sets up the ADC channel behind pin.
// Only GPIO26-GPIO29 (ADC0-ADC3) are routed to the ADC.
func (b *RPBoard) ConfigureAnalogInput(pin core.Pin) error {
	if pin < 26 || pin > 29 {
		return errNotADCPin
	}

	if !b.adcReady {
		machine.InitADC()
		b.adcReady = true
	}

	adc := machine.ADC{Pin: pinToMachinePin(pin)}
	if err := adc.Configure(machine.ADCConfig{}); err != nil {
		return err
	}

	b.adcs[pin] = adc
	return nil
}

// ReadAnalog returns a 10-bit sample (0-1023).
// machine.ADC.Get is normalised to 16 bits, so the top 10 bits are kept.
func (b *RPBoard) ReadAnalog(pin core.Pin) (core.ADCValue, error) {
	adc, ok := b.adcs[pin]
	if !ok {
		return 0, errPinNotConfigured
	}
	return core.ADCValue(adc.Get() >> 6), nil
}
