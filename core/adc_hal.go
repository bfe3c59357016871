package core

// ADCValue is the raw ADC reading as seen by the driver.
// Convention here: 10-bit value (0-1023), whatever the hardware resolution is.
type ADCValue uint16

// ADCMax is the largest ADCValue a Board returns.
const ADCMax = 1023

// ADCDriver is the abstract ADC interface that core code uses.
type ADCDriver interface {
	// ConfigureAnalogInput prepares a pin for analog input.
	// For pin-muxed channels, this should set pin to analog mode.
	ConfigureAnalogInput(pin Pin) error

	// ReadAnalog performs a one-shot sample from the given pin.
	ReadAnalog(pin Pin) (ADCValue, error)
}
