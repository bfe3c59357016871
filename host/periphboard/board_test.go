package periphboard

import (
	"errors"
	"testing"

	"go.uber.org/zap"
	"periph.io/x/conn/v3/analog"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"periph.io/x/conn/v3/physic"

	"vnhdrive/core"
)

// fakeADC is an analog.PinADC with a fixed range and a settable sample
type fakeADC struct {
	lo, hi  int32
	raw     int32
	readErr error
	halted  int
}

var _ analog.PinADC = (*fakeADC)(nil)

func (f *fakeADC) String() string   { return "fakeADC" }
func (f *fakeADC) Halt() error      { f.halted++; return nil }
func (f *fakeADC) Name() string     { return "fakeADC" }
func (f *fakeADC) Number() int      { return -1 }
func (f *fakeADC) Function() string { return "ADC" }

func (f *fakeADC) Range() (analog.Sample, analog.Sample) {
	return analog.Sample{Raw: f.lo}, analog.Sample{Raw: f.hi}
}

func (f *fakeADC) Read() (analog.Sample, error) {
	if f.readErr != nil {
		return analog.Sample{}, f.readErr
	}
	return analog.Sample{Raw: f.raw}, nil
}

var testPins = core.VNH5019Pins{INA: 5, INB: 6, ENADiagA: 13, ENBDiagB: 19, CS: 0, PWM: 18}

func setupBoard(t *testing.T) (*Board, map[core.Pin]*gpiotest.Pin, *fakeADC) {
	t.Helper()
	lines := map[core.Pin]*gpiotest.Pin{}
	for _, n := range []core.Pin{testPins.INA, testPins.INB, testPins.ENADiagA, testPins.ENBDiagB, testPins.PWM} {
		lines[n] = &gpiotest.Pin{N: "GPIO", Num: int(n)}
	}
	lookup := func(pin core.Pin) gpio.PinIO {
		if p, ok := lines[pin]; ok {
			return p
		}
		return nil
	}
	adc := &fakeADC{lo: 0, hi: 4095}
	b := NewBoard(zap.NewNop().Sugar(), lookup, map[core.Pin]analog.PinADC{testPins.CS: adc})
	return b, lines, adc
}

func TestDriverOnPeriphBoard(t *testing.T) {
	b, lines, adc := setupBoard(t)
	drv := core.NewVNH5019(b, testPins)

	if err := drv.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	if err := drv.SetSpeed(-1023); err != nil {
		t.Fatalf("SetSpeed failed: %v", err)
	}
	pwm := lines[testPins.PWM]
	if pwm.D != gpio.DutyMax {
		t.Errorf("Expected duty %d, got %d", gpio.DutyMax, pwm.D)
	}
	if pwm.F != 20*physic.KiloHertz {
		t.Errorf("Expected 20kHz, got %s", pwm.F)
	}
	if lines[testPins.INA].L != gpio.Low || lines[testPins.INB].L != gpio.High {
		t.Errorf("Expected reverse pattern, got INA=%s INB=%s", lines[testPins.INA].L, lines[testPins.INB].L)
	}

	if err := drv.SetBrake(0); err != nil {
		t.Fatalf("SetBrake failed: %v", err)
	}
	if pwm.D != 0 {
		t.Errorf("Expected duty 0, got %d", pwm.D)
	}

	lines[testPins.ENADiagA].L = gpio.Low
	lines[testPins.ENBDiagB].L = gpio.High
	adc.raw = 4095
	status, err := drv.ReadStatus()
	if err != nil {
		t.Fatalf("ReadStatus failed: %v", err)
	}
	want := core.MotorStatus{CurrentMilliAmps: 1023 * 23, FaultA: true, FaultB: false}
	if status != want {
		t.Errorf("Expected %+v, got %+v", want, status)
	}
}

func TestSetDutyCycleScaling(t *testing.T) {
	b, lines, _ := setupBoard(t)
	if err := b.SetPWMFrequency(testPins.PWM, 20000); err != nil {
		t.Fatalf("SetPWMFrequency failed: %v", err)
	}
	if err := b.SetPWMResolution(10); err != nil {
		t.Fatalf("SetPWMResolution failed: %v", err)
	}

	testCases := []struct {
		value core.PWMValue
		want  gpio.Duty
	}{
		{0, 0},
		{1023, gpio.DutyMax},
		{2000, gpio.DutyMax},
		{512, gpio.Duty(uint64(512) * uint64(gpio.DutyMax) / 1023)},
	}
	for _, tc := range testCases {
		if err := b.SetDutyCycle(testPins.PWM, tc.value); err != nil {
			t.Fatalf("SetDutyCycle(%d) failed: %v", tc.value, err)
		}
		if got := lines[testPins.PWM].D; got != tc.want {
			t.Errorf("value %d: expected duty %d, got %d", tc.value, tc.want, got)
		}
	}
}

func TestSetDutyCycleNeedsFrequency(t *testing.T) {
	b, _, _ := setupBoard(t)
	if err := b.SetDutyCycle(testPins.PWM, 10); !errors.Is(err, ErrNotPWM) {
		t.Errorf("Expected ErrNotPWM, got %v", err)
	}
}

func TestUnknownPin(t *testing.T) {
	b, _, _ := setupBoard(t)
	if err := b.ConfigureOutput(42); err == nil {
		t.Error("Expected error for pin without a GPIO line")
	}
	if _, err := b.GetPin(42); err == nil {
		t.Error("Expected error for pin without a GPIO line")
	}
}

func TestAnalogInput(t *testing.T) {
	b, _, adc := setupBoard(t)

	if err := b.ConfigureAnalogInput(7); err != nil {
		t.Errorf("Expected unbound ADC to be tolerated, got %v", err)
	}
	if _, err := b.ReadAnalog(7); !errors.Is(err, ErrNoADC) {
		t.Errorf("Expected ErrNoADC, got %v", err)
	}

	adc.raw = 2048
	got, err := b.ReadAnalog(testPins.CS)
	if err != nil {
		t.Fatalf("ReadAnalog failed: %v", err)
	}
	if got != 511 {
		t.Errorf("Expected 511, got %d", got)
	}

	adc.readErr = errors.New("conversion timeout")
	if _, err := b.ReadAnalog(testPins.CS); !errors.Is(err, adc.readErr) {
		t.Errorf("Expected wrapped read error, got %v", err)
	}
}

func TestScaleSample(t *testing.T) {
	testCases := []struct {
		raw, lo, hi int32
		want        core.ADCValue
	}{
		{0, 0, 1023, 0},
		{44, 0, 1023, 44},
		{1023, 0, 1023, 1023},
		{-5, 0, 1023, 0},
		{5000, 0, 4095, 1023},
		{100, 100, 100, 0},
		{0, -2048, 2047, 511},
	}
	for _, tc := range testCases {
		if got := scaleSample(tc.raw, tc.lo, tc.hi); got != tc.want {
			t.Errorf("scaleSample(%d, %d, %d): expected %d, got %d", tc.raw, tc.lo, tc.hi, tc.want, got)
		}
	}
}

func TestAnalogInputEmptyRange(t *testing.T) {
	b, _, _ := setupBoard(t)
	b.BindADC(7, &fakeADC{lo: 100, hi: 100})

	if err := b.ConfigureAnalogInput(7); err == nil {
		t.Error("Expected error for an ADC with an empty range")
	}
	if err := b.ConfigureAnalogInput(testPins.CS); err != nil {
		t.Errorf("ConfigureAnalogInput failed: %v", err)
	}
}

func TestBindADS1x15RejectsBadSettings(t *testing.T) {
	valid := ADS1x15{
		Chip:       ChipADS1115,
		Address:    0x48,
		Channel:    0,
		MaxVoltage: 3300 * physic.MilliVolt,
		SampleRate: 250 * physic.Hertz,
	}

	testCases := []struct {
		name   string
		mutate func(c *ADS1x15)
	}{
		{"unknown chip", func(c *ADS1x15) { c.Chip = "mcp3008" }},
		{"negative channel", func(c *ADS1x15) { c.Channel = -1 }},
		{"channel past 3", func(c *ADS1x15) { c.Channel = 4 }},
		{"no voltage", func(c *ADS1x15) { c.MaxVoltage = 0 }},
		{"no sample rate", func(c *ADS1x15) { c.SampleRate = 0 }},
	}

	b, _, _ := setupBoard(t)
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := valid
			tc.mutate(&c)
			if err := b.BindADS1x15(testPins.CS, c); err == nil {
				t.Errorf("Expected %+v to be rejected", c)
			}
		})
	}

	if err := valid.check(); err != nil {
		t.Errorf("Expected valid settings to pass, got %v", err)
	}
}

func TestCloseHaltsADCs(t *testing.T) {
	b, _, adc := setupBoard(t)
	if err := b.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if adc.halted != 1 {
		t.Errorf("Expected ADC halted once, got %d", adc.halted)
	}
}
