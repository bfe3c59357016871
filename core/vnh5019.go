// VNH5019 dual half-bridge motor driver
// Drives one brushed DC motor through two direction lines (INA/INB), one PWM
// line, two active-low diagnostic lines and one analog current-sense line.
package core

const (
	// VNH5019PWMFrequency is the PWM carrier, above the audible range
	VNH5019PWMFrequency = 20000

	// VNH5019PWMResolution gives a duty range of 0-1023
	VNH5019PWMResolution = 10

	// VNH5019MaxDuty is the largest duty written; larger requests saturate here
	VNH5019MaxDuty = 1023

	// VNH5019MilliAmpsPerLSB scales the current-sense ADC reading.
	// 3.3V / 1024 LSB / 0.140 V per A = 23 mA per LSB
	VNH5019MilliAmpsPerLSB = 23
)

// VNH5019Pins is the fixed pin assignment of one driver chip
type VNH5019Pins struct {
	INA      Pin // Direction input A
	INB      Pin // Direction input B
	ENADiagA Pin // Enable/diagnostic A, active-low fault
	ENBDiagB Pin // Enable/diagnostic B, active-low fault
	CS       Pin // Current sense (analog)
	PWM      Pin // Speed/brake PWM
}

// MotorStatus is a snapshot of the driver's feedback lines
type MotorStatus struct {
	CurrentMilliAmps uint16
	FaultA           bool
	FaultB           bool
}

// Faulted reports whether either half-bridge signals a fault
func (s MotorStatus) Faulted() bool {
	return s.FaultA || s.FaultB
}

// VNH5019 controls one motor through a VNH5019 chip.
// It keeps no motor state; every call re-issues the full pin state.
// Pin ownership is exclusive and no locking is done.
type VNH5019 struct {
	board Board
	pins  VNH5019Pins
}

// NewVNH5019 stores the pin assignment. No hardware is touched until Init.
func NewVNH5019(board Board, pins VNH5019Pins) *VNH5019 {
	return &VNH5019{
		board: board,
		pins:  pins,
	}
}

// Pins returns the pin assignment
func (m *VNH5019) Pins() VNH5019Pins {
	return m.pins
}

// Init configures pin directions and the PWM carrier.
// It must run before any other operation; calling it again reapplies the same setup.
func (m *VNH5019) Init() error {
	if m.board == nil {
		return ErrBoardNotConfigured
	}
	b := m.board
	p := m.pins

	if err := b.ConfigureOutput(p.INA); err != nil {
		return boardErr("configure INA", p.INA, err)
	}
	if err := b.ConfigureOutput(p.INB); err != nil {
		return boardErr("configure INB", p.INB, err)
	}
	if err := b.ConfigureInput(p.ENADiagA); err != nil {
		return boardErr("configure ENA/DIAGA", p.ENADiagA, err)
	}
	if err := b.ConfigureInput(p.ENBDiagB); err != nil {
		return boardErr("configure ENB/DIAGB", p.ENBDiagB, err)
	}
	if err := b.ConfigureAnalogInput(p.CS); err != nil {
		return boardErr("configure CS", p.CS, err)
	}
	if err := b.ConfigureOutput(p.PWM); err != nil {
		return boardErr("configure PWM", p.PWM, err)
	}

	if err := b.SetPWMFrequency(p.PWM, VNH5019PWMFrequency); err != nil {
		return boardErr("set PWM frequency", p.PWM, err)
	}
	if err := b.SetPWMResolution(VNH5019PWMResolution); err != nil {
		return boardErr("set PWM resolution", p.PWM, err)
	}

	RecordEvent(EvtInit, p.PWM, VNH5019PWMFrequency)
	DebugPrintln("[VNH5019] init pwm=" + Utoa(uint32(p.PWM)) + " freq=" + Utoa(VNH5019PWMFrequency))
	return nil
}

// SetSpeed drives the motor. The magnitude of speed, saturated at 1023, is the
// duty cycle; the sign picks the direction. Zero lets the motor coast.
// The duty is written before the direction lines.
func (m *VNH5019) SetSpeed(speed int16) error {
	RecordEvent(EvtSpeed, m.pins.PWM, int32(speed))

	duty := dutyMagnitude(speed)
	if err := m.board.SetDutyCycle(m.pins.PWM, duty); err != nil {
		return boardErr("set speed duty", m.pins.PWM, err)
	}

	var err error
	switch {
	case duty == 0:
		// both half-bridges off: freewheel
		err = m.setDirection(false, false)
	case speed < 0:
		err = m.setDirection(false, true)
	default:
		err = m.setDirection(true, false)
	}
	if err != nil {
		return err
	}

	DebugPrintln("[VNH5019] speed=" + itoa(int(speed)) + " duty=" + Utoa(uint32(duty)))
	return nil
}

// SetBrake applies dynamic braking. Only the magnitude of brake counts,
// saturated at 1023: 0 is freewheeling, 1023 is full brake.
// Both direction lines are driven low before the duty is written; the low-side
// switches only short the motor leads when INA and INB are low.
func (m *VNH5019) SetBrake(brake int16) error {
	RecordEvent(EvtBrake, m.pins.PWM, int32(brake))

	if err := m.setDirection(false, false); err != nil {
		return err
	}

	duty := dutyMagnitude(brake)
	if err := m.board.SetDutyCycle(m.pins.PWM, duty); err != nil {
		return boardErr("set brake duty", m.pins.PWM, err)
	}

	DebugPrintln("[VNH5019] brake=" + itoa(int(brake)) + " duty=" + Utoa(uint32(duty)))
	return nil
}

// CurrentMilliAmps takes one current-sense sample and scales it to mA.
// No filtering is applied.
func (m *VNH5019) CurrentMilliAmps() (uint16, error) {
	raw, err := m.board.ReadAnalog(m.pins.CS)
	if err != nil {
		return 0, boardErr("read CS", m.pins.CS, err)
	}
	return uint16(raw) * VNH5019MilliAmpsPerLSB, nil
}

// FaultA reports whether half-bridge A signals a fault (DIAGA low)
func (m *VNH5019) FaultA() (bool, error) {
	return m.fault(m.pins.ENADiagA, "read ENA/DIAGA")
}

// FaultB reports whether half-bridge B signals a fault (DIAGB low)
func (m *VNH5019) FaultB() (bool, error) {
	return m.fault(m.pins.ENBDiagB, "read ENB/DIAGB")
}

// ReadStatus samples the current and both diagnostic lines
func (m *VNH5019) ReadStatus() (MotorStatus, error) {
	var status MotorStatus
	var err error

	if status.CurrentMilliAmps, err = m.CurrentMilliAmps(); err != nil {
		return status, err
	}
	if status.FaultA, err = m.FaultA(); err != nil {
		return status, err
	}
	if status.FaultB, err = m.FaultB(); err != nil {
		return status, err
	}
	return status, nil
}

func (m *VNH5019) fault(pin Pin, op string) (bool, error) {
	high, err := m.board.GetPin(pin)
	if err != nil {
		return false, boardErr(op, pin, err)
	}
	if !high {
		RecordEvent(EvtFault, pin, 0)
	}
	return !high, nil
}

// setDirection writes INA then INB
func (m *VNH5019) setDirection(ina, inb bool) error {
	if err := m.board.SetPin(m.pins.INA, ina); err != nil {
		return boardErr("set INA", m.pins.INA, err)
	}
	if err := m.board.SetPin(m.pins.INB, inb); err != nil {
		return boardErr("set INB", m.pins.INB, err)
	}
	return nil
}

// dutyMagnitude returns |v| saturated at VNH5019MaxDuty.
// Widened to int32 so -32768 does not overflow on negation.
func dutyMagnitude(v int16) PWMValue {
	mag := int32(v)
	if mag < 0 {
		mag = -mag
	}
	if mag > VNH5019MaxDuty {
		mag = VNH5019MaxDuty
	}
	return PWMValue(mag)
}
