//go:build rp2040 || rp2350

package main

import (
	"machine"
	"time"
	"vnhdrive/core"
)

// Pin map of the driver carrier on this board
var motorPins = core.VNH5019Pins{
	INA:      2,
	INB:      3,
	ENADiagA: 4,
	ENBDiagB: 5,
	CS:       26, // ADC0
	PWM:      6,  // PWM slice 3, channel A
}

// profileStep is one segment of the demo drive profile
type profileStep struct {
	speed   int16 // used when isBrake is false
	brake   int16 // used when isBrake is true
	isBrake bool
	hold    time.Duration
}

var profile = []profileStep{
	{speed: 256, hold: 1 * time.Second},
	{speed: 512, hold: 1 * time.Second},
	{speed: 1023, hold: 2 * time.Second},
	{brake: 1023, isBrake: true, hold: 500 * time.Millisecond},
	{speed: -512, hold: 2 * time.Second},
	{speed: 0, hold: 1 * time.Second},
}

const (
	supervisionTick = 10 * time.Millisecond
	faultBackoff    = 2 * time.Second
)

func main() {
	// Disable watchdog on boot to clear any previous state
	err := machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: 0})
	if err != nil {
		return
	}

	// Debug output goes to the USB CDC console
	core.SetDebugWriter(func(s string) {
		machine.Serial.Write([]byte(s + "\r\n"))
	})
	core.SetDebugEnabled(true)

	board := NewRPBoard()
	core.SetBoard(board)

	motor := core.NewVNH5019(core.MustBoard(), motorPins)
	if err := motor.Init(); err != nil {
		core.DebugPrintln("[MAIN] motor init failed: " + err.Error())
		halt()
	}
	if err := motor.SetSpeed(0); err != nil {
		core.DebugPrintln("[MAIN] motor coast failed: " + err.Error())
		halt()
	}

	for {
		for _, step := range profile {
			if step.isBrake {
				err = motor.SetBrake(step.brake)
			} else {
				err = motor.SetSpeed(step.speed)
			}
			if err != nil {
				core.DebugPrintln("[MAIN] command failed: " + err.Error())
				continue
			}

			if !supervise(motor, step.hold) {
				recoverFromFault(motor)
				break
			}
		}
	}
}

// supervise polls the diagnostic lines for hold. It returns false as soon as
// either half-bridge reports a fault.
func supervise(motor *core.VNH5019, hold time.Duration) bool {
	deadline := time.Now().Add(hold)
	for time.Now().Before(deadline) {
		status, err := motor.ReadStatus()
		if err != nil {
			core.DebugPrintln("[MAIN] status read failed: " + err.Error())
		} else if status.Faulted() {
			return false
		}
		time.Sleep(supervisionTick)
	}

	status, err := motor.ReadStatus()
	if err == nil {
		core.DebugPrintln("[MAIN] current_ma=" + core.Utoa(uint32(status.CurrentMilliAmps)))
	}
	return true
}

// recoverFromFault brakes the motor, dumps the command history and waits
// until both diagnostic lines are released.
func recoverFromFault(motor *core.VNH5019) {
	if err := motor.SetBrake(core.VNH5019MaxDuty); err != nil {
		core.DebugPrintln("[MAIN] fault brake failed: " + err.Error())
	}
	core.DumpEventRing()

	for {
		time.Sleep(faultBackoff)
		status, err := motor.ReadStatus()
		if err == nil && !status.Faulted() {
			break
		}
		core.DebugPrintln("[MAIN] fault still asserted")
	}

	if err := motor.SetSpeed(0); err != nil {
		core.DebugPrintln("[MAIN] coast after fault failed: " + err.Error())
	}
	core.ClearEventRing()
}

func halt() {
	for {
		time.Sleep(time.Second)
	}
}
