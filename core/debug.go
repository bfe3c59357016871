package core

// DebugWriter is a function type for writing debug messages
type DebugWriter func(string)

// DriverEvent captures a driver command for post-mortem analysis
type DriverEvent struct {
	EventType uint8  // Event type code
	Seq       uint32 // Monotonic sequence number
	Pin       Pin    // Pin involved, if any
	Value     int32  // Context-dependent value (requested speed, brake, raw ADC...)
}

// Event type codes
const (
	EvtInit       = 1 // Init() applied pin modes and PWM setup
	EvtSpeed      = 2 // SetSpeed request
	EvtBrake      = 3 // SetBrake request
	EvtFault      = 4 // Diagnostic line read low
	EvtBoardError = 5 // A board call failed
)

const (
	EventRingSize = 32 // Keep last 32 events for post-mortem
)

var (
	// debugPrintln is the global debug print function (can be set by platform code)
	debugPrintln DebugWriter = func(s string) {} // No-op by default

	// debugEnabled controls whether debug output is active
	debugEnabled bool = false

	// Event capture ring buffer (non-blocking, for post-mortem)
	eventRing     [EventRingSize]DriverEvent
	eventRingHead uint8 // Next write position
	eventSeq      uint32
	eventsEnabled bool = true
)

// SetDebugWriter sets the platform-specific debug output function
// This allows platforms to redirect debug output to UART, USB, a logger, etc.
func SetDebugWriter(writer DebugWriter) {
	debugPrintln = writer
}

// SetDebugEnabled enables or disables debug output
func SetDebugEnabled(enabled bool) {
	debugEnabled = enabled
}

// IsDebugEnabled returns whether debug output is enabled
func IsDebugEnabled() bool {
	return debugEnabled
}

// SetEventsEnabled turns event capture on or off
func SetEventsEnabled(enabled bool) {
	eventsEnabled = enabled
}

// DebugPrintln writes a debug message using the platform-specific writer
func DebugPrintln(msg string) {
	if debugEnabled && debugPrintln != nil {
		debugPrintln(msg)
	}
}

// RecordEvent captures a driver event in the ring buffer
func RecordEvent(eventType uint8, pin Pin, value int32) {
	if !eventsEnabled {
		return
	}
	eventSeq++
	idx := eventRingHead
	eventRing[idx] = DriverEvent{
		EventType: eventType,
		Seq:       eventSeq,
		Pin:       pin,
		Value:     value,
	}
	eventRingHead = (idx + 1) % EventRingSize
}

// RecentEvents returns the captured events, oldest first
func RecentEvents() []DriverEvent {
	events := make([]DriverEvent, 0, EventRingSize)
	start := eventRingHead
	for i := uint8(0); i < EventRingSize; i++ {
		evt := eventRing[(start+i)%EventRingSize]
		if evt.EventType == 0 {
			continue // Empty slot
		}
		events = append(events, evt)
	}
	return events
}

// EventName returns the printable name of an event type code
func EventName(eventType uint8) string {
	switch eventType {
	case EvtInit:
		return "INIT"
	case EvtSpeed:
		return "SPEED"
	case EvtBrake:
		return "BRAKE"
	case EvtFault:
		return "FAULT!"
	case EvtBoardError:
		return "BOARD_ERR"
	default:
		return "UNKNOWN"
	}
}

// DumpEventRing outputs the event ring buffer (call after a fault)
// Output goes to the debug writer even if debug output is disabled.
func DumpEventRing() {
	if debugPrintln == nil {
		return
	}

	debugPrintln("[EVENTS] === Event Ring Dump ===")
	for _, evt := range RecentEvents() {
		debugPrintln("[EVENTS] " + EventName(evt.EventType) +
			" seq=" + Utoa(evt.Seq) +
			" pin=" + Utoa(uint32(evt.Pin)) +
			" value=" + itoa(int(evt.Value)))
	}
	debugPrintln("[EVENTS] === End Dump ===")
}

// ClearEventRing clears the event buffer
func ClearEventRing() {
	for i := range eventRing {
		eventRing[i] = DriverEvent{}
	}
	eventRingHead = 0
	eventSeq = 0
}
