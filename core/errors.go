package core

import "errors"

// ErrBoardNotConfigured is returned when a driver is built without a board.
var ErrBoardNotConfigured = errors.New("board not configured")

// BoardError reports a failed hardware call made on behalf of a driver operation.
type BoardError struct {
	Op  string // Driver step that failed, e.g. "set INA"
	Pin Pin
	Err error
}

func (e *BoardError) Error() string {
	return e.Op + " (pin " + Utoa(uint32(e.Pin)) + "): " + e.Err.Error()
}

func (e *BoardError) Unwrap() error {
	return e.Err
}

func boardErr(op string, pin Pin, err error) error {
	RecordEvent(EvtBoardError, pin, 0)
	return &BoardError{Op: op, Pin: pin, Err: err}
}
