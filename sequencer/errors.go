package sequencer

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidTempo is returned for a tempo outside 1..MaxTempo.
	ErrInvalidTempo = errors.New("invalid tempo")

	// ErrUnknownInstrument is returned for grid access with an instrument
	// that was not part of the configured set.
	ErrUnknownInstrument = errors.New("unknown instrument")

	// ErrIndexOutOfRange is returned for a step outside 0..NumSteps-1.
	ErrIndexOutOfRange = errors.New("step index out of range")

	// ErrInvalidEncoding is returned when a hex row cannot be decoded.
	ErrInvalidEncoding = errors.New("invalid encoding")

	// ErrReservedName is returned for an instrument named like a share
	// link control key.
	ErrReservedName = errors.New("reserved instrument name")
)

// TriggerError reports a failed trigger for one instrument on one step.
// Dispatch collects these instead of stopping at the first failure.
type TriggerError struct {
	Instrument Instrument
	Step       int
	Err        error
}

func (e *TriggerError) Error() string {
	return fmt.Sprintf("trigger %s at step %d: %v", e.Instrument, e.Step, e.Err)
}

func (e *TriggerError) Unwrap() error {
	return e.Err
}
