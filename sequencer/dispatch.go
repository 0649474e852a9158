package sequencer

import (
	"fmt"
	"time"

	"go-drumgrid/debug"

	"go.uber.org/multierr"
)

// DefaultStopOffset is how long a scheduled trigger lets a sample ring
const DefaultStopOffset = 100 * time.Millisecond

// Player produces the sound for an instrument. A zero at means now,
// a zero stop means the player's own default length.
type Player interface {
	Play(inst Instrument, at time.Time, stop time.Duration) error
}

// Metronome plays the fixed click used when the tick option is on
type Metronome interface {
	Click(at time.Time, length time.Duration) error
}

// PreviewMode decides whether editing a step auditions the instrument
type PreviewMode int

const (
	// PreviewOnActivate previews only while stopped and only when the step turns on
	PreviewOnActivate PreviewMode = iota
	// PreviewWhenStopped previews every toggle while stopped
	PreviewWhenStopped
	// PreviewAlways previews every toggle, running or not
	PreviewAlways
	// PreviewOff never previews
	PreviewOff
)

var previewModeNames = map[PreviewMode]string{
	PreviewOnActivate:  "activate",
	PreviewWhenStopped: "stopped",
	PreviewAlways:      "always",
	PreviewOff:         "off",
}

func (m PreviewMode) String() string {
	if name, ok := previewModeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("PreviewMode(%d)", int(m))
}

// ParsePreviewMode is the inverse of PreviewMode.String. An empty string
// selects the default.
func ParsePreviewMode(s string) (PreviewMode, error) {
	if s == "" {
		return PreviewOnActivate, nil
	}
	for mode, name := range previewModeNames {
		if name == s {
			return mode, nil
		}
	}
	return PreviewOnActivate, fmt.Errorf("unknown preview mode %q", s)
}

// shouldPreview applies the mode to one toggle
func (m PreviewMode) shouldPreview(active, playing bool) bool {
	switch m {
	case PreviewOnActivate:
		return active && !playing
	case PreviewWhenStopped:
		return !playing
	case PreviewAlways:
		return true
	}
	return false
}

// Dispatcher turns a step into player calls for every armed instrument
type Dispatcher struct {
	grid       *Grid
	player     Player
	Preview    PreviewMode
	StopOffset time.Duration
}

// NewDispatcher creates a dispatcher reading grid and playing through player
func NewDispatcher(grid *Grid, player Player) *Dispatcher {
	return &Dispatcher{
		grid:       grid,
		player:     player,
		Preview:    PreviewOnActivate,
		StopOffset: DefaultStopOffset,
	}
}

// Dispatch plays every instrument armed on step. Each instrument is tried
// even when an earlier one failed; the failures are combined.
func (d *Dispatcher) Dispatch(step int, at time.Time) error {
	if step < 0 || step >= NumSteps {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, step)
	}
	var errs error
	for _, inst := range d.grid.order {
		if !d.grid.rows[inst][step] {
			continue
		}
		if err := d.trigger(inst, at, d.StopOffset); err != nil {
			debug.Log("dispatch", "step=%d inst=%s err=%v", step, inst, err)
			errs = multierr.Append(errs, &TriggerError{Instrument: inst, Step: step, Err: err})
		}
	}
	return errs
}

// ToggleAndMaybePreview flips one step and auditions the instrument when
// the preview mode asks for it. The new step value is returned even if the
// preview itself failed.
func (d *Dispatcher) ToggleAndMaybePreview(inst Instrument, step int, playing bool) (bool, error) {
	active, err := d.grid.Toggle(inst, step)
	if err != nil {
		return false, err
	}
	if d.Preview.shouldPreview(active, playing) {
		if err := d.trigger(inst, time.Time{}, 0); err != nil {
			return active, &TriggerError{Instrument: inst, Step: step, Err: err}
		}
	}
	return active, nil
}

// PreviewInstrument plays inst once, now, whatever the grid says
func (d *Dispatcher) PreviewInstrument(inst Instrument) error {
	if !d.grid.Has(inst) {
		return fmt.Errorf("%w: %q", ErrUnknownInstrument, inst)
	}
	if err := d.trigger(inst, time.Time{}, 0); err != nil {
		return &TriggerError{Instrument: inst, Step: -1, Err: err}
	}
	return nil
}

// trigger calls the player and turns a panic into an error
func (d *Dispatcher) trigger(inst Instrument, at time.Time, stop time.Duration) (err error) {
	if d.player == nil {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("player panic: %v", r)
		}
	}()
	return d.player.Play(inst, at, stop)
}
