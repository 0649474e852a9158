package sequencer

import (
	"fmt"
	"time"

	"go.uber.org/multierr"
)

// DefaultTempo is the tempo a new session starts with
const DefaultTempo = 100

// MaxTempo is the fastest tempo accepted
const MaxTempo = 999

// StepsPerBeat is the subdivision the clock advances by (16th notes)
const StepsPerBeat = 4

// State is the transport run state
type State int

const (
	Stopped State = iota
	Running
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Running:
		return "running"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// DispatchFunc fires the triggers for one step
type DispatchFunc func(step int, at time.Time) error

// Highlighter is told which step was just played.
// Implementations show at most one step at a time.
type Highlighter interface {
	Highlight(step int)
	ClearHighlight()
}

// Clock is the transport. It does no wall-clock scheduling itself: an
// external timing source calls Tick once per 16th note.
type Clock struct {
	state     State
	beat      uint64 // monotonic, wrapped only when deriving the step
	tempo     int
	dispatch  DispatchFunc
	highlight Highlighter

	dispatching bool
	deferred    []time.Time // ticks that arrived while dispatching
}

// NewClock creates a stopped clock at beat 0
func NewClock(tempo int, dispatch DispatchFunc, h Highlighter) (*Clock, error) {
	c := &Clock{
		state:     Stopped,
		dispatch:  dispatch,
		highlight: h,
	}
	if err := c.SetTempo(tempo); err != nil {
		return nil, err
	}
	return c, nil
}

// Start moves to Running; no-op if already running
func (c *Clock) Start() {
	c.state = Running
}

// Stop moves to Stopped; no-op if already stopped
func (c *Clock) Stop() {
	c.state = Stopped
}

// Toggle flips between running and stopped
func (c *Clock) Toggle() {
	if c.state == Running {
		c.Stop()
	} else {
		c.Start()
	}
}

// Rewind stops the transport, goes back to beat 0 and clears the highlight
func (c *Clock) Rewind() {
	c.state = Stopped
	c.beat = 0
	if c.highlight != nil {
		c.highlight.ClearHighlight()
	}
}

// SetTempo changes the tick rate from the next tick on.
// A bpm outside 1..MaxTempo leaves the current tempo in place.
func (c *Clock) SetTempo(bpm int) error {
	if err := ValidateTempo(bpm); err != nil {
		return err
	}
	c.tempo = bpm
	return nil
}

// ValidateTempo returns ErrInvalidTempo unless 1 <= bpm <= MaxTempo
func ValidateTempo(bpm int) error {
	if bpm <= 0 || bpm > MaxTempo {
		return fmt.Errorf("%w: %d bpm, want 1-%d", ErrInvalidTempo, bpm, MaxTempo)
	}
	return nil
}

func (c *Clock) Tempo() int { return c.tempo }
func (c *Clock) State() State { return c.state }
func (c *Clock) Playing() bool { return c.state == Running }
func (c *Clock) Beat() uint64 { return c.beat }
func (c *Clock) Step() int { return int(c.beat % NumSteps) }
func (c *Clock) Dispatching() bool { return c.dispatching }

// Interval is the length of one step at the current tempo
func (c *Clock) Interval() time.Duration {
	return StepInterval(c.tempo)
}

// StepInterval is the length of one 16th note at bpm, 0 for bpm <= 0
func StepInterval(bpm int) time.Duration {
	if bpm <= 0 {
		return 0
	}
	return time.Minute / StepsPerBeat / time.Duration(bpm)
}

// EighthNote is the length of one 8th note at bpm, 0 for bpm <= 0
func EighthNote(bpm int) time.Duration {
	if bpm <= 0 {
		return 0
	}
	return time.Minute / 2 / time.Duration(bpm)
}

// Tick advances the transport by one step when running. Trigger failures
// do not stop the step; they come back as one combined error.
// A Tick issued from inside a dispatch is run once that dispatch returns.
func (c *Clock) Tick(at time.Time) error {
	if c.dispatching {
		c.deferred = append(c.deferred, at)
		return nil
	}
	err := c.advance(at)
	for len(c.deferred) > 0 {
		next := c.deferred[0]
		c.deferred = c.deferred[1:]
		err = multierr.Append(err, c.advance(next))
	}
	return err
}

func (c *Clock) advance(at time.Time) error {
	if c.state != Running {
		return nil
	}
	step := int(c.beat % NumSteps)
	err := c.runDispatch(step, at)
	c.beat++
	if c.highlight != nil {
		c.highlight.Highlight(step)
	}
	return err
}

func (c *Clock) runDispatch(step int, at time.Time) (err error) {
	if c.dispatch == nil {
		return nil
	}
	c.dispatching = true
	defer func() {
		c.dispatching = false
		if r := recover(); r != nil {
			err = fmt.Errorf("dispatch step %d: panic: %v", step, r)
		}
	}()
	return c.dispatch(step, at)
}
