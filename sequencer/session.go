package sequencer

import (
	"context"
	"net/url"
	"sync"
	"time"

	"go-drumgrid/debug"

	"go.uber.org/multierr"
)

// NoHighlight is returned by Highlighted when no step is lit
const NoHighlight = -1

// Options configure a new Session
type Options struct {
	Instruments []Instrument
	Tempo       int
	Metronome   bool
	Preview     PreviewMode
	StopOffset  time.Duration
	Rows        map[Instrument]Steps // initial rows, missing ones start empty
}

// DefaultOptions returns the stock nine-piece kit at 100 bpm
func DefaultOptions() Options {
	return Options{
		Instruments: DefaultInstruments,
		Tempo:       DefaultTempo,
		Preview:     PreviewOnActivate,
		StopOffset:  DefaultStopOffset,
	}
}

// Session owns one drum machine: grid, transport and dispatcher.
// All methods are safe to call from the scheduler and UI goroutines.
// The player must not call back into the session.
type Session struct {
	mu         sync.Mutex
	grid       *Grid
	clock      *Clock
	dispatcher *Dispatcher

	metronome   Metronome
	metronomeOn bool

	highlighted int
	observer    Highlighter
	lastErr     error

	// Notify UI of updates
	UpdateChan chan struct{}
}

// NewSession builds a session. If player also implements Metronome it is
// used for the click.
func NewSession(player Player, opts Options) (*Session, error) {
	if len(opts.Instruments) == 0 {
		opts.Instruments = DefaultInstruments
	}
	if opts.Tempo == 0 {
		opts.Tempo = DefaultTempo
	}
	if opts.StopOffset == 0 {
		opts.StopOffset = DefaultStopOffset
	}
	for _, inst := range opts.Instruments {
		if err := CheckInstrument(inst); err != nil {
			return nil, err
		}
	}

	s := &Session{
		grid:        NewGrid(opts.Instruments...),
		metronomeOn: opts.Metronome,
		highlighted: NoHighlight,
		UpdateChan:  make(chan struct{}, 1),
	}
	for inst, steps := range opts.Rows {
		if err := s.grid.Seed(inst, steps); err != nil {
			return nil, err
		}
	}

	s.dispatcher = NewDispatcher(s.grid, player)
	s.dispatcher.Preview = opts.Preview
	s.dispatcher.StopOffset = opts.StopOffset
	if m, ok := player.(Metronome); ok {
		s.metronome = m
	}

	clock, err := NewClock(opts.Tempo, s.dispatch, sessionHighlighter{s})
	if err != nil {
		return nil, err
	}
	s.clock = clock
	return s, nil
}

// dispatch runs with s.mu held (called from clock.Tick)
func (s *Session) dispatch(step int, at time.Time) error {
	err := s.dispatcher.Dispatch(step, at)
	if s.metronomeOn && s.metronome != nil {
		if cerr := s.metronome.Click(at, EighthNote(s.clock.Tempo())); cerr != nil {
			debug.Log("dispatch", "metronome step=%d err=%v", step, cerr)
			err = multierr.Append(err, &TriggerError{Instrument: "metronome", Step: step, Err: cerr})
		}
	}
	return err
}

// sessionHighlighter tracks the lit column; it runs with s.mu held
type sessionHighlighter struct{ s *Session }

func (h sessionHighlighter) Highlight(step int) {
	h.s.highlighted = step
	if h.s.observer != nil {
		h.s.observer.ClearHighlight()
		h.s.observer.Highlight(step)
	}
}

func (h sessionHighlighter) ClearHighlight() {
	h.s.highlighted = NoHighlight
	if h.s.observer != nil {
		h.s.observer.ClearHighlight()
	}
}

// SetObserver forwards highlight changes to o
func (s *Session) SetObserver(o Highlighter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observer = o
}

// SetMetronome replaces the click source
func (s *Session) SetMetronome(m Metronome) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metronome = m
}

// Tick advances one step. Trigger failures are logged, kept for LastError
// and returned.
func (s *Session) Tick(at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.clock.Playing() {
		return nil
	}
	beat := s.clock.Beat()
	err := s.clock.Tick(at)
	debug.LogEvery(NumSteps, "clock", "beat=%d step=%d tempo=%d", beat, beat%NumSteps, s.clock.Tempo())
	if err != nil {
		debug.Log("clock", "beat=%d err=%v", s.clock.Beat(), err)
	}
	s.lastErr = err
	s.notifyUpdate()
	return err
}

// Run drives the session from sched until ctx is done
func (s *Session) Run(ctx context.Context, sched *Scheduler) {
	debug.Log("clock", "run tempo=%d", s.Tempo())
	sched.ScheduleRepeating(ctx, s.Interval, func(at time.Time) {
		s.Tick(at)
	})
}

// Start starts playback
func (s *Session) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clock.Start()
	s.notifyUpdate()
}

// Stop pauses playback without moving the playhead
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clock.Stop()
	s.notifyUpdate()
}

// TogglePlay starts or stops playback and returns whether it is now playing
func (s *Session) TogglePlay() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clock.Toggle()
	s.notifyUpdate()
	return s.clock.Playing()
}

// Rewind stops and goes back to the first step
func (s *Session) Rewind() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clock.Rewind()
	s.notifyUpdate()
}

// Clear rewinds and disarms the whole grid
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clock.Rewind()
	s.grid.Clear()
	s.notifyUpdate()
}

// SetTempo sets the BPM; invalid values keep the old tempo
func (s *Session) SetTempo(bpm int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.clock.SetTempo(bpm); err != nil {
		return err
	}
	s.notifyUpdate()
	return nil
}

// SetMetronomeEnabled turns the per-step click on or off
func (s *Session) SetMetronomeEnabled(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metronomeOn = on
	s.notifyUpdate()
}

// SetPreviewMode changes how step edits are auditioned
func (s *Session) SetPreviewMode(m PreviewMode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dispatcher.Preview = m
}

// ToggleStep flips a step, auditioning it per the preview mode
func (s *Session) ToggleStep(inst Instrument, step int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	active, err := s.dispatcher.ToggleAndMaybePreview(inst, step, s.clock.Playing())
	s.notifyUpdate()
	return active, err
}

// Audition plays one instrument immediately
func (s *Session) Audition(inst Instrument) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dispatcher.PreviewInstrument(inst)
}

// State accessors

func (s *Session) Tempo() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clock.Tempo()
}

func (s *Session) Interval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clock.Interval()
}

func (s *Session) Playing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clock.Playing()
}

func (s *Session) Beat() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clock.Beat()
}

func (s *Session) MetronomeEnabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.metronomeOn
}

func (s *Session) PreviewMode() PreviewMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dispatcher.Preview
}

// Highlighted returns the step last played, or NoHighlight
func (s *Session) Highlighted() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.highlighted
}

// LastError returns the trigger failures of the most recent tick
func (s *Session) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

func (s *Session) Instruments() []Instrument {
	return s.grid.Instruments()
}

func (s *Session) Get(inst Instrument, step int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.grid.Get(inst, step)
}

// Row returns a copy of one instrument's steps
func (s *Session) Row(inst Instrument) (Steps, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.grid.Export(inst)
}

// Share

// Query encodes the grid, tempo and metronome flag as URL parameters
func (s *Session) Query() url.Values {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ExportQuery(s.grid, s.clock.Tempo(), s.metronomeOn)
}

// Import replaces the grid with p, and the tempo if p carries one.
// Nothing changes if any row names an instrument outside the session.
func (s *Session) Import(p Pattern) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for inst := range p.Rows {
		if _, err := s.grid.row(inst); err != nil {
			return err
		}
	}
	if p.Tempo != 0 {
		if err := s.clock.SetTempo(p.Tempo); err != nil {
			return err
		}
	}
	s.grid.Clear()
	for inst, steps := range p.Rows {
		if err := s.grid.Seed(inst, steps); err != nil {
			return err
		}
	}
	s.metronomeOn = p.Metronome
	s.notifyUpdate()
	return nil
}

// notifyUpdate wakes the UI without blocking
func (s *Session) notifyUpdate() {
	select {
	case s.UpdateChan <- struct{}{}:
	default:
	}
}
