package sequencer

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var t0 = time.Unix(1700000000, 0)

func recordSteps(steps *[]int) DispatchFunc {
	return func(step int, _ time.Time) error {
		*steps = append(*steps, step)
		return nil
	}
}

func TestClockStepSequence(t *testing.T) {
	var steps []int
	c, err := NewClock(DefaultTempo, recordSteps(&steps), nil)
	require.NoError(t, err)
	require.Equal(t, Stopped, c.State())

	c.Start()
	for i := 0; i < 20; i++ {
		require.NoError(t, c.Tick(t0))
	}
	require.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 0, 1, 2, 3}, steps)
	require.EqualValues(t, 20, c.Beat())
	require.Equal(t, 4, c.Step())
}

func TestClockStoppedTickIsNoop(t *testing.T) {
	var steps []int
	h := newFakeHighlighter()
	c, err := NewClock(DefaultTempo, recordSteps(&steps), h)
	require.NoError(t, err)

	require.NoError(t, c.Tick(t0))
	require.Empty(t, steps)
	require.Zero(t, c.Beat())
	require.Empty(t, h.events)
}

func TestClockStopKeepsPlayhead(t *testing.T) {
	var steps []int
	c, err := NewClock(DefaultTempo, recordSteps(&steps), nil)
	require.NoError(t, err)

	c.Start()
	c.Start()
	require.NoError(t, c.Tick(t0))
	require.NoError(t, c.Tick(t0))
	c.Stop()
	c.Stop()
	require.NoError(t, c.Tick(t0))
	c.Toggle()
	require.True(t, c.Playing())
	require.NoError(t, c.Tick(t0))
	require.Equal(t, []int{0, 1, 2}, steps)
}

func TestClockRewind(t *testing.T) {
	var steps []int
	h := newFakeHighlighter()
	c, err := NewClock(DefaultTempo, recordSteps(&steps), h)
	require.NoError(t, err)

	c.Start()
	for i := 0; i < 5; i++ {
		require.NoError(t, c.Tick(t0))
	}
	require.Equal(t, 4, h.lit)

	c.Rewind()
	require.Equal(t, Stopped, c.State())
	require.Zero(t, c.Beat())
	require.Equal(t, NoHighlight, h.lit)

	c.Start()
	require.NoError(t, c.Tick(t0))
	require.Equal(t, 0, steps[len(steps)-1])
}

func TestClockHighlightsPlayedStep(t *testing.T) {
	h := newFakeHighlighter()
	c, err := NewClock(DefaultTempo, nil, h)
	require.NoError(t, err)

	c.Start()
	require.NoError(t, c.Tick(t0))
	require.NoError(t, c.Tick(t0))
	require.Equal(t, []string{"on:0", "on:1"}, h.events)
}

func TestClockTempo(t *testing.T) {
	c, err := NewClock(DefaultTempo, nil, nil)
	require.NoError(t, err)
	require.Equal(t, 150*time.Millisecond, c.Interval())

	require.NoError(t, c.SetTempo(120))
	require.Equal(t, 125*time.Millisecond, c.Interval())

	for _, bad := range []int{0, -5, MaxTempo + 1, 1 << 62} {
		require.ErrorIs(t, c.SetTempo(bad), ErrInvalidTempo)
		require.Equal(t, 120, c.Tempo())
	}

	_, err = NewClock(0, nil, nil)
	require.ErrorIs(t, err, ErrInvalidTempo)
	_, err = NewClock(1<<62, nil, nil)
	require.ErrorIs(t, err, ErrInvalidTempo)

	require.NoError(t, c.SetTempo(MaxTempo))
	require.Positive(t, c.Interval())
	require.Positive(t, EighthNote(MaxTempo))

	require.Equal(t, 300*time.Millisecond, EighthNote(100))
	require.Equal(t, 150*time.Millisecond, StepInterval(100))
	require.Zero(t, StepInterval(0))
	require.Zero(t, EighthNote(-1))
}

func TestClockReentrantTickIsDeferred(t *testing.T) {
	var (
		c      *Clock
		steps  []int
		nested error
	)
	dispatch := func(step int, at time.Time) error {
		steps = append(steps, step)
		if step == 0 {
			require.True(t, c.Dispatching())
			nested = c.Tick(at)
			// the nested tick must not have run yet
			require.Equal(t, []int{0}, steps)
		}
		return nil
	}
	c, err := NewClock(DefaultTempo, dispatch, nil)
	require.NoError(t, err)

	c.Start()
	require.NoError(t, c.Tick(t0))
	require.NoError(t, nested)
	require.Equal(t, []int{0, 1}, steps)
	require.EqualValues(t, 2, c.Beat())
	require.False(t, c.Dispatching())
}

func TestClockDispatchErrorStillAdvances(t *testing.T) {
	fail := errors.New("no sound")
	c, err := NewClock(DefaultTempo, func(int, time.Time) error { return fail }, nil)
	require.NoError(t, err)

	c.Start()
	require.ErrorIs(t, c.Tick(t0), fail)
	require.EqualValues(t, 1, c.Beat())
	require.True(t, c.Playing())
}

func TestClockDispatchPanic(t *testing.T) {
	c, err := NewClock(DefaultTempo, func(int, time.Time) error { panic("bad") }, nil)
	require.NoError(t, err)

	c.Start()
	err = c.Tick(t0)
	require.Error(t, err)
	require.Contains(t, err.Error(), "panic")
	require.EqualValues(t, 1, c.Beat())
	require.False(t, c.Dispatching())

	require.Error(t, c.Tick(t0))
	require.EqualValues(t, 2, c.Beat())
}

func TestStateString(t *testing.T) {
	require.Equal(t, "stopped", Stopped.String())
	require.Equal(t, "running", Running.String())
	require.Equal(t, "State(7)", State(7).String())
}
