package sequencer

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func TestDispatchKickOnZeroAndFour(t *testing.T) {
	g := NewGrid("kick", "snare")
	require.NoError(t, g.Set("kick", 0, true))
	require.NoError(t, g.Set("kick", 4, true))

	p := &fakePlayer{}
	d := NewDispatcher(g, p)
	c, err := NewClock(DefaultTempo, d.Dispatch, nil)
	require.NoError(t, err)

	c.Start()
	for i := 0; i < 5; i++ {
		require.NoError(t, c.Tick(t0.Add(time.Duration(i)*c.Interval())))
	}

	require.Equal(t, []Instrument{"kick", "kick"}, p.played())
	require.Equal(t, t0, p.plays[0].at)
	require.Equal(t, t0.Add(4*150*time.Millisecond), p.plays[1].at)
	require.Equal(t, DefaultStopOffset, p.plays[0].stop)
}

func TestDispatchGridOrder(t *testing.T) {
	g := NewGrid("hihat", "kick", "snare")
	for _, inst := range g.Instruments() {
		require.NoError(t, g.Set(inst, 2, true))
	}
	p := &fakePlayer{}
	require.NoError(t, NewDispatcher(g, p).Dispatch(2, t0))
	require.Equal(t, []Instrument{"hihat", "kick", "snare"}, p.played())
}

func TestDispatchOutOfRange(t *testing.T) {
	d := NewDispatcher(NewGrid("kick"), &fakePlayer{})
	require.ErrorIs(t, d.Dispatch(16, t0), ErrIndexOutOfRange)
	require.ErrorIs(t, d.Dispatch(-1, t0), ErrIndexOutOfRange)
}

func TestDispatchIsolatesFailures(t *testing.T) {
	g := NewGrid("kick", "snare", "hihat", "clap")
	for _, inst := range g.Instruments() {
		require.NoError(t, g.Set(inst, 0, true))
	}
	noSample := errors.New("sample not loaded")
	p := &fakePlayer{
		fail:   map[Instrument]error{"snare": noSample},
		panics: map[Instrument]bool{"kick": true},
	}

	err := NewDispatcher(g, p).Dispatch(0, t0)
	require.Error(t, err)
	require.Equal(t, []Instrument{"hihat", "clap"}, p.played())

	errs := multierr.Errors(err)
	require.Len(t, errs, 2)

	var te *TriggerError
	require.ErrorAs(t, errs[0], &te)
	require.Equal(t, Instrument("kick"), te.Instrument)
	require.Equal(t, 0, te.Step)
	require.Contains(t, te.Error(), "panic")

	require.ErrorAs(t, errs[1], &te)
	require.Equal(t, Instrument("snare"), te.Instrument)
	require.ErrorIs(t, err, noSample)
}

func TestDispatchNilPlayer(t *testing.T) {
	g := NewGrid("kick")
	require.NoError(t, g.Set("kick", 0, true))
	require.NoError(t, NewDispatcher(g, nil).Dispatch(0, t0))
}

func TestPreviewModes(t *testing.T) {
	tests := []struct {
		mode    PreviewMode
		playing bool
		// previews for an off->on toggle, then for on->off
		onPlays, offPlays int
	}{
		{PreviewOnActivate, false, 1, 0},
		{PreviewOnActivate, true, 0, 0},
		{PreviewWhenStopped, false, 1, 1},
		{PreviewWhenStopped, true, 0, 0},
		{PreviewAlways, false, 1, 1},
		{PreviewAlways, true, 1, 1},
		{PreviewOff, false, 0, 0},
		{PreviewOff, true, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			p := &fakePlayer{}
			d := NewDispatcher(NewGrid("kick"), p)
			d.Preview = tt.mode

			on, err := d.ToggleAndMaybePreview("kick", 3, tt.playing)
			require.NoError(t, err)
			require.True(t, on)
			require.Len(t, p.plays, tt.onPlays)

			on, err = d.ToggleAndMaybePreview("kick", 3, tt.playing)
			require.NoError(t, err)
			require.False(t, on)
			require.Len(t, p.plays, tt.onPlays+tt.offPlays)
		})
	}
}

func TestPreviewIsImmediate(t *testing.T) {
	p := &fakePlayer{}
	d := NewDispatcher(NewGrid("snare"), p)
	_, err := d.ToggleAndMaybePreview("snare", 0, false)
	require.NoError(t, err)
	require.Len(t, p.plays, 1)
	require.True(t, p.plays[0].at.IsZero())
	require.Zero(t, p.plays[0].stop)
}

func TestPreviewFailureKeepsToggle(t *testing.T) {
	g := NewGrid("kick")
	p := &fakePlayer{panics: map[Instrument]bool{"kick": true}}
	d := NewDispatcher(g, p)

	on, err := d.ToggleAndMaybePreview("kick", 5, false)
	require.True(t, on)
	var te *TriggerError
	require.ErrorAs(t, err, &te)
	require.Equal(t, 5, te.Step)

	armed, err := g.Get("kick", 5)
	require.NoError(t, err)
	require.True(t, armed)
}

func TestToggleAndMaybePreviewErrors(t *testing.T) {
	p := &fakePlayer{}
	d := NewDispatcher(NewGrid("kick"), p)
	_, err := d.ToggleAndMaybePreview("cowbell", 0, false)
	require.ErrorIs(t, err, ErrUnknownInstrument)
	_, err = d.ToggleAndMaybePreview("kick", 16, false)
	require.ErrorIs(t, err, ErrIndexOutOfRange)
	require.Empty(t, p.plays)
}

func TestPreviewInstrument(t *testing.T) {
	p := &fakePlayer{fail: map[Instrument]error{"snare": errors.New("muted")}}
	d := NewDispatcher(NewGrid("kick", "snare"), p)

	require.NoError(t, d.PreviewInstrument("kick"))
	require.Equal(t, []Instrument{"kick"}, p.played())

	require.ErrorIs(t, d.PreviewInstrument("cowbell"), ErrUnknownInstrument)

	var te *TriggerError
	require.ErrorAs(t, d.PreviewInstrument("snare"), &te)
	require.Equal(t, -1, te.Step)
}

func TestParsePreviewMode(t *testing.T) {
	for _, mode := range []PreviewMode{PreviewOnActivate, PreviewWhenStopped, PreviewAlways, PreviewOff} {
		got, err := ParsePreviewMode(mode.String())
		require.NoError(t, err)
		require.Equal(t, mode, got)
	}
	got, err := ParsePreviewMode("")
	require.NoError(t, err)
	require.Equal(t, PreviewOnActivate, got)

	_, err = ParsePreviewMode("sometimes")
	require.Error(t, err)
}
