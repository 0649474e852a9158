package sequencer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExportQueryOmitsEmptyRows(t *testing.T) {
	g := NewGrid("kick", "snare", "hihat")
	require.NoError(t, g.Set("kick", 0, true))
	require.NoError(t, g.Set("kick", 4, true))

	v := ExportQuery(g, 0, false)
	require.Equal(t, "8800", v.Get("kick"))
	require.False(t, v.Has("snare"))
	require.False(t, v.Has("hihat"))
	require.False(t, v.Has(ParamTempo))
	require.False(t, v.Has(ParamMetronome))
}

func TestShareRoundTrip(t *testing.T) {
	insts := []Instrument{"kick", "snare", "hihat"}
	g := NewGrid(insts...)
	require.NoError(t, g.Seed("kick", Steps{0: true, 8: true}))
	require.NoError(t, g.Seed("hihat", Steps{1: true, 3: true, 5: true, 15: true}))

	raw := "?" + ExportQuery(g, 128, true).Encode()
	p, err := ParseQuery(raw, insts)
	require.NoError(t, err)
	require.Equal(t, 128, p.Tempo)
	require.True(t, p.Metronome)
	for _, inst := range insts {
		want, err := g.Export(inst)
		require.NoError(t, err)
		require.Equal(t, want, p.Rows[inst], inst)
	}
}

func TestParseQueryDefaults(t *testing.T) {
	p, err := ParseQuery("kick=a0e7&cowbell=ffff", []Instrument{"kick", "snare"})
	require.NoError(t, err)
	require.Equal(t, Steps{0: true, 2: true, 8: true, 9: true, 10: true, 13: true, 14: true, 15: true}, p.Rows["kick"])
	require.Equal(t, Steps{}, p.Rows["snare"])
	require.NotContains(t, p.Rows, Instrument("cowbell"))
	require.Zero(t, p.Tempo)
	require.False(t, p.Metronome)
}

func TestParseQueryMetronome(t *testing.T) {
	p, err := ParseQuery("metronome=true", nil)
	require.NoError(t, err)
	require.True(t, p.Metronome)

	p, err = ParseQuery("metronome=", nil)
	require.NoError(t, err)
	require.False(t, p.Metronome)
}

func TestShareRoundTripDefaultKit(t *testing.T) {
	for _, metronome := range []bool{false, true} {
		for _, tickArmed := range []bool{false, true} {
			g := NewGrid(DefaultInstruments...)
			require.NoError(t, g.Set("kick", 0, true))
			if tickArmed {
				require.NoError(t, g.Set("tick", 0, true))
				require.NoError(t, g.Set("tick", 8, true))
			}

			raw := ExportQuery(g, DefaultTempo, metronome).Encode()
			p, err := ParseQuery(raw, DefaultInstruments)
			require.NoError(t, err, raw)
			require.Equal(t, metronome, p.Metronome, raw)
			require.Equal(t, DefaultTempo, p.Tempo)
			for _, inst := range DefaultInstruments {
				want, err := g.Export(inst)
				require.NoError(t, err)
				require.Equal(t, want, p.Rows[inst], "%s in %s", inst, raw)
			}
		}
	}
}

func TestParseQueryTickIsARow(t *testing.T) {
	p, err := ParseQuery("tick=8000", DefaultInstruments)
	require.NoError(t, err)
	require.False(t, p.Metronome)
	require.Equal(t, Steps{0: true}, p.Rows["tick"])

	_, err = ParseQuery("tick=1", DefaultInstruments)
	require.ErrorIs(t, err, ErrInvalidEncoding)
}

func TestReservedInstrumentNames(t *testing.T) {
	require.NoError(t, CheckInstrument("tick"))
	for _, name := range []Instrument{ParamMetronome, ParamTempo} {
		require.ErrorIs(t, CheckInstrument(name), ErrReservedName)

		// a grid built directly never leaks the name into a link
		g := NewGrid("kick", name)
		require.NoError(t, g.Set(name, 0, true))
		v := ExportQuery(g, 0, false)
		require.False(t, v.Has(string(name)))

		p, err := ParseQuery(string(name)+"=120", []Instrument{"kick", name})
		require.NoError(t, err)
		require.NotContains(t, p.Rows, name)
	}
	require.ErrorIs(t, CheckInstrument(""), ErrUnknownInstrument)
}

func TestParseQueryErrors(t *testing.T) {
	_, err := ParseQuery("kick=xyz0", []Instrument{"kick"})
	require.ErrorIs(t, err, ErrInvalidEncoding)

	_, err = ParseQuery("kick=00", []Instrument{"kick"})
	require.ErrorIs(t, err, ErrInvalidEncoding)

	for _, bpm := range []string{"0", "-5", "fast", "1000", "4611686018427387904"} {
		_, err = ParseQuery("bpm="+bpm, nil)
		require.ErrorIs(t, err, ErrInvalidTempo, bpm)
	}

	_, err = ParseQuery("%zz", nil)
	require.Error(t, err)
}
