package sequencer

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Query parameter names besides the per-instrument rows. No instrument
// may use one of these names, so every key has exactly one meaning.
const (
	ParamMetronome = "metronome"
	ParamTempo     = "bpm"
)

// CheckInstrument rejects names that cannot be a share link row
func CheckInstrument(inst Instrument) error {
	switch inst {
	case "":
		return fmt.Errorf("%w: empty name", ErrUnknownInstrument)
	case ParamMetronome, ParamTempo:
		return fmt.Errorf("%w: %q", ErrReservedName, inst)
	}
	return nil
}

// Pattern is the decoded form of a share link
type Pattern struct {
	Rows      map[Instrument]Steps
	Tempo     int // 0 when the link carries no tempo
	Metronome bool
}

// ExportQuery encodes the grid as one parameter per instrument. Rows with
// nothing armed are left out since an absent row reads back as EmptyRow.
// A row under a reserved name is never written.
func ExportQuery(g *Grid, tempo int, metronome bool) url.Values {
	v := url.Values{}
	for _, inst := range g.order {
		row := g.rows[inst]
		if row.Active() == 0 || CheckInstrument(inst) != nil {
			continue
		}
		v.Set(string(inst), EncodeSteps(*row))
	}
	if tempo > 0 {
		v.Set(ParamTempo, strconv.Itoa(tempo))
	}
	if metronome {
		v.Set(ParamMetronome, "1")
	}
	return v
}

// ParseQuery parses a raw query string, with or without the leading '?'
func ParseQuery(raw string, instruments []Instrument) (Pattern, error) {
	values, err := url.ParseQuery(strings.TrimPrefix(raw, "?"))
	if err != nil {
		return Pattern{}, fmt.Errorf("parse query: %w", err)
	}
	return ParsePattern(values, instruments)
}

// ParsePattern reads rows for the given instruments out of values.
// Keys that name no instrument are ignored, as are reserved names.
func ParsePattern(values url.Values, instruments []Instrument) (Pattern, error) {
	p := Pattern{Rows: make(map[Instrument]Steps, len(instruments))}
	for _, inst := range instruments {
		if CheckInstrument(inst) != nil {
			continue
		}
		steps, err := DecodeSteps(values.Get(string(inst)))
		if err != nil {
			return Pattern{}, fmt.Errorf("row %s: %w", inst, err)
		}
		p.Rows[inst] = steps
	}

	// Any non-empty value turns the click on
	p.Metronome = values.Get(ParamMetronome) != ""

	if raw := values.Get(ParamTempo); raw != "" {
		bpm, err := strconv.Atoi(raw)
		if err != nil {
			return Pattern{}, fmt.Errorf("%w: %q", ErrInvalidTempo, raw)
		}
		if err := ValidateTempo(bpm); err != nil {
			return Pattern{}, err
		}
		p.Tempo = bpm
	}
	return p, nil
}
