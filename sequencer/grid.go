package sequencer

import (
	"fmt"
	"strings"
)

// NumSteps is the length of every row in the grid (one bar of 16th notes)
const NumSteps = 16

// Instrument names one sound source, e.g. "kick"
type Instrument string

// DefaultInstruments is the stock nine-piece kit, in display order
var DefaultInstruments = []Instrument{
	"kick", "snare", "hihat", "clap", "shaker", "fing", "rim", "tom", "tick",
}

// Steps is one instrument's row
type Steps [NumSteps]bool

// Active returns how many steps are armed
func (s Steps) Active() int {
	n := 0
	for _, on := range s {
		if on {
			n++
		}
	}
	return n
}

// String renders the row as |x---|x---|x---|x---|
func (s Steps) String() string {
	var out strings.Builder
	for i, on := range s {
		if i%4 == 0 {
			out.WriteByte('|')
		}
		if on {
			out.WriteByte('x')
		} else {
			out.WriteByte('-')
		}
	}
	out.WriteByte('|')
	return out.String()
}

// Grid holds one row of steps per instrument. The instrument set is fixed
// when the grid is created; only step values change afterwards.
type Grid struct {
	order []Instrument
	rows  map[Instrument]*Steps
}

// NewGrid creates an all-false grid. Duplicate names collapse into one row
// and the first-seen order is the dispatch order.
func NewGrid(instruments ...Instrument) *Grid {
	g := &Grid{
		rows: make(map[Instrument]*Steps, len(instruments)),
	}
	for _, inst := range instruments {
		if _, ok := g.rows[inst]; ok {
			continue
		}
		g.rows[inst] = &Steps{}
		g.order = append(g.order, inst)
	}
	return g
}

// Instruments returns the configured instruments in dispatch order
func (g *Grid) Instruments() []Instrument {
	out := make([]Instrument, len(g.order))
	copy(out, g.order)
	return out
}

// Has reports whether inst is part of the grid
func (g *Grid) Has(inst Instrument) bool {
	_, ok := g.rows[inst]
	return ok
}

// Len returns the number of instruments
func (g *Grid) Len() int {
	return len(g.order)
}

func (g *Grid) row(inst Instrument) (*Steps, error) {
	r, ok := g.rows[inst]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownInstrument, inst)
	}
	return r, nil
}

func (g *Grid) cell(inst Instrument, step int) (*Steps, error) {
	r, err := g.row(inst)
	if err != nil {
		return nil, err
	}
	if step < 0 || step >= NumSteps {
		return nil, fmt.Errorf("%w: %d", ErrIndexOutOfRange, step)
	}
	return r, nil
}

// Get returns whether step is armed for inst
func (g *Grid) Get(inst Instrument, step int) (bool, error) {
	r, err := g.cell(inst, step)
	if err != nil {
		return false, err
	}
	return r[step], nil
}

// Toggle flips one step and returns its new value
func (g *Grid) Toggle(inst Instrument, step int) (bool, error) {
	r, err := g.cell(inst, step)
	if err != nil {
		return false, err
	}
	r[step] = !r[step]
	return r[step], nil
}

// Set stores an explicit value for one step
func (g *Grid) Set(inst Instrument, step int, value bool) error {
	r, err := g.cell(inst, step)
	if err != nil {
		return err
	}
	r[step] = value
	return nil
}

// Seed replaces a whole row
func (g *Grid) Seed(inst Instrument, steps Steps) error {
	r, err := g.row(inst)
	if err != nil {
		return err
	}
	*r = steps
	return nil
}

// Clear disarms every step of every instrument
func (g *Grid) Clear() {
	for _, r := range g.rows {
		*r = Steps{}
	}
}

// Export returns a copy of one row
func (g *Grid) Export(inst Instrument) (Steps, error) {
	r, err := g.row(inst)
	if err != nil {
		return Steps{}, err
	}
	return *r, nil
}

// Empty reports whether no step is armed anywhere
func (g *Grid) Empty() bool {
	for _, r := range g.rows {
		if r.Active() > 0 {
			return false
		}
	}
	return true
}
