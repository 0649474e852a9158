package sequencer

import (
	"sync"
	"time"
)

type play struct {
	inst Instrument
	at   time.Time
	stop time.Duration
}

type click struct {
	at     time.Time
	length time.Duration
}

// fakePlayer records plays and clicks. fail and panics select
// instruments that misbehave.
type fakePlayer struct {
	mu     sync.Mutex
	plays  []play
	clicks []click

	fail      map[Instrument]error
	panics    map[Instrument]bool
	clickFail error
}

func (p *fakePlayer) Play(inst Instrument, at time.Time, stop time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.panics[inst] {
		panic("boom " + string(inst))
	}
	if err := p.fail[inst]; err != nil {
		return err
	}
	p.plays = append(p.plays, play{inst, at, stop})
	return nil
}

func (p *fakePlayer) Click(at time.Time, length time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.clickFail != nil {
		return p.clickFail
	}
	p.clicks = append(p.clicks, click{at, length})
	return nil
}

func (p *fakePlayer) played() []Instrument {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Instrument, len(p.plays))
	for i, pl := range p.plays {
		out[i] = pl.inst
	}
	return out
}

func (p *fakePlayer) clickCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.clicks)
}

// plainPlayer has no Click method
type plainPlayer struct{ n int }

func (p *plainPlayer) Play(Instrument, time.Time, time.Duration) error {
	p.n++
	return nil
}

// fakeHighlighter records the highlight calls as "on:N" and "clear"
type fakeHighlighter struct {
	events []string
	lit    int
}

func newFakeHighlighter() *fakeHighlighter {
	return &fakeHighlighter{lit: NoHighlight}
}

func (h *fakeHighlighter) Highlight(step int) {
	h.lit = step
	h.events = append(h.events, "on:"+string(hexDigits[step]))
}

func (h *fakeHighlighter) ClearHighlight() {
	h.lit = NoHighlight
	h.events = append(h.events, "clear")
}
