package midi

import (
	"fmt"
	"sync"
	"time"

	"go-drumgrid/debug"
	"go-drumgrid/sequencer"

	gomidi "gitlab.com/gomidi/midi/v2"
)

// Sender writes one MIDI message to an output
type Sender func(msg gomidi.Message) error

// Default trigger settings
const (
	DefaultVelocity uint8 = 100
	DefaultLength         = 100 * time.Millisecond
)

// Player plays instruments as note on/off pairs on one MIDI channel.
// It implements both sequencer.Player and sequencer.Metronome.
type Player struct {
	send    Sender
	sendMu  sync.Mutex
	kit     DrumKit
	channel uint8 // 0-based

	Velocity uint8
	Length   time.Duration // used when a trigger has no stop offset

	now   func() time.Time
	after func(d time.Duration, f func())
}

// NewPlayer creates a player. channel is 1-16 as shown on hardware.
func NewPlayer(send Sender, kit DrumKit, channel int) (*Player, error) {
	if send == nil {
		return nil, fmt.Errorf("nil sender")
	}
	if channel < 1 || channel > 16 {
		return nil, fmt.Errorf("midi channel %d out of range 1-16", channel)
	}
	return &Player{
		send:     send,
		kit:      kit,
		channel:  uint8(channel - 1),
		Velocity: DefaultVelocity,
		Length:   DefaultLength,
		now:      time.Now,
		after: func(d time.Duration, f func()) {
			time.AfterFunc(d, f)
		},
	}, nil
}

// Kit returns the note mapping in use
func (p *Player) Kit() DrumKit {
	return p.kit
}

// Play triggers the kit note for inst at the given time
func (p *Player) Play(inst sequencer.Instrument, at time.Time, stop time.Duration) error {
	note, ok := p.kit.Note(inst)
	if !ok {
		return fmt.Errorf("%w: no note for %q in kit %s", sequencer.ErrUnknownInstrument, inst, p.kit.Name)
	}
	return p.trigger(note, p.Velocity, at, stop)
}

// Click plays the metronome note
func (p *Player) Click(at time.Time, length time.Duration) error {
	return p.trigger(ClickNote, p.Velocity, at, length)
}

func (p *Player) trigger(note, velocity uint8, at time.Time, length time.Duration) error {
	if length <= 0 {
		length = p.Length
	}
	var delay time.Duration
	if !at.IsZero() {
		delay = at.Sub(p.now())
	}

	if delay <= 0 {
		if err := p.write(gomidi.NoteOn(p.channel, note, velocity)); err != nil {
			return fmt.Errorf("note on %d: %w", note, err)
		}
		p.after(length, func() { p.noteOff(note) })
		return nil
	}

	// Scheduled ahead: errors can only be logged from here on
	p.after(delay, func() {
		if err := p.write(gomidi.NoteOn(p.channel, note, velocity)); err != nil {
			debug.Log("midi", "note on %d: %v", note, err)
			return
		}
		p.after(length, func() { p.noteOff(note) })
	})
	return nil
}

func (p *Player) noteOff(note uint8) {
	if err := p.write(gomidi.NoteOff(p.channel, note)); err != nil {
		debug.Log("midi", "note off %d: %v", note, err)
	}
}

func (p *Player) write(msg gomidi.Message) error {
	p.sendMu.Lock()
	defer p.sendMu.Unlock()
	return p.send(msg)
}

// LogSender is a Sender for running without an output port;
// messages only go to the debug log.
func LogSender() Sender {
	return func(msg gomidi.Message) error {
		debug.Log("midi", "no output: %s", msg.String())
		return nil
	}
}
