package midi

import (
	"errors"
	"fmt"
	"strings"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register MIDI driver
)

// ErrPortNotFound is returned when no output port matches the requested name
var ErrPortNotFound = errors.New("midi output port not found")

// ErrDriverTimeout is returned when the MIDI backend does not answer in time
var ErrDriverTimeout = errors.New("midi driver did not respond")

// scanTimeout bounds port enumeration (CoreMIDI can hang)
const scanTimeout = 3 * time.Second

// OutPorts lists the output ports, giving up after scanTimeout
func OutPorts() ([]drivers.Out, error) {
	ch := make(chan []drivers.Out, 1)
	go func() {
		ch <- gomidi.GetOutPorts()
	}()

	select {
	case outs := <-ch:
		return outs, nil
	case <-time.After(scanTimeout):
		// Fix on macOS: sudo killall coreaudiod midiserver
		return nil, ErrDriverTimeout
	}
}

// OutPortNames returns the names of all output ports
func OutPortNames() ([]string, error) {
	outs, err := OutPorts()
	if err != nil {
		return nil, err
	}
	names := make([]string, len(outs))
	for i, out := range outs {
		names[i] = out.String()
	}
	return names, nil
}

// matchPort picks the port called want: an exact name first, then the
// first name containing want (case-insensitive). Empty want takes the
// first port. -1 when nothing matches.
func matchPort(names []string, want string) int {
	if len(names) == 0 {
		return -1
	}
	if want == "" {
		return 0
	}
	for i, name := range names {
		if name == want {
			return i
		}
	}
	lower := strings.ToLower(want)
	for i, name := range names {
		if strings.Contains(strings.ToLower(name), lower) {
			return i
		}
	}
	return -1
}

// OpenOut opens the output port matching name and returns its sender
// together with the resolved port name
func OpenOut(name string) (Sender, string, error) {
	outs, err := OutPorts()
	if err != nil {
		return nil, "", err
	}
	names := make([]string, len(outs))
	for i, out := range outs {
		names[i] = out.String()
	}
	idx := matchPort(names, name)
	if idx < 0 {
		return nil, "", fmt.Errorf("%w: %q", ErrPortNotFound, name)
	}
	send, err := gomidi.SendTo(outs[idx])
	if err != nil {
		return nil, "", fmt.Errorf("open output %s: %w", names[idx], err)
	}
	return send, names[idx], nil
}

// Close releases the MIDI driver
func Close() {
	gomidi.CloseDriver()
}
