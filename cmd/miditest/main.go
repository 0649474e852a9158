package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"go-drumgrid/midi"
	"go-drumgrid/sequencer"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	var err error
	switch os.Args[1] {
	case "list":
		err = listPorts()
	case "play":
		err = playInstruments(os.Args[2:])
	case "click":
		err = playClicks()
	case "poll":
		pollDevices()
	default:
		usage()
	}
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("MIDI Test Scripts")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  list                 - List MIDI output ports")
	fmt.Println("  play <inst>... [@port] - Trigger instruments once each (gm kit, channel 10)")
	fmt.Println("  click [@port]        - Four metronome clicks at 100 bpm")
	fmt.Println("  poll                 - Poll for output port changes")
}

func listPorts() error {
	fmt.Println("=== MIDI Output Ports ===")
	fmt.Println("(waiting up to 3 seconds...)")

	names, err := midi.OutPortNames()
	if err != nil {
		return err
	}
	for i, name := range names {
		fmt.Printf("  %d: %s\n", i, name)
	}
	return nil
}

// splitPort pulls an "@name" argument out of args
func splitPort(args []string) (rest []string, port string) {
	for _, a := range args {
		if strings.HasPrefix(a, "@") {
			port = strings.TrimPrefix(a, "@")
			continue
		}
		rest = append(rest, a)
	}
	return rest, port
}

func openPlayer(port string) (*midi.Player, error) {
	send, name, err := midi.OpenOut(port)
	if err != nil {
		return nil, err
	}
	fmt.Printf("Using output: %s\n", name)
	return midi.NewPlayer(send, midi.GetKit(midi.DefaultKit), 10)
}

func playInstruments(args []string) error {
	names, port := splitPort(args)
	if len(names) == 0 {
		for _, inst := range sequencer.DefaultInstruments {
			names = append(names, string(inst))
		}
	}
	p, err := openPlayer(port)
	if err != nil {
		return err
	}
	defer midi.Close()

	for _, name := range names {
		fmt.Printf("  %s\n", name)
		if err := p.Play(sequencer.Instrument(name), time.Time{}, 0); err != nil {
			fmt.Printf("    error: %v\n", err)
		}
		time.Sleep(300 * time.Millisecond)
	}
	return nil
}

func playClicks() error {
	_, port := splitPort(os.Args[2:])
	p, err := openPlayer(port)
	if err != nil {
		return err
	}
	defer midi.Close()

	step := sequencer.StepInterval(sequencer.DefaultTempo) * sequencer.StepsPerBeat
	for i := 0; i < 4; i++ {
		if err := p.Click(time.Time{}, sequencer.EighthNote(sequencer.DefaultTempo)); err != nil {
			return err
		}
		time.Sleep(step)
	}
	return nil
}

func pollDevices() {
	fmt.Println("Polling for output port changes every 2 seconds...")
	fmt.Println("Connect/disconnect a device to test. Ctrl+C to exit.")

	last := ""
	for {
		names, err := midi.OutPortNames()
		if err != nil {
			fmt.Printf("\n[%s] %v\n", time.Now().Format("15:04:05"), err)
			time.Sleep(2 * time.Second)
			continue
		}

		current := strings.Join(names, ",")
		if current != last {
			fmt.Printf("\n[%s] Device change detected!\n", time.Now().Format("15:04:05"))
			fmt.Printf("  Outputs: %v\n", names)
			last = current
		}

		time.Sleep(2 * time.Second)
	}
}
