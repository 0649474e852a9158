package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"go-drumgrid/config"
	"go-drumgrid/debug"
	"go-drumgrid/midi"
	"go-drumgrid/sequencer"
	"go-drumgrid/theme"
	"go-drumgrid/tui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "Config or pattern file (.json or .yml). Defaults to ~/.config/go-drumgrid/config.json.")
	bpm := flag.Int("bpm", 0, "Tempo in beats per minute.")
	metronome := flag.Bool("metronome", false, "Play a metronome click on every step.")
	pattern := flag.String("pattern", "", "Share link query to load, e.g. \"kick=8888&hihat=aaaa&metronome=1\".")
	preview := flag.String("preview", "", "Step edit preview: activate, stopped, always or off.")
	port := flag.String("port", "", "MIDI output port name (substring match). Defaults to the first port.")
	kit := flag.String("kit", "", "Drum kit note mapping: gm, rd8 or tr8s.")
	channel := flag.Int("channel", 0, "MIDI channel 1-16.")
	palette := flag.String("palette", "", "GIMP .gpl palette for the UI.")
	debugFlag := flag.Bool("debug", false, "Write a debug log to ~/.config/go-drumgrid/debug.log.")
	export := flag.Bool("export", false, "Print the share link for the loaded pattern and exit.")
	saveTo := flag.String("save", "", "Write the resulting config to this file and exit.")
	flag.Parse()

	if *debugFlag {
		if err := debug.Enable(""); err != nil {
			return fmt.Errorf("enable debug log: %w", err)
		}
		defer debug.Disable()
	}

	var cfg *config.Config
	var err error
	if *configPath != "" {
		cfg, err = config.LoadFile(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Flags override the file
	if *bpm != 0 {
		cfg.Tempo = *bpm
	}
	if *metronome {
		cfg.Metronome = true
	}
	if *preview != "" {
		cfg.Preview = *preview
	}
	if *port != "" {
		cfg.MIDI.PortName = *port
	}
	if *kit != "" {
		cfg.MIDI.Kit = *kit
	}
	if *channel != 0 {
		cfg.MIDI.Channel = *channel
	}
	if *pattern != "" {
		p, err := sequencer.ParseQuery(*pattern, cfg.InstrumentList())
		if err != nil {
			return fmt.Errorf("pattern: %w", err)
		}
		cfg.ApplyPattern(p)
	}

	opts, err := cfg.SessionOptions()
	if err != nil {
		return err
	}

	if *saveTo != "" {
		return cfg.SaveFile(*saveTo)
	}

	if *export {
		session, err := sequencer.NewSession(nil, opts)
		if err != nil {
			return err
		}
		fmt.Println("?" + session.Query().Encode())
		return nil
	}

	send, portName, err := midi.OpenOut(cfg.MIDI.PortName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "No MIDI output (%v), triggers go to the debug log only\n", err)
		send = midi.LogSender()
	} else {
		defer midi.Close()
		debug.Log("midi", "output %s channel %d kit %s", portName, cfg.MIDI.OutChannel(), cfg.MIDI.Kit)
	}
	if missing := cfg.MissingNotes(); len(missing) > 0 {
		fmt.Fprintf(os.Stderr, "Kit %s has no note for %v, those rows stay silent\n", cfg.Kit().Name, missing)
	}
	player, err := midi.NewPlayer(send, cfg.Kit(), cfg.MIDI.OutChannel())
	if err != nil {
		return err
	}
	if l := cfg.NoteLength(); l > 0 {
		player.Length = l
	}

	session, err := sequencer.NewSession(player, opts)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go session.Run(ctx, sequencer.NewScheduler())

	pal, err := theme.LoadOrDefault(*palette)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Palette: %v, using default\n", err)
	}
	th := theme.New(pal)

	m := tui.NewModel(session, th)
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}

	// Let pending note-offs go out before the driver closes
	time.Sleep(player.Length)
	return nil
}
