package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"go-drumgrid/midi"
	"go-drumgrid/sequencer"
)

// MIDIConfig defines the output the player sends to
type MIDIConfig struct {
	PortName string `json:"portName,omitempty" yaml:"portName,omitempty"`
	Channel  int    `json:"channel,omitempty" yaml:"channel,omitempty"` // 1-16
	Kit      string `json:"kit,omitempty" yaml:"kit,omitempty"`
	LengthMS int    `json:"lengthMs,omitempty" yaml:"lengthMs,omitempty"` // note length for untimed plays
}

// DefaultChannel is the General MIDI percussion channel
const DefaultChannel = 10

// OutChannel returns the configured channel, DefaultChannel when unset
func (m MIDIConfig) OutChannel() int {
	if m.Channel == 0 {
		return DefaultChannel
	}
	return m.Channel
}

// Config is the main configuration structure
type Config struct {
	Tempo       int               `json:"tempo,omitempty" yaml:"tempo,omitempty"`
	Metronome   bool              `json:"metronome,omitempty" yaml:"metronome,omitempty"`
	Preview     string            `json:"preview,omitempty" yaml:"preview,omitempty"`
	Instruments []string          `json:"instruments,omitempty" yaml:"instruments,omitempty"`
	Sequences   map[string]string `json:"sequences,omitempty" yaml:"sequences,omitempty"` // instrument -> hex row
	StopMS      int               `json:"stopMs,omitempty" yaml:"stopMs,omitempty"`       // ring time per scheduled hit
	MIDI        MIDIConfig        `json:"midi,omitempty" yaml:"midi,omitempty"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	instruments := make([]string, len(sequencer.DefaultInstruments))
	for i, inst := range sequencer.DefaultInstruments {
		instruments[i] = string(inst)
	}
	return &Config{
		Tempo:       sequencer.DefaultTempo,
		Preview:     sequencer.PreviewOnActivate.String(),
		Instruments: instruments,
		StopMS:      int(sequencer.DefaultStopOffset / time.Millisecond),
		MIDI: MIDIConfig{
			Channel:  DefaultChannel,
			Kit:      midi.DefaultKit,
			LengthMS: 100,
		},
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "go-drumgrid"), nil
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from disk, or returns defaults if not found
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}
	cfg, err := LoadFile(path)
	if os.IsNotExist(err) {
		return DefaultConfig(), nil
	}
	return cfg, err
}

// LoadFile reads a config or pattern file. JSON is tried first, then YAML.
// Fields the file leaves out keep their defaults.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes JSON or YAML config data
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if errJSON := json.Unmarshal(data, cfg); errJSON != nil {
		cfg = DefaultConfig()
		if errYaml := yaml.Unmarshal(data, cfg); errYaml != nil {
			return nil, fmt.Errorf("config could not be parsed as .json (%v) or .yml (%v)", errJSON, errYaml)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the config to disk
func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveFile(path)
}

// SaveFile writes the config to path; a .yml or .yaml extension selects YAML
func (c *Config) SaveFile(path string) error {
	// Create directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	var data []byte
	var err error
	switch filepath.Ext(path) {
	case ".yml", ".yaml":
		data, err = yaml.Marshal(c)
	default:
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks values that would fail later when building a session
func (c *Config) Validate() error {
	if err := sequencer.ValidateTempo(c.Tempo); err != nil {
		return err
	}
	if _, err := sequencer.ParsePreviewMode(c.Preview); err != nil {
		return err
	}
	if c.MIDI.Channel < 0 || c.MIDI.Channel > 16 {
		return fmt.Errorf("midi channel %d out of range 1-16", c.MIDI.Channel)
	}
	if _, ok := midi.LookupKit(c.MIDI.Kit); c.MIDI.Kit != "" && !ok {
		return fmt.Errorf("unknown kit %q, want one of %v", c.MIDI.Kit, midi.KitNames())
	}
	known := make(map[string]bool, len(c.Instruments))
	for _, name := range c.Instruments {
		if err := sequencer.CheckInstrument(sequencer.Instrument(name)); err != nil {
			return err
		}
		known[name] = true
	}
	for name, hex := range c.Sequences {
		if len(c.Instruments) > 0 && !known[name] {
			return fmt.Errorf("%w: sequence for %q", sequencer.ErrUnknownInstrument, name)
		}
		if _, err := sequencer.DecodeSteps(hex); err != nil {
			return fmt.Errorf("sequence %s: %w", name, err)
		}
	}
	return nil
}

// ApplyPattern copies a decoded share link into the config
func (c *Config) ApplyPattern(p sequencer.Pattern) {
	if c.Sequences == nil {
		c.Sequences = make(map[string]string)
	}
	for inst, steps := range p.Rows {
		if steps.Active() == 0 {
			delete(c.Sequences, string(inst))
			continue
		}
		c.Sequences[string(inst)] = sequencer.EncodeSteps(steps)
	}
	if p.Tempo > 0 {
		c.Tempo = p.Tempo
	}
	if p.Metronome {
		c.Metronome = true
	}
}

// InstrumentList returns the configured instruments, or the default kit
func (c *Config) InstrumentList() []sequencer.Instrument {
	if len(c.Instruments) == 0 {
		return sequencer.DefaultInstruments
	}
	out := make([]sequencer.Instrument, len(c.Instruments))
	for i, name := range c.Instruments {
		out[i] = sequencer.Instrument(name)
	}
	return out
}

// SessionOptions builds the options for sequencer.NewSession
func (c *Config) SessionOptions() (sequencer.Options, error) {
	if err := c.Validate(); err != nil {
		return sequencer.Options{}, err
	}
	preview, _ := sequencer.ParsePreviewMode(c.Preview)
	opts := sequencer.Options{
		Instruments: c.InstrumentList(),
		Tempo:       c.Tempo,
		Metronome:   c.Metronome,
		Preview:     preview,
		StopOffset:  time.Duration(c.StopMS) * time.Millisecond,
		Rows:        make(map[sequencer.Instrument]sequencer.Steps, len(c.Sequences)),
	}
	for name, hex := range c.Sequences {
		steps, _ := sequencer.DecodeSteps(hex)
		opts.Rows[sequencer.Instrument(name)] = steps
	}
	return opts, nil
}

// Kit returns the configured drum kit, the default kit when unset
func (c *Config) Kit() midi.DrumKit {
	return midi.GetKit(c.MIDI.Kit)
}

// MissingNotes lists the instruments the kit has no note for.
// Armed steps on these fail on every pass.
func (c *Config) MissingNotes() []sequencer.Instrument {
	kit := c.Kit()
	var missing []sequencer.Instrument
	for _, inst := range c.InstrumentList() {
		if _, ok := kit.Note(inst); !ok {
			missing = append(missing, inst)
		}
	}
	return missing
}

// NoteLength returns the length for untimed plays
func (c *Config) NoteLength() time.Duration {
	return time.Duration(c.MIDI.LengthMS) * time.Millisecond
}
