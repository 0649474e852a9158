package midi

import "go-drumgrid/sequencer"

// ClickNote is the pitched metronome click (C3)
const ClickNote uint8 = 48

// DrumKit maps instrument names to the MIDI notes that trigger them
type DrumKit struct {
	Name  string
	Notes map[sequencer.Instrument]uint8
}

// Note returns the note for inst
func (k DrumKit) Note(inst sequencer.Instrument) (uint8, bool) {
	n, ok := k.Notes[inst]
	return n, ok
}

// Kits contains all available drum kit mappings
var Kits = map[string]DrumKit{
	"gm": {
		Name: "General MIDI",
		Notes: map[sequencer.Instrument]uint8{
			"kick":   36, // Bass Drum 1
			"snare":  38, // Acoustic Snare
			"hihat":  42, // Closed HH
			"clap":   39, // Hand Clap
			"shaker": 70, // Maracas
			"fing":   75, // Claves
			"rim":    37, // Side Stick
			"tom":    45, // Low Tom
			"tick":   76, // Hi Wood Block
		},
	},
	"rd8": {
		Name: "Behringer RD-8",
		Notes: map[sequencer.Instrument]uint8{
			"kick":   36, // BD
			"snare":  40, // SD - RD-8 uses 40, not 38
			"hihat":  42, // CH
			"clap":   39, // CP
			"shaker": 70, // MA
			"fing":   75, // CL
			"rim":    37, // RS
			"tom":    45, // LT
			"tick":   56, // CB
		},
	},
	"tr8s": {
		Name: "Roland TR-8S",
		Notes: map[sequencer.Instrument]uint8{
			"kick":   36,
			"snare":  38,
			"hihat":  42,
			"clap":   39,
			"shaker": 70,
			"fing":   75,
			"rim":    37,
			"tom":    43,
			"tick":   56,
		},
	},
}

// KitNames returns the list of available kit names
func KitNames() []string {
	return []string{"gm", "rd8", "tr8s"}
}

// LookupKit returns the kit called name
func LookupKit(name string) (DrumKit, bool) {
	kit, ok := Kits[name]
	return kit, ok
}

// GetKit returns a kit by name, defaulting to GM if not found
func GetKit(name string) DrumKit {
	if kit, ok := LookupKit(name); ok {
		return kit
	}
	return Kits[DefaultKit]
}

// DefaultKit is the default kit name
const DefaultKit = "gm"
