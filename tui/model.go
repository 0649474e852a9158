package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"go-drumgrid/sequencer"
	"go-drumgrid/theme"
	"go-drumgrid/widgets"
)

// tempoStep is how much +/- move the tempo
const tempoStep = 5

var previewCycle = []sequencer.PreviewMode{
	sequencer.PreviewOnActivate,
	sequencer.PreviewWhenStopped,
	sequencer.PreviewAlways,
	sequencer.PreviewOff,
}

type Model struct {
	Session     *sequencer.Session
	Theme       *theme.Theme
	instruments []sequencer.Instrument
	cursorRow   int // instrument
	cursorCol   int // step
	status      string
	statusErr   bool
	quitting    bool
}

type UpdateMsg struct{}

func NewModel(session *sequencer.Session, th *theme.Theme) Model {
	return Model{
		Session:     session,
		Theme:       th,
		instruments: session.Instruments(),
	}
}

func ListenForUpdates(session *sequencer.Session) tea.Cmd {
	return func() tea.Msg {
		<-session.UpdateChan
		return UpdateMsg{}
	}
}

func (m Model) Init() tea.Cmd {
	return ListenForUpdates(m.Session)
}

// Cursor returns the selected instrument row and step
func (m Model) Cursor() (row, step int) {
	return m.cursorRow, m.cursorCol
}

// Status returns the last status line message
func (m Model) Status() string {
	return m.status
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg.String())

	case UpdateMsg:
		if err := m.Session.LastError(); err != nil {
			m.fail(err)
		}
		return m, ListenForUpdates(m.Session)
	}
	return m, nil
}

// StatusIsError reports whether the status line shows an error
func (m Model) StatusIsError() bool {
	return m.statusErr
}

func (m *Model) fail(err error) {
	m.status = err.Error()
	m.statusErr = true
}

func (m Model) handleKey(key string) (tea.Model, tea.Cmd) {
	m.statusErr = false
	switch key {
	case "q", "ctrl+c":
		m.quitting = true
		m.Session.Stop()
		return m, tea.Quit

	case "p":
		if m.Session.TogglePlay() {
			m.status = "playing"
		} else {
			m.status = "stopped"
		}

	case "r":
		m.Session.Rewind()
		m.status = "rewound"

	case "c":
		m.Session.Clear()
		m.status = "cleared"

	case "+", "=":
		m.setTempo(m.Session.Tempo() + tempoStep)

	case "-", "_":
		m.setTempo(m.Session.Tempo() - tempoStep)

	case "t":
		on := !m.Session.MetronomeEnabled()
		m.Session.SetMetronomeEnabled(on)
		m.status = fmt.Sprintf("metronome %v", on)

	case "m":
		next := previewCycle[0]
		cur := m.Session.PreviewMode()
		for i, mode := range previewCycle {
			if mode == cur {
				next = previewCycle[(i+1)%len(previewCycle)]
			}
		}
		m.Session.SetPreviewMode(next)
		m.status = "preview: " + next.String()

	case "e":
		m.status = "?" + m.Session.Query().Encode()

	case "h", "left":
		if m.cursorCol > 0 {
			m.cursorCol--
		}
	case "l", "right":
		if m.cursorCol < sequencer.NumSteps-1 {
			m.cursorCol++
		}
	case "k", "up":
		if m.cursorRow > 0 {
			m.cursorRow--
		}
	case "j", "down":
		if m.cursorRow < len(m.instruments)-1 {
			m.cursorRow++
		}

	case " ":
		if inst, ok := m.selected(); ok {
			if _, err := m.Session.ToggleStep(inst, m.cursorCol); err != nil {
				m.fail(err)
			}
		}

	case "enter":
		if inst, ok := m.selected(); ok {
			if err := m.Session.Audition(inst); err != nil {
				m.fail(err)
			}
		}
	}
	return m, nil
}

func (m *Model) setTempo(bpm int) {
	if err := m.Session.SetTempo(bpm); err != nil {
		m.fail(err)
		return
	}
	m.status = fmt.Sprintf("%d bpm", bpm)
}

func (m Model) selected() (sequencer.Instrument, bool) {
	if m.cursorRow < 0 || m.cursorRow >= len(m.instruments) {
		return "", false
	}
	return m.instruments[m.cursorRow], true
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	headerStyle := lipgloss.NewStyle().Foreground(m.Theme.Accent())
	labelStyle := lipgloss.NewStyle().Foreground(m.Theme.FG())
	dimStyle := lipgloss.NewStyle().Foreground(m.Theme.Muted())
	statusStyle := lipgloss.NewStyle().
		Foreground(m.Theme.FG()).
		Background(m.Theme.Muted()).
		Padding(0, 1)

	playState := "STOP"
	if m.Session.Playing() {
		playState = "PLAY"
	}
	tick := ""
	if m.Session.MetronomeEnabled() {
		tick = "  tick"
	}
	highlight := m.Session.Highlighted()
	header := headerStyle.Render(fmt.Sprintf("go-drumgrid  %s  %3dbpm  beat:%d%s", playState, m.Session.Tempo(), m.Session.Beat(), tick))

	var grid strings.Builder
	width := 0
	for _, inst := range m.instruments {
		width = max(width, len(inst))
	}
	for i, inst := range m.instruments {
		steps, err := m.Session.Row(inst)
		if err != nil {
			continue
		}
		cursor := widgets.NoCursor
		if i == m.cursorRow {
			cursor = m.cursorCol
		}
		grid.WriteString(labelStyle.Render(fmt.Sprintf("%-*s ", width, inst)))
		grid.WriteString(widgets.RenderRow(m.Theme, steps, cursor, highlight))
		grid.WriteString("\n")
	}
	grid.WriteString(strings.Repeat(" ", width+1))
	grid.WriteString(widgets.RenderStepNumbers(m.Theme, highlight))

	help := widgets.RenderKeyHelp([]widgets.KeySection{
		{Keys: []widgets.KeyBinding{
			{Key: "hjkl", Desc: "move cursor"},
			{Key: "space", Desc: "toggle step"},
			{Key: "enter", Desc: "audition instrument"},
			{Key: "p / r / c", Desc: "play-stop / rewind / clear"},
			{Key: "+ / -", Desc: "tempo"},
			{Key: "t / m", Desc: "metronome / preview mode"},
			{Key: "e", Desc: "show share link"},
			{Key: "q", Desc: "quit"},
		}},
	})

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(header)
	out.WriteString("\n\n")
	out.WriteString(grid.String())
	out.WriteString("\n\n")
	out.WriteString(dimStyle.Render(help))

	if m.status != "" {
		if m.statusErr {
			statusStyle = statusStyle.Foreground(m.Theme.Warning())
		}
		out.WriteString("\n\n")
		out.WriteString(statusStyle.Render(m.status))
	}
	return out.String()
}
