// Package tui is the terminal monitor of the live player.
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/cwbudde/algo-synth/engine"
	"github.com/cwbudde/algo-synth/instrument"
)

const (
	barWidth     = 32
	tempoStep    = 5
	noteFlash    = 150 * time.Millisecond
	tickInterval = 33 * time.Millisecond
)

// Engine is the part of *engine.Engine the monitor reads and controls.
type Engine interface {
	Progress() float64
	Playing() bool
	SetPlaying(bool)
	Stats() engine.Stats
	Flush() int
}

// Transport owns the tempo. *player.Stream implements it.
type Transport interface {
	Tempo() float64
	SetTempo(bpm float64) error
}

// NoteMsg carries a note notification into the program.
type NoteMsg engine.NoteEvent

type tickMsg time.Time

type trackState struct {
	name  string
	pitch uint8
	on    bool
	lit   time.Time
	count int
}

// Model is the bubbletea model of the monitor.
type Model struct {
	engine    Engine
	transport Transport
	tracks    []trackState
	now       time.Time
	err       error
	quitting  bool
}

// NewModel creates a monitor for an engine whose tracks play kinds.
func NewModel(e Engine, t Transport, kinds []instrument.Kind) Model {
	tracks := make([]trackState, len(kinds))
	for i, k := range kinds {
		tracks[i].name = k.String()
	}

	return Model{engine: e, transport: t, tracks: tracks, now: time.Now()}
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) Init() tea.Cmd { return tick() }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit

		case " ", "p":
			m.engine.SetPlaying(!m.engine.Playing())

		case "+", "=":
			m.err = m.transport.SetTempo(m.transport.Tempo() + tempoStep)

		case "-", "_":
			m.err = m.transport.SetTempo(max(tempoStep, m.transport.Tempo()-tempoStep))
		}

	case NoteMsg:
		if int(msg.Track) < len(m.tracks) {
			tr := &m.tracks[msg.Track]
			tr.pitch = msg.Pitch
			tr.on = msg.On

			if msg.On {
				tr.lit = m.now
				tr.count++
			}
		}

	case tickMsg:
		m.now = time.Time(msg)
		m.engine.Flush()

		return m, tick()
	}

	return m, nil
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("213"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	litStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("86"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	boxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	state := "STOP"
	if m.engine.Playing() {
		state = "PLAY"
	}

	var b strings.Builder

	b.WriteString(headerStyle.Render(fmt.Sprintf("algo-synth  %s  %5.1fbpm", state, m.transport.Tempo())))
	b.WriteString("\n\n")
	b.WriteString(progressBar(m.engine.Progress(), barWidth))
	b.WriteString("\n\n")

	for i, tr := range m.tracks {
		label := fmt.Sprintf("%d %-12s", i, tr.name)
		if tr.on && m.now.Sub(tr.lit) < noteFlash {
			label = litStyle.Render(label)
		}

		fmt.Fprintf(&b, "%s %s  notes %d\n", label, pitchName(tr.pitch), tr.count)
	}

	st := m.engine.Stats()
	stats := fmt.Sprintf("frames %d  renders %d", st.Frames, st.Renders)

	if d := st.Drops(); d > 0 {
		stats += warnStyle.Render(fmt.Sprintf("  drops %d", d))
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render(stats))

	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(warnStyle.Render(m.err.Error()))
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render("space:play/pause  +/-:tempo  q:quit"))

	return boxStyle.Render(b.String())
}

func progressBar(p float64, width int) string {
	filled := min(width, max(0, int(p*float64(width))))
	return "[" + strings.Repeat("#", filled) + strings.Repeat(".", width-filled) + "]"
}

var pitchClasses = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

func pitchName(p uint8) string {
	return fmt.Sprintf("%-3s%d", pitchClasses[p%12], int(p)/12-1)
}
