// Package render is the terminal renderer: a bubbletea program that
// consumes the latest RenderState emitted by the logic worker and draws
// it, dropping stale snapshots in favor of the newest.
package render

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"rhythmforge/pkg/inputmap"
	"rhythmforge/pkg/snapshot"
)

// InputSink is how the renderer forwards translated key events back to
// the logic worker without reaching into its state directly.
type InputSink interface {
	SendKey(key string, press bool)
}

// Model is the bubbletea model driving the terminal UI.
type Model struct {
	states <-chan snapshot.RenderState
	binds  *inputmap.Bindings
	sink   InputSink

	width  int
	height int

	latest snapshot.RenderState
}

// NewModel builds a renderer that reads snapshots from states and
// forwards key input, translated by binds, to sink.
func NewModel(states <-chan snapshot.RenderState, binds *inputmap.Bindings, sink InputSink) Model {
	return Model{
		states: states,
		binds:  binds,
		sink:   sink,
		width:  100,
		height: 30,
		latest: snapshot.Empty(),
	}
}

type renderStateMsg snapshot.RenderState

func listenCmd(states <-chan snapshot.RenderState) tea.Cmd {
	return func() tea.Msg {
		state, ok := <-states
		if !ok {
			return nil
		}
		return renderStateMsg(state)
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(tea.EnterAltScreen, listenCmd(m.states))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case renderStateMsg:
		m.latest = snapshot.RenderState(msg)
		return m, listenCmd(m.states)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "esc" {
			return m, tea.Quit
		}
		// Terminal key events carry no release signal; only presses are
		// forwarded, and no release is ever sent for a column from here.
		if m.binds != nil && m.sink != nil {
			if _, ok := m.binds.Translate(msg.String(), true); ok {
				m.sink.SendKey(msg.String(), true)
			}
		}
		return m, nil
	}
	return m, nil
}

var (
	hudStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	laneStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	noteStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true)
	judgeStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	resultStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("13"))
)

func (m Model) View() string {
	switch m.latest.Kind {
	case snapshot.KindInGame:
		return m.viewGameplay(m.latest.InGame)
	case snapshot.KindResult:
		return m.viewResult(m.latest.Result)
	case snapshot.KindMenu:
		return "Menu — press Esc to quit"
	case snapshot.KindEditor:
		return fmt.Sprintf("Editor — %s", m.latest.Editor.MapName)
	default:
		return "Loading..."
	}
}

func (m Model) viewGameplay(g snapshot.Gameplay) string {
	var b strings.Builder

	hud := fmt.Sprintf("score %6d  combo %4d  acc %5.2f%%  nps %4.1f", g.Score, g.Combo, g.Accuracy, g.NPS)
	b.WriteString(hudStyle.Render(hud))
	b.WriteString("\n\n")

	lanes := len(g.KeysHeld)
	if lanes == 0 {
		lanes = 4
	}
	laneLine := make([]string, lanes)
	for i := range laneLine {
		if i < len(g.KeysHeld) && g.KeysHeld[i] {
			laneLine[i] = noteStyle.Render("█")
		} else {
			laneLine[i] = laneStyle.Render("|")
		}
	}
	b.WriteString(strings.Join(laneLine, " "))
	b.WriteString("\n")

	b.WriteString(fmt.Sprintf("visible notes: %d  remaining: %d\n", len(g.VisibleNotes), g.RemainingNotes))

	if g.LastHitJudgement != nil {
		b.WriteString(judgeStyle.Render(g.LastHitJudgement.String()))
		b.WriteString("\n")
	}

	if g.PracticeMode {
		b.WriteString(fmt.Sprintf("[practice] checkpoints: %d\n", len(g.Checkpoints)))
	}

	return b.String()
}

func (m Model) viewResult(r snapshot.GameResult) string {
	return resultStyle.Render(fmt.Sprintf(
		"Result — score %d  accuracy %.2f%%  max combo %d\nMarv %d Perfect %d Great %d Good %d Bad %d Miss %d",
		r.Score, r.Accuracy, r.MaxCombo,
		r.HitStats.Marv, r.HitStats.Perfect, r.HitStats.Great, r.HitStats.Good, r.HitStats.Bad, r.HitStats.Miss,
	))
}
