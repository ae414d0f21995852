// Package tui is a local chat console for exercising the router: type a
// message, see the decision the engine would hand the reply layer.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jakco/support-router/internal/engine"
)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	userStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	decisionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	escalateStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	faintStyle    = lipgloss.NewStyle().Faint(true)
)

type decisionMsg struct {
	result engine.Result
}

type model struct {
	engine    *engine.Engine
	input     textinput.Model
	lines     []string
	sessionID string
	waiting   bool
	quitting  bool
}

func Run(eng *engine.Engine) error {
	program := tea.NewProgram(newModel(eng))
	_, err := program.Run()
	return err
}

func newModel(eng *engine.Engine) model {
	input := textinput.New()
	input.Placeholder = "Type a support message…"
	input.Focus()
	input.CharLimit = 500
	return model{engine: eng, input: input}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.KeyMsg:
		switch typed.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.quitting = true
			return m, tea.Quit
		case tea.KeyEnter:
			text := strings.TrimSpace(m.input.Value())
			if text == "" || m.waiting {
				return m, nil
			}
			m.lines = append(m.lines, userStyle.Render("you> ")+text)
			m.input.SetValue("")
			m.waiting = true
			return m, m.routeCmd(text)
		}
	case decisionMsg:
		m.waiting = false
		m.sessionID = typed.result.SessionID
		m.lines = append(m.lines, renderDecision(typed.result)...)
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m model) View() string {
	if m.quitting {
		return ""
	}
	var b strings.Builder
	b.WriteString(headerStyle.Render("support-router chat"))
	if m.sessionID != "" {
		b.WriteString(faintStyle.Render("  session " + m.sessionID))
	}
	b.WriteString("\n\n")
	for _, line := range m.lines {
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(faintStyle.Render("enter to send · esc to quit"))
	return b.String()
}

func (m model) routeCmd(text string) tea.Cmd {
	eng, sessionID := m.engine, m.sessionID
	return func() tea.Msg {
		result := eng.Route(context.Background(), engine.Request{Message: text, SessionID: sessionID})
		return decisionMsg{result: result}
	}
}

func renderDecision(result engine.Result) []string {
	d := result.Decision
	verdict := decisionStyle.Render(fmt.Sprintf("→ %s · %s", d.Category, d.Priority))
	if d.Escalate {
		verdict += "  " + escalateStyle.Render("ESCALATE")
	}
	lines := []string{verdict}
	for _, block := range result.Blocks {
		lines = append(lines, faintStyle.Render("  ["+block.ID+"] ")+block.Body)
	}
	if len(result.Blocks) == 0 {
		lines = append(lines, faintStyle.Render("  "+d.Instructions))
	}
	return lines
}
