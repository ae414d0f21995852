package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jakco/support-router/internal/engine"
)

func TestEnterOnEmptyInputDoesNothing(t *testing.T) {
	m := newModel(engine.New(engine.Options{}))

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		t.Fatal("empty input must not route")
	}
	if len(updated.(model).lines) != 0 {
		t.Fatal("no transcript lines expected")
	}
}

func TestEnterRoutesMessage(t *testing.T) {
	m := newModel(engine.New(engine.Options{}))
	m.input.SetValue("I want to speak to a human")

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(model)
	if cmd == nil {
		t.Fatal("expected route command")
	}
	if !m.waiting || len(m.lines) != 1 {
		t.Fatalf("expected pending state with echoed input, got %+v", m)
	}

	msg := cmd()
	decision, ok := msg.(decisionMsg)
	if !ok {
		t.Fatalf("expected decisionMsg, got %T", msg)
	}
	updated, _ = m.Update(decision)
	m = updated.(model)
	if m.waiting {
		t.Fatal("waiting flag should clear")
	}
	if !strings.Contains(strings.Join(m.lines, "\n"), "ESCALATE") {
		t.Fatalf("handoff should render as escalation: %v", m.lines)
	}
	if m.sessionID == "" {
		t.Fatal("session id should stick for the next turn")
	}
}
