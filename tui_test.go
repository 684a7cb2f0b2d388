package main

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestTUISpaceToggles(t *testing.T) {
	n := 0
	var m tea.Model = tuiModel{toggle: func() { n++ }}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	if n != 2 {
		t.Fatalf("toggle called %d times, want 2", n)
	}

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("q did not quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("q returned a command other than Quit")
	}
}

func TestTUIView(t *testing.T) {
	var m tea.Model = tuiModel{}
	if !strings.Contains(m.View(), "Connecting") {
		t.Errorf("view before status = %q", m.View())
	}

	m, _ = m.Update(StatusMsg{Muted: true, Active: true, Level: 0.5, Source: "alsa_input.usb"})
	v := m.View()
	for _, want := range []string{"MUTED", "recording", "alsa_input.usb", " 50%"} {
		if !strings.Contains(v, want) {
			t.Errorf("view missing %q:\n%s", want, v)
		}
	}

	m, _ = m.Update(StatusMsg{})
	v = m.View()
	if !strings.Contains(v, "LIVE") || !strings.Contains(v, "no microphone") || strings.Contains(v, "recording") {
		t.Errorf("view:\n%s", v)
	}
}

func TestRenderLevelClamps(t *testing.T) {
	if got := renderLevel(2, 4); !strings.HasSuffix(got, "100%") {
		t.Errorf("renderLevel(2) = %q", got)
	}
	if got := renderLevel(-1, 4); !strings.HasSuffix(got, "  0%") {
		t.Errorf("renderLevel(-1) = %q", got)
	}
}
