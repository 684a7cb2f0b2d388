package main

import (
	"fmt"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type StatusMsg Status
type ToastMsg struct{ Text string } // last OSD text, mirrored in the terminal

type tuiModel struct {
	st     Status
	seen   bool
	toast  string
	width  int
	toggle func()
}

var (
	tuiProgram *tea.Program
	tuiMu      sync.Mutex
)

var (
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	liveStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("46")).Bold(true)
	recStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	barOnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	barOffStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("236"))
)

// NewTUIProgram builds the status view. toggle runs on the bubbletea
// goroutine and must hand off to the loop.
func NewTUIProgram(toggle func()) *tea.Program {
	return tea.NewProgram(tuiModel{toggle: toggle})
}

func tuiSend(msg tea.Msg) {
	tuiMu.Lock()
	p := tuiProgram
	tuiMu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}

func (m tuiModel) Init() tea.Cmd { return nil }

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case " ", "space":
			if m.toggle != nil {
				m.toggle()
			}
		}

	case StatusMsg:
		m.st = Status(msg)
		m.seen = true

	case ToastMsg:
		m.toast = msg.Text
	}
	return m, nil
}

func (m tuiModel) View() string {
	if !m.seen {
		return "Connecting to audio server...\n"
	}

	var b strings.Builder
	if m.st.Muted {
		b.WriteString(mutedStyle.Render("● MUTED"))
	} else {
		b.WriteString(liveStyle.Render("● LIVE "))
	}
	b.WriteString("  ")
	b.WriteString(renderLevel(m.st.Level, 20))
	if m.st.Active {
		b.WriteString("  ")
		b.WriteString(recStyle.Render("recording"))
	}
	b.WriteString("\n")

	source := m.st.Source
	if source == "" {
		source = "no microphone"
	}
	b.WriteString(dimStyle.Render("mic: " + source))
	b.WriteString("\n")
	if m.toast != "" {
		b.WriteString(dimStyle.Render(m.toast))
		b.WriteString("\n")
	}
	b.WriteString(dimStyle.Render("space: toggle  q: quit"))
	b.WriteString("\n")
	return b.String()
}

func renderLevel(level float64, width int) string {
	if level < 0 {
		level = 0
	}
	if level > 1 {
		level = 1
	}
	n := int(level*float64(width) + 0.5)
	return barOnStyle.Render(strings.Repeat("█", n)) +
		barOffStyle.Render(strings.Repeat("░", width-n)) +
		fmt.Sprintf(" %3d%%", int(level*100+0.5))
}
