// Package tui is the terminal display surface built on bubbletea. Render
// calls from the dispatcher become messages delivered with Program.Send,
// so the model is only ever touched by the bubbletea event loop.
package tui

import (
	"fmt"
	"strings"

	"VoiceTasks/control"
	"VoiceTasks/i18n"
	"VoiceTasks/palette"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Dispatcher receives the commands the terminal produces.
type Dispatcher interface {
	Post(cmd control.Command)
	Done() <-chan struct{}
}

type (
	tasksMsg []string
	timerMsg string
	alertMsg string
	themeMsg string
	closeMsg struct{}
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#2196f3"))

	timerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#d32f2f"))

	cursorStyle = lipgloss.NewStyle().Bold(true)

	alertStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("196")).
			Padding(0, 1)

	helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

type model struct {
	d      Dispatcher
	input  textinput.Model
	tasks  []string
	cursor int
	timer  string
	alert  string
	swatch palette.Swatch
	width  int
}

func newModel(d Dispatcher) model {
	ti := textinput.New()
	ti.Placeholder = i18n.T("Type a task, or leave empty to speak")
	ti.Focus()
	ti.CharLimit = 200
	ti.Width = 50

	return model{
		d:      d,
		input:  ti,
		cursor: control.NoSelection,
		timer:  "00:00",
		swatch: palette.Default,
	}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		m.alert = ""
		switch msg.String() {
		case "esc", "ctrl+c":
			select {
			case <-m.d.Done():
				return m, tea.Quit
			default:
				m.d.Post(control.Command{Type: control.CmdExit})
			}
			return m, nil
		case "enter":
			m.d.Post(control.Add(m.input.Value()))
			m.input.Reset()
			return m, nil
		case "ctrl+t":
			m.d.Post(control.StartTimer(m.input.Value()))
			m.input.Reset()
			return m, nil
		case "ctrl+d":
			m.d.Post(control.Delete(m.cursor))
			return m, nil
		case "ctrl+x":
			m.d.Post(control.Command{Type: control.CmdClearAll})
			return m, nil
		case "ctrl+f":
			m.d.Post(control.Command{Type: control.CmdFocusMode})
			return m, nil
		case "ctrl+r":
			m.d.Post(control.Command{Type: control.CmdAlarmMenu})
			return m, nil
		case "ctrl+p":
			m.d.Post(control.Theme(palette.Next(m.swatch.Token).Token))
			return m, nil
		case "up":
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil
		case "down":
			if m.cursor < len(m.tasks)-1 {
				m.cursor++
			}
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tasksMsg:
		m.tasks = []string(msg)
		m.cursor = control.NoSelection
		if len(m.tasks) > 0 {
			m.cursor = 0
		}
		return m, nil

	case timerMsg:
		m.timer = string(msg)
		return m, nil

	case alertMsg:
		m.alert = string(msg)
		return m, nil

	case themeMsg:
		if s, ok := palette.Lookup(string(msg)); ok {
			m.swatch = s
		}
		return m, nil

	case closeMsg:
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(i18n.T("The To-Do List")))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	if len(m.tasks) == 0 {
		b.WriteString(helpStyle.Render("  -"))
		b.WriteString("\n")
	}
	for i, task := range m.tasks {
		line := fmt.Sprintf("  %s", task)
		if i == m.cursor {
			line = cursorStyle.Render("> " + task)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(timerStyle.Render(m.timer))
	b.WriteString("\n")
	if m.alert != "" {
		b.WriteString("\n")
		b.WriteString(alertStyle.Render(m.alert))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("enter: add | ctrl+t: timer | ctrl+d: delete | ctrl+x: delete all | ctrl+f: focus | ctrl+r: alarm | ctrl+p: theme | esc: exit"))

	fg := lipgloss.Color("#000000")
	if m.swatch.Dark() {
		fg = lipgloss.Color("#ffffff")
	}
	page := lipgloss.NewStyle().
		Background(lipgloss.Color(m.swatch.Hex())).
		Foreground(fg).
		Padding(1, 2)
	if m.width > 0 {
		page = page.Width(m.width)
	}
	return page.Render(b.String())
}
