package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Surface adapts a bubbletea program to the dispatcher's render calls.
type Surface struct {
	prog *tea.Program
}

// New creates the program. Call Run to take over the terminal.
func New(d Dispatcher, opts ...tea.ProgramOption) *Surface {
	return &Surface{prog: tea.NewProgram(newModel(d), opts...)}
}

// Run blocks until the program exits.
func (s *Surface) Run() error {
	_, err := s.prog.Run()
	return err
}

func (s *Surface) RenderTasks(tasks []string) {
	s.prog.Send(tasksMsg(append([]string(nil), tasks...)))
}

func (s *Surface) RenderTimer(text string) {
	s.prog.Send(timerMsg(text))
}

func (s *Surface) ShowAlert(message string) {
	s.prog.Send(alertMsg(message))
}

func (s *Surface) ApplyTheme(token string) {
	s.prog.Send(themeMsg(token))
}

// Close asks the program to quit.
func (s *Surface) Close() {
	s.prog.Send(closeMsg{})
}
