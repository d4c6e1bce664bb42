// Package control defines the command messages posted by a display surface
// and the Dispatcher that applies them. The dispatcher loop is the only
// goroutine that touches the task list and the timer snapshot; timer and
// voice workers hand their results to it through the same intake.
package control

import (
	"VoiceTasks/speech"
	"VoiceTasks/timer"
)

// CommandType enumerates the requests a surface can make.
type CommandType int

const (
	CmdAdd CommandType = iota
	CmdDeleteSelected
	CmdClearAll
	CmdStartTimer
	CmdExit
	CmdThemeChange
	CmdFocusMode
	CmdAlarmMenu
)

var commandNames = map[CommandType]string{
	CmdAdd:            "add",
	CmdDeleteSelected: "delete",
	CmdClearAll:       "clear",
	CmdStartTimer:     "timer",
	CmdExit:           "exit",
	CmdThemeChange:    "theme",
	CmdFocusMode:      "focus",
	CmdAlarmMenu:      "alarm",
}

func (c CommandType) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return "unknown"
}

// NoSelection is the delete index sent when no task is selected.
const NoSelection = -1

// Command is the message sent from a surface to the dispatcher loop.
// Text carries the task text, the timer input or the theme token. An empty
// Text on CmdAdd or CmdStartTimer asks for voice input instead. The
// optional Reply channel receives the outcome once the loop handled the
// command; send on it never blocks, so give it a buffer.
type Command struct {
	Type  CommandType
	Text  string
	Index int
	Reply chan error
}

// Add requests a new task. Blank text starts voice capture.
func Add(text string) Command {
	return Command{Type: CmdAdd, Text: text}
}

// Delete requests removal of the task at index, or NoSelection.
func Delete(index int) Command {
	return Command{Type: CmdDeleteSelected, Index: index}
}

// StartTimer requests a countdown. Blank text starts voice capture.
func StartTimer(text string) Command {
	return Command{Type: CmdStartTimer, Text: text}
}

// Theme requests a color theme by token.
func Theme(token string) Command {
	return Command{Type: CmdThemeChange, Text: token}
}

// State is the dispatcher state, derived from what is in flight.
type State int

const (
	StateIdle State = iota
	StateAwaitingVoiceInput
	StateTimerRunning
	StateTerminal
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateAwaitingVoiceInput:
		return "AwaitingVoiceInput"
	case StateTimerRunning:
		return "TimerRunning"
	case StateTerminal:
		return "Terminal"
	}
	return "unknown"
}

// Snapshot is a copy of the loop-owned state.
type Snapshot struct {
	State State
	Tasks []string
	Timer timer.State
}

type purpose int

const (
	purposeAdd purpose = iota
	purposeTimer
)

type voiceResult struct {
	capture uint64
	purpose purpose
	cmd     speech.VoiceCommand
	err     error
}

// message is what travels through the intake. Exactly one field is set.
type message struct {
	cmd      *Command
	timer    *timer.Event
	voice    *voiceResult
	snapshot chan Snapshot
}
