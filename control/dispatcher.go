package control

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"VoiceTasks/i18n"
	"VoiceTasks/speech"
	"VoiceTasks/tasks"
	"VoiceTasks/timer"
)

var (
	// ErrNoSelection is the outcome of a delete with nothing selected.
	ErrNoSelection = errors.New("no task selected")
	// ErrStopped is returned by queries made after the loop exited.
	ErrStopped = errors.New("dispatcher stopped")
)

// Surface renders state. Every method is called from the dispatcher loop
// and must hand the work to the surface's own thread without blocking.
type Surface interface {
	RenderTasks(tasks []string)
	RenderTimer(text string)
	ShowAlert(message string)
	ApplyTheme(token string)
	Close()
}

// Speech is the part of the speech service the dispatcher uses.
type Speech interface {
	Speak(text string)
	Listen(ctx context.Context) (speech.VoiceCommand, error)
}

// Alarm sounds when a countdown completes. Ring must not block.
type Alarm interface {
	Ring()
}

// ThemeStore persists the chosen color theme.
type ThemeStore interface {
	Theme() string
	SaveTheme(token string) error
}

// Options configures a Dispatcher. Zero values pick defaults.
type Options struct {
	Clock          timer.Clock
	Alarm          Alarm
	Themes         ThemeStore
	QueueSize      int
	EnqueueTimeout time.Duration
}

// Dispatcher serializes surface commands, timer events and voice results
// onto one goroutine.
type Dispatcher struct {
	surface Surface
	speech  Speech
	alarm   Alarm
	themes  ThemeStore

	intake         chan message
	enqueueTimeout time.Duration
	stopped        chan struct{}
	stopOnce       sync.Once
	captures       sync.WaitGroup

	// Owned by the loop goroutine.
	store         *tasks.Store
	engine        *timer.Engine
	timerState    timer.State
	countdown     uint64
	captureSeq    uint64
	capture       uint64
	captureCancel context.CancelFunc
	terminal      bool
}

// New creates a dispatcher. Run must be called to start processing.
func New(surface Surface, sp Speech, opts Options) *Dispatcher {
	if opts.QueueSize <= 0 {
		opts.QueueSize = 256
	}
	if opts.EnqueueTimeout <= 0 {
		opts.EnqueueTimeout = 150 * time.Millisecond
	}
	d := &Dispatcher{
		surface:        surface,
		speech:         sp,
		alarm:          opts.Alarm,
		themes:         opts.Themes,
		intake:         make(chan message, opts.QueueSize),
		enqueueTimeout: opts.EnqueueTimeout,
		stopped:        make(chan struct{}),
		store:          tasks.NewStore(),
	}
	d.engine = timer.NewEngine(opts.Clock, d.notifyTimer)
	return d
}

// Post sends a command to the loop. If the intake stays full for the
// enqueue timeout, or the loop has stopped, the command is dropped.
func (d *Dispatcher) Post(cmd Command) {
	select {
	case d.intake <- message{cmd: &cmd}:
	case <-d.stopped:
		log.Printf("dispatcher: stopped, dropping %s command", cmd.Type)
	case <-time.After(d.enqueueTimeout):
		log.Printf("dispatcher: enqueue timeout, dropping %s command", cmd.Type)
	}
}

// Snapshot asks the loop for a copy of its state.
func (d *Dispatcher) Snapshot() (Snapshot, error) {
	reply := make(chan Snapshot, 1)
	select {
	case d.intake <- message{snapshot: reply}:
	case <-d.stopped:
		return Snapshot{State: StateTerminal}, ErrStopped
	}
	select {
	case s := <-reply:
		return s, nil
	case <-d.stopped:
		return Snapshot{State: StateTerminal}, ErrStopped
	}
}

// Done is closed once Run has returned.
func (d *Dispatcher) Done() <-chan struct{} {
	return d.stopped
}

// Run processes messages until an exit command arrives or ctx is done.
// Either way all workers are stopped and the surface is closed before it
// returns.
func (d *Dispatcher) Run(ctx context.Context) error {
	defer d.stopOnce.Do(func() { close(d.stopped) })

	if d.themes != nil {
		if token := d.themes.Theme(); token != "" {
			d.surface.ApplyTheme(token)
		}
	}
	d.surface.RenderTasks(d.store.Items())
	d.surface.RenderTimer(timer.FormatTime(0))

	for {
		select {
		case <-ctx.Done():
			d.shutdown()
			return ctx.Err()
		case m := <-d.intake:
			d.handle(m)
			if d.terminal {
				return nil
			}
		}
	}
}

func (d *Dispatcher) handle(m message) {
	switch {
	case m.cmd != nil:
		err := d.apply(*m.cmd)
		if err != nil {
			log.Printf("dispatcher: %s: %v", m.cmd.Type, err)
		}
		if m.cmd.Reply != nil {
			select {
			case m.cmd.Reply <- err:
			default:
			}
		}
	case m.timer != nil:
		d.onTimer(*m.timer)
	case m.voice != nil:
		d.onVoice(*m.voice)
	case m.snapshot != nil:
		m.snapshot <- Snapshot{State: d.state(), Tasks: d.store.Items(), Timer: d.timerState}
	}
}

func (d *Dispatcher) state() State {
	switch {
	case d.terminal:
		return StateTerminal
	case d.captureCancel != nil:
		return StateAwaitingVoiceInput
	case d.timerState.Running:
		return StateTimerRunning
	}
	return StateIdle
}

func (d *Dispatcher) apply(cmd Command) error {
	switch cmd.Type {
	case CmdAdd:
		// Whitespace-only text counts as an empty field.
		if strings.TrimSpace(cmd.Text) == "" {
			d.listen(purposeAdd)
			return nil
		}
		return d.addTask(cmd.Text)
	case CmdDeleteSelected:
		return d.deleteTask(cmd.Index)
	case CmdClearAll:
		d.store.Clear()
		d.surface.RenderTasks(d.store.Items())
		d.speech.Speak(i18n.T("All tasks deleted."))
	case CmdStartTimer:
		if strings.TrimSpace(cmd.Text) == "" {
			d.listen(purposeTimer)
			return nil
		}
		return d.startTimer(cmd.Text)
	case CmdExit:
		d.speech.Speak(i18n.T("Closing the application"))
		d.shutdown()
	case CmdThemeChange:
		return d.changeTheme(cmd.Text)
	case CmdFocusMode:
		d.speech.Speak(i18n.T("Focus Mode activated!"))
	case CmdAlarmMenu:
		d.speech.Speak(i18n.T("Set your alarm!"))
	default:
		return fmt.Errorf("unknown command type %d", cmd.Type)
	}
	return nil
}

func (d *Dispatcher) addTask(text string) error {
	if err := d.store.Add(text); err != nil {
		return err
	}
	d.surface.RenderTasks(d.store.Items())
	d.speech.Speak(i18n.Tf("Task %s added.", strings.TrimSpace(text)))
	return nil
}

// deleteTask reports a missing selection by voice. The error only goes to
// the reply channel.
func (d *Dispatcher) deleteTask(index int) error {
	if index == NoSelection {
		d.speech.Speak(i18n.T("No task selected to delete."))
		return ErrNoSelection
	}
	removed, err := d.store.Remove(index)
	if err != nil {
		d.speech.Speak(i18n.T("No task selected to delete."))
		return err
	}
	d.surface.RenderTasks(d.store.Items())
	d.speech.Speak(i18n.Tf("Task %s deleted.", removed))
	return nil
}

func (d *Dispatcher) startTimer(input string) error {
	seconds, err := timer.ParseDuration(input)
	if err != nil {
		if errors.Is(err, timer.ErrUnreadableDuration) {
			d.speech.Speak(i18n.T("Invalid time input."))
		} else {
			d.speech.Speak(i18n.T("Please enter a valid time."))
		}
		return err
	}

	d.speech.Speak(i18n.Tf("Timer set for %d seconds.", seconds))
	id, err := d.engine.Start(seconds)
	if err != nil {
		return err
	}
	d.countdown = id
	d.timerState = timer.State{Remaining: seconds, Running: true}
	d.surface.RenderTimer(timer.FormatTime(seconds))
	return nil
}

func (d *Dispatcher) changeTheme(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("empty theme token")
	}
	d.surface.ApplyTheme(token)
	if d.themes != nil {
		if err := d.themes.SaveTheme(token); err != nil {
			return fmt.Errorf("save theme: %w", err)
		}
	}
	return nil
}

func (d *Dispatcher) onTimer(ev timer.Event) {
	if ev.Countdown != d.countdown {
		log.Printf("dispatcher: dropping event of superseded countdown %d", ev.Countdown)
		return
	}
	d.timerState = ev.State()
	d.surface.RenderTimer(timer.FormatTime(ev.Remaining))

	if ev.Kind == timer.EventCompleted {
		msg := i18n.T("Time is up!")
		d.speech.Speak(msg)
		d.surface.ShowAlert(msg)
		if d.alarm != nil {
			d.alarm.Ring()
		}
	}
}

// notifyTimer runs on the countdown worker. It blocks until the loop took
// the event, the countdown was cancelled or the loop stopped.
func (d *Dispatcher) notifyTimer(ctx context.Context, ev timer.Event) bool {
	select {
	case d.intake <- message{timer: &ev}:
		return true
	case <-ctx.Done():
		return false
	case <-d.stopped:
		return false
	}
}

// listen starts a capture worker, superseding any capture in flight.
func (d *Dispatcher) listen(p purpose) {
	d.cancelCapture()

	d.captureSeq++
	id := d.captureSeq
	ctx, cancel := context.WithCancel(context.Background())
	d.capture = id
	d.captureCancel = cancel

	d.speech.Speak(i18n.T("Listening..."))

	d.captures.Add(1)
	go func() {
		defer d.captures.Done()
		cmd, err := d.speech.Listen(ctx)
		select {
		case d.intake <- message{voice: &voiceResult{capture: id, purpose: p, cmd: cmd, err: err}}:
		case <-ctx.Done():
			log.Printf("dispatcher: discarding result of capture %d", id)
		}
	}()
}

func (d *Dispatcher) cancelCapture() {
	if d.captureCancel == nil {
		return
	}
	d.captureCancel()
	d.captureCancel = nil
	d.capture = 0
}

func (d *Dispatcher) onVoice(r voiceResult) {
	if r.capture != d.capture {
		log.Printf("dispatcher: dropping result of superseded capture %d", r.capture)
		return
	}
	d.cancelCapture()

	switch {
	case errors.Is(r.err, speech.ErrServiceUnavailable):
		log.Printf("dispatcher: voice capture: %v", r.err)
		d.speech.Speak(i18n.T("Error connecting to speech service."))
	case r.err != nil || !r.cmd.Recognized:
		if r.err != nil {
			log.Printf("dispatcher: voice capture: %v", r.err)
		}
		d.speech.Speak(i18n.T("Sorry, I couldn't understand."))
	case r.purpose == purposeTimer:
		if err := d.startTimer(r.cmd.RawText); err != nil {
			log.Printf("dispatcher: voice timer %q: %v", r.cmd.RawText, err)
		}
	default:
		if err := d.addTask(r.cmd.RawText); err != nil {
			log.Printf("dispatcher: voice task %q: %v", r.cmd.RawText, err)
		}
	}
}

// shutdown stops every worker and releases the surface. Capture workers
// are waited for; their results are discarded.
func (d *Dispatcher) shutdown() {
	if d.terminal {
		return
	}
	d.terminal = true
	d.engine.Cancel()
	d.timerState = timer.State{Remaining: d.timerState.Remaining}
	d.cancelCapture()
	d.captures.Wait()
	d.surface.Close()
}
