package testutil

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"VoiceTasks/speech"
)

// Eventually polls cond every few milliseconds for up to a second.
func Eventually(t Fataler, what string, cond func() bool) {
	deadline := time.Now().Add(time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
}

type listenResult struct {
	cmd speech.VoiceCommand
	err error
}

// FakeSpeech records spoken text and answers Listen from a script. A
// Listen with nothing scripted blocks until its context is done.
type FakeSpeech struct {
	mu      sync.Mutex
	spoken  []string
	script  chan listenResult
	listens atomic.Int32
}

// NewFakeSpeech returns a fake with an empty script.
func NewFakeSpeech() *FakeSpeech {
	return &FakeSpeech{script: make(chan listenResult, 16)}
}

// Speak records text.
func (f *FakeSpeech) Speak(text string) {
	f.mu.Lock()
	f.spoken = append(f.spoken, text)
	f.mu.Unlock()
}

// Listen returns the next scripted result.
func (f *FakeSpeech) Listen(ctx context.Context) (speech.VoiceCommand, error) {
	f.listens.Add(1)
	select {
	case r := <-f.script:
		return r.cmd, r.err
	case <-ctx.Done():
		return speech.VoiceCommand{}, nil
	}
}

// Hear scripts a recognized phrase.
func (f *FakeSpeech) Hear(text string) {
	f.script <- listenResult{cmd: speech.VoiceCommand{RawText: text, Recognized: true}}
}

// HearNothing scripts an unrecognized capture.
func (f *FakeSpeech) HearNothing() {
	f.script <- listenResult{}
}

// Fail scripts a Listen error.
func (f *FakeSpeech) Fail(err error) {
	f.script <- listenResult{err: err}
}

// Listens returns how many times Listen was called.
func (f *FakeSpeech) Listens() int {
	return int(f.listens.Load())
}

// Spoken returns everything said so far.
func (f *FakeSpeech) Spoken() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.spoken))
	copy(out, f.spoken)
	return out
}

// Count returns how often text was said.
func (f *FakeSpeech) Count(text string) int {
	n := 0
	for _, s := range f.Spoken() {
		if s == text {
			n++
		}
	}
	return n
}

// FakeSurface records render calls.
type FakeSurface struct {
	mu     sync.Mutex
	tasks  []string
	timers []string
	alerts []string
	themes []string
	closed bool
}

func (s *FakeSurface) RenderTasks(tasks []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = append([]string(nil), tasks...)
}

func (s *FakeSurface) RenderTimer(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timers = append(s.timers, text)
}

func (s *FakeSurface) ShowAlert(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alerts = append(s.alerts, message)
}

func (s *FakeSurface) ApplyTheme(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.themes = append(s.themes, token)
}

func (s *FakeSurface) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

// Tasks returns the last rendered task list.
func (s *FakeSurface) Tasks() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.tasks...)
}

// Timers returns every rendered timer text in order.
func (s *FakeSurface) Timers() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.timers...)
}

// Alerts returns every alert shown.
func (s *FakeSurface) Alerts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.alerts...)
}

// Themes returns every theme applied.
func (s *FakeSurface) Themes() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.themes...)
}

// Closed reports whether Close was called.
func (s *FakeSurface) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// FakeAlarm counts rings.
type FakeAlarm struct {
	rings atomic.Int32
}

func (a *FakeAlarm) Ring() {
	a.rings.Add(1)
}

// Rings returns the number of rings.
func (a *FakeAlarm) Rings() int {
	return int(a.rings.Load())
}
