// Package main contains the application wiring and the AppManager which
// connects the speech service, the speaker, the dispatcher and whichever
// display surface was chosen.
//
// Maintenance notes:
//   - The dispatcher loop is the only goroutine that touches tasks and the
//     timer snapshot. Surfaces talk to it through Post, which drops a
//     command if the intake stays full for 150ms rather than freezing the
//     window.
//   - Shutdown order matters: the dispatcher stops the countdown and voice
//     workers and closes the surface first, then the speech queue is
//     drained, then the speaker is released.
//   - ApplyConfig runs on the viper watcher goroutine. It only touches the
//     speech service, which guards its own voice setting.
package main

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"VoiceTasks/audio"
	"VoiceTasks/config"
	"VoiceTasks/control"
	"VoiceTasks/i18n"
	"VoiceTasks/speech"
	"VoiceTasks/speech/cloudspeech"
	"VoiceTasks/storage"
	"VoiceTasks/tui"
	"VoiceTasks/ui"

	"fyne.io/fyne/v2/app"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	appName = "voicetasks"
	appID   = "io.github.voicetasks"
)

// speechService is what the app needs from either the real service or
// the no-op one.
type speechService interface {
	control.Speech
	Close(ctx context.Context) error
}

// AppManager is the main application struct, holding all state.
type AppManager struct {
	output *audio.Output
	speech speechService
	voice  *speech.Service
	themes control.ThemeStore

	mu         sync.Mutex
	dispatcher *control.Dispatcher
	loopDone   chan error

	shutdownOnce sync.Once
}

// NewAppManager opens the speaker, builds the speech pipeline and loads
// preferences. Nothing here is fatal: a missing speaker, microphone tool
// or recognizer only disables that part.
func NewAppManager(ctx context.Context, cfg *config.Config) *AppManager {
	a := &AppManager{output: audio.NewOutput(audio.DefaultSampleRate)}

	if cfg.Audio.AlarmSound != "" {
		if err := a.output.LoadAlarm(cfg.Audio.AlarmSound); err != nil {
			log.Printf("Using built-in buzzer: %v", err)
		}
	}

	if cfg.Speech.Enabled {
		a.voice = newSpeechService(ctx, cfg, a.output)
		a.speech = a.voice
	} else {
		log.Printf("Voice disabled")
		a.speech = speech.NoOp{}
	}

	prefs, err := storage.OpenPrefs(appName)
	if err != nil {
		log.Printf("Preferences: %v", err)
	}
	if prefs != nil {
		a.themes = prefs
	}
	return a
}

func newSpeechService(ctx context.Context, cfg *config.Config, player speech.Player) *speech.Service {
	var recognizer speech.Recognizer
	r, err := cloudspeech.New(ctx, cloudspeech.Config{
		APIKey:       cfg.Google.APIKey,
		LanguageCode: i18n.SpeechLocale(),
		SampleRate:   cfg.Speech.SampleRate,
		Endpoint:     cfg.Google.Endpoint,
	})
	if err != nil {
		log.Printf("Speech recognition disabled: %v", err)
	} else {
		recognizer = r
	}

	return speech.New(speech.Config{
		QueueSize:        cfg.Speech.QueueSize,
		EnqueueTimeout:   cfg.Speech.EnqueueTimeout,
		UtteranceTimeout: cfg.Speech.UtteranceTimeout,
		ListenTimeout:    cfg.Speech.ListenTimeout,
		PhraseLimit:      cfg.Speech.PhraseLimit,
		Voice:            speech.Voice{Name: cfg.Speech.Voice, Rate: cfg.Speech.Rate},
	},
		speech.NewEspeak(cfg.Speech.Synthesizer),
		player,
		speech.NewCommandRecorder(cfg.Speech.Recorder, cfg.Speech.SampleRate),
		recognizer,
	)
}

// Run shows the chosen surface and blocks until it is gone. The
// dispatcher loop runs alongside and is stopped before Run returns.
func (a *AppManager) Run(ctx context.Context, useTUI bool) error {
	var (
		surface    control.Surface
		runSurface func() error
	)
	if useTUI {
		s := tui.New(a, tea.WithAltScreen())
		surface, runSurface = s, s.Run
	} else {
		w := ui.NewWindow(app.NewWithID(appID), a)
		surface = w
		runSurface = func() error {
			w.ShowAndRun()
			return nil
		}
	}

	d := control.New(surface, a.speech, control.Options{
		Alarm:  a.output,
		Themes: a.themes,
	})
	loopDone := make(chan error, 1)
	a.mu.Lock()
	a.dispatcher = d
	a.loopDone = loopDone
	a.mu.Unlock()

	loopCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() { loopDone <- d.Run(loopCtx) }()

	a.speech.Speak(i18n.T("Welcome to your voice-controlled to-do list with a timer."))

	err := runSurface()

	cancel()
	if loopErr := <-loopDone; loopErr != nil && !errors.Is(loopErr, context.Canceled) {
		log.Printf("Dispatcher stopped: %v", loopErr)
	}
	return err
}

// Post forwards a surface command to the dispatcher.
func (a *AppManager) Post(cmd control.Command) {
	a.mu.Lock()
	d := a.dispatcher
	a.mu.Unlock()
	if d == nil {
		log.Printf("Post: no dispatcher yet, dropping %s command", cmd.Type)
		return
	}
	d.Post(cmd)
}

// Done is closed once the dispatcher loop has stopped.
func (a *AppManager) Done() <-chan struct{} {
	a.mu.Lock()
	d := a.dispatcher
	a.mu.Unlock()
	if d == nil {
		return nil
	}
	return d.Done()
}

// ApplyConfig picks up voice changes from an edited config file.
func (a *AppManager) ApplyConfig(cfg *config.Config) {
	if a.voice == nil {
		return
	}
	a.voice.UpdateVoice(speech.Voice{Name: cfg.Speech.Voice, Rate: cfg.Speech.Rate})
	log.Printf("Voice set to %q at %d wpm", cfg.Speech.Voice, cfg.Speech.Rate)
}

// Shutdown drains queued speech and releases the speaker.
func (a *AppManager) Shutdown() {
	a.shutdownOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.speech.Close(ctx); err != nil {
			log.Printf("Speech shutdown: %v", err)
		}
		a.output.Close()
	})
}
