// Package audio owns the speaker. Speech utterances and the timer alarm
// are both played through Output.
package audio

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
	"github.com/gopxl/beep/vorbis"
)

// ErrDisabled is returned by Play when the speaker could not be opened.
var ErrDisabled = errors.New("audio output disabled")

// DefaultSampleRate is the mixer rate.
const DefaultSampleRate = beep.SampleRate(44100)

// Speaker hooks, replaced in tests.
var (
	speakerPlay  = speaker.Play
	speakerClose = speaker.Close
)

// Output plays streams on the system speaker.
type Output struct {
	rate beep.SampleRate

	mu      sync.Mutex
	enabled bool
	closing chan struct{}
	plays   sync.WaitGroup
	alarm   *beep.Buffer
}

// NewOutput initializes the speaker. When initialization fails the
// returned Output is disabled and every Play reports ErrDisabled.
func NewOutput(rate beep.SampleRate) *Output {
	if rate <= 0 {
		rate = DefaultSampleRate
	}
	o := &Output{rate: rate, closing: make(chan struct{})}
	if err := speaker.Init(rate, rate.N(time.Second/10)); err != nil {
		log.Printf("Audio disabled: Failed to initialize speaker: %v", err)
		return o
	}
	o.enabled = true
	return o
}

// Close stops in-flight plays, waits for them to detach and releases the
// speaker. Later calls do nothing.
func (o *Output) Close() {
	o.mu.Lock()
	if !o.enabled {
		o.mu.Unlock()
		return
	}
	o.enabled = false
	close(o.closing)
	o.mu.Unlock()

	o.plays.Wait()
	speakerClose()
}

// Enabled reports whether the speaker is usable.
func (o *Output) Enabled() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.enabled
}

// Play resamples s to the mixer rate if needed and blocks until it ends,
// ctx is done or the Output is closed.
func (o *Output) Play(ctx context.Context, s beep.Streamer, format beep.Format) error {
	o.mu.Lock()
	if !o.enabled {
		o.mu.Unlock()
		return ErrDisabled
	}
	o.plays.Add(1)
	closing := o.closing
	o.mu.Unlock()
	defer o.plays.Done()

	if format.SampleRate != o.rate && format.SampleRate > 0 {
		s = beep.Resample(4, format.SampleRate, o.rate, s)
	}

	done := make(chan struct{})
	ctrl := &beep.Ctrl{Streamer: beep.Seq(s, beep.Callback(func() {
		close(done)
	}))}
	speakerPlay(ctrl)

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		detach(ctrl)
		return ctx.Err()
	case <-closing:
		detach(ctrl)
		return ErrDisabled
	}
}

func detach(ctrl *beep.Ctrl) {
	speaker.Lock()
	ctrl.Streamer = nil
	speaker.Unlock()
}

// LoadAlarm replaces the built-in buzzer with an Ogg Vorbis file.
func (o *Output) LoadAlarm(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open alarm sound: %w", err)
	}
	defer f.Close()

	streamer, format, err := vorbis.Decode(f)
	if err != nil {
		return fmt.Errorf("decode alarm sound %s: %w", path, err)
	}
	defer streamer.Close()

	buffer := beep.NewBuffer(format)
	buffer.Append(streamer)

	o.mu.Lock()
	o.alarm = buffer
	o.mu.Unlock()
	log.Printf("Loaded alarm sound: %s", path)
	return nil
}

// Ring plays the alarm without blocking the caller.
func (o *Output) Ring() {
	o.mu.Lock()
	enabled, alarm := o.enabled, o.alarm
	o.mu.Unlock()
	if !enabled {
		log.Printf("audio: alarm (speaker disabled)")
		return
	}

	var (
		stream beep.Streamer
		format beep.Format
	)
	if alarm != nil {
		stream, format = alarm.Streamer(0, alarm.Len()), alarm.Format()
	} else {
		stream, format = Buzzer(o.rate), beep.Format{SampleRate: o.rate, NumChannels: 2, Precision: 2}
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := o.Play(ctx, stream, format); err != nil {
			log.Printf("audio: alarm: %v", err)
		}
	}()
}
