package speech

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"
)

var testFormat = beep.Format{SampleRate: 16000, NumChannels: 1, Precision: 2}

type fakeSynth struct {
	mu     sync.Mutex
	texts  []string
	voices []Voice
	err    error
}

func (f *fakeSynth) Synthesize(ctx context.Context, text string, voice Voice) (beep.Streamer, beep.Format, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.texts = append(f.texts, text)
	f.voices = append(f.voices, voice)
	if f.err != nil {
		return nil, beep.Format{}, f.err
	}
	return beep.Silence(16), testFormat, nil
}

type fakePlayer struct {
	mu        sync.Mutex
	active    int
	maxActive int
	plays     int
	delay     time.Duration
}

func (f *fakePlayer) Play(ctx context.Context, s beep.Streamer, format beep.Format) error {
	f.mu.Lock()
	f.active++
	if f.active > f.maxActive {
		f.maxActive = f.active
	}
	f.mu.Unlock()

	select {
	case <-time.After(f.delay):
	case <-ctx.Done():
	}

	f.mu.Lock()
	f.active--
	f.plays++
	f.mu.Unlock()
	return ctx.Err()
}

type fakeRecorder struct {
	audio []byte
	err   error
}

func (f *fakeRecorder) Record(ctx context.Context, limit time.Duration) ([]byte, error) {
	return f.audio, f.err
}

type fakeRecognizer struct {
	text  string
	err   error
	calls int
}

func (f *fakeRecognizer) Recognize(ctx context.Context, audio []byte) (string, error) {
	f.calls++
	return f.text, f.err
}

// wavBytes encodes a constant-amplitude mono clip.
func wavBytes(t *testing.T, amplitude float64) []byte {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clip.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create wav: %v", err)
	}
	remaining := 1600
	clip := beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		if remaining == 0 {
			return 0, false
		}
		n := 0
		for n < len(samples) && remaining > 0 {
			samples[n] = [2]float64{amplitude, amplitude}
			n++
			remaining--
		}
		return n, true
	})
	if err := wav.Encode(f, clip, testFormat); err != nil {
		t.Fatalf("encode wav: %v", err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		t.Fatalf("seek: %v", err)
	}
	data, err := io.ReadAll(f)
	if err != nil {
		t.Fatalf("read wav: %v", err)
	}
	f.Close()
	return data
}

func TestSpeakPlaysSequentially(t *testing.T) {
	synth := &fakeSynth{}
	player := &fakePlayer{delay: 5 * time.Millisecond}
	svc := New(DefaultConfig(), synth, player, nil, nil)

	want := []string{"one", "two", "three", "four", "five"}
	for _, text := range want {
		svc.Speak(text)
	}
	svc.Speak("   ")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := svc.Close(ctx); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if player.maxActive != 1 {
		t.Errorf("max concurrent utterances = %d, want 1", player.maxActive)
	}
	if player.plays != len(want) {
		t.Errorf("plays = %d, want %d", player.plays, len(want))
	}
	for i, text := range want {
		if synth.texts[i] != text {
			t.Errorf("utterance %d = %q, want %q", i, synth.texts[i], text)
		}
	}
}

func TestSpeakAfterCloseIsIgnored(t *testing.T) {
	synth := &fakeSynth{}
	svc := New(DefaultConfig(), synth, &fakePlayer{}, nil, nil)
	if err := svc.Close(context.Background()); err != nil {
		t.Fatalf("Close: %v", err)
	}
	svc.Speak("late")
	if err := svc.Close(context.Background()); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if len(synth.texts) != 0 {
		t.Errorf("synthesized after close: %v", synth.texts)
	}
}

func TestSpeakFailuresAreSwallowed(t *testing.T) {
	synth := &fakeSynth{err: errors.New("espeak missing")}
	player := &fakePlayer{}
	svc := New(DefaultConfig(), synth, player, nil, nil)
	svc.Speak("hello")
	if err := svc.Close(context.Background()); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if player.plays != 0 {
		t.Errorf("player called despite synth failure")
	}
}

func TestSpeakDropsWhenQueueFull(t *testing.T) {
	cfg := DefaultConfig()
	cfg.QueueSize = 1
	cfg.EnqueueTimeout = 10 * time.Millisecond
	player := &fakePlayer{delay: 200 * time.Millisecond}
	svc := New(cfg, &fakeSynth{}, player, nil, nil)

	start := time.Now()
	for i := 0; i < 4; i++ {
		svc.Speak(fmt.Sprintf("text %d", i))
	}
	if elapsed := time.Since(start); elapsed > 150*time.Millisecond {
		t.Errorf("Speak blocked for %v", elapsed)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_ = svc.Close(ctx)
}

func TestUpdateVoice(t *testing.T) {
	synth := &fakeSynth{}
	svc := New(DefaultConfig(), synth, &fakePlayer{}, nil, nil)
	svc.UpdateVoice(Voice{Name: "en+f3", Rate: 180})
	svc.Speak("hi")
	_ = svc.Close(context.Background())

	if got := synth.voices[0]; got != (Voice{Name: "en+f3", Rate: 180}) {
		t.Errorf("voice = %+v", got)
	}
	svc.UpdateVoice(Voice{})
	if svc.Voice().Rate != 150 {
		t.Errorf("zero rate should fall back to default, got %d", svc.Voice().Rate)
	}
}

func TestListen(t *testing.T) {
	loud := wavBytes(t, 0.5)
	quiet := wavBytes(t, 0)

	tests := []struct {
		name       string
		recorder   *fakeRecorder
		recognizer *fakeRecognizer
		want       VoiceCommand
		wantErr    error
		recognized int
	}{
		{
			name:       "recognized text is normalised",
			recorder:   &fakeRecorder{audio: loud},
			recognizer: &fakeRecognizer{text: "  Walk The Dog "},
			want:       VoiceCommand{RawText: "walk the dog", Recognized: true},
			recognized: 1,
		},
		{
			name:       "silence skips recognition",
			recorder:   &fakeRecorder{audio: quiet},
			recognizer: &fakeRecognizer{text: "ignored"},
		},
		{
			name:       "empty transcript",
			recorder:   &fakeRecorder{audio: loud},
			recognizer: &fakeRecognizer{},
			recognized: 1,
		},
		{
			name:       "capture timeout",
			recorder:   &fakeRecorder{err: context.DeadlineExceeded},
			recognizer: &fakeRecognizer{},
		},
		{
			name:       "missing microphone tool",
			recorder:   &fakeRecorder{err: fmt.Errorf("%w: arecord not found", ErrServiceUnavailable)},
			recognizer: &fakeRecognizer{},
			wantErr:    ErrServiceUnavailable,
		},
		{
			name:       "backend unreachable",
			recorder:   &fakeRecorder{audio: loud},
			recognizer: &fakeRecognizer{err: fmt.Errorf("%w: dial tcp", ErrServiceUnavailable)},
			wantErr:    ErrServiceUnavailable,
			recognized: 1,
		},
		{
			name:       "backend rejects audio",
			recorder:   &fakeRecorder{audio: loud},
			recognizer: &fakeRecognizer{err: errors.New("bad request")},
			recognized: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := New(DefaultConfig(), &fakeSynth{}, &fakePlayer{}, tt.recorder, tt.recognizer)
			defer svc.Close(context.Background())

			got, err := svc.Listen(context.Background())
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
			} else if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Listen() = %+v, want %+v", got, tt.want)
			}
			if tt.recognizer.calls != tt.recognized {
				t.Errorf("recognizer calls = %d, want %d", tt.recognizer.calls, tt.recognized)
			}
		})
	}
}

func TestListenWithoutBackend(t *testing.T) {
	svc := New(DefaultConfig(), &fakeSynth{}, &fakePlayer{}, nil, nil)
	defer svc.Close(context.Background())
	if _, err := svc.Listen(context.Background()); !errors.Is(err, ErrServiceUnavailable) {
		t.Errorf("error = %v, want ErrServiceUnavailable", err)
	}

	if _, err := (NoOp{}).Listen(context.Background()); !errors.Is(err, ErrServiceUnavailable) {
		t.Errorf("NoOp error = %v, want ErrServiceUnavailable", err)
	}
}

func TestRecordMissingCommand(t *testing.T) {
	rec := NewCommandRecorder("voicetasks-no-such-recorder", 16000)
	_, err := rec.Record(context.Background(), time.Second)
	if !errors.Is(err, ErrServiceUnavailable) {
		t.Errorf("error = %v, want ErrServiceUnavailable", err)
	}
}
