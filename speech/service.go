// Package speech provides speech-to-text and text-to-speech for the
// dispatcher.
//
// Speak never blocks the caller for longer than the enqueue timeout: text
// goes onto a bounded queue drained by one worker, so utterances never
// overlap. Listen blocks for capture and recognition and must be called
// off the event loop.
package speech

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/gopxl/beep"
)

// ErrServiceUnavailable is returned by Listen when the capture device or
// the recognition backend cannot be reached.
var ErrServiceUnavailable = errors.New("speech service unavailable")

// VoiceCommand is the outcome of one Listen call.
type VoiceCommand struct {
	RawText    string
	Recognized bool
}

// Voice selects the synthesizer voice and words per minute.
type Voice struct {
	Name string
	Rate int
}

// Synthesizer turns text into audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string, voice Voice) (beep.Streamer, beep.Format, error)
}

// Player plays a stream and returns once it finished or ctx is done.
type Player interface {
	Play(ctx context.Context, s beep.Streamer, format beep.Format) error
}

// Recorder captures up to limit of microphone audio as WAV bytes.
type Recorder interface {
	Record(ctx context.Context, limit time.Duration) ([]byte, error)
}

// Recognizer transcribes WAV audio.
type Recognizer interface {
	Recognize(ctx context.Context, audio []byte) (string, error)
}

// Config holds queue sizes and timeouts.
type Config struct {
	QueueSize        int
	EnqueueTimeout   time.Duration
	UtteranceTimeout time.Duration
	ListenTimeout    time.Duration
	PhraseLimit      time.Duration
	Voice            Voice
}

// DefaultConfig mirrors the config package defaults.
func DefaultConfig() Config {
	return Config{
		QueueSize:        16,
		EnqueueTimeout:   150 * time.Millisecond,
		UtteranceTimeout: 15 * time.Second,
		ListenTimeout:    12 * time.Second,
		PhraseLimit:      5 * time.Second,
		Voice:            Voice{Rate: 150},
	}
}

// Service speaks and listens.
type Service struct {
	cfg        Config
	synth      Synthesizer
	player     Player
	recorder   Recorder
	recognizer Recognizer

	voiceMu sync.RWMutex
	voice   Voice

	mu     sync.RWMutex
	closed bool
	queue  chan string
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// New starts the utterance worker. A nil recorder or recognizer makes
// Listen report ErrServiceUnavailable.
func New(cfg Config, synth Synthesizer, player Player, recorder Recorder, recognizer Recognizer) *Service {
	def := DefaultConfig()
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = def.QueueSize
	}
	if cfg.EnqueueTimeout <= 0 {
		cfg.EnqueueTimeout = def.EnqueueTimeout
	}
	if cfg.UtteranceTimeout <= 0 {
		cfg.UtteranceTimeout = def.UtteranceTimeout
	}
	if cfg.ListenTimeout <= 0 {
		cfg.ListenTimeout = def.ListenTimeout
	}
	if cfg.PhraseLimit <= 0 {
		cfg.PhraseLimit = def.PhraseLimit
	}
	if cfg.Voice.Rate <= 0 {
		cfg.Voice.Rate = def.Voice.Rate
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Service{
		cfg:        cfg,
		synth:      synth,
		player:     player,
		recorder:   recorder,
		recognizer: recognizer,
		voice:      cfg.Voice,
		queue:      make(chan string, cfg.QueueSize),
		ctx:        ctx,
		cancel:     cancel,
		done:       make(chan struct{}),
	}
	go s.loop()
	return s
}

// Speak queues text for playback. If the queue stays full for the enqueue
// timeout the text is dropped.
func (s *Service) Speak(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		log.Printf("speech: closed, not speaking %q", text)
		return
	}
	select {
	case s.queue <- text:
	case <-time.After(s.cfg.EnqueueTimeout):
		log.Printf("speech: queue full, dropping %q", text)
	}
}

// Listen records one phrase and transcribes it. Silence, timeouts and
// unintelligible audio yield an unrecognized command and a nil error.
func (s *Service) Listen(ctx context.Context) (VoiceCommand, error) {
	if s.recorder == nil || s.recognizer == nil {
		return VoiceCommand{}, ErrServiceUnavailable
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.ListenTimeout)
	defer cancel()

	audio, err := s.recorder.Record(ctx, s.cfg.PhraseLimit)
	if err != nil {
		if errors.Is(err, ErrServiceUnavailable) {
			return VoiceCommand{}, err
		}
		log.Printf("speech: capture failed: %v", err)
		return VoiceCommand{}, nil
	}
	if isSilent(audio) {
		return VoiceCommand{}, nil
	}

	text, err := s.recognizer.Recognize(ctx, audio)
	if err != nil {
		if errors.Is(err, ErrServiceUnavailable) {
			return VoiceCommand{}, err
		}
		log.Printf("speech: recognition failed: %v", err)
		return VoiceCommand{}, nil
	}

	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return VoiceCommand{}, nil
	}
	return VoiceCommand{RawText: text, Recognized: true}, nil
}

// UpdateVoice changes the voice used for later utterances.
func (s *Service) UpdateVoice(v Voice) {
	if v.Rate <= 0 {
		v.Rate = DefaultConfig().Voice.Rate
	}
	s.voiceMu.Lock()
	s.voice = v
	s.voiceMu.Unlock()
}

// Voice returns the current voice.
func (s *Service) Voice() Voice {
	s.voiceMu.RLock()
	defer s.voiceMu.RUnlock()
	return s.voice
}

// Close stops accepting text and plays what is already queued until ctx
// is done. Pending utterances are discarded after that.
func (s *Service) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.queue)
	s.mu.Unlock()

	select {
	case <-s.done:
		s.cancel()
		return nil
	case <-ctx.Done():
		s.cancel()
		<-s.done
		return ctx.Err()
	}
}

func (s *Service) loop() {
	defer close(s.done)
	for text := range s.queue {
		if s.ctx.Err() != nil {
			continue
		}
		s.say(text)
	}
}

func (s *Service) say(text string) {
	ctx, cancel := context.WithTimeout(s.ctx, s.cfg.UtteranceTimeout)
	defer cancel()

	stream, format, err := s.synth.Synthesize(ctx, text, s.Voice())
	if err != nil {
		log.Printf("speech: synthesize %q: %v", text, err)
		return
	}
	if err := s.player.Play(ctx, stream, format); err != nil {
		log.Printf("speech: play %q: %v", text, err)
	}
}
