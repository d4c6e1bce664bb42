package speech

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"time"

	"github.com/gopxl/beep/wav"
)

// silenceThreshold is the peak amplitude below which a capture is treated
// as silence and never sent for recognition.
const silenceThreshold = 0.01

// CommandRecorder records from the default microphone through an
// arecord-compatible command writing WAV to stdout.
type CommandRecorder struct {
	Command    string
	SampleRate int
}

// NewCommandRecorder returns a recorder for command, capturing mono 16-bit
// PCM at sampleRate.
func NewCommandRecorder(command string, sampleRate int) *CommandRecorder {
	if command == "" {
		command = "arecord"
	}
	if sampleRate <= 0 {
		sampleRate = 16000
	}
	return &CommandRecorder{Command: command, SampleRate: sampleRate}
}

// Record captures for limit, rounded up to whole seconds.
func (r *CommandRecorder) Record(ctx context.Context, limit time.Duration) ([]byte, error) {
	secs := int(math.Ceil(limit.Seconds()))
	if secs < 1 {
		secs = 1
	}
	args := []string{
		"-q",
		"-f", "S16_LE",
		"-c", "1",
		"-r", strconv.Itoa(r.SampleRate),
		"-t", "wav",
		"-d", strconv.Itoa(secs),
		"-",
	}

	out, err := exec.CommandContext(ctx, r.Command, args...).Output()
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return nil, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("record with %s: %w", r.Command, err)
	}
	return out, nil
}

// isSilent reports whether a WAV capture carries no audible signal.
// Audio that cannot be decoded is left for the recognizer to judge.
func isSilent(audio []byte) bool {
	if len(audio) == 0 {
		return true
	}
	stream, _, err := wav.Decode(bytes.NewReader(audio))
	if err != nil {
		return false
	}
	defer stream.Close()

	buf := make([][2]float64, 512)
	peak := 0.0
	for {
		n, ok := stream.Stream(buf)
		for _, s := range buf[:n] {
			peak = math.Max(peak, math.Max(math.Abs(s[0]), math.Abs(s[1])))
		}
		if !ok || peak >= silenceThreshold {
			break
		}
	}
	return peak < silenceThreshold
}
