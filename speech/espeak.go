package speech

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"
)

// Espeak synthesizes with espeak-ng (or espeak), reading WAV from stdout.
type Espeak struct {
	Command string
}

// NewEspeak returns a synthesizer using command.
func NewEspeak(command string) *Espeak {
	if command == "" {
		command = "espeak-ng"
	}
	return &Espeak{Command: command}
}

// Synthesize renders text to a decoded WAV stream.
func (e *Espeak) Synthesize(ctx context.Context, text string, voice Voice) (beep.Streamer, beep.Format, error) {
	args := []string{"--stdout", "-s", strconv.Itoa(voice.Rate)}
	if voice.Name != "" {
		args = append(args, "-v", voice.Name)
	}
	args = append(args, text)

	out, err := exec.CommandContext(ctx, e.Command, args...).Output()
	if err != nil {
		return nil, beep.Format{}, fmt.Errorf("run %s: %w", e.Command, err)
	}

	stream, format, err := wav.Decode(bytes.NewReader(out))
	if err != nil {
		return nil, beep.Format{}, fmt.Errorf("decode %s output: %w", e.Command, err)
	}
	return stream, format, nil
}
