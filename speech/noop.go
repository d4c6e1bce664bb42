package speech

import (
	"context"
	"log"
)

// NoOp is used when voice is disabled. Speak only logs and Listen always
// reports the service as unavailable.
type NoOp struct{}

// Speak logs the text it would have said.
func (NoOp) Speak(text string) {
	log.Printf("speech no-op: would say %q", text)
}

// Listen returns ErrServiceUnavailable.
func (NoOp) Listen(ctx context.Context) (VoiceCommand, error) {
	return VoiceCommand{}, ErrServiceUnavailable
}

// Close does nothing.
func (NoOp) Close(ctx context.Context) error {
	return nil
}
