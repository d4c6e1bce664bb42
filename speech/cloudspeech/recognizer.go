// Package cloudspeech implements speech.Recognizer with the Google Cloud
// Speech-to-Text v1 REST API.
package cloudspeech

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	speechapi "google.golang.org/api/speech/v1"

	"VoiceTasks/speech"
)

// APITimeout bounds a single recognize call.
const APITimeout = 8 * time.Second

// Config selects credentials and audio parameters.
type Config struct {
	// APIKey is used when set; otherwise application default credentials.
	APIKey       string
	LanguageCode string
	SampleRate   int
	Endpoint     string
}

// Recognizer transcribes LINEAR16 WAV captures.
type Recognizer struct {
	svc        *speechapi.Service
	language   string
	sampleRate int64
}

// New creates a recognizer. Missing credentials are reported as
// speech.ErrServiceUnavailable.
func New(ctx context.Context, cfg Config) (*Recognizer, error) {
	var opts []option.ClientOption
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	} else {
		tokenSource, err := google.DefaultTokenSource(ctx, speechapi.CloudPlatformScope)
		if err != nil {
			return nil, fmt.Errorf("%w: no google credentials: %v", speech.ErrServiceUnavailable, err)
		}
		opts = append(opts, option.WithHTTPClient(oauth2.NewClient(ctx, tokenSource)))
	}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}

	svc, err := speechapi.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create speech service: %w", err)
	}
	return newRecognizer(svc, cfg), nil
}

// NewWithHTTPClient creates a recognizer with a custom HTTP client (for testing).
func NewWithHTTPClient(ctx context.Context, httpClient *http.Client, cfg Config) (*Recognizer, error) {
	opts := []option.ClientOption{option.WithHTTPClient(httpClient)}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}
	svc, err := speechapi.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create speech service: %w", err)
	}
	return newRecognizer(svc, cfg), nil
}

func newRecognizer(svc *speechapi.Service, cfg Config) *Recognizer {
	r := &Recognizer{svc: svc, language: cfg.LanguageCode, sampleRate: int64(cfg.SampleRate)}
	if r.language == "" {
		r.language = "en-US"
	}
	if r.sampleRate <= 0 {
		r.sampleRate = 16000
	}
	return r
}

// Recognize sends audio and returns the best transcript of every result,
// joined by spaces. An empty string means nothing was understood.
func (r *Recognizer) Recognize(ctx context.Context, audio []byte) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	req := &speechapi.RecognizeRequest{
		Config: &speechapi.RecognitionConfig{
			Encoding:        "LINEAR16",
			SampleRateHertz: r.sampleRate,
			LanguageCode:    r.language,
			MaxAlternatives: 1,
		},
		Audio: &speechapi.RecognitionAudio{
			Content: base64.StdEncoding.EncodeToString(audio),
		},
	}

	resp, err := r.svc.Speech.Recognize(req).Context(ctx).Do()
	if err != nil {
		return "", classify(err)
	}

	var parts []string
	for _, result := range resp.Results {
		if result == nil || len(result.Alternatives) == 0 || result.Alternatives[0] == nil {
			continue
		}
		if t := strings.TrimSpace(result.Alternatives[0].Transcript); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " "), nil
}

// classify maps API failures: auth, quota, server and transport errors
// mean the backend is unavailable; other API errors mean the audio was
// rejected.
func classify(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == http.StatusUnauthorized,
			apiErr.Code == http.StatusForbidden,
			apiErr.Code == http.StatusTooManyRequests,
			apiErr.Code >= 500:
			return fmt.Errorf("%w: %v", speech.ErrServiceUnavailable, err)
		}
		return fmt.Errorf("speech api rejected audio: %w", err)
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return err
	}
	return fmt.Errorf("%w: %v", speech.ErrServiceUnavailable, err)
}
