package cloudspeech

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"VoiceTasks/speech"
)

func newTestRecognizer(t *testing.T, handler http.HandlerFunc) *Recognizer {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	r, err := NewWithHTTPClient(context.Background(), srv.Client(), Config{
		Endpoint:     srv.URL + "/",
		LanguageCode: "pt-BR",
	})
	if err != nil {
		t.Fatalf("NewWithHTTPClient: %v", err)
	}
	return r
}

func TestRecognizeJoinsTranscripts(t *testing.T) {
	audio := []byte("RIFF-fake-wav")

	r := newTestRecognizer(t, func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Path != "/v1/speech:recognize" {
			t.Errorf("path = %q", req.URL.Path)
		}
		var body struct {
			Config struct {
				Encoding        string `json:"encoding"`
				LanguageCode    string `json:"languageCode"`
				SampleRateHertz int    `json:"sampleRateHertz"`
			} `json:"config"`
			Audio struct {
				Content string `json:"content"`
			} `json:"audio"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
			http.Error(w, "bad body", http.StatusBadRequest)
			return
		}
		if body.Config.LanguageCode != "pt-BR" || body.Config.Encoding != "LINEAR16" || body.Config.SampleRateHertz != 16000 {
			t.Errorf("config = %+v", body.Config)
		}
		if body.Audio.Content != base64.StdEncoding.EncodeToString(audio) {
			t.Errorf("audio content not base64 of input")
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results":[
			{"alternatives":[{"transcript":"walk the dog","confidence":0.92}]},
			{"alternatives":[]},
			{"alternatives":[{"transcript":" tomorrow "}]}
		]}`))
	})

	got, err := r.Recognize(context.Background(), audio)
	if err != nil {
		t.Fatalf("Recognize: %v", err)
	}
	if got != "walk the dog tomorrow" {
		t.Errorf("transcript = %q", got)
	}
}

func TestRecognizeEmptyResult(t *testing.T) {
	r := newTestRecognizer(t, func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	})

	got, err := r.Recognize(context.Background(), []byte("x"))
	if err != nil {
		t.Fatalf("Recognize: %v", err)
	}
	if got != "" {
		t.Errorf("transcript = %q, want empty", got)
	}
}

func TestRecognizeErrorClassification(t *testing.T) {
	tests := []struct {
		status      int
		unavailable bool
	}{
		{http.StatusServiceUnavailable, true},
		{http.StatusInternalServerError, true},
		{http.StatusForbidden, true},
		{http.StatusUnauthorized, true},
		{http.StatusTooManyRequests, true},
		{http.StatusBadRequest, false},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			r := newTestRecognizer(t, func(w http.ResponseWriter, req *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"error":{"code":` + jsonInt(tt.status) + `,"message":"nope"}}`))
			})
			_, err := r.Recognize(context.Background(), []byte("x"))
			if err == nil {
				t.Fatal("expected error")
			}
			if got := errors.Is(err, speech.ErrServiceUnavailable); got != tt.unavailable {
				t.Errorf("unavailable = %v, want %v (err %v)", got, tt.unavailable, err)
			}
		})
	}
}

func TestRecognizeUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	r, err := NewWithHTTPClient(context.Background(), http.DefaultClient, Config{Endpoint: url + "/"})
	if err != nil {
		t.Fatalf("NewWithHTTPClient: %v", err)
	}
	if _, err := r.Recognize(context.Background(), []byte("x")); !errors.Is(err, speech.ErrServiceUnavailable) {
		t.Errorf("error = %v, want ErrServiceUnavailable", err)
	}
}

func jsonInt(n int) string {
	b, _ := json.Marshal(n)
	return string(b)
}
