package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if !cfg.Speech.Enabled {
		t.Error("expected speech to be enabled by default")
	}
	if cfg.Speech.Rate != 150 {
		t.Errorf("expected rate 150, got %d", cfg.Speech.Rate)
	}
	if cfg.Speech.EnqueueTimeout != 150*time.Millisecond {
		t.Errorf("expected enqueue timeout 150ms, got %v", cfg.Speech.EnqueueTimeout)
	}
	if cfg.UI.TUI {
		t.Error("expected the desktop surface by default")
	}
}

func TestLoadWithoutUserConfig(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Speech.ListenTimeout != 12*time.Second {
		t.Errorf("expected listen timeout 12s, got %v", cfg.Speech.ListenTimeout)
	}
	if cfg.Speech.Synthesizer != "espeak-ng" {
		t.Errorf("expected espeak-ng, got %q", cfg.Speech.Synthesizer)
	}
}

func TestLoadFromFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	configContent := `
language: pt
ui:
  tui: true
speech:
  voice: pt+f3
  rate: 180
  listen_timeout: 20s
google:
  api_key: ${TEST_SPEECH_KEY}
audio:
  alarm_sound: /tmp/alarm.ogg
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	t.Setenv("TEST_SPEECH_KEY", "expanded-key")

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Language != "pt" {
		t.Errorf("expected language pt, got %q", cfg.Language)
	}
	if !cfg.UI.TUI {
		t.Error("expected ui.tui true")
	}
	if cfg.Speech.Voice != "pt+f3" || cfg.Speech.Rate != 180 {
		t.Errorf("unexpected voice %q rate %d", cfg.Speech.Voice, cfg.Speech.Rate)
	}
	if cfg.Speech.ListenTimeout != 20*time.Second {
		t.Errorf("expected listen timeout 20s, got %v", cfg.Speech.ListenTimeout)
	}
	if cfg.Speech.PhraseLimit != 5*time.Second {
		t.Errorf("expected default phrase limit 5s, got %v", cfg.Speech.PhraseLimit)
	}
	if cfg.Google.APIKey != "expanded-key" {
		t.Errorf("expected expanded api key, got %q", cfg.Google.APIKey)
	}
	if cfg.Audio.AlarmSound != "/tmp/alarm.ogg" {
		t.Errorf("unexpected alarm sound %q", cfg.Audio.AlarmSound)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("VOICETASKS_SPEECH_RATE", "120")
	t.Setenv("GOOGLE_API_KEY", "from-env")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Speech.Rate != 120 {
		t.Errorf("expected rate 120 from env, got %d", cfg.Speech.Rate)
	}
	if cfg.Google.APIKey != "from-env" {
		t.Errorf("expected api key from env, got %q", cfg.Google.APIKey)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for explicit missing file")
	}

	bad := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(bad, []byte("speech:\n  rate: 0\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(bad); err == nil {
		t.Error("expected error for zero rate")
	}
}

func TestWatchReloadsVoice(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("speech:\n  rate: 150\n"), 0644); err != nil {
		t.Fatal(err)
	}

	src, err := Open(configPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	changes := make(chan *Config, 8)
	if !src.Watch(func(c *Config) { changes <- c }) {
		t.Fatal("Watch refused an existing file")
	}

	if err := os.WriteFile(configPath, []byte("speech:\n  voice: en+m2\n  rate: 175\n"), 0644); err != nil {
		t.Fatal(err)
	}

	deadline := time.After(3 * time.Second)
	for {
		select {
		case c := <-changes:
			if c.Speech.Rate == 175 && c.Speech.Voice == "en+m2" {
				if got := src.Config().Speech.Rate; got != 175 {
					t.Errorf("Config() rate = %d after reload", got)
				}
				return
			}
		case <-deadline:
			t.Fatal("no reload observed")
		}
	}
}

func TestWatchWithoutFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	src, err := Open("")
	if err != nil {
		t.Fatal(err)
	}
	if src.Watch(func(*Config) {}) {
		t.Error("Watch should report false with no config file")
	}
}
