// Package config loads VoiceTasks settings with viper. Sources, highest
// precedence first: VOICETASKS_* environment variables (plus
// GOOGLE_API_KEY), the config file, built-in defaults.
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Config holds all configuration for VoiceTasks.
type Config struct {
	Language string       `mapstructure:"language"`
	UI       UIConfig     `mapstructure:"ui"`
	Speech   SpeechConfig `mapstructure:"speech"`
	Google   GoogleConfig `mapstructure:"google"`
	Audio    AudioConfig  `mapstructure:"audio"`
}

// UIConfig selects the display surface.
type UIConfig struct {
	TUI bool `mapstructure:"tui"`
}

// SpeechConfig holds synthesis and capture settings.
type SpeechConfig struct {
	Enabled          bool          `mapstructure:"enabled"`
	Voice            string        `mapstructure:"voice"`
	Rate             int           `mapstructure:"rate"`
	Synthesizer      string        `mapstructure:"synthesizer"`
	Recorder         string        `mapstructure:"recorder"`
	SampleRate       int           `mapstructure:"sample_rate"`
	QueueSize        int           `mapstructure:"queue_size"`
	EnqueueTimeout   time.Duration `mapstructure:"enqueue_timeout"`
	UtteranceTimeout time.Duration `mapstructure:"utterance_timeout"`
	ListenTimeout    time.Duration `mapstructure:"listen_timeout"`
	PhraseLimit      time.Duration `mapstructure:"phrase_limit"`
}

// GoogleConfig holds Cloud Speech credentials. With no API key the
// application default credentials are used.
type GoogleConfig struct {
	APIKey   string `mapstructure:"api_key"`
	Endpoint string `mapstructure:"endpoint"`
}

// AudioConfig holds speaker settings.
type AudioConfig struct {
	AlarmSound string `mapstructure:"alarm_sound"`
}

// Source is an opened configuration that can be watched for edits.
type Source struct {
	v    *viper.Viper
	path string

	mu  sync.Mutex
	cfg *Config
}

// Load reads configuration from path, or from the user config file when
// path is empty. A missing user config file is not an error.
func Load(path string) (*Config, error) {
	src, err := Open(path)
	if err != nil {
		return nil, err
	}
	return src.Config(), nil
}

// Open is Load keeping the viper instance around for Watch.
func Open(path string) (*Source, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(getUserConfigDir())
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	v.SetEnvPrefix("VOICETASKS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("google.api_key", "VOICETASKS_GOOGLE_API_KEY", "GOOGLE_API_KEY"); err != nil {
		return nil, fmt.Errorf("binding env: %w", err)
	}

	cfg, err := decode(v)
	if err != nil {
		return nil, err
	}
	return &Source{v: v, path: v.ConfigFileUsed(), cfg: cfg}, nil
}

// Config returns the most recently decoded configuration.
func (s *Source) Config() *Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *s.cfg
	return &c
}

// Path returns the config file in use, or "" when running on defaults.
func (s *Source) Path() string {
	return s.path
}

// Watch calls onChange with the new configuration each time the config
// file is written. It reports false when there is no file to watch.
// Edits that fail to decode are logged and skipped.
func (s *Source) Watch(onChange func(*Config)) bool {
	if s.path == "" {
		return false
	}
	s.v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		cfg, err := decode(s.v)
		if err != nil {
			log.Printf("config: ignoring %s: %v", e.Name, err)
			return
		}
		s.mu.Lock()
		s.cfg = cfg
		s.mu.Unlock()
		log.Printf("config: reloaded %s", e.Name)
		onChange(cfg)
	})
	s.v.WatchConfig()
	return true
}

func decode(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	cfg.Google.APIKey = os.ExpandEnv(cfg.Google.APIKey)
	if cfg.Speech.Rate <= 0 {
		return nil, fmt.Errorf("speech.rate must be positive, got %d", cfg.Speech.Rate)
	}
	return cfg, nil
}

// UserConfigPath returns the path of the user config file.
func UserConfigPath() string {
	return filepath.Join(getUserConfigDir(), "config.yaml")
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("language", d.Language)
	v.SetDefault("ui.tui", d.UI.TUI)

	v.SetDefault("speech.enabled", d.Speech.Enabled)
	v.SetDefault("speech.voice", d.Speech.Voice)
	v.SetDefault("speech.rate", d.Speech.Rate)
	v.SetDefault("speech.synthesizer", d.Speech.Synthesizer)
	v.SetDefault("speech.recorder", d.Speech.Recorder)
	v.SetDefault("speech.sample_rate", d.Speech.SampleRate)
	v.SetDefault("speech.queue_size", d.Speech.QueueSize)
	v.SetDefault("speech.enqueue_timeout", d.Speech.EnqueueTimeout.String())
	v.SetDefault("speech.utterance_timeout", d.Speech.UtteranceTimeout.String())
	v.SetDefault("speech.listen_timeout", d.Speech.ListenTimeout.String())
	v.SetDefault("speech.phrase_limit", d.Speech.PhraseLimit.String())

	v.SetDefault("google.api_key", d.Google.APIKey)
	v.SetDefault("google.endpoint", d.Google.Endpoint)

	v.SetDefault("audio.alarm_sound", d.Audio.AlarmSound)
}

// getUserConfigDir returns the XDG config directory for VoiceTasks.
func getUserConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "voicetasks")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "voicetasks")
	}
	return filepath.Join(home, ".config", "voicetasks")
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Speech: SpeechConfig{
			Enabled:          true,
			Rate:             150,
			Synthesizer:      "espeak-ng",
			Recorder:         "arecord",
			SampleRate:       16000,
			QueueSize:        16,
			EnqueueTimeout:   150 * time.Millisecond,
			UtteranceTimeout: 15 * time.Second,
			ListenTimeout:    12 * time.Second,
			PhraseLimit:      5 * time.Second,
		},
	}
}
