// Package storage keeps user preferences in a YAML file. Tasks are never
// written here.
package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

const prefsFileName = "prefs.yaml"

type yamlPrefs struct {
	Theme string `yaml:"theme,omitempty"`
}

// Prefs is the preferences file. It is safe for concurrent use.
type Prefs struct {
	path string

	mu    sync.Mutex
	theme string
}

// OpenPrefs loads prefs.yaml from the user config dir for appName. A
// missing file yields empty preferences.
func OpenPrefs(appName string) (*Prefs, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("resolve user config dir: %w", err)
	}
	return OpenPrefsAt(filepath.Join(configDir, appName, prefsFileName))
}

// OpenPrefsAt loads preferences from path.
func OpenPrefsAt(path string) (*Prefs, error) {
	p := &Prefs{path: path}

	rawData, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return p, nil
		}
		return p, fmt.Errorf("read prefs file: %w", err)
	}

	var fileData yamlPrefs
	if err := yaml.Unmarshal(rawData, &fileData); err != nil {
		return p, fmt.Errorf("parse prefs yaml: %w", err)
	}
	p.theme = fileData.Theme
	return p, nil
}

// Theme returns the saved color theme token, or "".
func (p *Prefs) Theme() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.theme
}

// SaveTheme stores token and rewrites the file.
func (p *Prefs) SaveTheme(token string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.theme = token
	return p.writeLocked()
}

func (p *Prefs) writeLocked() error {
	if err := os.MkdirAll(filepath.Dir(p.path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	serialized, err := yaml.Marshal(yamlPrefs{Theme: p.theme})
	if err != nil {
		return fmt.Errorf("marshal prefs yaml: %w", err)
	}

	tmp := p.path + ".tmp"
	if err := os.WriteFile(tmp, serialized, 0o644); err != nil {
		return fmt.Errorf("write prefs file: %w", err)
	}
	if err := os.Rename(tmp, p.path); err != nil {
		return fmt.Errorf("replace prefs file: %w", err)
	}
	return nil
}
