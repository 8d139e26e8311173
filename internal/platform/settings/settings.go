// Package settings persists the user's portal preferences: the display
// theme and the Gemini API key. These are the only two durable keys the
// portal keeps, stored as a small YAML file in the user's home directory.
package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Theme values.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// Settings holds the persisted user preferences.
type Settings struct {
	Theme        string `yaml:"theme"`
	GeminiAPIKey string `yaml:"gemini_api_key,omitempty"`
}

// Load reads settings from path. A missing file is not an error: it yields
// the defaults, and an unknown persisted theme falls back to light.
func Load(path string) (*Settings, error) {
	s := &Settings{Theme: ThemeLight}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("read settings: %w", err)
	}

	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("parse settings: %w", err)
	}
	if s.Theme != ThemeLight && s.Theme != ThemeDark {
		s.Theme = ThemeLight
	}
	return s, nil
}

// Save writes settings to path, creating parent directories as needed.
// The file carries the user's API key, hence the tight mode.
func (s *Settings) Save(path string) error {
	if s.Theme != ThemeLight && s.Theme != ThemeDark {
		return fmt.Errorf("invalid theme %q", s.Theme)
	}

	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("create settings dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}
