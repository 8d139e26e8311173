package settings_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/abdallah-7amza/MED-Portal-NUB/internal/platform/settings"
)

func TestLoad_MissingFile(t *testing.T) {
	s, err := settings.Load(filepath.Join(t.TempDir(), "settings.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if s.Theme != settings.ThemeLight {
		t.Errorf("Theme = %q, want %q", s.Theme, settings.ThemeLight)
	}
	if s.GeminiAPIKey != "" {
		t.Errorf("GeminiAPIKey = %q, want empty", s.GeminiAPIKey)
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.yaml")

	in := &settings.Settings{Theme: settings.ThemeDark, GeminiAPIKey: "test-key-123"}
	if err := in.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	out, err := settings.Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if out.Theme != settings.ThemeDark {
		t.Errorf("Theme = %q, want %q", out.Theme, settings.ThemeDark)
	}
	if out.GeminiAPIKey != "test-key-123" {
		t.Errorf("GeminiAPIKey = %q, want %q", out.GeminiAPIKey, "test-key-123")
	}
}

func TestLoad_UnknownThemeFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	if err := os.WriteFile(path, []byte("theme: solarized\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	s, err := settings.Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if s.Theme != settings.ThemeLight {
		t.Errorf("Theme = %q, want fallback %q", s.Theme, settings.ThemeLight)
	}
}

func TestSave_InvalidTheme(t *testing.T) {
	s := &settings.Settings{Theme: "neon"}
	if err := s.Save(filepath.Join(t.TempDir(), "settings.yaml")); err == nil {
		t.Fatal("Save() with an invalid theme should fail")
	}
}

func TestSave_FileMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	s := &settings.Settings{Theme: settings.ThemeLight, GeminiAPIKey: "secret"}
	if err := s.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := info.Mode().Perm(); got != 0o600 {
		t.Errorf("settings file mode = %o, want 600", got)
	}
}
