// Package config loads application configuration from environment variables.
// All variables use the PORTAL_ prefix.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Config holds all application configuration.
type Config struct {
	Content      ContentConfig
	Cache        CacheConfig
	Database     DatabaseConfig
	AI           AIConfig
	Log          LogConfig
	SettingsPath string
}

// ContentConfig points at the GitHub repository holding lesson material.
type ContentConfig struct {
	Repo    string // "owner/name"
	Ref     string
	APIBase string
	RawBase string
}

// CacheConfig holds the optional shared cache (Redis) settings.
type CacheConfig struct {
	URL string // empty disables the shared cache
}

// DatabaseConfig holds the optional PostgreSQL settings for persistent
// tutor history. An empty URL keeps tutor history in memory.
type DatabaseConfig struct {
	URL      string
	MaxConns int
	MinConns int
}

// AIConfig holds the Gemini tutor settings. The API key here is a
// deployment-level default; the key saved in the user's settings file
// takes precedence.
type AIConfig struct {
	GoogleAPIKey string
	Model        string
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string
	Format string
}

// Load reads configuration from environment variables with PORTAL_ prefix.
func Load() (*Config, error) {
	cfg := &Config{
		Content: ContentConfig{
			Repo:    envStr("PORTAL_CONTENT_REPO", "abdallah-7amza/MED-Portal-NUB"),
			Ref:     envStr("PORTAL_CONTENT_REF", "main"),
			APIBase: envStr("PORTAL_CONTENT_API_BASE", "https://api.github.com"),
			RawBase: envStr("PORTAL_CONTENT_RAW_BASE", "https://raw.githubusercontent.com"),
		},
		Cache: CacheConfig{
			URL: envStr("PORTAL_CACHE_URL", ""),
		},
		Database: DatabaseConfig{
			URL:      envStr("PORTAL_DATABASE_URL", ""),
			MaxConns: envInt("PORTAL_DATABASE_MAX_CONNS", 10),
			MinConns: envInt("PORTAL_DATABASE_MIN_CONNS", 2),
		},
		AI: AIConfig{
			GoogleAPIKey: envStr("PORTAL_AI_GOOGLE_API_KEY", ""),
			Model:        envStr("PORTAL_AI_MODEL", ""),
		},
		Log: LogConfig{
			Level:  envStr("PORTAL_LOG_LEVEL", "info"),
			Format: envStr("PORTAL_LOG_FORMAT", "text"),
		},
		SettingsPath: envStr("PORTAL_SETTINGS_PATH", defaultSettingsPath()),
	}

	return cfg, nil
}

// Validate checks that required configuration is present and well-formed.
func (c *Config) Validate() error {
	parts := strings.Split(c.Content.Repo, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return fmt.Errorf("PORTAL_CONTENT_REPO must be \"owner/name\", got %q", c.Content.Repo)
	}
	if c.Content.Ref == "" {
		return fmt.Errorf("PORTAL_CONTENT_REF must not be empty")
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("PORTAL_LOG_FORMAT must be 'text' or 'json', got %q", c.Log.Format)
	}
	return nil
}

func defaultSettingsPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "portal-settings.yaml"
	}
	return filepath.Join(home, ".med-portal", "settings.yaml")
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
