package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultBridgeTimeout = 30 * time.Second
	defaultBridgePoll    = 50 * time.Millisecond
	defaultLookupTimeout = 10 * time.Second
	defaultUGBaseURL     = "https://www.ultimate-guitar.com"
	defaultIntentModel   = "gpt-5-mini"
)

// Config contains configuration for the REAPER MCP server
type Config struct {
	BridgeDir     string        // Directory shared with the REAPER Lua bridge script
	BridgeTimeout time.Duration // How long to wait for a bridge response
	BridgePoll    time.Duration // Response polling interval

	LookupTimeout     time.Duration // HTTP timeout for chord chart lookups
	UltimateGuitarURL string        // Base URL of the chord site

	OpenAIAPIKey string // OpenAI API key for the intent fallback (optional)
	GeminiAPIKey string // Google Gemini API key (optional)
	IntentModel  string // Model used to resolve natural language requests

	ExportDir string // Default directory for exported .mid previews

	SentryDSN string // Sentry DSN (optional)
	HTTPAddr  string // Listen address for the streamable HTTP transport
}

// Load reads a .env file if one exists and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("⚠️  No .env file loaded: %v", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from environment variables only
func FromEnv() (*Config, error) {
	cfg := &Config{
		BridgeDir:         getEnv("REAPER_BRIDGE_DIR", defaultBridgeDir()),
		UltimateGuitarURL: getEnv("ULTIMATE_GUITAR_URL", defaultUGBaseURL),
		OpenAIAPIKey:      os.Getenv("OPENAI_API_KEY"),
		GeminiAPIKey:      os.Getenv("GEMINI_API_KEY"),
		IntentModel:       getEnv("MAGDA_INTENT_MODEL", defaultIntentModel),
		SentryDSN:         os.Getenv("SENTRY_DSN"),
		HTTPAddr:          os.Getenv("MCP_HTTP_ADDR"),
		ExportDir:         getEnv("MIDI_EXPORT_DIR", os.TempDir()),
	}

	var err error
	if cfg.BridgeTimeout, err = getDuration("REAPER_BRIDGE_TIMEOUT", defaultBridgeTimeout); err != nil {
		return nil, err
	}
	if cfg.BridgePoll, err = getDuration("REAPER_BRIDGE_POLL", defaultBridgePoll); err != nil {
		return nil, err
	}
	if cfg.LookupTimeout, err = getDuration("SONG_LOOKUP_TIMEOUT", defaultLookupTimeout); err != nil {
		return nil, err
	}

	return cfg, nil
}

// HasLLM reports whether any LLM provider key is configured
func (c *Config) HasLLM() bool {
	return c.OpenAIAPIKey != "" || c.GeminiAPIKey != ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be positive", key, v)
	}
	return d, nil
}

// defaultBridgeDir is the ResourcePath/Scripts/mcp_bridge_data folder the Lua
// bridge uses on a default REAPER install.
func defaultBridgeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "mcp_bridge_data"
	}
	if _, err := os.Stat(filepath.Join(home, "Library", "Application Support", "REAPER")); err == nil {
		return filepath.Join(home, "Library", "Application Support", "REAPER", "Scripts", "mcp_bridge_data")
	}
	if appData := os.Getenv("APPDATA"); appData != "" {
		return filepath.Join(appData, "REAPER", "Scripts", "mcp_bridge_data")
	}
	return filepath.Join(home, ".config", "REAPER", "Scripts", "mcp_bridge_data")
}
