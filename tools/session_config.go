package tools

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed session_config.yaml
var sessionConfigYAML []byte

// SessionType describes one session template
type SessionType struct {
	Key         string   `yaml:"key"`
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Grid        *float64 `yaml:"grid"`
	Snap        bool     `yaml:"snap"`
	UseFolders  bool     `yaml:"use_folders"`
}

// PluginChoice is a preferred plugin with an optional stock fallback
type PluginChoice struct {
	Preferred string  `yaml:"preferred"`
	Fallback  *string `yaml:"fallback"`
}

// SessionConfig mirrors the session template configuration kept on the REAPER side
type SessionConfig struct {
	SessionTypes []SessionType           `yaml:"session_types"`
	Tascam       map[string]any          `yaml:"tascam"`
	MIDI         map[string]any          `yaml:"midi"`
	Plugins      map[string]PluginChoice `yaml:"plugins"`
	Colors       map[string][]int        `yaml:"colors"`
	Loudness     map[string]int          `yaml:"loudness"`
}

// LoadSessionConfig parses the embedded static configuration
func LoadSessionConfig() (*SessionConfig, error) {
	return ParseSessionConfig(sessionConfigYAML)
}

// ParseSessionConfig parses a session configuration document
func ParseSessionConfig(data []byte) (*SessionConfig, error) {
	var cfg SessionConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse session config: %w", err)
	}
	if len(cfg.SessionTypes) == 0 {
		return nil, fmt.Errorf("session config defines no session types")
	}
	return &cfg, nil
}

// SessionType looks up a template by key
func (c *SessionConfig) SessionType(key string) (SessionType, bool) {
	for _, st := range c.SessionTypes {
		if st.Key == key {
			return st, true
		}
	}
	return SessionType{}, false
}

// SessionTypeKeys returns the template keys in declaration order
func (c *SessionConfig) SessionTypeKeys() []string {
	keys := make([]string, 0, len(c.SessionTypes))
	for _, st := range c.SessionTypes {
		keys = append(keys, st.Key)
	}
	return keys
}

// Section renders one named section, or the whole document for "all", as YAML
func (c *SessionConfig) Section(name string) (string, bool) {
	var v any
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "all", "":
		v = c
	case "session_types":
		v = c.SessionTypes
	case "tascam":
		v = c.Tascam
	case "midi":
		v = c.MIDI
	case "plugins":
		v = c.Plugins
	case "colors":
		v = c.Colors
	case "loudness":
		v = c.Loudness
	default:
		return "", false
	}

	out, err := yaml.Marshal(v)
	if err != nil {
		return "", false
	}
	return strings.TrimRight(string(out), "\n"), true
}
