// Package settings manages persistent user settings for the vlanadmin CLI.
package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/newtron-network/vlanadmin/pkg/config"
)

// Settings holds persistent user preferences
type Settings struct {
	// DefaultSwitch is the config section to use when -s is not specified
	DefaultSwitch string `json:"default_switch,omitempty"`

	// ConfigPath overrides the switch inventory file
	ConfigPath string `json:"config_path,omitempty"`

	// AuditLog overrides the audit log file
	AuditLog string `json:"audit_log,omitempty"`
}

// DefaultSettingsPath returns the default path for the settings file
func DefaultSettingsPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "vlanadmin_settings.json"
	}
	return filepath.Join(home, ".vlanadmin", "settings.json")
}

// Load reads settings from the default location
func Load() (*Settings, error) {
	return LoadFrom(DefaultSettingsPath())
}

// LoadFrom reads settings from a specific path
func LoadFrom(path string) (*Settings, error) {
	s := &Settings{}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(data, s); err != nil {
		return nil, err
	}

	return s, nil
}

// Save writes settings to the default location
func (s *Settings) Save() error {
	return s.SaveTo(DefaultSettingsPath())
}

// SaveTo writes settings to a specific path
func (s *Settings) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// GetConfigPath returns the inventory path (with fallback)
func (s *Settings) GetConfigPath() string {
	if s.ConfigPath != "" {
		return s.ConfigPath
	}
	return config.DefaultPath()
}

// GetAuditLog returns the audit log path (with fallback)
func (s *Settings) GetAuditLog() string {
	if s.AuditLog != "" {
		return s.AuditLog
	}
	return filepath.Join(filepath.Dir(DefaultSettingsPath()), "audit.log")
}

var keys = map[string]func(*Settings) *string{
	"default_switch": func(s *Settings) *string { return &s.DefaultSwitch },
	"config_path":    func(s *Settings) *string { return &s.ConfigPath },
	"audit_log":      func(s *Settings) *string { return &s.AuditLog },
}

// Keys returns the settable keys, sorted.
func Keys() []string {
	out := make([]string, 0, len(keys))
	for k := range keys {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Set assigns a setting by its JSON key.
func (s *Settings) Set(key, value string) error {
	field, ok := keys[key]
	if !ok {
		return fmt.Errorf("unknown setting %q (valid: %v)", key, Keys())
	}
	*field(s) = value
	return nil
}

// Get returns a setting by its JSON key.
func (s *Settings) Get(key string) (string, error) {
	field, ok := keys[key]
	if !ok {
		return "", fmt.Errorf("unknown setting %q (valid: %v)", key, Keys())
	}
	return *field(s), nil
}

// Clear resets all settings to defaults
func (s *Settings) Clear() {
	*s = Settings{}
}
