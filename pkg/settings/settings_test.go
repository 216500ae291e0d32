package settings

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSettings_Defaults(t *testing.T) {
	t.Setenv("HOME", "/home/ops")
	s := &Settings{}

	if got, want := s.GetConfigPath(), "/home/ops/.config/vlanadmin.yaml"; got != want {
		t.Errorf("GetConfigPath() default = %q, want %q", got, want)
	}
	if got, want := s.GetAuditLog(), "/home/ops/.vlanadmin/audit.log"; got != want {
		t.Errorf("GetAuditLog() default = %q, want %q", got, want)
	}
	if s.DefaultSwitch != "" {
		t.Errorf("DefaultSwitch should be empty, got %q", s.DefaultSwitch)
	}
}

func TestSettings_Set(t *testing.T) {
	s := &Settings{}

	tests := []struct {
		key, value string
		get        func() string
	}{
		{"default_switch", "office", func() string { return s.DefaultSwitch }},
		{"config_path", "/etc/vlanadmin.yaml", func() string { return s.GetConfigPath() }},
		{"audit_log", "/var/log/vlanadmin.log", func() string { return s.GetAuditLog() }},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if err := s.Set(tt.key, tt.value); err != nil {
				t.Fatalf("Set(%q) failed: %v", tt.key, err)
			}
			if got := tt.get(); got != tt.value {
				t.Errorf("after Set(%q), got %q, want %q", tt.key, got, tt.value)
			}
		})
	}

	err := s.Set("spec_dir", "/x")
	if err == nil || !strings.Contains(err.Error(), "unknown setting") {
		t.Errorf("Set(unknown) = %v, want unknown setting error", err)
	}
}

func TestSettings_Clear(t *testing.T) {
	s := &Settings{
		DefaultSwitch: "office",
		ConfigPath:    "/path",
		AuditLog:      "/log",
	}

	s.Clear()

	if s.DefaultSwitch != "" || s.ConfigPath != "" || s.AuditLog != "" {
		t.Error("Clear() should reset all fields to empty")
	}
}

func TestSettings_SaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")

	original := &Settings{
		DefaultSwitch: "rack",
		ConfigPath:    "/etc/vlanadmin.yaml",
	}
	if err := original.SaveTo(path); err != nil {
		t.Fatalf("SaveTo() failed: %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() failed: %v", err)
	}
	if *loaded != *original {
		t.Errorf("LoadFrom() = %+v, want %+v", loaded, original)
	}
}

func TestSettings_LoadNonExistent(t *testing.T) {
	s, err := LoadFrom("/nonexistent/path/settings.json")
	if err != nil {
		t.Fatalf("LoadFrom() non-existent should not error: %v", err)
	}
	if s == nil || s.DefaultSwitch != "" {
		t.Error("LoadFrom() non-existent should return empty settings")
	}
}

func TestSettings_LoadInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, []byte("invalid json {"), 0644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}

	if _, err := LoadFrom(path); err == nil {
		t.Error("LoadFrom() with invalid JSON should error")
	}
}

func TestSettings_SaveCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subdir", "nested", "settings.json")

	s := &Settings{DefaultSwitch: "office"}
	if err := s.SaveTo(path); err != nil {
		t.Fatalf("SaveTo() should create directories: %v", err)
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("SaveTo() should have created the file")
	}
}

func TestLoadSave_DefaultPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	s, err := Load()
	if err != nil {
		t.Fatalf("Load() with non-existent file should not error: %v", err)
	}
	if s.DefaultSwitch != "" {
		t.Error("Load() with non-existent file should return empty settings")
	}

	s.DefaultSwitch = "saved-switch"
	if err := s.Save(); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	expectedPath := filepath.Join(home, ".vlanadmin", "settings.json")
	if _, err := os.Stat(expectedPath); os.IsNotExist(err) {
		t.Fatalf("Save() did not create file at %s", expectedPath)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load() after Save() failed: %v", err)
	}
	if loaded.DefaultSwitch != "saved-switch" {
		t.Errorf("After Save(), DefaultSwitch = %q, want %q", loaded.DefaultSwitch, "saved-switch")
	}
}

func TestDefaultSettingsPath_NoHome(t *testing.T) {
	t.Setenv("HOME", "")

	if path := DefaultSettingsPath(); path != "vlanadmin_settings.json" {
		t.Errorf("DefaultSettingsPath() with no HOME = %q, want %q", path, "vlanadmin_settings.json")
	}
}

func TestLoadFrom_ReadError(t *testing.T) {
	dirAsFile := filepath.Join(t.TempDir(), "settings.json")
	if err := os.Mkdir(dirAsFile, 0755); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}

	if _, err := LoadFrom(dirAsFile); err == nil {
		t.Error("LoadFrom() should error when path is a directory")
	}
}

func TestSaveTo_MkdirError(t *testing.T) {
	blockingFile := filepath.Join(t.TempDir(), "blocker")
	if err := os.WriteFile(blockingFile, []byte("blocking"), 0644); err != nil {
		t.Fatalf("Failed to create blocking file: %v", err)
	}

	s := &Settings{DefaultSwitch: "office"}
	if err := s.SaveTo(filepath.Join(blockingFile, "subdir", "settings.json")); err == nil {
		t.Error("SaveTo() should fail when directory creation fails")
	}
}

func TestSettings_Get(t *testing.T) {
	s := &Settings{DefaultSwitch: "office"}

	got, err := s.Get("default_switch")
	if err != nil || got != "office" {
		t.Errorf("Get(default_switch) = %q, %v; want office", got, err)
	}
	got, err = s.Get("audit_log")
	if err != nil || got != "" {
		t.Errorf("Get(audit_log) = %q, %v; want empty", got, err)
	}
	if _, err := s.Get("network"); err == nil {
		t.Error("Get(unknown) should fail")
	}
}
