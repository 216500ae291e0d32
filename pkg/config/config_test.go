package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/newtron-network/vlanadmin/pkg/util"
)

const sampleConfig = `switches:
  office:
    model: FS726T
    address: 192.168.0.239
    password: secret
    vlan_names:
      10: eng
      20: guest
  rack:
    model: snmp
    address: 10.0.0.2
    community: private
  leaf1:
    model: sonic
    address: 10.0.0.10
    ssh_user: admin
    ssh_password: YourPaSsWoRd
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vlanadmin.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleConfig))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if diff := cmp.Diff([]string{"leaf1", "office", "rack"}, cfg.Names()); diff != "" {
		t.Errorf("Names() mismatch (-want +got):\n%s", diff)
	}

	office, err := cfg.Switch("office")
	if err != nil {
		t.Fatalf("Switch(office): %v", err)
	}
	if office.Name() != "office" || office.Model != ModelFS726T || office.Password != "secret" {
		t.Errorf("office = %+v", office)
	}
	if diff := cmp.Diff(map[int]string{10: "eng", 20: "guest"}, office.VlanNames); diff != "" {
		t.Errorf("vlan_names mismatch (-want +got):\n%s", diff)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "vlanadmin.yaml")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.Names()) != 0 {
		t.Errorf("expected empty inventory, got %v", cfg.Names())
	}

	cfg.Switches["lab"] = &SwitchConfig{Model: ModelSonic, Address: "10.1.1.1"}
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("config mode = %v, want 0600", info.Mode().Perm())
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "switches: [unterminated"))
	if err == nil {
		t.Fatal("expected parse error")
	}
	if !strings.Contains(err.Error(), "parsing config file") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestSwitchNotFound(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleConfig))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, err := cfg.Switch("basement"); !errors.Is(err, util.ErrNotFound) {
		t.Errorf("Switch(basement) error = %v, want ErrNotFound", err)
	}
}

func TestSNMPVersion(t *testing.T) {
	tests := []struct {
		name string
		sw   SwitchConfig
		want int
	}{
		{"explicit", SwitchConfig{Version: 2, Username: "admin"}, 2},
		{"username implies v3", SwitchConfig{Username: "admin"}, 3},
		{"default v2", SwitchConfig{Community: "public"}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.sw.SNMPVersion(); got != tt.want {
				t.Errorf("SNMPVersion() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestSwitchValidate(t *testing.T) {
	tests := []struct {
		name    string
		sw      SwitchConfig
		wantErr string
	}{
		{"fs726t ok", SwitchConfig{Model: ModelFS726T, Address: "a"}, ""},
		{"missing model", SwitchConfig{Address: "a"}, "model is required"},
		{"missing address", SwitchConfig{Model: ModelFS726T}, "address is required"},
		{"v2 ok", SwitchConfig{Model: ModelSNMP, Address: "a", Community: "private"}, ""},
		{"v2 without community", SwitchConfig{Model: ModelSNMP, Address: "a", Version: 2}, "community must be set"},
		{"v2 with v3 fields", SwitchConfig{Model: ModelSNMP, Address: "a", Version: 2, Community: "c", Auth: "SHA"}, "must not be set"},
		{"v3 ok", SwitchConfig{Model: ModelGS324T, Address: "a", Username: "admin", Auth: "SHA", Password: "p"}, ""},
		{"v3 with priv", SwitchConfig{Model: ModelSNMP, Address: "a", Username: "admin", Auth: "SHA", Password: "p", Priv: "AES", PrivPassword: "q"}, ""},
		{"v3 without username", SwitchConfig{Model: ModelSNMP, Address: "a", Version: 3}, "username must be set"},
		{"v3 auth without password", SwitchConfig{Model: ModelSNMP, Address: "a", Username: "admin", Auth: "SHA"}, "set both password and auth"},
		{"v3 priv without password", SwitchConfig{Model: ModelSNMP, Address: "a", Username: "admin", Priv: "AES"}, "set both priv and privpassword"},
		{"v3 with community", SwitchConfig{Model: ModelSNMP, Address: "a", Username: "admin", Community: "c"}, "community must not be set"},
		{"bad version", SwitchConfig{Model: ModelSNMP, Address: "a", Version: 1}, "can only be 2 or 3"},
		{"sonic ok", SwitchConfig{Model: ModelSonic, Address: "a", SSHUser: "admin", SSHPassword: "p"}, ""},
		{"sonic password without user", SwitchConfig{Model: ModelSonic, Address: "a", SSHPassword: "p"}, "ssh_password set without ssh_user"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.sw.name = "sw"
			err := tt.sw.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, util.ErrValidationFailed) {
				t.Fatalf("Validate() = %v, want validation error", err)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestConfigValidateCollectsAllSwitches(t *testing.T) {
	cfg := &Config{Switches: map[string]*SwitchConfig{
		"a": {name: "a", Model: ModelSNMP, Address: "x"},
		"b": {name: "b", Address: "y"},
	}}
	err := cfg.Validate()
	var ve *util.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("Validate() = %v, want *ValidationError", err)
	}
	if len(ve.Errors) != 2 {
		t.Errorf("got %d errors, want 2: %v", len(ve.Errors), ve.Errors)
	}
}

func TestNameStore(t *testing.T) {
	path := writeConfig(t, sampleConfig)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	names, err := cfg.VlanNames("office")
	if err != nil {
		t.Fatalf("VlanNames: %v", err)
	}

	if got := names.Name(10); got != "eng" {
		t.Errorf("Name(10) = %q, want eng", got)
	}
	names.SetName(30, "lab")
	names.SetName(20, "")
	names.Delete(10)
	if err := names.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	reloaded, err := Load(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	office, _ := reloaded.Switch("office")
	if diff := cmp.Diff(map[int]string{30: "lab"}, office.VlanNames); diff != "" {
		t.Errorf("vlan_names after save (-want +got):\n%s", diff)
	}

	if _, err := cfg.VlanNames("basement"); !errors.Is(err, util.ErrNotFound) {
		t.Errorf("VlanNames(basement) error = %v, want ErrNotFound", err)
	}
}

func TestNameStoreOnEmptySection(t *testing.T) {
	cfg := &Config{Switches: map[string]*SwitchConfig{"rack": {name: "rack"}}}
	names, err := cfg.VlanNames("rack")
	if err != nil {
		t.Fatalf("VlanNames: %v", err)
	}
	if got := names.Name(5); got != "" {
		t.Errorf("Name(5) = %q, want empty", got)
	}
	names.SetName(5, "mgmt")
	if got := names.Name(5); got != "mgmt" {
		t.Errorf("Name(5) = %q, want mgmt", got)
	}
}
