// Package config loads the switch inventory from ~/.config/vlanadmin.yaml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/newtron-network/vlanadmin/pkg/util"
)

// Switch models understood by the backends.
const (
	ModelFS726T = "FS726T"
	ModelSNMP   = "snmp"
	ModelGS324T = "GS324T"
	ModelSonic  = "sonic"
)

// SwitchConfig is one switch section. Which fields apply depends on Model.
type SwitchConfig struct {
	Model   string `yaml:"model"`
	Address string `yaml:"address"`

	// Password is the web login password (FS726T) or the SNMPv3
	// authentication password.
	Password string `yaml:"password,omitempty"`

	// SNMP
	Version      int    `yaml:"version,omitempty"`
	Community    string `yaml:"community,omitempty"`
	Username     string `yaml:"username,omitempty"`
	Auth         string `yaml:"auth,omitempty"`
	Priv         string `yaml:"priv,omitempty"`
	PrivPassword string `yaml:"privpassword,omitempty"`

	// SONiC: CONFIG_DB is reached through an SSH tunnel when SSHUser is
	// set, directly on RedisPort otherwise.
	SSHUser     string `yaml:"ssh_user,omitempty"`
	SSHPassword string `yaml:"ssh_password,omitempty"`
	RedisPort   int    `yaml:"redis_port,omitempty"`

	// VlanNames keeps VLAN names for switches that cannot store them.
	VlanNames map[int]string `yaml:"vlan_names,omitempty"`

	name string
}

// Name returns the section name.
func (s *SwitchConfig) Name() string { return s.name }

// SNMPVersion returns the configured SNMP version, defaulting to 3 when a
// username is set and 2 otherwise.
func (s *SwitchConfig) SNMPVersion() int {
	if s.Version != 0 {
		return s.Version
	}
	if s.Username != "" {
		return 3
	}
	return 2
}

// Validate checks the fields required by the section's model.
func (s *SwitchConfig) Validate() error {
	v := &util.ValidationBuilder{}
	v.Add(s.Model != "", fmt.Sprintf("%s: model is required", s.name))
	v.Add(s.Address != "", fmt.Sprintf("%s: address is required", s.name))

	switch {
	case strings.EqualFold(s.Model, ModelSNMP), strings.EqualFold(s.Model, ModelGS324T):
		s.validateSNMP(v)
	case strings.EqualFold(s.Model, ModelSonic):
		v.Add(s.SSHUser != "" || s.SSHPassword == "", fmt.Sprintf("%s: ssh_password set without ssh_user", s.name))
		v.Add(s.RedisPort >= 0 && s.RedisPort < 65536, fmt.Sprintf("%s: redis_port %d out of range", s.name, s.RedisPort))
	}
	return v.Build()
}

func (s *SwitchConfig) validateSNMP(v *util.ValidationBuilder) {
	switch s.SNMPVersion() {
	case 2:
		v.Add(s.Community != "", fmt.Sprintf("%s: for snmp version 2, community must be set", s.name))
		v.Add(s.Username == "" && s.Password == "" && s.Auth == "" && s.Priv == "" && s.PrivPassword == "",
			fmt.Sprintf("%s: for snmp version 2, username, password, auth, priv and privpassword must not be set", s.name))
	case 3:
		v.Add(s.Username != "", fmt.Sprintf("%s: for snmp version 3, username must be set", s.name))
		v.Add((s.Auth == "") == (s.Password == ""),
			fmt.Sprintf("%s: for snmp version 3 with authentication, set both password and auth", s.name))
		v.Add((s.Priv == "") == (s.PrivPassword == ""),
			fmt.Sprintf("%s: for snmp version 3 with encryption, set both priv and privpassword", s.name))
		v.Add(s.Community == "", fmt.Sprintf("%s: for snmp version 3, community must not be set", s.name))
	default:
		v.AddErrorf("%s: snmp version can only be 2 or 3", s.name)
	}
}

// Config is the switch inventory.
type Config struct {
	Switches map[string]*SwitchConfig `yaml:"switches"`

	path string
}

// DefaultPath returns ~/.config/vlanadmin.yaml.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "vlanadmin.yaml"
	}
	return filepath.Join(home, ".config", "vlanadmin.yaml")
}

// Load reads the inventory at path. A missing file yields an empty
// inventory that Save will create.
func Load(path string) (*Config, error) {
	c := &Config{path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			c.Switches = make(map[string]*SwitchConfig)
			return c, nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	if c.Switches == nil {
		c.Switches = make(map[string]*SwitchConfig)
	}
	for name, sw := range c.Switches {
		if sw == nil {
			sw = &SwitchConfig{}
			c.Switches[name] = sw
		}
		sw.name = name
	}
	return c, nil
}

// Path returns the file the inventory was loaded from.
func (c *Config) Path() string { return c.path }

// Save writes the inventory back to its file. The file holds passwords, so
// it is only readable by the owner.
func (c *Config) Save() error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0755); err != nil {
		return err
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(c.path, data, 0600)
}

// Names returns the configured switch names, sorted.
func (c *Config) Names() []string {
	names := make([]string, 0, len(c.Switches))
	for name := range c.Switches {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Switch returns the named section.
func (c *Config) Switch(name string) (*SwitchConfig, error) {
	sw, ok := c.Switches[name]
	if !ok {
		return nil, fmt.Errorf("%w: switch %q not in %s", util.ErrNotFound, name, c.path)
	}
	return sw, nil
}

// Validate checks every section.
func (c *Config) Validate() error {
	v := &util.ValidationBuilder{}
	for _, name := range c.Names() {
		if err := c.Switches[name].Validate(); err != nil {
			var ve *util.ValidationError
			if errors.As(err, &ve) {
				for _, msg := range ve.Errors {
					v.AddErrorf("%s", msg)
				}
				continue
			}
			v.AddErrorf("%v", err)
		}
	}
	return v.Build()
}
