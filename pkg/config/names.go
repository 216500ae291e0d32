package config

// NameStore keeps VLAN names in a switch section, keyed by tag.
type NameStore struct {
	cfg *Config
	sw  *SwitchConfig
}

// VlanNames returns the name store of the named switch.
func (c *Config) VlanNames(name string) (*NameStore, error) {
	sw, err := c.Switch(name)
	if err != nil {
		return nil, err
	}
	return &NameStore{cfg: c, sw: sw}, nil
}

// Name returns the stored name of tag, or "".
func (n *NameStore) Name(tag int) string {
	return n.sw.VlanNames[tag]
}

// SetName stores the name of tag. An empty name removes the entry.
func (n *NameStore) SetName(tag int, name string) {
	if name == "" {
		n.Delete(tag)
		return
	}
	if n.sw.VlanNames == nil {
		n.sw.VlanNames = make(map[int]string)
	}
	n.sw.VlanNames[tag] = name
}

// Delete removes the name of tag.
func (n *NameStore) Delete(tag int) {
	delete(n.sw.VlanNames, tag)
}

// Save writes the whole inventory file.
func (n *NameStore) Save() error {
	return n.cfg.Save()
}
