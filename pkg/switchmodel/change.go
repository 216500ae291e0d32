package switchmodel

import "fmt"

// Change is one pending edit in a switch's change log. The set of
// implementations is closed: VlanNameChange, PortDescriptionChange,
// PortPVIDChange, PortVlanMembershipChange, AddVlanChange and
// DeleteVlanChange.
type Change interface {
	fmt.Stringer

	// mergeWith reduces a newly queued change against an older entry of
	// the log. It returns what is left of the new change (nil once it has
	// been absorbed or cancelled) and the entries that take the older
	// change's place in the log.
	mergeWith(older Change) (Change, []Change)
}

// VlanNameChange renames a VLAN.
type VlanNameChange struct {
	Vlan *Vlan
	New  string
	Old  string
}

func (c *VlanNameChange) mergeWith(older Change) (Change, []Change) {
	if o, ok := older.(*VlanNameChange); ok && o.Vlan == c.Vlan {
		if c.New == o.Old {
			return nil, nil
		}
		c.Old = o.Old
		return nil, []Change{c}
	}
	return c, []Change{older}
}

func (c *VlanNameChange) String() string {
	return fmt.Sprintf("Changing vlan %d name to: %s", c.Vlan.dotqID, c.New)
}

// PortDescriptionChange sets a port's description.
type PortDescriptionChange struct {
	Port int
	New  string
	Old  string
}

func (c *PortDescriptionChange) mergeWith(older Change) (Change, []Change) {
	if o, ok := older.(*PortDescriptionChange); ok && o.Port == c.Port {
		if c.New == o.Old {
			return nil, nil
		}
		c.Old = o.Old
		return nil, []Change{c}
	}
	return c, []Change{older}
}

func (c *PortDescriptionChange) String() string {
	return fmt.Sprintf("Changing port %d description to: %s", c.Port, c.New)
}

// PortPVIDChange repoints a port's PVID. Old is 0 when the PVID was unset.
type PortPVIDChange struct {
	Port int
	New  int
	Old  int
}

func (c *PortPVIDChange) mergeWith(older Change) (Change, []Change) {
	if o, ok := older.(*PortPVIDChange); ok && o.Port == c.Port {
		if c.New == o.Old {
			return nil, nil
		}
		c.Old = o.Old
		return nil, []Change{c}
	}
	return c, []Change{older}
}

func (c *PortPVIDChange) String() string {
	return fmt.Sprintf("Changing PVID for port %d to %d", c.Port, c.New)
}

// PortVlanMembershipChange changes how a port belongs to a VLAN.
type PortVlanMembershipChange struct {
	Port int
	Vlan *Vlan
	New  Membership
	Old  Membership
}

func (c *PortVlanMembershipChange) mergeWith(older Change) (Change, []Change) {
	if o, ok := older.(*PortVlanMembershipChange); ok && o.Port == c.Port && o.Vlan == c.Vlan {
		if c.New == o.Old {
			return nil, nil
		}
		c.Old = o.Old
		return nil, []Change{c}
	}
	return c, []Change{older}
}

func (c *PortVlanMembershipChange) String() string {
	switch {
	case c.Old == NotMember:
		return fmt.Sprintf("Adding port %d to vlan %d (%s)", c.Port, c.Vlan.dotqID, c.New)
	case c.New == NotMember:
		return fmt.Sprintf("Removing port %d from vlan %d", c.Port, c.Vlan.dotqID)
	default:
		return fmt.Sprintf("Changing port %d in vlan %d from %s to %s", c.Port, c.Vlan.dotqID, c.Old, c.New)
	}
}

// AddVlanChange creates a VLAN.
type AddVlanChange struct {
	Vlan *Vlan
}

func (c *AddVlanChange) mergeWith(older Change) (Change, []Change) {
	d, ok := older.(*DeleteVlanChange)
	if !ok || d.Vlan.dotqID != c.Vlan.dotqID {
		return c, []Change{older}
	}

	// Re-adding a tag that is pending deletion turns into an edit of the
	// existing VLAN: reuse its internal id and record the differences.
	c.Vlan.internalID = d.Vlan.internalID
	var edits []Change
	if c.Vlan.name != d.Vlan.name {
		edits = append(edits, &VlanNameChange{Vlan: c.Vlan, New: c.Vlan.name, Old: d.Vlan.name})
	}
	for _, port := range c.Vlan.portNumbers() {
		if c.Vlan.ports[port] != d.Vlan.ports[port] {
			edits = append(edits, &PortVlanMembershipChange{
				Port: port,
				Vlan: c.Vlan,
				New:  c.Vlan.ports[port],
				Old:  d.Vlan.ports[port],
			})
		}
	}
	return nil, edits
}

func (c *AddVlanChange) String() string {
	return fmt.Sprintf("Adding vlan %d", c.Vlan.dotqID)
}

// DeleteVlanChange removes a VLAN.
type DeleteVlanChange struct {
	Vlan *Vlan
}

// mergeWith drops pending edits of the deleted VLAN. Their old values are
// written back into the VLAN so that a later re-add can diff against the
// state the device still has.
func (c *DeleteVlanChange) mergeWith(older Change) (Change, []Change) {
	switch o := older.(type) {
	case *VlanNameChange:
		if o.Vlan == c.Vlan {
			c.Vlan.name = o.Old
			return c, nil
		}
	case *PortVlanMembershipChange:
		if o.Vlan == c.Vlan {
			c.Vlan.ports[o.Port] = o.Old
			return c, nil
		}
	case *AddVlanChange:
		if o.Vlan == c.Vlan {
			return nil, nil
		}
	}
	return c, []Change{older}
}

func (c *DeleteVlanChange) String() string {
	return fmt.Sprintf("Removing vlan %d", c.Vlan.dotqID)
}
