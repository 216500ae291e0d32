package switchmodel

import (
	"fmt"
	"sort"

	"github.com/newtron-network/vlanadmin/pkg/util"
)

// Vlan is an 802.1Q VLAN. Two Vlan values with the same tag are different
// VLANs: a tag deleted and re-added yields a new object.
type Vlan struct {
	sw         *Switch
	internalID int
	dotqID     int
	name       string
	ports      map[int]Membership
	events     Events
	// created is set once an explicit create reached the device, so that a
	// retried commit does not create the VLAN twice.
	created bool
}

// InternalID returns the device handle for the VLAN, 0 until the VLAN has
// been created on the device.
func (v *Vlan) InternalID() int { return v.internalID }

// DotqID returns the 802.1Q tag.
func (v *Vlan) DotqID() int { return v.dotqID }

func (v *Vlan) Name() string { return v.name }

// Membership returns how port belongs to the VLAN.
func (v *Vlan) Membership(port int) Membership { return v.ports[port] }

// Memberships returns the membership of every port, in port order.
func (v *Vlan) Memberships() []Membership {
	nums := v.portNumbers()
	out := make([]Membership, len(nums))
	for i, n := range nums {
		out[i] = v.ports[n]
	}
	return out
}

// Events returns the VLAN's publisher (DetailsChanged, MembershipsChanged).
func (v *Vlan) Events() *Events { return &v.events }

func (v *Vlan) String() string { return fmt.Sprintf("vlan %d", v.dotqID) }

// SetName queues a name change when name differs.
func (v *Vlan) SetName(name string) {
	if name == v.name {
		return
	}
	if !v.attached() {
		util.Warnf("ignoring rename of removed %s", v)
		return
	}
	v.sw.QueueChange(&VlanNameChange{Vlan: v, New: name, Old: v.name})
	v.name = name
	v.events.emit(Event{Kind: DetailsChanged, Vlan: v})
}

// SetPortMembership changes how port belongs to the VLAN. Making a port
// untagged also moves its PVID here and demotes it in whichever VLAN held
// it untagged before.
func (v *Vlan) SetPortMembership(port int, m Membership) error {
	if !m.valid() {
		return util.NewValidationError(fmt.Sprintf("invalid membership %d", int(m)))
	}
	old, ok := v.ports[port]
	if !ok {
		return fmt.Errorf("%w: port %d", util.ErrNotFound, port)
	}
	if !v.attached() {
		return fmt.Errorf("%w: %s has been removed", util.ErrNotFound, v)
	}
	if old == m {
		return nil
	}

	v.sw.QueueChange(&PortVlanMembershipChange{Port: port, Vlan: v, New: m, Old: old})
	v.ports[port] = m
	p := v.sw.Port(port)
	v.events.emit(Event{Kind: MembershipsChanged, Vlan: v, Port: p, Membership: m})

	if m != Untagged {
		return nil
	}
	p.setPVID(v.dotqID)
	for _, other := range v.sw.vlans {
		if other != v && other.ports[port] == Untagged {
			if err := other.SetPortMembership(port, NotMember); err != nil {
				return err
			}
		}
	}
	return nil
}

// attached reports whether the VLAN is still part of its switch.
func (v *Vlan) attached() bool {
	return v.sw != nil && v.sw.dotq[v.dotqID] == v
}

func (v *Vlan) portNumbers() []int {
	nums := make([]int, 0, len(v.ports))
	for n := range v.ports {
		nums = append(nums, n)
	}
	sort.Ints(nums)
	return nums
}

func (v *Vlan) samePorts(other *Vlan) bool {
	if len(v.ports) != len(other.ports) {
		return false
	}
	for n := range v.ports {
		if _, ok := other.ports[n]; !ok {
			return false
		}
	}
	return true
}
