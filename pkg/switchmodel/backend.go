package switchmodel

import (
	"context"
	"fmt"

	"github.com/newtron-network/vlanadmin/pkg/util"
)

// Attribute is one labelled, read-only device detail.
type Attribute struct {
	Label string
	Value string
}

// PortState is a port as read from the device.
type PortState struct {
	Number      int
	Description string
	PVID        int
	Info        PortInfo
}

// VlanState is a VLAN as read from the device. Ports missing from Members
// are not members.
type VlanState struct {
	InternalID int
	DotqID     int
	Name       string
	Members    map[int]Membership
}

// State is a snapshot of a switch produced by a Reader.
type State struct {
	Details []Attribute
	Ports   []PortState
	Vlans   []VlanState
}

// Validate checks that ports are numbered 1..N in order, that VLAN tags are
// valid and unique, and that memberships only name existing ports.
func (st *State) Validate() error {
	v := &util.ValidationBuilder{}
	for i, p := range st.Ports {
		v.Add(p.Number == i+1, fmt.Sprintf("port at position %d is numbered %d, want %d", i+1, p.Number, i+1))
	}
	seen := make(map[int]bool, len(st.Vlans))
	for _, vl := range st.Vlans {
		if err := util.ValidateVLANID(vl.DotqID); err != nil {
			v.AddErrorf("vlan %d: tag out of range 1-4094", vl.DotqID)
			continue
		}
		v.Add(!seen[vl.DotqID], fmt.Sprintf("vlan %d: duplicate tag", vl.DotqID))
		seen[vl.DotqID] = true
		for port, m := range vl.Members {
			v.Add(port >= 1 && port <= len(st.Ports), fmt.Sprintf("vlan %d: membership for unknown port %d", vl.DotqID, port))
			v.Add(m.valid(), fmt.Sprintf("vlan %d: invalid membership %d for port %d", vl.DotqID, int(m), port))
		}
	}
	return v.Build()
}

// Reader produces the current state of a device.
type Reader interface {
	ReadState(ctx context.Context) (*State, error)
}

// Writer accepts the write primitives issued by Commit. Each call blocks
// until the device has accepted the write.
type Writer interface {
	CommitPortDescription(ctx context.Context, port *Port, desc string) error
	CommitVlanDescription(ctx context.Context, vlan *Vlan, name string) error
	// CommitVlanMemberships writes the full membership list of a VLAN, one
	// entry per port in port order.
	CommitVlanMemberships(ctx context.Context, vlan *Vlan, memberships []Membership) error
	// CommitPVIDs writes the PVID of every port, in port order.
	CommitPVIDs(ctx context.Context, pvids []int) error
	CommitVlanDelete(ctx context.Context, vlan *Vlan) error
}

// Backend is a device family implementation.
type Backend interface {
	Reader
	Writer
	// Close ends the session with the device (logout, connection close).
	Close(ctx context.Context) error
	String() string
}

// VlanCreator is implemented by backends that must create a VLAN
// explicitly before its first membership write.
type VlanCreator interface {
	CommitVlanAdd(ctx context.Context, vlan *Vlan) error
}

// CommitFinisher is implemented by backends that persist local state once
// every write of a commit has succeeded.
type CommitFinisher interface {
	FinishCommit(ctx context.Context) error
}
