package switchmodel

import (
	"context"
	"fmt"
	"testing"
)

// stateBackend serves a fixed state and accepts every write.
type stateBackend struct {
	st *State
}

func (b *stateBackend) ReadState(ctx context.Context) (*State, error) {
	st := *b.st
	st.Vlans = make([]VlanState, len(b.st.Vlans))
	for i, v := range b.st.Vlans {
		members := make(map[int]Membership, len(v.Members))
		for k, m := range v.Members {
			members[k] = m
		}
		v.Members = members
		st.Vlans[i] = v
	}
	return &st, nil
}

func (b *stateBackend) CommitPortDescription(context.Context, *Port, string) error { return nil }
func (b *stateBackend) CommitVlanDescription(context.Context, *Vlan, string) error { return nil }
func (b *stateBackend) CommitVlanMemberships(context.Context, *Vlan, []Membership) error { return nil }
func (b *stateBackend) CommitPVIDs(context.Context, []int) error { return nil }
func (b *stateBackend) CommitVlanDelete(context.Context, *Vlan) error { return nil }
func (b *stateBackend) Close(context.Context) error { return nil }
func (b *stateBackend) String() string { return "state" }

// threeVlanState has four ports and three VLANs:
//
//	port   vlan 10 "eng"   vlan 20 "guest"   vlan 30 "lab"   PVID
//	1      untagged        -                 -               10
//	2      untagged        -                 tagged          10
//	3      -               untagged          -               20
//	4      tagged          untagged          tagged          20
func threeVlanState() *State {
	st := &State{Details: []Attribute{{Label: "Product", Value: "test"}}}
	for i, pvid := range []int{10, 10, 20, 20} {
		st.Ports = append(st.Ports, PortState{Number: i + 1, PVID: pvid})
	}
	st.Vlans = []VlanState{
		{InternalID: 1, DotqID: 10, Name: "eng", Members: map[int]Membership{1: Untagged, 2: Untagged, 4: Tagged}},
		{InternalID: 2, DotqID: 20, Name: "guest", Members: map[int]Membership{3: Untagged, 4: Untagged}},
		{InternalID: 3, DotqID: 30, Name: "lab", Members: map[int]Membership{2: Tagged, 4: Tagged}},
	}
	return st
}

func newTestSwitch(t *testing.T) *Switch {
	t.Helper()
	s := New("test", &stateBackend{st: threeVlanState()}, WithFinishDwell(0))
	if err := s.Reload(context.Background()); err != nil {
		t.Fatalf("Reload() failed: %v", err)
	}
	return s
}

// summarize renders a change with its old value and the tag of its target,
// so logs over different Vlan objects can be compared.
func summarize(changes []Change) []string {
	out := make([]string, len(changes))
	for i, c := range changes {
		switch c := c.(type) {
		case *VlanNameChange:
			out[i] = fmt.Sprintf("name vlan=%d %q<-%q", c.Vlan.dotqID, c.New, c.Old)
		case *PortDescriptionChange:
			out[i] = fmt.Sprintf("desc port=%d %q<-%q", c.Port, c.New, c.Old)
		case *PortPVIDChange:
			out[i] = fmt.Sprintf("pvid port=%d %d<-%d", c.Port, c.New, c.Old)
		case *PortVlanMembershipChange:
			out[i] = fmt.Sprintf("member port=%d vlan=%d %s<-%s", c.Port, c.Vlan.dotqID, c.New, c.Old)
		case *AddVlanChange:
			out[i] = fmt.Sprintf("add vlan=%d", c.Vlan.dotqID)
		case *DeleteVlanChange:
			out[i] = fmt.Sprintf("delete vlan=%d", c.Vlan.dotqID)
		}
	}
	return out
}
