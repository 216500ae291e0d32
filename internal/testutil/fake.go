// Package testutil provides test helpers: a recording fake backend, the
// standard switch fixture, and Redis helpers for integration tests.
package testutil

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/newtron-network/vlanadmin/pkg/switchmodel"
)

// Writer operations recorded by FakeBackend.
const (
	OpPortDescription = "port-description"
	OpVlanDescription = "vlan-description"
	OpVlanMemberships = "vlan-memberships"
	OpPVIDs           = "pvids"
	OpVlanDelete      = "vlan-delete"
	OpVlanAdd         = "vlan-add"
	OpFinish          = "finish"
)

// ErrInjected is returned by FakeBackend for the operation named in FailOn.
var ErrInjected = errors.New("injected failure")

// Call is one recorded writer call. Only the fields relevant to Op are set.
type Call struct {
	Op          string
	Port        int
	Vlan        int
	InternalID  int
	Text        string
	Memberships []switchmodel.Membership
	PVIDs       []int
}

func (c Call) String() string {
	switch c.Op {
	case OpPortDescription:
		return fmt.Sprintf("%s port=%d %q", c.Op, c.Port, c.Text)
	case OpVlanDescription:
		return fmt.Sprintf("%s vlan=%d %q", c.Op, c.Vlan, c.Text)
	case OpVlanMemberships:
		return fmt.Sprintf("%s vlan=%d id=%d %v", c.Op, c.Vlan, c.InternalID, c.Memberships)
	case OpPVIDs:
		return fmt.Sprintf("%s %v", c.Op, c.PVIDs)
	default:
		return fmt.Sprintf("%s vlan=%d id=%d", c.Op, c.Vlan, c.InternalID)
	}
}

// FakeBackend serves a fixed State and records every write.
type FakeBackend struct {
	State *switchmodel.State
	Calls []Call

	// FailOn makes the first call of the named operation return ErrInjected.
	FailOn  string
	ReadErr error
	Closed  bool
}

// NewFakeBackend returns a backend serving st.
func NewFakeBackend(st *switchmodel.State) *FakeBackend {
	return &FakeBackend{State: st}
}

func (f *FakeBackend) String() string { return "fake switch" }

func (f *FakeBackend) ReadState(ctx context.Context) (*switchmodel.State, error) {
	if f.ReadErr != nil {
		return nil, f.ReadErr
	}
	return CloneState(f.State), nil
}

func (f *FakeBackend) record(c Call) error {
	if f.FailOn == c.Op {
		f.FailOn = ""
		return ErrInjected
	}
	f.Calls = append(f.Calls, c)
	return nil
}

func (f *FakeBackend) CommitPortDescription(ctx context.Context, port *switchmodel.Port, desc string) error {
	return f.record(Call{Op: OpPortDescription, Port: port.Number(), Text: desc})
}

func (f *FakeBackend) CommitVlanDescription(ctx context.Context, vlan *switchmodel.Vlan, name string) error {
	return f.record(Call{Op: OpVlanDescription, Vlan: vlan.DotqID(), Text: name})
}

func (f *FakeBackend) CommitVlanMemberships(ctx context.Context, vlan *switchmodel.Vlan, m []switchmodel.Membership) error {
	return f.record(Call{
		Op:          OpVlanMemberships,
		Vlan:        vlan.DotqID(),
		InternalID:  vlan.InternalID(),
		Memberships: append([]switchmodel.Membership(nil), m...),
	})
}

func (f *FakeBackend) CommitPVIDs(ctx context.Context, pvids []int) error {
	return f.record(Call{Op: OpPVIDs, PVIDs: append([]int(nil), pvids...)})
}

func (f *FakeBackend) CommitVlanDelete(ctx context.Context, vlan *switchmodel.Vlan) error {
	return f.record(Call{Op: OpVlanDelete, Vlan: vlan.DotqID(), InternalID: vlan.InternalID()})
}

func (f *FakeBackend) Close(ctx context.Context) error {
	f.Closed = true
	return nil
}

// Ops returns the recorded operation names in call order.
func (f *FakeBackend) Ops() []string {
	ops := make([]string, len(f.Calls))
	for i, c := range f.Calls {
		ops[i] = c.Op
	}
	return ops
}

// CreatorBackend is a FakeBackend that also creates VLANs explicitly and
// finishes commits, like the SNMP and SONiC backends.
type CreatorBackend struct {
	*FakeBackend
}

func (c CreatorBackend) CommitVlanAdd(ctx context.Context, vlan *switchmodel.Vlan) error {
	return c.record(Call{Op: OpVlanAdd, Vlan: vlan.DotqID()})
}

func (c CreatorBackend) FinishCommit(ctx context.Context) error {
	return c.record(Call{Op: OpFinish})
}

// FourPortState is the standard fixture: four ports and two VLANs.
//
//	port   vlan 10 "eng"   vlan 20 "guest"   PVID
//	1      untagged        -                 10
//	2      untagged        -                 10
//	3      -               untagged          20
//	4      tagged          untagged          20
func FourPortState() *switchmodel.State {
	up := true
	ports := make([]switchmodel.PortState, 4)
	pvids := []int{10, 10, 20, 20}
	for i := range ports {
		ports[i] = switchmodel.PortState{
			Number: i + 1,
			PVID:   pvids[i],
			Info: switchmodel.PortInfo{
				Name:       fmt.Sprintf("g%d", i+1),
				LinkStatus: "1000M",
				Enabled:    &up,
			},
		}
	}
	ports[3].Info.LinkStatus = "Down"

	return &switchmodel.State{
		Details: []switchmodel.Attribute{
			{Label: "Product", Value: "Fake 4-port"},
			{Label: "Hostname", Value: "fake"},
		},
		Ports: ports,
		Vlans: []switchmodel.VlanState{
			{InternalID: 1, DotqID: 10, Name: "eng", Members: map[int]switchmodel.Membership{
				1: switchmodel.Untagged, 2: switchmodel.Untagged, 4: switchmodel.Tagged,
			}},
			{InternalID: 2, DotqID: 20, Name: "guest", Members: map[int]switchmodel.Membership{
				3: switchmodel.Untagged, 4: switchmodel.Untagged,
			}},
		},
	}
}

// CloneState returns a deep copy of st.
func CloneState(st *switchmodel.State) *switchmodel.State {
	out := &switchmodel.State{
		Details: append([]switchmodel.Attribute(nil), st.Details...),
		Ports:   append([]switchmodel.PortState(nil), st.Ports...),
		Vlans:   make([]switchmodel.VlanState, len(st.Vlans)),
	}
	for i, v := range st.Vlans {
		members := make(map[int]switchmodel.Membership, len(v.Members))
		for k, m := range v.Members {
			members[k] = m
		}
		v.Members = members
		out.Vlans[i] = v
	}
	return out
}

// LoadedSwitch returns a switch over backend, reloaded and with no finish
// dwell.
func LoadedSwitch(t *testing.T, backend switchmodel.Backend) *switchmodel.Switch {
	t.Helper()
	sw := switchmodel.New("test", backend, switchmodel.WithFinishDwell(0))
	if err := sw.Reload(context.Background()); err != nil {
		t.Fatalf("Reload() failed: %v", err)
	}
	return sw
}
