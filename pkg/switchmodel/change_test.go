package switchmodel

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestQueueChange_Cancellation(t *testing.T) {
	tests := []struct {
		name string
		edit func(t *testing.T, s *Switch)
	}{
		{
			name: "port description",
			edit: func(t *testing.T, s *Switch) {
				s.Port(1).SetDescription("uplink")
				s.Port(1).SetDescription("server")
				s.Port(1).SetDescription("")
			},
		},
		{
			name: "vlan name",
			edit: func(t *testing.T, s *Switch) {
				s.VlanByTag(10).SetName("office")
				s.VlanByTag(10).SetName("eng")
			},
		},
		{
			name: "pvid",
			edit: func(t *testing.T, s *Switch) {
				mustNoErr(t, s.Port(2).SetPVID(30))
				mustNoErr(t, s.Port(2).SetPVID(20))
				mustNoErr(t, s.Port(2).SetPVID(10))
			},
		},
		{
			name: "membership",
			edit: func(t *testing.T, s *Switch) {
				v := s.VlanByTag(30)
				mustNoErr(t, v.SetPortMembership(1, Tagged))
				mustNoErr(t, v.SetPortMembership(1, NotMember))
			},
		},
		{
			name: "untagged move and back",
			edit: func(t *testing.T, s *Switch) {
				mustNoErr(t, s.VlanByTag(20).SetPortMembership(1, Untagged))
				mustNoErr(t, s.VlanByTag(10).SetPortMembership(1, Untagged))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSwitch(t)
			tt.edit(t, s)
			if got := s.Changes(); len(got) != 0 {
				t.Errorf("Changes() = %v, want empty", summarize(got))
			}
		})
	}
}

func TestQueueChange_Absorption(t *testing.T) {
	s := newTestSwitch(t)
	s.Port(2).SetDescription("a")
	s.VlanByTag(10).SetName("office")
	s.Port(2).SetDescription("b")
	s.Port(2).SetDescription("c")

	want := []string{
		`desc port=2 "c"<-""`,
		`name vlan=10 "office"<-"eng"`,
	}
	if diff := cmp.Diff(want, summarize(s.Changes())); diff != "" {
		t.Errorf("Changes() mismatch (-want +got):\n%s", diff)
	}
}

func TestSetPortMembership_UntaggedMove(t *testing.T) {
	s := newTestSwitch(t)
	v10, v20 := s.VlanByTag(10), s.VlanByTag(20)

	if err := v20.SetPortMembership(1, Untagged); err != nil {
		t.Fatalf("SetPortMembership() failed: %v", err)
	}

	if got := v10.Membership(1); got != NotMember {
		t.Errorf("vlan 10 port 1 = %s, want none", got)
	}
	if got := v20.Membership(1); got != Untagged {
		t.Errorf("vlan 20 port 1 = %s, want untagged", got)
	}
	if got := s.Port(1).PVID(); got != 20 {
		t.Errorf("port 1 PVID = %d, want 20", got)
	}

	want := []string{
		"member port=1 vlan=20 untagged<-none",
		"pvid port=1 20<-10",
		"member port=1 vlan=10 none<-untagged",
	}
	if diff := cmp.Diff(want, summarize(s.Changes())); diff != "" {
		t.Errorf("Changes() mismatch (-want +got):\n%s", diff)
	}
}

func TestAddThenDeleteCancels(t *testing.T) {
	s := newTestSwitch(t)
	v, err := s.AddVlan(40)
	if err != nil {
		t.Fatalf("AddVlan() failed: %v", err)
	}
	v.SetName("new")
	mustNoErr(t, v.SetPortMembership(3, Tagged))

	if err := s.DeleteVlan(v); err != nil {
		t.Fatalf("DeleteVlan() failed: %v", err)
	}
	if got := s.Changes(); len(got) != 0 {
		t.Errorf("Changes() = %v, want empty", summarize(got))
	}
	if s.VlanByTag(40) != nil {
		t.Error("vlan 40 still present")
	}
	if got := len(s.Vlans()); got != 3 {
		t.Errorf("len(Vlans()) = %d, want 3", got)
	}
}

func TestDeleteAbsorbsEdits(t *testing.T) {
	s := newTestSwitch(t)
	v := s.VlanByTag(30)
	v.SetName("iot")
	mustNoErr(t, v.SetPortMembership(1, Tagged))
	s.Port(3).SetDescription("printer")

	if err := s.DeleteVlan(v); err != nil {
		t.Fatalf("DeleteVlan() failed: %v", err)
	}

	want := []string{`desc port=3 "printer"<-""`, "delete vlan=30"}
	if diff := cmp.Diff(want, summarize(s.Changes())); diff != "" {
		t.Errorf("Changes() mismatch (-want +got):\n%s", diff)
	}
	if v.Name() != "lab" {
		t.Errorf("deleted vlan name = %q, want restored %q", v.Name(), "lab")
	}
	if got := v.Membership(1); got != NotMember {
		t.Errorf("deleted vlan port 1 = %s, want restored none", got)
	}
}

func TestReAddAfterDeleteEqualsInPlaceEdit(t *testing.T) {
	inPlace := newTestSwitch(t)
	v := inPlace.VlanByTag(30)
	v.SetName("iot")
	mustNoErr(t, v.SetPortMembership(2, NotMember))
	mustNoErr(t, v.SetPortMembership(1, Tagged))

	reAdded := newTestSwitch(t)
	mustNoErr(t, reAdded.DeleteVlan(reAdded.VlanByTag(30)))
	nv, err := reAdded.AddVlan(30)
	if err != nil {
		t.Fatalf("AddVlan() failed: %v", err)
	}
	nv.SetName("iot")
	mustNoErr(t, nv.SetPortMembership(1, Tagged))
	mustNoErr(t, nv.SetPortMembership(4, Tagged))

	if diff := cmp.Diff(summarize(inPlace.Changes()), summarize(reAdded.Changes())); diff != "" {
		t.Errorf("re-added log differs from in-place log (-inplace +readded):\n%s", diff)
	}
	if nv.InternalID() != 3 {
		t.Errorf("re-added vlan internal id = %d, want 3", nv.InternalID())
	}
}

func TestReAddSynthesizesDifferences(t *testing.T) {
	s := newTestSwitch(t)
	mustNoErr(t, s.DeleteVlan(s.VlanByTag(30)))
	if _, err := s.AddVlan(30); err != nil {
		t.Fatalf("AddVlan() failed: %v", err)
	}

	want := []string{
		`name vlan=30 ""<-"lab"`,
		"member port=2 vlan=30 none<-tagged",
		"member port=4 vlan=30 none<-tagged",
	}
	if diff := cmp.Diff(want, summarize(s.Changes())); diff != "" {
		t.Errorf("Changes() mismatch (-want +got):\n%s", diff)
	}
}

func TestChangeString(t *testing.T) {
	s := newTestSwitch(t)
	v10 := s.VlanByTag(10)
	tests := []struct {
		change Change
		want   string
	}{
		{&PortVlanMembershipChange{Port: 3, Vlan: v10, New: Untagged, Old: NotMember}, "Adding port 3 to vlan 10 (untagged)"},
		{&PortVlanMembershipChange{Port: 3, Vlan: v10, New: NotMember, Old: Tagged}, "Removing port 3 from vlan 10"},
		{&PortVlanMembershipChange{Port: 3, Vlan: v10, New: Untagged, Old: Tagged}, "Changing port 3 in vlan 10 from tagged to untagged"},
		{&PortPVIDChange{Port: 1, New: 20, Old: 10}, "Changing PVID for port 1 to 20"},
		{&PortDescriptionChange{Port: 2, New: "uplink"}, "Changing port 2 description to: uplink"},
		{&VlanNameChange{Vlan: v10, New: "office"}, "Changing vlan 10 name to: office"},
		{&AddVlanChange{Vlan: v10}, "Adding vlan 10"},
		{&DeleteVlanChange{Vlan: v10}, "Removing vlan 10"},
	}
	for _, tt := range tests {
		if got := tt.change.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func mustNoErr(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
