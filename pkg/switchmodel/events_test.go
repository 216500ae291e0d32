package switchmodel

import "testing"

func TestEvents_SubscribeUnsubscribe(t *testing.T) {
	s := newTestSwitch(t)

	var count int
	id := s.Events().Subscribe(ChangelistChanged, func(Event) { count++ })

	s.Port(1).SetDescription("a")
	s.Port(1).SetDescription("")
	if count != 2 {
		t.Errorf("ChangelistChanged count = %d, want 2 (emitted even when changes cancel)", count)
	}

	if !s.Events().Unsubscribe(id) {
		t.Fatal("Unsubscribe() = false, want true")
	}
	if s.Events().Unsubscribe(id) {
		t.Error("second Unsubscribe() = true, want false")
	}
	s.Port(1).SetDescription("b")
	if count != 2 {
		t.Errorf("handler ran after Unsubscribe (count %d)", count)
	}
}

func TestEvents_Memberships(t *testing.T) {
	s := newTestSwitch(t)
	v := s.VlanByTag(30)

	var got []Event
	v.Events().Subscribe(MembershipsChanged, func(ev Event) { got = append(got, ev) })
	var details int
	s.Port(1).Events().Subscribe(DetailsChanged, func(Event) { details++ })

	mustNoErr(t, v.SetPortMembership(1, Untagged))

	if len(got) != 1 {
		t.Fatalf("got %d MembershipsChanged events, want 1", len(got))
	}
	if got[0].Port.Number() != 1 || got[0].Membership != Untagged || got[0].Vlan != v {
		t.Errorf("event = port %d %s, want port 1 untagged", got[0].Port.Number(), got[0].Membership)
	}
	if details != 1 {
		t.Errorf("port DetailsChanged count = %d, want 1 (PVID moved)", details)
	}
}

func TestEvents_OrderAndUnsubscribeDuringDispatch(t *testing.T) {
	var e Events
	var order []int
	var second SubscriptionID
	e.Subscribe(StatusChanged, func(Event) {
		order = append(order, 1)
		e.Unsubscribe(second)
	})
	second = e.Subscribe(StatusChanged, func(Event) { order = append(order, 2) })
	e.Subscribe(VlanlistChanged, func(Event) { order = append(order, 3) })

	e.emit(Event{Kind: StatusChanged})
	e.emit(Event{Kind: StatusChanged})

	want := []int{1, 2, 1}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}
