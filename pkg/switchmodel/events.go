package switchmodel

// EventKind identifies a notification emitted by the model.
type EventKind int

const (
	ChangelistChanged EventKind = iota
	DetailsChanged
	MembershipsChanged
	PortlistChanged
	VlanlistChanged
	StatusChanged
)

var eventKindNames = map[EventKind]string{
	ChangelistChanged:  "changelist_changed",
	DetailsChanged:     "details_changed",
	MembershipsChanged: "memberships_changed",
	PortlistChanged:    "portlist_changed",
	VlanlistChanged:    "vlanlist_changed",
	StatusChanged:      "status_changed",
}

func (k EventKind) String() string {
	if name, ok := eventKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Event carries the payload of a notification. Only the fields relevant to
// Kind are set: Port and/or Vlan name the entity whose details or
// memberships changed, Membership is the new value for MembershipsChanged,
// and Status is the message for StatusChanged (empty clears the status).
type Event struct {
	Kind       EventKind
	Port       *Port
	Vlan       *Vlan
	Membership Membership
	Status     string
}

// Handler receives events on the goroutine that caused them.
type Handler func(Event)

// SubscriptionID identifies a subscription for Unsubscribe.
type SubscriptionID uint64

type subscription struct {
	id   SubscriptionID
	kind EventKind
	fn   Handler
}

// Events is a per-entity publisher. Handlers run synchronously, in
// subscription order. The zero value is ready to use.
type Events struct {
	nextID SubscriptionID
	subs   []subscription
}

// Subscribe registers fn for events of the given kind.
func (e *Events) Subscribe(kind EventKind, fn Handler) SubscriptionID {
	e.nextID++
	e.subs = append(e.subs, subscription{id: e.nextID, kind: kind, fn: fn})
	return e.nextID
}

// Unsubscribe removes a subscription. It reports whether id was registered.
func (e *Events) Unsubscribe(id SubscriptionID) bool {
	for i, s := range e.subs {
		if s.id == id {
			e.subs = append(e.subs[:i:i], e.subs[i+1:]...)
			return true
		}
	}
	return false
}

func (e *Events) emit(ev Event) {
	// Handlers may unsubscribe while we dispatch.
	subs := make([]subscription, len(e.subs))
	copy(subs, e.subs)
	for _, s := range subs {
		if s.kind == ev.Kind {
			s.fn(ev)
		}
	}
}
