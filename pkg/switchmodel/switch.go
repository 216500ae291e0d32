// Package switchmodel is the in-memory model of a managed switch: ports,
// VLANs, the log of pending changes, and the scheduler that commits them.
package switchmodel

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/newtron-network/vlanadmin/pkg/util"
)

const defaultFinishDwell = time.Second

// Option configures a Switch.
type Option func(*Switch)

// WithFinishDwell sets how long the "finished" status stays up after a
// successful commit. Zero disables the pause.
func WithFinishDwell(d time.Duration) Option {
	return func(s *Switch) { s.finishDwell = d }
}

// Switch is the root aggregate. Every edit of a port or VLAN goes through
// the switch's change log.
type Switch struct {
	name    string
	backend Backend

	ports         []*Port
	vlans         []*Vlan
	dotq          map[int]*Vlan
	changes       []Change
	maxInternalID int
	details       []Attribute

	events      Events
	finishDwell time.Duration
	log         *logrus.Entry
}

// New creates an empty switch bound to backend. Call Reload to populate it.
func New(name string, backend Backend, opts ...Option) *Switch {
	s := &Switch{
		name:        name,
		backend:     backend,
		dotq:        make(map[int]*Vlan),
		finishDwell: defaultFinishDwell,
		log:         util.WithSwitch(name),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Switch) Name() string { return s.name }
func (s *Switch) Backend() Backend { return s.backend }
func (s *Switch) MaxInternalID() int { return s.maxInternalID }

// Events returns the switch publisher (ChangelistChanged, DetailsChanged,
// PortlistChanged, VlanlistChanged, StatusChanged).
func (s *Switch) Events() *Events { return &s.events }

// Details returns the read-only device attributes from the last reload.
func (s *Switch) Details() []Attribute {
	return append([]Attribute(nil), s.details...)
}

// Ports returns the ports in port order.
func (s *Switch) Ports() []*Port {
	return append([]*Port(nil), s.ports...)
}

// Port returns the port with the given number, or nil.
func (s *Switch) Port(num int) *Port {
	if num < 1 || num > len(s.ports) {
		return nil
	}
	return s.ports[num-1]
}

// Vlans returns the VLANs in display order, pending additions last.
func (s *Switch) Vlans() []*Vlan {
	return append([]*Vlan(nil), s.vlans...)
}

// VlanByTag returns the VLAN with the given 802.1Q tag, or nil.
func (s *Switch) VlanByTag(tag int) *Vlan {
	return s.dotq[tag]
}

// Changes returns a copy of the pending change log, oldest first.
func (s *Switch) Changes() []Change {
	return append([]Change(nil), s.changes...)
}

// HasChanges reports whether any change is pending.
func (s *Switch) HasChanges() bool { return len(s.changes) > 0 }

// QueueChange adds c to the change log. c is merged against every pending
// entry, newest first, until it cancels or is absorbed; replacement entries
// take the position of the entry they replace.
func (s *Switch) QueueChange(c Change) {
	merged := make([]Change, 0, len(s.changes)+1)
	for i := len(s.changes) - 1; i >= 0; i-- {
		older := s.changes[i]
		if c == nil {
			merged = append(merged, older)
			continue
		}
		var repl []Change
		c, repl = c.mergeWith(older)
		for j := len(repl) - 1; j >= 0; j-- {
			merged = append(merged, repl[j])
		}
	}
	for i, j := 0, len(merged)-1; i < j; i, j = i+1, j-1 {
		merged[i], merged[j] = merged[j], merged[i]
	}
	if c != nil {
		merged = append(merged, c)
	}
	s.changes = merged
	s.events.emit(Event{Kind: ChangelistChanged})
}

// DiscardChanges drops every pending change. The in-memory entities keep
// their edited values; Reload to get back in sync with the device.
func (s *Switch) DiscardChanges() {
	s.changes = nil
	s.events.emit(Event{Kind: ChangelistChanged})
}

// AddVlan creates a VLAN with the given tag. Every port starts as a
// non-member.
func (s *Switch) AddVlan(dotqID int) (*Vlan, error) {
	if err := util.ValidateVLANID(dotqID); err != nil {
		return nil, err
	}
	resource := fmt.Sprintf("vlan %d", dotqID)
	if s.dotq[dotqID] != nil {
		return nil, util.NewInvariantError("add", resource, "tag already in use", "")
	}

	v := &Vlan{sw: s, dotqID: dotqID, ports: make(map[int]Membership, len(s.ports))}
	for _, p := range s.ports {
		v.ports[p.num] = NotMember
	}

	for _, c := range s.changes {
		if d, ok := c.(*DeleteVlanChange); ok && d.Vlan.dotqID == dotqID && !d.Vlan.samePorts(v) {
			return nil, util.NewInvariantError("add", resource,
				"pending deletion covers a different port set", "commit or discard the deletion first")
		}
	}

	s.vlans = append(s.vlans, v)
	s.dotq[dotqID] = v
	s.QueueChange(&AddVlanChange{Vlan: v})
	s.events.emit(Event{Kind: VlanlistChanged})
	return v, nil
}

// DeleteVlan removes v. It is refused while any port's PVID still points at
// the VLAN.
func (s *Switch) DeleteVlan(v *Vlan) error {
	if v == nil || s.dotq[v.dotqID] != v {
		return fmt.Errorf("%w: vlan not on switch %s", util.ErrNotFound, s.name)
	}

	var blocking []int
	for _, p := range s.ports {
		if p.pvid == v.dotqID {
			blocking = append(blocking, p.num)
		}
	}
	if len(blocking) > 0 {
		return util.NewInvariantError("delete", v.String(), "port PVIDs still reference it",
			"ports "+util.FormatList(blocking))
	}

	for i, other := range s.vlans {
		if other == v {
			s.vlans = append(s.vlans[:i:i], s.vlans[i+1:]...)
			break
		}
	}
	delete(s.dotq, v.dotqID)
	s.QueueChange(&DeleteVlanChange{Vlan: v})
	s.events.emit(Event{Kind: VlanlistChanged})
	return nil
}

// Reload replaces the model with the device's current state. It refuses to
// run while changes are pending.
func (s *Switch) Reload(ctx context.Context) error {
	if len(s.changes) > 0 {
		return fmt.Errorf("reload %s: %w", s.name, util.ErrPendingChanges)
	}

	s.setStatus("Retrieving switch status...")
	defer s.setStatus("")

	st, err := s.backend.ReadState(ctx)
	if err != nil {
		return fmt.Errorf("reading %s: %w", s.name, err)
	}
	if err := st.Validate(); err != nil {
		return fmt.Errorf("state of %s: %w", s.name, err)
	}

	s.details = append([]Attribute(nil), st.Details...)
	s.ports = make([]*Port, len(st.Ports))
	for i, ps := range st.Ports {
		s.ports[i] = &Port{sw: s, num: ps.Number, description: ps.Description, pvid: ps.PVID, info: ps.Info}
	}

	s.vlans = make([]*Vlan, 0, len(st.Vlans))
	s.dotq = make(map[int]*Vlan, len(st.Vlans))
	s.maxInternalID = 0
	for _, vs := range st.Vlans {
		v := &Vlan{sw: s, internalID: vs.InternalID, dotqID: vs.DotqID, name: vs.Name,
			ports: make(map[int]Membership, len(s.ports))}
		for _, p := range s.ports {
			v.ports[p.num] = vs.Members[p.num]
		}
		s.vlans = append(s.vlans, v)
		s.dotq[v.dotqID] = v
		if v.internalID > s.maxInternalID {
			s.maxInternalID = v.internalID
		}
	}
	s.checkPVIDs()

	s.log.Debugf("loaded %d ports, %d vlans", len(s.ports), len(s.vlans))
	s.events.emit(Event{Kind: DetailsChanged})
	s.events.emit(Event{Kind: PortlistChanged})
	s.events.emit(Event{Kind: VlanlistChanged})
	return nil
}

// checkPVIDs warns about ports whose PVID does not name a VLAN the port
// belongs to. Devices accept such states, so they are only reported.
func (s *Switch) checkPVIDs() {
	for _, p := range s.ports {
		if p.pvid == 0 {
			continue
		}
		v := s.dotq[p.pvid]
		switch {
		case v == nil:
			s.log.Warnf("port %d: PVID %d names no vlan", p.num, p.pvid)
		case v.ports[p.num] == NotMember:
			s.log.Warnf("port %d: PVID %d names a vlan the port is not a member of", p.num, p.pvid)
		}
	}
}

func (s *Switch) setStatus(msg string) {
	if msg != "" {
		s.log.Debug(msg)
	}
	s.events.emit(Event{Kind: StatusChanged, Status: msg})
}
