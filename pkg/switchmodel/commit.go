package switchmodel

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/newtron-network/vlanadmin/pkg/util"
)

type membershipEdit struct {
	to, from Membership
}

// vlanPorts maps VLANs to port lists, iterating in first-insertion order.
type vlanPorts struct {
	order []*Vlan
	ports map[*Vlan][]int
}

func (vp *vlanPorts) add(v *Vlan, port int) {
	if vp.ports == nil {
		vp.ports = make(map[*Vlan][]int)
	}
	if _, ok := vp.ports[v]; !ok {
		vp.order = append(vp.order, v)
	}
	vp.ports[v] = append(vp.ports[v], port)
}

func (vp *vlanPorts) has(v *Vlan) bool {
	_, ok := vp.ports[v]
	return ok
}

func (vp *vlanPorts) empty() bool { return len(vp.order) == 0 }

// membershipGroups holds the pending membership edits per VLAN, iterating in
// first-insertion order. Removed VLANs are skipped.
type membershipGroups struct {
	order []*Vlan
	edits map[*Vlan]map[int]membershipEdit
}

func (g *membershipGroups) ensure(v *Vlan) map[int]membershipEdit {
	if g.edits == nil {
		g.edits = make(map[*Vlan]map[int]membershipEdit)
	}
	e, ok := g.edits[v]
	if !ok {
		e = make(map[int]membershipEdit)
		g.edits[v] = e
		g.order = append(g.order, v)
	}
	return e
}

func (g *membershipGroups) remove(v *Vlan) {
	delete(g.edits, v)
}

func (g *membershipGroups) remaining() []*Vlan {
	var out []*Vlan
	for _, v := range g.order {
		if _, ok := g.edits[v]; ok {
			out = append(out, v)
		}
	}
	return out
}

// commitPlan is the change log partitioned by kind. Building it does no I/O.
type commitPlan struct {
	// immediate holds description and name changes, in log order.
	immediate []Change
	groups    membershipGroups
	// firstPass lists ports that must join a VLAN before PVIDs move;
	// secondPass lists ports that may only leave a VLAN afterwards.
	firstPass  vlanPorts
	secondPass vlanPorts
	deletes    []*Vlan
}

func (s *Switch) planCommit() (*commitPlan, error) {
	p := &commitPlan{}
	for _, c := range s.changes {
		switch c := c.(type) {
		case *PortDescriptionChange, *VlanNameChange:
			p.immediate = append(p.immediate, c)
		case *PortPVIDChange:
			target := s.dotq[c.New]
			if target == nil {
				return nil, fmt.Errorf("PVID of port %d: %w: vlan %d", c.Port, util.ErrNotFound, c.New)
			}
			p.firstPass.add(target, c.Port)
			// A deleted old VLAN has nothing left to clean up.
			if old := s.dotq[c.Old]; old != nil {
				p.secondPass.add(old, c.Port)
			}
		case *PortVlanMembershipChange:
			p.groups.ensure(c.Vlan)[c.Port] = membershipEdit{to: c.New, from: c.Old}
		case *AddVlanChange:
			p.groups.ensure(c.Vlan)
		case *DeleteVlanChange:
			p.deletes = append(p.deletes, c.Vlan)
		default:
			panic(fmt.Sprintf("switchmodel: unknown change type %T", c))
		}
	}
	return p, nil
}

// Commit writes every pending change to the device. Memberships are written
// in two passes around a single PVID write so that no port's PVID ever
// names a VLAN the port is not a member of. On failure the log is left
// intact for a retry; writes already issued are not rolled back.
func (s *Switch) Commit(ctx context.Context) (err error) {
	if len(s.changes) == 0 {
		return util.ErrNothingToCommit
	}

	ctx, span := tracer.Start(ctx, "switchmodel.Commit", trace.WithAttributes(
		attribute.String(switchNameKey, s.name),
		attribute.Int("changes", len(s.changes)),
	))
	defer span.End()

	start := time.Now()
	defer func() {
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
			countCommitFailure(ctx, s.name)
		}
	}()

	plan, err := s.planCommit()
	if err != nil {
		return err
	}

	s.setStatus("Committing changes...")
	if err := s.runCommit(ctx, plan); err != nil {
		s.setStatus("")
		s.log.Warnf("commit aborted: %v", err)
		return err
	}
	recordCommitDuration(ctx, s.name, time.Since(start))

	s.changes = nil
	s.events.emit(Event{Kind: ChangelistChanged})
	s.setStatus("Finished committing changes...")
	if s.finishDwell > 0 {
		t := time.NewTimer(s.finishDwell)
		select {
		case <-t.C:
		case <-ctx.Done():
			t.Stop()
		}
	}
	s.setStatus("")
	return nil
}

func (s *Switch) runCommit(ctx context.Context, plan *commitPlan) error {
	// Names of VLANs the device does not know yet are written once the
	// membership passes have created them.
	var newVlanNames []*VlanNameChange
	for _, c := range plan.immediate {
		switch c := c.(type) {
		case *PortDescriptionChange:
			s.setStatus(fmt.Sprintf("Committing port %d description...", c.Port))
			if err := s.backend.CommitPortDescription(ctx, s.Port(c.Port), c.New); err != nil {
				return fmt.Errorf("committing port %d description: %w", c.Port, err)
			}
			countWrite(ctx, s.name)
		case *VlanNameChange:
			if c.Vlan.internalID == 0 {
				newVlanNames = append(newVlanNames, c)
				continue
			}
			if err := s.commitVlanName(ctx, c); err != nil {
				return err
			}
		}
	}

	for _, v := range plan.firstPass.order {
		if plan.secondPass.has(v) {
			only := make(map[int]bool)
			for _, port := range plan.firstPass.ports[v] {
				only[port] = true
			}
			if err := s.commitMemberships(ctx, plan, v, only); err != nil {
				return err
			}
			continue
		}
		if err := s.commitMemberships(ctx, plan, v, nil); err != nil {
			return err
		}
		plan.groups.remove(v)
	}

	if !plan.firstPass.empty() || !plan.secondPass.empty() {
		// Read the fields directly: the setters would queue new changes.
		pvids := make([]int, len(s.ports))
		for i, p := range s.ports {
			pvids[i] = p.pvid
		}
		s.setStatus("Committing PVID settings...")
		if err := s.backend.CommitPVIDs(ctx, pvids); err != nil {
			return fmt.Errorf("committing PVIDs: %w", err)
		}
		countWrite(ctx, s.name)
	}

	for _, v := range plan.groups.remaining() {
		if err := s.commitMemberships(ctx, plan, v, nil); err != nil {
			return err
		}
	}

	for _, c := range newVlanNames {
		if err := s.commitVlanName(ctx, c); err != nil {
			return err
		}
	}

	for _, v := range plan.deletes {
		s.setStatus(fmt.Sprintf("Deleting vlan %d...", v.dotqID))
		if err := s.backend.CommitVlanDelete(ctx, v); err != nil {
			return fmt.Errorf("deleting vlan %d: %w", v.dotqID, err)
		}
		countWrite(ctx, s.name)
	}
	if len(plan.deletes) > 0 {
		s.renumberVlans()
	}

	if f, ok := s.backend.(CommitFinisher); ok {
		if err := f.FinishCommit(ctx); err != nil {
			return fmt.Errorf("finishing commit: %w", err)
		}
	}
	return nil
}

// renumberVlans closes the gaps deletions leave in the device's VLAN
// handles. Surviving VLANs keep their relative device order, which can
// differ from the display order when a tag was deleted and re-added.
func (s *Switch) renumberVlans() {
	byHandle := slices.Clone(s.vlans)
	slices.SortStableFunc(byHandle, func(a, b *Vlan) int {
		return cmp.Compare(a.internalID, b.internalID)
	})
	for i, v := range byHandle {
		v.internalID = i + 1
	}
	s.maxInternalID = len(byHandle)
}

func (s *Switch) commitVlanName(ctx context.Context, c *VlanNameChange) error {
	s.setStatus(fmt.Sprintf("Committing vlan %d name...", c.Vlan.dotqID))
	if err := s.backend.CommitVlanDescription(ctx, c.Vlan, c.New); err != nil {
		return fmt.Errorf("committing vlan %d name: %w", c.Vlan.dotqID, err)
	}
	countWrite(ctx, s.name)
	return nil
}

// commitMemberships writes the full membership list of v. Ports with a
// pending edit carry their new value when only is nil or contains them,
// and their old value otherwise. A VLAN without an internal id is created
// by this write.
func (s *Switch) commitMemberships(ctx context.Context, plan *commitPlan, v *Vlan, only map[int]bool) error {
	edits := plan.groups.ensure(v)
	list := make([]Membership, len(s.ports))
	for i, p := range s.ports {
		e, changed := edits[p.num]
		switch {
		case !changed:
			list[i] = v.ports[p.num]
		case only != nil && !only[p.num]:
			list[i] = e.from
		default:
			list[i] = e.to
		}
	}

	if v.internalID != 0 {
		s.setStatus(fmt.Sprintf("Committing vlan %d memberships...", v.dotqID))
		if err := s.backend.CommitVlanMemberships(ctx, v, list); err != nil {
			return fmt.Errorf("committing vlan %d memberships: %w", v.dotqID, err)
		}
		countWrite(ctx, s.name)
		return nil
	}

	s.setStatus(fmt.Sprintf("Creating vlan %d...", v.dotqID))
	if creator, ok := s.backend.(VlanCreator); ok && !v.created {
		if err := creator.CommitVlanAdd(ctx, v); err != nil {
			return fmt.Errorf("creating vlan %d: %w", v.dotqID, err)
		}
		countWrite(ctx, s.name)
		v.created = true
	}

	// The write addresses the VLAN by the handle the device will give it.
	// The handle is only claimed once the device accepted the write.
	v.internalID = s.maxInternalID + 1
	if err := s.backend.CommitVlanMemberships(ctx, v, list); err != nil {
		v.internalID = 0
		return fmt.Errorf("committing vlan %d memberships: %w", v.dotqID, err)
	}
	s.maxInternalID = v.internalID
	countWrite(ctx, s.name)
	return nil
}
