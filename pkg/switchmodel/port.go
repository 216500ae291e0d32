package switchmodel

import (
	"fmt"

	"github.com/newtron-network/vlanadmin/pkg/util"
)

// PortInfo holds the read-only attributes a backend reports for a port.
// The model passes them through untouched.
type PortInfo struct {
	Name         string
	IfIndex      int
	Speed        string
	SpeedSetting string
	FlowControl  string
	LinkStatus   string
	Enabled      *bool
}

// Port is a physical switch port, identified by its 1-based number.
type Port struct {
	sw          *Switch
	num         int
	description string
	pvid        int
	info        PortInfo
	events      Events
}

func (p *Port) Number() int { return p.num }
func (p *Port) Description() string { return p.description }
func (p *Port) Info() PortInfo { return p.info }

// PVID returns the tag of the port's PVID, or 0 when unset.
func (p *Port) PVID() int { return p.pvid }

// Up reports whether the link is anything other than down.
func (p *Port) Up() bool { return p.info.LinkStatus != "Down" }

// Events returns the port's publisher (DetailsChanged).
func (p *Port) Events() *Events { return &p.events }

func (p *Port) String() string { return fmt.Sprintf("port %d", p.num) }

// SetDescription queues a description change when desc differs.
func (p *Port) SetDescription(desc string) {
	if desc == p.description {
		return
	}
	p.sw.QueueChange(&PortDescriptionChange{Port: p.num, New: desc, Old: p.description})
	p.description = desc
	p.events.emit(Event{Kind: DetailsChanged, Port: p})
}

// SetPVID points the port's PVID at the VLAN with the given tag.
func (p *Port) SetPVID(tag int) error {
	if p.sw.VlanByTag(tag) == nil {
		return fmt.Errorf("%w: vlan %d", util.ErrNotFound, tag)
	}
	p.setPVID(tag)
	return nil
}

func (p *Port) setPVID(tag int) {
	if tag == p.pvid {
		return
	}
	p.sw.QueueChange(&PortPVIDChange{Port: p.num, New: tag, Old: p.pvid})
	p.pvid = tag
	p.events.emit(Event{Kind: DetailsChanged, Port: p})
}
