// Package snmp edits switches through the standard bridge MIBs.
//
// It was written against the Netgear GS324T but only uses ENTITY-MIB,
// IF-MIB, BRIDGE-MIB and Q-BRIDGE-MIB objects, so other managed switches
// that implement static VLANs through Q-BRIDGE-MIB usually work too.
package snmp

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gosnmp/gosnmp"
	"github.com/sirupsen/logrus"

	"github.com/newtron-network/vlanadmin/pkg/config"
	"github.com/newtron-network/vlanadmin/pkg/device"
	"github.com/newtron-network/vlanadmin/pkg/switchmodel"
	"github.com/newtron-network/vlanadmin/pkg/util"
)

const defaultTimeout = 5 * time.Second

// pvidBatch bounds the varbinds of one PVID SET request.
const pvidBatch = 16

func init() {
	device.Register(config.ModelSNMP, open)
	device.Register(config.ModelGS324T, open)
}

// bridgePort ties a model port to the agent's bridge port and interface.
type bridgePort struct {
	bridge  int
	ifIndex int
}

// Backend edits a switch over SNMP. VLAN internal ids are the tags.
type Backend struct {
	name    string
	addr    string
	agent   agent
	closer  func() error
	log     *logrus.Entry
	product string

	ports []bridgePort
	// maxBridge sizes port bitmaps.
	maxBridge int
}

func open(ctx context.Context, t device.Target) (switchmodel.Backend, error) {
	g, err := newSession(t.Section, t.Password(), t.Timeout(defaultTimeout))
	if err != nil {
		return nil, err
	}
	if err := g.Connect(); err != nil {
		return nil, util.NewTransportError(t.Name, "SNMP connect", err)
	}
	b := NewBackend(t.Name, t.Section.Address, g)
	b.closer = g.Conn.Close
	return b, nil
}

// NewBackend wraps a connected agent session.
func NewBackend(name, addr string, a agent) *Backend {
	return &Backend{name: name, addr: addr, agent: a, log: util.WithSwitch(name)}
}

func (b *Backend) String() string {
	product := b.product
	if product == "" {
		product = "switch"
	}
	return product + " at " + b.addr
}

func (b *Backend) ReadState(ctx context.Context) (*switchmodel.State, error) {
	details, err := b.readDetails()
	if err != nil {
		return nil, err
	}
	ports, err := b.readPorts()
	if err != nil {
		return nil, err
	}
	vlans, err := b.readVlans()
	if err != nil {
		return nil, err
	}
	return &switchmodel.State{Details: details, Ports: ports, Vlans: vlans}, nil
}

func (b *Backend) readDetails() ([]switchmodel.Attribute, error) {
	scalars := []string{oidSysName, oidSysLocation, oidSysContact, oidSysUpTime, oidDot1dBaseBridgeAddress}
	b.log.Debugf("SNMP GET %d system scalars", len(scalars))
	pkt, err := b.agent.Get(scalars)
	if err != nil {
		return nil, util.NewTransportError(b.name, "SNMP GET system", err)
	}
	if err := packetError(pkt); err != nil {
		return nil, util.NewTransportError(b.name, "SNMP GET system", err)
	}
	vals := make(map[string]gosnmp.SnmpPDU, len(pkt.Variables))
	for _, pdu := range pkt.Variables {
		vals[strings.TrimPrefix(pdu.Name, ".")] = pdu
	}

	mac := ""
	if pdu, ok := vals[oidDot1dBaseBridgeAddress]; ok && present(pdu) {
		if mac, err = formatMAC(pduBytes(pdu)); err != nil {
			return nil, err
		}
	}

	var product, software, serial string
	classes, err := b.walk(oidEntPhysicalClass)
	if err != nil {
		return nil, err
	}
	for _, idx := range sortedIndexes(classes) {
		if pduInt(classes[idx]) != entClassChassis {
			continue
		}
		suffix := "." + strconv.Itoa(idx)
		pkt, err := b.agent.Get([]string{
			oidEntPhysicalModelName + suffix, oidEntPhysicalSoftwareRev + suffix, oidEntPhysicalSerialNum + suffix,
		})
		if err != nil {
			return nil, util.NewTransportError(b.name, "SNMP GET entPhysicalEntry", err)
		}
		if len(pkt.Variables) == 3 {
			product = pduString(pkt.Variables[0])
			software = pduString(pkt.Variables[1])
			serial = pduString(pkt.Variables[2])
		}
		break
	}
	b.product = product

	var uptime string
	if pdu, ok := vals[oidSysUpTime]; ok && present(pdu) {
		uptime = formatUptime(gosnmp.ToBigInt(pdu.Value).Uint64())
	}
	str := func(oid string) string {
		if pdu, ok := vals[oid]; ok && present(pdu) {
			return pduString(pdu)
		}
		return ""
	}

	return []switchmodel.Attribute{
		{Label: "Product", Value: product},
		{Label: "Software version", Value: software},
		{Label: "MAC address", Value: mac},
		{Label: "Serial number", Value: serial},
		{Label: "Hostname", Value: str(oidSysName)},
		{Label: "Location", Value: str(oidSysLocation)},
		{Label: "Contact", Value: str(oidSysContact)},
		{Label: "Uptime", Value: uptime},
	}, nil
}

// readPorts numbers bridge ports 1..N in bridge port order. Interfaces the
// agent reports as notPresent (unconfigured LAGs) are skipped.
func (b *Backend) readPorts() ([]switchmodel.PortState, error) {
	tables := make(map[string]map[int]gosnmp.SnmpPDU)
	for _, oid := range []string{
		oidDot1dBasePortIfIndex, oidIfName, oidIfAlias, oidIfHighSpeed,
		oidIfAdminStatus, oidIfOperStatus, oidDot1qPvid,
	} {
		t, err := b.walk(oid)
		if err != nil {
			return nil, err
		}
		tables[oid] = t
	}

	bridgeIf := tables[oidDot1dBasePortIfIndex]
	b.ports = b.ports[:0]
	b.maxBridge = 0
	var ports []switchmodel.PortState
	for _, bridge := range sortedIndexes(bridgeIf) {
		if bridge > b.maxBridge {
			b.maxBridge = bridge
		}
		ifIndex := pduInt(bridgeIf[bridge])
		oper := pduInt(tables[oidIfOperStatus][ifIndex])
		if oper == ifStatusNotPresent {
			b.log.Debugf("skipping bridge port %d (ifIndex %d): not present", bridge, ifIndex)
			continue
		}

		b.ports = append(b.ports, bridgePort{bridge: bridge, ifIndex: ifIndex})
		ports = append(ports, switchmodel.PortState{
			Number:      len(b.ports),
			Description: pduString(tables[oidIfAlias][ifIndex]),
			PVID:        pduInt(tables[oidDot1qPvid][bridge]),
			Info: switchmodel.PortInfo{
				Name:       pduString(tables[oidIfName][ifIndex]),
				IfIndex:    ifIndex,
				LinkStatus: linkStatus(oper, pduInt(tables[oidIfHighSpeed][ifIndex])),
				Enabled:    adminEnabled(pduInt(tables[oidIfAdminStatus][ifIndex])),
			},
		})
	}
	return ports, nil
}

func (b *Backend) readVlans() ([]switchmodel.VlanState, error) {
	names, err := b.walk(oidDot1qVlanStaticName)
	if err != nil {
		return nil, err
	}
	egress, err := b.walk(oidDot1qVlanStaticEgressPorts)
	if err != nil {
		return nil, err
	}
	untagged, err := b.walk(oidDot1qVlanStaticUntaggedPorts)
	if err != nil {
		return nil, err
	}

	var vlans []switchmodel.VlanState
	for _, tag := range sortedIndexes(names) {
		eg, un := pduBytes(egress[tag]), pduBytes(untagged[tag])
		members := make(map[int]switchmodel.Membership)
		for i, p := range b.ports {
			switch {
			case !portBit(eg, p.bridge):
			case portBit(un, p.bridge):
				members[i+1] = switchmodel.Untagged
			default:
				members[i+1] = switchmodel.Tagged
			}
		}
		vlans = append(vlans, switchmodel.VlanState{
			InternalID: tag,
			DotqID:     tag,
			Name:       pduString(names[tag]),
			Members:    members,
		})
	}
	return vlans, nil
}

// walk bulk-walks a single-index table into a map keyed by that index.
func (b *Backend) walk(oid string) (map[int]gosnmp.SnmpPDU, error) {
	b.log.Debugf("SNMP WALK %s", oid)
	pdus, err := b.agent.BulkWalkAll(oid)
	if err != nil {
		return nil, util.NewTransportError(b.name, "SNMP WALK "+oid, err)
	}
	out := make(map[int]gosnmp.SnmpPDU, len(pdus))
	prefix := oid + "."
	for _, pdu := range pdus {
		idx, err := strconv.Atoi(strings.TrimPrefix(strings.TrimPrefix(pdu.Name, "."), prefix))
		if err != nil {
			b.log.Debugf("ignoring unexpected OID %s under %s", pdu.Name, oid)
			continue
		}
		out[idx] = pdu
	}
	return out, nil
}

func sortedIndexes(m map[int]gosnmp.SnmpPDU) []int {
	idx := make([]int, 0, len(m))
	for i := range m {
		idx = append(idx, i)
	}
	sort.Ints(idx)
	return idx
}

func packetError(pkt *gosnmp.SnmpPacket) error {
	if pkt != nil && pkt.Error != gosnmp.NoError {
		return fmt.Errorf("agent returned %v (index %d)", pkt.Error, pkt.ErrorIndex)
	}
	return nil
}

// set issues one SET request.
func (b *Backend) set(pdus ...gosnmp.SnmpPDU) error {
	names := make([]string, len(pdus))
	for i, pdu := range pdus {
		names[i] = describeOID(pdu.Name)
		b.log.Debugf("SNMP SET %s = %v", names[i], pdu.Value)
	}
	op := "SNMP SET " + strings.Join(names, ", ")
	pkt, err := b.agent.Set(pdus)
	if err != nil {
		return util.NewTransportError(b.name, op, err)
	}
	return util.NewTransportError(b.name, op, packetError(pkt))
}

// describeOID shortens a known column OID to name.index.
func describeOID(oid string) string {
	if i := strings.LastIndex(oid, "."); i > 0 {
		if name, ok := oidNames[oid[:i]]; ok {
			return name + oid[i:]
		}
	}
	return oid
}

func octets(oid string, index int, value []byte) gosnmp.SnmpPDU {
	return gosnmp.SnmpPDU{Name: oid + "." + strconv.Itoa(index), Type: gosnmp.OctetString, Value: value}
}

func integer(oid string, index, value int) gosnmp.SnmpPDU {
	return gosnmp.SnmpPDU{Name: oid + "." + strconv.Itoa(index), Type: gosnmp.Integer, Value: value}
}

func (b *Backend) port(num int) (bridgePort, error) {
	if num < 1 || num > len(b.ports) {
		return bridgePort{}, fmt.Errorf("%w: port %d", util.ErrNotFound, num)
	}
	return b.ports[num-1], nil
}

func (b *Backend) CommitPortDescription(ctx context.Context, port *switchmodel.Port, desc string) error {
	p, err := b.port(port.Number())
	if err != nil {
		return err
	}
	return b.set(octets(oidIfAlias, p.ifIndex, []byte(desc)))
}

func (b *Backend) CommitVlanDescription(ctx context.Context, vlan *switchmodel.Vlan, name string) error {
	return b.set(octets(oidDot1qVlanStaticName, vlan.DotqID(), []byte(name)))
}

// CommitVlanMemberships writes the egress and untagged bitmaps in a single
// request so the agent never sees one without the other.
func (b *Backend) CommitVlanMemberships(ctx context.Context, vlan *switchmodel.Vlan, memberships []switchmodel.Membership) error {
	if len(memberships) != len(b.ports) {
		return fmt.Errorf("vlan %d: %d memberships for %d ports", vlan.DotqID(), len(memberships), len(b.ports))
	}
	egress, untagged := b.bitmaps(memberships)
	tag := vlan.DotqID()
	return b.set(
		octets(oidDot1qVlanStaticEgressPorts, tag, egress),
		octets(oidDot1qVlanStaticUntaggedPorts, tag, untagged),
	)
}

func (b *Backend) bitmaps(memberships []switchmodel.Membership) (egress, untagged []byte) {
	egress = make([]byte, bitmapLen(b.maxBridge))
	untagged = make([]byte, bitmapLen(b.maxBridge))
	for i, m := range memberships {
		bridge := b.ports[i].bridge
		switch m {
		case switchmodel.Untagged:
			setPortBit(untagged, bridge)
			setPortBit(egress, bridge)
		case switchmodel.Tagged:
			setPortBit(egress, bridge)
		}
	}
	return egress, untagged
}

func (b *Backend) CommitPVIDs(ctx context.Context, pvids []int) error {
	if len(pvids) != len(b.ports) {
		return fmt.Errorf("%d PVIDs for %d ports", len(pvids), len(b.ports))
	}
	for start := 0; start < len(pvids); start += pvidBatch {
		end := start + pvidBatch
		if end > len(pvids) {
			end = len(pvids)
		}
		pdus := make([]gosnmp.SnmpPDU, 0, end-start)
		for i := start; i < end; i++ {
			pdus = append(pdus, integer(oidDot1qPvid, b.ports[i].bridge, pvids[i]))
		}
		if err := b.set(pdus...); err != nil {
			return err
		}
	}
	return nil
}

func (b *Backend) CommitVlanDelete(ctx context.Context, vlan *switchmodel.Vlan) error {
	return b.set(integer(oidDot1qVlanStaticRowStatus, vlan.DotqID(), rowDestroy))
}

// CommitVlanAdd creates the static VLAN row; memberships follow.
func (b *Backend) CommitVlanAdd(ctx context.Context, vlan *switchmodel.Vlan) error {
	return b.set(integer(oidDot1qVlanStaticRowStatus, vlan.DotqID(), rowCreateAndGo))
}

func (b *Backend) Close(ctx context.Context) error {
	if b.closer == nil {
		return nil
	}
	return b.closer()
}
