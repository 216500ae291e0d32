package snmp

// SNMPv2-MIB system group scalars.
const (
	oidSysUpTime   = "1.3.6.1.2.1.1.3.0"
	oidSysContact  = "1.3.6.1.2.1.1.4.0"
	oidSysName     = "1.3.6.1.2.1.1.5.0"
	oidSysLocation = "1.3.6.1.2.1.1.6.0"
)

// IF-MIB interface tables, indexed by ifIndex.
const (
	oidIfAdminStatus = "1.3.6.1.2.1.2.2.1.7"
	oidIfOperStatus  = "1.3.6.1.2.1.2.2.1.8"
	oidIfName        = "1.3.6.1.2.1.31.1.1.1.1"
	oidIfHighSpeed   = "1.3.6.1.2.1.31.1.1.1.15"
	oidIfAlias       = "1.3.6.1.2.1.31.1.1.1.18"
)

// BRIDGE-MIB.
const (
	oidDot1dBaseBridgeAddress = "1.3.6.1.2.1.17.1.1.0"
	// Indexed by bridge port.
	oidDot1dBasePortIfIndex = "1.3.6.1.2.1.17.1.4.1.2"
)

// Q-BRIDGE-MIB. dot1qPvid is indexed by bridge port, the static VLAN
// table by VLAN tag.
const (
	oidDot1qPvid                    = "1.3.6.1.2.1.17.7.1.4.5.1.1"
	oidDot1qVlanStaticName          = "1.3.6.1.2.1.17.7.1.4.3.1.1"
	oidDot1qVlanStaticEgressPorts   = "1.3.6.1.2.1.17.7.1.4.3.1.2"
	oidDot1qVlanStaticUntaggedPorts = "1.3.6.1.2.1.17.7.1.4.3.1.4"
	oidDot1qVlanStaticRowStatus     = "1.3.6.1.2.1.17.7.1.4.3.1.5"
)

// ENTITY-MIB physical table, indexed by entPhysicalIndex.
const (
	oidEntPhysicalClass       = "1.3.6.1.2.1.47.1.1.1.1.5"
	oidEntPhysicalSoftwareRev = "1.3.6.1.2.1.47.1.1.1.1.10"
	oidEntPhysicalSerialNum   = "1.3.6.1.2.1.47.1.1.1.1.11"
	oidEntPhysicalModelName   = "1.3.6.1.2.1.47.1.1.1.1.13"
)

// entPhysicalClass value of the chassis entity.
const entClassChassis = 3

// RowStatus values.
const (
	rowCreateAndGo = 4
	rowDestroy     = 6
)

// ifAdminStatus and ifOperStatus values.
const (
	ifStatusUp         = 1
	ifStatusDown       = 2
	ifStatusNotPresent = 6
)

var ifOperStatusNames = map[int]string{
	1: "up",
	2: "down",
	3: "testing",
	4: "unknown",
	5: "dormant",
	6: "notPresent",
	7: "lowerLayerDown",
}

// oidNames labels OIDs in debug logs.
var oidNames = map[string]string{
	oidIfAlias:                      "ifAlias",
	oidDot1qPvid:                    "dot1qPvid",
	oidDot1qVlanStaticName:          "dot1qVlanStaticName",
	oidDot1qVlanStaticEgressPorts:   "dot1qVlanStaticEgressPorts",
	oidDot1qVlanStaticUntaggedPorts: "dot1qVlanStaticUntaggedPorts",
	oidDot1qVlanStaticRowStatus:     "dot1qVlanStaticRowStatus",
}
