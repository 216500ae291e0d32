package sonic

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/newtron-network/vlanadmin/pkg/switchmodel"
	"github.com/newtron-network/vlanadmin/pkg/util"
)

var metadataLabels = []struct{ field, label string }{
	{"hostname", "Hostname"},
	{"platform", "Platform"},
	{"hwsku", "HwSKU"},
	{"mac", "MAC address"},
	{"type", "Type"},
}

// vlanKey returns the VLAN table key of a tag.
func vlanKey(tag int) string { return fmt.Sprintf("Vlan%d", tag) }

// parseVlanKey extracts the tag from "Vlan<id>".
func parseVlanKey(key string) (int, bool) {
	if !strings.HasPrefix(key, "Vlan") {
		return 0, false
	}
	n, err := strconv.Atoi(key[len("Vlan"):])
	return n, err == nil
}

// orderPorts sorts port names by their PORT "index" field, then by the
// trailing number of the name. Port N of the model is element N-1.
func orderPorts(ports map[string]PortEntry) []string {
	names := make([]string, 0, len(ports))
	for name := range ports {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		a, b := names[i], names[j]
		ia, erra := strconv.Atoi(ports[a].Index)
		ib, errb := strconv.Atoi(ports[b].Index)
		switch {
		case erra == nil && errb == nil && ia != ib:
			return ia < ib
		case erra == nil && errb != nil:
			return true
		case erra != nil && errb == nil:
			return false
		}
		na, nb := trailingNumber(a), trailingNumber(b)
		if na != nb {
			return na < nb
		}
		return a < b
	})
	return names
}

func trailingNumber(s string) int {
	i := len(s)
	for i > 0 && s[i-1] >= '0' && s[i-1] <= '9' {
		i--
	}
	n, err := strconv.Atoi(s[i:])
	if err != nil {
		return -1
	}
	return n
}

// speedLabel renders a SONiC speed in Mb/s ("100000") as "100G".
func speedLabel(mbps string) string {
	n, err := strconv.Atoi(mbps)
	if err != nil || n <= 0 {
		return mbps
	}
	if n >= 1000 && n%1000 == 0 {
		return fmt.Sprintf("%dG", n/1000)
	}
	return fmt.Sprintf("%dM", n)
}

func linkStatus(st PortStateEntry, ok bool, configured string) string {
	if !ok {
		return ""
	}
	switch st.OperStatus {
	case "up":
		speed := st.Speed
		if speed == "" {
			speed = configured
		}
		if speed == "" {
			return "Up"
		}
		return speedLabel(speed)
	case "down":
		return "Down"
	case "":
		return ""
	default:
		return "Other: " + st.OperStatus
	}
}

func adminEnabled(status string) *bool {
	var b bool
	switch status {
	case "up":
		b = true
	case "down":
		b = false
	default:
		return nil
	}
	return &b
}

func parseTaggingMode(mode string) switchmodel.Membership {
	if mode == "untagged" {
		return switchmodel.Untagged
	}
	return switchmodel.Tagged
}

func taggingMode(m switchmodel.Membership) string {
	if m == switchmodel.Untagged {
		return "untagged"
	}
	return "tagged"
}

// buildState converts CONFIG_DB and STATE_DB contents into a model
// snapshot. It also returns the port names in model order. Members on
// interfaces other than physical ports (PortChannels) are skipped.
// SONiC has no separate PVID: a port's PVID is the tag of its untagged
// VLAN, or 0 when it has none.
func buildState(db *ConfigDB, states map[string]PortStateEntry) (*switchmodel.State, []string) {
	st := &switchmodel.State{}

	for _, m := range metadataLabels {
		if v := db.Metadata[m.field]; v != "" {
			st.Details = append(st.Details, switchmodel.Attribute{Label: m.label, Value: v})
		}
	}

	names := orderPorts(db.Port)
	numbers := make(map[string]int, len(names))
	for i, name := range names {
		numbers[name] = i + 1
		entry := db.Port[name]
		state, ok := states[name]
		st.Ports = append(st.Ports, switchmodel.PortState{
			Number:      i + 1,
			Description: entry.Description,
			Info: switchmodel.PortInfo{
				Name:         name,
				Speed:        speedLabel(entry.Speed),
				SpeedSetting: entry.Speed,
				LinkStatus:   linkStatus(state, ok, entry.Speed),
				Enabled:      adminEnabled(entry.AdminStatus),
			},
		})
	}

	byTag := make(map[int]*switchmodel.VlanState)
	var tags []int
	for key, entry := range db.VLAN {
		tag, err := strconv.Atoi(entry.VLANID)
		if err != nil {
			var ok bool
			if tag, ok = parseVlanKey(key); !ok {
				util.Warnf("sonic: skipping VLAN %q without a usable vlanid", key)
				continue
			}
		}
		byTag[tag] = &switchmodel.VlanState{
			InternalID: tag,
			DotqID:     tag,
			Name:       entry.Description,
			Members:    make(map[int]switchmodel.Membership),
		}
		tags = append(tags, tag)
	}
	sort.Ints(tags)

	for key, mode := range db.VLANMember {
		vlanName, portName, ok := strings.Cut(key, "|")
		if !ok {
			continue
		}
		tag, ok := parseVlanKey(vlanName)
		if !ok {
			continue
		}
		vs := byTag[tag]
		num := numbers[portName]
		if vs == nil || num == 0 {
			util.Debugf("sonic: ignoring VLAN_MEMBER %s", key)
			continue
		}
		vs.Members[num] = parseTaggingMode(mode)
	}

	for _, tag := range tags {
		vs := byTag[tag]
		for num, m := range vs.Members {
			if m != switchmodel.Untagged {
				continue
			}
			p := &st.Ports[num-1]
			if p.PVID != 0 {
				util.Warnf("sonic: %s is untagged in vlans %d and %d", p.Info.Name, p.PVID, tag)
				continue
			}
			p.PVID = tag
		}
		st.Vlans = append(st.Vlans, *vs)
	}

	return st, names
}
