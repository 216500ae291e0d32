package util

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// 802.1Q tags usable for VLANs. 0 and 4095 are reserved.
const (
	MinVlanID = 1
	MaxVlanID = 4094
)

// ValidateVLANID checks that id is a usable 802.1Q tag.
func ValidateVLANID(id int) error {
	if id < MinVlanID || id > MaxVlanID {
		return NewValidationError(fmt.Sprintf("vlan id %d out of range %d-%d", id, MinVlanID, MaxVlanID))
	}
	return nil
}

// ParsePortList expands a port list such as "1-4,7" into sorted, distinct
// port numbers. Every port must lie in 1..numPorts and the list must name
// at least one port.
func ParsePortList(list string, numPorts int) ([]int, error) {
	ports, err := parseList("port", list, 1, numPorts)
	if err != nil {
		return nil, err
	}
	if len(ports) == 0 {
		return nil, NewValidationError("empty port list")
	}
	return ports, nil
}

// ParseVlanList expands a tag list such as "10-20,99" into sorted, distinct
// VLAN tags. An empty list yields nil.
func ParseVlanList(list string) ([]int, error) {
	return parseList("vlan id", list, MinVlanID, MaxVlanID)
}

// parseList checks bounds per item before expanding it, so a list like
// "1-99999999" fails without allocating the range. Every bad item is
// reported.
func parseList(what, list string, lo, hi int) ([]int, error) {
	var v ValidationBuilder
	var out []int
	for _, item := range strings.Split(list, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}

		first, last, ok := parseItem(item)
		switch {
		case !ok:
			v.AddErrorf("%s list item %q is not a number or a range", what, item)
		case first > last:
			v.AddErrorf("%s range %q is reversed", what, item)
		case first < lo || last > hi:
			v.AddErrorf("%s %s out of range %d-%d", what, item, lo, hi)
		default:
			for n := first; n <= last; n++ {
				out = append(out, n)
			}
		}
	}
	if err := v.Build(); err != nil {
		return nil, err
	}

	slices.Sort(out)
	return slices.Compact(out), nil
}

// parseItem reads "n" or "n-m".
func parseItem(item string) (first, last int, ok bool) {
	lower, upper, isRange := strings.Cut(item, "-")
	first, err := strconv.Atoi(strings.TrimSpace(lower))
	if err != nil {
		return 0, 0, false
	}
	if !isRange {
		return first, first, true
	}
	last, err = strconv.Atoi(strings.TrimSpace(upper))
	if err != nil {
		return 0, 0, false
	}
	return first, last, true
}

// FormatList renders port numbers or tags in the notation ParsePortList
// and ParseVlanList accept, e.g. [1 2 3 5] -> "1-3,5".
func FormatList(values []int) string {
	if len(values) == 0 {
		return ""
	}
	sorted := slices.Compact(slices.Sorted(slices.Values(values)))

	var parts []string
	first := sorted[0]
	for i := 1; i <= len(sorted); i++ {
		if i < len(sorted) && sorted[i] == sorted[i-1]+1 {
			continue
		}
		last := sorted[i-1]
		if first == last {
			parts = append(parts, strconv.Itoa(first))
		} else {
			parts = append(parts, fmt.Sprintf("%d-%d", first, last))
		}
		if i < len(sorted) {
			first = sorted[i]
		}
	}
	return strings.Join(parts, ",")
}
