package switchmodel

import (
	"fmt"
	"strings"

	"github.com/newtron-network/vlanadmin/pkg/util"
)

// Membership is a port's relationship to a VLAN. The numeric values are the
// ones the FS726T web form uses in its vid_mem field.
type Membership int

const (
	NotMember Membership = iota
	Tagged
	Untagged
)

func (m Membership) String() string {
	switch m {
	case NotMember:
		return "none"
	case Tagged:
		return "tagged"
	case Untagged:
		return "untagged"
	default:
		return fmt.Sprintf("Membership(%d)", int(m))
	}
}

func (m Membership) valid() bool {
	return m >= NotMember && m <= Untagged
}

// ParseMembership accepts none, -, tagged, t, untagged and u (any case).
func ParseMembership(s string) (Membership, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "-", "notmember":
		return NotMember, nil
	case "tagged", "t":
		return Tagged, nil
	case "untagged", "u":
		return Untagged, nil
	}
	return NotMember, util.NewValidationError(fmt.Sprintf("unknown membership %q (want none, tagged or untagged)", s))
}
