package fs726t

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/newtron-network/vlanadmin/pkg/switchmodel"
	"github.com/newtron-network/vlanadmin/pkg/util"
)

// Section headings of the /cgi/device status page.
const (
	headingSwitch = "Switch Status"
	headingPorts  = "PORT Status"
	headingVlans  = "IEEE 802.1Q VLAN Settings"
	headingPVIDs  = "IEEE 802.1Q PVID Table"
)

// statusLabels maps rows of the switch status table to detail labels.
var statusLabels = map[string]string{
	"Product Name":            "Product",
	"Firmware Version":        "Software version",
	"Protocol Version":        "Protocol version",
	"DHCP":                    "IP config",
	"IP address":              "IP address",
	"Subnet mask":             "Netmask",
	"Default gateway":         "Gateway",
	"MAC address":             "MAC address",
	"System Name":             "Hostname",
	"Location Name":           "Location",
	"Login Timeout (minutes)": "Login timeout",
	"System UpTime":           "Uptime",
}

// parseStatus reads the status page into a State. VLAN names are not on
// the page and are left empty.
func parseStatus(r io.Reader) (*switchmodel.State, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing status page: %w", err)
	}

	st := &switchmodel.State{}
	if st.Details, err = parseDetails(doc); err != nil {
		return nil, err
	}
	if st.Ports, err = parsePorts(doc); err != nil {
		return nil, err
	}
	if st.Vlans, err = parseVlans(doc, len(st.Ports)); err != nil {
		return nil, err
	}
	if err := parsePVIDs(doc, st.Ports); err != nil {
		return nil, err
	}
	return st, nil
}

func parseDetails(doc *html.Node) ([]switchmodel.Attribute, error) {
	heading := findText(doc, headingSwitch)
	if heading == nil {
		return nil, missingSection(headingSwitch)
	}
	table := nextElement(ancestor(heading, "table"), "table")
	if table == nil {
		return nil, missingSection(headingSwitch)
	}

	var details []switchmodel.Attribute
	for _, row := range elements(table, "tr") {
		cells := elements(row, "td")
		if len(cells) < 2 {
			continue
		}
		key, value := textOf(cells[0]), textOf(cells[1])
		label, ok := statusLabels[key]
		if !ok {
			util.Debugf("ignoring unknown status row %q = %q", key, value)
			continue
		}
		switch key {
		case "DHCP":
			switch value {
			case "Disable":
				value = "Static"
			case "Enable":
				value = "DHCP"
			}
		case "Login Timeout (minutes)":
			value += " minutes"
		}
		details = append(details, switchmodel.Attribute{Label: label, Value: value})
	}
	return details, nil
}

// parsePorts reads the port table. A row holding a single header cell sets
// the speed of the ports that follow; data rows describe two ports each.
func parsePorts(doc *html.Node) ([]switchmodel.PortState, error) {
	table := tableAfterHeading(doc, headingPorts)
	if table == nil {
		return nil, missingSection(headingPorts)
	}

	var ports []switchmodel.PortState
	speed := ""
	for _, row := range skip(elements(table, "tr"), 1) {
		if th := elements(row, "th"); len(th) == 1 {
			speed = textOf(th[0])
			continue
		}
		cells := elements(row, "td")
		for start := 0; start+5 <= len(cells); start += 5 {
			c := cells[start : start+5]
			if textOf(c[0]) == "" {
				continue
			}
			num, err := strconv.Atoi(textOf(c[0]))
			if err != nil {
				return nil, fmt.Errorf("port table: bad port number %q", textOf(c[0]))
			}
			if num != len(ports)+1 {
				return nil, fmt.Errorf("port table: port %d follows port %d", num, len(ports))
			}
			ports = append(ports, switchmodel.PortState{
				Number:      num,
				Description: textOf(c[4]),
				Info: switchmodel.PortInfo{
					Speed:        speed,
					SpeedSetting: textOf(c[1]),
					FlowControl:  textOf(c[2]),
					LinkStatus:   textOf(c[3]),
				},
			})
		}
	}
	if len(ports) == 0 {
		return nil, fmt.Errorf("port table: no ports")
	}
	return ports, nil
}

// parseVlans reads the 802.1Q table. Internal ids are row positions.
func parseVlans(doc *html.Node, numPorts int) ([]switchmodel.VlanState, error) {
	table := tableAfterHeading(doc, headingVlans)
	if table == nil {
		return nil, missingSection(headingVlans)
	}

	var vlans []switchmodel.VlanState
	for _, row := range skip(elements(table, "tr"), 2) {
		cells := elements(row, "td")
		if len(cells) == 0 {
			continue
		}
		if len(cells) != numPorts+1 {
			return nil, fmt.Errorf("vlan table: row has %d cells, want %d", len(cells), numPorts+1)
		}
		tag, err := strconv.Atoi(textOf(cells[0]))
		if err != nil {
			return nil, fmt.Errorf("vlan table: bad tag %q", textOf(cells[0]))
		}
		members := make(map[int]switchmodel.Membership)
		for i, cell := range cells[1:] {
			m, err := parseMembership(textOf(cell))
			if err != nil {
				return nil, fmt.Errorf("vlan %d port %d: %w", tag, i+1, err)
			}
			if m != switchmodel.NotMember {
				members[i+1] = m
			}
		}
		vlans = append(vlans, switchmodel.VlanState{
			InternalID: len(vlans) + 1,
			DotqID:     tag,
			Members:    members,
		})
	}
	return vlans, nil
}

func parseMembership(s string) (switchmodel.Membership, error) {
	switch s {
	case "":
		return switchmodel.NotMember, nil
	case "T":
		return switchmodel.Tagged, nil
	case "U":
		return switchmodel.Untagged, nil
	}
	return switchmodel.NotMember, fmt.Errorf("unknown membership %q", s)
}

// parsePVIDs fills in port PVIDs. Rows hold up to four (port, pvid) pairs.
func parsePVIDs(doc *html.Node, ports []switchmodel.PortState) error {
	table := tableAfterHeading(doc, headingPVIDs)
	if table == nil {
		return missingSection(headingPVIDs)
	}

	for _, row := range skip(elements(table, "tr"), 1) {
		cells := elements(row, "td")
		for i := 0; i+1 < len(cells); i += 2 {
			numText := textOf(cells[i])
			if numText == "" {
				continue
			}
			num, err := strconv.Atoi(numText)
			if err != nil || num < 1 || num > len(ports) {
				return fmt.Errorf("pvid table: bad port %q", numText)
			}
			pvid, err := strconv.Atoi(textOf(cells[i+1]))
			if err != nil {
				return fmt.Errorf("pvid table: port %d: bad pvid %q", num, textOf(cells[i+1]))
			}
			ports[num-1].PVID = pvid
		}
	}
	return nil
}

func missingSection(heading string) error {
	return fmt.Errorf("status page has no %q section", heading)
}

// tableAfterHeading returns the first table following the element that
// holds heading.
func tableAfterHeading(doc *html.Node, heading string) *html.Node {
	n := findText(doc, heading)
	if n == nil || n.Parent == nil {
		return nil
	}
	return nextElement(n.Parent, "table")
}

// findText returns the first text node whose trimmed content is text.
func findText(n *html.Node, text string) *html.Node {
	if n.Type == html.TextNode && strings.TrimSpace(n.Data) == text {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findText(c, text); found != nil {
			return found
		}
	}
	return nil
}

// ancestor returns the closest enclosing element named tag.
func ancestor(n *html.Node, tag string) *html.Node {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode && p.Data == tag {
			return p
		}
	}
	return nil
}

// nextElement returns the first element named tag that starts after n's
// subtree in document order.
func nextElement(n *html.Node, tag string) *html.Node {
	for cur := n; cur != nil; cur = cur.Parent {
		for sib := cur.NextSibling; sib != nil; sib = sib.NextSibling {
			if found := firstElement(sib, tag); found != nil {
				return found
			}
		}
	}
	return nil
}

func firstElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := firstElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}

// elements returns the descendants of n named tag, without descending into
// nested tables.
func elements(n *html.Node, tag string) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(p *html.Node) {
		for c := p.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			if c.Data == tag {
				out = append(out, c)
				continue
			}
			if c.Data != "table" {
				walk(c)
			}
		}
	}
	walk(n)
	return out
}

// textOf returns the whitespace-collapsed text content of n.
func textOf(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(p *html.Node) {
		if p.Type == html.TextNode {
			b.WriteString(p.Data)
			b.WriteByte(' ')
		}
		for c := p.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(b.String()), " ")
}

func skip(nodes []*html.Node, n int) []*html.Node {
	if len(nodes) <= n {
		return nil
	}
	return nodes[n:]
}
