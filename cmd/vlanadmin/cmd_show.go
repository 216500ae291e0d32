package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/newtron-network/vlanadmin/pkg/cli"
	"github.com/newtron-network/vlanadmin/pkg/switchmodel"
	"github.com/newtron-network/vlanadmin/pkg/util"
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show switch details, ports and VLAN memberships",
	Long: `Show the selected switch: device details, the port table, and a
VLAN by port membership matrix (U untagged, T tagged, . not a member).

Examples:
  vlanadmin -s office show
  vlanadmin -s office show --vlans 10-20,99
  vlanadmin -s office show --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		only, err := parseVlanFilter(showVlans)
		if err != nil {
			return err
		}
		ctx := context.Background()
		sw, err := openSwitch(ctx)
		if err != nil {
			return err
		}
		defer closeSwitch(ctx, sw)

		if app.jsonOutput {
			enc := json.NewEncoder(app.out)
			enc.SetIndent("", "  ")
			return enc.Encode(snapshot(sw))
		}
		showSwitch(app.out, sw, only)
		return nil
	},
}

var showVlans string

func init() {
	showCmd.Flags().StringVar(&showVlans, "vlans", "", "Only show these VLANs in the matrix (e.g. 10-20,99)")
}

// parseVlanFilter expands a VLAN list like "10-20,99". An empty list
// selects every VLAN and yields nil.
func parseVlanFilter(list string) (map[int]bool, error) {
	if list == "" {
		return nil, nil
	}
	tags, err := util.ParseVlanList(list)
	if err != nil {
		return nil, err
	}
	only := make(map[int]bool, len(tags))
	for _, tag := range tags {
		only[tag] = true
	}
	return only, nil
}

func showSwitch(w io.Writer, sw *switchmodel.Switch, only map[int]bool) {
	fmt.Fprintf(w, "Switch: %s (%s)\n", bold(sw.Name()), sw.Backend())
	showDetails(w, sw)
	fmt.Fprintln(w)
	printPorts(w, sw)
	fmt.Fprintln(w)
	printVlans(w, sw, only)
}

func showDetails(w io.Writer, sw *switchmodel.Switch) {
	details := sw.Details()
	width := 0
	for _, d := range details {
		if len(d.Label) > width {
			width = len(d.Label)
		}
	}
	for _, d := range details {
		value := d.Value
		if value == "" {
			value = "-"
		}
		fmt.Fprintf(w, "  %s %s\n", cli.DotPad(d.Label, width+3), value)
	}
}

func printPorts(w io.Writer, sw *switchmodel.Switch) {
	t := cli.NewTableTo(w, "PORT", "NAME", "LINK", "PVID", "DESCRIPTION")
	for _, p := range sw.Ports() {
		info := p.Info()
		pvid := "-"
		if p.PVID() != 0 {
			pvid = strconv.Itoa(p.PVID())
		}
		t.Row(strconv.Itoa(p.Number()), dash(info.Name), cli.LinkStatus(info.LinkStatus), pvid, p.Description())
	}
	t.Flush()
}

// printVlans renders the membership matrix, one column per port. A non-nil
// only restricts it to those tags.
func printVlans(w io.Writer, sw *switchmodel.Switch, only map[int]bool) {
	var vlans []*switchmodel.Vlan
	for _, v := range sw.Vlans() {
		if only == nil || only[v.DotqID()] {
			vlans = append(vlans, v)
		}
	}
	if len(vlans) == 0 {
		if only != nil {
			fmt.Fprintln(w, "No matching VLANs")
		} else {
			fmt.Fprintln(w, "No VLANs configured")
		}
		return
	}
	ports := sw.Ports()
	headers := []string{"VLAN", "NAME"}
	for _, p := range ports {
		headers = append(headers, strconv.Itoa(p.Number()))
	}
	t := cli.NewTableTo(w, headers...)
	for _, v := range vlans {
		row := []string{strconv.Itoa(v.DotqID()), dash(v.Name())}
		for _, p := range ports {
			row = append(row, cli.Glyph(v.Membership(p.Number())))
		}
		t.Row(row...)
	}
	t.Flush()
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// switchSnapshot is the JSON form of show.
type switchSnapshot struct {
	Name    string                  `json:"name"`
	Details []switchmodel.Attribute `json:"details"`
	Ports   []portSnapshot          `json:"ports"`
	Vlans   []vlanSnapshot          `json:"vlans"`
}

type portSnapshot struct {
	Number      int    `json:"number"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	LinkStatus  string `json:"link_status,omitempty"`
	Enabled     *bool  `json:"enabled,omitempty"`
	PVID        int    `json:"pvid"`
}

type vlanSnapshot struct {
	Tag      int    `json:"tag"`
	Name     string `json:"name,omitempty"`
	Untagged []int  `json:"untagged,omitempty"`
	Tagged   []int  `json:"tagged,omitempty"`
}

func snapshot(sw *switchmodel.Switch) switchSnapshot {
	s := switchSnapshot{Name: sw.Name(), Details: sw.Details()}
	for _, p := range sw.Ports() {
		info := p.Info()
		s.Ports = append(s.Ports, portSnapshot{
			Number:      p.Number(),
			Name:        info.Name,
			Description: p.Description(),
			LinkStatus:  info.LinkStatus,
			Enabled:     info.Enabled,
			PVID:        p.PVID(),
		})
	}
	for _, v := range sw.Vlans() {
		vs := vlanSnapshot{Tag: v.DotqID(), Name: v.Name()}
		for i, m := range v.Memberships() {
			switch m {
			case switchmodel.Untagged:
				vs.Untagged = append(vs.Untagged, i+1)
			case switchmodel.Tagged:
				vs.Tagged = append(vs.Tagged, i+1)
			}
		}
		s.Vlans = append(s.Vlans, vs)
	}
	return s
}
