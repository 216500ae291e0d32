// Package fs726t drives Netgear FS726T smart switches through their web
// interface.
//
// The switch has no management protocol beyond its CGI pages, so state is
// scraped from the /cgi/device status page and changes are made by posting
// the same forms the browser would. VLAN names are not stored on the switch
// and live in the vlan_names map of the switch's config section instead.
package fs726t

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/newtron-network/vlanadmin/pkg/config"
	"github.com/newtron-network/vlanadmin/pkg/device"
	"github.com/newtron-network/vlanadmin/pkg/switchmodel"
	"github.com/newtron-network/vlanadmin/pkg/util"
)

const defaultTimeout = 10 * time.Second

// allPortsTagID is the tag_id the PVID form is posted with.
const allPortsTagID = 255

func init() {
	device.Register(config.ModelFS726T, open)
}

// Backend edits an FS726T through its web interface.
type Backend struct {
	addr   string
	client *client
	names  *config.NameStore
}

func open(ctx context.Context, t device.Target) (switchmodel.Backend, error) {
	names, err := t.Config.VlanNames(t.Name)
	if err != nil {
		return nil, err
	}
	return NewBackend(t.Name, t.Section.Address, t.Password(), names, &http.Client{Timeout: t.Timeout(defaultTimeout)}), nil
}

// NewBackend returns a backend for the switch at addr, a host or host:port.
// No request is made until the first read.
func NewBackend(name, addr, password string, names *config.NameStore, hc *http.Client) *Backend {
	base := addr
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "http://" + base
	}
	return &Backend{
		addr:  addr,
		names: names,
		client: &client{
			name:     name,
			base:     strings.TrimSuffix(base, "/"),
			password: password,
			http:     hc,
			log:      util.WithSwitch(name),
		},
	}
}

func (b *Backend) String() string { return "Netgear FS726T at " + b.addr }

// ReadState fetches and parses the status page. VLAN names come from the
// name store.
func (b *Backend) ReadState(ctx context.Context) (*switchmodel.State, error) {
	body, err := b.client.request(ctx, "/cgi/device", nil)
	if err != nil {
		return nil, err
	}
	st, err := parseStatus(strings.NewReader(body))
	if err != nil {
		return nil, err
	}
	for i := range st.Vlans {
		st.Vlans[i].Name = b.names.Name(st.Vlans[i].DotqID)
	}
	return st, nil
}

// CommitPortDescription posts the port detail form. The form addresses
// ports from zero.
func (b *Backend) CommitPortDescription(ctx context.Context, port *switchmodel.Port, desc string) error {
	idx := port.Number() - 1
	f := form{}.add("portset", idx).add("port_des", desc).add("post_url", "/cgi/portdetail")
	_, err := b.client.request(ctx, "/cgi/portdetail="+strconv.Itoa(idx), f)
	return err
}

// CommitVlanDescription records the name locally; it is saved by
// FinishCommit.
func (b *Backend) CommitVlanDescription(ctx context.Context, vlan *switchmodel.Vlan, name string) error {
	b.names.SetName(vlan.DotqID(), name)
	return nil
}

// CommitVlanMemberships posts the VLAN's membership vector. Posting to an
// unused internal id creates the VLAN.
func (b *Backend) CommitVlanMemberships(ctx context.Context, vlan *switchmodel.Vlan, memberships []switchmodel.Membership) error {
	id := vlan.InternalID()
	f := form{}.
		add("tag_id", id).
		add("vid", vlan.DotqID()).
		add("post_url", "/cgi/setvid").
		add("vid_mem", membershipVector(memberships))
	_, err := b.client.request(ctx, "/cgi/setvid="+strconv.Itoa(id), f)
	return err
}

// membershipVector encodes memberships the way the setvid form expects:
// comma separated codes, 0 for none, 1 for tagged and 2 for untagged.
func membershipVector(memberships []switchmodel.Membership) string {
	codes := make([]string, len(memberships))
	for i, m := range memberships {
		codes[i] = strconv.Itoa(int(m))
	}
	return strings.Join(codes, ",")
}

func (b *Backend) CommitPVIDs(ctx context.Context, pvids []int) error {
	f := form{}.add("tag_id", allPortsTagID)
	for _, p := range pvids {
		f = f.add("dvid", p)
	}
	f = f.add("post_url", "/cgi/pvid")
	_, err := b.client.request(ctx, "/cgi/pvid", f)
	return err
}

func (b *Backend) CommitVlanDelete(ctx context.Context, vlan *switchmodel.Vlan) error {
	id := vlan.InternalID()
	f := form{}.
		add("tag_id", id).
		add("del_tag", "on").
		add("post_url", "/cgi/delvid").
		add("vid_mem", "")
	if _, err := b.client.request(ctx, "/cgi/setvid="+strconv.Itoa(id), f); err != nil {
		return err
	}
	b.names.Delete(vlan.DotqID())
	return nil
}

// FinishCommit writes VLAN names back to the config file.
func (b *Backend) FinishCommit(ctx context.Context) error {
	return b.names.Save()
}

// Close logs out so that other clients can log in.
func (b *Backend) Close(ctx context.Context) error {
	return b.client.logout(ctx)
}
