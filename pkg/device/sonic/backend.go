package sonic

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/newtron-network/vlanadmin/pkg/config"
	"github.com/newtron-network/vlanadmin/pkg/device"
	"github.com/newtron-network/vlanadmin/pkg/switchmodel"
	"github.com/newtron-network/vlanadmin/pkg/util"
)

const (
	defaultRedisPort = 6379
	defaultTimeout   = 10 * time.Second

	// saveCommand persists CONFIG_DB to /etc/sonic/config_db.json.
	saveCommand = "sudo config save -y"
)

func init() {
	device.Register(config.ModelSonic, open)
}

// Backend edits a SONiC switch through CONFIG_DB.
type Backend struct {
	name   string
	addr   string
	config *ConfigDBClient
	state  *StateDBClient
	tunnel *SSHTunnel
	log    *logrus.Entry

	// ports maps model port numbers to interface names; set by ReadState.
	ports []string
}

func open(ctx context.Context, t device.Target) (switchmodel.Backend, error) {
	sec := t.Section
	port := sec.RedisPort
	if port == 0 {
		port = defaultRedisPort
	}
	redisAddr := net.JoinHostPort(sec.Address, strconv.Itoa(port))

	b := &Backend{name: t.Name, addr: sec.Address, log: util.WithSwitch(t.Name)}
	if sec.SSHUser != "" {
		tunnel, err := NewSSHTunnel(sec.Address, sec.SSHUser, sec.SSHPassword,
			net.JoinHostPort("127.0.0.1", strconv.Itoa(port)), t.Timeout(defaultTimeout))
		if err != nil {
			return nil, util.NewTransportError(t.Name, "ssh", err)
		}
		b.tunnel = tunnel
		redisAddr = tunnel.LocalAddr()
	}

	b.config = NewConfigDBClient(redisAddr)
	b.state = NewStateDBClient(redisAddr)
	if err := b.config.Connect(ctx); err != nil {
		b.Close(ctx)
		return nil, util.NewTransportError(t.Name, "redis ping", err)
	}
	return b, nil
}

// NewBackend wraps already connected clients. tunnel may be nil.
func NewBackend(name string, cfg *ConfigDBClient, state *StateDBClient, tunnel *SSHTunnel) *Backend {
	return &Backend{name: name, config: cfg, state: state, tunnel: tunnel, log: util.WithSwitch(name)}
}

func (b *Backend) String() string { return "SONiC switch at " + b.addr }

// ReadState loads the port and VLAN tables. Link status comes from
// STATE_DB when it is readable.
func (b *Backend) ReadState(ctx context.Context) (*switchmodel.State, error) {
	b.log.Debug("reading CONFIG_DB and STATE_DB")

	var (
		db     *ConfigDB
		states map[string]PortStateEntry
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		db, err = b.config.Load(gctx)
		return util.NewTransportError(b.name, "read CONFIG_DB", err)
	})
	g.Go(func() error {
		var err error
		if states, err = b.state.PortStates(gctx); err != nil {
			// Link status is cosmetic; the model only needs CONFIG_DB.
			b.log.Warnf("reading STATE_DB port table: %v", err)
			states = nil
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	st, names := buildState(db, states)
	b.ports = names
	return st, nil
}

func (b *Backend) portName(num int) (string, error) {
	if num < 1 || num > len(b.ports) {
		return "", fmt.Errorf("%w: port %d", util.ErrNotFound, num)
	}
	return b.ports[num-1], nil
}

func (b *Backend) CommitPortDescription(ctx context.Context, port *switchmodel.Port, desc string) error {
	name, err := b.portName(port.Number())
	if err != nil {
		return err
	}
	b.log.Debugf("HSET PORT|%s description %q", name, desc)
	if desc == "" {
		err = b.config.DeleteField(ctx, tablePort, name, "description")
	} else {
		err = b.config.Set(ctx, tablePort, name, map[string]string{"description": desc})
	}
	return util.NewTransportError(b.name, "write PORT|"+name, err)
}

func (b *Backend) CommitVlanDescription(ctx context.Context, vlan *switchmodel.Vlan, name string) error {
	key := vlanKey(vlan.DotqID())
	b.log.Debugf("HSET VLAN|%s description %q", key, name)
	var err error
	if name == "" {
		err = b.config.DeleteField(ctx, tableVlan, key, "description")
	} else {
		err = b.config.Set(ctx, tableVlan, key, map[string]string{"description": name})
	}
	return util.NewTransportError(b.name, "write VLAN|"+key, err)
}

// CommitVlanMemberships rewrites every VLAN_MEMBER entry of the VLAN in one
// transaction.
func (b *Backend) CommitVlanMemberships(ctx context.Context, vlan *switchmodel.Vlan, memberships []switchmodel.Membership) error {
	if len(memberships) != len(b.ports) {
		return fmt.Errorf("vlan %d: %d memberships for %d ports", vlan.DotqID(), len(memberships), len(b.ports))
	}
	changes := membershipChanges(vlan.DotqID(), b.ports, memberships)
	b.log.Debugf("MULTI %d VLAN_MEMBER writes for %s", len(changes), vlanKey(vlan.DotqID()))
	return util.NewTransportError(b.name, "write VLAN_MEMBER", b.config.PipelineSet(ctx, changes))
}

func membershipChanges(tag int, ports []string, memberships []switchmodel.Membership) []TableChange {
	changes := make([]TableChange, len(ports))
	for i, m := range memberships {
		c := TableChange{Table: tableVlanMember, Key: vlanKey(tag) + "|" + ports[i]}
		if m != switchmodel.NotMember {
			c.Fields = map[string]string{"tagging_mode": taggingMode(m)}
		}
		changes[i] = c
	}
	return changes
}

// CommitPVIDs is a no-op: SONiC derives the PVID from untagged membership,
// which CommitVlanMemberships has already written.
func (b *Backend) CommitPVIDs(ctx context.Context, pvids []int) error {
	b.log.Debugf("PVIDs %v follow untagged memberships", pvids)
	return nil
}

// CommitVlanDelete removes the VLAN and any members left on it.
func (b *Backend) CommitVlanDelete(ctx context.Context, vlan *switchmodel.Vlan) error {
	key := vlanKey(vlan.DotqID())
	members, err := b.config.TableKeys(ctx, tableVlanMember+"|"+key)
	if err != nil {
		return util.NewTransportError(b.name, "scan VLAN_MEMBER", err)
	}

	changes := make([]TableChange, 0, len(members)+1)
	for _, m := range members {
		changes = append(changes, TableChange{Table: tableVlanMember, Key: key + "|" + m})
	}
	changes = append(changes, TableChange{Table: tableVlan, Key: key})
	b.log.Debugf("DEL VLAN|%s (%d members)", key, len(members))
	return util.NewTransportError(b.name, "delete VLAN|"+key, b.config.PipelineSet(ctx, changes))
}

// CommitVlanAdd creates the VLAN entry.
func (b *Backend) CommitVlanAdd(ctx context.Context, vlan *switchmodel.Vlan) error {
	key := vlanKey(vlan.DotqID())
	b.log.Debugf("HSET VLAN|%s vlanid %d", key, vlan.DotqID())
	err := b.config.Set(ctx, tableVlan, key, map[string]string{"vlanid": strconv.Itoa(vlan.DotqID())})
	return util.NewTransportError(b.name, "create VLAN|"+key, err)
}

// FinishCommit saves the running CONFIG_DB to disk when the switch is
// reached over SSH. Direct Redis sessions cannot, and only warn.
func (b *Backend) FinishCommit(ctx context.Context) error {
	if b.tunnel == nil {
		b.log.Warn("changes are in CONFIG_DB only; run 'config save' on the switch to keep them across reboots")
		return nil
	}
	b.log.Debugf("exec %q", saveCommand)
	out, err := b.tunnel.ExecCommand(saveCommand)
	if err != nil {
		return util.NewTransportError(b.name, "config save", fmt.Errorf("%w: %s", err, out))
	}
	return nil
}

// Close releases the Redis connections and the tunnel.
func (b *Backend) Close(ctx context.Context) error {
	var first error
	for _, c := range []interface{ Close() error }{b.config, b.state} {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	if b.tunnel != nil {
		if err := b.tunnel.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
