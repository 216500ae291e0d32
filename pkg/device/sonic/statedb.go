package sonic

import (
	"context"

	"github.com/go-redis/redis/v8"
)

// PortStateEntry is the operational state of a port from STATE_DB
// PORT_TABLE.
type PortStateEntry struct {
	AdminStatus string
	OperStatus  string
	Speed       string
}

// StateDBClient wraps a Redis client for state_db access.
type StateDBClient struct {
	client *redis.Client
}

// NewStateDBClient creates a new state_db client
func NewStateDBClient(addr string) *StateDBClient {
	return &StateDBClient{
		client: redis.NewClient(&redis.Options{
			Addr: addr,
			DB:   StateDBIndex,
		}),
	}
}

// Close closes the connection
func (c *StateDBClient) Close() error {
	return c.client.Close()
}

// PortStates reads PORT_TABLE, keyed by port name.
func (c *StateDBClient) PortStates(ctx context.Context) (map[string]PortStateEntry, error) {
	entries, err := readTable(ctx, c.client, "PORT_TABLE")
	if err != nil {
		return nil, err
	}
	out := make(map[string]PortStateEntry, len(entries))
	for name, vals := range entries {
		out[name] = PortStateEntry{
			AdminStatus: vals["admin_status"],
			OperStatus:  vals["oper_status"],
			Speed:       vals["speed"],
		}
	}
	return out, nil
}
