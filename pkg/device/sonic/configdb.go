// Package sonic is the switch backend for SONiC devices. It edits the
// PORT, VLAN and VLAN_MEMBER tables of CONFIG_DB over Redis, directly or
// through an SSH tunnel.
package sonic

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-redis/redis/v8"
)

// Redis databases of a SONiC switch.
const (
	ConfigDBIndex = 4
	StateDBIndex  = 6
)

// CONFIG_DB tables read and written by the backend.
const (
	tablePort       = "PORT"
	tableVlan       = "VLAN"
	tableVlanMember = "VLAN_MEMBER"
	tableMetadata   = "DEVICE_METADATA"
)

// PortEntry is a PORT table row.
type PortEntry struct {
	AdminStatus string
	Alias       string
	Description string
	Index       string
	Speed       string
	MTU         string
}

// VLANEntry is a VLAN table row, keyed "Vlan<id>".
type VLANEntry struct {
	VLANID      string
	Description string
}

// ConfigDB is the subset of CONFIG_DB the backend works from.
type ConfigDB struct {
	Metadata   map[string]string
	Port       map[string]PortEntry
	VLAN       map[string]VLANEntry
	VLANMember map[string]string // "Vlan10|Ethernet0" → tagging_mode
}

func newConfigDB() *ConfigDB {
	return &ConfigDB{
		Metadata:   make(map[string]string),
		Port:       make(map[string]PortEntry),
		VLAN:       make(map[string]VLANEntry),
		VLANMember: make(map[string]string),
	}
}

// applyEntry stores one hash under its table. Unknown tables are ignored.
func (db *ConfigDB) applyEntry(table, key string, vals map[string]string) {
	switch table {
	case tablePort:
		db.Port[key] = PortEntry{
			AdminStatus: vals["admin_status"],
			Alias:       vals["alias"],
			Description: vals["description"],
			Index:       vals["index"],
			Speed:       vals["speed"],
			MTU:         vals["mtu"],
		}
	case tableVlan:
		db.VLAN[key] = VLANEntry{
			VLANID:      vals["vlanid"],
			Description: vals["description"],
		}
	case tableVlanMember:
		db.VLANMember[key] = vals["tagging_mode"]
	case tableMetadata:
		if key == "localhost" {
			for k, v := range vals {
				db.Metadata[k] = v
			}
		}
	}
}

// TableChange is one write of a pipelined batch.
type TableChange struct {
	Table  string
	Key    string
	Fields map[string]string // nil means delete
}

// ConfigDBClient wraps a Redis client for CONFIG_DB access.
type ConfigDBClient struct {
	client *redis.Client
}

// NewConfigDBClient creates a new config_db client
func NewConfigDBClient(addr string) *ConfigDBClient {
	return &ConfigDBClient{
		client: redis.NewClient(&redis.Options{
			Addr: addr,
			DB:   ConfigDBIndex,
		}),
	}
}

// Connect tests the connection
func (c *ConfigDBClient) Connect(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the connection
func (c *ConfigDBClient) Close() error {
	return c.client.Close()
}

// Load reads the PORT, VLAN, VLAN_MEMBER and DEVICE_METADATA tables.
func (c *ConfigDBClient) Load(ctx context.Context) (*ConfigDB, error) {
	db := newConfigDB()
	for _, table := range []string{tablePort, tableVlan, tableVlanMember, tableMetadata} {
		entries, err := readTable(ctx, c.client, table)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", table, err)
		}
		for key, vals := range entries {
			db.applyEntry(table, key, vals)
		}
	}
	return db, nil
}

// Set writes all fields of an entry in a single HSET.
func (c *ConfigDBClient) Set(ctx context.Context, table, key string, fields map[string]string) error {
	return c.client.HSet(ctx, redisKey(table, key), hsetArgs(fields)...).Err()
}

// DeleteField removes one field from an entry.
func (c *ConfigDBClient) DeleteField(ctx context.Context, table, key, field string) error {
	return c.client.HDel(ctx, redisKey(table, key), field).Err()
}

// Get reads a table entry
func (c *ConfigDBClient) Get(ctx context.Context, table, key string) (map[string]string, error) {
	return c.client.HGetAll(ctx, redisKey(table, key)).Result()
}

// TableKeys returns the entry keys of a table, without the table prefix.
func (c *ConfigDBClient) TableKeys(ctx context.Context, table string) ([]string, error) {
	keys, err := scanKeys(ctx, c.client, table+"|*", 100)
	if err != nil {
		return nil, err
	}
	for i, k := range keys {
		keys[i] = strings.TrimPrefix(k, table+"|")
	}
	return keys, nil
}

// PipelineSet applies changes in one MULTI/EXEC transaction.
func (c *ConfigDBClient) PipelineSet(ctx context.Context, changes []TableChange) error {
	if len(changes) == 0 {
		return nil
	}

	pipe := c.client.TxPipeline()
	for _, change := range changes {
		key := redisKey(change.Table, change.Key)
		if change.Fields == nil {
			pipe.Del(ctx, key)
			continue
		}
		pipe.HSet(ctx, key, hsetArgs(change.Fields)...)
	}

	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return fmt.Errorf("pipeline exec: %w", err)
	}
	return nil
}

func redisKey(table, key string) string {
	return table + "|" + key
}

// hsetArgs flattens fields for HSET. Empty entries get the "NULL":"NULL"
// sentinel so the key exists.
func hsetArgs(fields map[string]string) []interface{} {
	if len(fields) == 0 {
		return []interface{}{"NULL", "NULL"}
	}
	args := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	return args
}

// readTable scans a table and fetches every entry in one pipeline.
func readTable(ctx context.Context, client *redis.Client, table string) (map[string]map[string]string, error) {
	keys, err := scanKeys(ctx, client, table+"|*", 100)
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return map[string]map[string]string{}, nil
	}

	pipe := client.Pipeline()
	cmds := make([]*redis.StringStringMapCmd, len(keys))
	for i, k := range keys {
		cmds[i] = pipe.HGetAll(ctx, k)
	}
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, err
	}

	out := make(map[string]map[string]string, len(keys))
	for i, k := range keys {
		vals, err := cmds[i].Result()
		if err != nil {
			continue
		}
		out[strings.TrimPrefix(k, table+"|")] = vals
	}
	return out, nil
}

// scanKeys collects keys matching pattern with cursor-based SCAN, which
// does not block the server the way KEYS does.
func scanKeys(ctx context.Context, client *redis.Client, pattern string, countHint int64) ([]string, error) {
	var cursor uint64
	var keys []string
	for {
		batch, next, err := client.Scan(ctx, cursor, pattern, countHint).Result()
		if err != nil {
			return nil, err
		}
		keys = append(keys, batch...)
		cursor = next
		if cursor == 0 {
			break
		}
	}
	return keys, nil
}
