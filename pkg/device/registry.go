// Package device maps switch models to backend implementations. Backends
// register themselves from init, so a binary links in only the families it
// imports:
//
//	import _ "github.com/newtron-network/vlanadmin/pkg/device/sonic"
package device

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/newtron-network/vlanadmin/pkg/config"
	"github.com/newtron-network/vlanadmin/pkg/switchmodel"
	"github.com/newtron-network/vlanadmin/pkg/util"
)

// Options carries per-session settings that do not live in the config file.
type Options struct {
	// Password overrides the configured password, e.g. after a prompt.
	Password string
	// Timeout bounds each request to the device. Zero selects the backend
	// default.
	Timeout time.Duration
}

// Target is everything a backend needs to open a session.
type Target struct {
	Name    string
	Section *config.SwitchConfig
	Config  *config.Config
	Options Options
}

// Factory opens a backend session for a target.
type Factory func(ctx context.Context, t Target) (switchmodel.Backend, error)

var (
	mu        sync.RWMutex
	factories = make(map[string]Factory)
)

// Register makes a backend available for the named model. It panics when a
// model is registered twice.
func Register(model string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	key := strings.ToLower(model)
	if _, dup := factories[key]; dup {
		panic("device: Register called twice for model " + model)
	}
	factories[key] = f
}

// Models returns the registered model names, sorted.
func Models() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(factories))
	for m := range factories {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}

// Open validates the named section of cfg and opens a session with the
// backend registered for its model. Model names match case-insensitively.
func Open(ctx context.Context, cfg *config.Config, name string, opts Options) (switchmodel.Backend, error) {
	section, err := cfg.Switch(name)
	if err != nil {
		return nil, err
	}
	if err := section.Validate(); err != nil {
		return nil, err
	}

	mu.RLock()
	f, ok := factories[strings.ToLower(section.Model)]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w %q for switch %s; supported models are: %s",
			util.ErrUnsupportedModel, section.Model, name, strings.Join(Models(), ", "))
	}

	util.WithSwitch(name).Debugf("opening %s backend at %s", section.Model, section.Address)
	return f(ctx, Target{Name: name, Section: section, Config: cfg, Options: opts})
}

// Password returns the session password override, or the configured one.
func (t Target) Password() string {
	if t.Options.Password != "" {
		return t.Options.Password
	}
	return t.Section.Password
}

// Timeout returns the request timeout, or def when none was set.
func (t Target) Timeout(def time.Duration) time.Duration {
	if t.Options.Timeout > 0 {
		return t.Options.Timeout
	}
	return def
}
