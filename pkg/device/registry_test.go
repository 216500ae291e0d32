package device

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/newtron-network/vlanadmin/internal/testutil"
	"github.com/newtron-network/vlanadmin/pkg/config"
	"github.com/newtron-network/vlanadmin/pkg/switchmodel"
	"github.com/newtron-network/vlanadmin/pkg/util"
)

const testModel = "TestModel"

var lastTarget Target

func init() {
	Register(testModel, func(ctx context.Context, t Target) (switchmodel.Backend, error) {
		lastTarget = t
		return testutil.NewFakeBackend(testutil.FourPortState()), nil
	})
}

const registryConfig = `switches:
  lab:
    model: testmodel
    address: 10.0.0.1
    password: configured
  odd:
    model: Cisco9000
    address: 10.0.0.2
  broken:
    model: snmp
    address: 10.0.0.3
`

func loadConfig(t *testing.T) *config.Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vlanadmin.yaml")
	if err := os.WriteFile(path, []byte(registryConfig), 0600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return cfg
}

func TestOpen(t *testing.T) {
	cfg := loadConfig(t)
	b, err := Open(context.Background(), cfg, "lab", Options{Timeout: 3 * time.Second})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, ok := b.(*testutil.FakeBackend); !ok {
		t.Errorf("Open() returned %T, want the registered backend", b)
	}
	if lastTarget.Name != "lab" || lastTarget.Section.Address != "10.0.0.1" || lastTarget.Config != cfg {
		t.Errorf("factory got target %+v", lastTarget)
	}
	if got := lastTarget.Timeout(time.Minute); got != 3*time.Second {
		t.Errorf("Timeout() = %v, want the override", got)
	}
	if got := lastTarget.Password(); got != "configured" {
		t.Errorf("Password() = %q, want the configured one", got)
	}
}

func TestOpenErrors(t *testing.T) {
	cfg := loadConfig(t)

	tests := []struct {
		name    string
		section string
		wantErr error
		wantMsg string
	}{
		{name: "unknown switch", section: "nope", wantErr: util.ErrNotFound},
		{name: "unsupported model", section: "odd", wantErr: util.ErrUnsupportedModel, wantMsg: "supported models are: testmodel"},
		{name: "invalid section", section: "broken", wantErr: util.ErrValidationFailed, wantMsg: "community must be set"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Open(context.Background(), cfg, tt.section, Options{})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Open() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantMsg != "" && !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("Open() error = %q, want it to contain %q", err, tt.wantMsg)
			}
		})
	}
}

func TestTargetOverrides(t *testing.T) {
	tgt := Target{Section: &config.SwitchConfig{Password: "configured"}, Options: Options{Password: "typed"}}
	if got := tgt.Password(); got != "typed" {
		t.Errorf("Password() = %q, want the override", got)
	}
	if got := tgt.Timeout(time.Minute); got != time.Minute {
		t.Errorf("Timeout() = %v, want the default", got)
	}
}

func TestRegisterTwicePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("registering a model twice should panic")
		}
	}()
	Register(strings.ToUpper(testModel), nil)
}
