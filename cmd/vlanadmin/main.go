// Vlanadmin - VLAN editor for small managed switches
//
// Vlanadmin reads the port and VLAN configuration of a switch, lets you
// stage edits, and writes them back in an order that never leaves a port's
// PVID pointing at a VLAN the port is not a member of.
//
// Supported switches:
//   - Netgear FS726T (web interface)
//   - Netgear GS324T and other Q-BRIDGE-MIB switches (SNMP)
//   - SONiC switches (CONFIG_DB, optionally through SSH)
//
// Switches are described in ~/.config/vlanadmin.yaml and selected with -s.
// One-shot edits preview their changes and only commit with -x:
//
//	vlanadmin -s office show
//	vlanadmin -s office vlan create 30 --name voice
//	vlanadmin -s office vlan set-member 30 1-4 tagged -x
//	vlanadmin -s office port set-pvid 5 30 -x
//	vlanadmin -s office shell
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/user"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/newtron-network/vlanadmin/pkg/audit"
	"github.com/newtron-network/vlanadmin/pkg/cli"
	"github.com/newtron-network/vlanadmin/pkg/config"
	"github.com/newtron-network/vlanadmin/pkg/device"
	"github.com/newtron-network/vlanadmin/pkg/settings"
	"github.com/newtron-network/vlanadmin/pkg/switchmodel"
	"github.com/newtron-network/vlanadmin/pkg/util"
	"github.com/newtron-network/vlanadmin/pkg/version"

	_ "github.com/newtron-network/vlanadmin/pkg/device/fs726t"
	_ "github.com/newtron-network/vlanadmin/pkg/device/snmp"
	_ "github.com/newtron-network/vlanadmin/pkg/device/sonic"
)

// App holds the global flags and the state loaded before each command.
type App struct {
	switchName  string
	configPath  string
	logFile     string
	logJSON     bool
	verbose     bool
	jsonOutput  bool
	executeMode bool

	settings *settings.Settings
	cfg      *config.Config
	logOut   io.Closer

	out    io.Writer
	errOut io.Writer
	in     io.Reader
}

var app = &App{out: os.Stdout, errOut: os.Stderr, in: os.Stdin}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, red("Error:"), err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:               "vlanadmin",
	Short:             "VLAN editor for small managed switches",
	SilenceUsage:      true,
	SilenceErrors:     true,
	CompletionOptions: cobra.CompletionOptions{HiddenDefaultCmd: true},
	Long: `Vlanadmin edits port and VLAN settings of managed switches.

Select a switch from ~/.config/vlanadmin.yaml with -s. Edit commands preview
the resulting change list by default; use -x to commit it.

  vlanadmin -s <switch> <command> [args] [-x]`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if app.verbose {
			util.SetLogLevel("debug")
		} else {
			util.SetLogLevel("warn")
		}
		if app.logJSON {
			util.SetJSONFormat()
		}
		if app.logFile != "" {
			f, err := util.OpenLogFile(app.logFile)
			if err != nil {
				return fmt.Errorf("opening log file: %w", err)
			}
			app.logOut = f
		} else {
			util.SetLogOutput(app.errOut)
		}

		if isMetaCommand(cmd) {
			return nil
		}

		var err error
		app.settings, err = settings.Load()
		if err != nil {
			util.Warnf("Could not load settings: %v", err)
			app.settings = &settings.Settings{}
		}
		if app.switchName == "" {
			app.switchName = app.settings.DefaultSwitch
		}
		if app.configPath == "" {
			app.configPath = app.settings.GetConfigPath()
		}

		app.cfg, err = config.Load(app.configPath)
		if err != nil {
			return err
		}

		auditLogger, err := audit.NewFileLogger(app.settings.GetAuditLog(), audit.RotationConfig{
			MaxSize:    10 * 1024 * 1024, // 10MB
			MaxBackups: 5,
		})
		if err != nil {
			util.Warnf("Could not initialize audit logging: %v", err)
		} else {
			audit.SetDefaultLogger(auditLogger)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if app.logOut != nil {
			app.logOut.Close()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&app.switchName, "switch", "s", "", "Switch name from the config file")
	rootCmd.PersistentFlags().StringVarP(&app.configPath, "config", "c", "", "Config file (default ~/.config/vlanadmin.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&app.verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().StringVar(&app.logFile, "log-file", "", "Append log output to a file")
	rootCmd.PersistentFlags().BoolVar(&app.logJSON, "log-json", false, "Log in JSON format")

	addWriteFlags(vlanCmd)
	addWriteFlags(portCmd)
	addOutputFlags(showCmd)
	addOutputFlags(switchesCmd)
	addOutputFlags(auditListCmd)

	rootCmd.AddGroup(
		&cobra.Group{ID: "query", Title: "Inspection:"},
		&cobra.Group{ID: "mutate", Title: "Editing:"},
		&cobra.Group{ID: "meta", Title: "Configuration & Meta:"},
	)
	for _, cmd := range []*cobra.Command{showCmd, switchesCmd} {
		cmd.GroupID = "query"
		rootCmd.AddCommand(cmd)
	}
	for _, cmd := range []*cobra.Command{vlanCmd, portCmd, shellCmd} {
		cmd.GroupID = "mutate"
		rootCmd.AddCommand(cmd)
	}
	for _, cmd := range []*cobra.Command{settingsCmd, auditCmd, versionCmd} {
		cmd.GroupID = "meta"
		rootCmd.AddCommand(cmd)
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(app.out, "vlanadmin %s\n", version.Info())
	},
}

// isMetaCommand checks whether cmd (or any ancestor) is a help, version, or
// settings command, which run without loading the switch inventory.
func isMetaCommand(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		switch c.Name() {
		case "help", "version", "settings":
			return true
		}
	}
	return false
}

// addWriteFlags registers -x/--execute on a command group; its
// subcommands inherit it.
func addWriteFlags(group *cobra.Command) {
	group.PersistentFlags().BoolVarP(&app.executeMode, "execute", "x", false, "Commit changes (default is dry-run)")
}

func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&app.jsonOutput, "json", false, "JSON output")
}

// ============================================================================
// Switch session helpers
// ============================================================================

// resolveSwitch returns the selected switch name. With a single configured
// switch, -s may be omitted.
func resolveSwitch() (string, error) {
	if app.switchName != "" {
		return app.switchName, nil
	}
	names := app.cfg.Names()
	switch len(names) {
	case 0:
		return "", fmt.Errorf("no switches configured in %s", app.cfg.Path())
	case 1:
		return names[0], nil
	}
	return "", fmt.Errorf("switch required: use -s <switch> (configured: %s)", strings.Join(names, ", "))
}

// openSwitch opens a backend session and loads the switch state. Status
// messages go to stderr while it works.
func openSwitch(ctx context.Context) (*switchmodel.Switch, error) {
	name, err := resolveSwitch()
	if err != nil {
		return nil, err
	}
	sec, err := app.cfg.Switch(name)
	if err != nil {
		return nil, err
	}

	var opts device.Options
	if needsPassword(sec) {
		if opts.Password, err = promptPassword(fmt.Sprintf("Password for %s: ", name)); err != nil {
			return nil, err
		}
	}

	util.WithField("model", sec.Model).Debugf("opening switch %s at %s", name, sec.Address)
	backend, err := device.Open(ctx, app.cfg, name, opts)
	if err != nil {
		return nil, err
	}
	sw := switchmodel.New(name, backend, switchmodel.WithFinishDwell(0))
	watchStatus(sw, app.errOut)
	if err := sw.Reload(ctx); err != nil {
		closeSwitch(ctx, sw)
		return nil, err
	}
	return sw, nil
}

// closeSwitch ends the backend session (logging out of web switches).
func closeSwitch(ctx context.Context, sw *switchmodel.Switch) {
	if err := sw.Backend().Close(ctx); err != nil {
		util.Warnf("closing session with %s: %v", sw.Name(), err)
	}
}

// watchStatus prints status messages as the switch reports progress.
func watchStatus(sw *switchmodel.Switch, w io.Writer) {
	sw.Events().Subscribe(switchmodel.StatusChanged, func(ev switchmodel.Event) {
		if ev.Status != "" {
			fmt.Fprintln(w, cli.Dim(ev.Status))
		}
	})
}

func needsPassword(sec *config.SwitchConfig) bool {
	return strings.EqualFold(sec.Model, config.ModelFS726T) && sec.Password == ""
}

// commitChanges commits the pending change log and records the attempt in
// the audit log.
func commitChanges(ctx context.Context, sw *switchmodel.Switch) error {
	changes := sw.Changes()
	start := time.Now()
	err := sw.Commit(ctx)

	event := audit.NewEvent(currentUser(), sw.Name(), audit.OperationCommit).
		WithChanges(changes).
		WithDuration(time.Since(start))
	if app.cfg != nil {
		if sec, serr := app.cfg.Switch(sw.Name()); serr == nil {
			event.WithModel(sec.Model)
		}
	}
	if err != nil {
		event.WithError(err)
	} else {
		event.WithSuccess()
		util.WithFields(map[string]interface{}{
			"switch":  sw.Name(),
			"changes": len(changes),
		}).Info("changes committed")
	}
	if logErr := audit.Log(event); logErr != nil {
		util.Warnf("writing audit log: %v", logErr)
	}
	return err
}

// recordDiscard audits a dropped change log.
func recordDiscard(sw *switchmodel.Switch, changes []switchmodel.Change) {
	util.Infof("discarding %d changes on %s", len(changes), sw.Name())
	event := audit.NewEvent(currentUser(), sw.Name(), audit.OperationDiscard).
		WithChanges(changes).
		WithSuccess()
	if err := audit.Log(event); err != nil {
		util.Warnf("writing audit log: %v", err)
	}
}

func currentUser() string {
	if u, err := user.Current(); err == nil {
		return u.Username
	}
	return os.Getenv("USER")
}

// withSwitchWrite loads the switch, applies fn, prints the resulting change
// log, and commits it when -x was given.
func withSwitchWrite(fn func(sw *switchmodel.Switch) error) error {
	ctx := context.Background()
	sw, err := openSwitch(ctx)
	if err != nil {
		return err
	}
	defer closeSwitch(ctx, sw)

	if err := fn(sw); err != nil {
		return err
	}
	if !sw.HasChanges() {
		fmt.Fprintln(app.out, "No changes.")
		return nil
	}

	fmt.Fprintln(app.out, "Changes to be applied:")
	printChanges(app.out, sw.Changes())

	if !app.executeMode {
		fmt.Fprintln(app.out, "\n"+yellow("DRY-RUN: No changes applied. Use -x to execute."))
		return nil
	}
	if err := commitChanges(ctx, sw); err != nil {
		return fmt.Errorf("commit failed: %w", err)
	}
	fmt.Fprintln(app.out, "\n"+green("Changes committed."))
	return nil
}

func printChanges(w io.Writer, changes []switchmodel.Change) {
	if len(changes) == 0 {
		fmt.Fprintln(w, "  (no pending changes)")
		return
	}
	for i, c := range changes {
		fmt.Fprintf(w, "  %2d. %s\n", i+1, c)
	}
}

// Color helpers - delegate to pkg/cli
func green(s string) string  { return cli.Green(s) }
func yellow(s string) string { return cli.Yellow(s) }
func red(s string) string    { return cli.Red(s) }
func bold(s string) string   { return cli.Bold(s) }
