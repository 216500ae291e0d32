package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/newtron-network/vlanadmin/pkg/switchmodel"
	"github.com/newtron-network/vlanadmin/pkg/util"
)

// Shell is an interactive editor over one switch session. Edits accumulate
// in the switch's change log until commit or discard.
type Shell struct {
	ctx      context.Context
	sw       *switchmodel.Switch
	reader   *bufio.Reader
	out      io.Writer
	commands map[string]func(args []string)
}

// NewShell creates a shell editing sw, reading commands from in.
func NewShell(ctx context.Context, sw *switchmodel.Switch, in io.Reader, out io.Writer) *Shell {
	s := &Shell{
		ctx:    ctx,
		sw:     sw,
		reader: bufio.NewReader(in),
		out:    out,
	}
	s.commands = map[string]func(args []string){
		"show":     func([]string) { showSwitch(s.out, s.sw, nil) },
		"vlans":    s.cmdVlans,
		"ports":    func([]string) { printPorts(s.out, s.sw) },
		"create":   s.cmdCreate,
		"delete":   s.cmdDelete,
		"rename":   s.cmdRename,
		"member":   s.cmdMember,
		"describe": s.cmdDescribe,
		"pvid":     s.cmdPVID,
		"changes":  func([]string) { printChanges(s.out, s.sw.Changes()) },
		"commit":   func([]string) { s.cmdCommit() },
		"discard":  func([]string) { s.cmdDiscard() },
		"reload":   func([]string) { s.cmdReload() },
		"help":     func([]string) { s.cmdHelp() },
		"?":        func([]string) { s.cmdHelp() },
	}
	return s
}

// Run reads and executes commands until quit or end of input.
func (s *Shell) Run() error {
	fmt.Fprintf(s.out, "Connected to %s (%s).\n", bold(s.sw.Name()), s.sw.Backend())
	fmt.Fprintln(s.out, "Type 'help' for available commands.")

	for {
		fmt.Fprint(s.out, s.prompt())

		line, err := s.reader.ReadString('\n')
		if err != nil && line == "" { // EOF
			fmt.Fprintln(s.out)
			if s.handleQuit() {
				return nil
			}
			continue
		}
		args := strings.Fields(line)
		if len(args) == 0 {
			continue
		}

		switch cmd := args[0]; cmd {
		case "quit", "exit", "q":
			if s.handleQuit() {
				return nil
			}
		default:
			if fn, ok := s.commands[cmd]; ok {
				fn(args[1:])
			} else {
				fmt.Fprintf(s.out, "Unknown command: %s (type 'help' for commands)\n", cmd)
			}
		}
	}
}

// prompt marks a switch with uncommitted changes with '*'.
func (s *Shell) prompt() string {
	if s.sw.HasChanges() {
		return fmt.Sprintf("%s*> ", s.sw.Name())
	}
	return fmt.Sprintf("%s> ", s.sw.Name())
}

func (s *Shell) report(err error) {
	if err != nil {
		fmt.Fprintf(s.out, "%s %v\n", red("Error:"), err)
	}
}

func (s *Shell) usage(format string) {
	fmt.Fprintf(s.out, "Usage: %s\n", format)
}

func (s *Shell) cmdVlans(args []string) {
	only, err := parseVlanFilter(strings.Join(args, ""))
	if err != nil {
		s.report(err)
		return
	}
	printVlans(s.out, s.sw, only)
}

func (s *Shell) cmdCreate(args []string) {
	if len(args) < 1 {
		s.usage("create <vlan-id> [name]")
		return
	}
	s.report(createVlan(s.sw, args[0], strings.Join(args[1:], " ")))
}

func (s *Shell) cmdDelete(args []string) {
	if len(args) != 1 {
		s.usage("delete <vlan-id>")
		return
	}
	s.report(deleteVlan(s.sw, args[0]))
}

func (s *Shell) cmdRename(args []string) {
	if len(args) < 2 {
		s.usage("rename <vlan-id> <name>")
		return
	}
	s.report(renameVlan(s.sw, args[0], strings.Join(args[1:], " ")))
}

func (s *Shell) cmdMember(args []string) {
	if len(args) != 3 {
		s.usage("member <vlan-id> <ports> <none|tagged|untagged>")
		return
	}
	s.report(setMembers(s.sw, args[0], args[1], args[2]))
}

func (s *Shell) cmdDescribe(args []string) {
	if len(args) < 1 {
		s.usage("describe <port> [text]")
		return
	}
	s.report(describePort(s.sw, args[0], strings.Join(args[1:], " ")))
}

func (s *Shell) cmdPVID(args []string) {
	if len(args) != 2 {
		s.usage("pvid <port> <vlan-id>")
		return
	}
	s.report(setPVID(s.sw, args[0], args[1]))
}

func (s *Shell) cmdCommit() {
	if !s.sw.HasChanges() {
		fmt.Fprintln(s.out, "No changes.")
		return
	}
	if err := commitChanges(s.ctx, s.sw); err != nil {
		s.report(err)
		fmt.Fprintln(s.out, "Pending changes were kept; fix the problem and commit again, or discard.")
		return
	}
	fmt.Fprintln(s.out, green("Changes committed."))
}

// cmdDiscard drops the change log and re-reads the switch, since the
// in-memory model already reflects the discarded edits.
func (s *Shell) cmdDiscard() {
	changes := s.sw.Changes()
	if len(changes) == 0 {
		fmt.Fprintln(s.out, "No changes.")
		return
	}
	recordDiscard(s.sw, changes)
	s.sw.DiscardChanges()
	if err := s.sw.Reload(s.ctx); err != nil {
		s.report(err)
		return
	}
	fmt.Fprintf(s.out, "Discarded %d changes.\n", len(changes))
}

func (s *Shell) cmdReload() {
	err := s.sw.Reload(s.ctx)
	if errors.Is(err, util.ErrPendingChanges) {
		fmt.Fprintln(s.out, "Uncommitted changes pending: commit or discard first.")
		return
	}
	s.report(err)
}

// handleQuit reports whether the shell should exit. Pending changes are
// committed or discarded first, as the user chooses.
func (s *Shell) handleQuit() bool {
	if s.sw.HasChanges() {
		fmt.Fprintf(s.out, "%d uncommitted changes. Commit before quitting? [y/N]: ", len(s.sw.Changes()))
		confirm, _ := s.reader.ReadString('\n')
		confirm = strings.TrimSpace(strings.ToLower(confirm))
		if confirm == "y" || confirm == "yes" {
			if err := commitChanges(s.ctx, s.sw); err != nil {
				s.report(err)
				return false
			}
			fmt.Fprintln(s.out, green("Changes committed."))
		} else {
			recordDiscard(s.sw, s.sw.Changes())
			s.sw.DiscardChanges()
		}
	}
	fmt.Fprintln(s.out, "Disconnecting...")
	return true
}

func (s *Shell) cmdHelp() {
	fmt.Fprintln(s.out, "Commands:")
	fmt.Fprintln(s.out, "  show                          Show details, ports and VLANs")
	fmt.Fprintln(s.out, "  ports                         Show the port table")
	fmt.Fprintln(s.out, "  vlans [list]                  Show the VLAN membership matrix")
	fmt.Fprintln(s.out, "  create <vlan-id> [name]       Create a VLAN")
	fmt.Fprintln(s.out, "  delete <vlan-id>              Delete a VLAN")
	fmt.Fprintln(s.out, "  rename <vlan-id> <name>       Rename a VLAN")
	fmt.Fprintln(s.out, "  member <vlan-id> <ports> <m>  Set membership (none, tagged, untagged)")
	fmt.Fprintln(s.out, "  describe <port> [text]        Set a port description")
	fmt.Fprintln(s.out, "  pvid <port> <vlan-id>         Set a port's PVID")
	fmt.Fprintln(s.out, "  changes                       List pending changes")
	fmt.Fprintln(s.out, "  commit                        Write pending changes to the switch")
	fmt.Fprintln(s.out, "  discard                       Drop pending changes and re-read the switch")
	fmt.Fprintln(s.out, "  reload                        Re-read the switch")
	fmt.Fprintln(s.out, "  quit                          Disconnect")
}

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Interactive editor with a persistent switch session",
	Long: `Start an interactive shell on the selected switch.

The switch is read once on entry. Edits are queued and shown with 'changes';
'commit' writes them in a safe order, 'discard' drops them. Quitting with
pending changes asks whether to commit them.

Examples:
  vlanadmin -s office shell`,
	Aliases: []string{"sh"},
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		sw, err := openSwitch(ctx)
		if err != nil {
			return err
		}
		defer closeSwitch(ctx, sw)

		return NewShell(ctx, sw, app.in, app.out).Run()
	},
}
