package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/newtron-network/vlanadmin/pkg/audit"
	"github.com/newtron-network/vlanadmin/pkg/cli"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "View the audit log",
	Long: `View the log of committed and discarded change sets.

Every commit records the user, the switch, the change list, and whether the
switch accepted it. -s restricts the listing to one switch.

Examples:
  vlanadmin audit list
  vlanadmin -s office audit list --since 24h
  vlanadmin audit list --user alice --failures
  vlanadmin audit list --last 5 -v`,
}

var (
	auditUser     string
	auditSince    string
	auditLast     int
	auditLimit    int
	auditFailures bool
)

var auditListCmd = &cobra.Command{
	Use:   "list",
	Short: "List audit events",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		filter := audit.Filter{
			Switch:      app.switchName,
			User:        auditUser,
			Last:        auditLast,
			Limit:       auditLimit,
			FailureOnly: auditFailures,
		}
		if auditSince != "" {
			d, err := time.ParseDuration(auditSince)
			if err != nil {
				return fmt.Errorf("invalid duration: %s", auditSince)
			}
			filter.StartTime = time.Now().Add(-d)
		}

		events, err := audit.Query(filter)
		if err != nil {
			return fmt.Errorf("querying audit log: %w", err)
		}

		if app.jsonOutput {
			return json.NewEncoder(app.out).Encode(events)
		}
		if len(events) == 0 {
			fmt.Fprintln(app.out, "No audit events found")
			return nil
		}

		t := cli.NewTableTo(app.out, "TIMESTAMP", "USER", "SWITCH", "OPERATION", "CHANGES", "STATUS")
		for _, event := range events {
			status := green("ok")
			if !event.Success {
				status = red("failed")
			}
			t.Row(
				event.Timestamp.Format("2006-01-02 15:04:05"),
				event.User,
				event.Switch,
				string(event.Operation),
				fmt.Sprintf("%d", len(event.Changes)),
				status,
			)
		}
		t.Flush()

		if app.verbose {
			for _, event := range events {
				fmt.Fprintf(app.out, "\n%s %s %s\n", bold(event.ID), event.Switch, event.Operation)
				if event.Error != "" {
					fmt.Fprintf(app.out, "  %s %s\n", red("error:"), event.Error)
				}
				for _, c := range event.Changes {
					fmt.Fprintln(app.out, "  "+c)
				}
			}
		}
		return nil
	},
}

func init() {
	auditListCmd.Flags().StringVar(&auditUser, "user", "", "Filter by user")
	auditListCmd.Flags().StringVar(&auditSince, "since", "", "Show events from the last duration (e.g. 24h)")
	auditListCmd.Flags().IntVar(&auditLast, "last", 0, "Show only the newest N events")
	auditListCmd.Flags().IntVar(&auditLimit, "limit", 100, "Maximum events to show")
	auditListCmd.Flags().BoolVar(&auditFailures, "failures", false, "Show only failed operations")

	auditCmd.AddCommand(auditListCmd)
}

