package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/newtron-network/vlanadmin/pkg/switchmodel"
)

var portCmd = &cobra.Command{
	Use:   "port",
	Short: "Change port descriptions and PVIDs",
	Long: `Manage ports on the selected switch.

Examples:
  vlanadmin -s office port describe 3 "label printer" -x
  vlanadmin -s office port set-pvid 5 30 -x`,
}

var portDescribeCmd = &cobra.Command{
	Use:   "describe <port> <text>...",
	Short: "Set a port description",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSwitchWrite(func(sw *switchmodel.Switch) error {
			return describePort(sw, args[0], strings.Join(args[1:], " "))
		})
	},
}

var portSetPVIDCmd = &cobra.Command{
	Use:   "set-pvid <port> <vlan-id>",
	Short: "Set the VLAN untagged ingress traffic is assigned to",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSwitchWrite(func(sw *switchmodel.Switch) error {
			return setPVID(sw, args[0], args[1])
		})
	},
}

func init() {
	portCmd.AddCommand(portDescribeCmd)
	portCmd.AddCommand(portSetPVIDCmd)
}
