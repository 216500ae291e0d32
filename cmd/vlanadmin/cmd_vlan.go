package main

import (
	"github.com/spf13/cobra"

	"github.com/newtron-network/vlanadmin/pkg/switchmodel"
)

var vlanCmd = &cobra.Command{
	Use:   "vlan",
	Short: "Create, delete, rename VLANs and change memberships",
	Long: `Manage VLANs on the selected switch.

Changes are previewed unless -x is given. Port lists accept ranges.

Examples:
  vlanadmin -s office vlan create 30 --name voice
  vlanadmin -s office vlan rename 30 phones -x
  vlanadmin -s office vlan set-member 30 1-4,7 tagged -x
  vlanadmin -s office vlan delete 30 -x`,
}

var vlanCreateName string

var vlanCreateCmd = &cobra.Command{
	Use:   "create <vlan-id>",
	Short: "Create a VLAN with no members",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSwitchWrite(func(sw *switchmodel.Switch) error {
			return createVlan(sw, args[0], vlanCreateName)
		})
	},
}

var vlanDeleteCmd = &cobra.Command{
	Use:   "delete <vlan-id>",
	Short: "Delete a VLAN",
	Long: `Delete a VLAN. Ports whose PVID is this VLAN must be moved first
(see 'port set-pvid').`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSwitchWrite(func(sw *switchmodel.Switch) error {
			return deleteVlan(sw, args[0])
		})
	},
}

var vlanRenameCmd = &cobra.Command{
	Use:   "rename <vlan-id> <name>",
	Short: "Rename a VLAN",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSwitchWrite(func(sw *switchmodel.Switch) error {
			return renameVlan(sw, args[0], args[1])
		})
	},
}

var vlanSetMemberCmd = &cobra.Command{
	Use:   "set-member <vlan-id> <ports> <none|tagged|untagged>",
	Short: "Set how ports belong to a VLAN",
	Long: `Set the membership of one or more ports in a VLAN.

Making a port untagged also moves its PVID to this VLAN and removes it from
the VLAN it was untagged in before.

Examples:
  vlanadmin -s office vlan set-member 20 3 untagged
  vlanadmin -s office vlan set-member 30 1-4,7 tagged -x
  vlanadmin -s office vlan set-member 30 7 none -x`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSwitchWrite(func(sw *switchmodel.Switch) error {
			return setMembers(sw, args[0], args[1], args[2])
		})
	},
}

func init() {
	vlanCreateCmd.Flags().StringVar(&vlanCreateName, "name", "", "VLAN name")

	vlanCmd.AddCommand(vlanCreateCmd)
	vlanCmd.AddCommand(vlanDeleteCmd)
	vlanCmd.AddCommand(vlanRenameCmd)
	vlanCmd.AddCommand(vlanSetMemberCmd)
}
