package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/newtron-network/vlanadmin/pkg/cli"
)

// switchEntry is the --json form of one inventory entry; credentials are
// left out.
type switchEntry struct {
	Name    string `json:"name"`
	Model   string `json:"model"`
	Address string `json:"address"`
	Default bool   `json:"default,omitempty"`
}

var switchesCmd = &cobra.Command{
	Use:   "switches",
	Short: "List configured switches",
	Long: `List the switches defined in the config file. The default switch
(see 'settings set default_switch') is marked with *.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		names := app.cfg.Names()
		if app.jsonOutput {
			list := make([]switchEntry, 0, len(names))
			for _, name := range names {
				sec := app.cfg.Switches[name]
				list = append(list, switchEntry{
					Name:    name,
					Model:   sec.Model,
					Address: sec.Address,
					Default: name == app.settings.DefaultSwitch,
				})
			}
			return json.NewEncoder(app.out).Encode(list)
		}
		if len(names) == 0 {
			fmt.Fprintf(app.out, "No switches configured in %s\n", app.cfg.Path())
			return nil
		}

		t := cli.NewTableTo(app.out, "", "NAME", "MODEL", "ADDRESS", "STATUS")
		for _, name := range names {
			sec := app.cfg.Switches[name]
			mark := ""
			if name == app.settings.DefaultSwitch {
				mark = "*"
			}
			status := green("ok")
			if err := sec.Validate(); err != nil {
				status = red("invalid")
			}
			t.Row(mark, name, sec.Model, sec.Address, status)
		}
		t.Flush()

		if err := app.cfg.Validate(); err != nil {
			fmt.Fprintf(app.errOut, "\n%v\n", err)
		}
		return nil
	},
}
