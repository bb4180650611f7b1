package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sysconfig"
)

func (a *app) makeCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check [file]",
		Short: "Validate a configuration file without building anything",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fpath := a.flags.Paths.ConfigFile
			if len(args) > 0 {
				fpath = args[0]
			}

			doc, err := a.repos.Config(fpath)
			if err != nil {
				return err
			}
			if _, err := sysconfig.BuildInstructions(doc); err != nil {
				return err
			}

			fmt.Printf("%s: %d commands OK\n", fpath, len(doc.Commands))
			return nil
		},
	}
}
