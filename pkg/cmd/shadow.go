package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/sysconfig/pkg/shadow"
)

// The shadow subcommands never write the shadow database; set-hash prints
// the updated file to stdout and leaves persisting it to the caller.
func (a *app) makeShadowCommand() *cobra.Command {
	var (
		file   string
		asJSON bool
	)

	parent := &cobra.Command{
		Use:   "shadow",
		Short: "Inspect shadow database files",
	}
	parent.PersistentFlags().StringVarP(&file, "file", "f", "",
		"shadow file to read (default /etc/shadow)")
	parent.PersistentFlags().BoolVar(&asJSON, "json", false, "output in json format")

	fpath := func() string {
		if file != "" {
			return file
		}
		return a.flags.Paths.ShadowFile
	}

	get := &cobra.Command{
		Use:   "get name",
		Short: "Print one shadow entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := a.repos.Shadow(fpath())
			if err != nil {
				return err
			}
			entry := f.Get(args[0])
			if entry == nil {
				return errors.Errorf("no entry named %q in %s", args[0], fpath())
			}
			return printEntries(asJSON, entry)
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "Print every shadow entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := a.repos.Shadow(fpath())
			if err != nil {
				return err
			}
			return printEntries(asJSON, f.Entries...)
		},
	}

	setHash := &cobra.Command{
		Use:   "set-hash name hash",
		Short: "Replace an entry's password hash and print the updated file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Parse directly, the cached copy must stay pristine.
			b, err := os.ReadFile(fpath())
			if err != nil {
				return errors.Wrapf(err, "failed to read %s", fpath())
			}
			f, err := shadow.ParseNamed(fpath(), string(b))
			if err != nil {
				return err
			}

			entry := f.Get(args[0])
			if entry == nil {
				return errors.Errorf("no entry named %q in %s", args[0], fpath())
			}
			if err := entry.SetPasswordHash(args[1]); err != nil {
				return err
			}
			f.Upsert(entry)

			fmt.Println(f.String())
			return nil
		},
	}

	parent.AddCommand(get, list, setHash)
	return parent
}

func printEntries(asJSON bool, entries ...*shadow.Entry) error {
	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}
	for _, e := range entries {
		fmt.Println(e.String())
	}
	return nil
}
