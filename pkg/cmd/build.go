package cmd

import (
	"encoding/json"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sysconfig"
)

// instructionEnvelope tags every serialized instruction with its kind so a
// consumer can dispatch without guessing from the payload shape.
type instructionEnvelope struct {
	Instruction string                `json:"instruction" yaml:"instruction"`
	Spec        sysconfig.Instruction `json:"spec" yaml:"spec"`
}

func (a *app) makeBuildCommand() *cobra.Command {
	var (
		outputFormat string
		outputFile   string
	)

	cmd := &cobra.Command{
		Use:   "build [file]",
		Short: "Parse a configuration file and emit its instruction set",
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
			set, err := sysconfig.BuildInstructions(doc)
			if err != nil {
				return err
			}
			log.Debug().Int("commands", len(doc.Commands)).
				Int("instructions", len(set)).Msg("configuration built")

			var out io.Writer = os.Stdout
			if outputFile != "" {
				f, err := os.Create(outputFile)
				if err != nil {
					return errors.Wrap(err, "failed to create output file")
				}
				defer f.Close()
				out = f
			}
			return writeInstructions(out, set, outputFormat)
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "output-format", "O", "json",
		"output format: json, json-pretty or yaml")
	cmd.Flags().StringVarP(&outputFile, "output-file", "o", "",
		"write to a file instead of stdout")
	return cmd
}

func writeInstructions(w io.Writer, set sysconfig.InstructionSet, format string) error {
	envs := make([]instructionEnvelope, 0, len(set))
	for _, ins := range set {
		envs = append(envs, instructionEnvelope{Instruction: ins.Kind(), Spec: ins})
	}

	switch format {
	case "json":
		return json.NewEncoder(w).Encode(envs)
	case "json-pretty":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(envs)
	case "yaml":
		return yaml.NewEncoder(w).Encode(envs)
	default:
		return errors.Errorf("format %q not known", format)
	}
}
