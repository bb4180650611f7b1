// Package cmd wires the parsing library into the sysconfig command line
// tool.
package cmd

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/sysconfig"
	"github.com/sysconfig/pkg/repo"
)

type Flags struct {
	Paths Paths
	// YAML file with additional keyword definitions
	Keywords string

	Debug bool
	Trace bool
}

type app struct {
	flags  Flags
	parser *sysconfig.Parser
	repos  *repo.Repository
}

func Run() error {
	a := &app{}

	com := &cobra.Command{
		Use:          "sysconfig",
		Short:        "Parse system configuration and shadow database files",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}

	// This set of flags propagates
	var fl *pflag.FlagSet = com.PersistentFlags()
	fl.BoolVar(&a.flags.Debug, "debug", false, "enable debug logging")
	fl.BoolVar(&a.flags.Trace, "trace", false, "enable trace logging")
	fl.StringVar(&a.flags.Keywords, "keywords", "", "YAML file with additional keyword definitions")

	com.AddCommand(
		a.makeBuildCommand(),
		a.makeCheckCommand(),
		a.makeShadowCommand(),
	)
	return com.Execute()
}

func (a *app) setup() error {
	level := zerolog.InfoLevel
	switch {
	case a.flags.Trace:
		level = zerolog.TraceLevel
	case a.flags.Debug:
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	BindPaths(&a.flags.Paths)

	parser := sysconfig.NewParser()
	for name, def := range sysconfig.SupportedKeywords() {
		log.Trace().Str("keyword", name).Msg("registering keyword")
		parser.AddKeyword(name, def)
	}
	if a.flags.Keywords != "" {
		f, err := os.Open(a.flags.Keywords)
		if err != nil {
			return err
		}
		defer f.Close()

		defs, err := sysconfig.LoadKeywordDefinitions(f)
		if err != nil {
			return err
		}
		for name, def := range defs {
			log.Trace().Str("keyword", name).Msg("registering extra keyword")
			parser.AddKeyword(name, def)
		}
	}

	a.parser = parser
	a.repos = repo.New(parser)
	return nil
}
