package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"ngexpr-go/packages/compiler/src/config"
)

// errDiagnostics is returned when a command ran but reported problems in its
// input. It maps to exit code 1 and is not logged again.
var errDiagnostics = errors.New("diagnostics reported")

func newRootCommand(gs *globalState) *cobra.Command {
	root := &cobra.Command{
		Use:           "ngexpr",
		Short:         "Parse Angular template expressions",
		Long:          "ngexpr parses Angular template expressions into a lossless syntax tree\nand checks the bindings of template files.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          usageArgs(unknownCommand),
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return gs.setup(cmd.Flags())
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return exitCode(2, err)
	})
	root.SetIn(gs.stdin)
	root.SetOut(gs.stdout)
	root.SetErr(gs.stderr)
	root.PersistentFlags().AddFlagSet(rootFlagSet(&gs.flags))

	root.AddCommand(
		newParseCommand(gs),
		newTokensCommand(gs),
		newCheckCommand(gs),
		newLSPCommand(gs),
		newVersionCommand(gs),
	)
	return root
}

// usageArgs turns argument validation failures into usage errors.
func usageArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return exitCode(2, err)
		}
		return nil
	}
}

func unknownCommand(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return nil
	}
	err := fmt.Errorf("unknown command %q for %q", args[0], cmd.CommandPath())
	if suggestions := cmd.SuggestionsFor(args[0]); len(suggestions) > 0 {
		err = fmt.Errorf("%w, did you mean %q?", err, suggestions[0])
	}
	return err
}

func rootFlagSet(flags *globalFlags) *pflag.FlagSet {
	fs := pflag.NewFlagSet("", pflag.ContinueOnError)
	fs.StringVarP(&flags.configPath, "config", "c", "", "config file (default: nearest "+config.DefaultFileName+")")
	fs.StringVar(&flags.logLevel, "log-level", "", "log level: trace, debug, info, warn or error")
	fs.StringVar(&flags.logFormat, "log-format", "", "log format: text or json")
	fs.StringVar(&flags.color, "color", "", "colored output: auto, always or never")
	fs.BoolVarP(&flags.verbose, "verbose", "v", false, "enable debug logging")
	return fs
}

// setup loads the configuration and replaces the logger. Flags set on the
// command line win over the file and the environment.
func (gs *globalState) setup(flags *pflag.FlagSet) error {
	path := gs.flags.configPath
	if path == "" {
		if wd, err := gs.getwd(); err == nil {
			if found, ok := config.FindConfigFile(gs.fs, wd); ok {
				path = found
			}
		}
	}

	var opts []config.ConfigOption
	if flags.Changed("log-level") {
		opts = append(opts, config.WithLogLevel(gs.flags.logLevel))
	}
	if gs.flags.verbose {
		opts = append(opts, config.WithLogLevel("debug"))
	}
	if flags.Changed("log-format") {
		opts = append(opts, config.WithLogFormat(gs.flags.logFormat))
	}
	if flags.Changed("color") {
		opts = append(opts, config.WithColor(gs.flags.color))
	}

	cfg, err := config.Load(gs.fs, path, gs.lookupEnv, opts...)
	if err != nil {
		return exitCode(2, err)
	}
	logger, err := cfg.NewLogger(gs.stderr)
	if err != nil {
		return exitCode(2, err)
	}
	gs.cfg = cfg
	gs.logger = logger
	gs.logger.WithField("config", path).Debug("configuration loaded")
	return nil
}

// colorEnabled decides whether stdout gets ANSI colors.
func (gs *globalState) colorEnabled() bool {
	switch gs.cfg.Color {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	}
	if _, ok := gs.lookupEnv("NO_COLOR"); ok {
		return false
	}
	return gs.stdoutTTY
}
