package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"

	"ngexpr-go/packages/compiler/src/language_service"
)

type lspCmd struct {
	gs      *globalState
	logFile string
}

// verbosity maps the configured log level onto commonlog's scale.
func verbosity(level logrus.Level) int {
	switch {
	case level >= logrus.DebugLevel:
		return 2
	case level == logrus.InfoLevel:
		return 1
	case level == logrus.WarnLevel:
		return -1
	default:
		return -2
	}
}

func (c *lspCmd) run(_ *cobra.Command, _ []string) error {
	var path *string
	if c.logFile != "" {
		path = &c.logFile
	}
	commonlog.Configure(verbosity(c.gs.logger.Level), path)

	checker := language_service.NewChecker(c.gs.fs, c.gs.cfg, c.gs.logger)
	return language_service.NewServer(checker, version).RunStdio()
}

func newLSPCommand(gs *globalState) *cobra.Command {
	c := &lspCmd{gs: gs}
	cmd := &cobra.Command{
		Use:   "lsp",
		Short: "Run the language server on stdio",
		Args:  usageArgs(cobra.NoArgs),
		RunE:  c.run,
	}
	cmd.Flags().StringVar(&c.logFile, "log-file", "", "write server logs to this file instead of stderr")
	return cmd
}
