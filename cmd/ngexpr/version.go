package main

import (
	"encoding/json"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "0.1.0-dev"

type versionCmd struct {
	gs     *globalState
	isJSON bool
}

func (c *versionCmd) run(_ *cobra.Command, _ []string) error {
	if !c.isJSON {
		_, err := fmt.Fprintf(c.gs.stdout, "ngexpr %s (%s %s/%s)\n", version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
		return err
	}

	details, err := json.Marshal(map[string]string{
		"version":   version,
		"goVersion": runtime.Version(),
		"goOs":      runtime.GOOS,
		"goArch":    runtime.GOARCH,
	})
	if err != nil {
		return fmt.Errorf("failed to produce JSON version details: %w", err)
	}
	_, err = fmt.Fprintln(c.gs.stdout, string(details))
	return err
}

func newVersionCommand(gs *globalState) *cobra.Command {
	c := &versionCmd{gs: gs}
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show application version",
		Long:  `Show the application version and exit.`,
		Args:  usageArgs(cobra.NoArgs),
		RunE:  c.run,
	}
	cmd.Flags().BoolVar(&c.isJSON, "json", false, "if set, output version information will be in JSON format")
	return cmd
}
