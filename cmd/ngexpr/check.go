package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"ngexpr-go/packages/compiler/src/config"
	"ngexpr-go/packages/compiler/src/language_service"
)

type checkCmd struct {
	gs      *globalState
	watch   bool
	workers int
}

func (c *checkCmd) run(cmd *cobra.Command, args []string) error {
	if cmd.Flags().Changed("workers") {
		if err := c.gs.cfg.Apply(config.WithWorkers(c.workers)).Validate(); err != nil {
			return exitCode(2, err)
		}
	}
	roots := args
	if len(roots) == 0 {
		roots = []string{"."}
	}

	checker := language_service.NewChecker(c.gs.fs, c.gs.cfg, c.gs.logger)
	results, err := checker.Check(c.gs.ctx, roots...)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		return exitCode(2, err)
	}

	p := newPrinter(c.gs.stdout, c.gs.colorEnabled())
	bindings, errs := 0, 0
	for _, r := range results {
		bindings += r.Bindings
		errs += len(r.Errors)
		for _, e := range r.Errors {
			p.diagnostic(e)
		}
	}
	p.summary(len(results), bindings, errs)

	if c.watch {
		return checker.Watch(c.gs.ctx, roots, func(r *language_service.FileResult) {
			for _, e := range r.Errors {
				p.diagnostic(e)
			}
			p.summary(1, r.Bindings, len(r.Errors))
		})
	}
	if errs > 0 {
		return exitCode(1, errDiagnostics)
	}
	return nil
}

func newCheckCommand(gs *globalState) *cobra.Command {
	c := &checkCmd{gs: gs}
	cmd := &cobra.Command{
		Use:   "check [path...]",
		Short: "Check the bindings of template files",
		Long: "Check every binding of the templates found under the given paths\n" +
			"(default: the current directory). Files are selected by the configured\n" +
			"extensions; a .ts file has the inline templates of its components checked.",
		RunE: c.run,
	}
	cmd.Flags().BoolVarP(&c.watch, "watch", "w", false, "re-check templates when they change")
	cmd.Flags().IntVarP(&c.workers, "workers", "j", 0, "files checked concurrently (default: number of CPUs)")
	return cmd
}
