// Command ngexpr parses Angular template expressions and checks the
// bindings of template files.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	gs := newGlobalState(ctx)
	if err := newRootCommand(gs).Execute(); err != nil {
		code := 1
		var e ExitCode
		if errors.As(err, &e) {
			code = e.Code
		}
		if !errors.Is(err, errDiagnostics) {
			gs.logger.Error(err)
		}
		stop()
		os.Exit(code)
	}
}
