package main

import (
	"context"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"ngexpr-go/packages/compiler/src/config"
)

// globalState holds everything a command touches outside its own flags, so
// tests can run commands against buffers and an in-memory filesystem.
type globalState struct {
	ctx context.Context

	fs        afero.Fs
	getwd     func() (string, error)
	lookupEnv config.LookupFunc
	stdin     io.Reader
	stdout    io.Writer
	stderr    io.Writer
	stdoutTTY bool

	flags  globalFlags
	cfg    *config.Config
	logger *logrus.Logger
}

type globalFlags struct {
	configPath string
	logLevel   string
	logFormat  string
	color      string
	verbose    bool
}

func newGlobalState(ctx context.Context) *globalState {
	return &globalState{
		ctx:       ctx,
		fs:        afero.NewOsFs(),
		getwd:     os.Getwd,
		lookupEnv: os.LookupEnv,
		stdin:     os.Stdin,
		stdout:    os.Stdout,
		stderr:    os.Stderr,
		stdoutTTY: isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()),
		cfg:       config.NewConfig(),
		logger: &logrus.Logger{
			Out:       os.Stderr,
			Formatter: new(logrus.TextFormatter),
			Hooks:     make(logrus.LevelHooks),
			Level:     logrus.InfoLevel,
		},
	}
}

// ExitCode is an error carrying the process exit status.
type ExitCode struct {
	error
	Code int
}

func exitCode(code int, err error) ExitCode {
	return ExitCode{error: err, Code: code}
}

func (e ExitCode) Unwrap() error {
	return e.error
}
