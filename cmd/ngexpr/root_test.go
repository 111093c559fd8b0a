package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ngexpr-go/packages/compiler/src/config"
)

type testState struct {
	*globalState
	env    map[string]string
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

func newTestState(t *testing.T, files map[string]string) *testState {
	t.Helper()
	fs := afero.NewMemMapFs()
	for name, content := range files {
		require.NoError(t, afero.WriteFile(fs, name, []byte(content), 0o644))
	}
	ts := &testState{
		env:    map[string]string{},
		stdout: new(bytes.Buffer),
		stderr: new(bytes.Buffer),
	}
	ts.globalState = &globalState{
		ctx:   context.Background(),
		fs:    fs,
		getwd: func() (string, error) { return "/work", nil },
		lookupEnv: func(key string) (string, bool) {
			v, ok := ts.env[key]
			return v, ok
		},
		stdin:  strings.NewReader(""),
		stdout: ts.stdout,
		stderr: ts.stderr,
		cfg:    config.NewConfig(),
		logger: logrus.New(),
	}
	return ts
}

func (ts *testState) run(args ...string) error {
	cmd := newRootCommand(ts.globalState)
	if args == nil {
		args = []string{}
	}
	cmd.SetArgs(args)
	return cmd.Execute()
}

func requireExitCode(t *testing.T, err error, code int) {
	t.Helper()
	var e ExitCode
	require.True(t, errors.As(err, &e), "expected an ExitCode, got %v", err)
	assert.Equal(t, code, e.Code)
}

func TestParseCommand(t *testing.T) {
	t.Run("should print the unparsed tree", func(t *testing.T) {
		ts := newTestState(t, nil)
		require.NoError(t, ts.run("parse", "a | b:1"))
		assert.Equal(t, "(a | b:1)\n", ts.stdout.String())
		assert.Empty(t, ts.stderr.String())
	})

	t.Run("should report diagnostics on stderr", func(t *testing.T) {
		ts := newTestState(t, nil)
		err := ts.run("parse", "--color", "never", "a +")
		requireExitCode(t, err, 1)
		assert.ErrorIs(t, err, errDiagnostics)
		assert.Contains(t, ts.stderr.String(), "<expression>:1:4: error: Expression expected\n  a +\n     ^\n")
	})

	t.Run("should color diagnostics on request", func(t *testing.T) {
		ts := newTestState(t, nil)
		requireExitCode(t, ts.run("parse", "--color", "always", "a +"), 1)
		assert.Contains(t, ts.stderr.String(), "\x1b[")
	})

	t.Run("should read stdin in the requested mode", func(t *testing.T) {
		ts := newTestState(t, nil)
		ts.stdin = strings.NewReader("when idle\n")
		require.NoError(t, ts.run("parse", "-m", "block-parameter", "--block", "defer", "-f", "json"))
		var dto map[string]interface{}
		require.NoError(t, json.Unmarshal(ts.stdout.Bytes(), &dto))
		assert.Equal(t, "when idle", dto["source"])
	})

	t.Run("should reject a bad mode", func(t *testing.T) {
		ts := newTestState(t, nil)
		err := ts.run("parse", "-m", "bindng", "a")
		requireExitCode(t, err, 2)
		assert.Contains(t, err.Error(), `did you mean "binding"?`)

		requireExitCode(t, ts.run("parse", "-m", "template-bindings", "let x"), 2)
	})

	t.Run("should reject a bad format", func(t *testing.T) {
		ts := newTestState(t, nil)
		err := ts.run("parse", "--format", "yml", "a")
		requireExitCode(t, err, 2)
		assert.ErrorIs(t, err, config.ErrInvalidConfig)
	})

	t.Run("should use the nearest config file", func(t *testing.T) {
		ts := newTestState(t, map[string]string{"/.ngexpr.yaml": "format: tree\n"})
		require.NoError(t, ts.run("parse", "a "))
		assert.Equal(t, "Binding@0..2\n  Ref<a>@0..1\n    Identifier@0..1 \"a\"\n  Whitespace@1..2 \" \"\n", ts.stdout.String())
	})

	t.Run("should let the environment override the file", func(t *testing.T) {
		ts := newTestState(t, map[string]string{"/work/.ngexpr.yaml": "format: tree\n"})
		ts.env["NGEXPR_FORMAT"] = "yaml"
		require.NoError(t, ts.run("parse", "a"))
		assert.Contains(t, ts.stdout.String(), "mode: binding\n")
	})

	t.Run("should fail on an invalid config file", func(t *testing.T) {
		ts := newTestState(t, map[string]string{"/work/bad.yaml": "workers: 0\n"})
		err := ts.run("-c", "/work/bad.yaml", "parse", "a")
		requireExitCode(t, err, 2)
		assert.ErrorIs(t, err, config.ErrInvalidConfig)
	})
}

func TestTokensCommand(t *testing.T) {
	ts := newTestState(t, nil)
	require.NoError(t, ts.run("tokens", "a.b"))
	out := ts.stdout.String()
	assert.Contains(t, out, "0..1\tIdentifier\t\"a\"\n")
	assert.Contains(t, out, "1..2\tCharacter\t\".\"\n")
	assert.Contains(t, out, "2..3\tIdentifier\t\"b\"\n")

	ts = newTestState(t, nil)
	require.NoError(t, ts.run("tokens", "a # b"))
	assert.Contains(t, ts.stdout.String(), "2..3\tOperator\t\"#\"\n")

	ts = newTestState(t, nil)
	requireExitCode(t, ts.run("tokens", "--color", "never", "a @"), 1)
	assert.Contains(t, ts.stdout.String(), "2..3\tError\t\"@\"\tUnexpected character [@]\n")
}

func TestCheckCommand(t *testing.T) {
	files := map[string]string{
		"/work/src/a.html":  `<b [x]="a +">`,
		"/work/src/ok.html": `{{ ok }}`,
	}

	t.Run("should print diagnostics and a summary", func(t *testing.T) {
		ts := newTestState(t, files)
		err := ts.run("check", "--color", "never", "-j", "2", "/work")
		requireExitCode(t, err, 1)
		out := ts.stdout.String()
		assert.Contains(t, out, "/work/src/a.html:1:12: error: Expression expected\n")
		assert.True(t, strings.HasSuffix(out, "2 files, 2 bindings, 1 error\n"), out)
	})

	t.Run("should pass on clean templates", func(t *testing.T) {
		ts := newTestState(t, files)
		require.NoError(t, ts.run("check", "--color", "never", "/work/src/ok.html"))
		assert.Equal(t, "1 file, 1 binding, 0 errors\n", ts.stdout.String())
	})

	t.Run("should reject bad worker counts", func(t *testing.T) {
		ts := newTestState(t, files)
		requireExitCode(t, ts.run("check", "-j", "0", "/work"), 2)
	})
}

func TestUsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown command", []string{"pars", "a"}},
		{"unknown flag", []string{"parse", "--nope", "a"}},
		{"bad flag value", []string{"check", "-j", "many"}},
		{"too many arguments", []string{"parse", "a", "b"}},
		{"unexpected argument", []string{"version", "now"}},
		{"missing path", []string{"check", "/work/missing"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestState(t, nil)
			requireExitCode(t, ts.run(tt.args...), 2)
		})
	}

	t.Run("should suggest a command", func(t *testing.T) {
		ts := newTestState(t, nil)
		err := ts.run("pars", "a")
		assert.Contains(t, err.Error(), `unknown command "pars" for "ngexpr"`)
		assert.Contains(t, err.Error(), `did you mean "parse"?`)
	})

	t.Run("should print help without a command", func(t *testing.T) {
		ts := newTestState(t, nil)
		require.NoError(t, ts.run())
		assert.Contains(t, ts.stdout.String(), "Available Commands:")
	})
}

func TestVersionCommand(t *testing.T) {
	ts := newTestState(t, nil)
	require.NoError(t, ts.run("version"))
	assert.True(t, strings.HasPrefix(ts.stdout.String(), "ngexpr "+version+" ("))

	ts = newTestState(t, nil)
	require.NoError(t, ts.run("version", "--json"))
	var details map[string]string
	require.NoError(t, json.Unmarshal(ts.stdout.Bytes(), &details))
	assert.Equal(t, version, details["version"])
}

func TestColorEnabled(t *testing.T) {
	ts := newTestState(t, nil)
	ts.stdoutTTY = true
	assert.True(t, ts.colorEnabled())
	ts.env["NO_COLOR"] = "1"
	assert.False(t, ts.colorEnabled())
	ts.cfg.Color = config.ColorAlways
	assert.True(t, ts.colorEnabled())
	ts.cfg.Color = config.ColorNever
	assert.False(t, ts.colorEnabled())
}

func TestVerbosity(t *testing.T) {
	assert.Equal(t, 2, verbosity(logrus.TraceLevel))
	assert.Equal(t, 2, verbosity(logrus.DebugLevel))
	assert.Equal(t, 1, verbosity(logrus.InfoLevel))
	assert.Equal(t, -1, verbosity(logrus.WarnLevel))
	assert.Equal(t, -2, verbosity(logrus.ErrorLevel))
}
