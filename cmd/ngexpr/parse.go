package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"ngexpr-go/packages/compiler/src/config"
	"ngexpr-go/packages/compiler/src/expression_parser"
	"ngexpr-go/packages/compiler/src/util"
)

const expressionURL = "<expression>"

// modeFlags are the flags selecting a parse mode, shared by parse and tokens.
type modeFlags struct {
	mode  string
	key   string
	block string
	index int
}

func (m *modeFlags) flagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("", pflag.ContinueOnError)
	fs.StringVarP(&m.mode, "mode", "m", expression_parser.ModeBinding.String(),
		"parse mode: "+strings.Join(expression_parser.ModeKindNames(), ", "))
	fs.StringVar(&m.key, "key", "", "directive key for template-bindings, e.g. ngFor")
	fs.StringVar(&m.block, "block", "", "block name for block-parameter, e.g. for or defer")
	fs.IntVar(&m.index, "index", 0, "parameter index for block-parameter")
	return fs
}

func (m *modeFlags) resolve() (expression_parser.Mode, error) {
	kind, err := expression_parser.ParseModeKind(m.mode)
	if err != nil {
		return expression_parser.Mode{}, err
	}
	mode := expression_parser.Mode{
		Kind:           kind,
		TemplateKey:    m.key,
		BlockName:      m.block,
		ParameterIndex: m.index,
	}
	return mode, mode.Validate()
}

// readExpression takes the expression from the single argument, or from
// stdin when there is none or it is "-".
func readExpression(gs *globalState, args []string) (string, error) {
	if len(args) == 1 && args[0] != "-" {
		return args[0], nil
	}
	data, err := io.ReadAll(gs.stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return strings.TrimSuffix(string(data), "\n"), nil
}

type parseCmd struct {
	gs     *globalState
	mode   modeFlags
	format string
}

func (c *parseCmd) run(cmd *cobra.Command, args []string) error {
	mode, err := c.mode.resolve()
	if err != nil {
		return exitCode(2, err)
	}
	if cmd.Flags().Changed("format") {
		if err := c.gs.cfg.Apply(config.WithFormat(c.format)).Validate(); err != nil {
			return exitCode(2, err)
		}
	}
	text, err := readExpression(c.gs, args)
	if err != nil {
		return err
	}

	parser := expression_parser.NewParser(expression_parser.NewLexer(), expression_parser.WithLogger(c.gs.logger))
	tree, err := parser.Parse(text, mode)
	if err != nil {
		return exitCode(2, err)
	}
	out, err := expression_parser.Encode(tree, expression_parser.Format(c.gs.cfg.Format))
	if err != nil {
		return err
	}
	if _, err := c.gs.stdout.Write(out); err != nil {
		return err
	}

	if !tree.HasErrors() {
		return nil
	}
	p := newPrinter(c.gs.stderr, c.gs.colorEnabled())
	file := util.NewParseSourceFile(text, expressionURL)
	for _, d := range tree.Diagnostics {
		p.diagnostic(d.ParseError(file, 0))
	}
	return exitCode(1, errDiagnostics)
}

func newParseCommand(gs *globalState) *cobra.Command {
	c := &parseCmd{gs: gs}
	cmd := &cobra.Command{
		Use:   "parse [expression]",
		Short: "Parse an expression and print its syntax tree",
		Long: "Parse an expression and print it in the configured format.\n" +
			"Diagnostics go to stderr; the exit code is 1 when there are any.",
		Example: `  ngexpr parse 'user?.name | uppercase'
  ngexpr parse -m action --format tree 'save($event); close()'
  ngexpr parse -m template-bindings --key ngFor 'let item of items; trackBy: id'
  echo 'when idle' | ngexpr parse -m block-parameter --block defer`,
		Args: usageArgs(cobra.MaximumNArgs(1)),
		RunE: c.run,
	}
	cmd.Flags().AddFlagSet(c.mode.flagSet())
	cmd.Flags().StringVarP(&c.format, "format", "f", "", "output format: "+strings.Join(expression_parser.Formats(), ", "))
	return cmd
}

type tokensCmd struct {
	gs   *globalState
	mode modeFlags
}

func (c *tokensCmd) run(_ *cobra.Command, args []string) error {
	mode, err := c.mode.resolve()
	if err != nil {
		return exitCode(2, err)
	}
	text, err := readExpression(c.gs, args)
	if err != nil {
		return err
	}

	p := newPrinter(c.gs.stdout, c.gs.colorEnabled())
	failed := false
	for _, tok := range expression_parser.NewLexer().Tokenize(text, mode) {
		fmt.Fprintf(c.gs.stdout, "%d..%d\t%s\t%q", tok.Index, tok.End, tok.Type, tok.Raw)
		if tok.Err != "" {
			failed = true
			fmt.Fprint(c.gs.stdout, "\t")
			p.errorC.Fprint(c.gs.stdout, tok.Err)
		}
		fmt.Fprintln(c.gs.stdout)
	}
	if failed {
		return exitCode(1, errDiagnostics)
	}
	return nil
}

func newTokensCommand(gs *globalState) *cobra.Command {
	c := &tokensCmd{gs: gs}
	cmd := &cobra.Command{
		Use:   "tokens [expression]",
		Short: "Print the tokens of an expression",
		Args:  usageArgs(cobra.MaximumNArgs(1)),
		RunE:  c.run,
	}
	cmd.Flags().AddFlagSet(c.mode.flagSet())
	return cmd
}
