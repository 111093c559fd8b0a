package expression_parser_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ngexpr-go/packages/compiler/src/expression_parser"
	"ngexpr-go/packages/compiler/src/util"
)

var parser = expression_parser.NewParser(expression_parser.NewLexer())

func parseAction(text string) *expression_parser.Tree {
	return parser.ParseAction(text)
}

func parseBinding(text string) *expression_parser.Tree {
	return parser.ParseBinding(text)
}

func parseSimpleBinding(text string) *expression_parser.Tree {
	return parser.ParseSimpleBinding(text)
}

func messages(tree *expression_parser.Tree) []string {
	var msgs []string
	for _, d := range tree.Diagnostics {
		msgs = append(msgs, d.Message)
	}
	return msgs
}

func checkTree(tree *expression_parser.Tree, exp string, expected ...string) func(*testing.T) {
	return func(t *testing.T) {
		t.Helper()
		expectedStr := exp
		if len(expected) > 0 {
			expectedStr = expected[0]
		}
		assert.Empty(t, tree.Diagnostics, "unexpected diagnostics for %q", exp)
		assert.Equal(t, expectedStr, expression_parser.Unparse(tree))
	}
}

func checkAction(exp string, expected ...string) func(*testing.T) {
	return checkTree(parseAction(exp), exp, expected...)
}

func checkBinding(exp string, expected ...string) func(*testing.T) {
	return checkTree(parseBinding(exp), exp, expected...)
}

// expectError checks that one diagnostic contains message; errorCount, when
// given, pins the number of diagnostics.
func expectError(tree *expression_parser.Tree, message string, errorCount ...int) func(*testing.T) {
	return func(t *testing.T) {
		t.Helper()
		msgs := messages(tree)
		if len(errorCount) > 0 {
			require.Len(t, msgs, errorCount[0], "diagnostics for %q: %v", tree.Source, msgs)
		} else {
			require.NotEmpty(t, msgs, "expected an error containing %q for %q", message, tree.Source)
		}
		for _, msg := range msgs {
			if strings.Contains(msg, message) {
				return
			}
		}
		t.Errorf("expected an error containing %q for %q, got %q", message, tree.Source, msgs)
	}
}

func expectActionError(text, message string, errorCount ...int) func(*testing.T) {
	return expectError(parseAction(text), message, errorCount...)
}

func expectBindingError(text, message string, errorCount ...int) func(*testing.T) {
	return expectError(parseBinding(text), message, errorCount...)
}

// checkActionWithError checks the recovered tree and one of its diagnostics.
func checkActionWithError(text, expected, message string) func(*testing.T) {
	return func(t *testing.T) {
		tree := parseAction(text)
		assert.Equal(t, expected, expression_parser.Unparse(tree))
		expectError(tree, message)(t)
	}
}

func TestParser(t *testing.T) {
	t.Run("parseAction", func(t *testing.T) {
		t.Run("should parse numbers", checkAction("1"))

		t.Run("should parse strings", func(t *testing.T) {
			checkAction("'1'", `"1"`)(t)
			checkAction(`"1"`)(t)
		})

		t.Run("should parse null", checkAction("null"))

		t.Run("should parse undefined", checkAction("undefined"))

		t.Run("should parse unary - and + expressions", func(t *testing.T) {
			checkAction("-1", "-1")(t)
			checkAction("+1", "+1")(t)
			checkAction(`-'1'`, `-"1"`)(t)
			checkAction(`+'1'`, `+"1"`)(t)
		})

		t.Run("should parse unary ! expressions", func(t *testing.T) {
			checkAction("!true")(t)
			checkAction("!!true")(t)
			checkAction("!!!true")(t)
		})

		t.Run("should parse postfix ! expression", func(t *testing.T) {
			checkAction("true!")(t)
			checkAction("a!.b")(t)
			checkAction("a!!!!.b")(t)
			checkAction("a!()")(t)
			checkAction("a.b!()")(t)
		})

		t.Run("should parse exponentiation expressions", func(t *testing.T) {
			checkAction("1*2**3", "1 * 2 ** 3")(t)
		})

		t.Run("should parse multiplicative expressions", func(t *testing.T) {
			checkAction("3*4/2%5", "3 * 4 / 2 % 5")(t)
		})

		t.Run("should parse additive expressions", checkAction("3 + 6 - 2"))

		t.Run("should parse relational expressions", func(t *testing.T) {
			checkAction("2 < 3")(t)
			checkAction("2 > 3")(t)
			checkAction("2 <= 2")(t)
			checkAction("2 >= 2")(t)
		})

		t.Run("should parse equality expressions", func(t *testing.T) {
			checkAction("2 == 3")(t)
			checkAction("2 != 3")(t)
		})

		t.Run("should parse strict equality expressions", func(t *testing.T) {
			checkAction("2 === 3")(t)
			checkAction("2 !== 3")(t)
		})

		t.Run("should parse expressions", func(t *testing.T) {
			checkAction("true && true")(t)
			checkAction("true || false")(t)
			checkAction("null ?? 0")(t)
			checkAction("null ?? undefined ?? 0")(t)
		})

		t.Run("should parse typeof expression", func(t *testing.T) {
			checkAction(`typeof {} === "object"`)(t)
			checkAction(`(!(typeof {} === "number"))`)(t)
		})

		t.Run("should parse void expression", func(t *testing.T) {
			checkAction(`void 0`)(t)
			checkAction(`(!(void 0))`)(t)
		})

		t.Run("should parse grouped expressions", checkAction("(1 + 2) * 3"))

		t.Run("should ignore comments in expressions", func(t *testing.T) {
			checkAction("a //comment", "a")(t)
			checkAction("a /* b */ + c", "a + c")(t)
		})

		t.Run("should retain // in string literals", func(t *testing.T) {
			checkAction(`"http://www.google.com"`, `"http://www.google.com"`)(t)
		})

		t.Run("should parse an empty string", checkAction(""))

		t.Run("should parse assignments", func(t *testing.T) {
			checkAction("a = b")(t)
			checkAction("a.b = c")(t)
			checkAction("a[0] = b")(t)
			checkAction("a = b = c")(t)
		})

		t.Run("literals", func(t *testing.T) {
			t.Run("should parse array", func(t *testing.T) {
				checkAction("[1][0]")(t)
				checkAction("[[1]][0][0]")(t)
				checkAction("[]")(t)
				checkAction("[].length")(t)
				checkAction("[1, 2].length")(t)
				checkAction("[1, , 3]", "[1, 3]")(t)
			})

			t.Run("should parse map", func(t *testing.T) {
				checkAction("{}")(t)
				checkAction(`{a: 1, "b": 2}`)(t)
				checkAction("{'a': 1}")(t)
				checkAction("{if: 1, this: 2}")(t)
			})

			t.Run("should parse property shorthand declarations", func(t *testing.T) {
				checkAction("{a, b, c}", "{a: a, b: b, c: c}")(t)
				checkAction("{a: 1, b}", "{a: 1, b: b}")(t)
			})

			t.Run("should parse strings with entities", func(t *testing.T) {
				checkAction(`'a&quot;b'`, `"a"b"`)(t)
				checkAction(`&quot;abc&quot;`, `"abc"`)(t)
			})
		})

		t.Run("member access", func(t *testing.T) {
			t.Run("should parse field access", func(t *testing.T) {
				checkAction("a")(t)
				checkAction("this.a")(t)
				checkAction("a.a")(t)
				checkAction("a.b.c")(t)
			})

			t.Run("should parse safe field access", func(t *testing.T) {
				checkAction("a?.a")(t)
				checkAction("a.a?.a")(t)
			})

			t.Run("should accept keywords as member names", checkAction("a.if.let"))
		})

		t.Run("keyed read", func(t *testing.T) {
			checkAction("a[1]")(t)
			checkAction("a['b']", `a["b"]`)(t)
			checkAction("a?.[1]")(t)
			checkAction("a.b[c + 1]")(t)
		})

		t.Run("calls", func(t *testing.T) {
			checkAction("fn()")(t)
			checkAction("add(1, 2)")(t)
			checkAction("a.add(1, 2)")(t)
			checkAction("fn().add(1, 2)")(t)
			checkAction("fn?.()")(t)
			checkAction("a?.b()")(t)
			checkAction("a?.b?.()")(t)
		})

		t.Run("conditional", func(t *testing.T) {
			checkAction("7 == 3 + 4 ? 10 : 20")(t)
			checkAction("false ? 10 : 20")(t)
			checkAction("a ? b ? 1 : 2 : 3")(t)
		})

		t.Run("should parse chains", func(t *testing.T) {
			checkAction("1;2", "1; 2;")(t)
			checkAction("a();b()", "a(); b();")(t)
			checkAction("a;;b", "a; b;")(t)
		})

		t.Run("errors", func(t *testing.T) {
			t.Run("should report unexpected tokens", expectActionError("[1,2] trac", "Unexpected token 'trac'", 1))

			t.Run("should report reasonable error for unconsumed tokens", expectActionError(")", "Expression expected", 1))

			t.Run("should parse on after an unexpected token", func(t *testing.T) {
				tree := parseAction("a b c")
				assert.Equal(t, []string{"Unexpected token 'b'", "Unexpected token 'c'"}, messages(tree))
				assert.Equal(t, "Action(Chain(ExpressionStatement(Ref<a>), ExpressionStatement(Ref<b>), ExpressionStatement(Ref<c>)))",
					expression_parser.Serialize(tree.Root))
			})

			t.Run("should report an unexpected token once", func(t *testing.T) {
				tree := parseAction("a )")
				assert.Equal(t, []string{"Unexpected token ')'"}, messages(tree))
				assert.Equal(t, "Action(Chain(ExpressionStatement(Ref<a>), Error))", expression_parser.Serialize(tree.Root))
			})

			t.Run("should report a missing expected token", expectActionError("a(b", ", or ) expected", 1))

			t.Run("should keep a trailing comma inside the call", func(t *testing.T) {
				tree := parseBinding("foo(a,)")
				assert.Equal(t, []string{"Expression expected"}, messages(tree))
				assert.Equal(t, expression_parser.Span{Start: 6, End: 7}, tree.Diagnostics[0].Span)
				assert.Equal(t, "Binding(Call(Ref<foo>, Arguments(Ref<a>, Error)))", expression_parser.Serialize(tree.Root))
			})

			t.Run("should skip to the closing paren of a call", func(t *testing.T) {
				tree := parseBinding("foo(a b(c)).d")
				assert.Equal(t, []string{", or ) expected"}, messages(tree))
				assert.Equal(t, expression_parser.Span{Start: 6, End: 7}, tree.Diagnostics[0].Span)
				assert.Equal(t, "Binding(Member<d>(Call(Ref<foo>, Arguments(Ref<a>, Skip))))", expression_parser.Serialize(tree.Root))

				tree = parseAction("foo(a b)")
				assert.Equal(t, []string{", or ) expected"}, messages(tree))
			})

			t.Run("should report a missing member name", expectActionError("x.(", "Name expected"))

			t.Run("should report invalid property keys", func(t *testing.T) {
				expectActionError("{1234:0}", "Expected identifier, keyword, or string", 1)(t)
				expectActionError("{(:0}", "Expected identifier, keyword, or string", 1)(t)
			})

			t.Run("should report a missing colon in a property", func(t *testing.T) {
				expectActionError("{a.b}", ": expected")(t)
				expectActionError(`{"a-b"}`, ": expected", 1)(t)
			})

			t.Run("should report a missing else branch", expectActionError("true?1", ": expected", 1))

			t.Run("should report a missing key", expectActionError("a[]", "Expression expected", 1))

			t.Run("should report a missing ]", expectActionError("a[1 + 2", "] expected", 1))

			t.Run("should report a missing right operand", expectActionError("1 +", "Expression expected", 1))

			t.Run("should report a missing operand of a prefix", expectActionError("!", "Expression expected", 1))

			t.Run("should not allow pipes in actions", expectActionError("x|blah", "Action expression cannot contain pipes", 1))

			t.Run("should reject unsupported operators", func(t *testing.T) {
				expectActionError("a & b", "Unexpected token '&'")(t)
				expectActionError("a ^ b", "Unexpected token '^'")(t)
				expectActionError("#a", "Expression expected")(t)
			})

			t.Run("should report lexical errors once", func(t *testing.T) {
				expectActionError("a @", "Unexpected character [@]", 1)(t)
				expectActionError(`"abc`, "Unterminated quote", 1)(t)
				expectActionError("1_", "Invalid numeric separator", 1)(t)
			})
		})

		t.Run("recover", func(t *testing.T) {
			t.Run("should recover from extra parenthesis", checkActionWithError("((a)))", "((a))", "Unexpected token ')'"))

			t.Run("should recover from a missing )", checkActionWithError("(a;b", "(a); b;", ") expected"))

			t.Run("should recover from a missing ]", checkActionWithError("[a,b", "[a, b]", "] expected"))

			t.Run("should recover from a missing selector", checkActionWithError("a.", "a.", "Name expected"))

			t.Run("should recover from a missing selector in an array literal", checkActionWithError("[[a.], b, c]", "[[a.], b, c]", "Name expected"))

			t.Run("should recover from broken expression in template literal", checkActionWithError("a(1,", "a(1)", ", or ) expected"))

			t.Run("should keep the statement after a broken one", func(t *testing.T) {
				tree := parseAction("a = ; b()")
				assert.Equal(t, []string{"Expression expected"}, messages(tree))
				assert.Equal(t, "a = ; b();", expression_parser.Unparse(tree))
			})
		})
	})

	t.Run("parseBinding", func(t *testing.T) {
		t.Run("pipes", func(t *testing.T) {
			t.Run("should parse pipes", func(t *testing.T) {
				checkBinding("a(b | c)", "a((b | c))")(t)
				checkBinding("a.b(c.d(e) | f)", "a.b((c.d(e) | f))")(t)
				checkBinding("[1, 2, 3] | a", "([1, 2, 3] | a)")(t)
				checkBinding("{a: 1, \"b\": 2} | c", "({a: 1, \"b\": 2} | c)")(t)
				checkBinding("a[b] | c", "(a[b] | c)")(t)
				checkBinding("a?.b | c", "(a?.b | c)")(t)
				checkBinding("true | a", "(true | a)")(t)
				checkBinding("a | b:c | d", "((a | b:c) | d)")(t)
				checkBinding("a | b:(c | d)", "(a | b:((c | d)))")(t)
			})

			t.Run("should only allow identifier or keyword as formatter names", func(t *testing.T) {
				expectBindingError(`"Foo"|(`, "Expected identifier or keyword")(t)
				expectBindingError(`"Foo"|1234`, "Expected identifier or keyword")(t)
				expectBindingError(`"Foo"|"uppercase"`, "Expected identifier or keyword")(t)
			})

			t.Run("should parse pipes with keyword names", checkBinding("a | if", "(a | if)"))

			t.Run("should report a missing pipe argument", expectBindingError("a | b:", "Expression expected", 1))

			t.Run("should keep the pipe tree shape", func(t *testing.T) {
				tree := parseBinding("a | b:1")
				assert.Equal(t, "Binding(Pipe<b>(Ref<a>, PipeName<b>, PipeArguments(Lit<1>)))", expression_parser.Serialize(tree.Root))
			})
		})

		t.Run("should store the source in the result", func(t *testing.T) {
			assert.Equal(t, "someExpr", parseBinding("someExpr").Source)
		})

		t.Run("should not allow chaining", expectBindingError("1;2", "Binding expression cannot contain chained expressions", 1))

		t.Run("should not allow assignments", expectBindingError("a=2", "Binding expression cannot contain assignments", 1))

		t.Run("should keep the assignment node", func(t *testing.T) {
			tree := parseBinding("x = 1")
			require.Len(t, tree.Diagnostics, 1)
			assert.Equal(t, "Binding(Assignment(Definition(Ref<x>), Lit<1>))", expression_parser.Serialize(tree.Root))
		})

		t.Run("should report a leading =", func(t *testing.T) {
			tree := parseBinding("= 1")
			assert.Equal(t, []string{"Expression expected"}, messages(tree))
			assert.Len(t, tree.Root.Find(expression_parser.NodeAssignment), 1)
		})

		t.Run("should parse conditional expression", checkBinding("a < b ? a : b"))

		t.Run("should ignore comments in bindings", checkBinding("a //comment", "a"))

		t.Run("should allow empty bindings", func(t *testing.T) {
			tree := parseBinding("  ")
			assert.Empty(t, tree.Diagnostics)
			assert.Equal(t, "Binding(EmptyExpression)", expression_parser.Serialize(tree.Root))
		})

		t.Run("quotes", func(t *testing.T) {
			t.Run("should parse a quote", func(t *testing.T) {
				tree := parseBinding("format: yyyy-MM-dd ")
				assert.Empty(t, tree.Diagnostics)
				quote := tree.Root.FirstChildOfKind(expression_parser.NodeQuote)
				require.NotNil(t, quote)
				assert.Equal(t, &expression_parser.QuoteData{Prefix: "format", Payload: "yyyy-MM-dd"}, quote.Data())
				assert.Equal(t, "format: yyyy-MM-dd", quote.Text(tree.Source))
			})

			t.Run("should trim the payload and its node alike", func(t *testing.T) {
				tree := parseBinding("javascript:   alert(1)  ")
				quote := tree.Root.FirstChildOfKind(expression_parser.NodeQuote)
				require.NotNil(t, quote)
				text := quote.FirstChildOfKind(expression_parser.NodeQuoteText)
				require.NotNil(t, text)
				assert.Equal(t, "alert(1)", quote.Data().(*expression_parser.QuoteData).Payload)
				assert.Equal(t, "alert(1)", text.Text(tree.Source))
			})

			t.Run("should not report errors inside the quote", func(t *testing.T) {
				tree := parseBinding("javascript: @foo('bar')")
				assert.Empty(t, tree.Diagnostics)
				assert.Equal(t, "javascript:@foo('bar')", expression_parser.Unparse(tree))
			})

			t.Run("should not parse quotes in actions", func(t *testing.T) {
				assert.NotEmpty(t, parseAction("a: b").Diagnostics)
			})
		})
	})

	t.Run("parseSimpleBinding", func(t *testing.T) {
		t.Run("should parse a field access", func(t *testing.T) {
			tree := parseSimpleBinding("name")
			assert.Empty(t, tree.Diagnostics)
			assert.Equal(t, "name", expression_parser.Unparse(tree))
		})

		t.Run("should report when encountering pipes", func(t *testing.T) {
			expectError(parseSimpleBinding("a | somePipe"), "Host binding expression cannot contain pipes", 1)(t)
		})

		t.Run("should require an expression", func(t *testing.T) {
			expectError(parseSimpleBinding(""), "Expression expected", 1)(t)
		})

		t.Run("should report chains", func(t *testing.T) {
			expectError(parseSimpleBinding("a; b"), "Binding expression cannot contain chained expressions", 1)(t)
		})
	})

	t.Run("parseInterpolation", func(t *testing.T) {
		t.Run("should parse pipes", func(t *testing.T) {
			tree := parser.ParseInterpolation(" name | uppercase ")
			assert.Empty(t, tree.Diagnostics)
			assert.Equal(t, "(name | uppercase)", expression_parser.Unparse(tree))
			assert.Equal(t, expression_parser.NodeInterpolation, tree.Root.Kind())
		})

		t.Run("should report chains", func(t *testing.T) {
			expectError(parser.ParseInterpolation("a; b"), "Binding expression cannot contain chained expressions", 1)(t)
		})
	})
}

func TestParser_TreeShape(t *testing.T) {
	tests := []struct {
		name string
		mode expression_parser.Mode
		text string
		want string
	}{
		{"binary is left-associative", expression_parser.BindingMode(), "a - b - c", "Binding(Binary<->(Binary<->(Ref<a>, Ref<b>), Ref<c>))"},
		{"pipes are left-associative", expression_parser.BindingMode(), "a | b | c:1", "Binding(Pipe<c>(Pipe<b>(Ref<a>, PipeName<b>), PipeName<c>, PipeArguments(Lit<1>)))"},
		{"exponent is right-associative", expression_parser.BindingMode(), "a ** b ** c", "Binding(Binary<**>(Ref<a>, Binary<**>(Ref<b>, Ref<c>)))"},
		{"precedence", expression_parser.BindingMode(), "a || b && c", "Binding(Binary<||>(Ref<a>, Binary<&&>(Ref<b>, Ref<c>)))"},
		{"nullish", expression_parser.BindingMode(), "a ?? b", "Binding(Binary<??>(Ref<a>, Ref<b>))"},
		{"safe member", expression_parser.BindingMode(), "a?.b", "Binding(Member<?.b>(Ref<a>))"},
		{"call", expression_parser.BindingMode(), "f(1)", "Binding(Call(Ref<f>, Arguments(Lit<1>)))"},
		{"safe call", expression_parser.BindingMode(), "f?.()", "Binding(Call<?.>(Ref<f>, Arguments))"},
		{"non-null", expression_parser.BindingMode(), "a!.b", "Binding(Member<b>(NonNull(Ref<a>)))"},
		{"prefix", expression_parser.BindingMode(), "!a", "Binding(Prefix<!>(Ref<a>))"},
		{"typeof", expression_parser.BindingMode(), "typeof a", "Binding(Prefix<typeof>(Ref<a>))"},
		{"literals", expression_parser.BindingMode(), "[true, null, 'x']", `Binding(Array(Lit<true>, Lit<null>, Lit<"x">))`},
		{"object", expression_parser.BindingMode(), "{a: 1, b}", "Binding(Object(Property<a>(Lit<1>), Property<b>(Ref<b>)))"},
		{"conditional", expression_parser.BindingMode(), "a ? b : c", "Binding(Conditional(Ref<a>, Ref<b>, Ref<c>))"},
		{"this", expression_parser.BindingMode(), "this.a", "Binding(Member<a>(This))"},
		{"action chain", expression_parser.ActionMode(), "a; b", "Action(Chain(ExpressionStatement(Ref<a>), ExpressionStatement(Ref<b>)))"},
		{"single action", expression_parser.ActionMode(), "a()", "Action(ExpressionStatement(Call(Ref<a>, Arguments)))"},
		{"empty action", expression_parser.ActionMode(), "", "Action(EmptyStatement)"},
		{"assignment", expression_parser.ActionMode(), "a = 1", "Action(ExpressionStatement(Assignment(Definition(Ref<a>), Lit<1>)))"},
		{"string parts", expression_parser.BindingMode(), "'a&quot;b'", `Binding(StringParts<"a\"b">)`},
		{"missing operand", expression_parser.BindingMode(), "a +", "Binding(Binary<+>(Ref<a>, Error))"},
		{"bad token", expression_parser.BindingMode(), "a )", "Binding(Ref<a>, Error)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, err := parser.Parse(tt.text, tt.mode)
			require.NoError(t, err)
			assert.Equal(t, tt.want, expression_parser.Serialize(tree.Root))
		})
	}
}

var totalityInputs = []struct {
	mode expression_parser.Mode
	text string
}{
	{expression_parser.ActionMode(), ""},
	{expression_parser.ActionMode(), "  a = b ; c() // done"},
	{expression_parser.ActionMode(), "((a)))"},
	{expression_parser.ActionMode(), "(a;b"},
	{expression_parser.ActionMode(), "{1234:0, (:1, a.b}"},
	{expression_parser.ActionMode(), "x | y : ; @ ] } )"},
	{expression_parser.BindingMode(), " a | b:c | d "},
	{expression_parser.BindingMode(), "format: yyyy-MM-dd  "},
	{expression_parser.BindingMode(), "= = ="},
	{expression_parser.BindingMode(), "'a&quot;b' + &quot;c&apos;d"},
	{expression_parser.SimpleBindingMode(), "/* c */"},
	{expression_parser.InterpolationMode(), " a?.b!.c[0]?.(1) "},
	{expression_parser.TemplateBindingsMode("ngFor"), "let item of items; index as i; trackBy: fn"},
	{expression_parser.TemplateBindingsMode("ngIf"), "cond as value; else elseBlock"},
	{expression_parser.TemplateBindingsMode("a"), "let let let = = ;;"},
	{expression_parser.BlockParameterMode("for", 0), "(item of items)"},
	{expression_parser.BlockParameterMode("for", 1), "let i = $index, = , odd $odd"},
	{expression_parser.BlockParameterMode("for", 1), "track item.id extra"},
	{expression_parser.BlockParameterMode("if", 1), "as alias trailing"},
	{expression_parser.BlockParameterMode("defer", 0), "on idle, timer(500ms), viewport(ref)"},
	{expression_parser.BlockParameterMode("defer", 0), "prefetch on timer(1 s"},
	{expression_parser.BlockParameterMode("defer", 0), "hydrate never"},
	{expression_parser.BlockParameterMode("placeholder", 0), "minimum 600xyz 1"},
	{expression_parser.BlockParameterMode("let", 0), "total = a + b"},
	{expression_parser.BlockParameterMode("unknown", 0), "whatever ( here"},
}

func TestParser_Totality(t *testing.T) {
	for _, in := range totalityInputs {
		t.Run(in.mode.String()+"/"+in.text, func(t *testing.T) {
			tree, err := parser.Parse(in.text, in.mode)
			require.NoError(t, err)

			root := tree.Root
			assert.True(t, root.Kind().IsRoot())
			assert.Equal(t, expression_parser.Span{Start: 0, End: len(in.text)}, root.Span())

			var sb strings.Builder
			for _, tok := range root.Tokens() {
				sb.WriteString(tok.Raw)
			}
			assert.Equal(t, in.text, sb.String(), "every token is attached once, in order")
			lexed := expression_parser.NewLexer().Tokenize(in.text, in.mode)
			assert.Len(t, root.Tokens(), len(lexed))

			root.Walk(func(n *expression_parser.Node) bool {
				for _, c := range n.Children() {
					assert.GreaterOrEqual(t, c.Span().Start, n.Span().Start, "%s inside %s", c.Kind(), n.Kind())
					assert.LessOrEqual(t, c.Span().End, n.Span().End, "%s inside %s", c.Kind(), n.Kind())
				}
				return true
			})
			for _, d := range tree.Diagnostics {
				assert.LessOrEqual(t, d.Span.Start, d.Span.End)
				assert.LessOrEqual(t, d.Span.End, len(in.text))
			}
		})
	}
}

func TestParser_Idempotence(t *testing.T) {
	for _, in := range totalityInputs {
		first, err := parser.Parse(in.text, in.mode)
		require.NoError(t, err)
		second, err := expression_parser.NewParser(expression_parser.NewLexer()).Parse(in.text, in.mode)
		require.NoError(t, err)

		assert.Empty(t, cmp.Diff(expression_parser.Dump(first.Root), expression_parser.Dump(second.Root)), in.text)
		assert.Empty(t, cmp.Diff(first.Diagnostics, second.Diagnostics), in.text)
	}
}

func TestParser_Spans(t *testing.T) {
	t.Run("should keep node spans tight around significant tokens", func(t *testing.T) {
		tree := parseBinding("  a + b  ")
		assert.Equal(t, expression_parser.Span{Start: 0, End: 9}, tree.Root.Span())
		binary := tree.Root.FirstChildOfKind(expression_parser.NodeBinary)
		require.NotNil(t, binary)
		assert.Equal(t, expression_parser.Span{Start: 2, End: 7}, binary.Span())
		assert.Equal(t, "a + b", binary.Text(tree.Source))
	})

	t.Run("should report missing tokens at the end of the last token", func(t *testing.T) {
		tree := parseAction("a(b  ")
		require.Len(t, tree.Diagnostics, 1)
		assert.Equal(t, expression_parser.Span{Start: 3, End: 3}, tree.Diagnostics[0].Span)
	})

	t.Run("should report unexpected tokens at the token", func(t *testing.T) {
		tree := parseAction("a b")
		require.Len(t, tree.Diagnostics, 1)
		assert.Equal(t, expression_parser.Span{Start: 2, End: 3}, tree.Diagnostics[0].Span)
	})

	t.Run("should place empty nodes after the last token", func(t *testing.T) {
		tree := parseBinding("a + ")
		errs := tree.Root.Find(expression_parser.NodeError)
		require.Len(t, errs, 1)
		assert.Equal(t, expression_parser.Span{Start: 3, End: 3}, errs[0].Span())
	})
}

func TestParser_Modes(t *testing.T) {
	t.Run("should require a template key", func(t *testing.T) {
		_, err := parser.ParseTemplateBindings("", "let a")
		assert.ErrorIs(t, err, expression_parser.ErrMissingContext)
	})

	t.Run("should require a block name", func(t *testing.T) {
		_, err := parser.ParseBlockParameter(" ", 0, "a")
		assert.ErrorIs(t, err, expression_parser.ErrMissingContext)
		_, err = parser.ParseBlockParameter("if", -1, "a")
		assert.ErrorIs(t, err, expression_parser.ErrMissingContext)
	})

	t.Run("should reject unknown modes", func(t *testing.T) {
		_, err := parser.Parse("a", expression_parser.Mode{Kind: expression_parser.ModeKind(42)})
		assert.ErrorIs(t, err, expression_parser.ErrUnknownMode)
	})

	t.Run("should resolve mode names", func(t *testing.T) {
		for _, name := range expression_parser.ModeKindNames() {
			kind, err := expression_parser.ParseModeKind(name)
			require.NoError(t, err)
			assert.Equal(t, name, kind.String())
		}
		kind, err := expression_parser.ParseModeKind(" Binding ")
		require.NoError(t, err)
		assert.Equal(t, expression_parser.ModeBinding, kind)
	})

	t.Run("should suggest a mode name", func(t *testing.T) {
		_, err := expression_parser.ParseModeKind("bindng")
		require.ErrorIs(t, err, expression_parser.ErrUnknownMode)
		assert.Contains(t, err.Error(), `did you mean "binding"?`)
	})

	t.Run("should unmarshal mode names", func(t *testing.T) {
		var kind expression_parser.ModeKind
		require.NoError(t, kind.UnmarshalText([]byte("template-bindings")))
		assert.Equal(t, expression_parser.ModeTemplateBindings, kind)
		assert.Error(t, kind.UnmarshalText([]byte("nope")))
	})

	t.Run("should describe modes", func(t *testing.T) {
		assert.Equal(t, "template-bindings(ngFor)", expression_parser.TemplateBindingsMode("ngFor").String())
		assert.Equal(t, "block-parameter(for, 1)", expression_parser.BlockParameterMode("for", 1).String())
	})
}

func TestParser_Logging(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	p := expression_parser.NewParser(expression_parser.NewLexer(), expression_parser.WithLogger(logger))

	p.ParseBinding("a + ")

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.DebugLevel, entry.Level)
	assert.Equal(t, "parsed expression", entry.Message)
	assert.Equal(t, "binding", entry.Data["mode"])
	assert.Equal(t, 1, entry.Data["diagnostics"])
}

func TestDiagnostic_ParseError(t *testing.T) {
	file := util.NewParseSourceFile("<div [x]=\"a +\"></div>", "cmp.html")
	tree := parseBinding("a +")
	require.Len(t, tree.Diagnostics, 1)

	perr := tree.Diagnostics[0].ParseError(file, 10)
	assert.Equal(t, "Expression expected", perr.Msg)
	assert.Equal(t, 13, perr.Span.Start.Offset)
	assert.Equal(t, "cmp.html@1:14", perr.Span.Start.String())
	assert.Equal(t, "error at 3..3: Expression expected", tree.Diagnostics[0].String())
}
