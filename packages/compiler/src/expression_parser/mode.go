package expression_parser

import (
	"fmt"
	"strings"
)

// ModeKind selects the grammar entry point of a parse.
type ModeKind int

const (
	ModeAction ModeKind = iota
	ModeBinding
	ModeSimpleBinding
	ModeInterpolation
	ModeTemplateBindings
	ModeBlockParameter
)

var modeKindNames = [...]string{
	ModeAction:           "action",
	ModeBinding:          "binding",
	ModeSimpleBinding:    "simple-binding",
	ModeInterpolation:    "interpolation",
	ModeTemplateBindings: "template-bindings",
	ModeBlockParameter:   "block-parameter",
}

func (k ModeKind) String() string {
	if k >= 0 && int(k) < len(modeKindNames) {
		return modeKindNames[k]
	}
	return fmt.Sprintf("ModeKind(%d)", int(k))
}

// ModeKindNames lists the textual names accepted by ParseModeKind.
func ModeKindNames() []string {
	return append([]string(nil), modeKindNames[:]...)
}

// ParseModeKind resolves a mode name such as "binding" or "template-bindings".
func ParseModeKind(name string) (ModeKind, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	for i, n := range modeKindNames {
		if n == normalized {
			return ModeKind(i), nil
		}
	}
	if hint := Suggest(normalized, modeKindNames[:]); hint != "" {
		return 0, fmt.Errorf("%w %q, did you mean %q?", ErrUnknownMode, name, hint)
	}
	return 0, fmt.Errorf("%w %q", ErrUnknownMode, name)
}

func (k ModeKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *ModeKind) UnmarshalText(text []byte) error {
	parsed, err := ParseModeKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Mode is the full parse context: the grammar plus the contextual key
// (template bindings) or block name and parameter index (block parameters).
type Mode struct {
	Kind           ModeKind
	TemplateKey    string
	BlockName      string
	ParameterIndex int
}

func ActionMode() Mode        { return Mode{Kind: ModeAction} }
func BindingMode() Mode       { return Mode{Kind: ModeBinding} }
func SimpleBindingMode() Mode { return Mode{Kind: ModeSimpleBinding} }
func InterpolationMode() Mode { return Mode{Kind: ModeInterpolation} }

func TemplateBindingsMode(templateKey string) Mode {
	return Mode{Kind: ModeTemplateBindings, TemplateKey: templateKey}
}

func BlockParameterMode(blockName string, index int) Mode {
	return Mode{Kind: ModeBlockParameter, BlockName: blockName, ParameterIndex: index}
}

// Validate reports ErrMissingContext when a mode that needs a contextual
// key or block name was created without one.
func (m Mode) Validate() error {
	switch m.Kind {
	case ModeAction, ModeBinding, ModeSimpleBinding, ModeInterpolation:
		return nil
	case ModeTemplateBindings:
		if m.TemplateKey == "" {
			return fmt.Errorf("%w: template bindings need a template key", ErrMissingContext)
		}
	case ModeBlockParameter:
		if strings.TrimSpace(m.BlockName) == "" {
			return fmt.Errorf("%w: block parameter needs a block name", ErrMissingContext)
		}
		if m.ParameterIndex < 0 {
			return fmt.Errorf("%w: negative block parameter index %d", ErrMissingContext, m.ParameterIndex)
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnknownMode, m.Kind)
	}
	return nil
}

// Block classifies BlockName.
func (m Mode) Block() BlockKind {
	return LookupBlockKind(m.BlockName)
}

func (m Mode) String() string {
	switch m.Kind {
	case ModeTemplateBindings:
		return fmt.Sprintf("%s(%s)", m.Kind, m.TemplateKey)
	case ModeBlockParameter:
		return fmt.Sprintf("%s(%s, %d)", m.Kind, m.BlockName, m.ParameterIndex)
	}
	return m.Kind.String()
}

// startsWithParameterName reports whether the lexer should turn the first
// identifier of the input into a BlockParameterName token.
func (m Mode) startsWithParameterName() bool {
	if m.Kind != ModeBlockParameter {
		return false
	}
	return m.ParameterIndex > 0 || !m.Block().HasPrimaryExpression()
}
