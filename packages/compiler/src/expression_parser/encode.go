package expression_parser

import (
	"encoding/json"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"gopkg.in/yaml.v3"
)

// Format selects a tree encoding.
type Format string

const (
	FormatText Format = "text"
	FormatTree Format = "tree"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatCBOR Format = "cbor"
)

// Formats lists the supported encodings.
func Formats() []string {
	return []string{string(FormatText), string(FormatTree), string(FormatJSON), string(FormatYAML), string(FormatCBOR)}
}

// TreeDTO is the serializable form of a Tree.
type TreeDTO struct {
	Mode        string          `json:"mode" yaml:"mode" cbor:"mode"`
	Source      string          `json:"source" yaml:"source" cbor:"source"`
	Root        *NodeDTO        `json:"root" yaml:"root" cbor:"root"`
	Diagnostics []DiagnosticDTO `json:"diagnostics" yaml:"diagnostics" cbor:"diagnostics"`
}

type NodeDTO struct {
	Kind     string         `json:"kind" yaml:"kind" cbor:"kind"`
	Start    int            `json:"start" yaml:"start" cbor:"start"`
	End      int            `json:"end" yaml:"end" cbor:"end"`
	Token    string         `json:"token,omitempty" yaml:"token,omitempty" cbor:"token,omitempty"`
	Text     string         `json:"text,omitempty" yaml:"text,omitempty" cbor:"text,omitempty"`
	Data     map[string]any `json:"data,omitempty" yaml:"data,omitempty" cbor:"data,omitempty"`
	Children []*NodeDTO     `json:"children,omitempty" yaml:"children,omitempty" cbor:"children,omitempty"`
}

type DiagnosticDTO struct {
	Severity string `json:"severity" yaml:"severity" cbor:"severity"`
	Message  string `json:"message" yaml:"message" cbor:"message"`
	Start    int    `json:"start" yaml:"start" cbor:"start"`
	End      int    `json:"end" yaml:"end" cbor:"end"`
}

// NewTreeDTO converts tree; trivia leaves are dropped unless withTrivia.
func NewTreeDTO(tree *Tree, withTrivia bool) *TreeDTO {
	dto := &TreeDTO{
		Mode:        tree.Mode.String(),
		Source:      tree.Source,
		Root:        newNodeDTO(tree.Root, withTrivia),
		Diagnostics: []DiagnosticDTO{},
	}
	for _, d := range tree.Diagnostics {
		dto.Diagnostics = append(dto.Diagnostics, DiagnosticDTO{
			Severity: d.Severity.String(),
			Message:  d.Message,
			Start:    d.Span.Start,
			End:      d.Span.End,
		})
	}
	return dto
}

func newNodeDTO(node *Node, withTrivia bool) *NodeDTO {
	dto := &NodeDTO{
		Kind:  node.Kind().String(),
		Start: node.Span().Start,
		End:   node.Span().End,
		Data:  dataFields(node.Data()),
	}
	if tok := node.Token(); tok != nil {
		dto.Token = tok.Type.String()
		dto.Text = tok.Raw
	}
	for _, c := range node.Children() {
		if c.Token() != nil && c.Token().IsTrivia() && !withTrivia {
			continue
		}
		dto.Children = append(dto.Children, newNodeDTO(c, withTrivia))
	}
	return dto
}

func dataFields(data NodeData) map[string]any {
	switch d := data.(type) {
	case nil:
		return nil
	case *NameData:
		return map[string]any{"name": d.Name}
	case *OperatorData:
		return map[string]any{"operator": d.Operator}
	case *MemberData:
		return map[string]any{"name": d.Name, "safe": d.Safe}
	case *AccessData:
		return map[string]any{"safe": d.Safe}
	case *LiteralData:
		return map[string]any{"kind": d.Kind.String(), "value": d.Value}
	case *QuoteData:
		return map[string]any{"prefix": d.Prefix, "payload": d.Payload}
	case *TemplateBindingData:
		return map[string]any{"key": d.Key, "keyKind": d.KeyKind.String(), "name": d.Name}
	case *TemplateBindingsData:
		return map[string]any{"templateKey": d.TemplateKey}
	case *BlockParameterData:
		return map[string]any{"blockName": d.BlockName, "block": d.Block.String(), "index": d.Index}
	case *DeferredTimeData:
		return map[string]any{"magnitude": d.Magnitude, "unit": d.Unit, "valid": d.Valid}
	case *TriggerData:
		return map[string]any{"name": d.Name}
	}
	return map[string]any{"value": data.String()}
}

var cborEncMode = func() cbor.EncMode {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	return em
}()

// Encode renders tree in the given format.
func Encode(tree *Tree, format Format) ([]byte, error) {
	switch format {
	case FormatText:
		return []byte(Unparse(tree) + "\n"), nil
	case FormatTree:
		return []byte(Dump(tree.Root)), nil
	case FormatJSON:
		return json.MarshalIndent(NewTreeDTO(tree, false), "", "  ")
	case FormatYAML:
		return yaml.Marshal(NewTreeDTO(tree, false))
	case FormatCBOR:
		return cborEncMode.Marshal(NewTreeDTO(tree, false))
	}
	return nil, fmt.Errorf("unknown output format %q", format)
}
