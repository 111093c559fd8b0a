package template_parser

import (
	"fmt"
	"strings"

	"ngexpr-go/packages/compiler/src/expression_parser"
	"ngexpr-go/packages/compiler/src/util"
)

const PROPERTY_PARTS_SEPARATOR = "."
const ATTRIBUTE_PREFIX = "attr"
const ANIMATE_PREFIX = "animate"
const CLASS_PREFIX = "class"
const STYLE_PREFIX = "style"
const TEMPLATE_ATTR_PREFIX = "*"
const LEGACY_ANIMATE_PROP_PREFIX = "@"

// SiteKind tells where in the template an expression was found.
type SiteKind int

const (
	SiteProperty SiteKind = iota
	SiteEvent
	SiteTwoWay
	SiteTemplate
	SiteInterpolation
	SiteBlockParameter
	SiteLet
)

var siteKindNames = [...]string{
	SiteProperty:       "property",
	SiteEvent:          "event",
	SiteTwoWay:         "two-way",
	SiteTemplate:       "template",
	SiteInterpolation:  "interpolation",
	SiteBlockParameter: "block-parameter",
	SiteLet:            "let",
}

func (k SiteKind) String() string {
	if k >= 0 && int(k) < len(siteKindNames) {
		return siteKindNames[k]
	}
	return fmt.Sprintf("SiteKind(%d)", int(k))
}

// BindingType refines a property site by the prefix of its name.
type BindingType int

const (
	BindingTypeProperty BindingType = iota
	BindingTypeAttribute
	BindingTypeClass
	BindingTypeStyle
	BindingTypeAnimation
	BindingTypeLegacyAnimation
)

func (t BindingType) String() string {
	switch t {
	case BindingTypeAttribute:
		return "attribute"
	case BindingTypeClass:
		return "class"
	case BindingTypeStyle:
		return "style"
	case BindingTypeAnimation:
		return "animation"
	case BindingTypeLegacyAnimation:
		return "legacy-animation"
	}
	return "property"
}

// BindingSite is one expression embedded in a template.
type BindingSite struct {
	Kind SiteKind
	// Name is the bound property, event or directive, the attribute holding
	// an interpolation, the block name, or the @let name.
	Name string
	// Target is the global event target of `(window:resize)`.
	Target string
	Type   BindingType
	Mode   expression_parser.Mode
	Text   string
	// Offset of Text in the template
	Offset int
}

func (s *BindingSite) String() string {
	return fmt.Sprintf("%s %s@%d %q", s.Kind, s.Name, s.Offset, s.Text)
}

// Span locates the site text in file.
func (s *BindingSite) Span(file *util.ParseSourceFile) *util.ParseSourceSpan {
	return file.Span(s.Offset, s.Offset+len(s.Text))
}

func propertyBindingType(name string) (string, BindingType) {
	if strings.HasPrefix(name, LEGACY_ANIMATE_PROP_PREFIX) {
		return name[len(LEGACY_ANIMATE_PROP_PREFIX):], BindingTypeLegacyAnimation
	}
	parts := strings.SplitN(name, PROPERTY_PARTS_SEPARATOR, 2)
	if len(parts) == 1 {
		return name, BindingTypeProperty
	}
	switch parts[0] {
	case ATTRIBUTE_PREFIX:
		return parts[1], BindingTypeAttribute
	case CLASS_PREFIX:
		return parts[1], BindingTypeClass
	case STYLE_PREFIX:
		return parts[1], BindingTypeStyle
	case ANIMATE_PREFIX:
		return parts[1], BindingTypeAnimation
	}
	return name, BindingTypeProperty
}

// parseEventListenerName splits `window:resize` into target and event.
func parseEventListenerName(rawName string) (eventName, target string) {
	parts := util.SplitAtColon(rawName, []string{"", rawName})
	return parts[1], parts[0]
}
