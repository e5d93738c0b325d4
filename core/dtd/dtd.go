// Package dtd parses XML document type definitions and checks documents
// against them. It covers element and attribute-list declarations, which is
// what BioC schemas use; parameter entities are recorded but not expanded.
package dtd

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/FocuswithJustin/bioc/core/errors"
)

// ContentKind classifies an element content model.
type ContentKind int

const (
	// ContentChildren allows only the listed child elements.
	ContentChildren ContentKind = iota
	// ContentMixed allows text interleaved with the listed child elements.
	ContentMixed
	// ContentEmpty allows nothing.
	ContentEmpty
	// ContentAny allows anything.
	ContentAny
)

func (k ContentKind) String() string {
	switch k {
	case ContentMixed:
		return "mixed"
	case ContentEmpty:
		return "EMPTY"
	case ContentAny:
		return "ANY"
	default:
		return "children"
	}
}

// Element is a declared element type.
type Element struct {
	Name       string
	Kind       ContentKind
	Model      string // Content model as written, normalized
	Children   []string
	Required   []string // Children that must occur at least once
	Attributes map[string]*Attribute
}

// Attribute is a declared attribute.
type Attribute struct {
	Name     string
	Type     string   // CDATA, ID, NMTOKEN, ... or "enum"
	Enum     []string // Allowed values when Type is "enum"
	Required bool
	Fixed    bool
	Default  string
}

// Schema is a parsed DTD.
type Schema struct {
	Elements map[string]*Element
	Entities map[string]string
}

// Element returns the declaration of name.
func (s *Schema) Element(name string) (*Element, bool) {
	e, ok := s.Elements[name]
	return e, ok
}

// ElementNames returns the declared element names in sorted order.
func (s *Schema) ElementNames() []string {
	names := make([]string, 0, len(s.Elements))
	for name := range s.Elements {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// dtdGrammar is the participle grammar for DTD declarations.
//
//nolint:govet // participle grammar tags are not standard struct tags
type dtdGrammar struct {
	Decls []*declGrammar `@@*`
}

//nolint:govet // participle grammar tags are not standard struct tags
type declGrammar struct {
	Element *elementGrammar `  @@`
	Attlist *attlistGrammar `| @@`
	Entity  *entityGrammar  `| @@`
}

//nolint:govet // participle grammar tags are not standard struct tags
type elementGrammar struct {
	Name    string           `"<!ELEMENT" @Name`
	Empty   bool             `( @"EMPTY"`
	Any     bool             `| @"ANY"`
	Content *particleGrammar `| @@ ) ">"`
}

//nolint:govet // participle grammar tags are not standard struct tags
type particleGrammar struct {
	PCData bool          `(  @"#PCDATA"`
	Name   string        ` | @Name`
	Group  *groupGrammar ` | @@ )`
	Repeat string        `@("?" | "*" | "+")?`
}

//nolint:govet // participle grammar tags are not standard struct tags
type groupGrammar struct {
	Items []*itemGrammar `"(" @@+ ")"`
}

//nolint:govet // participle grammar tags are not standard struct tags
type itemGrammar struct {
	Sep      string           `@("," | "|")?`
	Particle *particleGrammar `@@`
}

//nolint:govet // participle grammar tags are not standard struct tags
type attlistGrammar struct {
	Element string         `"<!ATTLIST" @Name`
	Attrs   []*attrGrammar `@@* ">"`
}

//nolint:govet // participle grammar tags are not standard struct tags
type attrGrammar struct {
	Name    string   `@Name`
	Type    string   `( @Name`
	Enum    []string ` | "(" @Name ( "|" @Name )* ")" )`
	Keyword string   `( @("#REQUIRED" | "#IMPLIED")`
	Fixed   *string  ` | "#FIXED" @String`
	Default *string  ` | @String )`
}

//nolint:govet // participle grammar tags are not standard struct tags
type entityGrammar struct {
	Parameter bool     `"<!ENTITY" @"%"?`
	Name      string   `@Name`
	External  string   `@("SYSTEM" | "PUBLIC")?`
	Values    []string `@String+ ">"`
}

// dtdLexer defines the lexer for DTD declarations.
var dtdLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `<!--([^-]|-[^-])*-->`},
	{Name: "TextDecl", Pattern: `<\?[^?]*\?>`},
	{Name: "DeclStart", Pattern: `<!(ELEMENT|ATTLIST|ENTITY)`},
	{Name: "Keyword", Pattern: `#[A-Z]+`},
	{Name: "String", Pattern: `"[^"]*"|'[^']*'`},
	{Name: "Name", Pattern: `[A-Za-z_:][-A-Za-z0-9_:.]*`},
	{Name: "Punct", Pattern: `[()|,?*+>%]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

// dtdParser is the participle parser for DTDs.
var dtdParser = participle.MustBuild[dtdGrammar](
	participle.Lexer(dtdLexer),
	participle.Elide("Whitespace", "Comment", "TextDecl"),
)

// Parse reads a DTD.
func Parse(r io.Reader) (*Schema, error) {
	parsed, err := dtdParser.Parse("", r)
	if err != nil {
		return nil, errors.Wrap(err, "invalid DTD")
	}
	return build(parsed)
}

// ParseString parses a DTD held in memory.
func ParseString(s string) (*Schema, error) {
	return Parse(strings.NewReader(s))
}

// ParseFile reads the DTD at path.
func ParseFile(path string) (*Schema, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open DTD")
	}
	defer f.Close()

	s, err := Parse(f)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	return s, nil
}

func build(g *dtdGrammar) (*Schema, error) {
	s := &Schema{
		Elements: make(map[string]*Element),
		Entities: make(map[string]string),
	}
	var attlists []*attlistGrammar

	for _, d := range g.Decls {
		switch {
		case d.Element != nil:
			if _, dup := s.Elements[d.Element.Name]; dup {
				return nil, fmt.Errorf("element %q declared twice", d.Element.Name)
			}
			s.Elements[d.Element.Name] = buildElement(d.Element)
		case d.Attlist != nil:
			attlists = append(attlists, d.Attlist)
		case d.Entity != nil:
			s.Entities[d.Entity.Name] = unquote(d.Entity.Values[len(d.Entity.Values)-1])
		}
	}

	// Attribute lists may precede their element declaration.
	for _, al := range attlists {
		el, ok := s.Elements[al.Element]
		if !ok {
			return nil, fmt.Errorf("attribute list for undeclared element %q", al.Element)
		}
		for _, a := range al.Attrs {
			// The first declaration of an attribute is binding.
			if _, seen := el.Attributes[a.Name]; seen {
				continue
			}
			el.Attributes[a.Name] = buildAttribute(a)
		}
	}
	return s, nil
}

func buildElement(g *elementGrammar) *Element {
	el := &Element{Name: g.Name, Attributes: make(map[string]*Attribute)}
	switch {
	case g.Empty:
		el.Kind, el.Model = ContentEmpty, "EMPTY"
		return el
	case g.Any:
		el.Kind, el.Model = ContentAny, "ANY"
		return el
	}

	el.Model = g.Content.String()
	seen := make(map[string]bool)
	g.Content.walk(func(p *particleGrammar) {
		switch {
		case p.PCData:
			el.Kind = ContentMixed
		case p.Name != "" && !seen[p.Name]:
			seen[p.Name] = true
			el.Children = append(el.Children, p.Name)
		}
	})
	if el.Kind == ContentChildren {
		el.Required = g.Content.required(nil)
	}
	return el
}

func buildAttribute(g *attrGrammar) *Attribute {
	a := &Attribute{Name: g.Name, Type: g.Type}
	if len(g.Enum) > 0 {
		a.Type, a.Enum = "enum", g.Enum
	}
	switch {
	case g.Keyword == "#REQUIRED":
		a.Required = true
	case g.Fixed != nil:
		a.Fixed, a.Default = true, unquote(*g.Fixed)
	case g.Default != nil:
		a.Default = unquote(*g.Default)
	}
	return a
}

// walk visits every particle of the model in document order.
func (p *particleGrammar) walk(fn func(*particleGrammar)) {
	fn(p)
	if p.Group != nil {
		for _, it := range p.Group.Items {
			it.Particle.walk(fn)
		}
	}
}

// required appends the names that must occur at least once.
func (p *particleGrammar) required(out []string) []string {
	if p.Repeat == "?" || p.Repeat == "*" {
		return out
	}
	switch {
	case p.Name != "":
		return append(out, p.Name)
	case p.Group != nil && !p.Group.choice():
		for _, it := range p.Group.Items {
			out = it.Particle.required(out)
		}
	}
	return out
}

func (g *groupGrammar) choice() bool {
	for _, it := range g.Items {
		if it.Sep == "|" {
			return true
		}
	}
	return false
}

func (p *particleGrammar) String() string {
	var b strings.Builder
	switch {
	case p.PCData:
		b.WriteString("#PCDATA")
	case p.Name != "":
		b.WriteString(p.Name)
	case p.Group != nil:
		b.WriteByte('(')
		for i, it := range p.Group.Items {
			if i > 0 {
				if it.Sep == "|" {
					b.WriteString(" | ")
				} else {
					b.WriteString(", ")
				}
			}
			b.WriteString(it.Particle.String())
		}
		b.WriteByte(')')
	}
	b.WriteString(p.Repeat)
	return b.String()
}

func unquote(s string) string {
	if len(s) >= 2 {
		return s[1 : len(s)-1]
	}
	return s
}
