package dtd

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/antchfx/xmlquery"

	"github.com/FocuswithJustin/bioc/core/errors"
	"github.com/FocuswithJustin/bioc/internal/archive"
)

// Violation is a place where a document departs from the schema.
type Violation struct {
	Path    string // Element path, e.g. /collection/document[2]/passage[1]
	Message string
}

func (v Violation) String() string {
	return v.Path + ": " + v.Message
}

// Validate parses the XML document read from r and checks it against s.
// The returned error reports input that is not well-formed; schema
// departures are returned as violations.
func (s *Schema) Validate(r io.Reader) ([]Violation, error) {
	doc, err := xmlquery.Parse(r)
	if err != nil {
		return nil, errors.Wrap(err, "parse document")
	}
	return s.ValidateNode(doc), nil
}

// ValidateFile checks the document at path. Files ending in .gz or .xz are
// decompressed.
func (s *Schema) ValidateFile(path string) ([]Violation, error) {
	f, err := archive.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	vs, err := s.Validate(f)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	return vs, nil
}

// ValidateNode checks an already parsed document or element tree.
func (s *Schema) ValidateNode(n *xmlquery.Node) []Violation {
	c := &checker{schema: s}
	if n.Type == xmlquery.DocumentNode {
		for _, el := range elementChildren(n) {
			c.element(el, "/"+qualifiedName(el))
		}
		return c.out
	}
	c.element(n, "/"+qualifiedName(n))
	return c.out
}

type checker struct {
	schema *Schema
	out    []Violation
}

func (c *checker) report(path, format string, args ...any) {
	c.out = append(c.out, Violation{Path: path, Message: fmt.Sprintf(format, args...)})
}

func (c *checker) element(n *xmlquery.Node, path string) {
	name := qualifiedName(n)
	decl, ok := c.schema.Elements[name]
	if !ok {
		c.report(path, "element %q is not declared", name)
		return
	}

	c.attributes(n, decl, path)

	children := elementChildren(n)
	switch decl.Kind {
	case ContentAny:
	case ContentEmpty:
		if len(children) > 0 || hasText(n) {
			c.report(path, "element %q must be empty", name)
		}
	case ContentMixed:
		for _, ch := range children {
			if !slices.Contains(decl.Children, qualifiedName(ch)) {
				c.report(path, "element %q is not allowed in %q", qualifiedName(ch), name)
			}
		}
	case ContentChildren:
		if hasText(n) {
			c.report(path, "text is not allowed in %q", name)
		}
		counts := make(map[string]int)
		for _, ch := range children {
			chName := qualifiedName(ch)
			counts[chName]++
			if !slices.Contains(decl.Children, chName) {
				c.report(path, "element %q is not allowed in %q", chName, name)
			}
		}
		for _, req := range decl.Required {
			if counts[req] == 0 {
				c.report(path, "missing required element %q", req)
			}
		}
	}

	index := make(map[string]int)
	for _, ch := range children {
		chName := qualifiedName(ch)
		index[chName]++
		c.element(ch, fmt.Sprintf("%s/%s[%d]", path, chName, index[chName]))
	}
}

func (c *checker) attributes(n *xmlquery.Node, decl *Element, path string) {
	present := make(map[string]bool)
	for _, a := range n.Attr {
		if a.Name.Space == "xmlns" || (a.Name.Space == "" && a.Name.Local == "xmlns") {
			continue
		}
		name := a.Name.Local
		if a.Name.Space != "" {
			name = a.Name.Space + ":" + a.Name.Local
		}
		present[name] = true

		ad, ok := decl.Attributes[name]
		if !ok {
			c.report(path, "attribute %q is not declared for %q", name, decl.Name)
			continue
		}
		switch {
		case ad.Fixed && a.Value != ad.Default:
			c.report(path, "attribute %q must be %q, got %q", name, ad.Default, a.Value)
		case ad.Type == "enum" && !slices.Contains(ad.Enum, a.Value):
			c.report(path, "attribute %q has value %q, want one of %s", name, a.Value, strings.Join(ad.Enum, "|"))
		}
	}

	for _, ad := range sortedAttributes(decl) {
		if ad.Required && !present[ad.Name] {
			c.report(path, "missing required attribute %q", ad.Name)
		}
	}
}

func sortedAttributes(decl *Element) []*Attribute {
	out := make([]*Attribute, 0, len(decl.Attributes))
	for _, a := range decl.Attributes {
		out = append(out, a)
	}
	slices.SortFunc(out, func(a, b *Attribute) int { return strings.Compare(a.Name, b.Name) })
	return out
}

func elementChildren(n *xmlquery.Node) []*xmlquery.Node {
	var out []*xmlquery.Node
	for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
		if ch.Type == xmlquery.ElementNode {
			out = append(out, ch)
		}
	}
	return out
}

// hasText reports whether n has non-whitespace character data.
func hasText(n *xmlquery.Node) bool {
	for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
		if (ch.Type == xmlquery.TextNode || ch.Type == xmlquery.CharDataNode) && strings.TrimSpace(ch.Data) != "" {
			return true
		}
	}
	return false
}

func qualifiedName(n *xmlquery.Node) string {
	if n.Prefix != "" {
		return n.Prefix + ":" + n.Data
	}
	return n.Data
}
