// Package xml exposes BioC files as a document tree for XPath queries and
// checks that arbitrary input is well-formed XML.
//
// Security Notes:
//   - External entities are never fetched: parsing goes through Go's
//     xml.Decoder, which does not resolve them, and the well-formedness
//     check disables entity expansion entirely.
//   - The whole document is held in memory. Use core/biocxml for corpora
//     that should be streamed.
package xml

import (
	"bytes"
	"encoding/xml"
	stderrors "errors"
	"fmt"
	"io"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"

	"github.com/FocuswithJustin/bioc/core/encoding"
	"github.com/FocuswithJustin/bioc/core/errors"
	"github.com/FocuswithJustin/bioc/internal/archive"
)

const formatName = "XML"

// Document is a parsed XML document.
type Document struct {
	root *xmlquery.Node
}

// Node is an element, text or attribute node of a Document.
type Node struct {
	node *xmlquery.Node
}

// Parse reads a whole XML document from r.
func Parse(r io.Reader) (*Document, error) {
	root, err := xmlquery.Parse(r)
	if err != nil {
		return nil, &errors.ParseError{Format: formatName, Err: err}
	}
	return &Document{root: root}, nil
}

// ParseBytes parses an in-memory XML document.
func ParseBytes(data []byte) (*Document, error) {
	return Parse(bytes.NewReader(data))
}

// ParseFile parses the document at path. Files ending in .gz or .xz are
// decompressed.
func ParseFile(path string) (*Document, error) {
	f, err := archive.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	root, err := xmlquery.Parse(f)
	if err != nil {
		return nil, &errors.ParseError{Format: formatName, Path: path, Err: err}
	}
	return &Document{root: root}, nil
}

// CheckWellFormed reads r to the end and returns a ParseError for the first
// syntax error. name is used as the error path and may be empty.
func CheckWellFormed(r io.Reader, name string) error {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = encoding.CharsetReader
	dec.Entity = map[string]string{}

	for {
		_, err := dec.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			line, _ := dec.InputPos()
			return &errors.ParseError{Format: formatName, Path: name, Line: line, Err: err}
		}
	}
}

// Root returns the document element, or nil for an empty document.
func (d *Document) Root() *Node {
	for child := d.root.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == xmlquery.ElementNode {
			return &Node{node: child}
		}
	}
	return nil
}

// Query returns the nodes selected by the XPath expression expr.
func (d *Document) Query(expr string) ([]*Node, error) {
	res, err := d.Evaluate(expr)
	if err != nil {
		return nil, err
	}
	nodes, ok := res.([]*Node)
	if !ok {
		return nil, fmt.Errorf("xpath %q does not select nodes", expr)
	}
	return nodes, nil
}

// QueryFirst returns the first node selected by expr, or nil.
func (d *Document) QueryFirst(expr string) (*Node, error) {
	nodes, err := d.Query(expr)
	if err != nil || len(nodes) == 0 {
		return nil, err
	}
	return nodes[0], nil
}

// Evaluate evaluates expr against the document. The result is a []*Node
// for node-set expressions and a float64, string or bool otherwise.
func (d *Document) Evaluate(expr string) (any, error) {
	compiled, err := xpath.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid xpath: %w", err)
	}

	switch v := compiled.Evaluate(xmlquery.CreateXPathNavigator(d.root)).(type) {
	case *xpath.NodeIterator:
		var nodes []*Node
		for v.MoveNext() {
			nav, ok := v.Current().(*xmlquery.NodeNavigator)
			if !ok {
				return nil, stderrors.New("xpath: unexpected navigator type")
			}
			nodes = append(nodes, &Node{node: currentNode(nav)})
		}
		return nodes, nil
	default:
		return v, nil
	}
}

// currentNode returns the node under nav. The navigator reports the owning
// element for attributes, so those get a detached attribute node whose text
// is the value.
func currentNode(nav *xmlquery.NodeNavigator) *xmlquery.Node {
	if nav.NodeType() != xpath.AttributeNode {
		return nav.Current()
	}
	value := &xmlquery.Node{Type: xmlquery.TextNode, Data: nav.Value()}
	return &xmlquery.Node{
		Parent:     nav.Current(),
		Type:       xmlquery.AttributeNode,
		Data:       nav.LocalName(),
		Prefix:     nav.Prefix(),
		FirstChild: value,
		LastChild:  value,
	}
}

// Count returns the number of nodes selected by expr. Numeric expressions
// such as count(//document) are returned as is.
func (d *Document) Count(expr string) (int, error) {
	res, err := d.Evaluate(expr)
	if err != nil {
		return 0, err
	}
	switch v := res.(type) {
	case []*Node:
		return len(v), nil
	case float64:
		return int(v), nil
	default:
		return 0, fmt.Errorf("xpath %q is not countable", expr)
	}
}

// Serialize returns the document as XML.
func (d *Document) Serialize() []byte {
	return []byte(d.root.OutputXML(true))
}

// Name returns the element or attribute name.
func (n *Node) Name() string {
	if n.node.Prefix != "" {
		return n.node.Prefix + ":" + n.node.Data
	}
	return n.node.Data
}

// IsAttribute reports whether n is an attribute selected by a query.
func (n *Node) IsAttribute() bool {
	return n.node.Type == xmlquery.AttributeNode
}

// IsElement reports whether n is an element.
func (n *Node) IsElement() bool {
	return n.node.Type == xmlquery.ElementNode
}

// Text returns the concatenated text of n and its descendants.
func (n *Node) Text() string {
	return n.node.InnerText()
}

// OuterXML returns n serialized with its own tag. Attributes are written as
// name="value".
func (n *Node) OuterXML() string {
	if n.IsAttribute() {
		var b strings.Builder
		b.WriteString(n.Name())
		b.WriteString(`="`)
		_ = xml.EscapeText(&b, []byte(n.Text()))
		b.WriteByte('"')
		return b.String()
	}
	return n.node.OutputXML(true)
}

// Children returns the child elements.
func (n *Node) Children() []*Node {
	var children []*Node
	for child := n.node.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == xmlquery.ElementNode {
			children = append(children, &Node{node: child})
		}
	}
	return children
}

// Parent returns the enclosing element, or nil at the root. For an
// attribute it is the element carrying it.
func (n *Node) Parent() *Node {
	p := n.node.Parent
	if p == nil || p.Type != xmlquery.ElementNode {
		return nil
	}
	return &Node{node: p}
}

// Attributes returns the attributes of an element.
func (n *Node) Attributes() map[string]string {
	attrs := make(map[string]string, len(n.node.Attr))
	for _, attr := range n.node.Attr {
		attrs[attr.Name.Local] = attr.Value
	}
	return attrs
}

// Attr returns the value of the named attribute, or "".
func (n *Node) Attr(name string) string {
	return n.node.SelectAttr(name)
}
