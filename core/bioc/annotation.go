package bioc

import (
	"fmt"
	"slices"
	"strings"

	"github.com/FocuswithJustin/bioc/core/errors"
)

// opt is a value with an explicit unset state.
type opt[T any] struct {
	v   T
	set bool
}

func some[T any](v T) opt[T] {
	return opt[T]{v: v, set: true}
}

func (o opt[T]) get() (T, bool) {
	return o.v, o.set
}

// Location addresses a contiguous span of document text.
type Location struct {
	// Offset is the document-relative start, in characters.
	Offset int
	// Length is the span length in characters; zero marks a point.
	Length int
}

// End returns the offset just past the span.
func (l Location) End() int {
	return l.Offset + l.Length
}

func (l Location) String() string {
	return fmt.Sprintf("%d:%d", l.Offset, l.Length)
}

// Node names one participant of a relation. RefID weakly references an
// annotation or relation id; it is resolved only during validation.
type Node struct {
	RefID string
	Role  string
}

func (n Node) String() string {
	return fmt.Sprintf("%s(%s)", n.Role, n.RefID)
}

// Annotation marks one or more spans of text. Multiple locations describe a
// discontinuous annotation.
type Annotation struct {
	infonSet
	id        opt[string]
	locations []Location
	text      opt[string]
}

// NewAnnotation returns an annotation with the given id.
func NewAnnotation(id string) *Annotation {
	return &Annotation{id: some(id)}
}

// ID returns the annotation id or a MissingFieldError.
func (a *Annotation) ID() (string, error) {
	if !a.id.set {
		return "", errors.NewMissingField("annotation", "id")
	}
	return a.id.v, nil
}

// SetID sets the annotation id.
func (a *Annotation) SetID(id string) {
	a.id = some(id)
}

// Text returns the annotated text, if any.
func (a *Annotation) Text() (string, bool) {
	return a.text.get()
}

// SetText sets the annotated text.
func (a *Annotation) SetText(text string) {
	a.text = some(text)
}

// ClearText removes the annotated text.
func (a *Annotation) ClearText() {
	a.text = opt[string]{}
}

// Locations returns a snapshot of the annotation's locations.
func (a *Annotation) Locations() []Location {
	return slices.Clone(a.locations)
}

// AddLocation appends a location.
func (a *Annotation) AddLocation(loc Location) {
	a.locations = append(a.locations, loc)
}

// ClearLocations removes every location.
func (a *Annotation) ClearLocations() {
	a.locations = nil
}

// TotalLocation returns the smallest location covering every span.
func (a *Annotation) TotalLocation() (Location, bool) {
	if len(a.locations) == 0 {
		return Location{}, false
	}
	start, end := a.locations[0].Offset, a.locations[0].End()
	for _, loc := range a.locations[1:] {
		start = min(start, loc.Offset)
		end = max(end, loc.End())
	}
	return Location{Offset: start, Length: end - start}, true
}

// Clone returns a deep copy of the annotation.
func (a *Annotation) Clone() *Annotation {
	if a == nil {
		return nil
	}
	return &Annotation{
		infonSet:  a.infonSet.clone(),
		id:        a.id,
		locations: slices.Clone(a.locations),
		text:      a.text,
	}
}

// Equal reports whether a and other hold the same fields.
func (a *Annotation) Equal(other *Annotation) bool {
	if a == nil || other == nil {
		return a == other
	}
	return a.id == other.id &&
		a.text == other.text &&
		slices.Equal(a.locations, other.locations) &&
		a.infonSet.equal(&other.infonSet)
}

func (a *Annotation) String() string {
	var b strings.Builder
	b.WriteString("Annotation{id=")
	writeOpt(&b, a.id)
	fmt.Fprintf(&b, ", infons=%s, locations=%v, text=", a.infonSet.format(), a.locations)
	writeOpt(&b, a.text)
	b.WriteByte('}')
	return b.String()
}

func (a *Annotation) key() (string, bool) {
	return a.id.get()
}

// Relation links annotations or other relations through role-labelled
// nodes.
type Relation struct {
	infonSet
	id    opt[string]
	nodes []Node
}

// NewRelation returns a relation with the given id.
func NewRelation(id string) *Relation {
	return &Relation{id: some(id)}
}

// ID returns the relation id or a MissingFieldError.
func (r *Relation) ID() (string, error) {
	if !r.id.set {
		return "", errors.NewMissingField("relation", "id")
	}
	return r.id.v, nil
}

// SetID sets the relation id.
func (r *Relation) SetID(id string) {
	r.id = some(id)
}

// Nodes returns a snapshot of the relation's nodes.
func (r *Relation) Nodes() []Node {
	return slices.Clone(r.nodes)
}

// AddNode appends a node.
func (r *Relation) AddNode(n Node) {
	r.nodes = append(r.nodes, n)
}

// RemoveNode deletes the first node referencing refID.
func (r *Relation) RemoveNode(refID string) bool {
	i := slices.IndexFunc(r.nodes, func(n Node) bool { return n.RefID == refID })
	if i < 0 {
		return false
	}
	r.nodes = slices.Delete(r.nodes, i, i+1)
	return true
}

// ClearNodes removes every node.
func (r *Relation) ClearNodes() {
	r.nodes = nil
}

// NodeByRole returns the first node with the given role.
func (r *Relation) NodeByRole(role string) (Node, bool) {
	i := slices.IndexFunc(r.nodes, func(n Node) bool { return n.Role == role })
	if i < 0 {
		return Node{}, false
	}
	return r.nodes[i], true
}

// Clone returns a deep copy of the relation.
func (r *Relation) Clone() *Relation {
	if r == nil {
		return nil
	}
	return &Relation{
		infonSet: r.infonSet.clone(),
		id:       r.id,
		nodes:    slices.Clone(r.nodes),
	}
}

// Equal reports whether r and other hold the same fields.
func (r *Relation) Equal(other *Relation) bool {
	if r == nil || other == nil {
		return r == other
	}
	return r.id == other.id &&
		slices.Equal(r.nodes, other.nodes) &&
		r.infonSet.equal(&other.infonSet)
}

func (r *Relation) String() string {
	var b strings.Builder
	b.WriteString("Relation{id=")
	writeOpt(&b, r.id)
	fmt.Fprintf(&b, ", infons=%s, nodes=%v}", r.infonSet.format(), r.nodes)
	return b.String()
}

func (r *Relation) key() (string, bool) {
	return r.id.get()
}

func writeOpt[T any](b *strings.Builder, o opt[T]) {
	if !o.set {
		b.WriteString("<unset>")
		return
	}
	if s, ok := any(o.v).(string); ok {
		fmt.Fprintf(b, "%q", s)
		return
	}
	fmt.Fprint(b, o.v)
}
