package bioc

import (
	"fmt"
	"slices"
	"strings"

	"github.com/FocuswithJustin/bioc/core/errors"
)

// scope holds the annotations and relations owned by a passage, sentence or
// document, together with the id policy enforced on insertion.
type scope struct {
	policy      IDPolicy
	annotations idSet[*Annotation]
	relations   idSet[*Relation]
}

// SetIDPolicy sets how duplicate ids are handled by later insertions.
func (s *scope) SetIDPolicy(p IDPolicy) {
	s.policy = p
}

// IDPolicy returns the scope's id policy.
func (s *scope) IDPolicy() IDPolicy {
	return s.policy
}

// Relations returns a snapshot of the scope's relations in insertion order.
func (s *scope) Relations() []*Relation {
	return s.relations.list()
}

// Relation returns the first relation with the given id.
func (s *scope) Relation(id string) (*Relation, bool) {
	return s.relations.get(id)
}

// RemoveRelation deletes the first relation with the given id.
func (s *scope) RemoveRelation(id string) bool {
	return s.relations.remove(id)
}

// ClearRelations removes every relation.
func (s *scope) ClearRelations() {
	s.relations.clear()
}

// RelationCount returns the number of relations.
func (s *scope) RelationCount() int {
	return s.relations.len()
}

func (s *scope) cloneScope() scope {
	c := scope{policy: s.policy}
	for _, a := range s.annotations.items {
		_ = c.annotations.add(a.Clone(), LenientIDs, "", "annotation")
	}
	for _, r := range s.relations.items {
		_ = c.relations.add(r.Clone(), LenientIDs, "", "relation")
	}
	return c
}

func (s *scope) equalScope(other *scope) bool {
	return slices.EqualFunc(s.annotations.items, other.annotations.items, (*Annotation).Equal) &&
		slices.EqualFunc(s.relations.items, other.relations.items, (*Relation).Equal)
}

// annotated adds annotation accessors to a scope. Documents own relations
// only, so they embed scope without this.
type annotated struct {
	scope
}

// Annotations returns a snapshot of the scope's annotations in insertion
// order.
func (s *annotated) Annotations() []*Annotation {
	return s.annotations.list()
}

// Annotation returns the first annotation with the given id.
func (s *annotated) Annotation(id string) (*Annotation, bool) {
	return s.annotations.get(id)
}

// RemoveAnnotation deletes the first annotation with the given id.
func (s *annotated) RemoveAnnotation(id string) bool {
	return s.annotations.remove(id)
}

// ClearAnnotations removes every annotation.
func (s *annotated) ClearAnnotations() {
	s.annotations.clear()
}

// AnnotationCount returns the number of annotations.
func (s *annotated) AnnotationCount() int {
	return s.annotations.len()
}

// Passage is a contiguous section of a document, such as a title or an
// abstract. A passage carries either its own text or a sequence of
// sentences that together make up its text.
type Passage struct {
	infonSet
	annotated
	offset    opt[int]
	text      opt[string]
	sentences []*Sentence
}

// NewPassage returns a passage starting at offset.
func NewPassage(offset int) *Passage {
	return &Passage{offset: some(offset)}
}

// Offset returns the passage offset or a MissingFieldError.
func (p *Passage) Offset() (int, error) {
	if !p.offset.set {
		return 0, errors.NewMissingField("passage", "offset")
	}
	return p.offset.v, nil
}

// SetOffset sets the document-relative passage offset.
func (p *Passage) SetOffset(offset int) {
	p.offset = some(offset)
}

// Text returns the passage text, if any.
func (p *Passage) Text() (string, bool) {
	return p.text.get()
}

// SetText sets the passage text.
func (p *Passage) SetText(text string) {
	p.text = some(text)
}

// ClearText removes the passage text.
func (p *Passage) ClearText() {
	p.text = opt[string]{}
}

// Sentences returns a snapshot of the passage's sentences.
func (p *Passage) Sentences() []*Sentence {
	return slices.Clone(p.sentences)
}

// AddSentence appends a sentence.
func (p *Passage) AddSentence(s *Sentence) {
	p.sentences = append(p.sentences, s)
}

// RemoveSentence deletes the sentence at index i.
func (p *Passage) RemoveSentence(i int) bool {
	if i < 0 || i >= len(p.sentences) {
		return false
	}
	p.sentences = slices.Delete(p.sentences, i, i+1)
	return true
}

// ClearSentences removes every sentence.
func (p *Passage) ClearSentences() {
	p.sentences = nil
}

// SentenceCount returns the number of sentences.
func (p *Passage) SentenceCount() int {
	return len(p.sentences)
}

// AddAnnotation adds a to the passage under the passage's id policy.
func (p *Passage) AddAnnotation(a *Annotation) error {
	return p.annotations.add(a, p.policy, p.label(), "annotation")
}

// AddRelation adds r to the passage under the passage's id policy.
func (p *Passage) AddRelation(r *Relation) error {
	return p.relations.add(r, p.policy, p.label(), "relation")
}

// Clone returns a deep copy of the passage.
func (p *Passage) Clone() *Passage {
	if p == nil {
		return nil
	}
	c := &Passage{
		infonSet:  p.infonSet.clone(),
		annotated: annotated{p.cloneScope()},
		offset:    p.offset,
		text:      p.text,
		sentences: make([]*Sentence, 0, len(p.sentences)),
	}
	for _, s := range p.sentences {
		c.sentences = append(c.sentences, s.Clone())
	}
	return c
}

// Equal reports whether p and other hold the same fields. The id policy is
// not part of the comparison.
func (p *Passage) Equal(other *Passage) bool {
	if p == nil || other == nil {
		return p == other
	}
	return p.offset == other.offset &&
		p.text == other.text &&
		p.infonSet.equal(&other.infonSet) &&
		slices.EqualFunc(p.sentences, other.sentences, (*Sentence).Equal) &&
		p.equalScope(&other.scope)
}

func (p *Passage) String() string {
	var b strings.Builder
	b.WriteString("Passage{offset=")
	writeOpt(&b, p.offset)
	b.WriteString(", text=")
	writeOpt(&b, p.text)
	fmt.Fprintf(&b, ", infons=%s, sentences=%v, annotations=%v, relations=%v}",
		p.infonSet.format(), p.sentences, p.annotations.items, p.relations.items)
	return b.String()
}

func (p *Passage) label() string {
	if off, ok := p.offset.get(); ok {
		return fmt.Sprintf("passage@%d", off)
	}
	return "passage"
}

func (*Passage) record() {}

// Sentence is a span of passage text carrying its own annotations and
// relations. Its offset is document-relative.
type Sentence struct {
	infonSet
	annotated
	offset opt[int]
	text   opt[string]
}

// NewSentence returns a sentence starting at offset.
func NewSentence(offset int) *Sentence {
	return &Sentence{offset: some(offset)}
}

// Offset returns the sentence offset or a MissingFieldError.
func (s *Sentence) Offset() (int, error) {
	if !s.offset.set {
		return 0, errors.NewMissingField("sentence", "offset")
	}
	return s.offset.v, nil
}

// SetOffset sets the document-relative sentence offset.
func (s *Sentence) SetOffset(offset int) {
	s.offset = some(offset)
}

// Text returns the sentence text, if any.
func (s *Sentence) Text() (string, bool) {
	return s.text.get()
}

// SetText sets the sentence text.
func (s *Sentence) SetText(text string) {
	s.text = some(text)
}

// ClearText removes the sentence text.
func (s *Sentence) ClearText() {
	s.text = opt[string]{}
}

// AddAnnotation adds a to the sentence under the sentence's id policy.
func (s *Sentence) AddAnnotation(a *Annotation) error {
	return s.annotations.add(a, s.policy, s.label(), "annotation")
}

// AddRelation adds r to the sentence under the sentence's id policy.
func (s *Sentence) AddRelation(r *Relation) error {
	return s.relations.add(r, s.policy, s.label(), "relation")
}

// Clone returns a deep copy of the sentence.
func (s *Sentence) Clone() *Sentence {
	if s == nil {
		return nil
	}
	return &Sentence{
		infonSet:  s.infonSet.clone(),
		annotated: annotated{s.cloneScope()},
		offset:    s.offset,
		text:      s.text,
	}
}

// Equal reports whether s and other hold the same fields.
func (s *Sentence) Equal(other *Sentence) bool {
	if s == nil || other == nil {
		return s == other
	}
	return s.offset == other.offset &&
		s.text == other.text &&
		s.infonSet.equal(&other.infonSet) &&
		s.equalScope(&other.scope)
}

func (s *Sentence) String() string {
	var b strings.Builder
	b.WriteString("Sentence{offset=")
	writeOpt(&b, s.offset)
	b.WriteString(", text=")
	writeOpt(&b, s.text)
	fmt.Fprintf(&b, ", infons=%s, annotations=%v, relations=%v}",
		s.infonSet.format(), s.annotations.items, s.relations.items)
	return b.String()
}

func (s *Sentence) label() string {
	if off, ok := s.offset.get(); ok {
		return fmt.Sprintf("sentence@%d", off)
	}
	return "sentence"
}

func (*Sentence) record() {}
