package bioc

import (
	"fmt"
	"slices"
	"strings"

	"github.com/FocuswithJustin/bioc/core/errors"
)

// Record is implemented by the composite records a streaming reader can
// yield and an iterator can start from: *Collection, *Document, *Passage
// and *Sentence.
type Record interface {
	fmt.Stringer
	record()
}

// Collection is the root of a BioC file. Its documents are fully populated
// when read as a whole and empty when streamed one document at a time.
type Collection struct {
	infonSet
	source    opt[string]
	date      opt[string]
	key       opt[string]
	documents []*Document
}

// NewCollection returns a collection with the given header fields.
func NewCollection(source, date, key string) *Collection {
	return &Collection{source: some(source), date: some(date), key: some(key)}
}

// Source returns the corpus source or a MissingFieldError.
func (c *Collection) Source() (string, error) {
	if !c.source.set {
		return "", errors.NewMissingField("collection", "source")
	}
	return c.source.v, nil
}

// SetSource sets the corpus source.
func (c *Collection) SetSource(source string) {
	c.source = some(source)
}

// Date returns the provenance date or a MissingFieldError.
func (c *Collection) Date() (string, error) {
	if !c.date.set {
		return "", errors.NewMissingField("collection", "date")
	}
	return c.date.v, nil
}

// SetDate sets the provenance date.
func (c *Collection) SetDate(date string) {
	c.date = some(date)
}

// Key returns the key file label or a MissingFieldError.
func (c *Collection) Key() (string, error) {
	if !c.key.set {
		return "", errors.NewMissingField("collection", "key")
	}
	return c.key.v, nil
}

// SetKey sets the key file label.
func (c *Collection) SetKey(key string) {
	c.key = some(key)
}

// Documents returns a snapshot of the collection's documents.
func (c *Collection) Documents() []*Document {
	return slices.Clone(c.documents)
}

// Document returns the first document with the given id.
func (c *Collection) Document(id string) (*Document, bool) {
	for _, d := range c.documents {
		if got, ok := d.id.get(); ok && got == id {
			return d, true
		}
	}
	return nil, false
}

// AddDocument appends a document.
func (c *Collection) AddDocument(d *Document) {
	c.documents = append(c.documents, d)
}

// RemoveDocument deletes the document at index i.
func (c *Collection) RemoveDocument(i int) bool {
	if i < 0 || i >= len(c.documents) {
		return false
	}
	c.documents = slices.Delete(c.documents, i, i+1)
	return true
}

// ClearDocuments removes every document.
func (c *Collection) ClearDocuments() {
	c.documents = nil
}

// DocumentCount returns the number of documents.
func (c *Collection) DocumentCount() int {
	return len(c.documents)
}

// Header returns a copy of the collection without its documents.
func (c *Collection) Header() *Collection {
	return &Collection{
		infonSet: c.infonSet.clone(),
		source:   c.source,
		date:     c.date,
		key:      c.key,
	}
}

// Clone returns a deep copy of the collection.
func (c *Collection) Clone() *Collection {
	if c == nil {
		return nil
	}
	cp := c.Header()
	cp.documents = make([]*Document, 0, len(c.documents))
	for _, d := range c.documents {
		cp.documents = append(cp.documents, d.Clone())
	}
	return cp
}

// Equal reports whether c and other hold the same fields.
func (c *Collection) Equal(other *Collection) bool {
	if c == nil || other == nil {
		return c == other
	}
	return c.source == other.source &&
		c.date == other.date &&
		c.key == other.key &&
		c.infonSet.equal(&other.infonSet) &&
		slices.EqualFunc(c.documents, other.documents, (*Document).Equal)
}

func (c *Collection) String() string {
	var b strings.Builder
	b.WriteString("Collection{source=")
	writeOpt(&b, c.source)
	b.WriteString(", date=")
	writeOpt(&b, c.date)
	b.WriteString(", key=")
	writeOpt(&b, c.key)
	fmt.Fprintf(&b, ", infons=%s, documents=%v}", c.infonSet.format(), c.documents)
	return b.String()
}

func (*Collection) record() {}

// Document is one article or record of a collection. It owns its passages
// and the relations that span passages.
type Document struct {
	infonSet
	scope
	id       opt[string]
	passages []*Passage
}

// NewDocument returns a document with the given id.
func NewDocument(id string) *Document {
	return &Document{id: some(id)}
}

// ID returns the document id or a MissingFieldError.
func (d *Document) ID() (string, error) {
	if !d.id.set {
		return "", errors.NewMissingField("document", "id")
	}
	return d.id.v, nil
}

// SetID sets the document id.
func (d *Document) SetID(id string) {
	d.id = some(id)
}

// Passages returns a snapshot of the document's passages.
func (d *Document) Passages() []*Passage {
	return slices.Clone(d.passages)
}

// AddPassage appends a passage.
func (d *Document) AddPassage(p *Passage) {
	d.passages = append(d.passages, p)
}

// RemovePassage deletes the passage at index i.
func (d *Document) RemovePassage(i int) bool {
	if i < 0 || i >= len(d.passages) {
		return false
	}
	d.passages = slices.Delete(d.passages, i, i+1)
	return true
}

// ClearPassages removes every passage.
func (d *Document) ClearPassages() {
	d.passages = nil
}

// PassageCount returns the number of passages.
func (d *Document) PassageCount() int {
	return len(d.passages)
}

// AddRelation adds a document-level relation under the document's id
// policy.
func (d *Document) AddRelation(r *Relation) error {
	return d.relations.add(r, d.policy, d.label(), "relation")
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	c := &Document{
		infonSet: d.infonSet.clone(),
		scope:    d.cloneScope(),
		id:       d.id,
		passages: make([]*Passage, 0, len(d.passages)),
	}
	for _, p := range d.passages {
		c.passages = append(c.passages, p.Clone())
	}
	return c
}

// Equal reports whether d and other hold the same fields.
func (d *Document) Equal(other *Document) bool {
	if d == nil || other == nil {
		return d == other
	}
	return d.id == other.id &&
		d.infonSet.equal(&other.infonSet) &&
		slices.EqualFunc(d.passages, other.passages, (*Passage).Equal) &&
		d.equalScope(&other.scope)
}

func (d *Document) String() string {
	var b strings.Builder
	b.WriteString("Document{id=")
	writeOpt(&b, d.id)
	fmt.Fprintf(&b, ", infons=%s, passages=%v, relations=%v}",
		d.infonSet.format(), d.passages, d.relations.items)
	return b.String()
}

func (d *Document) label() string {
	if id, ok := d.id.get(); ok {
		return "document " + id
	}
	return "document"
}

func (*Document) record() {}
