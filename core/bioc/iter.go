package bioc

import "iter"

// Cursors in this file walk a record tree lazily in document order. They
// are forward-only and single-pass: once Next returns false the cursor is
// exhausted, and a new cursor must be built from the root to walk again.

const (
	depthDocument = iota
	depthPassage
	depthSentence
)

// frame is one visited scope together with its enclosing records.
type frame struct {
	doc      *Document
	passage  *Passage
	sentence *Sentence
}

func (f frame) depth() int {
	switch {
	case f.sentence != nil:
		return depthSentence
	case f.passage != nil:
		return depthPassage
	default:
		return depthDocument
	}
}

// walker visits scopes in pre-order, expanding children only when their
// parent is visited.
type walker struct {
	stack    []frame
	cur      frame
	maxDepth int
}

func newWalker(root Record, maxDepth int) *walker {
	w := &walker{maxDepth: maxDepth}
	switch r := root.(type) {
	case *Collection:
		for i := len(r.documents) - 1; i >= 0; i-- {
			w.stack = append(w.stack, frame{doc: r.documents[i]})
		}
	case *Document:
		w.stack = append(w.stack, frame{doc: r})
	case *Passage:
		w.stack = append(w.stack, frame{passage: r})
	case *Sentence:
		w.stack = append(w.stack, frame{sentence: r})
	}
	return w
}

func (w *walker) next() bool {
	if len(w.stack) == 0 {
		w.cur = frame{}
		return false
	}
	f := w.stack[len(w.stack)-1]
	w.stack = w.stack[:len(w.stack)-1]

	switch d := f.depth(); {
	case d == depthDocument && w.maxDepth > depthDocument:
		for i := len(f.doc.passages) - 1; i >= 0; i-- {
			w.stack = append(w.stack, frame{doc: f.doc, passage: f.doc.passages[i]})
		}
	case d == depthPassage && w.maxDepth > depthPassage:
		for i := len(f.passage.sentences) - 1; i >= 0; i-- {
			w.stack = append(w.stack, frame{doc: f.doc, passage: f.passage, sentence: f.passage.sentences[i]})
		}
	}
	w.cur = f
	return true
}

// advanceTo moves to the next frame at exactly depth.
func (w *walker) advanceTo(depth int) bool {
	for w.next() {
		if w.cur.depth() == depth {
			return true
		}
	}
	return false
}

// DocumentIterator walks the documents of a collection.
type DocumentIterator struct {
	docs []*Document
	i    int
	cur  *Document
}

// Documents returns a cursor over the documents under root. A document root
// yields itself; passage and sentence roots yield nothing.
func Documents(root Record) *DocumentIterator {
	switch r := root.(type) {
	case *Collection:
		return &DocumentIterator{docs: r.documents}
	case *Document:
		return &DocumentIterator{docs: []*Document{r}}
	}
	return &DocumentIterator{}
}

// Next advances to the next document.
func (it *DocumentIterator) Next() bool {
	if it.i >= len(it.docs) {
		it.cur = nil
		return false
	}
	it.cur = it.docs[it.i]
	it.i++
	return true
}

// Document returns the current document.
func (it *DocumentIterator) Document() *Document {
	return it.cur
}

// All returns the remaining documents as a sequence.
func (it *DocumentIterator) All() iter.Seq[*Document] {
	return func(yield func(*Document) bool) {
		for it.Next() {
			if !yield(it.cur) {
				return
			}
		}
	}
}

// PassageIterator walks passages in document order.
type PassageIterator struct {
	w *walker
}

// Passages returns a cursor over the passages under root.
func Passages(root Record) *PassageIterator {
	return &PassageIterator{w: newWalker(root, depthPassage)}
}

// Next advances to the next passage.
func (it *PassageIterator) Next() bool {
	return it.w.advanceTo(depthPassage)
}

// Passage returns the current passage.
func (it *PassageIterator) Passage() *Passage {
	return it.w.cur.passage
}

// Document returns the document enclosing the current passage, or nil when
// the iteration started below document level.
func (it *PassageIterator) Document() *Document {
	return it.w.cur.doc
}

// All returns the remaining passages as a sequence.
func (it *PassageIterator) All() iter.Seq[*Passage] {
	return func(yield func(*Passage) bool) {
		for it.Next() {
			if !yield(it.Passage()) {
				return
			}
		}
	}
}

// SentenceIterator walks sentences in document order.
type SentenceIterator struct {
	w *walker
}

// Sentences returns a cursor over the sentences under root.
func Sentences(root Record) *SentenceIterator {
	return &SentenceIterator{w: newWalker(root, depthSentence)}
}

// Next advances to the next sentence.
func (it *SentenceIterator) Next() bool {
	return it.w.advanceTo(depthSentence)
}

// Sentence returns the current sentence.
func (it *SentenceIterator) Sentence() *Sentence {
	return it.w.cur.sentence
}

// Passage returns the passage enclosing the current sentence, if known.
func (it *SentenceIterator) Passage() *Passage {
	return it.w.cur.passage
}

// Document returns the document enclosing the current sentence, if known.
func (it *SentenceIterator) Document() *Document {
	return it.w.cur.doc
}

// All returns the remaining sentences as a sequence.
func (it *SentenceIterator) All() iter.Seq[*Sentence] {
	return func(yield func(*Sentence) bool) {
		for it.Next() {
			if !yield(it.Sentence()) {
				return
			}
		}
	}
}

// AnnotationIterator walks every annotation under a root: for each passage,
// the passage's own annotations followed by those of its sentences.
type AnnotationIterator struct {
	w     *walker
	items []*Annotation
	i     int
	cur   *Annotation
	at    frame
}

// Annotations returns a cursor over the annotations under root.
func Annotations(root Record) *AnnotationIterator {
	return &AnnotationIterator{w: newWalker(root, depthSentence)}
}

// Next advances to the next annotation.
func (it *AnnotationIterator) Next() bool {
	for it.i >= len(it.items) {
		if !it.w.next() {
			it.cur, it.at = nil, frame{}
			return false
		}
		it.items, it.i = nil, 0
		switch f := it.w.cur; {
		case f.sentence != nil:
			it.items = f.sentence.annotations.items
		case f.passage != nil:
			it.items = f.passage.annotations.items
		}
	}
	it.cur, it.at = it.items[it.i], it.w.cur
	it.i++
	return true
}

// Annotation returns the current annotation.
func (it *AnnotationIterator) Annotation() *Annotation {
	return it.cur
}

// Document returns the document enclosing the current annotation, if known.
func (it *AnnotationIterator) Document() *Document {
	return it.at.doc
}

// Passage returns the passage enclosing the current annotation, if known.
func (it *AnnotationIterator) Passage() *Passage {
	return it.at.passage
}

// Sentence returns the sentence owning the current annotation, or nil for
// passage-level annotations.
func (it *AnnotationIterator) Sentence() *Sentence {
	return it.at.sentence
}

// All returns the remaining annotations as a sequence.
func (it *AnnotationIterator) All() iter.Seq[*Annotation] {
	return func(yield func(*Annotation) bool) {
		for it.Next() {
			if !yield(it.cur) {
				return
			}
		}
	}
}

// RelationIterator walks every relation under a root: document relations
// first, then each passage's relations followed by those of its sentences.
type RelationIterator struct {
	w     *walker
	items []*Relation
	i     int
	cur   *Relation
	at    frame
}

// Relations returns a cursor over the relations under root.
func Relations(root Record) *RelationIterator {
	return &RelationIterator{w: newWalker(root, depthSentence)}
}

// Next advances to the next relation.
func (it *RelationIterator) Next() bool {
	for it.i >= len(it.items) {
		if !it.w.next() {
			it.cur, it.at = nil, frame{}
			return false
		}
		it.i = 0
		switch f := it.w.cur; {
		case f.sentence != nil:
			it.items = f.sentence.relations.items
		case f.passage != nil:
			it.items = f.passage.relations.items
		default:
			it.items = f.doc.relations.items
		}
	}
	it.cur, it.at = it.items[it.i], it.w.cur
	it.i++
	return true
}

// Relation returns the current relation.
func (it *RelationIterator) Relation() *Relation {
	return it.cur
}

// Document returns the document enclosing the current relation, if known.
func (it *RelationIterator) Document() *Document {
	return it.at.doc
}

// Passage returns the passage enclosing the current relation, or nil for
// document-level relations.
func (it *RelationIterator) Passage() *Passage {
	return it.at.passage
}

// Sentence returns the sentence owning the current relation, or nil.
func (it *RelationIterator) Sentence() *Sentence {
	return it.at.sentence
}

// All returns the remaining relations as a sequence.
func (it *RelationIterator) All() iter.Seq[*Relation] {
	return func(yield func(*Relation) bool) {
		for it.Next() {
			if !yield(it.cur) {
				return
			}
		}
	}
}
