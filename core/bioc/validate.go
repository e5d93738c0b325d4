package bioc

import (
	stderrors "errors"
	"slices"
	"strings"

	"github.com/FocuswithJustin/bioc/core/errors"
)

// Mode selects how a Validator reacts to a violation.
type Mode int

const (
	// CollectErrors records every violation and keeps going.
	CollectErrors Mode = iota
	// FailFast stops at the first violation.
	FailFast
)

// Validator checks the textual and referential integrity of documents:
// passage and sentence text may not overlap, annotation text must match the
// text at its locations, and relation nodes must reference known ids.
type Validator struct {
	Mode Mode

	// Report, when set, receives each violation as it is found.
	Report func(err error)
}

// ValidateCollection validates every document of c. In FailFast mode the
// first violation is returned; otherwise all violations are returned
// joined, or nil.
func (v *Validator) ValidateCollection(c *Collection) error {
	chk := &checker{v: v}
	for it := Documents(c); it.Next(); {
		if chk.document(it.Document()) {
			return chk.errs[0]
		}
	}
	return stderrors.Join(chk.errs...)
}

// ValidateDocument validates a single document.
func (v *Validator) ValidateDocument(d *Document) error {
	chk := &checker{v: v}
	if chk.document(d) {
		return chk.errs[0]
	}
	return stderrors.Join(chk.errs...)
}

// ValidateDocument validates a Document and returns all validation errors.
func ValidateDocument(d *Document) []error {
	var errs []error
	v := &Validator{Report: func(err error) { errs = append(errs, err) }}
	_ = v.ValidateDocument(d)
	return errs
}

// ValidateCollection validates a Collection and returns all validation
// errors.
func ValidateCollection(c *Collection) []error {
	var errs []error
	v := &Validator{Report: func(err error) { errs = append(errs, err) }}
	_ = v.ValidateCollection(c)
	return errs
}

// IsValid returns true if the collection has no validation errors.
func IsValid(c *Collection) bool {
	return (&Validator{Mode: FailFast}).ValidateCollection(c) == nil
}

// DocumentText reconstructs the text of d by placing each passage's text,
// or its sentences' texts, at their offsets and filling gaps with newlines.
func DocumentText(d *Document) (string, error) {
	chk := &checker{v: &Validator{Mode: FailFast}}
	text, stop := chk.documentText(d)
	if stop {
		return "", chk.errs[0]
	}
	return string(text), nil
}

type checker struct {
	v     *Validator
	docID string
	errs  []error
}

// fail records err and reports whether validation must stop.
func (c *checker) fail(err error) bool {
	if c.v.Report != nil {
		c.v.Report(err)
	}
	c.errs = append(c.errs, err)
	return c.v.Mode == FailFast
}

func (c *checker) invalid(field, msg string) bool {
	return c.fail(&errors.InvalidValueError{DocumentID: c.docID, Field: field, Message: msg})
}

func (c *checker) document(d *Document) bool {
	id, err := d.ID()
	if err != nil {
		if c.fail(err) {
			return true
		}
	}
	c.docID = id

	docText, stop := c.documentText(d)
	if stop {
		return true
	}
	if c.annotationTexts(d, docText) {
		return true
	}
	return c.references(d)
}

func (c *checker) documentText(d *Document) ([]rune, bool) {
	var text []rune
	place := func(scope string, offset int, s string) bool {
		if offset < len(text) {
			return c.fail(&errors.OverlapError{DocumentID: c.docID, Scope: scope, Offset: offset, End: len(text)})
		}
		for len(text) < offset {
			text = append(text, '\n')
		}
		text = append(text, []rune(s)...)
		return false
	}

	for _, p := range d.passages {
		off, err := p.Offset()
		if err != nil {
			if c.fail(err) {
				return nil, true
			}
			continue
		}
		if off < 0 {
			if c.invalid("passage.offset", "offset cannot be negative") {
				return nil, true
			}
			continue
		}
		if t, ok := p.Text(); ok {
			if hasSentenceText(p) && c.invalid("passage", "passage carries both text and sentence text") {
				return nil, true
			}
			if place("passage", off, t) {
				return nil, true
			}
			continue
		}
		for _, s := range p.sentences {
			soff, err := s.Offset()
			if err != nil {
				if c.fail(err) {
					return nil, true
				}
				continue
			}
			if soff < off {
				if c.invalid("sentence.offset", "sentence starts before its passage") {
					return nil, true
				}
				continue
			}
			if t, ok := s.Text(); ok && place("sentence", soff, t) {
				return nil, true
			}
		}
	}
	return text, false
}

func hasSentenceText(p *Passage) bool {
	return slices.ContainsFunc(p.sentences, func(s *Sentence) bool {
		_, ok := s.Text()
		return ok
	})
}

// annotationTexts checks each annotation against the text of the nearest
// enclosing scope that has text: its sentence, its passage, or the
// reconstructed document.
func (c *checker) annotationTexts(d *Document, docText []rune) bool {
	for _, p := range d.passages {
		pText, pBase := docText, 0
		if t, ok := p.Text(); ok {
			pText, pBase = []rune(t), p.offset.v
		}
		if c.annotations(p.annotations.items, pText, pBase) {
			return true
		}
		for _, s := range p.sentences {
			sText, sBase := pText, pBase
			if t, ok := s.Text(); ok {
				sText, sBase = []rune(t), s.offset.v
			}
			if c.annotations(s.annotations.items, sText, sBase) {
				return true
			}
		}
	}
	return false
}

func (c *checker) annotations(anns []*Annotation, text []rune, base int) bool {
	for _, a := range anns {
		if c.annotation(a, text, base) {
			return true
		}
	}
	return false
}

func (c *checker) annotation(a *Annotation, text []rune, base int) bool {
	id := a.id.v
	if len(a.locations) == 0 {
		return c.invalid("annotation "+id, "annotation has no locations")
	}
	for _, loc := range a.locations {
		if loc.Offset < 0 || loc.Length < 0 {
			return c.invalid("annotation "+id, "location "+loc.String()+" is negative")
		}
	}
	declared, ok := a.Text()
	if !ok {
		return false
	}

	extracted := make([]string, len(a.locations))
	for i, loc := range a.locations {
		start, end := loc.Offset-base, loc.End()-base
		if start < 0 || end > len(text) {
			return c.fail(&errors.AnnotationTextMismatchError{
				DocumentID: c.docID, AnnotationID: id,
				Offset: loc.Offset, Length: loc.Length,
				Actual: declared, Reason: "location outside scope text",
			})
		}
		extracted[i] = string(text[start:end])
	}

	if len(a.locations) == 1 {
		if extracted[0] == declared {
			return false
		}
		loc := a.locations[0]
		return c.fail(&errors.AnnotationTextMismatchError{
			DocumentID: c.docID, AnnotationID: id,
			Offset: loc.Offset, Length: loc.Length,
			Expected: extracted[0], Actual: declared,
		})
	}

	if boundingBoxMatches(a, extracted, []rune(declared)) {
		return false
	}
	joined := joinSpans(a.locations, extracted)
	if joined == declared {
		return false
	}
	total, _ := a.TotalLocation()
	return c.fail(&errors.AnnotationTextMismatchError{
		DocumentID: c.docID, AnnotationID: id,
		Offset: total.Offset, Length: total.Length,
		Expected: joined, Actual: declared,
	})
}

// boundingBoxMatches reports whether the declared text spans the whole
// bounding box and agrees with the scope text at every location.
func boundingBoxMatches(a *Annotation, extracted []string, declared []rune) bool {
	total, _ := a.TotalLocation()
	if len(declared) != total.Length {
		return false
	}
	for i, loc := range a.locations {
		rel := loc.Offset - total.Offset
		if string(declared[rel:rel+loc.Length]) != extracted[i] {
			return false
		}
	}
	return true
}

// joinSpans concatenates the extracted spans in offset order, separating
// non-adjacent spans with a single space.
func joinSpans(locs []Location, extracted []string) string {
	order := make([]int, len(locs))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return locs[a].Offset - locs[b].Offset
	})

	var b strings.Builder
	for n, i := range order {
		if n > 0 && locs[order[n-1]].End() != locs[i].Offset {
			b.WriteByte(' ')
		}
		b.WriteString(extracted[i])
	}
	return b.String()
}

// references checks that every relation node resolves to an annotation or
// relation id in the relation's scope, one of its ancestors, or one of its
// descendants.
func (c *checker) references(d *Document) bool {
	docOwn := idsOf(&d.scope)
	docAll := make(map[string]bool)
	passageAll := make(map[*Passage]map[string]bool, len(d.passages))
	for _, p := range d.passages {
		sub := idsOf(&p.scope)
		for _, s := range p.sentences {
			for id := range idsOf(&s.scope) {
				sub[id] = true
			}
		}
		passageAll[p] = sub
		for id := range sub {
			docAll[id] = true
		}
	}
	for id := range docOwn {
		docAll[id] = true
	}

	for it := Relations(d); it.Next(); {
		r := it.Relation()
		var resolves func(string) bool
		switch {
		case it.Sentence() != nil:
			own, parent := idsOf(&it.Sentence().scope), idsOf(&it.Passage().scope)
			resolves = func(id string) bool { return own[id] || parent[id] || docOwn[id] }
		case it.Passage() != nil:
			sub := passageAll[it.Passage()]
			resolves = func(id string) bool { return sub[id] || docOwn[id] }
		default:
			resolves = func(id string) bool { return docAll[id] }
		}
		for _, n := range r.nodes {
			if resolves(n.RefID) {
				continue
			}
			if c.fail(&errors.DanglingReferenceError{
				DocumentID: c.docID, RelationID: r.id.v, RefID: n.RefID, Role: n.Role,
			}) {
				return true
			}
		}
	}
	return false
}

func idsOf(s *scope) map[string]bool {
	ids := make(map[string]bool, s.annotations.len()+s.relations.len())
	for id := range s.annotations.count {
		ids[id] = true
	}
	for id := range s.relations.count {
		ids[id] = true
	}
	return ids
}
