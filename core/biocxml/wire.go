package biocxml

import (
	"strconv"
	"strings"

	"github.com/FocuswithJustin/bioc/core/bioc"
	"github.com/FocuswithJustin/bioc/core/errors"
)

// Element names of the BioC wire format.
const (
	elemCollection = "collection"
	elemSource     = "source"
	elemDate       = "date"
	elemKey        = "key"
	elemInfon      = "infon"
	elemDocument   = "document"
	elemID         = "id"
	elemPassage    = "passage"
	elemSentence   = "sentence"
	elemOffset     = "offset"
	elemText       = "text"
	elemAnnotation = "annotation"
	elemRelation   = "relation"
)

// BioC XML types. Composite records are read token by token; annotations,
// relations and infons are decoded whole into these.

type xmlInfon struct {
	Key   *string `xml:"key,attr"`
	Value string  `xml:",chardata"`
}

type xmlLocation struct {
	Offset string `xml:"offset,attr"`
	Length string `xml:"length,attr"`
}

type xmlNode struct {
	RefID string `xml:"refid,attr"`
	Role  string `xml:"role,attr"`
}

type xmlAnnotation struct {
	ID        *string       `xml:"id,attr"`
	Infons    []xmlInfon    `xml:"infon"`
	Locations []xmlLocation `xml:"location"`
	Text      *string       `xml:"text"`
}

type xmlRelation struct {
	ID     *string    `xml:"id,attr"`
	Infons []xmlInfon `xml:"infon"`
	Nodes  []xmlNode  `xml:"node"`
}

type xmlSentence struct {
	Offset      int             `xml:"offset"`
	Text        *string         `xml:"text"`
	Infons      []xmlInfon      `xml:"infon"`
	Annotations []xmlAnnotation `xml:"annotation"`
	Relations   []xmlRelation   `xml:"relation"`
}

type xmlPassage struct {
	Offset      int             `xml:"offset"`
	Text        *string         `xml:"text"`
	Infons      []xmlInfon      `xml:"infon"`
	Sentences   []xmlSentence   `xml:"sentence"`
	Annotations []xmlAnnotation `xml:"annotation"`
	Relations   []xmlRelation   `xml:"relation"`
}

type xmlDocument struct {
	ID        string        `xml:"id"`
	Infons    []xmlInfon    `xml:"infon"`
	Passages  []xmlPassage  `xml:"passage"`
	Relations []xmlRelation `xml:"relation"`
}

// infonHolder is satisfied by every record.
type infonHolder interface {
	Infon(key string) (string, bool)
	InfonKeys() []string
	SetInfon(key, value string)
}

// infonsToXML returns the infons of rec in key order.
func infonsToXML(rec infonHolder) []xmlInfon {
	keys := rec.InfonKeys()
	if len(keys) == 0 {
		return nil
	}
	out := make([]xmlInfon, len(keys))
	for i, k := range keys {
		v, _ := rec.Infon(k)
		out[i] = xmlInfon{Key: &keys[i], Value: v}
	}
	return out
}

func infonsFromXML(rec infonHolder, in []xmlInfon) error {
	for _, x := range in {
		if x.Key == nil {
			return errors.NewParse(formatName, "", "infon without key attribute")
		}
		rec.SetInfon(*x.Key, x.Value)
	}
	return nil
}

func annotationToXML(a *bioc.Annotation) (xmlAnnotation, error) {
	id, err := a.ID()
	if err != nil {
		return xmlAnnotation{}, err
	}
	x := xmlAnnotation{ID: &id, Infons: infonsToXML(a)}
	for _, loc := range a.Locations() {
		x.Locations = append(x.Locations, xmlLocation{
			Offset: strconv.Itoa(loc.Offset),
			Length: strconv.Itoa(loc.Length),
		})
	}
	if text, ok := a.Text(); ok {
		x.Text = &text
	}
	return x, nil
}

func annotationFromXML(x xmlAnnotation) (*bioc.Annotation, error) {
	a := &bioc.Annotation{}
	if x.ID != nil {
		a.SetID(*x.ID)
	}
	if err := infonsFromXML(a, x.Infons); err != nil {
		return nil, err
	}
	for _, l := range x.Locations {
		off, err := parseInt("location offset", l.Offset)
		if err != nil {
			return nil, err
		}
		length, err := parseInt("location length", l.Length)
		if err != nil {
			return nil, err
		}
		a.AddLocation(bioc.Location{Offset: off, Length: length})
	}
	if x.Text != nil {
		a.SetText(*x.Text)
	}
	return a, nil
}

func relationToXML(r *bioc.Relation) (xmlRelation, error) {
	id, err := r.ID()
	if err != nil {
		return xmlRelation{}, err
	}
	x := xmlRelation{ID: &id, Infons: infonsToXML(r)}
	for _, n := range r.Nodes() {
		x.Nodes = append(x.Nodes, xmlNode{RefID: n.RefID, Role: n.Role})
	}
	return x, nil
}

func relationFromXML(x xmlRelation) (*bioc.Relation, error) {
	r := &bioc.Relation{}
	if x.ID != nil {
		r.SetID(*x.ID)
	}
	if err := infonsFromXML(r, x.Infons); err != nil {
		return nil, err
	}
	for _, n := range x.Nodes {
		r.AddNode(bioc.Node{RefID: n.RefID, Role: n.Role})
	}
	return r, nil
}

type annotationOwner interface {
	Annotations() []*bioc.Annotation
	Relations() []*bioc.Relation
}

func scopeToXML(s annotationOwner) ([]xmlAnnotation, []xmlRelation, error) {
	var anns []xmlAnnotation
	for _, a := range s.Annotations() {
		x, err := annotationToXML(a)
		if err != nil {
			return nil, nil, err
		}
		anns = append(anns, x)
	}
	rels, err := relationsToXML(s.Relations())
	if err != nil {
		return nil, nil, err
	}
	return anns, rels, nil
}

func relationsToXML(in []*bioc.Relation) ([]xmlRelation, error) {
	var rels []xmlRelation
	for _, r := range in {
		x, err := relationToXML(r)
		if err != nil {
			return nil, err
		}
		rels = append(rels, x)
	}
	return rels, nil
}

func sentenceToXML(s *bioc.Sentence) (xmlSentence, error) {
	off, err := s.Offset()
	if err != nil {
		return xmlSentence{}, err
	}
	x := xmlSentence{Offset: off, Infons: infonsToXML(s)}
	if text, ok := s.Text(); ok {
		x.Text = &text
	}
	x.Annotations, x.Relations, err = scopeToXML(s)
	return x, err
}

func passageToXML(p *bioc.Passage) (xmlPassage, error) {
	off, err := p.Offset()
	if err != nil {
		return xmlPassage{}, err
	}
	x := xmlPassage{Offset: off, Infons: infonsToXML(p)}
	if text, ok := p.Text(); ok {
		x.Text = &text
	}
	for _, s := range p.Sentences() {
		xs, err := sentenceToXML(s)
		if err != nil {
			return xmlPassage{}, err
		}
		x.Sentences = append(x.Sentences, xs)
	}
	x.Annotations, x.Relations, err = scopeToXML(p)
	return x, err
}

func documentToXML(d *bioc.Document) (xmlDocument, error) {
	id, err := d.ID()
	if err != nil {
		return xmlDocument{}, err
	}
	x := xmlDocument{ID: id, Infons: infonsToXML(d)}
	for _, p := range d.Passages() {
		xp, err := passageToXML(p)
		if err != nil {
			return xmlDocument{}, err
		}
		x.Passages = append(x.Passages, xp)
	}
	x.Relations, err = relationsToXML(d.Relations())
	return x, err
}

func parseInt(field, s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, &errors.ParseError{Format: formatName, Message: "invalid " + field + " " + strconv.Quote(s), Err: err}
	}
	return n, nil
}
