package biocxml

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"regexp"

	"github.com/FocuswithJustin/bioc/core/bioc"
	"github.com/FocuswithJustin/bioc/core/errors"
)

type readState int

const (
	stateAwaitingCollection readState = iota
	stateCollection
	stateDocument
	statePassage
	stateSentence
	stateDone
)

// Declaration holds the pseudo-attributes of an XML declaration.
type Declaration struct {
	Version    string
	Encoding   string
	Standalone bool
}

// Reader pulls BioC records from an XML stream, one record of its Level per
// call to Next. Records finer than the level are attached to their parents;
// records coarser than the level are not retained.
type Reader struct {
	src   io.Reader
	dec   *xml.Decoder
	level Level
	opts  options
	path  string

	state  readState
	err    error
	closed bool

	decl Declaration
	dtd  string

	coll     *bioc.Collection
	doc      *bioc.Document
	passage  *bioc.Passage
	sentence *bioc.Sentence
}

// NewReader returns a Reader yielding records at level from src. If src is
// an io.Closer, Close closes it.
func NewReader(src io.Reader, level Level, opts ...Option) *Reader {
	o := buildOptions(opts)
	dec := xml.NewDecoder(src)
	dec.CharsetReader = o.charsetReader
	return &Reader{src: src, dec: dec, level: level, opts: o}
}

// Level returns the granularity of the records Next yields.
func (r *Reader) Level() Level {
	return r.level
}

// DTD returns the DOCTYPE declaration preceding the collection, verbatim,
// or "" if there was none or it has not been read yet.
func (r *Reader) DTD() string {
	return r.dtd
}

// Declaration returns the XML declaration of the stream.
func (r *Reader) Declaration() Declaration {
	return r.decl
}

// CollectionInfo returns the collection header read so far, without
// documents, or nil if the collection element has not been reached.
func (r *Reader) CollectionInfo() *bioc.Collection {
	if r.coll == nil {
		return nil
	}
	return r.coll.Header()
}

// More reports whether Next may return another record. At LevelDocument
// the reader looks ahead after each document, so More is exact there.
func (r *Reader) More() bool {
	return !r.closed && r.err == nil && r.state != stateDone
}

// Next returns the next record at the reader's level. It returns io.EOF
// once the stream is exhausted or the reader is closed. Any other error is
// terminal and is returned again by every later call.
func (r *Reader) Next() (bioc.Record, error) {
	if r.closed {
		return nil, io.EOF
	}
	if r.err != nil {
		return nil, r.err
	}
	for {
		rec, err := r.step()
		if err != nil {
			r.err = err
			return nil, err
		}
		if rec == nil {
			continue
		}
		if r.level == LevelDocument {
			r.seekDocument()
		}
		return rec, nil
	}
}

// Close releases the source. Later calls to Next return io.EOF.
func (r *Reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	if c, ok := r.src.(io.Closer); ok {
		if err := c.Close(); err != nil {
			return errors.NewIO("close", r.path, err)
		}
	}
	return nil
}

// seekDocument advances to the next document start or the end of the
// collection. A failure is kept for the next call to Next.
func (r *Reader) seekDocument() error {
	for r.err == nil && r.state != stateDocument && r.state != stateDone {
		if _, err := r.step(); err != nil {
			r.err = err
		}
	}
	return r.err
}

// step consumes one token and returns the record it completed, if any.
func (r *Reader) step() (bioc.Record, error) {
	if r.state == stateDone {
		return nil, io.EOF
	}
	tok, err := r.dec.Token()
	if err == io.EOF {
		if r.state == stateAwaitingCollection {
			return nil, r.parseError("no collection element", nil)
		}
		return nil, r.parseError("unexpected end of input", io.ErrUnexpectedEOF)
	}
	if err != nil {
		return nil, r.parseError("", err)
	}

	switch t := tok.(type) {
	case xml.ProcInst:
		if r.state == stateAwaitingCollection && t.Target == "xml" {
			r.decl = parseDeclaration(string(t.Inst))
		}
	case xml.Directive:
		if r.state == stateAwaitingCollection && bytes.HasPrefix(t, []byte("DOCTYPE")) {
			r.dtd = "<!" + string(t) + ">"
		}
	case xml.StartElement:
		return nil, r.start(t)
	case xml.EndElement:
		return r.end(), nil
	}
	return nil, nil
}

func (r *Reader) start(t xml.StartElement) error {
	name := t.Name.Local
	switch r.state {
	case stateAwaitingCollection:
		if name != elemCollection {
			return r.parseError(fmt.Sprintf("expected <%s> root element, found <%s>", elemCollection, name), nil)
		}
		r.coll = &bioc.Collection{}
		r.state = stateCollection
		return nil

	case stateCollection:
		switch name {
		case elemSource, elemDate, elemKey:
			s, err := r.text(t)
			if err != nil {
				return err
			}
			switch name {
			case elemSource:
				r.coll.SetSource(s)
			case elemDate:
				r.coll.SetDate(s)
			default:
				r.coll.SetKey(s)
			}
			return nil
		case elemInfon:
			return r.infon(r.coll, t)
		case elemDocument:
			r.doc = &bioc.Document{}
			r.doc.SetIDPolicy(r.opts.policy)
			r.state = stateDocument
			return nil
		}

	case stateDocument:
		switch name {
		case elemID:
			s, err := r.text(t)
			if err != nil {
				return err
			}
			r.doc.SetID(s)
			return nil
		case elemInfon:
			return r.infon(r.doc, t)
		case elemPassage:
			r.passage = &bioc.Passage{}
			r.passage.SetIDPolicy(r.opts.policy)
			r.state = statePassage
			return nil
		case elemRelation:
			rel, err := r.relation(t)
			if err != nil {
				return err
			}
			return r.added(r.doc.AddRelation(rel))
		}

	case statePassage:
		switch name {
		case elemOffset:
			off, err := r.offset(t)
			if err != nil {
				return err
			}
			r.passage.SetOffset(off)
			return nil
		case elemText:
			s, err := r.text(t)
			if err != nil {
				return err
			}
			r.passage.SetText(s)
			return nil
		case elemInfon:
			return r.infon(r.passage, t)
		case elemSentence:
			r.sentence = &bioc.Sentence{}
			r.sentence.SetIDPolicy(r.opts.policy)
			r.state = stateSentence
			return nil
		case elemAnnotation:
			a, err := r.annotation(t)
			if err != nil {
				return err
			}
			return r.added(r.passage.AddAnnotation(a))
		case elemRelation:
			rel, err := r.relation(t)
			if err != nil {
				return err
			}
			return r.added(r.passage.AddRelation(rel))
		}

	case stateSentence:
		switch name {
		case elemOffset:
			off, err := r.offset(t)
			if err != nil {
				return err
			}
			r.sentence.SetOffset(off)
			return nil
		case elemText:
			s, err := r.text(t)
			if err != nil {
				return err
			}
			r.sentence.SetText(s)
			return nil
		case elemInfon:
			return r.infon(r.sentence, t)
		case elemAnnotation:
			a, err := r.annotation(t)
			if err != nil {
				return err
			}
			return r.added(r.sentence.AddAnnotation(a))
		case elemRelation:
			rel, err := r.relation(t)
			if err != nil {
				return err
			}
			return r.added(r.sentence.AddRelation(rel))
		}
	}

	// Unknown elements are skipped with their content.
	if err := r.dec.Skip(); err != nil {
		return r.parseError("", err)
	}
	return nil
}

// end closes the innermost open composite. Leaf elements are consumed
// whole by start, so every end tag seen here closes a composite.
func (r *Reader) end() bioc.Record {
	switch r.state {
	case stateSentence:
		s := r.sentence
		r.sentence = nil
		r.state = statePassage
		if r.level == LevelSentence {
			return s
		}
		r.passage.AddSentence(s)

	case statePassage:
		p := r.passage
		r.passage = nil
		r.state = stateDocument
		if r.level == LevelPassage {
			return p
		}
		if r.level < LevelPassage {
			r.doc.AddPassage(p)
		}

	case stateDocument:
		d := r.doc
		r.doc = nil
		r.state = stateCollection
		if id, err := d.ID(); err == nil {
			r.opts.logger.Debug("read document", "id", id, "passages", d.PassageCount())
		}
		if r.level == LevelDocument {
			return d
		}
		if r.level < LevelDocument {
			r.coll.AddDocument(d)
		}

	case stateCollection:
		r.state = stateDone
		if r.level == LevelCollection {
			return r.coll
		}
	}
	return nil
}

func (r *Reader) text(t xml.StartElement) (string, error) {
	var s string
	if err := r.dec.DecodeElement(&s, &t); err != nil {
		return "", r.parseError("", err)
	}
	return s, nil
}

func (r *Reader) offset(t xml.StartElement) (int, error) {
	s, err := r.text(t)
	if err != nil {
		return 0, err
	}
	off, err := parseInt("offset", s)
	if err != nil {
		return 0, r.located(err)
	}
	return off, nil
}

func (r *Reader) infon(rec infonHolder, t xml.StartElement) error {
	var x xmlInfon
	if err := r.dec.DecodeElement(&x, &t); err != nil {
		return r.parseError("", err)
	}
	return r.located(infonsFromXML(rec, []xmlInfon{x}))
}

func (r *Reader) annotation(t xml.StartElement) (*bioc.Annotation, error) {
	var x xmlAnnotation
	if err := r.dec.DecodeElement(&x, &t); err != nil {
		return nil, r.parseError("", err)
	}
	a, err := annotationFromXML(x)
	return a, r.located(err)
}

func (r *Reader) relation(t xml.StartElement) (*bioc.Relation, error) {
	var x xmlRelation
	if err := r.dec.DecodeElement(&x, &t); err != nil {
		return nil, r.parseError("", err)
	}
	rel, err := relationFromXML(x)
	return rel, r.located(err)
}

// added converts a rejected insertion, such as a duplicate id, into a
// ParseError that still matches the insertion error with errors.Is.
func (r *Reader) added(err error) error {
	if err == nil {
		return nil
	}
	return r.parseError("", err)
}

// located stamps a ParseError built without stream context with the
// current position.
func (r *Reader) located(err error) error {
	var pe *errors.ParseError
	if errors.As(err, &pe) {
		pe.Path = r.path
		if pe.Line == 0 {
			pe.Line, _ = r.dec.InputPos()
		}
	}
	return err
}

func (r *Reader) parseError(msg string, err error) error {
	line, _ := r.dec.InputPos()
	return &errors.ParseError{Format: formatName, Path: r.path, Line: line, Message: msg, Err: err}
}

var declAttr = regexp.MustCompile(`([A-Za-z]+)\s*=\s*(?:"([^"]*)"|'([^']*)')`)

func parseDeclaration(inst string) Declaration {
	var d Declaration
	for _, m := range declAttr.FindAllStringSubmatch(inst, -1) {
		v := m[2] + m[3]
		switch m[1] {
		case "version":
			d.Version = v
		case "encoding":
			d.Encoding = v
		case "standalone":
			d.Standalone = v == "yes"
		}
	}
	return d
}
