package bioc

import (
	"encoding/binary"
	"encoding/hex"
	"io"

	"github.com/zeebo/blake3"
)

// digest feeds a canonical, length-prefixed encoding of records into a
// BLAKE3 hasher. Records that are Equal produce identical encodings.
type digest struct {
	h   *blake3.Hasher
	buf [binary.MaxVarintLen64]byte
}

func newDigest() *digest {
	return &digest{h: blake3.New()}
}

func (d *digest) int(v int) {
	n := binary.PutVarint(d.buf[:], int64(v))
	_, _ = d.h.Write(d.buf[:n])
}

func (d *digest) str(s string) {
	d.int(len(s))
	_, _ = io.WriteString(d.h, s)
}

func (d *digest) tag(t byte) {
	_, _ = d.h.Write([]byte{t})
}

func (d *digest) optStr(o opt[string]) {
	if !o.set {
		d.tag(0)
		return
	}
	d.tag(1)
	d.str(o.v)
}

func (d *digest) optInt(o opt[int]) {
	if !o.set {
		d.tag(0)
		return
	}
	d.tag(1)
	d.int(o.v)
}

func (d *digest) infons(in *infonSet) {
	keys := in.InfonKeys()
	d.int(len(keys))
	for _, k := range keys {
		d.str(k)
		d.str(in.m[k])
	}
}

func (d *digest) annotation(a *Annotation) {
	d.tag('a')
	d.optStr(a.id)
	d.infons(&a.infonSet)
	d.int(len(a.locations))
	for _, loc := range a.locations {
		d.int(loc.Offset)
		d.int(loc.Length)
	}
	d.optStr(a.text)
}

func (d *digest) relation(r *Relation) {
	d.tag('r')
	d.optStr(r.id)
	d.infons(&r.infonSet)
	d.int(len(r.nodes))
	for _, n := range r.nodes {
		d.str(n.RefID)
		d.str(n.Role)
	}
}

func (d *digest) scope(s *scope) {
	d.int(s.annotations.len())
	for _, a := range s.annotations.items {
		d.annotation(a)
	}
	d.int(s.relations.len())
	for _, r := range s.relations.items {
		d.relation(r)
	}
}

func (d *digest) sentence(s *Sentence) {
	d.tag('s')
	d.optInt(s.offset)
	d.optStr(s.text)
	d.infons(&s.infonSet)
	d.scope(&s.scope)
}

func (d *digest) passage(p *Passage) {
	d.tag('p')
	d.optInt(p.offset)
	d.optStr(p.text)
	d.infons(&p.infonSet)
	d.int(len(p.sentences))
	for _, s := range p.sentences {
		d.sentence(s)
	}
	d.scope(&p.scope)
}

func (d *digest) document(doc *Document) {
	d.tag('d')
	d.optStr(doc.id)
	d.infons(&doc.infonSet)
	d.int(len(doc.passages))
	for _, p := range doc.passages {
		d.passage(p)
	}
	d.scope(&doc.scope)
}

func (d *digest) collection(c *Collection) {
	d.tag('c')
	d.optStr(c.source)
	d.optStr(c.date)
	d.optStr(c.key)
	d.infons(&c.infonSet)
	d.int(len(c.documents))
	for _, doc := range c.documents {
		d.document(doc)
	}
}

func (d *digest) hex() string {
	return hex.EncodeToString(d.h.Sum(nil))
}

// Hash returns the BLAKE3 hash of the collection as a hex string.
func (c *Collection) Hash() string {
	d := newDigest()
	d.collection(c)
	return d.hex()
}

// Hash returns the BLAKE3 hash of the document as a hex string.
func (doc *Document) Hash() string {
	d := newDigest()
	d.document(doc)
	return d.hex()
}

// Hash returns the BLAKE3 hash of the passage as a hex string.
func (p *Passage) Hash() string {
	d := newDigest()
	d.passage(p)
	return d.hex()
}

// Hash returns the BLAKE3 hash of the sentence as a hex string.
func (s *Sentence) Hash() string {
	d := newDigest()
	d.sentence(s)
	return d.hex()
}

// Hash returns the BLAKE3 hash of the annotation as a hex string.
func (a *Annotation) Hash() string {
	d := newDigest()
	d.annotation(a)
	return d.hex()
}

// Hash returns the BLAKE3 hash of the relation as a hex string.
func (r *Relation) Hash() string {
	d := newDigest()
	d.relation(r)
	return d.hex()
}
