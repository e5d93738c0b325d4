package biocxml

import (
	"encoding/xml"
	"fmt"
	"io"
	"io/fs"
	"strings"

	"github.com/FocuswithJustin/bioc/core/bioc"
	"github.com/FocuswithJustin/bioc/core/encoding"
	"github.com/FocuswithJustin/bioc/core/errors"
)

type writeState int

const (
	writerUnopened writeState = iota
	writerHeaderWritten
	writerClosed
)

// Writer serializes BioC records to an XML stream. A stream is opened by
// WriteCollectionInfo, followed by any number of WriteDocument calls, and
// terminated by Close. WriteCollection writes a whole collection at once.
type Writer struct {
	dst  io.Writer
	out  io.WriteCloser
	enc  *xml.Encoder
	opts options

	version    string
	standalone bool

	state     writeState
	whole     bool
	documents int
}

// NewWriter returns a Writer emitting to dst. If dst is an io.Closer,
// Close closes it.
func NewWriter(dst io.Writer, opts ...Option) *Writer {
	return &Writer{
		dst:        dst,
		opts:       buildOptions(opts),
		version:    "1.0",
		standalone: true,
	}
}

// SetEncoding sets the output encoding. It has no effect once the header
// has been written.
func (w *Writer) SetEncoding(name string) error {
	if w.state != writerUnopened {
		return nil
	}
	if _, err := encoding.Lookup(name); err != nil {
		return err
	}
	w.opts.encoding = name
	return nil
}

// SetVersion sets the XML version of the declaration. It has no effect once
// the header has been written.
func (w *Writer) SetVersion(version string) {
	if w.state == writerUnopened {
		w.version = version
	}
}

// SetStandalone sets the standalone flag of the declaration. It has no
// effect once the header has been written.
func (w *Writer) SetStandalone(standalone bool) {
	if w.state == writerUnopened {
		w.standalone = standalone
	}
}

// SetDTD sets the DOCTYPE declaration, e.g. as returned by Reader.DTD. It
// has no effect once the header has been written.
func (w *Writer) SetDTD(dtd string) {
	if w.state == writerUnopened {
		w.opts.dtd = dtd
	}
}

// WriteCollectionInfo opens the stream and writes the collection header:
// source, date, key and infons. Documents of c are not written.
func (w *Writer) WriteCollectionInfo(c *bioc.Collection) error {
	const op = "write collection info"
	switch w.state {
	case writerClosed:
		return errClosed(op)
	case writerHeaderWritten:
		return errors.NewProtocol(op, "collection header already written")
	}
	return w.writeHeader(c)
}

// WriteDocument writes one document after the collection header.
func (w *Writer) WriteDocument(d *bioc.Document) error {
	const op = "write document"
	switch {
	case w.state == writerClosed:
		return errClosed(op)
	case w.state == writerUnopened:
		return errors.NewProtocol(op, "collection header not written")
	case w.whole:
		return errors.NewProtocol(op, "collection already written whole")
	}
	return w.writeDocument(d)
}

// WriteCollection writes the header and every document of c. It may be
// called at most once, on a writer that has not been opened.
func (w *Writer) WriteCollection(c *bioc.Collection) error {
	const op = "write collection"
	switch {
	case w.state == writerClosed:
		return errClosed(op)
	case w.whole:
		return errors.NewProtocol(op, "collection already written")
	case w.state == writerHeaderWritten:
		return errors.NewProtocol(op, "collection header already written")
	}
	if err := w.writeHeader(c); err != nil {
		return err
	}
	w.whole = true
	for _, d := range c.Documents() {
		if err := w.writeDocument(d); err != nil {
			return err
		}
	}
	return nil
}

// Close ends the collection, flushes all output and closes dst if it is an
// io.Closer. Closing a writer whose header was never written still closes
// dst but reports a protocol violation.
func (w *Writer) Close() error {
	if w.state == writerClosed {
		return errClosed("close")
	}
	opened := w.state == writerHeaderWritten
	w.state = writerClosed

	var errs []error
	if opened {
		if err := w.enc.EncodeToken(xml.EndElement{Name: xml.Name{Local: elemCollection}}); err != nil {
			errs = append(errs, errors.NewIO("write", "", err))
		}
		if err := w.enc.EncodeToken(xml.CharData("\n")); err != nil {
			errs = append(errs, errors.NewIO("write", "", err))
		}
		if err := w.enc.Close(); err != nil {
			errs = append(errs, errors.NewIO("flush", "", err))
		}
		if err := w.out.Close(); err != nil {
			errs = append(errs, errors.NewIO("flush", "", err))
		}
		w.opts.logger.Debug("closed collection", "documents", w.documents)
	} else {
		errs = append(errs, errors.NewProtocol("close", "collection header not written"))
	}
	if c, ok := w.dst.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, errors.NewIO("close", "", err))
		}
	}
	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}

func (w *Writer) writeHeader(c *bioc.Collection) error {
	source, err := c.Source()
	if err != nil {
		return err
	}
	date, err := c.Date()
	if err != nil {
		return err
	}
	key, err := c.Key()
	if err != nil {
		return err
	}
	charset, err := encoding.Canonical(w.opts.encoding)
	if err != nil {
		return err
	}

	out, err := encoding.NewWriter(w.dst, w.opts.encoding)
	if err != nil {
		return err
	}
	w.out = out
	w.enc = xml.NewEncoder(out)
	w.enc.Indent(w.opts.prefix, w.opts.indent)
	w.state = writerHeaderWritten

	decl := fmt.Sprintf(`version="%s" encoding="%s"`, w.version, charset)
	if w.standalone {
		decl += ` standalone="yes"`
	}
	tokens := []xml.Token{
		xml.ProcInst{Target: "xml", Inst: []byte(decl)},
		xml.CharData("\n"),
	}
	if dtd := directive(w.opts.dtd); dtd != "" {
		tokens = append(tokens, xml.Directive(dtd), xml.CharData("\n"))
	}
	tokens = append(tokens, xml.StartElement{Name: xml.Name{Local: elemCollection}})
	for _, tok := range tokens {
		if err := w.enc.EncodeToken(tok); err != nil {
			return errors.NewIO("write", "", err)
		}
	}

	fields := []struct{ name, value string }{
		{elemSource, source},
		{elemDate, date},
		{elemKey, key},
	}
	for _, f := range fields {
		if err := w.enc.EncodeElement(f.value, startOf(f.name)); err != nil {
			return errors.NewIO("write", "", err)
		}
	}
	for _, in := range infonsToXML(c) {
		if err := w.enc.EncodeElement(in, startOf(elemInfon)); err != nil {
			return errors.NewIO("write", "", err)
		}
	}
	if err := w.enc.Flush(); err != nil {
		return errors.NewIO("flush", "", err)
	}
	w.opts.logger.Debug("wrote collection header", "source", source, "encoding", charset)
	return nil
}

func (w *Writer) writeDocument(d *bioc.Document) error {
	x, err := documentToXML(d)
	if err != nil {
		return err
	}
	if err := w.enc.EncodeElement(x, startOf(elemDocument)); err != nil {
		return errors.NewIO("write", "", err)
	}
	w.documents++
	w.opts.logger.Debug("wrote document", "id", x.ID)
	return nil
}

func startOf(name string) xml.StartElement {
	return xml.StartElement{Name: xml.Name{Local: name}}
}

// directive strips the markup delimiters from a DOCTYPE declaration.
func directive(dtd string) string {
	dtd = strings.TrimSpace(dtd)
	dtd = strings.TrimPrefix(dtd, "<!")
	dtd = strings.TrimSuffix(dtd, ">")
	return strings.TrimSpace(dtd)
}

func errClosed(op string) error {
	return &errors.ProtocolViolationError{Operation: op, Reason: "writer is closed", Err: fs.ErrClosed}
}
