package biocxml

import (
	"io"
	"iter"

	"github.com/FocuswithJustin/bioc/core/bioc"
	"github.com/FocuswithJustin/bioc/core/errors"
)

// DocumentReader reads a collection one document at a time. The collection
// header is available before the first document is read.
type DocumentReader struct {
	r *Reader
}

// NewDocumentReader reads the collection header from src and stops at the
// first document.
func NewDocumentReader(src io.Reader, opts ...Option) (*DocumentReader, error) {
	return newDocumentReader(NewReader(src, LevelDocument, opts...))
}

func newDocumentReader(r *Reader) (*DocumentReader, error) {
	if err := r.seekDocument(); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return &DocumentReader{r: r}, nil
}

// CollectionInfo returns the collection header: source, date, key and the
// infons preceding the first document.
func (dr *DocumentReader) CollectionInfo() *bioc.Collection {
	return dr.r.CollectionInfo()
}

// DTD returns the DOCTYPE declaration of the stream, verbatim.
func (dr *DocumentReader) DTD() string {
	return dr.r.DTD()
}

// Declaration returns the XML declaration of the stream.
func (dr *DocumentReader) Declaration() Declaration {
	return dr.r.Declaration()
}

// More reports whether another document follows.
func (dr *DocumentReader) More() bool {
	return dr.r.More()
}

// ReadDocument returns the next document, or io.EOF after the last one.
func (dr *DocumentReader) ReadDocument() (*bioc.Document, error) {
	rec, err := dr.r.Next()
	if err != nil {
		return nil, err
	}
	return rec.(*bioc.Document), nil
}

// Documents returns the remaining documents as a sequence. Iteration stops
// after the first error, which is yielded with a nil document.
func (dr *DocumentReader) Documents() iter.Seq2[*bioc.Document, error] {
	return func(yield func(*bioc.Document, error) bool) {
		for {
			d, err := dr.ReadDocument()
			if errors.Is(err, io.EOF) {
				return
			}
			if !yield(d, err) || err != nil {
				return
			}
		}
	}
}

// Close releases the source.
func (dr *DocumentReader) Close() error {
	return dr.r.Close()
}

// ReadCollection reads a whole collection from src.
func ReadCollection(src io.Reader, opts ...Option) (*bioc.Collection, error) {
	r := NewReader(src, LevelCollection, opts...)
	rec, err := r.Next()
	if err != nil {
		return nil, err
	}
	return rec.(*bioc.Collection), nil
}

// WriteCollection writes c as a complete BioC XML stream to dst. If dst is
// an io.Closer it is closed.
func WriteCollection(dst io.Writer, c *bioc.Collection, opts ...Option) error {
	w := NewWriter(dst, opts...)
	if err := w.WriteCollection(c); err != nil {
		return err
	}
	return w.Close()
}
