// Package encoding resolves XML character-set names and converts BioC
// streams between UTF-8 and other encodings.
package encoding

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/transform"
)

// UTF8 is the default document encoding.
const UTF8 = "UTF-8"

// IsUTF8 reports whether name denotes UTF-8. An empty name does too, since
// XML defaults to UTF-8 when no encoding is declared.
func IsUTF8(name string) bool {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return true
	}
	return false
}

// Lookup resolves an IANA character-set name. UTF-8 resolves to a nil
// Encoding, meaning no conversion is needed.
func Lookup(name string) (encoding.Encoding, error) {
	if IsUTF8(name) {
		return nil, nil
	}
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil {
		return nil, fmt.Errorf("unknown encoding %q: %w", name, err)
	}
	if enc == nil {
		return nil, fmt.Errorf("unsupported encoding %q", name)
	}
	return enc, nil
}

// Canonical returns the preferred IANA name for name, e.g. "ISO-8859-1"
// for "latin1".
func Canonical(name string) (string, error) {
	enc, err := Lookup(name)
	if err != nil {
		return "", err
	}
	if enc == nil {
		return UTF8, nil
	}
	// The MIME index holds the preferred names; IANA alone yields
	// registry names such as "ISO_8859-1:1987".
	if canonical, err := ianaindex.MIME.Name(enc); err == nil && canonical != "" {
		return canonical, nil
	}
	canonical, err := ianaindex.IANA.Name(enc)
	if err != nil {
		return "", fmt.Errorf("no IANA name for %q: %w", name, err)
	}
	return canonical, nil
}

// CharsetReader converts input in the named encoding to UTF-8. Its
// signature matches xml.Decoder.CharsetReader.
func CharsetReader(label string, input io.Reader) (io.Reader, error) {
	enc, err := Lookup(label)
	if err != nil {
		return nil, err
	}
	if enc == nil {
		return input, nil
	}
	return enc.NewDecoder().Reader(input), nil
}

// NewWriter returns a writer that encodes UTF-8 text written to it into the
// named encoding before passing it to w. Runes the encoding cannot represent
// are written as numeric character references. Close flushes the converter
// but does not close w.
func NewWriter(w io.Writer, name string) (io.WriteCloser, error) {
	enc, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	if enc == nil {
		return nopCloser{w}, nil
	}
	return transform.NewWriter(w, encoding.HTMLEscapeUnsupported(enc.NewEncoder())), nil
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }
