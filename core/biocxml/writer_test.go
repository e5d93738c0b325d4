package biocxml

import (
	"bytes"
	"errors"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"

	"github.com/FocuswithJustin/bioc/core/bioc"
	bocerrors "github.com/FocuswithJustin/bioc/core/errors"
)

func smallCollection(t *testing.T) *bioc.Collection {
	t.Helper()
	c := bioc.NewCollection("src", "2024", "k")
	d := bioc.NewDocument("d1")
	p := bioc.NewPassage(0)
	p.SetText("Hi")
	a := bioc.NewAnnotation("A1")
	a.SetInfon("type", "x")
	a.AddLocation(bioc.Location{Offset: 0, Length: 2})
	a.SetText("Hi")
	if err := p.AddAnnotation(a); err != nil {
		t.Fatal(err)
	}
	d.AddPassage(p)
	c.AddDocument(d)
	return c
}

func TestWriterOutput(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCollection(&buf, smallCollection(t)); err != nil {
		t.Fatal(err)
	}

	want := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n" +
		`<collection><source>src</source><date>2024</date><key>k</key>` +
		`<document><id>d1</id><passage><offset>0</offset><text>Hi</text>` +
		`<annotation id="A1"><infon key="type">x</infon><location offset="0" length="2"></location><text>Hi</text></annotation>` +
		`</passage></document></collection>` + "\n"
	if buf.String() != want {
		t.Errorf("output mismatch\ngot:  %s\nwant: %s", buf.String(), want)
	}
}

func TestRoundTrip(t *testing.T) {
	first, err := ReadCollection(strings.NewReader(sampleXML))
	if err != nil {
		t.Fatal(err)
	}

	var out1 bytes.Buffer
	if err := WriteCollection(&out1, first, WithDTD(sampleDTD), WithIndent("", "  ")); err != nil {
		t.Fatal(err)
	}

	r := NewReader(bytes.NewReader(out1.Bytes()), LevelCollection)
	rec, err := r.Next()
	if err != nil {
		t.Fatalf("re-reading written output: %v\n%s", err, out1.String())
	}
	second := rec.(*bioc.Collection)
	if !first.Equal(second) {
		t.Errorf("round trip changed the collection:\n%v\n%v", first, second)
	}
	if first.Hash() != second.Hash() {
		t.Error("round trip changed the collection hash")
	}
	if r.DTD() != sampleDTD {
		t.Errorf("DTD after round trip = %q", r.DTD())
	}

	var out2 bytes.Buffer
	if err := WriteCollection(&out2, second, WithDTD(r.DTD()), WithIndent("", "  ")); err != nil {
		t.Fatal(err)
	}
	if out1.String() != out2.String() {
		t.Error("writing is not idempotent across a round trip")
	}
}

func TestRoundTripPreservesText(t *testing.T) {
	tests := []struct {
		name string
		text *string
	}{
		{"unset", nil},
		{"empty", ptr("")},
		{"whitespace", ptr("  leading and trailing  ")},
		{"newlines", ptr("line one\nline two\r\nline three")},
		{"markup", ptr(`a < b & "c" > 'd'`)},
		{"unicode", ptr("αβγ 日本語")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := bioc.NewCollection("s", "d", "k")
			d := bioc.NewDocument("1")
			p := bioc.NewPassage(0)
			if tt.text != nil {
				p.SetText(*tt.text)
			}
			d.AddPassage(p)
			c.AddDocument(d)

			var buf bytes.Buffer
			if err := WriteCollection(&buf, c); err != nil {
				t.Fatal(err)
			}
			got, err := ReadCollection(&buf)
			if err != nil {
				t.Fatal(err)
			}
			text, ok := got.Documents()[0].Passages()[0].Text()
			if tt.text == nil {
				if ok {
					t.Errorf("unset text read back as %q", text)
				}
				return
			}
			if !ok || text != *tt.text {
				t.Errorf("text = %q, %v; want %q", text, ok, *tt.text)
			}
		})
	}
}

func TestStreamingWrite(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	header := bioc.NewCollection("src", "date", "key")
	header.SetInfon("b", "2")
	header.SetInfon("a", "1")
	if err := w.WriteCollectionInfo(header); err != nil {
		t.Fatal(err)
	}
	for _, id := range []string{"1", "2", "3"} {
		if err := w.WriteDocument(bioc.NewDocument(id)); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	if !strings.Contains(out, `<infon key="a">1</infon><infon key="b">2</infon>`) {
		t.Errorf("infons should be written in key order: %s", out)
	}

	dr, err := NewDocumentReader(&buf)
	if err != nil {
		t.Fatal(err)
	}
	var n int
	for _, err := range dr.Documents() {
		if err != nil {
			t.Fatal(err)
		}
		n++
	}
	if n != 3 {
		t.Errorf("read %d documents, want 3", n)
	}
}

func TestWriterProtocol(t *testing.T) {
	header := bioc.NewCollection("s", "d", "k")
	doc := bioc.NewDocument("1")

	tests := []struct {
		name  string
		steps func(w *Writer) error
	}{
		{"document before header", func(w *Writer) error {
			return w.WriteDocument(doc)
		}},
		{"header twice", func(w *Writer) error {
			if err := w.WriteCollectionInfo(header); err != nil {
				return nil
			}
			return w.WriteCollectionInfo(header)
		}},
		{"collection twice", func(w *Writer) error {
			if err := w.WriteCollection(header); err != nil {
				return nil
			}
			return w.WriteCollection(header)
		}},
		{"collection after header", func(w *Writer) error {
			if err := w.WriteCollectionInfo(header); err != nil {
				return nil
			}
			return w.WriteCollection(header)
		}},
		{"document after whole collection", func(w *Writer) error {
			if err := w.WriteCollection(header); err != nil {
				return nil
			}
			return w.WriteDocument(doc)
		}},
		{"close without header", func(w *Writer) error {
			return w.Close()
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewWriter(&bytes.Buffer{})
			err := tt.steps(w)
			var pv *bocerrors.ProtocolViolationError
			if !errors.As(err, &pv) {
				t.Fatalf("expected ProtocolViolationError, got %v", err)
			}
			if !errors.Is(err, bocerrors.ErrProtocol) {
				t.Error("expected ErrProtocol match")
			}
		})
	}
}

func TestWriteAfterClose(t *testing.T) {
	sink := &closeSink{}
	w := NewWriter(sink)
	if err := w.WriteCollectionInfo(bioc.NewCollection("s", "d", "k")); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if !sink.closed {
		t.Error("Close() should close the sink")
	}

	ops := map[string]func() error{
		"document":        func() error { return w.WriteDocument(bioc.NewDocument("1")) },
		"collection info": func() error { return w.WriteCollectionInfo(bioc.NewCollection("s", "d", "k")) },
		"collection":      func() error { return w.WriteCollection(bioc.NewCollection("s", "d", "k")) },
		"close":           w.Close,
	}
	for name, op := range ops {
		err := op()
		if !errors.Is(err, fs.ErrClosed) {
			t.Errorf("%s after close: expected fs.ErrClosed, got %v", name, err)
		}
		if !errors.Is(err, bocerrors.ErrProtocol) {
			t.Errorf("%s after close: expected ErrProtocol, got %v", name, err)
		}
	}
}

func TestCloseWithoutHeaderClosesSink(t *testing.T) {
	sink := &closeSink{}
	w := NewWriter(sink)
	if err := w.Close(); !errors.Is(err, bocerrors.ErrProtocol) {
		t.Errorf("expected protocol violation, got %v", err)
	}
	if !sink.closed {
		t.Error("sink should be closed even without a header")
	}
	if sink.Len() != 0 {
		t.Errorf("nothing should be written, got %q", sink.String())
	}
}

func TestWriterMissingFields(t *testing.T) {
	w := NewWriter(&bytes.Buffer{})
	if err := w.WriteCollectionInfo(&bioc.Collection{}); !errors.Is(err, bocerrors.ErrMissingField) {
		t.Errorf("header without source: got %v", err)
	}

	if err := w.WriteCollectionInfo(bioc.NewCollection("s", "d", "k")); err != nil {
		t.Fatal(err)
	}
	if err := w.WriteDocument(&bioc.Document{}); !errors.Is(err, bocerrors.ErrMissingField) {
		t.Errorf("document without id: got %v", err)
	}

	d := bioc.NewDocument("1")
	d.AddPassage(&bioc.Passage{})
	var mf *bocerrors.MissingFieldError
	if err := w.WriteDocument(d); !errors.As(err, &mf) || mf.Field != "offset" {
		t.Errorf("passage without offset: got %v", err)
	}
}

func TestWriterSettings(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, WithIndent("", "  "))
	w.SetVersion("1.1")
	w.SetStandalone(false)
	w.SetDTD(sampleDTD)
	if err := w.SetEncoding("no-such-charset"); err == nil {
		t.Error("SetEncoding should reject unknown encodings")
	}
	if err := w.WriteCollectionInfo(bioc.NewCollection("s", "d", "k")); err != nil {
		t.Fatal(err)
	}

	// Ignored once the header is out.
	w.SetVersion("9.9")
	w.SetDTD("<!DOCTYPE other>")
	if err := w.SetEncoding("ISO-8859-1"); err != nil {
		t.Errorf("SetEncoding after header should be a no-op, got %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	for _, want := range []string{
		`<?xml version="1.1" encoding="UTF-8"?>` + "\n",
		sampleDTD + "\n",
		"<collection>\n  <source>s</source>",
		"</key>\n</collection>\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "9.9") || strings.Contains(out, "other") || strings.Contains(out, "standalone") {
		t.Errorf("settings changed after header leaked into output:\n%s", out)
	}
}

func TestWriterEncoding(t *testing.T) {
	c := bioc.NewCollection("café", "d", "k")
	c.SetInfon("greek", "α")

	var buf bytes.Buffer
	if err := WriteCollection(&buf, c, WithEncoding("latin1")); err != nil {
		t.Fatal(err)
	}
	raw := buf.Bytes()
	if !bytes.Contains(raw, []byte(`encoding="ISO-8859-1"`)) {
		t.Errorf("declaration should name the canonical charset: %s", raw)
	}
	if !bytes.Contains(raw, []byte{'c', 'a', 'f', 0xE9}) {
		t.Error("output should be ISO-8859-1 encoded")
	}

	got, err := ReadCollection(bytes.NewReader(raw))
	if err != nil {
		t.Fatal(err)
	}
	if src, _ := got.Source(); src != "café" {
		t.Errorf("Source() = %q, want café", src)
	}
	if v, _ := got.Infon("greek"); v != "α" {
		t.Errorf("unrepresentable rune should survive as a character reference, got %q", v)
	}
}

func TestWriterDeclaresPreferredCharsetName(t *testing.T) {
	tests := []struct {
		encoding string
		want     string
	}{
		{"latin1", "ISO-8859-1"},
		{"ISO_8859-1:1987", "ISO-8859-1"},
		{"Latin-9", "ISO-8859-15"},
		{"utf8", "UTF-8"},
	}
	for _, tt := range tests {
		t.Run(tt.encoding, func(t *testing.T) {
			var buf bytes.Buffer
			if err := WriteCollection(&buf, bioc.NewCollection("s", "d", "k"), WithEncoding(tt.encoding)); err != nil {
				t.Fatal(err)
			}
			decl, _, _ := strings.Cut(buf.String(), "\n")
			if want := `encoding="` + tt.want + `"`; !strings.Contains(decl, want) {
				t.Errorf("declaration = %s, want %s", decl, want)
			}
		})
	}
}

func TestFileRoundTrip(t *testing.T) {
	c, err := ReadCollection(strings.NewReader(sampleXML))
	if err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"corpus.xml", "corpus.xml.gz", "corpus.xml.xz"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", name)
			if err := WriteFile(path, c); err != nil {
				t.Fatal(err)
			}

			got, err := ReadFile(path)
			if err != nil {
				t.Fatal(err)
			}
			if !c.Equal(got) {
				t.Error("file round trip changed the collection")
			}

			dr, err := OpenDocuments(path)
			if err != nil {
				t.Fatal(err)
			}
			defer dr.Close()
			d, err := dr.ReadDocument()
			if err != nil {
				t.Fatal(err)
			}
			if id, _ := d.ID(); id != "1" {
				t.Errorf("first document id = %q", id)
			}
		})
	}
}

func TestReadFileParseErrorCarriesPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.xml")
	w, err := CreateFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.WriteCollectionInfo(bioc.NewCollection("s", "d", "k")); err != nil {
		t.Fatal(err)
	}
	// Abandon the stream without closing the collection element.
	w.enc.Flush()
	w.out.Close()
	w.dst.(interface{ Close() error }).Close()

	_, err = ReadFile(path)
	var pe *bocerrors.ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ParseError, got %v", err)
	}
	if pe.Path != path {
		t.Errorf("Path = %q, want %q", pe.Path, path)
	}
}

func ptr(s string) *string { return &s }

type closeSink struct {
	bytes.Buffer
	closed bool
}

func (c *closeSink) Close() error {
	c.closed = true
	return nil
}
