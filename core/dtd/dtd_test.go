package dtd

import (
	"errors"
	"os"
	"slices"
	"strings"
	"testing"
)

func loadBioC(t *testing.T) *Schema {
	t.Helper()
	s, err := ParseFile("testdata/BioC.dtd")
	if err != nil {
		t.Fatalf("ParseFile() error = %v", err)
	}
	return s
}

func TestParseFileBioC(t *testing.T) {
	s := loadBioC(t)

	want := []string{
		"annotation", "collection", "date", "document", "id", "infon", "key",
		"location", "node", "offset", "passage", "relation", "sentence", "source", "text",
	}
	if got := s.ElementNames(); !slices.Equal(got, want) {
		t.Errorf("ElementNames() = %v, want %v", got, want)
	}

	tests := []struct {
		name     string
		kind     ContentKind
		model    string
		children []string
		required []string
	}{
		{"collection", ContentChildren, "(source, date, key, infon*, document*)",
			[]string{"source", "date", "key", "infon", "document"}, []string{"source", "date", "key"}},
		{"passage", ContentChildren, "(offset, text?, infon*, sentence*, annotation*, relation*)",
			[]string{"offset", "text", "infon", "sentence", "annotation", "relation"}, []string{"offset"}},
		{"annotation", ContentChildren, "(infon*, location*, text?)",
			[]string{"infon", "location", "text"}, nil},
		{"infon", ContentMixed, "(#PCDATA)", nil, nil},
		{"location", ContentEmpty, "EMPTY", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			el, ok := s.Element(tt.name)
			if !ok {
				t.Fatalf("Element(%q) not found", tt.name)
			}
			if el.Kind != tt.kind {
				t.Errorf("Kind = %v, want %v", el.Kind, tt.kind)
			}
			if el.Model != tt.model {
				t.Errorf("Model = %q, want %q", el.Model, tt.model)
			}
			if !slices.Equal(el.Children, tt.children) {
				t.Errorf("Children = %v, want %v", el.Children, tt.children)
			}
			if !slices.Equal(el.Required, tt.required) {
				t.Errorf("Required = %v, want %v", el.Required, tt.required)
			}
		})
	}
}

func TestParseAttributes(t *testing.T) {
	s := loadBioC(t)

	loc, _ := s.Element("location")
	if a := loc.Attributes["offset"]; a == nil || !a.Required || a.Type != "CDATA" {
		t.Errorf("location offset = %+v, want required CDATA", a)
	}

	node, _ := s.Element("node")
	role := node.Attributes["role"]
	if role == nil || role.Required || role.Default != "" {
		t.Errorf("node role = %+v, want optional with empty default", role)
	}

	ann, _ := s.Element("annotation")
	if a := ann.Attributes["id"]; a == nil || a.Required {
		t.Errorf("annotation id = %+v, want implied", a)
	}
}

func TestParseEnumAndFixed(t *testing.T) {
	s, err := ParseString(`
<!ELEMENT doc (part | note)*>
<!ELEMENT part (#PCDATA | note)*>
<!ELEMENT note EMPTY>
<!ATTLIST doc
    version CDATA #FIXED "2"
    kind (full|abstract) "full">
<!ATTLIST doc kind CDATA #IMPLIED>
<!ENTITY % text "(#PCDATA)">
<!ENTITY logo SYSTEM "logo.png">
`)
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}

	doc, _ := s.Element("doc")
	if len(doc.Required) != 0 {
		t.Errorf("Required = %v, want none for a repeated choice", doc.Required)
	}
	if doc.Model != "(part | note)*" {
		t.Errorf("Model = %q", doc.Model)
	}

	v := doc.Attributes["version"]
	if !v.Fixed || v.Default != "2" {
		t.Errorf("version = %+v, want fixed 2", v)
	}
	k := doc.Attributes["kind"]
	if k.Type != "enum" || !slices.Equal(k.Enum, []string{"full", "abstract"}) || k.Default != "full" {
		t.Errorf("kind = %+v, first declaration should bind", k)
	}

	part, _ := s.Element("part")
	if part.Kind != ContentMixed || !slices.Equal(part.Children, []string{"note"}) {
		t.Errorf("part = %+v, want mixed with note", part)
	}

	if s.Entities["text"] != "(#PCDATA)" || s.Entities["logo"] != "logo.png" {
		t.Errorf("Entities = %v", s.Entities)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{"duplicate element", `<!ELEMENT a EMPTY><!ELEMENT a ANY>`, `element "a" declared twice`},
		{"undeclared attlist", `<!ATTLIST b id CDATA #IMPLIED>`, `undeclared element "b"`},
		{"unterminated", `<!ELEMENT a (b, c`, "invalid DTD"},
		{"bad token", `<!ELEMENT a $>`, "invalid DTD"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseString(tt.input)
			if err == nil {
				t.Fatal("ParseString() expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestParseFileMissing(t *testing.T) {
	_, err := ParseFile("testdata/missing.dtd")
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("ParseFile() error = %v, want os.ErrNotExist", err)
	}
	if !strings.HasPrefix(err.Error(), "open DTD: ") {
		t.Errorf("ParseFile() error = %q, want open DTD context", err)
	}
}

func TestContentKindString(t *testing.T) {
	if ContentEmpty.String() != "EMPTY" || ContentChildren.String() != "children" {
		t.Error("unexpected ContentKind names")
	}
}
