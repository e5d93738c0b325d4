package bioc

import (
	"slices"
	"testing"
)

func annotationIDs(it *AnnotationIterator) []string {
	var ids []string
	for a := range it.All() {
		id, _ := a.ID()
		ids = append(ids, id)
	}
	return ids
}

func TestAnnotationsFromEachRoot(t *testing.T) {
	doc := newSampleDocument(t)
	c := NewCollection("src", "date", "key")
	c.AddDocument(doc)

	tests := []struct {
		name string
		root Record
		want []string
	}{
		{"collection", c, []string{"T1", "T2", "T3"}},
		{"document", doc, []string{"T1", "T2", "T3"}},
		{"passage", doc.Passages()[0], []string{"T1", "T2"}},
		{"sentence", doc.Passages()[1].Sentences()[0], []string{"T3"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := annotationIDs(Annotations(tt.root))
			if !slices.Equal(got, tt.want) {
				t.Errorf("Annotations = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAnnotationContext(t *testing.T) {
	doc := newSampleDocument(t)
	it := Annotations(doc)

	if !it.Next() {
		t.Fatal("expected first annotation")
	}
	if it.Document() != doc || it.Passage() != doc.Passages()[0] || it.Sentence() != nil {
		t.Error("passage-level annotation has wrong context")
	}

	it.Next()
	if !it.Next() {
		t.Fatal("expected third annotation")
	}
	if it.Passage() != doc.Passages()[1] || it.Sentence() != doc.Passages()[1].Sentences()[0] {
		t.Error("sentence-level annotation has wrong context")
	}
	if it.Next() {
		t.Error("expected end of annotations")
	}
	if it.Annotation() != nil || it.Document() != nil {
		t.Error("exhausted iterator should clear its current item")
	}
}

func TestRelationsOrderAndContext(t *testing.T) {
	doc := newSampleDocument(t)
	it := Relations(doc)

	var got []string
	var docLevel int
	for it.Next() {
		id, _ := it.Relation().ID()
		got = append(got, id)
		if it.Passage() == nil {
			docLevel++
			if it.Document() != doc {
				t.Error("document relation has wrong document context")
			}
		}
	}
	if !slices.Equal(got, []string{"R2", "R1"}) {
		t.Errorf("Relations = %v, want [R2 R1]", got)
	}
	if docLevel != 1 {
		t.Errorf("document-level relations = %d, want 1", docLevel)
	}
}

func TestPassagesAndSentences(t *testing.T) {
	doc := newSampleDocument(t)
	c := NewCollection("src", "date", "key")
	c.AddDocument(doc)
	c.AddDocument(newSampleDocument(t))

	var passages int
	for it := Passages(c); it.Next(); {
		passages++
		if it.Document() == nil {
			t.Error("passage without document context")
		}
	}
	if passages != 4 {
		t.Errorf("passages = %d, want 4", passages)
	}

	sit := Sentences(c)
	var sentences int
	for sit.Next() {
		sentences++
		if off, _ := sit.Sentence().Offset(); off != 27 {
			t.Errorf("sentence offset = %d", off)
		}
		if sit.Passage() == nil || sit.Document() == nil {
			t.Error("sentence without context")
		}
	}
	if sentences != 2 {
		t.Errorf("sentences = %d, want 2", sentences)
	}
}

func TestDocumentsIterator(t *testing.T) {
	c := NewCollection("src", "date", "key")
	for _, id := range []string{"a", "b", "c"} {
		c.AddDocument(NewDocument(id))
	}

	var ids []string
	for d := range Documents(c).All() {
		id, _ := d.ID()
		ids = append(ids, id)
	}
	if !slices.Equal(ids, []string{"a", "b", "c"}) {
		t.Errorf("Documents = %v", ids)
	}

	if Documents(NewPassage(0)).Next() {
		t.Error("passage root should yield no documents")
	}
	one := Documents(c.Documents()[1])
	if !one.Next() || one.Next() {
		t.Error("document root should yield exactly itself")
	}
}

func TestIteratorNotRestartable(t *testing.T) {
	doc := newSampleDocument(t)
	it := Annotations(doc)
	first := annotationIDs(it)
	if len(first) != 3 {
		t.Fatalf("first pass = %v", first)
	}
	if again := annotationIDs(it); len(again) != 0 {
		t.Errorf("second pass over the same iterator = %v, want none", again)
	}
	if fresh := annotationIDs(Annotations(doc)); len(fresh) != 3 {
		t.Errorf("fresh iterator = %v", fresh)
	}
}

func TestAllStopsEarly(t *testing.T) {
	doc := newSampleDocument(t)
	it := Annotations(doc)
	for range it.All() {
		break
	}
	// Breaking out consumed exactly one annotation.
	if got := annotationIDs(it); !slices.Equal(got, []string{"T2", "T3"}) {
		t.Errorf("remaining = %v, want [T2 T3]", got)
	}
}
