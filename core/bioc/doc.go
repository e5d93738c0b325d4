// Package bioc provides the record model for BioC, a hierarchical
// interchange format for annotated text.
//
// # Core Types
//
// Records nest as follows:
//
//   - Collection: a corpus with source, date and key metadata
//   - Document: one article, identified by id
//   - Passage: a section of a document at a document-relative offset
//   - Sentence: an optional subdivision of a passage
//
// Passages and sentences own Annotations (spans of text addressed by one or
// more Locations) and Relations (role-labelled Nodes that reference
// annotations or other relations by id). Documents own relations only.
// Every record carries infons, free-form key/value metadata.
//
// # Required Fields
//
// Ids, offsets and the collection header fields have an explicit unset
// state. Reading one before it is set returns a MissingFieldError; an offset
// of zero is always valid.
//
// # Ids
//
// Annotation and relation ids are unique within their scope. Adding a
// duplicate returns a DuplicateIDError unless the scope's IDPolicy is
// LenientIDs.
//
// # Validation
//
// Validator checks that passage and sentence text does not overlap, that
// annotation text matches the text at its locations, and that relation
// nodes resolve. It either collects every violation or stops at the first.
//
// # Example
//
//	p := bioc.NewPassage(0)
//	p.SetText("Raf-1 phosphorylates MEK1.")
//	a := bioc.NewAnnotation("T1")
//	a.AddLocation(bioc.Location{Offset: 0, Length: 5})
//	a.SetText("Raf-1")
//	if err := p.AddAnnotation(a); err != nil {
//	    return err
//	}
//
//	doc := bioc.NewDocument("1")
//	doc.AddPassage(p)
//	errs := bioc.ValidateDocument(doc)
package bioc
