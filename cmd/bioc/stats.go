package main

import (
	"fmt"

	"github.com/FocuswithJustin/bioc/core/bioc"
	"github.com/FocuswithJustin/bioc/core/biocxml"
	"github.com/FocuswithJustin/bioc/internal/logging"
)

// StatsCmd counts the records of a BioC file, one document at a time.
type StatsCmd struct {
	File string `arg:"" help:"BioC file" type:"existingfile"`
}

type counts struct {
	documents, passages, sentences, annotations, relations int
}

func (c *counts) add(doc *bioc.Document) {
	c.documents++
	for it := bioc.Passages(doc); it.Next(); {
		c.passages++
	}
	for it := bioc.Sentences(doc); it.Next(); {
		c.sentences++
	}
	for it := bioc.Annotations(doc); it.Next(); {
		c.annotations++
	}
	for it := bioc.Relations(doc); it.Next(); {
		c.relations++
	}
}

func (c *StatsCmd) Run(env *Env) error {
	dr, err := biocxml.OpenDocuments(c.File, biocxml.WithIDPolicy(bioc.LenientIDs),
		biocxml.WithLogger(logging.LoggerFromContext(env.Ctx)))
	if err != nil {
		return err
	}
	defer dr.Close()

	var n counts
	for doc, err := range dr.Documents() {
		if err != nil {
			return err
		}
		n.add(doc)
	}

	info := dr.CollectionInfo()
	source, _ := info.Source()
	fmt.Fprintf(env.Out, "source       %s\n", source)
	fmt.Fprintf(env.Out, "documents    %d\n", n.documents)
	fmt.Fprintf(env.Out, "passages     %d\n", n.passages)
	fmt.Fprintf(env.Out, "sentences    %d\n", n.sentences)
	fmt.Fprintf(env.Out, "annotations  %d\n", n.annotations)
	fmt.Fprintf(env.Out, "relations    %d\n", n.relations)
	return nil
}

// HashCmd prints the BLAKE3 content hash of each document, or of the whole
// collection.
type HashCmd struct {
	File       string `arg:"" help:"BioC file" type:"existingfile"`
	Collection bool   `name:"collection" help:"Print one hash for the whole collection"`
}

func (c *HashCmd) Run(env *Env) error {
	if c.Collection {
		col, err := biocxml.ReadFile(c.File, biocxml.WithLogger(logging.LoggerFromContext(env.Ctx)))
		if err != nil {
			return err
		}
		fmt.Fprintf(env.Out, "%s  %s\n", col.Hash(), c.File)
		return nil
	}

	dr, err := biocxml.OpenDocuments(c.File, biocxml.WithLogger(logging.LoggerFromContext(env.Ctx)))
	if err != nil {
		return err
	}
	defer dr.Close()

	for doc, err := range dr.Documents() {
		if err != nil {
			return err
		}
		id, _ := doc.ID()
		fmt.Fprintf(env.Out, "%s  %s\n", doc.Hash(), id)
	}
	return nil
}
