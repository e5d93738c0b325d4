package main

import (
	"fmt"

	"github.com/FocuswithJustin/bioc/core/biocxml"
	"github.com/FocuswithJustin/bioc/core/errors"
	"github.com/FocuswithJustin/bioc/internal/logging"
	"github.com/FocuswithJustin/bioc/internal/validation"
)

// ConvertCmd streams a BioC file into a new one. Compression of both sides
// follows the file extension.
type ConvertCmd struct {
	In           string `arg:"" help:"Input BioC file (.xml, .xml.gz, .xml.xz)" type:"existingfile"`
	Out          string `arg:"" help:"Output BioC file"`
	Encoding     string `name:"encoding" help:"Output character encoding"`
	Indent       string `name:"indent" help:"Indentation string for pretty output"`
	Doctype      string `name:"doctype" help:"DOCTYPE declaration to write instead of the input's"`
	NoStandalone bool   `name:"no-standalone" help:"Omit standalone=\"yes\" from the declaration"`
}

func (c *ConvertCmd) Run(env *Env) error {
	if err := validation.ValidatePath(c.Out); err != nil {
		return errors.Wrap(err, "invalid output path")
	}

	var documents int
	err := logging.FileOperation(env.Ctx, "convert", c.In, func() error {
		var err error
		documents, err = c.convert(env)
		return err
	})
	if err != nil {
		return err
	}
	logging.InfoContext(env.Ctx, "converted", "in", c.In, "out", c.Out, "documents", documents)
	fmt.Fprintf(env.Out, "Converted %s -> %s (%d documents)\n", c.In, c.Out, documents)
	return nil
}

func (c *ConvertCmd) convert(env *Env) (int, error) {
	policy, err := env.Config.IDPolicy()
	if err != nil {
		return 0, err
	}
	logger := logging.LoggerFromContext(env.Ctx)

	dr, err := biocxml.OpenDocuments(c.In, biocxml.WithIDPolicy(policy), biocxml.WithLogger(logger))
	if err != nil {
		return 0, err
	}
	defer dr.Close()

	wc := env.Config.Writer
	encoding := firstNonEmpty(c.Encoding, wc.Encoding)
	indent := firstNonEmpty(c.Indent, wc.Indent)
	doctype := firstNonEmpty(c.Doctype, wc.DOCTYPE, dr.DTD())

	w, err := biocxml.CreateFile(c.Out,
		biocxml.WithIndent("", indent),
		biocxml.WithDTD(doctype),
		biocxml.WithLogger(logger),
	)
	if err != nil {
		return 0, err
	}
	if err := w.SetEncoding(encoding); err != nil {
		w.Close()
		return 0, err
	}
	w.SetStandalone(wc.Standalone && !c.NoStandalone)
	w.SetVersion(firstNonEmpty(dr.Declaration().Version, "1.0"))

	if err := w.WriteCollectionInfo(dr.CollectionInfo()); err != nil {
		w.Close()
		return 0, err
	}

	n := 0
	for doc, err := range dr.Documents() {
		if err != nil {
			w.Close()
			return n, err
		}
		if err := w.WriteDocument(doc); err != nil {
			w.Close()
			return n, err
		}
		n++
	}
	return n, w.Close()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
