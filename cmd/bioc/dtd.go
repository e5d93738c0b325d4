package main

import (
	"fmt"

	"github.com/FocuswithJustin/bioc/core/dtd"
	"github.com/FocuswithJustin/bioc/internal/logging"
)

// DTDCmd checks files against a DTD without running the span validator.
type DTDCmd struct {
	Schema   string   `arg:"" help:"DTD file" type:"existingfile"`
	Patterns []string `arg:"" optional:"" help:"Files or glob patterns to check"`
	List     bool     `name:"list" help:"Print the element declarations of the DTD"`
}

func (c *DTDCmd) Run(env *Env) error {
	schema, err := dtd.ParseFile(c.Schema)
	if err != nil {
		return err
	}

	if c.List {
		for _, name := range schema.ElementNames() {
			el, _ := schema.Element(name)
			fmt.Fprintf(env.Out, "%s %s\n", name, el.Model)
		}
	}
	if len(c.Patterns) == 0 {
		return nil
	}

	paths, err := expandPatterns(c.Patterns)
	if err != nil {
		return err
	}

	failed := 0
	for _, path := range paths {
		var vs []dtd.Violation
		err := logging.FileOperation(env.Ctx, "dtd", path, func() error {
			var err error
			vs, err = schema.ValidateFile(path)
			return err
		})
		if err != nil {
			failed++
			fmt.Fprintf(env.Out, "%s: %v\nFAIL %s\n", path, err, path)
			continue
		}
		for _, v := range vs {
			fmt.Fprintf(env.Out, "%s: %s\n", path, v)
		}
		if len(vs) > 0 {
			failed++
			fmt.Fprintf(env.Out, "FAIL %s (%d violations)\n", path, len(vs))
			continue
		}
		fmt.Fprintf(env.Out, "PASS %s\n", path)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files do not conform to %s", failed, len(paths), c.Schema)
	}
	return nil
}
