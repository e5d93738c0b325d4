package main

import (
	"fmt"
	"os"
	"slices"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/FocuswithJustin/bioc/core/bioc"
	"github.com/FocuswithJustin/bioc/core/biocxml"
	"github.com/FocuswithJustin/bioc/core/dtd"
	"github.com/FocuswithJustin/bioc/core/errors"
	"github.com/FocuswithJustin/bioc/internal/logging"
	"github.com/FocuswithJustin/bioc/internal/validation"
)

// ValidateCmd runs the span validator over every document of the matched
// files, optionally after a DTD check.
type ValidateCmd struct {
	Patterns   []string `arg:"" help:"Files or glob patterns (** matches directories)"`
	DTD        string   `name:"dtd" help:"DTD to check each file against first" type:"path"`
	FailFast   bool     `name:"fail-fast" help:"Stop each file at its first violation"`
	LenientIDs bool     `name:"lenient-ids" help:"Accept duplicate annotation and relation ids"`
}

type fileResult struct {
	documents  int
	violations int
}

func (c *ValidateCmd) Run(env *Env) error {
	mode, err := env.Config.ValidatorMode()
	if err != nil {
		return err
	}
	if c.FailFast {
		mode = bioc.FailFast
	}
	policy, err := env.Config.IDPolicy()
	if err != nil {
		return err
	}
	if c.LenientIDs {
		policy = bioc.LenientIDs
	}

	dtdPath := c.DTD
	if dtdPath == "" {
		dtdPath = env.Config.Validation.DTD
	}
	var schema *dtd.Schema
	if dtdPath != "" {
		if schema, err = dtd.ParseFile(dtdPath); err != nil {
			return errors.Wrap(err, "failed to load DTD")
		}
	}

	paths, err := expandPatterns(c.Patterns)
	if err != nil {
		return err
	}

	failed := 0
	for _, path := range paths {
		var res fileResult
		err := logging.FileOperation(env.Ctx, "validate", path, func() error {
			var err error
			res, err = c.checkFile(env, path, schema, mode, policy)
			return err
		})
		switch {
		case err != nil:
			failed++
			fmt.Fprintf(env.Out, "%s: %v\n", path, err)
			fmt.Fprintf(env.Out, "FAIL %s\n", path)
		case res.violations > 0:
			failed++
			logging.WarnContext(env.Ctx, "file_invalid", "path", path, "violations", res.violations, "documents", res.documents)
			fmt.Fprintf(env.Out, "FAIL %s (%d violations, %d documents)\n", path, res.violations, res.documents)
		default:
			fmt.Fprintf(env.Out, "PASS %s (%d documents)\n", path, res.documents)
		}
	}

	logging.InfoContext(env.Ctx, "validation_finished", "files", len(paths), "failed", failed)
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed validation", failed, len(paths))
	}
	return nil
}

func (c *ValidateCmd) checkFile(env *Env, path string, schema *dtd.Schema, mode bioc.Mode, policy bioc.IDPolicy) (fileResult, error) {
	var res fileResult
	if _, err := validation.CheckInput(path); err != nil {
		return res, err
	}

	if schema != nil {
		vs, err := schema.ValidateFile(path)
		if err != nil {
			return res, err
		}
		for _, v := range vs {
			fmt.Fprintf(env.Out, "%s: dtd: %s\n", path, v)
		}
		res.violations += len(vs)
		if len(vs) > 0 && mode == bioc.FailFast {
			return res, nil
		}
	}

	dr, err := biocxml.OpenDocuments(path,
		biocxml.WithIDPolicy(policy),
		biocxml.WithLogger(logging.LoggerFromContext(env.Ctx)),
	)
	if err != nil {
		return res, err
	}
	defer dr.Close()

	v := &bioc.Validator{
		Mode: mode,
		Report: func(err error) {
			res.violations++
			fmt.Fprintf(env.Out, "%s: %v\n", path, err)
		},
	}
	for doc, err := range dr.Documents() {
		if err != nil {
			return res, err
		}
		res.documents++
		if v.ValidateDocument(doc) != nil && mode == bioc.FailFast {
			break
		}
	}
	return res, nil
}

// expandPatterns resolves glob patterns to a sorted, de-duplicated file
// list. A pattern matching nothing is an error.
func expandPatterns(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	for _, pattern := range patterns {
		if err := validation.ValidatePath(pattern); err != nil {
			return nil, errors.Wrapf(err, "invalid pattern %q", pattern)
		}
		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, errors.Wrapf(err, "invalid pattern %q", pattern)
		}
		if len(matches) == 0 {
			return nil, errors.Wrapf(os.ErrNotExist, "no files match %q", pattern)
		}
		slices.Sort(matches)
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				out = append(out, m)
			}
		}
	}
	return out, nil
}
