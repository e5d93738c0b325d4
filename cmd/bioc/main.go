// Command bioc validates, converts and inspects BioC XML corpora.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"

	"github.com/FocuswithJustin/bioc/internal/config"
	"github.com/FocuswithJustin/bioc/internal/logging"
)

const version = "0.1.0"

// CLI defines the command-line interface for bioc.
var CLI struct {
	// Global flags
	Config    string `name:"config" short:"c" help:"YAML profile with defaults for validation and output" type:"existingfile"`
	LogLevel  string `name:"log-level" help:"Log level (debug, info, warn, error)"`
	LogFormat string `name:"log-format" help:"Log format (text, json)"`

	Validate ValidateCmd `cmd:"" help:"Check offsets, annotation text and references of BioC files"`
	Convert  ConvertCmd  `cmd:"" help:"Copy a BioC file document by document, re-encoding or recompressing it"`
	Query    QueryCmd    `cmd:"" help:"Evaluate an XPath expression against a BioC file"`
	Stats    StatsCmd    `cmd:"" help:"Count documents, passages, sentences, annotations and relations"`
	Hash     HashCmd     `cmd:"" help:"Print content hashes of documents"`
	DTD      DTDCmd      `cmd:"" name:"dtd" help:"Check files against a DTD"`
	Version  VersionCmd  `cmd:"" help:"Print version information"`
}

// Env is bound to every command's Run method.
type Env struct {
	Config *config.Config
	Ctx    context.Context
	Out    io.Writer
}

// newEnv loads the profile and configures logging from the global flags.
func newEnv(configPath, logLevel, logFormat string, out io.Writer) (*Env, error) {
	cfg := config.DefaultConfig()
	if configPath != "" {
		loaded, err := config.LoadFromFile(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if logFormat != "" {
		cfg.Log.Format = logFormat
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	format, err := logging.ParseFormat(cfg.Log.Format)
	if err != nil {
		return nil, err
	}
	logging.InitLogger(level, format)

	runID := logging.NewRunID()
	ctx := logging.WithRunID(context.Background(), runID)
	logging.DebugContext(ctx, "run_started", "config", configPath)

	return &Env{Config: cfg, Ctx: ctx, Out: out}, nil
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run(env *Env) error {
	fmt.Fprintf(env.Out, "bioc version %s\n", version)
	return nil
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("bioc"),
		kong.Description("BioC XML corpus tools"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)

	env, err := newEnv(CLI.Config, CLI.LogLevel, CLI.LogFormat, os.Stdout)
	ctx.FatalIfErrorf(err)

	if err := ctx.Run(env); err != nil {
		logging.ErrorContext(env.Ctx, "command_failed", "command", ctx.Command(), "error", err.Error())
		ctx.FatalIfErrorf(err)
	}
}
