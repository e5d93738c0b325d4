package biocxml

import (
	"io"
	"log/slog"

	"github.com/FocuswithJustin/bioc/core/bioc"
	"github.com/FocuswithJustin/bioc/core/encoding"
)

const formatName = "BioC XML"

// Level selects the granularity at which a Reader yields records.
type Level int

const (
	LevelCollection Level = iota
	LevelDocument
	LevelPassage
	LevelSentence
)

func (l Level) String() string {
	switch l {
	case LevelCollection:
		return "collection"
	case LevelDocument:
		return "document"
	case LevelPassage:
		return "passage"
	case LevelSentence:
		return "sentence"
	default:
		return "unknown"
	}
}

// ParseLevel converts a level name as printed by Level.String.
func ParseLevel(s string) (Level, bool) {
	for l := LevelCollection; l <= LevelSentence; l++ {
		if l.String() == s {
			return l, true
		}
	}
	return LevelCollection, false
}

type options struct {
	policy        bioc.IDPolicy
	logger        *slog.Logger
	charsetReader func(label string, input io.Reader) (io.Reader, error)
	prefix        string
	indent        string
	encoding      string
	dtd           string
}

func defaultOptions() options {
	return options{
		policy:        bioc.StrictIDs,
		logger:        slog.Default(),
		charsetReader: encoding.CharsetReader,
		encoding:      encoding.UTF8,
	}
}

// Option configures a Reader or a Writer. Options that do not apply to the
// component they are passed to are ignored.
type Option func(*options)

// WithIDPolicy sets the id policy of every scope the reader builds.
func WithIDPolicy(p bioc.IDPolicy) Option {
	return func(o *options) { o.policy = p }
}

// WithLogger sets the logger used for debug tracing.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithCharsetReader overrides how the reader converts non-UTF-8 input.
func WithCharsetReader(fn func(label string, input io.Reader) (io.Reader, error)) Option {
	return func(o *options) { o.charsetReader = fn }
}

// WithIndent makes the writer indent elements, as xml.Encoder.Indent.
func WithIndent(prefix, indent string) Option {
	return func(o *options) { o.prefix, o.indent = prefix, indent }
}

// WithEncoding sets the output encoding of the writer.
func WithEncoding(name string) Option {
	return func(o *options) { o.encoding = name }
}

// WithDTD sets the DOCTYPE declaration the writer emits, e.g.
// `<!DOCTYPE collection SYSTEM "BioC.dtd">`.
func WithDTD(dtd string) Option {
	return func(o *options) { o.dtd = dtd }
}

func buildOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
