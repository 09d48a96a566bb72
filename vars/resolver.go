package vars

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"maps"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/nestvars/log"
	"github.com/ardnew/nestvars/style"
)

// Options is the declarative resolver configuration. It can be decoded from
// YAML with [LoadOptions]:
//
//	globals:
//	  brand: "#336699"
//	logLevel: warn
type Options struct {
	// Globals are visible in every container and never go out of scope.
	Globals map[string]string `yaml:"globals,omitempty"`
	// LogLevel is one of "error" (default), "warn" or "silent".
	LogLevel string `yaml:"logLevel,omitempty"`
}

// LoadOptions decodes YAML options from r. Unknown keys are rejected; an
// empty document yields zero Options.
func LoadOptions(r io.Reader) (Options, error) {
	var o Options

	err := yaml.NewDecoder(r, yaml.Strict()).Decode(&o)
	if err != nil && !errors.Is(err, io.EOF) {
		return Options{}, ErrReadOptions.Wrap(err)
	}

	return o, nil
}

// Option configures a [Resolver].
type Option func(*Resolver)

// WithOptions merges o into the configuration. Globals are added to those
// already configured; a non-empty LogLevel replaces the current one.
func WithOptions(o Options) Option {
	return func(r *Resolver) {
		WithGlobals(o.Globals)(r)

		if o.LogLevel != "" {
			WithLogLevel(o.LogLevel)(r)
		}
	}
}

// WithGlobals adds global variables.
func WithGlobals(globals map[string]string) Option {
	return func(r *Resolver) {
		if len(globals) == 0 {
			return
		}

		if r.globals == nil {
			r.globals = make(map[string]string, len(globals))
		}

		maps.Copy(r.globals, globals)
	}
}

// WithLogLevel selects the undefined-variable policy by name.
// An unrecognized name makes [New] fail.
func WithLogLevel(name string) Option {
	return func(r *Resolver) { r.levelName = name }
}

// WithLevel selects the undefined-variable policy.
func WithLevel(level Level) Option {
	return func(r *Resolver) { r.levelName = level.String() }
}

// WithSource sets the source name used in diagnostics. It takes precedence
// over the Source recorded on the processed root.
func WithSource(name string) Option {
	return func(r *Resolver) { r.source = name }
}

// WithLogger sets the logger used to trace resolution.
func WithLogger(logger log.Logger) Option {
	return func(r *Resolver) { r.logger = logger }
}

// Resolver substitutes variables in style sheet trees.
//
// A Resolver is immutable once made and may be shared by concurrent calls
// to [Resolver.Process]; every call builds its own [Scope].
type Resolver struct {
	globals   map[string]string
	levelName string
	level     Level
	policy    policy
	source    string
	logger    log.Logger
}

// New returns a resolver configured by opts. It fails with
// [ErrInvalidLogLevel] before any document is processed if the configured
// level name is not recognized.
func New(opts ...Option) (*Resolver, error) {
	r := new(Resolver)

	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}

	level, err := ParseLevel(r.levelName)
	if err != nil {
		return nil, err
	}

	r.level = level
	r.policy = policies[level]

	return r, nil
}

// Level returns the configured undefined-variable policy.
func (r *Resolver) Level() Level { return r.level }

// Globals returns a copy of the configured global variables.
func (r *Resolver) Globals() map[string]string { return maps.Clone(r.globals) }

// Result describes one processed document.
type Result struct {
	// Root is the processed document, modified in place.
	Root *style.Root
	// Warnings holds the undefined references seen at [LevelWarn], in
	// document order.
	Warnings []Warning
	// Removed counts the variable declarations removed from the tree.
	Removed int
	// Substituted counts the references replaced with a value.
	Substituted int
}

// Process resolves the variables of root in place.
//
// Variable declarations are removed from the tree and references are
// replaced with the visible value. At [LevelError] the first undefined
// reference aborts processing with an [*UndefinedError]; edits already made
// to the tree are kept. The context is checked on entry to every container.
func (r *Resolver) Process(ctx context.Context, root *style.Root) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	source := r.source
	if source == "" {
		source = root.Source
	}

	w := &walker{
		Resolver: r,
		scope:    NewScope(r.globals),
		result:   &Result{Root: root},
		source:   source,
	}

	r.logger.DebugContext(ctx, "resolve start",
		slog.String("source", source),
		slog.String("level", r.level.String()),
		slog.Int("globals", len(r.globals)))

	if err := w.walk(ctx, root); err != nil {
		return nil, err
	}

	r.logger.DebugContext(ctx, "resolve complete",
		slog.String("source", source),
		slog.Int("removed", w.result.Removed),
		slog.Int("substituted", w.result.Substituted),
		slog.Int("warnings", len(w.result.Warnings)))

	return w.result, nil
}
