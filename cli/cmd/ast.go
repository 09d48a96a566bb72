package cmd

import (
	"context"
	"log/slog"

	"github.com/ardnew/nestvars/log"
	"github.com/ardnew/nestvars/style"
	"github.com/ardnew/nestvars/vars"
)

// AST formats the parsed tree of a source as JSON or YAML.
type AST struct {
	Format   string            `default:"yaml"                                         enum:"json,yaml" help:"Output format (${enum})." short:"f"`
	Indent   int               `default:"2"                                            help:"Indent width for output."                  short:"i"`
	Resolved bool              `help:"Resolve variables before printing the tree."     short:"r"`
	Global   map[string]string `help:"Define a global variable used with --resolved."  mapsep:"none"                                    placeholder:"NAME=VALUE" short:"g"`

	Source string `arg:"" default:"-" help:"Source input file or '-' for default stdin." name:"source"`
}

// Run executes the ast command.
func (a *AST) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	streams := streamsFrom(ctx)

	srcs, err := readSources([]string{a.Source}, streams.In)
	if err != nil {
		return err
	}

	src := srcs[0]

	root, err := style.Parse(ctx, string(src.data),
		style.WithSourceName(src.name),
		style.WithLogger(log.Default()),
	)
	if err != nil {
		return ErrParseSource.
			With(slog.String("format", a.Format)).
			Wrap(err)
	}

	if a.Resolved {
		err = a.resolve(ctx, root)
		if err != nil {
			return err
		}
	}

	switch a.Format {
	case "json":
		err = root.FormatJSON(ctx, streams.Out, a.Indent)
		if err != nil {
			return ErrJSONMarshal.Wrap(err)
		}

	default:
		err = root.FormatYAML(ctx, streams.Out, a.Indent)
		if err != nil {
			return ErrYAMLMarshal.Wrap(err)
		}
	}

	return nil
}

// resolve applies the resolver to root, leaving undefined references in
// place.
func (a *AST) resolve(ctx context.Context, root *style.Root) error {
	resolver, err := vars.New(
		vars.WithLogger(log.Default()),
		vars.WithGlobals(a.Global),
		vars.WithLevel(vars.LevelSilent),
	)
	if err != nil {
		return ErrConfigurator.Wrap(err)
	}

	_, err = resolver.Process(ctx, root)
	if err != nil {
		return ErrResolve.Wrap(err)
	}

	return nil
}
