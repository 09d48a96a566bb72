package cmd

import (
	"context"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/dustin/go-humanize"

	"github.com/ardnew/nestvars/log"
	"github.com/ardnew/nestvars/style"
	"github.com/ardnew/nestvars/vars"
)

// Resolve substitutes the variables of each source and prints the result.
type Resolve struct {
	Output      string            `help:"Write output to file instead of stdout."             placeholder:"FILE"      short:"o" type:"path"`
	Global      map[string]string `help:"Define a global variable (repeatable)."              mapsep:"none"           placeholder:"NAME=VALUE" short:"g"`
	OnUndefined string            `default:""                                                 enum:",${levelEnum}"    help:"Undefined variable handling (${levelEnum})."`
	Options     string            `help:"Load globals and logLevel from a YAML options file." placeholder:"FILE"      type:"existingfile"`
	Color       bool              `default:"true"                                             help:"Colorize diagnostics." negatable:""`

	Sources []string `arg:"" default:"-" help:"Source input file(s) or '-' for stdin." name:"source" optional:""`
}

// LevelVars returns the kong variables used by undefined-variable flags.
func LevelVars() kong.Vars {
	return kong.Vars{
		"levelEnum": strings.Join(slices.Collect(vars.Levels()), ","),
	}
}

// Run executes the resolve command.
func (r *Resolve) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	streams := streamsFrom(ctx)

	resolver, err := r.resolver()
	if err != nil {
		return err
	}

	srcs, err := readSources(r.Sources, streams.In)
	if err != nil {
		return err
	}

	out, closeOut, err := openOutput(r.Output, streams.Out)
	if err != nil {
		return err
	}

	defer func() {
		if cerr := closeOut(); cerr != nil && err == nil {
			err = ErrWriteOutput.Wrap(cerr)
		}
	}()

	rep := newReporter(streams.Err, r.Color)

	for _, src := range srcs {
		root, err := process(ctx, resolver, src, rep)
		if err != nil {
			return err
		}

		err = root.Format(ctx, out)
		if err != nil {
			return ErrWriteOutput.
				With(slog.String("source", src.name)).
				Wrap(err)
		}
	}

	return nil
}

// resolver builds the resolver from the options file, then the global
// flags, then the undefined-variable level.
func (r *Resolve) resolver() (*vars.Resolver, error) {
	opts := []vars.Option{
		vars.WithLogger(log.Default()),
	}

	if r.Options != "" {
		o, err := loadOptions(r.Options)
		if err != nil {
			return nil, err
		}

		opts = append(opts, vars.WithOptions(o))
	}

	opts = append(opts, vars.WithGlobals(r.Global))

	if r.OnUndefined != "" {
		opts = append(opts, vars.WithLogLevel(r.OnUndefined))
	}

	resolver, err := vars.New(opts...)
	if err != nil {
		return nil, ErrConfigurator.Wrap(err)
	}

	return resolver, nil
}

func loadOptions(path string) (vars.Options, error) {
	file, err := os.Open(path)
	if err != nil {
		return vars.Options{}, ErrLoadOptions.
			With(slog.String("file", path)).
			Wrap(err)
	}
	defer file.Close()

	o, err := vars.LoadOptions(file)
	if err != nil {
		return vars.Options{}, ErrLoadOptions.
			With(slog.String("file", path)).
			Wrap(err)
	}

	return o, nil
}

// process parses and resolves one source, rendering its diagnostics with
// rep.
func process(
	ctx context.Context,
	resolver *vars.Resolver,
	src source,
	rep *reporter,
) (*style.Root, error) {
	root, err := style.Parse(ctx, string(src.data),
		style.WithSourceName(src.name),
		style.WithLogger(log.Default()),
	)
	if err != nil {
		if rerr := rep.failure(src, err); rerr != nil {
			return nil, rerr
		}

		return nil, ErrParseSource.
			With(slog.String("source", src.name)).
			Wrap(err)
	}

	res, err := resolver.Process(ctx, root)
	if err != nil {
		if rerr := rep.failure(src, err); rerr != nil {
			return nil, rerr
		}

		return nil, ErrResolve.
			With(slog.String("source", src.name)).
			Wrap(err)
	}

	err = rep.warnings(src, res.Warnings)
	if err != nil {
		return nil, err
	}

	log.DebugContext(ctx, "resolved source",
		slog.String("source", src.name),
		slog.String("size", humanize.Bytes(uint64(len(src.data)))),
		slog.Int("removed", res.Removed),
		slog.Int("substituted", res.Substituted),
		slog.Int("warnings", len(res.Warnings)),
	)

	return root, nil
}
