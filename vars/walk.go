package vars

import (
	"context"
	"log/slog"
	"regexp"
	"slices"
	"strings"

	"github.com/ardnew/nestvars/style"
)

var (
	// bracketed matches "$(name)" in selectors, preludes and properties.
	bracketed = regexp.MustCompile(`\$\(([\w-]+)\)`)
	// bare matches "$name" in declaration values.
	bare = regexp.MustCompile(`\$([\w-]+)`)
	// declaration matches a property that declares a variable.
	declaration = regexp.MustCompile(`^\$([\w-]+)$`)
)

// walker holds the state of one [Resolver.Process] call.
type walker struct {
	*Resolver

	scope  *Scope
	result *Result
	source string
}

// walk resolves the children of c in document order, recursing into each
// nested container as soon as its own text is resolved. Declarations made
// in c go out of scope when walk returns.
func (w *walker) walk(ctx context.Context, c style.Container) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f := make(frame)

	// Declarations are removed while iterating.
	for _, n := range slices.Clone(c.Nodes()) {
		var err error

		switch n := n.(type) {
		case *style.Rule:
			if n.Selector, err = w.replace(ctx, n.Selector, bracketed, n); err != nil {
				return err
			}

			err = w.walk(ctx, n)

		case *style.AtRule:
			if n.Params, err = w.replace(ctx, n.Params, bracketed, n); err != nil {
				return err
			}

			if n.HasBody {
				err = w.walk(ctx, n)
			}

		case *style.Decl:
			err = w.decl(ctx, n, f)

		case *style.Comment:
			// Comments are never scanned.
		}

		if err != nil {
			return err
		}
	}

	w.scope.unwind(f)

	return nil
}

// decl declares the variable d defines, or resolves the references in it.
func (w *walker) decl(ctx context.Context, d *style.Decl, f frame) error {
	var err error

	if d.Prop, err = w.replace(ctx, d.Prop, bracketed, d); err != nil {
		return err
	}

	if m := declaration.FindStringSubmatch(d.Prop); m != nil {
		w.scope.declare(m[1], d.Value, f)

		w.logger.TraceContext(ctx, "declare",
			slog.String("name", m[1]),
			slog.String("value", d.Value),
			slog.Int("depth", w.scope.Depth(m[1])))

		if p := d.Parent(); p != nil && p.Remove(d) {
			w.result.Removed++
		}

		return nil
	}

	d.Value, err = w.replace(ctx, d.Value, bare, d)

	return err
}

// replace substitutes every match of pattern in text with the visible value
// of the captured name. Undefined names are passed to the policy, which
// either aborts or keeps the matched text unchanged. On error text is
// returned unmodified.
func (w *walker) replace(
	ctx context.Context,
	text string,
	pattern *regexp.Regexp,
	n style.Node,
) (string, error) {
	if !strings.Contains(text, "$") {
		return text, nil
	}

	matches := pattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return text, nil
	}

	var sb strings.Builder

	last := 0

	for _, m := range matches {
		match, name := text[m[0]:m[1]], text[m[2]:m[3]]

		value, ok := w.scope.Resolve(name)
		if ok {
			w.result.Substituted++

			w.logger.TraceContext(ctx, "substitute",
				slog.String("name", name),
				slog.String("value", value))
		} else {
			err := w.policy(ctx, w, &UndefinedError{
				Name:        name,
				Node:        n,
				Source:      w.source,
				Suggestions: suggest(name, w.scope.Visible()),
			})
			if err != nil {
				return text, err
			}

			value = match
		}

		sb.WriteString(text[last:m[0]])
		sb.WriteString(value)

		last = m[1]
	}

	sb.WriteString(text[last:])

	return sb.String(), nil
}
