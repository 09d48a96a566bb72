package vars

import (
	"cmp"
	"log/slog"
	"slices"
	"strings"

	"github.com/sahilm/fuzzy"
	"github.com/texttheater/golang-levenshtein/levenshtein"

	"github.com/ardnew/nestvars/style"
)

// Predefined errors (sentinel values).
var (
	ErrInvalidLogLevel = style.NewError("Invalid logLevel")
	ErrUndefined       = style.NewError("Undefined variable")
	ErrReadOptions     = style.NewError("failed to read options")
)

// maxSuggestions bounds the names offered for an undefined variable.
const maxSuggestions = 3

// maxEditDistance bounds the edit distance of a suggested name. A
// substitution counts as two edits.
const maxEditDistance = 2

// UndefinedError reports a reference to a variable with no visible value.
// It matches [ErrUndefined] with errors.Is.
type UndefinedError struct {
	// Name is the referenced variable, without the "$" sigil.
	Name string
	// Node is the node whose text contains the reference.
	Node style.Node
	// Source names the document containing Node, if known.
	Source string
	// Suggestions lists visible names similar to Name, best match first.
	Suggestions []string
}

// Message returns "Undefined variable: <name>".
func (e *UndefinedError) Message() string {
	return "Undefined variable: " + e.Name
}

// Error implements the error interface, prefixing the message with the
// source location of the node.
func (e *UndefinedError) Error() string {
	return location(e.Source, e.Node) + e.Message()
}

// Unwrap returns [ErrUndefined].
func (e *UndefinedError) Unwrap() error { return ErrUndefined }

// Hint returns a "did you mean" phrase for the suggestions, or "".
func (e *UndefinedError) Hint() string {
	return hint(e.Suggestions)
}

// LogValue implements slog.LogValuer.
func (e *UndefinedError) LogValue() slog.Value {
	return slog.GroupValue(
		diagnosticAttrs(e.Message(), e.Name, e.Source, e.Node, e.Suggestions)...)
}

// Warning is a non-fatal diagnostic recorded when the resolver runs at
// [LevelWarn].
type Warning struct {
	Name        string
	Message     string
	Node        style.Node
	Source      string
	Suggestions []string
}

// String returns the message prefixed with the source location.
func (w Warning) String() string {
	return location(w.Source, w.Node) + w.Message
}

// Pos returns the position of the node that triggered the warning.
func (w Warning) Pos() style.Position {
	if w.Node == nil {
		return style.Position{}
	}

	return w.Node.Pos()
}

// Hint returns a "did you mean" phrase for the suggestions, or "".
func (w Warning) Hint() string {
	return hint(w.Suggestions)
}

func (w Warning) attrs() []slog.Attr {
	return diagnosticAttrs("", w.Name, w.Source, w.Node, w.Suggestions)
}

func diagnosticAttrs(
	msg, name, source string,
	node style.Node,
	suggestions []string,
) []slog.Attr {
	attrs := make([]slog.Attr, 0, 6)

	if msg != "" {
		attrs = append(attrs, slog.String("error", msg))
	}

	attrs = append(attrs, slog.String("name", name))

	if source != "" {
		attrs = append(attrs, slog.String("source", source))
	}

	if node != nil && node.Pos().IsValid() {
		attrs = append(attrs,
			slog.Int("line", node.Pos().Line),
			slog.Int("column", node.Pos().Column))
	}

	if len(suggestions) > 0 {
		attrs = append(attrs, slog.Any("suggestions", suggestions))
	}

	return attrs
}

func location(source string, node style.Node) string {
	var loc []string

	if source != "" {
		loc = append(loc, source)
	}

	if node != nil && node.Pos().IsValid() {
		loc = append(loc, node.Pos().String())
	}

	if len(loc) == 0 {
		return ""
	}

	return strings.Join(loc, ":") + ": "
}

func hint(suggestions []string) string {
	if len(suggestions) == 0 {
		return ""
	}

	return "did you mean $" + strings.Join(suggestions, ", $") + "?"
}

// suggest ranks the visible names by similarity to name. Fuzzy subsequence
// matches come first, followed by names within maxEditDistance edits.
func suggest(name string, visible []string) []string {
	out := make([]string, 0, maxSuggestions)

	for _, m := range fuzzy.Find(name, visible) {
		if len(out) == maxSuggestions {
			return out
		}

		out = append(out, m.Str)
	}

	type near struct {
		name string
		dist int
	}

	var nearby []near

	for _, v := range visible {
		if slices.Contains(out, v) {
			continue
		}

		d := levenshtein.DistanceForStrings([]rune(name), []rune(v),
			levenshtein.DefaultOptions)
		if d <= maxEditDistance {
			nearby = append(nearby, near{v, d})
		}
	}

	slices.SortStableFunc(nearby, func(a, b near) int {
		return cmp.Compare(a.dist, b.dist)
	})

	for _, c := range nearby {
		if len(out) == maxSuggestions {
			break
		}

		out = append(out, c.name)
	}

	return out
}
