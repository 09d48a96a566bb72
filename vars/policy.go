package vars

import (
	"context"
	"errors"
	"iter"
	"log/slog"
)

// Level selects how a reference to an undefined variable is handled.
type Level int

const (
	// LevelError aborts processing with an [*UndefinedError].
	LevelError Level = iota
	// LevelWarn records a [Warning] and leaves the reference unchanged.
	LevelWarn
	// LevelSilent leaves the reference unchanged without a diagnostic.
	LevelSilent
)

// DefaultLevel is used when no level is configured.
const DefaultLevel = LevelError

var levelName = map[Level]string{
	LevelError:  "error",
	LevelWarn:   "warn",
	LevelSilent: "silent",
}

// String returns the configuration name of the level.
func (l Level) String() string {
	if s, ok := levelName[l]; ok {
		return s
	}

	return "unknown"
}

// Levels returns the accepted level names in order of severity.
func Levels() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, l := range []Level{LevelError, LevelWarn, LevelSilent} {
			if !yield(l.String()) {
				return
			}
		}
	}
}

// ParseLevel returns the level named s. The empty string selects
// [DefaultLevel]. Names are case-sensitive.
func ParseLevel(s string) (Level, error) {
	if s == "" {
		return DefaultLevel, nil
	}

	for l, name := range levelName {
		if name == s {
			return l, nil
		}
	}

	return DefaultLevel, ErrInvalidLogLevel.Wrap(errors.New(s))
}

// MarshalText implements encoding.TextMarshaler.
func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Level) UnmarshalText(text []byte) error {
	level, err := ParseLevel(string(text))
	if err != nil {
		return err
	}

	*l = level

	return nil
}

// policy handles one undefined reference. A non-nil error aborts the walk.
type policy func(ctx context.Context, w *walker, u *UndefinedError) error

var policies = map[Level]policy{
	LevelError:  fail,
	LevelWarn:   warn,
	LevelSilent: silent,
}

func fail(_ context.Context, _ *walker, u *UndefinedError) error {
	return u
}

func warn(ctx context.Context, w *walker, u *UndefinedError) error {
	warning := Warning{
		Name:        u.Name,
		Message:     u.Message(),
		Node:        u.Node,
		Source:      u.Source,
		Suggestions: u.Suggestions,
	}

	w.result.Warnings = append(w.result.Warnings, warning)

	w.logger.DebugContext(ctx, warning.Message, warning.attrs()...)

	return nil
}

func silent(ctx context.Context, w *walker, u *UndefinedError) error {
	w.logger.TraceContext(ctx, "undefined variable ignored",
		slog.String("name", u.Name))

	return nil
}
