package cli

import (
	"errors"
	"io"
	"log/slog"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"
	"github.com/spf13/cast"

	"github.com/ardnew/nestvars/log"
)

// load is a [kong.ConfigurationLoader] that parses YAML config files.
//
// It can be used with [kong.Configuration] like this:
//
//	kong.Configuration(load, "/path/to/config.yaml")
//
// The document is a flat mapping from flag names to values:
//   - Flag names may use hyphens (e.g., "log-level") or underscores
//     (e.g., "log_level")
//   - Numbers are converted to strings for Kong's mappers
//   - Sequences set repeatable flags
//   - Mappings set map flags such as "global"
//
// Example config file:
//
//	log-level: debug
//	on-undefined: warn
//	global:
//	  brand: "#336699"
//	  gap: 4
//
// Command-line flags override config file values. A file that cannot be
// parsed is ignored with a warning.
func load(r io.Reader) (kong.Resolver, error) {
	var doc map[string]any

	err := yaml.NewDecoder(r).Decode(&doc)
	if err != nil {
		if !errors.Is(err, io.EOF) {
			log.Warn("ignoring configuration file", slog.Any("error", err))
		}

		return config{}, nil
	}

	cfg := make(config, len(doc))
	for key, val := range doc {
		cfg[key] = kongValue(val)
	}

	return cfg, nil
}

// config implements [kong.Resolver] for YAML configs.
type config map[string]any

// Validate implements [kong.Resolver].
func (r config) Validate(*kong.Application) error {
	// No validation needed - the config was already parsed successfully
	return nil
}

// Resolve implements [kong.Resolver].
func (r config) Resolve(
	_ *kong.Context,
	_ *kong.Path,
	flag *kong.Flag,
) (any, error) {
	// Kong flags use hyphens (e.g., "log-level") but YAML keys
	// may use underscores. Try both forms.
	for _, name := range []string{
		flag.Name,
		strings.ReplaceAll(flag.Name, "-", "_"),
	} {
		if value, ok := r[name]; ok {
			return value, nil
		}
	}

	// Not found - return nil to let Kong use defaults
	return nil, nil
}

// kongValue converts a decoded YAML value to the form Kong's mappers accept.
// Kong requires numbers as strings for parsing.
func kongValue(v any) any {
	switch v := v.(type) {
	case int, int64, uint64, float64:
		return cast.ToString(v)
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = kongValue(e)
		}

		return out
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, e := range v {
			out[k] = kongValue(e)
		}

		return out
	default:
		return v
	}
}
