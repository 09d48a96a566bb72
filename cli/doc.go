// Package cli contains the command line interface for nestvars.
//
// # Usage
//
//	nestvars [flags] [resolve] [SOURCE...]
//	nestvars ast [--format json|yaml] [--resolved] [SOURCE]
//	nestvars init [--force]
//	nestvars version
//
// The resolve command is the default: each source (or stdin) is parsed,
// its variables are substituted and the result is written to stdout or
// --output. Undefined variables fail by default; --on-undefined=warn prints
// an annotated snippet for each one and keeps going.
//
// # Configuration
//
// Flag defaults are read from the YAML file config.yaml in the user
// configuration directory (see [pkg.ConfigPath]). Keys are flag names, with
// hyphens or underscores:
//
//	log-level: debug
//	on-undefined: warn
//	global:
//	  brand: "#336699"
//
// Command-line flags override config file values. The init command writes
// the current flag values to that file.
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (text, json)
//   - --log-time-layout: Set timestamp format (RFC3339, RFC3339Nano, etc.)
//   - --log-caller: Include caller information in log output
//   - --[no-]log-pretty: Colorize log output
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof -o nestvars .
//
//   - --pprof-mode: Enable profiling (allocs, block, clock, cpu, goroutine,
//     heap, mem, mutex, thread, trace)
//   - --pprof-dir: Set profile output directory (default:
//     ~/.cache/nestvars/pprof)
//
// # Examples
//
//	# Resolve a file with a global and warnings instead of errors
//	nestvars -g brand=#336699 --on-undefined=warn main.css
//
//	# Dump the resolved tree as JSON
//	nestvars ast --format json --resolved main.css
//
//	# Debug logging with CPU profiling
//	nestvars --log-level=debug --pprof-mode=cpu main.css
package cli
