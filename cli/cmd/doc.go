// Package cmd implements the nestvars subcommands.
//
//   - [Resolve] substitutes variables and prints the resolved style sheet.
//   - [AST] prints the parsed tree as JSON or YAML.
//   - [Init] writes the current flag values to the configuration file.
//   - [Version] prints the program version.
//
// Commands read the [kong.Context] and standard streams from the
// [context.Context] passed to Run; see [WithContext] and [WithStreams].
package cmd
