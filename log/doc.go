// Package log provides a simplified structured logging interface based on
// [log/slog].
//
// A [Logger] is an immutable value: configuration is fixed when it is made
// with [Make] and derived loggers are created with [Logger.Wrap] and
// [Logger.With]. The zero Logger discards everything, so library packages
// can hold one unconditionally and let callers opt in with a real logger.
//
// # Basic Usage
//
//	logger := log.Make(os.Stderr)
//	logger.Info("resolved", slog.String("source", "main.css"))
//
// # Configuration
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelDebug),
//		log.WithFormat(log.FormatText),
//		log.WithTimeLayout("kitchen"),
//		log.WithCaller(true))
//
// # Levels
//
// Five levels are supported: [LevelTrace], [LevelDebug], [LevelInfo],
// [LevelWarn] and [LevelError]. The resolver emits per-node events at trace
// and phase boundaries at debug.
//
// # Pretty Output
//
// With [WithPretty] enabled (the default) records are rendered with
// [github.com/charmbracelet/lipgloss] styles. Colors are only emitted when
// the output writer is a terminal that supports them.
//
// # Default Logger
//
// Package-level functions such as [Info] and [WarnContext] log through a
// process-wide default logger that the CLI reconfigures with [Config].
package log
