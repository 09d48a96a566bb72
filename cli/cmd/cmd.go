package cmd

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"syscall"

	"github.com/alecthomas/kong"
)

// ConfigIdentifier is the kong variable holding the configuration file path.
const ConfigIdentifier = "config"

// CacheIdentifier is the kong variable holding the cache directory path.
const CacheIdentifier = "cache"

// ContextKey is used to store a [kong.Context] value in [context.Context].
type contextKey struct{}

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

// Streams are the standard streams used by commands.
type Streams struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

type streamsKey struct{}

// WithStreams returns a new context.Context whose commands read and write
// the given streams instead of the process standard streams. Nil fields keep
// their default.
func WithStreams(ctx context.Context, s Streams) context.Context {
	return context.WithValue(ctx, streamsKey{}, s)
}

func streamsFrom(ctx context.Context) Streams {
	s, _ := ctx.Value(streamsKey{}).(Streams)

	if s.In == nil {
		s.In = os.Stdin
	}

	if s.Out == nil {
		s.Out = os.Stdout
	}

	if s.Err == nil {
		s.Err = os.Stderr
	}

	return s
}

// stdinSource is the special source indicator for reading from stdin.
const stdinSource = "-"

// stdinName is the display name of stdin in diagnostics.
const stdinName = "<stdin>"

// source is one input document.
type source struct {
	name string
	data []byte
}

// fileKey uniquely identifies a file by its device and inode numbers.
// This handles deduplication across symlinks, absolute/relative paths, and
// special device files.
type fileKey struct {
	dev uint64
	ino uint64
}

// readSources reads every named source in order. "-" reads stdin.
//
// Sources naming the same file (through symlinks, relative paths or
// /dev/stdin) are read once, at their first position.
func readSources(names []string, stdin io.Reader) ([]source, error) {
	if len(names) == 0 {
		names = []string{stdinSource}
	}

	srcs := make([]source, 0, len(names))
	seen := make(map[fileKey]struct{})

	var stdinKey fileKey

	stdinKeyed := false
	if f, ok := stdin.(*os.File); ok {
		if info, err := f.Stat(); err == nil {
			stdinKey, stdinKeyed = makeFileKey(info)
		}
	}

	readStdin := func() error {
		if stdinKeyed {
			if _, dup := seen[stdinKey]; dup {
				return nil
			}

			seen[stdinKey] = struct{}{}
		}

		data, err := io.ReadAll(stdin)
		if err != nil {
			return ErrReadSource.Wrap(err)
		}

		srcs = append(srcs, source{name: stdinName, data: data})

		return nil
	}

	stdinDone := false

	for _, name := range names {
		if name == stdinSource {
			if !stdinDone {
				if err := readStdin(); err != nil {
					return nil, err
				}
			}

			stdinDone = true

			continue
		}

		src, ok, err := readUniqueFile(name, seen)
		if err != nil {
			return nil, err
		}

		if ok {
			srcs = append(srcs, src)
		}
	}

	return srcs, nil
}

// readUniqueFile reads the file at path if it hasn't been seen before.
// It resolves symlinks and uses device/inode to detect duplicates.
func readUniqueFile(path string, seen map[fileKey]struct{}) (source, bool, error) {
	// Resolve to absolute path to handle relative path duplicates.
	absPath, err := filepath.Abs(path)
	if err != nil {
		return source{}, false, ErrReadSource.Wrap(err)
	}

	// Resolve symlinks to their target.
	resolved, err := filepath.EvalSymlinks(absPath)
	if err != nil {
		return source{}, false, ErrReadSource.Wrap(err)
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return source{}, false, ErrReadSource.Wrap(err)
	}

	if key, ok := makeFileKey(info); ok {
		if _, exists := seen[key]; exists {
			return source{}, false, nil
		}

		seen[key] = struct{}{}
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		return source{}, false, ErrReadSource.Wrap(err)
	}

	return source{name: path, data: data}, true, nil
}

// makeFileKey creates a fileKey from os.FileInfo.
// Returns false if the underlying Sys() data is not of type *syscall.Stat_t.
func makeFileKey(info os.FileInfo) (key fileKey, ok bool) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return key, false
	}

	return fileKey{dev: uint64(stat.Dev), ino: stat.Ino}, true
}

// openOutput returns the writer for path, or out if path is empty or "-".
// The returned close function must be called when writing is done.
func openOutput(path string, out io.Writer) (io.Writer, func() error, error) {
	if path == "" || path == stdinSource {
		return out, func() error { return nil }, nil
	}

	file, err := os.Create(path)
	if err != nil {
		return nil, nil, ErrWriteOutput.Wrap(err)
	}

	return file, file.Close, nil
}
