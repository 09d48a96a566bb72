package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeFile creates a file named name in dir with the given content.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	return path
}

func TestReadSourcesDefaultsToStdin(t *testing.T) {
	srcs, err := readSources(nil, strings.NewReader("a { b: c; }"))
	if err != nil {
		t.Fatal(err)
	}

	if len(srcs) != 1 {
		t.Fatalf("got %d sources, want 1", len(srcs))
	}

	if srcs[0].name != stdinName {
		t.Errorf("name = %q, want %q", srcs[0].name, stdinName)
	}

	if string(srcs[0].data) != "a { b: c; }" {
		t.Errorf("data = %q", srcs[0].data)
	}
}

func TestReadSourcesOrder(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.css", "a {}")
	b := writeFile(t, dir, "b.css", "b {}")

	srcs, err := readSources([]string{b, "-", a, "-"}, strings.NewReader("in {}"))
	if err != nil {
		t.Fatal(err)
	}

	var got []string
	for _, src := range srcs {
		got = append(got, string(src.data))
	}

	want := []string{"b {}", "in {}", "a {}"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestReadSourcesDeduplicates(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "main.css", "a {}")

	link := filepath.Join(dir, "link.css")
	if err := os.Symlink(path, link); err != nil {
		t.Skipf("symlink: %v", err)
	}

	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}

	rel, err := filepath.Rel(wd, path)
	if err != nil {
		t.Fatal(err)
	}

	srcs, err := readSources([]string{path, link, rel}, nil)
	if err != nil {
		t.Fatal(err)
	}

	if len(srcs) != 1 {
		t.Fatalf("got %d sources, want 1", len(srcs))
	}

	if srcs[0].name != path {
		t.Errorf("name = %q, want first occurrence %q", srcs[0].name, path)
	}
}

func TestReadSourcesMissingFile(t *testing.T) {
	_, err := readSources([]string{filepath.Join(t.TempDir(), "nope.css")}, nil)
	if !errors.Is(err, ErrReadSource) {
		t.Errorf("err = %v, want ErrReadSource", err)
	}
}

func TestOpenOutput(t *testing.T) {
	var buf bytes.Buffer

	for _, path := range []string{"", "-"} {
		w, closeFn, err := openOutput(path, &buf)
		if err != nil {
			t.Fatal(err)
		}

		if w != &buf {
			t.Errorf("openOutput(%q) did not return the default writer", path)
		}

		if err := closeFn(); err != nil {
			t.Error(err)
		}
	}

	path := filepath.Join(t.TempDir(), "out.css")

	w, closeFn, err := openOutput(path, &buf)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := w.Write([]byte("a {}")); err != nil {
		t.Fatal(err)
	}

	if err := closeFn(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if string(data) != "a {}" {
		t.Errorf("file content = %q", data)
	}

	_, _, err = openOutput(filepath.Join(t.TempDir(), "missing", "out.css"), &buf)
	if !errors.Is(err, ErrWriteOutput) {
		t.Errorf("err = %v, want ErrWriteOutput", err)
	}
}

func TestStreamsFromDefaults(t *testing.T) {
	s := streamsFrom(context.Background())
	if s.In != os.Stdin || s.Out != os.Stdout || s.Err != os.Stderr {
		t.Error("streamsFrom without WithStreams should use process streams")
	}

	var out bytes.Buffer

	s = streamsFrom(WithStreams(context.Background(), Streams{Out: &out}))
	if s.Out != &out {
		t.Error("Out not taken from context")
	}

	if s.In != os.Stdin || s.Err != os.Stderr {
		t.Error("nil streams should keep their defaults")
	}
}

func TestErrorIs(t *testing.T) {
	err := ErrResolve.Wrap(errors.New("boom"))

	if !errors.Is(err, ErrResolve) {
		t.Error("wrapped error should match its sentinel")
	}

	if errors.Is(err, ErrParseSource) {
		t.Error("wrapped error should not match another sentinel")
	}

	if got := err.Error(); got != "resolve variables: boom" {
		t.Errorf("Error() = %q", got)
	}
}
