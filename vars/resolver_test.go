package vars

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardnew/nestvars/style"
)

// process parses input, resolves it with opts and returns the result.
func process(t *testing.T, input string, opts ...Option) (*style.Root, *Result, error) {
	t.Helper()

	ctx := context.Background()

	root, err := style.Parse(ctx, input)
	require.NoError(t, err, "Input:\n%s", input)

	r, err := New(opts...)
	require.NoError(t, err)

	res, err := r.Process(ctx, root)

	return root, res, err
}

func check(t *testing.T, input, want string, opts ...Option) *Result {
	t.Helper()

	root, res, err := process(t, input, opts...)
	require.NoError(t, err, "Input:\n%s", input)
	assert.Equal(t, want, root.String())

	return res
}

func checkError(t *testing.T, input, want string, opts ...Option) error {
	t.Helper()

	_, res, err := process(t, input, opts...)
	require.Error(t, err, "Expected resolving to fail for Input:\n%s", input)
	assert.Nil(t, res)
	assert.Contains(t, err.Error(), want)

	return err
}

func TestProcess_Readme(t *testing.T) {
	res := check(t,
		"$color: red;\n"+
			"a {\n"+
			"color: $color;\n"+
			"$color: white;\n"+
			"color: $color;\n"+
			"b {\n"+
			"color: $color;\n"+
			"$color: blue;\n"+
			"color: $color;\n"+
			"}\n"+
			"color: $color;\n"+
			"}",
		"a {\n"+
			"color: red;\n"+
			"color: white;\n"+
			"b {\n"+
			"color: white;\n"+
			"color: blue;\n"+
			"}\n"+
			"color: white;\n"+
			"}")

	assert.Equal(t, 3, res.Removed)
	assert.Equal(t, 5, res.Substituted)
	assert.Empty(t, res.Warnings)

	check(t,
		"$bar: BAR;\n"+
			"$(bar) {}\n"+
			"@media foo$(bar) {\n"+
			"foo-$(bar)-baz: qux;\n"+
			"}",
		"BAR {}\n"+
			"@media fooBAR {\n"+
			"foo-BAR-baz: qux;\n"+
			"}")
}

func TestProcess_Scoping(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "declared in root",
			input: "$foo: FOO;\na {\nbar: $foo;\n}",
			want:  "a {\nbar: FOO;\n}",
		},
		{
			name:  "several references in one value",
			input: "$foo: FOO;\n$bar: BAR;\na {\nbaz: $foo $bar $foo baz;\n}",
			want:  "a {\nbaz: FOO BAR FOO baz;\n}",
		},
		{
			name: "overrides in the same context",
			input: "a {\n$foo: FOO;\nbar: $foo;\n$foo: BAR;\nbaz: $foo;\n" +
				"b {\nqux: $foo;\n$foo: BAZ;\ncorge: $foo;\n}\n" +
				"garpley: $foo;\n$foo: QUX;\nwaldo: $foo;\n}",
			want: "a {\nbar: FOO;\nbaz: BAR;\n" +
				"b {\nqux: BAR;\ncorge: BAZ;\n}\n" +
				"garpley: BAR;\nwaldo: QUX;\n}",
		},
		{
			name:  "restores after leaving an overriding context",
			input: "a {\n$foo: FOO;\nb {\n$foo: BAR;\nbaz: $foo;\n}\nc {\nqux: $foo;\n}\n}",
			want:  "a {\nb {\nbaz: BAR;\n}\nc {\nqux: FOO;\n}\n}",
		},
		{
			name:  "declared and referenced in the same rule",
			input: "a {\n$foo: FOO;\nbar: $foo;\n}",
			want:  "a {\nbar: FOO;\n}",
		},
		{
			name:  "deeply nested",
			input: "@a {\n$foo: FOO;\n@b {\nc {\nd {\nbar: $foo;\n}\n}\n}\n}",
			want:  "@a {\n@b {\nc {\nd {\nbar: FOO;\n}\n}\n}\n}",
		},
		{
			name:  "closest declaration wins",
			input: "@a {\n$foo: FOO;\n@b {\n$foo: BAR;\nc {\nbaz: $foo;\n}\n}\n}",
			want:  "@a {\n@b {\nc {\nbaz: BAR;\n}\n}\n}",
		},
		{
			name:  "selector",
			input: "$bar: BAR; foo$(bar)baz {}",
			want:  "fooBARbaz {}",
		},
		{
			name:  "at-rule prelude",
			input: "$bar: BAR; @a foo$(bar)baz {}",
			want:  "@a fooBARbaz {}",
		},
		{
			name:  "bodiless at-rule prelude",
			input: "$file: theme; @import \"$(file).css\";",
			want:  "@import \"theme.css\";",
		},
		{
			name:  "declaration property",
			input: "$bar: BAR;\na {\nfoo$(bar)baz: qux;\n}",
			want:  "a {\nfooBARbaz: qux;\n}",
		},
		{
			name:  "property built from a reference is not a declaration",
			input: "$name: color;\na {\n$(name): red;\n}",
			want:  "a {\ncolor: red;\n}",
		},
		{
			name:  "property resolving to a declaration",
			input: "$name: size;\na {\n$$(name): 4px;\nwidth: $size;\n}",
			want:  "a {\nwidth: 4px;\n}",
		},
		{
			name:  "value is substituted verbatim",
			input: "$v: $(not) \"a;b\";\na { b: $v; }",
			want:  "a { b: $(not) \"a;b\"; }",
		},
		{
			name:  "ignores comments",
			input: "/* $foo */",
			want:  "/* $foo */",
		},
		{
			name:  "ignores comments in containers",
			input: "a { /* $(foo) $bar */ }",
			want:  "a { /* $(foo) $bar */ }",
		},
		{
			name:  "content without variables is unchanged",
			input: "@media (max-width: 600px) {\n  a:hover > b { color: red; }\n}\n",
			want:  "@media (max-width: 600px) {\n  a:hover > b { color: red; }\n}\n",
		},
		{
			name:  "prefix of a longer name",
			input: "$a: 1;\n$a-b: 2;\nx { y: $a-b $a; }",
			want:  "x { y: 2 1; }",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			check(t, tt.input, tt.want)
		})
	}
}

func TestProcess_DoesNotLeak(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "to a sibling",
			input: "a {\n$foo: FOO;\n}\nb {\nbar: $foo;\n}",
			want:  "Undefined variable: foo",
		},
		{
			name:  "to the parent",
			input: "a {\nb {\n$foo: FOO;\n}\nbar: $foo;\n}",
			want:  "Undefined variable: foo",
		},
		{
			name:  "to a sibling at-rule",
			input: "@a {\n$foo: FOO;\n}\n@b $(foo) {}",
			want:  "Undefined variable: foo",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkError(t, tt.input, tt.want)
		})
	}
}

func TestProcess_Globals(t *testing.T) {
	res := check(t, "foo:$foo", "foo:bar", WithGlobals(map[string]string{"foo": "bar"}))
	assert.Zero(t, res.Removed)
	assert.Equal(t, 1, res.Substituted)

	// A root declaration shadows a global until the end of the document.
	check(t, "a { b: $foo; }\n$foo: baz;\nc { d: $foo; }",
		"a { b: bar; }\nc { d: baz; }",
		WithOptions(Options{Globals: map[string]string{"foo": "bar"}}))
}

func TestProcess_LevelError(t *testing.T) {
	for _, opts := range [][]Option{nil, {WithLogLevel("error")}, {WithLevel(LevelError)}} {
		err := checkError(t, "foo:$foo", "Undefined variable: foo", opts...)

		assert.ErrorIs(t, err, ErrUndefined)

		var u *UndefinedError
		require.True(t, errors.As(err, &u))
		assert.Equal(t, "foo", u.Name)
		assert.Equal(t, "1:1: Undefined variable: foo", u.Error())

		d, ok := u.Node.(*style.Decl)
		require.True(t, ok, "Expected *style.Decl, got %T", u.Node)
		assert.Equal(t, "foo", d.Prop)
	}

	err := checkError(t, "a {\nfoo: $bar;\n}", "Undefined variable: bar", WithSource("main.css"))
	assert.Equal(t, "main.css:2:1: Undefined variable: bar", err.Error())
}

func TestProcess_LevelError_KeepsEarlierEdits(t *testing.T) {
	root, res, err := process(t, "$a: A;\nx { p: $a; q: $missing; }")
	require.Error(t, err)
	assert.Nil(t, res)

	assert.Equal(t, "x { p: A; q: $missing; }", root.String())
}

func TestProcess_LevelError_Selector(t *testing.T) {
	root, _, err := process(t, "a$(x) { b: $y; }")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Undefined variable: x")

	// Aborted before the rule body was visited.
	assert.Equal(t, "a$(x) { b: $y; }", root.String())
}

func TestProcess_LevelPreserve(t *testing.T) {
	for _, level := range []string{"warn", "silent"} {
		t.Run(level, func(t *testing.T) {
			res := check(t, "foo:$foo", "foo:$foo", WithLogLevel(level))
			assert.Zero(t, res.Substituted)

			check(t, "a$(x) { $(y): $z $z; }", "a$(x) { $(y): $z $z; }",
				WithLogLevel(level))
		})
	}
}

func TestProcess_LevelWarn_Warnings(t *testing.T) {
	_, res, err := process(t, "a$(x) {\n  $(y): $z $z;\n}", WithLevel(LevelWarn), WithSource("w.css"))
	require.NoError(t, err)
	require.Len(t, res.Warnings, 4)

	names := make([]string, 0, len(res.Warnings))
	for _, w := range res.Warnings {
		names = append(names, w.Name)
	}

	assert.Equal(t, []string{"x", "y", "z", "z"}, names)

	w := res.Warnings[1]
	assert.Equal(t, "Undefined variable: y", w.Message)
	assert.Equal(t, "w.css:2:3: Undefined variable: y", w.String())
	assert.Equal(t, 2, w.Pos().Line)
	assert.Equal(t, "w.css", w.Source)

	// A property left as "$(y)" is not a declaration.
	assert.Zero(t, res.Removed)

	_, res, err = process(t, "foo:$foo", WithLevel(LevelSilent))
	require.NoError(t, err)
	assert.Empty(t, res.Warnings)
}

func TestProcess_Suggestions(t *testing.T) {
	_, res, err := process(t, "$color: red;\n$margin: 0;\na { b: $colr; }", WithLevel(LevelWarn))
	require.NoError(t, err)
	require.Len(t, res.Warnings, 1)

	w := res.Warnings[0]
	assert.Equal(t, []string{"color"}, w.Suggestions)
	assert.Equal(t, "did you mean $color?", w.Hint())
	assert.Equal(t, "Undefined variable: colr", w.Message)

	err = checkError(t, "$color: red;\na { b: $colr; }", "Undefined variable: colr")

	var u *UndefinedError
	require.True(t, errors.As(err, &u))
	assert.Equal(t, "did you mean $color?", u.Hint())
	assert.False(t, strings.Contains(u.Error(), "did you mean"))
}

func TestProcess_SuggestionsByEditDistance(t *testing.T) {
	_, res, err := process(t, "$size: 1px;\n$weight: 2;\na { b: $sise; }", WithLevel(LevelWarn))
	require.NoError(t, err)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, []string{"size"}, res.Warnings[0].Suggestions)

	_, res, err = process(t, "$size: 1px;\na { b: $zzzzzz; }", WithLevel(LevelWarn))
	require.NoError(t, err)
	require.Len(t, res.Warnings, 1)
	assert.Empty(t, res.Warnings[0].Suggestions)
	assert.Empty(t, res.Warnings[0].Hint())
}

func TestProcess_MalformedDeclaration(t *testing.T) {
	// "$foo bar" is not a variable name, so it is kept as a declaration.
	res := check(t, "a { $foo bar: 1; }", "a { $foo bar: 1; }")
	assert.Zero(t, res.Removed)
}

func TestProcess_Canceled(t *testing.T) {
	root, err := style.Parse(context.Background(), "a { b: c; }")
	require.NoError(t, err)

	r, err := New()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = r.Process(ctx, root)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestProcess_Reuse(t *testing.T) {
	r, err := New(WithGlobals(map[string]string{"g": "G"}))
	require.NoError(t, err)

	for range 2 {
		root, err := style.Parse(context.Background(), "$x: 1; a { b: $x $g; }")
		require.NoError(t, err)

		res, err := r.Process(context.Background(), root)
		require.NoError(t, err)
		assert.Equal(t, "a { b: 1 G; }", root.String())
		assert.Equal(t, 1, res.Removed)
	}

	assert.Equal(t, map[string]string{"g": "G"}, r.Globals())
}

func TestNew_InvalidLogLevel(t *testing.T) {
	for _, opt := range []Option{
		WithLogLevel("foo"),
		WithOptions(Options{LogLevel: "foo"}),
	} {
		r, err := New(opt)
		require.Error(t, err)
		assert.Nil(t, r)
		assert.ErrorIs(t, err, ErrInvalidLogLevel)
		assert.Equal(t, "Invalid logLevel: foo", err.Error())
	}
}

func TestLoadOptions(t *testing.T) {
	o, err := LoadOptions(strings.NewReader("globals:\n  foo: bar\n  brand: \"#336699\"\nlogLevel: warn\n"))
	require.NoError(t, err)
	assert.Equal(t, Options{
		Globals:  map[string]string{"foo": "bar", "brand": "#336699"},
		LogLevel: "warn",
	}, o)

	r, err := New(WithOptions(o))
	require.NoError(t, err)
	assert.Equal(t, LevelWarn, r.Level())

	_, err = LoadOptions(strings.NewReader("bogus: true\n"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrReadOptions)
}
