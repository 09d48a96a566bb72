package cmd

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"
)

// initCLI is a small command tree exercising the value types written by
// Init.
type initCLI struct {
	Verbose bool              `help:"Enable verbose output"`
	Name    string            `help:"Name"`
	Count   int               `help:"Number of items"`
	Tags    []string          `help:"Tags"`
	Help2   bool              `hidden:""                    name:"help-me"`
	Resolve Resolve           `cmd:""                       default:"withargs"`
	Init    Init              `cmd:""`
	Extra   map[string]string `help:"Extra values"          mapsep:"none"`
}

func parseInitCLI(t *testing.T, confPath string, args ...string) context.Context {
	t.Helper()

	var cli initCLI

	parser, err := kong.New(&cli,
		kong.Vars{ConfigIdentifier: confPath}.CloneWith(LevelVars()))
	if err != nil {
		t.Fatal(err)
	}

	kctx, err := parser.Parse(args)
	if err != nil {
		t.Fatal(err)
	}

	return WithContext(context.Background(), kctx)
}

// TestInitRun tests the Init.Run command.
func TestInitRun(t *testing.T) {
	tests := []struct {
		name    string
		force   bool
		setup   func(t *testing.T, path string) // setup function to prepare test
		wantErr error
	}{
		{
			name: "create_new_config",
		},
		{
			name:  "overwrite_existing_with_force",
			force: true,
			setup: func(t *testing.T, path string) {
				if err := os.WriteFile(path, []byte("existing content"), 0o600); err != nil {
					t.Fatal(err)
				}
			},
		},
		{
			name: "fail_without_force",
			setup: func(t *testing.T, path string) {
				if err := os.WriteFile(path, []byte("existing content"), 0o600); err != nil {
					t.Fatal(err)
				}
			},
			wantErr: ErrFileExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			confPath := filepath.Join(t.TempDir(), "config.yaml")

			if tt.setup != nil {
				tt.setup(t, confPath)
			}

			ctx := parseInitCLI(t, confPath, "init")

			err := (&Init{Force: tt.force}).Run(ctx)
			if tt.wantErr != nil {
				if !errors.Is(err, ErrWriteConfig) || !errors.Is(err, tt.wantErr) {
					t.Errorf("Init.Run() error = %v, want %v", err, tt.wantErr)
				}

				return
			}

			if err != nil {
				t.Fatalf("Init.Run() error = %v", err)
			}

			content, err := os.ReadFile(confPath)
			if err != nil {
				t.Fatal(err)
			}

			var got map[string]any
			if err := yaml.Unmarshal(content, &got); err != nil {
				t.Errorf("generated config is not valid YAML: %v\n%s", err, content)
			}
		})
	}
}

// TestInitBuildConfig tests that buildConfig collects flag values in
// declaration order and skips unset or ignored flags.
func TestInitBuildConfig(t *testing.T) {
	ctx := parseInitCLI(t, "unused",
		"--verbose", "--name=test", "--count=5", "--tags=a,b",
		"init", "--force")

	entries := (&Init{}).buildConfig(ctx)

	got := make(map[string]any, len(entries))
	keys := make([]string, 0, len(entries))

	for _, item := range entries {
		key, ok := item.Key.(string)
		if !ok {
			t.Fatalf("key %v is not a string", item.Key)
		}

		keys = append(keys, key)
		got[key] = item.Value
	}

	if len(keys) < 4 || keys[0] != "verbose" || keys[1] != "name" ||
		keys[2] != "count" || keys[3] != "tags" {
		t.Errorf("keys = %v, want verbose, name, count, tags first", keys)
	}

	for _, skipped := range []string{"help", "help-me", "force", "extra", "output"} {
		if _, ok := got[skipped]; ok {
			t.Errorf("config should not contain %q", skipped)
		}
	}

	if got["count"] != 5 {
		t.Errorf("count = %v", got["count"])
	}

	// Flags of other commands are included with their defaults.
	if got["color"] != true {
		t.Errorf("color = %v, want true", got["color"])
	}
}

// TestInitFlagValue tests flagValue with different types.
func TestInitFlagValue(t *testing.T) {
	var cli struct {
		B bool              `name:"b"`
		S string            `name:"s"`
		E string            `name:"e"`
		F float64           `name:"f"`
		L []string          `name:"l"`
		M map[string]string `mapsep:"none" name:"m"`
	}

	parser, err := kong.New(&cli)
	if err != nil {
		t.Fatal(err)
	}

	kctx, err := parser.Parse([]string{"--b", "--s=x", "--f=1.5", "--l=p,q", "--m=z=1", "--m=a=2"})
	if err != nil {
		t.Fatal(err)
	}

	values := make(map[string]any)
	for _, flag := range kctx.Model.Flags {
		values[flag.Name] = flagValue(kctx, flag)
	}

	if values["b"] != true || values["s"] != "x" || values["f"] != 1.5 {
		t.Errorf("scalars = %v %v %v", values["b"], values["s"], values["f"])
	}

	if values["e"] != nil {
		t.Errorf("empty string = %v, want nil", values["e"])
	}

	if l, ok := values["l"].([]string); !ok || len(l) != 2 {
		t.Errorf("list = %#v", values["l"])
	}

	m, ok := values["m"].(yaml.MapSlice)
	if !ok || len(m) != 2 || m[0].Key != "a" || m[1].Key != "z" {
		t.Errorf("map = %#v", values["m"])
	}
}
