//go:build pprof

package profile

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func TestModes(t *testing.T) {
	got := Modes()

	if !slices.IsSorted(got) {
		t.Errorf("Modes() = %v, want sorted", got)
	}

	for _, m := range []string{"cpu", "heap", "trace"} {
		if !slices.Contains(got, m) {
			t.Errorf("Modes() = %v, missing %q", got, m)
		}
	}

	if slices.Contains(got, "quiet") {
		t.Error("Modes() should not contain quiet")
	}
}

func TestStart_WritesProfile(t *testing.T) {
	dir := t.TempDir()

	ctrl := Start(WithMode("cpu"), WithPath(dir), WithQuiet(true))
	if _, ok := ctrl.(ignore); ok {
		t.Fatal("Start() returned ignore for a known mode")
	}

	ctrl.Stop()

	if _, err := os.Stat(filepath.Join(dir, "cpu.pprof")); err != nil {
		t.Errorf("profile not written: %v", err)
	}
}
