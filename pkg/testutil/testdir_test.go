package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"src.graf.sh/pkg/must"
)

type cleanuper struct{ fns []func() }

func (c *cleanuper) Cleanup(fn func()) { c.fns = append(c.fns, fn) }

func (c *cleanuper) runCleanups() {
	for i := len(c.fns) - 1; i >= 0; i-- {
		c.fns[i]()
	}
}

func TestTempDir_DirHasSymlinksResolved(t *testing.T) {
	dir := TempDir(t)
	resolved := must.OK1(filepath.EvalSymlinks(dir))
	if dir != resolved {
		t.Errorf("TempDir returns %q, but it resolves to %q", dir, resolved)
	}
}

func TestTempDir_CleanupRemovesDirRecursively(t *testing.T) {
	c := &cleanuper{}
	dir := TempDir(c)
	must.WriteFile(filepath.Join(dir, "a", "b"), "test")

	c.runCleanups()
	if _, err := os.Stat(dir); err == nil {
		t.Errorf("Dir %q still exists after cleanup", dir)
	}
}

func TestInTempDir(t *testing.T) {
	original := must.OK1(os.Getwd())
	c := &cleanuper{}
	dir := InTempDir(c)
	if wd := must.OK1(os.Getwd()); wd != dir {
		t.Errorf("pwd is now %q, want %q", wd, dir)
	}
	c.runCleanups()
	if wd := must.OK1(os.Getwd()); wd != original {
		t.Errorf("pwd restored to %q, want %q", wd, original)
	}
}

func TestApplyDir(t *testing.T) {
	InTempDir(t)
	ApplyDir(Dir{"a": "a content", "d": Dir{"dd": Dir{"x": "x content"}}})
	ApplyDir(Dir{"d": Dir{"y": "y content"}})

	for name, want := range map[string]string{
		"a": "a content", "d/dd/x": "x content", "d/y": "y content"} {
		if got := must.ReadFileString(name); got != want {
			t.Errorf("file %q is %q, want %q", name, got, want)
		}
	}
}

func TestSetAndSetenv(t *testing.T) {
	c := &cleanuper{}
	x := 1
	Set(c, &x, 2)
	Setenv(c, "GRAF_TESTUTIL_VAR", "on")
	if x != 2 || os.Getenv("GRAF_TESTUTIL_VAR") != "on" {
		t.Errorf("Set/Setenv had no effect")
	}
	c.runCleanups()
	if x != 1 {
		t.Errorf("x = %v after cleanup, want 1", x)
	}
	if _, ok := os.LookupEnv("GRAF_TESTUTIL_VAR"); ok {
		t.Errorf("GRAF_TESTUTIL_VAR still set after cleanup")
	}
}
