package testutil

import (
	"os"
	"path/filepath"

	"src.graf.sh/pkg/must"
)

// TempDir creates a temporary directory for testing that will be removed
// after the test finishes. It differs from testing.TB.TempDir in that it
// resolves symlinks in the path, so that comparisons against os.Getwd work.
func TempDir(c Cleanuper) string {
	dir := must.OK1(os.MkdirTemp("", "graftest"))
	dir = must.OK1(filepath.EvalSymlinks(dir))
	c.Cleanup(func() {
		if err := os.RemoveAll(dir); err != nil {
			println("failed to remove temp dir", dir)
		}
	})
	return dir
}

// InTempDir is like TempDir, but also changes into the directory until the
// test finishes.
func InTempDir(c Cleanuper) string {
	dir := TempDir(c)
	Chdir(c, dir)
	return dir
}

// Chdir changes into a directory, and restores the original working directory
// when a test finishes.
func Chdir(c Cleanuper, dir string) {
	oldWd := must.OK1(os.Getwd())
	must.OK(os.Chdir(dir))
	c.Cleanup(func() { must.OK(os.Chdir(oldWd)) })
}

// Dir describes the layout of a directory. The keys are names of files or
// subdirectories; the values are either file contents (string) or another Dir.
type Dir map[string]any

// ApplyDir creates the given layout in the working directory.
func ApplyDir(dir Dir) {
	applyDir(dir, "")
}

func applyDir(dir Dir, prefix string) {
	for name, file := range dir {
		path := filepath.Join(prefix, name)
		switch file := file.(type) {
		case string:
			must.WriteFile(path, file)
		case Dir:
			must.OK(os.MkdirAll(path, 0700))
			applyDir(file, path)
		default:
			panic("file is neither string nor Dir")
		}
	}
}
