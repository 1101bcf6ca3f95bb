package sys

import (
	"testing"

	"src.graf.sh/pkg/must"
)

func TestIsATTY_Pipe(t *testing.T) {
	r, w := must.Pipe()
	defer r.Close()
	defer w.Close()
	if IsATTY(r.Fd()) || IsATTY(w.Fd()) {
		t.Errorf("IsATTY reports a pipe as a terminal")
	}
}

func TestWinSize_Pipe(t *testing.T) {
	r, w := must.Pipe()
	defer r.Close()
	defer w.Close()
	if row, col := WinSize(r); row != -1 || col != -1 {
		t.Errorf("WinSize(pipe) -> %v, %v, want -1, -1", row, col)
	}
}
