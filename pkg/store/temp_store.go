package store

import (
	"fmt"
	"os"

	"src.graf.sh/pkg/errutil"
)

// MustGetTempStore returns a Store backed by a temporary file, and a cleanup
// function that should be called when the Store is no longer used.
func MustGetTempStore() (DBStore, func()) {
	f, err := os.CreateTemp("", "graf.test")
	if err != nil {
		panic(fmt.Sprintf("Failed to open temp file: %v", err))
	}
	st, err := NewStore(f.Name())
	if err != nil {
		panic(fmt.Sprintf("Failed to create Store instance: %v", err))
	}
	return st, func() {
		err := errutil.Multi(st.Close(), f.Close(), os.Remove(f.Name()))
		if err != nil {
			fmt.Fprintln(os.Stderr, "failed to clean up temp store:", err)
		}
	}
}
