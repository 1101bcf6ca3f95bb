package diag

import (
	"fmt"
	"io"
)

// Error represents an error with context that can be showed.
type Error struct {
	Type    string
	Message string
	Context Context
}

// Error returns a plain text representation of the error.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %d-%d in %s: %s",
		e.Type, e.Context.From, e.Context.To, e.Context.Name, e.Message)
}

// Range returns the range of the error.
func (e *Error) Range() Ranging {
	return e.Context.Range()
}

// Show shows the error with its source context.
func (e *Error) Show() string {
	return fmt.Sprintf("%s: \033[31;1m%s\033[m\n  %s", e.Type, e.Message, e.Context.Show())
}

// Shower wraps the Show function.
type Shower interface {
	// Show shows something.
	Show() string
}

// ShowError writes an error to w. It uses the Show method if the error
// implements Shower, and prints the error message in bold red otherwise.
func ShowError(w io.Writer, err error) {
	if shower, ok := err.(Shower); ok {
		fmt.Fprintln(w, shower.Show())
	} else {
		fmt.Fprintf(w, "\033[31;1m%s\033[m\n", err.Error())
	}
}
