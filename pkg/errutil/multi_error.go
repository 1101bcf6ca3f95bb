// Package errutil contains helpers for combining errors.
package errutil

import "strings"

// Multi combines errors into one. Nil errors are dropped; if none remain the
// result is nil, and a single remaining error is returned as is. Errors that
// were themselves returned by Multi are flattened.
func Multi(errs ...error) error {
	var all multiError
	for _, err := range errs {
		switch err := err.(type) {
		case nil:
		case multiError:
			all = append(all, err...)
		default:
			all = append(all, err)
		}
	}
	switch len(all) {
	case 0:
		return nil
	case 1:
		return all[0]
	}
	return all
}

type multiError []error

func (me multiError) Error() string {
	msgs := make([]string, len(me))
	for i, e := range me {
		msgs[i] = e.Error()
	}
	return "multiple errors: " + strings.Join(msgs, "; ")
}

// Unwrap makes errors.Is and errors.As look into every combined error.
func (me multiError) Unwrap() []error { return me }
