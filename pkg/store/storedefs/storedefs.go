// Package storedefs contains definitions of the store API.
//
// It is a separate package so that packages that only depend on the store API
// does not need to depend on the concrete implementation.
package storedefs

import "errors"

// ErrNoMatchingExpr is the error returned when an expression is queried by a
// sequence number that does not exist.
var ErrNoMatchingExpr = errors.New("no matching expression")

// ErrNoView is the error returned when a view parameter has never been set.
var ErrNoView = errors.New("no such view parameter")

// Store is an interface satisfied by the storage service.
type Store interface {
	AddExpr(text string) (int, error)
	DelExpr(seq int) error
	Expr(seq int) (string, error)
	Exprs() ([]Expr, error)
	ClearExprs() error

	SetView(name string, value float64) error
	View(name string) (float64, error)
}

// Expr is an entry in the expression list.
type Expr struct {
	Text string
	Seq  int
}
