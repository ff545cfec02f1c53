package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrDuplicateAlert  = errors.New("unresolved alert already tracked")
	ErrDuplicateScript = errors.New("script already authorized for store")
)

// ErrorKind classifies failures so callers can decide between degrading and
// surfacing.
type ErrorKind string

const (
	KindTransientFetch       ErrorKind = "transient-fetch"
	KindParse                ErrorKind = "parse"
	KindHashCompute          ErrorKind = "hash-compute"
	KindConfigurationMissing ErrorKind = "configuration-missing"
	KindPersistence          ErrorKind = "persistence"
)

type Error struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func NewError(kind ErrorKind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or "".
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
