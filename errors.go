package smppcheck

import (
	"errors"
	"fmt"
)

type ErrorKind uint8

// Failure classes of the probe, every fatal error maps to exactly one
const (
	ErrConnect ErrorKind = iota
	ErrWrite
	ErrReadTimeout
	ErrClosed
	ErrMalformed
	ErrBindRefused
)

var errorKindText = map[ErrorKind]string{
	ErrConnect:     "ConnectError",
	ErrWrite:       "WriteError",
	ErrReadTimeout: "ReadTimeout",
	ErrClosed:      "ConnectionClosed",
	ErrMalformed:   "MalformedPDU",
	ErrBindRefused: "BindRefused",
}

func (x ErrorKind) String() string { return errorKindText[x] }

// Error carries the failure class together with the underlying cause.
// Status is filled only for BindRefused
type Error struct {
	Kind   ErrorKind
	Desc   string
	Status uint32
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Desc, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Desc)
}

func (e *Error) Unwrap() error { return e.Err }

func NewError(kind ErrorKind, desc string, err error) *Error {
	return &Error{Kind: kind, Desc: desc, Err: err}
}

// KindOf extracts the failure class, ok reports whether err (or anything
// it wraps) is a checker error at all
func KindOf(err error) (kind ErrorKind, ok bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}
