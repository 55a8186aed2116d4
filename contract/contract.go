// Copyright © 2024 The ELPS authors

// Package contract signals internal invariant violations.
//
// Semantic errors in user input are never reported through this package;
// they become diagnostics. A contract failure means the binder itself is
// wrong, so it panics with an *InternalError carrying a stack trace.
package contract

import (
	"errors"
	"fmt"

	pkgerrors "github.com/pkg/errors"
)

// InternalError is the panic value raised by failed contracts.
type InternalError struct {
	err error
}

func (e *InternalError) Error() string {
	return "internal error: " + e.err.Error()
}

func (e *InternalError) Unwrap() error {
	return e.err
}

// Format prints the stack trace with %+v.
func (e *InternalError) Format(s fmt.State, verb rune) {
	if verb == 'v' && s.Flag('+') {
		fmt.Fprintf(s, "internal error: %+v", e.err)
		return
	}
	fmt.Fprint(s, e.Error())
}

// Failf panics unconditionally with a formatted message.
func Failf(format string, args ...interface{}) {
	panic(&InternalError{err: pkgerrors.Errorf(format, args...)})
}

// Assert panics if cond is false.
func Assert(cond bool) {
	if !cond {
		panic(&InternalError{err: pkgerrors.New("assertion failed")})
	}
}

// Assertf panics with a formatted message if cond is false.
func Assertf(cond bool, format string, args ...interface{}) {
	if !cond {
		Failf(format, args...)
	}
}

// Require panics if a required argument is missing.
func Require(cond bool, name string) {
	if !cond {
		panic(&InternalError{err: pkgerrors.Errorf("required argument %s is missing", name)})
	}
}

// Recover converts a contract panic into an error. It is meant to be
// deferred at process or request boundaries:
//
//	defer contract.Recover(&err)
//
// Panics that are not contract failures are re-raised.
func Recover(errp *error) {
	r := recover()
	if r == nil {
		return
	}
	if ie, ok := r.(*InternalError); ok {
		*errp = ie
		return
	}
	panic(r)
}

// IsInternal reports whether err is or wraps an *InternalError.
func IsInternal(err error) bool {
	var ie *InternalError
	return errors.As(err, &ie)
}
