// Package errors wraps go-errors with stack traces and a small kind taxonomy
// shared by every layer of the node. Kinds survive wrapping so the RPC boundary
// can still report what went wrong after context has been added on the way up.
package errors

import (
	stderrors "errors"
	"fmt"

	goerrors "github.com/go-errors/errors"
)

// Error is an error annotated with a kind, a context message and the stack of
// the place it was created.
type Error struct {
	kind  Kind
	msg   string
	err   error
	stack *goerrors.Error
}

func newError(kind Kind, err error, msg string) *Error {
	e := &Error{kind: kind, msg: msg, err: err}
	e.stack = goerrors.Wrap(e, 3)
	return e
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.err == nil:
		return e.msg
	case e.msg == "":
		return e.err.Error()
	default:
		return e.msg + ": " + e.err.Error()
	}
}

// Unwrap returns the wrapped error, if any.
func (e *Error) Unwrap() error { return e.err }

// Kind returns the kind set on this error, which may be KindUnknown.
func (e *Error) Kind() Kind { return e.kind }

// ErrorStack returns the error message followed by the stack it was created at.
func (e *Error) ErrorStack() string {
	if e.stack == nil {
		return e.Error()
	}
	return e.Error() + "\n" + string(e.stack.Stack())
}

// New returns an error with the given message.
func New(msg string) error {
	return newError(KindUnknown, nil, msg)
}

// Errorf formats an error. A %w verb keeps the wrapped error reachable.
func Errorf(format string, args ...interface{}) error {
	return newError(KindUnknown, fmt.Errorf(format, args...), "")
}

// Wrap annotates err with msg. It returns nil when err is nil.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return newError(KindUnknown, err, msg)
}

// Wrapf annotates err with a formatted message. It returns nil when err is nil.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return newError(KindUnknown, err, fmt.Sprintf(format, args...))
}

// E creates a new error of the given kind.
func E(kind Kind, format string, args ...interface{}) error {
	return newError(kind, nil, fmt.Sprintf(format, args...))
}

// WrapKind annotates err with a formatted message and classifies it as kind.
// It returns nil when err is nil.
func WrapKind(kind Kind, err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return newError(kind, err, fmt.Sprintf(format, args...))
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool { return stderrors.Is(err, target) }

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool { return stderrors.As(err, target) }

// Unwrap returns the result of calling the Unwrap method on err.
func Unwrap(err error) error { return stderrors.Unwrap(err) }

// ErrorStack returns the stack of the outermost annotated error in the chain,
// or the plain message when there is none.
func ErrorStack(err error) string {
	var e *Error
	if As(err, &e) {
		return e.ErrorStack()
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

// Recover recovers from a panic and passes it to onErr as an error.
// It must be deferred directly.
func Recover(onErr func(err error)) {
	if r := recover(); r != nil {
		onErr(FromPanic(r))
	}
}

// FromPanic turns a recovered panic value into an error with the panic stack.
func FromPanic(r interface{}) error {
	if err, ok := r.(error); ok {
		return newError(KindUnknown, err, "recovered from panic")
	}
	return newError(KindUnknown, nil, fmt.Sprintf("recovered from panic: %v", r))
}
