package query

import (
	"errors"
	"fmt"
)

// Kind classifies an engine error for the caller.
type Kind string

const (
	// KindInvalidArgument marks requests rejected before touching storage.
	KindInvalidArgument Kind = "invalid_argument"
	// KindNotFound marks exact-key lookups with no match. A normal outcome.
	KindNotFound Kind = "not_found"
	// KindStorageUnavailable marks persistence failures surfaced verbatim.
	// The engine performs no implicit retry; the caller decides.
	KindStorageUnavailable Kind = "storage_unavailable"
)

// Error is the structured result every failed operation returns.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is allows errors.Is comparisons against a bare &Error{Kind: ...} target.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Msg == "" || t.Msg == e.Msg)
}

// InvalidArgumentf builds an InvalidArgument error.
func InvalidArgumentf(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidArgument, Msg: fmt.Sprintf(format, args...)}
}

// NotFoundf builds a NotFound error.
func NotFoundf(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf(format, args...)}
}

// StorageErr wraps a persistence failure.
func StorageErr(msg string, err error) *Error {
	return &Error{Kind: KindStorageUnavailable, Msg: msg, Err: err}
}

// KindOf extracts the kind from err, or "" if err is not an engine error.
func KindOf(err error) Kind {
	var qe *Error
	if errors.As(err, &qe) {
		return qe.Kind
	}
	return ""
}
