package store

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failed store operation.
type ErrorKind int

const (
	// ReadError means the directory could not be listed.
	ReadError ErrorKind = iota + 1
	// DecodeError means a file's content is not valid text.
	DecodeError
	// WriteError means a file write was denied or could not complete.
	WriteError
	// IOError covers copy/move/rename/delete/create failures.
	IOError
)

func (k ErrorKind) String() string {
	switch k {
	case ReadError:
		return "read"
	case DecodeError:
		return "decode"
	case WriteError:
		return "write"
	case IOError:
		return "io"
	}
	return "unknown"
}

// OpError is the failure type returned by every Store operation. It is
// local to the single call that raised it: the store's previous listing
// stands untouched and nothing is retried.
type OpError struct {
	Kind ErrorKind
	Op   string
	Path string
	Err  error
}

func (e *OpError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s %s: %s error", e.Op, e.Path, e.Kind)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *OpError) Unwrap() error { return e.Err }

// KindOf extracts the ErrorKind from err, or 0 if err does not wrap an
// OpError.
func KindOf(err error) ErrorKind {
	var oe *OpError
	if errors.As(err, &oe) {
		return oe.Kind
	}
	return 0
}

func opErr(kind ErrorKind, op, path string, err error) *OpError {
	return &OpError{Kind: kind, Op: op, Path: path, Err: err}
}
