package types

import (
	"errors"
	"fmt"
)

// Code identifies a library error category. The set is closed: callers
// can switch on it exhaustively instead of matching message strings.
type Code string

const (
	// CodeInvalidInput marks malformed input (empty URI, wrong entry kind).
	CodeInvalidInput Code = "EINVAL"
	// CodeNotFound marks a path that failed an asserted existence check.
	CodeNotFound Code = "EFAULT"
	// CodeSequence marks an operation invoked out of the required order,
	// e.g. details requested for a target that was never validated.
	CodeSequence Code = "ESEQ"
	// CodeProbe marks a failed or unparseable metadata probe invocation.
	CodeProbe Code = "EPROBE"
)

// LibraryError is the structured error carried by all facade failures.
type LibraryError struct {
	Code Code
	URI  string // offending URI or path, when known
	Hint string // remediation guidance, when the failure is caller-correctable
	Err  error  // wrapped cause
}

// Error implements the error interface
func (e *LibraryError) Error() string {
	msg := string(e.Code)
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", e.Code, e.Err)
	}
	if e.URI != "" {
		msg = fmt.Sprintf("%s (uri: %s)", msg, e.URI)
	}
	if e.Hint != "" {
		msg = fmt.Sprintf("%s; %s", msg, e.Hint)
	}
	return msg
}

// Unwrap returns the wrapped cause
func (e *LibraryError) Unwrap() error {
	return e.Err
}

// NewInvalidInput creates an invalid-input error
func NewInvalidInput(msg string) *LibraryError {
	return &LibraryError{Code: CodeInvalidInput, Err: errors.New(msg)}
}

// NewNotFound creates an existence-check failure annotated with the target
func NewNotFound(uri string, err error) *LibraryError {
	return &LibraryError{Code: CodeNotFound, URI: uri, Err: err}
}

// NewProbeError wraps a probe invocation or parse failure
func NewProbeError(path string, err error) *LibraryError {
	return &LibraryError{Code: CodeProbe, URI: path, Err: err}
}

// WrapSequence wraps err as an out-of-sequence failure with guidance to
// validate the target first.
func WrapSequence(uri string, err error) *LibraryError {
	return &LibraryError{
		Code: CodeSequence,
		URI:  uri,
		Hint: "verify the target with CanPlayURI before requesting details or streams",
		Err:  err,
	}
}

// IsCode reports whether err is (or wraps) a LibraryError with the given code
func IsCode(err error, code Code) bool {
	var le *LibraryError
	return errors.As(err, &le) && le.Code == code
}
