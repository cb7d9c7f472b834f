// Package errors wraps the standard library errors package with support for
// annotating errors with [slog.Attr] and the source location of the wrap site.
// The annotations surface in structured logs through [SlogError].
package errors

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
)

// annotatedError carries a message, an optional wrapped error, slog
// annotations, and the file:line of the call site that created it.
type annotatedError struct {
	msg         string
	err         error
	annotations []slog.Attr
	source      string
}

func (e *annotatedError) Error() string {
	if e.err == nil {
		return e.msg
	}
	return e.msg + ": " + e.err.Error()
}

func (e *annotatedError) Unwrap() error {
	return e.err
}

// NewSentinel creates a new error meant to be used as a sentinel value with
// [Is]. Unlike [New], it records the source location for logging.
func NewSentinel(msg string) error {
	return &annotatedError{msg: msg, err: nil, annotations: nil, source: caller()}
}

// Wrap annotates err with a message and optional [slog.Attr]. A nil err is
// tolerated and produces an error with only the message.
func Wrap(err error, msg string, annotations ...slog.Attr) error {
	return &annotatedError{msg: msg, err: err, annotations: annotations, source: caller()}
}

// caller resolves the file:line two frames up, i.e. the caller of the
// exported function in this package.
func caller() string {
	const skip = 3 // runtime.Callers, caller, and the exported function.
	var pcs [1]uintptr
	if runtime.Callers(skip, pcs[:]) == 0 {
		return ""
	}
	frame, _ := runtime.CallersFrames(pcs[:]).Next()
	file := frame.File
	if i := strings.LastIndexByte(file, '/'); i >= 0 {
		file = file[i+1:]
	}
	return fmt.Sprintf("%s:%d", file, frame.Line)
}

// SlogError converts an error into a [slog.Attr] group containing the error
// message, the source location of the innermost wrap site, and all
// annotations collected along the unwrap chain.
func SlogError(err error) slog.Attr {
	if err == nil {
		return slog.Group("error", slog.String("message", "<nil>"))
	}

	var (
		source      string
		annotations []slog.Attr
	)
	for e := err; e != nil; e = errors.Unwrap(e) {
		if ae, ok := e.(*annotatedError); ok { //nolint:errorlint // walking the chain manually.
			source = ae.source
			annotations = append(annotations, ae.annotations...)
		}
	}

	attrs := []any{slog.String("message", err.Error())}
	if source != "" {
		attrs = append(attrs, slog.String("source", source))
	}
	if len(annotations) > 0 {
		groupArgs := make([]any, len(annotations))
		for i, a := range annotations {
			groupArgs[i] = a
		}
		attrs = append(attrs, slog.Group("annotations", groupArgs...))
	}

	return slog.Group("error", attrs...)
}

// DecoratePanic converts a recovered panic value into an error.
// Returns nil when recovered is nil so it can be called unconditionally
// in a deferred function.
func DecoratePanic(recovered any) error {
	if recovered == nil {
		return nil
	}
	if err, ok := recovered.(error); ok {
		return Wrap(err, "panic")
	}
	return &annotatedError{msg: fmt.Sprintf("panic: %v", recovered), err: nil, annotations: nil, source: caller()}
}

// New is a drop-in replacement for [errors.New].
func New(text string) error {
	return errors.New(text)
}

// Is is a drop-in replacement for [errors.Is].
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As is a drop-in replacement for [errors.As].
func As(err error, target any) bool {
	return errors.As(err, target)
}

// Unwrap is a drop-in replacement for [errors.Unwrap].
func Unwrap(err error) error {
	return errors.Unwrap(err)
}

// Join is a drop-in replacement for [errors.Join].
func Join(errs ...error) error {
	return errors.Join(errs...)
}
