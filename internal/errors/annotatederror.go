// Package errors provides error wrapping with slog annotations and the
// callsite of the wrap, plus re-exports of the standard library helpers so
// callers only need one errors import.
package errors

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
	"strings"
)

type annotatedError struct {
	msg         string
	wrapped     error
	annotations []slog.Attr
	source      string
}

func (e *annotatedError) Error() string {
	if e.wrapped == nil {
		return e.msg
	}
	return e.msg + ": " + e.wrapped.Error()
}

func (e *annotatedError) Unwrap() error {
	return e.wrapped
}

// NewSentinel creates an error intended for package-level sentinel values
// compared with Is.
func NewSentinel(msg string) error {
	return &annotatedError{msg: msg}
}

// Wrap annotates err with a message and optional slog attributes. The
// callsite of Wrap is remembered and exposed through SlogError.
func Wrap(err error, msg string, annotations ...slog.Attr) error {
	return &annotatedError{
		msg:         msg,
		wrapped:     err,
		annotations: annotations,
		source:      callerSource(1),
	}
}

// DecoratePanic converts a recovered panic value into an error whose source
// points at the panicking line.
func DecoratePanic(recovered any) error {
	return &annotatedError{
		msg:    fmt.Sprintf("panic: %v", recovered),
		source: panicSource(),
	}
}

// SlogError renders err as a structured attribute with the error message,
// the outermost wrap callsite, and all annotations gathered from the error
// tree.
func SlogError(err error) slog.Attr {
	message := "<nil>"
	if err != nil {
		message = err.Error()
	}

	var (
		annotations []slog.Attr
		source      string
	)
	collect(err, &annotations, &source)

	attrs := []any{slog.String("message", message)}
	if source != "" {
		attrs = append(attrs, slog.String("source", source))
	}
	if len(annotations) > 0 {
		groupArgs := make([]any, 0, len(annotations))
		for _, annotation := range annotations {
			groupArgs = append(groupArgs, annotation)
		}
		attrs = append(attrs, slog.Group("annotations", groupArgs...))
	}

	return slog.Group("error", attrs...)
}

// collect walks the error tree gathering annotations. The source of the
// outermost annotated error wins.
func collect(err error, annotations *[]slog.Attr, source *string) {
	if err == nil {
		return
	}
	if annotated, ok := err.(*annotatedError); ok {
		if *source == "" && annotated.source != "" {
			*source = annotated.source
		}
		*annotations = append(*annotations, annotated.annotations...)
	}
	switch unwrappable := err.(type) {
	case interface{ Unwrap() error }:
		collect(unwrappable.Unwrap(), annotations, source)
	case interface{ Unwrap() []error }:
		for _, wrapped := range unwrappable.Unwrap() {
			collect(wrapped, annotations, source)
		}
	}
}

// callerSource returns "file.go:line" for the frame skip levels above the
// caller of callerSource.
func callerSource(skip int) string {
	var pcs [1]uintptr
	if runtime.Callers(skip+2, pcs[:]) == 0 {
		return ""
	}
	frame, _ := runtime.CallersFrames(pcs[:]).Next()
	return fmt.Sprintf("%s:%d", filepath.Base(frame.File), frame.Line)
}

// panicSource walks the stack past runtime.gopanic to find the line that
// panicked. It falls back to the immediate caller when there is no panic in
// flight.
func panicSource() string {
	const maxDepth = 64
	var pcs [maxDepth]uintptr
	n := runtime.Callers(2, pcs[:])
	if n == 0 {
		return ""
	}

	fallback := ""
	frames := runtime.CallersFrames(pcs[:n])
	seenPanic := false
	for {
		frame, more := frames.Next()
		if fallback == "" {
			fallback = fmt.Sprintf("%s:%d", filepath.Base(frame.File), frame.Line)
		}
		if seenPanic && !strings.HasPrefix(frame.Function, "runtime.") {
			return fmt.Sprintf("%s:%d", filepath.Base(frame.File), frame.Line)
		}
		if frame.Function == "runtime.gopanic" {
			seenPanic = true
		}
		if !more {
			return fallback
		}
	}
}

// New returns an error that formats as the given text.
func New(text string) error {
	return errors.New(text)
}

// Is reports whether any error in err's tree matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's tree that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// Unwrap returns the result of calling the Unwrap method on err.
func Unwrap(err error) error {
	return errors.Unwrap(err)
}

// Join wraps the given errors into a single error.
func Join(errs ...error) error {
	return errors.Join(errs...)
}
