// Package codecerrors provides structured error handling for the Avro/Parquet
// codec with error categorization, rich context, and stack traces.
//
// The codec distinguishes three failure classes:
//
//   - ErrorTypeSchema: the logical schema cannot be translated to a Parquet
//     schema. Raised before any record is written or read.
//   - ErrorTypeValue: a record instance violates its schema at write time.
//     Fatal for the current record only; no partial record reaches the sink.
//   - ErrorTypeConversion: a logical-type converter rejected a value or its
//     physical bytes. Surfaces as a per-record failure on either path.
//
// Errors carry key-value details (most commonly the offending field path) and
// the call stack captured at creation, and compose with errors.Is/errors.As
// through Unwrap.
package codecerrors

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// ErrorType categorizes a codec error.
type ErrorType string

const (
	// ErrorTypeSchema represents an untranslatable logical schema
	ErrorTypeSchema ErrorType = "schema"
	// ErrorTypeValue represents a record that violates its schema at write time
	ErrorTypeValue ErrorType = "value"
	// ErrorTypeConversion represents a logical-type conversion failure
	ErrorTypeConversion ErrorType = "conversion"
	// ErrorTypeConfig represents an invalid option combination
	ErrorTypeConfig ErrorType = "config"
	// ErrorTypeInternal represents an internal invariant violation
	ErrorTypeInternal ErrorType = "internal"
)

// Error is a structured codec error with context.
type Error struct {
	Type    ErrorType
	Message string
	Cause   error
	Details map[string]interface{}
	Stack   []StackFrame
}

// StackFrame is a single frame of the call stack captured at error creation.
type StackFrame struct {
	Function string
	File     string
	Line     int
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/errors.As chains.
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithDetail attaches a key-value detail to the error. Chainable.
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithFieldPath attaches the dotted path of the offending schema field,
// e.g. "outer.items.element".
func (e *Error) WithFieldPath(path []string) *Error {
	return e.WithDetail("field_path", strings.Join(path, "."))
}

// FieldPath returns the attached field path, if any.
func (e *Error) FieldPath() string {
	if e.Details == nil {
		return ""
	}
	p, _ := e.Details["field_path"].(string)
	return p
}

// New creates a new error of the given type, capturing the call stack.
func New(errType ErrorType, message string) *Error {
	return &Error{
		Type:    errType,
		Message: message,
		Stack:   captureStack(2),
	}
}

// Newf creates a new error with a formatted message.
func Newf(errType ErrorType, format string, args ...interface{}) *Error {
	return &Error{
		Type:    errType,
		Message: fmt.Sprintf(format, args...),
		Stack:   captureStack(2),
	}
}

// Wrap wraps an existing error with codec context, preserving it as the
// cause. If err is already a structured Error its stack is kept. Returns nil
// for a nil input.
func Wrap(err error, errType ErrorType, message string) *Error {
	if err == nil {
		return nil
	}

	var existing *Error
	if errors.As(err, &existing) {
		return &Error{
			Type:    errType,
			Message: message,
			Cause:   err,
			Stack:   existing.Stack,
		}
	}

	return &Error{
		Type:    errType,
		Message: message,
		Cause:   err,
		Stack:   captureStack(2),
	}
}

// IsType reports whether err is a codec error of the given type.
func IsType(err error, errType ErrorType) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Type == errType
}

func captureStack(skip int) []StackFrame {
	const maxFrames = 32
	frames := make([]StackFrame, 0, maxFrames)

	for i := skip; i < maxFrames+skip; i++ {
		pc, file, line, ok := runtime.Caller(i)
		if !ok {
			break
		}

		fn := runtime.FuncForPC(pc)
		if fn == nil {
			continue
		}

		frames = append(frames, StackFrame{
			Function: fn.Name(),
			File:     file,
			Line:     line,
		})
	}

	return frames
}
