// Package errors carries structured failures across the pricing service.
// AppError pairs a stable ErrorCode with a client-safe message; handlers turn
// the code into an HTTP status and logs keep the wrapped cause.
package errors

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

const maxFrames = 32

// callers renders the stack above the constructor that called it, skipping
// runtime frames.
func callers() string {
	pcs := make([]uintptr, maxFrames)
	n := runtime.Callers(3, pcs)
	frames := runtime.CallersFrames(pcs[:n])

	var b strings.Builder
	for more := n > 0; more; {
		var f runtime.Frame
		f, more = frames.Next()
		if strings.HasPrefix(f.Function, "runtime.") {
			continue
		}
		fmt.Fprintf(&b, "\n\t%s:%d %s", f.File, f.Line, f.Function)
	}
	return b.String()
}

// AppError is a coded error.  Message is safe to return to clients; Detail
// names the offending entity (service id, rule key).  Stack is for logs only.
//
//	return errors.New(errors.ErrCodeRuleInvalid, "amount must not be negative").WithDetail(key)
//	return errors.Wrap(err, errors.ErrCodeDatabaseError, "list pricing rules")
type AppError struct {
	Code    ErrorCode
	Message string
	Detail  string
	Cause   error
	Stack   string
}

func (e *AppError) Error() string {
	if e.Detail == "" {
		return "[" + e.Code.String() + "] " + e.Message
	}
	return "[" + e.Code.String() + "] " + e.Message + ": " + e.Detail
}

func (e *AppError) Unwrap() error { return e.Cause }

// WithDetail returns a copy carrying detail.  Nil stays nil.
func (e *AppError) WithDetail(detail string) *AppError {
	if e == nil {
		return nil
	}
	cp := *e
	cp.Detail = detail
	return &cp
}

// WithCause returns a copy wrapping err.  Nil stays nil.
func (e *AppError) WithCause(err error) *AppError {
	if e == nil {
		return nil
	}
	cp := *e
	cp.Cause = err
	return &cp
}

func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message, Stack: callers()}
}

// Wrap attaches code and message to err, or returns nil for a nil err.
// CodeUnknown inherits the code of an AppError already in the chain.
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}
	if code == CodeUnknown {
		code = GetCode(err)
	}
	return &AppError{Code: code, Message: message, Cause: err, Stack: callers()}
}

// NotFound and InvalidParam are the two shapes request validation needs most.
func NotFound(message string) *AppError {
	return &AppError{Code: CodeNotFound, Message: message, Stack: callers()}
}

func InvalidParam(message string) *AppError {
	return &AppError{Code: CodeInvalidParam, Message: message, Stack: callers()}
}

// walk calls match on every AppError in err's chain until it returns true.
func walk(err error, match func(*AppError) bool) bool {
	for ; err != nil; err = errors.Unwrap(err) {
		if ae, ok := err.(*AppError); ok && match(ae) {
			return true
		}
	}
	return false
}

// IsCode reports whether any AppError in err's chain carries code.
func IsCode(err error, code ErrorCode) bool {
	return walk(err, func(ae *AppError) bool { return ae.Code == code })
}

// IsNotFound matches the generic not-found code and both pricing lookups
// that mean the same thing.
func IsNotFound(err error) bool {
	return walk(err, func(ae *AppError) bool {
		switch ae.Code {
		case CodeNotFound, ErrCodeRuleNotFound, ErrCodeServiceUnknown:
			return true
		}
		return false
	})
}

// GetCode returns the outermost AppError code, CodeOK for nil and
// CodeUnknown for foreign errors.
func GetCode(err error) ErrorCode {
	if err == nil {
		return CodeOK
	}
	var ae *AppError
	if errors.As(err, &ae) {
		// unset codes on wrapped errors fall through to the cause
		if ae.Code == CodeUnknown && ae.Cause != nil {
			return GetCode(ae.Cause)
		}
		return ae.Code
	}
	return CodeUnknown
}

//Personal.AI order the ending
