package streaming

import (
	"errors"
	"fmt"
)

// Kind classifies a resolution failure. NotFound means "try the next
// option"; Network failures are retryable; Parse failures indicate a
// provider changed its page format and are surfaced distinctly so breakage
// is visible in diagnostics instead of masquerading as a missing title.
type Kind uint8

const (
	KindNotFound Kind = iota + 1
	KindNetwork
	KindParse
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindNetwork:
		return "network error"
	case KindParse:
		return "parse error"
	default:
		return "unknown error"
	}
}

// StreamError is the typed failure every provider and resolver operation
// returns. Nothing in this subsystem is fatal: callers decide presentation.
type StreamError struct {
	Kind Kind
	err  error
}

func (e *StreamError) Error() string {
	return e.Kind.String() + ": " + e.err.Error()
}

func (e *StreamError) Unwrap() error {
	return e.err
}

func newError(kind Kind, format string, args ...any) error {
	return &StreamError{Kind: kind, err: fmt.Errorf(format, args...)}
}

// NotFoundf reports that no acceptable candidate exists. Supports %w.
func NotFoundf(format string, args ...any) error {
	return newError(KindNotFound, format, args...)
}

// Networkf reports a transport failure, timeout or non-2xx status. Supports %w.
func Networkf(format string, args ...any) error {
	return newError(KindNetwork, format, args...)
}

// Parsef reports that a page or payload no longer matches the expected
// structure. Supports %w.
func Parsef(format string, args ...any) error {
	return newError(KindParse, format, args...)
}

func kindOf(err error) Kind {
	var se *StreamError
	if errors.As(err, &se) {
		return se.Kind
	}
	return 0
}

func IsNotFound(err error) bool { return kindOf(err) == KindNotFound }
func IsNetwork(err error) bool  { return kindOf(err) == KindNetwork }
func IsParse(err error) bool    { return kindOf(err) == KindParse }
