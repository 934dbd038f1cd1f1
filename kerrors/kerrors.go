// Package kerrors implements a kind-tagged error model: a small set
// of error kinds, each with fixed CLI exit-code mapping, built the way
// github.com/grailbio/base/errors is conventionally used elsewhere
// (errors.E(...)/errors.Errorf(...), kind-matching via errors.Is) — see
// DESIGN.md for why this is a local reimplementation rather than a direct
// subclass of that package.
package kerrors

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies an error by kind, independent of its message.
type Kind uint8

const (
	// Other is the zero value: an error with no specific kind. ExitCode gives
	// it its own code, distinct from Internal's.
	Other Kind = iota
	// Usage is an invalid or missing CLI/API argument.
	Usage
	// IO is a failure accessing an external source.
	IO
	// NotFound is a missing file or reference.
	NotFound
	// Security is a failed access-control or permission check.
	Security
	// DataFormat is malformed input.
	DataFormat
	// AnalysisLimit is a bounded resource exhausted during analysis.
	AnalysisLimit
	// Internal is an impossible condition; the run aborts.
	Internal
	// Interrupted marks cooperative cancellation.
	Interrupted
)

func (k Kind) String() string {
	switch k {
	case Usage:
		return "usage"
	case IO:
		return "io"
	case NotFound:
		return "not-found"
	case Security:
		return "security"
	case DataFormat:
		return "data-format"
	case AnalysisLimit:
		return "analysis-limit"
	case Internal:
		return "internal"
	case Interrupted:
		return "interrupted"
	default:
		return "other"
	}
}

// ExitCode returns the process exit code for k.
func (k Kind) ExitCode() int {
	switch k {
	case Usage:
		return 1
	case IO:
		return 2
	case Security:
		return 3
	case NotFound:
		return 4
	case DataFormat:
		return 5
	case AnalysisLimit:
		return 8
	case Interrupted:
		return 7
	case Internal:
		return 98
	default:
		return 99
	}
}

// Error is a tagged error: a Kind, an argument list rendered into the
// message (mirroring errors.E(...)'s variadic construction style), and an
// optional wrapped cause.
type Error struct {
	Kind  Kind
	Args  []interface{}
	Cause error
}

func (e *Error) Error() string {
	parts := make([]string, 0, len(e.Args)+1)
	for _, a := range e.Args {
		if err, ok := a.(error); ok {
			parts = append(parts, err.Error())
			continue
		}
		parts = append(parts, fmt.Sprint(a))
	}
	msg := strings.Join(parts, ": ")
	if e.Cause != nil {
		if msg == "" {
			return e.Cause.Error()
		}
		return msg + ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap exposes the wrapped cause, if any, to errors.Is/errors.As.
func (e *Error) Unwrap() error { return e.Cause }

// E builds an Error from a Kind followed by any number of arguments: plain
// values are joined into the message; at most one argument may be an error,
// which becomes the wrapped Cause. Mirrors the call shape of
// grailbio/base/errors.E used elsewhere in this codebase's lineage
// (encoding/fasta/index.go, encoding/fastq/downsample.go).
func E(kind Kind, args ...interface{}) *Error {
	e := &Error{Kind: kind}
	for _, a := range args {
		if err, ok := a.(error); ok && e.Cause == nil {
			e.Cause = err
			continue
		}
		e.Args = append(e.Args, a)
	}
	return e
}

// Errorf formats a message with Kind Other, in the style of
// grailbio/base/errors.Errorf (encoding/fasta/fasta.go).
func Errorf(format string, args ...interface{}) *Error {
	return &Error{Kind: Other, Args: []interface{}{fmt.Sprintf(format, args...)}}
}

// Is reports whether err (or any error it wraps) has the given Kind.
func Is(kind Kind, err error) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			if e.Kind == kind {
				return true
			}
			err = e.Cause
			continue
		}
		err = errors.Unwrap(err)
	}
	return false
}

// KindOf returns the Kind of err, or Other if err is not (or does not wrap)
// a *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Other
}
