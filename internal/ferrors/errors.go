// Package ferrors defines the orchestrator's error taxonomy.
//
// Kinds are not Go types, they are a closed set of tags attached to a single
// error type so every layer of the daemon can classify a failure the same
// way: serialize it to the client, log it, or decide whether it is fatal.
package ferrors

import "fmt"

// Kind classifies an Error for propagation-policy purposes.
type Kind int

const (
	// User covers malformed CLI arguments, network mismatches, amounts out
	// of bounds, unknown offer/swap, duplicate offers.
	User Kind = iota
	// NotReady covers a required worker (KeyManager/Store/Syncer) that has
	// not yet registered with the supervisor.
	NotReady
	// Transport covers bus send failures, spawn failures, bind failures.
	Transport
	// Protocol covers a peer worker reporting a remote hang-up or an
	// unreachable state.
	Protocol
	// Internal covers dispatcher match-table inconsistencies and invariant
	// violations.
	Internal
)

func (k Kind) String() string {
	switch k {
	case User:
		return "User"
	case NotReady:
		return "NotReady"
	case Transport:
		return "Transport"
	case Protocol:
		return "Protocol"
	case Internal:
		return "Internal"
	default:
		return "Unknown"
	}
}

// Error is the orchestrator's error type. It always carries a short
// user-facing Info string in addition to the wrapped cause.
type Error struct {
	Kind  Kind
	Info  string
	Cause error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Info, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Info)
}

func (e *Error) Unwrap() error { return e.Cause }

// New builds an Error with no wrapped cause.
func New(kind Kind, info string) *Error {
	return &Error{Kind: kind, Info: info}
}

// Wrap builds an Error around an existing cause. Returns nil if err is nil.
func Wrap(kind Kind, info string, err error) *Error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Info: info, Cause: err}
}

// Userf is a convenience constructor for a formatted User error.
func Userf(format string, args ...any) *Error {
	return New(User, fmt.Sprintf(format, args...))
}

// NotReadyf is a convenience constructor for a formatted NotReady error.
func NotReadyf(format string, args ...any) *Error {
	return New(NotReady, fmt.Sprintf(format, args...))
}

// As extracts an *Error from err, reporting ok=false if err is not one.
func As(err error) (*Error, bool) {
	fe, ok := err.(*Error)
	return fe, ok
}

// IsFatal reports whether the error kind is one that should bring the whole
// node down rather than just failing the current request: an Internal
// error means some invariant elsewhere has already been violated.
func IsFatal(err error) bool {
	fe, ok := As(err)
	return ok && fe.Kind == Internal
}
