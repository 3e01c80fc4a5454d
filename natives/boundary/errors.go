package boundary

import (
	"errors"
)

var (
	// ErrInvalidArgument is returned by Create for malformed input (a key that
	// is not 16 bytes). No context is created.
	ErrInvalidArgument = errors.New("boundary: invalid argument")

	// ErrSecurityInitialization is returned by Create when the cipher rejects
	// its parameters. No context is created.
	ErrSecurityInitialization = errors.New("boundary: security initialization failure")

	// ErrDegraded is only ever returned in strict mode. In the default mode the
	// same failures are absorbed by Process; see Adapter.Process.
	ErrDegraded = errors.New("boundary: processing degraded")

	errPrecondition = errors.New("boundary: process precondition violated")
)

// Kind classifies a boundary error for hosts that signal failures with their
// own error types rather than Go errors.
type Kind int32

const (
	KindNone Kind = iota
	KindInvalidArgument
	KindSecurityInitialization
	KindDegraded
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "None"
	case KindInvalidArgument:
		return "InvalidArgument"
	case KindSecurityInitialization:
		return "SecurityInitializationFailure"
	case KindDegraded:
		return "SilentDegradation"
	default:
		return "Unknown"
	}
}

// HostException names the exception class a JVM host raises for k.
func (k Kind) HostException() string {
	switch k {
	case KindInvalidArgument:
		return "java/lang/IllegalArgumentException"
	case KindSecurityInitialization:
		return "java/security/GeneralSecurityException"
	case KindDegraded:
		return "java/lang/IllegalStateException"
	default:
		return ""
	}
}

// KindOf maps err onto its Kind.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrInvalidArgument):
		return KindInvalidArgument
	case errors.Is(err, ErrSecurityInitialization):
		return KindSecurityInitialization
	default:
		return KindDegraded
	}
}
