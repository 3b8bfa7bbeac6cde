package h1

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies failures of the parsing and relaying primitives.
type Kind int

const (
	StreamNotReadable Kind = iota + 1
	StreamNotWritable
	SizeLimitExceeded
	InvalidData
	InvalidHeader
	MissingHeader
)

func (k Kind) String() string {
	switch k {
	case StreamNotReadable:
		return "stream not readable"
	case StreamNotWritable:
		return "stream not writable"
	case SizeLimitExceeded:
		return "size limit exceeded"
	case InvalidData:
		return "invalid data"
	case InvalidHeader:
		return "invalid header"
	case MissingHeader:
		return "missing header"
	default:
		return fmt.Sprintf("unknown error kind: %d", int(k))
	}
}

// Status returns the response code a server would answer with when a message
// fails with this kind. Transport faults map to 502 as the peer is gone anyway.
func (k Kind) Status() int {
	switch k {
	case SizeLimitExceeded:
		return http.StatusRequestEntityTooLarge
	case InvalidData, InvalidHeader, MissingHeader:
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}

// Error is returned by every primitive of the package. Limit is set for
// SizeLimitExceeded, Header for InvalidHeader and MissingHeader.
type Error struct {
	Kind   Kind
	Limit  int
	Header string

	underlying error
}

func (e *Error) Error() string {
	var msg string
	switch e.Kind {
	case SizeLimitExceeded:
		msg = fmt.Sprintf("%s (limit %d bytes)", e.Kind, e.Limit)
	case InvalidHeader, MissingHeader:
		msg = fmt.Sprintf("%s: %s", e.Kind, e.Header)
	default:
		msg = e.Kind.String()
	}

	if e.underlying != nil {
		return fmt.Sprintf("%s (underlying: %v)", msg, e.underlying)
	}

	return msg
}

func (e *Error) Unwrap() error {
	return e.underlying
}

// Is reports whether target is an *Error of the same kind, so the sentinels below
// match errors carrying any limit or header name.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

var (
	ErrStreamNotReadable = &Error{Kind: StreamNotReadable}
	ErrStreamNotWritable = &Error{Kind: StreamNotWritable}
	ErrSizeLimitExceeded = &Error{Kind: SizeLimitExceeded}
	ErrInvalidData       = &Error{Kind: InvalidData}
	ErrInvalidHeader     = &Error{Kind: InvalidHeader}
	ErrMissingHeader     = &Error{Kind: MissingHeader}
)

func errNotReadable(err error) error {
	return &Error{Kind: StreamNotReadable, underlying: err}
}

func errNotWritable(err error) error {
	return &Error{Kind: StreamNotWritable, underlying: err}
}

func errSizeLimit(limit int) error {
	return &Error{Kind: SizeLimitExceeded, Limit: limit}
}

func errInvalidHeader(name string) error {
	return &Error{Kind: InvalidHeader, Header: name}
}

// ErrorKind extracts the kind of err, or 0 if no *Error is found in its chain.
func ErrorKind(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}

	return 0
}
