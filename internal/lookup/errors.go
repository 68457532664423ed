package lookup

import (
	"errors"
	"fmt"
)

// maxBodyInMessage bounds how much of an upstream body Error() repeats.
// StatusError.Body always keeps the full body.
const maxBodyInMessage = 256

// TransportError means no response was obtained (DNS, connect, timeout, body read).
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("request to %s failed: %v", e.URL, e.Err)
}

// Unwrap exposes the underlying cause to errors.Is and errors.As.
func (e *TransportError) Unwrap() error { return e.Err }

// Cause exposes the underlying cause to github.com/pkg/errors.Cause.
func (e *TransportError) Cause() error { return e.Err }

// StatusError means the service answered with a status other than 200.
type StatusError struct {
	URL  string
	Code int
	Body string
}

func (e *StatusError) Error() string {
	body := e.Body
	if len(body) > maxBodyInMessage {
		body = body[:maxBodyInMessage] + "..."
	}
	return fmt.Sprintf("unexpected status %d from %s: %q", e.Code, e.URL, body)
}

// ParseError means the service answered 200 but the body did not have the
// expected shape. URL is empty when the value came from an earlier stage.
type ParseError struct {
	URL    string
	Field  string
	Reason string
}

func (e *ParseError) Error() string {
	msg := e.Reason
	if e.Field != "" {
		msg = fmt.Sprintf("field %q %s", e.Field, e.Reason)
	}
	if e.URL == "" {
		return "invalid input: " + msg
	}
	return fmt.Sprintf("invalid response from %s: %s", e.URL, msg)
}

// Error kinds reported by Kind.
const (
	KindTransport = "transport"
	KindStatus    = "status"
	KindParse     = "parse"
	KindUnknown   = "unknown"
)

// Kind classifies err into one of the lookup error kinds.
func Kind(err error) string {
	var (
		te *TransportError
		se *StatusError
		pe *ParseError
	)
	switch {
	case errors.As(err, &te):
		return KindTransport
	case errors.As(err, &se):
		return KindStatus
	case errors.As(err, &pe):
		return KindParse
	default:
		return KindUnknown
	}
}
