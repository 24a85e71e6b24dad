package domain

import (
	"errors"
	"fmt"
)

// ErrNotConfigured is returned when an endpoint URL is empty
var ErrNotConfigured = errors.New("endpoint not configured")

// ErrEmptyPayload is returned when the whitelist body decodes to nothing
var ErrEmptyPayload = errors.New("empty payload")

// TransportError wraps connection, DNS and timeout failures
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// StatusError is a non-2xx HTTP response
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected HTTP status %d", e.Code)
}

// FormatError is a malformed JSON body
type FormatError struct {
	Err error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("malformed payload: %v", e.Err)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// Kind names the failure class of an error
type Kind string

const (
	KindNone          Kind = ""
	KindConfiguration Kind = "configuration"
	KindTransport     Kind = "transport"
	KindProtocol      Kind = "protocol"
	KindFormat        Kind = "format"
	KindUnknown       Kind = "unknown"
)

// ErrorKind classifies err into one of the failure kinds
func ErrorKind(err error) Kind {
	if err == nil {
		return KindNone
	}

	var transportErr *TransportError
	var statusErr *StatusError
	var formatErr *FormatError

	switch {
	case errors.Is(err, ErrNotConfigured):
		return KindConfiguration
	case errors.As(err, &transportErr):
		return KindTransport
	case errors.As(err, &statusErr):
		return KindProtocol
	case errors.Is(err, ErrEmptyPayload), errors.As(err, &formatErr):
		return KindFormat
	default:
		return KindUnknown
	}
}
