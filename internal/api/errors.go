package api

import (
	"errors"
	"fmt"
)

// TransportError means the request never produced a usable response:
// connection refused, timeout, cancelled context or an unreadable body.
type TransportError struct {
	Method string
	Path   string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ServerError means the backend answered with a non-2xx status or an
// envelope whose success flag is false.
type ServerError struct {
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	if e.Status == 0 {
		return e.Message
	}
	return fmt.Sprintf("server error %d: %s", e.Status, e.Message)
}

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	var se *ServerError
	return errors.As(err, &se) && se.Status == 404
}

// IsTransport reports whether err is a transport failure.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

type surfacedError struct{ err error }

func (e *surfacedError) Error() string { return e.err.Error() }
func (e *surfacedError) Unwrap() error { return e.err }

// MarkSurfaced records that err has already been shown to the user, so outer
// error boundaries log it without notifying a second time.
func MarkSurfaced(err error) error {
	if err == nil || IsSurfaced(err) {
		return err
	}
	return &surfacedError{err: err}
}

// IsSurfaced reports whether err went through MarkSurfaced.
func IsSurfaced(err error) bool {
	var se *surfacedError
	return errors.As(err, &se)
}

// UserMessage returns the text shown to the user for an API error.
func UserMessage(err error) string {
	var se *ServerError
	if errors.As(err, &se) && se.Message != "" {
		return se.Message
	}
	if IsTransport(err) {
		return "Cannot reach the server"
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
