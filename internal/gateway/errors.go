package gateway

import (
	"fmt"
	"net/http"
)

// Error kinds produced by the client itself. Kinds reported by the server
// (not_found, validation, ...) are passed through unchanged.
const (
	KindNetwork = "network"
	KindDecode  = "decode"
	KindHTTP    = "http"
)

// Error is returned by every Client method that fails.
//
// Message is the text the server put in its error body. It is empty for
// transport failures, undecodable bodies and error bodies that do not carry
// a kind and a message, so callers can fall back to their own wording.
type Error struct {
	// Status is the HTTP status code, or 0 when no response was received.
	Status int

	kind    string
	message string
	err     error
}

func newError(kind, message string, status int, err error) *Error {
	return &Error{Status: status, kind: kind, message: message, err: err}
}

// Kind reports the error category.
func (e *Error) Kind() string { return e.kind }

// Message returns the server supplied message, if any.
func (e *Error) Message() string { return e.message }

func (e *Error) Error() string {
	msg := e.message
	if msg == "" && e.Status != 0 {
		msg = http.StatusText(e.Status)
	}
	switch {
	case e.err != nil && msg != "":
		return fmt.Sprintf("gateway %s: %s: %v", e.kind, msg, e.err)
	case e.err != nil:
		return fmt.Sprintf("gateway %s: %v", e.kind, e.err)
	default:
		return fmt.Sprintf("gateway %s: %s", e.kind, msg)
	}
}

func (e *Error) Unwrap() error { return e.err }
