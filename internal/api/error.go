package api

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies a failed backend call.
type ErrorKind string

const (
	// KindNetwork covers transport failures: DNS, refused connections,
	// timeouts, cancelled contexts.
	KindNetwork ErrorKind = "network"
	// KindAPI covers non-2xx responses from the backend.
	KindAPI ErrorKind = "api"
	// KindDecode covers 2xx responses whose body could not be parsed.
	KindDecode ErrorKind = "decode"
)

// Error is the typed failure returned by every Client method. Callers match
// on Kind instead of probing optional response fields.
type Error struct {
	Kind    ErrorKind
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Kind == KindAPI && e.Status != 0 {
		return fmt.Sprintf("api: backend returned %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api: %s: %s", e.Kind, e.Message)
}

// UserMessage returns text suitable for direct display in a form. API
// errors carry the backend's own message; everything else gets a generic
// line so transport details never leak into the page.
func (e *Error) UserMessage() string {
	if e.Kind == KindAPI && e.Message != "" {
		return e.Message
	}
	return "An unexpected error occurred."
}

// AsError unwraps err into an *Error when possible.
func AsError(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// apiMessage is the duck-typed error body most backend handlers produce.
type apiMessage struct {
	Message string `json:"message"`
}

func statusError(status int, message string) *Error {
	if message == "" {
		message = http.StatusText(status)
	}
	return &Error{Kind: KindAPI, Status: status, Message: message}
}
