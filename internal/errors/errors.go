// Package errors defines the error taxonomy shared by the API client,
// the token store and the session manager.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// GenericMessage is surfaced whenever no server message is available.
const GenericMessage = "An error occurred, please try again"

// Kind classifies an APIError.
type Kind string

const (
	// KindNetwork means no response was received.
	KindNetwork Kind = "network"
	// KindServer means the backend answered with a non-2xx status.
	KindServer Kind = "server"
	// KindStorage means local persistence failed.
	KindStorage Kind = "storage"
	// KindMalformed means the response could not be decoded.
	KindMalformed Kind = "malformed"
)

var (
	ErrStoreNotFound      = errors.New("store not found")
	ErrMissingCredentials = errors.New("phone and password are required")
	ErrStaleSession       = errors.New("session changed while request was in flight")
	ErrNoActiveStore      = errors.New("no active store selected")
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrAlreadyLoggedIn    = errors.New("already authenticated; log out first")
)

// APIError is the single error shape returned across package boundaries.
type APIError struct {
	Kind    Kind
	Status  int
	Message string
	Body    []byte
	Err     error
}

func (e *APIError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s error (status %d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Kind, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// Network wraps a transport failure.
func Network(err error) *APIError {
	return &APIError{Kind: KindNetwork, Message: GenericMessage, Err: err}
}

// Server builds an error for a rejected request. An empty message falls back
// to GenericMessage.
func Server(status int, message string, body []byte) *APIError {
	if message == "" {
		message = GenericMessage
	}
	return &APIError{Kind: KindServer, Status: status, Message: message, Body: body}
}

// Storage wraps a local persistence failure.
func Storage(op string, err error) *APIError {
	return &APIError{Kind: KindStorage, Message: op, Err: err}
}

// Malformed wraps a decoding failure.
func Malformed(err error) *APIError {
	return &APIError{Kind: KindMalformed, Message: GenericMessage, Err: err}
}

// Normalize converts any error into an APIError. Errors that are already
// APIErrors pass through; anything else becomes a malformed error carrying
// the generic message.
func Normalize(err error) *APIError {
	if err == nil {
		return nil
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return Malformed(err)
}

// UserMessage returns the message a caller should display for err.
func UserMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return GenericMessage
}

// IsUnauthorized reports whether err is a 401 from the backend.
func IsUnauthorized(err error) bool {
	return StatusOf(err) == http.StatusUnauthorized
}

// IsKind reports whether err is an APIError of the given kind.
func IsKind(err error, kind Kind) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Kind == kind
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}
