package api

import (
	"errors"
	"fmt"
)

// ErrAuthExpired is returned when the API rejects the session's credential.
// The controller has already logged out by the time a caller sees it.
var ErrAuthExpired = errors.New("session expired, please log in again")

// ValidationError is a local, pre-network input failure.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// AuthRejected is a non-success response to login or signup.
type AuthRejected struct {
	Status  int
	Message string
}

func (e *AuthRejected) Error() string {
	return e.Message
}

// NetworkFailure means the request never completed. Retrying may succeed.
type NetworkFailure struct {
	Method string
	Path   string
	Err    error
}

func (e *NetworkFailure) Error() string {
	return fmt.Sprintf("%s %s: network failure: %v", e.Method, e.Path, e.Err)
}

func (e *NetworkFailure) Unwrap() error {
	return e.Err
}

// RemoteError is any other non-success response to an authenticated call,
// or a success response whose body could not be decoded.
type RemoteError struct {
	Status  int
	Message string
	Err     error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s (HTTP %d)", e.Message, e.Status)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsNetwork reports whether err is a NetworkFailure.
func IsNetwork(err error) bool {
	var n *NetworkFailure
	return errors.As(err, &n)
}
