package backend

import (
	"errors"
	"fmt"
)

// ErrMissingField is wrapped by a TransportError when a successful
// response lacks a field the client cannot do without.
var ErrMissingField = errors.New("response missing required field")

// ApplicationError means the backend answered but reported a failure
// (success:false). Reason is the server-supplied message, shown verbatim.
type ApplicationError struct {
	Op     string
	Status int
	Reason string
}

func (e *ApplicationError) Error() string {
	return fmt.Sprintf("%s: backend error (%d): %s", e.Op, e.Status, e.Reason)
}

// TransportError means the exchange itself failed: network, DNS, timeout,
// an undecodable body, or a response missing required fields. The cause is
// for diagnostics only.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: transport error: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsApplicationError reports whether err (or any error in its chain) is an
// ApplicationError.
func IsApplicationError(err error) bool {
	var appErr *ApplicationError
	return errors.As(err, &appErr)
}

// IsTransportError reports whether err (or any error in its chain) is a
// TransportError.
func IsTransportError(err error) bool {
	var tErr *TransportError
	return errors.As(err, &tErr)
}
