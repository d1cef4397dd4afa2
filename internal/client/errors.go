package client

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrOffline matches every error produced when the server could not be
	// used and the cache fell back to its local snapshot.
	ErrOffline = errors.New("server unavailable")

	// ErrUnsuccessful is returned when a response envelope reports
	// success:false despite a 2xx status.
	ErrUnsuccessful = errors.New("request was not successful")
)

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether err is a 404 from the server.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// isClientError reports whether err is a 4xx response, i.e. the server
// understood the request and refused it.
func isClientError(err error) bool {
	if errors.Is(err, ErrUnsuccessful) {
		return true
	}
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode >= 400 && apiErr.StatusCode < 500
}

// OfflineError wraps the failure that forced the cache onto its snapshot.
// Snapshot is set when reading the snapshot failed as well.
type OfflineError struct {
	Cause    error
	Snapshot error
}

func (e *OfflineError) Error() string {
	if e.Snapshot != nil {
		return fmt.Sprintf("offline: %v (snapshot: %v)", e.Cause, e.Snapshot)
	}
	return fmt.Sprintf("offline: %v", e.Cause)
}

// Is makes errors.Is(err, ErrOffline) hold for any OfflineError.
func (e *OfflineError) Is(target error) bool {
	return target == ErrOffline
}

func (e *OfflineError) Unwrap() []error {
	if e.Snapshot != nil {
		return []error{e.Cause, e.Snapshot}
	}
	return []error{e.Cause}
}
