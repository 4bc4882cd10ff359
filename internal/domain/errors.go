package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrSizeLimitExceeded is returned when too many pages are requested from one project.
	ErrSizeLimitExceeded = errors.New("size limit exceeded")
	// ErrTransport is returned when a remote wiki could not be queried.
	ErrTransport = errors.New("transport error")
	// ErrDecode is returned for malformed import tokens.
	ErrDecode = errors.New("malformed collection token")
	// ErrListNotFound is returned when a stored reading list does not exist.
	ErrListNotFound = errors.New("reading list not found")
)

// SizeLimitError reports a project whose requested page count exceeds Limit.
type SizeLimitError struct {
	Project string
	Count   int
	Limit   int
}

func (e *SizeLimitError) Error() string {
	return fmt.Sprintf("%s: %d pages requested for %q, limit is %d", ErrSizeLimitExceeded, e.Count, e.Project, e.Limit)
}

func (e *SizeLimitError) Is(target error) bool {
	return target == ErrSizeLimitExceeded
}

// TransportError wraps a failed remote query.
// Status is the HTTP status code, or 0 when no response was received.
type TransportError struct {
	Endpoint string
	Status   int
	Err      error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: %s returned status %d: %v", ErrTransport, e.Endpoint, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", ErrTransport, e.Endpoint, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}
