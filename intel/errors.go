package intel

import (
	"errors"
	"fmt"
)

var (
	// ErrLookupMiss is returned by the offline database when the file is
	// absent or the address is not mapped
	ErrLookupMiss = errors.New("address not found in the offline database")

	// ErrNotFound is returned when reverse DNS has no answer
	ErrNotFound = errors.New("no reverse DNS record")

	// ErrLookupFailed is returned by the ASN and WHOIS sources
	ErrLookupFailed = errors.New("lookup failed")

	// ErrToolUnavailable is returned when the traceroute executable is missing
	ErrToolUnavailable = errors.New("traceroute executable not available")

	// ErrTimeout is returned when the traceroute exceeds its hop budget
	ErrTimeout = errors.New("traceroute timed out")

	// ErrUnknown is returned when no public IP provider answered
	ErrUnknown = errors.New("public IP unknown")

	// PEBadWhoisDate is a Parse Error (PE) generated when a WHOIS date
	// could not be understood
	PEBadWhoisDate = errors.New("unrecognized WHOIS date")
)

// NetworkError wraps a transport level failure talking to a remote source
type NetworkError struct {
	Source string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: network error: %v", e.Source, e.Err)
}

// Unwrap returns the underlying transport error
func (e *NetworkError) Unwrap() error { return e.Err }

// APIError is returned when a remote source answered but reported a
// non-success status
type APIError struct {
	Source  string
	Status  string
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: api returned status %q", e.Source, e.Status)
	}
	return fmt.Sprintf("%s: api returned status %q: %s", e.Source, e.Status, e.Message)
}
