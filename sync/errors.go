package sync

import (
	"fmt"
)

// ConfigurationError is returned when the bridge is not configured well enough
// to talk to Recruit CRM. No request is attempted.
type ConfigurationError struct {
	Msg string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration: %s", e.Msg)
}

// TransportError wraps DNS, connect, timeout and body read failures.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport: %s %s: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// RemoteError is returned when Recruit CRM answers with a non-2xx status.
type RemoteError struct {
	Method     string
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("recruitcrm: %s %s returned %d: %s", e.Method, e.Endpoint, e.StatusCode, e.Body)
}

// IdentifierExtractionError is returned when a 2xx response carries no usable id or slug.
type IdentifierExtractionError struct {
	Entity string
	Body   string
}

func (e *IdentifierExtractionError) Error() string {
	return fmt.Sprintf("no identifier found for %s in response: %s", e.Entity, e.Body)
}

// DateParseError is returned by NormalizeDate. Callers log it and carry on with an empty value.
type DateParseError struct {
	Value string
	Err   error
}

func (e *DateParseError) Error() string {
	return fmt.Sprintf("failed to parse date %q: %v", e.Value, e.Err)
}

func (e *DateParseError) Unwrap() error { return e.Err }

// GateRejection describes why a submission was not processed.
// It is not an error, rejected submissions are a silent no-op for the form host.
type GateRejection struct {
	Reason string
}

func (r GateRejection) String() string {
	return r.Reason
}
