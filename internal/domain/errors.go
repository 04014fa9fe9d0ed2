package domain

import (
	"fmt"
	"strings"
)

// ConfigurationError reports required settings that are missing.
// It is raised before any network call.
type ConfigurationError struct {
	Missing []string
}

func (e *ConfigurationError) Error() string {
	return "missing configuration: " + strings.Join(e.Missing, ", ")
}

// UpstreamAuthError wraps a failed credential exchange.
type UpstreamAuthError struct {
	Err error
}

func (e *UpstreamAuthError) Error() string {
	return fmt.Sprintf("credential exchange failed: %v", e.Err)
}

func (e *UpstreamAuthError) Unwrap() error { return e.Err }

// RangeAttempt records the outcome of one candidate range lookup.
type RangeAttempt struct {
	Range  string
	URL    string
	Status int   // HTTP status, 0 when the request never completed
	Rows   int   // rows returned, header included
	Err    error // nil when rows were found or the range was simply empty
}

// Found reports whether the attempt produced data.
func (a RangeAttempt) Found() bool {
	return a.Err == nil && a.Rows > 0
}

// DataUnavailableError is returned when every candidate range came back empty or failed.
type DataUnavailableError struct {
	Attempts []RangeAttempt
}

func (e *DataUnavailableError) Error() string {
	return fmt.Sprintf("no candidate range returned data (%d tried)", len(e.Attempts))
}
