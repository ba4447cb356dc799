package services

import (
	"errors"
	"fmt"
)

var (
	// ErrBusy is returned when an extraction is requested while another one
	// for the same session has not finished.
	ErrBusy = errors.New("an extraction is already running for this session")

	ErrSessionNotFound    = errors.New("session not found")
	ErrCardNotFound       = errors.New("card not found")
	ErrInboxEntryNotFound = errors.New("inbox entry not found")
)

// ConfigurationError reports a missing or unusable credential. The caller
// recovers by supplying a new one.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Reason
}

// UpstreamError reports a failed extraction call or a response that could
// not be read as the expected structure.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream error during %s: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// ValidationError reports bad input caught before any work is done.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation error: " + e.Reason
	}
	return fmt.Sprintf("validation error: %s %s", e.Field, e.Reason)
}

// DocumentError reports a document whose text could not be extracted.
type DocumentError struct {
	Name string
	Err  error
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("could not read document %q: %v", e.Name, e.Err)
}

func (e *DocumentError) Unwrap() error {
	return e.Err
}
