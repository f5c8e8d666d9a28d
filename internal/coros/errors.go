package coros

import (
	"errors"
	"fmt"
	"strings"
)

const (
	resultOK = "0000"

	// ResultInvalidCredentials is returned when the access token is missing or expired.
	ResultInvalidCredentials = "1030"
	// resultStaleVersion is returned for schedule mutations carrying an outdated
	// pbVersion. Not documented by the backend, taken from observed rejections.
	resultStaleVersion = "1216"
)

// APIError is a business-level rejection: the HTTP exchange succeeded but the
// response envelope carries a non-success result code.
type APIError struct {
	Result  string
	Message string
	APICode string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (result=%s, apiCode=%s): %s", e.Result, e.APICode, e.Message)
}

// IsVersionConflict reports whether err is a backend rejection caused by a stale
// pbVersion. Such submissions are retryable, but only after refetching the plan
// and recomputing the diff.
func IsVersionConflict(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	if apiErr.Result == resultStaleVersion {
		return true
	}
	return strings.Contains(strings.ToLower(apiErr.Message), "version")
}

// UnknownOutcomeError wraps a transport failure (network error, timeout,
// cancellation) that happened during a mutating call. The mutation may or may
// not have been applied on the backend, so the caller must re-query the plan
// state before retrying; blind retry risks duplicate application.
type UnknownOutcomeError struct {
	Endpoint string
	Err      error
}

func (e *UnknownOutcomeError) Error() string {
	return fmt.Sprintf("outcome of %s unknown, re-query before retrying: %s", e.Endpoint, e.Err)
}

func (e *UnknownOutcomeError) Unwrap() error {
	return e.Err
}

// IsUnknownOutcome reports whether err represents a mutating call whose effect
// on the backend could not be determined.
func IsUnknownOutcome(err error) bool {
	var uoErr *UnknownOutcomeError
	return errors.As(err, &uoErr)
}
