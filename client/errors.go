package client

import (
	"errors"
	"fmt"
)

var (
	// ErrIncompleteFilter is returned when a filter is submitted with an empty
	// column, operator, or whitespace-only value. No request is issued.
	ErrIncompleteFilter = errors.New("filter requires column, operator and a non-blank value")

	// ErrAuthRequired is returned when no token is available or the server
	// answered 401/403. The registered auth failure handler has already run.
	ErrAuthRequired = errors.New("authentication required")

	// ErrNoSession is returned when an operation targets a dataset that was
	// never expanded or has been collapsed.
	ErrNoSession = errors.New("no active session for dataset")
)

// DegradedError reports that remote data could not be fetched and fixture data
// was substituted so the caller still has something to show.
type DegradedError struct {
	Err error
}

func (e *DegradedError) Error() string {
	return fmt.Sprintf("remote data unavailable, showing fixture data: %v", e.Err)
}

func (e *DegradedError) Unwrap() error { return e.Err }

// IsDegraded reports whether err only signals fixture substitution.
func IsDegraded(err error) bool {
	var de *DegradedError
	return errors.As(err, &de)
}
