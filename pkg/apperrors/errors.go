package apperrors

import "errors"

var (
	ErrNotFound = errors.New("not found")

	// ErrWaitTimeout means a peer held the generation lock and no article
	// appeared before the wait deadline. Distinct from a generation failure.
	ErrWaitTimeout = errors.New("timed out waiting for peer generation")
)
