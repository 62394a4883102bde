package domain

import "errors"

var (
	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrNotFound is returned when a channel, block or index entry does not exist
	ErrNotFound = errors.New("not found")

	// ErrArenaAPIFailure is returned when an Are.na request fails
	ErrArenaAPIFailure = errors.New("arena API request failed")

	// ErrModelFailure is returned when the image/text model request fails
	ErrModelFailure = errors.New("model request failed")

	// ErrImageFetchFailure is returned when a query image cannot be downloaded
	ErrImageFetchFailure = errors.New("image fetch failed")

	// ErrUnparseableOutput is returned when model output holds no usable JSON object
	ErrUnparseableOutput = errors.New("model output could not be parsed")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrSessionNotFound is returned for an unknown triage session id
	ErrSessionNotFound = errors.New("triage session not found")

	// ErrQueueExhausted is returned when a session has no block left to present
	ErrQueueExhausted = errors.New("triage queue exhausted")

	// ErrNothingToUndo is returned when a session has no prior step
	ErrNothingToUndo = errors.New("nothing to undo")

	// ErrMissingCredentials is returned when a required token or API key is not configured
	ErrMissingCredentials = errors.New("missing credentials")
)
