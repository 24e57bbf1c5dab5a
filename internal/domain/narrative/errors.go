package narrative

import "errors"

// ErrUnavailable indicates the narrative provider could not be reached or
// answered with a non-success status.
var ErrUnavailable = errors.New("narrative service unavailable")

// ErrEmptyResponse indicates a success status with no text content.
var ErrEmptyResponse = errors.New("narrative response empty")

// ErrQuotaExceeded indicates the provider returned a quota/limit error (HTTP 429 or similar).
var ErrQuotaExceeded = errors.New("narrative quota exceeded")
