package session

import "errors"

var (
	// ErrNotFound is returned for an unknown session id.
	ErrNotFound = errors.New("session not found")
	// ErrNoAnswers is returned when fewer answers than the variant minimum exist.
	ErrNoAnswers = errors.New("not enough answered questions")
	// ErrIncomplete is returned when required free-text fields are empty.
	ErrIncomplete = errors.New("required fields missing")
	// ErrSnapshotNotFound is returned by stores for a missing key.
	ErrSnapshotNotFound = errors.New("snapshot not found")
)

// ErrInvalidInput wraps rejected answers, fields and variants.
var ErrInvalidInput = errors.New("invalid input")
