package domain

import "errors"

var (
	// ErrQuizNotFound indicates the requested quiz is not in the bank.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrProgressNotFound is returned when no attempt has been persisted yet.
	ErrProgressNotFound = errors.New("quiz progress not found")
	// ErrNoActiveAttempt is returned for attempt operations outside InProgress.
	ErrNoActiveAttempt = errors.New("no active attempt")
	// ErrAttemptInProgress is returned when starting over an unfinished attempt.
	ErrAttemptInProgress = errors.New("attempt already in progress")
)
