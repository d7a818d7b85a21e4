package domain

import "errors"

var (
	// ErrUnknownCategory is returned when a category is not part of the question bank.
	ErrUnknownCategory = errors.New("unknown category")
	// ErrInvalidStateTransition is returned when an operation is not accepted in the current session state.
	ErrInvalidStateTransition = errors.New("invalid state transition")
	// ErrIndexOutOfRange signals that the session index left the question range.
	ErrIndexOutOfRange = errors.New("question index out of range")
	// ErrOptionNotFound indicates a submitted option is not one of the current question's options.
	ErrOptionNotFound = errors.New("option not found")
	// ErrInvalidQuestion is returned when catalog content fails validation.
	ErrInvalidQuestion = errors.New("invalid question")
	// ErrSessionNotFound is returned when a session id is not registered.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrRunnerStopped is returned when a command is sent to a runner that is no longer running.
	ErrRunnerStopped = errors.New("session runner stopped")
)
