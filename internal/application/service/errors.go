package service

import "errors"

var (
	// ErrSubmissionNotFound is returned when a submission is not cached locally
	ErrSubmissionNotFound = errors.New("submission not found")

	// ErrInvalidAction is returned for actions other than Confirmed/Rejected
	ErrInvalidAction = errors.New("invalid confirmation action")

	// ErrNotAwaitingConfirmation is returned when the incident is not resolved
	// or already confirmed/rejected
	ErrNotAwaitingConfirmation = errors.New("incident is not awaiting confirmation")

	// ErrDispatchInFlight is returned while another action on the same
	// submission is outstanding
	ErrDispatchInFlight = errors.New("confirmation already in flight")

	// ErrDispatchFailed is returned when the action endpoint could not be
	// reached or answered with an error status
	ErrDispatchFailed = errors.New("resolution action dispatch failed")

	// ErrActionRejected is returned when the forms API reports failure
	ErrActionRejected = errors.New("resolution action rejected")
)

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
