package service

import "errors"

// Domain Errors
var (
	ErrTestNotAvailable     = errors.New("test is not published or not available")
	ErrNoQuestions          = errors.New("test has no questions, cannot start attempt")
	ErrInvalidDuration      = errors.New("test duration is not positive")
	ErrAttemptNotFound      = errors.New("no active attempt for this session key")
	ErrAttemptCompleted     = errors.New("a completed result already exists for this attempt")
	ErrAttemptLocked        = errors.New("attempt is no longer accepting changes")
	ErrSubmissionInProgress = errors.New("submission already in progress")
	ErrQuestionIndexRange   = errors.New("question index out of range")
	ErrOptionIndexRange     = errors.New("option index out of range")
)
