package errors

import "errors"

var (
	ErrRunNotFound              = errors.New("workflow run not found")
	ErrRunAlreadyCompleted      = errors.New("workflow run is already completed")
	ErrInvalidWorkflow          = errors.New("invalid workflow definition")
	ErrConcurrentAdvance        = errors.New("workflow run advanced concurrently")
	ErrRepositoryInvariantBroke = errors.New("repository invariant violated")
)
