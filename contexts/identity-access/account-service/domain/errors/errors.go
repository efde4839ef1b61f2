package errors

import "errors"

var (
	ErrAccountNotFound          = errors.New("account not found")
	ErrEmailTaken               = errors.New("email is already registered")
	ErrAccountAlreadyInactive   = errors.New("account is already deactivated")
	ErrInvalidRegistration      = errors.New("invalid registration request")
	ErrRepositoryInvariantBroke = errors.New("repository invariant violated")
)
