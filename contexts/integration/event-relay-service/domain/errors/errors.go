package errors

import "errors"

var (
	ErrRecordTerminal         = errors.New("outbox record is terminal")
	ErrEventTypeNotRegistered = errors.New("event type is not registered")
	ErrPayloadDecodeFailed    = errors.New("outbox payload decode failed")
	ErrRecordNotFound         = errors.New("outbox record not found")
	ErrDuplicateRegistration  = errors.New("event type already registered")
)
