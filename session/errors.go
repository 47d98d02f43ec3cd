package session

import "errors"

// Sentinel errors for store operations.
var (
	ErrEmptySessionID = errors.New("session id is empty")
	ErrUnknownSession = errors.New("unknown session")
	ErrUnknownBackend = errors.New("unknown session backend")
	ErrLoadFailed     = errors.New("session load failed")
	ErrSaveFailed     = errors.New("session save failed")
)
