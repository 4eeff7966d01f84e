package contract

import "errors"

var (
	ErrInvalidPayload = errors.New("invalid request payload")
	ErrEmptyMessage   = errors.New("message is empty")
	ErrCompletion     = errors.New("completion request failed")
)
