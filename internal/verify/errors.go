package verify

import "errors"

// Sentinel errors.
var (
	ErrUnreachable      = errors.New("service unreachable")
	ErrUnexpectedStatus = errors.New("unexpected status")
	ErrFailed           = errors.New("verification failed")
	ErrUnknownFormat    = errors.New("unknown report format")
)
