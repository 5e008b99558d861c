package service

import (
	"errors"
)

// Sentinel error kinds for this package.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidCount = errors.New("invalid population size")
	ErrSuperseded   = errors.New("superseded by a newer request")
	ErrNotStarted   = errors.New("service not started")
)
