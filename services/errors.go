package services

import "errors"

// ErrPreconditionFailed signals a relationship transition attempted
// from a state that does not allow it.
var ErrPreconditionFailed = errors.New("invalid state for requested transition")
