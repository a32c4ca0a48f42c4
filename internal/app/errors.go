package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrInvalidApply = errors.New("invalid apply request")
)
