package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrResourceNotFound = errors.New("resource not found or inactive")
	ErrSkillNotFound    = errors.New("skill not found")
)
