package config

import "errors"

// Sentinel kinds for configuration errors, matchable with errors.Is.
var (
	// ErrInvalidConfig marks a loaded configuration that fails validation.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrLoadConfig marks a failure reading or parsing a configuration source.
	ErrLoadConfig = errors.New("load config failed")
)
