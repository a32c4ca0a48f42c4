package schedule

import "errors"

// Sentinel kinds for scheduling errors.
var (
	ErrInvalidRange = errors.New("window end must be after start")
)
