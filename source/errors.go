package source

import "errors"

// Sentinel errors
var (
	ErrInvalidChannel  = errors.New("channel id outside the source table")
	ErrRecalculation   = errors.New("source recalculation failed")
	ErrInvalidPosition = errors.New("emitter position is not a number")
)
