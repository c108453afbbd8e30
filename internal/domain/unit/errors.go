package unit

import "errors"

// Sentinel kinds for unit simulation errors.
var (
	ErrInvalidUnit    = errors.New("invalid unit")
	ErrInvalidTurnout = errors.New("invalid turnout")
)
