package dataset

import "errors"

// Sentinel kinds for input data errors.
var (
	ErrLoad         = errors.New("cannot load input table")
	ErrMalformed    = errors.New("malformed input table")
	ErrUnitMismatch = errors.New("unit not found consistently across sources")
)
