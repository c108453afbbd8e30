package repository

import "errors"

// Sentinel kinds for result store errors.
var (
	ErrClosed         = errors.New("result store closed")
	ErrHeaderMismatch = errors.New("existing result table has a different header")
	ErrMalformedTable = errors.New("malformed result table")
)
