package swing

import "errors"

// Sentinel kinds for swing errors.
var (
	ErrUnknownModel = errors.New("unknown swing model")
)
