package electoral

import "errors"

var (
	ErrUnknownTieBreak = errors.New("unknown tie-break policy")
	ErrMalformedTable  = errors.New("malformed apportionment")
)
