package split

import "errors"

var ErrUnknownPolicy = errors.New("unknown split-state policy")
