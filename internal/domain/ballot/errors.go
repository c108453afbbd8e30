package ballot

import "errors"

var ErrUnknownMode = errors.New("unknown sampling mode")
