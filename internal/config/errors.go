package config

import (
	"errors"
)

// Sentinel error kinds for configuration. Both are fatal before round 1.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")
)
