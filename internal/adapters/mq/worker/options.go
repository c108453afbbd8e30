package worker

import (
	"github.com/michaelpowers8/Election-Simulation/pkg/logger"
)

// Option applies a configuration option to a RoundWorker.
type Option func(*RoundWorker)

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(w *RoundWorker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(l logger.Logger) Option {
	return func(w *RoundWorker) {
		if l != nil {
			w.logger = l
		}
	}
}
