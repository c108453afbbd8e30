package repository

// Option applies a configuration option to the CSVStore.
type Option func(*CSVStore)

// WithUnitFile sets the file name of the per-unit table.
func WithUnitFile(name string) Option {
	return func(s *CSVStore) {
		if name != "" {
			s.unitFile = name
		}
	}
}

// WithNationalFile sets the file name of the national table.
func WithNationalFile(name string) Option {
	return func(s *CSVStore) {
		if name != "" {
			s.nationalFile = name
		}
	}
}

// WithMedianFile sets the file name of the median snapshot.
func WithMedianFile(name string) Option {
	return func(s *CSVStore) {
		if name != "" {
			s.medianFile = name
		}
	}
}

// WithMeanFile sets the file name of the mean snapshot.
func WithMeanFile(name string) Option {
	return func(s *CSVStore) {
		if name != "" {
			s.meanFile = name
		}
	}
}

// WithNationalMeanFile sets the file name of the national mean table.
func WithNationalMeanFile(name string) Option {
	return func(s *CSVStore) {
		if name != "" {
			s.natMeanFile = name
		}
	}
}

// WithSplitOutcomeFile sets the file name of the table of rounds whose
// popular-vote winner lost the electoral vote.
func WithSplitOutcomeFile(name string) Option {
	return func(s *CSVStore) {
		if name != "" {
			s.splitFile = name
		}
	}
}

// WithWinnerCountFile sets the file name of the per-unit winner counts.
func WithWinnerCountFile(name string) Option {
	return func(s *CSVStore) {
		if name != "" {
			s.winnerFile = name
		}
	}
}

// WithAppend keeps existing tables and appends to them.
func WithAppend(enabled bool) Option {
	return func(s *CSVStore) {
		s.appendMode = enabled
	}
}
