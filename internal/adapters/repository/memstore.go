package repository

import (
	"context"
	"slices"
	"sync"

	"github.com/michaelpowers8/Election-Simulation/internal/domain/model"
)

// MemoryStore keeps every round in memory. It backs tests and short
// in-process runs.
type MemoryStore struct {
	mu     sync.RWMutex
	rounds []model.Round
	acc    *accumulator
	nat    *nationalAccumulator
	closed bool
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{acc: newAccumulator(), nat: newNationalAccumulator()}
}

func (s *MemoryStore) WriteRound(_ context.Context, r model.Round) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	s.rounds = append(s.rounds, r)
	for _, u := range r.Units {
		s.acc.add(u.Unit, u.Parent, winnerName(u.NoData, u.Winner, u.Tied), unitValues(u))
	}
	s.nat.add(r.National.Round, nationalValues(r.National))
	return nil
}

func (s *MemoryStore) Snapshot(_ context.Context) (Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return Summary{}, ErrClosed
	}
	sum := s.acc.summary()
	s.nat.fill(&sum)
	return sum, nil
}

// Rounds returns the rounds written so far, in write order.
func (s *MemoryStore) Rounds() []model.Round {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.rounds)
}

func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
