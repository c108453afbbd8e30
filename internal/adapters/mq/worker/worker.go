// Package worker simulates queued rounds concurrently and hands finished
// rounds to a sink in round order.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"github.com/michaelpowers8/Election-Simulation/internal/adapters/mq/queue"
	"github.com/michaelpowers8/Election-Simulation/internal/domain/model"
	"github.com/michaelpowers8/Election-Simulation/pkg/logger"
	"github.com/michaelpowers8/Election-Simulation/pkg/metrics"
	"golang.org/x/sync/errgroup"
)

// Simulator computes one round.
type Simulator interface {
	SimulateRound(ctx context.Context, round int) (model.Round, error)
}

// Sink receives finished rounds, strictly in round order.
type Sink interface {
	WriteRound(ctx context.Context, r model.Round) error
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Job
}

// Worker simulates jobs until its queue is drained or ctx is canceled.
type Worker interface {
	Run(ctx context.Context, out chan<- model.Round) error
}

// RoundWorker implements Worker for one goroutine.
type RoundWorker struct {
	queue     Queue
	simulator Simulator
	name      string
	logger    logger.Logger
}

// NewRoundWorker creates a new worker with configuration options.
func NewRoundWorker(q Queue, sim Simulator, opts ...Option) *RoundWorker {
	w := &RoundWorker{
		queue:     q,
		simulator: sim,
		name:      "worker",
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.Get().Named(w.name)
	}
	return w
}

// Run pulls jobs and sends each finished round to out. A canceled context
// stops it between rounds; a round already started is finished and sent.
func (w *RoundWorker) Run(ctx context.Context, out chan<- model.Round) error {
	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case job, ok := <-jobs:
			if !ok {
				return nil
			}
			start := time.Now()
			r, err := w.simulator.SimulateRound(ctx, job.Round)
			if err != nil {
				w.logger.Error(ctx, "round failed", logger.Int("round", job.Round), logger.Error(err))
				return fmt.Errorf("round %d: %w", job.Round, err)
			}
			metrics.RecordRoundCompleted(job.Round, time.Since(start).Seconds())

			select {
			case out <- r:
			case <-ctx.Done():
				return nil
			}
		}
	}
}

// Pool runs several workers and a sequencer that restores round order.
type Pool struct {
	workers []*RoundWorker
	logger  logger.Logger
}

// NewPool creates a pool of workerCount workers reading q. A count below
// one uses one worker per CPU.
func NewPool(workerCount int, q Queue, sim Simulator, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}
	p := &Pool{
		workers: make([]*RoundWorker, workerCount),
		logger:  logger.Get().Named("worker-pool"),
	}
	for i := range p.workers {
		wopts := append([]Option{WithName("worker-" + strconv.Itoa(i))}, opts...)
		p.workers[i] = NewRoundWorker(q, sim, wopts...)
	}
	metrics.UpdateWorkerCount(workerCount)
	return p
}

// Size is the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Run simulates every job of the queue and writes the rounds to sink in
// order, starting at first. It returns once the queue is drained, ctx is
// canceled, or a worker or the sink fails. On cancellation rounds that
// finished after a gap are discarded so the sink never sees a hole.
func (p *Pool) Run(ctx context.Context, first int, sink Sink) (written int, err error) {
	defer metrics.UpdateWorkerCount(0)

	g, gctx := errgroup.WithContext(ctx)
	results := make(chan model.Round, len(p.workers))

	workers, wctx := errgroup.WithContext(gctx)
	for _, w := range p.workers {
		workers.Go(func() error { return w.Run(wctx, results) })
	}
	g.Go(func() error {
		defer close(results)
		return workers.Wait()
	})

	seq := newSequencer(first, sink)
	g.Go(func() error {
		// Writes are not canceled with ctx: a round is either written whole or not at all.
		wctx := context.WithoutCancel(gctx)
		for r := range results {
			if err := seq.push(wctx, r); err != nil {
				return err
			}
		}
		return nil
	})

	err = g.Wait()
	if n := seq.pending(); n > 0 {
		p.logger.Warn(ctx, "discarding rounds finished out of order",
			logger.Int("rounds", n),
			logger.Int("next_round", seq.next),
		)
	}
	return seq.written, err
}

// sequencer buffers rounds that finish early until their predecessors
// have been written.
type sequencer struct {
	next    int
	sink    Sink
	waiting map[int]model.Round
	written int
}

func newSequencer(first int, sink Sink) *sequencer {
	return &sequencer{next: first, sink: sink, waiting: make(map[int]model.Round)}
}

func (s *sequencer) push(ctx context.Context, r model.Round) error {
	s.waiting[r.Number] = r
	for {
		ready, ok := s.waiting[s.next]
		if !ok {
			return nil
		}
		delete(s.waiting, s.next)
		if err := s.sink.WriteRound(ctx, ready); err != nil {
			return fmt.Errorf("write round %d: %w", ready.Number, err)
		}
		s.next++
		s.written++
	}
}

func (s *sequencer) pending() int { return len(s.waiting) }
