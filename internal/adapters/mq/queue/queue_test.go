package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestInMemoryQueue_BasicOperations(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}

	if err := q.Put(ctx, Job{Round: 1}); err != nil {
		t.Errorf("expected put to succeed, got %v", err)
	}
	if l := q.Len(ctx); l != 1 {
		t.Errorf("expected length 1, got %d", l)
	}

	job := <-q.Dequeue(ctx)
	if job.Round != 1 {
		t.Errorf("expected round 1, got %d", job.Round)
	}
}

func TestInMemoryQueue_Capacity(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if q.Put(ctx, Job{Round: 1}) != nil || q.Put(ctx, Job{Round: 2}) != nil {
		t.Fatal("expected put to succeed")
	}
	full, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
	defer cancel()
	if err := q.Put(full, Job{Round: 3}); err == nil {
		t.Error("expected put to wait when full")
	}
	if l := q.Len(ctx); l != 2 {
		t.Errorf("expected length 2, got %d", l)
	}
}

func TestInMemoryQueue_PutBlocksUntilSpace(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(1))
	ctx := context.Background()

	if err := q.Put(ctx, Job{Round: 1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- q.Put(ctx, Job{Round: 2}) }()

	select {
	case err := <-done:
		t.Fatalf("expected put to block on a full queue, returned %v", err)
	case <-time.After(20 * time.Millisecond):
	}

	jobs := q.Dequeue(ctx)
	if j := <-jobs; j.Round != 1 {
		t.Errorf("expected round 1, got %d", j.Round)
	}
	if err := <-done; err != nil {
		t.Errorf("expected blocked put to succeed, got %v", err)
	}
	if j := <-jobs; j.Round != 2 {
		t.Errorf("expected round 2, got %d", j.Round)
	}
}

func TestInMemoryQueue_PutHonoursContext(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(1))
	_ = q.Put(context.Background(), Job{Round: 1})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if err := q.Put(ctx, Job{Round: 2}); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
}

func TestInMemoryQueue_CloseReleasesBlockedPut(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(1))
	ctx := context.Background()
	_ = q.Put(ctx, Job{Round: 1})

	done := make(chan error, 1)
	go func() { done <- q.Put(ctx, Job{Round: 2}) }()
	time.Sleep(10 * time.Millisecond)

	if err := q.Close(); err != nil {
		t.Fatalf("unexpected close error: %v", err)
	}
	select {
	case err := <-done:
		if !errors.Is(err, ErrClosed) {
			t.Errorf("expected ErrClosed, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("blocked put was not released by close")
	}
	if err := q.Put(ctx, Job{Round: 3}); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed after close, got %v", err)
	}
}

func TestInMemoryQueue_ConcurrentConsumers(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(8))
	ctx := context.Background()
	const rounds = 500

	var (
		mu   sync.Mutex
		seen = make(map[int]int)
		wg   sync.WaitGroup
	)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range q.Dequeue(ctx) {
				mu.Lock()
				seen[j.Round]++
				mu.Unlock()
			}
		}()
	}

	for r := 1; r <= rounds; r++ {
		if err := q.Put(ctx, Job{Round: r}); err != nil {
			t.Fatalf("put %d: %v", r, err)
		}
	}
	_ = q.Close()
	wg.Wait()

	if len(seen) != rounds {
		t.Fatalf("expected %d distinct rounds, got %d", rounds, len(seen))
	}
	for r, n := range seen {
		if n != 1 {
			t.Errorf("round %d consumed %d times", r, n)
		}
	}
}

func TestInMemoryQueue_GracefulShutdown(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(10))
	ctx := context.Background()

	if q.Put(ctx, Job{Round: 1}) != nil || q.Put(ctx, Job{Round: 2}) != nil {
		t.Fatal("expected put to succeed")
	}
	if err := q.Close(); err != nil {
		t.Errorf("expected close to succeed, got error: %v", err)
	}
	if err := q.Put(ctx, Job{Round: 3}); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed after closing, got %v", err)
	}

	var drained []int
	timeout := time.After(time.Second)
	jobs := q.Dequeue(ctx)
	for {
		select {
		case j, ok := <-jobs:
			if !ok {
				if len(drained) != 2 {
					t.Errorf("expected 2 drained jobs, got %v", drained)
				}
				if err := q.Close(); err != nil {
					t.Errorf("expected second close to succeed, got error: %v", err)
				}
				return
			}
			drained = append(drained, j.Round)
		case <-timeout:
			t.Fatal("expected dequeue channel to be closed within timeout")
		}
	}
}
