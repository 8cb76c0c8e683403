package queue

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type stubHasher struct {
	inFlight atomic.Int32
	peak     atomic.Int32
	delay    time.Duration
}

func (s *stubHasher) track() func() {
	n := s.inFlight.Add(1)
	for {
		p := s.peak.Load()
		if n <= p || s.peak.CompareAndSwap(p, n) {
			break
		}
	}
	time.Sleep(s.delay)
	return func() { s.inFlight.Add(-1) }
}

func (s *stubHasher) Hash(_ context.Context, password string) (string, error) {
	defer s.track()()
	return "hashed:" + password, nil
}

func (s *stubHasher) Verify(_ context.Context, password, hash string) (bool, error) {
	defer s.track()()
	return hash == "hashed:"+password, nil
}

func TestHashPool_DelegatesToHasher(t *testing.T) {
	pool := NewHashPool(2, &stubHasher{}, zerolog.Nop())
	pool.Start(context.Background())
	defer pool.Stop()

	h, err := pool.Hash(context.Background(), "pwd")
	if err != nil || h != "hashed:pwd" {
		t.Fatalf("unexpected hash %q %v", h, err)
	}
	ok, err := pool.Verify(context.Background(), "pwd", h)
	if err != nil || !ok {
		t.Fatalf("expected verify true, got %v %v", ok, err)
	}
	ok, err = pool.Verify(context.Background(), "other", h)
	if err != nil || ok {
		t.Fatalf("expected verify false, got %v %v", ok, err)
	}
}

func TestHashPool_BoundsConcurrency(t *testing.T) {
	stub := &stubHasher{delay: 5 * time.Millisecond}
	pool := NewHashPool(3, stub, zerolog.Nop())
	pool.Start(context.Background())
	defer pool.Stop()

	var wg sync.WaitGroup
	for i := 0; i < 30; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := pool.Hash(context.Background(), "pwd"); err != nil {
				t.Errorf("hash: %v", err)
			}
		}()
	}
	wg.Wait()

	if peak := stub.peak.Load(); peak > 3 {
		t.Fatalf("expected at most 3 concurrent hashes, saw %d", peak)
	}
}

func TestHashPool_SubmitAfterStop(t *testing.T) {
	pool := NewHashPool(1, &stubHasher{}, zerolog.Nop())
	pool.Start(context.Background())
	pool.Stop()

	if _, err := pool.Hash(context.Background(), "pwd"); !errors.Is(err, ErrPoolClosed) {
		t.Fatalf("expected ErrPoolClosed, got %v", err)
	}
	// Stop is idempotent.
	pool.Stop()
}

func TestHashPool_CallerContextCancelled(t *testing.T) {
	pool := NewHashPool(1, &stubHasher{}, zerolog.Nop())
	// Workers never started: the job sits in the queue until the caller gives up.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if _, err := pool.Hash(ctx, "pwd"); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected DeadlineExceeded, got %v", err)
	}
}

func TestHashPool_StartContextCancelled(t *testing.T) {
	pool := NewHashPool(2, &stubHasher{}, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	pool.Start(ctx)
	cancel()

	select {
	case <-pool.done:
	case <-time.After(2 * time.Second):
		t.Fatalf("workers did not exit after cancellation")
	}

	errCh := make(chan error, 1)
	go func() {
		_, err := pool.Hash(context.Background(), "pwd")
		errCh <- err
	}()
	select {
	case err := <-errCh:
		if !errors.Is(err, ErrPoolClosed) {
			t.Fatalf("expected ErrPoolClosed, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("hash blocked after workers exited")
	}

	// Stop after a cancelled start still returns.
	pool.Stop()
}
