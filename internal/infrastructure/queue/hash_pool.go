package queue

import (
	"context"
	"errors"
	"runtime"
	"sync"

	"github.com/rs/zerolog"

	"github.com/99minutos/auth-service/internal/core/ports"
	"github.com/99minutos/auth-service/pkg/metrics"
)

const channelBuffer = 256

// ErrPoolClosed is returned for jobs submitted after Stop.
var ErrPoolClosed = errors.New("hash pool closed")

type jobKind int

const (
	jobHash jobKind = iota
	jobVerify
)

type job struct {
	ctx      context.Context
	kind     jobKind
	password string
	hash     string
	result   chan jobResult
}

type jobResult struct {
	hash string
	ok   bool
	err  error
}

// HashPool runs password hashing on a fixed set of worker goroutines so that
// CPU-bound bcrypt work is bounded regardless of request concurrency. It
// satisfies ports.PasswordHasher and delegates to the wrapped hasher.
type HashPool struct {
	jobs    chan job
	hasher  ports.PasswordHasher
	workers int
	log     zerolog.Logger

	mu     sync.RWMutex
	closed bool
	// done is closed once no worker is left to serve jobs.
	done     chan struct{}
	doneOnce sync.Once
	wg       sync.WaitGroup
}

// NewHashPool creates a pool with numWorkers workers around hasher.
// If numWorkers <= 0, runtime.NumCPU() is used.
func NewHashPool(numWorkers int, hasher ports.PasswordHasher, log zerolog.Logger) *HashPool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	return &HashPool{
		jobs:    make(chan job, channelBuffer),
		hasher:  hasher,
		workers: numWorkers,
		log:     log,
		done:    make(chan struct{}),
	}
}

// Start launches the workers; call it once. They exit when ctx is cancelled or
// Stop is called, and from then on every submission fails with ErrPoolClosed.
func (p *HashPool) Start(ctx context.Context) {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.runWorker(ctx, i)
	}
	go func() {
		p.wg.Wait()
		p.markDone()
		p.closeJobs()
	}()
}

// Stop rejects further submissions and waits for in-flight jobs to finish.
func (p *HashPool) Stop() {
	p.closeJobs()
	p.wg.Wait()
	p.markDone()
}

func (p *HashPool) closeJobs() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.closed {
		p.closed = true
		close(p.jobs)
	}
}

func (p *HashPool) markDone() {
	p.doneOnce.Do(func() { close(p.done) })
}

func (p *HashPool) Hash(ctx context.Context, password string) (string, error) {
	res, err := p.submit(ctx, job{kind: jobHash, password: password})
	if err != nil {
		return "", err
	}
	return res.hash, res.err
}

func (p *HashPool) Verify(ctx context.Context, password, hash string) (bool, error) {
	res, err := p.submit(ctx, job{kind: jobVerify, password: password, hash: hash})
	if err != nil {
		return false, err
	}
	return res.ok, res.err
}

func (p *HashPool) submit(ctx context.Context, j job) (jobResult, error) {
	j.ctx = ctx
	j.result = make(chan jobResult, 1)

	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		return jobResult{}, ErrPoolClosed
	}
	select {
	case p.jobs <- j:
		metrics.HashPoolQueueDepth.Set(float64(len(p.jobs)))
		p.mu.RUnlock()
	case <-ctx.Done():
		p.mu.RUnlock()
		return jobResult{}, ctx.Err()
	case <-p.done:
		p.mu.RUnlock()
		return jobResult{}, ErrPoolClosed
	}

	select {
	case res := <-j.result:
		return res, nil
	case <-ctx.Done():
		return jobResult{}, ctx.Err()
	case <-p.done:
		// A worker may have finished the job just before the pool closed.
		select {
		case res := <-j.result:
			return res, nil
		default:
			return jobResult{}, ErrPoolClosed
		}
	}
}

func (p *HashPool) runWorker(ctx context.Context, id int) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case j, ok := <-p.jobs:
			if !ok {
				return
			}
			metrics.HashPoolQueueDepth.Set(float64(len(p.jobs)))
			j.result <- p.process(j, id)
		}
	}
}

func (p *HashPool) process(j job, id int) jobResult {
	// The submitter may already have given up.
	if err := j.ctx.Err(); err != nil {
		return jobResult{err: err}
	}

	switch j.kind {
	case jobHash:
		h, err := p.hasher.Hash(j.ctx, j.password)
		return jobResult{hash: h, err: err}
	default:
		ok, err := p.hasher.Verify(j.ctx, j.password, j.hash)
		if err != nil {
			p.log.Debug().Err(err).Int("worker_id", id).Msg("verify failed")
		}
		return jobResult{ok: ok, err: err}
	}
}
