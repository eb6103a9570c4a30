package queue

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"
)

const (
	defaultWorkers = 4
	channelBuffer  = 64
)

// ErrPoolClosed is returned by Do once the pool has been stopped.
var ErrPoolClosed = errors.New("worker pool closed")

type job struct {
	fn   func()
	done chan struct{}
}

// Pool runs CPU-bound work (password hashing) on a fixed set of goroutines so
// that a burst of logins cannot occupy every request goroutine at once.
type Pool struct {
	jobs    chan job
	quit    chan struct{}
	workers int
	log     zerolog.Logger

	startOnce sync.Once
	stopOnce  sync.Once
	wg        sync.WaitGroup
}

// NewPool creates a Pool with numWorkers workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewPool(numWorkers int, log zerolog.Logger) *Pool {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	return &Pool{
		jobs:    make(chan job, channelBuffer),
		quit:    make(chan struct{}),
		workers: numWorkers,
		log:     log,
	}
}

// Start launches the worker goroutines. Workers stop when ctx is cancelled or
// Stop is called.
func (p *Pool) Start(ctx context.Context) {
	p.startOnce.Do(func() {
		for i := 0; i < p.workers; i++ {
			p.wg.Add(1)
			go p.runWorker(ctx, i)
		}
		p.log.Debug().Int("workers", p.workers).Msg("worker pool started")
	})
}

// Stop signals all workers to exit and waits for them.
func (p *Pool) Stop() {
	p.stopOnce.Do(func() {
		close(p.quit)
	})
	p.wg.Wait()
}

// Do runs fn on a worker and blocks until it has finished. If ctx ends first
// Do returns ctx.Err(); fn may still run to completion in the background.
func (p *Pool) Do(ctx context.Context, fn func()) error {
	j := job{fn: fn, done: make(chan struct{})}

	select {
	case <-p.quit:
		return ErrPoolClosed
	case <-ctx.Done():
		return ctx.Err()
	case p.jobs <- j:
	}

	select {
	case <-j.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Pending returns the number of queued jobs not yet picked up by a worker.
func (p *Pool) Pending() int {
	return len(p.jobs)
}

func (p *Pool) runWorker(ctx context.Context, id int) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case <-p.quit:
			return
		case j := <-p.jobs:
			p.run(id, j)
		}
	}
}

func (p *Pool) run(id int, j job) {
	defer close(j.done)
	defer func() {
		if r := recover(); r != nil {
			p.log.Error().Interface("panic", r).Int("worker_id", id).Msg("worker job panicked")
		}
	}()
	j.fn()
}
