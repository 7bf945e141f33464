package queue

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/rs/zerolog"
)

const channelBuffer = 256

// ErrStopped is returned by Do once the dispatcher's context is cancelled.
var ErrStopped = errors.New("dispatcher stopped")

type job struct {
	run  func()
	done chan struct{}
}

// Dispatcher runs CPU-bound work (password hashing) on a fixed set of worker
// goroutines so that concurrent requests queue for CPU instead of all
// hashing at once.
type Dispatcher struct {
	jobs    chan job
	workers int
	stopped chan struct{}
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers workers.
// If numWorkers <= 0, runtime.NumCPU() is used.
func NewDispatcher(numWorkers int, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	return &Dispatcher{
		jobs:    make(chan job, channelBuffer),
		workers: numWorkers,
		stopped: make(chan struct{}),
		log:     log,
	}
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i := 0; i < d.workers; i++ {
		go d.runWorker(ctx, i)
	}
	go func() {
		<-ctx.Done()
		close(d.stopped)
	}()
}

// Do queues fn and waits for it to finish. It returns early with the
// context's error if ctx ends first; fn may still run afterwards and must not
// touch state the caller reads after an early return.
func (d *Dispatcher) Do(ctx context.Context, fn func()) error {
	select {
	case <-d.stopped:
		return ErrStopped
	default:
	}

	j := job{run: fn, done: make(chan struct{})}
	select {
	case d.jobs <- j:
	case <-ctx.Done():
		return ctx.Err()
	case <-d.stopped:
		return ErrStopped
	}

	select {
	case <-j.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-d.stopped:
		select {
		case <-j.done:
			return nil
		default:
			return ErrStopped
		}
	}
}

// Pending reports the number of queued jobs not yet picked up by a worker.
func (d *Dispatcher) Pending() int {
	return len(d.jobs)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-d.jobs:
			d.run(id, j)
		}
	}
}

func (d *Dispatcher) run(id int, j job) {
	defer close(j.done)
	defer func() {
		if r := recover(); r != nil {
			d.log.Error().
				Err(fmt.Errorf("panic: %v", r)).
				Int("worker_id", id).
				Msg("job panicked")
		}
	}()
	j.run()
}
