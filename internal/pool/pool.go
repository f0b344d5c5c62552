// Package pool provides a fixed-size worker pool executing submitted
// tasks in FIFO order. The pool knows nothing about plans or features;
// it is the execution substrate callers schedule work onto.
package pool

import (
	"sync"
	"time"

	"github.com/felixgeelhaar/projector/internal/errors"
	"github.com/felixgeelhaar/projector/internal/log"
)

const (
	minWorkers = 1
	maxWorkers = 20

	// defaultPollInterval bounds how long an idle worker blocks before
	// re-checking the queue and the shutdown flag.
	defaultPollInterval = time.Second

	// waitTick is the sleep between checks while waiting for the queue
	// to drain.
	waitTick = 10 * time.Millisecond
)

// Task is a unit of work executed by a pool worker.
type Task func()

// Option configures an ExecutionPool.
type Option func(*ExecutionPool)

// WithLogger sets the logger used for worker-level events.
func WithLogger(logger *log.Logger) Option {
	return func(p *ExecutionPool) {
		p.logger = logger
	}
}

// WithPollInterval overrides the idle-worker poll interval.
func WithPollInterval(d time.Duration) Option {
	return func(p *ExecutionPool) {
		if d > 0 {
			p.poll = d
		}
	}
}

// ExecutionPool runs tasks on a fixed set of workers. Tasks are popped
// in submission order; a failing or panicking task is logged and never
// terminates its worker.
type ExecutionPool struct {
	logger  *log.Logger
	poll    time.Duration
	workers int

	mu      sync.Mutex
	queue   []Task
	pending int
	closed  bool

	stop     chan struct{}
	workerWG sync.WaitGroup
}

// New starts an ExecutionPool with the given worker count, clamped to
// [1, 20].
func New(workers int, opts ...Option) *ExecutionPool {
	if workers < minWorkers {
		workers = minWorkers
	}
	if workers > maxWorkers {
		workers = maxWorkers
	}

	p := &ExecutionPool{
		logger:  log.Default(),
		poll:    defaultPollInterval,
		workers: workers,
		stop:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}

	p.workerWG.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker(i)
	}
	return p
}

// Workers returns the effective worker count after clamping.
func (p *ExecutionPool) Workers() int {
	return p.workers
}

// Submit enqueues a task without blocking the caller. Submissions after
// Shutdown are rejected and dropped.
func (p *ExecutionPool) Submit(task Task) error {
	if task == nil {
		return errors.New(errors.ErrCodePoolShutdown, "cannot submit nil task")
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		err := errors.NewPoolShutdownError()
		p.logger.WithError(err).Warn("task dropped")
		return err
	}
	p.queue = append(p.queue, task)
	p.pending++
	p.mu.Unlock()
	return nil
}

// WaitCompletion blocks until every submitted task has finished or the
// timeout elapses. It reports whether the queue drained in time.
func (p *ExecutionPool) WaitCompletion(timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for {
		p.mu.Lock()
		n := p.pending
		p.mu.Unlock()
		if n == 0 {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(waitTick)
	}
}

// Shutdown stops the pool from accepting new work. With wait true it
// blocks until queued and in-flight tasks finish; otherwise queued
// tasks are discarded immediately and only in-flight tasks run to
// completion.
func (p *ExecutionPool) Shutdown(wait bool) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		if wait {
			p.workerWG.Wait()
		}
		return
	}
	p.closed = true
	if !wait {
		discarded := len(p.queue)
		p.pending -= discarded
		p.queue = nil
		if discarded > 0 {
			p.logger.With("discarded", discarded).Warn("shutdown discarded queued tasks")
		}
	}
	close(p.stop)
	p.mu.Unlock()

	if wait {
		p.workerWG.Wait()
	}
}

func (p *ExecutionPool) worker(id int) {
	defer p.workerWG.Done()
	for {
		task, ok, stopped := p.next()
		if ok {
			p.run(id, task)
			continue
		}
		if stopped {
			return
		}
		select {
		case <-p.stop:
			// Re-check the queue so a draining shutdown finishes it.
		case <-time.After(p.poll):
		}
	}
}

// next pops the oldest queued task. stopped is true once the pool is
// closed and the queue is empty.
func (p *ExecutionPool) next() (task Task, ok, stopped bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.queue) > 0 {
		task = p.queue[0]
		p.queue = p.queue[1:]
		return task, true, false
	}
	return nil, false, p.closed
}

func (p *ExecutionPool) run(id int, task Task) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.With("worker", id, "panic", r).Error("task panicked")
		}
		p.mu.Lock()
		p.pending--
		p.mu.Unlock()
	}()
	task()
}
