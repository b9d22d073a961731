package engine

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/lixenwraith/sndfx/core"
)

// Pool runs submitted units of work on a fixed set of goroutines fed by a bounded queue
// Quiescence is tracked by a pending count covering queued and running units
type Pool struct {
	log     logrus.FieldLogger
	workers int
	tasks   chan func()
	group   errgroup.Group

	// Held for reading while sending so Close never races a send on a closed channel
	sendMu sync.RWMutex
	closed bool

	idleMu  sync.Mutex
	pending int
	idle    chan struct{} // closed while pending == 0

	panics    atomic.Int64
	completed atomic.Int64
	closeOnce sync.Once
	closeErr  error
}

// NewPool starts workers goroutines draining a queue of the given depth
func NewPool(workers, depth int, log logrus.FieldLogger) *Pool {
	if log == nil {
		log = discardLogger
	}
	p := &Pool{
		log:     log.WithField("component", "pool"),
		workers: max(workers, 1),
		tasks:   make(chan func(), max(depth, 1)),
		idle:    make(chan struct{}),
	}
	close(p.idle)

	for i := 0; i < p.workers; i++ {
		p.group.Go(func() error {
			for fn := range p.tasks {
				p.run(fn)
			}
			return nil
		})
	}
	return p
}

// Workers returns the goroutine count
func (p *Pool) Workers() int { return p.workers }

// Submit queues fn, blocking while the queue is full
// Returns false once the pool is closed
func (p *Pool) Submit(fn func()) bool {
	p.sendMu.RLock()
	defer p.sendMu.RUnlock()
	if p.closed {
		return false
	}
	p.begin()
	p.tasks <- fn
	return true
}

// TrySubmit queues fn only if there is room; never blocks
func (p *Pool) TrySubmit(fn func()) bool {
	p.sendMu.RLock()
	defer p.sendMu.RUnlock()
	if p.closed {
		return false
	}
	p.begin()
	select {
	case p.tasks <- fn:
		return true
	default:
		p.end()
		return false
	}
}

// AwaitQuiescence blocks until every submitted unit has finished or timeout elapses
func (p *Pool) AwaitQuiescence(timeout time.Duration) bool {
	p.idleMu.Lock()
	idle := p.idle
	p.idleMu.Unlock()

	select {
	case <-idle:
		return true
	default:
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-idle:
		return true
	case <-timer.C:
		return false
	}
}

// Pending counts queued plus running units
func (p *Pool) Pending() int {
	p.idleMu.Lock()
	defer p.idleMu.Unlock()
	return p.pending
}

// Queued counts units waiting for a worker
func (p *Pool) Queued() int { return len(p.tasks) }

// Completed counts finished units, including ones that panicked
func (p *Pool) Completed() int64 { return p.completed.Load() }

// Panics counts units that panicked
func (p *Pool) Panics() int64 { return p.panics.Load() }

// Close stops accepting work, lets queued units finish and joins the workers
func (p *Pool) Close() error {
	p.closeOnce.Do(func() {
		p.sendMu.Lock()
		p.closed = true
		close(p.tasks)
		p.sendMu.Unlock()
		p.closeErr = p.group.Wait()
	})
	return p.closeErr
}

func (p *Pool) run(fn func()) {
	var err error
	defer func() {
		if err != nil {
			p.panics.Add(1)
		}
		p.completed.Add(1)
		p.end()
	}()
	defer core.Recover(p.log, &err)
	fn()
}

func (p *Pool) begin() {
	p.idleMu.Lock()
	if p.pending == 0 {
		p.idle = make(chan struct{})
	}
	p.pending++
	p.idleMu.Unlock()
}

func (p *Pool) end() {
	p.idleMu.Lock()
	p.pending--
	if p.pending == 0 {
		close(p.idle)
	}
	p.idleMu.Unlock()
}
