package api

import (
	"context"
	"fmt"
	"sync/atomic"
)

// WorkerPool bounds concurrent agent work. Fast slots serve single AI
// moves and move reviews; slow slots serve autoplay streams, which hold a
// slot for a whole game.
type WorkerPool struct {
	fastSem    chan struct{}
	slowSem    chan struct{}
	queuedFast int64
	queuedSlow int64
	activeFast int64
	activeSlow int64
	totalFast  int64
	totalSlow  int64
}

// PoolConfig configures the worker pool.
type PoolConfig struct {
	MaxFastWorkers int // Max concurrent AI moves and reviews (default: 64)
	MaxSlowWorkers int // Max concurrent autoplay streams (default: 4)
}

// DefaultPoolConfig returns a PoolConfig with sensible defaults.
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		MaxFastWorkers: 64,
		MaxSlowWorkers: 4,
	}
}

// NewWorkerPool creates a new worker pool with the given configuration.
func NewWorkerPool(config PoolConfig) *WorkerPool {
	def := DefaultPoolConfig()
	if config.MaxFastWorkers <= 0 {
		config.MaxFastWorkers = def.MaxFastWorkers
	}
	if config.MaxSlowWorkers <= 0 {
		config.MaxSlowWorkers = def.MaxSlowWorkers
	}
	return &WorkerPool{
		fastSem: make(chan struct{}, config.MaxFastWorkers),
		slowSem: make(chan struct{}, config.MaxSlowWorkers),
	}
}

func acquire(ctx context.Context, sem chan struct{}, queued, active *int64) error {
	atomic.AddInt64(queued, 1)
	defer atomic.AddInt64(queued, -1)

	select {
	case sem <- struct{}{}:
		atomic.AddInt64(active, 1)
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", ErrBusy, ctx.Err())
	}
}

func release(sem chan struct{}, active, total *int64) {
	atomic.AddInt64(active, -1)
	atomic.AddInt64(total, 1)
	<-sem
}

func tryAcquire(sem chan struct{}, active *int64) bool {
	select {
	case sem <- struct{}{}:
		atomic.AddInt64(active, 1)
		return true
	default:
		return false
	}
}

// AcquireFast waits for a fast slot. It fails with ErrBusy if ctx ends
// first.
func (p *WorkerPool) AcquireFast(ctx context.Context) error {
	return acquire(ctx, p.fastSem, &p.queuedFast, &p.activeFast)
}

// ReleaseFast releases a fast slot.
func (p *WorkerPool) ReleaseFast() {
	release(p.fastSem, &p.activeFast, &p.totalFast)
}

// AcquireSlow waits for a slow slot. It fails with ErrBusy if ctx ends
// first.
func (p *WorkerPool) AcquireSlow(ctx context.Context) error {
	return acquire(ctx, p.slowSem, &p.queuedSlow, &p.activeSlow)
}

// ReleaseSlow releases a slow slot.
func (p *WorkerPool) ReleaseSlow() {
	release(p.slowSem, &p.activeSlow, &p.totalSlow)
}

// TryAcquireFast takes a fast slot without blocking.
func (p *WorkerPool) TryAcquireFast() bool {
	return tryAcquire(p.fastSem, &p.activeFast)
}

// TryAcquireSlow takes a slow slot without blocking. Autoplay streams use
// it so a full pool is reported at once instead of holding the request.
func (p *WorkerPool) TryAcquireSlow() bool {
	return tryAcquire(p.slowSem, &p.activeSlow)
}

// RunFast runs fn in a fast slot.
func (p *WorkerPool) RunFast(ctx context.Context, fn func() error) error {
	if err := p.AcquireFast(ctx); err != nil {
		return err
	}
	defer p.ReleaseFast()
	return fn()
}

// PoolStats is a point-in-time view of the pool.
type PoolStats struct {
	ActiveFast int64 `json:"active_fast"`
	ActiveSlow int64 `json:"active_slow"`
	QueuedFast int64 `json:"queued_fast"`
	QueuedSlow int64 `json:"queued_slow"`
	TotalFast  int64 `json:"total_fast"`
	TotalSlow  int64 `json:"total_slow"`
	MaxFast    int   `json:"max_fast"`
	MaxSlow    int   `json:"max_slow"`
}

// Stats returns current pool statistics.
func (p *WorkerPool) Stats() PoolStats {
	return PoolStats{
		ActiveFast: atomic.LoadInt64(&p.activeFast),
		ActiveSlow: atomic.LoadInt64(&p.activeSlow),
		QueuedFast: atomic.LoadInt64(&p.queuedFast),
		QueuedSlow: atomic.LoadInt64(&p.queuedSlow),
		TotalFast:  atomic.LoadInt64(&p.totalFast),
		TotalSlow:  atomic.LoadInt64(&p.totalSlow),
		MaxFast:    cap(p.fastSem),
		MaxSlow:    cap(p.slowSem),
	}
}
