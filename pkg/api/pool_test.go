package api

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestWorkerPoolBasic(t *testing.T) {
	pool := NewWorkerPool(PoolConfig{
		MaxFastWorkers: 2,
		MaxSlowWorkers: 1,
	})

	ctx := context.Background()
	if err := pool.AcquireFast(ctx); err != nil {
		t.Fatalf("Failed to acquire fast worker: %v", err)
	}

	stats := pool.Stats()
	if stats.ActiveFast != 1 {
		t.Errorf("Expected 1 active fast worker, got %d", stats.ActiveFast)
	}

	pool.ReleaseFast()
	stats = pool.Stats()
	if stats.ActiveFast != 0 {
		t.Errorf("Expected 0 active fast workers after release, got %d", stats.ActiveFast)
	}
	if stats.TotalFast != 1 {
		t.Errorf("Expected 1 total fast request, got %d", stats.TotalFast)
	}
}

func TestWorkerPoolSlowOperations(t *testing.T) {
	pool := NewWorkerPool(PoolConfig{
		MaxFastWorkers: 10,
		MaxSlowWorkers: 2,
	})

	if !pool.TryAcquireSlow() || !pool.TryAcquireSlow() {
		t.Fatal("Failed to acquire two slow workers")
	}
	if stats := pool.Stats(); stats.ActiveSlow != 2 {
		t.Errorf("Expected 2 active slow workers, got %d", stats.ActiveSlow)
	}
	if pool.TryAcquireSlow() {
		t.Error("Should not be able to acquire third slow worker")
	}

	pool.ReleaseSlow()
	pool.ReleaseSlow()

	if stats := pool.Stats(); stats.TotalSlow != 2 {
		t.Errorf("Expected 2 total slow requests, got %d", stats.TotalSlow)
	}
}

func TestWorkerPoolContextCancellation(t *testing.T) {
	pool := NewWorkerPool(PoolConfig{MaxFastWorkers: 1, MaxSlowWorkers: 1})

	if err := pool.AcquireFast(context.Background()); err != nil {
		t.Fatalf("Failed to acquire fast worker: %v", err)
	}

	cancelCtx, cancel := context.WithCancel(context.Background())
	cancel()

	err := pool.AcquireFast(cancelCtx)
	if !errors.Is(err, ErrBusy) || !errors.Is(err, context.Canceled) {
		t.Errorf("Expected ErrBusy wrapping context.Canceled, got %v", err)
	}

	pool.ReleaseFast()
}

func TestWorkerPoolTimeout(t *testing.T) {
	pool := NewWorkerPool(PoolConfig{MaxFastWorkers: 1, MaxSlowWorkers: 1})

	if err := pool.AcquireSlow(context.Background()); err != nil {
		t.Fatalf("Failed to acquire slow worker: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := pool.AcquireSlow(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected context.DeadlineExceeded, got %v", err)
	}

	pool.ReleaseSlow()
}

func TestWorkerPoolConcurrency(t *testing.T) {
	pool := NewWorkerPool(PoolConfig{MaxFastWorkers: 5, MaxSlowWorkers: 2})

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		running int
		peak    int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := pool.RunFast(context.Background(), func() error {
				mu.Lock()
				running++
				peak = max(peak, running)
				mu.Unlock()
				time.Sleep(10 * time.Millisecond)
				mu.Lock()
				running--
				mu.Unlock()
				return nil
			})
			if err != nil {
				t.Errorf("RunFast error: %v", err)
			}
		}()
	}
	wg.Wait()

	if stats := pool.Stats(); stats.TotalFast != 10 {
		t.Errorf("Expected 10 total fast requests, got %d", stats.TotalFast)
	}
	if peak > 5 {
		t.Errorf("peak concurrency = %d, want <= 5", peak)
	}
}

func TestWorkerPoolDefaults(t *testing.T) {
	stats := NewWorkerPool(PoolConfig{}).Stats()
	def := DefaultPoolConfig()
	if stats.MaxFast != def.MaxFastWorkers || stats.MaxSlow != def.MaxSlowWorkers {
		t.Errorf("Stats() max = %d/%d, want %d/%d", stats.MaxFast, stats.MaxSlow, def.MaxFastWorkers, def.MaxSlowWorkers)
	}
}
