package parallel

import (
	"strings"
	"sync/atomic"
	"testing"
)

func TestTrialPool_RunsEveryIndexOnce(t *testing.T) {
	pool := NewTrialPool(4)

	numTasks := 100
	counts := make([]int64, numTasks)
	err := pool.Run(numTasks, func(index int) {
		atomic.AddInt64(&counts[index], 1)
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	for i, c := range counts {
		if c != 1 {
			t.Errorf("Task %d ran %d times", i, c)
		}
	}
}

func TestTrialPool_BoundsConcurrency(t *testing.T) {
	pool := NewTrialPool(3)

	var inFlight, peak int64
	gate := make(chan struct{})
	done := make(chan error)
	go func() {
		done <- pool.Run(12, func(index int) {
			n := atomic.AddInt64(&inFlight, 1)
			for {
				p := atomic.LoadInt64(&peak)
				if n <= p || atomic.CompareAndSwapInt64(&peak, p, n) {
					break
				}
			}
			<-gate
			atomic.AddInt64(&inFlight, -1)
		})
	}()

	// Release the workers and drain the batch.
	close(gate)
	if err := <-done; err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if peak > 3 {
		t.Errorf("Expected at most 3 concurrent tasks, saw %d", peak)
	}
}

func TestTrialPool_PanicBecomesError(t *testing.T) {
	pool := NewTrialPool(2)

	var completed int64
	err := pool.Run(8, func(index int) {
		if index == 3 {
			panic("boom")
		}
		atomic.AddInt64(&completed, 1)
	})

	if err == nil || !strings.Contains(err.Error(), "trial 3") {
		t.Fatalf("Expected panic from trial 3 as error, got %v", err)
	}
	if completed != 7 {
		t.Errorf("Expected the rest of the batch to finish, got %d of 7", completed)
	}
}

func TestTrialPool_EmptyBatch(t *testing.T) {
	pool := NewTrialPool(2)

	if err := pool.Run(0, func(index int) {
		t.Error("Task must not run for an empty batch")
	}); err != nil {
		t.Errorf("Expected nil error for empty batch, got %v", err)
	}
}

func TestNewTrialPool_ClampsWorkers(t *testing.T) {
	if got := NewTrialPool(0).Workers(); got < 1 {
		t.Errorf("Expected at least one worker, got %d", got)
	}
	if got := NewTrialPool(-5).Workers(); got < 1 {
		t.Errorf("Expected at least one worker, got %d", got)
	}
	if got := NewTrialPool(7).Workers(); got != 7 {
		t.Errorf("Expected 7 workers, got %d", got)
	}
}
