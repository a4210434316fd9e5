package group

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestLocksSerializePerGroup(t *testing.T) {
	locks := NewLocks()
	ctx := context.Background()

	var (
		mu      sync.Mutex
		running int
		maxSeen int
		wg      sync.WaitGroup
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := locks.Lock(ctx, "g1")
			if err != nil {
				t.Error(err)
				return
			}
			mu.Lock()
			running++
			if running > maxSeen {
				maxSeen = running
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			running--
			mu.Unlock()
			unlock()
		}()
	}
	wg.Wait()

	if maxSeen != 1 {
		t.Errorf("max concurrent holders = %d, want 1", maxSeen)
	}
}

func TestLocksIndependentGroups(t *testing.T) {
	locks := NewLocks()
	ctx := context.Background()

	unlockA, err := locks.Lock(ctx, "a")
	if err != nil {
		t.Fatal(err)
	}
	defer unlockA()

	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	unlockB, err := locks.Lock(ctx, "b")
	if err != nil {
		t.Fatalf("lock on other group blocked: %v", err)
	}
	unlockB()
}

func TestLocksHonorContext(t *testing.T) {
	locks := NewLocks()

	unlock, err := locks.Lock(context.Background(), "g")
	if err != nil {
		t.Fatal(err)
	}
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := locks.Lock(ctx, "g"); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Lock() error = %v, want deadline exceeded", err)
	}
}
