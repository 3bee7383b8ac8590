package memory

import (
	"context"
	"sync"
	"testing"
)

func TestDoubtCounterGetOrInit(t *testing.T) {
	counter := NewDoubtCounter()

	count, err := counter.GetOrInit(context.Background(), "room-1")
	if err != nil {
		t.Fatalf("get or init: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected fresh room at 0, got %d", count)
	}

	if _, err := counter.Increment(context.Background(), "room-1"); err != nil {
		t.Fatalf("increment: %v", err)
	}

	count, _ = counter.GetOrInit(context.Background(), "room-1")
	if count != 1 {
		t.Fatalf("expected existing count preserved, got %d", count)
	}
}

func TestDoubtCounterResetUnknownRoom(t *testing.T) {
	counter := NewDoubtCounter()

	if err := counter.Reset(context.Background(), "never-joined"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	count, _ := counter.GetOrInit(context.Background(), "never-joined")
	if count != 0 {
		t.Fatalf("expected 0 after reset of unknown room, got %d", count)
	}
}

func TestDoubtCounterConcurrentIncrements(t *testing.T) {
	counter := NewDoubtCounter()

	const callers = 100
	var wg sync.WaitGroup
	wg.Add(callers)
	for i := 0; i < callers; i++ {
		go func() {
			defer wg.Done()
			if _, err := counter.Increment(context.Background(), "room-1"); err != nil {
				t.Errorf("increment: %v", err)
			}
		}()
	}
	wg.Wait()

	count, _ := counter.GetOrInit(context.Background(), "room-1")
	if count != callers {
		t.Fatalf("lost updates: expected %d, got %d", callers, count)
	}
}
