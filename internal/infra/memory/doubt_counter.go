package memory

import (
	"context"
	"sync"
)

// DoubtCounter is an in-memory implementation of app.DoubtCounter.
// Counters live for the process; rooms are never evicted.
type DoubtCounter struct {
	mu     sync.Mutex
	counts map[string]int64
}

func NewDoubtCounter() *DoubtCounter {
	return &DoubtCounter{counts: make(map[string]int64)}
}

func (c *DoubtCounter) GetOrInit(_ context.Context, room string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if count, ok := c.counts[room]; ok {
		return count, nil
	}
	c.counts[room] = 0
	return 0, nil
}

func (c *DoubtCounter) Increment(_ context.Context, room string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts[room]++
	return c.counts[room], nil
}

func (c *DoubtCounter) Reset(_ context.Context, room string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts[room] = 0
	return nil
}
