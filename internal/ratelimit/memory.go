package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Memory is a per-process sliding-window limiter.
type Memory struct {
	max int
	now func() time.Time

	mu      sync.Mutex
	clients map[string][]time.Time

	stop chan struct{}
	once sync.Once
}

var _ Limiter = (*Memory)(nil)

// NewMemory returns a limiter allowing max requests per Window and key. A
// background goroutine drops idle keys until Close is called.
func NewMemory(max int) *Memory {
	m := &Memory{
		max:     max,
		now:     time.Now,
		clients: make(map[string][]time.Time),
		stop:    make(chan struct{}),
	}
	go m.cleanupLoop(5 * time.Minute)
	return m
}

func (m *Memory) Allow(_ context.Context, key string) (bool, time.Duration) {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	stamps := prune(m.clients[key], now.Add(-Window))
	if len(stamps) >= m.max {
		m.clients[key] = stamps
		return false, stamps[0].Add(Window).Sub(now)
	}
	m.clients[key] = append(stamps, now)
	return true, 0
}

// Close stops the cleanup goroutine.
func (m *Memory) Close() {
	m.once.Do(func() { close(m.stop) })
}

func (m *Memory) cleanupLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			m.sweep()
		}
	}
}

func (m *Memory) sweep() {
	windowStart := m.now().Add(-Window)
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, stamps := range m.clients {
		stamps = prune(stamps, windowStart)
		if len(stamps) == 0 {
			delete(m.clients, key)
			continue
		}
		m.clients[key] = stamps
	}
}

// prune filters in place, keeping timestamps after windowStart.
func prune(stamps []time.Time, windowStart time.Time) []time.Time {
	valid := stamps[:0]
	for _, ts := range stamps {
		if ts.After(windowStart) {
			valid = append(valid, ts)
		}
	}
	return valid
}
