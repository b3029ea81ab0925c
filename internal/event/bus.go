// Package event provides a typed, in-process publish/subscribe bus.
package event

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Handler receives a published value.
type Handler[T any] func(ctx context.Context, v T)

// Bus delivers values of type T to every subscriber synchronously, in
// subscription order. A panicking handler is recovered and logged so the
// remaining handlers still run. The zero value is not usable; use NewBus.
type Bus[T any] struct {
	name string

	mu       sync.RWMutex
	handlers []Handler[T]
}

// NewBus returns an empty bus. name only appears in log output.
func NewBus[T any](name string) *Bus[T] {
	return &Bus[T]{name: name}
}

// Subscribe registers h. It is safe to call concurrently with Publish.
func (b *Bus[T]) Subscribe(h Handler[T]) {
	if h == nil {
		return
	}
	b.mu.Lock()
	b.handlers = append(b.handlers, h)
	b.mu.Unlock()
}

// Len returns the number of subscribers.
func (b *Bus[T]) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers)
}

// Publish calls every subscriber with v. A nil bus is a no-op.
func (b *Bus[T]) Publish(ctx context.Context, v T) {
	if b == nil {
		return
	}
	b.mu.RLock()
	handlers := make([]Handler[T], len(b.handlers))
	copy(handlers, b.handlers)
	b.mu.RUnlock()

	for i, h := range handlers {
		b.deliver(ctx, i, h, v)
	}
}

func (b *Bus[T]) deliver(ctx context.Context, i int, h Handler[T], v T) {
	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "event handler panicked",
				"bus", b.name,
				"handler", i,
				"panic", fmt.Sprint(r),
			)
		}
	}()
	h(ctx, v)
}
