package event

import (
	"log/slog"
	"sync"
)

// Handler receives a published event. Handlers run asynchronously and must
// not assume ordering across events.
type Handler func(Event)

// Bus is an in-process publish/subscribe dispatcher. Publishing never
// blocks the caller; panicking handlers are recovered and logged.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	log      *slog.Logger
	wg       sync.WaitGroup
}

func NewBus(log *slog.Logger) *Bus {
	return &Bus{
		handlers: make(map[string][]Handler),
		log:      log,
	}
}

func (b *Bus) Subscribe(name string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[name] = append(b.handlers[name], handler)
}

func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	handlers := b.handlers[e.Name]
	b.mu.RUnlock()

	for _, handler := range handlers {
		b.wg.Add(1)
		go func(h Handler) {
			defer b.wg.Done()
			defer func() {
				if r := recover(); r != nil {
					b.log.Error("event handler panicked", "event", e.Name, "panic", r)
				}
			}()
			h(e)
		}(handler)
	}
}

// Wait blocks until all in-flight handlers finish. Used on shutdown.
func (b *Bus) Wait() {
	b.wg.Wait()
}
