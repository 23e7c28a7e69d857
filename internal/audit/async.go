package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// AsyncLogger decorates another Logger with a buffered worker so callers
// never block on audit persistence. When the buffer is full the entry is
// dropped with a warning instead of stalling the mutation that produced it.
type AsyncLogger struct {
	sink    Logger
	log     *slog.Logger
	entries chan Change
	done    chan struct{}
	once    sync.Once
	wg      sync.WaitGroup
}

func NewAsyncLogger(sink Logger, log *slog.Logger, buffer int) *AsyncLogger {
	if buffer <= 0 {
		buffer = 256
	}

	l := &AsyncLogger{
		sink:    sink,
		log:     log,
		entries: make(chan Change, buffer),
		done:    make(chan struct{}),
	}

	l.wg.Add(1)
	go l.worker()

	return l
}

func (l *AsyncLogger) LogChange(_ context.Context, change Change) error {
	select {
	case <-l.done:
		l.log.Warn("audit logger closed, entry dropped",
			"entityType", change.EntityType, "entityId", change.EntityID, "action", change.Action)
		return nil
	default:
	}

	select {
	case l.entries <- change:
	default:
		l.log.Warn("audit buffer full, entry dropped",
			"entityType", change.EntityType, "entityId", change.EntityID, "action", change.Action)
	}
	return nil
}

func (l *AsyncLogger) worker() {
	defer l.wg.Done()

	for {
		select {
		case change := <-l.entries:
			l.write(change)
		case <-l.done:
			for {
				select {
				case change := <-l.entries:
					l.write(change)
				default:
					return
				}
			}
		}
	}
}

func (l *AsyncLogger) write(change Change) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := l.sink.LogChange(ctx, change); err != nil {
		l.log.Error("audit write failed",
			"entityType", change.EntityType, "entityId", change.EntityID,
			"action", change.Action, "error", err)
	}
}

// Close drains buffered entries and stops the worker.
func (l *AsyncLogger) Close() {
	l.once.Do(func() { close(l.done) })
	l.wg.Wait()
}
