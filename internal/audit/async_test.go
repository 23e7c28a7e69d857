package audit

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	mu      sync.Mutex
	changes []Change
	err     error
}

func (s *recordingSink) LogChange(_ context.Context, change Change) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.changes = append(s.changes, change)
	return nil
}

func (s *recordingSink) recorded() []Change {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Change(nil), s.changes...)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestAsyncLoggerDeliversEntries(t *testing.T) {
	t.Parallel()

	sink := &recordingSink{}
	logger := NewAsyncLogger(sink, discardLogger(), 16)

	for i := 0; i < 5; i++ {
		require.NoError(t, logger.LogChange(context.Background(), Change{
			EntityType: "user",
			EntityID:   "u-1",
			Action:     ActionUpdate,
		}))
	}
	logger.Close()

	require.Len(t, sink.recorded(), 5)
}

func TestAsyncLoggerSwallowsSinkErrors(t *testing.T) {
	t.Parallel()

	sink := &recordingSink{err: errors.New("connection refused")}
	logger := NewAsyncLogger(sink, discardLogger(), 4)

	err := logger.LogChange(context.Background(), Change{EntityType: "task", EntityID: "t-1", Action: ActionCreate})
	require.NoError(t, err)

	logger.Close()
}

func TestAsyncLoggerDropsWhenClosed(t *testing.T) {
	t.Parallel()

	sink := &recordingSink{}
	logger := NewAsyncLogger(sink, discardLogger(), 4)
	logger.Close()

	require.NoError(t, logger.LogChange(context.Background(), Change{EntityType: "user", EntityID: "u-2", Action: ActionArchive}))

	time.Sleep(10 * time.Millisecond)
	require.Empty(t, sink.recorded())
}
