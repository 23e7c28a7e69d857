package event

import (
	"io"
	"log/slog"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestBus() *Bus {
	return NewBus(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestBusDeliversToSubscribers(t *testing.T) {
	t.Parallel()

	bus := newTestBus()
	var delivered atomic.Int32

	bus.Subscribe(UserCreated, func(e Event) {
		require.Equal(t, UserCreated, e.Name)
		delivered.Add(1)
	})
	bus.Subscribe(UserCreated, func(Event) { delivered.Add(1) })
	bus.Subscribe(TaskCreated, func(Event) { delivered.Add(100) })

	bus.Publish(New(UserCreated, nil, "admin"))
	bus.Wait()

	require.Equal(t, int32(2), delivered.Load())
}

func TestBusRecoversPanickingHandler(t *testing.T) {
	t.Parallel()

	bus := newTestBus()
	var delivered atomic.Int32

	bus.Subscribe(ProjectCreated, func(Event) { panic("boom") })
	bus.Subscribe(ProjectCreated, func(Event) { delivered.Add(1) })

	bus.Publish(New(ProjectCreated, nil, ""))
	bus.Wait()

	require.Equal(t, int32(1), delivered.Load())
}

func TestBusIgnoresEventsWithoutSubscribers(t *testing.T) {
	t.Parallel()

	bus := newTestBus()
	bus.Publish(New(UserDeleted, nil, ""))
	bus.Wait()
}
