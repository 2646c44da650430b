package stream

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryDeliversInOrder(t *testing.T) {
	m := NewMemory()
	sub, err := m.Subscribe(context.Background(), "/topic/live-events")
	require.NoError(t, err)
	other, err := m.Subscribe(context.Background(), "/topic/match/1")
	require.NoError(t, err)

	m.Publish("/topic/live-events", []byte("a"))
	m.Publish("/topic/live-events", []byte("b"))

	assert.Equal(t, "a", string(<-sub.Messages()))
	assert.Equal(t, "b", string(<-sub.Messages()))
	assert.Empty(t, other.Messages())
	assert.Equal(t, "/topic/live-events", sub.Topic())
}

func TestMemoryCloseStopsDelivery(t *testing.T) {
	m := NewMemory()
	sub, err := m.Subscribe(context.Background(), "t")
	require.NoError(t, err)
	assert.Equal(t, 1, m.Subscribers("t"))

	require.NoError(t, sub.Close())
	require.NoError(t, sub.Close())
	assert.Equal(t, 0, m.Subscribers("t"))

	m.Publish("t", []byte("late"))
	_, ok := <-sub.Messages()
	assert.False(t, ok)
}

func TestMemoryClosedChannel(t *testing.T) {
	m := NewMemory()
	sub, err := m.Subscribe(context.Background(), "t")
	require.NoError(t, err)
	m.Close()

	_, ok := <-sub.Messages()
	assert.False(t, ok)
	assert.NoError(t, sub.Close())

	_, err = m.Subscribe(context.Background(), "t")
	assert.ErrorIs(t, err, ErrClosed)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewMemory().Subscribe(ctx, "t")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMemoryPublishDoesNotBlockOnFullBuffer(t *testing.T) {
	m := NewMemory()
	sub, err := m.Subscribe(context.Background(), "t")
	require.NoError(t, err)

	delivered := 0
	for i := 0; i < memoryBuffer+10; i++ {
		delivered += m.Publish("t", []byte{byte(i)})
	}
	assert.Equal(t, memoryBuffer, delivered)
	assert.Len(t, sub.Messages(), memoryBuffer)

	closed := make(chan struct{})
	go func() {
		_ = sub.Close()
		close(closed)
	}()
	select {
	case <-closed:
	case <-time.After(time.Second):
		t.Fatal("Close blocked behind a full subscription")
	}
	assert.Equal(t, 0, m.Subscribers("t"))
}
