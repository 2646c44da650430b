package stream

import (
	"context"
	"sync"
)

const memoryBuffer = 64

// Memory is an in-process Channel. Publish delivers to every subscription of the topic
// in publish order.
type Memory struct {
	mu     sync.Mutex
	subs   map[string]map[*memorySubscription]struct{}
	closed bool
}

func NewMemory() *Memory {
	return &Memory{subs: make(map[string]map[*memorySubscription]struct{})}
}

func (m *Memory) Subscribe(ctx context.Context, topic string) (Subscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrClosed
	}
	sub := &memorySubscription{broker: m, topic: topic, ch: make(chan []byte, memoryBuffer)}
	if _, ok := m.subs[topic]; !ok {
		m.subs[topic] = make(map[*memorySubscription]struct{})
	}
	m.subs[topic][sub] = struct{}{}
	return sub, nil
}

// Publish never blocks: a subscription whose buffer is full misses the message.
// It returns the number of subscriptions the message was delivered to.
func (m *Memory) Publish(topic string, body []byte) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	delivered := 0
	for sub := range m.subs[topic] {
		select {
		case sub.ch <- body:
			delivered++
		default:
		}
	}
	return delivered
}

// Subscribers returns the number of open subscriptions of a topic.
func (m *Memory) Subscribers(topic string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.subs[topic])
}

func (m *Memory) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	for topic, subs := range m.subs {
		for sub := range subs {
			close(sub.ch)
		}
		delete(m.subs, topic)
	}
}

type memorySubscription struct {
	broker *Memory
	topic  string
	ch     chan []byte
}

func (s *memorySubscription) Topic() string           { return s.topic }
func (s *memorySubscription) Messages() <-chan []byte { return s.ch }

func (s *memorySubscription) Close() error {
	s.broker.mu.Lock()
	defer s.broker.mu.Unlock()
	subs, ok := s.broker.subs[s.topic]
	if !ok {
		return nil
	}
	if _, ok := subs[s]; !ok {
		return nil
	}
	delete(subs, s)
	if len(subs) == 0 {
		delete(s.broker.subs, s.topic)
	}
	close(s.ch)
	return nil
}
