package pubsub

import (
	"context"
	"sync"
)

// Mock is an in process pubsub client for tests. It records published
// events per topic and delivers them synchronously to subscribers.
type Mock struct {
	mu        sync.Mutex
	published map[string][]Message
	subs      map[string][]EventHandler
}

// NewMock returns a new mock pubsub client
func NewMock() *Mock {
	return &Mock{
		published: map[string][]Message{},
		subs:      map[string][]EventHandler{},
	}
}

// Publish records the event and delivers it to topic subscribers
func (m *Mock) Publish(ctx context.Context, topic string, payload Event) error {
	msg, err := payload.Marshal()
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.published[topic] = append(m.published[topic], msg)
	subs := append([]EventHandler(nil), m.subs[topic]...)
	m.mu.Unlock()

	for _, cb := range subs {
		if err := cb(ctx, msg); err != nil {
			return err
		}
	}
	return nil
}

// Subscribe registers a callback for a topic
func (m *Mock) Subscribe(_ context.Context, topic string, callback EventHandler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs[topic] = append(m.subs[topic], callback)
}

// Published returns the messages published on a topic
func (m *Mock) Published(topic string) []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Message(nil), m.published[topic]...)
}
