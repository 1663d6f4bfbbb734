package pubsub

import (
	"fmt"
	"sync"
)

type Broker struct {
	topics map[string][]*Subscriber
	sync.RWMutex
}

func NewBroker() *Broker {
	return &Broker{
		topics: make(map[string][]*Subscriber, 0),
	}
}

// Publish hands data to every subscriber of topic and returns how many took
// it. Subscribers with a full buffer miss the message.
func (b *Broker) Publish(topic string, data any) int {
	b.RLock()
	defer b.RUnlock()

	var delivered int
	for _, sub := range b.topics[topic] {
		if sub.Signal(data) {
			delivered++
		}
	}
	return delivered
}

func (b *Broker) Subscribe(topic string, s *Subscriber) {
	b.Lock()
	defer b.Unlock()
	{
		_, exists := b.topics[topic]
		if !exists {
			b.topics[topic] = make([]*Subscriber, 0)
		}

		b.topics[topic] = append(b.topics[topic], s)
	}
}

func (b *Broker) UnSubscribe(topic string, s *Subscriber) error {
	b.Lock()
	defer b.Unlock()
	{
		subs, exists := b.topics[topic]
		if !exists {
			return fmt.Errorf("topic[%s] does not exists", topic)
		}

		b.topics[topic] = removeFromSlice(subs, s)
		if len(b.topics[topic]) == 0 {
			delete(b.topics, topic)
		}
		s.CloseChannel()
	}

	return nil
}

func (b *Broker) Subscribers(topic string) int {
	b.RLock()
	defer b.RUnlock()

	return len(b.topics[topic])
}

// =================================================================================================================

func removeFromSlice[T comparable](s []T, d T) []T {
	for i := range s {
		if s[i] == d {
			s[i] = s[len(s)-1]
			return s[:len(s)-1]
		}
	}
	return s
}
