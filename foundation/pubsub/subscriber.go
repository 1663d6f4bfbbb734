package pubsub

import "sync"

type Subscriber struct {
	payload chan any

	mu     sync.Mutex
	closed bool
}

func NewSubscriber(channelCapacity int) *Subscriber {
	if channelCapacity < 1 {
		channelCapacity = 1
	}
	return &Subscriber{
		payload: make(chan any, channelCapacity),
	}
}

// Signal queues data without blocking. It reports false when the buffer is
// full or the subscriber is closed.
func (s *Subscriber) Signal(data any) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}
	select {
	case s.payload <- data:
		return true
	default:
		return false
	}
}

func (s *Subscriber) GetChannel() <-chan any {
	return s.payload
}

func (s *Subscriber) CloseChannel() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	close(s.payload)
}
