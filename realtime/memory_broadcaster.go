package realtime

import (
	"context"
	"sync"
)

const subscriptionBuffer = 32

// MemoryBroadcaster is an in-process hub. Slow subscribers lose messages.
type MemoryBroadcaster struct {
	mu          sync.RWMutex
	subscribers map[string]map[*memorySubscription]struct{}
}

func NewMemoryBroadcaster() *MemoryBroadcaster {
	return &MemoryBroadcaster{subscribers: map[string]map[*memorySubscription]struct{}{}}
}

func (b *MemoryBroadcaster) Publish(ctx context.Context, msg Message) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for s := range b.subscribers[msg.Channel] {
		select {
		case s.ch <- msg:
		default:
		}
	}
	return nil
}

func (b *MemoryBroadcaster) Subscribe(ctx context.Context, channels ...string) (Subscription, error) {
	s := &memorySubscription{hub: b, channels: channels, ch: make(chan Message, subscriptionBuffer)}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, c := range channels {
		if b.subscribers[c] == nil {
			b.subscribers[c] = map[*memorySubscription]struct{}{}
		}
		b.subscribers[c][s] = struct{}{}
	}
	return s, nil
}

func (b *MemoryBroadcaster) SubscriberCount(channel string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers[channel])
}

type memorySubscription struct {
	hub      *MemoryBroadcaster
	channels []string
	ch       chan Message
	once     sync.Once
}

func (s *memorySubscription) Messages() <-chan Message {
	return s.ch
}

func (s *memorySubscription) Close() error {
	s.once.Do(func() {
		s.hub.mu.Lock()
		defer s.hub.mu.Unlock()
		for _, c := range s.channels {
			delete(s.hub.subscribers[c], s)
			if len(s.hub.subscribers[c]) == 0 {
				delete(s.hub.subscribers, c)
			}
		}
		close(s.ch)
	})
	return nil
}
