package enginestub

import (
	"context"
	"sync"

	"github.com/snauth/authbridge/internal/models"
)

// FlowBus connects a waiting startAuth stream to the verifyOtp request that
// completes it. Streams subscribe on the phone number; verification
// publishes the responses that should continue the stream.
type FlowBus interface {
	// Publish fans a response out to the streams subscribed to the phone.
	Publish(ctx context.Context, phone string, resp models.AuthResponse) error

	// Subscribe returns an ordered response channel for the phone and a
	// cancel function releasing the subscription.
	Subscribe(ctx context.Context, phone string) (<-chan models.AuthResponse, func(), error)
}

// memoryBus is the in-process FlowBus used when no Redis is configured.
type memoryBus struct {
	mu   sync.Mutex
	subs map[string][]chan models.AuthResponse
}

// NewMemoryBus creates an in-process flow bus.
func NewMemoryBus() FlowBus {
	return &memoryBus{subs: make(map[string][]chan models.AuthResponse)}
}

func (b *memoryBus) Publish(_ context.Context, phone string, resp models.AuthResponse) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subs[phone] {
		select {
		case ch <- resp:
		default:
			// Slow subscriber; drop rather than block the publisher.
		}
	}
	return nil
}

func (b *memoryBus) Subscribe(_ context.Context, phone string) (<-chan models.AuthResponse, func(), error) {
	ch := make(chan models.AuthResponse, 8)

	b.mu.Lock()
	b.subs[phone] = append(b.subs[phone], ch)
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()

		subs := b.subs[phone]
		for i, sub := range subs {
			if sub == ch {
				b.subs[phone] = append(subs[:i], subs[i+1:]...)
				break
			}
		}
		if len(b.subs[phone]) == 0 {
			delete(b.subs, phone)
		}
	}
	return ch, cancel, nil
}
