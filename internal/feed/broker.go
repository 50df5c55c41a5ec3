package feed

import (
	"context"
	"sync"
)

// Broker carries events from the mutation path to every hub, including hubs
// in other processes.
type Broker interface {
	Publish(ctx context.Context, e Event) error
	// Subscribe returns a channel of events. The channel closes when ctx is
	// cancelled.
	Subscribe(ctx context.Context) <-chan Event
}

// LocalBroker is an in-process loopback for single-node deployments and
// tests.
type LocalBroker struct {
	mu   sync.Mutex
	subs []chan Event
}

func NewLocalBroker() *LocalBroker {
	return &LocalBroker{}
}

func (b *LocalBroker) Publish(_ context.Context, e Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, sub := range b.subs {
		select {
		case sub <- e:
		default:
			// A stalled hub loses events rather than blocking the mutation
			// path. Dashboards recover on the next list fetch.
		}
	}
	return nil
}

func (b *LocalBroker) Subscribe(ctx context.Context) <-chan Event {
	sub := make(chan Event, 64)
	b.mu.Lock()
	b.subs = append(b.subs, sub)
	b.mu.Unlock()

	out := make(chan Event)
	go func() {
		defer close(out)
		defer b.drop(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case e := <-sub:
				select {
				case out <- e:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}

func (b *LocalBroker) drop(sub chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, s := range b.subs {
		if s == sub {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			return
		}
	}
}
