package journal

import (
	"context"
	"sync"

	"github.com/PaulBabatuyi/healthJournal-gRPC/internal/domain"
)

// Feed keeps at most one live subscription to a message store. Opening a
// new subscription cancels the previous one and waits for it to stop first,
// so the two never overlap.
type Feed struct {
	store domain.MessageStore

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewFeed returns a Feed over store.
func NewFeed(store domain.MessageStore) *Feed {
	return &Feed{store: store}
}

// Open subscribes to the most recent limit messages. onEvent and onErr run
// on the feed's goroutine; onErr is called at most once, when the feed fails.
// Cancelling ctx or calling Close or Open again stops delivery.
func (f *Feed) Open(ctx context.Context, limit int, onEvent func(domain.Event), onErr func(error)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopLocked()

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	f.cancel, f.done = cancel, done

	go func() {
		defer close(done)
		for ev, err := range f.store.Subscribe(ctx, limit) {
			if ctx.Err() != nil {
				return
			}
			if err != nil {
				onErr(err)
				return
			}
			onEvent(ev)
		}
	}()
}

// Close stops the live subscription, if any, and waits for it.
func (f *Feed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopLocked()
}

// Active reports whether a subscription is running.
func (f *Feed) Active() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.done == nil {
		return false
	}
	select {
	case <-f.done:
		return false
	default:
		return true
	}
}

func (f *Feed) stopLocked() {
	if f.cancel == nil {
		return
	}
	f.cancel()
	<-f.done
	f.cancel, f.done = nil, nil
}
