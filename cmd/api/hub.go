package main

import (
	"sync"

	v1 "github.com/PaulBabatuyi/healthJournal-gRPC/api/journal/v1"
	"github.com/google/uuid"
)

// defaultSubscriberBuffer is how many events may queue for one subscriber
// before it is considered too slow and dropped.
const defaultSubscriberBuffer = 64

// FeedHub fans message upserts out to live Subscribe streams. Each
// subscriber tracks the ids of its window of the most recent messages:
// an added message enters the window and pushes the oldest one out, a
// changed message is delivered only while it is inside the window.
type FeedHub struct {
	mu     sync.RWMutex
	subs   map[uuid.UUID]*subscriber
	buffer int
}

// NewFeedHub creates a hub whose subscribers queue up to buffer events.
func NewFeedHub(buffer int) *FeedHub {
	if buffer <= 0 {
		buffer = defaultSubscriberBuffer
	}
	return &FeedHub{subs: make(map[uuid.UUID]*subscriber), buffer: buffer}
}

// Register adds a subscriber with a window of limit messages. Events
// published before Seed is called are held back and replayed by Seed.
func (h *FeedHub) Register(limit int) *subscriber {
	s := &subscriber{
		id:      uuid.New(),
		limit:   limit,
		events:  make(chan *v1.UpsertEvent, h.buffer),
		dropped: make(chan struct{}),
		window:  make([]string, 0, limit),
	}
	h.mu.Lock()
	h.subs[s.id] = s
	h.mu.Unlock()
	subscribersGauge.Inc()
	return s
}

// Unregister removes a subscriber. Unknown ids are ignored.
func (h *FeedHub) Unregister(id uuid.UUID) {
	h.mu.Lock()
	_, ok := h.subs[id]
	delete(h.subs, id)
	h.mu.Unlock()
	if ok {
		subscribersGauge.Dec()
	}
}

// Len reports the number of registered subscribers.
func (h *FeedHub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Publish offers ev to every subscriber. It never blocks: a subscriber
// whose queue is full is dropped.
func (h *FeedHub) Publish(ev *v1.UpsertEvent) {
	h.mu.RLock()
	subs := make([]*subscriber, 0, len(h.subs))
	for _, s := range h.subs {
		subs = append(subs, s)
	}
	h.mu.RUnlock()

	eventsPublished.WithLabelValues(ev.GetKind()).Inc()
	var slow []uuid.UUID
	for _, s := range subs {
		if !s.offer(ev) {
			slow = append(slow, s.id)
		}
	}
	for _, id := range slow {
		subscribersDropped.Inc()
		h.Unregister(id)
	}
}

type subscriber struct {
	id      uuid.UUID
	limit   int
	events  chan *v1.UpsertEvent
	dropped chan struct{}

	mu      sync.Mutex
	seeded  bool
	closed  bool
	pending []*v1.UpsertEvent
	window  []string // oldest first
}

// ID returns the subscriber id.
func (s *subscriber) ID() uuid.UUID { return s.id }

// Events is the subscriber's queue.
func (s *subscriber) Events() <-chan *v1.UpsertEvent { return s.events }

// Dropped is closed once the subscriber fell behind.
func (s *subscriber) Dropped() <-chan struct{} { return s.dropped }

// Seed sets the initial window, oldest first, and replays the events
// held back since Register.
func (s *subscriber) Seed(ids []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(ids) > s.limit {
		ids = ids[len(ids)-s.limit:]
	}
	s.window = append(s.window[:0], ids...)
	s.seeded = true
	pending := s.pending
	s.pending = nil
	for _, ev := range pending {
		if !s.deliverLocked(ev) {
			return
		}
	}
}

// Window returns a copy of the ids currently in the window.
func (s *subscriber) Window() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.window...)
}

func (s *subscriber) offer(ev *v1.UpsertEvent) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	if !s.seeded {
		if len(s.pending) >= cap(s.events) {
			s.closeLocked()
			return false
		}
		s.pending = append(s.pending, ev)
		return true
	}
	return s.deliverLocked(ev)
}

func (s *subscriber) deliverLocked(ev *v1.UpsertEvent) bool {
	id := ev.GetId()
	inWindow := s.indexLocked(id) >= 0
	switch {
	case ev.GetKind() == v1.KindAdded && !inWindow:
		s.window = append(s.window, id)
		if len(s.window) > s.limit {
			s.window = s.window[len(s.window)-s.limit:]
		}
	case !inWindow:
		return true
	}

	select {
	case s.events <- ev:
		return true
	default:
		s.closeLocked()
		return false
	}
}

func (s *subscriber) indexLocked(id string) int {
	for i, w := range s.window {
		if w == id {
			return i
		}
	}
	return -1
}

func (s *subscriber) closeLocked() {
	if !s.closed {
		s.closed = true
		close(s.dropped)
	}
}
