package progress

import (
	"log"
	"sync"
)

// subscriberQueueSize bounds each subscriber's queue. A stalled
// subscriber loses the oldest snapshots rather than growing memory
// without bound; only the latest state matters to an observer.
const subscriberQueueSize = 16

// Subscriber receives progress snapshots for one document
type Subscriber struct {
	ch     chan Snapshot
	mu     sync.Mutex
	closed bool
}

// Updates returns the snapshot channel. The channel is closed on
// unsubscribe and on session cleanup.
func (s *Subscriber) Updates() <-chan Snapshot {
	return s.ch
}

// Tracker owns all progress sessions and their subscriber lists.
// Construct one per service and inject it; there is no package-level
// instance, so tests never share state.
type Tracker struct {
	mu          sync.Mutex
	sessions    map[string]*session
	subscribers map[string][]*Subscriber
}

// NewTracker creates an empty tracker
func NewTracker() *Tracker {
	return &Tracker{
		sessions:    make(map[string]*session),
		subscribers: make(map[string][]*Subscriber),
	}
}

// CreateSession starts a fresh session for a document, replacing any
// previous one
func (t *Tracker) CreateSession(documentID string) Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	s := newSession()
	t.sessions[documentID] = s
	return s.snapshot()
}

// Get returns the current snapshot for a document
func (t *Tracker) Get(documentID string) (Snapshot, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.sessions[documentID]
	if !ok {
		return Snapshot{}, false
	}
	return s.snapshot(), true
}

// Update applies a partial update to the document's session (creating
// it on first use) and fans the new snapshot out to every subscriber.
func (t *Tracker) Update(documentID string, u Update) {
	t.mu.Lock()
	s, ok := t.sessions[documentID]
	if !ok {
		s = newSession()
		t.sessions[documentID] = s
	}

	if u.MarkStageComplete && !contains(s.completedStages, string(s.stage)) {
		s.completedStages = append(s.completedStages, string(s.stage))
	}
	if u.Stage != nil {
		s.stage = *u.Stage
	}
	if u.StageLabel != nil {
		s.stageLabel = *u.StageLabel
	}
	if u.Current != nil {
		s.current = *u.Current
	}
	if u.Total != nil {
		s.total = *u.Total
	}
	if u.Message != nil {
		s.message = *u.Message
	}
	if u.SubMessage != nil {
		s.subMessage = *u.SubMessage
	}

	snap := s.snapshot()
	// Snapshot the subscriber list so concurrent subscribe/unsubscribe
	// never corrupts an in-flight fan-out.
	subs := make([]*Subscriber, len(t.subscribers[documentID]))
	copy(subs, t.subscribers[documentID])
	t.mu.Unlock()

	for _, sub := range subs {
		sub.push(snap)
	}
}

// push delivers a snapshot, dropping the oldest queued one when the
// subscriber is not keeping up. A push racing an unsubscribe is a
// silent no-op.
func (s *Subscriber) push(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	for {
		select {
		case s.ch <- snap:
			return
		default:
		}
		select {
		case <-s.ch:
			log.Printf("progress: subscriber queue full, dropping oldest snapshot")
		default:
		}
	}
}

// shutdown marks the subscriber closed and closes its channel
func (s *Subscriber) shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.ch)
	}
}

// Subscribe registers a new observer for a document's progress
func (t *Tracker) Subscribe(documentID string) *Subscriber {
	t.mu.Lock()
	defer t.mu.Unlock()
	sub := &Subscriber{ch: make(chan Snapshot, subscriberQueueSize)}
	t.subscribers[documentID] = append(t.subscribers[documentID], sub)
	return sub
}

// Unsubscribe removes an observer. Its channel is closed; a
// disconnected observer simply stops being notified.
func (t *Tracker) Unsubscribe(documentID string, sub *Subscriber) {
	t.mu.Lock()
	defer t.mu.Unlock()
	subs := t.subscribers[documentID]
	for i, candidate := range subs {
		if candidate == sub {
			t.subscribers[documentID] = append(subs[:i], subs[i+1:]...)
			sub.shutdown()
			return
		}
	}
}

// Cleanup tears down a document's session and all its subscribers
func (t *Tracker) Cleanup(documentID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.sessions, documentID)
	for _, sub := range t.subscribers[documentID] {
		sub.shutdown()
	}
	delete(t.subscribers, documentID)
}

func contains(list []string, item string) bool {
	for _, s := range list {
		if s == item {
			return true
		}
	}
	return false
}
