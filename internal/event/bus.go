package event

import (
	"errors"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// Errors returned by the bus.
var (
	ErrNilHandler           = errors.New("handler cannot be nil")
	ErrSubscriptionNotFound = errors.New("subscription not found")
)

// Handler handles a buffer event.
type Handler func(BufferEvent)

// Priority orders handlers; higher priorities run first.
type Priority int

// Common priorities.
const (
	PriorityCritical Priority = 100 // syntax engine, runs before everything else
	PriorityHigh     Priority = 75
	PriorityNormal   Priority = 50 // default
	PriorityLow      Priority = 25 // logging, stats
)

// Subscription is an active registration on a Bus.
type Subscription struct {
	id       string
	priority Priority
	kinds    map[Kind]struct{}
	handler  Handler
	seq      uint64
	active   atomic.Bool
}

// ID returns the unique subscription ID.
func (s *Subscription) ID() string {
	return s.id
}

// IsActive returns true until the subscription is removed.
func (s *Subscription) IsActive() bool {
	return s.active.Load()
}

func (s *Subscription) matches(k Kind) bool {
	if len(s.kinds) == 0 {
		return true
	}
	_, ok := s.kinds[k]
	return ok
}

// SubscriptionOption configures a subscription.
type SubscriptionOption func(*Subscription)

// WithPriority sets the handler priority.
func WithPriority(p Priority) SubscriptionOption {
	return func(s *Subscription) {
		s.priority = p
	}
}

// WithKinds restricts delivery to the given kinds.
func WithKinds(kinds ...Kind) SubscriptionOption {
	return func(s *Subscription) {
		if s.kinds == nil {
			s.kinds = make(map[Kind]struct{}, len(kinds))
		}
		for _, k := range kinds {
			s.kinds[k] = struct{}{}
		}
	}
}

// Bus is a synchronous, priority-ordered event bus.
// It is safe for concurrent use; handlers may subscribe and unsubscribe
// from inside a handler.
type Bus struct {
	mu   sync.RWMutex
	subs []*Subscription
	seq  uint64

	published atomic.Uint64
	delivered atomic.Uint64
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers a handler.
func (b *Bus) Subscribe(h Handler, opts ...SubscriptionOption) (*Subscription, error) {
	if h == nil {
		return nil, ErrNilHandler
	}

	sub := &Subscription{
		id:       uuid.NewString(),
		priority: PriorityNormal,
		handler:  h,
	}
	for _, opt := range opts {
		opt(sub)
	}
	sub.active.Store(true)

	b.mu.Lock()
	defer b.mu.Unlock()

	b.seq++
	sub.seq = b.seq
	b.subs = append(b.subs, sub)
	// Higher priority first; equal priorities keep subscription order.
	sort.SliceStable(b.subs, func(i, j int) bool {
		if b.subs[i].priority != b.subs[j].priority {
			return b.subs[i].priority > b.subs[j].priority
		}
		return b.subs[i].seq < b.subs[j].seq
	})
	return sub, nil
}

// Unsubscribe removes a subscription.
func (b *Bus) Unsubscribe(sub *Subscription) error {
	if sub == nil {
		return ErrSubscriptionNotFound
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for i, s := range b.subs {
		if s == sub {
			s.active.Store(false)
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			return nil
		}
	}
	return ErrSubscriptionNotFound
}

// Publish delivers evt to every matching handler before returning.
// Handler panics propagate to the publisher.
func (b *Bus) Publish(evt BufferEvent) {
	b.mu.RLock()
	subs := make([]*Subscription, len(b.subs))
	copy(subs, b.subs)
	b.mu.RUnlock()

	b.published.Add(1)
	for _, sub := range subs {
		if !sub.IsActive() || !sub.matches(evt.Kind) {
			continue
		}
		sub.handler(evt)
		b.delivered.Add(1)
	}
}

// Count returns the number of active subscriptions.
func (b *Bus) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Stats returns bus statistics.
func (b *Bus) Stats() Stats {
	return Stats{
		EventsPublished:   b.published.Load(),
		HandlersExecuted:  b.delivered.Load(),
		ActiveSubscribers: b.Count(),
	}
}

// Stats contains bus statistics.
type Stats struct {
	EventsPublished   uint64
	HandlersExecuted  uint64
	ActiveSubscribers int
}
