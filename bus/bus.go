// Package bus is a bounded broadcast channel: one producer publishes without
// ever blocking, a fixed number of subscribers each read every event in
// publish order.
package bus

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrNoSubscriberSlot is returned by Subscribe when every slot is taken.
	ErrNoSubscriberSlot = errors.New("bus: no subscriber slot available")
	// ErrClosed is returned once the bus or the subscription is closed and
	// nothing is pending.
	ErrClosed = errors.New("bus: closed")
)

// Policy decides what Publish does when the slowest subscriber is a full
// buffer behind.
type Policy uint8

const (
	// EvictOldest overwrites the oldest pending event; lagging subscribers
	// skip it and account for it in Lagged.
	EvictOldest Policy = iota
	// DropNewest discards the event being published.
	DropNewest
)

func (p Policy) String() string {
	switch p {
	case EvictOldest:
		return "evict-oldest"
	case DropNewest:
		return "drop-newest"
	default:
		return fmt.Sprintf("policy(%d)", uint8(p))
	}
}

// ParsePolicy accepts the String form of a policy.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "evict-oldest":
		return EvictOldest, nil
	case "drop-newest":
		return DropNewest, nil
	}
	return 0, fmt.Errorf("bus: unknown policy %q", s)
}

// Config sizes a bus.
type Config struct {
	Capacity    int
	Subscribers int
	Policy      Policy
}

// DefaultConfig holds 32 pending events for a single subscriber.
func DefaultConfig() Config {
	return Config{Capacity: 32, Subscribers: 1, Policy: EvictOldest}
}

// Stats are cumulative counters.
type Stats struct {
	Published   uint64
	Discarded   uint64 // published with no subscriber
	Dropped     uint64 // rejected under DropNewest
	Evicted     uint64 // overwritten under EvictOldest
	Subscribers int
}

// Bus carries values of type T. Create one with New; the zero value is not
// usable.
type Bus[T any] struct {
	mu     sync.Mutex
	policy Policy
	buf    []T
	head   uint64
	subs   []*Subscription[T]
	closed bool
	stats  Stats
}

// New returns an open bus. Non-positive sizes fall back to the defaults.
func New[T any](cfg Config) *Bus[T] {
	def := DefaultConfig()
	if cfg.Capacity <= 0 {
		cfg.Capacity = def.Capacity
	}
	if cfg.Subscribers <= 0 {
		cfg.Subscribers = def.Subscribers
	}
	return &Bus[T]{
		policy: cfg.Policy,
		buf:    make([]T, cfg.Capacity),
		subs:   make([]*Subscription[T], cfg.Subscribers),
	}
}

// Publish enqueues v for every subscriber and never blocks. It reports
// whether v was enqueued: false when the bus is closed, has no subscriber,
// or v was dropped by the DropNewest policy.
func (b *Bus[T]) Publish(v T) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return false
	}
	if b.stats.Subscribers == 0 {
		b.stats.Discarded++
		return false
	}

	size := uint64(len(b.buf))
	oldest := b.head
	for _, s := range b.subs {
		if s != nil && s.next < oldest {
			oldest = s.next
		}
	}
	if b.head-oldest >= size {
		if b.policy == DropNewest {
			b.stats.Dropped++
			return false
		}
		for _, s := range b.subs {
			if s != nil && b.head-s.next >= size {
				s.next++
				s.lag++
			}
		}
		b.stats.Evicted++
	}

	b.buf[b.head%size] = v
	b.head++
	b.stats.Published++
	for _, s := range b.subs {
		if s != nil {
			s.wake()
		}
	}
	return true
}

// Subscribe claims a slot. The subscription sees events published after this
// call.
func (b *Bus[T]) Subscribe() (*Subscription[T], error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, ErrClosed
	}
	for i, s := range b.subs {
		if s != nil {
			continue
		}
		s = &Subscription[T]{
			b:      b,
			slot:   i,
			next:   b.head,
			notify: make(chan struct{}, 1),
		}
		b.subs[i] = s
		b.stats.Subscribers++
		return s, nil
	}
	return nil, ErrNoSubscriberSlot
}

// Close stops the bus. Subscribers drain what is pending, then get ErrClosed.
func (b *Bus[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for _, s := range b.subs {
		if s != nil {
			s.wake()
		}
	}
}

// Stats returns a copy of the counters.
func (b *Bus[T]) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stats
}

// Subscription is one reader of a bus. It is meant for a single goroutine.
type Subscription[T any] struct {
	b      *Bus[T]
	slot   int
	next   uint64
	lag    uint64
	closed bool
	notify chan struct{}
}

func (s *Subscription[T]) wake() {
	select {
	case s.notify <- struct{}{}:
	default:
	}
}

// TryNext returns the next pending event without waiting.
func (s *Subscription[T]) TryNext() (T, bool) {
	s.b.mu.Lock()
	defer s.b.mu.Unlock()
	return s.pop()
}

// pop is called with the bus lock held.
func (s *Subscription[T]) pop() (T, bool) {
	var zero T
	if s.closed || s.next >= s.b.head {
		return zero, false
	}
	v := s.b.buf[s.next%uint64(len(s.b.buf))]
	s.next++
	return v, true
}

// Next waits for the next event. It returns ctx.Err() when ctx ends first and
// ErrClosed once the bus or the subscription is closed and drained.
func (s *Subscription[T]) Next(ctx context.Context) (T, error) {
	var zero T
	for {
		s.b.mu.Lock()
		v, ok := s.pop()
		done := s.closed || s.b.closed
		s.b.mu.Unlock()

		if ok {
			return v, nil
		}
		if done {
			return zero, ErrClosed
		}

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-s.notify:
		}
	}
}

// Lagged returns how many events were evicted before this subscriber read
// them since the previous call, and resets the count.
func (s *Subscription[T]) Lagged() uint64 {
	s.b.mu.Lock()
	defer s.b.mu.Unlock()
	n := s.lag
	s.lag = 0
	return n
}

// Pending returns the number of events waiting to be read.
func (s *Subscription[T]) Pending() int {
	s.b.mu.Lock()
	defer s.b.mu.Unlock()
	if s.closed {
		return 0
	}
	return int(s.b.head - s.next)
}

// Close frees the slot.
func (s *Subscription[T]) Close() {
	s.b.mu.Lock()
	defer s.b.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.b.subs[s.slot] = nil
	s.b.stats.Subscribers--
	s.wake()
}
