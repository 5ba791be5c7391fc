// Package signal holds small observable values shared between the request
// goroutines of one browser session.
package signal

import "sync"

// Signal is a value with one writer and many readers. Readers either poll
// Get or subscribe to be told about every change.
type Signal[T any] struct {
	mu     sync.RWMutex
	val    T
	nextID int
	subs   map[int]func(T)
}

func New[T any](initial T) *Signal[T] {
	return &Signal[T]{
		val:  initial,
		subs: make(map[int]func(T)),
	}
}

func (s *Signal[T]) Get() T {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.val
}

func (s *Signal[T]) Set(v T) {
	s.mu.Lock()
	s.val = v
	subs := s.snapshotSubs()
	s.mu.Unlock()

	for _, fn := range subs {
		fn(v)
	}
}

// Update replaces the value with fn(current) under the write lock.
func (s *Signal[T]) Update(fn func(T) T) T {
	s.mu.Lock()
	s.val = fn(s.val)
	v := s.val
	subs := s.snapshotSubs()
	s.mu.Unlock()

	for _, sub := range subs {
		sub(v)
	}

	return v
}

// Subscribe registers fn for future changes and returns a function that
// removes it. fn runs on the writer's goroutine and must not block.
func (s *Signal[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *Signal[T]) snapshotSubs() []func(T) {
	if len(s.subs) == 0 {
		return nil
	}

	out := make([]func(T), 0, len(s.subs))
	for _, fn := range s.subs {
		out = append(out, fn)
	}

	return out
}
