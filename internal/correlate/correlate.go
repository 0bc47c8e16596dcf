// Package correlate builds synchronous-looking request/response semantics
// on top of the asynchronous server push stream. A caller issues a request,
// parks on a slot, and the receive path completes it; the caller's own
// timeout is the only thing that ever abandons a wait, so a timeout can
// never leave the receive path blocked or corrupt a later correlation.
package correlate

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Slot is a single-assignment completion handle. Completing an abandoned
// slot is harmless: the value sits in the buffer and nobody observes it.
type Slot[T any] struct {
	done atomic.Bool
	ch   chan T
}

func NewSlot[T any]() *Slot[T] {
	return &Slot[T]{ch: make(chan T, 1)}
}

// Complete fulfills the slot. Only the first completion ever lands; the
// rest report false, including after the waiter has consumed the value —
// a slot stays spent so an unkeyed reply can never be attributed to a
// check that was already resolved.
func (s *Slot[T]) Complete(v T) bool {
	if !s.done.CompareAndSwap(false, true) {
		return false
	}
	s.ch <- v // 1-buffered and guarded by done: never blocks
	return true
}

// Await blocks until the slot completes, the timeout elapses, or ctx is
// cancelled. The second return is false on timeout/cancel.
func (s *Slot[T]) Await(ctx context.Context, timeout time.Duration) (T, bool) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	var zero T
	select {
	case v := <-s.ch:
		return v, true
	case <-timer.C:
		return zero, false
	case <-ctx.Done():
		return zero, false
	}
}

// Burst collapses a rapid run of replies into the last one observed.
// Offer never blocks: when the buffer is full the stale value is dropped
// in favour of the newest.
type Burst[T any] struct {
	ch chan T
}

func NewBurst[T any]() *Burst[T] {
	return &Burst[T]{ch: make(chan T, 1)}
}

// Offer delivers a reply, displacing any unobserved older one.
func (b *Burst[T]) Offer(v T) {
	for {
		select {
		case b.ch <- v:
			return
		default:
			select {
			case <-b.ch:
			default:
			}
		}
	}
}

// AwaitLast waits up to firstWait for the first reply, then keeps waiting
// in quiet-window increments: each further reply restarts the window, and
// the call resolves to the last reply seen once a window elapses with no
// new one. This exists because the server may push several successive
// redraws for one logical interaction and only the final one is
// authoritative.
func (b *Burst[T]) AwaitLast(ctx context.Context, firstWait, quiet time.Duration) (T, bool) {
	var last T
	timer := time.NewTimer(firstWait)
	defer timer.Stop()
	select {
	case last = <-b.ch:
	case <-timer.C:
		var zero T
		return zero, false
	case <-ctx.Done():
		var zero T
		return zero, false
	}
	for {
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(quiet)
		select {
		case last = <-b.ch:
			// window restarts
		case <-timer.C:
			return last, true
		case <-ctx.Done():
			return last, true
		}
	}
}

// Keyed correlates replies to requests by a request key (e.g. the unique
// id of the item being sold or repaired). Entries are removed only by the
// waiter — on success or on its own timeout path — never by the fulfilling
// side, which avoids a race between a late reply and a new request reusing
// the key. Issue order is kept so a free-text refusal, which names no key,
// can be attributed to the oldest outstanding check.
type Keyed[K comparable, V any] struct {
	mu    sync.Mutex
	slots map[K]*Slot[V]
	order []K
}

func NewKeyed[K comparable, V any]() *Keyed[K, V] {
	return &Keyed[K, V]{slots: make(map[K]*Slot[V])}
}

// Issue creates a slot for the key, superseding any unclaimed previous one.
func (kd *Keyed[K, V]) Issue(key K) *Slot[V] {
	kd.mu.Lock()
	defer kd.mu.Unlock()
	s := NewSlot[V]()
	if _, exists := kd.slots[key]; !exists {
		kd.order = append(kd.order, key)
	}
	kd.slots[key] = s
	return s
}

// Complete fulfills the slot for an exact key. The entry stays until the
// waiter drops it.
func (kd *Keyed[K, V]) Complete(key K, v V) bool {
	kd.mu.Lock()
	s := kd.slots[key]
	kd.mu.Unlock()
	if s == nil {
		return false
	}
	return s.Complete(v)
}

// CompleteOldest fulfills the oldest outstanding entry (FIFO). Used for
// free-text refusals that carry no key; with more than one check pending
// the mapping is a best guess, which tests flag rather than hide.
func (kd *Keyed[K, V]) CompleteOldest(v V) (K, bool) {
	kd.mu.Lock()
	defer kd.mu.Unlock()
	var zero K
	for _, key := range kd.order {
		s, ok := kd.slots[key]
		if !ok {
			continue
		}
		if s.Complete(v) {
			return key, true
		}
	}
	return zero, false
}

// Drop removes an entry. Called by the waiter after Await returns, on both
// the success and the timeout path.
func (kd *Keyed[K, V]) Drop(key K) {
	kd.mu.Lock()
	defer kd.mu.Unlock()
	delete(kd.slots, key)
	for i, k := range kd.order {
		if k == key {
			kd.order = append(kd.order[:i], kd.order[i+1:]...)
			break
		}
	}
}

// Len returns the number of outstanding entries.
func (kd *Keyed[K, V]) Len() int {
	kd.mu.Lock()
	defer kd.mu.Unlock()
	return len(kd.slots)
}

// Clear drops every outstanding entry (stale-dialog watchdog).
func (kd *Keyed[K, V]) Clear() {
	kd.mu.Lock()
	defer kd.mu.Unlock()
	kd.slots = make(map[K]*Slot[V])
	kd.order = nil
}
