package correlate

import (
	"context"
	"testing"
	"time"
)

func TestSlotCompleteOnce(t *testing.T) {
	s := NewSlot[int]()
	if !s.Complete(1) {
		t.Fatalf("first completion should land")
	}
	if s.Complete(2) {
		t.Fatalf("second completion should be rejected")
	}
	v, ok := s.Await(context.Background(), time.Second)
	if !ok || v != 1 {
		t.Fatalf("Await = (%d, %v), want (1, true)", v, ok)
	}
}

func TestSlotStaysSpentAfterConsumption(t *testing.T) {
	s := NewSlot[int]()
	s.Complete(1)
	if v, ok := s.Await(context.Background(), time.Second); !ok || v != 1 {
		t.Fatalf("Await = (%d, %v), want (1, true)", v, ok)
	}
	// The buffer is empty again, but the slot is spent: a later reply must
	// not land, or an unkeyed refusal could re-resolve a finished check.
	if s.Complete(2) {
		t.Fatalf("consumed slot accepted another completion")
	}
	if _, ok := s.Await(context.Background(), 20*time.Millisecond); ok {
		t.Fatalf("second value observable after the slot was spent")
	}
}

func TestSlotAwaitTimeout(t *testing.T) {
	s := NewSlot[int]()
	start := time.Now()
	_, ok := s.Await(context.Background(), 20*time.Millisecond)
	if ok {
		t.Fatalf("Await should time out")
	}
	if time.Since(start) > time.Second {
		t.Fatalf("Await took far longer than its timeout")
	}
}

func TestSlotAwaitCancel(t *testing.T) {
	s := NewSlot[int]()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, ok := s.Await(ctx, time.Minute); ok {
		t.Fatalf("Await should observe cancellation")
	}
}

func TestSlotLateCompletionHarmless(t *testing.T) {
	s := NewSlot[int]()
	if _, ok := s.Await(context.Background(), time.Millisecond); ok {
		t.Fatalf("expected timeout")
	}
	// The waiter is gone; a late reply must not block or panic.
	s.Complete(99)
}

func TestBurstKeepsNewest(t *testing.T) {
	b := NewBurst[int]()
	b.Offer(1)
	b.Offer(2)
	b.Offer(3)
	v, ok := b.AwaitLast(context.Background(), time.Second, 10*time.Millisecond)
	if !ok || v != 3 {
		t.Fatalf("AwaitLast = (%d, %v), want (3, true)", v, ok)
	}
}

func TestBurstDebounceResolvesToLastOfBurst(t *testing.T) {
	b := NewBurst[int]()
	go func() {
		for i := 1; i <= 4; i++ {
			b.Offer(i)
			time.Sleep(5 * time.Millisecond)
		}
	}()
	v, ok := b.AwaitLast(context.Background(), time.Second, 200*time.Millisecond)
	if !ok || v != 4 {
		t.Fatalf("AwaitLast = (%d, %v), want (4, true)", v, ok)
	}
}

func TestBurstFirstWaitTimeout(t *testing.T) {
	b := NewBurst[int]()
	if _, ok := b.AwaitLast(context.Background(), 20*time.Millisecond, time.Millisecond); ok {
		t.Fatalf("AwaitLast should time out with no reply")
	}
}

func TestKeyedExactCompletion(t *testing.T) {
	kd := NewKeyed[int32, string]()
	s := kd.Issue(7)
	defer kd.Drop(7)
	if !kd.Complete(7, "yes") {
		t.Fatalf("Complete should land")
	}
	v, ok := s.Await(context.Background(), time.Second)
	if !ok || v != "yes" {
		t.Fatalf("Await = (%q, %v), want (\"yes\", true)", v, ok)
	}
}

func TestKeyedCompleteUnknownKey(t *testing.T) {
	kd := NewKeyed[int32, string]()
	if kd.Complete(1, "stray") {
		t.Fatalf("completing an unissued key should report false")
	}
}

func TestKeyedIssueSupersedes(t *testing.T) {
	kd := NewKeyed[int32, string]()
	old := kd.Issue(7)
	fresh := kd.Issue(7)
	defer kd.Drop(7)
	kd.Complete(7, "new")
	if _, ok := old.Await(context.Background(), 20*time.Millisecond); ok {
		t.Fatalf("superseded slot must not receive the reply")
	}
	v, ok := fresh.Await(context.Background(), time.Second)
	if !ok || v != "new" {
		t.Fatalf("fresh slot Await = (%q, %v), want (\"new\", true)", v, ok)
	}
}

func TestRefusalResolvesOldestPending(t *testing.T) {
	kd := NewKeyed[int32, string]()
	first := kd.Issue(10)
	second := kd.Issue(20)
	defer kd.Drop(10)
	defer kd.Drop(20)

	key, ok := kd.CompleteOldest("refused")
	if !ok || key != 10 {
		t.Fatalf("CompleteOldest = (%d, %v), want (10, true)", key, ok)
	}
	v, ok := first.Await(context.Background(), time.Second)
	if !ok || v != "refused" {
		t.Fatalf("oldest slot Await = (%q, %v), want (\"refused\", true)", v, ok)
	}
	if _, ok := second.Await(context.Background(), 20*time.Millisecond); ok {
		t.Fatalf("newer slot must stay pending")
	}

	// A second refusal falls through to the next-oldest.
	key, ok = kd.CompleteOldest("refused again")
	if !ok || key != 20 {
		t.Fatalf("second CompleteOldest = (%d, %v), want (20, true)", key, ok)
	}
}

func TestKeyedDropIsWaiterSide(t *testing.T) {
	kd := NewKeyed[int32, string]()
	kd.Issue(1)
	kd.Issue(2)
	if kd.Len() != 2 {
		t.Fatalf("Len = %d, want 2", kd.Len())
	}
	kd.Drop(1)
	if kd.Len() != 1 {
		t.Fatalf("Len after Drop = %d, want 1", kd.Len())
	}
	if key, ok := kd.CompleteOldest("v"); !ok || key != 2 {
		t.Fatalf("CompleteOldest after Drop = (%d, %v), want (2, true)", key, ok)
	}
	kd.Clear()
	if kd.Len() != 0 {
		t.Fatalf("Len after Clear = %d, want 0", kd.Len())
	}
}
