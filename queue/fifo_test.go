package queue

import "testing"

func TestFIFO_PushPopOrder(t *testing.T) {
	q := newFIFO()
	q.push("a")
	q.push("b")

	for _, want := range []string{"a", "b"} {
		got, ok := q.pop()
		if !ok || got != want {
			t.Fatalf("pop() = %v, %v, want %v, true", got, ok, want)
		}
	}
	if _, ok := q.pop(); ok {
		t.Error("pop() on an empty queue must report false")
	}
}

func TestFIFO_PopClearsHeadSlot(t *testing.T) {
	q := newFIFO()
	q.push("a")
	q.push("b")

	backing := q.items
	if _, ok := q.pop(); !ok {
		t.Fatal("pop() = false, want an item")
	}
	if backing[0] != nil {
		t.Error("pop left the head event referenced by the backing array")
	}
}

func TestFIFO_CloseRejectsPush(t *testing.T) {
	q := newFIFO()
	q.push("a")
	q.close()

	if q.push("b") {
		t.Error("push after close must report false")
	}
	if got := q.len(); got != 1 {
		t.Errorf("len() = %d after close, want 1 (buffered items stay)", got)
	}
}
