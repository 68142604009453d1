package dummynet

import "testing"

func TestDelayQueueCapacityAndTailDrop(t *testing.T) {
	q := newDelayQueue(2)

	p1 := &Packet{Seq: 1}
	p2 := &Packet{Seq: 2}
	p3 := &Packet{Seq: 3}

	if ok := q.Enqueue(p1); !ok {
		t.Fatal("expected p1 to be admitted")
	}
	if ok := q.Enqueue(p2); !ok {
		t.Fatal("expected p2 to be admitted")
	}
	if ok := q.Enqueue(p3); ok {
		t.Fatal("expected p3 to be tail-dropped")
	}
	if got := q.Len(); got != 2 {
		t.Fatalf("expected len 2, got %d", got)
	}
	if got := q.Cap(); got != 2 {
		t.Fatalf("expected cap 2, got %d", got)
	}
}

func TestDelayQueueFIFOOrder(t *testing.T) {
	q := newDelayQueue(4)
	want := []uint32{1, 2, 3}
	for _, seq := range want {
		if ok := q.Enqueue(&Packet{Seq: seq}); !ok {
			t.Fatalf("enqueue of seq %d unexpectedly failed", seq)
		}
	}

	var got []uint32
	for {
		p := q.Dequeue()
		if p == nil {
			break
		}
		got = append(got, p.Seq)
	}

	if len(got) != len(want) {
		t.Fatalf("expected %d packets, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected FIFO order %v, got %v", want, got)
		}
	}
}

func TestDelayQueueHeadDoesNotRemove(t *testing.T) {
	q := newDelayQueue(2)
	q.Enqueue(&Packet{Seq: 42})

	if h := q.Head(); h == nil || h.Seq != 42 {
		t.Fatalf("expected head seq 42, got %v", h)
	}
	if got := q.Len(); got != 1 {
		t.Fatalf("Head must not remove; expected len 1, got %d", got)
	}
}

func TestDelayQueueEmptyHeadAndDequeue(t *testing.T) {
	q := newDelayQueue(1)
	if h := q.Head(); h != nil {
		t.Fatalf("expected nil head on empty queue, got %v", h)
	}
	if p := q.Dequeue(); p != nil {
		t.Fatalf("expected nil dequeue on empty queue, got %v", p)
	}
}

func TestDelayQueueFlushFreesAll(t *testing.T) {
	q := newDelayQueue(3)
	q.Enqueue(&Packet{Seq: 1})
	q.Enqueue(&Packet{Seq: 2})

	var freed []uint32
	q.Flush(func(p *Packet) { freed = append(freed, p.Seq) })

	if len(freed) != 2 {
		t.Fatalf("expected 2 packets freed, got %d", len(freed))
	}
	if got := q.Len(); got != 0 {
		t.Fatalf("expected empty queue after flush, got len %d", got)
	}
}

// TestDelayQueueWrapsAroundRingBuffer exercises the ring buffer's
// head/tail modular arithmetic across several enqueue/dequeue cycles,
// since a naive implementation can break once head wraps past the end
// of the backing slice.
func TestDelayQueueWrapsAroundRingBuffer(t *testing.T) {
	q := newDelayQueue(2)
	var seq uint32
	for round := 0; round < 5; round++ {
		seq++
		q.Enqueue(&Packet{Seq: seq})
		seq++
		q.Enqueue(&Packet{Seq: seq})

		first := q.Dequeue()
		second := q.Dequeue()
		if first == nil || second == nil {
			t.Fatalf("round %d: expected two packets, got %v %v", round, first, second)
		}
		if first.Seq+1 != second.Seq {
			t.Fatalf("round %d: expected consecutive seqs, got %d then %d", round, first.Seq, second.Seq)
		}
	}
}
