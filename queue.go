package dummynet

// delayQueue is a capacity-bounded FIFO of *Packet, implemented as a
// slice-backed ring buffer (head index + count) rather than the
// source's intrusive tail-with-next-to-head linked list (spec.md §9):
// an ordinary ring buffer gives the same O(1) enqueue/dequeue/head
// behavior with a plain, non-intrusive container.
//
// Because every enqueued packet's departure time is
// max(now, shape_time) + delay, with shape_time non-decreasing and
// delay constant, enqueue order equals departure-time order (spec.md
// §3). delayQueue relies on this invariant and never needs to look
// past the head to find the next-ready packet. A future extension that
// breaks the monotonicity (e.g. per-packet jitter) would need a
// min-heap instead.
type delayQueue struct {
	buf   []*Packet
	head  int
	count int
}

// newDelayQueue creates a delayQueue with the given capacity (qlim).
func newDelayQueue(capacity int) *delayQueue {
	if capacity < 1 {
		capacity = 1
	}
	return &delayQueue{buf: make([]*Packet, capacity)}
}

// Len returns the number of packets currently queued.
func (q *delayQueue) Len() int {
	return q.count
}

// Cap returns the queue's fixed capacity (qlim).
func (q *delayQueue) Cap() int {
	return len(q.buf)
}

// Enqueue appends p to the tail of the queue. If the queue is full this
// is a tail-drop: p is not enqueued and ok is false; the caller is
// responsible for freeing p and counting the drop. Already-queued
// packets are never evicted.
func (q *delayQueue) Enqueue(p *Packet) (ok bool) {
	if q.count == len(q.buf) {
		return false
	}
	tail := (q.head + q.count) % len(q.buf)
	q.buf[tail] = p
	q.count++
	return true
}

// Head returns the queue's front packet without removing it, or nil if
// the queue is empty.
func (q *delayQueue) Head() *Packet {
	if q.count == 0 {
		return nil
	}
	return q.buf[q.head]
}

// Dequeue removes and returns the front packet, or nil if the queue is
// empty.
func (q *delayQueue) Dequeue() *Packet {
	if q.count == 0 {
		return nil
	}
	p := q.buf[q.head]
	q.buf[q.head] = nil
	q.head = (q.head + 1) % len(q.buf)
	q.count--
	return p
}

// Flush drains the queue, invoking free on every packet still queued.
// Used at shutdown per spec.md §4.6 step 7 / §5's cancellation model.
func (q *delayQueue) Flush(free func(*Packet)) {
	for {
		p := q.Dequeue()
		if p == nil {
			return
		}
		if free != nil {
			free(p)
		}
	}
}
