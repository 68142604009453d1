package dummynet

import (
	"sync"
	"sync/atomic"
	"time"
)

// packetSeq is the process-wide monotonic sequence counter assigned to
// packets at read time. It wraps silently on overflow, per spec.md §3.
var packetSeq atomic.Uint32

// nextSeq returns the next packet sequence number.
func nextSeq() uint32 {
	return packetSeq.Add(1)
}

// Packet is an opaque frame buffer with scheduling metadata. It is
// created by the scheduler on a successful device read and destroyed
// (returned to the pool) on reinjection or drop. No field is mutated
// after enqueue except by dequeue/free.
type Packet struct {
	// Buf holds the packet bytes, including the AddressFamilyPrefixLen
	// prefix. Len is the valid length within Buf; Buf itself is sized
	// to the pool's buffer capacity and may be larger.
	Buf []byte

	// Len is the packet length in bytes, including the 4-byte prefix.
	Len int

	// Seq is this packet's monotonically assigned sequence number.
	Seq uint32

	// Departure is the wall-clock time at which this packet becomes
	// eligible for reinjection.
	Departure time.Time
}

// Payload returns the packet bytes excluding the address-family prefix,
// i.e. the bytes whose count drives shaping calculations.
func (p *Packet) Payload() []byte {
	if p.Len <= AddressFamilyPrefixLen {
		return nil
	}
	return p.Buf[:p.Len][AddressFamilyPrefixLen:]
}

// Bytes returns the full on-wire packet, prefix included.
func (p *Packet) Bytes() []byte {
	return p.Buf[:p.Len]
}

// packetPool pools packet buffers to avoid a per-packet allocation on
// the hot read path; this is the "buffer pool is a permissible
// optimization" option from spec.md §5.
type packetPool struct {
	pool     sync.Pool
	bufSize  int
}

// newPacketPool creates a packetPool that hands out buffers of bufSize
// bytes (MaxPktSize or MaxPktSizeJumbo, typically).
func newPacketPool(bufSize int) *packetPool {
	pp := &packetPool{bufSize: bufSize}
	pp.pool.New = func() any {
		return &Packet{Buf: make([]byte, bufSize)}
	}
	return pp
}

// Get returns a Packet ready to be filled by a device read. Its Len,
// Seq, and Departure fields are reset to their zero values.
func (pp *packetPool) Get() *Packet {
	p := pp.pool.Get().(*Packet)
	if cap(p.Buf) < pp.bufSize {
		p.Buf = make([]byte, pp.bufSize)
	}
	p.Len = 0
	p.Seq = 0
	p.Departure = time.Time{}
	return p
}

// Put returns a Packet to the pool. Callers must not use p after Put.
func (pp *packetPool) Put(p *Packet) {
	if p == nil {
		return
	}
	pp.pool.Put(p)
}
