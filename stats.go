package dummynet

import (
	"sync/atomic"
	"time"
)

// Stats holds the cumulative counters spec.md §3/§4.7 describes. All
// counters are atomic.Uint64 so a concurrently-triggered dump (spec.md
// §4.8's inline-dump variant) observes consistent values without
// tearing; the recommended wiring (flag-polled at iteration boundaries)
// does not strictly need this, but it costs nothing and matches
// spec.md §5's "64-bit atomic reads ... are acceptable" guidance.
type Stats struct {
	ReceivedPackets atomic.Uint64
	ReceivedBytes   atomic.Uint64
	SentPackets     atomic.Uint64
	SentBytes       atomic.Uint64
	Shaped          atomic.Uint64
	Dropped         atomic.Uint64

	// DiscrepancyMsSum is the running sum, in milliseconds, of
	// (now - head.departure) for every packet reinjected, per spec.md
	// §4.6 step 4.
	DiscrepancyMsSum atomic.Uint64

	// lastReport is the wall-clock time of the previous dump; it is not
	// exported atomically because it is only ever touched from the
	// single scheduler goroutine between dumps.
	lastReport time.Time
}

// Snapshot is a point-in-time copy of Stats' counters, used both as the
// retained last_stats baseline and as the value handed to a report
// renderer.
type Snapshot struct {
	Time            time.Time
	ReceivedPackets uint64
	ReceivedBytes   uint64
	SentPackets     uint64
	SentBytes       uint64
	Shaped          uint64
	Dropped         uint64
	DiscrepancyMsSum uint64
	QueueLen        int
}

// Report is a computed delta between two Snapshots, the shape rendered
// by a stats dump (spec.md §4.7). Grounded on
// other_examples/712365b5_galpt-cake-stats__history.go's Record method:
// diff the current and previous snapshot by elapsed wall time, guarding
// against a non-positive interval.
type Report struct {
	Interval time.Duration

	ReceivedPackets uint64
	ReceivedBytes   uint64
	SentPackets     uint64
	SentBytes       uint64
	Shaped          uint64
	Dropped         uint64
	QueueLen        int

	// AvgThroughputBitsPerSec is sent bytes over the interval, in
	// bits/sec.
	AvgThroughputBitsPerSec float64

	// AvgDiscrepancyMs is DiscrepancyMsSum over sent packets in the
	// interval, i.e. the mean lateness of reinjected packets.
	AvgDiscrepancyMs float64
}

// NewStats creates a zero-valued Stats with lastReport set to now, so
// the first periodic report has a well-defined interval.
func NewStats(now time.Time) *Stats {
	return &Stats{lastReport: now}
}

// Snapshot captures the current counter values plus the given queue
// occupancy.
func (s *Stats) Snapshot(now time.Time, queueLen int) Snapshot {
	return Snapshot{
		Time:             now,
		ReceivedPackets:  s.ReceivedPackets.Load(),
		ReceivedBytes:    s.ReceivedBytes.Load(),
		SentPackets:      s.SentPackets.Load(),
		SentBytes:        s.SentBytes.Load(),
		Shaped:           s.Shaped.Load(),
		Dropped:          s.Dropped.Load(),
		DiscrepancyMsSum: s.DiscrepancyMsSum.Load(),
		QueueLen:         queueLen,
	}
}

// Delta computes a Report as the difference between cur and prev,
// guarding against counter resets or a non-positive interval the way
// the cake-stats history store guards against interface flaps.
func Delta(prev, cur Snapshot) Report {
	interval := cur.Time.Sub(prev.Time)

	diffU64 := func(curV, prevV uint64) uint64 {
		if curV < prevV {
			return 0
		}
		return curV - prevV
	}

	r := Report{
		Interval:        interval,
		ReceivedPackets: diffU64(cur.ReceivedPackets, prev.ReceivedPackets),
		ReceivedBytes:   diffU64(cur.ReceivedBytes, prev.ReceivedBytes),
		SentPackets:     diffU64(cur.SentPackets, prev.SentPackets),
		SentBytes:       diffU64(cur.SentBytes, prev.SentBytes),
		Shaped:          diffU64(cur.Shaped, prev.Shaped),
		Dropped:         diffU64(cur.Dropped, prev.Dropped),
		QueueLen:        cur.QueueLen,
	}

	if interval > 0 {
		r.AvgThroughputBitsPerSec = float64(r.SentBytes) * 8 / interval.Seconds()
	}

	discrepancySum := diffU64(cur.DiscrepancyMsSum, prev.DiscrepancyMsSum)
	if r.SentPackets > 0 {
		r.AvgDiscrepancyMs = float64(discrepancySum) / float64(r.SentPackets)
	}
	return r
}

// ShouldReport returns true if interval has elapsed since the last
// report, per spec.md §4.6 step 6. A zero interval disables periodic
// reporting.
func (s *Stats) ShouldReport(now time.Time, interval time.Duration) bool {
	if interval <= 0 {
		return false
	}
	return now.Sub(s.lastReport) >= interval
}

// MarkReported records now as the last report time.
func (s *Stats) MarkReported(now time.Time) {
	s.lastReport = now
}

// LastReport returns the last report timestamp.
func (s *Stats) LastReport() time.Time {
	return s.lastReport
}
