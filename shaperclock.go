package dummynet

import "time"

// shaperClock models the virtual transmission clock described in
// spec.md §4.3: shapeTime is the wall-clock instant at which the most
// recently admitted packet would finish transmitting over a virtual
// link of rate S bytes/sec. It never lags real time: an arrival that
// finds the virtual link already idle snaps the clock forward to now.
//
// This is deliberately not a token-bucket limiter (contrast
// golang.org/x/time/rate, used for a similar purpose by the pack's
// cbrunnkvist-ttylag teacher): spec.md pins an exact departure-time
// formula and convergence property that a token bucket does not
// reproduce bit-for-bit. The closest pack analogue actually used here
// is ttylag/shaper.go's wireFreeAt field, adapted from per-byte wire
// serialization to per-packet shaping.
type shaperClock struct {
	// rateBytesPerSec is S from spec.md §4.3. Zero disables shaping.
	rateBytesPerSec int64

	// shapeTime is the virtual link's idle-at time.
	shapeTime time.Time
}

// newShaperClock creates a shaperClock for the given rate (bytes/sec;
// 0 disables shaping).
func newShaperClock(rateBytesPerSec int64) *shaperClock {
	return &shaperClock{rateBytesPerSec: rateBytesPerSec}
}

// Enabled reports whether shaping is active.
func (c *shaperClock) Enabled() bool {
	return c.rateBytesPerSec > 0
}

// Admit runs one packet of payloadLen bytes (the packet length minus
// the 4-byte address-family prefix, per spec.md §4.3) through the
// shaper clock at wall time now. It returns the packet's departure
// base time and whether the packet was shaped (had to wait behind the
// virtual transmission of prior packets).
func (c *shaperClock) Admit(now time.Time, payloadLen int) (base time.Time, shaped bool) {
	if !c.Enabled() || !c.shapeTime.After(now) {
		c.shapeTime = now
	} else {
		shaped = true
	}
	base = c.shapeTime
	if c.Enabled() && payloadLen > 0 {
		advance := time.Duration(float64(payloadLen) / float64(c.rateBytesPerSec) * float64(time.Second))
		c.shapeTime = c.shapeTime.Add(advance)
	}
	return base, shaped
}
