package dummynet

import (
	"fmt"
	"math/rand"
	"sync"
	"time"
)

// thresholdBits is the width of the fixed-point PRNG threshold scheme
// from spec.md §4.5/§9: probabilities are stored as thresholds against
// a uniform draw in [0, 2^31).
const thresholdBits = 31

// thresholdScale is 2^31, used to convert a floating-point probability
// into a fixed-point threshold.
const thresholdScale = 1 << thresholdBits

// sanityPacketBytes and sanityPacketBits are the constants spec.md §3
// uses for the per-bit configuration-time sanity check: reject a
// bit-error rate for which the scaled per-packet threshold
// (rate*2^31)*1500*8 would overflow or exceed 2^31, i.e. rate*1500*8
// >= 1 in the unscaled [0,1] probability space.
const sanityPacketBytes = 1500
const sanityPacketBits = sanityPacketBytes * 8

// LossConfig configures the loss emulator. Exactly one of PacketLoss
// or BitErrorRate should be set; per spec.md §3, per-bit mode overrides
// per-packet mode when both are set.
type LossConfig struct {
	// PacketLoss is the per-packet drop probability in [0,1].
	PacketLoss float64

	// BitErrorRate is the per-bit drop probability in [0,1]. When
	// non-zero it takes precedence over PacketLoss.
	BitErrorRate float64

	// Seed seeds the PRNG. Zero means "seed from startup microseconds",
	// per spec.md §4.5.
	Seed int64
}

// validate applies spec.md §3's configuration-time sanity clamp:
// reject a bit-error rate for which (rate*2^31)*1500*8 >= 2^31, i.e.
// rate*1500*8 >= 1 in the unscaled probability space.
func (c LossConfig) validate() error {
	if c.BitErrorRate > 0 {
		if c.BitErrorRate*sanityPacketBits >= 1 {
			return fmt.Errorf("%w: bit error rate %.9g exceeds sanity bound", ErrInvalidRate, c.BitErrorRate)
		}
	}
	if c.PacketLoss < 0 || c.PacketLoss > 1 {
		return fmt.Errorf("%w: packet loss probability %v out of [0,1]", ErrInvalidRate, c.PacketLoss)
	}
	if c.BitErrorRate < 0 || c.BitErrorRate > 1 {
		return fmt.Errorf("%w: bit error rate %v out of [0,1]", ErrInvalidRate, c.BitErrorRate)
	}
	return nil
}

// lossEmulator decides, per spec.md §4.5, whether an inbound packet
// should be dropped before enqueue. It is grounded on
// ooni-netem/link.go's linkLossesManager (mutex-guarded *rand.Rand,
// single shouldDrop predicate), generalized from one float threshold
// to the spec's two fixed-point threshold modes.
type lossEmulator struct {
	mu sync.Mutex
	rnd *rand.Rand

	// bitMode is true when BitErrorRate was configured; per-bit mode
	// multiplies the threshold by 8*len(payload) at call time, so the
	// stored threshold is the per-bit rate scaled to [0, 2^31).
	bitMode bool

	// threshold is the fixed-point probability threshold: for
	// per-packet mode, prob*2^31; for per-bit mode, rate*2^31.
	threshold int64
}

// newLossEmulator constructs a lossEmulator from cfg. cfg must already
// have passed validate().
func newLossEmulator(cfg LossConfig) *lossEmulator {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixMicro()
	}
	le := &lossEmulator{rnd: rand.New(rand.NewSource(seed))}
	if cfg.BitErrorRate > 0 {
		le.bitMode = true
		le.threshold = int64(cfg.BitErrorRate * thresholdScale)
	} else {
		le.threshold = int64(cfg.PacketLoss * thresholdScale)
	}
	return le
}

// ShouldDrop returns true if the packet of the given wire length
// (including the address-family prefix; spec.md §4.5 multiplies the
// full packet length by 8 for the per-bit draw) should be dropped.
func (le *lossEmulator) ShouldDrop(pktLen int) bool {
	le.mu.Lock()
	r := le.rnd.Int63n(thresholdScale)
	le.mu.Unlock()

	if le.bitMode {
		bitThreshold := le.threshold * int64(pktLen) * 8
		return r < bitThreshold
	}
	return r < le.threshold
}
