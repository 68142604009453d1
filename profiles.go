package dummynet

import "time"

// Profile is a named link preset, per SPEC_FULL.md §4.11. Grounded on
// cbrunnkvist-ttylag/profiles.go's profile table, remapped from that
// tool's RTT/jitter/serial-mode parameter space onto this system's
// fixed delay, shaping rate, and per-packet loss.
type Profile struct {
	Delay          time.Duration
	ShapingBps     int64 // bits/sec, as on the CLI; convert with /8 for bytes/sec
	PacketLoss     float64
}

// Profiles is the set of named presets selectable with -P.
var Profiles = map[string]Profile{
	"dialup":     {Delay: 150 * time.Millisecond, ShapingBps: 56_000, PacketLoss: 0.001},
	"edge":       {Delay: 400 * time.Millisecond, ShapingBps: 240_000, PacketLoss: 0.01},
	"3g":         {Delay: 100 * time.Millisecond, ShapingBps: 1_500_000, PacketLoss: 0.005},
	"lte":        {Delay: 40 * time.Millisecond, ShapingBps: 20_000_000, PacketLoss: 0.001},
	"dsl":        {Delay: 25 * time.Millisecond, ShapingBps: 8_000_000, PacketLoss: 0.0005},
	"cable":      {Delay: 15 * time.Millisecond, ShapingBps: 50_000_000, PacketLoss: 0.0002},
	"satellite":  {Delay: 600 * time.Millisecond, ShapingBps: 10_000_000, PacketLoss: 0.002},
	"wifi-poor":  {Delay: 20 * time.Millisecond, ShapingBps: 5_000_000, PacketLoss: 0.02},
}

// ApplyProfile fills cfg's Delay, ShapingBytesPerSec, and
// Loss.PacketLoss from the named profile. It is the caller's (cmd/)
// responsibility to apply this before overriding with explicit flags,
// per SPEC_FULL.md §4.11's "explicit flags always override" rule.
func ApplyProfile(cfg *Config, name string) bool {
	p, ok := Profiles[name]
	if !ok {
		return false
	}
	cfg.Delay = p.Delay
	cfg.ShapingBytesPerSec = p.ShapingBps / 8
	cfg.Loss.PacketLoss = p.PacketLoss
	return true
}
