package dummynet

import "testing"

func TestApplyProfileUnknownNameReturnsFalse(t *testing.T) {
	var cfg Config
	if ApplyProfile(&cfg, "does-not-exist") {
		t.Fatal("expected an unknown profile name to return false")
	}
}

func TestApplyProfileFillsConfigFromTable(t *testing.T) {
	var cfg Config
	if !ApplyProfile(&cfg, "dialup") {
		t.Fatal("expected dialup to be a known profile")
	}
	want := Profiles["dialup"]
	if cfg.Delay != want.Delay {
		t.Fatalf("expected Delay %v, got %v", want.Delay, cfg.Delay)
	}
	if cfg.ShapingBytesPerSec != want.ShapingBps/8 {
		t.Fatalf("expected ShapingBytesPerSec %v, got %v", want.ShapingBps/8, cfg.ShapingBytesPerSec)
	}
	if cfg.Loss.PacketLoss != want.PacketLoss {
		t.Fatalf("expected PacketLoss %v, got %v", want.PacketLoss, cfg.Loss.PacketLoss)
	}
}

func TestAllProfilesArePositive(t *testing.T) {
	for name, p := range Profiles {
		if p.Delay <= 0 {
			t.Errorf("profile %q: expected positive delay, got %v", name, p.Delay)
		}
		if p.ShapingBps <= 0 {
			t.Errorf("profile %q: expected positive shaping rate, got %v", name, p.ShapingBps)
		}
		if p.PacketLoss < 0 || p.PacketLoss > 1 {
			t.Errorf("profile %q: packet loss out of [0,1]: %v", name, p.PacketLoss)
		}
	}
}
