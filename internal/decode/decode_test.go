package decode

import (
	"strings"
	"testing"
)

func TestSummarizeShortPacket(t *testing.T) {
	got := Summarize([]byte{0, 0, 0, 0})
	if !strings.Contains(got, "short packet") {
		t.Fatalf("expected a short-packet summary, got %q", got)
	}
}

func TestSummarizeUnrecognizedVersion(t *testing.T) {
	pkt := []byte{0, 0, 0, 2, 0xF0, 0, 0, 0}
	got := Summarize(pkt)
	if !strings.Contains(got, "unrecognized network layer") {
		t.Fatalf("expected an unrecognized-layer summary, got %q", got)
	}
}

func TestSummarizeIPv4Packet(t *testing.T) {
	// a minimal, syntactically valid IPv4 header: version/IHL=0x45,
	// total length, TTL, protocol, and 127.0.0.1 -> 127.0.0.2.
	header := []byte{
		0x45, 0x00, 0x00, 0x14,
		0x00, 0x00, 0x00, 0x00,
		0x40, 0x06, 0x00, 0x00,
		127, 0, 0, 1,
		127, 0, 0, 2,
	}
	pkt := append([]byte{0, 0, 0, 2}, header...)

	got := Summarize(pkt)
	if !strings.Contains(got, "IPv4") {
		t.Fatalf("expected an IPv4 summary, got %q", got)
	}
	if !strings.Contains(got, "127.0.0.1") || !strings.Contains(got, "127.0.0.2") {
		t.Fatalf("expected both endpoints in the summary, got %q", got)
	}
}
