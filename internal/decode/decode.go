// Package decode produces a best-effort, human-readable one-line
// summary of a packet for -vv verbose dumps (spec.md §6's "level 2
// dumps packet bytes"). It is read-only diagnostic text: nothing here
// is consulted by the delay/shape/loss/admission path, which treats
// every packet as an opaque frame (spec.md §1's non-goal of TCP/IP
// awareness). Grounded on ooni-netem/dissect.go's use of
// gopacket/layers to decode IPv4/IPv6/TCP/UDP headers.
package decode

import (
	"fmt"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

// addressFamilyPrefixLen mirrors dummynet.AddressFamilyPrefixLen; kept
// as a local constant so this package has no dependency on the core
// package (it is purely presentational and must never influence, or be
// influenced by, scheduling decisions).
const addressFamilyPrefixLen = 4

// Summarize returns a one-line best-effort decode of pkt (the full
// on-wire bytes, address-family prefix included). Decode failures
// produce a generic summary rather than an error, since this is purely
// diagnostic.
func Summarize(pkt []byte) string {
	if len(pkt) <= addressFamilyPrefixLen {
		return fmt.Sprintf("short packet: %d bytes", len(pkt))
	}
	payload := pkt[addressFamilyPrefixLen:]

	version := byte(0)
	if len(payload) > 0 {
		version = payload[0] >> 4
	}

	var layerType gopacket.LayerType
	switch version {
	case 4:
		layerType = layers.LayerTypeIPv4
	case 6:
		layerType = layers.LayerTypeIPv6
	default:
		return fmt.Sprintf("%d bytes, unrecognized network layer (version nibble %d)", len(pkt), version)
	}

	parsed := gopacket.NewPacket(payload, layerType, gopacket.Lazy)

	netLayer := parsed.NetworkLayer()
	if netLayer == nil {
		return fmt.Sprintf("%d bytes, unparsed %s packet", len(pkt), layerType)
	}

	src, dst := netLayer.NetworkFlow().Endpoints()
	proto := "?"
	if transport := parsed.TransportLayer(); transport != nil {
		proto = transport.LayerType().String()
	}

	return fmt.Sprintf("%d bytes %s %s -> %s proto=%s", len(pkt), layerType, src, dst, proto)
}
