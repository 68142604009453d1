package dummynet

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// bandwidthPattern matches a number followed by an optional SI-suffix
// unit, the format spec.md §6's -s flag uses: "<rate>[b|Kb|Mb|Gb]".
var bandwidthPattern = regexp.MustCompile(`^(\d+(?:\.\d+)?)\s*([a-zA-Z]*)$`)

// ParseShapingRate parses a spec.md §6 -s argument (bits/sec, with an
// optional b/Kb/Mb/Gb SI suffix) into bytes/sec, the unit
// shaperClock expects. Grounded on cbrunnkvist-ttylag/main.go's
// parseBandwidth, narrowed to the spec's suffix set and always
// treating the numeric part as bits/sec (the spec's -s flag has no
// "bytes" variant, unlike ttylag's --up/--down).
func ParseShapingRate(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	m := bandwidthPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("dummynet: invalid shaping rate: %q", s)
	}
	value, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, fmt.Errorf("dummynet: invalid shaping rate: %w", err)
	}

	var multiplier float64
	switch strings.ToLower(m[2]) {
	case "", "b":
		multiplier = 1
	case "kb":
		multiplier = 1_000
	case "mb":
		multiplier = 1_000_000
	case "gb":
		multiplier = 1_000_000_000
	default:
		return 0, fmt.Errorf("dummynet: unknown shaping rate unit: %q", m[2])
	}

	bitsPerSec := value * multiplier
	return int64(bitsPerSec / 8), nil
}
