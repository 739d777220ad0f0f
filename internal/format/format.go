// Package format renders transfer rates as short value/unit string
// pairs sized for a status-bar slot.
package format

import (
	"math"
	"strconv"
	"strings"
)

// UnitMode selects between byte-based and bit-based rate units.
type UnitMode int

const (
	// UnitBytes displays rates in bytes per second (KB/s, MB/s, GB/s).
	UnitBytes UnitMode = iota
	// UnitBits displays rates in bits per second (Kb/s, Mb/s, Gb/s).
	UnitBits
)

// Decimal (1000-based) tier boundaries.
const (
	kilo = 1000
	mega = kilo * kilo
	giga = mega * kilo
)

type unitSet struct {
	kilo, mega, giga string
}

var (
	byteUnits = unitSet{"KB/s", "MB/s", "GB/s"}
	bitUnits  = unitSet{"Kb/s", "Mb/s", "Gb/s"}
)

// Format renders a rate as a numeric value and a unit label.
//
// In UnitBits mode the byte rate is multiplied by 8 before tier
// selection. Precision decreases as magnitude increases so the value
// never exceeds about three significant digits: full decades get no
// decimals, intermediate decades one fixed decimal, and tier bottoms
// up to two decimals with insignificant trailing zeros trimmed. Rates
// below 10 KB/s still render in the kilo tier as a fraction.
func Format(bytesPerSec uint64, mode UnitMode) (value, unit string) {
	speed := bytesPerSec
	units := byteUnits
	if mode == UnitBits {
		speed *= 8
		units = bitUnits
	}

	switch {
	case speed >= giga:
		return trimmed(float64(speed)/giga, 2), units.giga
	case speed >= 100*mega:
		return fixed(float64(speed)/mega, 0), units.mega
	case speed >= 10*mega:
		return fixed(float64(speed)/mega, 1), units.mega
	case speed >= mega:
		return trimmed(float64(speed)/mega, 2), units.mega
	case speed >= 100*kilo:
		return fixed(float64(speed)/kilo, 0), units.kilo
	case speed >= 10*kilo:
		return fixed(float64(speed)/kilo, 1), units.kilo
	default:
		return trimmed(float64(speed)/kilo, 2), units.kilo
	}
}

// fixed formats v with exactly frac decimal places, rounding half away
// from zero.
func fixed(v float64, frac int) string {
	return strconv.FormatFloat(roundTo(v, frac), 'f', frac, 64)
}

// trimmed formats v with at most frac decimal places, dropping
// insignificant trailing zeros and a dangling decimal point.
func trimmed(v float64, frac int) string {
	s := fixed(v, frac)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	return s
}

// roundTo rounds v to frac decimal places, half away from zero.
func roundTo(v float64, frac int) float64 {
	scale := math.Pow(10, float64(frac))
	return math.Round(v*scale) / scale
}
