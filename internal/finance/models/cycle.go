package models

// Supported reporting cycles. A cycle is identified by its even end-year.
const (
	MinCycle = 2000
	MaxCycle = 2024
)

// ValidCycle reports whether c is an even year inside the supported range.
func ValidCycle(c int) bool {
	return c%2 == 0 && c >= MinCycle && c <= MaxCycle
}

// Mode selects how many transaction records the aggregator pulls.
type Mode string

const (
	ModeSample Mode = "sample"
	ModeFull   Mode = "full"
)

// ParseMode maps a query value to a Mode; empty means sample.
func ParseMode(raw string) (Mode, bool) {
	switch Mode(raw) {
	case "", ModeSample:
		return ModeSample, true
	case ModeFull:
		return ModeFull, true
	default:
		return "", false
	}
}
