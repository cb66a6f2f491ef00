package emissions

import (
	"math"

	"github.com/Veraticus/carbon-footprint/internal/model"
)

// Tier classifies the zero-emission share.
type Tier int

// Achievement tiers, lowest first.
const (
	TierNeedsImprovement Tier = iota
	TierGoodProgress
	TierOutstanding
)

// Tier thresholds. The top band is closed at 0.50, the middle band is
// [0.25, 0.50) and the bottom band is [0, 0.25).
const (
	OutstandingThreshold  = 0.50
	GoodProgressThreshold = 0.25
)

// TierFor classifies a zero-emission share.
func TierFor(share float64) Tier {
	switch {
	case share >= OutstandingThreshold:
		return TierOutstanding
	case share >= GoodProgressThreshold:
		return TierGoodProgress
	default:
		return TierNeedsImprovement
	}
}

// Label returns the fixed message for the tier.
func (t Tier) Label() string {
	switch t {
	case TierOutstanding:
		return "Outstanding! More than half of your travel is emission-free."
	case TierGoodProgress:
		return "Good progress! Keep choosing zero-emission travel."
	default:
		return "Needs improvement. Try walking or cycling more often."
	}
}

// Name is the short tier name.
func (t Tier) Name() string {
	switch t {
	case TierOutstanding:
		return "outstanding"
	case TierGoodProgress:
		return "good progress"
	default:
		return "needs improvement"
	}
}

// Color is the fixed highlight color for the tier.
func (t Tier) Color() string {
	switch t {
	case TierOutstanding:
		return "#10b981"
	case TierGoodProgress:
		return "#f59e0b"
	default:
		return "#ef4444"
	}
}

// MinBarHeight is the smallest bar height percentage so every bar stays visible.
const MinBarHeight = 5.0

// BarHeights returns each mode's bar height as a percentage of the largest
// emission. With no emissions every bar renders at MinBarHeight.
func BarHeights(state State) map[model.TransportMode]float64 {
	heights := make(map[model.TransportMode]float64, len(model.AllModes()))
	for _, mode := range model.AllModes() {
		if state.MaxEmission <= 0 {
			heights[mode] = MinBarHeight
			continue
		}
		h := state.ModeEmissions[mode] / state.MaxEmission * 100
		heights[mode] = math.Max(h, MinBarHeight)
	}
	return heights
}

// Progress ring geometry.
const (
	RingRadius       = 100.0
	RingFullDistance = 500.0
)

// RingCircumference is the stroke length of the full ring.
var RingCircumference = 2 * math.Pi * RingRadius

// RingFraction maps total distance onto the ring, clamped to 1. Only the ring
// is clamped; displayed totals are not.
func RingFraction(totalDistance float64) float64 {
	if totalDistance <= 0 {
		return 0
	}
	return math.Min(totalDistance/RingFullDistance, 1.0)
}

// RingOffset is the stroke offset that leaves RingFraction of the ring drawn.
func RingOffset(totalDistance float64) float64 {
	return RingCircumference * (1 - RingFraction(totalDistance))
}
