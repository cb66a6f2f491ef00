// Package emissions computes travel emissions from per-mode distances.
//
// An Aggregator holds the five user-adjustable distances. Every derived value
// (totals, savings, zero-emission share, chart data) is recomputed from the
// distances alone, so State is a pure function of the inputs.
package emissions

import (
	"fmt"
	"math"

	"github.com/Veraticus/carbon-footprint/internal/common"
	"github.com/Veraticus/carbon-footprint/internal/model"
)

// MaxSliderDistance is the upper bound of the distance input control in km.
const MaxSliderDistance = 100.0

// State is the derived view of the current distances.
type State struct {
	Distances         map[model.TransportMode]float64
	ModeEmissions     map[model.TransportMode]float64
	TotalDistance     float64
	TotalEmission     float64
	TotalSaved        float64
	ZeroEmissionShare float64
	MaxEmission       float64
}

// RenderFunc receives the recomputed state after every change.
type RenderFunc func(State)

// Aggregator tracks distances per transport mode. It is not safe for
// concurrent use; the input handler is its only writer.
type Aggregator struct {
	render    RenderFunc
	distances map[model.TransportMode]float64
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithRenderFunc registers the callback invoked after every recomputation.
func WithRenderFunc(fn RenderFunc) Option {
	return func(a *Aggregator) {
		a.render = fn
	}
}

// New creates an aggregator with every distance at zero.
func New(opts ...Option) *Aggregator {
	a := &Aggregator{
		distances: make(map[model.TransportMode]float64, len(model.AllModes())),
	}
	for _, mode := range model.AllModes() {
		a.distances[mode] = 0
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// SetDistance overwrites the distance for mode and recomputes. Non-finite or
// negative values are rejected with ErrInvalidInput and leave state unchanged.
func (a *Aggregator) SetDistance(mode model.TransportMode, value float64) error {
	if !mode.IsValid() {
		return fmt.Errorf("%w: unknown transport mode %q", common.ErrInvalidInput, mode)
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return fmt.Errorf("%w: distance for %s must be a finite number", common.ErrInvalidInput, mode)
	}
	if value < 0 {
		return fmt.Errorf("%w: distance for %s must not be negative, got %g", common.ErrInvalidInput, mode, value)
	}

	a.distances[mode] = value
	a.emit()
	return nil
}

// Distance returns the current distance for mode.
func (a *Aggregator) Distance(mode model.TransportMode) float64 {
	return a.distances[mode]
}

// Reset sets every distance to zero and recomputes. Calling it twice is the
// same as calling it once.
func (a *Aggregator) Reset() {
	for _, mode := range model.AllModes() {
		a.distances[mode] = 0
	}
	a.emit()
}

// Snapshot returns the payload sent to the tips service.
func (a *Aggregator) Snapshot() model.Snapshot {
	s := model.Snapshot{
		Bus:     a.distances[model.ModeBus],
		Car:     a.distances[model.ModeCar],
		Bike:    a.distances[model.ModeBike],
		Cycle:   a.distances[model.ModeCycle],
		Walking: a.distances[model.ModeWalking],
	}
	for _, mode := range model.AllModes() {
		d := a.distances[mode]
		s.TotalDistance += d
		s.TotalEmission += d * mode.EmissionFactor()
	}
	return s
}

// State recomputes the derived values from the current distances.
func (a *Aggregator) State() State {
	return Compute(a.distances)
}

func (a *Aggregator) emit() {
	if a.render == nil {
		return
	}
	a.render(a.State())
}

// Compute derives every display value from a set of distances. Missing modes
// count as zero.
func Compute(distances map[model.TransportMode]float64) State {
	state := State{
		Distances:     make(map[model.TransportMode]float64, len(model.AllModes())),
		ModeEmissions: make(map[model.TransportMode]float64, len(model.AllModes())),
	}

	var zeroEmissionDistance float64
	for _, mode := range model.AllModes() {
		d := distances[mode]
		emission := d * mode.EmissionFactor()

		state.Distances[mode] = d
		state.ModeEmissions[mode] = emission
		state.TotalDistance += d
		state.TotalEmission += emission

		if mode != model.ModeCar {
			state.TotalSaved += math.Max(0, d*model.CarFactor-emission)
		}
		if mode.IsZeroEmission() {
			zeroEmissionDistance += d
		}
		if emission > state.MaxEmission {
			state.MaxEmission = emission
		}
	}

	if state.TotalDistance > 0 {
		state.ZeroEmissionShare = zeroEmissionDistance / state.TotalDistance
	}

	return state
}

// ComputeSnapshot derives state from a snapshot's distances.
func ComputeSnapshot(s model.Snapshot) State {
	distances := make(map[model.TransportMode]float64, len(model.AllModes()))
	for _, mode := range model.AllModes() {
		distances[mode] = s.Distance(mode)
	}
	return Compute(distances)
}

// Score is the eco score shown in the score widget: the zero-emission share
// as a whole percentage.
func Score(state State) int {
	return int(math.Round(state.ZeroEmissionShare * 100))
}
