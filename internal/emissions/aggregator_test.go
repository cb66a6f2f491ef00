package emissions

import (
	"math"
	"testing"

	"github.com/Veraticus/carbon-footprint/internal/common"
	"github.com/Veraticus/carbon-footprint/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setDistances(t *testing.T, a *Aggregator, distances map[model.TransportMode]float64) {
	t.Helper()
	for mode, d := range distances {
		require.NoError(t, a.SetDistance(mode, d))
	}
}

func TestAggregator_MixedCommute(t *testing.T) {
	a := New()
	setDistances(t, a, map[model.TransportMode]float64{
		model.ModeBus:     10,
		model.ModeCar:     5,
		model.ModeBike:    0,
		model.ModeCycle:   20,
		model.ModeWalking: 5,
	})

	state := a.State()
	assert.InDelta(t, 40.0, state.TotalDistance, 1e-9)
	assert.InDelta(t, 2.25, state.TotalEmission, 1e-9)
	assert.InDelta(t, 0.625, state.ZeroEmissionShare, 1e-9)
	assert.Equal(t, TierOutstanding, TierFor(state.ZeroEmissionShare))
	assert.Equal(t, "outstanding", TierFor(state.ZeroEmissionShare).Name())

	// bus saves 10*(0.21-0.12), cycle 20*0.21, walking 5*0.21
	assert.InDelta(t, 0.9+4.2+1.05, state.TotalSaved, 1e-9)
	assert.InDelta(t, 1.2, state.MaxEmission, 1e-9)
	assert.Equal(t, 63, Score(state))
}

func TestAggregator_TotalEmissionMatchesSum(t *testing.T) {
	inputs := []map[model.TransportMode]float64{
		{model.ModeBus: 0, model.ModeCar: 0},
		{model.ModeBus: 100, model.ModeCar: 100, model.ModeBike: 100, model.ModeCycle: 100, model.ModeWalking: 100},
		{model.ModeBike: 33.3, model.ModeWalking: 0.5},
		{model.ModeCar: 0.01},
	}

	for _, in := range inputs {
		a := New()
		setDistances(t, a, in)

		var want float64
		for mode, d := range in {
			want += d * mode.EmissionFactor()
		}

		state := a.State()
		assert.InDelta(t, want, state.TotalEmission, 1e-9)
		assert.GreaterOrEqual(t, state.ZeroEmissionShare, 0.0)
		assert.LessOrEqual(t, state.ZeroEmissionShare, 1.0)
	}
}

func TestAggregator_SetDistanceRejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name  string
		mode  model.TransportMode
		value float64
	}{
		{name: "negative", mode: model.ModeBus, value: -1},
		{name: "NaN", mode: model.ModeCar, value: math.NaN()},
		{name: "positive infinity", mode: model.ModeBike, value: math.Inf(1)},
		{name: "negative infinity", mode: model.ModeCycle, value: math.Inf(-1)},
		{name: "unknown mode", mode: model.TransportMode("plane"), value: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := New()
			require.NoError(t, a.SetDistance(model.ModeWalking, 3))

			err := a.SetDistance(tt.mode, tt.value)
			require.Error(t, err)
			assert.ErrorIs(t, err, common.ErrInvalidInput)

			// state untouched
			assert.InDelta(t, 3.0, a.State().TotalDistance, 1e-9)
		})
	}
}

func TestAggregator_ResetIsIdempotent(t *testing.T) {
	var renders int
	a := New(WithRenderFunc(func(State) { renders++ }))
	setDistances(t, a, map[model.TransportMode]float64{
		model.ModeCar:     42,
		model.ModeWalking: 7,
	})

	a.Reset()
	first := a.Snapshot()
	a.Reset()
	second := a.Snapshot()

	assert.Equal(t, first, second)
	assert.Equal(t, model.Snapshot{}, second)
	assert.Zero(t, second.TotalEmission)
	assert.Equal(t, 4, renders)
}

func TestAggregator_RenderCallbackReceivesState(t *testing.T) {
	var last State
	a := New(WithRenderFunc(func(s State) { last = s }))

	require.NoError(t, a.SetDistance(model.ModeCar, 10))
	assert.InDelta(t, 2.1, last.TotalEmission, 1e-9)

	require.Error(t, a.SetDistance(model.ModeCar, -5))
	assert.InDelta(t, 2.1, last.TotalEmission, 1e-9)
}

func TestAggregator_Snapshot(t *testing.T) {
	a := New()
	setDistances(t, a, map[model.TransportMode]float64{
		model.ModeBus:  10,
		model.ModeCar:  5,
		model.ModeBike: 2,
	})

	snap := a.Snapshot()
	assert.Equal(t, 10.0, snap.Bus)
	assert.Equal(t, 5.0, snap.Car)
	assert.Equal(t, 2.0, snap.Bike)
	assert.InDelta(t, 17.0, snap.TotalDistance, 1e-9)
	assert.InDelta(t, 1.2+1.05+0.15, snap.TotalEmission, 1e-9)

	// later changes do not leak into an earlier snapshot
	require.NoError(t, a.SetDistance(model.ModeBus, 50))
	assert.Equal(t, 10.0, snap.Bus)

	assert.Equal(t, a.State(), ComputeSnapshot(a.Snapshot()))
}

func TestAggregator_SnapshotTotalsMatchState(t *testing.T) {
	tests := []struct {
		distances map[model.TransportMode]float64
		name      string
	}{
		{name: "empty", distances: nil},
		{name: "car only", distances: map[model.TransportMode]float64{model.ModeCar: 42.5}},
		{name: "every mode", distances: map[model.TransportMode]float64{
			model.ModeBus:     3.3,
			model.ModeCar:     7.1,
			model.ModeBike:    0.9,
			model.ModeCycle:   12,
			model.ModeWalking: 1.25,
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := New()
			setDistances(t, a, tt.distances)

			snap := a.Snapshot()
			state := a.State()
			assert.Equal(t, state.TotalDistance, snap.TotalDistance)
			assert.Equal(t, state.TotalEmission, snap.TotalEmission)
		})
	}
}

func TestCompute_ZeroDistance(t *testing.T) {
	state := Compute(nil)
	assert.Zero(t, state.TotalDistance)
	assert.Zero(t, state.ZeroEmissionShare)
	assert.Zero(t, state.MaxEmission)
	assert.Len(t, state.ModeEmissions, 5)
}
