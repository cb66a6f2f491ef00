package storage

import (
	"context"
	"math"
	"testing"

	"github.com/Veraticus/carbon-footprint/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestValidateContext(t *testing.T) {
	//nolint:staticcheck // nil context is the case under test
	assert.ErrorIs(t, validateContext(nil), ErrNilContext)
	assert.NoError(t, validateContext(context.Background()))
}

func TestValidateProgress(t *testing.T) {
	tests := []struct {
		name     string
		progress float64
		wantErr  bool
	}{
		{"zero", 0, false},
		{"positive", 12.5, false},
		{"negative", -0.1, true},
		{"nan", math.NaN(), true},
		{"inf", math.Inf(1), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateProgress(tt.progress)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidProgress)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateSnapshot(t *testing.T) {
	assert.NoError(t, validateSnapshot(model.Snapshot{Bus: 1, Car: 2}))
	assert.ErrorIs(t, validateSnapshot(model.Snapshot{Cycle: math.NaN()}), ErrInvalidTrip)
	assert.ErrorIs(t, validateSnapshot(model.Snapshot{Walking: -3}), ErrInvalidTrip)
}

func TestValidateUser(t *testing.T) {
	assert.NoError(t, validateUser("a@b.c", "A"))
	assert.ErrorIs(t, validateUser("a@b.c", " "), ErrInvalidUser)
	assert.ErrorIs(t, validateUser("ab.c", "A"), ErrInvalidUser)
}
