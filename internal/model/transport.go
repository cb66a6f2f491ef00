// Package model defines the core domain types shared across packages.
package model

import (
	"fmt"
	"strings"
)

// TransportMode identifies a way of travelling with a fixed emission factor.
type TransportMode string

// Supported transport modes, in display order.
const (
	ModeBus     TransportMode = "bus"
	ModeCar     TransportMode = "car"
	ModeBike    TransportMode = "bike"
	ModeCycle   TransportMode = "cycle"
	ModeWalking TransportMode = "walking"
)

// Emission factors in kg CO2 per km.
const (
	BusFactor     = 0.12
	CarFactor     = 0.21
	BikeFactor    = 0.075
	CycleFactor   = 0.0
	WalkingFactor = 0.0
)

// AllModes returns every transport mode in display order.
func AllModes() []TransportMode {
	return []TransportMode{ModeBus, ModeCar, ModeBike, ModeCycle, ModeWalking}
}

// EmissionFactor returns kg CO2 emitted per km for the mode.
func (m TransportMode) EmissionFactor() float64 {
	switch m {
	case ModeBus:
		return BusFactor
	case ModeCar:
		return CarFactor
	case ModeBike:
		return BikeFactor
	case ModeCycle:
		return CycleFactor
	case ModeWalking:
		return WalkingFactor
	default:
		return 0
	}
}

// IsValid reports whether m is one of the supported modes.
func (m TransportMode) IsValid() bool {
	switch m {
	case ModeBus, ModeCar, ModeBike, ModeCycle, ModeWalking:
		return true
	default:
		return false
	}
}

// IsZeroEmission reports whether the mode emits nothing.
func (m TransportMode) IsZeroEmission() bool {
	return m == ModeCycle || m == ModeWalking
}

// Label returns a human readable name.
func (m TransportMode) Label() string {
	switch m {
	case ModeBus:
		return "Bus"
	case ModeCar:
		return "Car"
	case ModeBike:
		return "Motorbike"
	case ModeCycle:
		return "Bicycle"
	case ModeWalking:
		return "Walking"
	default:
		return string(m)
	}
}

// ParseTransportMode parses a mode name case-insensitively.
func ParseTransportMode(s string) (TransportMode, error) {
	m := TransportMode(strings.ToLower(strings.TrimSpace(s)))
	if !m.IsValid() {
		return "", fmt.Errorf("unknown transport mode %q", s)
	}
	return m, nil
}

// Snapshot is the immutable payload sent to the tips service.
type Snapshot struct {
	Bus           float64 `json:"bus"`
	Car           float64 `json:"car"`
	Bike          float64 `json:"bike"`
	Cycle         float64 `json:"cycle"`
	Walking       float64 `json:"walking"`
	TotalDistance float64 `json:"totalDistance"`
	TotalEmission float64 `json:"totalEmission"`
}

// Distance returns the distance recorded for a mode.
func (s Snapshot) Distance(mode TransportMode) float64 {
	switch mode {
	case ModeBus:
		return s.Bus
	case ModeCar:
		return s.Car
	case ModeBike:
		return s.Bike
	case ModeCycle:
		return s.Cycle
	case ModeWalking:
		return s.Walking
	default:
		return 0
	}
}
