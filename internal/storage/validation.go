// Package storage provides the data persistence layer for the footprint application.
package storage

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/Veraticus/carbon-footprint/internal/model"
)

// Validation errors.
var (
	ErrNilContext       = errors.New("context cannot be nil")
	ErrEmptyString      = errors.New("string parameter cannot be empty")
	ErrNilParameter     = errors.New("parameter cannot be nil")
	ErrInvalidChallenge = errors.New("invalid challenge")
	ErrInvalidUser      = errors.New("invalid user")
	ErrInvalidProgress  = errors.New("invalid progress")
	ErrInvalidTrip      = errors.New("invalid trip")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

func validateChallenge(c *model.Challenge) error {
	if c == nil {
		return fmt.Errorf("%w: challenge", ErrNilParameter)
	}
	if strings.TrimSpace(c.Title) == "" {
		return fmt.Errorf("%w: missing title", ErrInvalidChallenge)
	}
	if err := validateChallengeType(c.Type); err != nil {
		return err
	}
	if c.TargetValue <= 0 || math.IsNaN(c.TargetValue) || math.IsInf(c.TargetValue, 0) {
		return fmt.Errorf("%w: target value must be positive", ErrInvalidChallenge)
	}
	if c.PointsReward < 0 {
		return fmt.Errorf("%w: points reward cannot be negative", ErrInvalidChallenge)
	}
	return nil
}

func validateChallengeType(t model.ChallengeType) error {
	switch t {
	case model.ChallengeIndividual, model.ChallengeTeam, model.ChallengeCompany:
		return nil
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidChallenge, t)
	}
}

func validateUser(email, name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidUser)
	}
	if !strings.Contains(email, "@") {
		return fmt.Errorf("%w: invalid email %q", ErrInvalidUser, email)
	}
	return nil
}

func validateProgress(progress float64) error {
	if progress < 0 || math.IsNaN(progress) || math.IsInf(progress, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidProgress, progress)
	}
	return nil
}

func validateSnapshot(s model.Snapshot) error {
	for _, mode := range model.AllModes() {
		d := s.Distance(mode)
		if d < 0 || math.IsNaN(d) || math.IsInf(d, 0) {
			return fmt.Errorf("%w: %s distance %v", ErrInvalidTrip, mode, d)
		}
	}
	return nil
}
