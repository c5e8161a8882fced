// Package vision holds the damage-scoring collaborator. The heuristic
// estimator stands in for a real vision model; the pipeline only depends on
// the port contract, so a model-backed scorer is a drop-in replacement.
package vision

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/maverickins/claims-intake/internal/domain/claim"
)

var errNoPhotoData = errors.New("no photo data to score")

// HeuristicEstimator derives a category and estimate from the photo payload
// size alone: even kilobyte counts score as wind damage, odd as hail, and the
// estimate grows linearly with payload size from a 500 base.
type HeuristicEstimator struct{}

func NewHeuristicEstimator() *HeuristicEstimator {
	return &HeuristicEstimator{}
}

func (e *HeuristicEstimator) Score(_ context.Context, photo []byte) (string, decimal.Decimal, error) {
	if len(photo) == 0 {
		return "", decimal.Zero, errNoPhotoData
	}

	sizeKB := len(photo) / 1024
	category := claim.CategoryWind
	if sizeKB%2 == 1 {
		category = claim.CategoryHail
	}

	estimate := decimal.NewFromInt(500).
		Add(decimal.NewFromFloat(float64(len(photo)) / 1024.0).Mul(decimal.NewFromFloat(1.3))).
		Round(2)

	return category.String(), estimate, nil
}
