package claim

import "github.com/shopspring/decimal"

// Assessment is the derived damage valuation for one submission.
// Immutable once produced; Estimate is always inside the configured bounds.
type Assessment struct {
	Category DamageCategory
	Estimate decimal.Decimal
}

// EstimateBounds is the clamp range applied to every raw estimate.
type EstimateBounds struct {
	Min decimal.Decimal
	Max decimal.Decimal
}

// NewAssessment normalizes a raw score into an Assessment: the category label
// is parsed against the closed set and the estimate clamped into bounds.
// Negative raw estimates clamp to Min like any other out-of-range value.
func NewAssessment(rawCategory string, rawEstimate decimal.Decimal, bounds EstimateBounds) Assessment {
	return Assessment{
		Category: ParseCategory(rawCategory),
		Estimate: clamp(rawEstimate, bounds),
	}
}

func clamp(v decimal.Decimal, bounds EstimateBounds) decimal.Decimal {
	if v.LessThan(bounds.Min) {
		return bounds.Min
	}
	if v.GreaterThan(bounds.Max) {
		return bounds.Max
	}
	return v
}
