package claim

import (
	"strings"

	"github.com/shopspring/decimal"
)

// HourlyObservation is one hour of historical weather at the loss location.
type HourlyObservation struct {
	// PrecipMM is the precipitation volume for the hour, millimetres.
	PrecipMM decimal.Decimal
	// Conditions holds the source's condition labels ("Rain", "Hail", ...).
	Conditions []string
}

// Corroborates reports whether the observed hours support the claimed damage
// category. Rain-type damage needs any hour with precipitation above zero;
// hail-type damage needs any hour labelled "hail" (case-insensitive).
// Every other category is never corroborated.
func Corroborates(category DamageCategory, hours []HourlyObservation) bool {
	switch category {
	case CategoryRain:
		for _, h := range hours {
			if h.PrecipMM.IsPositive() {
				return true
			}
		}
	case CategoryHail:
		for _, h := range hours {
			for _, cond := range h.Conditions {
				if strings.EqualFold(strings.TrimSpace(cond), "hail") {
					return true
				}
			}
		}
	}
	return false
}
