package claim

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestCorroboratesRain(t *testing.T) {
	dry := []HourlyObservation{{PrecipMM: decimal.Zero}, {PrecipMM: decimal.Zero}}
	if Corroborates(CategoryRain, dry) {
		t.Fatalf("rain corroborated with no precipitation")
	}

	wet := append(dry, HourlyObservation{PrecipMM: decimal.NewFromFloat(0.4)})
	if !Corroborates(CategoryRain, wet) {
		t.Fatalf("rain not corroborated despite precipitation")
	}
}

func TestCorroboratesHail(t *testing.T) {
	hours := []HourlyObservation{
		{Conditions: []string{"Clouds"}},
		{Conditions: []string{"Rain", "HAIL"}},
	}
	if !Corroborates(CategoryHail, hours) {
		t.Fatalf("hail label not matched case-insensitively")
	}

	if Corroborates(CategoryHail, hours[:1]) {
		t.Fatalf("hail corroborated without a hail label")
	}
}

func TestCorroboratesUnrecognizedCategories(t *testing.T) {
	// Even a day with rain and hail never corroborates the other categories.
	hours := []HourlyObservation{
		{PrecipMM: decimal.NewFromInt(3), Conditions: []string{"Hail"}},
	}

	for _, c := range []DamageCategory{CategoryWind, CategoryFire, CategoryOther, CategoryUnknown} {
		if Corroborates(c, hours) {
			t.Fatalf("category %s should never be corroborated", c)
		}
	}
}

func TestCorroboratesEmptyHours(t *testing.T) {
	if Corroborates(CategoryRain, nil) || Corroborates(CategoryHail, nil) {
		t.Fatalf("no observations should never corroborate")
	}
}
