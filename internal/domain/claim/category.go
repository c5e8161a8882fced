package claim

import "strings"

// DamageCategory is the closed set of damage classifications a claim can carry.
// Wire names match the values the scoring collaborators emit.
type DamageCategory string

const (
	CategoryRain    DamageCategory = "rain_damage"
	CategoryHail    DamageCategory = "hail_damage"
	CategoryFire    DamageCategory = "fire_damage"
	CategoryWind    DamageCategory = "wind_damage"
	CategoryOther   DamageCategory = "other"
	CategoryUnknown DamageCategory = "unknown"
)

var knownCategories = map[DamageCategory]struct{}{
	CategoryRain:    {},
	CategoryHail:    {},
	CategoryFire:    {},
	CategoryWind:    {},
	CategoryOther:   {},
	CategoryUnknown: {},
}

// ParseCategory normalizes a raw category label. Anything outside the known
// set collapses to CategoryOther so downstream rules stay total.
func ParseCategory(raw string) DamageCategory {
	c := DamageCategory(strings.ToLower(strings.TrimSpace(raw)))
	if c == "" {
		return CategoryUnknown
	}
	if _, ok := knownCategories[c]; ok {
		return c
	}
	return CategoryOther
}

func (c DamageCategory) String() string { return string(c) }
