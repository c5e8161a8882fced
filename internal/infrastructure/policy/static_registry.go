// Package policy implements the policy registry against configured data.
// A real insurer system swaps a network-backed implementation in behind the
// same port without touching the pipeline.
package policy

import (
	"context"
	"strings"

	"github.com/maverickins/claims-intake/internal/bootstrap/config"
	"github.com/maverickins/claims-intake/internal/ports"
)

// StaticRegistry validates policy numbers against a configured set, applying
// the configured format rules first. It never returns an error: anything
// unknown or malformed is simply invalid.
type StaticRegistry struct {
	numbers        map[string]struct{}
	requiredPrefix string
	minLength      int
	holders        map[string]ports.PolicyHolder
}

func NewStaticRegistry(cfg config.PolicyConfig) *StaticRegistry {
	numbers := make(map[string]struct{}, len(cfg.ValidNumbers))
	for _, n := range cfg.ValidNumbers {
		if trimmed := strings.TrimSpace(n); trimmed != "" {
			numbers[trimmed] = struct{}{}
		}
	}

	holders := make(map[string]ports.PolicyHolder, len(cfg.Holders))
	for number, h := range cfg.Holders {
		holders[strings.TrimSpace(number)] = ports.PolicyHolder{
			Name:  h.Name,
			Email: h.Email,
			IBAN:  h.IBAN,
		}
	}

	return &StaticRegistry{
		numbers:        numbers,
		requiredPrefix: strings.TrimSpace(cfg.RequiredPrefix),
		minLength:      cfg.MinLength,
		holders:        holders,
	}
}

func (r *StaticRegistry) IsValid(_ context.Context, policyNumber string) bool {
	candidate := strings.TrimSpace(policyNumber)
	if candidate == "" {
		return false
	}
	if r.minLength > 0 && len(candidate) < r.minLength {
		return false
	}
	if r.requiredPrefix != "" && !strings.HasPrefix(strings.ToUpper(candidate), strings.ToUpper(r.requiredPrefix)) {
		return false
	}

	_, ok := r.numbers[candidate]
	return ok
}

func (r *StaticRegistry) Holder(_ context.Context, policyNumber string) (ports.PolicyHolder, bool) {
	h, ok := r.holders[strings.TrimSpace(policyNumber)]
	return h, ok
}
