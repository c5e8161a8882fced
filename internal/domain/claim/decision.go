package claim

import "github.com/shopspring/decimal"

// Decision reason strings are part of the external contract; the presentation
// layer renders them verbatim.
const (
	ReasonNoCorroboration = "weather does not corroborate claimed peril."
	ReasonEstimateTooHigh = "estimate exceeds instant-settlement threshold."
	ReasonApproved        = "approved by rules engine."
	ReasonPolicyUnknown   = "policy number not recognized."
)

// Decision is the verdict for one claim.
type Decision struct {
	Approved bool
	Reason   string
}

// Decide applies the instant-settlement rules. Pure, no I/O; identical inputs
// always yield the identical decision.
//
// Rule order is deliberate: corroboration is checked before cost, so a cheap
// but uncorroborated claim is still denied.
func Decide(a Assessment, weatherOK bool, threshold decimal.Decimal) Decision {
	if !weatherOK {
		return Decision{Approved: false, Reason: ReasonNoCorroboration}
	}
	if a.Estimate.GreaterThan(threshold) {
		return Decision{Approved: false, Reason: ReasonEstimateTooHigh}
	}
	return Decision{Approved: true, Reason: ReasonApproved}
}
