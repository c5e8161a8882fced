package payments

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/maverickins/claims-intake/internal/ports"
)

// SandboxGateway issues local transaction ids without moving money. Default
// for demo environments where no payments key is configured.
type SandboxGateway struct{}

func NewSandboxGateway() *SandboxGateway {
	return &SandboxGateway{}
}

func (g *SandboxGateway) Refund(_ context.Context, req ports.RefundRequest) (string, error) {
	if !req.Amount.IsPositive() {
		return "", fmt.Errorf("refund amount must be positive, got %s", req.Amount)
	}
	return "re_sandbox_" + uuid.NewString(), nil
}
