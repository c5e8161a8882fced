// Package notify publishes terminal claim outcomes for downstream consumers
// (dashboards, claimant messaging). Delivery is best effort by contract.
package notify

import (
	"context"
	"encoding/json"

	"github.com/nats-io/nats.go"

	"github.com/maverickins/claims-intake/internal/bootstrap/config"
	"github.com/maverickins/claims-intake/internal/errs"
	"github.com/maverickins/claims-intake/internal/ports"
)

type NATSPublisher struct {
	conn    *nats.Conn
	subject string
}

func NewNATSPublisher(cfg config.NotifyConfig) (*NATSPublisher, error) {
	conn, err := nats.Connect(cfg.URL, nats.Name("claims-intake"))
	if err != nil {
		return nil, errs.Wrap(err, "connect nats")
	}

	return &NATSPublisher{
		conn:    conn,
		subject: cfg.Subject,
	}, nil
}

func (p *NATSPublisher) Publish(ctx context.Context, event ports.OutcomeEvent) error {
	if err := ctx.Err(); err != nil {
		return errs.Wrap(err, "check context")
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return errs.Wrap(err, "marshal outcome event")
	}

	if err := p.conn.Publish(p.subject, payload); err != nil {
		return errs.Wrap(err, "publish outcome event")
	}
	return nil
}

func (p *NATSPublisher) Close() {
	p.conn.Close()
}
