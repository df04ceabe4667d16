package service

import (
	"context"
	"encoding/json"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-learnpath-api/internal/dto"
)

// Plan event types.
const (
	PlanEventGenerated = "plan.generated"
	PlanEventProgress  = "plan.progress"
	PlanEventDeleted   = "plan.deleted"
)

// PlanEventPublisher announces plan lifecycle events to other services.
type PlanEventPublisher interface {
	Publish(ctx context.Context, event dto.PlanEvent) error
}

type natsPlanPublisher struct {
	conn   *nats.Conn
	prefix string
	logger zerolog.Logger
}

// NewPlanEventPublisher publishes events on "<prefix>.<type>". A nil
// connection yields a publisher that only logs.
func NewPlanEventPublisher(conn *nats.Conn, prefix string, logger zerolog.Logger) PlanEventPublisher {
	if prefix == "" {
		prefix = "gema.learnpath"
	}
	return &natsPlanPublisher{
		conn:   conn,
		prefix: prefix,
		logger: logger.With().Str("component", "plan_events").Logger(),
	}
}

func (p *natsPlanPublisher) Publish(_ context.Context, event dto.PlanEvent) error {
	if p.conn == nil {
		p.logger.Debug().Str("type", event.Type).Str("plan_id", event.PlanID).Msg("nats disabled, event not published")
		return nil
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.conn.Publish(p.subject(event.Type), payload)
}

func (p *natsPlanPublisher) subject(eventType string) string {
	return p.prefix + "." + eventType
}
