package services

import (
	"context"

	"github.com/devstore/sales-backend/internal/domain"
	"github.com/devstore/sales-backend/internal/logger"
)

// EventPublisher consumes the domain events an aggregate queued during a
// unit of work. There is no message broker behind this service; events
// are published to the structured log.
type EventPublisher interface {
	Publish(ctx context.Context, events []domain.Event)
}

type logEventPublisher struct {
	log *logger.Logger
}

func NewLogEventPublisher(baseLog *logger.Logger) EventPublisher {
	return &logEventPublisher{log: baseLog.With("service", "EventPublisher")}
}

func (p *logEventPublisher) Publish(_ context.Context, events []domain.Event) {
	for _, ev := range events {
		p.log.Info("Domain event occurred",
			"event", ev.EventName(),
			"event_id", ev.EventID(),
			"occurred_at", ev.OccurredAt(),
			"payload", ev,
		)
	}
}
