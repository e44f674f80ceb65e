package queue

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/redis/go-redis/v9"
)

const EventTicketCreated = "ticket_created"

// TicketEvent announces a ticket created from an alert, for downstream
// assignment and notification workers.
type TicketEvent struct {
	TicketID       int64
	TicketNumber   string
	IntegrationID  int64
	AssignedTeamID *int64
	TraceID        string
}

type Producer interface {
	Publish(ctx context.Context, event TicketEvent) error
	Close() error
}

type redisProducer struct {
	client *redis.Client
	stream string
	logger *slog.Logger
}

func NewRedisProducer(client *redis.Client, stream string, logger *slog.Logger) Producer {
	if logger == nil {
		logger = slog.Default()
	}
	return &redisProducer{
		client: client,
		stream: stream,
		logger: logger,
	}
}

func (p *redisProducer) Publish(ctx context.Context, event TicketEvent) error {
	fields := map[string]any{
		"event_type":     EventTicketCreated,
		"ticket_id":      event.TicketID,
		"ticket_number":  event.TicketNumber,
		"integration_id": event.IntegrationID,
	}
	if event.AssignedTeamID != nil {
		fields["assigned_team_id"] = strconv.FormatInt(*event.AssignedTeamID, 10)
	}
	if event.TraceID != "" {
		fields["trace_id"] = event.TraceID
	}

	if err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: fields,
	}).Err(); err != nil {
		return fmt.Errorf("publish ticket event: %w", err)
	}

	p.logger.InfoContext(ctx, "published ticket event", "ticket_id", event.TicketID, "ticket_number", event.TicketNumber, "stream", p.stream)
	return nil
}

func (p *redisProducer) Close() error {
	return p.client.Close()
}

type noopProducer struct{}

// NewNoopProducer is used when no Redis is configured.
func NewNoopProducer() Producer {
	return noopProducer{}
}

func (noopProducer) Publish(context.Context, TicketEvent) error { return nil }

func (noopProducer) Close() error { return nil }
