package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"alertdesk.app/intake/common/logger"
	"alertdesk.app/intake/internal/dedup"
	"alertdesk.app/intake/internal/filter"
	"alertdesk.app/intake/internal/jsonpath"
	"alertdesk.app/intake/internal/mapping"
	"alertdesk.app/intake/internal/metrics"
	"alertdesk.app/intake/internal/model"
	"alertdesk.app/intake/internal/queue"
	"alertdesk.app/intake/internal/store"
)

type AlertIngestParams struct {
	WebhookID string
	APIKey    string
	Body      []byte
	TraceID   string
}

// AlertIngestResult is the outcome of an authenticated request. Ticket is nil
// when the alert was filtered out or suppressed as a duplicate.
type AlertIngestResult struct {
	Integration *model.Integration
	Decision    filter.Decision
	Ticket      *model.Ticket
	Duplicate   bool
}

type AlertIngestService interface {
	// Authenticate resolves the integration for webhookID and checks apiKey.
	Authenticate(ctx context.Context, webhookID, apiKey string) (*model.Integration, error)
	// Ingest authenticates, then hands the body to Process.
	Ingest(ctx context.Context, params AlertIngestParams) (*AlertIngestResult, error)
	// Process runs the pipeline for an integration that already passed
	// Authenticate. A body that is not a single JSON value yields
	// ErrInvalidPayload.
	Process(ctx context.Context, integration *model.Integration, params AlertIngestParams) (*AlertIngestResult, error)
}

type AlertIngestDeps struct {
	Integrations  store.IntegrationStore
	FilterRules   store.FilterRuleStore
	FieldMappings store.FieldMappingStore
	Tickets       store.TicketStore
	Identity      SystemIdentity
	Events        queue.Producer
	Dedup         dedup.Guard
	Metrics       metrics.Recorder
	Logger        *slog.Logger
}

type alertIngestService struct {
	AlertIngestDeps
}

func NewAlertIngestService(deps AlertIngestDeps) AlertIngestService {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Events == nil {
		deps.Events = queue.NewNoopProducer()
	}
	if deps.Dedup == nil {
		deps.Dedup = dedup.Disabled()
	}
	if deps.Metrics == nil {
		deps.Metrics = (*metrics.Intake)(nil)
	}
	return &alertIngestService{AlertIngestDeps: deps}
}

func (s *alertIngestService) Authenticate(ctx context.Context, webhookID, apiKey string) (*model.Integration, error) {
	integration, err := s.Integrations.GetByWebhookID(ctx, webhookID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrIntegrationNotFound
		}
		return nil, fmt.Errorf("fetching integration: %w", err)
	}
	if !integration.Enabled {
		return integration, ErrIntegrationDisabled
	}
	if apiKey == "" || subtle.ConstantTimeCompare([]byte(apiKey), []byte(integration.APIKey)) != 1 {
		return integration, ErrInvalidAPIKey
	}
	return integration, nil
}

func (s *alertIngestService) Ingest(ctx context.Context, params AlertIngestParams) (*AlertIngestResult, error) {
	integration, err := s.Authenticate(ctx, params.WebhookID, params.APIKey)
	if err != nil {
		return nil, err
	}
	return s.Process(ctx, integration, params)
}

func (s *alertIngestService) Process(ctx context.Context, integration *model.Integration, params AlertIngestParams) (*AlertIngestResult, error) {
	payload, err := jsonpath.Decode(params.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	start := time.Now()
	defer func() { s.Metrics.PipelineDuration(time.Since(start)) }()

	ctx = logger.WithLogFields(ctx, logger.LogFields{
		IntegrationID: logger.Ptr(integration.ID),
		WebhookID:     logger.Ptr(integration.WebhookID),
	})
	sc := logger.StartSpan(ctx, "intake.ingest")
	defer sc.End()
	ctx = sc.Context()

	result := &AlertIngestResult{Integration: integration}

	rules, err := s.FilterRules.ListByIntegration(ctx, integration.ID)
	if err != nil {
		sc.RecordError(err)
		return nil, fmt.Errorf("loading filter rules: %w", err)
	}

	result.Decision = filter.Decide(rules, payload)
	s.Metrics.FilterDecision(result.Decision.Admit)
	if !result.Decision.Admit {
		s.logDecision(ctx, result.Decision)
		return result, nil
	}

	var dedupKey string
	if s.Dedup.Enabled() {
		dedupKey, err = dedup.Key(integration.ID, payload)
		if err != nil {
			return nil, err
		}
		claimed, err := s.Dedup.Claim(ctx, dedupKey)
		if err != nil {
			// An unavailable dedup store must not drop alerts.
			s.Logger.WarnContext(ctx, "dedup claim failed, continuing", "error", err)
			claimed = true
		}
		if !claimed {
			s.Logger.InfoContext(ctx, "duplicate alert suppressed", "dedup_key", dedupKey)
			result.Duplicate = true
			return result, nil
		}
	}

	ticket, err := s.createTicket(ctx, integration, payload)
	if err != nil {
		sc.RecordError(err)
		if dedupKey != "" {
			if releaseErr := s.Dedup.Release(ctx, dedupKey); releaseErr != nil {
				s.Logger.WarnContext(ctx, "dedup release failed", "error", releaseErr)
			}
		}
		return nil, err
	}
	result.Ticket = ticket

	ctx = logger.WithLogFields(ctx, logger.LogFields{TicketID: logger.Ptr(ticket.ID)})
	s.Logger.InfoContext(ctx, "ticket created from alert", "ticket_number", ticket.TicketNumber, "reason", result.Decision.Reason)

	traceID := params.TraceID
	if traceID == "" {
		traceID = sc.TraceID()
	}
	if err := s.Events.Publish(ctx, queue.TicketEvent{
		TicketID:       ticket.ID,
		TicketNumber:   ticket.TicketNumber,
		IntegrationID:  integration.ID,
		AssignedTeamID: ticket.AssignedTeamID,
		TraceID:        traceID,
	}); err != nil {
		s.Logger.WarnContext(ctx, "failed to publish ticket event", "error", err)
	}

	return result, nil
}

func (s *alertIngestService) createTicket(ctx context.Context, integration *model.Integration, payload any) (*model.Ticket, error) {
	mappings, err := s.FieldMappings.ListByIntegration(ctx, integration.ID)
	if err != nil {
		return nil, fmt.Errorf("loading field mappings: %w", err)
	}
	draft := mapping.BuildDraft(integration, mappings, payload)

	actorID, err := s.Identity.GetOrCreateSystemUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolving system user: %w", err)
	}

	ticket, err := s.Tickets.Create(ctx, draft, actorID)
	if err != nil {
		return nil, fmt.Errorf("creating ticket: %w", err)
	}
	return ticket, nil
}

func (s *alertIngestService) logDecision(ctx context.Context, d filter.Decision) {
	if d.Rule != nil {
		ctx = logger.WithLogFields(ctx, logger.LogFields{RuleID: logger.Ptr(d.Rule.ID)})
	}
	s.Logger.InfoContext(ctx, "alert filtered", "reason", d.Reason)
}
