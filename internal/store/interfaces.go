package store

import (
	"context"
	"errors"

	"alertdesk.app/intake/internal/model"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// IntegrationStore defines the contract for alert integration data access
type IntegrationStore interface {
	GetByID(ctx context.Context, id int64) (*model.Integration, error)
	GetByWebhookID(ctx context.Context, webhookID string) (*model.Integration, error)
	List(ctx context.Context) ([]model.Integration, error)
	Create(ctx context.Context, integration *model.Integration) error
	Update(ctx context.Context, integration *model.Integration) error
	UpdateAPIKey(ctx context.Context, id int64, apiKey string) error
	Delete(ctx context.Context, id int64) error // cascades to rules and mappings
}

// FilterRuleStore lists rules in insertion order.
type FilterRuleStore interface {
	ListByIntegration(ctx context.Context, integrationID int64) ([]model.FilterRule, error)
	Create(ctx context.Context, rule *model.FilterRule) error
	Delete(ctx context.Context, integrationID, id int64) error
}

// FieldMappingStore lists mappings in insertion order.
type FieldMappingStore interface {
	ListByIntegration(ctx context.Context, integrationID int64) ([]model.FieldMapping, error)
	Create(ctx context.Context, mapping *model.FieldMapping) error
	Delete(ctx context.Context, integrationID, id int64) error
}

// TicketStore persists drafts as tickets attributed to actorID.
type TicketStore interface {
	Create(ctx context.Context, draft model.TicketDraft, actorID int64) (*model.Ticket, error)
	GetByID(ctx context.Context, id int64) (*model.Ticket, error)
}

// UserStore defines the contract for user data access
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	UpsertSystemUser(ctx context.Context, user *model.User) (*model.User, error)
}
