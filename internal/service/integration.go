package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"alertdesk.app/intake/common/id"
	"alertdesk.app/intake/internal/filter"
	"alertdesk.app/intake/internal/model"
	"alertdesk.app/intake/internal/store"
	"alertdesk.app/intake/internal/transform"
)

type CreateIntegrationParams struct {
	Name             string
	Description      *string
	Enabled          *bool
	SourceSystem     *string
	DefaultPriority  model.Priority
	DefaultCategory  string
	AutoAssignTeamID *int64
}

// UpdateIntegrationParams only changes non-nil fields. The Clear flags reset
// optional fields to null and cannot be combined with a value for the same
// field.
type UpdateIntegrationParams struct {
	Name             *string
	Description      *string
	Enabled          *bool
	SourceSystem     *string
	DefaultPriority  *model.Priority
	DefaultCategory  *string
	AutoAssignTeamID *int64

	ClearDescription      bool
	ClearSourceSystem     bool
	ClearAutoAssignTeamID bool
}

func (p UpdateIntegrationParams) validate() error {
	switch {
	case p.ClearDescription && p.Description != nil:
		return fmt.Errorf("%w: description cannot be set and cleared together", ErrInvalidInput)
	case p.ClearSourceSystem && p.SourceSystem != nil:
		return fmt.Errorf("%w: sourceSystem cannot be set and cleared together", ErrInvalidInput)
	case p.ClearAutoAssignTeamID && p.AutoAssignTeamID != nil:
		return fmt.Errorf("%w: autoAssignTeamId cannot be set and cleared together", ErrInvalidInput)
	}
	return nil
}

type CreateFilterRuleParams struct {
	Name        string
	Description *string
	Enabled     *bool
	FilterType  model.FilterType
	FieldPath   string
	Operator    model.Operator
	Value       string
	Priority    int32
}

type CreateFieldMappingParams struct {
	TicketField    model.TicketField
	AlertFieldPath string
	Transform      string
}

// IntegrationService administers integrations and their rules and mappings.
type IntegrationService interface {
	Create(ctx context.Context, params CreateIntegrationParams) (*model.Integration, error)
	Get(ctx context.Context, integrationID int64) (*model.Integration, error)
	List(ctx context.Context) ([]model.Integration, error)
	Update(ctx context.Context, integrationID int64, params UpdateIntegrationParams) (*model.Integration, error)
	RotateAPIKey(ctx context.Context, integrationID int64) (*model.Integration, error)
	Delete(ctx context.Context, integrationID int64) error

	AddFilterRule(ctx context.Context, integrationID int64, params CreateFilterRuleParams) (*model.FilterRule, error)
	ListFilterRules(ctx context.Context, integrationID int64) ([]model.FilterRule, error)
	DeleteFilterRule(ctx context.Context, integrationID, ruleID int64) error

	AddFieldMapping(ctx context.Context, integrationID int64, params CreateFieldMappingParams) (*model.FieldMapping, error)
	ListFieldMappings(ctx context.Context, integrationID int64) ([]model.FieldMapping, error)
	DeleteFieldMapping(ctx context.Context, integrationID, mappingID int64) error
}

type integrationService struct {
	integrations  store.IntegrationStore
	filterRules   store.FilterRuleStore
	fieldMappings store.FieldMappingStore
	txRunner      TxRunner
}

func NewIntegrationService(integrations store.IntegrationStore, filterRules store.FilterRuleStore, fieldMappings store.FieldMappingStore, txRunner TxRunner) IntegrationService {
	return &integrationService{
		integrations:  integrations,
		filterRules:   filterRules,
		fieldMappings: fieldMappings,
		txRunner:      txRunner,
	}
}

func (s *integrationService) Create(ctx context.Context, params CreateIntegrationParams) (*model.Integration, error) {
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	priority := params.DefaultPriority
	if priority == "" {
		priority = model.PriorityMedium
	}
	if !priority.IsValid() {
		return nil, fmt.Errorf("%w: unknown priority %q", ErrInvalidInput, priority)
	}

	apiKey, err := generateAPIKey()
	if err != nil {
		return nil, fmt.Errorf("generating api key: %w", err)
	}

	enabled := true
	if params.Enabled != nil {
		enabled = *params.Enabled
	}

	integration := &model.Integration{
		ID:               id.New(),
		Name:             name,
		Description:      params.Description,
		Enabled:          enabled,
		WebhookID:        uuid.NewString(),
		APIKey:           apiKey,
		SourceSystem:     params.SourceSystem,
		DefaultPriority:  priority,
		DefaultCategory:  params.DefaultCategory,
		AutoAssignTeamID: params.AutoAssignTeamID,
	}
	if err := s.integrations.Create(ctx, integration); err != nil {
		return nil, fmt.Errorf("creating integration: %w", err)
	}

	slog.InfoContext(ctx, "integration created", "integration_id", integration.ID, "webhook_id", integration.WebhookID)
	return integration, nil
}

func (s *integrationService) Get(ctx context.Context, integrationID int64) (*model.Integration, error) {
	integration, err := s.integrations.GetByID(ctx, integrationID)
	if err != nil {
		return nil, mapStoreErr(err, ErrIntegrationNotFound)
	}
	return integration, nil
}

func (s *integrationService) List(ctx context.Context) ([]model.Integration, error) {
	return s.integrations.List(ctx)
}

func (s *integrationService) Update(ctx context.Context, integrationID int64, params UpdateIntegrationParams) (*model.Integration, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}

	var updated *model.Integration
	err := s.txRunner.WithTx(ctx, func(sp StoreProvider) error {
		integration, err := sp.Integrations().GetByID(ctx, integrationID)
		if err != nil {
			return mapStoreErr(err, ErrIntegrationNotFound)
		}

		if params.Name != nil {
			name := strings.TrimSpace(*params.Name)
			if name == "" {
				return fmt.Errorf("%w: name cannot be empty", ErrInvalidInput)
			}
			integration.Name = name
		}
		if params.Description != nil {
			integration.Description = params.Description
		}
		if params.Enabled != nil {
			integration.Enabled = *params.Enabled
		}
		if params.SourceSystem != nil {
			integration.SourceSystem = params.SourceSystem
		}
		if params.DefaultPriority != nil {
			if !params.DefaultPriority.IsValid() {
				return fmt.Errorf("%w: unknown priority %q", ErrInvalidInput, *params.DefaultPriority)
			}
			integration.DefaultPriority = *params.DefaultPriority
		}
		if params.DefaultCategory != nil {
			integration.DefaultCategory = *params.DefaultCategory
		}
		if params.AutoAssignTeamID != nil {
			integration.AutoAssignTeamID = params.AutoAssignTeamID
		}
		if params.ClearDescription {
			integration.Description = nil
		}
		if params.ClearSourceSystem {
			integration.SourceSystem = nil
		}
		if params.ClearAutoAssignTeamID {
			integration.AutoAssignTeamID = nil
		}

		if err := sp.Integrations().Update(ctx, integration); err != nil {
			return fmt.Errorf("updating integration: %w", err)
		}
		updated = integration
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *integrationService) RotateAPIKey(ctx context.Context, integrationID int64) (*model.Integration, error) {
	apiKey, err := generateAPIKey()
	if err != nil {
		return nil, fmt.Errorf("generating api key: %w", err)
	}
	if err := s.integrations.UpdateAPIKey(ctx, integrationID, apiKey); err != nil {
		return nil, mapStoreErr(err, ErrIntegrationNotFound)
	}

	integration, err := s.integrations.GetByID(ctx, integrationID)
	if err != nil {
		return nil, mapStoreErr(err, ErrIntegrationNotFound)
	}
	slog.InfoContext(ctx, "integration api key rotated", "integration_id", integrationID)
	return integration, nil
}

func (s *integrationService) Delete(ctx context.Context, integrationID int64) error {
	if err := s.integrations.Delete(ctx, integrationID); err != nil {
		return mapStoreErr(err, ErrIntegrationNotFound)
	}
	slog.InfoContext(ctx, "integration deleted", "integration_id", integrationID)
	return nil
}

func (s *integrationService) AddFilterRule(ctx context.Context, integrationID int64, params CreateFilterRuleParams) (*model.FilterRule, error) {
	enabled := true
	if params.Enabled != nil {
		enabled = *params.Enabled
	}
	rule := &model.FilterRule{
		ID:            id.New(),
		IntegrationID: integrationID,
		Name:          strings.TrimSpace(params.Name),
		Description:   params.Description,
		Enabled:       enabled,
		FilterType:    params.FilterType,
		FieldPath:     params.FieldPath,
		Operator:      params.Operator,
		Value:         params.Value,
		Priority:      params.Priority,
	}
	if rule.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if err := ValidateFieldPath(rule.FieldPath); err != nil {
		return nil, err
	}
	if err := filter.ValidateRule(*rule); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	err := s.txRunner.WithTx(ctx, func(sp StoreProvider) error {
		if _, err := sp.Integrations().GetByID(ctx, integrationID); err != nil {
			return mapStoreErr(err, ErrIntegrationNotFound)
		}
		if err := sp.FilterRules().Create(ctx, rule); err != nil {
			return fmt.Errorf("creating filter rule: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rule, nil
}

func (s *integrationService) ListFilterRules(ctx context.Context, integrationID int64) ([]model.FilterRule, error) {
	if _, err := s.Get(ctx, integrationID); err != nil {
		return nil, err
	}
	return s.filterRules.ListByIntegration(ctx, integrationID)
}

func (s *integrationService) DeleteFilterRule(ctx context.Context, integrationID, ruleID int64) error {
	if err := s.filterRules.Delete(ctx, integrationID, ruleID); err != nil {
		return mapStoreErr(err, ErrNotFound)
	}
	return nil
}

func (s *integrationService) AddFieldMapping(ctx context.Context, integrationID int64, params CreateFieldMappingParams) (*model.FieldMapping, error) {
	if !params.TicketField.IsValid() {
		return nil, fmt.Errorf("%w: unknown ticket field %q", ErrInvalidInput, params.TicketField)
	}
	if err := ValidateFieldPath(params.AlertFieldPath); err != nil {
		return nil, err
	}
	if params.Transform != "" && !transform.IsKnown(transform.Name(params.Transform)) {
		return nil, fmt.Errorf("%w: unknown transform %q", ErrInvalidInput, params.Transform)
	}

	m := &model.FieldMapping{
		ID:             id.New(),
		IntegrationID:  integrationID,
		TicketField:    params.TicketField,
		AlertFieldPath: params.AlertFieldPath,
		Transform:      params.Transform,
	}
	err := s.txRunner.WithTx(ctx, func(sp StoreProvider) error {
		if _, err := sp.Integrations().GetByID(ctx, integrationID); err != nil {
			return mapStoreErr(err, ErrIntegrationNotFound)
		}
		if err := sp.FieldMappings().Create(ctx, m); err != nil {
			return fmt.Errorf("creating field mapping: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (s *integrationService) ListFieldMappings(ctx context.Context, integrationID int64) ([]model.FieldMapping, error) {
	if _, err := s.Get(ctx, integrationID); err != nil {
		return nil, err
	}
	return s.fieldMappings.ListByIntegration(ctx, integrationID)
}

func (s *integrationService) DeleteFieldMapping(ctx context.Context, integrationID, mappingID int64) error {
	if err := s.fieldMappings.Delete(ctx, integrationID, mappingID); err != nil {
		return mapStoreErr(err, ErrNotFound)
	}
	return nil
}

// ValidateFieldPath rejects empty paths and paths with empty segments.
func ValidateFieldPath(path string) error {
	if path == "" {
		return fmt.Errorf("%w: field path is required", ErrInvalidInput)
	}
	for _, segment := range strings.Split(path, ".") {
		if segment == "" {
			return fmt.Errorf("%w: field path %q has an empty segment", ErrInvalidInput, path)
		}
	}
	return nil
}

func mapStoreErr(err, notFound error) error {
	if errors.Is(err, store.ErrNotFound) {
		return notFound
	}
	return err
}

func generateAPIKey() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
