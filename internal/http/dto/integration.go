package dto

import (
	"time"

	"alertdesk.app/intake/internal/model"
)

type CreateIntegrationRequest struct {
	Name             string  `json:"name" binding:"required,min=1,max=255"`
	Description      *string `json:"description,omitempty"`
	Enabled          *bool   `json:"enabled,omitempty"`
	SourceSystem     *string `json:"sourceSystem,omitempty" binding:"omitempty,max=255"`
	DefaultPriority  string  `json:"defaultPriority,omitempty" binding:"omitempty,priority"`
	DefaultCategory  string  `json:"defaultCategory,omitempty" binding:"max=255"`
	AutoAssignTeamID *int64  `json:"autoAssignTeamId,omitempty,string"`
}

type UpdateIntegrationRequest struct {
	Name             *string `json:"name,omitempty" binding:"omitempty,min=1,max=255"`
	Description      *string `json:"description,omitempty"`
	Enabled          *bool   `json:"enabled,omitempty"`
	SourceSystem     *string `json:"sourceSystem,omitempty" binding:"omitempty,max=255"`
	DefaultPriority  *string `json:"defaultPriority,omitempty" binding:"omitempty,priority"`
	DefaultCategory  *string `json:"defaultCategory,omitempty" binding:"omitempty,max=255"`
	AutoAssignTeamID *int64  `json:"autoAssignTeamId,omitempty,string"`

	// Clear lists optional fields to reset to null, e.g. ["sourceSystem"].
	Clear []string `json:"clear,omitempty" binding:"omitempty,dive,oneof=description sourceSystem autoAssignTeamId"`
}

type IntegrationResponse struct {
	ID               int64     `json:"id,string"`
	Name             string    `json:"name"`
	Description      *string   `json:"description,omitempty"`
	Enabled          bool      `json:"enabled"`
	WebhookID        string    `json:"webhookId"`
	WebhookURL       string    `json:"webhookUrl"`
	SourceSystem     *string   `json:"sourceSystem,omitempty"`
	DefaultPriority  string    `json:"defaultPriority"`
	DefaultCategory  string    `json:"defaultCategory"`
	AutoAssignTeamID *int64    `json:"autoAssignTeamId,omitempty,string"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// IntegrationWithKeyResponse is only returned on create and key rotation.
type IntegrationWithKeyResponse struct {
	IntegrationResponse
	APIKey string `json:"apiKey"`
}

func ToIntegrationResponse(i *model.Integration, webhookURL string) IntegrationResponse {
	return IntegrationResponse{
		ID:               i.ID,
		Name:             i.Name,
		Description:      i.Description,
		Enabled:          i.Enabled,
		WebhookID:        i.WebhookID,
		WebhookURL:       webhookURL,
		SourceSystem:     i.SourceSystem,
		DefaultPriority:  string(i.DefaultPriority),
		DefaultCategory:  i.DefaultCategory,
		AutoAssignTeamID: i.AutoAssignTeamID,
		CreatedAt:        i.CreatedAt,
		UpdatedAt:        i.UpdatedAt,
	}
}

type CreateFilterRuleRequest struct {
	Name        string  `json:"name" binding:"required,min=1,max=255"`
	Description *string `json:"description,omitempty"`
	Enabled     *bool   `json:"enabled,omitempty"`
	FilterType  string  `json:"filterType" binding:"required,filtertype"`
	FieldPath   string  `json:"fieldPath" binding:"required,fieldpath"`
	Operator    string  `json:"operator" binding:"required,operator"`
	Value       string  `json:"value"`
	Priority    int32   `json:"priority"`
}

type FilterRuleResponse struct {
	ID            int64     `json:"id,string"`
	IntegrationID int64     `json:"integrationId,string"`
	Name          string    `json:"name"`
	Description   *string   `json:"description,omitempty"`
	Enabled       bool      `json:"enabled"`
	FilterType    string    `json:"filterType"`
	FieldPath     string    `json:"fieldPath"`
	Operator      string    `json:"operator"`
	Value         string    `json:"value"`
	Priority      int32     `json:"priority"`
	CreatedAt     time.Time `json:"createdAt"`
}

func ToFilterRuleResponse(r model.FilterRule) FilterRuleResponse {
	return FilterRuleResponse{
		ID:            r.ID,
		IntegrationID: r.IntegrationID,
		Name:          r.Name,
		Description:   r.Description,
		Enabled:       r.Enabled,
		FilterType:    string(r.FilterType),
		FieldPath:     r.FieldPath,
		Operator:      string(r.Operator),
		Value:         r.Value,
		Priority:      r.Priority,
		CreatedAt:     r.CreatedAt,
	}
}

type CreateFieldMappingRequest struct {
	TicketField    string `json:"ticketField" binding:"required,ticketfield"`
	AlertFieldPath string `json:"alertFieldPath" binding:"required,fieldpath"`
	Transform      string `json:"transform,omitempty" binding:"omitempty,transform"`
}

type FieldMappingResponse struct {
	ID             int64     `json:"id,string"`
	IntegrationID  int64     `json:"integrationId,string"`
	TicketField    string    `json:"ticketField"`
	AlertFieldPath string    `json:"alertFieldPath"`
	Transform      string    `json:"transform,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

func ToFieldMappingResponse(m model.FieldMapping) FieldMappingResponse {
	return FieldMappingResponse{
		ID:             m.ID,
		IntegrationID:  m.IntegrationID,
		TicketField:    string(m.TicketField),
		AlertFieldPath: m.AlertFieldPath,
		Transform:      m.Transform,
		CreatedAt:      m.CreatedAt,
	}
}
