package model

import "time"

// Priority is the ticket priority an alert maps to.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

// Integration is a configured alert source. WebhookID is immutable once created
// and APIKey is random, never derived from WebhookID.
type Integration struct {
	ID               int64     `json:"id"`
	Name             string    `json:"name"`
	Description      *string   `json:"description,omitempty"`
	Enabled          bool      `json:"enabled"`
	WebhookID        string    `json:"webhookId"`
	APIKey           string    `json:"-"` // only returned on create and rotate
	SourceSystem     *string   `json:"sourceSystem,omitempty"`
	DefaultPriority  Priority  `json:"defaultPriority"`
	DefaultCategory  string    `json:"defaultCategory"`
	AutoAssignTeamID *int64    `json:"autoAssignTeamId,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// SourceLabel returns the source system, or fallback when none is configured.
func (i *Integration) SourceLabel(fallback string) string {
	if i.SourceSystem != nil && *i.SourceSystem != "" {
		return *i.SourceSystem
	}
	return fallback
}
