package model

import "time"

// TicketField is a ticket attribute a mapping can write to.
type TicketField string

const (
	TicketFieldTitle       TicketField = "title"
	TicketFieldDescription TicketField = "description"
	TicketFieldPriority    TicketField = "priority"
	TicketFieldCategory    TicketField = "category"
	TicketFieldStatus      TicketField = "status"
	TicketFieldTags        TicketField = "tags"
	TicketFieldImpact      TicketField = "impact"
	TicketFieldUrgency     TicketField = "urgency"
)

func (f TicketField) IsValid() bool {
	switch f {
	case TicketFieldTitle, TicketFieldDescription, TicketFieldPriority, TicketFieldCategory,
		TicketFieldStatus, TicketFieldTags, TicketFieldImpact, TicketFieldUrgency:
		return true
	}
	return false
}

// FieldMapping copies a payload value into a ticket field. Mappings apply in
// insertion order and the last one targeting a field wins.
type FieldMapping struct {
	ID             int64       `json:"id"`
	IntegrationID  int64       `json:"integrationId"`
	TicketField    TicketField `json:"ticketField"`
	AlertFieldPath string      `json:"alertFieldPath"`
	Transform      string      `json:"transform,omitempty"`
	CreatedAt      time.Time   `json:"createdAt"`
}
