package model

import "time"

const TicketStatusOpen = "open"

// TicketDraft is the ticket data built from an alert before it is persisted.
type TicketDraft struct {
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Priority       Priority `json:"priority"`
	Category       string   `json:"category"`
	Status         string   `json:"status"`
	Impact         string   `json:"impact,omitempty"`
	Urgency        string   `json:"urgency,omitempty"`
	Tags           []string `json:"tags"`
	AssignedTeamID *int64   `json:"assignedTeamId,omitempty"`
	IntegrationID  int64    `json:"integrationId"`
	Source         string   `json:"source"`
}

type Ticket struct {
	ID             int64     `json:"id"`
	TicketNumber   string    `json:"ticketNumber"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Priority       Priority  `json:"priority"`
	Category       string    `json:"category"`
	Status         string    `json:"status"`
	Impact         *string   `json:"impact,omitempty"`
	Urgency        *string   `json:"urgency,omitempty"`
	Tags           []string  `json:"tags"`
	AssignedTeamID *int64    `json:"assignedTeamId,omitempty"`
	IntegrationID  *int64    `json:"integrationId,omitempty"`
	Source         string    `json:"source"`
	CreatedBy      int64     `json:"createdBy"`
	CreatedAt      time.Time `json:"createdAt"`
}
