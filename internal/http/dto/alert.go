package dto

type AlertResponse struct {
	Message       string `json:"message"`
	TicketCreated bool   `json:"ticketCreated"`
	TicketID      *int64 `json:"ticketId,omitempty,string"`
	TicketNumber  string `json:"ticketNumber,omitempty"`
	Duplicate     bool   `json:"duplicate,omitempty"`
}

type TestIntegrationSummary struct {
	Name         string  `json:"name"`
	SourceSystem *string `json:"sourceSystem"`
	Enabled      bool    `json:"enabled"`
}

type TestWebhookResponse struct {
	Message     string                 `json:"message"`
	Integration TestIntegrationSummary `json:"integration"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
