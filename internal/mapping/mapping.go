// Package mapping builds ticket drafts from alert payloads using an
// integration's defaults and field mappings.
package mapping

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"alertdesk.app/intake/internal/jsonpath"
	"alertdesk.app/intake/internal/model"
	"alertdesk.app/intake/internal/transform"
)

const (
	// SourceAlertWebhook marks tickets that originated from an alert webhook.
	SourceAlertWebhook = "alert_webhook"

	defaultSourceName = "Monitoring System"
	defaultSourceTag  = "alert"
)

// BuildDraft seeds a draft from the integration defaults, applies mappings in
// the order given (the last mapping writing a field wins), then fills the
// title, description and synthetic tags.
func BuildDraft(integration *model.Integration, mappings []model.FieldMapping, payload any) model.TicketDraft {
	draft := model.TicketDraft{
		Priority:      integration.DefaultPriority,
		Category:      integration.DefaultCategory,
		Status:        model.TicketStatusOpen,
		Tags:          []string{},
		IntegrationID: integration.ID,
		Source:        SourceAlertWebhook,
	}

	for _, m := range mappings {
		value, ok := jsonpath.Present(payload, m.AlertFieldPath)
		if !ok {
			continue
		}
		assign(&draft, m.TicketField, transform.Apply(transform.Name(m.Transform), value))
	}

	if draft.Title == "" {
		draft.Title = fmt.Sprintf("Alert from %s", integration.SourceLabel(defaultSourceName))
	}
	if draft.Description == "" {
		draft.Description = prettyJSON(payload)
	}

	draft.Tags = append(draft.Tags,
		"source:"+integration.SourceLabel(defaultSourceTag),
		"integration:"+integration.Name,
	)

	if integration.AutoAssignTeamID != nil {
		team := *integration.AutoAssignTeamID
		draft.AssignedTeamID = &team
	}

	return draft
}

func assign(draft *model.TicketDraft, field model.TicketField, value any) {
	switch field {
	case model.TicketFieldTitle:
		draft.Title = jsonpath.String(value)
	case model.TicketFieldDescription:
		draft.Description = jsonpath.String(value)
	case model.TicketFieldPriority:
		draft.Priority = model.Priority(jsonpath.String(value))
	case model.TicketFieldCategory:
		draft.Category = jsonpath.String(value)
	case model.TicketFieldStatus:
		draft.Status = jsonpath.String(value)
	case model.TicketFieldImpact:
		draft.Impact = jsonpath.String(value)
	case model.TicketFieldUrgency:
		draft.Urgency = jsonpath.String(value)
	case model.TicketFieldTags:
		draft.Tags = toTags(value)
	}
}

func toTags(value any) []string {
	items, ok := value.([]any)
	if !ok {
		items = []any{value}
	}

	tags := make([]string, 0, len(items))
	for _, item := range items {
		if tag := strings.TrimSpace(jsonpath.String(item)); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

func prettyJSON(payload any) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(payload); err != nil {
		return jsonpath.String(payload)
	}
	return strings.TrimSuffix(buf.String(), "\n")
}
