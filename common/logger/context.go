package logger

import "context"

type contextKey string

const logFieldsKey contextKey = "log_fields"

// LogFields are added to every record logged with a context carrying them.
type LogFields struct {
	IntegrationID *int64
	WebhookID     *string
	TicketID      *int64
	RuleID        *int64
	Component     string // e.g. "intake.webhook"
}

// WithLogFields enriches ctx. Non-nil, non-empty values in fields replace
// existing ones.
func WithLogFields(ctx context.Context, fields LogFields) context.Context {
	merged := mergeFields(GetLogFields(ctx), fields)
	return context.WithValue(ctx, logFieldsKey, merged)
}

func GetLogFields(ctx context.Context) LogFields {
	if fields, ok := ctx.Value(logFieldsKey).(LogFields); ok {
		return fields
	}
	return LogFields{}
}

func mergeFields(existing, next LogFields) LogFields {
	result := existing

	if next.IntegrationID != nil {
		result.IntegrationID = next.IntegrationID
	}
	if next.WebhookID != nil {
		result.WebhookID = next.WebhookID
	}
	if next.TicketID != nil {
		result.TicketID = next.TicketID
	}
	if next.RuleID != nil {
		result.RuleID = next.RuleID
	}
	if next.Component != "" {
		result.Component = next.Component
	}

	return result
}

// Ptr returns a pointer to v, for building LogFields inline.
func Ptr[T any](v T) *T {
	return &v
}
