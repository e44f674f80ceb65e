package logger

import (
	"context"
	"io"
	"log/slog"
	"os"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/trace"

	"alertdesk.app/intake/core/config"
)

// Setup installs the default slog logger: text in development, JSON in
// production, and the OTel bridge when production telemetry is configured.
func Setup(cfg config.Config) {
	slog.SetDefault(slog.New(newHandler(cfg, os.Stdout)))
}

func newHandler(cfg config.Config, w io.Writer) slog.Handler {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if cfg.IsDevelopment() {
		opts.Level = slog.LevelDebug
	}

	switch {
	case cfg.IsProduction() && cfg.OTel.Enabled():
		return otelslog.NewHandler(
			cfg.OTel.ServiceName,
			otelslog.WithLoggerProvider(global.GetLoggerProvider()),
		)
	case cfg.IsProduction():
		return NewTraceHandler(slog.NewJSONHandler(w, opts))
	default:
		return NewTraceHandler(slog.NewTextHandler(w, opts))
	}
}

// TraceHandler adds trace ids and context LogFields to each record.
type TraceHandler struct {
	slog.Handler
}

func NewTraceHandler(h slog.Handler) *TraceHandler {
	return &TraceHandler{Handler: h}
}

func (h *TraceHandler) Handle(ctx context.Context, r slog.Record) error {
	if span := trace.SpanFromContext(ctx); span.SpanContext().IsValid() {
		sc := span.SpanContext()
		r.AddAttrs(
			slog.String("trace_id", sc.TraceID().String()),
			slog.String("span_id", sc.SpanID().String()),
		)
	}

	fields := GetLogFields(ctx)
	if fields.IntegrationID != nil {
		r.AddAttrs(slog.Int64("integration_id", *fields.IntegrationID))
	}
	if fields.WebhookID != nil {
		r.AddAttrs(slog.String("webhook_id", *fields.WebhookID))
	}
	if fields.TicketID != nil {
		r.AddAttrs(slog.Int64("ticket_id", *fields.TicketID))
	}
	if fields.RuleID != nil {
		r.AddAttrs(slog.Int64("rule_id", *fields.RuleID))
	}
	if fields.Component != "" {
		r.AddAttrs(slog.String("component", fields.Component))
	}

	return h.Handler.Handle(ctx, r)
}

func (h *TraceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &TraceHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *TraceHandler) WithGroup(name string) slog.Handler {
	return &TraceHandler{Handler: h.Handler.WithGroup(name)}
}
