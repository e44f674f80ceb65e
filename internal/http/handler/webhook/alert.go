package webhook

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"alertdesk.app/intake/common/logger"
	"alertdesk.app/intake/internal/http/dto"
	"alertdesk.app/intake/internal/metrics"
	"alertdesk.app/intake/internal/service"
)

const DefaultMaxBodyBytes int64 = 1 << 20

type AlertWebhookHandler struct {
	ingest       service.AlertIngestService
	metrics      metrics.Recorder
	maxBodyBytes int64
}

func NewAlertWebhookHandler(ingest service.AlertIngestService, recorder metrics.Recorder, maxBodyBytes int64) *AlertWebhookHandler {
	if recorder == nil {
		recorder = (*metrics.Intake)(nil)
	}
	if maxBodyBytes <= 0 {
		maxBodyBytes = DefaultMaxBodyBytes
	}
	return &AlertWebhookHandler{
		ingest:       ingest,
		metrics:      recorder,
		maxBodyBytes: maxBodyBytes,
	}
}

// HandleAlert turns an alert payload into a ticket unless a filter rule
// rejects it. Credentials are checked before the body is read.
func (h *AlertWebhookHandler) HandleAlert(c *gin.Context) {
	webhookID := c.Param("webhook_id")
	ctx := logger.WithLogFields(c.Request.Context(), logger.LogFields{
		WebhookID: logger.Ptr(webhookID),
		Component: "webhook.alert",
	})
	c.Request = c.Request.WithContext(ctx)

	apiKey := apiKeyFrom(c)
	integration, err := h.ingest.Authenticate(ctx, webhookID, apiKey)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBodyBytes)
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.metrics.Request(metrics.OutcomeInvalidPayload)
			c.JSON(http.StatusRequestEntityTooLarge, dto.ErrorResponse{
				Error:   "payload_too_large",
				Message: fmt.Sprintf("alert payload exceeds %d bytes", h.maxBodyBytes),
			})
			return
		}
		h.metrics.Request(metrics.OutcomeInvalidPayload)
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid_payload", Message: "failed to read request body"})
		return
	}

	result, err := h.ingest.Process(ctx, integration, service.AlertIngestParams{
		WebhookID: webhookID,
		APIKey:    apiKey,
		Body:      body,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	switch {
	case result.Duplicate:
		h.metrics.Request(metrics.OutcomeDuplicate)
		c.JSON(http.StatusOK, dto.AlertResponse{
			Message:       "Duplicate alert suppressed",
			TicketCreated: false,
			Duplicate:     true,
		})
	case result.Ticket == nil:
		h.metrics.Request(metrics.OutcomeFiltered)
		c.JSON(http.StatusOK, dto.AlertResponse{
			Message:       "Alert filtered: " + result.Decision.Reason,
			TicketCreated: false,
		})
	default:
		h.metrics.Request(metrics.OutcomeCreated)
		ticketID := result.Ticket.ID
		c.JSON(http.StatusOK, dto.AlertResponse{
			Message:       "Ticket created successfully",
			TicketCreated: true,
			TicketID:      &ticketID,
			TicketNumber:  result.Ticket.TicketNumber,
		})
	}
}

// HandleTest checks the webhook credentials without creating anything.
func (h *AlertWebhookHandler) HandleTest(c *gin.Context) {
	webhookID := c.Param("webhook_id")
	ctx := logger.WithLogFields(c.Request.Context(), logger.LogFields{
		WebhookID: logger.Ptr(webhookID),
		Component: "webhook.test",
	})
	c.Request = c.Request.WithContext(ctx)

	integration, err := h.ingest.Authenticate(ctx, webhookID, apiKeyFrom(c))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.TestWebhookResponse{
		Message: "Webhook authentication successful",
		Integration: dto.TestIntegrationSummary{
			Name:         integration.Name,
			SourceSystem: integration.SourceSystem,
			Enabled:      integration.Enabled,
		},
	})
}

func (h *AlertWebhookHandler) writeError(c *gin.Context, err error) {
	ctx := c.Request.Context()

	switch {
	case errors.Is(err, service.ErrIntegrationNotFound):
		h.metrics.Request(metrics.OutcomeNotFound)
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "not_found", Message: "integration not found"})
	case errors.Is(err, service.ErrIntegrationDisabled):
		h.metrics.Request(metrics.OutcomeForbidden)
		c.JSON(http.StatusForbidden, dto.ErrorResponse{Error: "forbidden", Message: "integration is disabled"})
	case errors.Is(err, service.ErrInvalidAPIKey):
		h.metrics.Request(metrics.OutcomeUnauthorized)
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "unauthorized", Message: "invalid or missing api key"})
	case errors.Is(err, service.ErrInvalidPayload):
		h.metrics.Request(metrics.OutcomeInvalidPayload)
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid_payload", Message: "request body must be valid JSON"})
	default:
		h.metrics.Request(metrics.OutcomeError)
		slog.ErrorContext(ctx, "failed to process alert", "error", err)
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal_error", Message: err.Error()})
	}
}

func apiKeyFrom(c *gin.Context) string {
	if key := c.GetHeader("X-API-Key"); key != "" {
		return key
	}
	auth := c.GetHeader("Authorization")
	if token, ok := strings.CutPrefix(auth, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}
