package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"alertdesk.app/intake/common/id"
	"alertdesk.app/intake/internal/http/dto"
	"alertdesk.app/intake/internal/model"
	"alertdesk.app/intake/internal/service"
)

type IntegrationHandler struct {
	integrations  service.IntegrationService
	publicBaseURL string
}

func NewIntegrationHandler(integrations service.IntegrationService, publicBaseURL string) *IntegrationHandler {
	return &IntegrationHandler{
		integrations:  integrations,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}
}

func (h *IntegrationHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateIntegrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "message": err.Error()})
		return
	}

	integration, err := h.integrations.Create(ctx, service.CreateIntegrationParams{
		Name:             req.Name,
		Description:      req.Description,
		Enabled:          req.Enabled,
		SourceSystem:     req.SourceSystem,
		DefaultPriority:  model.Priority(req.DefaultPriority),
		DefaultCategory:  req.DefaultCategory,
		AutoAssignTeamID: req.AutoAssignTeamID,
	})
	if err != nil {
		h.writeError(c, err, "failed to create integration")
		return
	}

	c.JSON(http.StatusCreated, h.withKey(integration))
}

func (h *IntegrationHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	integrations, err := h.integrations.List(ctx)
	if err != nil {
		h.writeError(c, err, "failed to list integrations")
		return
	}

	resp := make([]dto.IntegrationResponse, len(integrations))
	for i := range integrations {
		resp[i] = dto.ToIntegrationResponse(&integrations[i], h.webhookURL(integrations[i].WebhookID))
	}
	c.JSON(http.StatusOK, gin.H{"integrations": resp})
}

func (h *IntegrationHandler) Get(c *gin.Context) {
	integrationID, ok := pathID(c, "id")
	if !ok {
		return
	}

	integration, err := h.integrations.Get(c.Request.Context(), integrationID)
	if err != nil {
		h.writeError(c, err, "failed to get integration")
		return
	}
	c.JSON(http.StatusOK, dto.ToIntegrationResponse(integration, h.webhookURL(integration.WebhookID)))
}

func (h *IntegrationHandler) Update(c *gin.Context) {
	integrationID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateIntegrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "message": err.Error()})
		return
	}

	params := service.UpdateIntegrationParams{
		Name:             req.Name,
		Description:      req.Description,
		Enabled:          req.Enabled,
		SourceSystem:     req.SourceSystem,
		DefaultCategory:  req.DefaultCategory,
		AutoAssignTeamID: req.AutoAssignTeamID,
	}
	if req.DefaultPriority != nil {
		p := model.Priority(*req.DefaultPriority)
		params.DefaultPriority = &p
	}
	for _, field := range req.Clear {
		switch field {
		case "description":
			params.ClearDescription = true
		case "sourceSystem":
			params.ClearSourceSystem = true
		case "autoAssignTeamId":
			params.ClearAutoAssignTeamID = true
		}
	}

	integration, err := h.integrations.Update(c.Request.Context(), integrationID, params)
	if err != nil {
		h.writeError(c, err, "failed to update integration")
		return
	}
	c.JSON(http.StatusOK, dto.ToIntegrationResponse(integration, h.webhookURL(integration.WebhookID)))
}

func (h *IntegrationHandler) RotateKey(c *gin.Context) {
	integrationID, ok := pathID(c, "id")
	if !ok {
		return
	}

	integration, err := h.integrations.RotateAPIKey(c.Request.Context(), integrationID)
	if err != nil {
		h.writeError(c, err, "failed to rotate api key")
		return
	}
	c.JSON(http.StatusOK, h.withKey(integration))
}

func (h *IntegrationHandler) Delete(c *gin.Context) {
	integrationID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.integrations.Delete(c.Request.Context(), integrationID); err != nil {
		h.writeError(c, err, "failed to delete integration")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *IntegrationHandler) ListFilterRules(c *gin.Context) {
	integrationID, ok := pathID(c, "id")
	if !ok {
		return
	}

	rules, err := h.integrations.ListFilterRules(c.Request.Context(), integrationID)
	if err != nil {
		h.writeError(c, err, "failed to list filter rules")
		return
	}

	resp := make([]dto.FilterRuleResponse, len(rules))
	for i, r := range rules {
		resp[i] = dto.ToFilterRuleResponse(r)
	}
	c.JSON(http.StatusOK, gin.H{"filterRules": resp})
}

func (h *IntegrationHandler) CreateFilterRule(c *gin.Context) {
	integrationID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.CreateFilterRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "message": err.Error()})
		return
	}

	rule, err := h.integrations.AddFilterRule(c.Request.Context(), integrationID, service.CreateFilterRuleParams{
		Name:        req.Name,
		Description: req.Description,
		Enabled:     req.Enabled,
		FilterType:  model.FilterType(req.FilterType),
		FieldPath:   req.FieldPath,
		Operator:    model.Operator(req.Operator),
		Value:       req.Value,
		Priority:    req.Priority,
	})
	if err != nil {
		h.writeError(c, err, "failed to create filter rule")
		return
	}
	c.JSON(http.StatusCreated, dto.ToFilterRuleResponse(*rule))
}

func (h *IntegrationHandler) DeleteFilterRule(c *gin.Context) {
	integrationID, ok := pathID(c, "id")
	if !ok {
		return
	}
	ruleID, ok := pathID(c, "rule_id")
	if !ok {
		return
	}

	if err := h.integrations.DeleteFilterRule(c.Request.Context(), integrationID, ruleID); err != nil {
		h.writeError(c, err, "failed to delete filter rule")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *IntegrationHandler) ListFieldMappings(c *gin.Context) {
	integrationID, ok := pathID(c, "id")
	if !ok {
		return
	}

	mappings, err := h.integrations.ListFieldMappings(c.Request.Context(), integrationID)
	if err != nil {
		h.writeError(c, err, "failed to list field mappings")
		return
	}

	resp := make([]dto.FieldMappingResponse, len(mappings))
	for i, m := range mappings {
		resp[i] = dto.ToFieldMappingResponse(m)
	}
	c.JSON(http.StatusOK, gin.H{"fieldMappings": resp})
}

func (h *IntegrationHandler) CreateFieldMapping(c *gin.Context) {
	integrationID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.CreateFieldMappingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "message": err.Error()})
		return
	}

	m, err := h.integrations.AddFieldMapping(c.Request.Context(), integrationID, service.CreateFieldMappingParams{
		TicketField:    model.TicketField(req.TicketField),
		AlertFieldPath: req.AlertFieldPath,
		Transform:      req.Transform,
	})
	if err != nil {
		h.writeError(c, err, "failed to create field mapping")
		return
	}
	c.JSON(http.StatusCreated, dto.ToFieldMappingResponse(*m))
}

func (h *IntegrationHandler) DeleteFieldMapping(c *gin.Context) {
	integrationID, ok := pathID(c, "id")
	if !ok {
		return
	}
	mappingID, ok := pathID(c, "mapping_id")
	if !ok {
		return
	}

	if err := h.integrations.DeleteFieldMapping(c.Request.Context(), integrationID, mappingID); err != nil {
		h.writeError(c, err, "failed to delete field mapping")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *IntegrationHandler) withKey(integration *model.Integration) dto.IntegrationWithKeyResponse {
	return dto.IntegrationWithKeyResponse{
		IntegrationResponse: dto.ToIntegrationResponse(integration, h.webhookURL(integration.WebhookID)),
		APIKey:              integration.APIKey,
	}
}

func (h *IntegrationHandler) webhookURL(webhookID string) string {
	return h.publicBaseURL + "/webhooks/alerts/" + webhookID
}

func (h *IntegrationHandler) writeError(c *gin.Context, err error, msg string) {
	switch {
	case errors.Is(err, service.ErrIntegrationNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "integration not found"})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "message": err.Error()})
	default:
		slog.ErrorContext(c.Request.Context(), msg, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
	}
}

func pathID(c *gin.Context, name string) (int64, bool) {
	parsed, err := id.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return parsed, true
}
