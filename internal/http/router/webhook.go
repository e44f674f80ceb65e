package router

import (
	"github.com/gin-gonic/gin"

	"alertdesk.app/intake/internal/http/handler/webhook"
)

func AlertWebhookRouter(rg *gin.RouterGroup, h *webhook.AlertWebhookHandler) {
	rg.POST("/:webhook_id", h.HandleAlert)
	rg.POST("/:webhook_id/test", h.HandleTest)
}
