package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"alertdesk.app/intake/internal/http/handler"
	"alertdesk.app/intake/internal/http/handler/webhook"
	"alertdesk.app/intake/internal/metrics"
	"alertdesk.app/intake/internal/service"
)

type RouterConfig struct {
	PublicBaseURL  string
	AdminAPIKey    string
	MaxBodyBytes   int64
	MetricsHandler http.Handler
}

// Services is the subset of service.Services the routes need.
type Services interface {
	AlertIngest() service.AlertIngestService
	Integrations() service.IntegrationService
}

func SetupRoutes(router *gin.Engine, services Services, recorder metrics.Recorder, cfg RouterConfig) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if cfg.MetricsHandler != nil {
		router.GET("/metrics", gin.WrapH(cfg.MetricsHandler))
	}

	alertHandler := webhook.NewAlertWebhookHandler(services.AlertIngest(), recorder, cfg.MaxBodyBytes)
	AlertWebhookRouter(router.Group("/webhooks/alerts"), alertHandler)

	// The configuration API only exists when an admin key is set.
	if cfg.AdminAPIKey != "" {
		v1 := router.Group("/api/v1")
		integrationHandler := handler.NewIntegrationHandler(services.Integrations(), cfg.PublicBaseURL)
		IntegrationRouter(v1.Group("/integrations"), cfg.AdminAPIKey, integrationHandler)
	}
}
