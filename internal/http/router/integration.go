package router

import (
	"github.com/gin-gonic/gin"

	"alertdesk.app/intake/internal/http/handler"
)

func IntegrationRouter(rg *gin.RouterGroup, adminAPIKey string, h *handler.IntegrationHandler) {
	rg.Use(handler.RequireAdminAPIKey(adminAPIKey))
	{
		rg.POST("", h.Create)
		rg.GET("", h.List)
		rg.GET("/:id", h.Get)
		rg.PATCH("/:id", h.Update)
		rg.DELETE("/:id", h.Delete)
		rg.POST("/:id/rotate-key", h.RotateKey)

		rg.GET("/:id/filter-rules", h.ListFilterRules)
		rg.POST("/:id/filter-rules", h.CreateFilterRule)
		rg.DELETE("/:id/filter-rules/:rule_id", h.DeleteFilterRule)

		rg.GET("/:id/field-mappings", h.ListFieldMappings)
		rg.POST("/:id/field-mappings", h.CreateFieldMapping)
		rg.DELETE("/:id/field-mappings/:mapping_id", h.DeleteFieldMapping)
	}
}
