package api

import (
	"github.com/gin-gonic/gin"

	"github.com/cupidworks/valentine-backend/internal/handlers"
	"github.com/cupidworks/valentine-backend/internal/middleware"
	"github.com/cupidworks/valentine-backend/internal/models"
)

func registerEventRoutes(r *gin.Engine, deps Deps) {
	handler := handlers.NewEventHandler(deps.Events)

	events := r.Group("/v1/events")
	{
		events.GET("", handler.List)
		events.GET("/:id", handler.Get)
	}

	admin := r.Group("/v1/events")
	admin.Use(middleware.Auth(deps.JWT), middleware.RequireRole(models.RoleAdmin))
	{
		admin.POST("", handler.Create)
		admin.PATCH("/:id", handler.Update)
		admin.DELETE("/:id", handler.Delete)
	}
}
