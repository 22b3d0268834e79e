package api

import (
	"github.com/gin-gonic/gin"

	"github.com/cupidworks/valentine-backend/internal/handlers"
	"github.com/cupidworks/valentine-backend/internal/middleware"
)

func registerTicketRoutes(r *gin.Engine, deps Deps) {
	handler := handlers.NewTicketHandler(deps.Tickets)

	tickets := r.Group("/v1/tickets")
	tickets.Use(middleware.Auth(deps.JWT))
	{
		tickets.POST("/rsvp", handler.RSVP)
		tickets.GET("", handler.List)
		tickets.POST("/:id/cancel", handler.Cancel)
		tickets.GET("/:id/qr", handler.QR)
	}
}
