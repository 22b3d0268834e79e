package api

import (
	"github.com/gin-gonic/gin"

	"github.com/cupidworks/valentine-backend/internal/handlers"
	"github.com/cupidworks/valentine-backend/internal/middleware"
)

func registerAuthRoutes(r *gin.Engine, deps Deps) {
	handler := handlers.NewAuthHandler(deps.Users, deps.Config.Auth.TokenTTL)

	auth := r.Group("/v1/auth")
	{
		auth.POST("/signup", handler.Signup)
		auth.POST("/login", handler.Login)
	}

	authed := r.Group("/v1/auth")
	authed.Use(middleware.Auth(deps.JWT))
	{
		authed.GET("/me", handler.Me)
		authed.POST("/logout", handler.Logout)
	}
}
