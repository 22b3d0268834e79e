package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cupidworks/valentine-backend/internal/app"
	iauth "github.com/cupidworks/valentine-backend/internal/auth"
	"github.com/cupidworks/valentine-backend/internal/handlers"
	"github.com/cupidworks/valentine-backend/internal/middleware"
	"github.com/cupidworks/valentine-backend/internal/notify"
	"github.com/cupidworks/valentine-backend/internal/services"
)

// Deps carries the wired services the router mounts.
type Deps struct {
	Config        *app.Config
	JWT           *iauth.JWTService
	Registrations *services.RegistrationService
	Referrals     *services.ReferralService
	Approvals     *services.ApprovalService
	Users         *services.UserService
	Events        *services.EventService
	Tickets       *services.TicketService
	Telegram      *notify.TelegramClient
	Dispatcher    *notify.Dispatcher
}

// NewRouter builds the Gin engine, wires middleware and registers all routes.
func NewRouter(deps Deps) (*gin.Engine, error) {
	if deps.Config == nil {
		return nil, fmt.Errorf("config must be provided")
	}
	if deps.JWT == nil {
		return nil, fmt.Errorf("jwt service must be provided")
	}
	if deps.Registrations == nil {
		return nil, fmt.Errorf("registration service must be provided")
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(deps.Config.Server.AllowedOrigins))

	rl := deps.Config.RateLimit
	r.Use(middleware.RateLimit(rl.General, rl.Window))
	// Registration and polling endpoints are unauthenticated; give them a
	// tighter bucket.
	strictLimit := middleware.RateLimit(rl.Registration, rl.Window)

	r.NoRoute(middleware.NotFoundHandler)

	r.GET("/health", handlers.Health())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	registerRegistrationRoutes(r, deps, strictLimit)
	registerAuthRoutes(r, deps)
	registerEventRoutes(r, deps)
	registerTicketRoutes(r, deps)

	return r, nil
}
