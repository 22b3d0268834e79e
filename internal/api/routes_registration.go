package api

import (
	"github.com/gin-gonic/gin"

	"github.com/cupidworks/valentine-backend/internal/handlers"
)

// registerRegistrationRoutes mounts the legacy public registration surface.
// These paths predate the /v1 prefix and keep their original shapes so the
// deployed frontends continue to work.
func registerRegistrationRoutes(r *gin.Engine, deps Deps, strictLimit gin.HandlerFunc) {
	registration := handlers.NewRegistrationHandler(deps.Registrations)
	referrals := handlers.NewReferralHandler(deps.Referrals)
	approvals := handlers.NewApprovalHandler(deps.Approvals, deps.Telegram, deps.Dispatcher)

	r.POST("/register", strictLimit, registration.Register)
	r.POST("/open-user", strictLimit, registration.OpenUser)
	r.POST("/check-status", strictLimit, registration.CheckStatus)
	r.POST("/verify-referral", referrals.Verify)

	r.POST("/approve-telegram", approvals.Approve)
	r.POST("/telegram-webhook", approvals.Webhook)
}
