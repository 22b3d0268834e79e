package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cupidworks/valentine-backend/internal/services"
	appErrors "github.com/cupidworks/valentine-backend/pkg/errors"
	"github.com/cupidworks/valentine-backend/pkg/response"
)

// ReferralHandler exposes the public referral verification endpoint.
type ReferralHandler struct {
	referrals *services.ReferralService
}

// NewReferralHandler constructs a ReferralHandler.
func NewReferralHandler(referrals *services.ReferralService) *ReferralHandler {
	return &ReferralHandler{referrals: referrals}
}

type verifyReferralRequest struct {
	Code string `json:"code" validate:"required,max=16"`
}

// Verify handles POST /verify-referral. A pure read: it never consumes a use
// and never sets any state on the caller.
func (h *ReferralHandler) Verify(c *gin.Context) {
	var req verifyReferralRequest
	if !bindAndValidate(c, &req) {
		return
	}

	referral, err := h.referrals.Validate(requestContext(c), req.Code)
	if err != nil {
		appErr := appErrors.FromError(err)
		if appErr.Code == "INVALID_REFERRAL" {
			c.JSON(http.StatusOK, gin.H{"valid": false, "message": appErr.Message})
			return
		}
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"valid":         true,
		"message":       "Referral code is valid.",
		"remainingUses": referral.Remaining(),
	})
}
