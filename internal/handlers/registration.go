package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cupidworks/valentine-backend/internal/services"
	appErrors "github.com/cupidworks/valentine-backend/pkg/errors"
	"github.com/cupidworks/valentine-backend/pkg/response"
)

// RegistrationHandler exposes the registration decision flow over HTTP.
type RegistrationHandler struct {
	registrations *services.RegistrationService
}

// NewRegistrationHandler constructs a RegistrationHandler.
func NewRegistrationHandler(registrations *services.RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{registrations: registrations}
}

type registerRequest struct {
	Name         string `json:"name" validate:"required,min=1,max=120"`
	Email        string `json:"email" validate:"required,email"`
	Phone        string `json:"phone" validate:"required,phone10"`
	ReferralCode string `json:"referral_code" validate:"omitempty,max=16"`
}

// ticketSummary is the payload attached to every approving or login
// disposition: the fields printed on the ticket. referral_code is null for
// outsiders, who never hold a code of their own.
func ticketSummary(got *services.Disposition) gin.H {
	return gin.H{
		"name":          got.User.Name,
		"email":         got.User.Email,
		"phone":         got.User.Phone,
		"referral_code": got.ReferralCode,
	}
}

// dispositionStatusCode maps a decision to its HTTP status. Rejected referral
// submissions answer 400; every other decision is a 200 the frontend keys off
// the status field.
func dispositionStatusCode(status string) int {
	if status == services.StatusInvalidReferral {
		return http.StatusBadRequest
	}
	return http.StatusOK
}

// Register handles POST /register.
func (h *RegistrationHandler) Register(c *gin.Context) {
	var req registerRequest
	if !bindAndValidate(c, &req) {
		return
	}

	got, err := h.registrations.Register(requestContext(c), services.RegistrationInput{
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		ReferralCode: req.ReferralCode,
	})
	if err != nil {
		appErr := appErrors.FromError(err)
		response.Status(c, appErr.StatusCode, services.StatusError, appErr.Message, nil)
		return
	}

	extra := gin.H{}
	if got.ReferralCode != nil {
		extra["referral_code"] = *got.ReferralCode
	}
	if got.User != nil {
		extra["ticket"] = ticketSummary(got)
	}
	response.Status(c, dispositionStatusCode(got.Status), got.Status, got.Message, extra)
}

// OpenUser handles POST /open-user, the oldest surviving registration
// endpoint. It runs the same engine but projects the result down to the
// boolean shape its frontend still expects.
func (h *RegistrationHandler) OpenUser(c *gin.Context) {
	var req registerRequest
	if !bindAndValidate(c, &req) {
		return
	}

	got, err := h.registrations.Register(requestContext(c), services.RegistrationInput{
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		ReferralCode: req.ReferralCode,
	})
	if err != nil {
		appErr := appErrors.FromError(err)
		c.JSON(appErr.StatusCode, gin.H{"approved": false, "message": appErr.Message})
		return
	}

	approved := got.Status == services.StatusApprovedStudent ||
		got.Status == services.StatusApprovedOutsider ||
		got.Status == services.StatusLoginStudent ||
		got.Status == services.StatusLoginOutsider

	payload := gin.H{"approved": approved, "message": got.Message}
	if got.ReferralCode != nil {
		payload["referralCode"] = *got.ReferralCode
	}
	c.JSON(dispositionStatusCode(got.Status), payload)
}

type checkStatusRequest struct {
	Email string `json:"email" validate:"omitempty,email"`
	Phone string `json:"phone" validate:"omitempty,phone10"`
}

// CheckStatus handles POST /check-status.
func (h *RegistrationHandler) CheckStatus(c *gin.Context) {
	var req checkStatusRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if req.Email == "" && req.Phone == "" {
		response.Error(c, appErrors.NewBadRequest("email or phone is required"))
		return
	}

	got, err := h.registrations.CheckStatus(requestContext(c), req.Email, req.Phone)
	if err != nil {
		response.Error(c, err)
		return
	}

	extra := gin.H{}
	if got.ReferralCode != nil {
		extra["referral_code"] = *got.ReferralCode
	}
	if got.User != nil {
		extra["ticket"] = ticketSummary(got)
	}
	response.Status(c, http.StatusOK, got.Status, got.Message, extra)
}
