package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/cupidworks/valentine-backend/internal/services"
	"github.com/cupidworks/valentine-backend/pkg/response"
)

// TicketHandler serves the authenticated ticketing surface.
type TicketHandler struct {
	tickets *services.TicketService
}

// NewTicketHandler constructs a TicketHandler.
func NewTicketHandler(tickets *services.TicketService) *TicketHandler {
	return &TicketHandler{tickets: tickets}
}

type rsvpRequest struct {
	EventID string `json:"event_id" validate:"required"`
}

// RSVP handles POST /v1/tickets/rsvp.
func (h *TicketHandler) RSVP(c *gin.Context) {
	var req rsvpRequest
	if !bindAndValidate(c, &req) {
		return
	}

	result, err := h.tickets.RSVP(requestContext(c), currentUserID(c), req.EventID)
	if err != nil {
		response.Error(c, err)
		return
	}

	if result.Outcome == services.RSVPWaitlisted {
		response.Success(c, http.StatusOK, gin.H{"outcome": result.Outcome})
		return
	}
	response.Success(c, http.StatusCreated, gin.H{
		"outcome": result.Outcome,
		"ticket":  result.Ticket,
	})
}

// List handles GET /v1/tickets.
func (h *TicketHandler) List(c *gin.Context) {
	tickets, err := h.tickets.ListMine(requestContext(c), currentUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, tickets)
}

// Cancel handles POST /v1/tickets/:id/cancel.
func (h *TicketHandler) Cancel(c *gin.Context) {
	if err := h.tickets.Cancel(requestContext(c), currentUserID(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"cancelled": true})
}

// QR handles GET /v1/tickets/:id/qr, answering a PNG.
func (h *TicketHandler) QR(c *gin.Context) {
	size, _ := strconv.Atoi(c.DefaultQuery("size", "256"))

	png, err := h.tickets.QRPNG(requestContext(c), currentUserID(c), c.Param("id"), size)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}
