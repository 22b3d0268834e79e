package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cupidworks/valentine-backend/internal/services"
	"github.com/cupidworks/valentine-backend/pkg/response"
)

// EventHandler serves the public event catalogue and the admin CRUD surface.
type EventHandler struct {
	events *services.EventService
}

// NewEventHandler constructs an EventHandler.
func NewEventHandler(events *services.EventService) *EventHandler {
	return &EventHandler{events: events}
}

// List handles GET /v1/events.
func (h *EventHandler) List(c *gin.Context) {
	events, err := h.events.ListUpcoming(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, events)
}

// Get handles GET /v1/events/:id.
func (h *EventHandler) Get(c *gin.Context) {
	event, err := h.events.Get(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, event)
}

type eventRequest struct {
	Title       string    `json:"title" validate:"required,min=1,max=200"`
	Description string    `json:"description" validate:"required"`
	Date        time.Time `json:"date" validate:"required"`
	Location    string    `json:"location" validate:"required,max=200"`
	Capacity    int       `json:"capacity" validate:"required,min=1"`
	Price       float64   `json:"price" validate:"omitempty,min=0"`
	ImageURL    string    `json:"image_url" validate:"omitempty,url"`
	Visibility  string    `json:"visibility" validate:"omitempty,oneof=PUBLIC PRIVATE"`
	Status      string    `json:"status" validate:"omitempty,oneof=DRAFT PUBLISHED CANCELLED ARCHIVED"`
}

// Create handles POST /v1/events (admin).
func (h *EventHandler) Create(c *gin.Context) {
	var req eventRequest
	if !bindAndValidate(c, &req) {
		return
	}

	event, err := h.events.Create(requestContext(c), currentUserID(c), services.EventInput{
		Title:       req.Title,
		Description: req.Description,
		Date:        req.Date,
		Location:    req.Location,
		Capacity:    req.Capacity,
		Price:       req.Price,
		ImageURL:    req.ImageURL,
		Visibility:  req.Visibility,
		Status:      req.Status,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, event)
}

type eventUpdateRequest struct {
	Title       string    `json:"title" validate:"omitempty,min=1,max=200"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
	Location    string    `json:"location" validate:"omitempty,max=200"`
	Capacity    int       `json:"capacity" validate:"omitempty,min=1"`
	Price       float64   `json:"price" validate:"omitempty,min=0"`
	ImageURL    string    `json:"image_url" validate:"omitempty,url"`
	Visibility  string    `json:"visibility" validate:"omitempty,oneof=PUBLIC PRIVATE"`
	Status      string    `json:"status" validate:"omitempty,oneof=DRAFT PUBLISHED CANCELLED ARCHIVED"`
}

// Update handles PATCH /v1/events/:id (admin).
func (h *EventHandler) Update(c *gin.Context) {
	var req eventUpdateRequest
	if !bindAndValidate(c, &req) {
		return
	}

	event, err := h.events.Update(requestContext(c), c.Param("id"), services.EventInput{
		Title:       req.Title,
		Description: req.Description,
		Date:        req.Date,
		Location:    req.Location,
		Capacity:    req.Capacity,
		Price:       req.Price,
		ImageURL:    req.ImageURL,
		Visibility:  req.Visibility,
		Status:      req.Status,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, event)
}

// Delete handles DELETE /v1/events/:id (admin); cancellation, not removal.
func (h *EventHandler) Delete(c *gin.Context) {
	if err := h.events.Cancel(requestContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"cancelled": true})
}
