package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/cupidworks/valentine-backend/internal/models"
	apperrors "github.com/cupidworks/valentine-backend/pkg/errors"
)

// EventInput carries the mutable fields of an event.
type EventInput struct {
	Title       string
	Description string
	Date        time.Time
	Location    string
	Capacity    int
	Price       float64
	ImageURL    string
	Visibility  string
	Status      string
}

// EventService manages the event catalogue.
type EventService struct {
	db *gorm.DB
}

// NewEventService constructs an EventService.
func NewEventService(db *gorm.DB) *EventService {
	return &EventService{db: db}
}

// Create inserts a new event owned by organizerID.
func (s *EventService) Create(ctx context.Context, organizerID string, in EventInput) (*models.Event, error) {
	if in.Capacity <= 0 {
		return nil, apperrors.NewBadRequest("Capacity must be positive")
	}

	event := models.Event{
		Title:       in.Title,
		Description: in.Description,
		Date:        in.Date,
		Location:    in.Location,
		Capacity:    in.Capacity,
		Price:       in.Price,
		ImageURL:    in.ImageURL,
		Status:      models.EventStatusPublished,
		Visibility:  models.EventVisibilityPublic,
		OrganizerID: organizerID,
	}
	if in.Status != "" {
		event.Status = in.Status
	}
	if in.Visibility != "" {
		event.Visibility = in.Visibility
	}

	if err := s.db.WithContext(ctx).Create(&event).Error; err != nil {
		return nil, apperrors.Wrap(err, "failed to create event")
	}
	return &event, nil
}

// ListUpcoming returns published public events that have not yet happened,
// soonest first.
func (s *EventService) ListUpcoming(ctx context.Context) ([]models.Event, error) {
	var events []models.Event
	err := s.db.WithContext(ctx).
		Where("status = ? AND visibility = ? AND date >= ?",
			models.EventStatusPublished, models.EventVisibilityPublic, time.Now()).
		Order("date asc").
		Find(&events).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list events")
	}
	return events, nil
}

// Get loads one event by id.
func (s *EventService) Get(ctx context.Context, id string) (*models.Event, error) {
	var event models.Event
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&event).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.ErrNotFound.WithMessage("Event not found")
		}
		return nil, apperrors.Wrap(err, "failed to load event")
	}
	return &event, nil
}

// Update applies in to an existing event. Only the organizer or an admin may
// call this; the handler enforces that.
func (s *EventService) Update(ctx context.Context, id string, in EventInput) (*models.Event, error) {
	event, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Capacity > 0 && in.Capacity < event.BookedCount {
		return nil, apperrors.NewBadRequest("Capacity cannot drop below existing bookings")
	}

	updates := map[string]any{}
	if in.Title != "" {
		updates["title"] = in.Title
	}
	if in.Description != "" {
		updates["description"] = in.Description
	}
	if !in.Date.IsZero() {
		updates["date"] = in.Date
	}
	if in.Location != "" {
		updates["location"] = in.Location
	}
	if in.Capacity > 0 {
		updates["capacity"] = in.Capacity
	}
	if in.Price > 0 {
		updates["price"] = in.Price
	}
	if in.ImageURL != "" {
		updates["image_url"] = in.ImageURL
	}
	if in.Status != "" {
		updates["status"] = in.Status
	}
	if in.Visibility != "" {
		updates["visibility"] = in.Visibility
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(event).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(err, "failed to update event")
		}
	}
	return s.Get(ctx, id)
}

// Cancel marks the event cancelled. Existing tickets stay on record.
func (s *EventService) Cancel(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Model(&models.Event{}).
		Where("id = ?", id).
		Update("status", models.EventStatusCancelled)
	if res.Error != nil {
		return apperrors.Wrap(res.Error, "failed to cancel event")
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrNotFound.WithMessage("Event not found")
	}
	return nil
}
