package services

import (
	"context"
	"fmt"

	"github.com/skip2/go-qrcode"
	"gorm.io/gorm"

	"github.com/cupidworks/valentine-backend/internal/models"
	"github.com/cupidworks/valentine-backend/pkg/crypto"
	apperrors "github.com/cupidworks/valentine-backend/pkg/errors"
)

// RSVP outcomes.
const (
	RSVPConfirmed  = "confirmed"
	RSVPWaitlisted = "waitlisted"
)

// ErrAlreadyBooked is returned when a user holds a live ticket for the event.
var ErrAlreadyBooked = apperrors.New("ALREADY_BOOKED", "You already have a ticket for this event", 400)

// RSVPResult is the outcome of a booking attempt.
type RSVPResult struct {
	Outcome string
	Ticket  *models.Ticket
}

// TicketService books seats against event capacity. Capacity accounting uses
// the same conditional-update pattern as the referral ledger: the booked
// count only advances while seats remain, and a full event sends the
// registrant to the waitlist instead of failing.
type TicketService struct {
	db *gorm.DB
}

// NewTicketService constructs a TicketService.
func NewTicketService(db *gorm.DB) *TicketService {
	return &TicketService{db: db}
}

// RSVP books userID onto the event, or waitlists them when it is full.
func (s *TicketService) RSVP(ctx context.Context, userID, eventID string) (*RSVPResult, error) {
	var event models.Event
	if err := s.db.WithContext(ctx).Where("id = ?", eventID).First(&event).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.ErrNotFound.WithMessage("Event not found")
		}
		return nil, apperrors.Wrap(err, "failed to load event")
	}
	if event.Status != models.EventStatusPublished {
		return nil, apperrors.NewBadRequest("Event is not open for booking")
	}

	var existing models.Ticket
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND event_id = ? AND status = ?", userID, eventID, models.TicketStatusConfirmed).
		First(&existing).Error
	if err == nil {
		return nil, ErrAlreadyBooked
	}
	if err != gorm.ErrRecordNotFound {
		return nil, apperrors.Wrap(err, "failed to check existing ticket")
	}

	var ticket models.Ticket
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Event{}).
			Where("id = ? AND booked_count < capacity", eventID).
			Update("booked_count", gorm.Expr("booked_count + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errEventFull
		}

		ref, err := crypto.GenerateToken(16)
		if err != nil {
			return err
		}

		ticket = models.Ticket{
			UserID:      userID,
			EventID:     eventID,
			Status:      models.TicketStatusConfirmed,
			QRReference: fmt.Sprintf("vt:%s", ref),
		}
		return tx.Create(&ticket).Error
	})
	if txErr == errEventFull {
		if err := s.joinWaitlist(ctx, userID, eventID); err != nil {
			return nil, err
		}
		return &RSVPResult{Outcome: RSVPWaitlisted}, nil
	}
	if txErr != nil {
		if isUniqueConstraintError(txErr) {
			return nil, ErrAlreadyBooked
		}
		return nil, apperrors.Wrap(txErr, "failed to book ticket")
	}

	return &RSVPResult{Outcome: RSVPConfirmed, Ticket: &ticket}, nil
}

var errEventFull = fmt.Errorf("event full")

func (s *TicketService) joinWaitlist(ctx context.Context, userID, eventID string) error {
	entry := models.WaitlistEntry{UserID: userID, EventID: eventID}
	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil
		}
		return apperrors.Wrap(err, "failed to join waitlist")
	}
	return nil
}

// ListMine returns the user's tickets with their events preloaded.
func (s *TicketService) ListMine(ctx context.Context, userID string) ([]models.Ticket, error) {
	var tickets []models.Ticket
	err := s.db.WithContext(ctx).
		Preload("Event").
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&tickets).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list tickets")
	}
	return tickets, nil
}

// Cancel voids the user's own ticket and releases the seat to the next
// waitlisted user, if any.
func (s *TicketService) Cancel(ctx context.Context, userID, ticketID string) error {
	var ticket models.Ticket
	err := s.db.WithContext(ctx).Where("id = ?", ticketID).First(&ticket).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return apperrors.ErrNotFound.WithMessage("Ticket not found")
		}
		return apperrors.Wrap(err, "failed to load ticket")
	}
	if ticket.UserID != userID {
		return apperrors.ErrForbidden
	}
	if ticket.Status == models.TicketStatusCancelled {
		return nil
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Ticket{}).
			Where("id = ?", ticket.ID).
			Update("status", models.TicketStatusCancelled).Error; err != nil {
			return err
		}

		var next models.WaitlistEntry
		err := tx.Where("event_id = ?", ticket.EventID).
			Order("created_at asc").
			First(&next).Error
		if err == gorm.ErrRecordNotFound {
			// Nobody waiting, release the seat.
			return tx.Model(&models.Event{}).
				Where("id = ? AND booked_count > 0", ticket.EventID).
				Update("booked_count", gorm.Expr("booked_count - 1")).Error
		}
		if err != nil {
			return err
		}

		ref, err := crypto.GenerateToken(16)
		if err != nil {
			return err
		}
		promoted := models.Ticket{
			UserID:      next.UserID,
			EventID:     ticket.EventID,
			Status:      models.TicketStatusConfirmed,
			QRReference: fmt.Sprintf("vt:%s", ref),
		}
		if err := tx.Create(&promoted).Error; err != nil {
			return err
		}
		return tx.Delete(&models.WaitlistEntry{}, "id = ?", next.ID).Error
	})
}

// QRPNG renders the ticket's QR payload as a PNG, enforcing ownership.
func (s *TicketService) QRPNG(ctx context.Context, userID, ticketID string, size int) ([]byte, error) {
	var ticket models.Ticket
	err := s.db.WithContext(ctx).Where("id = ?", ticketID).First(&ticket).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.ErrNotFound.WithMessage("Ticket not found")
		}
		return nil, apperrors.Wrap(err, "failed to load ticket")
	}
	if ticket.UserID != userID {
		return nil, apperrors.ErrForbidden
	}
	if ticket.Status != models.TicketStatusConfirmed {
		return nil, apperrors.NewBadRequest("Ticket is not active")
	}

	if size <= 0 {
		size = 256
	}
	png, err := qrcode.Encode(ticket.QRReference, qrcode.Medium, size)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to render QR code")
	}
	return png, nil
}
