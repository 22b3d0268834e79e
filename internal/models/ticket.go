package models

// Ticket states.
const (
	TicketStatusConfirmed = "CONFIRMED"
	TicketStatusCancelled = "CANCELLED"
)

// Ticket is one user's confirmed RSVP to an event.
type Ticket struct {
	BaseModel

	UserID  string `gorm:"type:uuid;not null;uniqueIndex:idx_ticket_user_event" json:"user_id"`
	EventID string `gorm:"type:uuid;not null;uniqueIndex:idx_ticket_user_event" json:"event_id"`
	Event   *Event `gorm:"foreignKey:EventID" json:"event,omitempty"`

	Status string `gorm:"default:CONFIRMED;not null" json:"status"`

	// QRReference is the opaque payload encoded into the ticket's QR image.
	QRReference string `gorm:"not null" json:"qr_reference"`
}

// WaitlistEntry queues a user for a full event.
type WaitlistEntry struct {
	BaseModel

	UserID  string `gorm:"type:uuid;not null;uniqueIndex:idx_waitlist_user_event" json:"user_id"`
	EventID string `gorm:"type:uuid;not null;uniqueIndex:idx_waitlist_user_event" json:"event_id"`
}
