package models

import "time"

// Event lifecycle states.
const (
	EventStatusDraft     = "DRAFT"
	EventStatusPublished = "PUBLISHED"
	EventStatusCancelled = "CANCELLED"
	EventStatusArchived  = "ARCHIVED"
)

// Event visibility.
const (
	EventVisibilityPublic  = "PUBLIC"
	EventVisibilityPrivate = "PRIVATE"
)

// Event is a bookable happening with a fixed capacity. BookedCount is only
// ever advanced through the ticket service's conditional update so it can
// never exceed Capacity.
type Event struct {
	BaseModel

	Title       string    `gorm:"not null" json:"title"`
	Description string    `gorm:"not null" json:"description"`
	Date        time.Time `gorm:"index;not null" json:"date"`
	Location    string    `gorm:"not null" json:"location"`

	Capacity    int     `gorm:"not null" json:"capacity"`
	BookedCount int     `gorm:"default:0;not null" json:"booked_count"`
	Price       float64 `gorm:"default:0" json:"price"`
	ImageURL    string  `json:"image_url"`

	Status     string `gorm:"default:PUBLISHED;not null;index" json:"status"`
	Visibility string `gorm:"default:PUBLIC;not null" json:"visibility"`

	OrganizerID string `gorm:"type:uuid;index" json:"organizer_id"`
	Organizer   *User  `gorm:"foreignKey:OrganizerID" json:"-"`
}
