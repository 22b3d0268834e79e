package models

import "time"

// Role values assignable to a User.
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// User is an approved registrant. Rows are created the moment a registration
// is approved (automatically or manually) and are never deleted; the only
// later mutations are the referral-code backfill and role promotion.
type User struct {
	BaseModel

	Name  string `gorm:"not null" json:"name"`
	Email string `gorm:"uniqueIndex;not null" json:"email"`
	Phone string `gorm:"uniqueIndex;not null" json:"phone"`

	// Password is set only for accounts created through the v1 auth surface;
	// users minted by the registration decision flow have no credential.
	Password string `json:"-"`

	IsCampusAffiliated bool    `gorm:"default:false" json:"is_campus_affiliated"`
	WasReferred        bool    `gorm:"default:false" json:"was_referred"`
	ReferredByEmail    *string `json:"referred_by_email,omitempty"`

	// OwnReferralCode is non-nil iff the user is campus affiliated; outsiders
	// never mint codes.
	OwnReferralCode *string `gorm:"uniqueIndex" json:"own_referral_code,omitempty"`

	Role string `gorm:"default:USER;not null" json:"role"`
}

// PendingRegistrant is a registrant awaiting a manual decision. A given
// email appears in at most one of users / pending_registrants; the row is
// deleted the moment it is resolved.
type PendingRegistrant struct {
	BaseModel

	Name  string `gorm:"not null" json:"name"`
	Email string `gorm:"uniqueIndex;not null" json:"email"`
	Phone string `gorm:"uniqueIndex;not null" json:"phone"`

	SubmittedReferralCode *string `json:"submitted_referral_code,omitempty"`
	IsCampusAffiliated    bool    `gorm:"default:false" json:"is_campus_affiliated"`

	// LastRemindedAt throttles the approval-channel reminder sweeper.
	LastRemindedAt *time.Time `json:"-"`
}
