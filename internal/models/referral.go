package models

// DefaultReferralUsageLimit caps how many registrants a single code can approve.
const DefaultReferralUsageLimit = 5

// Referral is a redeemable code tied to one owning campus user. The code is
// created exactly once, alongside its owner, and never deleted; UsageCount is
// mutated only through the ledger's conditional increment.
type Referral struct {
	BaseModel

	Code    string `gorm:"uniqueIndex;not null;size:8" json:"code"`
	OwnerID string `gorm:"type:uuid;not null;index" json:"owner_id"`
	Owner   *User  `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`

	UsageCount int `gorm:"default:0;not null" json:"usage_count"`
	UsageLimit int `gorm:"default:5;not null" json:"usage_limit"`
}

// Remaining reports how many redemptions the code has left.
func (r *Referral) Remaining() int {
	left := r.UsageLimit - r.UsageCount
	if left < 0 {
		return 0
	}
	return left
}

// Exhausted reports whether the code has hit its usage ceiling.
func (r *Referral) Exhausted() bool {
	return r.UsageCount >= r.UsageLimit
}

// ReferralRedemption records that a user was created through a referral.
// At most one row exists per redeeming user.
type ReferralRedemption struct {
	BaseModel

	UserID     string    `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	ReferralID string    `gorm:"type:uuid;not null;index" json:"referral_id"`
	Referral   *Referral `gorm:"foreignKey:ReferralID" json:"referral,omitempty"`
}
