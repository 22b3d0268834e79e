package services

import (
	"context"
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/cupidworks/valentine-backend/internal/models"
	apperrors "github.com/cupidworks/valentine-backend/pkg/errors"
)

func seedReferralOwner(t *testing.T, db *gorm.DB, code string, usageCount int) *models.User {
	t.Helper()
	owner := models.User{
		Name:               "Owner",
		Email:              "owner+" + code + "@campus.edu",
		Phone:              "555000" + code[:4],
		IsCampusAffiliated: true,
		OwnReferralCode:    &code,
	}
	require.NoError(t, db.Create(&owner).Error)
	require.NoError(t, db.Create(&models.Referral{
		Code:       code,
		OwnerID:    owner.ID,
		UsageCount: usageCount,
		UsageLimit: models.DefaultReferralUsageLimit,
	}).Error)
	return &owner
}

func TestValidateAcceptsLiveCodeCaseInsensitively(t *testing.T) {
	db := newTestDB(t)
	seedReferralOwner(t, db, "AB12CD34", 0)

	svc := NewReferralService(db)
	referral, err := svc.Validate(context.Background(), "  ab12cd34 ")
	require.NoError(t, err)
	require.Equal(t, "AB12CD34", referral.Code)
	require.NotNil(t, referral.Owner)
	require.Equal(t, models.DefaultReferralUsageLimit, referral.Remaining())
}

func TestValidateRejectsUnknownAndExhaustedCodes(t *testing.T) {
	db := newTestDB(t)
	seedReferralOwner(t, db, "FULL0000", models.DefaultReferralUsageLimit)

	svc := NewReferralService(db)

	_, err := svc.Validate(context.Background(), "NOPE1234")
	require.ErrorIs(t, err, apperrors.ErrInvalidReferral)

	_, err = svc.Validate(context.Background(), "FULL0000")
	require.ErrorIs(t, err, apperrors.ErrReferralExhausted)

	_, err = svc.Validate(context.Background(), "")
	require.ErrorIs(t, err, apperrors.ErrInvalidReferral)
}

func TestMintUniqueCodeShapeAndUniqueness(t *testing.T) {
	db := newTestDB(t)
	svc := NewReferralService(db)

	pattern := regexp.MustCompile(`^[A-Z0-9]{8}$`)
	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		code, err := svc.MintUniqueCode(context.Background(), nil)
		require.NoError(t, err)
		require.Regexp(t, pattern, code)
		require.False(t, seen[code])
		seen[code] = true
	}
}

func TestRedeemWithinStopsAtUsageLimit(t *testing.T) {
	db := newTestDB(t)
	seedReferralOwner(t, db, "LIMIT001", models.DefaultReferralUsageLimit-1)

	svc := NewReferralService(db)

	// Last remaining use succeeds.
	user := models.User{Name: "Guest", Email: "guest@example.com", Phone: "5551112222", WasReferred: true}
	require.NoError(t, db.Create(&user).Error)
	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		return svc.RedeemWithin(context.Background(), tx, "LIMIT001", user.ID)
	}))

	var referral models.Referral
	require.NoError(t, db.Where("code = ?", "LIMIT001").First(&referral).Error)
	require.Equal(t, models.DefaultReferralUsageLimit, referral.UsageCount)

	var redemptions int64
	require.NoError(t, db.Model(&models.ReferralRedemption{}).
		Where("referral_id = ?", referral.ID).Count(&redemptions).Error)
	require.EqualValues(t, 1, redemptions)

	// One past the limit fails and rolls back.
	another := models.User{Name: "Late", Email: "late@example.com", Phone: "5553334444"}
	require.NoError(t, db.Create(&another).Error)
	err := db.Transaction(func(tx *gorm.DB) error {
		return svc.RedeemWithin(context.Background(), tx, "LIMIT001", another.ID)
	})
	require.ErrorIs(t, err, apperrors.ErrReferralExhausted)

	require.NoError(t, db.Where("code = ?", "LIMIT001").First(&referral).Error)
	require.Equal(t, models.DefaultReferralUsageLimit, referral.UsageCount)
}

func TestIsSelfReferralMatchesOwnerEmailCaseInsensitively(t *testing.T) {
	code := "SELF0001"
	referral := &models.Referral{
		Code:  code,
		Owner: &models.User{Email: "owner@campus.edu"},
	}

	require.True(t, IsSelfReferral(referral, "Owner@Campus.EDU"))
	require.True(t, IsSelfReferral(referral, "  owner@campus.edu "))
	require.False(t, IsSelfReferral(referral, "friend@example.com"))
	require.False(t, IsSelfReferral(nil, "owner@campus.edu"))
}
