package services

import (
	"context"
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/cupidworks/valentine-backend/internal/campus"
	"github.com/cupidworks/valentine-backend/internal/models"
)

func seedPending(t *testing.T, db *gorm.DB, email string, campusSnapshot bool, submittedCode *string) *models.PendingRegistrant {
	t.Helper()
	pending := models.PendingRegistrant{
		Name:                  "Pending Person",
		Email:                 email,
		Phone:                 "555" + email[:7],
		IsCampusAffiliated:    campusSnapshot,
		SubmittedReferralCode: submittedCode,
	}
	require.NoError(t, db.Create(&pending).Error)
	return &pending
}

func TestApprovePromotesOutsiderWithoutCode(t *testing.T) {
	db := newTestDB(t)
	svc := newTestApprovalService(t, db, campus.NewRosterFromEmails())

	pending := seedPending(t, db, "outsider@example.com", false, nil)

	res, err := svc.Approve(context.Background(), pending.ID)
	require.NoError(t, err)
	require.Equal(t, "approved", res.Result)
	require.Nil(t, res.ReferralCode)

	var user models.User
	require.NoError(t, db.Where("email = ?", "outsider@example.com").First(&user).Error)
	require.False(t, user.IsCampusAffiliated)
	require.Nil(t, user.OwnReferralCode)

	var remaining int64
	require.NoError(t, db.Model(&models.PendingRegistrant{}).Count(&remaining).Error)
	require.EqualValues(t, 0, remaining)
}

func TestApproveCampusSnapshotMintsCode(t *testing.T) {
	db := newTestDB(t)
	svc := newTestApprovalService(t, db, campus.NewRosterFromEmails())

	pending := seedPending(t, db, "student@campus.edu", true, nil)

	res, err := svc.Approve(context.Background(), pending.ID)
	require.NoError(t, err)
	require.Equal(t, "approved", res.Result)
	require.NotNil(t, res.ReferralCode)
	require.Regexp(t, regexp.MustCompile(`^[A-Z0-9]{8}$`), *res.ReferralCode)

	var user models.User
	require.NoError(t, db.Where("email = ?", "student@campus.edu").First(&user).Error)
	require.True(t, user.IsCampusAffiliated)
	require.Equal(t, *res.ReferralCode, *user.OwnReferralCode)

	var referral models.Referral
	require.NoError(t, db.Where("code = ?", *res.ReferralCode).First(&referral).Error)
	require.Equal(t, user.ID, referral.OwnerID)
	require.Equal(t, 0, referral.UsageCount)
}

func TestApproveRechecksLiveRoster(t *testing.T) {
	db := newTestDB(t)
	// Snapshot said outsider, but the roster gained the email before approval.
	svc := newTestApprovalService(t, db, campus.NewRosterFromEmails("late@campus.edu"))

	pending := seedPending(t, db, "late@campus.edu", false, nil)

	res, err := svc.Approve(context.Background(), pending.ID)
	require.NoError(t, err)
	require.NotNil(t, res.ReferralCode)
}

func TestApproveNeverConsumesSubmittedCode(t *testing.T) {
	db := newTestDB(t)
	svc := newTestApprovalService(t, db, campus.NewRosterFromEmails())

	seedReferralOwner(t, db, "KEEP0000", 2)
	code := "KEEP0000"
	pending := seedPending(t, db, "friend@example.com", false, &code)

	res, err := svc.Approve(context.Background(), pending.ID)
	require.NoError(t, err)
	require.Equal(t, "approved", res.Result)

	// The submitted code is provenance only; usage stays untouched.
	var referral models.Referral
	require.NoError(t, db.Where("code = ?", "KEEP0000").First(&referral).Error)
	require.Equal(t, 2, referral.UsageCount)

	var user models.User
	require.NoError(t, db.Where("email = ?", "friend@example.com").First(&user).Error)
	require.True(t, user.WasReferred)
	require.NotNil(t, user.ReferredByEmail)
	require.Equal(t, "owner+KEEP0000@campus.edu", *user.ReferredByEmail)

	var redemptions int64
	require.NoError(t, db.Model(&models.ReferralRedemption{}).Count(&redemptions).Error)
	require.EqualValues(t, 0, redemptions)
}

func TestApproveKeepsUnknownSubmittedCodeAsProvenance(t *testing.T) {
	db := newTestDB(t)
	svc := newTestApprovalService(t, db, campus.NewRosterFromEmails())

	code := "GHOST123"
	pending := seedPending(t, db, "mystery@example.com", false, &code)

	res, err := svc.Approve(context.Background(), pending.ID)
	require.NoError(t, err)
	require.Equal(t, "approved", res.Result)

	// The code never resolved to an owner; the raw code is still recorded.
	var user models.User
	require.NoError(t, db.Where("email = ?", "mystery@example.com").First(&user).Error)
	require.True(t, user.WasReferred)
	require.NotNil(t, user.ReferredByEmail)
	require.Equal(t, "GHOST123", *user.ReferredByEmail)
}

func TestApproveIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	svc := newTestApprovalService(t, db, campus.NewRosterFromEmails())

	pending := seedPending(t, db, "once@example.com", false, nil)

	first, err := svc.Approve(context.Background(), pending.ID)
	require.NoError(t, err)
	require.Equal(t, "approved", first.Result)

	second, err := svc.Approve(context.Background(), pending.ID)
	require.NoError(t, err)
	require.Equal(t, "already_resolved", second.Result)

	var users int64
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	require.EqualValues(t, 1, users)
}

func TestRejectDeletesPendingAndIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	svc := newTestApprovalService(t, db, campus.NewRosterFromEmails())

	pending := seedPending(t, db, "nope@example.com", false, nil)

	res, err := svc.Reject(context.Background(), pending.ID)
	require.NoError(t, err)
	require.Equal(t, "rejected", res.Result)

	var users int64
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	require.EqualValues(t, 0, users)

	again, err := svc.Reject(context.Background(), pending.ID)
	require.NoError(t, err)
	require.Equal(t, "already_resolved", again.Result)
}

func TestApproveResolvesQueueWhenUserAlreadyExists(t *testing.T) {
	db := newTestDB(t)
	svc := newTestApprovalService(t, db, campus.NewRosterFromEmails())

	pending := seedPending(t, db, "raced@example.com", false, nil)

	// The same contact registered successfully while the decision was open.
	require.NoError(t, db.Create(&models.User{
		Name: "Raced", Email: "raced@example.com", Phone: pending.Phone,
	}).Error)

	res, err := svc.Approve(context.Background(), pending.ID)
	require.NoError(t, err)
	require.Equal(t, "already_resolved", res.Result)

	var remaining int64
	require.NoError(t, db.Model(&models.PendingRegistrant{}).Count(&remaining).Error)
	require.EqualValues(t, 0, remaining)
}
