package services

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/cupidworks/valentine-backend/internal/models"
	"github.com/cupidworks/valentine-backend/pkg/crypto"
	apperrors "github.com/cupidworks/valentine-backend/pkg/errors"
	"github.com/cupidworks/valentine-backend/pkg/metrics"
)

const (
	referralCodeCharset  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	referralCodeLength   = 8
	referralMintAttempts = 10
)

// ReferralService owns the referral ledger: minting owner codes, validating
// submitted codes and atomically accounting redemptions.
type ReferralService struct {
	db *gorm.DB
}

// NewReferralService constructs a ReferralService.
func NewReferralService(db *gorm.DB) *ReferralService {
	return &ReferralService{db: db}
}

// NormalizeCode canonicalises a submitted referral code for lookup.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Validate checks a submitted code without consuming a use. It returns the
// referral with its owner preloaded so callers can run the self-referral
// check, or a typed error describing why the code cannot be redeemed.
func (s *ReferralService) Validate(ctx context.Context, code string) (*models.Referral, error) {
	normalized := NormalizeCode(code)
	if normalized == "" {
		return nil, apperrors.ErrInvalidReferral
	}

	var referral models.Referral
	err := s.db.WithContext(ctx).
		Preload("Owner").
		Where("code = ?", normalized).
		First(&referral).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.ErrInvalidReferral
		}
		return nil, apperrors.Wrap(err, "failed to look up referral code")
	}

	if referral.Exhausted() {
		return nil, apperrors.ErrReferralExhausted
	}
	return &referral, nil
}

// MintUniqueCode draws random 8-character codes until one is free of
// collisions, giving up after a bounded number of attempts.
func (s *ReferralService) MintUniqueCode(ctx context.Context, tx *gorm.DB) (string, error) {
	if tx == nil {
		tx = s.db
	}

	for attempt := 0; attempt < referralMintAttempts; attempt++ {
		code, err := crypto.RandomString(referralCodeCharset, referralCodeLength)
		if err != nil {
			return "", apperrors.ErrCodeGenerationFailed.WithInternal(err)
		}

		var count int64
		if err := tx.WithContext(ctx).Model(&models.Referral{}).
			Where("code = ?", code).
			Count(&count).Error; err != nil {
			return "", apperrors.Wrap(err, "failed to check referral code uniqueness")
		}
		if count == 0 {
			return code, nil
		}
	}

	return "", apperrors.ErrCodeGenerationFailed
}

// RedeemWithin consumes one use of the referral inside the caller's
// transaction. The conditional UPDATE is the sole mutation path for
// UsageCount; zero affected rows means the code was exhausted by a
// concurrent redemption and the whole transaction must fail.
func (s *ReferralService) RedeemWithin(ctx context.Context, tx *gorm.DB, code string, redeemingUserID string) error {
	normalized := NormalizeCode(code)

	res := tx.WithContext(ctx).Model(&models.Referral{}).
		Where("code = ? AND usage_count < usage_limit", normalized).
		Update("usage_count", gorm.Expr("usage_count + 1"))
	if res.Error != nil {
		metrics.ReferralRedemptions.WithLabelValues("error").Inc()
		return apperrors.Wrap(res.Error, "failed to redeem referral code")
	}
	if res.RowsAffected == 0 {
		metrics.ReferralRedemptions.WithLabelValues("exhausted").Inc()
		return apperrors.ErrReferralExhausted
	}

	var referral models.Referral
	if err := tx.WithContext(ctx).Where("code = ?", normalized).First(&referral).Error; err != nil {
		return apperrors.Wrap(err, "failed to load redeemed referral")
	}

	redemption := models.ReferralRedemption{
		UserID:     redeemingUserID,
		ReferralID: referral.ID,
	}
	if err := tx.WithContext(ctx).Create(&redemption).Error; err != nil {
		return apperrors.Wrap(err, "failed to record referral redemption")
	}

	metrics.ReferralRedemptions.WithLabelValues("success").Inc()
	return nil
}

// IsSelfReferral reports whether the registrant is redeeming their own code.
// Matching is by owner email, case-insensitive.
func IsSelfReferral(referral *models.Referral, registrantEmail string) bool {
	if referral == nil || referral.Owner == nil {
		return false
	}
	return strings.EqualFold(referral.Owner.Email, strings.TrimSpace(registrantEmail))
}

// Stats returns the remaining uses for a code, for the public verify surface.
func (s *ReferralService) Stats(ctx context.Context, code string) (*models.Referral, error) {
	return s.Validate(ctx, code)
}
