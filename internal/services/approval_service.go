package services

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/cupidworks/valentine-backend/internal/campus"
	"github.com/cupidworks/valentine-backend/internal/models"
	"github.com/cupidworks/valentine-backend/internal/notify"
	apperrors "github.com/cupidworks/valentine-backend/pkg/errors"
	"github.com/cupidworks/valentine-backend/pkg/logger"
	"github.com/cupidworks/valentine-backend/pkg/mail"
	"github.com/cupidworks/valentine-backend/pkg/metrics"
)

// Resolution is the outcome of a manual approval decision.
type Resolution struct {
	Result       string // approved | rejected | already_resolved
	Name         string
	Email        string
	ReferralCode *string
}

// ApprovalService resolves pending registrants. Decisions are idempotent:
// resolving an already-resolved registrant is a no-op, not an error, because
// approval buttons get pressed twice.
type ApprovalService struct {
	db         *gorm.DB
	referrals  *ReferralService
	roster     *campus.Roster
	audit      *AuditService
	mailer     mail.Mailer
	dispatcher *notify.Dispatcher
	log        *zap.Logger
}

// NewApprovalService constructs an ApprovalService.
func NewApprovalService(
	db *gorm.DB,
	referrals *ReferralService,
	roster *campus.Roster,
	audit *AuditService,
	mailer mail.Mailer,
	dispatcher *notify.Dispatcher,
) *ApprovalService {
	return &ApprovalService{
		db:         db,
		referrals:  referrals,
		roster:     roster,
		audit:      audit,
		mailer:     mailer,
		dispatcher: dispatcher,
		log:        logger.WithModule("approval"),
	}
}

// Approve promotes a pending registrant to a full user. Campus-affiliated
// registrants (judged against the roster snapshot taken at submission time,
// re-checked against the live roster) get a referral code minted in the same
// transaction. A referral code submitted with the original registration is
// kept as provenance only; manual approval never consumes a use.
func (s *ApprovalService) Approve(ctx context.Context, pendingID string) (*Resolution, error) {
	var pending models.PendingRegistrant
	err := s.db.WithContext(ctx).Where("id = ?", pendingID).First(&pending).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			metrics.ApprovalResolutions.WithLabelValues("already_resolved").Inc()
			return &Resolution{Result: "already_resolved"}, nil
		}
		return nil, apperrors.Wrap(err, "failed to load pending registrant")
	}

	isCampus := pending.IsCampusAffiliated || s.roster.Contains(pending.Email)

	var user models.User
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user = models.User{
			Name:               pending.Name,
			Email:              pending.Email,
			Phone:              pending.Phone,
			IsCampusAffiliated: isCampus,
		}
		if pending.SubmittedReferralCode != nil {
			user.WasReferred = true
			provenance := referralProvenance(tx, *pending.SubmittedReferralCode)
			user.ReferredByEmail = &provenance
		}

		if isCampus {
			code, err := s.referrals.MintUniqueCode(ctx, tx)
			if err != nil {
				return err
			}
			user.OwnReferralCode = &code
		}

		if err := tx.Create(&user).Error; err != nil {
			return err
		}

		if user.OwnReferralCode != nil {
			referral := models.Referral{
				Code:       *user.OwnReferralCode,
				OwnerID:    user.ID,
				UsageLimit: models.DefaultReferralUsageLimit,
			}
			if err := tx.Create(&referral).Error; err != nil {
				return err
			}
		}

		return tx.Delete(&models.PendingRegistrant{}, "id = ?", pending.ID).Error
	})
	if err != nil {
		if isUniqueConstraintError(err) {
			// Someone registered the same contact while the decision was open.
			// Resolve the queue entry; the user row already exists.
			_ = s.db.WithContext(ctx).Delete(&models.PendingRegistrant{}, "id = ?", pending.ID).Error
			metrics.ApprovalResolutions.WithLabelValues("already_resolved").Inc()
			return &Resolution{Result: "already_resolved", Name: pending.Name, Email: pending.Email}, nil
		}
		return nil, apperrors.FromError(err)
	}

	metrics.ApprovalResolutions.WithLabelValues("approved").Inc()
	s.log.Info("pending registrant approved",
		zap.String("email", pending.Email),
		zap.Bool("campus", isCampus),
	)

	s.afterResolution(&user)

	return &Resolution{
		Result:       "approved",
		Name:         user.Name,
		Email:        user.Email,
		ReferralCode: user.OwnReferralCode,
	}, nil
}

// Reject removes a pending registrant. Idempotent like Approve.
func (s *ApprovalService) Reject(ctx context.Context, pendingID string) (*Resolution, error) {
	var pending models.PendingRegistrant
	err := s.db.WithContext(ctx).Where("id = ?", pendingID).First(&pending).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			metrics.ApprovalResolutions.WithLabelValues("already_resolved").Inc()
			return &Resolution{Result: "already_resolved"}, nil
		}
		return nil, apperrors.Wrap(err, "failed to load pending registrant")
	}

	if err := s.db.WithContext(ctx).Delete(&models.PendingRegistrant{}, "id = ?", pending.ID).Error; err != nil {
		return nil, apperrors.Wrap(err, "failed to reject pending registrant")
	}

	metrics.ApprovalResolutions.WithLabelValues("rejected").Inc()
	s.log.Info("pending registrant rejected", zap.String("email", pending.Email))

	if s.audit != nil {
		s.audit.Record(ctx, AuditEntry{
			Name:         pending.Name,
			Email:        pending.Email,
			Phone:        pending.Phone,
			Status:       "rejected",
			ApprovalType: ApprovalTypeManual,
		})
	}

	return &Resolution{Result: "rejected", Name: pending.Name, Email: pending.Email}, nil
}

// referralProvenance resolves a submitted code to its owner's email for the
// promoted user's record. Unknown codes (the reason the registrant landed in
// the queue) fall back to the raw code so the provenance is never lost.
func referralProvenance(tx *gorm.DB, code string) string {
	var referral models.Referral
	err := tx.Preload("Owner").Where("code = ?", NormalizeCode(code)).First(&referral).Error
	if err == nil && referral.Owner != nil {
		return referral.Owner.Email
	}
	return NormalizeCode(code)
}

func (s *ApprovalService) afterResolution(user *models.User) {
	status := StatusApprovedOutsider
	if user.IsCampusAffiliated {
		status = StatusApprovedStudent
	}

	code := ""
	if user.OwnReferralCode != nil {
		code = *user.OwnReferralCode
	}

	if s.audit != nil {
		s.audit.Record(context.Background(), AuditEntry{
			Name:         user.Name,
			Email:        user.Email,
			Phone:        user.Phone,
			Status:       status,
			ApprovalType: ApprovalTypeManual,
			ReferralCode: code,
		})
	}

	if s.mailer != nil && s.dispatcher != nil {
		msg := mail.TicketMessage(user.Email, mail.TicketDetails{
			Name:         user.Name,
			Email:        user.Email,
			Phone:        user.Phone,
			ReferralCode: code,
		})
		s.dispatcher.Go("email", func(ctx context.Context) error {
			err := s.mailer.Send(ctx, msg)
			if err == mail.ErrSMTPDisabled {
				return nil
			}
			return err
		})
	}
}
