package services

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/cupidworks/valentine-backend/internal/campus"
	"github.com/cupidworks/valentine-backend/internal/models"
	"github.com/cupidworks/valentine-backend/internal/notify"
	apperrors "github.com/cupidworks/valentine-backend/pkg/errors"
	"github.com/cupidworks/valentine-backend/pkg/logger"
	"github.com/cupidworks/valentine-backend/pkg/mail"
	"github.com/cupidworks/valentine-backend/pkg/metrics"
	"github.com/cupidworks/valentine-backend/pkg/validator"
)

// Disposition statuses returned by Register.
const (
	StatusApprovedStudent  = "approved_student"
	StatusApprovedOutsider = "approved_outsider"
	StatusLoginStudent     = "login_student"
	StatusLoginOutsider    = "login_outsider"
	StatusPending          = "pending"
	StatusRejected         = "rejected"
	StatusInvalidReferral  = "invalid_referral"
	StatusError            = "error"
)

// Approval provenance recorded in the audit trail.
const (
	ApprovalTypeCampus   = "campus"
	ApprovalTypeReferral = "referral"
	ApprovalTypeManual   = "manual"
)

// RegistrationInput is a normalised registration submission.
type RegistrationInput struct {
	Name         string
	Email        string
	Phone        string
	ReferralCode string
}

// Disposition is the outcome of one registration attempt.
type Disposition struct {
	Status       string
	Message      string
	ReferralCode *string
	User         *models.User
}

// RegistrationService runs the registration decision flow: returning users log
// in, campus emails auto-approve with a minted referral code, valid referrals
// approve outsiders, and everyone else lands in the manual-review queue.
type RegistrationService struct {
	db         *gorm.DB
	roster     *campus.Roster
	referrals  *ReferralService
	audit      *AuditService
	telegram   *notify.TelegramClient
	mailer     mail.Mailer
	dispatcher *notify.Dispatcher
	log        *zap.Logger
}

// NewRegistrationService wires the decision flow and its side-effect channels.
// telegram and mailer may be disabled; side effects degrade to log lines.
func NewRegistrationService(
	db *gorm.DB,
	roster *campus.Roster,
	referrals *ReferralService,
	audit *AuditService,
	telegram *notify.TelegramClient,
	mailer mail.Mailer,
	dispatcher *notify.Dispatcher,
) *RegistrationService {
	return &RegistrationService{
		db:         db,
		roster:     roster,
		referrals:  referrals,
		audit:      audit,
		telegram:   telegram,
		mailer:     mailer,
		dispatcher: dispatcher,
		log:        logger.WithModule("registration"),
	}
}

// Normalize canonicalises the submission in place: email lowercased and
// trimmed, phone stripped to digits, referral code uppercased.
func (in *RegistrationInput) Normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Phone = validator.NormalizePhone(in.Phone)
	in.ReferralCode = NormalizeCode(in.ReferralCode)
}

// Register runs the full decision flow for one submission. The input must
// already have passed field validation; Normalize is applied here regardless
// so stored identities are always canonical.
func (s *RegistrationService) Register(ctx context.Context, in RegistrationInput) (*Disposition, error) {
	in.Normalize()

	// Returning users short-circuit everything, including referral validation.
	if existing, err := s.findUser(ctx, in.Email, in.Phone); err != nil {
		return nil, err
	} else if existing != nil {
		return s.welcomeBack(existing), nil
	}

	if pending, err := s.findPending(ctx, in.Email, in.Phone); err != nil {
		return nil, err
	} else if pending != nil {
		metrics.Registrations.WithLabelValues(StatusPending).Inc()
		return &Disposition{
			Status:  StatusPending,
			Message: "Your registration is already awaiting approval.",
		}, nil
	}

	if s.roster.Contains(in.Email) {
		return s.approveCampus(ctx, in)
	}

	if in.ReferralCode != "" {
		return s.approveByReferral(ctx, in)
	}

	return s.queueForApproval(ctx, in)
}

func (s *RegistrationService) welcomeBack(user *models.User) *Disposition {
	status := StatusLoginOutsider
	if user.IsCampusAffiliated {
		status = StatusLoginStudent
	}
	metrics.Registrations.WithLabelValues(status).Inc()

	return &Disposition{
		Status:       status,
		Message:      "Welcome back! You are already registered.",
		ReferralCode: user.OwnReferralCode,
		User:         user,
	}
}

// approveCampus mints the registrant's own referral code and creates the
// user and referral rows in one transaction. A mint failure fails the whole
// registration: a campus approval without a code must never exist.
func (s *RegistrationService) approveCampus(ctx context.Context, in RegistrationInput) (*Disposition, error) {
	var user models.User

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		code, err := s.referrals.MintUniqueCode(ctx, tx)
		if err != nil {
			return err
		}

		user = models.User{
			Name:               in.Name,
			Email:              in.Email,
			Phone:              in.Phone,
			IsCampusAffiliated: true,
			OwnReferralCode:    &code,
		}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}

		referral := models.Referral{
			Code:       code,
			OwnerID:    user.ID,
			UsageLimit: models.DefaultReferralUsageLimit,
		}
		return tx.Create(&referral).Error
	})
	if err != nil {
		return nil, s.classifyWriteError(err)
	}

	metrics.Registrations.WithLabelValues(StatusApprovedStudent).Inc()
	s.afterApproval(in, StatusApprovedStudent, ApprovalTypeCampus, *user.OwnReferralCode)

	return &Disposition{
		Status:       StatusApprovedStudent,
		Message:      "You're in! Share your referral code with friends.",
		ReferralCode: user.OwnReferralCode,
		User:         &user,
	}, nil
}

// approveByReferral validates the code, rejects self-referrals, then creates
// the user and consumes one use atomically. Outsiders never receive a code of
// their own.
func (s *RegistrationService) approveByReferral(ctx context.Context, in RegistrationInput) (*Disposition, error) {
	referral, err := s.referrals.Validate(ctx, in.ReferralCode)
	if err != nil {
		if appErr := apperrors.FromError(err); appErr.Code == "INVALID_REFERRAL" {
			metrics.Registrations.WithLabelValues(StatusInvalidReferral).Inc()
			metrics.ReferralRedemptions.WithLabelValues("invalid").Inc()
			return &Disposition{
				Status:  StatusInvalidReferral,
				Message: appErr.Message,
			}, nil
		}
		return nil, err
	}

	if IsSelfReferral(referral, in.Email) {
		metrics.Registrations.WithLabelValues(StatusInvalidReferral).Inc()
		metrics.ReferralRedemptions.WithLabelValues("self").Inc()
		return &Disposition{
			Status:  StatusInvalidReferral,
			Message: apperrors.ErrSelfReferral.Message,
		}, nil
	}

	var user models.User
	var ownerEmail string
	if referral.Owner != nil {
		ownerEmail = referral.Owner.Email
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user = models.User{
			Name:            in.Name,
			Email:           in.Email,
			Phone:           in.Phone,
			WasReferred:     true,
			ReferredByEmail: &ownerEmail,
		}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		return s.referrals.RedeemWithin(ctx, tx, in.ReferralCode, user.ID)
	})
	if err != nil {
		appErr := apperrors.FromError(err)
		if appErr.Code == "INVALID_REFERRAL" {
			// Lost the race on the last remaining use.
			metrics.Registrations.WithLabelValues(StatusInvalidReferral).Inc()
			return &Disposition{
				Status:  StatusInvalidReferral,
				Message: appErr.Message,
			}, nil
		}
		return nil, s.classifyWriteError(err)
	}

	metrics.Registrations.WithLabelValues(StatusApprovedOutsider).Inc()
	s.afterApproval(in, StatusApprovedOutsider, ApprovalTypeReferral, in.ReferralCode)

	return &Disposition{
		Status:  StatusApprovedOutsider,
		Message: "You're in! See you at the event.",
		User:    &user,
	}, nil
}

// queueForApproval records the registrant for manual review and prompts the
// approval chat.
func (s *RegistrationService) queueForApproval(ctx context.Context, in RegistrationInput) (*Disposition, error) {
	pending := models.PendingRegistrant{
		Name:  in.Name,
		Email: in.Email,
		Phone: in.Phone,
	}
	if in.ReferralCode != "" {
		code := in.ReferralCode
		pending.SubmittedReferralCode = &code
	}

	if err := s.db.WithContext(ctx).Create(&pending).Error; err != nil {
		return nil, s.classifyWriteError(err)
	}

	metrics.Registrations.WithLabelValues(StatusPending).Inc()

	if s.audit != nil {
		s.audit.Record(ctx, AuditEntry{
			Name:   in.Name,
			Email:  in.Email,
			Phone:  in.Phone,
			Status: StatusPending,
		})
	}

	if s.telegram.Enabled() && s.dispatcher != nil {
		prompt := notify.ApprovalPrompt{
			Name:      in.Name,
			Email:     in.Email,
			Phone:     in.Phone,
			PendingID: pending.ID,
		}
		s.dispatcher.Go("telegram", func(ctx context.Context) error {
			return s.telegram.SendApprovalRequest(ctx, prompt)
		})
	}

	return &Disposition{
		Status:  StatusPending,
		Message: "Thanks! Your registration is awaiting approval.",
	}, nil
}

// afterApproval fans out the audit record and ticket email for a fresh
// approval. Both are best-effort.
func (s *RegistrationService) afterApproval(in RegistrationInput, status, approvalType, referralCode string) {
	if s.audit != nil {
		s.audit.Record(context.Background(), AuditEntry{
			Name:         in.Name,
			Email:        in.Email,
			Phone:        in.Phone,
			Status:       status,
			ApprovalType: approvalType,
			ReferralCode: referralCode,
		})
	}

	if s.mailer != nil && s.dispatcher != nil {
		details := mail.TicketDetails{
			Name:  in.Name,
			Email: in.Email,
			Phone: in.Phone,
		}
		if approvalType == ApprovalTypeCampus {
			details.ReferralCode = referralCode
		}
		msg := mail.TicketMessage(in.Email, details)
		s.dispatcher.Go("email", func(ctx context.Context) error {
			err := s.mailer.Send(ctx, msg)
			if err == mail.ErrSMTPDisabled {
				return nil
			}
			return err
		})
	}
}

// CheckStatus reports where a previously submitted registration stands:
// approved, pending, or rejected. No trace in either table means the
// registrant was rejected (rejections delete the queue entry), so that case
// is a disposition, not an error.
func (s *RegistrationService) CheckStatus(ctx context.Context, email, phone string) (*Disposition, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	phone = validator.NormalizePhone(phone)

	if user, err := s.findUser(ctx, email, phone); err != nil {
		return nil, err
	} else if user != nil {
		status := StatusApprovedOutsider
		if user.IsCampusAffiliated {
			status = StatusApprovedStudent
		}
		return &Disposition{
			Status:       status,
			Message:      "Your registration is approved.",
			ReferralCode: user.OwnReferralCode,
			User:         user,
		}, nil
	}

	if pending, err := s.findPending(ctx, email, phone); err != nil {
		return nil, err
	} else if pending != nil {
		return &Disposition{
			Status:  StatusPending,
			Message: "Your registration is awaiting approval.",
		}, nil
	}

	return &Disposition{
		Status:  StatusRejected,
		Message: "No registration found for that email or phone.",
	}, nil
}

func (s *RegistrationService) findUser(ctx context.Context, email, phone string) (*models.User, error) {
	query := s.db.WithContext(ctx)
	switch {
	case email != "" && phone != "":
		query = query.Where("email = ? OR phone = ?", email, phone)
	case email != "":
		query = query.Where("email = ?", email)
	case phone != "":
		query = query.Where("phone = ?", phone)
	default:
		return nil, nil
	}

	var user models.User
	if err := query.First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, apperrors.Wrap(err, "failed to look up user")
	}
	return &user, nil
}

func (s *RegistrationService) findPending(ctx context.Context, email, phone string) (*models.PendingRegistrant, error) {
	query := s.db.WithContext(ctx)
	switch {
	case email != "" && phone != "":
		query = query.Where("email = ? OR phone = ?", email, phone)
	case email != "":
		query = query.Where("email = ?", email)
	case phone != "":
		query = query.Where("phone = ?", phone)
	default:
		return nil, nil
	}

	var pending models.PendingRegistrant
	if err := query.First(&pending).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, apperrors.Wrap(err, "failed to look up pending registrant")
	}
	return &pending, nil
}

func (s *RegistrationService) classifyWriteError(err error) error {
	if isUniqueConstraintError(err) {
		return apperrors.ErrDuplicateContact.WithInternal(err)
	}
	if appErr := apperrors.FromError(err); appErr.Code != "INTERNAL_SERVER_ERROR" {
		return appErr
	}
	s.log.Error("registration write failed", zap.Error(err))
	return apperrors.Wrap(err, "registration failed")
}
