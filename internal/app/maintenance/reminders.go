package maintenance

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/cupidworks/valentine-backend/internal/models"
	"github.com/cupidworks/valentine-backend/internal/notify"
	"github.com/cupidworks/valentine-backend/pkg/logger"
)

const (
	defaultSchedule = "0 */6 * * *"
	defaultMinAge   = 12 * time.Hour
)

// ReminderSweeper re-prompts the approval channel for pending registrants
// that have sat unresolved. Each registrant is reminded at most once per
// minAge interval, tracked through last_reminded_at.
type ReminderSweeper struct {
	db       *gorm.DB
	telegram *notify.TelegramClient
	cron     *cron.Cron
	now      func() time.Time
	log      *zap.Logger

	schedule string
	minAge   time.Duration
}

// Option customises the ReminderSweeper.
type Option func(*ReminderSweeper)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(s *ReminderSweeper) {
		if c != nil {
			s.cron = c
		}
	}
}

// WithNow overrides the clock used for age comparisons.
func WithNow(now func() time.Time) Option {
	return func(s *ReminderSweeper) {
		if now != nil {
			s.now = now
		}
	}
}

// WithSchedule overrides the cron specification.
func WithSchedule(spec string) Option {
	return func(s *ReminderSweeper) {
		if spec != "" {
			s.schedule = spec
		}
	}
}

// WithMinAge overrides how old a pending registration must be before the
// first reminder, and the spacing between subsequent ones.
func WithMinAge(age time.Duration) Option {
	return func(s *ReminderSweeper) {
		if age > 0 {
			s.minAge = age
		}
	}
}

// NewReminderSweeper constructs a ReminderSweeper.
func NewReminderSweeper(db *gorm.DB, telegram *notify.TelegramClient, opts ...Option) *ReminderSweeper {
	s := &ReminderSweeper{
		db:       db,
		telegram: telegram,
		cron:     cron.New(),
		now:      time.Now,
		log:      logger.WithModule("maintenance"),
		schedule: defaultSchedule,
		minAge:   defaultMinAge,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start registers the sweep on the cron schedule and starts the scheduler.
func (s *ReminderSweeper) Start() error {
	_, err := s.cron.AddFunc(s.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := s.RunOnce(ctx); err != nil {
			s.log.Warn("reminder sweep finished with errors", zap.Error(err))
		}
	})
	if err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

// Stop halts the scheduler and waits for a running sweep to finish.
func (s *ReminderSweeper) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// RunOnce sweeps the pending queue a single time. All due registrants are
// attempted; per-registrant failures are combined rather than aborting the
// sweep.
func (s *ReminderSweeper) RunOnce(ctx context.Context) error {
	if !s.telegram.Enabled() {
		return nil
	}

	cutoff := s.now().Add(-s.minAge)

	var due []models.PendingRegistrant
	err := s.db.WithContext(ctx).
		Where("created_at < ? AND (last_reminded_at IS NULL OR last_reminded_at < ?)", cutoff, cutoff).
		Order("created_at asc").
		Find(&due).Error
	if err != nil {
		return err
	}
	if len(due) == 0 {
		return nil
	}

	s.log.Info("sending pending-approval reminders", zap.Int("count", len(due)))

	var errs error
	for _, pending := range due {
		sendErr := s.telegram.SendApprovalRequest(ctx, notify.ApprovalPrompt{
			Name:      pending.Name,
			Email:     pending.Email,
			Phone:     pending.Phone,
			PendingID: pending.ID,
			Reminder:  true,
		})
		if sendErr != nil {
			errs = multierr.Append(errs, sendErr)
			continue
		}

		now := s.now()
		if err := s.db.WithContext(ctx).Model(&models.PendingRegistrant{}).
			Where("id = ?", pending.ID).
			Update("last_reminded_at", now).Error; err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}
