package services

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/cupidworks/valentine-backend/internal/models"
	"github.com/cupidworks/valentine-backend/internal/notify"
	"github.com/cupidworks/valentine-backend/pkg/logger"
)

// AuditEntry is one registration outcome to be recorded.
type AuditEntry struct {
	Name         string
	Email        string
	Phone        string
	Status       string
	ApprovalType string
	ReferralCode string
	Metadata     map[string]any
}

// AuditService mirrors registration outcomes into the local audit_logs table
// and, best-effort, onto the external sheet. The local row is the durable
// record; the sheet append rides the dispatcher and may fail silently.
type AuditService struct {
	db         *gorm.DB
	sheet      *notify.SheetClient
	dispatcher *notify.Dispatcher
	log        *zap.Logger
}

// NewAuditService constructs an AuditService. sheet may be a disabled client.
func NewAuditService(db *gorm.DB, sheet *notify.SheetClient, dispatcher *notify.Dispatcher) *AuditService {
	return &AuditService{
		db:         db,
		sheet:      sheet,
		dispatcher: dispatcher,
		log:        logger.WithModule("audit"),
	}
}

// Record writes the local audit row and schedules the sheet append. A local
// write failure is logged but never fails the registration that triggered it.
func (s *AuditService) Record(ctx context.Context, entry AuditEntry) {
	row := models.AuditLog{
		Name:         entry.Name,
		Email:        entry.Email,
		Phone:        entry.Phone,
		Status:       entry.Status,
		ApprovalType: entry.ApprovalType,
		ReferralCode: entry.ReferralCode,
	}
	if len(entry.Metadata) > 0 {
		if raw, err := json.Marshal(entry.Metadata); err == nil {
			row.Metadata = datatypes.JSON(raw)
		}
	}

	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		s.log.Error("failed to write audit log", zap.String("email", entry.Email), zap.Error(err))
	}

	if s.sheet.Enabled() && s.dispatcher != nil {
		sheetRow := notify.SheetRow{
			Name:         entry.Name,
			Email:        entry.Email,
			Phone:        entry.Phone,
			Status:       entry.Status,
			Timestamp:    time.Now().UTC().Format(time.RFC3339),
			ApprovalType: entry.ApprovalType,
			ReferralCode: entry.ReferralCode,
		}
		s.dispatcher.Go("sheet", func(ctx context.Context) error {
			return s.sheet.Append(ctx, sheetRow)
		})
	}
}
