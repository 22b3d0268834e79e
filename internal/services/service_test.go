package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/cupidworks/valentine-backend/internal/campus"
	"github.com/cupidworks/valentine-backend/internal/database"
	"github.com/cupidworks/valentine-backend/internal/notify"
	"github.com/cupidworks/valentine-backend/pkg/logger"
)

func TestMain(m *testing.M) {
	_ = logger.Init("error", "console")
	m.Run()
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(database.Config{Driver: "sqlite", Path: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	return db
}

// newTestRegistrationService wires a registration service with disabled
// outbound channels so tests exercise the decision flow in isolation.
func newTestRegistrationService(t *testing.T, db *gorm.DB, roster *campus.Roster) (*RegistrationService, *notify.Dispatcher) {
	t.Helper()
	dispatcher := notify.NewDispatcher(time.Second)
	t.Cleanup(func() { _ = dispatcher.Close() })

	referrals := NewReferralService(db)
	audit := NewAuditService(db, notify.NewSheetClient(notify.SheetConfig{}), dispatcher)
	telegram := notify.NewTelegramClient(notify.TelegramConfig{})

	return NewRegistrationService(db, roster, referrals, audit, telegram, nil, dispatcher), dispatcher
}

func newTestApprovalService(t *testing.T, db *gorm.DB, roster *campus.Roster) *ApprovalService {
	t.Helper()
	dispatcher := notify.NewDispatcher(time.Second)
	t.Cleanup(func() { _ = dispatcher.Close() })

	referrals := NewReferralService(db)
	audit := NewAuditService(db, notify.NewSheetClient(notify.SheetConfig{}), dispatcher)

	return NewApprovalService(db, referrals, roster, audit, nil, dispatcher)
}
