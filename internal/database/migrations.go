package database

import (
	"strings"

	"gorm.io/gorm"

	"github.com/cupidworks/valentine-backend/internal/models"
	"github.com/cupidworks/valentine-backend/pkg/crypto"
)

// AutoMigrate creates or updates the database schema for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.PendingRegistrant{},
		&models.Referral{},
		&models.ReferralRedemption{},
		&models.Event{},
		&models.Ticket{},
		&models.WaitlistEntry{},
		&models.AuditLog{},
	)
}

// SeedConfig describes the bootstrap admin account.
type SeedConfig struct {
	AdminEmail    string
	AdminName     string
	AdminPhone    string
	AdminPassword string
}

// SeedData provisions the admin account used by the event-management surface.
// It is a no-op when no admin email is configured or the account exists.
func SeedData(db *gorm.DB, seed SeedConfig) error {
	email := strings.ToLower(strings.TrimSpace(seed.AdminEmail))
	if email == "" {
		return nil
	}

	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hashed, err := crypto.HashPassword(seed.AdminPassword)
	if err != nil {
		return err
	}

	admin := models.User{
		Name:     seed.AdminName,
		Email:    email,
		Phone:    seed.AdminPhone,
		Password: hashed,
		Role:     models.RoleAdmin,
	}
	return db.Create(&admin).Error
}
