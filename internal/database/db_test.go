package database

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cupidworks/valentine-backend/internal/models"
)

func TestOpenSQLiteInMemoryAndMigrate(t *testing.T) {
	db, err := Open(Config{Driver: "sqlite", Path: ":memory:"})
	require.NoError(t, err)

	require.NoError(t, AutoMigrate(db))

	require.True(t, db.Migrator().HasTable(&models.User{}))
	require.True(t, db.Migrator().HasTable(&models.PendingRegistrant{}))
	require.True(t, db.Migrator().HasTable(&models.Referral{}))
	require.True(t, db.Migrator().HasTable(&models.ReferralRedemption{}))
	require.True(t, db.Migrator().HasTable(&models.Event{}))
	require.True(t, db.Migrator().HasTable(&models.Ticket{}))
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(Config{Driver: "oracle"})
	require.Error(t, err)
}

func TestSeedDataCreatesAdminOnce(t *testing.T) {
	db, err := Open(Config{Driver: "sqlite", Path: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))

	seed := SeedConfig{
		AdminEmail:    "Admin@Valentine.Test",
		AdminName:     "Organiser",
		AdminPhone:    "5550000000",
		AdminPassword: "change-me-please",
	}
	require.NoError(t, SeedData(db, seed))
	require.NoError(t, SeedData(db, seed))

	var admins []models.User
	require.NoError(t, db.Where("role = ?", models.RoleAdmin).Find(&admins).Error)
	require.Len(t, admins, 1)
	require.Equal(t, "admin@valentine.test", admins[0].Email)
	require.NotEqual(t, "change-me-please", admins[0].Password)
}

func TestBuildPostgresDSNDefaults(t *testing.T) {
	dsn, err := buildPostgresDSN(Config{Driver: "postgres", User: "val", Name: "valentine"})
	require.NoError(t, err)
	require.Contains(t, dsn, "host=localhost")
	require.Contains(t, dsn, "port=5432")
	require.Contains(t, dsn, "sslmode=disable")
}

func TestMySQLDSNDefaults(t *testing.T) {
	dsn, err := mysqlDSN(Config{Driver: "mysql", User: "val", Password: "pw", Name: "valentine"})
	require.NoError(t, err)
	require.Contains(t, dsn, "val:pw@tcp(127.0.0.1:3306)/valentine")
	require.Contains(t, dsn, "parseTime=True")

	_, err = mysqlDSN(Config{Driver: "mysql", Name: "valentine"})
	require.Error(t, err)
}

func TestSQLiteDSNCreatesParentDirectory(t *testing.T) {
	path := t.TempDir() + "/nested/valentine.sqlite"
	dsn, err := sqliteDSN(Config{Driver: "sqlite", Path: path})
	require.NoError(t, err)
	require.Contains(t, dsn, "_foreign_keys=1")
	require.Contains(t, dsn, "_journal_mode=WAL")
}
