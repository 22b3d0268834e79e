package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/cupidworks/valentine-backend/internal/api"
	"github.com/cupidworks/valentine-backend/internal/app"
	"github.com/cupidworks/valentine-backend/internal/app/maintenance"
	iauth "github.com/cupidworks/valentine-backend/internal/auth"
	"github.com/cupidworks/valentine-backend/internal/campus"
	"github.com/cupidworks/valentine-backend/internal/database"
	"github.com/cupidworks/valentine-backend/internal/notify"
	"github.com/cupidworks/valentine-backend/internal/services"
	"github.com/cupidworks/valentine-backend/pkg/logger"
	"github.com/cupidworks/valentine-backend/pkg/mail"
)

const (
	shutdownTimeout   = 15 * time.Second
	dispatcherTimeout = 15 * time.Second
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("valentine-server", flag.ContinueOnError)
	fs.SetOutput(os.Stdout)

	var configPath string
	fs.StringVar(&configPath, "config", "", "Path to configuration directory or file")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadApplicationConfig(configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := app.ConfigureLogging(cfg.Server.LogLevel, cfg.Server.LogEncoding); err != nil {
		return fmt.Errorf("configure logging: %w", err)
	}
	defer logger.Sync() // best effort

	log := logger.WithModule("bootstrap")

	db, err := initialiseDatabase(cfg)
	if err != nil {
		return err
	}
	defer closeDatabase(db, log)

	roster := campus.NewRoster(cfg.Campus.RosterPath)

	dispatcher := notify.NewDispatcher(dispatcherTimeout)
	defer func() {
		if err := dispatcher.Close(); err != nil {
			log.Warn("pending side effects failed during shutdown", zap.Error(err))
		}
	}()

	telegram := notify.NewTelegramClient(notify.TelegramConfig{
		BotToken: cfg.Telegram.BotToken,
		ChatID:   cfg.Telegram.ChatID,
		BaseURL:  cfg.Telegram.BaseURL,
		Timeout:  cfg.Telegram.Timeout,
	})
	if !telegram.Enabled() {
		log.Warn("telegram approval channel disabled; pending registrations require the direct endpoint")
	}

	sheet := notify.NewSheetClient(notify.SheetConfig{
		WebhookURL: cfg.Sheets.WebhookURL,
		Timeout:    cfg.Sheets.Timeout,
	})

	mailer, err := mail.NewSMTPMailer(mail.SMTPSettings{
		Enabled:  cfg.Email.SMTP.Enabled,
		Host:     cfg.Email.SMTP.Host,
		Port:     cfg.Email.SMTP.Port,
		Username: cfg.Email.SMTP.Username,
		Password: cfg.Email.SMTP.Password,
		From:     cfg.Email.SMTP.From,
		UseTLS:   cfg.Email.SMTP.UseTLS,
		Timeout:  cfg.Email.SMTP.Timeout,
	})
	if err != nil {
		return fmt.Errorf("initialise mailer: %w", err)
	}

	jwtService := iauth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	referrals := services.NewReferralService(db)
	audit := services.NewAuditService(db, sheet, dispatcher)
	registrations := services.NewRegistrationService(db, roster, referrals, audit, telegram, mailer, dispatcher)
	approvals := services.NewApprovalService(db, referrals, roster, audit, mailer, dispatcher)

	var sweeper *maintenance.ReminderSweeper
	if cfg.Reminders.Enabled {
		sweeper = maintenance.NewReminderSweeper(db, telegram,
			maintenance.WithSchedule(cfg.Reminders.Schedule),
			maintenance.WithMinAge(cfg.Reminders.MinAge),
		)
		if err := sweeper.Start(); err != nil {
			return fmt.Errorf("start reminder sweeper: %w", err)
		}
		defer sweeper.Stop()
	}

	router, err := api.NewRouter(api.Deps{
		Config:        cfg,
		JWT:           jwtService,
		Registrations: registrations,
		Referrals:     referrals,
		Approvals:     approvals,
		Users:         services.NewUserService(db, jwtService),
		Events:        services.NewEventService(db),
		Tickets:       services.NewTicketService(db),
		Telegram:      telegram,
		Dispatcher:    dispatcher,
	})
	if err != nil {
		return fmt.Errorf("build api router: %w", err)
	}

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("graceful shutdown: %w", err)
	}

	if err, ok := <-serverErr; ok && err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	log.Info("server stopped gracefully")
	return nil
}

func loadApplicationConfig(path string) (*app.Config, error) {
	switch {
	case strings.TrimSpace(path) == "":
		return app.LoadConfig()
	default:
		info, err := os.Stat(path)
		if err == nil {
			if info.IsDir() {
				return app.LoadConfig(path)
			}
			return app.LoadConfig(filepath.Dir(path))
		}
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config path %q does not exist", path)
		}
		return nil, fmt.Errorf("stat config path: %w", err)
	}
}

func initialiseDatabase(cfg *app.Config) (*gorm.DB, error) {
	db, err := database.Open(convertDatabaseConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := database.AutoMigrateAndSeed(db, database.SeedConfig{
		AdminEmail:    cfg.Admin.Email,
		AdminName:     cfg.Admin.Name,
		AdminPhone:    cfg.Admin.Phone,
		AdminPassword: cfg.Admin.Password,
	}); err != nil {
		return nil, fmt.Errorf("auto-migrate database: %w", err)
	}

	return db, nil
}

func convertDatabaseConfig(cfg *app.Config) database.Config {
	out := database.Config{
		Driver: cfg.Database.Driver,
		Path:   cfg.Database.Path,
		DSN:    cfg.Database.DSN,
	}

	switch cfg.Database.Driver {
	case "postgres":
		out.Host = cfg.Database.Postgres.Host
		out.Port = cfg.Database.Postgres.Port
		out.Name = cfg.Database.Postgres.Database
		out.User = cfg.Database.Postgres.Username
		out.Password = cfg.Database.Postgres.Password
	case "mysql":
		out.Host = cfg.Database.MySQL.Host
		out.Port = cfg.Database.MySQL.Port
		out.Name = cfg.Database.MySQL.Database
		out.User = cfg.Database.MySQL.Username
		out.Password = cfg.Database.MySQL.Password
	}

	return out
}

func closeDatabase(db *gorm.DB, log *zap.Logger) {
	sqlDB, err := db.DB()
	if err != nil {
		log.Warn("failed to access underlying database handle", zap.Error(err))
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Warn("failed to close database", zap.Error(err))
	}
}
