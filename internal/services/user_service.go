package services

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/cupidworks/valentine-backend/internal/auth"
	"github.com/cupidworks/valentine-backend/internal/models"
	"github.com/cupidworks/valentine-backend/pkg/crypto"
	apperrors "github.com/cupidworks/valentine-backend/pkg/errors"
	"github.com/cupidworks/valentine-backend/pkg/validator"
)

// Session is an authenticated user plus their access token.
type Session struct {
	User  *models.User
	Token string
}

// UserService handles credentialed accounts on the v1 surface. Accounts
// minted by the registration flow have no password; they gain one the first
// time they sign up with a matching email.
type UserService struct {
	db  *gorm.DB
	jwt *auth.JWTService
}

// NewUserService constructs a UserService.
func NewUserService(db *gorm.DB, jwt *auth.JWTService) *UserService {
	return &UserService{db: db, jwt: jwt}
}

// Signup creates a credentialed account, or attaches a password to an
// existing password-less account with the same email.
func (s *UserService) Signup(ctx context.Context, name, email, phone, password string) (*Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	phone = validator.NormalizePhone(phone)

	hash, err := crypto.HashPassword(password)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to hash password")
	}

	var user models.User
	err = s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	switch {
	case err == nil:
		if user.Password != "" {
			return nil, apperrors.ErrDuplicateContact
		}
		if err := s.db.WithContext(ctx).Model(&user).Update("password", hash).Error; err != nil {
			return nil, apperrors.Wrap(err, "failed to set password")
		}
		user.Password = hash
	case err == gorm.ErrRecordNotFound:
		user = models.User{
			Name:     strings.TrimSpace(name),
			Email:    email,
			Phone:    phone,
			Password: hash,
		}
		if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
			if isUniqueConstraintError(err) {
				return nil, apperrors.ErrDuplicateContact
			}
			return nil, apperrors.Wrap(err, "failed to create account")
		}
	default:
		return nil, apperrors.Wrap(err, "failed to look up account")
	}

	token, err := s.jwt.Generate(&user)
	if err != nil {
		return nil, err
	}
	return &Session{User: &user, Token: token}, nil
}

// Login verifies credentials and mints a token.
func (s *UserService) Login(ctx context.Context, email, password string) (*Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.Wrap(err, "failed to look up account")
	}

	if user.Password == "" || !crypto.VerifyPassword(user.Password, password) {
		return nil, apperrors.ErrInvalidCredentials
	}

	token, err := s.jwt.Generate(&user)
	if err != nil {
		return nil, err
	}
	return &Session{User: &user, Token: token}, nil
}

// Get loads a user by id.
func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.ErrNotFound.WithMessage("User not found")
		}
		return nil, apperrors.Wrap(err, "failed to load user")
	}
	return &user, nil
}
