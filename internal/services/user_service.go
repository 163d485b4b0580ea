package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/hackcampus/apply-backend/internal/apperrors"
	"github.com/hackcampus/apply-backend/internal/models"
)

type UserService struct {
	DB  *gorm.DB
	Log *slog.Logger
}

func NewUserService(db *gorm.DB, log *slog.Logger) *UserService {
	return &UserService{DB: db, Log: log}
}

// Register creates an account with a bcrypt-hashed password. A duplicate
// email surfaces as a conflict with the stable reason code "emailTaken".
func (s *UserService) Register(ctx context.Context, email, password string) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Storage("hash password", err)
	}
	user := &models.User{
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: string(hash),
		Role:         models.RoleApplicant,
	}
	if err := s.DB.WithContext(ctx).Create(user).Error; err != nil {
		if isDuplicate(err) {
			return nil, apperrors.Conflict("email address is already registered", "emailTaken", err)
		}
		s.Log.Error("user storage failure", "op", "create user", "err", err)
		return nil, apperrors.Storage("create user failed", err)
	}
	return user, nil
}

// Authenticate checks a password login. Missing accounts and bad passwords
// are indistinguishable to the caller.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	var user models.User
	err := s.DB.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.New(apperrors.CodeUnauthorized, "invalid email or password", nil)
	}
	if err != nil {
		s.Log.Error("user storage failure", "op", "load user", "err", err)
		return nil, apperrors.Storage("load user failed", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, apperrors.New(apperrors.CodeUnauthorized, "invalid email or password", nil)
	}
	return &user, nil
}

func (s *UserService) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := s.DB.WithContext(ctx).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("user not found")
	}
	if err != nil {
		return nil, apperrors.Storage("load user failed", err)
	}
	return &user, nil
}

func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}
