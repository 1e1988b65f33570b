package services

import (
	"context"
	"errors"
	"log"

	"clinicq/internal/adapters/persistence/models"
	"clinicq/internal/adapters/persistence/repositories"
	"clinicq/internal/config"
	"clinicq/internal/pkg/jwt"
	"clinicq/internal/pkg/password"

	"gorm.io/gorm"
)

// Auth errors
var (
	ErrStaffNotFound      = errors.New("staff account not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrStaffInactive      = errors.New("staff account is inactive")
	ErrOldPasswordWrong   = errors.New("old password is incorrect")
)

// AuthService handles staff authentication
type AuthService struct {
	staffRepo repositories.StaffRepository
	cfg       *config.Config
}

// NewAuthService creates a new auth service
func NewAuthService(staffRepo repositories.StaffRepository, cfg *config.Config) *AuthService {
	return &AuthService{
		staffRepo: staffRepo,
		cfg:       cfg,
	}
}

// LoginInput represents login input
type LoginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse represents a successful authentication
type AuthResponse struct {
	Staff       *models.StaffResponse `json:"staff"`
	AccessToken string                `json:"access_token"`
}

// Login authenticates a staff member and issues an access token
func (s *AuthService) Login(ctx context.Context, input *LoginInput) (*AuthResponse, error) {
	staff, err := s.staffRepo.GetByUsername(ctx, input.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !staff.IsActive {
		return nil, ErrStaffInactive
	}

	if !password.Verify(input.Password, staff.Password) {
		return nil, ErrInvalidCredentials
	}

	token, err := jwt.GenerateAccessToken(
		staff.ID,
		staff.HospitalID,
		staff.Username,
		staff.Role,
		s.cfg.JWT.Secret,
		s.cfg.JWT.AccessTokenMins,
	)
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Staff logged in: %s (role=%s)", staff.Username, staff.Role)

	return &AuthResponse{
		Staff:       staff.ToResponse(),
		AccessToken: token,
	}, nil
}

// GetStaffByID gets a staff account by ID
func (s *AuthService) GetStaffByID(ctx context.Context, staffID uint) (*models.Staff, error) {
	staff, err := s.staffRepo.GetByID(ctx, staffID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStaffNotFound
		}
		return nil, err
	}
	return staff, nil
}

// ChangePassword changes the caller's own password
func (s *AuthService) ChangePassword(ctx context.Context, staffID uint, oldPassword, newPassword string) error {
	staff, err := s.staffRepo.GetByID(ctx, staffID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrStaffNotFound
		}
		return err
	}

	if !password.Verify(oldPassword, staff.Password) {
		return ErrOldPasswordWrong
	}
	if !password.ValidatePassword(newPassword) {
		return errors.New("new password must be at least 8 characters")
	}

	hashed, err := password.Hash(newPassword)
	if err != nil {
		return err
	}

	staff.Password = hashed
	if err := s.staffRepo.Update(ctx, staff); err != nil {
		return err
	}

	log.Printf("✅ Password changed for staff: %s", staff.Username)
	return nil
}
