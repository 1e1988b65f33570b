package services

import (
	"context"
	"errors"

	"clinicq/internal/adapters/persistence/models"
	"clinicq/internal/adapters/persistence/repositories"
	"clinicq/internal/pkg/password"

	"gorm.io/gorm"
)

// Staff management errors
var (
	ErrStaffExists         = errors.New("username or email already taken")
	ErrCannotDeleteSelf    = errors.New("cannot delete your own account")
	ErrCannotChangeOwnRole = errors.New("cannot change your own role")
	ErrInvalidRole         = errors.New("invalid staff role")
)

// StaffService handles staff account management (admin operations)
type StaffService struct {
	staffRepo repositories.StaffRepository
}

// NewStaffService creates a new staff service
func NewStaffService(staffRepo repositories.StaffRepository) *StaffService {
	return &StaffService{staffRepo: staffRepo}
}

// CreateStaffInput represents admin staff creation input
type CreateStaffInput struct {
	HospitalID uint   `json:"hospital_id"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	FullName   string `json:"full_name"`
	Role       string `json:"role"`
	DoctorID   *uint  `json:"doctor_id"`
}

// ListStaffInput represents list staff input
type ListStaffInput struct {
	HospitalID uint
	Page       int
	Limit      int
}

// ListStaffOutput represents list staff output
type ListStaffOutput struct {
	Staff      []*models.StaffResponse `json:"staff"`
	Total      int64                   `json:"total"`
	Page       int                     `json:"page"`
	Limit      int                     `json:"limit"`
	TotalPages int                     `json:"total_pages"`
}

// UpdateStaffByAdminInput represents admin staff update input
type UpdateStaffByAdminInput struct {
	Email    *string `json:"email"`
	FullName *string `json:"full_name"`
	Role     *string `json:"role"`
	DoctorID *uint   `json:"doctor_id"`
	IsActive *bool   `json:"is_active"`
}

func validStaffRole(role string) bool {
	return role == models.StaffRoleReception || role == models.StaffRoleDoctor || role == models.StaffRoleAdmin
}

// CreateStaff creates a new staff account
func (s *StaffService) CreateStaff(ctx context.Context, input *CreateStaffInput) (*models.StaffResponse, error) {
	if !validStaffRole(input.Role) {
		return nil, ErrInvalidRole
	}

	exists, err := s.staffRepo.ExistsByUsername(ctx, input.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrStaffExists
	}

	exists, err = s.staffRepo.ExistsByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrStaffExists
	}

	hashed, err := password.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	staff := &models.Staff{
		HospitalID: input.HospitalID,
		Username:   input.Username,
		Email:      input.Email,
		Password:   hashed,
		FullName:   input.FullName,
		Role:       input.Role,
		DoctorID:   input.DoctorID,
		IsActive:   true,
	}

	if err := s.staffRepo.Create(ctx, staff); err != nil {
		return nil, err
	}

	return staff.ToResponse(), nil
}

// ListStaff lists a hospital's staff with pagination
func (s *StaffService) ListStaff(ctx context.Context, input *ListStaffInput) (*ListStaffOutput, error) {
	if input.Page < 1 {
		input.Page = 1
	}
	if input.Limit < 1 {
		input.Limit = 10
	}
	if input.Limit > 100 {
		input.Limit = 100
	}

	offset := (input.Page - 1) * input.Limit

	staff, total, err := s.staffRepo.List(ctx, input.HospitalID, offset, input.Limit)
	if err != nil {
		return nil, err
	}

	responses := make([]*models.StaffResponse, len(staff))
	for i, member := range staff {
		responses[i] = member.ToResponse()
	}

	totalPages := int(total) / input.Limit
	if int(total)%input.Limit > 0 {
		totalPages++
	}

	return &ListStaffOutput{
		Staff:      responses,
		Total:      total,
		Page:       input.Page,
		Limit:      input.Limit,
		TotalPages: totalPages,
	}, nil
}

// GetStaffByID gets a staff account by ID
func (s *StaffService) GetStaffByID(ctx context.Context, id uint) (*models.StaffResponse, error) {
	staff, err := s.staffRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStaffNotFound
		}
		return nil, err
	}
	return staff.ToResponse(), nil
}

// UpdateStaffByAdmin updates a staff account
func (s *StaffService) UpdateStaffByAdmin(ctx context.Context, id uint, adminID uint, input *UpdateStaffByAdminInput) (*models.StaffResponse, error) {
	staff, err := s.staffRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStaffNotFound
		}
		return nil, err
	}

	// Admins cannot change their own role
	if id == adminID && input.Role != nil {
		return nil, ErrCannotChangeOwnRole
	}

	if input.Email != nil && *input.Email != staff.Email {
		exists, _ := s.staffRepo.ExistsByEmail(ctx, *input.Email)
		if exists {
			return nil, ErrStaffExists
		}
		staff.Email = *input.Email
	}

	if input.FullName != nil {
		staff.FullName = *input.FullName
	}

	if input.Role != nil {
		if !validStaffRole(*input.Role) {
			return nil, ErrInvalidRole
		}
		staff.Role = *input.Role
	}

	if input.DoctorID != nil {
		staff.DoctorID = input.DoctorID
	}

	if input.IsActive != nil {
		staff.IsActive = *input.IsActive
	}

	if err := s.staffRepo.Update(ctx, staff); err != nil {
		return nil, err
	}

	return staff.ToResponse(), nil
}

// DeleteStaff soft deletes a staff account
func (s *StaffService) DeleteStaff(ctx context.Context, id uint, adminID uint) error {
	if id == adminID {
		return ErrCannotDeleteSelf
	}

	if _, err := s.staffRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrStaffNotFound
		}
		return err
	}

	return s.staffRepo.Delete(ctx, id)
}
