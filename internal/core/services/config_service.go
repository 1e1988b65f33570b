package services

import (
	"log"

	"clinicq/internal/adapters/persistence/models"
	"clinicq/internal/core/domain"
)

// ConfigService exposes the admin-facing configuration operations. Reads of
// effective policy go through PolicyService; this service handles writes.
type ConfigService struct {
	configs ConfigRepository
}

// NewConfigService creates a new config service
func NewConfigService(configs ConfigRepository) *ConfigService {
	return &ConfigService{configs: configs}
}

// HospitalConfigInput carries the updatable hospital-level policy fields
type HospitalConfigInput struct {
	BookingMode         *string `json:"booking_mode"`
	ConsultationMinutes *int    `json:"consultation_minutes"`
	BufferMinutes       *int    `json:"buffer_minutes"`
	ArrivalWindowMins   *int    `json:"arrival_window_mins"`
	NoShowGraceMins     *int    `json:"no_show_grace_mins"`
	TokenResetFrequency *string `json:"token_reset_frequency"`
	AutoReassignOnLeave *bool   `json:"auto_reassign_on_leave"`
	MaxQueueLength      *int    `json:"max_queue_length"`
}

// GetHospitalConfig returns the stored hospital configuration row
func (s *ConfigService) GetHospitalConfig(hospitalID uint) (*models.HospitalConfig, error) {
	cfg, err := s.configs.GetHospitalConfig(hospitalID)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, domain.ErrConfigNotFound
	}
	return cfg, nil
}

// UpdateHospitalConfig applies the non-nil fields of the input. Changes take
// effect on the next queue action; running visits are never rewritten.
func (s *ConfigService) UpdateHospitalConfig(hospitalID uint, input *HospitalConfigInput) (*models.HospitalConfig, error) {
	cfg, err := s.GetHospitalConfig(hospitalID)
	if err != nil {
		return nil, err
	}

	if input.BookingMode != nil {
		if !validBookingMode(*input.BookingMode) {
			return nil, domain.ErrInvalidInput
		}
		cfg.BookingMode = *input.BookingMode
	}
	if input.ConsultationMinutes != nil {
		if *input.ConsultationMinutes <= 0 {
			return nil, domain.ErrInvalidInput
		}
		cfg.ConsultationMinutes = *input.ConsultationMinutes
	}
	if input.BufferMinutes != nil {
		if *input.BufferMinutes < 0 {
			return nil, domain.ErrInvalidInput
		}
		cfg.BufferMinutes = *input.BufferMinutes
	}
	if input.ArrivalWindowMins != nil {
		if *input.ArrivalWindowMins < 0 {
			return nil, domain.ErrInvalidInput
		}
		cfg.ArrivalWindowMins = *input.ArrivalWindowMins
	}
	if input.NoShowGraceMins != nil {
		if *input.NoShowGraceMins < 0 {
			return nil, domain.ErrInvalidInput
		}
		cfg.NoShowGraceMins = *input.NoShowGraceMins
	}
	if input.TokenResetFrequency != nil {
		if !validResetFrequency(*input.TokenResetFrequency) {
			return nil, domain.ErrInvalidInput
		}
		cfg.TokenResetFrequency = *input.TokenResetFrequency
	}
	if input.AutoReassignOnLeave != nil {
		cfg.AutoReassignOnLeave = *input.AutoReassignOnLeave
	}
	if input.MaxQueueLength != nil {
		if *input.MaxQueueLength <= 0 {
			cfg.MaxQueueLength = nil
		} else {
			cfg.MaxQueueLength = input.MaxQueueLength
		}
	}

	if err := s.configs.UpdateHospitalConfig(cfg); err != nil {
		return nil, err
	}
	log.Printf("✅ Hospital %d config updated", hospitalID)
	return cfg, nil
}

// DepartmentConfigInput carries the per-department overrides. Nil fields
// keep deferring to the hospital value.
type DepartmentConfigInput struct {
	BookingMode         *string `json:"booking_mode"`
	ConsultationMinutes *int    `json:"consultation_minutes"`
	BufferMinutes       *int    `json:"buffer_minutes"`
	ArrivalWindowMins   *int    `json:"arrival_window_mins"`
	NoShowGraceMins     *int    `json:"no_show_grace_mins"`
	TokenResetFrequency *string `json:"token_reset_frequency"`
	MaxQueueLength      *int    `json:"max_queue_length"`
	TokenPrefix         *string `json:"token_prefix"`
}

// UpsertDepartmentConfig creates or replaces a department's override row
func (s *ConfigService) UpsertDepartmentConfig(hospitalID, departmentID uint, input *DepartmentConfigInput) (*models.DepartmentConfig, error) {
	department, err := s.configs.GetDepartmentByID(departmentID)
	if err != nil {
		return nil, err
	}
	if department == nil || department.HospitalID != hospitalID {
		return nil, domain.ErrDepartmentNotFound
	}

	if input.BookingMode != nil && !validBookingMode(*input.BookingMode) {
		return nil, domain.ErrInvalidInput
	}
	if input.TokenResetFrequency != nil && !validResetFrequency(*input.TokenResetFrequency) {
		return nil, domain.ErrInvalidInput
	}

	override := &models.DepartmentConfig{
		HospitalID:          hospitalID,
		DepartmentID:        departmentID,
		BookingMode:         input.BookingMode,
		ConsultationMinutes: input.ConsultationMinutes,
		BufferMinutes:       input.BufferMinutes,
		ArrivalWindowMins:   input.ArrivalWindowMins,
		NoShowGraceMins:     input.NoShowGraceMins,
		TokenResetFrequency: input.TokenResetFrequency,
		MaxQueueLength:      input.MaxQueueLength,
		TokenPrefix:         input.TokenPrefix,
	}
	if err := s.configs.UpsertDepartmentConfig(override); err != nil {
		return nil, err
	}
	log.Printf("✅ Department %d config updated (hospital=%d)", departmentID, hospitalID)
	return override, nil
}

// SetDoctorStatus updates a doctor's availability status
func (s *ConfigService) SetDoctorStatus(doctorID uint, status string) (*models.Doctor, error) {
	if status != models.DoctorActive && status != models.DoctorOnLeave && status != models.DoctorInactive {
		return nil, domain.ErrInvalidInput
	}

	doctor, err := s.configs.GetDoctorByID(doctorID)
	if err != nil {
		return nil, err
	}
	if doctor == nil {
		return nil, domain.ErrDoctorNotFound
	}

	if err := s.configs.UpdateDoctorStatus(doctorID, status); err != nil {
		return nil, err
	}
	doctor.Status = status
	return doctor, nil
}

func validBookingMode(mode string) bool {
	return mode == models.BookingTokenOnly || mode == models.BookingTimeSlotOnly || mode == models.BookingBoth
}

func validResetFrequency(freq string) bool {
	return freq == models.ResetDaily || freq == models.ResetWeekly ||
		freq == models.ResetMonthly || freq == models.ResetNever
}
