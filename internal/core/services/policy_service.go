package services

import (
	"fmt"
	"time"

	"clinicq/internal/adapters/persistence/models"
	"clinicq/internal/core/domain"
)

// System defaults applied when neither hospital nor department configure a value
const (
	DefaultConsultationMinutes = 15
	DefaultBufferMinutes       = 5
	DefaultArrivalWindowMins   = 15
	DefaultNoShowGraceMins     = 30
	DefaultResetFrequency      = models.ResetDaily
	DefaultTokenPrefix         = "Q"
)

// EffectivePolicy is the fully merged scheduling configuration for one
// hospital/department pair
type EffectivePolicy struct {
	HospitalID          uint
	DepartmentID        uint
	Location            *time.Location
	BookingMode         string
	ConsultationMinutes int
	BufferMinutes       int
	ArrivalWindowMins   int
	NoShowGraceMins     int
	TokenResetFrequency string
	AutoReassignOnLeave bool
	MaxQueueLength      *int
	TokenPrefix         string
	BusinessHours       []models.BusinessHour
}

// ConsultationFor returns the consultation duration for a doctor, applying
// the per-doctor override when present
func (p *EffectivePolicy) ConsultationFor(doctor *models.Doctor) int {
	if doctor != nil && doctor.ConsultationMinutes != nil && *doctor.ConsultationMinutes > 0 {
		return *doctor.ConsultationMinutes
	}
	return p.ConsultationMinutes
}

// IsOpenAt checks the weekly business-hours table. A weekday with no row is
// treated as open so hospitals without a configured table are never blocked.
func (p *EffectivePolicy) IsOpenAt(t time.Time) bool {
	local := t.In(p.Location)
	for _, h := range p.BusinessHours {
		if h.Weekday != int(local.Weekday()) {
			continue
		}
		if !h.IsOpen {
			return false
		}
		clock := local.Format("15:04")
		return clock >= h.OpenTime && clock < h.CloseTime
	}
	return true
}

// PolicyService resolves effective scheduling configuration. Resolution is
// pure and re-run on every action so mid-day config changes take effect
// immediately.
type PolicyService struct {
	configRepo ConfigRepository
}

// NewPolicyService creates a new policy service
func NewPolicyService(configRepo ConfigRepository) *PolicyService {
	return &PolicyService{configRepo: configRepo}
}

// Resolve merges department overrides onto the hospital configuration onto
// system defaults. departmentID 0 resolves hospital-level policy only; a
// missing department override row is not an error.
func (s *PolicyService) Resolve(hospitalID, departmentID uint) (*EffectivePolicy, error) {
	hospital, err := s.configRepo.GetHospitalByID(hospitalID)
	if err != nil {
		return nil, err
	}
	if hospital == nil {
		return nil, domain.ErrConfigNotFound
	}

	cfg, err := s.configRepo.GetHospitalConfig(hospitalID)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, domain.ErrConfigNotFound
	}

	loc, err := time.LoadLocation(hospital.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid hospital timezone %q: %w", hospital.Timezone, err)
	}

	policy := &EffectivePolicy{
		HospitalID:          hospitalID,
		DepartmentID:        departmentID,
		Location:            loc,
		BookingMode:         cfg.BookingMode,
		ConsultationMinutes: orDefault(cfg.ConsultationMinutes, DefaultConsultationMinutes),
		BufferMinutes:       orDefault(cfg.BufferMinutes, DefaultBufferMinutes),
		ArrivalWindowMins:   orDefault(cfg.ArrivalWindowMins, DefaultArrivalWindowMins),
		NoShowGraceMins:     orDefault(cfg.NoShowGraceMins, DefaultNoShowGraceMins),
		TokenResetFrequency: cfg.TokenResetFrequency,
		AutoReassignOnLeave: cfg.AutoReassignOnLeave,
		MaxQueueLength:      cfg.MaxQueueLength,
		TokenPrefix:         DefaultTokenPrefix,
		BusinessHours:       cfg.BusinessHours,
	}
	if policy.BookingMode == "" {
		policy.BookingMode = models.BookingBoth
	}
	if policy.TokenResetFrequency == "" {
		policy.TokenResetFrequency = DefaultResetFrequency
	}

	if departmentID == 0 {
		return policy, nil
	}

	override, err := s.configRepo.GetDepartmentConfig(hospitalID, departmentID)
	if err != nil {
		return nil, err
	}
	if override == nil {
		return policy, nil
	}

	if override.BookingMode != nil {
		policy.BookingMode = *override.BookingMode
	}
	if override.ConsultationMinutes != nil {
		policy.ConsultationMinutes = *override.ConsultationMinutes
	}
	if override.BufferMinutes != nil {
		policy.BufferMinutes = *override.BufferMinutes
	}
	if override.ArrivalWindowMins != nil {
		policy.ArrivalWindowMins = *override.ArrivalWindowMins
	}
	if override.NoShowGraceMins != nil {
		policy.NoShowGraceMins = *override.NoShowGraceMins
	}
	if override.TokenResetFrequency != nil {
		policy.TokenResetFrequency = *override.TokenResetFrequency
	}
	if override.MaxQueueLength != nil {
		policy.MaxQueueLength = override.MaxQueueLength
	}
	if override.TokenPrefix != nil && *override.TokenPrefix != "" {
		policy.TokenPrefix = *override.TokenPrefix
	}

	return policy, nil
}

func orDefault(value, fallback int) int {
	if value <= 0 {
		return fallback
	}
	return value
}
