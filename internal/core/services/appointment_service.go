package services

import (
	"log"
	"time"

	"clinicq/internal/adapters/persistence/models"
	"clinicq/internal/core/domain"
)

// AppointmentService manages scheduled bookings that later materialize into
// queue visits at check-in
type AppointmentService struct {
	appointments AppointmentRepository
	configs      ConfigRepository
	policy       *PolicyService
	now          func() time.Time
}

// NewAppointmentService creates a new appointment service
func NewAppointmentService(appointments AppointmentRepository, configs ConfigRepository, policy *PolicyService) *AppointmentService {
	return &AppointmentService{
		appointments: appointments,
		configs:      configs,
		policy:       policy,
		now:          time.Now,
	}
}

// BookInput represents a booking request
type BookInput struct {
	PatientID    uint      `json:"patient_id" validate:"required"`
	DepartmentID *uint     `json:"department_id"`
	DoctorID     *uint     `json:"doctor_id"`
	ScheduledAt  time.Time `json:"scheduled_at" validate:"required"`
	BookingType  string    `json:"booking_type"`
	Note         string    `json:"note"`
}

// Book creates a PENDING appointment after validating the slot
func (s *AppointmentService) Book(hospitalID uint, input *BookInput) (*models.Appointment, error) {
	patient, err := s.configs.GetPatientByID(input.PatientID)
	if err != nil {
		return nil, err
	}
	if patient == nil {
		return nil, domain.ErrPatientNotFound
	}

	departmentID := uint(0)
	if input.DepartmentID != nil {
		department, err := s.configs.GetDepartmentByID(*input.DepartmentID)
		if err != nil {
			return nil, err
		}
		if department == nil {
			return nil, domain.ErrDepartmentNotFound
		}
		departmentID = department.ID
	}

	var doctor *models.Doctor
	if input.DoctorID != nil {
		doctor, err = s.configs.GetDoctorByID(*input.DoctorID)
		if err != nil {
			return nil, err
		}
		if doctor == nil {
			return nil, domain.ErrDoctorNotFound
		}
		if doctor.Status != models.DoctorActive {
			return nil, domain.ErrTargetDoctorInactive
		}
		if input.DepartmentID == nil {
			departmentID = doctor.DepartmentID
			input.DepartmentID = &doctor.DepartmentID
		}
	}

	policy, err := s.policy.Resolve(hospitalID, departmentID)
	if err != nil {
		return nil, err
	}
	if policy.BookingMode == models.BookingTokenOnly {
		return nil, domain.ErrAppointmentClosed
	}
	if input.ScheduledAt.Before(s.now()) {
		return nil, domain.ErrInvalidInput
	}
	if !policy.IsOpenAt(input.ScheduledAt) {
		return nil, domain.ErrHospitalClosed
	}

	if doctor != nil {
		if err := s.checkSlotFree(doctor, policy, input.ScheduledAt); err != nil {
			return nil, err
		}
	}

	bookingType := input.BookingType
	if bookingType == "" {
		bookingType = models.BookingOnline
	}

	appointment := &models.Appointment{
		HospitalID:   hospitalID,
		PatientID:    input.PatientID,
		DepartmentID: input.DepartmentID,
		DoctorID:     input.DoctorID,
		ScheduledAt:  input.ScheduledAt,
		Status:       models.AppointmentPending,
		BookingType:  bookingType,
		Note:         input.Note,
	}
	if err := s.appointments.Create(appointment); err != nil {
		return nil, err
	}

	log.Printf("✅ Appointment %d booked (patient=%d, at=%s)", appointment.ID, appointment.PatientID,
		appointment.ScheduledAt.Format(time.RFC3339))
	return appointment, nil
}

// checkSlotFree rejects a booking that lands inside another open
// appointment's slot for the same doctor. A slot spans the consultation
// duration plus the inter-appointment buffer.
func (s *AppointmentService) checkSlotFree(doctor *models.Doctor, policy *EffectivePolicy, at time.Time) error {
	slot := time.Duration(policy.ConsultationFor(doctor)+policy.BufferMinutes) * time.Minute
	taken, err := s.appointments.ListOpenByDoctorBetween(doctor.ID, at.Add(-slot), at.Add(slot))
	if err != nil {
		return err
	}
	if len(taken) > 0 {
		return domain.ErrSlotTaken
	}
	return nil
}

// Confirm moves a PENDING appointment to CONFIRMED
func (s *AppointmentService) Confirm(id uint) (*models.Appointment, error) {
	return s.setStatus(id, models.AppointmentConfirmed, []string{models.AppointmentPending})
}

// Cancel cancels a PENDING or CONFIRMED appointment
func (s *AppointmentService) Cancel(id uint) (*models.Appointment, error) {
	return s.setStatus(id, models.AppointmentCancelled,
		[]string{models.AppointmentPending, models.AppointmentConfirmed})
}

func (s *AppointmentService) setStatus(id uint, status string, allowedFrom []string) (*models.Appointment, error) {
	appointment, err := s.appointments.GetByID(id)
	if err != nil {
		return nil, err
	}
	if appointment == nil {
		return nil, domain.ErrAppointmentNotFound
	}

	allowed := false
	for _, from := range allowedFrom {
		if appointment.Status == from {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, domain.ErrAppointmentClosed
	}

	if err := s.appointments.UpdateStatus(id, status); err != nil {
		return nil, err
	}
	appointment.Status = status
	return appointment, nil
}

// Get returns one appointment
func (s *AppointmentService) Get(id uint) (*models.Appointment, error) {
	appointment, err := s.appointments.GetByID(id)
	if err != nil {
		return nil, err
	}
	if appointment == nil {
		return nil, domain.ErrAppointmentNotFound
	}
	return appointment, nil
}

// ListByPatient returns a patient's appointments, newest first
func (s *AppointmentService) ListByPatient(patientID uint) ([]models.Appointment, error) {
	return s.appointments.ListByPatient(patientID)
}
