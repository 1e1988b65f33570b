package repositories

import (
	"time"

	"clinicq/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// AppointmentRepository handles scheduled booking database operations
type AppointmentRepository struct {
	db *gorm.DB
}

// NewAppointmentRepository creates a new appointment repository
func NewAppointmentRepository(db *gorm.DB) *AppointmentRepository {
	return &AppointmentRepository{db: db}
}

// Create inserts a new appointment
func (r *AppointmentRepository) Create(appointment *models.Appointment) error {
	return r.db.Create(appointment).Error
}

// GetByID returns an appointment by ID with relations
func (r *AppointmentRepository) GetByID(id uint) (*models.Appointment, error) {
	var appointment models.Appointment
	err := r.db.
		Preload("Patient").
		Preload("Doctor").
		Preload("Department").
		First(&appointment, id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	return &appointment, err
}

// ListByPatient returns a patient's appointments, newest first
func (r *AppointmentRepository) ListByPatient(patientID uint) ([]models.Appointment, error) {
	var appointments []models.Appointment
	err := r.db.
		Preload("Doctor").
		Preload("Department").
		Where("patient_id = ?", patientID).
		Order("scheduled_at DESC").
		Find(&appointments).Error
	return appointments, err
}

// ListOpenByDoctorBetween returns open appointments for a doctor scheduled
// strictly inside (from, to), used for slot collision checks
func (r *AppointmentRepository) ListOpenByDoctorBetween(doctorID uint, from, to time.Time) ([]models.Appointment, error) {
	var appointments []models.Appointment
	err := r.db.
		Where("doctor_id = ? AND scheduled_at > ? AND scheduled_at < ? AND status IN ?",
			doctorID, from, to,
			[]string{models.AppointmentPending, models.AppointmentConfirmed}).
		Order("scheduled_at ASC").
		Find(&appointments).Error
	return appointments, err
}

// UpdateStatus updates an appointment's status
func (r *AppointmentRepository) UpdateStatus(id uint, status string) error {
	return r.db.Model(&models.Appointment{}).Where("id = ?", id).Update("status", status).Error
}

// ListOverdue returns open appointments whose scheduled time passed the cutoff
// (no-show sweep)
func (r *AppointmentRepository) ListOverdue(cutoff time.Time) ([]models.Appointment, error) {
	var appointments []models.Appointment
	err := r.db.
		Where("scheduled_at < ? AND status IN ?", cutoff,
			[]string{models.AppointmentPending, models.AppointmentConfirmed}).
		Find(&appointments).Error
	return appointments, err
}
