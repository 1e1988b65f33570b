package services

import (
	"time"

	"clinicq/internal/adapters/persistence/models"
)

// Repository interfaces consumed by the core services. Concrete gorm
// implementations live in internal/adapters/persistence/repositories;
// tests substitute in-memory fakes.

// ConfigRepository reads tenant configuration rows
type ConfigRepository interface {
	GetHospitalByID(id uint) (*models.Hospital, error)
	ListHospitals() ([]models.Hospital, error)
	GetHospitalConfig(hospitalID uint) (*models.HospitalConfig, error)
	UpdateHospitalConfig(cfg *models.HospitalConfig) error
	GetDepartmentByID(id uint) (*models.Department, error)
	// GetDepartmentConfig returns (nil, nil) when no override row exists.
	GetDepartmentConfig(hospitalID, departmentID uint) (*models.DepartmentConfig, error)
	UpsertDepartmentConfig(cfg *models.DepartmentConfig) error
	GetDoctorByID(id uint) (*models.Doctor, error)
	UpdateDoctorStatus(doctorID uint, status string) error
	GetPatientByID(id uint) (*models.Patient, error)
}

// VisitRepository reads and writes live queue entries
type VisitRepository interface {
	Create(visit *models.Visit) error
	GetByID(id uint) (*models.Visit, error)
	GetByTokenCode(hospitalID uint, tokenCode string, since time.Time) (*models.Visit, error)
	// GetActiveByPatientAndDoctor returns (nil, nil) when the patient has no
	// non-terminal visit with the doctor.
	GetActiveByPatientAndDoctor(patientID, doctorID uint) (*models.Visit, error)
	GetActiveByPatientInDepartment(patientID, departmentID uint) (*models.Visit, error)
	// GetInProgressByDoctor returns (nil, nil) when no visit is in progress.
	GetInProgressByDoctor(doctorID uint) (*models.Visit, error)
	ListQueueByDoctor(doctorID uint) ([]models.Visit, error)
	ListQueueByDepartment(departmentID uint) ([]models.Visit, error)
	ListActiveByDoctor(doctorID uint) ([]models.Visit, error)
	ListUnresolvedByHospital(hospitalID uint, checkedInBefore time.Time) ([]models.Visit, error)
	CountQueueByDoctor(doctorID uint) (int64, error)
	CountQueueByDepartment(departmentID uint) (int64, error)
	CountTodayByDoctor(doctorID uint, dayStart time.Time) (int64, error)
	Update(visit *models.Visit) error
	// ReplaceWithCarryover marks the old visit terminal and creates its
	// carryover successor in one transaction.
	ReplaceWithCarryover(old *models.Visit, successor *models.Visit) error
}

// TokenRepository owns the durable per-scope token counters
type TokenRepository interface {
	// Allocate returns the next token number for the scope, resetting the
	// sequence to 1 when periodStart advances past the stored period.
	Allocate(scopeKey string, periodStart time.Time) (int, error)
	// Peek returns the last allocated number without consuming one.
	Peek(scopeKey string) (int, error)
}

// HistoryRepository owns the append-only visit history
type HistoryRepository interface {
	// Create is idempotent on visit id: inserting a second record for the
	// same visit is a no-op.
	Create(record *models.VisitHistory) error
	ExistsForVisit(visitID uint) (bool, error)
	List(hospitalID uint, doctorID *uint, from, to time.Time, page, limit int) ([]models.VisitHistory, int64, error)
}

// AppointmentRepository reads and writes scheduled bookings
type AppointmentRepository interface {
	Create(appointment *models.Appointment) error
	GetByID(id uint) (*models.Appointment, error)
	ListByPatient(patientID uint) ([]models.Appointment, error)
	// ListOpenByDoctorBetween returns PENDING/CONFIRMED appointments whose
	// scheduled time lies strictly inside (from, to).
	ListOpenByDoctorBetween(doctorID uint, from, to time.Time) ([]models.Appointment, error)
	UpdateStatus(id uint, status string) error
	ListOverdue(cutoff time.Time) ([]models.Appointment, error)
}

// ============================================================
// Event publishing
// ============================================================

// QueueEntry is one row of a published queue snapshot
type QueueEntry struct {
	VisitID       uint   `json:"visit_id"`
	TokenNumber   int    `json:"token_number"`
	TokenCode     string `json:"token_code"`
	PatientName   string `json:"patient_name"`
	Priority      string `json:"priority"`
	IsCarryover   bool   `json:"is_carryover"`
	OnHold        bool   `json:"on_hold"`
	EstimatedMins int    `json:"estimated_mins"`
}

// QueueEvent is the immutable change notification emitted after every
// successful mutation, carrying the recomputed queue snapshot for its scope.
type QueueEvent struct {
	ID           string       `json:"id"`
	Action       string       `json:"action"`
	HospitalID   uint         `json:"hospital_id"`
	DepartmentID uint         `json:"department_id"`
	DoctorID     *uint        `json:"doctor_id"`
	VisitID      uint         `json:"visit_id"`
	TokenCode    string       `json:"token_code"`
	Status       string       `json:"status"`
	Queue        []QueueEntry `json:"queue"`
	At           time.Time    `json:"at"`
}

// EventPublisher delivers queue change events to connected clients. The
// engine publishes synchronously before an operation reports success; the
// transport behind the publisher is not the engine's concern.
type EventPublisher interface {
	Publish(event QueueEvent)
}

// NopPublisher discards events (used by tests and batch jobs)
type NopPublisher struct{}

// Publish implements EventPublisher
func (NopPublisher) Publish(QueueEvent) {}
