package models

import (
	"time"
)

// ============================================================
// Live queue: Visit / VisitHistory / TokenSequence
// ============================================================

// Visit statuses
const (
	VisitWaiting    = "WAITING"
	VisitInProgress = "IN_PROGRESS"
	VisitOnHold     = "ON_HOLD"
	VisitCompleted  = "COMPLETED"
	VisitCancelled  = "CANCELLED"
	VisitNoShow     = "NO_SHOW"
	VisitSkipped    = "SKIPPED"
	VisitCarryover  = "CARRYOVER"
)

// Visit priorities
const (
	PriorityNormal = "NORMAL"
	PriorityVIP    = "VIP"
	PriorityUrgent = "URGENT"
)

// TerminalStatuses are the statuses a visit can never leave
var TerminalStatuses = []string{VisitCompleted, VisitCancelled, VisitNoShow, VisitSkipped, VisitCarryover}

// ActiveStatuses are the statuses that count as a live queue entry
var ActiveStatuses = []string{VisitWaiting, VisitInProgress, VisitOnHold}

// IsTerminalStatus reports whether status permits no further transitions
func IsTerminalStatus(status string) bool {
	for _, s := range TerminalStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// PriorityRank maps priority to its ordering weight (higher is served first)
func PriorityRank(priority string) int {
	switch priority {
	case PriorityUrgent:
		return 2
	case PriorityVIP:
		return 1
	default:
		return 0
	}
}

// Visit is the live queue entry for one patient at one doctor/department
type Visit struct {
	ID            uint        `gorm:"primaryKey" json:"id"`
	HospitalID    uint        `gorm:"not null;index" json:"hospital_id"`
	PatientID     uint        `gorm:"not null;index" json:"patient_id"`
	DepartmentID  uint        `gorm:"not null;index" json:"department_id"`
	DoctorID      *uint       `gorm:"index" json:"doctor_id"`
	AppointmentID *uint       `gorm:"index" json:"appointment_id"`
	TokenNumber   int         `gorm:"not null" json:"token_number"`
	TokenCode     string      `gorm:"size:20;not null;index" json:"token_code"`
	Status        string      `gorm:"size:15;default:'WAITING';index" json:"status"`
	Priority      string      `gorm:"size:10;default:'NORMAL'" json:"priority"`
	IsCarryover   bool        `gorm:"default:false" json:"is_carryover"`
	CheckedInAt   time.Time   `gorm:"not null" json:"checked_in_at"`
	StartedAt     *time.Time  `json:"started_at"`
	CompletedAt   *time.Time  `json:"completed_at"`
	EstimatedWait int         `gorm:"default:0" json:"estimated_wait_mins"`
	Notes         string      `gorm:"size:500" json:"notes"`
	CreatedAt     time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
	Patient       Patient     `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
	Doctor        *Doctor     `gorm:"foreignKey:DoctorID" json:"doctor,omitempty"`
	Department    Department  `gorm:"foreignKey:DepartmentID" json:"department,omitempty"`
	Appointment   *Appointment `gorm:"foreignKey:AppointmentID" json:"appointment,omitempty"`
}

func (Visit) TableName() string {
	return "visits"
}

// IsActive reports whether the visit still participates in the live queue
func (v *Visit) IsActive() bool {
	return !IsTerminalStatus(v.Status)
}

// VisitHistory is the immutable snapshot written once a visit reaches a
// terminal status. Never updated after insertion.
type VisitHistory struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	VisitID          uint       `gorm:"uniqueIndex;not null" json:"visit_id"`
	HospitalID       uint       `gorm:"not null;index" json:"hospital_id"`
	PatientID        uint       `gorm:"not null;index" json:"patient_id"`
	DepartmentID     uint       `gorm:"not null;index" json:"department_id"`
	DoctorID         *uint      `gorm:"index" json:"doctor_id"`
	TokenNumber      int        `gorm:"not null" json:"token_number"`
	TokenCode        string     `gorm:"size:20;not null" json:"token_code"`
	FinalStatus      string     `gorm:"size:15;not null" json:"final_status"`
	Priority         string     `gorm:"size:10" json:"priority"`
	IsCarryover      bool       `json:"is_carryover"`
	CheckedInAt      time.Time  `json:"checked_in_at"`
	StartedAt        *time.Time `json:"started_at"`
	CompletedAt      *time.Time `json:"completed_at"`
	ActualWaitMins   int        `json:"actual_wait_mins"`
	ActualConsultMins int       `json:"actual_consult_mins"`
	Notes            string     `gorm:"size:500" json:"notes"`
	ArchivedAt       time.Time  `gorm:"autoCreateTime" json:"archived_at"`
}

func (VisitHistory) TableName() string {
	return "visit_histories"
}

// TokenSequence is the durable per-scope token counter.
// ScopeKey = "hospital:department:doctor" (doctor 0 for department-level scopes).
type TokenSequence struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ScopeKey    string    `gorm:"size:60;uniqueIndex;not null" json:"scope_key"`
	PeriodStart time.Time `gorm:"not null" json:"period_start"`
	LastNumber  int       `gorm:"default:0" json:"last_number"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (TokenSequence) TableName() string {
	return "token_sequences"
}
