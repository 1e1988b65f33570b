package models

import (
	"time"

	"gorm.io/gorm"
)

// ============================================================
// Tenancy: Hospital / Department / Doctor / Patient
// ============================================================

// Booking modes
const (
	BookingTokenOnly    = "TOKEN_ONLY"
	BookingTimeSlotOnly = "TIME_SLOT_ONLY"
	BookingBoth         = "BOTH"
)

// Token reset frequencies
const (
	ResetDaily   = "DAILY"
	ResetWeekly  = "WEEKLY"
	ResetMonthly = "MONTHLY"
	ResetNever   = "NEVER"
)

// Doctor statuses
const (
	DoctorActive   = "ACTIVE"
	DoctorOnLeave  = "ON_LEAVE"
	DoctorInactive = "INACTIVE"
)

// Hospital represents one clinic tenant
type Hospital struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Code      string         `gorm:"size:20;uniqueIndex;not null" json:"code"`
	Name      string         `gorm:"size:100;not null" json:"name"`
	Timezone  string         `gorm:"size:50;default:'Asia/Bangkok'" json:"timezone"`
	Address   *string        `gorm:"size:255" json:"address"`
	Phone     *string        `gorm:"size:20" json:"phone"`
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Hospital) TableName() string {
	return "hospitals"
}

// HospitalConfig holds hospital-wide scheduling policy (one row per hospital)
type HospitalConfig struct {
	ID                  uint      `gorm:"primaryKey" json:"id"`
	HospitalID          uint      `gorm:"uniqueIndex;not null" json:"hospital_id"`
	BookingMode         string    `gorm:"size:20;default:'BOTH'" json:"booking_mode"`
	ConsultationMinutes int       `gorm:"default:15" json:"consultation_minutes"`
	BufferMinutes       int       `gorm:"default:5" json:"buffer_minutes"`
	ArrivalWindowMins   int       `gorm:"default:15" json:"arrival_window_mins"`
	NoShowGraceMins     int       `gorm:"default:30" json:"no_show_grace_mins"`
	TokenResetFrequency string    `gorm:"size:10;default:'DAILY'" json:"token_reset_frequency"`
	AutoReassignOnLeave bool      `gorm:"default:false" json:"auto_reassign_on_leave"`
	MaxQueueLength      *int      `json:"max_queue_length"`
	CreatedAt           time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time `gorm:"autoUpdateTime" json:"updated_at"`
	Hospital            Hospital  `gorm:"foreignKey:HospitalID" json:"hospital,omitempty"`

	BusinessHours []BusinessHour `gorm:"foreignKey:HospitalConfigID" json:"business_hours,omitempty"`
}

func (HospitalConfig) TableName() string {
	return "hospital_configs"
}

// BusinessHour is one weekday row of the hospital's weekly hours table
type BusinessHour struct {
	ID               uint   `gorm:"primaryKey" json:"id"`
	HospitalConfigID uint   `gorm:"not null;index:idx_bh_config_day,unique" json:"hospital_config_id"`
	Weekday          int    `gorm:"not null;index:idx_bh_config_day,unique" json:"weekday"` // 0 = Sunday
	IsOpen           bool   `gorm:"default:true" json:"is_open"`
	OpenTime         string `gorm:"size:10;default:'08:00'" json:"open_time"`
	CloseTime        string `gorm:"size:10;default:'17:00'" json:"close_time"`
}

func (BusinessHour) TableName() string {
	return "business_hours"
}

// Department represents a clinical department inside a hospital
type Department struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	HospitalID uint           `gorm:"not null;index:idx_dept_hospital_code,unique" json:"hospital_id"`
	Code       string         `gorm:"size:20;not null;index:idx_dept_hospital_code,unique" json:"code"`
	Name       string         `gorm:"size:100;not null" json:"name"`
	IsActive   bool           `gorm:"default:true" json:"is_active"`
	CreatedAt  time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
	Hospital   Hospital       `gorm:"foreignKey:HospitalID" json:"hospital,omitempty"`
}

func (Department) TableName() string {
	return "departments"
}

// DepartmentConfig overrides a subset of HospitalConfig per department.
// Nil fields defer to the hospital value.
type DepartmentConfig struct {
	ID                  uint       `gorm:"primaryKey" json:"id"`
	HospitalID          uint       `gorm:"not null;index:idx_dc_hospital_dept,unique" json:"hospital_id"`
	DepartmentID        uint       `gorm:"not null;index:idx_dc_hospital_dept,unique" json:"department_id"`
	BookingMode         *string    `gorm:"size:20" json:"booking_mode"`
	ConsultationMinutes *int       `json:"consultation_minutes"`
	BufferMinutes       *int       `json:"buffer_minutes"`
	ArrivalWindowMins   *int       `json:"arrival_window_mins"`
	NoShowGraceMins     *int       `json:"no_show_grace_mins"`
	TokenResetFrequency *string    `gorm:"size:10" json:"token_reset_frequency"`
	MaxQueueLength      *int       `json:"max_queue_length"`
	TokenPrefix         *string    `gorm:"size:10" json:"token_prefix"`
	CreatedAt           time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	Department          Department `gorm:"foreignKey:DepartmentID" json:"department,omitempty"`
}

func (DepartmentConfig) TableName() string {
	return "department_configs"
}

// Doctor belongs to exactly one hospital and one department
type Doctor struct {
	ID                  uint           `gorm:"primaryKey" json:"id"`
	HospitalID          uint           `gorm:"not null;index" json:"hospital_id"`
	DepartmentID        uint           `gorm:"not null;index" json:"department_id"`
	FullName            string         `gorm:"size:100;not null" json:"full_name"`
	Status              string         `gorm:"size:10;default:'ACTIVE';index" json:"status"`
	ConsultationMinutes *int           `json:"consultation_minutes"`
	DailyPatientLimit   *int           `json:"daily_patient_limit"`
	CreatedAt           time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt           gorm.DeletedAt `gorm:"index" json:"-"`
	Hospital            Hospital       `gorm:"foreignKey:HospitalID" json:"hospital,omitempty"`
	Department          Department     `gorm:"foreignKey:DepartmentID" json:"department,omitempty"`
}

func (Doctor) TableName() string {
	return "doctors"
}

// Patient represents a registered patient
type Patient struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	HospitalID uint           `gorm:"not null;index" json:"hospital_id"`
	MRN        string         `gorm:"size:30;uniqueIndex;not null" json:"mrn"`
	FullName   string         `gorm:"size:100;not null" json:"full_name"`
	Phone      *string        `gorm:"size:20" json:"phone"`
	CreatedAt  time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Patient) TableName() string {
	return "patients"
}

// ============================================================
// Staff accounts
// ============================================================

// Staff roles
const (
	StaffRoleReception = "RECEPTION"
	StaffRoleDoctor    = "DOCTOR"
	StaffRoleAdmin     = "ADMIN"
)

// Staff is a reception/doctor/admin login account scoped to one hospital.
// Doctor accounts may link to their Doctor row via DoctorID.
type Staff struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	HospitalID uint           `gorm:"not null;index" json:"hospital_id"`
	Username   string         `gorm:"size:50;uniqueIndex;not null" json:"username"`
	Email      string         `gorm:"size:100;uniqueIndex;not null" json:"email"`
	Password   string         `gorm:"size:255;not null" json:"-"`
	FullName   string         `gorm:"size:100" json:"full_name"`
	Role       string         `gorm:"size:10;default:'RECEPTION'" json:"role"`
	DoctorID   *uint          `gorm:"index" json:"doctor_id"`
	IsActive   bool           `gorm:"default:true" json:"is_active"`
	CreatedAt  time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Staff) TableName() string {
	return "staff"
}

// StaffResponse is the staff view without credentials
type StaffResponse struct {
	ID         uint      `json:"id"`
	HospitalID uint      `json:"hospital_id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	FullName   string    `json:"full_name"`
	Role       string    `json:"role"`
	DoctorID   *uint     `json:"doctor_id,omitempty"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
}

// ToResponse converts a Staff to its response form
func (s *Staff) ToResponse() *StaffResponse {
	return &StaffResponse{
		ID:         s.ID,
		HospitalID: s.HospitalID,
		Username:   s.Username,
		Email:      s.Email,
		FullName:   s.FullName,
		Role:       s.Role,
		DoctorID:   s.DoctorID,
		IsActive:   s.IsActive,
		CreatedAt:  s.CreatedAt,
	}
}

// ============================================================
// Appointments
// ============================================================

// Appointment statuses
const (
	AppointmentPending   = "PENDING"
	AppointmentConfirmed = "CONFIRMED"
	AppointmentCheckedIn = "CHECKED_IN"
	AppointmentCancelled = "CANCELLED"
	AppointmentNoShow    = "NO_SHOW"
	AppointmentCompleted = "COMPLETED"
)

// Appointment booking types
const (
	BookingOnline = "ONLINE"
	BookingWalkIn = "WALK_IN"
)

// Appointment represents a scheduled future booking
type Appointment struct {
	ID           uint        `gorm:"primaryKey" json:"id"`
	HospitalID   uint        `gorm:"not null;index" json:"hospital_id"`
	PatientID    uint        `gorm:"not null;index" json:"patient_id"`
	DepartmentID *uint       `gorm:"index" json:"department_id"`
	DoctorID     *uint       `gorm:"index" json:"doctor_id"`
	ScheduledAt  time.Time   `gorm:"not null;index" json:"scheduled_at"`
	Status       string      `gorm:"size:15;default:'PENDING';index" json:"status"`
	BookingType  string      `gorm:"size:10;default:'ONLINE'" json:"booking_type"`
	Note         string      `gorm:"size:255" json:"note"`
	CreatedAt    time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
	Patient      Patient     `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
	Doctor       *Doctor     `gorm:"foreignKey:DoctorID" json:"doctor,omitempty"`
	Department   *Department `gorm:"foreignKey:DepartmentID" json:"department,omitempty"`
}

func (Appointment) TableName() string {
	return "appointments"
}
