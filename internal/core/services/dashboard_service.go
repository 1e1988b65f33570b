package services

import (
	"context"
	"time"

	"clinicq/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// DashboardService aggregates live queue and history statistics straight
// from the database. Read-only; the queue engine owns all writes.
type DashboardService struct {
	db *gorm.DB
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(db *gorm.DB) *DashboardService {
	return &DashboardService{db: db}
}

// ============================================================
// Hospital Dashboard
// ============================================================

// HospitalDashboardData represents hospital-wide dashboard data
type HospitalDashboardData struct {
	// Tenant totals
	TotalPatients  int64 `json:"total_patients"`
	TotalDoctors   int64 `json:"total_doctors"`
	DoctorsOnLeave int64 `json:"doctors_on_leave"`

	// Live queue state
	WaitingVisits    int64 `json:"waiting_visits"`
	InProgressVisits int64 `json:"in_progress_visits"`
	OnHoldVisits     int64 `json:"on_hold_visits"`
	CarryoverWaiting int64 `json:"carryover_waiting"`

	// Today's outcomes
	CompletedToday int64   `json:"completed_today"`
	NoShowsToday   int64   `json:"no_shows_today"`
	CancelledToday int64   `json:"cancelled_today"`
	AvgWaitMins    float64 `json:"avg_wait_mins"`
	AvgConsultMins float64 `json:"avg_consult_mins"`

	AppointmentsToday int64 `json:"appointments_today"`

	// Breakdown
	DepartmentLoads  []DepartmentLoad   `json:"department_loads"`
	DoctorThroughput []DoctorThroughput `json:"doctor_throughput"`
}

// DepartmentLoad represents one department's live queue load
type DepartmentLoad struct {
	DepartmentID uint   `json:"department_id"`
	Name         string `json:"name"`
	Waiting      int64  `json:"waiting"`
	InProgress   int64  `json:"in_progress"`
	OnHold       int64  `json:"on_hold"`
}

// DoctorThroughput represents one doctor's archived outcomes for today
type DoctorThroughput struct {
	DoctorID       uint    `json:"doctor_id"`
	FullName       string  `json:"full_name"`
	Completed      int64   `json:"completed"`
	NoShows        int64   `json:"no_shows"`
	AvgConsultMins float64 `json:"avg_consult_mins"`
}

// GetHospitalDashboard returns hospital-wide dashboard data
func (s *DashboardService) GetHospitalDashboard(ctx context.Context, hospitalID uint) (*HospitalDashboardData, error) {
	data := &HospitalDashboardData{}
	dayStart := s.hospitalDayStart(ctx, hospitalID)

	// Tenant totals
	s.db.WithContext(ctx).Table("patients").
		Where("hospital_id = ? AND deleted_at IS NULL", hospitalID).
		Count(&data.TotalPatients)
	s.db.WithContext(ctx).Table("doctors").
		Where("hospital_id = ? AND deleted_at IS NULL", hospitalID).
		Count(&data.TotalDoctors)
	s.db.WithContext(ctx).Table("doctors").
		Where("hospital_id = ? AND status = ? AND deleted_at IS NULL", hospitalID, models.DoctorOnLeave).
		Count(&data.DoctorsOnLeave)

	// Live queue state
	s.db.WithContext(ctx).Table("visits").
		Where("hospital_id = ? AND status = ?", hospitalID, models.VisitWaiting).
		Count(&data.WaitingVisits)
	s.db.WithContext(ctx).Table("visits").
		Where("hospital_id = ? AND status = ?", hospitalID, models.VisitInProgress).
		Count(&data.InProgressVisits)
	s.db.WithContext(ctx).Table("visits").
		Where("hospital_id = ? AND status = ?", hospitalID, models.VisitOnHold).
		Count(&data.OnHoldVisits)
	s.db.WithContext(ctx).Table("visits").
		Where("hospital_id = ? AND status = ? AND is_carryover = ?", hospitalID, models.VisitWaiting, true).
		Count(&data.CarryoverWaiting)

	// Today's archived outcomes
	s.db.WithContext(ctx).Table("visit_histories").
		Where("hospital_id = ? AND final_status = ? AND archived_at >= ?", hospitalID, models.VisitCompleted, dayStart).
		Count(&data.CompletedToday)
	s.db.WithContext(ctx).Table("visit_histories").
		Where("hospital_id = ? AND final_status = ? AND archived_at >= ?", hospitalID, models.VisitNoShow, dayStart).
		Count(&data.NoShowsToday)
	s.db.WithContext(ctx).Table("visit_histories").
		Where("hospital_id = ? AND final_status = ? AND archived_at >= ?", hospitalID, models.VisitCancelled, dayStart).
		Count(&data.CancelledToday)

	s.db.WithContext(ctx).Table("visit_histories").
		Where("hospital_id = ? AND final_status = ? AND archived_at >= ?", hospitalID, models.VisitCompleted, dayStart).
		Select("COALESCE(AVG(actual_wait_mins), 0)").
		Scan(&data.AvgWaitMins)
	s.db.WithContext(ctx).Table("visit_histories").
		Where("hospital_id = ? AND final_status = ? AND archived_at >= ?", hospitalID, models.VisitCompleted, dayStart).
		Select("COALESCE(AVG(actual_consult_mins), 0)").
		Scan(&data.AvgConsultMins)

	s.db.WithContext(ctx).Table("appointments").
		Where("hospital_id = ? AND scheduled_at >= ? AND scheduled_at < ?", hospitalID, dayStart, dayStart.AddDate(0, 0, 1)).
		Count(&data.AppointmentsToday)

	// Per-department live load
	var loads []struct {
		DepartmentID uint
		Name         string
		Waiting      int64
		InProgress   int64
		OnHold       int64
	}
	s.db.WithContext(ctx).Table("departments").
		Select(`
			departments.id as department_id,
			departments.name,
			SUM(CASE WHEN visits.status = 'WAITING' THEN 1 ELSE 0 END) as waiting,
			SUM(CASE WHEN visits.status = 'IN_PROGRESS' THEN 1 ELSE 0 END) as in_progress,
			SUM(CASE WHEN visits.status = 'ON_HOLD' THEN 1 ELSE 0 END) as on_hold
		`).
		Joins("LEFT JOIN visits ON visits.department_id = departments.id").
		Where("departments.hospital_id = ? AND departments.deleted_at IS NULL", hospitalID).
		Group("departments.id, departments.name").
		Order("departments.id ASC").
		Scan(&loads)

	data.DepartmentLoads = make([]DepartmentLoad, len(loads))
	for i, l := range loads {
		data.DepartmentLoads[i] = DepartmentLoad{
			DepartmentID: l.DepartmentID,
			Name:         l.Name,
			Waiting:      l.Waiting,
			InProgress:   l.InProgress,
			OnHold:       l.OnHold,
		}
	}

	// Per-doctor throughput today
	var throughput []struct {
		DoctorID       uint
		FullName       string
		Completed      int64
		NoShows        int64
		AvgConsultMins float64
	}
	s.db.WithContext(ctx).Table("visit_histories").
		Select(`
			visit_histories.doctor_id,
			doctors.full_name,
			SUM(CASE WHEN visit_histories.final_status = 'COMPLETED' THEN 1 ELSE 0 END) as completed,
			SUM(CASE WHEN visit_histories.final_status = 'NO_SHOW' THEN 1 ELSE 0 END) as no_shows,
			COALESCE(AVG(CASE WHEN visit_histories.final_status = 'COMPLETED' THEN visit_histories.actual_consult_mins END), 0) as avg_consult_mins
		`).
		Joins("JOIN doctors ON visit_histories.doctor_id = doctors.id").
		Where("visit_histories.hospital_id = ? AND visit_histories.archived_at >= ? AND visit_histories.doctor_id IS NOT NULL", hospitalID, dayStart).
		Group("visit_histories.doctor_id, doctors.full_name").
		Order("completed DESC").
		Limit(10).
		Scan(&throughput)

	data.DoctorThroughput = make([]DoctorThroughput, len(throughput))
	for i, t := range throughput {
		data.DoctorThroughput[i] = DoctorThroughput{
			DoctorID:       t.DoctorID,
			FullName:       t.FullName,
			Completed:      t.Completed,
			NoShows:        t.NoShows,
			AvgConsultMins: t.AvgConsultMins,
		}
	}

	return data, nil
}

// ============================================================
// Doctor Dashboard
// ============================================================

// DoctorDashboardData represents one doctor's console dashboard
type DoctorDashboardData struct {
	Waiting        int64   `json:"waiting"`
	OnHold         int64   `json:"on_hold"`
	CompletedToday int64   `json:"completed_today"`
	NoShowsToday   int64   `json:"no_shows_today"`
	AvgConsultMins float64 `json:"avg_consult_mins"`

	TodayAppointments []AppointmentBrief `json:"today_appointments"`
}

// AppointmentBrief represents one upcoming appointment row
type AppointmentBrief struct {
	ID          uint      `json:"id"`
	PatientName string    `json:"patient_name"`
	ScheduledAt time.Time `json:"scheduled_at"`
	Status      string    `json:"status"`
}

// GetDoctorDashboard returns one doctor's dashboard data
func (s *DashboardService) GetDoctorDashboard(ctx context.Context, doctorID uint) (*DoctorDashboardData, error) {
	data := &DoctorDashboardData{}

	var hospitalID uint
	s.db.WithContext(ctx).Table("doctors").
		Where("id = ?", doctorID).
		Select("hospital_id").
		Scan(&hospitalID)
	dayStart := s.hospitalDayStart(ctx, hospitalID)

	s.db.WithContext(ctx).Table("visits").
		Where("doctor_id = ? AND status = ?", doctorID, models.VisitWaiting).
		Count(&data.Waiting)
	s.db.WithContext(ctx).Table("visits").
		Where("doctor_id = ? AND status = ?", doctorID, models.VisitOnHold).
		Count(&data.OnHold)

	s.db.WithContext(ctx).Table("visit_histories").
		Where("doctor_id = ? AND final_status = ? AND archived_at >= ?", doctorID, models.VisitCompleted, dayStart).
		Count(&data.CompletedToday)
	s.db.WithContext(ctx).Table("visit_histories").
		Where("doctor_id = ? AND final_status = ? AND archived_at >= ?", doctorID, models.VisitNoShow, dayStart).
		Count(&data.NoShowsToday)
	s.db.WithContext(ctx).Table("visit_histories").
		Where("doctor_id = ? AND final_status = ? AND archived_at >= ?", doctorID, models.VisitCompleted, dayStart).
		Select("COALESCE(AVG(actual_consult_mins), 0)").
		Scan(&data.AvgConsultMins)

	var appts []struct {
		ID          uint
		PatientName string
		ScheduledAt time.Time
		Status      string
	}
	s.db.WithContext(ctx).Table("appointments").
		Select("appointments.id, patients.full_name as patient_name, appointments.scheduled_at, appointments.status").
		Joins("JOIN patients ON appointments.patient_id = patients.id").
		Where("appointments.doctor_id = ? AND appointments.scheduled_at >= ? AND appointments.scheduled_at < ? AND appointments.status IN ?",
			doctorID, dayStart, dayStart.AddDate(0, 0, 1),
			[]string{models.AppointmentPending, models.AppointmentConfirmed}).
		Order("appointments.scheduled_at ASC").
		Scan(&appts)

	data.TodayAppointments = make([]AppointmentBrief, len(appts))
	for i, a := range appts {
		data.TodayAppointments[i] = AppointmentBrief{
			ID:          a.ID,
			PatientName: a.PatientName,
			ScheduledAt: a.ScheduledAt,
			Status:      a.Status,
		}
	}

	return data, nil
}

// hospitalDayStart returns midnight of the current day in the hospital's
// local timezone, falling back to UTC when the timezone is unset or invalid
func (s *DashboardService) hospitalDayStart(ctx context.Context, hospitalID uint) time.Time {
	var tz string
	s.db.WithContext(ctx).Table("hospitals").
		Where("id = ?", hospitalID).
		Select("timezone").
		Scan(&tz)

	loc, err := time.LoadLocation(tz)
	if err != nil || tz == "" {
		loc = time.UTC
	}
	now := time.Now().In(loc)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
}
