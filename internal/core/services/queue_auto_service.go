package services

import (
	"log"
	"time"

	"clinicq/internal/adapters/persistence/models"

	"github.com/robfig/cron/v3"
)

// QueueAutoService runs the scheduled maintenance jobs: end-of-day carryover
// of unresolved visits and the overdue-appointment no-show sweep
type QueueAutoService struct {
	queue        *QueueService
	configs      ConfigRepository
	appointments AppointmentRepository
	policy       *PolicyService
	cron         *cron.Cron
	now          func() time.Time
}

// NewQueueAutoService creates a new auto service
func NewQueueAutoService(
	queue *QueueService,
	configs ConfigRepository,
	appointments AppointmentRepository,
	policy *PolicyService,
) *QueueAutoService {
	return &QueueAutoService{
		queue:        queue,
		configs:      configs,
		appointments: appointments,
		policy:       policy,
		cron:         cron.New(),
		now:          time.Now,
	}
}

// Start registers and launches the cron jobs
func (s *QueueAutoService) Start() error {
	// Hospitals run in their own time zones, so the carryover job fires
	// hourly and only acts on hospitals whose local midnight just passed
	if _, err := s.cron.AddFunc("5 * * * *", s.runCarryover); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc("*/10 * * * *", s.sweepOverdueAppointments); err != nil {
		return err
	}

	s.cron.Start()
	log.Println("🚀 QueueAutoService started")
	return nil
}

// Stop gracefully stops the cron scheduler
func (s *QueueAutoService) Stop() {
	s.cron.Stop()
	log.Println("🛑 QueueAutoService stopped")
}

// runCarryover rolls unresolved visits of every hospital in its local
// midnight hour into the next day's queue
func (s *QueueAutoService) runCarryover() {
	hospitals, err := s.configs.ListHospitals()
	if err != nil {
		log.Printf("❌ Carryover hospital list error: %v", err)
		return
	}

	for _, hospital := range hospitals {
		loc, err := time.LoadLocation(hospital.Timezone)
		if err != nil {
			log.Printf("⚠️ Hospital %d has invalid timezone %q, skipping carryover", hospital.ID, hospital.Timezone)
			continue
		}
		if s.now().In(loc).Hour() != 0 {
			continue
		}

		carried, err := s.queue.CarryOverDay(hospital.ID)
		if err != nil {
			log.Printf("❌ Carryover error (hospital=%d): %v", hospital.ID, err)
			continue
		}
		if carried > 0 {
			log.Printf("🌙 End-of-day carryover done (hospital=%d, visits=%d)", hospital.ID, carried)
		}
	}
}

// sweepOverdueAppointments marks appointments whose arrival window plus
// grace period has fully elapsed without a check-in as NO_SHOW
func (s *QueueAutoService) sweepOverdueAppointments() {
	now := s.now()
	overdue, err := s.appointments.ListOverdue(now)
	if err != nil {
		log.Printf("❌ No-show sweep query error: %v", err)
		return
	}

	swept := 0
	for _, appt := range overdue {
		departmentID := uint(0)
		if appt.DepartmentID != nil {
			departmentID = *appt.DepartmentID
		}
		policy, err := s.policy.Resolve(appt.HospitalID, departmentID)
		if err != nil {
			log.Printf("⚠️ No-show sweep policy error (appointment=%d): %v", appt.ID, err)
			continue
		}

		deadline := appt.ScheduledAt.
			Add(time.Duration(policy.ArrivalWindowMins) * time.Minute).
			Add(time.Duration(policy.NoShowGraceMins) * time.Minute)
		if now.Before(deadline) {
			continue
		}

		if err := s.appointments.UpdateStatus(appt.ID, models.AppointmentNoShow); err != nil {
			log.Printf("❌ No-show sweep update error (appointment=%d): %v", appt.ID, err)
			continue
		}
		swept++
	}

	if swept > 0 {
		log.Printf("🗑️ Marked %d overdue appointments NO_SHOW", swept)
	}
}
