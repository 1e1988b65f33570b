package services

import (
	"log"
	"sort"
	"time"

	"clinicq/internal/adapters/persistence/models"
	"clinicq/internal/core/domain"

	"github.com/google/uuid"
)

// QueueService drives the visit state machine and the live queue ordering.
// All mutating operations on one doctor's queue run inside that doctor's
// exclusive lock; doctor-less check-ins serialize per department instead.
type QueueService struct {
	visits       VisitRepository
	configs      ConfigRepository
	policy       *PolicyService
	tokens       *TokenService
	history      *HistoryService
	appointments AppointmentRepository
	publisher    EventPublisher
	locks        *lockArena
	lockTimeout  time.Duration
	now          func() time.Time
}

// NewQueueService creates a new queue service
func NewQueueService(
	visits VisitRepository,
	configs ConfigRepository,
	policy *PolicyService,
	tokens *TokenService,
	history *HistoryService,
	appointments AppointmentRepository,
	publisher EventPublisher,
) *QueueService {
	return &QueueService{
		visits:       visits,
		configs:      configs,
		policy:       policy,
		tokens:       tokens,
		history:      history,
		appointments: appointments,
		publisher:    publisher,
		locks:        newLockArena(),
		lockTimeout:  defaultLockTimeout,
		now:          time.Now,
	}
}

// QueueSnapshot is the recomputed ordered queue for one doctor or department
type QueueSnapshot struct {
	DoctorID     *uint        `json:"doctor_id,omitempty"`
	DepartmentID uint         `json:"department_id"`
	InProgress   *QueueEntry  `json:"in_progress,omitempty"`
	Entries      []QueueEntry `json:"entries"`
	// LastIssued is the newest token number drawn in the snapshot's scope,
	// shown on display boards next to the queue
	LastIssued int `json:"last_issued_token"`
}

// ============================================================
// Check-in
// ============================================================

// CheckInInput represents a walk-in or appointment arrival
type CheckInInput struct {
	PatientID     uint   `json:"patient_id" validate:"required"`
	DepartmentID  uint   `json:"department_id" validate:"required"`
	DoctorID      *uint  `json:"doctor_id"`
	AppointmentID *uint  `json:"appointment_id"`
	Priority      string `json:"priority"`
}

// CheckIn creates a WAITING visit and allocates its token
func (s *QueueService) CheckIn(input *CheckInInput) (*models.Visit, error) {
	department, err := s.configs.GetDepartmentByID(input.DepartmentID)
	if err != nil {
		return nil, err
	}
	if department == nil {
		return nil, domain.ErrDepartmentNotFound
	}

	patient, err := s.configs.GetPatientByID(input.PatientID)
	if err != nil {
		return nil, err
	}
	if patient == nil {
		return nil, domain.ErrPatientNotFound
	}

	priority := input.Priority
	if priority == "" {
		priority = models.PriorityNormal
	}
	if priority != models.PriorityNormal && priority != models.PriorityVIP && priority != models.PriorityUrgent {
		return nil, domain.ErrInvalidInput
	}

	policy, err := s.policy.Resolve(department.HospitalID, department.ID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if !policy.IsOpenAt(now) {
		return nil, domain.ErrHospitalClosed
	}
	if input.AppointmentID == nil && policy.BookingMode == models.BookingTimeSlotOnly {
		return nil, domain.ErrWalkInClosed
	}

	var appointment *models.Appointment
	if input.AppointmentID != nil {
		appointment, err = s.appointments.GetByID(*input.AppointmentID)
		if err != nil {
			return nil, err
		}
		if appointment == nil {
			return nil, domain.ErrAppointmentNotFound
		}
		if appointment.Status != models.AppointmentPending && appointment.Status != models.AppointmentConfirmed {
			return nil, domain.ErrAppointmentClosed
		}
		window := time.Duration(policy.ArrivalWindowMins) * time.Minute
		if now.Before(appointment.ScheduledAt.Add(-window)) {
			return nil, domain.ErrArrivalTooEarly
		}
		if input.DoctorID == nil && appointment.DoctorID != nil {
			input.DoctorID = appointment.DoctorID
		}
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
	}

	// Serialize the check-in on the doctor's (or department's) queue
	lockKey := departmentLockKey(department.ID)
	if input.DoctorID != nil {
		lockKey = doctorLockKey(*input.DoctorID)
	}
	release, err := s.locks.acquire(lockKey, s.lockTimeout)
	if err != nil {
		return nil, err
	}
	defer release()

	if input.DoctorID != nil {
		existing, err := s.visits.GetActiveByPatientAndDoctor(input.PatientID, *input.DoctorID)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, domain.ErrDuplicateActiveVisit
		}
	} else {
		existing, err := s.visits.GetActiveByPatientInDepartment(input.PatientID, department.ID)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, domain.ErrDuplicateActiveVisit
		}
	}

	if err := s.checkCapacity(input.DoctorID, department.ID, doctor, policy); err != nil {
		return nil, err
	}

	scope := TokenScope{HospitalID: department.HospitalID, DepartmentID: department.ID}
	if input.DoctorID != nil {
		scope.DoctorID = *input.DoctorID
	}
	number, err := s.tokens.Next(scope, policy)
	if err != nil {
		return nil, err
	}

	visit := &models.Visit{
		HospitalID:    department.HospitalID,
		PatientID:     input.PatientID,
		DepartmentID:  department.ID,
		DoctorID:      input.DoctorID,
		AppointmentID: input.AppointmentID,
		TokenNumber:   number,
		TokenCode:     FormatTokenCode(policy.TokenPrefix, number),
		Status:        models.VisitWaiting,
		Priority:      priority,
		CheckedInAt:   now,
	}
	if err := s.visits.Create(visit); err != nil {
		return nil, err
	}

	if appointment != nil {
		// Arrival recorded; the appointment completes with its visit
		if err := s.appointments.UpdateStatus(appointment.ID, models.AppointmentCheckedIn); err != nil {
			log.Printf("⚠️ Failed to mark appointment %d checked in: %v", appointment.ID, err)
		}
	}

	entries, err := s.entriesForScope(visit.DoctorID, visit.DepartmentID)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if e.VisitID == visit.ID {
			visit.EstimatedWait = e.EstimatedMins
			if err := s.visits.Update(visit); err != nil {
				return nil, err
			}
			break
		}
	}

	s.emit(ActionCheckIn, visit, entries)
	log.Printf("✅ Visit %s checked in (patient=%d, department=%d)", visit.TokenCode, visit.PatientID, visit.DepartmentID)
	return visit, nil
}

// checkCapacity enforces the optional max queue length and daily patient limit
func (s *QueueService) checkCapacity(doctorID *uint, departmentID uint, doctor *models.Doctor, policy *EffectivePolicy) error {
	if policy.MaxQueueLength != nil {
		var count int64
		var err error
		if doctorID != nil {
			count, err = s.visits.CountQueueByDoctor(*doctorID)
		} else {
			count, err = s.visits.CountQueueByDepartment(departmentID)
		}
		if err != nil {
			return err
		}
		if count >= int64(*policy.MaxQueueLength) {
			return domain.ErrQueueFull
		}
	}

	if doctor != nil && doctor.DailyPatientLimit != nil {
		dayStart := PeriodStart(models.ResetDaily, s.now().In(policy.Location))
		count, err := s.visits.CountTodayByDoctor(doctor.ID, dayStart)
		if err != nil {
			return err
		}
		if count >= int64(*doctor.DailyPatientLimit) {
			return domain.ErrQueueFull
		}
	}
	return nil
}

// ============================================================
// Call & consult
// ============================================================

// CallNext transitions the head of the doctor's queue to IN_PROGRESS
func (s *QueueService) CallNext(doctorID uint) (*models.Visit, error) {
	doctor, err := s.configs.GetDoctorByID(doctorID)
	if err != nil {
		return nil, err
	}
	if doctor == nil {
		return nil, domain.ErrDoctorNotFound
	}

	release, err := s.locks.acquire(doctorLockKey(doctorID), s.lockTimeout)
	if err != nil {
		return nil, err
	}
	defer release()

	inProgress, err := s.visits.GetInProgressByDoctor(doctorID)
	if err != nil {
		return nil, err
	}
	if inProgress != nil {
		return nil, domain.ErrDoctorBusy
	}

	queue, err := s.visits.ListQueueByDoctor(doctorID)
	if err != nil {
		return nil, err
	}
	ordered := orderQueue(queue)

	var head *models.Visit
	for i := range ordered {
		if ordered[i].Status == models.VisitWaiting {
			head = &ordered[i]
			break
		}
	}
	if head == nil {
		return nil, domain.ErrEmptyQueue
	}

	next, err := nextStatus(ActionCallNext, head.Status)
	if err != nil {
		return nil, err
	}
	now := s.now()
	head.Status = next
	head.StartedAt = &now
	if err := s.visits.Update(head); err != nil {
		return nil, err
	}

	entries, err := s.entriesForScope(head.DoctorID, head.DepartmentID)
	if err != nil {
		return nil, err
	}
	s.emit(ActionCallNext, head, entries)
	log.Printf("✅ Visit %s called (doctor=%d)", head.TokenCode, doctorID)
	return head, nil
}

// Complete finishes the consultation and archives the visit
func (s *QueueService) Complete(visitID uint, notes string) (*models.Visit, error) {
	visit, err := s.getVisit(visitID)
	if err != nil {
		return nil, err
	}

	release, err := s.lockVisitScope(visit)
	if err != nil {
		return nil, err
	}
	defer release()

	next, err := nextStatus(ActionComplete, visit.Status)
	if err != nil {
		return nil, err
	}
	now := s.now()
	visit.Status = next
	visit.CompletedAt = &now
	if notes != "" {
		visit.Notes = notes
	}
	// Archive before the status write: a failed archive leaves the stored
	// visit IN_PROGRESS so the operation can be retried, and the idempotent
	// history insert absorbs the retry
	if err := s.history.Archive(visit); err != nil {
		return nil, err
	}
	if err := s.visits.Update(visit); err != nil {
		return nil, err
	}
	s.closeAppointment(visit, models.AppointmentCompleted)

	entries, err := s.entriesForScope(visit.DoctorID, visit.DepartmentID)
	if err != nil {
		return nil, err
	}
	s.emit(ActionComplete, visit, entries)
	log.Printf("✅ Visit %s completed", visit.TokenCode)
	return visit, nil
}

// ============================================================
// Hold / resume / delay
// ============================================================

// HoldVisit moves a WAITING or IN_PROGRESS visit to ON_HOLD. It keeps its
// position in the order; staff must resume it explicitly.
func (s *QueueService) HoldVisit(visitID uint) (*models.Visit, error) {
	visit, err := s.getVisit(visitID)
	if err != nil {
		return nil, err
	}

	release, err := s.lockVisitScope(visit)
	if err != nil {
		return nil, err
	}
	defer release()

	return s.holdLocked(visit)
}

// DelayDoctor moves the doctor's in-progress visit to ON_HOLD, freeing the
// doctor. The queue does not advance automatically.
func (s *QueueService) DelayDoctor(doctorID uint) (*models.Visit, error) {
	doctor, err := s.configs.GetDoctorByID(doctorID)
	if err != nil {
		return nil, err
	}
	if doctor == nil {
		return nil, domain.ErrDoctorNotFound
	}

	release, err := s.locks.acquire(doctorLockKey(doctorID), s.lockTimeout)
	if err != nil {
		return nil, err
	}
	defer release()

	visit, err := s.visits.GetInProgressByDoctor(doctorID)
	if err != nil {
		return nil, err
	}
	if visit == nil {
		return nil, domain.ErrEmptyQueue
	}
	return s.holdLocked(visit)
}

func (s *QueueService) holdLocked(visit *models.Visit) (*models.Visit, error) {
	next, err := nextStatus(ActionHold, visit.Status)
	if err != nil {
		return nil, err
	}
	visit.Status = next
	visit.StartedAt = nil
	if err := s.visits.Update(visit); err != nil {
		return nil, err
	}

	entries, err := s.entriesForScope(visit.DoctorID, visit.DepartmentID)
	if err != nil {
		return nil, err
	}
	s.emit(ActionHold, visit, entries)
	log.Printf("⏸️ Visit %s on hold", visit.TokenCode)
	return visit, nil
}

// Resume returns an ON_HOLD visit to WAITING
func (s *QueueService) Resume(visitID uint) (*models.Visit, error) {
	visit, err := s.getVisit(visitID)
	if err != nil {
		return nil, err
	}

	release, err := s.lockVisitScope(visit)
	if err != nil {
		return nil, err
	}
	defer release()

	next, err := nextStatus(ActionResume, visit.Status)
	if err != nil {
		return nil, err
	}
	visit.Status = next
	if err := s.visits.Update(visit); err != nil {
		return nil, err
	}

	entries, err := s.entriesForScope(visit.DoctorID, visit.DepartmentID)
	if err != nil {
		return nil, err
	}
	s.emit(ActionResume, visit, entries)
	return visit, nil
}

// ============================================================
// Skip / cancel / no-show
// ============================================================

// Skip marks a called-but-absent WAITING visit SKIPPED and re-creates it as
// a carryover entry with the same token, so the queue count is preserved
func (s *QueueService) Skip(visitID uint) (*models.Visit, error) {
	visit, err := s.getVisit(visitID)
	if err != nil {
		return nil, err
	}

	release, err := s.lockVisitScope(visit)
	if err != nil {
		return nil, err
	}
	defer release()

	next, err := nextStatus(ActionSkip, visit.Status)
	if err != nil {
		return nil, err
	}
	visit.Status = next

	successor := s.carryoverSuccessor(visit)
	if err := s.visits.ReplaceWithCarryover(visit, successor); err != nil {
		return nil, err
	}

	entries, err := s.entriesForScope(successor.DoctorID, successor.DepartmentID)
	if err != nil {
		return nil, err
	}
	s.emit(ActionSkip, successor, entries)
	log.Printf("↩️ Visit %s skipped, re-queued as carryover", visit.TokenCode)
	return successor, nil
}

// Cancel terminates a WAITING or ON_HOLD visit. An in-progress consultation
// must be completed or held first.
func (s *QueueService) Cancel(visitID uint) (*models.Visit, error) {
	visit, err := s.getVisit(visitID)
	if err != nil {
		return nil, err
	}

	release, err := s.lockVisitScope(visit)
	if err != nil {
		return nil, err
	}
	defer release()

	next, err := nextStatus(ActionCancel, visit.Status)
	if err != nil {
		return nil, err
	}
	now := s.now()
	visit.Status = next
	visit.CompletedAt = &now
	// Archive first so a failure keeps the visit cancellable
	if err := s.history.Archive(visit); err != nil {
		return nil, err
	}
	if err := s.visits.Update(visit); err != nil {
		return nil, err
	}
	s.closeAppointment(visit, models.AppointmentCancelled)

	entries, err := s.entriesForScope(visit.DoctorID, visit.DepartmentID)
	if err != nil {
		return nil, err
	}
	s.emit(ActionCancel, visit, entries)
	log.Printf("🗑️ Visit %s cancelled", visit.TokenCode)
	return visit, nil
}

// NoShow terminates a WAITING visit whose patient never appeared. Only legal
// once the policy's grace period since check-in has elapsed.
func (s *QueueService) NoShow(visitID uint) (*models.Visit, error) {
	visit, err := s.getVisit(visitID)
	if err != nil {
		return nil, err
	}

	policy, err := s.policy.Resolve(visit.HospitalID, visit.DepartmentID)
	if err != nil {
		return nil, err
	}
	grace := time.Duration(policy.NoShowGraceMins) * time.Minute
	if s.now().Before(visit.CheckedInAt.Add(grace)) {
		return nil, domain.ErrGracePeriodActive
	}

	release, err := s.lockVisitScope(visit)
	if err != nil {
		return nil, err
	}
	defer release()

	next, err := nextStatus(ActionNoShow, visit.Status)
	if err != nil {
		return nil, err
	}
	now := s.now()
	visit.Status = next
	visit.CompletedAt = &now
	// Archive first so a failure keeps the visit open for a retry
	if err := s.history.Archive(visit); err != nil {
		return nil, err
	}
	if err := s.visits.Update(visit); err != nil {
		return nil, err
	}
	s.closeAppointment(visit, models.AppointmentNoShow)

	entries, err := s.entriesForScope(visit.DoctorID, visit.DepartmentID)
	if err != nil {
		return nil, err
	}
	s.emit(ActionNoShow, visit, entries)
	return visit, nil
}

// ============================================================
// Reassign
// ============================================================

// Reassign moves a WAITING or ON_HOLD visit to another doctor. The token is
// preserved unless the target department's prefix or reset policy differs,
// in which case a fresh token is drawn in the new scope.
func (s *QueueService) Reassign(visitID, newDoctorID uint) (*models.Visit, error) {
	visit, err := s.getVisit(visitID)
	if err != nil {
		return nil, err
	}

	if _, err := nextStatus(ActionReassign, visit.Status); err != nil {
		return nil, err
	}

	newDoctor, err := s.configs.GetDoctorByID(newDoctorID)
	if err != nil {
		return nil, err
	}
	if newDoctor == nil {
		return nil, domain.ErrDoctorNotFound
	}
	if newDoctor.Status != models.DoctorActive {
		return nil, domain.ErrTargetDoctorInactive
	}

	oldKey := departmentLockKey(visit.DepartmentID)
	if visit.DoctorID != nil {
		oldKey = doctorLockKey(*visit.DoctorID)
	}
	newKey := doctorLockKey(newDoctorID)

	// Acquire both scopes in key order so two opposing reassigns cannot
	// deadlock inside the bounded wait
	keys := []string{oldKey}
	if newKey != oldKey {
		keys = append(keys, newKey)
		sort.Strings(keys)
	}
	for _, key := range keys {
		release, err := s.locks.acquire(key, s.lockTimeout)
		if err != nil {
			return nil, err
		}
		defer release()
	}

	// Re-read and re-validate under the lock
	visit, err = s.getVisit(visitID)
	if err != nil {
		return nil, err
	}
	if _, err := nextStatus(ActionReassign, visit.Status); err != nil {
		return nil, err
	}

	if newDoctor.DepartmentID != visit.DepartmentID {
		oldPolicy, err := s.policy.Resolve(visit.HospitalID, visit.DepartmentID)
		if err != nil {
			return nil, err
		}
		newPolicy, err := s.policy.Resolve(newDoctor.HospitalID, newDoctor.DepartmentID)
		if err != nil {
			return nil, err
		}
		if oldPolicy.TokenPrefix != newPolicy.TokenPrefix ||
			oldPolicy.TokenResetFrequency != newPolicy.TokenResetFrequency {
			scope := TokenScope{
				HospitalID:   newDoctor.HospitalID,
				DepartmentID: newDoctor.DepartmentID,
				DoctorID:     newDoctorID,
			}
			number, err := s.tokens.Next(scope, newPolicy)
			if err != nil {
				return nil, err
			}
			visit.TokenNumber = number
			visit.TokenCode = FormatTokenCode(newPolicy.TokenPrefix, number)
		}
		visit.DepartmentID = newDoctor.DepartmentID
	}

	visit.DoctorID = &newDoctorID
	if err := s.visits.Update(visit); err != nil {
		return nil, err
	}

	entries, err := s.entriesForScope(visit.DoctorID, visit.DepartmentID)
	if err != nil {
		return nil, err
	}
	s.emit(ActionReassign, visit, entries)
	log.Printf("✅ Visit %s reassigned to doctor %d", visit.TokenCode, newDoctorID)
	return visit, nil
}

// ============================================================
// Carryover & doctor leave
// ============================================================

// CarryOverDay closes out every unresolved visit of a hospital at end of
// day: the old row becomes CARRYOVER and a WAITING successor with the same
// token re-enters the next period's queue with carryover precedence
func (s *QueueService) CarryOverDay(hospitalID uint) (int, error) {
	unresolved, err := s.visits.ListUnresolvedByHospital(hospitalID, s.now())
	if err != nil {
		return 0, err
	}

	carried := 0
	for i := range unresolved {
		visit := unresolved[i]

		next, err := nextStatus(ActionCarryOver, visit.Status)
		if err != nil {
			log.Printf("⚠️ Carryover skipped visit %d: %v", visit.ID, err)
			continue
		}

		release, err := s.lockVisitScope(&visit)
		if err != nil {
			log.Printf("⚠️ Carryover busy for visit %d: %v", visit.ID, err)
			continue
		}

		visit.Status = next
		successor := s.carryoverSuccessor(&visit)
		if err := s.visits.ReplaceWithCarryover(&visit, successor); err != nil {
			release()
			return carried, err
		}

		entries, err := s.entriesForScope(successor.DoctorID, successor.DepartmentID)
		if err != nil {
			release()
			return carried, err
		}
		s.emit(ActionCarryOver, successor, entries)
		release()
		carried++
	}

	if carried > 0 {
		log.Printf("🌙 Carried over %d unresolved visits (hospital=%d)", carried, hospitalID)
	}
	return carried, nil
}

// carryoverSuccessor builds the WAITING re-entry for a skipped or
// carried-over visit. The original token is retained, never re-drawn.
func (s *QueueService) carryoverSuccessor(old *models.Visit) *models.Visit {
	return &models.Visit{
		HospitalID:    old.HospitalID,
		PatientID:     old.PatientID,
		DepartmentID:  old.DepartmentID,
		DoctorID:      old.DoctorID,
		AppointmentID: old.AppointmentID,
		TokenNumber:   old.TokenNumber,
		TokenCode:     old.TokenCode,
		Status:        models.VisitWaiting,
		Priority:      old.Priority,
		IsCarryover:   true,
		CheckedInAt:   old.CheckedInAt,
		Notes:         old.Notes,
	}
}

// HandleDoctorLeave puts a doctor on leave and, when the hospital enables
// auto-reassign, moves their open visits to the substitute doctor
func (s *QueueService) HandleDoctorLeave(doctorID uint, substituteID uint) (int, error) {
	doctor, err := s.configs.GetDoctorByID(doctorID)
	if err != nil {
		return 0, err
	}
	if doctor == nil {
		return 0, domain.ErrDoctorNotFound
	}

	policy, err := s.policy.Resolve(doctor.HospitalID, doctor.DepartmentID)
	if err != nil {
		return 0, err
	}

	if err := s.configs.UpdateDoctorStatus(doctorID, models.DoctorOnLeave); err != nil {
		return 0, err
	}
	log.Printf("🏖️ Doctor %d on leave", doctorID)

	if !policy.AutoReassignOnLeave || substituteID == 0 {
		return 0, nil
	}

	open, err := s.visits.ListActiveByDoctor(doctorID)
	if err != nil {
		return 0, err
	}

	moved := 0
	for _, visit := range open {
		if visit.Status != models.VisitWaiting && visit.Status != models.VisitOnHold {
			continue
		}
		if _, err := s.Reassign(visit.ID, substituteID); err != nil {
			log.Printf("⚠️ Auto-reassign of visit %d failed: %v", visit.ID, err)
			continue
		}
		moved++
	}
	return moved, nil
}

// ============================================================
// Reads
// ============================================================

// CurrentQueue returns the ordered live queue for a doctor with estimates
func (s *QueueService) CurrentQueue(doctorID uint) (*QueueSnapshot, error) {
	doctor, err := s.configs.GetDoctorByID(doctorID)
	if err != nil {
		return nil, err
	}
	if doctor == nil {
		return nil, domain.ErrDoctorNotFound
	}

	policy, err := s.policy.Resolve(doctor.HospitalID, doctor.DepartmentID)
	if err != nil {
		return nil, err
	}

	queue, err := s.visits.ListQueueByDoctor(doctorID)
	if err != nil {
		return nil, err
	}
	inProgress, err := s.visits.GetInProgressByDoctor(doctorID)
	if err != nil {
		return nil, err
	}

	lastIssued, err := s.tokens.LastIssued(TokenScope{
		HospitalID:   doctor.HospitalID,
		DepartmentID: doctor.DepartmentID,
		DoctorID:     doctorID,
	})
	if err != nil {
		return nil, err
	}

	snapshot := &QueueSnapshot{
		DoctorID:     &doctorID,
		DepartmentID: doctor.DepartmentID,
		Entries:      s.buildEntries(policy, doctor, orderQueue(queue), inProgress),
		LastIssued:   lastIssued,
	}
	if inProgress != nil {
		entry := visitEntry(inProgress, 0)
		snapshot.InProgress = &entry
	}
	return snapshot, nil
}

// CurrentDepartmentQueue returns the ordered live queue for a department
func (s *QueueService) CurrentDepartmentQueue(departmentID uint) (*QueueSnapshot, error) {
	department, err := s.configs.GetDepartmentByID(departmentID)
	if err != nil {
		return nil, err
	}
	if department == nil {
		return nil, domain.ErrDepartmentNotFound
	}

	policy, err := s.policy.Resolve(department.HospitalID, departmentID)
	if err != nil {
		return nil, err
	}

	queue, err := s.visits.ListQueueByDepartment(departmentID)
	if err != nil {
		return nil, err
	}

	lastIssued, err := s.tokens.LastIssued(TokenScope{
		HospitalID:   department.HospitalID,
		DepartmentID: departmentID,
	})
	if err != nil {
		return nil, err
	}

	return &QueueSnapshot{
		DepartmentID: departmentID,
		Entries:      s.buildEntries(policy, nil, orderQueue(queue), nil),
		LastIssued:   lastIssued,
	}, nil
}

// TrackResult is the public tracking view of one visit
type TrackResult struct {
	Visit         *models.Visit `json:"visit"`
	Position      int           `json:"position"`
	EstimatedMins int           `json:"estimated_mins"`
}

// TrackToken resolves a token code to its current position and estimate
func (s *QueueService) TrackToken(hospitalID uint, tokenCode string) (*TrackResult, error) {
	since := s.now().Add(-24 * time.Hour)
	visit, err := s.visits.GetByTokenCode(hospitalID, tokenCode, since)
	if err != nil {
		return nil, err
	}
	if visit == nil {
		return nil, domain.ErrVisitNotFound
	}

	result := &TrackResult{Visit: visit, Position: -1}
	if visit.Status != models.VisitWaiting && visit.Status != models.VisitOnHold {
		return result, nil
	}

	entries, err := s.entriesForScope(visit.DoctorID, visit.DepartmentID)
	if err != nil {
		return nil, err
	}
	for i, e := range entries {
		if e.VisitID == visit.ID {
			result.Position = i
			result.EstimatedMins = e.EstimatedMins
			break
		}
	}
	return result, nil
}

// ============================================================
// Ordering, estimates, events
// ============================================================

// orderQueue sorts by priority rank descending, then carryover entries
// before same-period ones, then token number ascending
func orderQueue(visits []models.Visit) []models.Visit {
	ordered := make([]models.Visit, len(visits))
	copy(ordered, visits)
	sort.SliceStable(ordered, func(i, j int) bool {
		ri, rj := models.PriorityRank(ordered[i].Priority), models.PriorityRank(ordered[j].Priority)
		if ri != rj {
			return ri > rj
		}
		if ordered[i].IsCarryover != ordered[j].IsCarryover {
			return ordered[i].IsCarryover
		}
		return ordered[i].TokenNumber < ordered[j].TokenNumber
	})
	return ordered
}

// buildEntries computes the published snapshot with per-position wait
// estimates: position × consultation duration, plus whatever remains of the
// consultation currently in progress (floored at zero)
func (s *QueueService) buildEntries(policy *EffectivePolicy, doctor *models.Doctor, ordered []models.Visit, inProgress *models.Visit) []QueueEntry {
	duration := policy.ConsultationFor(doctor)
	remaining := 0
	if inProgress != nil && inProgress.StartedAt != nil {
		elapsed := int(s.now().Sub(*inProgress.StartedAt).Minutes())
		remaining = duration - elapsed
		if remaining < 0 {
			remaining = 0
		}
	}

	entries := make([]QueueEntry, 0, len(ordered))
	for i, visit := range ordered {
		entry := visitEntry(&visit, i*duration+remaining)
		entries = append(entries, entry)
	}
	return entries
}

func visitEntry(visit *models.Visit, estimatedMins int) QueueEntry {
	return QueueEntry{
		VisitID:       visit.ID,
		TokenNumber:   visit.TokenNumber,
		TokenCode:     visit.TokenCode,
		PatientName:   visit.Patient.FullName,
		Priority:      visit.Priority,
		IsCarryover:   visit.IsCarryover,
		OnHold:        visit.Status == models.VisitOnHold,
		EstimatedMins: estimatedMins,
	}
}

// entriesForScope recomputes the ordered snapshot for a doctor's queue, or
// the department queue when no doctor is assigned
func (s *QueueService) entriesForScope(doctorID *uint, departmentID uint) ([]QueueEntry, error) {
	if doctorID != nil {
		doctor, err := s.configs.GetDoctorByID(*doctorID)
		if err != nil {
			return nil, err
		}
		if doctor == nil {
			return nil, domain.ErrDoctorNotFound
		}
		policy, err := s.policy.Resolve(doctor.HospitalID, doctor.DepartmentID)
		if err != nil {
			return nil, err
		}
		queue, err := s.visits.ListQueueByDoctor(*doctorID)
		if err != nil {
			return nil, err
		}
		inProgress, err := s.visits.GetInProgressByDoctor(*doctorID)
		if err != nil {
			return nil, err
		}
		return s.buildEntries(policy, doctor, orderQueue(queue), inProgress), nil
	}

	department, err := s.configs.GetDepartmentByID(departmentID)
	if err != nil {
		return nil, err
	}
	if department == nil {
		return nil, domain.ErrDepartmentNotFound
	}
	policy, err := s.policy.Resolve(department.HospitalID, departmentID)
	if err != nil {
		return nil, err
	}
	queue, err := s.visits.ListQueueByDepartment(departmentID)
	if err != nil {
		return nil, err
	}
	return s.buildEntries(policy, nil, orderQueue(queue), nil), nil
}

// emit publishes the change event carrying the recomputed snapshot. The
// publisher runs synchronously, so clients never observe a transition
// without its corresponding order.
func (s *QueueService) emit(action string, visit *models.Visit, entries []QueueEntry) {
	s.publisher.Publish(QueueEvent{
		ID:           uuid.NewString(),
		Action:       action,
		HospitalID:   visit.HospitalID,
		DepartmentID: visit.DepartmentID,
		DoctorID:     visit.DoctorID,
		VisitID:      visit.ID,
		TokenCode:    visit.TokenCode,
		Status:       visit.Status,
		Queue:        entries,
		At:           s.now(),
	})
}

func (s *QueueService) getVisit(id uint) (*models.Visit, error) {
	visit, err := s.visits.GetByID(id)
	if err != nil {
		return nil, err
	}
	if visit == nil {
		return nil, domain.ErrVisitNotFound
	}
	return visit, nil
}

func (s *QueueService) lockVisitScope(visit *models.Visit) (func(), error) {
	if visit.DoctorID != nil {
		return s.locks.acquire(doctorLockKey(*visit.DoctorID), s.lockTimeout)
	}
	return s.locks.acquire(departmentLockKey(visit.DepartmentID), s.lockTimeout)
}

func (s *QueueService) closeAppointment(visit *models.Visit, status string) {
	if visit.AppointmentID == nil {
		return
	}
	if err := s.appointments.UpdateStatus(*visit.AppointmentID, status); err != nil {
		log.Printf("⚠️ Failed to update appointment %d to %s: %v", *visit.AppointmentID, status, err)
	}
}
