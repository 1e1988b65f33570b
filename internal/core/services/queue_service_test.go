package services

import (
	"errors"
	"testing"
	"time"

	"clinicq/internal/adapters/persistence/models"
	"clinicq/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustCheckIn(t *testing.T, env *testEnv, patientID uint, doctorID *uint, priority string) *models.Visit {
	t.Helper()
	visit, err := env.queue.CheckIn(&CheckInInput{
		PatientID:    patientID,
		DepartmentID: 10,
		DoctorID:     doctorID,
		Priority:     priority,
	})
	require.NoError(t, err)
	return visit
}

// ------------------------------------------------------------
// Check-in
// ------------------------------------------------------------

func TestCheckInAssignsSequentialTokens(t *testing.T) {
	env := newTestEnv()

	v1 := mustCheckIn(t, env, 1000, uintPtr(100), "")
	v2 := mustCheckIn(t, env, 1001, uintPtr(100), "")

	assert.Equal(t, 1, v1.TokenNumber)
	assert.Equal(t, "Q-001", v1.TokenCode)
	assert.Equal(t, models.VisitWaiting, v1.Status)
	assert.Equal(t, models.PriorityNormal, v1.Priority)
	assert.Equal(t, 2, v2.TokenNumber)
	assert.Equal(t, "Q-002", v2.TokenCode)
}

func TestCheckInRejectsDuplicateActiveVisit(t *testing.T) {
	env := newTestEnv()
	mustCheckIn(t, env, 1000, uintPtr(100), "")

	_, err := env.queue.CheckIn(&CheckInInput{PatientID: 1000, DepartmentID: 10, DoctorID: uintPtr(100)})
	assert.ErrorIs(t, err, domain.ErrDuplicateActiveVisit)
}

func TestCheckInAllowsReturnAfterCompletion(t *testing.T) {
	env := newTestEnv()
	visit := mustCheckIn(t, env, 1000, uintPtr(100), "")

	_, err := env.queue.CallNext(100)
	require.NoError(t, err)
	_, err = env.queue.Complete(visit.ID, "")
	require.NoError(t, err)

	again := mustCheckIn(t, env, 1000, uintPtr(100), "")
	assert.Equal(t, 2, again.TokenNumber)
}

func TestCheckInUnknownPatientAndDepartment(t *testing.T) {
	env := newTestEnv()

	_, err := env.queue.CheckIn(&CheckInInput{PatientID: 9999, DepartmentID: 10})
	assert.ErrorIs(t, err, domain.ErrPatientNotFound)

	_, err = env.queue.CheckIn(&CheckInInput{PatientID: 1000, DepartmentID: 999})
	assert.ErrorIs(t, err, domain.ErrDepartmentNotFound)
}

func TestCheckInInactiveDoctor(t *testing.T) {
	env := newTestEnv()
	env.configs.UpdateDoctorStatus(100, models.DoctorOnLeave)

	_, err := env.queue.CheckIn(&CheckInInput{PatientID: 1000, DepartmentID: 10, DoctorID: uintPtr(100)})
	assert.ErrorIs(t, err, domain.ErrTargetDoctorInactive)
}

func TestCheckInInvalidPriority(t *testing.T) {
	env := newTestEnv()

	_, err := env.queue.CheckIn(&CheckInInput{PatientID: 1000, DepartmentID: 10, Priority: "SUPER"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCheckInClosedHospital(t *testing.T) {
	env := newTestEnv()
	cfg := env.configs.configs[1]
	// Clock is a Tuesday (weekday 2)
	cfg.BusinessHours = []models.BusinessHour{{Weekday: 2, IsOpen: false, OpenTime: "08:00", CloseTime: "17:00"}}
	env.configs.configs[1] = cfg

	_, err := env.queue.CheckIn(&CheckInInput{PatientID: 1000, DepartmentID: 10})
	assert.ErrorIs(t, err, domain.ErrHospitalClosed)
}

func TestCheckInWalkInClosedInTimeSlotMode(t *testing.T) {
	env := newTestEnv()
	cfg := env.configs.configs[1]
	cfg.BookingMode = models.BookingTimeSlotOnly
	env.configs.configs[1] = cfg

	_, err := env.queue.CheckIn(&CheckInInput{PatientID: 1000, DepartmentID: 10})
	assert.ErrorIs(t, err, domain.ErrWalkInClosed)
}

func TestCheckInQueueFull(t *testing.T) {
	env := newTestEnv()
	one := 1
	cfg := env.configs.configs[1]
	cfg.MaxQueueLength = &one
	env.configs.configs[1] = cfg

	mustCheckIn(t, env, 1000, uintPtr(100), "")
	_, err := env.queue.CheckIn(&CheckInInput{PatientID: 1001, DepartmentID: 10, DoctorID: uintPtr(100)})
	assert.ErrorIs(t, err, domain.ErrQueueFull)
}

func TestCheckInDailyPatientLimit(t *testing.T) {
	env := newTestEnv()
	limit := 1
	doctor := env.configs.doctors[100]
	doctor.DailyPatientLimit = &limit
	env.configs.doctors[100] = doctor

	visit := mustCheckIn(t, env, 1000, uintPtr(100), "")
	_, err := env.queue.CallNext(100)
	require.NoError(t, err)
	_, err = env.queue.Complete(visit.ID, "")
	require.NoError(t, err)

	// The limit counts check-ins for the day, not the live queue length
	_, err = env.queue.CheckIn(&CheckInInput{PatientID: 1001, DepartmentID: 10, DoctorID: uintPtr(100)})
	assert.ErrorIs(t, err, domain.ErrQueueFull)
}

func TestCheckInDepartmentLevelScope(t *testing.T) {
	env := newTestEnv()

	v1 := mustCheckIn(t, env, 1000, nil, "")
	assert.Nil(t, v1.DoctorID)
	assert.Equal(t, 1, v1.TokenNumber)

	// The doctor-scoped sequence is independent of the department one
	v2 := mustCheckIn(t, env, 1001, uintPtr(100), "")
	assert.Equal(t, 1, v2.TokenNumber)

	_, err := env.queue.CheckIn(&CheckInInput{PatientID: 1000, DepartmentID: 10})
	assert.ErrorIs(t, err, domain.ErrDuplicateActiveVisit)
}

func TestCheckInWithAppointment(t *testing.T) {
	env := newTestEnv()
	appt := &models.Appointment{
		HospitalID:  1,
		PatientID:   1000,
		DoctorID:    uintPtr(100),
		ScheduledAt: env.clock.Add(30 * time.Minute),
		Status:      models.AppointmentConfirmed,
	}
	require.NoError(t, env.appointments.Create(appt))

	// Arrival window is 15 minutes; 30 minutes early is rejected
	_, err := env.queue.CheckIn(&CheckInInput{PatientID: 1000, DepartmentID: 10, AppointmentID: &appt.ID})
	assert.ErrorIs(t, err, domain.ErrArrivalTooEarly)

	env.advance(20 * time.Minute)
	visit, err := env.queue.CheckIn(&CheckInInput{PatientID: 1000, DepartmentID: 10, AppointmentID: &appt.ID})
	require.NoError(t, err)

	require.NotNil(t, visit.DoctorID)
	assert.Equal(t, uint(100), *visit.DoctorID, "doctor inherited from the appointment")

	// Arrival only marks the appointment checked in; it completes with the visit
	stored, _ := env.appointments.GetByID(appt.ID)
	assert.Equal(t, models.AppointmentCheckedIn, stored.Status)

	// The consumed appointment cannot be used again
	_, err = env.queue.CheckIn(&CheckInInput{PatientID: 1001, DepartmentID: 10, AppointmentID: &appt.ID})
	assert.ErrorIs(t, err, domain.ErrAppointmentClosed)

	_, err = env.queue.CallNext(100)
	require.NoError(t, err)
	_, err = env.queue.Complete(visit.ID, "")
	require.NoError(t, err)

	stored, _ = env.appointments.GetByID(appt.ID)
	assert.Equal(t, models.AppointmentCompleted, stored.Status)
}

func TestCheckedInAppointmentFollowsVisitCancel(t *testing.T) {
	env := newTestEnv()
	appt := &models.Appointment{
		HospitalID:  1,
		PatientID:   1000,
		DoctorID:    uintPtr(100),
		ScheduledAt: env.clock,
		Status:      models.AppointmentConfirmed,
	}
	require.NoError(t, env.appointments.Create(appt))

	visit, err := env.queue.CheckIn(&CheckInInput{PatientID: 1000, DepartmentID: 10, AppointmentID: &appt.ID})
	require.NoError(t, err)

	_, err = env.queue.Cancel(visit.ID)
	require.NoError(t, err)

	stored, _ := env.appointments.GetByID(appt.ID)
	assert.Equal(t, models.AppointmentCancelled, stored.Status)
}

// ------------------------------------------------------------
// Ordering
// ------------------------------------------------------------

func TestOrderQueue(t *testing.T) {
	visits := []models.Visit{
		{ID: 1, TokenNumber: 4, Priority: models.PriorityNormal},
		{ID: 2, TokenNumber: 2, Priority: models.PriorityUrgent},
		{ID: 3, TokenNumber: 9, Priority: models.PriorityNormal, IsCarryover: true},
		{ID: 4, TokenNumber: 1, Priority: models.PriorityVIP},
		{ID: 5, TokenNumber: 3, Priority: models.PriorityNormal},
		{ID: 6, TokenNumber: 5, Priority: models.PriorityUrgent, IsCarryover: true},
	}

	ordered := orderQueue(visits)

	var ids []uint
	for _, v := range ordered {
		ids = append(ids, v.ID)
	}
	// Urgent (carryover first, then token), VIP, then normal with carryover first
	assert.Equal(t, []uint{6, 2, 4, 3, 5, 1}, ids)
}

func TestCallNextPicksHighestPriority(t *testing.T) {
	env := newTestEnv()
	mustCheckIn(t, env, 1000, uintPtr(100), models.PriorityNormal)
	urgent := mustCheckIn(t, env, 1001, uintPtr(100), models.PriorityUrgent)
	mustCheckIn(t, env, 1002, uintPtr(100), models.PriorityVIP)

	called, err := env.queue.CallNext(100)
	require.NoError(t, err)
	assert.Equal(t, urgent.ID, called.ID)
	assert.Equal(t, models.VisitInProgress, called.Status)
	require.NotNil(t, called.StartedAt)
	assert.Equal(t, env.clock, *called.StartedAt)
}

func TestCallNextWhileDoctorBusy(t *testing.T) {
	env := newTestEnv()
	mustCheckIn(t, env, 1000, uintPtr(100), "")
	mustCheckIn(t, env, 1001, uintPtr(100), "")

	_, err := env.queue.CallNext(100)
	require.NoError(t, err)

	_, err = env.queue.CallNext(100)
	assert.ErrorIs(t, err, domain.ErrDoctorBusy)
}

func TestCallNextEmptyQueue(t *testing.T) {
	env := newTestEnv()

	_, err := env.queue.CallNext(100)
	assert.ErrorIs(t, err, domain.ErrEmptyQueue)
}

func TestCallNextSkipsOnHoldEntries(t *testing.T) {
	env := newTestEnv()
	v1 := mustCheckIn(t, env, 1000, uintPtr(100), "")
	v2 := mustCheckIn(t, env, 1001, uintPtr(100), "")

	_, err := env.queue.HoldVisit(v1.ID)
	require.NoError(t, err)

	called, err := env.queue.CallNext(100)
	require.NoError(t, err)
	assert.Equal(t, v2.ID, called.ID)
}

// ------------------------------------------------------------
// Complete / cancel / no-show
// ------------------------------------------------------------

func TestCompleteArchivesVisit(t *testing.T) {
	env := newTestEnv()
	visit := mustCheckIn(t, env, 1000, uintPtr(100), "")

	env.advance(10 * time.Minute)
	_, err := env.queue.CallNext(100)
	require.NoError(t, err)

	env.advance(20 * time.Minute)
	done, err := env.queue.Complete(visit.ID, "follow-up in two weeks")
	require.NoError(t, err)

	assert.Equal(t, models.VisitCompleted, done.Status)
	require.NotNil(t, done.CompletedAt)

	records, total, err := env.historySvc.List(1, nil, time.Time{}, env.clock.Add(time.Hour), 1, 20)
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	assert.Equal(t, 10, records[0].ActualWaitMins)
	assert.Equal(t, 20, records[0].ActualConsultMins)
	assert.Equal(t, "follow-up in two weeks", records[0].Notes)
}

func TestCompleteRequiresInProgress(t *testing.T) {
	env := newTestEnv()
	visit := mustCheckIn(t, env, 1000, uintPtr(100), "")

	_, err := env.queue.Complete(visit.ID, "")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestCompleteKeepsVisitActiveWhenArchiveFails(t *testing.T) {
	env := newTestEnv()
	visit := mustCheckIn(t, env, 1000, uintPtr(100), "")
	_, err := env.queue.CallNext(100)
	require.NoError(t, err)

	env.history.failNext = errors.New("history insert failed")
	_, err = env.queue.Complete(visit.ID, "")
	require.Error(t, err)

	// The failed archive must not leave a terminal visit behind
	stored, err := env.visits.GetByID(visit.ID)
	require.NoError(t, err)
	assert.Equal(t, models.VisitInProgress, stored.Status)
	exists, err := env.history.ExistsForVisit(visit.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	// The retry converges to exactly one archived record
	done, err := env.queue.Complete(visit.ID, "")
	require.NoError(t, err)
	assert.Equal(t, models.VisitCompleted, done.Status)
	exists, err = env.history.ExistsForVisit(visit.ID)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestCancelWaitingVisit(t *testing.T) {
	env := newTestEnv()
	visit := mustCheckIn(t, env, 1000, uintPtr(100), "")

	cancelled, err := env.queue.Cancel(visit.ID)
	require.NoError(t, err)
	assert.Equal(t, models.VisitCancelled, cancelled.Status)

	exists, _ := env.history.ExistsForVisit(visit.ID)
	assert.True(t, exists, "cancelled visits are archived")
}

func TestCancelInProgressRejected(t *testing.T) {
	env := newTestEnv()
	visit := mustCheckIn(t, env, 1000, uintPtr(100), "")
	_, err := env.queue.CallNext(100)
	require.NoError(t, err)

	_, err = env.queue.Cancel(visit.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestNoShowRespectsGracePeriod(t *testing.T) {
	env := newTestEnv()
	visit := mustCheckIn(t, env, 1000, uintPtr(100), "")

	_, err := env.queue.NoShow(visit.ID)
	assert.ErrorIs(t, err, domain.ErrGracePeriodActive)

	env.advance(30 * time.Minute)
	marked, err := env.queue.NoShow(visit.ID)
	require.NoError(t, err)
	assert.Equal(t, models.VisitNoShow, marked.Status)

	exists, _ := env.history.ExistsForVisit(visit.ID)
	assert.True(t, exists)
}

func TestVisitNotFound(t *testing.T) {
	env := newTestEnv()

	_, err := env.queue.Complete(404, "")
	assert.ErrorIs(t, err, domain.ErrVisitNotFound)
}

// ------------------------------------------------------------
// Skip & carryover
// ------------------------------------------------------------

func TestSkipRequeuesAsCarryover(t *testing.T) {
	env := newTestEnv()
	visit := mustCheckIn(t, env, 1000, uintPtr(100), "")
	mustCheckIn(t, env, 1001, uintPtr(100), "")

	successor, err := env.queue.Skip(visit.ID)
	require.NoError(t, err)

	assert.NotEqual(t, visit.ID, successor.ID)
	assert.Equal(t, models.VisitWaiting, successor.Status)
	assert.True(t, successor.IsCarryover)
	assert.Equal(t, visit.TokenNumber, successor.TokenNumber, "token is retained, never re-drawn")
	assert.Equal(t, visit.TokenCode, successor.TokenCode)

	old, _ := env.visits.GetByID(visit.ID)
	assert.Equal(t, models.VisitSkipped, old.Status)

	exists, _ := env.history.ExistsForVisit(visit.ID)
	assert.False(t, exists, "skipped visits live on through the successor, not history")
}

func TestCarryOverDay(t *testing.T) {
	env := newTestEnv()
	waiting := mustCheckIn(t, env, 1000, uintPtr(100), "")
	inProgress := mustCheckIn(t, env, 1001, uintPtr(100), "")
	_, err := env.queue.CallNext(100)
	require.NoError(t, err)

	env.advance(24 * time.Hour)
	carried, err := env.queue.CarryOverDay(1)
	require.NoError(t, err)
	assert.Equal(t, 2, carried)

	oldWaiting, _ := env.visits.GetByID(waiting.ID)
	assert.Equal(t, models.VisitCarryover, oldWaiting.Status)

	// The in-progress visit was called first, so it is its successor's turn too
	oldCalled, _ := env.visits.GetByID(inProgress.ID)
	assert.Equal(t, models.VisitCarryover, oldCalled.Status)

	queue, err := env.visits.ListQueueByDoctor(100)
	require.NoError(t, err)
	require.Len(t, queue, 2)
	for _, v := range queue {
		assert.True(t, v.IsCarryover)
		assert.Equal(t, models.VisitWaiting, v.Status)
	}
}

func TestCarryoverPrecedesFreshSamePriority(t *testing.T) {
	env := newTestEnv()
	first := mustCheckIn(t, env, 1000, uintPtr(100), "")

	env.advance(24 * time.Hour)
	_, err := env.queue.CarryOverDay(1)
	require.NoError(t, err)

	// A fresh check-in draws token 1 of the new day but queues behind the
	// carried-over patient
	fresh := mustCheckIn(t, env, 1001, uintPtr(100), "")
	assert.Equal(t, 1, fresh.TokenNumber)

	called, err := env.queue.CallNext(100)
	require.NoError(t, err)
	assert.True(t, called.IsCarryover)
	assert.Equal(t, first.TokenCode, called.TokenCode)
}

// ------------------------------------------------------------
// Hold / resume / delay
// ------------------------------------------------------------

func TestDelayDoctorHoldsInProgress(t *testing.T) {
	env := newTestEnv()
	visit := mustCheckIn(t, env, 1000, uintPtr(100), "")
	_, err := env.queue.CallNext(100)
	require.NoError(t, err)

	held, err := env.queue.DelayDoctor(100)
	require.NoError(t, err)
	assert.Equal(t, visit.ID, held.ID)
	assert.Equal(t, models.VisitOnHold, held.Status)
	assert.Nil(t, held.StartedAt)

	// Doctor is free again
	mustCheckIn(t, env, 1001, uintPtr(100), "")
	_, err = env.queue.CallNext(100)
	require.NoError(t, err)
}

func TestDelayDoctorWithNoConsultation(t *testing.T) {
	env := newTestEnv()

	_, err := env.queue.DelayDoctor(100)
	assert.ErrorIs(t, err, domain.ErrEmptyQueue)
}

func TestResumeReturnsToQueue(t *testing.T) {
	env := newTestEnv()
	visit := mustCheckIn(t, env, 1000, uintPtr(100), "")

	_, err := env.queue.HoldVisit(visit.ID)
	require.NoError(t, err)

	resumed, err := env.queue.Resume(visit.ID)
	require.NoError(t, err)
	assert.Equal(t, models.VisitWaiting, resumed.Status)

	called, err := env.queue.CallNext(100)
	require.NoError(t, err)
	assert.Equal(t, visit.ID, called.ID)
}

// ------------------------------------------------------------
// Reassign
// ------------------------------------------------------------

func TestReassignKeepsTokenWithinDepartment(t *testing.T) {
	env := newTestEnv()
	env.configs.doctors[101] = models.Doctor{ID: 101, HospitalID: 1, DepartmentID: 10, FullName: "Dr. B", Status: models.DoctorActive}
	visit := mustCheckIn(t, env, 1000, uintPtr(100), "")

	moved, err := env.queue.Reassign(visit.ID, 101)
	require.NoError(t, err)

	require.NotNil(t, moved.DoctorID)
	assert.Equal(t, uint(101), *moved.DoctorID)
	assert.Equal(t, visit.TokenCode, moved.TokenCode, "same department keeps the token")
	assert.Equal(t, models.VisitWaiting, moved.Status)
}

func TestReassignAcrossPrefixedDepartmentDrawsNewToken(t *testing.T) {
	env := newTestEnv()
	env.configs.departments[11] = models.Department{ID: 11, HospitalID: 1, Code: "CARD", Name: "Cardiology", IsActive: true}
	prefix := "CARD"
	env.configs.deptConfigs[11] = models.DepartmentConfig{HospitalID: 1, DepartmentID: 11, TokenPrefix: &prefix}
	env.configs.doctors[102] = models.Doctor{ID: 102, HospitalID: 1, DepartmentID: 11, FullName: "Dr. C", Status: models.DoctorActive}

	visit := mustCheckIn(t, env, 1000, uintPtr(100), "")
	require.Equal(t, "Q-001", visit.TokenCode)

	moved, err := env.queue.Reassign(visit.ID, 102)
	require.NoError(t, err)

	assert.Equal(t, uint(11), moved.DepartmentID)
	assert.Equal(t, "CARD-001", moved.TokenCode, "different prefix means a fresh token in the new scope")
}

func TestReassignToInactiveDoctor(t *testing.T) {
	env := newTestEnv()
	env.configs.doctors[101] = models.Doctor{ID: 101, HospitalID: 1, DepartmentID: 10, FullName: "Dr. B", Status: models.DoctorOnLeave}
	visit := mustCheckIn(t, env, 1000, uintPtr(100), "")

	_, err := env.queue.Reassign(visit.ID, 101)
	assert.ErrorIs(t, err, domain.ErrTargetDoctorInactive)
}

func TestReassignInProgressRejected(t *testing.T) {
	env := newTestEnv()
	env.configs.doctors[101] = models.Doctor{ID: 101, HospitalID: 1, DepartmentID: 10, FullName: "Dr. B", Status: models.DoctorActive}
	visit := mustCheckIn(t, env, 1000, uintPtr(100), "")
	_, err := env.queue.CallNext(100)
	require.NoError(t, err)

	_, err = env.queue.Reassign(visit.ID, 101)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestHandleDoctorLeaveAutoReassigns(t *testing.T) {
	env := newTestEnv()
	env.configs.doctors[101] = models.Doctor{ID: 101, HospitalID: 1, DepartmentID: 10, FullName: "Dr. B", Status: models.DoctorActive}
	mustCheckIn(t, env, 1000, uintPtr(100), "")
	mustCheckIn(t, env, 1001, uintPtr(100), "")

	moved, err := env.queue.HandleDoctorLeave(100, 101)
	require.NoError(t, err)
	assert.Equal(t, 2, moved)

	doctor, _ := env.configs.GetDoctorByID(100)
	assert.Equal(t, models.DoctorOnLeave, doctor.Status)

	queue, err := env.visits.ListQueueByDoctor(101)
	require.NoError(t, err)
	assert.Len(t, queue, 2)
}

func TestHandleDoctorLeaveWithoutAutoReassign(t *testing.T) {
	env := newTestEnv()
	cfg := env.configs.configs[1]
	cfg.AutoReassignOnLeave = false
	env.configs.configs[1] = cfg
	env.configs.doctors[101] = models.Doctor{ID: 101, HospitalID: 1, DepartmentID: 10, FullName: "Dr. B", Status: models.DoctorActive}
	mustCheckIn(t, env, 1000, uintPtr(100), "")

	moved, err := env.queue.HandleDoctorLeave(100, 101)
	require.NoError(t, err)
	assert.Equal(t, 0, moved)

	queue, err := env.visits.ListQueueByDoctor(100)
	require.NoError(t, err)
	assert.Len(t, queue, 1, "visits stay put when auto-reassign is off")
}

// ------------------------------------------------------------
// Estimates, snapshots & tracking
// ------------------------------------------------------------

func TestWaitEstimates(t *testing.T) {
	env := newTestEnv()
	mustCheckIn(t, env, 1000, uintPtr(100), "")
	_, err := env.queue.CallNext(100)
	require.NoError(t, err)

	env.advance(5 * time.Minute)
	mustCheckIn(t, env, 1001, uintPtr(100), "")
	mustCheckIn(t, env, 1002, uintPtr(100), "")

	snapshot, err := env.queue.CurrentQueue(100)
	require.NoError(t, err)

	require.NotNil(t, snapshot.InProgress)
	require.Len(t, snapshot.Entries, 2)
	// 10 minutes remain of the 15-minute consultation in progress
	assert.Equal(t, 10, snapshot.Entries[0].EstimatedMins)
	assert.Equal(t, 25, snapshot.Entries[1].EstimatedMins)
}

func TestWaitEstimateFloorsAtZero(t *testing.T) {
	env := newTestEnv()
	mustCheckIn(t, env, 1000, uintPtr(100), "")
	_, err := env.queue.CallNext(100)
	require.NoError(t, err)

	// Consultation overran its slot
	env.advance(40 * time.Minute)
	mustCheckIn(t, env, 1001, uintPtr(100), "")

	snapshot, err := env.queue.CurrentQueue(100)
	require.NoError(t, err)
	require.Len(t, snapshot.Entries, 1)
	assert.Equal(t, 0, snapshot.Entries[0].EstimatedMins)
}

func TestTrackToken(t *testing.T) {
	env := newTestEnv()
	mustCheckIn(t, env, 1000, uintPtr(100), "")
	second := mustCheckIn(t, env, 1001, uintPtr(100), "")

	result, err := env.queue.TrackToken(1, second.TokenCode)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Position)
	assert.Equal(t, 15, result.EstimatedMins)

	_, err = env.queue.TrackToken(1, "Q-999")
	assert.ErrorIs(t, err, domain.ErrVisitNotFound)
}

func TestTrackCompletedToken(t *testing.T) {
	env := newTestEnv()
	visit := mustCheckIn(t, env, 1000, uintPtr(100), "")
	_, err := env.queue.CallNext(100)
	require.NoError(t, err)
	_, err = env.queue.Complete(visit.ID, "")
	require.NoError(t, err)

	result, err := env.queue.TrackToken(1, visit.TokenCode)
	require.NoError(t, err)
	assert.Equal(t, models.VisitCompleted, result.Visit.Status)
	assert.Equal(t, -1, result.Position, "terminal visits have no queue position")
}

// ------------------------------------------------------------
// Events
// ------------------------------------------------------------

func TestQueueSnapshotsReportLastIssuedToken(t *testing.T) {
	env := newTestEnv()
	mustCheckIn(t, env, 1000, uintPtr(100), "")
	mustCheckIn(t, env, 1001, uintPtr(100), "")
	mustCheckIn(t, env, 1002, nil, "")

	// The doctor board reflects the doctor-scoped sequence
	snapshot, err := env.queue.CurrentQueue(100)
	require.NoError(t, err)
	assert.Equal(t, 2, snapshot.LastIssued)

	// The department board reflects its own sequence, not the doctor's
	deptSnapshot, err := env.queue.CurrentDepartmentQueue(10)
	require.NoError(t, err)
	assert.Equal(t, 1, deptSnapshot.LastIssued)
}

func TestEventsCarryQueueSnapshots(t *testing.T) {
	env := newTestEnv()
	visit := mustCheckIn(t, env, 1000, uintPtr(100), "")

	event := env.publisher.last()
	require.NotNil(t, event)
	assert.Equal(t, ActionCheckIn, event.Action)
	assert.Equal(t, visit.ID, event.VisitID)
	assert.NotEmpty(t, event.ID)
	require.Len(t, event.Queue, 1)
	assert.Equal(t, visit.TokenCode, event.Queue[0].TokenCode)

	_, err := env.queue.CallNext(100)
	require.NoError(t, err)

	event = env.publisher.last()
	assert.Equal(t, ActionCallNext, event.Action)
	assert.Equal(t, models.VisitInProgress, event.Status)
	assert.Empty(t, event.Queue, "the called visit left the waiting queue")
}

func TestEveryMutationPublishesExactlyOneEvent(t *testing.T) {
	env := newTestEnv()
	visit := mustCheckIn(t, env, 1000, uintPtr(100), "")
	_, err := env.queue.CallNext(100)
	require.NoError(t, err)
	_, err = env.queue.Complete(visit.ID, "")
	require.NoError(t, err)

	events := env.publisher.all()
	require.Len(t, events, 3)
	assert.Equal(t, []string{ActionCheckIn, ActionCallNext, ActionComplete},
		[]string{events[0].Action, events[1].Action, events[2].Action})
}
