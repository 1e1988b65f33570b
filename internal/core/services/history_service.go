package services

import (
	"log"
	"time"

	"clinicq/internal/adapters/persistence/models"
)

// HistoryService snapshots terminal visits into immutable history records
// used for analytics and audit
type HistoryService struct {
	history HistoryRepository
	now     func() time.Time
}

// NewHistoryService creates a new history service
func NewHistoryService(history HistoryRepository) *HistoryService {
	return &HistoryService{history: history, now: time.Now}
}

// archivedStatuses are the terminal statuses that produce a history record.
// SKIPPED and CARRYOVER visits live on through their successor and are not
// archived.
var archivedStatuses = map[string]bool{
	models.VisitCompleted: true,
	models.VisitCancelled: true,
	models.VisitNoShow:    true,
}

// Archive writes the append-only history record for a visit that just
// reached a terminal status. Re-archiving an already archived visit is a
// no-op.
func (s *HistoryService) Archive(visit *models.Visit) error {
	if !archivedStatuses[visit.Status] {
		return nil
	}

	record := &models.VisitHistory{
		VisitID:           visit.ID,
		HospitalID:        visit.HospitalID,
		PatientID:         visit.PatientID,
		DepartmentID:      visit.DepartmentID,
		DoctorID:          visit.DoctorID,
		TokenNumber:       visit.TokenNumber,
		TokenCode:         visit.TokenCode,
		FinalStatus:       visit.Status,
		Priority:          visit.Priority,
		IsCarryover:       visit.IsCarryover,
		CheckedInAt:       visit.CheckedInAt,
		StartedAt:         visit.StartedAt,
		CompletedAt:       visit.CompletedAt,
		ActualWaitMins:    actualWaitMins(visit),
		ActualConsultMins: actualConsultMins(visit),
		Notes:             visit.Notes,
		ArchivedAt:        s.now(),
	}

	if err := s.history.Create(record); err != nil {
		return err
	}

	log.Printf("📦 Visit %s archived (%s, wait=%dm, consult=%dm)",
		visit.TokenCode, visit.Status, record.ActualWaitMins, record.ActualConsultMins)
	return nil
}

// List returns archived visits for reporting
func (s *HistoryService) List(hospitalID uint, doctorID *uint, from, to time.Time, page, limit int) ([]models.VisitHistory, int64, error) {
	return s.history.List(hospitalID, doctorID, from, to, page, limit)
}

// actualWaitMins is startedAt (or completedAt when the visit never started)
// minus checkedInAt
func actualWaitMins(visit *models.Visit) int {
	end := visit.StartedAt
	if end == nil {
		end = visit.CompletedAt
	}
	if end == nil {
		return 0
	}
	mins := int(end.Sub(visit.CheckedInAt).Minutes())
	if mins < 0 {
		return 0
	}
	return mins
}

// actualConsultMins is completedAt minus startedAt when both are present
func actualConsultMins(visit *models.Visit) int {
	if visit.StartedAt == nil || visit.CompletedAt == nil {
		return 0
	}
	mins := int(visit.CompletedAt.Sub(*visit.StartedAt).Minutes())
	if mins < 0 {
		return 0
	}
	return mins
}
