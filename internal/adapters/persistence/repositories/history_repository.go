package repositories

import (
	"time"

	"clinicq/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// HistoryRepository owns the append-only visit history table
type HistoryRepository struct {
	db *gorm.DB
}

// NewHistoryRepository creates a new history repository
func NewHistoryRepository(db *gorm.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// Create inserts a history record. Inserting a second record for the same
// visit is a no-op, so archiving is idempotent.
func (r *HistoryRepository) Create(record *models.VisitHistory) error {
	return r.db.
		Where("visit_id = ?", record.VisitID).
		FirstOrCreate(record).Error
}

// ExistsForVisit reports whether a visit has already been archived
func (r *HistoryRepository) ExistsForVisit(visitID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.VisitHistory{}).Where("visit_id = ?", visitID).Count(&count).Error
	return count > 0, err
}

// List returns history records for a hospital, optionally filtered by doctor
// and archive date range, newest first
func (r *HistoryRepository) List(hospitalID uint, doctorID *uint, from, to time.Time, page, limit int) ([]models.VisitHistory, int64, error) {
	query := r.db.Model(&models.VisitHistory{}).Where("hospital_id = ?", hospitalID)
	if doctorID != nil {
		query = query.Where("doctor_id = ?", *doctorID)
	}
	if !from.IsZero() {
		query = query.Where("archived_at >= ?", from)
	}
	if !to.IsZero() {
		query = query.Where("archived_at < ?", to)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var records []models.VisitHistory
	err := query.
		Order("archived_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&records).Error
	return records, total, err
}
