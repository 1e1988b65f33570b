package repositories

import (
	"time"

	"clinicq/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// VisitRepository handles live queue database operations
type VisitRepository struct {
	db *gorm.DB
}

// NewVisitRepository creates a new visit repository
func NewVisitRepository(db *gorm.DB) *VisitRepository {
	return &VisitRepository{db: db}
}

// Create inserts a new visit
func (r *VisitRepository) Create(visit *models.Visit) error {
	return r.db.Create(visit).Error
}

// GetByID returns a visit by ID with relations
func (r *VisitRepository) GetByID(id uint) (*models.Visit, error) {
	var visit models.Visit
	err := r.db.
		Preload("Patient").
		Preload("Doctor").
		Preload("Department").
		First(&visit, id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	return &visit, err
}

// GetByTokenCode returns the most recent visit carrying a token code,
// checked in at or after since
func (r *VisitRepository) GetByTokenCode(hospitalID uint, tokenCode string, since time.Time) (*models.Visit, error) {
	var visit models.Visit
	err := r.db.
		Preload("Patient").
		Preload("Doctor").
		Preload("Department").
		Where("hospital_id = ? AND token_code = ? AND checked_in_at >= ?", hospitalID, tokenCode, since).
		Order("checked_in_at DESC").
		First(&visit).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	return &visit, err
}

// GetActiveByPatientAndDoctor checks whether the patient already has a
// non-terminal visit with this doctor
func (r *VisitRepository) GetActiveByPatientAndDoctor(patientID, doctorID uint) (*models.Visit, error) {
	var visit models.Visit
	err := r.db.
		Where("patient_id = ? AND doctor_id = ? AND status IN ?", patientID, doctorID, models.ActiveStatuses).
		First(&visit).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	return &visit, err
}

// GetActiveByPatientInDepartment checks for a non-terminal doctor-less visit
// of the patient in a department
func (r *VisitRepository) GetActiveByPatientInDepartment(patientID, departmentID uint) (*models.Visit, error) {
	var visit models.Visit
	err := r.db.
		Where("patient_id = ? AND department_id = ? AND doctor_id IS NULL AND status IN ?",
			patientID, departmentID, models.ActiveStatuses).
		First(&visit).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	return &visit, err
}

// GetInProgressByDoctor returns the visit currently in consultation, if any
func (r *VisitRepository) GetInProgressByDoctor(doctorID uint) (*models.Visit, error) {
	var visit models.Visit
	err := r.db.
		Preload("Patient").
		Where("doctor_id = ? AND status = ?", doctorID, models.VisitInProgress).
		First(&visit).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	return &visit, err
}

// ListQueueByDoctor returns queue-participating visits (WAITING/ON_HOLD)
func (r *VisitRepository) ListQueueByDoctor(doctorID uint) ([]models.Visit, error) {
	var visits []models.Visit
	err := r.db.
		Preload("Patient").
		Where("doctor_id = ? AND status IN ?", doctorID, []string{models.VisitWaiting, models.VisitOnHold}).
		Find(&visits).Error
	return visits, err
}

// ListQueueByDepartment returns queue-participating visits for a department
func (r *VisitRepository) ListQueueByDepartment(departmentID uint) ([]models.Visit, error) {
	var visits []models.Visit
	err := r.db.
		Preload("Patient").
		Where("department_id = ? AND status IN ?", departmentID, []string{models.VisitWaiting, models.VisitOnHold}).
		Find(&visits).Error
	return visits, err
}

// ListActiveByDoctor returns every non-terminal visit assigned to a doctor
func (r *VisitRepository) ListActiveByDoctor(doctorID uint) ([]models.Visit, error) {
	var visits []models.Visit
	err := r.db.
		Where("doctor_id = ? AND status IN ?", doctorID, models.ActiveStatuses).
		Find(&visits).Error
	return visits, err
}

// ListUnresolvedByHospital returns non-terminal visits checked in before the
// cutoff (end-of-day carryover sweep)
func (r *VisitRepository) ListUnresolvedByHospital(hospitalID uint, checkedInBefore time.Time) ([]models.Visit, error) {
	var visits []models.Visit
	err := r.db.
		Where("hospital_id = ? AND checked_in_at < ? AND status IN ?",
			hospitalID, checkedInBefore, models.ActiveStatuses).
		Find(&visits).Error
	return visits, err
}

// CountQueueByDoctor counts queue-participating visits for a doctor
func (r *VisitRepository) CountQueueByDoctor(doctorID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Visit{}).
		Where("doctor_id = ? AND status IN ?", doctorID, []string{models.VisitWaiting, models.VisitOnHold}).
		Count(&count).Error
	return count, err
}

// CountQueueByDepartment counts queue-participating visits for a department
func (r *VisitRepository) CountQueueByDepartment(departmentID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Visit{}).
		Where("department_id = ? AND status IN ?", departmentID, []string{models.VisitWaiting, models.VisitOnHold}).
		Count(&count).Error
	return count, err
}

// CountTodayByDoctor counts visits checked in with a doctor since dayStart
// (daily patient limit)
func (r *VisitRepository) CountTodayByDoctor(doctorID uint, dayStart time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&models.Visit{}).
		Where("doctor_id = ? AND checked_in_at >= ?", doctorID, dayStart).
		Count(&count).Error
	return count, err
}

// Update saves a mutated visit
func (r *VisitRepository) Update(visit *models.Visit) error {
	return r.db.Save(visit).Error
}

// ReplaceWithCarryover marks the old visit terminal and creates its carryover
// successor atomically, so the queue never observes a half-applied skip
func (r *VisitRepository) ReplaceWithCarryover(old *models.Visit, successor *models.Visit) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(old).Error; err != nil {
			return err
		}
		return tx.Create(successor).Error
	})
}
