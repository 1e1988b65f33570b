package repositories

import (
	"clinicq/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// ConfigRepository handles tenant configuration database operations
type ConfigRepository struct {
	db *gorm.DB
}

// NewConfigRepository creates a new config repository
func NewConfigRepository(db *gorm.DB) *ConfigRepository {
	return &ConfigRepository{db: db}
}

// GetHospitalByID returns a hospital by ID
func (r *ConfigRepository) GetHospitalByID(id uint) (*models.Hospital, error) {
	var hospital models.Hospital
	err := r.db.First(&hospital, id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	return &hospital, err
}

// ListHospitals returns all active hospitals
func (r *ConfigRepository) ListHospitals() ([]models.Hospital, error) {
	var hospitals []models.Hospital
	err := r.db.Where("is_active = ?", true).Order("id ASC").Find(&hospitals).Error
	return hospitals, err
}

// GetHospitalConfig returns the hospital-level policy row with its weekly hours
func (r *ConfigRepository) GetHospitalConfig(hospitalID uint) (*models.HospitalConfig, error) {
	var cfg models.HospitalConfig
	err := r.db.
		Preload("BusinessHours").
		Where("hospital_id = ?", hospitalID).
		First(&cfg).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	return &cfg, err
}

// UpdateHospitalConfig saves a mutated hospital config
func (r *ConfigRepository) UpdateHospitalConfig(cfg *models.HospitalConfig) error {
	return r.db.Save(cfg).Error
}

// GetDepartmentByID returns a department by ID
func (r *ConfigRepository) GetDepartmentByID(id uint) (*models.Department, error) {
	var dept models.Department
	err := r.db.First(&dept, id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	return &dept, err
}

// GetDepartmentConfig returns the department override row, or nil when the
// department has no overrides
func (r *ConfigRepository) GetDepartmentConfig(hospitalID, departmentID uint) (*models.DepartmentConfig, error) {
	var cfg models.DepartmentConfig
	err := r.db.
		Where("hospital_id = ? AND department_id = ?", hospitalID, departmentID).
		First(&cfg).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	return &cfg, err
}

// UpsertDepartmentConfig creates or updates a department override row
func (r *ConfigRepository) UpsertDepartmentConfig(cfg *models.DepartmentConfig) error {
	var existing models.DepartmentConfig
	err := r.db.
		Where("hospital_id = ? AND department_id = ?", cfg.HospitalID, cfg.DepartmentID).
		First(&existing).Error
	if err == gorm.ErrRecordNotFound {
		return r.db.Create(cfg).Error
	}
	if err != nil {
		return err
	}
	cfg.ID = existing.ID
	return r.db.Save(cfg).Error
}

// GetDoctorByID returns a doctor by ID
func (r *ConfigRepository) GetDoctorByID(id uint) (*models.Doctor, error) {
	var doctor models.Doctor
	err := r.db.Preload("Department").First(&doctor, id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	return &doctor, err
}

// UpdateDoctorStatus updates a doctor's availability status
func (r *ConfigRepository) UpdateDoctorStatus(doctorID uint, status string) error {
	return r.db.Model(&models.Doctor{}).Where("id = ?", doctorID).Update("status", status).Error
}

// GetPatientByID returns a patient by ID
func (r *ConfigRepository) GetPatientByID(id uint) (*models.Patient, error) {
	var patient models.Patient
	err := r.db.First(&patient, id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	return &patient, err
}
