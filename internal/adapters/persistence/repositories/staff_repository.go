package repositories

import (
	"context"

	"clinicq/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// staffRepository implements StaffRepository interface
type staffRepository struct {
	db *gorm.DB
}

// NewStaffRepository creates a new staff repository
func NewStaffRepository(db *gorm.DB) StaffRepository {
	return &staffRepository{db: db}
}

// Create creates a new staff account
func (r *staffRepository) Create(ctx context.Context, staff *models.Staff) error {
	return r.db.WithContext(ctx).Create(staff).Error
}

// GetByID gets a staff account by ID
func (r *staffRepository) GetByID(ctx context.Context, id uint) (*models.Staff, error) {
	var staff models.Staff
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&staff).Error
	if err != nil {
		return nil, err
	}
	return &staff, nil
}

// GetByUsername gets a staff account by username
func (r *staffRepository) GetByUsername(ctx context.Context, username string) (*models.Staff, error) {
	var staff models.Staff
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&staff).Error
	if err != nil {
		return nil, err
	}
	return &staff, nil
}

// Update updates a staff account
func (r *staffRepository) Update(ctx context.Context, staff *models.Staff) error {
	return r.db.WithContext(ctx).Save(staff).Error
}

// Delete soft deletes a staff account
func (r *staffRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Staff{}, id).Error
}

// List lists a hospital's staff with pagination
func (r *staffRepository) List(ctx context.Context, hospitalID uint, offset, limit int) ([]*models.Staff, int64, error) {
	var staff []*models.Staff
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Staff{}).Where("hospital_id = ?", hospitalID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Order("id ASC").Offset(offset).Limit(limit).Find(&staff).Error; err != nil {
		return nil, 0, err
	}

	return staff, total, nil
}

// ExistsByUsername checks if username exists
func (r *staffRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Staff{}).Where("username = ?", username).Count(&count).Error
	return count > 0, err
}

// ExistsByEmail checks if email exists
func (r *staffRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Staff{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}
