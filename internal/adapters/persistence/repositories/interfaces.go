package repositories

import (
	"context"

	"clinicq/internal/adapters/persistence/models"
)

// StaffRepository defines the staff account repository interface
type StaffRepository interface {
	Create(ctx context.Context, staff *models.Staff) error
	GetByID(ctx context.Context, id uint) (*models.Staff, error)
	GetByUsername(ctx context.Context, username string) (*models.Staff, error)
	Update(ctx context.Context, staff *models.Staff) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, hospitalID uint, offset, limit int) ([]*models.Staff, int64, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}
