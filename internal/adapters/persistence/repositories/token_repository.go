package repositories

import (
	"time"

	"clinicq/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// TokenRepository owns the durable per-scope token counters
type TokenRepository struct {
	db *gorm.DB
}

// NewTokenRepository creates a new token repository
func NewTokenRepository(db *gorm.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

// Allocate returns the next token number for a scope. The sequence resets to
// 1 whenever periodStart advances past the stored period boundary. Callers
// serialize per scope key, the transaction guards against lost updates.
func (r *TokenRepository) Allocate(scopeKey string, periodStart time.Time) (int, error) {
	var number int
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var seq models.TokenSequence
		err := tx.Where("scope_key = ?", scopeKey).First(&seq).Error
		if err == gorm.ErrRecordNotFound {
			seq = models.TokenSequence{
				ScopeKey:    scopeKey,
				PeriodStart: periodStart,
				LastNumber:  1,
			}
			number = 1
			return tx.Create(&seq).Error
		}
		if err != nil {
			return err
		}

		if periodStart.After(seq.PeriodStart) {
			seq.PeriodStart = periodStart
			seq.LastNumber = 1
		} else {
			seq.LastNumber++
		}
		number = seq.LastNumber
		return tx.Save(&seq).Error
	})
	return number, err
}

// Peek returns the last allocated number for a scope without consuming one
func (r *TokenRepository) Peek(scopeKey string) (int, error) {
	var seq models.TokenSequence
	err := r.db.Where("scope_key = ?", scopeKey).First(&seq).Error
	if err == gorm.ErrRecordNotFound {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return seq.LastNumber, nil
}
