package services

import (
	"fmt"
	"time"

	"clinicq/internal/adapters/persistence/models"
)

// TokenScope identifies one token sequence: (hospital, department, doctor).
// DoctorID is 0 for department-level check-ins without an assigned doctor.
type TokenScope struct {
	HospitalID   uint
	DepartmentID uint
	DoctorID     uint
}

// Key returns the durable scope key for the sequence row
func (s TokenScope) Key() string {
	return fmt.Sprintf("tok:%d:%d:%d", s.HospitalID, s.DepartmentID, s.DoctorID)
}

// TokenService assigns monotonically increasing, resettable token numbers.
// Allocation serializes per scope key on its own arena, independent of the
// doctor-level queue locks, so check-ins stay fast while another doctor's
// queue is mid-mutation.
type TokenService struct {
	tokens TokenRepository
	arena  *lockArena
	now    func() time.Time
}

// NewTokenService creates a new token service
func NewTokenService(tokens TokenRepository) *TokenService {
	return &TokenService{
		tokens: tokens,
		arena:  newLockArena(),
		now:    time.Now,
	}
}

// Next allocates the next token number for a scope under the policy's reset
// frequency and hospital time zone
func (s *TokenService) Next(scope TokenScope, policy *EffectivePolicy) (int, error) {
	release, err := s.arena.acquire(scope.Key(), defaultLockTimeout)
	if err != nil {
		return 0, err
	}
	defer release()

	periodStart := PeriodStart(policy.TokenResetFrequency, s.now().In(policy.Location))
	return s.tokens.Allocate(scope.Key(), periodStart)
}

// LastIssued returns the most recently issued token number for a scope
// without consuming one. Zero when the scope has never allocated.
func (s *TokenService) LastIssued(scope TokenScope) (int, error) {
	return s.tokens.Peek(scope.Key())
}

// PeriodStart computes the reset-period boundary containing now.
// DAILY uses the local calendar day, WEEKLY the ISO week (Monday start),
// MONTHLY the calendar month. NEVER pins a fixed epoch so the sequence
// never resets.
func PeriodStart(frequency string, now time.Time) time.Time {
	switch frequency {
	case models.ResetWeekly:
		day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		offset := (int(day.Weekday()) + 6) % 7 // Monday = 0
		return day.AddDate(0, 0, -offset)
	case models.ResetMonthly:
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	case models.ResetNever:
		return time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)
	default: // DAILY
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	}
}

// FormatTokenCode renders the display form of a token, e.g. "CARD-007"
func FormatTokenCode(prefix string, number int) string {
	if prefix == "" {
		prefix = DefaultTokenPrefix
	}
	return fmt.Sprintf("%s-%03d", prefix, number)
}
