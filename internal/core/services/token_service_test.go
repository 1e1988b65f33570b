package services

import (
	"sort"
	"sync"
	"testing"
	"time"

	"clinicq/internal/adapters/persistence/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPolicy(frequency string) *EffectivePolicy {
	return &EffectivePolicy{
		Location:            time.UTC,
		TokenResetFrequency: frequency,
		TokenPrefix:         "Q",
	}
}

func TestTokenNextIsSequential(t *testing.T) {
	svc := NewTokenService(newFakeTokenRepo())
	scope := TokenScope{HospitalID: 1, DepartmentID: 10, DoctorID: 100}

	for want := 1; want <= 5; want++ {
		got, err := svc.Next(scope, testPolicy(models.ResetDaily))
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestTokenScopesAreIndependent(t *testing.T) {
	svc := NewTokenService(newFakeTokenRepo())
	policy := testPolicy(models.ResetDaily)

	a := TokenScope{HospitalID: 1, DepartmentID: 10, DoctorID: 100}
	b := TokenScope{HospitalID: 1, DepartmentID: 10, DoctorID: 101}
	c := TokenScope{HospitalID: 1, DepartmentID: 11}

	for i := 0; i < 3; i++ {
		_, err := svc.Next(a, policy)
		require.NoError(t, err)
	}

	got, err := svc.Next(b, policy)
	require.NoError(t, err)
	assert.Equal(t, 1, got, "another doctor starts its own sequence")

	got, err = svc.Next(c, policy)
	require.NoError(t, err)
	assert.Equal(t, 1, got, "a department-level scope starts its own sequence")
}

func TestTokenResetsAtPeriodBoundary(t *testing.T) {
	svc := NewTokenService(newFakeTokenRepo())
	clock := time.Date(2025, 6, 10, 23, 50, 0, 0, time.UTC)
	svc.now = func() time.Time { return clock }
	scope := TokenScope{HospitalID: 1, DepartmentID: 10, DoctorID: 100}

	got, err := svc.Next(scope, testPolicy(models.ResetDaily))
	require.NoError(t, err)
	assert.Equal(t, 1, got)
	got, err = svc.Next(scope, testPolicy(models.ResetDaily))
	require.NoError(t, err)
	assert.Equal(t, 2, got)

	// Cross midnight
	clock = clock.Add(20 * time.Minute)
	got, err = svc.Next(scope, testPolicy(models.ResetDaily))
	require.NoError(t, err)
	assert.Equal(t, 1, got, "daily sequence restarts after midnight")
}

func TestTokenNeverResetSurvivesDays(t *testing.T) {
	svc := NewTokenService(newFakeTokenRepo())
	clock := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return clock }
	scope := TokenScope{HospitalID: 1, DepartmentID: 10}

	got, err := svc.Next(scope, testPolicy(models.ResetNever))
	require.NoError(t, err)
	assert.Equal(t, 1, got)

	clock = clock.AddDate(0, 2, 7)
	got, err = svc.Next(scope, testPolicy(models.ResetNever))
	require.NoError(t, err)
	assert.Equal(t, 2, got)
}

func TestTokenConcurrentAllocationIsContiguous(t *testing.T) {
	svc := NewTokenService(newFakeTokenRepo())
	scope := TokenScope{HospitalID: 1, DepartmentID: 10, DoctorID: 100}
	policy := testPolicy(models.ResetDaily)

	const n = 50
	results := make([]int, n)
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(idx int) {
			defer wg.Done()
			got, err := svc.Next(scope, policy)
			assert.NoError(t, err)
			results[idx] = got
		}(i)
	}
	wg.Wait()

	sort.Ints(results)
	for i := 0; i < n; i++ {
		assert.Equal(t, i+1, results[i], "tokens must be contiguous with no gaps or duplicates")
	}
}

func TestPeriodStart(t *testing.T) {
	// Tuesday
	now := time.Date(2025, 6, 10, 14, 30, 0, 0, time.UTC)

	assert.Equal(t,
		time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC),
		PeriodStart(models.ResetDaily, now))

	// Monday of the same week
	assert.Equal(t,
		time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC),
		PeriodStart(models.ResetWeekly, now))

	assert.Equal(t,
		time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		PeriodStart(models.ResetMonthly, now))

	assert.Equal(t,
		time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC),
		PeriodStart(models.ResetNever, now))

	// Unknown frequencies fall back to daily
	assert.Equal(t,
		time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC),
		PeriodStart("", now))
}

func TestPeriodStartWeeklyOnSunday(t *testing.T) {
	// Sunday belongs to the week that started the previous Monday
	sunday := time.Date(2025, 6, 15, 8, 0, 0, 0, time.UTC)
	assert.Equal(t,
		time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC),
		PeriodStart(models.ResetWeekly, sunday))
}

func TestFormatTokenCode(t *testing.T) {
	assert.Equal(t, "Q-001", FormatTokenCode("Q", 1))
	assert.Equal(t, "CARD-042", FormatTokenCode("CARD", 42))
	assert.Equal(t, "GEN-1234", FormatTokenCode("GEN", 1234))
	assert.Equal(t, "Q-007", FormatTokenCode("", 7), "empty prefix falls back to the default")
}
