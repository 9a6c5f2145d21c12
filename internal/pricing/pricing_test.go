package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testConfig = Config{
	NewLimitYears:     1,
	RegularLimitYears: 3,
	RentalRates:       Rates{New: 500, Regular: 350, Old: 200},
	FeeRates:          Rates{New: 250, Regular: 150, Old: 100},
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestNewEngineRejectsBadConfig(t *testing.T) {
	testCases := []struct {
		name string
		cfg  Config
	}{
		{"zero new limit", Config{NewLimitYears: 0, RegularLimitYears: 3}},
		{"zero regular limit", Config{NewLimitYears: 1, RegularLimitYears: 0}},
		{"new above regular", Config{NewLimitYears: 3, RegularLimitYears: 1}},
		{"limits equal", Config{NewLimitYears: 2, RegularLimitYears: 2}},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewEngine(tt.cfg, nil)
			assert.Error(t, err)
		})
	}
}

func TestClassifyBoundaries(t *testing.T) {
	today := time.Date(2024, 6, 15, 10, 30, 0, 0, time.UTC)
	engine, err := NewEngine(testConfig, fixedClock(today))
	require.NoError(t, err)

	testCases := []struct {
		name     string
		ageDays  int
		expected Tier
	}{
		{"released today", 0, TierNew},
		{"one day before new limit", 364, TierNew},
		{"exactly at new limit", 365, TierNew},
		{"one day past new limit", 366, TierRegular},
		{"exactly at regular limit", 3 * 365, TierRegular},
		{"one day past regular limit", 3*365 + 1, TierOld},
		{"decades old", 40 * 365, TierOld},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			release := today.AddDate(0, 0, -tt.ageDays)
			assert.Equal(t, tt.expected, engine.Classify(release))
		})
	}
}

func TestClassifyIgnoresTimeOfDay(t *testing.T) {
	today := time.Date(2024, 6, 15, 0, 0, 1, 0, time.UTC)
	engine, err := NewEngine(testConfig, fixedClock(today))
	require.NoError(t, err)

	// Released late in the evening exactly 365 days ago: still New, because
	// classification works on calendar dates, not timestamps.
	release := time.Date(2023, 6, 16, 23, 59, 59, 0, time.UTC)
	assert.Equal(t, TierNew, engine.Classify(release))
}

func TestRentalPricePerTier(t *testing.T) {
	today := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	engine, err := NewEngine(testConfig, fixedClock(today))
	require.NoError(t, err)

	testCases := []struct {
		name     string
		ageDays  int
		days     int
		expected int64
	}{
		{"new tier", 30, 3, 3 * 500},
		{"regular tier", 2 * 365, 3, 3 * 350},
		{"old tier", 10 * 365, 3, 3 * 200},
		{"zero days", 30, 0, 0},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			release := today.AddDate(0, 0, -tt.ageDays)
			price, err := engine.RentalPrice(tt.days, release)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, price)
		})
	}
}

func TestFeePricePerTier(t *testing.T) {
	today := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	engine, err := NewEngine(testConfig, fixedClock(today))
	require.NoError(t, err)

	testCases := []struct {
		name     string
		ageDays  int
		daysLate int
		expected int64
	}{
		{"new tier", 30, 2, 2 * 250},
		{"regular tier", 2 * 365, 2, 2 * 150},
		{"old tier", 10 * 365, 2, 2 * 100},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			release := today.AddDate(0, 0, -tt.ageDays)
			fee, err := engine.FeePrice(tt.daysLate, release)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, fee)
		})
	}
}

func TestNegativeDaysRejected(t *testing.T) {
	engine, err := NewEngine(testConfig, nil)
	require.NoError(t, err)

	release := time.Now().AddDate(0, -1, 0)

	_, err = engine.RentalPrice(-1, release)
	assert.ErrorIs(t, err, ErrNegativeDays)

	_, err = engine.FeePrice(-3, release)
	assert.ErrorIs(t, err, ErrNegativeDays)
}

func TestDaysBetween(t *testing.T) {
	testCases := []struct {
		from     time.Time
		to       time.Time
		expected int
	}{
		{time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 6, 4, 0, 0, 0, 0, time.UTC), 3},
		{time.Date(2024, 6, 1, 23, 0, 0, 0, time.UTC), time.Date(2024, 6, 2, 1, 0, 0, 0, time.UTC), 1},
		{time.Date(2024, 6, 4, 0, 0, 0, 0, time.UTC), time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), -3},
		{time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC), time.Date(2024, 6, 1, 20, 0, 0, 0, time.UTC), 0},
	}

	for _, tt := range testCases {
		assert.Equal(t, tt.expected, DaysBetween(tt.from, tt.to))
	}
}
