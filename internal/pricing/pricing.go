// Package pricing derives rental and late-fee day rates from a movie's age.
package pricing

import (
	"errors"
	"fmt"
	"time"
)

// Tier is the pricing category a movie falls into based on its age.
type Tier string

const (
	TierNew     Tier = "NEW"
	TierRegular Tier = "REGULAR"
	TierOld     Tier = "OLD"
)

// DaysInYear is the fixed year length used for tier limits. Leap years are
// intentionally ignored.
const DaysInYear = 365

// ErrNegativeDays is returned when a price is requested for a negative number
// of days.
var ErrNegativeDays = errors.New("day count must not be negative")

// Rates holds a day rate in cents for each pricing tier.
type Rates struct {
	New     int64
	Regular int64
	Old     int64
}

func (r Rates) forTier(t Tier) int64 {
	switch t {
	case TierNew:
		return r.New
	case TierRegular:
		return r.Regular
	default:
		return r.Old
	}
}

// Config holds the tier age limits (in years) and the per-tier day rates.
type Config struct {
	NewLimitYears     float64
	RegularLimitYears float64
	RentalRates       Rates
	FeeRates          Rates
}

// Engine computes rental and late-fee prices. It is pure: given the same
// clock reading it always produces the same result.
type Engine struct {
	cfg Config
	now func() time.Time
}

// NewEngine validates the configuration and returns an Engine. The now
// function supplies "today" for age classification; pass nil for time.Now.
func NewEngine(cfg Config, now func() time.Time) (*Engine, error) {
	if cfg.NewLimitYears <= 0 || cfg.RegularLimitYears <= 0 {
		return nil, fmt.Errorf("pricing limits must be positive, got new=%v regular=%v", cfg.NewLimitYears, cfg.RegularLimitYears)
	}
	if cfg.NewLimitYears >= cfg.RegularLimitYears {
		return nil, fmt.Errorf("new limit (%v years) must be below regular limit (%v years)", cfg.NewLimitYears, cfg.RegularLimitYears)
	}
	if now == nil {
		now = time.Now
	}
	return &Engine{cfg: cfg, now: now}, nil
}

// Classify returns the pricing tier for a movie released on the given date.
// Age is measured in whole calendar days; a movie released exactly at a tier
// limit still belongs to the younger tier.
func (e *Engine) Classify(releaseDate time.Time) Tier {
	ageDays := float64(daysBetween(releaseDate, e.now()))

	switch {
	case ageDays <= e.cfg.NewLimitYears*DaysInYear:
		return TierNew
	case ageDays <= e.cfg.RegularLimitYears*DaysInYear:
		return TierRegular
	default:
		return TierOld
	}
}

// RentalPrice returns the charge in cents for renting a movie for the given
// number of days.
func (e *Engine) RentalPrice(days int, releaseDate time.Time) (int64, error) {
	if days < 0 {
		return 0, fmt.Errorf("rental price for %d days: %w", days, ErrNegativeDays)
	}
	return e.cfg.RentalRates.forTier(e.Classify(releaseDate)) * int64(days), nil
}

// FeePrice returns the late fee in cents for keeping a movie the given number
// of days past its due date.
func (e *Engine) FeePrice(daysLate int, releaseDate time.Time) (int64, error) {
	if daysLate < 0 {
		return 0, fmt.Errorf("fee price for %d days: %w", daysLate, ErrNegativeDays)
	}
	return e.cfg.FeeRates.forTier(e.Classify(releaseDate)) * int64(daysLate), nil
}

// DateOnly truncates a timestamp to its calendar date in UTC.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func daysBetween(from, to time.Time) int {
	return int(DateOnly(to).Sub(DateOnly(from)).Hours() / 24)
}

// DaysBetween returns the number of whole calendar days from one date to
// another. The result is negative when from is after to.
func DaysBetween(from, to time.Time) int {
	return daysBetween(from, to)
}
