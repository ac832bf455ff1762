package core

import (
	"fmt"
	"time"

	"github.com/valter-silva-au/staffplan/pkg/models"
)

// DefaultHorizonMonths is the default length of the reporting horizon.
const DefaultHorizonMonths = 12

const (
	monthKeyLayout   = "2006-01"
	monthLabelLayout = "Jan 2006"
)

// presetLengths maps month presets to their window length.
var presetLengths = map[models.MonthPreset]int{
	models.PresetQuarter:  3,
	models.PresetHalfYear: 6,
	models.PresetYear:     12,
}

// MonthDescriptorFor returns the descriptor of the month containing t.
func MonthDescriptorFor(t time.Time) models.MonthDescriptor {
	first := firstOfMonth(t)
	return models.MonthDescriptor{
		Key:   first.Format(monthKeyLayout),
		Label: first.Format(monthLabelLayout),
	}
}

// ParseMonthKey parses a "2006-01" month key into the first day of that
// month in UTC.
func ParseMonthKey(key string) (time.Time, error) {
	t, err := time.Parse(monthKeyLayout, key)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing month key %q: %w", key, err)
	}
	return t, nil
}

// NewHorizon returns months consecutive month descriptors starting at the
// month containing start.
func NewHorizon(start time.Time, months int) ([]models.MonthDescriptor, error) {
	if months <= 0 {
		return nil, fmt.Errorf("%w: length must be positive, got %d", ErrInvalidHorizon, months)
	}
	first := firstOfMonth(start)
	horizon := make([]models.MonthDescriptor, months)
	for i := range horizon {
		horizon[i] = MonthDescriptorFor(first.AddDate(0, i, 0))
	}
	return horizon, nil
}

// ValidateHorizon checks that a horizon is non-empty, parseable, and
// contiguous with strictly increasing months.
func ValidateHorizon(horizon []models.MonthDescriptor) error {
	if len(horizon) == 0 {
		return fmt.Errorf("%w: horizon is empty", ErrInvalidHorizon)
	}
	var prev time.Time
	for i, m := range horizon {
		t, err := ParseMonthKey(m.Key)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidHorizon, err)
		}
		if i > 0 && !t.Equal(prev.AddDate(0, 1, 0)) {
			return fmt.Errorf("%w: month %s does not follow %s", ErrInvalidHorizon, m.Key, horizon[i-1].Key)
		}
		prev = t
	}
	return nil
}

// CheckMonthRange verifies that r addresses a valid window of a horizon of
// the given length.
func CheckMonthRange(r models.MonthRange, horizonLen int) error {
	if r.Start < 0 || r.End < 0 {
		return fmt.Errorf("%w: indices must be non-negative (start=%d, end=%d)", ErrInvalidMonthRange, r.Start, r.End)
	}
	if r.Start > r.End {
		return fmt.Errorf("%w: start %d is after end %d", ErrInvalidMonthRange, r.Start, r.End)
	}
	if r.End >= horizonLen {
		return fmt.Errorf("%w: end %d is outside a %d-month horizon", ErrInvalidMonthRange, r.End, horizonLen)
	}
	return nil
}

// PresetRange resolves a month preset to an index window over a horizon of
// horizonLen months. Custom presets use the caller-supplied range as is.
func PresetRange(preset models.MonthPreset, horizonLen int, custom *models.MonthRange) (*models.MonthRange, error) {
	if preset == models.PresetCustom {
		if custom == nil {
			return nil, fmt.Errorf("%w: custom preset requires start and end", ErrInvalidMonthRange)
		}
		if err := CheckMonthRange(*custom, horizonLen); err != nil {
			return nil, err
		}
		r := *custom
		return &r, nil
	}

	n, ok := presetLengths[preset]
	if !ok {
		return nil, fmt.Errorf("%w: unknown preset %q (use quarter, half-year, year, custom)", ErrInvalidMonthRange, preset)
	}
	if n > horizonLen {
		return nil, fmt.Errorf("%w: preset %s needs %d months, horizon has %d", ErrInvalidMonthRange, preset, n, horizonLen)
	}
	return &models.MonthRange{Start: 0, End: n - 1}, nil
}

func firstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// dateOnly drops the clock and location of t, keeping its calendar date.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func daysIn(month time.Time) int {
	return firstOfMonth(month).AddDate(0, 1, -1).Day()
}

// monthIndex returns a linear month number for month arithmetic.
func monthIndex(t time.Time) int {
	return t.Year()*12 + int(t.Month()) - 1
}
