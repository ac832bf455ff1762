package core

import (
	"fmt"
	"time"

	"github.com/valter-silva-au/staffplan/pkg/models"
)

// RecurrenceExpander turns one recurring task assignment into the hours it
// contributes to each month of a horizon.
type RecurrenceExpander interface {
	Expand(assignment models.RecurringTaskAssignment, horizon []models.MonthDescriptor) (map[string]float64, []models.ValidationIssue)
}

// calendarExpander implements RecurrenceExpander with calendar arithmetic
// over UTC dates.
type calendarExpander struct{}

// NewRecurrenceExpander creates the default RecurrenceExpander.
func NewRecurrenceExpander() RecurrenceExpander {
	return calendarExpander{}
}

// activeWindow is the part of one month in which an assignment is live.
type activeWindow struct {
	from time.Time
	to   time.Time
}

func (w activeWindow) days() int {
	return int(w.to.Sub(w.from).Hours()/24) + 1
}

func (w activeWindow) contains(d time.Time) bool {
	return !d.Before(w.from) && !d.After(w.to)
}

// calendarEpoch anchors periodic tasks without a start date. Their months
// then depend on the calendar alone, never on the first month viewed.
var calendarEpoch = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// Expand returns hours keyed by month key. Months without an occurrence are
// absent from the result. An unknown recurrence type is reported as an
// issue and contributes nothing.
func (calendarExpander) Expand(a models.RecurringTaskAssignment, horizon []models.MonthDescriptor) (map[string]float64, []models.ValidationIssue) {
	hours := make(map[string]float64)
	if a.Inactive || a.EstimatedHours <= 0 || len(horizon) == 0 {
		return hours, nil
	}

	months := make([]time.Time, 0, len(horizon))
	for _, m := range horizon {
		t, err := ParseMonthKey(m.Key)
		if err != nil {
			continue
		}
		months = append(months, t)
	}
	if len(months) == 0 {
		return hours, nil
	}

	var start *time.Time
	anchor := calendarEpoch
	if a.StartDate != nil {
		s := dateOnly(*a.StartDate)
		start, anchor = &s, s
	}
	var end *time.Time
	if a.EndDate != nil {
		e := dateOnly(*a.EndDate)
		end = &e
	}

	pattern := a.RecurrencePattern
	interval := float64(pattern.EffectiveInterval())
	perOccurrence := a.EstimatedHours * float64(pattern.EffectiveFrequency())

	var step int
	switch pattern.Type {
	case models.RecurrenceDaily, models.RecurrenceWeekly:
	case models.RecurrenceMonthly:
		step = pattern.EffectiveInterval()
	case models.RecurrenceQuarterly:
		step = 3 * pattern.EffectiveInterval()
	case models.RecurrenceAnnually:
		step = 12 * pattern.EffectiveInterval()
	default:
		return hours, []models.ValidationIssue{{
			Severity: models.SeverityWarning,
			Code:     models.IssueUnknownRecurrence,
			Message:  fmt.Sprintf("task %q for client %q has unrecognized recurrence type %q; it contributes no demand", a.TaskName, a.ClientName, pattern.Type),
			TaskID:   a.ID,
		}}
	}

	alignIndex := monthIndex(anchor)
	if (pattern.Type == models.RecurrenceQuarterly || pattern.Type == models.RecurrenceAnnually) &&
		pattern.MonthOfYear >= 1 && pattern.MonthOfYear <= 12 {
		alignIndex = anchor.Year()*12 + pattern.MonthOfYear - 1
	}

	for _, month := range months {
		w, ok := windowFor(month, start, end)
		if !ok {
			continue
		}

		var v float64
		switch pattern.Type {
		case models.RecurrenceDaily:
			v = perOccurrence * float64(w.days()) / interval
		case models.RecurrenceWeekly:
			v = perOccurrence * float64(isoWeeksOverlapping(w.from, w.to)) / interval
		default:
			if !alignedMonth(monthIndex(month), alignIndex, step) {
				continue
			}
			if !w.contains(occurrenceDate(month, pattern.DayOfMonth, a.StartDate)) {
				continue
			}
			v = perOccurrence
		}

		if v = roundHours(v); v > 0 {
			hours[MonthDescriptorFor(month).Key] = v
		}
	}

	return hours, nil
}

// windowFor clips a month to the assignment's [start, end] lifetime.
func windowFor(month time.Time, start, end *time.Time) (activeWindow, bool) {
	w := activeWindow{
		from: month,
		to:   month.AddDate(0, 1, -1),
	}
	if start != nil && start.After(w.from) {
		w.from = *start
	}
	if end != nil && end.Before(w.to) {
		w.to = *end
	}
	if w.from.After(w.to) {
		return activeWindow{}, false
	}
	return w, true
}

// alignedMonth reports whether idx falls on the step grid anchored at
// align. A zero step matches every month.
func alignedMonth(idx, align, step int) bool {
	if step <= 1 {
		return true
	}
	diff := (idx - align) % step
	if diff < 0 {
		diff += step
	}
	return diff == 0
}

// occurrenceDate picks the day of the month a periodic task falls on. The
// day is clamped to the month length; without an explicit day the start
// date's day (or the first) is used.
func occurrenceDate(month time.Time, dayOfMonth int, start *time.Time) time.Time {
	day := dayOfMonth
	if day <= 0 {
		day = 1
		if start != nil {
			day = start.Day()
		}
	}
	if n := daysIn(month); day > n {
		day = n
	}
	return time.Date(month.Year(), month.Month(), day, 0, 0, 0, 0, time.UTC)
}

// isoWeeksOverlapping counts the Monday-based weeks that intersect
// [from, to].
func isoWeeksOverlapping(from, to time.Time) int {
	return int(mondayOf(to).Sub(mondayOf(from)).Hours()/(24*7)) + 1
}

func mondayOf(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	return dateOnly(t).AddDate(0, 0, -offset)
}
