package core

import (
	"testing"

	"github.com/valter-silva-au/staffplan/pkg/models"
)

func TestExpand(t *testing.T) {
	base := models.RecurringTaskAssignment{
		ID:             "t1",
		ClientID:       "c1",
		ClientName:     "Client One",
		TaskName:       "Task",
		SkillType:      models.SkillSenior,
		EstimatedHours: 10,
	}
	with := func(p models.RecurrencePattern, mod func(*models.RecurringTaskAssignment)) models.RecurringTaskAssignment {
		a := base
		a.RecurrencePattern = p
		if mod != nil {
			mod(&a)
		}
		return a
	}

	tests := []struct {
		name       string
		assignment models.RecurringTaskAssignment
		months     int
		want       map[string]float64
	}{
		{
			name:       "monthly every month",
			assignment: with(models.RecurrencePattern{Type: models.RecurrenceMonthly, Interval: 1, DayOfMonth: 1}, nil),
			months:     3,
			want:       map[string]float64{"2025-01": 10, "2025-02": 10, "2025-03": 10},
		},
		{
			name:       "monthly every other month",
			assignment: with(models.RecurrencePattern{Type: models.RecurrenceMonthly, Interval: 2}, nil),
			months:     4,
			want:       map[string]float64{"2025-01": 10, "2025-03": 10},
		},
		{
			name:       "monthly day clamped to month length",
			assignment: with(models.RecurrencePattern{Type: models.RecurrenceMonthly, DayOfMonth: 31}, nil),
			months:     2,
			want:       map[string]float64{"2025-01": 10, "2025-02": 10},
		},
		{
			name: "monthly occurrence before start date is skipped",
			assignment: with(models.RecurrencePattern{Type: models.RecurrenceMonthly, DayOfMonth: 5}, func(a *models.RecurringTaskAssignment) {
				a.StartDate = date(2025, 2, 10)
			}),
			months: 3,
			want:   map[string]float64{"2025-03": 10},
		},
		{
			name: "quarterly anchored on start date",
			assignment: with(models.RecurrencePattern{Type: models.RecurrenceQuarterly}, func(a *models.RecurringTaskAssignment) {
				a.StartDate = date(2025, 1, 15)
			}),
			months: 12,
			want:   map[string]float64{"2025-01": 10, "2025-04": 10, "2025-07": 10, "2025-10": 10},
		},
		{
			name:       "quarterly aligned on month of year",
			assignment: with(models.RecurrencePattern{Type: models.RecurrenceQuarterly, MonthOfYear: 2}, nil),
			months:     12,
			want:       map[string]float64{"2025-02": 10, "2025-05": 10, "2025-08": 10, "2025-11": 10},
		},
		{
			name:       "annually in month of year",
			assignment: with(models.RecurrencePattern{Type: models.RecurrenceAnnually, MonthOfYear: 3}, nil),
			months:     12,
			want:       map[string]float64{"2025-03": 10},
		},
		{
			name: "weekly counts overlapping weeks",
			assignment: with(models.RecurrencePattern{Type: models.RecurrenceWeekly, Interval: 1}, func(a *models.RecurringTaskAssignment) {
				a.EstimatedHours = 2
			}),
			months: 2,
			want:   map[string]float64{"2025-01": 10, "2025-02": 10},
		},
		{
			name: "daily scales with days in month",
			assignment: with(models.RecurrencePattern{Type: models.RecurrenceDaily, Interval: 1}, func(a *models.RecurringTaskAssignment) {
				a.EstimatedHours = 1
			}),
			months: 2,
			want:   map[string]float64{"2025-01": 31, "2025-02": 28},
		},
		{
			name: "daily frequency multiplies",
			assignment: with(models.RecurrencePattern{Type: models.RecurrenceDaily, Frequency: 2}, func(a *models.RecurringTaskAssignment) {
				a.EstimatedHours = 1
			}),
			months: 1,
			want:   map[string]float64{"2025-01": 62},
		},
		{
			name: "daily clipped by end date",
			assignment: with(models.RecurrencePattern{Type: models.RecurrenceDaily}, func(a *models.RecurringTaskAssignment) {
				a.EstimatedHours = 1
				a.EndDate = date(2025, 1, 15)
			}),
			months: 2,
			want:   map[string]float64{"2025-01": 15},
		},
		{
			name: "daily hours rounded to one decimal",
			assignment: with(models.RecurrencePattern{Type: models.RecurrenceDaily}, func(a *models.RecurringTaskAssignment) {
				a.EstimatedHours = 0.33
			}),
			months: 1,
			want:   map[string]float64{"2025-01": 10.2},
		},
		{
			name: "inactive contributes nothing",
			assignment: with(models.RecurrencePattern{Type: models.RecurrenceMonthly}, func(a *models.RecurringTaskAssignment) {
				a.Inactive = true
			}),
			months: 3,
			want:   map[string]float64{},
		},
		{
			name: "zero hours contributes nothing",
			assignment: with(models.RecurrencePattern{Type: models.RecurrenceMonthly}, func(a *models.RecurringTaskAssignment) {
				a.EstimatedHours = 0
			}),
			months: 3,
			want:   map[string]float64{},
		},
		{
			name: "start after horizon contributes nothing",
			assignment: with(models.RecurrencePattern{Type: models.RecurrenceMonthly}, func(a *models.RecurringTaskAssignment) {
				a.StartDate = date(2026, 1, 1)
			}),
			months: 3,
			want:   map[string]float64{},
		},
	}

	exp := NewRecurrenceExpander()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, issues := exp.Expand(tt.assignment, mustHorizon(t, "2025-01", tt.months))
			if len(issues) != 0 {
				t.Fatalf("unexpected issues: %v", issues)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("Expand() = %v, want %v", got, tt.want)
			}
			for k, v := range tt.want {
				if !hoursEqual(got[k], v) {
					t.Errorf("hours[%s] = %v, want %v", k, got[k], v)
				}
			}
		})
	}
}

func TestExpand_UnknownRecurrence(t *testing.T) {
	a := monthly("t1", "c1", "Client One", models.SkillSenior, 10)
	a.RecurrencePattern.Type = "Hourly"

	got, issues := NewRecurrenceExpander().Expand(a, mustHorizon(t, "2025-01", 3))
	if len(got) != 0 {
		t.Errorf("expected no hours, got %v", got)
	}
	if len(issues) != 1 {
		t.Fatalf("expected 1 issue, got %d", len(issues))
	}
	if issues[0].Code != models.IssueUnknownRecurrence || issues[0].Severity != models.SeverityWarning {
		t.Errorf("issue = %+v, want warning %s", issues[0], models.IssueUnknownRecurrence)
	}
	if issues[0].TaskID != "t1" {
		t.Errorf("TaskID = %q, want t1", issues[0].TaskID)
	}
}

func TestExpand_StableAcrossHorizons(t *testing.T) {
	patterns := []struct {
		name    string
		pattern models.RecurrencePattern
	}{
		{"quarterly", models.RecurrencePattern{Type: models.RecurrenceQuarterly}},
		{"quarterly month of year", models.RecurrencePattern{Type: models.RecurrenceQuarterly, MonthOfYear: 2}},
		{"annually", models.RecurrencePattern{Type: models.RecurrenceAnnually}},
		{"biennial month of year", models.RecurrencePattern{Type: models.RecurrenceAnnually, Interval: 2, MonthOfYear: 3}},
		{"every other month", models.RecurrencePattern{Type: models.RecurrenceMonthly, Interval: 2}},
		{"every fifth month", models.RecurrencePattern{Type: models.RecurrenceMonthly, Interval: 5}},
	}

	exp := NewRecurrenceExpander()
	for _, tt := range patterns {
		t.Run(tt.name, func(t *testing.T) {
			a := monthly("t1", "c1", "Client One", models.SkillSenior, 10)
			a.RecurrencePattern = tt.pattern

			jan, _ := exp.Expand(a, mustHorizon(t, "2025-01", 24))
			feb, _ := exp.Expand(a, mustHorizon(t, "2025-02", 24))
			for _, m := range mustHorizon(t, "2025-02", 23) {
				if !hoursEqual(jan[m.Key], feb[m.Key]) {
					t.Errorf("%s: %v from a Jan horizon, %v from a Feb horizon", m.Key, jan[m.Key], feb[m.Key])
				}
			}
		})
	}
}

func TestExpand_UndatedUsesCalendarGrid(t *testing.T) {
	exp := NewRecurrenceExpander()
	quarterly := monthly("t1", "c1", "Client One", models.SkillSenior, 10)
	quarterly.RecurrencePattern = models.RecurrencePattern{Type: models.RecurrenceQuarterly}

	got, _ := exp.Expand(quarterly, mustHorizon(t, "2025-02", 6))
	want := map[string]float64{"2025-04": 10, "2025-07": 10}
	if len(got) != len(want) {
		t.Fatalf("Expand() = %v, want %v", got, want)
	}
	for k, v := range want {
		if !hoursEqual(got[k], v) {
			t.Errorf("hours[%s] = %v, want %v", k, got[k], v)
		}
	}

	annual := monthly("t2", "c1", "Client One", models.SkillCPA, 30)
	annual.RecurrencePattern = models.RecurrencePattern{Type: models.RecurrenceAnnually}
	got, _ = exp.Expand(annual, mustHorizon(t, "2025-06", 12))
	if len(got) != 1 || !hoursEqual(got["2026-01"], 30) {
		t.Errorf("annual without start = %v, want only 2026-01", got)
	}
}
