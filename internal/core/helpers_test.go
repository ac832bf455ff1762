package core

import (
	"time"

	"github.com/valter-silva-au/staffplan/pkg/models"
)

// fatalHelper is the part of testing.TB the helpers need; *rapid.T
// satisfies it too.
type fatalHelper interface {
	Helper()
	Fatalf(format string, args ...any)
}

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func mustHorizon(t fatalHelper, start string, months int) []models.MonthDescriptor {
	t.Helper()
	first, err := ParseMonthKey(start)
	if err != nil {
		t.Fatalf("ParseMonthKey(%q): %v", start, err)
	}
	h, err := NewHorizon(first, months)
	if err != nil {
		t.Fatalf("NewHorizon: %v", err)
	}
	return h
}

func monthly(id, clientID, clientName string, skill models.SkillType, hours float64) models.RecurringTaskAssignment {
	return models.RecurringTaskAssignment{
		ID:                id,
		ClientID:          clientID,
		ClientName:        clientName,
		TaskName:          id,
		SkillType:         skill,
		EstimatedHours:    hours,
		RecurrencePattern: models.RecurrencePattern{Type: models.RecurrenceMonthly, Interval: 1, DayOfMonth: 1},
	}
}

func withStaff(a models.RecurringTaskAssignment, id string) models.RecurringTaskAssignment {
	a.PreferredStaffID = models.StringPtr(id)
	return a
}

func mustBuild(t fatalHelper, assignments []models.RecurringTaskAssignment, horizon []models.MonthDescriptor, mode models.GroupingMode) *models.DemandMatrixData {
	t.Helper()
	m, _, err := NewMatrixBuilder(nil).Build(assignments, horizon, mode)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return m
}

func mustFilter(t fatalHelper, m *models.DemandMatrixData, f models.DemandFilters) *models.DemandMatrixData {
	t.Helper()
	out, err := FilterMatrix(m, f)
	if err != nil {
		t.Fatalf("FilterMatrix: %v", err)
	}
	return out
}

func cellHoursOf(m *models.DemandMatrixData, group, month string) float64 {
	if p := m.FindDataPoint(group, month); p != nil {
		return p.DemandHours
	}
	return 0
}

// sampleAssignments is a small mixed workload used across tests.
func sampleAssignments() []models.RecurringTaskAssignment {
	quarterly := monthly("acme-review", "client-acme", "Acme", models.SkillSenior, 20)
	quarterly.RecurrencePattern = models.RecurrencePattern{Type: models.RecurrenceQuarterly, Interval: 1}
	weekly := monthly("globex-payroll", "client-globex", "Globex", models.SkillJunior, 2)
	weekly.RecurrencePattern = models.RecurrencePattern{Type: models.RecurrenceWeekly, Interval: 1}
	return []models.RecurringTaskAssignment{
		withStaff(monthly("acme-books", "client-acme", "Acme", models.SkillJunior, 10), "staff-alice"),
		quarterly,
		withStaff(weekly, "staff-bob"),
		monthly("globex-tax", "client-globex", "Globex", models.SkillCPA, 5),
	}
}
