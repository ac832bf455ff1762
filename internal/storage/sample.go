package storage

import (
	"time"

	"github.com/valter-silva-au/staffplan/pkg/models"
)

// SampleDataset returns a small dataset written by `staffplan init`.
// Recurring work starts in the month of start.
func SampleDataset(start time.Time) *models.Dataset {
	first := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC)
	alice := models.StringPtr("staff-alice")

	return &models.Dataset{
		Clients: []models.Client{
			{ID: "client-acme", Name: "Acme Corp", HourlyRate: 150, ExpectedRevenue: 60000},
			{ID: "client-globex", Name: "Globex", HourlyRate: 120, ExpectedRevenue: 25000},
		},
		Staff: []models.Staff{
			{ID: "staff-alice", Name: "Alice Nguyen"},
			{ID: "staff-bob", Name: "Bob Okafor"},
		},
		Skills: []models.Skill{
			{Name: models.SkillJunior, CapacityHours: 320},
			{Name: models.SkillSenior, CapacityHours: 160},
			{Name: models.SkillCPA, CapacityHours: 160},
		},
		Assignments: []models.RecurringTaskAssignment{
			{
				ID:                "acme-bookkeeping",
				ClientID:          "client-acme",
				ClientName:        "Acme Corp",
				TaskName:          "Monthly bookkeeping",
				SkillType:         models.SkillJunior,
				EstimatedHours:    10,
				RecurrencePattern: models.RecurrencePattern{Type: models.RecurrenceMonthly, DayOfMonth: 5},
				PreferredStaffID:  alice,
				StartDate:         &first,
			},
			{
				ID:                "acme-quarterly-review",
				ClientID:          "client-acme",
				ClientName:        "Acme Corp",
				TaskName:          "Quarterly review",
				SkillType:         models.SkillSenior,
				EstimatedHours:    20,
				RecurrencePattern: models.RecurrencePattern{Type: models.RecurrenceQuarterly},
				StartDate:         &first,
			},
			{
				ID:                "globex-payroll",
				ClientID:          "client-globex",
				ClientName:        "Globex",
				TaskName:          "Payroll run",
				SkillType:         models.SkillJunior,
				EstimatedHours:    2,
				RecurrencePattern: models.RecurrencePattern{Type: models.RecurrenceWeekly},
				PreferredStaffID:  models.StringPtr("staff-bob"),
				StartDate:         &first,
			},
			{
				ID:                "globex-tax-return",
				ClientID:          "client-globex",
				ClientName:        "Globex",
				TaskName:          "Annual tax return",
				SkillType:         models.SkillCPA,
				EstimatedHours:    30,
				RecurrencePattern: models.RecurrencePattern{Type: models.RecurrenceAnnually, MonthOfYear: 3},
				StartDate:         &first,
			},
		},
	}
}
