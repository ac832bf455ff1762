package models

import "time"

// SkillType names a category of labor that tasks are staffed by.
type SkillType string

const (
	SkillJunior      SkillType = "Junior"
	SkillSenior      SkillType = "Senior"
	SkillCPA         SkillType = "CPA"
	SkillManager     SkillType = "Manager"
	SkillPartner     SkillType = "Partner"
	SkillBookkeeping SkillType = "Bookkeeping"
	SkillTax         SkillType = "Tax"
	SkillAudit       SkillType = "Audit"
	SkillAdvisory    SkillType = "Advisory"
)

// KnownSkills lists the skill enumeration in display order.
var KnownSkills = []SkillType{
	SkillJunior,
	SkillSenior,
	SkillCPA,
	SkillManager,
	SkillPartner,
	SkillBookkeeping,
	SkillTax,
	SkillAudit,
	SkillAdvisory,
}

// IsKnownSkill reports whether s is part of the skill enumeration.
func IsKnownSkill(s SkillType) bool {
	for _, k := range KnownSkills {
		if k == s {
			return true
		}
	}
	return false
}

// RecurrenceType is the period a recurring task repeats on.
type RecurrenceType string

const (
	RecurrenceDaily     RecurrenceType = "Daily"
	RecurrenceWeekly    RecurrenceType = "Weekly"
	RecurrenceMonthly   RecurrenceType = "Monthly"
	RecurrenceQuarterly RecurrenceType = "Quarterly"
	RecurrenceAnnually  RecurrenceType = "Annually"
)

// RecurrencePattern describes how often an assignment repeats.
type RecurrencePattern struct {
	Type        RecurrenceType `json:"type" yaml:"type" toml:"type"`
	Interval    int            `json:"interval,omitempty" yaml:"interval,omitempty" toml:"interval,omitempty"`
	DayOfMonth  int            `json:"dayOfMonth,omitempty" yaml:"day_of_month,omitempty" toml:"day_of_month,omitempty"`
	MonthOfYear int            `json:"monthOfYear,omitempty" yaml:"month_of_year,omitempty" toml:"month_of_year,omitempty"`
	Frequency   int            `json:"frequency,omitempty" yaml:"frequency,omitempty" toml:"frequency,omitempty"`
}

// EffectiveInterval returns the interval, treating non-positive values as 1.
func (p RecurrencePattern) EffectiveInterval() int {
	if p.Interval <= 0 {
		return 1
	}
	return p.Interval
}

// EffectiveFrequency returns the occurrences per period, treating
// non-positive values as 1.
func (p RecurrencePattern) EffectiveFrequency() int {
	if p.Frequency <= 0 {
		return 1
	}
	return p.Frequency
}

// RecurringTaskAssignment is a task definition bound to one client. The
// engine treats it as read-only input.
type RecurringTaskAssignment struct {
	ID                 string            `json:"id" yaml:"id" toml:"id"`
	ClientID           string            `json:"clientId" yaml:"client_id" toml:"client_id"`
	ClientName         string            `json:"clientName" yaml:"client_name" toml:"client_name"`
	TaskName           string            `json:"taskName" yaml:"task_name" toml:"task_name"`
	SkillType          SkillType         `json:"skillType" yaml:"skill_type" toml:"skill_type"`
	EstimatedHours     float64           `json:"estimatedHours" yaml:"estimated_hours" toml:"estimated_hours"`
	RecurrencePattern  RecurrencePattern `json:"recurrencePattern" yaml:"recurrence" toml:"recurrence"`
	PreferredStaffID   *string           `json:"preferredStaffId,omitempty" yaml:"preferred_staff_id,omitempty" toml:"preferred_staff_id,omitempty"`
	PreferredStaffName *string           `json:"preferredStaffName,omitempty" yaml:"preferred_staff_name,omitempty" toml:"preferred_staff_name,omitempty"`
	StartDate          *time.Time        `json:"startDate,omitempty" yaml:"start_date,omitempty" toml:"start_date,omitempty"`
	EndDate            *time.Time        `json:"endDate,omitempty" yaml:"end_date,omitempty" toml:"end_date,omitempty"`
	Inactive           bool              `json:"inactive,omitempty" yaml:"inactive,omitempty" toml:"inactive,omitempty"`
}

// HasPreferredStaff reports whether a preferred staff member is assigned.
func (a RecurringTaskAssignment) HasPreferredStaff() bool {
	return a.PreferredStaffID != nil
}

// StringPtr returns a pointer to a copy of s.
func StringPtr(s string) *string {
	return &s
}
