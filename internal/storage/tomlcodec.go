package storage

import (
	"fmt"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/valter-silva-au/staffplan/pkg/models"
)

// tomlDataset mirrors models.Dataset for encoding. go-toml writes any
// TextMarshaler, including *time.Time, as a quoted string, so assignment
// dates are carried as toml.LocalDate values to come out as native dates.
type tomlDataset struct {
	Assignments []tomlAssignment `toml:"assignments"`
	Clients     []models.Client  `toml:"clients"`
	Staff       []models.Staff   `toml:"staff"`
	Skills      []models.Skill   `toml:"skills"`
}

type tomlAssignment struct {
	ID                 string                   `toml:"id"`
	ClientID           string                   `toml:"client_id"`
	ClientName         string                   `toml:"client_name"`
	TaskName           string                   `toml:"task_name"`
	SkillType          models.SkillType         `toml:"skill_type"`
	EstimatedHours     float64                  `toml:"estimated_hours"`
	RecurrencePattern  models.RecurrencePattern `toml:"recurrence"`
	PreferredStaffID   *string                  `toml:"preferred_staff_id,omitempty"`
	PreferredStaffName *string                  `toml:"preferred_staff_name,omitempty"`
	StartDate          toml.LocalDate           `toml:"start_date,omitempty"`
	EndDate            toml.LocalDate           `toml:"end_date,omitempty"`
	Inactive           bool                     `toml:"inactive,omitempty"`
}

func encodeTOML(ds *models.Dataset) ([]byte, error) {
	out := tomlDataset{
		Assignments: make([]tomlAssignment, len(ds.Assignments)),
		Clients:     ds.Clients,
		Staff:       ds.Staff,
		Skills:      ds.Skills,
	}
	for i, a := range ds.Assignments {
		out.Assignments[i] = tomlAssignment{
			ID:                 a.ID,
			ClientID:           a.ClientID,
			ClientName:         a.ClientName,
			TaskName:           a.TaskName,
			SkillType:          a.SkillType,
			EstimatedHours:     a.EstimatedHours,
			RecurrencePattern:  a.RecurrencePattern,
			PreferredStaffID:   a.PreferredStaffID,
			PreferredStaffName: a.PreferredStaffName,
			StartDate:          localDate(a.StartDate),
			EndDate:            localDate(a.EndDate),
			Inactive:           a.Inactive,
		}
	}
	data, err := toml.Marshal(&out)
	if err != nil {
		return nil, fmt.Errorf("encoding toml: %w", err)
	}
	return data, nil
}

// localDate returns the calendar date of t; nil maps to the zero value,
// which omitempty drops.
func localDate(t *time.Time) toml.LocalDate {
	if t == nil {
		return toml.LocalDate{}
	}
	return toml.LocalDate{Year: t.Year(), Month: int(t.Month()), Day: t.Day()}
}
