package core

import (
	"fmt"
	"strings"

	"github.com/valter-silva-au/staffplan/pkg/models"
)

// FilterMatrix derives a new matrix holding only the task contributions
// that pass filters. Cells left with an empty breakdown are dropped and
// every aggregate is recomputed from what remains; the input matrix is not
// modified. Revenue annotations do not survive filtering.
//
// Month range indices address matrix.Horizon, so filtering an already
// filtered matrix with the same filters returns an identical matrix.
func FilterMatrix(matrix *models.DemandMatrixData, filters models.DemandFilters) (*models.DemandMatrixData, error) {
	if matrix == nil {
		return nil, ErrNilMatrix
	}

	pass, err := contributionPredicate(filters)
	if err != nil {
		return nil, err
	}

	horizon := matrix.Horizon
	if len(horizon) == 0 {
		horizon = matrix.Months
	}
	months, err := visibleMonths(horizon, matrix.Months, filters.MonthRange)
	if err != nil {
		return nil, err
	}
	inWindow := make(map[string]bool, len(months))
	for _, m := range months {
		inWindow[m.Key] = true
	}

	points := make([]models.DemandDataPoint, 0, len(matrix.DataPoints))
	for _, p := range matrix.DataPoints {
		if !inWindow[p.Month] {
			continue
		}
		var breakdown []models.TaskContribution
		for _, c := range p.TaskBreakdown {
			if pass(c) {
				breakdown = append(breakdown, c)
			}
		}
		points = append(points, models.DemandDataPoint{
			SkillType:     p.SkillType,
			Month:         p.Month,
			MonthLabel:    p.MonthLabel,
			TaskBreakdown: breakdown,
		})
	}

	return assembleMatrix(matrix.GroupingMode, horizon, months, points, matrix.GroupLabels), nil
}

// contributionPredicate compiles filters into a single per-contribution
// test. Skills match case-insensitively; client and staff ids match
// exactly.
func contributionPredicate(filters models.DemandFilters) (func(models.TaskContribution) bool, error) {
	mode := filters.PreferredStaffFilterMode
	if mode == "" {
		mode = models.StaffFilterAll
	}
	switch mode {
	case models.StaffFilterAll, models.StaffFilterSpecific, models.StaffFilterNone:
	default:
		return nil, fmt.Errorf("%w: %q (use all, specific, or none)", ErrInvalidStaffMode, filters.PreferredStaffFilterMode)
	}

	skills := toLowerSet(filters.Skills)
	clients := toSet(filters.Clients)
	staff := toSet(filters.PreferredStaff)

	return func(c models.TaskContribution) bool {
		if len(skills) > 0 && !skills[strings.ToLower(string(c.SkillType))] {
			return false
		}
		if len(clients) > 0 && !clients[c.ClientID] {
			return false
		}
		return passesStaffFilter(c, mode, staff)
	}, nil
}

// passesStaffFilter applies the three-mode preferred staff rule. In none
// mode the staff selection is ignored.
func passesStaffFilter(c models.TaskContribution, mode models.PreferredStaffFilterMode, staff map[string]bool) bool {
	switch mode {
	case models.StaffFilterSpecific:
		return c.PreferredStaffID != nil && staff[*c.PreferredStaffID]
	case models.StaffFilterNone:
		return c.PreferredStaffID == nil
	default:
		return true
	}
}

// visibleMonths intersects the currently visible months with the requested
// window over the horizon. A nil window keeps the current months.
func visibleMonths(horizon, current []models.MonthDescriptor, window *models.MonthRange) ([]models.MonthDescriptor, error) {
	if window == nil {
		return append([]models.MonthDescriptor(nil), current...), nil
	}
	if err := CheckMonthRange(*window, len(horizon)); err != nil {
		return nil, err
	}
	visible := make(map[string]bool, len(current))
	for _, m := range current {
		visible[m.Key] = true
	}
	months := make([]models.MonthDescriptor, 0, window.Len())
	for _, m := range horizon[window.Start : window.End+1] {
		if visible[m.Key] {
			months = append(months, m)
		}
	}
	return months, nil
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[item] = true
	}
	return set
}

// toLowerSet converts a string slice to a lowercase lookup set.
func toLowerSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[strings.ToLower(item)] = true
	}
	return set
}
