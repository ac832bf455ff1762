package core

import (
	"strings"

	"github.com/valter-silva-au/staffplan/pkg/models"
)

// DrillDown describes one cell together with its contributing tasks.
type DrillDown struct {
	Group       string                    `json:"group"`
	GroupLabel  string                    `json:"groupLabel"`
	Month       string                    `json:"month"`
	MonthLabel  string                    `json:"monthLabel"`
	DemandHours float64                   `json:"demandHours"`
	TaskCount   int                       `json:"taskCount"`
	ClientCount int                       `json:"clientCount"`
	Tasks       []models.TaskContribution `json:"tasks"`
}

// ResolveDrillDown returns the task contributions behind the
// (groupKey, monthKey) cell. A cell without demand yields an empty slice.
func ResolveDrillDown(matrix *models.DemandMatrixData, groupKey, monthKey string) []models.TaskContribution {
	p := matrix.FindDataPoint(groupKey, monthKey)
	if p == nil {
		return []models.TaskContribution{}
	}
	return append([]models.TaskContribution{}, p.TaskBreakdown...)
}

// ResolveGroupDrillDown returns every contribution of one row across the
// visible months, in month order.
func ResolveGroupDrillDown(matrix *models.DemandMatrixData, groupKey string) []models.TaskContribution {
	out := []models.TaskContribution{}
	if matrix == nil {
		return out
	}
	for _, p := range matrix.DataPoints {
		if p.SkillType == groupKey {
			out = append(out, p.TaskBreakdown...)
		}
	}
	return out
}

// DescribeCell resolves a cell into a DrillDown. Found is false when the
// cell has no demand.
func DescribeCell(matrix *models.DemandMatrixData, groupKey, monthKey string) (detail DrillDown, found bool) {
	detail = DrillDown{
		Group:      groupKey,
		GroupLabel: matrix.GroupLabel(groupKey),
		Month:      monthKey,
		Tasks:      ResolveDrillDown(matrix, groupKey, monthKey),
	}
	if matrix != nil {
		for _, m := range matrix.Months {
			if m.Key == monthKey {
				detail.MonthLabel = m.Label
			}
		}
	}
	p := matrix.FindDataPoint(groupKey, monthKey)
	if p == nil {
		return detail, false
	}
	detail.MonthLabel = p.MonthLabel
	detail.DemandHours = p.DemandHours
	detail.TaskCount = p.TaskCount
	detail.ClientCount = p.ClientCount
	return detail, true
}

// ResolveGroupKey maps a user-supplied reference to a row key of matrix.
// The reference may be the key itself or, case-insensitively, its label.
func ResolveGroupKey(matrix *models.DemandMatrixData, ref string) (string, bool) {
	if matrix == nil {
		return "", false
	}
	for _, g := range matrix.Skills {
		if g == ref {
			return g, true
		}
	}
	for _, g := range matrix.Skills {
		if strings.EqualFold(g, ref) || strings.EqualFold(matrix.GroupLabel(g), ref) {
			return g, true
		}
	}
	return "", false
}
