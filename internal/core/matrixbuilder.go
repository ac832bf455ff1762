package core

import (
	"fmt"
	"sort"
	"strings"

	"github.com/valter-silva-au/staffplan/pkg/models"
)

// MatrixBuilder expands recurring task assignments into an unfiltered
// demand matrix.
type MatrixBuilder interface {
	Build(assignments []models.RecurringTaskAssignment, horizon []models.MonthDescriptor, mode models.GroupingMode) (*models.DemandMatrixData, []models.ValidationIssue, error)
}

type matrixBuilder struct {
	expander RecurrenceExpander
}

// NewMatrixBuilder creates a MatrixBuilder that uses expander to compute
// per-month hours. A nil expander selects the default calendar expander.
func NewMatrixBuilder(expander RecurrenceExpander) MatrixBuilder {
	if expander == nil {
		expander = NewRecurrenceExpander()
	}
	return &matrixBuilder{expander: expander}
}

// ValidGroupingMode reports whether mode is a supported grouping.
func ValidGroupingMode(mode models.GroupingMode) bool {
	return mode == models.GroupBySkill || mode == models.GroupByClient
}

// Build folds every assignment's monthly hours into (group, month) cells.
// Malformed assignments are skipped and reported; only an unsupported
// grouping mode or an invalid horizon fails the build.
func (b *matrixBuilder) Build(assignments []models.RecurringTaskAssignment, horizon []models.MonthDescriptor, mode models.GroupingMode) (*models.DemandMatrixData, []models.ValidationIssue, error) {
	if !ValidGroupingMode(mode) {
		return nil, nil, fmt.Errorf("%w: %q (use skill or client)", ErrUnsupportedGrouping, mode)
	}
	if err := ValidateHorizon(horizon); err != nil {
		return nil, nil, err
	}

	var issues []models.ValidationIssue
	cells := make(map[cellKey]*models.DemandDataPoint)
	var order []cellKey
	labels := make(map[string]string)
	seenIDs := make(map[string]bool, len(assignments))

	for _, a := range assignments {
		if a.SkillType == "" || a.ClientID == "" {
			issues = append(issues, models.ValidationIssue{
				Severity: models.SeverityWarning,
				Code:     models.IssueMalformedAssignment,
				Message:  fmt.Sprintf("assignment %q is missing %s; skipped", displayID(a), missingFields(a)),
				TaskID:   a.ID,
			})
			continue
		}
		if a.ID != "" {
			if seenIDs[a.ID] {
				issues = append(issues, models.ValidationIssue{
					Severity: models.SeverityWarning,
					Code:     models.IssueDuplicateAssignment,
					Message:  fmt.Sprintf("assignment %q appears more than once; later copies skipped", a.ID),
					TaskID:   a.ID,
				})
				continue
			}
			seenIDs[a.ID] = true
		}
		if !models.IsKnownSkill(a.SkillType) {
			issues = append(issues, models.ValidationIssue{
				Severity: models.SeverityInfo,
				Code:     models.IssueUnknownSkill,
				Message:  fmt.Sprintf("assignment %q uses skill %q outside the known skill list", displayID(a), a.SkillType),
				TaskID:   a.ID,
				Group:    string(a.SkillType),
			})
		}

		hours, expandIssues := b.expander.Expand(a, horizon)
		issues = append(issues, expandIssues...)

		group := string(a.SkillType)
		if mode == models.GroupByClient {
			group = a.ClientID
			if labels[group] == "" {
				labels[group] = a.ClientName
			}
		}

		for _, month := range horizon {
			h, ok := hours[month.Key]
			if !ok || h <= 0 {
				continue
			}
			key := cellKey{group: group, month: month.Key}
			cell, exists := cells[key]
			if !exists {
				cell = &models.DemandDataPoint{
					SkillType:  group,
					Month:      month.Key,
					MonthLabel: month.Label,
				}
				cells[key] = cell
				order = append(order, key)
			}
			cell.TaskBreakdown = append(cell.TaskBreakdown, contributionFor(a, h))
		}
	}

	points := make([]models.DemandDataPoint, 0, len(order))
	for _, key := range order {
		points = append(points, *cells[key])
	}

	if mode == models.GroupBySkill {
		labels = nil
	}
	return assembleMatrix(mode, horizon, horizon, points, labels), issues, nil
}

type cellKey struct {
	group string
	month string
}

func contributionFor(a models.RecurringTaskAssignment, hours float64) models.TaskContribution {
	return models.TaskContribution{
		TaskID:             a.ID,
		ClientID:           a.ClientID,
		ClientName:         a.ClientName,
		TaskName:           a.TaskName,
		SkillType:          a.SkillType,
		MonthlyHours:       hours,
		EstimatedHours:     a.EstimatedHours,
		RecurrencePattern:  a.RecurrencePattern,
		PreferredStaffID:   cloneStringPtr(a.PreferredStaffID),
		PreferredStaffName: cloneStringPtr(a.PreferredStaffName),
	}
}

func displayID(a models.RecurringTaskAssignment) string {
	if a.ID != "" {
		return a.ID
	}
	if a.TaskName != "" {
		return a.TaskName
	}
	return "<unnamed>"
}

func missingFields(a models.RecurringTaskAssignment) string {
	var missing []string
	if a.SkillType == "" {
		missing = append(missing, "skill type")
	}
	if a.ClientID == "" {
		missing = append(missing, "client id")
	}
	return strings.Join(missing, " and ")
}

// assembleMatrix is the single place a matrix is put together. It drops
// cells with an empty breakdown and derives every cell aggregate and every
// matrix total from the breakdowns, so built and filtered matrices satisfy
// the same invariants.
func assembleMatrix(mode models.GroupingMode, horizon, months []models.MonthDescriptor, points []models.DemandDataPoint, labels map[string]string) *models.DemandMatrixData {
	monthPos := make(map[string]int, len(months))
	for i, m := range months {
		monthPos[m.Key] = i
	}

	kept := make([]models.DemandDataPoint, 0, len(points))
	groupSet := make(map[string]struct{})
	for _, p := range points {
		if len(p.TaskBreakdown) == 0 {
			continue
		}
		if _, ok := monthPos[p.Month]; !ok {
			continue
		}
		kept = append(kept, recomputeCell(p))
		groupSet[p.SkillType] = struct{}{}
	}

	groups := make([]string, 0, len(groupSet))
	for g := range groupSet {
		groups = append(groups, g)
	}
	sortGroups(groups, mode, labels)
	groupPos := make(map[string]int, len(groups))
	for i, g := range groups {
		groupPos[g] = i
	}

	sort.SliceStable(kept, func(i, j int) bool {
		gi, gj := groupPos[kept[i].SkillType], groupPos[kept[j].SkillType]
		if gi != gj {
			return gi < gj
		}
		return monthPos[kept[i].Month] < monthPos[kept[j].Month]
	})

	m := &models.DemandMatrixData{
		GroupingMode: mode,
		Horizon:      append([]models.MonthDescriptor(nil), horizon...),
		Months:       append([]models.MonthDescriptor(nil), months...),
		Skills:       groups,
		DataPoints:   kept,
		SkillSummary: make(map[string]models.SkillSummary, len(groups)),
	}

	allClients := make(map[string]struct{})
	groupClients := make(map[string]map[string]struct{}, len(groups))
	var total float64
	for _, p := range kept {
		total += p.DemandHours
		m.TotalTasks += p.TaskCount

		s := m.SkillSummary[p.SkillType]
		s.TotalHours = roundHours(s.TotalHours + p.DemandHours)
		s.TaskCount += p.TaskCount
		m.SkillSummary[p.SkillType] = s

		if groupClients[p.SkillType] == nil {
			groupClients[p.SkillType] = make(map[string]struct{})
		}
		for _, c := range p.TaskBreakdown {
			allClients[c.ClientID] = struct{}{}
			groupClients[p.SkillType][c.ClientID] = struct{}{}
		}
	}
	for g, clients := range groupClients {
		s := m.SkillSummary[g]
		s.ClientCount = len(clients)
		m.SkillSummary[g] = s
	}
	m.TotalDemand = roundHours(total)
	m.TotalClients = len(allClients)

	if mode == models.GroupByClient && labels != nil {
		m.GroupLabels = make(map[string]string, len(groups))
		for _, g := range groups {
			m.GroupLabels[g] = labels[g]
		}
	}

	return m
}

// recomputeCell copies a cell and re-derives its aggregates from its own
// breakdown.
func recomputeCell(p models.DemandDataPoint) models.DemandDataPoint {
	breakdown := append([]models.TaskContribution(nil), p.TaskBreakdown...)
	return models.DemandDataPoint{
		SkillType:     p.SkillType,
		Month:         p.Month,
		MonthLabel:    p.MonthLabel,
		DemandHours:   sumContributionHours(breakdown),
		TaskCount:     len(breakdown),
		ClientCount:   countDistinctClients(breakdown),
		TaskBreakdown: breakdown,
	}
}

// sortGroups orders skill groups by the skill enumeration (unknown skills
// alphabetically after it) and client groups by client name.
func sortGroups(groups []string, mode models.GroupingMode, labels map[string]string) {
	if mode == models.GroupByClient {
		sort.Slice(groups, func(i, j int) bool {
			li, lj := strings.ToLower(labels[groups[i]]), strings.ToLower(labels[groups[j]])
			if li != lj {
				return li < lj
			}
			return groups[i] < groups[j]
		})
		return
	}

	rank := make(map[string]int, len(models.KnownSkills))
	for i, s := range models.KnownSkills {
		rank[string(s)] = i
	}
	sort.Slice(groups, func(i, j int) bool {
		ri, iKnown := rank[groups[i]]
		rj, jKnown := rank[groups[j]]
		switch {
		case iKnown && jKnown:
			return ri < rj
		case iKnown != jKnown:
			return iKnown
		default:
			return groups[i] < groups[j]
		}
	})
}
