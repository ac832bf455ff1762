package core

import (
	"fmt"
	"sort"

	"github.com/valter-silva-au/staffplan/pkg/models"
)

// ValidateOption configures ValidateMatrix.
type ValidateOption func(*validateConfig)

type validateConfig struct {
	capacity map[string]float64
	rates    map[string]float64
}

// WithCapacity supplies monthly capacity hours keyed by skill name.
func WithCapacity(capacity map[string]float64) ValidateOption {
	return func(c *validateConfig) { c.capacity = capacity }
}

// WithClientRates supplies hourly rates keyed by client id; client
// groups without a positive rate are reported.
func WithClientRates(rates map[string]float64) ValidateOption {
	return func(c *validateConfig) { c.rates = rates }
}

// ValidateMatrix scans a matrix for integrity problems. Data-quality
// observations are reported as info or warning issues; a matrix whose
// stored aggregates disagree with its breakdowns yields critical issues.
func ValidateMatrix(matrix *models.DemandMatrixData, opts ...ValidateOption) []models.ValidationIssue {
	if matrix == nil {
		return []models.ValidationIssue{{
			Severity: models.SeverityCritical,
			Code:     models.IssueTotalsMismatch,
			Message:  "matrix is nil",
		}}
	}
	cfg := &validateConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	var issues []models.ValidationIssue
	issues = append(issues, checkStructure(matrix)...)
	issues = append(issues, checkCellTotals(matrix)...)
	issues = append(issues, checkMatrixTotals(matrix)...)
	issues = append(issues, checkCapacity(matrix, cfg.capacity)...)
	issues = append(issues, checkEmptyMonths(matrix)...)
	if cfg.rates != nil && matrix.GroupingMode == models.GroupByClient {
		issues = append(issues, checkRates(matrix, cfg.rates)...)
	}
	return issues
}

// IssueMessages renders issues as human-readable lines.
func IssueMessages(issues []models.ValidationIssue) []string {
	out := make([]string, len(issues))
	for i, issue := range issues {
		out[i] = issue.String()
	}
	return out
}

// HasCritical reports whether any issue is an internal invariant violation.
func HasCritical(issues []models.ValidationIssue) bool {
	for _, issue := range issues {
		if issue.Severity == models.SeverityCritical {
			return true
		}
	}
	return false
}

func checkStructure(m *models.DemandMatrixData) []models.ValidationIssue {
	var issues []models.ValidationIssue

	if err := ValidateHorizon(m.Months); err != nil && len(m.Months) > 0 {
		issues = append(issues, critical(models.IssueMonthSequence, "", "", fmt.Sprintf("visible months are not contiguous: %v", err)))
	}

	seenGroups := make(map[string]bool, len(m.Skills))
	for _, g := range m.Skills {
		if seenGroups[g] {
			issues = append(issues, critical(models.IssueDuplicateGroup, g, "", fmt.Sprintf("group %q is listed more than once", m.GroupLabel(g))))
		}
		seenGroups[g] = true
	}

	seenCells := make(map[cellKey]bool, len(m.DataPoints))
	for _, p := range m.DataPoints {
		key := cellKey{group: p.SkillType, month: p.Month}
		if seenCells[key] {
			issues = append(issues, critical(models.IssueDuplicateCell, p.SkillType, p.Month, fmt.Sprintf("cell %s / %s appears more than once", m.GroupLabel(p.SkillType), p.Month)))
		}
		seenCells[key] = true
	}
	return issues
}

func checkCellTotals(m *models.DemandMatrixData) []models.ValidationIssue {
	var issues []models.ValidationIssue
	for _, p := range m.DataPoints {
		label := m.GroupLabel(p.SkillType)
		if want := sumContributionHours(p.TaskBreakdown); !hoursEqual(want, p.DemandHours) {
			issues = append(issues, critical(models.IssueTotalsMismatch, p.SkillType, p.Month,
				fmt.Sprintf("cell %s / %s stores %.1f demand hours but its tasks sum to %.1f", label, p.MonthLabel, p.DemandHours, want)))
		}
		if want := len(p.TaskBreakdown); want != p.TaskCount {
			issues = append(issues, critical(models.IssueTotalsMismatch, p.SkillType, p.Month,
				fmt.Sprintf("cell %s / %s stores task count %d but lists %d tasks", label, p.MonthLabel, p.TaskCount, want)))
		}
		if want := countDistinctClients(p.TaskBreakdown); want != p.ClientCount {
			issues = append(issues, critical(models.IssueTotalsMismatch, p.SkillType, p.Month,
				fmt.Sprintf("cell %s / %s stores client count %d but lists %d clients", label, p.MonthLabel, p.ClientCount, want)))
		}
	}
	return issues
}

func checkMatrixTotals(m *models.DemandMatrixData) []models.ValidationIssue {
	var issues []models.ValidationIssue
	var demand float64
	tasks := 0
	clients := make(map[string]struct{})
	for _, p := range m.DataPoints {
		demand += p.DemandHours
		tasks += p.TaskCount
		for _, c := range p.TaskBreakdown {
			clients[c.ClientID] = struct{}{}
		}
	}
	if demand = roundHours(demand); !hoursEqual(demand, m.TotalDemand) {
		issues = append(issues, critical(models.IssueTotalsMismatch, "", "",
			fmt.Sprintf("matrix total demand %.1f does not match the cell sum %.1f", m.TotalDemand, demand)))
	}
	if tasks != m.TotalTasks {
		issues = append(issues, critical(models.IssueTotalsMismatch, "", "",
			fmt.Sprintf("matrix total tasks %d does not match the cell sum %d", m.TotalTasks, tasks)))
	}
	if len(clients) != m.TotalClients {
		issues = append(issues, critical(models.IssueTotalsMismatch, "", "",
			fmt.Sprintf("matrix total clients %d does not match %d distinct clients", m.TotalClients, len(clients))))
	}
	return issues
}

// checkCapacity derives demand per skill from the contributions, so it
// applies in either grouping mode.
func checkCapacity(m *models.DemandMatrixData, capacity map[string]float64) []models.ValidationIssue {
	demand := make(map[string]float64)
	for _, p := range m.DataPoints {
		for _, c := range p.TaskBreakdown {
			demand[string(c.SkillType)] += c.MonthlyHours
		}
	}
	skills := make([]string, 0, len(demand))
	for s := range demand {
		skills = append(skills, s)
	}
	sort.Strings(skills)

	var issues []models.ValidationIssue
	for _, s := range skills {
		if demand[s] > 0 && capacity[s] <= 0 {
			issues = append(issues, models.ValidationIssue{
				Severity: models.SeverityInfo,
				Code:     models.IssueMissingCapacity,
				Group:    s,
				Message:  fmt.Sprintf("skill %s has %.1f hours of demand but no capacity on record; capacity data is likely missing", s, roundHours(demand[s])),
			})
		}
	}
	return issues
}

func checkEmptyMonths(m *models.DemandMatrixData) []models.ValidationIssue {
	used := make(map[string]bool, len(m.Months))
	for _, p := range m.DataPoints {
		used[p.Month] = true
	}
	var issues []models.ValidationIssue
	for _, month := range m.Months {
		if !used[month.Key] {
			issues = append(issues, models.ValidationIssue{
				Severity: models.SeverityInfo,
				Code:     models.IssueEmptyMonth,
				Month:    month.Key,
				Message:  fmt.Sprintf("%s has no demand in any group", month.Label),
			})
		}
	}
	return issues
}

func checkRates(m *models.DemandMatrixData, rates map[string]float64) []models.ValidationIssue {
	var issues []models.ValidationIssue
	for _, clientID := range m.Skills {
		if rates[clientID] <= 0 {
			issues = append(issues, models.ValidationIssue{
				Severity: models.SeverityWarning,
				Code:     models.IssueMissingRate,
				Group:    clientID,
				Message:  fmt.Sprintf("client %s has no hourly rate; suggested revenue is zero", m.GroupLabel(clientID)),
			})
		}
	}
	return issues
}

func critical(code, group, month, msg string) models.ValidationIssue {
	return models.ValidationIssue{
		Severity: models.SeverityCritical,
		Code:     code,
		Group:    group,
		Month:    month,
		Message:  msg,
	}
}
