package models

import "fmt"

// IssueSeverity classifies a validation issue.
type IssueSeverity string

const (
	// SeverityInfo marks data-quality observations that need no action.
	SeverityInfo IssueSeverity = "info"
	// SeverityWarning marks input defects that were skipped or ignored.
	SeverityWarning IssueSeverity = "warning"
	// SeverityCritical marks internal invariant violations.
	SeverityCritical IssueSeverity = "critical"
)

// Issue codes.
const (
	IssueMalformedAssignment = "malformed_assignment"
	IssueDuplicateAssignment = "duplicate_assignment"
	IssueUnknownRecurrence   = "unknown_recurrence"
	IssueUnknownSkill        = "unknown_skill"
	IssueMissingCapacity     = "missing_capacity"
	IssueEmptyMonth          = "empty_month"
	IssueTotalsMismatch      = "totals_mismatch"
	IssueDuplicateCell       = "duplicate_cell"
	IssueDuplicateGroup      = "duplicate_group"
	IssueMonthSequence       = "month_sequence"
	IssueMissingRate         = "missing_rate"
)

// ValidationIssue describes one problem found while building or checking a
// matrix. Issues never abort processing.
type ValidationIssue struct {
	Severity IssueSeverity `json:"severity"`
	Code     string        `json:"code"`
	Message  string        `json:"message"`
	Group    string        `json:"group,omitempty"`
	Month    string        `json:"month,omitempty"`
	TaskID   string        `json:"taskId,omitempty"`
}

// String renders the issue as a single human-readable line.
func (i ValidationIssue) String() string {
	return fmt.Sprintf("[%s] %s", i.Severity, i.Message)
}
